// Package api is the HTTP surface over the participation use case. It stays
// thin: bind the request, resolve the caller, invoke the core, translate the
// outcome. Session resolution is owned by the auth component; the X-User-ID
// header stands in for it here.
package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"vaops/internal/domain/entities"
	"vaops/internal/ports/input"
	"vaops/internal/ports/output"
)

// Deps are the collaborators the HTTP layer wires together.
type Deps struct {
	Participation input.ParticipationUseCase
	Events        output.EventRepository
	Gates         output.GateRepository
	Participants  output.ParticipantRepository
	Roles         output.RoleService
	Translator    output.T
	Notifier      output.RosterNotifier // optional
	Log           zerolog.Logger
}

// NewRouter builds the gin engine with all routes registered.
func NewRouter(deps Deps) *gin.Engine {
	registerValidations()

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger(deps.Log))

	h := newHandler(deps)

	v1 := r.Group("/v1")
	v1.GET("/events/:eventID/gates", h.GateOccupancy)
	v1.GET("/events/:eventID/participants", h.Roster)
	v1.POST("/events/:eventID/join", h.Join)
	v1.DELETE("/events/:eventID/participants/me", h.Leave)
	v1.PUT("/events/:eventID/gates/:gateID", h.AssignGate)
	v1.DELETE("/events/:eventID/assignments/:role", h.ClearGate)
	v1.PUT("/events/:eventID/participants/:userID/gates/:gateID", h.AdminAssignGate)
	v1.DELETE("/events/:eventID/participants/:userID", h.AdminRemoveParticipant)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

// registerValidations adds the gaterole validation used by request bodies.
func registerValidations() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("gaterole", func(fl validator.FieldLevel) bool {
			return entities.GateRole(fl.Field().String()).Valid()
		})
	}
}

func requestLogger(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info().
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", c.Writer.Status()).
			Dur("duration", time.Since(start)).
			Msg("http request")
	}
}
