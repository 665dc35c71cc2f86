package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"vaops/internal/adapters/api"
	"vaops/internal/adapters/discord"
	"vaops/internal/application"
	"vaops/internal/config"
	"vaops/internal/infrastructure/authz"
	"vaops/internal/infrastructure/database"
	"vaops/internal/infrastructure/i18n"
	"vaops/internal/ports/output"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLog := zerolog.New(os.Stderr)
		bootLog.Fatal().Err(err).Msg("load config")
	}

	log := zerolog.New(os.Stdout).Level(cfg.LogLevel).With().Timestamp().Logger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := database.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath, log); err != nil {
		log.Fatal().Err(err).Msg("run migrations")
	}

	pool, err := database.NewPool(ctx, cfg.DatabaseURL, log)
	if err != nil {
		log.Fatal().Err(err).Msg("init database pool")
	}
	defer pool.Close()

	eventRepo := database.NewEventRepository(pool)
	gateRepo := database.NewGateRepository(pool)
	participantRepo := database.NewParticipantRepository(pool)
	roleRepo := database.NewRoleRepository(pool)
	txManager := database.NewTxManager(pool)

	participation := application.NewParticipationService(txManager, eventRepo, gateRepo, participantRepo, authz.NewGuard())

	var notifier output.RosterNotifier
	if cfg.DiscordWebhookURL != "" {
		notifier, err = discord.NewAnnouncer(cfg.DiscordWebhookURL, log)
		if err != nil {
			log.Fatal().Err(err).Msg("init discord announcer")
		}
	}

	router := api.NewRouter(api.Deps{
		Participation: participation,
		Events:        eventRepo,
		Gates:         gateRepo,
		Participants:  participantRepo,
		Roles:         roleRepo,
		Translator:    i18n.NewTranslator(cfg.DefaultLocale),
		Notifier:      notifier,
		Log:           log,
	})

	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: router,
	}

	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
}
