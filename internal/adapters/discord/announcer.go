// Package discord posts roster announcements to a community webhook. It runs
// strictly outside the transaction boundary: callers fire it after commit and
// a delivery failure is logged, never propagated.
package discord

import (
	"context"
	"fmt"
	"regexp"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"

	"vaops/internal/domain/allocation"
	"vaops/internal/domain/entities"
	"vaops/internal/ports/output"
	pkgdiscord "vaops/pkg/discord"
)

var webhookURLPattern = regexp.MustCompile(`/api/webhooks/(\d+)/([A-Za-z0-9_-]+)`)

var _ output.RosterNotifier = (*Announcer)(nil)

// Announcer executes a Discord webhook for roster changes.
type Announcer struct {
	session   *discordgo.Session
	webhookID string
	token     string
	log       zerolog.Logger
}

// NewAnnouncer parses the webhook URL and prepares an unauthenticated session
// (webhook execution carries its own token).
func NewAnnouncer(webhookURL string, log zerolog.Logger) (*Announcer, error) {
	m := webhookURLPattern.FindStringSubmatch(webhookURL)
	if m == nil {
		return nil, fmt.Errorf("discord: webhook URL does not match /api/webhooks/{id}/{token}")
	}
	session, err := discordgo.New("")
	if err != nil {
		return nil, fmt.Errorf("discord: create session: %w", err)
	}
	return &Announcer{
		session:   session,
		webhookID: m[1],
		token:     m[2],
		log:       log,
	}, nil
}

func (a *Announcer) execute(ctx context.Context, embed *discordgo.MessageEmbed) error {
	_, err := a.session.WebhookExecute(a.webhookID, a.token, false, &discordgo.WebhookParams{
		Embeds: []*discordgo.MessageEmbed{embed},
	}, discordgo.WithContext(ctx))
	if err != nil {
		a.log.Error().Err(err).Msg("webhook execute failed")
	}
	return err
}

func (a *Announcer) AnnounceJoin(ctx context.Context, event *entities.Event, participant *entities.Participant, departure, arrival allocation.Decision) error {
	embed := pkgdiscord.BuildJoinEmbed(
		event.Title,
		participant.UserID,
		departure.Gate.Label,
		arrival.Gate.Label,
		event.ScheduledAt,
	)
	return a.execute(ctx, embed)
}

func (a *Announcer) AnnounceGateAssigned(ctx context.Context, event *entities.Event, participant *entities.Participant, gate entities.Gate) error {
	embed := pkgdiscord.BuildGateAssignedEmbed(event.Title, participant.UserID, gate.Label, string(gate.Role))
	return a.execute(ctx, embed)
}

func (a *Announcer) AnnounceLeave(ctx context.Context, event *entities.Event, userID string) error {
	return a.execute(ctx, pkgdiscord.BuildLeaveEmbed(event.Title, userID))
}
