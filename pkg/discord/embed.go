package discord

import (
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"vaops/pkg/tz"
)

const (
	embedColor = 0x2E86DE
)

func gateLine(role, label string) string {
	if label == "" {
		return fmt.Sprintf("**%s:** no gate assigned", role)
	}
	return fmt.Sprintf("**%s:** %s", role, label)
}

func buildRosterDescription(userMention, departureLabel, arrivalLabel string, scheduledAt time.Time) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%s\n\n", userMention))
	b.WriteString(gateLine("Departure", departureLabel))
	b.WriteString("\n")
	b.WriteString(gateLine("Arrival", arrivalLabel))
	if !scheduledAt.IsZero() {
		b.WriteString(fmt.Sprintf("\n\n**Departure time:** %s", tz.FormatZulu(scheduledAt)))
	}
	return b.String()
}

// BuildJoinEmbed announces a pilot joining an event, with whichever gates
// ended up assigned.
func BuildJoinEmbed(eventTitle, userID, departureLabel, arrivalLabel string, scheduledAt time.Time) *discordgo.MessageEmbed {
	mention := fmt.Sprintf("<@%s> joined the roster", userID)
	return &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("🛫 %s", eventTitle),
		Description: buildRosterDescription(mention, departureLabel, arrivalLabel, scheduledAt),
		Color:       embedColor,
	}
}

// BuildGateAssignedEmbed announces a gate binding (self-service or staff).
func BuildGateAssignedEmbed(eventTitle, userID, gateLabel string, role string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("🛫 %s", eventTitle),
		Description: fmt.Sprintf("<@%s> is now at %s gate **%s**", userID, role, gateLabel),
		Color:       embedColor,
	}
}

// BuildLeaveEmbed announces a pilot leaving the roster.
func BuildLeaveEmbed(eventTitle, userID string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("🛫 %s", eventTitle),
		Description: fmt.Sprintf("<@%s> left the roster, their gates are free again", userID),
		Color:       embedColor,
	}
}
