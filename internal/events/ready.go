// Package events provides event handlers for the bot
package events

import (
	"fmt"

	"github.com/PancyStudios/PancyModBot/pkg/config"
	"github.com/PancyStudios/PancyModBot/pkg/discord"
	"github.com/PancyStudios/PancyModBot/pkg/logger"
	"github.com/bwmarrin/discordgo"
)

var activityTypes = map[string]discordgo.ActivityType{
	"listening": discordgo.ActivityTypeListening,
	"watching":  discordgo.ActivityTypeWatching,
	"competing": discordgo.ActivityTypeCompeting,
}

var statusTypes = map[string]discordgo.Status{
	"idle": discordgo.StatusIdle,
	"dnd":  discordgo.StatusDoNotDisturb,
}

// presence builds the configured presence. Unknown activity types fall back to
// "playing" and unknown statuses to online.
func presence(cfg *config.Config) discordgo.UpdateStatusData {
	activity, ok := activityTypes[cfg.ActivityType]
	if !ok {
		activity = discordgo.ActivityTypeGame
	}
	status, ok := statusTypes[cfg.StatusType]
	if !ok {
		status = discordgo.StatusOnline
	}
	return discordgo.UpdateStatusData{
		Activities: []*discordgo.Activity{{Name: cfg.ActivityName, Type: activity}},
		Status:     string(status),
	}
}

// RegisterReadyEvent registers the ready event handler
func RegisterReadyEvent(client *discord.ExtendedClient) {
	cfg := client.Services.Config
	client.EventHandler.OnReady(func(s *discordgo.Session, r *discordgo.Ready) {
		logger.Success(fmt.Sprintf("✅ Bot conectado: %s", r.User.String()), "Ready")
		logger.Info(fmt.Sprintf("📊 Conectado a %d servidores", len(r.Guilds)), "Ready")

		if err := s.UpdateStatusComplex(presence(cfg)); err != nil {
			logger.Error(fmt.Sprintf("Error estableciendo estado: %v", err), "Ready")
			return
		}
		logger.Debug("Estado del bot establecido correctamente", "Ready")
	})
}
