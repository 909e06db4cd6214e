package discord

import (
	"time"

	"github.com/PancyStudios/PancyModBot/pkg/config"
	"github.com/PancyStudios/PancyModBot/pkg/cooldown"
	"github.com/PancyStudios/PancyModBot/pkg/logchannel"
	"github.com/PancyStudios/PancyModBot/pkg/models"
	"github.com/PancyStudios/PancyModBot/pkg/permissions"
	"github.com/PancyStudios/PancyModBot/pkg/storage"
	"github.com/PancyStudios/PancyModBot/pkg/warnings"
)

// EventPublisher receives every moderation action executed by the bot.
type EventPublisher interface {
	PublishModeration(ev models.ModerationEvent)
}

// Services groups the dependencies shared by commands and event listeners.
type Services struct {
	Config      *config.Config
	Permissions *permissions.Checker
	Warnings    *warnings.Service
	LogChannels *logchannel.Service
	Logs        *logchannel.Dispatcher
	Cooldowns   *cooldown.Manager
	Snipes      *cooldown.SnipeCache

	// Events is optional; nil when MQTT is disabled.
	Events EventPublisher
}

// NewServices wires the services over store. Log embeds are delivered through sender.
func NewServices(cfg *config.Config, store storage.Store, sender logchannel.Sender) *Services {
	logChannels := logchannel.NewService(store)
	return &Services{
		Config:      cfg,
		Permissions: permissions.New(cfg.OwnerID),
		Warnings:    warnings.NewService(store),
		LogChannels: logChannels,
		Logs:        logchannel.NewDispatcher(logChannels, sender),
		Cooldowns:   cooldown.NewManager(),
		Snipes:      cooldown.NewSnipeCache(cooldown.SnipeTTL),
	}
}

// Publish forwards a moderation event when a publisher is configured.
func (s *Services) Publish(action, guildID, userID, moderatorID, reason string) {
	if s == nil || s.Events == nil {
		return
	}
	s.Events.PublishModeration(models.ModerationEvent{
		Action:      action,
		GuildID:     guildID,
		UserID:      userID,
		ModeratorID: moderatorID,
		Reason:      reason,
		Timestamp:   time.Now().UTC(),
	})
}
