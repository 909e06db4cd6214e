package logchannel

import (
	"context"
	"fmt"

	"github.com/PancyStudios/PancyModBot/pkg/logger"
	"github.com/bwmarrin/discordgo"
)

// Sender is the part of *discordgo.Session the dispatcher needs.
type Sender interface {
	ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Dispatcher delivers log embeds to the channel bound to a guild.
type Dispatcher struct {
	service *Service
	sender  Sender
}

// NewDispatcher returns a Dispatcher sending through sender.
func NewDispatcher(service *Service, sender Sender) *Dispatcher {
	return &Dispatcher{service: service, sender: sender}
}

// Send posts embed to the guild's log channel. It reports whether a message was
// delivered; unbound guilds and failed sends are dropped without retry.
func (d *Dispatcher) Send(ctx context.Context, guildID string, embed *discordgo.MessageEmbed) bool {
	if guildID == "" || embed == nil {
		return false
	}

	channelID, ok, err := d.service.Get(ctx, guildID)
	if err != nil {
		logger.Error(fmt.Sprintf("No se pudo leer el canal de logs de %s: %v", guildID, err), "Logs")
		return false
	}
	if !ok {
		return false
	}

	if _, err := d.sender.ChannelMessageSendEmbed(channelID, embed); err != nil {
		logger.Debug(fmt.Sprintf("No se pudo enviar log a %s (guild %s): %v", channelID, guildID, err), "Logs")
		return false
	}
	return true
}
