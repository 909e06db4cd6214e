// Package events provides event handlers for guild (server) events
package events

import (
	"fmt"
	"sort"
	"time"

	"github.com/PancyStudios/PancyModBot/pkg/discord"
	"github.com/PancyStudios/PancyModBot/pkg/logger"
	"github.com/bwmarrin/discordgo"
)

// joinWindow separates a fresh join from the GuildCreate replayed for every guild on connect.
const joinWindow = 10 * time.Second

// RegisterGuildEvents registers all guild-related event handlers
func RegisterGuildEvents(client *discord.ExtendedClient) {
	joinMessage := client.Services.Config.JoinMessage
	client.EventHandler.OnGuildCreate(func(s *discordgo.Session, g *discordgo.GuildCreate) {
		onGuildCreate(s, g, joinMessage)
	})
	client.EventHandler.OnGuildDelete(onGuildDelete)
}

// firstWritableChannel returns the top text channel canSend allows, or nil.
func firstWritableChannel(channels []*discordgo.Channel, canSend func(channelID string) bool) *discordgo.Channel {
	text := make([]*discordgo.Channel, 0, len(channels))
	for _, ch := range channels {
		if ch.Type == discordgo.ChannelTypeGuildText {
			text = append(text, ch)
		}
	}
	sort.SliceStable(text, func(i, j int) bool { return text[i].Position < text[j].Position })
	for _, ch := range text {
		if canSend(ch.ID) {
			return ch
		}
	}
	return nil
}

func onGuildCreate(s *discordgo.Session, g *discordgo.GuildCreate, joinMessage string) {
	if g.JoinedAt.Before(time.Now().Add(-joinWindow)) {
		return
	}

	logger.Info(fmt.Sprintf("➕ Bot agregado a servidor: %s (ID: %s)", g.Name, g.ID), "Guild")
	logger.Debug(fmt.Sprintf("   Miembros: %d | Canales: %d", g.MemberCount, len(g.Channels)), "Guild")

	if joinMessage == "" {
		return
	}
	ch := firstWritableChannel(g.Channels, func(channelID string) bool {
		perms, err := s.State.UserChannelPermissions(s.State.User.ID, channelID)
		return err == nil && perms&discordgo.PermissionSendMessages != 0
	})
	if ch == nil {
		logger.Debug(fmt.Sprintf("Sin canal con permisos de escritura en %s", g.ID), "Guild")
		return
	}
	if _, err := s.ChannelMessageSend(ch.ID, joinMessage); err != nil {
		logger.Error(fmt.Sprintf("Error enviando mensaje de bienvenida: %v", err), "Guild")
	}
}

// onGuildDelete is called when the bot is removed from a server
func onGuildDelete(s *discordgo.Session, g *discordgo.GuildDelete) {
	if g.Unavailable {
		logger.Warn(fmt.Sprintf("⚠️ Servidor %s no disponible", g.ID), "Guild")
		return
	}
	logger.Info(fmt.Sprintf("➖ Bot removido del servidor ID: %s", g.ID), "Guild")
}
