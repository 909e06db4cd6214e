// Package events provides event handlers for member events
package events

import (
	"fmt"

	"github.com/PancyStudios/PancyModBot/pkg/discord"
	"github.com/PancyStudios/PancyModBot/pkg/logger"
	"github.com/bwmarrin/discordgo"
)

// RegisterMemberEvents registers the autorole handler when a role is configured
func RegisterMemberEvents(client *discord.ExtendedClient) {
	roleID := client.Services.Config.AutoRoleID
	if roleID == "" {
		return
	}
	client.EventHandler.OnGuildMemberAdd(func(s *discordgo.Session, m *discordgo.GuildMemberAdd) {
		assignAutoRole(s, m, roleID)
	})
}

// roleAdder is the part of *discordgo.Session assignAutoRole uses.
type roleAdder interface {
	GuildMemberRoleAdd(guildID, userID, roleID string, options ...discordgo.RequestOption) error
}

func assignAutoRole(s roleAdder, m *discordgo.GuildMemberAdd, roleID string) {
	if m.User == nil || m.User.Bot {
		return
	}
	err := s.GuildMemberRoleAdd(m.GuildID, m.User.ID, roleID, discordgo.WithAuditLogReason("Autorole"))
	if err != nil {
		// The role only exists in one guild; elsewhere this is expected.
		if discord.IsNotFound(err) {
			logger.Debug(fmt.Sprintf("Autorole %s no existe en %s", roleID, m.GuildID), "Member")
			return
		}
		logger.Error(fmt.Sprintf("Error asignando autorole a %s: %v", m.User.ID, err), "Member")
		return
	}
	logger.Debug(fmt.Sprintf("👋 Autorole asignado a %s en %s", m.User.String(), m.GuildID), "Member")
}
