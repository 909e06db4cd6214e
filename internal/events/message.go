// Package events provides event handlers for message events
package events

import (
	"fmt"
	"strings"
	"time"

	"github.com/PancyStudios/PancyModBot/internal/commands/encoding"
	"github.com/PancyStudios/PancyModBot/pkg/cooldown"
	"github.com/PancyStudios/PancyModBot/pkg/discord"
	"github.com/PancyStudios/PancyModBot/pkg/logger"
	"github.com/bwmarrin/discordgo"
)

// prefixCommands maps a prefix command name to its encoding direction.
var prefixCommands = map[string]encoding.Direction{
	"encode": encoding.Encode,
	"decode": encoding.Decode,
}

// RegisterMessageEvents registers the prefix dispatcher and the snipe capture
func RegisterMessageEvents(client *discord.ExtendedClient) {
	prefix := client.Services.Config.Prefix
	snipes := client.Services.Snipes

	client.EventHandler.OnMessageCreate(func(s *discordgo.Session, m *discordgo.MessageCreate) {
		onPrefixCommand(s, m, prefix)
	})
	client.EventHandler.OnMessageDelete(func(s *discordgo.Session, m *discordgo.MessageDelete) {
		captureSnipe(snipes, m, time.Now())
	})
}

// parsePrefixCommand splits "<prefix>name args". ok is false when content is not a prefix command.
func parsePrefixCommand(content, prefix string) (name, args string, ok bool) {
	if prefix == "" || !strings.HasPrefix(content, prefix) {
		return "", "", false
	}
	name, args, _ = strings.Cut(strings.TrimPrefix(content, prefix), " ")
	name = strings.ToLower(name)
	return name, args, name != ""
}

func onPrefixCommand(s *discordgo.Session, m *discordgo.MessageCreate, prefix string) {
	if m.Author == nil || m.Author.Bot {
		return
	}
	name, args, ok := parsePrefixCommand(m.Content, prefix)
	if !ok {
		return
	}
	dir, ok := prefixCommands[name]
	if !ok {
		return
	}

	where := "MD"
	if m.GuildID != "" {
		where = m.GuildID
	}
	logger.Debug(fmt.Sprintf("%s > %s > %s", where, m.Author.String(), name), "Prefix")

	if err := encoding.RunPrefix(discord.NewChannelSink(s, m.ChannelID), dir, args); err != nil {
		logger.Error(fmt.Sprintf("Error ejecutando %s%s: %v", prefix, name, err), "Prefix")
	}
}

// captureSnipe stores the deleted message for /extras snipe. Only cached guild messages
// from humans are kept.
func captureSnipe(snipes *cooldown.SnipeCache, m *discordgo.MessageDelete, now time.Time) {
	msg := m.BeforeDelete
	if msg == nil || msg.Author == nil || msg.Author.Bot || m.GuildID == "" {
		return
	}
	snipes.Put(m.ChannelID, cooldown.SnipedMessage{
		AuthorID:   msg.Author.ID,
		AuthorName: msg.Author.String(),
		AvatarURL:  msg.Author.AvatarURL(""),
		Content:    msg.Content,
		DeletedAt:  now,
	})
}
