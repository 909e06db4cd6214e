package extras

import (
	"github.com/PancyStudios/PancyModBot/pkg/cooldown"
	"github.com/PancyStudios/PancyModBot/pkg/discord"
	"github.com/bwmarrin/discordgo"
)

func createSnipeCommand() *discord.Command {
	return discord.NewCommand(
		"snipe",
		"Show the last deleted message in this channel.",
		"extras",
		snipeHandler,
	).InGuildOnly()
}

// snipeEmbed renders a cached deleted message, or the empty-cache notice.
func snipeEmbed(msg cooldown.SnipedMessage, ok bool, channelName string) *discordgo.MessageEmbed {
	if !ok {
		return &discordgo.MessageEmbed{
			Description: "🔍 Nothing to snipe — the cache is empty.",
			Color:       discord.ColorWarn,
		}
	}
	content := msg.Content
	if content == "" {
		content = "*[no text content]*"
	}
	return &discordgo.MessageEmbed{
		Description: content,
		Color:       discord.ColorInfo,
		Author:      &discordgo.MessageEmbedAuthor{Name: msg.AuthorName, IconURL: msg.AvatarURL},
		Footer:      &discordgo.MessageEmbedFooter{Text: "Sniped in #" + channelName},
		Timestamp:   discord.Timestamp(msg.DeletedAt),
	}
}

func snipeHandler(ctx *discord.CommandContext) error {
	channelID := ctx.Interaction.ChannelID
	name := channelID
	if ch := ctx.Channel(); ch != nil {
		name = ch.Name
	}
	msg, ok := ctx.Services().Snipes.Get(channelID)
	return ctx.ReplyEmbed(snipeEmbed(msg, ok, name))
}
