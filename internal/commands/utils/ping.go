package utils

import (
	"fmt"
	"time"

	"github.com/PancyStudios/PancyModBot/pkg/discord"
	"github.com/bwmarrin/discordgo"
)

// createPingCommand creates the /utils ping subcommand
func createPingCommand() *discord.Command {
	return discord.NewCommand(
		"ping",
		"Check the bot's latency.",
		"utils",
		pingHandler,
	)
}

// pingHandler answers first and then edits in the REST round trip.
func pingHandler(ctx *discord.CommandContext) error {
	before := time.Now()
	if err := ctx.Reply("🏓 Pinging..."); err != nil {
		return err
	}
	rest := time.Since(before)

	return ctx.EditReplyEmbed(&discordgo.MessageEmbed{
		Color: discord.ColorInfo,
		Fields: []*discordgo.MessageEmbedField{
			discord.Field("📡 WebSocket", fmt.Sprintf("`%dms`", ctx.Session.HeartbeatLatency().Milliseconds()), true),
			discord.Field("📬 REST", fmt.Sprintf("`%dms`", rest.Milliseconds()), true),
		},
	})
}
