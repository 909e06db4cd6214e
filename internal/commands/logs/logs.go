// Package logs provides the /logs command group that picks where a guild's
// moderation and event log is posted.
package logs

import (
	"fmt"

	"github.com/PancyStudios/PancyModBot/pkg/discord"
	"github.com/bwmarrin/discordgo"
)

// Commands returns every /logs subcommand
func Commands() []*discord.Command {
	return []*discord.Command{
		createSetCommand(),
		createUnsetCommand(),
		createStatusCommand(),
	}
}

// Register registers the /logs group
func Register(client *discord.ExtendedClient) {
	group := client.CommandHandler.BuildCommandGroup(
		"logs",
		"Configure the log channel for this server",
		Commands()...,
	)
	client.CommandHandler.AddGlobalCommand(group)
}

func newLogsCommand(name, description string, run discord.CommandRunFunc) *discord.Command {
	return discord.NewCommand(name, description, "logs", run).
		WithUserPermissions(discordgo.PermissionManageGuild).
		InGuildOnly()
}

func createSetCommand() *discord.Command {
	return newLogsCommand(
		"set",
		"Set the log channel for this server.",
		setHandler,
	).WithOptions(
		&discordgo.ApplicationCommandOption{
			Type:         discordgo.ApplicationCommandOptionChannel,
			Name:         "channel",
			Description:  "Channel to send logs in (default: current channel)",
			ChannelTypes: []discordgo.ChannelType{discordgo.ChannelTypeGuildText},
		},
	)
}

func setHandler(ctx *discord.CommandContext) error {
	channelID := ctx.Interaction.ChannelID
	if opt := ctx.GetOption("channel"); opt != nil {
		if id, _ := opt.Value.(string); id != "" {
			channelID = id
		}
	}

	if err := ctx.Services().LogChannels.Set(ctx.Context(), ctx.Interaction.GuildID, channelID); err != nil {
		return ctx.RespondStorageError(err)
	}

	return ctx.RespondEmbed(&discordgo.MessageEmbed{
		Title:       "✅  Log Channel Set",
		Description: fmt.Sprintf("Events will now be logged in <#%s>.", channelID),
		Color:       discord.ColorSuccess,
	})
}

func createUnsetCommand() *discord.Command {
	return newLogsCommand("unset", "Disable logging for this server.", unsetHandler)
}

func unsetHandler(ctx *discord.CommandContext) error {
	if err := ctx.Services().LogChannels.Unset(ctx.Context(), ctx.Interaction.GuildID); err != nil {
		return ctx.RespondStorageError(err)
	}
	return ctx.RespondEmbed(&discordgo.MessageEmbed{
		Title:       "🗑️  Logging Disabled",
		Description: "Log channel removed. No events will be logged.",
		Color:       discord.ColorWarn,
	})
}

func createStatusCommand() *discord.Command {
	return newLogsCommand("status", "Show where this server's logs are sent.", statusHandler)
}

func statusHandler(ctx *discord.CommandContext) error {
	channelID, ok, err := ctx.Services().LogChannels.Get(ctx.Context(), ctx.Interaction.GuildID)
	if err != nil {
		return ctx.RespondStorageError(err)
	}
	if !ok {
		return ctx.ReplyEphemeralEmbed(&discordgo.MessageEmbed{
			Title:       "📋  Logging Status",
			Description: "Logging is **disabled**. Use `/logs set` to pick a channel.",
			Color:       discord.ColorWarn,
		})
	}
	return ctx.ReplyEphemeralEmbed(&discordgo.MessageEmbed{
		Title:       "📋  Logging Status",
		Description: fmt.Sprintf("Events are logged in <#%s>.", channelID),
		Color:       discord.ColorInfo,
	})
}
