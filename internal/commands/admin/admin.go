// Package admin provides owner-only commands under /admin
package admin

import (
	"fmt"

	"github.com/PancyStudios/PancyModBot/pkg/discord"
	"github.com/PancyStudios/PancyModBot/pkg/logger"
	"github.com/bwmarrin/discordgo"
)

// Commands returns every /admin subcommand
func Commands() []*discord.Command {
	return []*discord.Command{
		createAmIAdminCommand(),
		createDMCommand(),
		createEvalCommand(),
	}
}

// Register registers the /admin group
func Register(client *discord.ExtendedClient) {
	group := client.CommandHandler.BuildCommandGroup(
		"admin",
		"Bot owner commands",
		Commands()...,
	)
	client.CommandHandler.AddGlobalCommand(group)
}

func createAmIAdminCommand() *discord.Command {
	return discord.NewCommand(
		"amiadmin",
		"Check if you are the bot owner.",
		"admin",
		amIAdminHandler,
	)
}

func amIAdminHandler(ctx *discord.CommandContext) error {
	user := ctx.User()
	if ctx.Services().Permissions.IsPrivileged(user.ID) {
		return ctx.ReplyEphemeral(fmt.Sprintf("✅ Yes, **%s**, you are the bot owner.", user.Username))
	}
	return ctx.ReplyEphemeral(fmt.Sprintf("❌ No, **%s**, you are not the bot owner.", user.Username))
}

func createDMCommand() *discord.Command {
	return discord.NewCommand(
		"dm",
		"DM a user directly. (Owner only)",
		"admin",
		dmHandler,
	).WithOptions(
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionUser,
			Name:        "user",
			Description: "User to DM",
			Required:    true,
		},
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "message",
			Description: "Message to send",
			Required:    true,
			MaxLength:   2000,
		},
	).AsOwnerOnly()
}

func dmHandler(ctx *discord.CommandContext) error {
	user := ctx.GetUserOption("user")
	if user == nil {
		return ctx.ReplyEphemeral("❌ You need to specify a user.")
	}

	channel, err := ctx.Session.UserChannelCreate(user.ID)
	if err == nil {
		_, err = ctx.Session.ChannelMessageSend(channel.ID, ctx.GetStringOption("message"))
	}
	if err != nil {
		logger.Debug(fmt.Sprintf("No se pudo enviar MD a %s: %v", user.ID, err), "Admin")
		return ctx.ReplyEphemeral("❌ This user has DMs disabled or is a bot.")
	}
	return ctx.ReplyEphemeral(fmt.Sprintf("✉️ Sent a DM to **%s**", user.String()))
}
