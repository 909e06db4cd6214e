package utils

import (
	"github.com/PancyStudios/PancyModBot/pkg/discord"
)

// Commands returns every /utils subcommand
func Commands() []*discord.Command {
	return []*discord.Command{
		createPingCommand(),
		createStatusCommand(),
		createStatsCommand(),
		createHelpCommand(),
		createAboutCommand(),
		createAvatarCommand(),
		createUserCommand(),
		createServerCommand(),
		createServerIconCommand(),
		createServerBannerCommand(),
		createRolesCommand(),
		createJoinedAtCommand(),
		createModsCommand(),
	}
}

// Register registers the utility commands as /utils subcommands
func Register(client *discord.ExtendedClient) {
	group := client.CommandHandler.BuildCommandGroup(
		"utils",
		"Utility commands",
		Commands()...,
	)
	client.CommandHandler.AddGlobalCommand(group)
}
