// Package extras provides /extras snipe, poll and remindme.
package extras

import (
	"github.com/PancyStudios/PancyModBot/pkg/discord"
)

// Commands returns every /extras subcommand
func Commands() []*discord.Command {
	return []*discord.Command{
		createSnipeCommand(),
		createPollCommand(),
		createRemindMeCommand(),
	}
}

// Register registers the /extras group
func Register(client *discord.ExtendedClient) {
	group := client.CommandHandler.BuildCommandGroup(
		"extras",
		"Extra utilities",
		Commands()...,
	)
	client.CommandHandler.AddGlobalCommand(group)
}
