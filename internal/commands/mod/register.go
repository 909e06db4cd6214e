// Package mod provides moderation commands organized as subcommands under /mod
// Each concern lives in its own file
package mod

import (
	"github.com/PancyStudios/PancyModBot/pkg/discord"
)

// Commands returns every /mod subcommand in display order
func Commands() []*discord.Command {
	return []*discord.Command{
		createKickCommand(),
		createBanCommand(),
		createUnbanCommand(),
		createMuteCommand(),
		createUnmuteCommand(),
		createTimeoutCommand(),
		createNickCommand(),
		createSlowmodeCommand(),
		createToggleCommand(lockToggle, "Lock a channel so @everyone can't send messages."),
		createToggleCommand(unlockToggle, "Unlock a channel."),
		createToggleCommand(hideToggle, "Hide a channel from @everyone."),
		createToggleCommand(unhideToggle, "Make a hidden channel visible again."),
		createPurgeCommand(),
		createWarnCommand(),
		createWarningsCommand(),
		createClearWarnCommand(),
	}
}

// Register registers all moderation commands as /mod subcommands
func Register(client *discord.ExtendedClient) {
	modGroup := client.CommandHandler.BuildCommandGroup(
		"mod",
		"Moderation commands",
		Commands()...,
	)
	client.CommandHandler.AddGlobalCommand(modGroup)
}
