// Package commands provides a registry for organizing bot commands.
// Commands are organized in subdirectories by category (mod, logs, utils, etc.)
package commands

import (
	"github.com/PancyStudios/PancyModBot/internal/commands/admin"
	"github.com/PancyStudios/PancyModBot/internal/commands/encoding"
	"github.com/PancyStudios/PancyModBot/internal/commands/extras"
	"github.com/PancyStudios/PancyModBot/internal/commands/fun"
	"github.com/PancyStudios/PancyModBot/internal/commands/logs"
	"github.com/PancyStudios/PancyModBot/internal/commands/mod"
	"github.com/PancyStudios/PancyModBot/internal/commands/utils"
	"github.com/PancyStudios/PancyModBot/pkg/discord"
)

// RegisterAll registers all commands with the Discord client
func RegisterAll(client *discord.ExtendedClient) {
	// Moderation (/mod kick, /mod ban, /mod warn, ...)
	mod.Register(client)

	// Log channel (/logs set, /logs unset, /logs status)
	logs.Register(client)

	// Owner tools
	admin.Register(client)

	utils.Register(client)

	// /encode and /decode
	encoding.Register(client)

	fun.Register(client)
	extras.Register(client)
}
