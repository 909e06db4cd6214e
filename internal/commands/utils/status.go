package utils

import (
	"context"
	"fmt"

	"github.com/PancyStudios/PancyModBot/pkg/database"
	"github.com/PancyStudios/PancyModBot/pkg/discord"
)

// createStatusCommand creates the /utils status subcommand
func createStatusCommand() *discord.Command {
	return discord.NewCommand(
		"status",
		"Show the bot's status.",
		"utils",
		statusHandler,
	)
}

// databaseStatus describes the Mongo connection, which only exists for the mongo backend.
func databaseStatus(ctx context.Context, db *database.Database) string {
	if db == nil {
		return "⚪ Not configured"
	}
	return db.Status(ctx).Label()
}

// statusHandler handles the /utils status command
func statusHandler(ctx *discord.CommandContext) error {
	backend := "memory"
	if cfg := ctx.Services().Config; cfg != nil && cfg.StorageBackend != "" {
		backend = cfg.StorageBackend
	}

	return ctx.Reply(fmt.Sprintf(
		"📊 **Bot Status**\n"+
			"• Bot: 🟢 Online\n"+
			"• Storage: `%s`\n"+
			"• Database: %s\n"+
			"• Servers: %d",
		backend,
		databaseStatus(ctx.Context(), database.Get()),
		ctx.Client.GuildCount(),
	))
}
