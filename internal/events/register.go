// Package events provides a registry for organizing bot events.
// Events are organized by category (guild, member, message, logging, etc.)
package events

import (
	"github.com/PancyStudios/PancyModBot/pkg/discord"
	"github.com/PancyStudios/PancyModBot/pkg/logger"
)

// RegisterAll registers all events with the Discord client.
// client.Services must be set before calling it.
func RegisterAll(client *discord.ExtendedClient) {
	logger.System("📋 Registrando eventos del bot...", "Events")

	// Presence
	RegisterReadyEvent(client)
	RegisterShardEvents(client)

	// Join message
	RegisterGuildEvents(client)

	// Autorole
	RegisterMemberEvents(client)

	// Prefix commands and snipe
	RegisterMessageEvents(client)

	// Log channels
	RegisterLoggingEvents(client)

	logger.Success("✅ Todos los eventos registrados correctamente", "Events")
}
