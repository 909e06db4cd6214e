package models

import "time"

// Acciones de moderación publicadas por MQTT.
const (
	ActionKick      = "kick"
	ActionBan       = "ban"
	ActionUnban     = "unban"
	ActionMute      = "mute"
	ActionUnmute    = "unmute"
	ActionTimeout   = "timeout"
	ActionWarn      = "warn"
	ActionClearWarn = "clearwarn"
	ActionPurge     = "purge"
)

// ModerationEvent describe una acción de moderación ejecutada por el bot.
type ModerationEvent struct {
	Action      string    `json:"action"`
	GuildID     string    `json:"guildId"`
	UserID      string    `json:"userId,omitempty"`
	ModeratorID string    `json:"moderatorId"`
	Reason      string    `json:"reason,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}
