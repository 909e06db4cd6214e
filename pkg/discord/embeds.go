package discord

import (
	"time"

	"github.com/bwmarrin/discordgo"
)

// Embed colours shared by commands and log listeners.
const (
	ColorSuccess = 0x2ECC71
	ColorError   = 0xE74C3C
	ColorWarn    = 0xE67E22
	ColorInfo    = 0x5865F2
	ColorGold    = 0xF1C40F
	ColorMod     = 0xE74C3C
)

// ErrorEmbed renders a one-line failure. text carries its own emoji.
func ErrorEmbed(text string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{Description: text, Color: ColorError}
}

// Field is a shorthand for an embed field.
func Field(name, value string, inline bool) *discordgo.MessageEmbedField {
	return &discordgo.MessageEmbedField{Name: name, Value: value, Inline: inline}
}

// UserFooter is the "User ID: …" footer put under member related embeds.
func UserFooter(userID string) *discordgo.MessageEmbedFooter {
	return &discordgo.MessageEmbedFooter{Text: "User ID: " + userID}
}

// Thumbnail returns the thumbnail of a user's avatar.
func Thumbnail(u *discordgo.User) *discordgo.MessageEmbedThumbnail {
	if u == nil {
		return nil
	}
	return &discordgo.MessageEmbedThumbnail{URL: u.AvatarURL("")}
}

// Author renders u as the embed author.
func Author(u *discordgo.User) *discordgo.MessageEmbedAuthor {
	if u == nil {
		return nil
	}
	return &discordgo.MessageEmbedAuthor{Name: u.String(), IconURL: u.AvatarURL("")}
}

// Timestamp formats t for MessageEmbed.Timestamp.
func Timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
