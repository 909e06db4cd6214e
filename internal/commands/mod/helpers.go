package mod

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/PancyStudios/PancyModBot/pkg/discord"
	"github.com/bwmarrin/discordgo"
)

const (
	maxReasonLength = 512
	defaultReason   = "No reason provided"
)

// parseReason validates a free-form reason and applies the default.
func parseReason(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if n := utf8.RuneCountInString(raw); n > maxReasonLength {
		return "", fmt.Errorf("❌ Reason too long (%d/%d chars).", n, maxReasonLength)
	}
	if raw == "" {
		return defaultReason, nil
	}
	return raw, nil
}

// auditReason is the reason recorded in the guild audit log.
func auditReason(moderator *discordgo.User, reason string) string {
	return fmt.Sprintf("[ %s ] %s", moderator.String(), reason)
}

// reason reads the "reason" option. An invalid reason is answered and reported as ok=false.
func reason(ctx *discord.CommandContext) (string, bool, error) {
	r, err := parseReason(ctx.GetStringOption("reason"))
	if err != nil {
		return "", false, ctx.RespondEphemeral(err.Error())
	}
	return r, true, nil
}

func memberOption(description string, required bool) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionUser,
		Name:        "member",
		Description: description,
		Required:    required,
	}
}

func reasonOption(description string) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        "reason",
		Description: description,
		MaxLength:   maxReasonLength,
	}
}

func channelOption(description string) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:         discordgo.ApplicationCommandOptionChannel,
		Name:         "channel",
		Description:  description,
		ChannelTypes: []discordgo.ChannelType{discordgo.ChannelTypeGuildText},
	}
}

// target reads the "member" option and checks the invoker may act on it.
// It returns nil when the command was already answered.
func target(ctx *discord.CommandContext, command string) (*discordgo.User, error) {
	user := ctx.GetUserOption("member")
	if user == nil {
		return nil, ctx.RespondEphemeral("❌ You need to specify a member.")
	}
	ok, err := ctx.CheckTarget(command, user.ID)
	if !ok {
		return nil, err
	}
	return user, nil
}

// actionEmbed is the confirmation shown after a member-level action.
func actionEmbed(title string, color int, user, moderator *discordgo.User, reason string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:     title,
		Color:     color,
		Thumbnail: discord.Thumbnail(user),
		Fields: []*discordgo.MessageEmbedField{
			discord.Field("👤 Member", fmt.Sprintf("%s\n`%s`", user.Mention(), user.String()), true),
			discord.Field("🛡️ Moderator", moderator.Mention(), true),
			discord.Field("📝 Reason", reason, false),
		},
		Footer: discord.UserFooter(user.ID),
	}
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("**%d** %s", n, word)
	}
	return fmt.Sprintf("**%d** %ss", n, word)
}
