// Package mod - channel moderation: slowmode, lock, unlock, hide, unhide and purge
package mod

import (
	"fmt"
	"strings"
	"time"

	"github.com/PancyStudios/PancyModBot/pkg/discord"
	"github.com/PancyStudios/PancyModBot/pkg/models"
	"github.com/bwmarrin/discordgo"
)

const (
	maxSlowmode = 21600
	maxPurge    = 100
	// Discord refuses to bulk delete messages older than this.
	bulkDeleteMaxAge = 14 * 24 * time.Hour
)

func createSlowmodeCommand() *discord.Command {
	minSeconds := 0.0
	return discord.NewCommand(
		"slowmode",
		"Set slowmode for this channel. 0 to disable.",
		"mod",
		slowmodeHandler,
	).WithOptions(
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionInteger,
			Name:        "seconds",
			Description: "Delay in seconds (0 to disable, max 21600)",
			Required:    true,
			MinValue:    &minSeconds,
			MaxValue:    maxSlowmode,
		},
	).WithUserPermissions(discordgo.PermissionManageChannels).
		WithBotPermissions(discordgo.PermissionManageChannels).
		InGuildOnly()
}

// formatDelay renders seconds as "1h 2m 3s".
func formatDelay(seconds int) string {
	h, m, s := seconds/3600, seconds%3600/60, seconds%60
	var parts []string
	if h > 0 {
		parts = append(parts, fmt.Sprintf("%dh", h))
	}
	if m > 0 {
		parts = append(parts, fmt.Sprintf("%dm", m))
	}
	if s > 0 {
		parts = append(parts, fmt.Sprintf("%ds", s))
	}
	return strings.Join(parts, " ")
}

func slowmodeHandler(ctx *discord.CommandContext) error {
	seconds := int(ctx.GetIntOption("seconds"))
	if seconds < 0 || seconds > maxSlowmode {
		return ctx.RespondEphemeral("❌ Slowmode must be between **0** and **21600** seconds.")
	}

	channelID := ctx.Interaction.ChannelID
	if _, err := ctx.Session.ChannelEdit(channelID, &discordgo.ChannelEdit{RateLimitPerUser: &seconds}); err != nil {
		return ctx.RespondAPIError("set slowmode on", err)
	}

	mention := "<#" + channelID + ">"
	if seconds == 0 {
		return ctx.RespondEmbed(&discordgo.MessageEmbed{
			Title:       "🐇  Slowmode Disabled",
			Description: fmt.Sprintf("Slowmode removed from %s.", mention),
			Color:       discord.ColorSuccess,
		})
	}
	return ctx.RespondEmbed(&discordgo.MessageEmbed{
		Title: "🐢  Slowmode Set",
		Color: discord.ColorInfo,
		Fields: []*discordgo.MessageEmbedField{
			discord.Field("📺 Channel", mention, true),
			discord.Field("⏱️ Delay", "`"+formatDelay(seconds)+"`", true),
			discord.Field("🛡️ Set by", ctx.User().Mention(), true),
		},
	})
}

// channelToggle describes one of lock/unlock/hide/unhide.
type channelToggle struct {
	name       string
	permission int64
	deny       bool
	// alreadyMsg is shown when the channel is already in the requested state.
	alreadyMsg string
	title      string
	color      int
}

var (
	lockToggle = channelToggle{
		name: "lock", permission: discordgo.PermissionSendMessages, deny: true,
		alreadyMsg: "%s is already locked.", title: "🔒  Channel Locked", color: discord.ColorMod,
	}
	unlockToggle = channelToggle{
		name: "unlock", permission: discordgo.PermissionSendMessages, deny: false,
		alreadyMsg: "%s is not locked.", title: "🔓  Channel Unlocked", color: discord.ColorSuccess,
	}
	hideToggle = channelToggle{
		name: "hide", permission: discordgo.PermissionViewChannel, deny: true,
		alreadyMsg: "%s is already hidden.", title: "👁️  Channel Hidden", color: discord.ColorMod,
	}
	unhideToggle = channelToggle{
		name: "unhide", permission: discordgo.PermissionViewChannel, deny: false,
		alreadyMsg: "%s is not hidden.", title: "👁️  Channel Visible", color: discord.ColorSuccess,
	}
)

// everyoneOverwrite returns the @everyone overwrite of a channel, or an empty one.
func everyoneOverwrite(ch *discordgo.Channel, guildID string) *discordgo.PermissionOverwrite {
	for _, ow := range ch.PermissionOverwrites {
		if ow.ID == guildID && ow.Type == discordgo.PermissionOverwriteTypeRole {
			return ow
		}
	}
	return &discordgo.PermissionOverwrite{ID: guildID, Type: discordgo.PermissionOverwriteTypeRole}
}

// applyToggle computes the new overwrite bits. Unsetting a deny goes back to
// inherit, never to an explicit allow. changed is false when nothing would change.
func applyToggle(ow *discordgo.PermissionOverwrite, t channelToggle) (allow, deny int64, changed bool) {
	denied := ow.Deny&t.permission != 0
	if t.deny == denied {
		return ow.Allow, ow.Deny, false
	}
	if t.deny {
		return ow.Allow &^ t.permission, ow.Deny | t.permission, true
	}
	return ow.Allow, ow.Deny &^ t.permission, true
}

func createToggleCommand(t channelToggle, description string) *discord.Command {
	return discord.NewCommand(
		t.name,
		description,
		"mod",
		func(ctx *discord.CommandContext) error { return toggleHandler(ctx, t) },
	).WithOptions(
		channelOption("Channel (default: current channel)"),
		reasonOption("Reason"),
	).WithUserPermissions(discordgo.PermissionManageChannels).
		WithBotPermissions(discordgo.PermissionManageRoles).
		InGuildOnly()
}

func toggleHandler(ctx *discord.CommandContext, t channelToggle) error {
	why, ok, err := reason(ctx)
	if !ok {
		return err
	}

	guildID := ctx.Interaction.GuildID
	channelID := ctx.Interaction.ChannelID
	if opt := ctx.GetOption("channel"); opt != nil {
		if id, _ := opt.Value.(string); id != "" {
			channelID = id
		}
	}

	ch, err := ctx.Session.State.Channel(channelID)
	if err != nil {
		if ch, err = ctx.Session.Channel(channelID); err != nil {
			return ctx.RespondAPIError(t.name, err)
		}
	}

	ow := everyoneOverwrite(ch, guildID)
	allow, deny, changed := applyToggle(ow, t)
	if !changed {
		return ctx.RespondEphemeral("❌ " + fmt.Sprintf(t.alreadyMsg, ch.Mention()))
	}

	moderator := ctx.User()
	audit := discordgo.WithAuditLogReason(auditReason(moderator, why))
	if allow == 0 && deny == 0 {
		err = ctx.Session.ChannelPermissionDelete(channelID, guildID, audit)
	} else {
		err = ctx.Session.ChannelPermissionSet(channelID, guildID, discordgo.PermissionOverwriteTypeRole, allow, deny, audit)
	}
	if err != nil {
		return ctx.RespondAPIError(t.name, err)
	}

	return ctx.RespondEmbed(&discordgo.MessageEmbed{
		Title: t.title,
		Color: t.color,
		Fields: []*discordgo.MessageEmbedField{
			discord.Field("📺 Channel", ch.Mention(), true),
			discord.Field("🛡️ Moderator", moderator.Mention(), true),
			discord.Field("📝 Reason", why, false),
		},
	})
}

func createPurgeCommand() *discord.Command {
	minAmount := 1.0
	return discord.NewCommand(
		"purge",
		"Delete a number of messages from this channel.",
		"mod",
		purgeHandler,
	).WithOptions(
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionInteger,
			Name:        "amount",
			Description: "Number of messages to delete (1-100)",
			MinValue:    &minAmount,
			MaxValue:    maxPurge,
		},
		memberOption("Only delete messages from this member", false),
	).WithUserPermissions(discordgo.PermissionManageMessages).
		WithBotPermissions(discordgo.PermissionManageMessages | discordgo.PermissionReadMessageHistory).
		InGuildOnly().
		WithCooldown(5 * time.Second)
}

// deletableIDs returns the IDs of messages young enough to be bulk deleted,
// optionally restricted to one author.
func deletableIDs(msgs []*discordgo.Message, authorID string, now time.Time) []string {
	ids := make([]string, 0, len(msgs))
	for _, m := range msgs {
		if now.Sub(m.Timestamp) >= bulkDeleteMaxAge {
			continue
		}
		if authorID != "" && (m.Author == nil || m.Author.ID != authorID) {
			continue
		}
		ids = append(ids, m.ID)
	}
	return ids
}

func purgeHandler(ctx *discord.CommandContext) error {
	amount := 10
	if ctx.HasOption("amount") {
		amount = int(ctx.GetIntOption("amount"))
	}
	if amount < 1 || amount > maxPurge {
		return ctx.RespondEphemeral("❌ Amount must be between 1 and 100.")
	}

	authorID := ""
	if u := ctx.GetUserOption("member"); u != nil {
		authorID = u.ID
	}

	if err := ctx.DeferEphemeral(); err != nil {
		return err
	}

	channelID := ctx.Interaction.ChannelID
	msgs, err := ctx.Session.ChannelMessages(channelID, amount, "", "", "")
	if err != nil {
		return ctx.RespondAPIError("read messages in", err)
	}

	ids := deletableIDs(msgs, authorID, time.Now())
	if err := ctx.Session.ChannelMessagesBulkDelete(channelID, ids); err != nil {
		return ctx.RespondAPIError("delete messages in", err)
	}

	ctx.Services().Publish(models.ActionPurge, ctx.Interaction.GuildID, authorID, ctx.User().ID,
		fmt.Sprintf("%d messages in %s", len(ids), channelID))

	return ctx.RespondEmbed(&discordgo.MessageEmbed{
		Title:       "🗑️  Messages Purged",
		Description: fmt.Sprintf("Deleted %s.", plural(len(ids), "message")),
		Color:       discord.ColorSuccess,
	})
}
