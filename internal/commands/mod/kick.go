// Package mod - /mod kick, ban, unban and nick
package mod

import (
	"errors"
	"fmt"
	"strings"

	"github.com/PancyStudios/PancyModBot/pkg/discord"
	"github.com/PancyStudios/PancyModBot/pkg/models"
	"github.com/bwmarrin/discordgo"
)

func createKickCommand() *discord.Command {
	return discord.NewCommand(
		"kick",
		"Kick a member from the server.",
		"mod",
		kickHandler,
	).WithOptions(
		memberOption("Member to kick", true),
		reasonOption("Reason for kick"),
	).WithUserPermissions(discordgo.PermissionKickMembers).
		WithBotPermissions(discordgo.PermissionKickMembers).
		InGuildOnly()
}

func kickHandler(ctx *discord.CommandContext) error {
	user, err := target(ctx, "kick")
	if user == nil {
		return err
	}
	why, ok, err := reason(ctx)
	if !ok {
		return err
	}

	moderator := ctx.User()
	guildID := ctx.Interaction.GuildID
	if err := ctx.Session.GuildMemberDeleteWithReason(guildID, user.ID, auditReason(moderator, why)); err != nil {
		return ctx.RespondAPIError("kick", err)
	}

	ctx.Services().Publish(models.ActionKick, guildID, user.ID, moderator.ID, why)
	return ctx.RespondEmbed(actionEmbed("👢  Member Kicked", discord.ColorMod, user, moderator, why))
}

func createBanCommand() *discord.Command {
	minDays := 0.0
	return discord.NewCommand(
		"ban",
		"Ban a user from the server.",
		"mod",
		banHandler,
	).WithOptions(
		memberOption("Member to ban", false),
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "user_id",
			Description: "ID of a user who is not in the server",
		},
		reasonOption("Reason for ban"),
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionInteger,
			Name:        "delete_days",
			Description: "Days of messages to delete (0-7)",
			MinValue:    &minDays,
			MaxValue:    7,
		},
	).WithUserPermissions(discordgo.PermissionBanMembers).
		WithBotPermissions(discordgo.PermissionBanMembers).
		InGuildOnly()
}

// banTargetID picks the user to ban from the member option or the raw ID.
func banTargetID(memberID, rawID string) (string, error) {
	rawID = strings.TrimSpace(rawID)
	switch {
	case memberID != "":
		return memberID, nil
	case rawID == "":
		return "", errors.New("❌ You need to specify a member or a user ID.")
	case models.ParseSnowflake(rawID) == 0:
		return "", fmt.Errorf("❌ `%s` is not a valid member or member ID.", rawID)
	}
	return rawID, nil
}

func banHandler(ctx *discord.CommandContext) error {
	memberID := ""
	if u := ctx.GetUserOption("member"); u != nil {
		memberID = u.ID
	}
	userID, err := banTargetID(memberID, ctx.GetStringOption("user_id"))
	if err != nil {
		return ctx.RespondEphemeral(err.Error())
	}

	if ok, err := ctx.CheckTarget("ban", userID); !ok {
		return err
	}
	why, ok, err := reason(ctx)
	if !ok {
		return err
	}

	moderator := ctx.User()
	guildID := ctx.Interaction.GuildID
	days := int(ctx.GetIntOption("delete_days"))
	if err := ctx.Session.GuildBanCreateWithReason(guildID, userID, auditReason(moderator, why), days); err != nil {
		return ctx.RespondAPIError("ban", err)
	}

	ctx.Services().Publish(models.ActionBan, guildID, userID, moderator.ID, why)

	user, err := ctx.Session.User(userID)
	if err != nil {
		user = &discordgo.User{ID: userID, Username: userID}
	}
	embed := actionEmbed("🔨  Member Banned", discord.ColorMod, user, moderator, why)
	embed.Fields[0].Name = "👤 User"
	return ctx.RespondEmbed(embed)
}

func createUnbanCommand() *discord.Command {
	return discord.NewCommand(
		"unban",
		"Unban a user by their ID.",
		"mod",
		unbanHandler,
	).WithOptions(
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "user_id",
			Description: "The user ID to unban",
			Required:    true,
		},
		reasonOption("Reason for unban"),
	).WithUserPermissions(discordgo.PermissionBanMembers).
		WithBotPermissions(discordgo.PermissionBanMembers).
		InGuildOnly()
}

func unbanHandler(ctx *discord.CommandContext) error {
	userID, err := banTargetID("", ctx.GetStringOption("user_id"))
	if err != nil {
		return ctx.RespondEphemeral(err.Error())
	}
	why, ok, err := reason(ctx)
	if !ok {
		return err
	}

	moderator := ctx.User()
	guildID := ctx.Interaction.GuildID
	if err := ctx.Session.GuildBanDelete(guildID, userID, discordgo.WithAuditLogReason(auditReason(moderator, why))); err != nil {
		return ctx.RespondAPIError("unban", err)
	}

	ctx.Services().Publish(models.ActionUnban, guildID, userID, moderator.ID, why)

	name := userID
	var thumb *discordgo.MessageEmbedThumbnail
	if user, err := ctx.Session.User(userID); err == nil {
		name = user.String()
		thumb = discord.Thumbnail(user)
	}
	return ctx.RespondEmbed(&discordgo.MessageEmbed{
		Title:     "✅  Member Unbanned",
		Color:     discord.ColorSuccess,
		Thumbnail: thumb,
		Fields: []*discordgo.MessageEmbedField{
			discord.Field("👤 User", "`"+name+"`", true),
			discord.Field("🛡️ Moderator", moderator.Mention(), true),
			discord.Field("📝 Reason", why, false),
		},
		Footer: discord.UserFooter(userID),
	})
}

func createNickCommand() *discord.Command {
	return discord.NewCommand(
		"nick",
		"Change a member's nickname. No member = bot's nickname.",
		"mod",
		nickHandler,
	).WithOptions(
		memberOption("Member to rename (leave blank for bot)", false),
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "name",
			Description: "New nickname (leave blank to clear)",
			MaxLength:   32,
		},
	).WithUserPermissions(discordgo.PermissionManageNicknames).
		WithBotPermissions(discordgo.PermissionManageNicknames).
		InGuildOnly()
}

func nickHandler(ctx *discord.CommandContext) error {
	guildID := ctx.Interaction.GuildID
	name := strings.TrimSpace(ctx.GetStringOption("name"))

	user := ctx.GetUserOption("member")
	if user == nil {
		if err := ctx.Session.GuildMemberNickname(guildID, "@me", name); err != nil {
			return ctx.RespondAPIError("rename", err)
		}
		desc := "Nickname cleared."
		if name != "" {
			desc = fmt.Sprintf("Set to **%s**.", name)
		}
		return ctx.RespondEmbed(&discordgo.MessageEmbed{
			Title:       "✏️  Bot Nickname Updated",
			Description: desc,
			Color:       discord.ColorSuccess,
		})
	}

	if ok, err := ctx.CheckTarget("rename", user.ID); !ok {
		return err
	}

	old := user.Username
	if m := ctx.GetMemberOption("member"); m != nil && m.Nick != "" {
		old = m.Nick
	}

	audit := discordgo.WithAuditLogReason(auditReason(ctx.User(), "Nickname changed"))
	if err := ctx.Session.GuildMemberNickname(guildID, user.ID, name, audit); err != nil {
		return ctx.RespondAPIError("rename", err)
	}

	after := "*Cleared*"
	if name != "" {
		after = "`" + name + "`"
	}
	return ctx.RespondEmbed(&discordgo.MessageEmbed{
		Title:     "✏️  Nickname Updated",
		Color:     discord.ColorSuccess,
		Thumbnail: discord.Thumbnail(user),
		Fields: []*discordgo.MessageEmbedField{
			discord.Field("👤 Member", user.Mention(), true),
			discord.Field("Before", "`"+old+"`", true),
			discord.Field("After", after, true),
		},
	})
}
