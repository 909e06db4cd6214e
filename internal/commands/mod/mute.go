// Package mod - /mod mute, unmute and timeout
package mod

import (
	"fmt"
	"time"

	"github.com/PancyStudios/PancyModBot/pkg/discord"
	"github.com/PancyStudios/PancyModBot/pkg/models"
	"github.com/bwmarrin/discordgo"
)

// MutedRoleName is the role used when no muted role ID is configured.
const MutedRoleName = "Muted"

// maxTimeout is the longest timeout Discord accepts.
const maxTimeout = 28 * 24 * time.Hour

const msgNoMutedRole = "❌ No **Muted** role found. Create one named exactly `Muted`."

// FindMutedRole returns the configured role, or the role named "Muted".
func FindMutedRole(roles []*discordgo.Role, configuredID string) *discordgo.Role {
	for _, r := range roles {
		if configuredID != "" && r.ID == configuredID {
			return r
		}
	}
	if configuredID != "" {
		return nil
	}
	for _, r := range roles {
		if r.Name == MutedRoleName {
			return r
		}
	}
	return nil
}

func createMuteCommand() *discord.Command {
	return discord.NewCommand(
		"mute",
		"Mute a member (requires a 'Muted' role).",
		"mod",
		func(ctx *discord.CommandContext) error { return muteHandler(ctx, true) },
	).WithOptions(
		memberOption("Member to mute", true),
		reasonOption("Reason for mute"),
	).WithUserPermissions(discordgo.PermissionManageRoles).
		WithBotPermissions(discordgo.PermissionManageRoles).
		InGuildOnly()
}

func createUnmuteCommand() *discord.Command {
	return discord.NewCommand(
		"unmute",
		"Unmute a member.",
		"mod",
		func(ctx *discord.CommandContext) error { return muteHandler(ctx, false) },
	).WithOptions(
		memberOption("Member to unmute", true),
		reasonOption("Reason for unmute"),
	).WithUserPermissions(discordgo.PermissionManageRoles).
		WithBotPermissions(discordgo.PermissionManageRoles).
		InGuildOnly()
}

func muteHandler(ctx *discord.CommandContext, mute bool) error {
	command, action := "unmute", models.ActionUnmute
	if mute {
		command, action = "mute", models.ActionMute
	}

	user, err := target(ctx, command)
	if user == nil {
		return err
	}
	why, ok, err := reason(ctx)
	if !ok {
		return err
	}

	guildID := ctx.Interaction.GuildID
	roles, err := discord.FetchRoles(ctx.Session, guildID)
	if err != nil {
		return ctx.RespondAPIError(command, err)
	}
	role := FindMutedRole(roles, ctx.Services().Config.MutedRoleID)
	if role == nil {
		return ctx.RespondEphemeral(msgNoMutedRole)
	}

	moderator := ctx.User()
	audit := discordgo.WithAuditLogReason(auditReason(moderator, why))
	if mute {
		err = ctx.Session.GuildMemberRoleAdd(guildID, user.ID, role.ID, audit)
	} else {
		err = ctx.Session.GuildMemberRoleRemove(guildID, user.ID, role.ID, audit)
	}
	if err != nil {
		return ctx.RespondAPIError(command, err)
	}

	ctx.Services().Publish(action, guildID, user.ID, moderator.ID, why)
	if mute {
		return ctx.RespondEmbed(actionEmbed("🔇  Member Muted", discord.ColorWarn, user, moderator, why))
	}
	return ctx.RespondEmbed(actionEmbed("🔊  Member Unmuted", discord.ColorSuccess, user, moderator, why))
}

func createTimeoutCommand() *discord.Command {
	minMinutes := 0.0
	return discord.NewCommand(
		"timeout",
		"Time out a member. 0 minutes removes the timeout.",
		"mod",
		timeoutHandler,
	).WithOptions(
		memberOption("Member to time out", true),
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionInteger,
			Name:        "minutes",
			Description: "Duration in minutes (max 40320)",
			Required:    true,
			MinValue:    &minMinutes,
			MaxValue:    maxTimeout.Minutes(),
		},
		reasonOption("Reason for timeout"),
	).WithUserPermissions(discordgo.PermissionModerateMembers).
		WithBotPermissions(discordgo.PermissionModerateMembers).
		InGuildOnly()
}

// timeoutUntil returns the end of a timeout, or nil to lift it.
func timeoutUntil(now time.Time, minutes int64) (*time.Time, error) {
	d := time.Duration(minutes) * time.Minute
	switch {
	case minutes < 0 || d > maxTimeout:
		return nil, fmt.Errorf("❌ Timeout must be between **0** and **%d** minutes.", int(maxTimeout.Minutes()))
	case minutes == 0:
		return nil, nil
	}
	until := now.Add(d)
	return &until, nil
}

func timeoutHandler(ctx *discord.CommandContext) error {
	user, err := target(ctx, "timeout")
	if user == nil {
		return err
	}
	why, ok, err := reason(ctx)
	if !ok {
		return err
	}

	minutes := ctx.GetIntOption("minutes")
	until, err := timeoutUntil(time.Now(), minutes)
	if err != nil {
		return ctx.RespondEphemeral(err.Error())
	}

	moderator := ctx.User()
	guildID := ctx.Interaction.GuildID
	audit := discordgo.WithAuditLogReason(auditReason(moderator, why))
	if err := ctx.Session.GuildMemberTimeout(guildID, user.ID, until, audit); err != nil {
		return ctx.RespondAPIError("timeout", err)
	}

	ctx.Services().Publish(models.ActionTimeout, guildID, user.ID, moderator.ID, why)

	if until == nil {
		return ctx.RespondEmbed(actionEmbed("⏱️  Timeout Removed", discord.ColorSuccess, user, moderator, why))
	}
	embed := actionEmbed("⏱️  Member Timed Out", discord.ColorWarn, user, moderator, why)
	embed.Fields = append(embed.Fields, discord.Field("⏳ Until", fmt.Sprintf("<t:%d:F>", until.Unix()), false))
	return ctx.RespondEmbed(embed)
}
