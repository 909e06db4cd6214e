package discord

import (
	"errors"
	"fmt"
	"strings"

	"github.com/PancyStudios/PancyModBot/pkg/cooldown"
	"github.com/PancyStudios/PancyModBot/pkg/logger"
	"github.com/bwmarrin/discordgo"
)

// Refusal stops a command; its text is shown to the user.
type Refusal string

func (r Refusal) Error() string { return string(r) }

// Middleware runs before a command. Returning an error stops the command; a
// Refusal is answered ephemerally.
type Middleware func(ctx *CommandContext, cmd *Command) error

// replyRefusal answers err when it is a Refusal and reports whether it did.
func replyRefusal(ctx *CommandContext, err error) bool {
	var r Refusal
	if !errors.As(err, &r) {
		return false
	}
	if replyErr := ctx.ReplyEphemeral(r.Error()); replyErr != nil {
		logger.Debug("No se pudo responder el rechazo: "+replyErr.Error(), "Middleware")
	}
	return true
}

// defaultMiddlewares run in order before every command.
var defaultMiddlewares = []Middleware{
	guildOnlyMiddleware,
	ownerOnlyMiddleware,
	userPermissionsMiddleware,
	botPermissionsMiddleware,
	cooldownMiddleware,
}

const (
	msgGuildOnly         = "❌ This command only works in a server."
	msgOwnerOnly         = "❌ This command is reserved for the bot owner."
	msgMissingPermission = "❌ You don't have permission to use this command."
)

func guildOnlyMiddleware(ctx *CommandContext, cmd *Command) error {
	if cmd.GuildOnly && ctx.Interaction.GuildID == "" {
		return Refusal(msgGuildOnly)
	}
	return nil
}

func ownerOnlyMiddleware(ctx *CommandContext, cmd *Command) error {
	if !cmd.OwnerOnly {
		return nil
	}
	if !ctx.Services().Permissions.IsPrivileged(ctx.User().ID) {
		logger.Warn(fmt.Sprintf("Usuario %s intentó usar el comando de owner %s", ctx.User().ID, ctx.CommandName), "Middleware")
		return Refusal(msgOwnerOnly)
	}
	return nil
}

func userPermissionsMiddleware(ctx *CommandContext, cmd *Command) error {
	if cmd.UserPermissions == 0 {
		return nil
	}
	if !ctx.Services().Permissions.HasPermission(ctx.User().ID, ctx.MemberPermissions(), cmd.UserPermissions) {
		return Refusal(msgMissingPermission)
	}
	return nil
}

func botPermissionsMiddleware(ctx *CommandContext, cmd *Command) error {
	if cmd.BotPermissions == 0 || ctx.Interaction.GuildID == "" {
		return nil
	}
	granted := ctx.Interaction.AppPermissions
	if granted&discordgo.PermissionAdministrator != 0 {
		return nil
	}
	if missing := cmd.BotPermissions &^ granted; missing != 0 {
		return Refusal(fmt.Sprintf("❌ I'm missing permissions: %s.", PermissionNames(missing)))
	}
	return nil
}

func cooldownMiddleware(ctx *CommandContext, cmd *Command) error {
	if cmd.Cooldown <= 0 {
		return nil
	}
	name := ctx.CommandName
	if name == "" {
		name = cmd.Name
	}
	ok, remaining := ctx.Services().Cooldowns.Try(ctx.User().ID, name, cmd.Cooldown)
	if !ok {
		return Refusal(cooldown.Message(remaining))
	}
	return nil
}

var permissionNames = []struct {
	flag int64
	name string
}{
	{discordgo.PermissionAdministrator, "Administrator"},
	{discordgo.PermissionManageGuild, "Manage Server"},
	{discordgo.PermissionManageRoles, "Manage Roles"},
	{discordgo.PermissionManageChannels, "Manage Channels"},
	{discordgo.PermissionManageMessages, "Manage Messages"},
	{discordgo.PermissionKickMembers, "Kick Members"},
	{discordgo.PermissionBanMembers, "Ban Members"},
	{discordgo.PermissionModerateMembers, "Timeout Members"},
	{discordgo.PermissionManageNicknames, "Manage Nicknames"},
	{discordgo.PermissionViewAuditLogs, "View Audit Log"},
	{discordgo.PermissionSendMessages, "Send Messages"},
	{discordgo.PermissionEmbedLinks, "Embed Links"},
	{discordgo.PermissionAttachFiles, "Attach Files"},
	{discordgo.PermissionAddReactions, "Add Reactions"},
	{discordgo.PermissionReadMessageHistory, "Read Message History"},
}

// PermissionNames lists the human readable names of the flags set in perms.
func PermissionNames(perms int64) string {
	var names []string
	for _, p := range permissionNames {
		if perms&p.flag != 0 {
			names = append(names, p.name)
			perms &^= p.flag
		}
	}
	if perms != 0 {
		names = append(names, fmt.Sprintf("0x%x", perms))
	}
	return strings.Join(names, ", ")
}
