package discord

import (
	"github.com/PancyStudios/PancyModBot/pkg/permissions"
	"github.com/bwmarrin/discordgo"
)

// FetchMember returns a guild member from the state cache, falling back to REST.
func FetchMember(s *discordgo.Session, guildID, userID string) (*discordgo.Member, error) {
	if s.State != nil {
		if m, err := s.State.Member(guildID, userID); err == nil {
			return m, nil
		}
	}
	return s.GuildMember(guildID, userID)
}

// FetchGuild returns a guild from the state cache, falling back to REST.
func FetchGuild(s *discordgo.Session, guildID string) (*discordgo.Guild, error) {
	if s.State != nil {
		if g, err := s.State.Guild(guildID); err == nil {
			return g, nil
		}
	}
	return s.Guild(guildID)
}

// FetchRoles returns the roles of a guild.
func FetchRoles(s *discordgo.Session, guildID string) ([]*discordgo.Role, error) {
	if s.State != nil {
		if g, err := s.State.Guild(guildID); err == nil && len(g.Roles) > 0 {
			return g.Roles, nil
		}
	}
	return s.GuildRoles(guildID)
}

// SubjectOf builds the permission subject of a member. A nil member has no roles.
func SubjectOf(userID string, member *discordgo.Member, roles []*discordgo.Role) permissions.Subject {
	if member == nil {
		return permissions.Subject{ID: userID}
	}
	return permissions.Subject{
		ID:      userID,
		TopRole: permissions.TopRolePosition(member.Roles, roles),
	}
}

// ResolveSubject looks up a member and returns its subject. Users that are not
// in the guild rank below @everyone and come back with a nil member.
func ResolveSubject(s *discordgo.Session, guildID, userID string) (permissions.Subject, *discordgo.Member, error) {
	roles, err := FetchRoles(s, guildID)
	if err != nil {
		return permissions.Subject{}, nil, err
	}
	member, err := FetchMember(s, guildID, userID)
	if err != nil {
		if IsNotFound(err) {
			return permissions.Subject{ID: userID, TopRole: -1}, nil, nil
		}
		return permissions.Subject{}, nil, err
	}
	return SubjectOf(userID, member, roles), member, nil
}

// MemberPermissions computes a member's guild-wide permissions from its roles.
// The guild owner has every permission.
func MemberPermissions(s *discordgo.Session, guildID string, member *discordgo.Member) (int64, error) {
	guild, err := FetchGuild(s, guildID)
	if err != nil {
		return 0, err
	}
	if member.User != nil && member.User.ID == guild.OwnerID {
		return discordgo.PermissionAll, nil
	}
	roles := guild.Roles
	if len(roles) == 0 {
		if roles, err = s.GuildRoles(guildID); err != nil {
			return 0, err
		}
	}
	return permissions.ComputeGuildPermissions(guildID, member.Roles, roles), nil
}

// CheckTarget decides whether the invoking member may run command against
// targetID. A refusal is answered to the user and reported as false.
func (ctx *CommandContext) CheckTarget(command, targetID string) (bool, error) {
	guildID := ctx.Interaction.GuildID
	guild, err := FetchGuild(ctx.Session, guildID)
	if err != nil {
		return false, ctx.RespondAPIError(command, err)
	}

	roles := guild.Roles
	if len(roles) == 0 {
		if roles, err = ctx.Session.GuildRoles(guildID); err != nil {
			return false, ctx.RespondAPIError(command, err)
		}
	}

	actor := SubjectOf(ctx.User().ID, ctx.Member(), roles)
	target, _, err := ResolveSubject(ctx.Session, guildID, targetID)
	if err != nil {
		return false, ctx.RespondAPIError(command, err)
	}

	outcome := ctx.Services().Permissions.MayTarget(actor, target, ctx.Session.State.User.ID, guild.OwnerID)
	if outcome != permissions.Allowed {
		return false, ctx.RespondEphemeral(outcome.Message(command))
	}
	return true, nil
}
