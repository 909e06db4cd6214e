// Package permissions decides who may run privileged commands and who may be
// targeted by a moderation action.
package permissions

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// Checker holds the identity of the bot owner.
type Checker struct {
	OwnerID string
}

// New returns a Checker for the given owner.
func New(ownerID string) *Checker {
	return &Checker{OwnerID: ownerID}
}

// IsPrivileged reports whether userID is the configured bot owner.
func (c *Checker) IsPrivileged(userID string) bool {
	return c.OwnerID != "" && userID == c.OwnerID
}

// HasPermission reports whether a user with the granted channel permissions may
// use a command that needs required. The owner always may, and Administrator
// satisfies every flag.
func (c *Checker) HasPermission(userID string, granted, required int64) bool {
	if c.IsPrivileged(userID) {
		return true
	}
	if granted&discordgo.PermissionAdministrator != 0 {
		return true
	}
	return granted&required == required
}

// Subject is a member taking part in a moderation action.
type Subject struct {
	ID      string
	TopRole int
}

// Outcome is the result of MayTarget.
type Outcome int

const (
	Allowed Outcome = iota
	ActorEqualsTarget
	TargetIsBot
	TargetIsConfiguredOwner
	TargetIsGuildOwner
	EqualRank
	LowerRank
)

func (o Outcome) String() string {
	switch o {
	case Allowed:
		return "Allowed"
	case ActorEqualsTarget:
		return "ActorEqualsTarget"
	case TargetIsBot:
		return "TargetIsBot"
	case TargetIsConfiguredOwner:
		return "TargetIsConfiguredOwner"
	case TargetIsGuildOwner:
		return "TargetIsGuildOwner"
	case EqualRank:
		return "EqualRank"
	case LowerRank:
		return "LowerRank"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// Message returns the refusal shown to the actor, or "" for Allowed.
func (o Outcome) Message(command string) string {
	switch o {
	case ActorEqualsTarget:
		return fmt.Sprintf("❌ You can't %s yourself.", command)
	case TargetIsBot:
		return "❌ Nice try, but I won't do that to myself."
	case TargetIsConfiguredOwner:
		return fmt.Sprintf("❌ I can't %s my owner.", command)
	case TargetIsGuildOwner:
		return fmt.Sprintf("❌ You can't %s the server owner.", command)
	case EqualRank:
		return fmt.Sprintf("❌ You can't %s someone with the same role as you.", command)
	case LowerRank:
		return fmt.Sprintf("❌ You can't %s someone with a higher role than you.", command)
	default:
		return ""
	}
}

// MayTarget decides whether actor may moderate target. Checks run in a fixed
// order and the first refusal wins.
func (c *Checker) MayTarget(actor, target Subject, botID, guildOwnerID string) Outcome {
	switch {
	case actor.ID == target.ID:
		return ActorEqualsTarget
	case botID != "" && target.ID == botID:
		return TargetIsBot
	case guildOwnerID != "" && actor.ID == guildOwnerID:
		return Allowed
	case c.IsPrivileged(target.ID) && !c.IsPrivileged(actor.ID):
		return TargetIsConfiguredOwner
	case guildOwnerID != "" && target.ID == guildOwnerID:
		return TargetIsGuildOwner
	case actor.TopRole == target.TopRole:
		return EqualRank
	case actor.TopRole < target.TopRole:
		return LowerRank
	}
	return Allowed
}

// TopRolePosition returns the highest position among roleIDs, or 0 when the
// member only has @everyone.
func TopRolePosition(roleIDs []string, guildRoles []*discordgo.Role) int {
	byID := make(map[string]*discordgo.Role, len(guildRoles))
	for _, r := range guildRoles {
		if r != nil {
			byID[r.ID] = r
		}
	}

	top := 0
	for _, id := range roleIDs {
		if r, ok := byID[id]; ok && r.Position > top {
			top = r.Position
		}
	}
	return top
}

// ComputeGuildPermissions ORs the permissions of @everyone and the member's roles.
func ComputeGuildPermissions(guildID string, roleIDs []string, guildRoles []*discordgo.Role) int64 {
	held := make(map[string]bool, len(roleIDs)+1)
	held[guildID] = true
	for _, id := range roleIDs {
		held[id] = true
	}

	var perms int64
	for _, r := range guildRoles {
		if r != nil && held[r.ID] {
			perms |= r.Permissions
		}
	}
	if perms&discordgo.PermissionAdministrator != 0 {
		return discordgo.PermissionAll
	}
	return perms
}
