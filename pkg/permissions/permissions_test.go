package permissions

import (
	"testing"

	"github.com/bwmarrin/discordgo"
)

const (
	ownerID      = "1"
	botID        = "2"
	guildOwnerID = "3"
)

func TestIsPrivileged(t *testing.T) {
	c := New(ownerID)

	if !c.IsPrivileged(ownerID) {
		t.Errorf("IsPrivileged(%v) = false, want true", ownerID)
	}
	if c.IsPrivileged("9") {
		t.Error("IsPrivileged(9) = true, want false")
	}
	if New("").IsPrivileged("") {
		t.Error("IsPrivileged with no owner configured should be false")
	}
}

func TestHasPermission(t *testing.T) {
	c := New(ownerID)

	tests := []struct {
		name     string
		userID   string
		granted  int64
		required int64
		want     bool
	}{
		{"owner without perms", ownerID, 0, discordgo.PermissionBanMembers, true},
		{"all flags granted", "9", discordgo.PermissionKickMembers | discordgo.PermissionBanMembers, discordgo.PermissionKickMembers, true},
		{"missing one flag", "9", discordgo.PermissionKickMembers, discordgo.PermissionKickMembers | discordgo.PermissionBanMembers, false},
		{"nothing granted", "9", 0, discordgo.PermissionManageGuild, false},
		{"administrator", "9", discordgo.PermissionAdministrator, discordgo.PermissionManageGuild, true},
		{"nothing required", "9", 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.HasPermission(tt.userID, tt.granted, tt.required); got != tt.want {
				t.Errorf("HasPermission() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMayTarget(t *testing.T) {
	c := New(ownerID)

	tests := []struct {
		name   string
		actor  Subject
		target Subject
		want   Outcome
	}{
		{"self", Subject{"10", 5}, Subject{"10", 5}, ActorEqualsTarget},
		{"bot", Subject{"10", 5}, Subject{botID, 1}, TargetIsBot},
		{"guild owner acts on higher role", Subject{guildOwnerID, 0}, Subject{"11", 9}, Allowed},
		{"guild owner acts on bot owner", Subject{guildOwnerID, 0}, Subject{ownerID, 9}, Allowed},
		{"bot owner as target", Subject{"10", 9}, Subject{ownerID, 1}, TargetIsConfiguredOwner},
		{"guild owner as target", Subject{"10", 9}, Subject{guildOwnerID, 1}, TargetIsGuildOwner},
		{"equal rank", Subject{"10", 4}, Subject{"11", 4}, EqualRank},
		{"lower rank", Subject{"10", 3}, Subject{"11", 4}, LowerRank},
		{"higher rank", Subject{"10", 5}, Subject{"11", 4}, Allowed},
		{"bot owner acts with equal rank", Subject{ownerID, 4}, Subject{"11", 4}, EqualRank},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.MayTarget(tt.actor, tt.target, botID, guildOwnerID); got != tt.want {
				t.Errorf("MayTarget() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMayTargetGuildOwnerAlwaysAllowed(t *testing.T) {
	c := New(ownerID)
	for rank := 0; rank < 50; rank++ {
		got := c.MayTarget(Subject{guildOwnerID, 0}, Subject{"20", rank}, botID, guildOwnerID)
		if got != Allowed {
			t.Fatalf("MayTarget(guild owner, rank %d) = %v, want %v", rank, got, Allowed)
		}
	}
}

func TestOutcomeMessage(t *testing.T) {
	tests := []struct {
		outcome Outcome
		want    string
	}{
		{Allowed, ""},
		{ActorEqualsTarget, "❌ You can't ban yourself."},
		{TargetIsBot, "❌ Nice try, but I won't do that to myself."},
		{TargetIsConfiguredOwner, "❌ I can't ban my owner."},
		{TargetIsGuildOwner, "❌ You can't ban the server owner."},
		{EqualRank, "❌ You can't ban someone with the same role as you."},
		{LowerRank, "❌ You can't ban someone with a higher role than you."},
	}

	for _, tt := range tests {
		t.Run(tt.outcome.String(), func(t *testing.T) {
			if got := tt.outcome.Message("ban"); got != tt.want {
				t.Errorf("Message() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTopRolePosition(t *testing.T) {
	roles := []*discordgo.Role{
		{ID: "g", Position: 0},
		{ID: "a", Position: 3},
		{ID: "b", Position: 7},
		nil,
	}

	if got := TopRolePosition([]string{"a", "b"}, roles); got != 7 {
		t.Errorf("TopRolePosition() = %v, want %v", got, 7)
	}
	if got := TopRolePosition(nil, roles); got != 0 {
		t.Errorf("TopRolePosition(nil) = %v, want %v", got, 0)
	}
	if got := TopRolePosition([]string{"missing"}, roles); got != 0 {
		t.Errorf("TopRolePosition(missing) = %v, want %v", got, 0)
	}
}

func TestComputeGuildPermissions(t *testing.T) {
	roles := []*discordgo.Role{
		{ID: "guild", Permissions: discordgo.PermissionViewChannel},
		{ID: "mod", Permissions: discordgo.PermissionKickMembers},
		{ID: "admin", Permissions: discordgo.PermissionAdministrator},
	}

	got := ComputeGuildPermissions("guild", []string{"mod"}, roles)
	want := int64(discordgo.PermissionViewChannel | discordgo.PermissionKickMembers)
	if got != want {
		t.Errorf("ComputeGuildPermissions() = %v, want %v", got, want)
	}

	if got := ComputeGuildPermissions("guild", []string{"admin"}, roles); got != discordgo.PermissionAll {
		t.Errorf("ComputeGuildPermissions(admin) = %v, want PermissionAll", got)
	}
}
