package discord

import (
	"strings"
	"testing"
	"time"

	"github.com/PancyStudios/PancyModBot/pkg/cooldown"
	"github.com/PancyStudios/PancyModBot/pkg/permissions"
	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testContext(userID, guildID string, perms, appPerms int64) *CommandContext {
	return &CommandContext{
		Interaction: &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
			GuildID:        guildID,
			AppPermissions: appPerms,
			Member: &discordgo.Member{
				User:        &discordgo.User{ID: userID},
				Permissions: perms,
			},
		}},
		Client: &ExtendedClient{Services: &Services{
			Permissions: permissions.New("owner"),
			Cooldowns:   cooldown.NewManager(),
		}},
		CommandName: "mod.kick",
	}
}

func refusalText(t *testing.T, err error) string {
	t.Helper()
	require.Error(t, err)
	r, ok := err.(Refusal)
	require.True(t, ok, "error %v is not a Refusal", err)
	return r.Error()
}

func TestGuildOnlyMiddleware(t *testing.T) {
	cmd := NewCommand("kick", "Kick", "mod", noop).InGuildOnly()

	assert.NoError(t, guildOnlyMiddleware(testContext("1", "g", 0, 0), cmd))
	assert.Equal(t, msgGuildOnly, refusalText(t, guildOnlyMiddleware(testContext("1", "", 0, 0), cmd)))
	assert.NoError(t, guildOnlyMiddleware(testContext("1", "", 0, 0), NewCommand("ping", "Ping", "utils", noop)))
}

func TestOwnerOnlyMiddleware(t *testing.T) {
	cmd := NewCommand("eval", "Eval", "admin", noop).AsOwnerOnly()

	assert.NoError(t, ownerOnlyMiddleware(testContext("owner", "g", 0, 0), cmd))
	assert.Equal(t, msgOwnerOnly, refusalText(t, ownerOnlyMiddleware(testContext("someone", "g", discordgo.PermissionAdministrator, 0), cmd)))
}

func TestUserPermissionsMiddleware(t *testing.T) {
	cmd := NewCommand("kick", "Kick", "mod", noop).WithUserPermissions(discordgo.PermissionKickMembers)

	tests := []struct {
		name   string
		userID string
		perms  int64
		ok     bool
	}{
		{"has flag", "1", discordgo.PermissionKickMembers | discordgo.PermissionSendMessages, true},
		{"administrator", "1", discordgo.PermissionAdministrator, true},
		{"owner without flags", "owner", 0, true},
		{"missing flag", "1", discordgo.PermissionBanMembers, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := userPermissionsMiddleware(testContext(tt.userID, "g", tt.perms, 0), cmd)
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			assert.Equal(t, msgMissingPermission, refusalText(t, err))
		})
	}
}

func TestBotPermissionsMiddleware(t *testing.T) {
	cmd := NewCommand("ban", "Ban", "mod", noop).WithBotPermissions(discordgo.PermissionBanMembers | discordgo.PermissionEmbedLinks)

	assert.NoError(t, botPermissionsMiddleware(testContext("1", "g", 0, discordgo.PermissionBanMembers|discordgo.PermissionEmbedLinks), cmd))
	assert.NoError(t, botPermissionsMiddleware(testContext("1", "g", 0, discordgo.PermissionAdministrator), cmd))

	text := refusalText(t, botPermissionsMiddleware(testContext("1", "g", 0, discordgo.PermissionEmbedLinks), cmd))
	assert.Equal(t, "❌ I'm missing permissions: Ban Members.", text)
}

func TestCooldownMiddleware(t *testing.T) {
	cmd := NewCommand("kick", "Kick", "mod", noop).WithCooldown(time.Minute)
	ctx := testContext("1", "g", 0, 0)

	assert.NoError(t, cooldownMiddleware(ctx, cmd))
	text := refusalText(t, cooldownMiddleware(ctx, cmd))
	assert.True(t, strings.HasPrefix(text, "⏳ This command is on cooldown."), text)

	other := testContext("2", "g", 0, 0)
	other.Client = ctx.Client
	assert.NoError(t, cooldownMiddleware(other, cmd), "cooldowns are per user")
}

func TestPermissionNames(t *testing.T) {
	assert.Equal(t, "Kick Members, Ban Members", PermissionNames(discordgo.PermissionKickMembers|discordgo.PermissionBanMembers))
	assert.Equal(t, "", PermissionNames(0))
	assert.Equal(t, "0x2000000000000", PermissionNames(1<<49))
}
