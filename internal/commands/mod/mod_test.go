package mod

import (
	"strings"
	"testing"
	"time"

	"github.com/PancyStudios/PancyModBot/pkg/models"
	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseReason(t *testing.T) {
	r, err := parseReason("   ")
	require.NoError(t, err)
	assert.Equal(t, defaultReason, r)

	r, err = parseReason("  spam  ")
	require.NoError(t, err)
	assert.Equal(t, "spam", r)

	_, err = parseReason(strings.Repeat("a", maxReasonLength))
	assert.NoError(t, err)

	_, err = parseReason(strings.Repeat("ñ", maxReasonLength+1))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "513/512")
}

func TestAuditReason(t *testing.T) {
	mod := &discordgo.User{ID: "1", Username: "alice"}
	assert.Equal(t, "[ alice ] spam", auditReason(mod, "spam"))
}

func TestBanTargetID(t *testing.T) {
	id, err := banTargetID("111", "222")
	require.NoError(t, err)
	assert.Equal(t, "111", id, "member option wins over raw ID")

	id, err = banTargetID("", " 222333444555666777 ")
	require.NoError(t, err)
	assert.Equal(t, "222333444555666777", id)

	_, err = banTargetID("", "")
	assert.EqualError(t, err, "❌ You need to specify a member or a user ID.")

	_, err = banTargetID("", "not-an-id")
	assert.EqualError(t, err, "❌ `not-an-id` is not a valid member or member ID.")
}

func TestFindMutedRole(t *testing.T) {
	roles := []*discordgo.Role{
		{ID: "1", Name: "Member"},
		{ID: "2", Name: "Muted"},
		{ID: "3", Name: "Silenced"},
	}

	r := FindMutedRole(roles, "")
	require.NotNil(t, r)
	assert.Equal(t, "2", r.ID)

	r = FindMutedRole(roles, "3")
	require.NotNil(t, r)
	assert.Equal(t, "3", r.ID)

	assert.Nil(t, FindMutedRole(roles, "99"), "a configured ID does not fall back to the name")
	assert.Nil(t, FindMutedRole(roles[:1], ""))
	assert.Nil(t, FindMutedRole([]*discordgo.Role{{ID: "4", Name: "muted"}}, ""), "name match is exact")
}

func TestTimeoutUntil(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	until, err := timeoutUntil(now, 0)
	require.NoError(t, err)
	assert.Nil(t, until)

	until, err = timeoutUntil(now, 90)
	require.NoError(t, err)
	require.NotNil(t, until)
	assert.Equal(t, now.Add(90*time.Minute), *until)

	_, err = timeoutUntil(now, 40320)
	assert.NoError(t, err)

	_, err = timeoutUntil(now, 40321)
	assert.Error(t, err)
	_, err = timeoutUntil(now, -1)
	assert.Error(t, err)
}

func TestFormatDelay(t *testing.T) {
	tests := map[int]string{
		5:     "5s",
		60:    "1m",
		3723:  "1h 2m 3s",
		21600: "6h",
		3605:  "1h 5s",
	}
	for in, want := range tests {
		assert.Equal(t, want, formatDelay(in), "formatDelay(%d)", in)
	}
}

func TestApplyToggle(t *testing.T) {
	send := int64(discordgo.PermissionSendMessages)
	view := int64(discordgo.PermissionViewChannel)

	t.Run("lock from inherit", func(t *testing.T) {
		allow, deny, changed := applyToggle(&discordgo.PermissionOverwrite{}, lockToggle)
		assert.True(t, changed)
		assert.Zero(t, allow)
		assert.Equal(t, send, deny)
	})

	t.Run("lock clears an explicit allow", func(t *testing.T) {
		allow, deny, changed := applyToggle(&discordgo.PermissionOverwrite{Allow: send | view}, lockToggle)
		assert.True(t, changed)
		assert.Equal(t, view, allow)
		assert.Equal(t, send, deny)
	})

	t.Run("already locked", func(t *testing.T) {
		_, _, changed := applyToggle(&discordgo.PermissionOverwrite{Deny: send}, lockToggle)
		assert.False(t, changed)
	})

	t.Run("unlock returns to inherit", func(t *testing.T) {
		allow, deny, changed := applyToggle(&discordgo.PermissionOverwrite{Deny: send | view}, unlockToggle)
		assert.True(t, changed)
		assert.Zero(t, allow)
		assert.Equal(t, view, deny)
	})

	t.Run("not locked", func(t *testing.T) {
		_, _, changed := applyToggle(&discordgo.PermissionOverwrite{Allow: send}, unlockToggle)
		assert.False(t, changed)
	})

	t.Run("hide keeps send bits", func(t *testing.T) {
		allow, deny, changed := applyToggle(&discordgo.PermissionOverwrite{Deny: send}, hideToggle)
		assert.True(t, changed)
		assert.Zero(t, allow)
		assert.Equal(t, send|view, deny)
	})
}

func TestEveryoneOverwrite(t *testing.T) {
	ch := &discordgo.Channel{PermissionOverwrites: []*discordgo.PermissionOverwrite{
		{ID: "g1", Type: discordgo.PermissionOverwriteTypeMember, Deny: 1},
		{ID: "g1", Type: discordgo.PermissionOverwriteTypeRole, Deny: 2},
	}}
	assert.Equal(t, int64(2), everyoneOverwrite(ch, "g1").Deny)

	empty := everyoneOverwrite(&discordgo.Channel{}, "g1")
	assert.Equal(t, "g1", empty.ID)
	assert.Zero(t, empty.Allow|empty.Deny)
}

func TestDeletableIDs(t *testing.T) {
	now := time.Now()
	msgs := []*discordgo.Message{
		{ID: "1", Timestamp: now.Add(-time.Minute), Author: &discordgo.User{ID: "a"}},
		{ID: "2", Timestamp: now.Add(-time.Hour), Author: &discordgo.User{ID: "b"}},
		{ID: "3", Timestamp: now.Add(-15 * 24 * time.Hour), Author: &discordgo.User{ID: "a"}},
		{ID: "4", Timestamp: now.Add(-time.Second)},
	}

	assert.Equal(t, []string{"1", "2", "4"}, deletableIDs(msgs, "", now))
	assert.Equal(t, []string{"1"}, deletableIDs(msgs, "a", now))
	assert.Empty(t, deletableIDs(nil, "", now))
}

func TestParseIndex(t *testing.T) {
	for _, in := range []string{"", "all", "ALL", "  all "} {
		n, err := parseIndex(in)
		require.NoError(t, err, in)
		assert.Zero(t, n, in)
	}

	n, err := parseIndex("#3")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	for _, in := range []string{"0", "-2", "two"} {
		_, err := parseIndex(in)
		assert.Error(t, err, in)
	}
}

func TestIndexChoices(t *testing.T) {
	list := []models.Warn{{Reason: "spam"}, {Reason: strings.Repeat("x", 200)}}

	choices := indexChoices(list, "")
	require.Len(t, choices, 3)
	assert.Equal(t, "all", choices[0].Value)
	assert.Equal(t, "#1 - spam", choices[1].Name)
	assert.Len(t, []rune(choices[2].Name), 100)

	choices = indexChoices(list, "2")
	require.Len(t, choices, 1)
	assert.Equal(t, "2", choices[0].Value)

	choices = indexChoices(nil, "a")
	require.Len(t, choices, 1)
	assert.Equal(t, "All warnings (0)", choices[0].Name)
}

func TestWarningsEmbed(t *testing.T) {
	user := &discordgo.User{ID: "42", Username: "bob"}

	empty := warningsEmbed(user, "bob", nil)
	assert.Equal(t, "✅ **bob** has no warnings.", empty.Description)
	assert.Empty(t, empty.Fields)

	ts := time.Unix(1700000000, 0)
	e := warningsEmbed(user, "bob", []models.Warn{{Reason: "spam", Moderator: "alice", Timestamp: models.NewWarnTime(ts)}})
	assert.Equal(t, "**1** warning on record.", e.Description)
	require.Len(t, e.Fields, 1)
	assert.Equal(t, "Warning #1", e.Fields[0].Name)
	assert.Contains(t, e.Fields[0].Value, "<t:1700000000:R>")

	many := make([]models.Warn, 30)
	assert.Len(t, warningsEmbed(user, "bob", many).Fields, 25)
}

func TestCommandsAreUnique(t *testing.T) {
	seen := map[string]bool{}
	for _, cmd := range Commands() {
		assert.False(t, seen[cmd.Name], "duplicate subcommand %s", cmd.Name)
		seen[cmd.Name] = true
		assert.True(t, cmd.GuildOnly, cmd.Name)
		assert.NotZero(t, cmd.UserPermissions, cmd.Name)
	}
	assert.Len(t, seen, 16)
}
