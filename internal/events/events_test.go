package events

import (
	"errors"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/PancyStudios/PancyModBot/pkg/config"
	"github.com/PancyStudios/PancyModBot/pkg/cooldown"
	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func TestPresence(t *testing.T) {
	tests := []struct {
		activity, status string
		wantType         discordgo.ActivityType
		wantStatus       string
	}{
		{"listening", "idle", discordgo.ActivityTypeListening, "idle"},
		{"watching", "dnd", discordgo.ActivityTypeWatching, "dnd"},
		{"competing", "online", discordgo.ActivityTypeCompeting, "online"},
		{"playing", "invisible", discordgo.ActivityTypeGame, "online"},
		{"streaming", "", discordgo.ActivityTypeGame, "online"},
	}
	for _, tt := range tests {
		p := presence(&config.Config{ActivityName: "/help", ActivityType: tt.activity, StatusType: tt.status})
		require.Len(t, p.Activities, 1)
		assert.Equal(t, "/help", p.Activities[0].Name)
		assert.Equal(t, tt.wantType, p.Activities[0].Type, tt.activity)
		assert.Equal(t, tt.wantStatus, p.Status, tt.status)
	}
}

func TestFirstWritableChannel(t *testing.T) {
	channels := []*discordgo.Channel{
		{ID: "voice", Type: discordgo.ChannelTypeGuildVoice, Position: 0},
		{ID: "rules", Type: discordgo.ChannelTypeGuildText, Position: 1},
		{ID: "general", Type: discordgo.ChannelTypeGuildText, Position: 2},
		{ID: "announcements", Type: discordgo.ChannelTypeGuildText, Position: 0},
	}
	writable := map[string]bool{"general": true, "voice": true, "rules": true}

	ch := firstWritableChannel(channels, func(id string) bool { return writable[id] })
	require.NotNil(t, ch)
	assert.Equal(t, "rules", ch.ID)

	assert.Nil(t, firstWritableChannel(channels, func(string) bool { return false }))
}

type fakeRoleAdder struct {
	calls []string
	err   error
}

func (f *fakeRoleAdder) GuildMemberRoleAdd(guildID, userID, roleID string, _ ...discordgo.RequestOption) error {
	f.calls = append(f.calls, guildID+"/"+userID+"/"+roleID)
	return f.err
}

func TestAssignAutoRole(t *testing.T) {
	f := &fakeRoleAdder{}
	assignAutoRole(f, &discordgo.GuildMemberAdd{Member: &discordgo.Member{GuildID: "g", User: &discordgo.User{ID: "u"}}}, "r")
	assert.Equal(t, []string{"g/u/r"}, f.calls)

	f = &fakeRoleAdder{}
	assignAutoRole(f, &discordgo.GuildMemberAdd{Member: &discordgo.Member{GuildID: "g", User: &discordgo.User{ID: "b", Bot: true}}}, "r")
	assert.Empty(t, f.calls, "bots are skipped")

	f = &fakeRoleAdder{err: errors.New("boom")}
	assignAutoRole(f, &discordgo.GuildMemberAdd{Member: &discordgo.Member{GuildID: "g", User: &discordgo.User{ID: "u"}}}, "r")
	assert.Len(t, f.calls, 1)
}

func TestParsePrefixCommand(t *testing.T) {
	name, args, ok := parsePrefixCommand("!Encode base64 hello world", "!")
	require.True(t, ok)
	assert.Equal(t, "encode", name)
	assert.Equal(t, "base64 hello world", args)

	name, args, ok = parsePrefixCommand("!decode", "!")
	require.True(t, ok)
	assert.Equal(t, "decode", name)
	assert.Empty(t, args)

	for _, in := range []string{"hello", "!", "?encode x", ""} {
		_, _, ok := parsePrefixCommand(in, "!")
		assert.False(t, ok, in)
	}
	_, _, ok = parsePrefixCommand("!encode", "")
	assert.False(t, ok, "empty prefix disables prefix commands")
}

func TestCaptureSnipe(t *testing.T) {
	snipes := cooldown.NewSnipeCache(time.Minute)
	author := &discordgo.User{ID: "1", Username: "bob"}

	captureSnipe(snipes, &discordgo.MessageDelete{
		Message:      &discordgo.Message{ID: "m", ChannelID: "c", GuildID: "g"},
		BeforeDelete: &discordgo.Message{Author: author, Content: "oops"},
	}, now)
	got, ok := snipes.Get("c")
	require.True(t, ok)
	assert.Equal(t, "oops", got.Content)
	assert.Equal(t, "bob", got.AuthorName)
	assert.Equal(t, now, got.DeletedAt)

	captureSnipe(snipes, &discordgo.MessageDelete{
		Message:      &discordgo.Message{ID: "m2", ChannelID: "c2", GuildID: "g"},
		BeforeDelete: &discordgo.Message{Author: &discordgo.User{ID: "2", Bot: true}, Content: "beep"},
	}, now)
	_, ok = snipes.Get("c2")
	assert.False(t, ok, "bot messages are not sniped")

	captureSnipe(snipes, &discordgo.MessageDelete{Message: &discordgo.Message{ID: "m3", ChannelID: "c3", GuildID: "g"}}, now)
	_, ok = snipes.Get("c3")
	assert.False(t, ok, "uncached messages are not sniped")
}

func TestMessageDeletedEmbed(t *testing.T) {
	author := &discordgo.User{ID: "1", Username: "bob"}
	e := messageDeletedEmbed(&discordgo.Message{GuildID: "g", ChannelID: "c", Author: author, Content: strings.Repeat("a", 1100)}, now)
	require.NotNil(t, e)
	assert.Equal(t, "🗑️  Message Deleted", e.Title)
	require.Len(t, e.Fields, 3)
	assert.Len(t, e.Fields[2].Value, 1024)
	assert.True(t, strings.HasSuffix(e.Fields[2].Value, "..."))
	assert.Equal(t, "User ID: 1", e.Footer.Text)

	e = messageDeletedEmbed(&discordgo.Message{GuildID: "g", ChannelID: "c", Author: author}, now)
	assert.Len(t, e.Fields, 2, "no content field for empty messages")

	assert.Nil(t, messageDeletedEmbed(&discordgo.Message{GuildID: "g", Author: &discordgo.User{Bot: true}}, now))
	assert.Nil(t, messageDeletedEmbed(&discordgo.Message{Author: author}, now), "DMs are not logged")
}

func TestMessageEditedEmbed(t *testing.T) {
	author := &discordgo.User{ID: "1", Username: "bob"}
	before := &discordgo.Message{ID: "m", GuildID: "g", ChannelID: "c", Author: author, Content: "hi"}

	assert.Nil(t, messageEditedEmbed(before, &discordgo.Message{ID: "m", ChannelID: "c", Content: "hi"}, now))
	assert.Nil(t, messageEditedEmbed(nil, &discordgo.Message{Content: "x"}, now))

	e := messageEditedEmbed(before, &discordgo.Message{ID: "m", GuildID: "g", ChannelID: "c", Content: ""}, now)
	require.NotNil(t, e)
	assert.Equal(t, "✏️  Message Edited", e.Title)
	assert.Contains(t, e.Fields[2].Value, "https://discord.com/channels/g/c/m")
	assert.Equal(t, "hi", e.Fields[3].Value)
	assert.Equal(t, "*empty*", e.Fields[4].Value)
}

func TestMemberJoinedEmbed(t *testing.T) {
	// Snowflake from 2015.
	old := &discordgo.User{ID: "80351110224678912", Username: "old"}
	e := memberJoinedEmbed(old, 42, now)
	assert.Equal(t, "📥  Member Joined", e.Title)
	assert.NotContains(t, e.Fields[1].Value, "New account")
	assert.Equal(t, "42", e.Fields[2].Value)

	created := now.Add(-48 * time.Hour)
	id := (created.UnixMilli() - 1420070400000) << 22
	fresh := &discordgo.User{ID: strconv.FormatInt(id, 10), Username: "fresh"}
	assert.Contains(t, memberJoinedEmbed(fresh, 1, now).Fields[1].Value, "⚠️ **New account!**")
}

func TestAuditEntry(t *testing.T) {
	log := &discordgo.GuildAuditLog{
		Users: []*discordgo.User{{ID: "mod", Username: "alice"}},
		AuditLogEntries: []*discordgo.AuditLogEntry{
			{TargetID: "other", UserID: "mod"},
			{TargetID: "u", UserID: "mod", Reason: "spam"},
			{TargetID: "u", UserID: "mod", Reason: "older"},
		},
	}
	moderator, reason, ok := auditEntry(log, "u")
	require.True(t, ok)
	assert.Equal(t, "alice", moderator)
	assert.Equal(t, "spam", reason)

	_, _, ok = auditEntry(log, "nobody")
	assert.False(t, ok)
	_, _, ok = auditEntry(nil, "u")
	assert.False(t, ok)

	log.Users = nil
	moderator, _, _ = auditEntry(log, "u")
	assert.Equal(t, "Unknown", moderator)
}

func TestMemberLeftAndKicked(t *testing.T) {
	u := &discordgo.User{ID: "1", Username: "bob"}

	e := memberLeftEmbed(&discordgo.Member{GuildID: "g", User: u, Roles: []string{"g", "r1"}}, 9, now)
	assert.Equal(t, "📤  Member Left", e.Title)
	assert.Equal(t, "Unknown", e.Fields[1].Value)
	require.Len(t, e.Fields, 4)
	assert.Equal(t, "<@&r1>", e.Fields[3].Value)

	e = memberKickedEmbed(u, "alice", "", now)
	assert.Equal(t, "👢  Member Kicked", e.Title)
	assert.Equal(t, noReason, e.Fields[2].Value)
}

func TestBanEmbeds(t *testing.T) {
	u := &discordgo.User{ID: "1", Username: "bob"}
	assert.Equal(t, "🔨  Member Banned", bannedEmbed(u, "alice", "spam", now).Title)
	e := unbannedEmbed(u, "Unknown", now)
	assert.Equal(t, "🔓  Member Unbanned", e.Title)
	assert.Equal(t, "Unknown", e.Fields[1].Value)
}

func TestRoleDiff(t *testing.T) {
	added, removed := roleDiff([]string{"a", "b"}, []string{"b", "c"})
	assert.Equal(t, []string{"c"}, added)
	assert.Equal(t, []string{"a"}, removed)

	added, removed = roleDiff(nil, nil)
	assert.Empty(t, added)
	assert.Empty(t, removed)
}

func TestMemberUpdateEmbeds(t *testing.T) {
	u := &discordgo.User{ID: "1", Username: "bob"}

	t.Run("nickname", func(t *testing.T) {
		out := memberUpdateEmbeds(&discordgo.Member{User: u}, &discordgo.Member{User: u, Nick: "bobby"}, "", now)
		require.Len(t, out, 1)
		assert.Equal(t, "✏️  Nickname Changed", out[0].Title)
		assert.Equal(t, "*None*", out[0].Fields[1].Value)
		assert.Equal(t, "bobby", out[0].Fields[2].Value)
	})

	t.Run("muted role is reported apart", func(t *testing.T) {
		out := memberUpdateEmbeds(
			&discordgo.Member{User: u, Roles: []string{"old"}},
			&discordgo.Member{User: u, Roles: []string{"muted", "new"}},
			"muted", now)
		require.Len(t, out, 2)
		assert.Equal(t, "🔇  Member Muted", out[0].Title)
		assert.Equal(t, "🎭  Roles Updated", out[1].Title)
		assert.Equal(t, "<@&new>", out[1].Fields[1].Value)
		assert.Equal(t, "<@&old>", out[1].Fields[2].Value)
	})

	t.Run("unmute only", func(t *testing.T) {
		out := memberUpdateEmbeds(&discordgo.Member{User: u, Roles: []string{"muted"}}, &discordgo.Member{User: u}, "muted", now)
		require.Len(t, out, 1)
		assert.Equal(t, "🔊  Member Unmuted", out[0].Title)
	})

	t.Run("no muted role configured", func(t *testing.T) {
		out := memberUpdateEmbeds(&discordgo.Member{User: u}, &discordgo.Member{User: u, Roles: []string{"muted"}}, "", now)
		require.Len(t, out, 1)
		assert.Equal(t, "🎭  Roles Updated", out[0].Title)
	})

	t.Run("nothing changed", func(t *testing.T) {
		assert.Empty(t, memberUpdateEmbeds(&discordgo.Member{User: u}, &discordgo.Member{User: u}, "muted", now))
	})
}

func TestChannelChanges(t *testing.T) {
	before := &discordgo.Channel{Name: "general", Topic: "", RateLimitPerUser: 0}
	after := &discordgo.Channel{Name: "chat", Topic: "talk", RateLimitPerUser: 5}
	assert.Equal(t, []string{
		"**Name:** `general` → `chat`",
		"**Topic:** `None` → `talk`",
		"**Slowmode:** `0s` → `5s`",
	}, channelChanges(before, after))
	assert.Empty(t, channelChanges(before, before))
}

func TestVoiceEmbed(t *testing.T) {
	u := &discordgo.User{ID: "1", Username: "bob"}
	assert.Nil(t, voiceEmbed(u, "Lounge", "Lounge", now))
	assert.Equal(t, "🎙️  Joined Voice", voiceEmbed(u, "", "Lounge", now).Title)
	assert.Equal(t, "🎙️  Left Voice", voiceEmbed(u, "Lounge", "", now).Title)

	e := voiceEmbed(u, "Lounge", "Gaming", now)
	assert.Equal(t, "🎙️  Switched Voice Channel", e.Title)
	assert.Equal(t, "Lounge", e.Fields[1].Value)
	assert.Equal(t, "Gaming", e.Fields[2].Value)
}
