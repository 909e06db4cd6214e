package utils

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/PancyStudios/PancyModBot/pkg/database"
	"github.com/PancyStudios/PancyModBot/pkg/discord"
	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "0s"},
		{45 * time.Second, "45s"},
		{time.Hour + 2*time.Minute, "1h 2m"},
		{26*time.Hour + 5*time.Second, "1d 2h 5s"},
	}
	for _, tt := range tests {
		if got := formatDuration(tt.in); got != tt.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestMemberCount(t *testing.T) {
	guilds := []*discordgo.Guild{{MemberCount: 10}, {MemberCount: 5}}
	assert.Equal(t, 15, memberCount(guilds))
	assert.Zero(t, memberCount(nil))
}

func TestDatabaseStatusWithoutMongo(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, "⚪ Not configured", databaseStatus(ctx, nil))
	status := databaseStatus(ctx, database.NewDatabase())
	assert.Contains(t, status, "🔴")
}

func TestHelpEmbedGroupsCommands(t *testing.T) {
	noop := func(*discord.CommandContext) error { return nil }
	cmds := map[string]*discord.Command{
		"mod.kick":   discord.NewCommand("kick", "Kick a member.", "mod", noop),
		"mod.ban":    discord.NewCommand("ban", "Ban a user.", "mod", noop),
		"utils.ping": discord.NewCommand("ping", "Check latency.", "utils", noop),
		"admin.eval": discord.NewCommand("eval", "Eval.", "admin", noop).AsOwnerOnly(),
	}

	embed := helpEmbed("ModBot", cmds)
	require.Len(t, embed.Fields, 2)
	assert.Equal(t, "/mod", embed.Fields[0].Name)
	assert.Equal(t, "`/mod ban` Ban a user.\n`/mod kick` Kick a member.", embed.Fields[0].Value)
	assert.Equal(t, "/utils", embed.Fields[1].Name)
	assert.NotContains(t, embed.Fields[1].Value, "eval")
}

func TestAvatarLinks(t *testing.T) {
	got := avatarLinks("https://cdn.discordapp.com/avatars/1/abc.png?size=1024")
	assert.Equal(t, "[JPEG](https://cdn.discordapp.com/avatars/1/abc.jpeg?size=1024) **·** "+
		"[PNG](https://cdn.discordapp.com/avatars/1/abc.png?size=1024) **·** "+
		"[WEBP](https://cdn.discordapp.com/avatars/1/abc.webp?size=1024)", got)

	animated := avatarLinks("https://cdn.discordapp.com/avatars/1/a_abc.gif")
	assert.True(t, strings.HasSuffix(animated, "[GIF](https://cdn.discordapp.com/avatars/1/a_abc.gif)"))
}

func TestRolesAndColor(t *testing.T) {
	roles := []*discordgo.Role{
		{ID: "g", Name: "@everyone", Position: 0},
		{ID: "a", Position: 1, Color: 0x111111},
		{ID: "b", Position: 5},
		{ID: "c", Position: 3, Color: 0x333333},
	}
	member := &discordgo.Member{Roles: []string{"a", "c"}}

	assert.Equal(t, "c", topRole(member, roles).ID)
	assert.Equal(t, 0x333333, memberColor(member, roles))
	assert.Equal(t, "<@&c>, <@&a>", roleMentions(member, roles, "g"))

	assert.Equal(t, discord.ColorInfo, memberColor(&discordgo.Member{Roles: []string{"b"}}, roles))
	assert.Equal(t, "None", roleMentions(&discordgo.Member{}, roles, "g"))
	assert.Equal(t, "None", roleMentions(nil, roles, "g"))
	assert.Nil(t, topRole(nil, roles))
}

func TestCountBots(t *testing.T) {
	members := []*discordgo.Member{
		{User: &discordgo.User{Bot: true}},
		{User: &discordgo.User{}},
		{},
	}
	assert.Equal(t, 1, countBots(members))
}

func TestRelative(t *testing.T) {
	assert.Equal(t, "Unknown", relative(time.Time{}))
	assert.Equal(t, "<t:1700000000:R>", relative(time.Unix(1700000000, 0)))
}

func TestRoleListing(t *testing.T) {
	roles := []*discordgo.Role{
		{ID: "g", Name: "@everyone", Position: 0},
		{ID: "a", Name: "Member", Position: 1},
		{ID: "b", Name: "Staff", Position: 2},
	}
	members := []*discordgo.Member{
		{Roles: []string{"a", "b"}},
		{Roles: []string{"a"}},
		{},
	}

	got := roleListing("g", roles, members)
	assert.Equal(t,
		"[01] b\tStaff\t[ Users: 1 ]\r\n"+
			"[02] a\tMember\t[ Users: 2 ]\r\n"+
			"[03] g\t@everyone\t[ Users: 3 ]\r\n", got)
	assert.Empty(t, roleListing("g", nil, members))
}

func TestJoinedAtEmbed(t *testing.T) {
	user := &discordgo.User{ID: "1", Username: "bob"}
	member := &discordgo.Member{Nick: "bobby", JoinedAt: time.Unix(1700000000, 0)}

	e := joinedAtEmbed(user, member, "Guild", nil)
	assert.Equal(t, "📅 Join Date — bobby", e.Title)
	require.Len(t, e.Fields, 2)
	assert.Equal(t, "Guild", e.Fields[0].Value)
	assert.Equal(t, "<t:1700000000:R>", e.Fields[1].Value)

	e = joinedAtEmbed(user, nil, "Guild", nil)
	assert.Equal(t, "📅 Join Date — bob", e.Title)
	assert.Equal(t, "Unknown", e.Fields[1].Value)
}

func TestModeratorsGroupedByPresence(t *testing.T) {
	member := func(id, name string, bot bool, roles ...string) *discordgo.Member {
		return &discordgo.Member{User: &discordgo.User{ID: id, Username: name, Discriminator: "0", Bot: bot}, Roles: roles}
	}
	members := []*discordgo.Member{
		member("1", "zed", false, "mod"),
		member("2", "amy", false, "admin"),
		member("3", "bot", true, "mod"),
		member("4", "joe", false),
		member("5", "kim", false, "mod"),
		{},
	}
	presences := []*discordgo.Presence{
		{User: &discordgo.User{ID: "1"}, Status: discordgo.StatusOnline},
		{User: &discordgo.User{ID: "2"}, Status: discordgo.StatusDoNotDisturb},
		{User: &discordgo.User{ID: "5"}, Status: discordgo.StatusInvisible},
	}
	perms := func(m *discordgo.Member) int64 {
		for _, r := range m.Roles {
			switch r {
			case "mod":
				return discordgo.PermissionKickMembers
			case "admin":
				return discordgo.PermissionAll
			}
		}
		return discordgo.PermissionSendMessages
	}

	mods := moderators(members, presences, perms)
	require.Len(t, mods, 3)
	assert.Equal(t, moderator{tag: "amy", status: discordgo.StatusDoNotDisturb}, mods[0])
	assert.Equal(t, moderator{tag: "kim", status: discordgo.StatusOffline}, mods[1])
	assert.Equal(t, moderator{tag: "zed", status: discordgo.StatusOnline}, mods[2])

	e := modsEmbed("Guild", mods)
	assert.Equal(t, "🛡️ Moderators — Guild", e.Title)
	require.Len(t, e.Fields, 3)
	assert.Equal(t, "🟢 Online", e.Fields[0].Name)
	assert.Equal(t, "**zed**", e.Fields[0].Value)
	assert.Equal(t, "🔴 Dnd", e.Fields[1].Name)
	assert.Equal(t, "⚫ Offline", e.Fields[2].Name)
	assert.Equal(t, "**kim**", e.Fields[2].Value)

	assert.Empty(t, modsEmbed("Guild", nil).Fields)
}

func TestServerIconAndBanner(t *testing.T) {
	bare := &discordgo.Guild{ID: "10", Name: "Guild"}
	assert.Equal(t, "❌ This server has no icon.", serverIconEmbed(bare).Description)
	assert.Equal(t, "❌ This server has no banner.", serverBannerEmbed(bare).Description)

	decorated := &discordgo.Guild{ID: "10", Name: "Guild", Icon: "abc", Banner: "def"}
	icon := serverIconEmbed(decorated)
	assert.Equal(t, "🖼️ Guild — Server Icon", icon.Title)
	assert.Contains(t, icon.Description, "[PNG](")
	assert.Contains(t, icon.Image.URL, "/icons/10/abc")

	banner := serverBannerEmbed(decorated)
	assert.Equal(t, "🎨 Guild — Banner", banner.Title)
	assert.Contains(t, banner.Image.URL, "/banners/10/def")
}
