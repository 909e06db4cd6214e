package utils

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/PancyStudios/PancyModBot/pkg/discord"
	"github.com/PancyStudios/PancyModBot/pkg/permissions"
	"github.com/bwmarrin/discordgo"
)

func createRolesCommand() *discord.Command {
	return discord.NewCommand("roles", "List all roles in this server.", "utils", rolesHandler).InGuildOnly()
}

// roleListing renders one line per role, highest first, with how many cached
// members hold it. Everyone holds @everyone.
func roleListing(guildID string, roles []*discordgo.Role, members []*discordgo.Member) string {
	holders := make(map[string]int)
	for _, m := range members {
		for _, id := range m.Roles {
			holders[id]++
		}
	}

	sorted := append([]*discordgo.Role(nil), roles...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Position > sorted[j].Position })

	var b strings.Builder
	for i, r := range sorted {
		users := holders[r.ID]
		if r.ID == guildID {
			users = len(members)
		}
		fmt.Fprintf(&b, "[%02d] %s\t%s\t[ Users: %d ]\r\n", i+1, r.ID, r.Name, users)
	}
	return b.String()
}

func rolesHandler(ctx *discord.CommandContext) error {
	guild, err := discord.FetchGuild(ctx.Session, ctx.Interaction.GuildID)
	if err != nil {
		return ctx.RespondAPIError("read", err)
	}
	roles, err := discord.FetchRoles(ctx.Session, guild.ID)
	if err != nil {
		return ctx.RespondAPIError("read", err)
	}

	ctx.Session.State.RLock()
	listing := roleListing(guild.ID, roles, guild.Members)
	ctx.Session.State.RUnlock()

	name := fmt.Sprintf("Roles_%s.txt", time.Now().Format("2006-01-02_15-04-05"))
	return ctx.Sink().SendFile(fmt.Sprintf("📋 Roles in **%s**", guild.Name), name, strings.NewReader(listing))
}

func createJoinedAtCommand() *discord.Command {
	return discord.NewCommand(
		"joinedat",
		"Check when a user joined this server.",
		"utils",
		joinedAtHandler,
	).WithOptions(userOption("The user to check (default: yourself)")).InGuildOnly()
}

func joinedAtEmbed(user *discordgo.User, member *discordgo.Member, guildName string, roles []*discordgo.Role) *discordgo.MessageEmbed {
	name, joined := user.DisplayName(), time.Time{}
	if member != nil {
		if member.Nick != "" {
			name = member.Nick
		}
		joined = member.JoinedAt
	}
	return &discordgo.MessageEmbed{
		Title:     "📅 Join Date — " + name,
		Color:     memberColor(member, roles),
		Thumbnail: discord.Thumbnail(user),
		Fields: []*discordgo.MessageEmbedField{
			discord.Field("Server", guildName, true),
			discord.Field("Joined", relative(joined), true),
		},
	}
}

func joinedAtHandler(ctx *discord.CommandContext) error {
	user, member := targetMember(ctx)
	guild, err := discord.FetchGuild(ctx.Session, ctx.Interaction.GuildID)
	if err != nil {
		return ctx.RespondAPIError("read", err)
	}
	roles, _ := discord.FetchRoles(ctx.Session, guild.ID)
	return ctx.ReplyEmbed(joinedAtEmbed(user, member, guild.Name, roles))
}

func createModsCommand() *discord.Command {
	return discord.NewCommand("mods", "Check which moderators are online.", "utils", modsHandler).InGuildOnly()
}

type moderator struct {
	tag    string
	status discordgo.Status
}

var presenceGroups = []struct {
	status discordgo.Status
	label  string
}{
	{discordgo.StatusOnline, "🟢 Online"},
	{discordgo.StatusIdle, "🟡 Idle"},
	{discordgo.StatusDoNotDisturb, "🔴 Dnd"},
	{discordgo.StatusOffline, "⚫ Offline"},
}

// moderators keeps the human members allowed to kick or ban in the channel.
// Members without a presence, or invisible, count as offline.
func moderators(members []*discordgo.Member, presences []*discordgo.Presence, channelPerms func(*discordgo.Member) int64) []moderator {
	status := make(map[string]discordgo.Status, len(presences))
	for _, p := range presences {
		if p != nil && p.User != nil {
			status[p.User.ID] = p.Status
		}
	}

	var mods []moderator
	for _, m := range members {
		if m.User == nil || m.User.Bot {
			continue
		}
		if channelPerms(m)&(discordgo.PermissionKickMembers|discordgo.PermissionBanMembers) == 0 {
			continue
		}
		st := status[m.User.ID]
		if st == "" || st == discordgo.StatusInvisible {
			st = discordgo.StatusOffline
		}
		mods = append(mods, moderator{tag: m.User.String(), status: st})
	}
	sort.Slice(mods, func(i, j int) bool { return mods[i].tag < mods[j].tag })
	return mods
}

func modsEmbed(guildName string, mods []moderator) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{Title: "🛡️ Moderators — " + guildName, Color: discord.ColorInfo}
	for _, g := range presenceGroups {
		var names []string
		for _, m := range mods {
			if m.status == g.status {
				names = append(names, "**"+m.tag+"**")
			}
		}
		if len(names) > 0 {
			embed.Fields = append(embed.Fields, discord.Field(g.label, truncate(strings.Join(names, ", "), 1024), false))
		}
	}
	return embed
}

func modsHandler(ctx *discord.CommandContext) error {
	guildID, channelID := ctx.Interaction.GuildID, ctx.Interaction.ChannelID
	guild, err := discord.FetchGuild(ctx.Session, guildID)
	if err != nil {
		return ctx.RespondAPIError("read", err)
	}
	roles, _ := discord.FetchRoles(ctx.Session, guildID)

	// UserChannelPermissions takes the state lock itself, so copy first.
	ctx.Session.State.RLock()
	members := append([]*discordgo.Member(nil), guild.Members...)
	presences := append([]*discordgo.Presence(nil), guild.Presences...)
	ctx.Session.State.RUnlock()

	perms := func(m *discordgo.Member) int64 {
		if p, err := ctx.Session.State.UserChannelPermissions(m.User.ID, channelID); err == nil {
			return p
		}
		if m.User.ID == guild.OwnerID {
			return discordgo.PermissionAll
		}
		return permissions.ComputeGuildPermissions(guildID, m.Roles, roles)
	}

	return ctx.ReplyEmbed(modsEmbed(guild.Name, moderators(members, presences, perms)))
}

func createServerIconCommand() *discord.Command {
	return discord.NewCommand("servericon", "Get this server's icon.", "utils", serverIconHandler).InGuildOnly()
}

func serverIconEmbed(guild *discordgo.Guild) *discordgo.MessageEmbed {
	if guild.Icon == "" {
		return discord.ErrorEmbed("❌ This server has no icon.")
	}
	return &discordgo.MessageEmbed{
		Title:       "🖼️ " + guild.Name + " — Server Icon",
		Description: avatarLinks(guild.IconURL("1024")),
		Color:       discord.ColorInfo,
		Image:       &discordgo.MessageEmbedImage{URL: guild.IconURL("256")},
	}
}

func serverIconHandler(ctx *discord.CommandContext) error {
	guild, err := discord.FetchGuild(ctx.Session, ctx.Interaction.GuildID)
	if err != nil {
		return ctx.RespondAPIError("read", err)
	}
	return ctx.ReplyEmbed(serverIconEmbed(guild))
}

func createServerBannerCommand() *discord.Command {
	return discord.NewCommand("serverbanner", "Get this server's banner.", "utils", serverBannerHandler).InGuildOnly()
}

func serverBannerEmbed(guild *discordgo.Guild) *discordgo.MessageEmbed {
	if guild.Banner == "" {
		return discord.ErrorEmbed("❌ This server has no banner.")
	}
	return &discordgo.MessageEmbed{
		Title: "🎨 " + guild.Name + " — Banner",
		Color: discord.ColorInfo,
		Image: &discordgo.MessageEmbedImage{URL: guild.BannerURL("1024")},
	}
}

func serverBannerHandler(ctx *discord.CommandContext) error {
	guild, err := discord.FetchGuild(ctx.Session, ctx.Interaction.GuildID)
	if err != nil {
		return ctx.RespondAPIError("read", err)
	}
	return ctx.ReplyEmbed(serverBannerEmbed(guild))
}
