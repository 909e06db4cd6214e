package utils

import (
	"fmt"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/PancyStudios/PancyModBot/pkg/discord"
	"github.com/bwmarrin/discordgo"
)

func createAboutCommand() *discord.Command {
	return discord.NewCommand("about", "Information and stats about the bot.", "utils", aboutHandler)
}

func aboutHandler(ctx *discord.CommandContext) error {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	me := ctx.Session.State.User
	ctx.Session.State.RLock()
	guilds := len(ctx.Session.State.Guilds)
	members := memberCount(ctx.Session.State.Guilds)
	ctx.Session.State.RUnlock()
	avg := 0
	if guilds > 0 {
		avg = members / guilds
	}

	owner := "Unknown"
	if id := ctx.Services().Config.OwnerID; id != "" {
		owner = "<@" + id + ">"
		if u, err := ctx.Session.User(id); err == nil {
			owner = u.String()
		}
	}

	return ctx.ReplyEmbed(&discordgo.MessageEmbed{
		Title:     "📊 About " + me.Username,
		Color:     discord.ColorInfo,
		Thumbnail: discord.Thumbnail(me),
		Fields: []*discordgo.MessageEmbedField{
			discord.Field("⏱ Last Boot", fmt.Sprintf("<t:%d:R>", ctx.Client.StartTime.Unix()), true),
			discord.Field("👑 Owner", owner, true),
			discord.Field("📚 Library", "discordgo "+discordgo.VERSION, true),
			discord.Field("🌐 Servers", fmt.Sprintf("%d (avg: %d members)", guilds, avg), true),
			discord.Field("⚙️ Commands", fmt.Sprintf("%d", ctx.Client.Commands.Size()), true),
			discord.Field("💾 RAM", fmt.Sprintf("%.2f MB", float64(m.Sys)/1024/1024), true),
		},
	})
}

func userOption(description string) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionUser,
		Name:        "user",
		Description: description,
	}
}

// targetMember returns the user and member picked by the "user" option, or the invoker.
func targetMember(ctx *discord.CommandContext) (*discordgo.User, *discordgo.Member) {
	if u := ctx.GetUserOption("user"); u != nil {
		return u, ctx.GetMemberOption("user")
	}
	return ctx.User(), ctx.Member()
}

// topRole returns the member's highest role, or nil.
func topRole(member *discordgo.Member, roles []*discordgo.Role) *discordgo.Role {
	if member == nil {
		return nil
	}
	held := make(map[string]bool, len(member.Roles))
	for _, id := range member.Roles {
		held[id] = true
	}
	var top *discordgo.Role
	for _, r := range roles {
		if held[r.ID] && (top == nil || r.Position > top.Position) {
			top = r
		}
	}
	return top
}

// memberColor is the color of the member's top colored role, defaulting to blurple.
func memberColor(member *discordgo.Member, roles []*discordgo.Role) int {
	if r := topRole(member, roles); r != nil && r.Color != 0 {
		return r.Color
	}
	return discord.ColorInfo
}

// avatarLinks renders one link per image format for a CDN avatar URL.
func avatarLinks(url string) string {
	base, query, _ := strings.Cut(url, "?")
	dot := strings.LastIndex(base, ".")
	if dot < 0 {
		return fmt.Sprintf("[PNG](%s)", url)
	}
	stem, ext := base[:dot], base[dot+1:]
	if query != "" {
		query = "?" + query
	}

	formats := []string{"jpeg", "png", "webp"}
	if ext == "gif" {
		formats = append(formats, "gif")
	}
	links := make([]string, len(formats))
	for i, f := range formats {
		links[i] = fmt.Sprintf("[%s](%s.%s%s)", strings.ToUpper(f), stem, f, query)
	}
	return strings.Join(links, " **·** ")
}

func createAvatarCommand() *discord.Command {
	return discord.NewCommand(
		"avatar",
		"Get the avatar of you or another user.",
		"utils",
		avatarHandler,
	).WithOptions(userOption("User to show (default: yourself)")).InGuildOnly()
}

func avatarHandler(ctx *discord.CommandContext) error {
	user, member := targetMember(ctx)
	hasGuildAvatar := member != nil && member.Avatar != ""
	if user.Avatar == "" && !hasGuildAvatar {
		return ctx.ReplyEmbed(&discordgo.MessageEmbed{
			Description: fmt.Sprintf("**%s** has no avatar set.", user.String()),
			Color:       discord.ColorError,
		})
	}

	roles, _ := discord.FetchRoles(ctx.Session, ctx.Interaction.GuildID)
	embed := &discordgo.MessageEmbed{
		Title: fmt.Sprintf("🖼️ %s's Avatar", user.DisplayName()),
		Color: memberColor(member, roles),
		Image: &discordgo.MessageEmbedImage{URL: user.AvatarURL("256")},
	}

	var lines []string
	if user.Avatar != "" {
		lines = append(lines, "**Account Avatar:** "+avatarLinks(user.AvatarURL("1024")))
	}
	if hasGuildAvatar {
		member.GuildID = ctx.Interaction.GuildID
		lines = append(lines, "**Server Avatar:** "+avatarLinks(member.AvatarURL("1024")))
		embed.Thumbnail = discord.Thumbnail(user)
		embed.Image.URL = member.AvatarURL("256")
	}
	embed.Description = strings.Join(lines, "\n")
	return ctx.ReplyEmbed(embed)
}

func createUserCommand() *discord.Command {
	return discord.NewCommand(
		"user",
		"Get information about a user.",
		"utils",
		userHandler,
	).WithOptions(userOption("User to look up (default: yourself)")).InGuildOnly()
}

// roleMentions lists the member's roles from highest to lowest, skipping @everyone.
func roleMentions(member *discordgo.Member, roles []*discordgo.Role, guildID string) string {
	if member == nil {
		return "None"
	}
	held := make(map[string]bool, len(member.Roles))
	for _, id := range member.Roles {
		held[id] = true
	}
	var own []*discordgo.Role
	for _, r := range roles {
		if held[r.ID] && r.ID != guildID {
			own = append(own, r)
		}
	}
	if len(own) == 0 {
		return "None"
	}
	sort.Slice(own, func(i, j int) bool { return own[i].Position > own[j].Position })
	mentions := make([]string, len(own))
	for i, r := range own {
		mentions[i] = r.Mention()
	}
	return truncate(strings.Join(mentions, ", "), 1024)
}

// relative renders t as a Discord relative timestamp.
func relative(t time.Time) string {
	if t.IsZero() {
		return "Unknown"
	}
	return fmt.Sprintf("<t:%d:R>", t.Unix())
}

func userHandler(ctx *discord.CommandContext) error {
	user, member := targetMember(ctx)
	guildID := ctx.Interaction.GuildID
	roles, _ := discord.FetchRoles(ctx.Session, guildID)

	created, _ := discordgo.SnowflakeTimestamp(user.ID)
	nick, joined := "None", time.Time{}
	if member != nil {
		if member.Nick != "" {
			nick = member.Nick
		}
		joined = member.JoinedAt
	}

	return ctx.ReplyEmbed(&discordgo.MessageEmbed{
		Title:     "👤 " + user.String(),
		Color:     memberColor(member, roles),
		Thumbnail: discord.Thumbnail(user),
		Fields: []*discordgo.MessageEmbedField{
			discord.Field("🆔 User ID", user.ID, true),
			discord.Field("🏷️ Nickname", nick, true),
			discord.Field("📅 Account Created", relative(created), true),
			discord.Field("📥 Joined Server", relative(joined), true),
			discord.Field("🎭 Roles", roleMentions(member, roles, guildID), false),
		},
	})
}

func createServerCommand() *discord.Command {
	return discord.NewCommand("server", "Get information about this server.", "utils", serverHandler).InGuildOnly()
}

// countBots counts bots among the members the state has cached.
func countBots(members []*discordgo.Member) int {
	n := 0
	for _, m := range members {
		if m.User != nil && m.User.Bot {
			n++
		}
	}
	return n
}

func serverHandler(ctx *discord.CommandContext) error {
	guild, err := discord.FetchGuild(ctx.Session, ctx.Interaction.GuildID)
	if err != nil {
		return ctx.RespondAPIError("read", err)
	}
	created, _ := discordgo.SnowflakeTimestamp(guild.ID)

	embed := &discordgo.MessageEmbed{
		Title: "🏠 " + guild.Name,
		Color: discord.ColorInfo,
		Fields: []*discordgo.MessageEmbedField{
			discord.Field("🆔 Server ID", guild.ID, true),
			discord.Field("👥 Members", fmt.Sprintf("%d", guild.MemberCount), true),
			discord.Field("🤖 Bots", fmt.Sprintf("%d", countBots(guild.Members)), true),
			discord.Field("👑 Owner", "<@"+guild.OwnerID+">", true),
			discord.Field("📅 Created", relative(created), true),
		},
	}
	if guild.Icon != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: guild.IconURL("256")}
	}
	if guild.Banner != "" {
		embed.Image = &discordgo.MessageEmbedImage{URL: guild.BannerURL("1024")}
	}
	return ctx.ReplyEmbed(embed)
}
