package utils

import (
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/PancyStudios/PancyModBot/pkg/config"
	"github.com/PancyStudios/PancyModBot/pkg/discord"
	"github.com/bwmarrin/discordgo"
)

// createStatsCommand creates the /utils stats subcommand
func createStatsCommand() *discord.Command {
	return discord.NewCommand(
		"stats",
		"Show bot statistics.",
		"utils",
		statsHandler,
	)
}

// memberCount sums the member counts the gateway reported for each guild.
func memberCount(guilds []*discordgo.Guild) int {
	total := 0
	for _, g := range guilds {
		total += g.MemberCount
	}
	return total
}

// statsHandler handles the /utils stats command
func statsHandler(ctx *discord.CommandContext) error {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	ctx.Session.State.RLock()
	members := memberCount(ctx.Session.State.Guilds)
	ctx.Session.State.RUnlock()

	embed := &discordgo.MessageEmbed{
		Title: "📊 Bot Statistics",
		Color: discord.ColorInfo,
		Fields: []*discordgo.MessageEmbedField{
			discord.Field("🤖 Bot Version", config.Version, true),
			discord.Field("🐹 Go Version", strings.TrimPrefix(runtime.Version(), "go"), true),
			discord.Field("📚 DiscordGo Version", discordgo.VERSION, true),
			discord.Field("🖥 RAM", fmt.Sprintf("%.2f MB", float64(m.Alloc)/1024/1024), true),
			discord.Field("⚙️ CPU", fmt.Sprintf("%d Goroutines / %d CPUs", runtime.NumGoroutine(), runtime.NumCPU()), true),
			discord.Field("⏱ Uptime", formatDuration(time.Since(ctx.Client.StartTime)), true),
			discord.Field("🏠 Guilds", fmt.Sprintf("%d", ctx.Client.GuildCount()), true),
			discord.Field("👥 Members", fmt.Sprintf("%d", members), true),
			discord.Field("📡 Listeners", fmt.Sprintf("%d", ctx.Client.EventHandler.Listeners()), true),
		},
		Footer:    &discordgo.MessageEmbedFooter{Text: "Build " + config.BuildTime},
		Timestamp: discord.Timestamp(time.Now()),
	}
	return ctx.ReplyEmbed(embed)
}

// formatDuration formats a time.Duration into a human-readable string
func formatDuration(dur time.Duration) string {
	days := int(dur.Hours() / 24)
	hours := int(dur.Hours()) % 24
	minutes := int(dur.Minutes()) % 60
	seconds := int(dur.Seconds()) % 60

	var parts []string
	if days > 0 {
		parts = append(parts, fmt.Sprintf("%dd", days))
	}
	if hours > 0 {
		parts = append(parts, fmt.Sprintf("%dh", hours))
	}
	if minutes > 0 {
		parts = append(parts, fmt.Sprintf("%dm", minutes))
	}
	if seconds > 0 || len(parts) == 0 {
		parts = append(parts, fmt.Sprintf("%ds", seconds))
	}

	return strings.Join(parts, " ")
}
