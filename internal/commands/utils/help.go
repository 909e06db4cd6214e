package utils

import (
	"fmt"
	"sort"
	"strings"

	"github.com/PancyStudios/PancyModBot/pkg/discord"
	"github.com/bwmarrin/discordgo"
)

// createHelpCommand creates the /utils help subcommand
func createHelpCommand() *discord.Command {
	return discord.NewCommand(
		"help",
		"List the available commands.",
		"utils",
		helpHandler,
	)
}

// helpEmbed lists registered commands grouped by their top-level command.
// Owner-only commands are left out.
func helpEmbed(botName string, cmds map[string]*discord.Command) *discordgo.MessageEmbed {
	groups := map[string][]string{}
	for fullName, cmd := range cmds {
		if cmd.OwnerOnly {
			continue
		}
		group, _, _ := strings.Cut(fullName, ".")
		usage := "/" + strings.ReplaceAll(fullName, ".", " ")
		groups[group] = append(groups[group], fmt.Sprintf("`%s` %s", usage, cmd.Description))
	}

	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	sort.Strings(names)

	embed := &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("✨  %s  —  Help", botName),
		Description: "Run any command with `/`.",
		Color:       discord.ColorInfo,
	}
	for _, name := range names {
		lines := groups[name]
		sort.Strings(lines)
		embed.Fields = append(embed.Fields, discord.Field("/"+name, truncate(strings.Join(lines, "\n"), 1024), false))
	}
	return embed
}

func truncate(s string, max int) string {
	if r := []rune(s); len(r) > max {
		return string(r[:max-3]) + "..."
	}
	return s
}

// helpHandler handles the /utils help command
func helpHandler(ctx *discord.CommandContext) error {
	name := "ModBot"
	if ctx.Session.State != nil && ctx.Session.State.User != nil {
		name = ctx.Session.State.User.Username
	}
	return ctx.ReplyEphemeralEmbed(helpEmbed(name, ctx.Client.Commands.All()))
}
