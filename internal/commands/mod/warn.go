// Package mod - /mod warn, warnings and clearwarn
package mod

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/PancyStudios/PancyModBot/pkg/discord"
	"github.com/PancyStudios/PancyModBot/pkg/logger"
	"github.com/PancyStudios/PancyModBot/pkg/models"
	"github.com/PancyStudios/PancyModBot/pkg/warnings"
	"github.com/bwmarrin/discordgo"
)

// clearAll is the clearwarn index that removes every warning.
const clearAll = "all"

func createWarnCommand() *discord.Command {
	return discord.NewCommand(
		"warn",
		"Warn a member.",
		"mod",
		warnHandler,
	).WithOptions(
		memberOption("Member to warn", true),
		reasonOption("Reason for the warning"),
	).WithUserPermissions(discordgo.PermissionKickMembers).
		InGuildOnly()
}

func warnHandler(ctx *discord.CommandContext) error {
	user, err := target(ctx, "warn")
	if user == nil {
		return err
	}
	why, ok, err := reason(ctx)
	if !ok {
		return err
	}

	moderator := ctx.User()
	guildID := ctx.Interaction.GuildID
	count, err := ctx.Services().Warnings.Add(ctx.Context(), guildID, user.ID, models.Warn{
		Reason:      why,
		Moderator:   moderator.String(),
		ModeratorID: models.ParseSnowflake(moderator.ID),
	})
	if err != nil {
		return ctx.RespondStorageError(err)
	}

	ctx.Services().Publish(models.ActionWarn, guildID, user.ID, moderator.ID, why)

	embed := actionEmbed("⚠️  Member Warned", discord.ColorWarn, user, moderator, why)
	// Total goes before the reason so the three inline fields share a row.
	embed.Fields = []*discordgo.MessageEmbedField{
		embed.Fields[0],
		embed.Fields[1],
		discord.Field("📊 Total Warnings", fmt.Sprintf("**%d**", count), true),
		embed.Fields[2],
	}
	if err := ctx.RespondEmbed(embed); err != nil {
		return err
	}

	guildName := guildID
	if g := ctx.Guild(); g != nil {
		guildName = g.Name
	}
	notifyWarned(ctx.Session, user.ID, guildName, why, count)
	return nil
}

// notifyWarned DMs the warned member. Closed DMs are expected and only logged.
func notifyWarned(s *discordgo.Session, userID, guildName, reason string, count int) {
	dm, err := s.UserChannelCreate(userID)
	if err == nil {
		_, err = s.ChannelMessageSendEmbed(dm.ID, &discordgo.MessageEmbed{
			Title:       fmt.Sprintf("⚠️  You were warned in %s", guildName),
			Description: fmt.Sprintf("**Reason:** %s", reason),
			Color:       discord.ColorWarn,
			Fields:      []*discordgo.MessageEmbedField{discord.Field("Total Warnings", strconv.Itoa(count), false)},
			Footer:      &discordgo.MessageEmbedFooter{Text: "Please follow the server rules."},
		})
	}
	if err != nil {
		logger.Debug(fmt.Sprintf("No se pudo enviar MD de advertencia a %s: %v", userID, err), "Warns")
	}
}

func createWarningsCommand() *discord.Command {
	return discord.NewCommand(
		"warnings",
		"View warnings for a member.",
		"mod",
		warningsHandler,
	).WithOptions(
		memberOption("Member to check (default: yourself)", false),
	).WithUserPermissions(discordgo.PermissionKickMembers).
		InGuildOnly()
}

// displayName prefers the guild nickname when the member is known.
func displayName(user *discordgo.User, member *discordgo.Member) string {
	if member != nil && member.Nick != "" {
		return member.Nick
	}
	return user.DisplayName()
}

// warningsEmbed lists a member's warnings, numbered from 1.
func warningsEmbed(user *discordgo.User, name string, list []models.Warn) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:     "📋  Warnings — " + name,
		Color:     discord.ColorSuccess,
		Thumbnail: discord.Thumbnail(user),
		Footer:    discord.UserFooter(user.ID),
	}
	if len(list) == 0 {
		embed.Description = fmt.Sprintf("✅ **%s** has no warnings.", name)
		return embed
	}

	embed.Color = discord.ColorWarn
	embed.Description = plural(len(list), "warning") + " on record."
	for i, w := range list {
		when := "Unknown time"
		if !w.Timestamp.IsZero() {
			when = fmt.Sprintf("<t:%d:R>", w.Timestamp.Unix())
		}
		// Discord caps an embed at 25 fields.
		if i == 24 && len(list) > 25 {
			embed.Fields = append(embed.Fields, discord.Field("…", fmt.Sprintf("and %d more", len(list)-24), false))
			break
		}
		embed.Fields = append(embed.Fields, discord.Field(
			fmt.Sprintf("Warning #%d", i+1),
			fmt.Sprintf("**Reason:** %s\n**By:** %s\n**When:** %s", w.Reason, w.Moderator, when),
			false,
		))
	}
	return embed
}

func warningsHandler(ctx *discord.CommandContext) error {
	user := ctx.GetUserOption("member")
	member := ctx.GetMemberOption("member")
	if user == nil {
		user, member = ctx.User(), ctx.Member()
	}

	if err := ctx.Defer(); err != nil {
		return err
	}

	list, err := ctx.Services().Warnings.List(ctx.Context(), ctx.Interaction.GuildID, user.ID)
	if err != nil {
		return ctx.RespondStorageError(err)
	}
	return ctx.RespondEmbed(warningsEmbed(user, displayName(user, member), list))
}

func createClearWarnCommand() *discord.Command {
	return discord.NewCommand(
		"clearwarn",
		"Clear warnings for a member.",
		"mod",
		clearWarnHandler,
	).WithOptions(
		memberOption("Member to clear warnings for", true),
		&discordgo.ApplicationCommandOption{
			Type:         discordgo.ApplicationCommandOptionString,
			Name:         "index",
			Description:  "Warning number to remove (leave blank or 'all' to clear all)",
			Autocomplete: true,
		},
	).WithUserPermissions(discordgo.PermissionKickMembers).
		WithAutoComplete(clearWarnAutoComplete).
		InGuildOnly()
}

// parseIndex reads the clearwarn index. 0 means every warning.
func parseIndex(raw string) (int, error) {
	raw = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(raw), "#"))
	if raw == "" || strings.EqualFold(raw, clearAll) {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("❌ `%s` is not a warning number.", raw)
	}
	return n, nil
}

func clearWarnHandler(ctx *discord.CommandContext) error {
	user := ctx.GetUserOption("member")
	if user == nil {
		return ctx.RespondEphemeral("❌ You need to specify a member.")
	}
	name := displayName(user, ctx.GetMemberOption("member"))

	index, err := parseIndex(ctx.GetStringOption("index"))
	if err != nil {
		return ctx.RespondEphemeral(err.Error())
	}

	moderator := ctx.User()
	guildID := ctx.Interaction.GuildID
	footer := &discordgo.MessageEmbedFooter{Text: fmt.Sprintf("Cleared by %s • User ID: %s", moderator.String(), user.ID)}
	svc := ctx.Services().Warnings

	if index == 0 {
		count, err := svc.ClearAll(ctx.Context(), guildID, user.ID)
		if err != nil {
			return ctx.RespondStorageError(err)
		}
		if count == 0 {
			return ctx.RespondEmbed(&discordgo.MessageEmbed{
				Description: fmt.Sprintf("✅ **%s** has no warnings to clear.", name),
				Color:       discord.ColorSuccess,
			})
		}
		ctx.Services().Publish(models.ActionClearWarn, guildID, user.ID, moderator.ID, "all")
		return ctx.RespondEmbed(&discordgo.MessageEmbed{
			Title:       "🗑️  All Warnings Cleared",
			Description: fmt.Sprintf("Removed %s from %s.", plural(count, "warning"), user.Mention()),
			Color:       discord.ColorSuccess,
			Footer:      footer,
		})
	}

	removed, _, err := svc.ClearOne(ctx.Context(), guildID, user.ID, index)
	var rangeErr *warnings.InvalidIndexError
	switch {
	case errors.Is(err, warnings.ErrNoWarnings):
		return ctx.RespondEmbed(&discordgo.MessageEmbed{
			Description: fmt.Sprintf("✅ **%s** has no warnings.", name),
			Color:       discord.ColorSuccess,
		})
	case errors.As(err, &rangeErr):
		return ctx.RespondEmbed(&discordgo.MessageEmbed{
			Description: fmt.Sprintf("❌ Invalid number. They have **%d** warning(s).", rangeErr.Count),
			Color:       discord.ColorError,
		})
	case err != nil:
		return ctx.RespondStorageError(err)
	}

	ctx.Services().Publish(models.ActionClearWarn, guildID, user.ID, moderator.ID, fmt.Sprintf("#%d: %s", index, removed.Reason))
	return ctx.RespondEmbed(&discordgo.MessageEmbed{
		Title: "🗑️  Warning Removed",
		Color: discord.ColorSuccess,
		Fields: []*discordgo.MessageEmbedField{
			discord.Field("Member", user.Mention(), true),
			discord.Field("Removed #", strconv.Itoa(index), true),
			discord.Field("Reason was", removed.Reason, false),
		},
		Footer: footer,
	})
}

// indexChoices offers "all" plus one choice per warning matching the typed prefix.
func indexChoices(list []models.Warn, typed string) []*discordgo.ApplicationCommandOptionChoice {
	typed = strings.ToLower(strings.TrimSpace(typed))
	choices := make([]*discordgo.ApplicationCommandOptionChoice, 0, 25)
	if strings.HasPrefix(clearAll, typed) {
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{
			Name:  fmt.Sprintf("All warnings (%d)", len(list)),
			Value: clearAll,
		})
	}
	for i, w := range list {
		if len(choices) == 25 {
			break
		}
		n := strconv.Itoa(i + 1)
		if typed != "" && !strings.HasPrefix(n, typed) {
			continue
		}
		name := fmt.Sprintf("#%s - %s", n, w.Reason)
		if r := []rune(name); len(r) > 100 {
			name = string(r[:97]) + "..."
		}
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{Name: name, Value: n})
	}
	return choices
}

func clearWarnAutoComplete(ctx *discord.CommandContext) {
	// Autocomplete payloads carry no resolved data, only the raw ID.
	userID := ""
	if opt := ctx.GetOption("member"); opt != nil {
		userID, _ = opt.Value.(string)
	}
	typed := ""
	if focused := ctx.FocusedOption(); focused != nil {
		typed, _ = focused.Value.(string)
	}

	var list []models.Warn
	if userID != "" {
		var err error
		list, err = ctx.Services().Warnings.List(ctx.Context(), ctx.Interaction.GuildID, userID)
		if err != nil {
			logger.Error(fmt.Sprintf("Error en autocompletado de clearwarn: %v", err), "Warns")
		}
	}

	if err := ctx.SendAutoCompleteChoices(indexChoices(list, typed)); err != nil {
		logger.Debug(fmt.Sprintf("Error enviando opciones de autocompletado: %v", err), "Warns")
	}
}
