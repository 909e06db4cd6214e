package extras

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/PancyStudios/PancyModBot/pkg/discord"
	"github.com/PancyStudios/PancyModBot/pkg/logger"
	"github.com/bwmarrin/discordgo"
)

// maxReminder is the longest wait remindme accepts.
const maxReminder = 7 * 24 * time.Hour

var (
	errReminderFormat = errors.New("❌ Invalid time format. Use `10s`, `5m`, `2h`, or `1d`.")
	errReminderTooLong = errors.New("❌ Maximum reminder time is **7 days**.")
)

var reminderUnits = map[byte]time.Duration{
	's': time.Second,
	'm': time.Minute,
	'h': time.Hour,
	'd': 24 * time.Hour,
}

// parseReminder reads a number followed by one of s, m, h or d.
func parseReminder(raw string) (time.Duration, error) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if len(raw) < 2 {
		return 0, errReminderFormat
	}
	unit, ok := reminderUnits[raw[len(raw)-1]]
	if !ok {
		return 0, errReminderFormat
	}
	n, err := strconv.ParseUint(raw[:len(raw)-1], 10, 32)
	if err != nil || n == 0 {
		return 0, errReminderFormat
	}
	d := time.Duration(n) * unit
	if d > maxReminder || d/unit != time.Duration(n) {
		return 0, errReminderTooLong
	}
	return d, nil
}

func createRemindMeCommand() *discord.Command {
	return discord.NewCommand(
		"remindme",
		"Set a reminder. Format: 10s, 5m, 2h, 1d.",
		"extras",
		remindMeHandler,
	).WithOptions(
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "time",
			Description: "Time until reminder (e.g. 30m, 2h, 1d)",
			Required:    true,
			MaxLength:   10,
		},
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "reminder",
			Description: "What to remind you about",
			Required:    true,
			MaxLength:   1000,
		},
	).WithCooldown(5 * time.Second)
}

// schedule runs fire after d unless ctx ends first.
func schedule(ctx context.Context, d time.Duration, fire func()) {
	timer := time.AfterFunc(d, fire)
	stop := context.AfterFunc(ctx, func() { timer.Stop() })
	// Release the context hook once the timer has had its chance to run.
	time.AfterFunc(d+time.Second, func() { stop() })
}

func remindMeHandler(ctx *discord.CommandContext) error {
	raw := ctx.GetStringOption("time")
	d, err := parseReminder(raw)
	if err != nil {
		return ctx.ReplyEphemeralEmbed(discord.ErrorEmbed(err.Error()))
	}

	text := ctx.GetStringOption("reminder")
	fires := time.Now().Add(d).Unix()
	if err := ctx.ReplyEmbed(&discordgo.MessageEmbed{
		Title:       "⏰  Reminder Set",
		Description: "I'll remind you about:\n> " + text,
		Color:       discord.ColorSuccess,
		Fields:      []*discordgo.MessageEmbedField{discord.Field("Fires", fmt.Sprintf("<t:%d:R>  (<t:%d:t>)", fires, fires), false)},
		Footer:      &discordgo.MessageEmbedFooter{Text: "Reminder will be sent in this channel."},
	}); err != nil {
		return err
	}

	session, channelID, user := ctx.Session, ctx.Interaction.ChannelID, ctx.User()
	schedule(ctx.Context(), d, func() {
		_, err := session.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
			Content: user.Mention(),
			Embed: &discordgo.MessageEmbed{
				Title:       "⏰  Reminder!",
				Description: "> " + text,
				Color:       discord.ColorInfo,
				Footer:      &discordgo.MessageEmbedFooter{Text: fmt.Sprintf("Set %s ago", strings.TrimSpace(raw))},
			},
			AllowedMentions: &discordgo.MessageAllowedMentions{Users: []string{user.ID}},
		})
		if err != nil {
			logger.Warn(fmt.Sprintf("No se pudo enviar el recordatorio de %s: %v", user.ID, err), "RemindMe")
		}
	})
	return nil
}
