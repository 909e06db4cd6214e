package extras

import (
	"errors"
	"fmt"
	"strings"

	"github.com/PancyStudios/PancyModBot/pkg/discord"
	"github.com/PancyStudios/PancyModBot/pkg/logger"
	"github.com/bwmarrin/discordgo"
)

var numberEmojis = []string{"1️⃣", "2️⃣", "3️⃣", "4️⃣"}

func createPollCommand() *discord.Command {
	opts := []*discordgo.ApplicationCommandOption{
		{Type: discordgo.ApplicationCommandOptionString, Name: "question", Description: "Poll question", Required: true, MaxLength: 250},
	}
	for i := range numberEmojis {
		desc := fmt.Sprintf("Option %d", i+1)
		if i >= 2 {
			desc += " (optional)"
		}
		opts = append(opts, &discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        fmt.Sprintf("option%d", i+1),
			Description: desc,
			Required:    i < 2,
			MaxLength:   200,
		})
	}

	return discord.NewCommand(
		"poll",
		"Create a reaction poll with up to 4 options.",
		"extras",
		pollHandler,
	).WithOptions(opts...).
		WithBotPermissions(discordgo.PermissionAddReactions).
		InGuildOnly()
}

// pollEmbed numbers the non-empty options. It needs between 2 and 4 of them.
func pollEmbed(question string, options []string, author *discordgo.User, authorName string) (*discordgo.MessageEmbed, int, error) {
	var kept []string
	for _, o := range options {
		if o = strings.TrimSpace(o); o != "" {
			kept = append(kept, o)
		}
	}
	switch {
	case len(kept) < 2:
		return nil, 0, errors.New("❌ Please provide at least **2 options**.")
	case len(kept) > len(numberEmojis):
		return nil, 0, fmt.Errorf("❌ Maximum **%d options** allowed.", len(numberEmojis))
	}

	lines := make([]string, len(kept))
	for i, o := range kept {
		lines[i] = numberEmojis[i] + "  " + o
	}
	return &discordgo.MessageEmbed{
		Title:       "📊  " + question,
		Description: strings.Join(lines, "\n\n"),
		Color:       discord.ColorInfo,
		Author:      &discordgo.MessageEmbedAuthor{Name: authorName, IconURL: author.AvatarURL("")},
		Footer:      &discordgo.MessageEmbedFooter{Text: "Vote by reacting below!"},
	}, len(kept), nil
}

func pollHandler(ctx *discord.CommandContext) error {
	options := make([]string, len(numberEmojis))
	for i := range options {
		options[i] = ctx.GetStringOption(fmt.Sprintf("option%d", i+1))
	}

	user := ctx.User()
	name := user.DisplayName()
	if m := ctx.Member(); m != nil && m.Nick != "" {
		name = m.Nick
	}

	embed, n, err := pollEmbed(ctx.GetStringOption("question"), options, user, name)
	if err != nil {
		return ctx.ReplyEphemeralEmbed(discord.ErrorEmbed(err.Error()))
	}
	if err := ctx.ReplyEmbed(embed); err != nil {
		return err
	}

	msg, err := ctx.Session.InteractionResponse(ctx.Interaction.Interaction)
	if err != nil {
		return err
	}
	for _, emoji := range numberEmojis[:n] {
		if err := ctx.Session.MessageReactionAdd(msg.ChannelID, msg.ID, emoji); err != nil {
			logger.Warn(fmt.Sprintf("No se pudo añadir la reacción %s a la encuesta: %v", emoji, err), "Poll")
		}
	}
	return nil
}
