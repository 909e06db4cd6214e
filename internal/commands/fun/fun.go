// Package fun provides the /fun command group.
package fun

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	randv2 "math/rand/v2"
	"strings"
	"time"

	"github.com/PancyStudios/PancyModBot/pkg/discord"
	"github.com/PancyStudios/PancyModBot/pkg/logger"
	"github.com/bwmarrin/discordgo"
)

// intn returns a number in [0, n). Builders take it so tests can fix the outcome.
type intn func(n int) int

var defaultIntn intn = randv2.IntN

// Commands returns every /fun subcommand
func Commands() []*discord.Command {
	return []*discord.Command{
		createEightBallCommand(),
		createCoinflipCommand(),
		createFCommand(),
		createReverseCommand(),
		createRateCommand(),
		createSlotCommand(),
		createDiceCommand(),
		createPasswordCommand(),
		createRouletteCommand(),
	}
}

// Register registers the /fun group
func Register(client *discord.ExtendedClient) {
	group := client.CommandHandler.BuildCommandGroup(
		"fun",
		"Fun commands",
		Commands()...,
	)
	client.CommandHandler.AddGlobalCommand(group)
}

func stringOption(name, description string, required bool) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        name,
		Description: description,
		Required:    required,
	}
}

// displayName is the invoker's guild nickname or global name.
func displayName(ctx *discord.CommandContext) string {
	if m := ctx.Member(); m != nil && m.Nick != "" {
		return m.Nick
	}
	return ctx.User().DisplayName()
}

var (
	eightBallPositive = []string{"Yes, absolutely!", "Without a doubt.", "Most likely.", "Sure thing!", "It is certain.", "Signs point to yes."}
	eightBallNeutral  = []string{"Ask again later.", "Hard to say right now.", "You'll be the judge.", "The stars are unclear...", "Better not tell you now."}
	eightBallNegative = []string{"Very doubtful.", "Don't count on it.", "My sources say no.", "Outlook not so good.", "No way."}
)

func eightBallEmbed(question string, author *discordgo.User, r intn) *discordgo.MessageEmbed {
	total := len(eightBallPositive) + len(eightBallNeutral) + len(eightBallNegative)
	i := r(total)

	var answer, emoji string
	var color int
	switch {
	case i < len(eightBallPositive):
		answer, emoji, color = eightBallPositive[i], "✅", discord.ColorSuccess
	case i < len(eightBallPositive)+len(eightBallNeutral):
		answer, emoji, color = eightBallNeutral[i-len(eightBallPositive)], "🤔", discord.ColorGold
	default:
		answer, emoji, color = eightBallNegative[i-len(eightBallPositive)-len(eightBallNeutral)], "❌", discord.ColorError
	}

	return &discordgo.MessageEmbed{
		Color:  color,
		Author: &discordgo.MessageEmbedAuthor{Name: "Magic 8-Ball 🎱", IconURL: author.AvatarURL("")},
		Fields: []*discordgo.MessageEmbedField{
			discord.Field("❓ Question", question, false),
			discord.Field(emoji+" Answer", answer, false),
		},
	}
}

func createEightBallCommand() *discord.Command {
	return discord.NewCommand("8ball", "Ask the magic 8-ball a question.", "fun",
		func(ctx *discord.CommandContext) error {
			return ctx.ReplyEmbed(eightBallEmbed(ctx.GetStringOption("question"), ctx.User(), defaultIntn))
		},
	).WithOptions(stringOption("question", "The question to ask", true))
}

func coinflipEmbed(name string, r intn) *discordgo.MessageEmbed {
	result, emoji := "Heads", "🌕"
	if r(2) == 1 {
		result, emoji = "Tails", "🌑"
	}
	return &discordgo.MessageEmbed{
		Title:       emoji + " Coin Flip",
		Description: fmt.Sprintf("**%s** flipped a coin and got **%s**!", name, result),
		Color:       discord.ColorGold,
	}
}

func createCoinflipCommand() *discord.Command {
	return discord.NewCommand("coinflip", "Flip a coin!", "fun",
		func(ctx *discord.CommandContext) error {
			return ctx.ReplyEmbed(coinflipEmbed(displayName(ctx), defaultIntn))
		},
	)
}

var hearts = []string{"❤️", "💛", "💚", "💙", "💜"}

func fEmbed(name, text string, r intn) *discordgo.MessageEmbed {
	reason := ""
	if text != "" {
		reason = fmt.Sprintf("for **%s** ", text)
	}
	return &discordgo.MessageEmbed{
		Description: fmt.Sprintf("**%s** has paid their respects %s%s", name, reason, hearts[r(len(hearts))]),
		Color:       discord.ColorInfo,
		Footer:      &discordgo.MessageEmbedFooter{Text: "F"},
	}
}

func createFCommand() *discord.Command {
	return discord.NewCommand("f", "Press F to pay respects.", "fun",
		func(ctx *discord.CommandContext) error {
			return ctx.ReplyEmbed(fEmbed(displayName(ctx), ctx.GetStringOption("text"), defaultIntn))
		},
	).WithOptions(stringOption("text", "What to pay respects for (optional)", false))
}

// reverse reverses text by rune and breaks mentions with a zero-width space.
func reverse(text string) string {
	r := []rune(text)
	for i, j := 0, len(r)-1; i < j; i, j = i+1, j-1 {
		r[i], r[j] = r[j], r[i]
	}
	out := strings.ReplaceAll(string(r), "@", "@\u200b")
	return strings.ReplaceAll(out, "&", "&\u200b")
}

func createReverseCommand() *discord.Command {
	return discord.NewCommand("reverse", "Reverse any text.", "fun",
		func(ctx *discord.CommandContext) error {
			return ctx.Session.InteractionRespond(ctx.Interaction.Interaction, &discordgo.InteractionResponse{
				Type: discordgo.InteractionResponseChannelMessageWithSource,
				Data: &discordgo.InteractionResponseData{
					Embeds: []*discordgo.MessageEmbed{{
						Title:       "🔁 Reversed",
						Description: reverse(ctx.GetStringOption("text")),
						Color:       discord.ColorInfo,
					}},
					AllowedMentions: &discordgo.MessageAllowedMentions{},
				},
			})
		},
	).WithOptions(stringOption("text", "Text to reverse", true))
}

// rateEmbed scores thing out of 100 with two decimals.
func rateEmbed(thing string, r intn) *discordgo.MessageEmbed {
	score := float64(r(10001)) / 100

	color, verdict := discord.ColorError, "Yikes... 💀"
	switch {
	case score >= 75:
		color, verdict = discord.ColorSuccess, "Excellent! 🌟"
	case score >= 50:
		color, verdict = discord.ColorGold, "Pretty decent 👍"
	case score >= 25:
		color, verdict = discord.ColorWarn, "Could be better 🤷"
	}

	return &discordgo.MessageEmbed{
		Title: "⭐ Rating: " + thing,
		Color: color,
		Fields: []*discordgo.MessageEmbedField{
			discord.Field("Score", fmt.Sprintf("**%.2f / 100**", score), true),
			discord.Field("Verdict", verdict, true),
		},
	}
}

func createRateCommand() *discord.Command {
	return discord.NewCommand("rate", "Rate anything out of 100.", "fun",
		func(ctx *discord.CommandContext) error {
			return ctx.ReplyEmbed(rateEmbed(ctx.GetStringOption("thing"), defaultIntn))
		},
	).WithOptions(stringOption("thing", "What to rate", true))
}

var fruits = []string{"🍎", "🍊", "🍐", "🍋", "🍉", "🍇", "🍓", "🍒"}

func slotEmbed(author *discordgo.User, name string, r intn) *discordgo.MessageEmbed {
	a, b, c := fruits[r(len(fruits))], fruits[r(len(fruits))], fruits[r(len(fruits))]

	result, color := "💸 **No match. Better luck next time!**", discord.ColorError
	switch {
	case a == b && b == c:
		result, color = "🎉 **Jackpot! All three match!**", discord.ColorGold
	case a == b || a == c || b == c:
		result, color = "✨ **2 in a row! You win!**", discord.ColorSuccess
	}

	return &discordgo.MessageEmbed{
		Title: "🎰 Slot Machine",
		Color: color,
		Fields: []*discordgo.MessageEmbedField{
			discord.Field("Result", fmt.Sprintf("**[ %s  %s  %s ]**", a, b, c), false),
			discord.Field("Outcome", result, false),
		},
		Footer: &discordgo.MessageEmbedFooter{Text: name, IconURL: author.AvatarURL("")},
	}
}

func createSlotCommand() *discord.Command {
	return discord.NewCommand("slot", "Roll the slot machine 🎰", "fun",
		func(ctx *discord.CommandContext) error {
			return ctx.ReplyEmbed(slotEmbed(ctx.User(), displayName(ctx), defaultIntn))
		},
	)
}

func diceEmbed(botName, playerName string, r intn) *discordgo.MessageEmbed {
	botDice, playerDice := r(6)+1, r(6)+1

	msg, color := "🤝 It's a tie!", discord.ColorGold
	switch {
	case playerDice > botDice:
		msg, color = "🎉 You win!", discord.ColorSuccess
	case playerDice < botDice:
		msg, color = "💀 You lost!", discord.ColorError
	}

	return &discordgo.MessageEmbed{
		Title: "🎲 Dice Roll",
		Color: color,
		Fields: []*discordgo.MessageEmbedField{
			discord.Field("🤖 "+botName, fmt.Sprintf("Rolled **%d**", botDice), true),
			discord.Field("👤 "+playerName, fmt.Sprintf("Rolled **%d**", playerDice), true),
			discord.Field("Result", msg, false),
		},
	}
}

func createDiceCommand() *discord.Command {
	return discord.NewCommand("dice", "Roll a dice against the bot 🎲", "fun",
		func(ctx *discord.CommandContext) error {
			botName := "Bot"
			if me := ctx.Session.State.User; me != nil {
				botName = me.DisplayName()
			}
			return ctx.ReplyEmbed(diceEmbed(botName, displayName(ctx), defaultIntn))
		},
	)
}

const (
	minPasswordBytes     = 3
	maxPasswordBytes     = 1400
	defaultPasswordBytes = 18
)

// generatePassword returns nbytes of crypto randomness, URL-safe base64 encoded.
func generatePassword(nbytes int) (string, error) {
	if nbytes < minPasswordBytes || nbytes > maxPasswordBytes {
		return "", fmt.Errorf("❌ Number must be between **%d** and **%d**.", minPasswordBytes, maxPasswordBytes)
	}
	buf := make([]byte, nbytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

func createPasswordCommand() *discord.Command {
	minBytes := float64(minPasswordBytes)
	return discord.NewCommand("password", "Generate a secure random password sent to your DMs.", "fun", passwordHandler).
		WithOptions(&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionInteger,
			Name:        "nbytes",
			Description: "Length in bytes (3-1400, default 18)",
			MinValue:    &minBytes,
			MaxValue:    maxPasswordBytes,
		}).
		WithCooldown(5 * time.Second)
}

func passwordHandler(ctx *discord.CommandContext) error {
	nbytes := defaultPasswordBytes
	if ctx.HasOption("nbytes") {
		nbytes = int(ctx.GetIntOption("nbytes"))
	}

	pw, err := generatePassword(nbytes)
	if err != nil {
		return ctx.ReplyEphemeralEmbed(&discordgo.MessageEmbed{Description: err.Error(), Color: discord.ColorError})
	}

	dm, err := ctx.Session.UserChannelCreate(ctx.User().ID)
	if err == nil {
		_, err = ctx.Session.ChannelMessageSendEmbed(dm.ID, &discordgo.MessageEmbed{
			Title:       "🔐 Your Generated Password",
			Description: "```" + pw + "```",
			Color:       discord.ColorSuccess,
			Footer:      &discordgo.MessageEmbedFooter{Text: "Keep this safe, don't share it with anyone."},
		})
	}
	if err != nil {
		logger.Debug(fmt.Sprintf("No se pudo enviar la contraseña por MD: %v", err), "Fun")
		return ctx.ReplyEphemeral("❌ I couldn't DM you. Check your privacy settings.")
	}
	return ctx.ReplyEphemeralEmbed(&discordgo.MessageEmbed{Description: "📬 Password sent to your DMs!", Color: discord.ColorSuccess})
}

var rouletteColors = []struct {
	name, label, emoji string
}{
	{"blue", "Blue", "🔵"},
	{"red", "Red", "🔴"},
	{"green", "Green", "🟢"},
	{"yellow", "Yellow", "🟡"},
}

const rouletteSpin = 2 * time.Second

func rouletteEmbed(picked string, r intn) *discordgo.MessageEmbed {
	pickedIdx := 0
	for i, c := range rouletteColors {
		if c.name == picked {
			pickedIdx = i
		}
	}
	chosenIdx := r(len(rouletteColors))
	p, c := rouletteColors[pickedIdx], rouletteColors[chosenIdx]

	color, outcome := discord.ColorError, "💸 **Better luck next time!**"
	if pickedIdx == chosenIdx {
		color, outcome = discord.ColorSuccess, "🎉 **You won!**"
	}
	return &discordgo.MessageEmbed{
		Title: "🎡 Roulette Result",
		Color: color,
		Fields: []*discordgo.MessageEmbedField{
			discord.Field("You Picked", p.emoji+" "+p.label, true),
			discord.Field("Result", c.emoji+" "+c.label, true),
			discord.Field("Outcome", outcome, false),
		},
	}
}

func createRouletteCommand() *discord.Command {
	choices := make([]*discordgo.ApplicationCommandOptionChoice, len(rouletteColors))
	for i, c := range rouletteColors {
		choices[i] = &discordgo.ApplicationCommandOptionChoice{Name: c.emoji + " " + c.label, Value: c.name}
	}
	colour := stringOption("colour", "Choose: blue, red, green, or yellow", true)
	colour.Choices = choices

	return discord.NewCommand("roulette", "Colour roulette, pick a colour and try your luck!", "fun", rouletteHandler).
		WithOptions(colour).
		WithCooldown(3 * time.Second)
}

func rouletteHandler(ctx *discord.CommandContext) error {
	if err := ctx.Reply("🎡 Spinning the wheel..."); err != nil {
		return err
	}

	select {
	case <-ctx.Context().Done():
		return nil
	case <-time.After(rouletteSpin):
	}

	empty := ""
	_, err := ctx.Session.InteractionResponseEdit(ctx.Interaction.Interaction, &discordgo.WebhookEdit{
		Content: &empty,
		Embeds:  &[]*discordgo.MessageEmbed{rouletteEmbed(ctx.GetStringOption("colour"), defaultIntn)},
	})
	return err
}
