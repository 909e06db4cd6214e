// Package encoding provides /encode and /decode, also reachable as prefix commands.
package encoding

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PancyStudios/PancyModBot/pkg/codec"
	"github.com/PancyStudios/PancyModBot/pkg/discord"
	"github.com/bwmarrin/discordgo"
)

const (
	// Results longer than this many characters are sent as a text file.
	maxInlineOutput = 1900

	msgEmptyInput = "❌ You need to provide something to encode/decode."
)

// Direction is encode or decode.
type Direction bool

const (
	Encode Direction = true
	Decode Direction = false
)

func (d Direction) String() string {
	if d == Encode {
		return "encode"
	}
	return "decode"
}

// Register adds /encode and /decode as top-level commands
func Register(client *discord.ExtendedClient) {
	client.CommandHandler.RegisterCommand(createCommand(Encode))
	client.CommandHandler.RegisterCommand(createCommand(Decode))
}

func methodChoices() []*discordgo.ApplicationCommandOptionChoice {
	choices := make([]*discordgo.ApplicationCommandOptionChoice, len(codec.Methods))
	for i, m := range codec.Methods {
		choices[i] = &discordgo.ApplicationCommandOptionChoice{Name: m.Display(), Value: string(m)}
	}
	return choices
}

func createCommand(dir Direction) *discord.Command {
	description := "Encode text using various methods."
	textDescription := "Text to encode"
	if dir == Decode {
		description = "Decode text using various methods."
		textDescription = "Text to decode"
	}

	return discord.NewCommand(
		dir.String(),
		description,
		"encoding",
		func(ctx *discord.CommandContext) error {
			method, _ := codec.ParseMethod(ctx.GetStringOption("method"))
			return Run(ctx.Sink(), dir, method, ctx.GetStringOption("text"))
		},
	).WithOptions(
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "method",
			Description: "Encoding method",
			Required:    true,
			Choices:     methodChoices(),
		},
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "text",
			Description: textDescription,
			Required:    true,
		},
	)
}

// Run converts text and writes the result to sink.
func Run(sink discord.ReplySink, dir Direction, method codec.Method, text string) error {
	if strings.TrimSpace(text) == "" {
		return sink.SendText(msgEmptyInput)
	}

	var (
		out   string
		label string
		err   error
	)
	if dir == Encode {
		out, err = codec.Encode(method, text)
		label = codec.EncodeLabel(method)
	} else {
		out, err = codec.Decode(method, text)
		label = codec.DecodeLabel(method)
	}

	var invalid *codec.InvalidInputError
	switch {
	case errors.Is(err, codec.ErrEmptyInput):
		return sink.SendText(msgEmptyInput)
	case errors.As(err, &invalid):
		return sink.SendText(fmt.Sprintf("❌ Invalid %s input.", method.Display()))
	case err != nil:
		return err
	}

	if utf8.RuneCountInString(out) > maxInlineOutput {
		name := fmt.Sprintf("Encryption_%s.txt", time.Now().Format("2006-01-02_15-04-05"))
		return sink.SendFile(fmt.Sprintf("📑 **%s**", label), name, strings.NewReader(out))
	}
	return sink.SendText(fmt.Sprintf("📑 **%s**```fix\n%s```", label, out))
}

// RunPrefix handles "<prefix>encode <method> <text>" and "<prefix>decode ...".
// args is the message content after the command word.
func RunPrefix(sink discord.ReplySink, dir Direction, args string) error {
	args = strings.TrimSpace(args)
	name, text, _ := strings.Cut(args, " ")
	if name == "" {
		return sink.SendText(usage(dir))
	}
	method, ok := codec.ParseMethod(name)
	if !ok {
		return sink.SendText(fmt.Sprintf("❌ Unknown method `%s`. %s", name, usage(dir)))
	}
	return Run(sink, dir, method, strings.TrimSpace(text))
}

func usage(dir Direction) string {
	names := make([]string, len(codec.Methods))
	for i, m := range codec.Methods {
		names[i] = string(m)
	}
	return fmt.Sprintf("Usage: `%s <%s> <text>`", dir, strings.Join(names, "|"))
}
