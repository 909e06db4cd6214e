package admin

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/PancyStudios/PancyModBot/pkg/discord"
	"github.com/PancyStudios/PancyModBot/pkg/logger"
	"github.com/bwmarrin/discordgo"
	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"
)

const (
	evalTimeout   = 10 * time.Second
	maxEvalOutput = 1900
	// evalImportPath is where the bot's values are exposed to evaluated code.
	evalImportPath = "github.com/PancyStudios/PancyModBot/internal/commands/admin"
)

func createEvalCommand() *discord.Command {
	return discord.NewCommand(
		"eval",
		"Evaluate Go code with access to the bot. (Owner only)",
		"admin",
		evalHandler,
	).WithOptions(
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "code",
			Description: "Go expression or statements to evaluate",
			Required:    true,
		},
	).AsOwnerOnly()
}

// stripCodeFence removes a surrounding ```go ... ``` block.
func stripCodeFence(code string) string {
	code = strings.TrimSpace(code)
	code = strings.TrimPrefix(code, "```go")
	code = strings.TrimPrefix(code, "```")
	code = strings.TrimSuffix(code, "```")
	return strings.TrimSpace(code)
}

// formatEvalResult renders the value or error of an evaluation for Discord.
func formatEvalResult(res reflect.Value, err error) string {
	if err != nil {
		return fmt.Sprintf("❌ **Error:**\n```go\n%v\n```", err)
	}
	out := "nil"
	if res.IsValid() && res.CanInterface() {
		out = fmt.Sprintf("%#v", res.Interface())
	}
	if len(out) > maxEvalOutput {
		out = out[:maxEvalOutput] + "... (truncated)"
	}
	return fmt.Sprintf("✅ **Result:**\n```go\n%s\n```", out)
}

// newInterpreter returns a yaegi interpreter with the standard library and
// the given values importable from evalImportPath.
func newInterpreter(exports map[string]reflect.Value) (*interp.Interpreter, error) {
	i := interp.New(interp.Options{})
	if err := i.Use(stdlib.Symbols); err != nil {
		return nil, fmt.Errorf("cargando stdlib: %w", err)
	}
	if err := i.Use(interp.Exports{evalImportPath + "/admin": exports}); err != nil {
		return nil, fmt.Errorf("registrando variables: %w", err)
	}
	if _, err := i.Eval(`import . "` + evalImportPath + `"`); err != nil {
		return nil, fmt.Errorf("importando variables: %w", err)
	}
	return i, nil
}

// evaluate runs code with a deadline.
func evaluate(parent context.Context, code string, exports map[string]reflect.Value) (reflect.Value, error) {
	i, err := newInterpreter(exports)
	if err != nil {
		return reflect.Value{}, err
	}
	ctx, cancel := context.WithTimeout(parent, evalTimeout)
	defer cancel()
	return i.EvalWithContext(ctx, code)
}

func evalHandler(ctx *discord.CommandContext) error {
	if err := ctx.DeferEphemeral(); err != nil {
		return err
	}

	start := time.Now()
	services := ctx.Services()
	exports := map[string]reflect.Value{
		"Ctx":      reflect.ValueOf(ctx),
		"Bot":      reflect.ValueOf(ctx.Client),
		"Session":  reflect.ValueOf(ctx.Session),
		"Config":   reflect.ValueOf(services.Config),
		"Warnings": reflect.ValueOf(services.Warnings),
		"Logs":     reflect.ValueOf(services.LogChannels),
	}

	res, err := evaluate(ctx.Context(), stripCodeFence(ctx.GetStringOption("code")), exports)
	logger.Debug(fmt.Sprintf("Eval completado en %s", time.Since(start)), "AdminEval")
	return ctx.EditReply(formatEvalResult(res, err))
}
