package admin

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStripCodeFence(t *testing.T) {
	tests := map[string]string{
		"1 + 1":                    "1 + 1",
		"```go\nfmt.Println(1)\n```": "fmt.Println(1)",
		"```\nx := 2\n```":          "x := 2",
		"  plain  ":                 "plain",
	}
	for in, want := range tests {
		assert.Equal(t, want, stripCodeFence(in))
	}
}

func TestFormatEvalResult(t *testing.T) {
	assert.Equal(t, "✅ **Result:**\n```go\n3\n```", formatEvalResult(reflect.ValueOf(3), nil))
	assert.Equal(t, "✅ **Result:**\n```go\nnil\n```", formatEvalResult(reflect.Value{}, nil))
	assert.Contains(t, formatEvalResult(reflect.Value{}, errors.New("boom")), "boom")

	long := formatEvalResult(reflect.ValueOf(strings.Repeat("a", 3000)), nil)
	assert.Contains(t, long, "... (truncated)")
	assert.Less(t, len(long), 2000)
}

func TestEvaluate(t *testing.T) {
	res, err := evaluate(context.Background(), "1 + 2", map[string]reflect.Value{})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Interface())

	res, err = evaluate(context.Background(), `strings.ToUpper("mod")`, map[string]reflect.Value{})
	require.NoError(t, err)
	assert.Equal(t, "MOD", res.Interface())

	_, err = evaluate(context.Background(), "undefinedThing()", map[string]reflect.Value{})
	assert.Error(t, err)
}

func TestCommandsAreOwnerOnly(t *testing.T) {
	for _, cmd := range Commands() {
		if cmd.Name == "amiadmin" {
			assert.False(t, cmd.OwnerOnly)
			continue
		}
		assert.True(t, cmd.OwnerOnly, cmd.Name)
	}
}
