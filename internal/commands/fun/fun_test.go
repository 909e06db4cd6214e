package fun

import (
	"encoding/base64"
	"testing"

	"github.com/PancyStudios/PancyModBot/pkg/discord"
	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seq returns an intn that yields the given values in order.
func seq(values ...int) intn {
	i := 0
	return func(n int) int {
		v := values[i%len(values)]
		i++
		return v % n
	}
}

func TestEightBall(t *testing.T) {
	user := &discordgo.User{ID: "1"}

	e := eightBallEmbed("Will it work?", user, seq(0))
	assert.Equal(t, discord.ColorSuccess, e.Color)
	assert.Equal(t, "✅ Answer", e.Fields[1].Name)
	assert.Equal(t, "Yes, absolutely!", e.Fields[1].Value)

	e = eightBallEmbed("?", user, seq(len(eightBallPositive)))
	assert.Equal(t, discord.ColorGold, e.Color)
	assert.Equal(t, eightBallNeutral[0], e.Fields[1].Value)

	e = eightBallEmbed("?", user, seq(len(eightBallPositive)+len(eightBallNeutral)+len(eightBallNegative)-1))
	assert.Equal(t, discord.ColorError, e.Color)
	assert.Equal(t, "No way.", e.Fields[1].Value)
}

func TestCoinflip(t *testing.T) {
	assert.Equal(t, "**bob** flipped a coin and got **Heads**!", coinflipEmbed("bob", seq(0)).Description)
	assert.Equal(t, "🌑 Coin Flip", coinflipEmbed("bob", seq(1)).Title)
}

func TestF(t *testing.T) {
	assert.Equal(t, "**bob** has paid their respects ❤️", fEmbed("bob", "", seq(0)).Description)
	assert.Equal(t, "**bob** has paid their respects for **exams** 💜", fEmbed("bob", "exams", seq(4)).Description)
}

func TestReverse(t *testing.T) {
	assert.Equal(t, "olleh", reverse("hello"))
	assert.Equal(t, "ñaña", reverse("añañ"))
	assert.Equal(t, "enoyreve@\u200b", reverse("@everyone"))
}

func TestRate(t *testing.T) {
	e := rateEmbed("pizza", seq(10000))
	assert.Equal(t, "**100.00 / 100**", e.Fields[0].Value)
	assert.Equal(t, "Excellent! 🌟", e.Fields[1].Value)

	e = rateEmbed("pizza", seq(4999))
	assert.Equal(t, "**49.99 / 100**", e.Fields[0].Value)
	assert.Equal(t, discord.ColorWarn, e.Color)

	assert.Equal(t, "Yikes... 💀", rateEmbed("x", seq(0)).Fields[1].Value)
}

func TestSlot(t *testing.T) {
	user := &discordgo.User{ID: "1"}
	assert.Equal(t, discord.ColorGold, slotEmbed(user, "bob", seq(2, 2, 2)).Color)
	assert.Equal(t, discord.ColorSuccess, slotEmbed(user, "bob", seq(1, 3, 1)).Color)
	e := slotEmbed(user, "bob", seq(0, 1, 2))
	assert.Equal(t, discord.ColorError, e.Color)
	assert.Equal(t, "**[ 🍎  🍊  🍐 ]**", e.Fields[0].Value)
}

func TestDice(t *testing.T) {
	assert.Equal(t, "🎉 You win!", diceEmbed("Bot", "bob", seq(0, 5)).Fields[2].Value)
	assert.Equal(t, "💀 You lost!", diceEmbed("Bot", "bob", seq(5, 0)).Fields[2].Value)
	assert.Equal(t, "🤝 It's a tie!", diceEmbed("Bot", "bob", seq(3, 3)).Fields[2].Value)
}

func TestGeneratePassword(t *testing.T) {
	pw, err := generatePassword(18)
	require.NoError(t, err)
	raw, err := base64.RawURLEncoding.DecodeString(pw)
	require.NoError(t, err)
	assert.Len(t, raw, 18)

	other, _ := generatePassword(18)
	assert.NotEqual(t, pw, other)

	_, err = generatePassword(2)
	assert.Error(t, err)
	_, err = generatePassword(1401)
	assert.Error(t, err)
}

func TestRoulette(t *testing.T) {
	e := rouletteEmbed("red", seq(1))
	assert.Equal(t, discord.ColorSuccess, e.Color)
	assert.Equal(t, "🔴 Red", e.Fields[0].Value)

	e = rouletteEmbed("red", seq(3))
	assert.Equal(t, discord.ColorError, e.Color)
	assert.Equal(t, "🟡 Yellow", e.Fields[1].Value)
}

func TestCommandNamesAreValid(t *testing.T) {
	for _, cmd := range Commands() {
		assert.Regexp(t, `^[a-z0-9_-]{1,32}$`, cmd.Name)
	}
}
