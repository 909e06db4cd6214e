package logchannel

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/PancyStudios/PancyModBot/pkg/storage"
	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	sent []string
	err  error
}

func (f *fakeSender) ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.sent = append(f.sent, channelID+":"+embed.Title)
	return &discordgo.Message{ChannelID: channelID}, nil
}

func TestSetUnsetGet(t *testing.T) {
	s := NewService(storage.NewMemoryStore())
	ctx := context.Background()

	_, ok, err := s.Get(ctx, "1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set(ctx, "1", "555"))
	ch, ok, err := s.Get(ctx, "1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "555", ch)

	// Overwrite keeps a single binding.
	require.NoError(t, s.Set(ctx, "1", "777"))
	ch, _, err = s.Get(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "777", ch)

	require.NoError(t, s.Unset(ctx, "1"))
	_, ok, err = s.Get(ctx, "1")
	require.NoError(t, err)
	assert.False(t, ok)

	// Unsetting again is harmless.
	require.NoError(t, s.Unset(ctx, "1"))
}

func TestSetRejectsInvalidChannel(t *testing.T) {
	s := NewService(storage.NewMemoryStore())
	assert.Error(t, s.Set(context.Background(), "1", "general"))
}

func TestDispatcher(t *testing.T) {
	svc := NewService(storage.NewMemoryStore())
	sender := &fakeSender{}
	d := NewDispatcher(svc, sender)
	ctx := context.Background()
	embed := &discordgo.MessageEmbed{Title: "Member Joined"}

	assert.False(t, d.Send(ctx, "1", embed), "unbound guild should drop the event")
	assert.Empty(t, sender.sent)

	require.NoError(t, svc.Set(ctx, "1", "555"))
	assert.True(t, d.Send(ctx, "1", embed))
	assert.Equal(t, []string{"555:Member Joined"}, sender.sent)

	sender.err = errors.New("Unknown Channel")
	assert.False(t, d.Send(ctx, "1", embed), "send failures are swallowed")
}

func TestTruncateField(t *testing.T) {
	short := strings.Repeat("a", 1024)
	assert.Equal(t, short, TruncateField(short))

	long := strings.Repeat("b", 2000)
	got := TruncateField(long)
	assert.Len(t, []rune(got), 1024)
	assert.True(t, strings.HasSuffix(got, "..."))
	assert.Equal(t, strings.Repeat("b", 1021), strings.TrimSuffix(got, "..."))
}

func TestPreview(t *testing.T) {
	assert.Equal(t, "*empty*", Preview(""))
	assert.Equal(t, "hi", Preview("hi"))
	assert.Len(t, []rune(Preview(strings.Repeat("é", 600))), 512)
}
