package mqtt

import (
	"context"
	"errors"
	"testing"

	"github.com/PancyStudios/PancyModBot/pkg/logchannel"
	"github.com/PancyStudios/PancyModBot/pkg/models"
	"github.com/PancyStudios/PancyModBot/pkg/storage"
	"github.com/PancyStudios/PancyModBot/pkg/warnings"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTopicMatch(t *testing.T) {
	tests := []struct {
		pattern string
		topic   string
		want    bool
	}{
		{"modbot/events/kick", "modbot/events/kick", true},
		{"modbot/events/+", "modbot/events/ban", true},
		{"modbot/events/+", "modbot/events/ban/extra", false},
		{"modbot/#", "modbot/events/ban", true},
		{"modbot/#", "modbot", true},
		{"modbot/response/+/+", "modbot/response/warnings.list/abc", true},
		{"modbot/request/warnings.list", "modbot/request/warnings.count", false},
		{"modbot/events", "modbot/events/kick", false},
	}

	for _, tt := range tests {
		if got := topicMatch(tt.pattern, tt.topic); got != tt.want {
			t.Errorf("topicMatch(%q, %q) = %v, want %v", tt.pattern, tt.topic, got, tt.want)
		}
	}
}

func TestTopics(t *testing.T) {
	assert.Equal(t, "modbot/status", StatusTopic())
	assert.Equal(t, "modbot/events/ban", EventTopic(models.ActionBan))
	assert.Equal(t, "modbot/request/warnings.list", requestTopic(TopicWarningsList))
	assert.Equal(t, "modbot/response/warnings.list/c1", responseTopic(TopicWarningsList, "c1"))
}

func TestHandleRequest(t *testing.T) {
	var seen map[string]interface{}
	topic, resp, err := handleRequest(
		"modbot/request/echo",
		[]byte(`{"correlationId":"c1","payload":{"value":"hi"}}`),
		func(payload map[string]interface{}) (interface{}, error) {
			seen = payload
			return payload["value"], nil
		},
	)

	require.NoError(t, err)
	assert.Equal(t, "modbot/response/echo/c1", topic)
	assert.Equal(t, "c1", resp.CorrelationID)
	assert.Equal(t, "hi", resp.Data)
	assert.Empty(t, resp.Error)
	assert.Equal(t, "echo", seen["_topic"])
}

func TestHandleRequestCallbackError(t *testing.T) {
	_, resp, err := handleRequest(
		"modbot/request/echo",
		[]byte(`{"correlationId":"c2"}`),
		func(map[string]interface{}) (interface{}, error) { return nil, errors.New("boom") },
	)

	require.NoError(t, err)
	assert.Equal(t, "boom", resp.Error)
	assert.Nil(t, resp.Data)
}

func TestHandleRequestInvalidJSON(t *testing.T) {
	_, _, err := handleRequest("modbot/request/echo", []byte("not json"), nil)
	assert.Error(t, err)

	_, _, err = handleRequest("modbot/request/echo", []byte(`{"payload":{}}`), nil)
	assert.Error(t, err, "a request without correlationId can't be answered")
}

func TestLogChannelHandler(t *testing.T) {
	svc := logchannel.NewService(storage.NewMemoryStore())
	handler := LogChannelHandler(svc)

	data, err := handler(map[string]interface{}{"guildId": "100"})
	require.NoError(t, err)
	assert.Equal(t, LogChannelResponse{GuildID: "100"}, data)

	require.NoError(t, svc.Set(context.Background(), "100", "555"))
	data, err = handler(map[string]interface{}{"guildId": "100"})
	require.NoError(t, err)
	assert.Equal(t, LogChannelResponse{GuildID: "100", ChannelID: "555", Enabled: true}, data)

	_, err = handler(map[string]interface{}{})
	assert.Error(t, err)
}

func TestWarningsListHandler(t *testing.T) {
	svc := warnings.NewService(storage.NewMemoryStore())
	ctx := context.Background()
	_, err := svc.Add(ctx, "100", "200", models.Warn{Reason: "spam", Moderator: "mod", ModeratorID: 1})
	require.NoError(t, err)

	handler := WarningsListHandler(svc)

	data, err := handler(map[string]interface{}{"guildId": "100", "userId": "200"})
	require.NoError(t, err)
	resp := data.(WarningsListResponse)
	assert.Equal(t, 1, resp.Count)
	assert.Equal(t, "spam", resp.Warnings[0].Reason)

	data, err = handler(map[string]interface{}{"guildId": "100", "userId": "300"})
	require.NoError(t, err)
	assert.Equal(t, 0, data.(WarningsListResponse).Count)
	assert.NotNil(t, data.(WarningsListResponse).Warnings)

	_, err = handler(map[string]interface{}{"guildId": "100"})
	assert.Error(t, err)
	_, err = handler(map[string]interface{}{"guildId": "abc", "userId": "200"})
	assert.Error(t, err)
}

func TestPublishModerationWhenDisconnected(t *testing.T) {
	var c *Client
	c.PublishModeration(models.ModerationEvent{Action: models.ActionKick})
	assert.False(t, c.IsConnected())
}
