package mqtt

import (
	"context"
	"fmt"
	"time"

	"github.com/PancyStudios/PancyModBot/pkg/logchannel"
	"github.com/PancyStudios/PancyModBot/pkg/models"
	"github.com/PancyStudios/PancyModBot/pkg/warnings"
)

const (
	// TopicWarningsList answers {guildId, userId} with the user's warnings.
	TopicWarningsList = "warnings.list"
	// TopicLogChannelGet answers {guildId} with the guild's log channel.
	TopicLogChannelGet = "logchannel.get"
)

const handlerTimeout = 5 * time.Second

// WarningsListResponse is the data returned on TopicWarningsList.
type WarningsListResponse struct {
	GuildID  string        `json:"guildId"`
	UserID   string        `json:"userId"`
	Count    int           `json:"count"`
	Warnings []models.Warn `json:"warnings"`
}

func stringField(payload map[string]interface{}, key string) (string, error) {
	v, ok := payload[key].(string)
	if !ok || v == "" {
		return "", fmt.Errorf("falta el campo %q", key)
	}
	if models.ParseSnowflake(v) == 0 {
		return "", fmt.Errorf("el campo %q no es un ID válido", key)
	}
	return v, nil
}

// WarningsListHandler builds the TopicWarningsList handler over svc.
func WarningsListHandler(svc *warnings.Service) RequestHandler {
	return func(payload map[string]interface{}) (interface{}, error) {
		guildID, err := stringField(payload, "guildId")
		if err != nil {
			return nil, err
		}
		userID, err := stringField(payload, "userId")
		if err != nil {
			return nil, err
		}

		ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
		defer cancel()

		list, err := svc.List(ctx, guildID, userID)
		if err != nil {
			return nil, fmt.Errorf("no se pudieron leer las advertencias: %w", err)
		}
		if list == nil {
			list = []models.Warn{}
		}
		return WarningsListResponse{
			GuildID:  guildID,
			UserID:   userID,
			Count:    len(list),
			Warnings: list,
		}, nil
	}
}

// LogChannelResponse is the data returned on TopicLogChannelGet.
type LogChannelResponse struct {
	GuildID   string `json:"guildId"`
	ChannelID string `json:"channelId,omitempty"`
	Enabled   bool   `json:"enabled"`
}

// LogChannelHandler builds the TopicLogChannelGet handler over svc.
func LogChannelHandler(svc *logchannel.Service) RequestHandler {
	return func(payload map[string]interface{}) (interface{}, error) {
		guildID, err := stringField(payload, "guildId")
		if err != nil {
			return nil, err
		}

		ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
		defer cancel()

		channelID, ok, err := svc.Get(ctx, guildID)
		if err != nil {
			return nil, fmt.Errorf("no se pudo leer el canal de logs: %w", err)
		}
		return LogChannelResponse{GuildID: guildID, ChannelID: channelID, Enabled: ok}, nil
	}
}

// RegisterHandlers subscribes the request handlers served by the bot.
func (c *Client) RegisterHandlers(warns *warnings.Service, logs *logchannel.Service) {
	c.On(TopicWarningsList, WarningsListHandler(warns))
	c.On(TopicLogChannelGet, LogChannelHandler(logs))
}
