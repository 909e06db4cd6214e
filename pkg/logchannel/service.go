// Package logchannel binds each guild to at most one channel that receives
// moderation and activity logs.
package logchannel

import (
	"context"
	"errors"
	"fmt"

	"github.com/PancyStudios/PancyModBot/pkg/models"
	"github.com/PancyStudios/PancyModBot/pkg/storage"
)

// Service reads and writes the guild → channel binding.
type Service struct {
	store storage.Store
}

// NewService returns a Service backed by store.
func NewService(store storage.Store) *Service {
	return &Service{store: store}
}

// Set binds guildID to channelID, replacing any previous binding.
func (s *Service) Set(ctx context.Context, guildID, channelID string) error {
	id := models.ParseSnowflake(channelID)
	if id == 0 {
		return fmt.Errorf("logchannel: invalid channel id %q", channelID)
	}
	return storage.SetJSON(ctx, s.store, storage.GuildKey(storage.BucketLogChannels, guildID), id)
}

// Unset removes the binding. Unsetting an unbound guild is not an error.
func (s *Service) Unset(ctx context.Context, guildID string) error {
	return s.store.Delete(ctx, storage.GuildKey(storage.BucketLogChannels, guildID))
}

// Get returns the bound channel. ok is false when logging is disabled for the guild.
func (s *Service) Get(ctx context.Context, guildID string) (channelID string, ok bool, err error) {
	var id int64
	err = storage.GetJSON(ctx, s.store, storage.GuildKey(storage.BucketLogChannels, guildID), &id)
	if errors.Is(err, storage.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return models.FormatSnowflake(id), id != 0, nil
}
