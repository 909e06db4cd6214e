// Package storage defines the key-value Store the bot persists its data in,
// together with the file, memory, MongoDB and Redis backends.
package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/goccy/go-json"
)

// Buckets used by the bot.
const (
	BucketLogChannels = "log_channels"
	BucketWarns       = "warns"
)

// ErrNotFound is returned by Get when the key holds no value.
var ErrNotFound = errors.New("storage: key not found")

// Key addresses a value. UserID is empty for guild-level values.
type Key struct {
	Bucket  string
	GuildID string
	UserID  string
}

// GuildKey builds a guild-level key.
func GuildKey(bucket, guildID string) Key {
	return Key{Bucket: bucket, GuildID: guildID}
}

// MemberKey builds a key scoped to a user inside a guild.
func MemberKey(bucket, guildID, userID string) Key {
	return Key{Bucket: bucket, GuildID: guildID, UserID: userID}
}

func (k Key) String() string {
	if k.UserID == "" {
		return fmt.Sprintf("%s:%s", k.Bucket, k.GuildID)
	}
	return fmt.Sprintf("%s:%s:%s", k.Bucket, k.GuildID, k.UserID)
}

func (k Key) validate() error {
	if k.Bucket == "" || k.GuildID == "" {
		return fmt.Errorf("storage: invalid key %q", k.String())
	}
	return nil
}

// Store is a key-value store. Implementations are safe for concurrent use.
type Store interface {
	// Get returns ErrNotFound when the key is absent.
	Get(ctx context.Context, key Key) ([]byte, error)
	Set(ctx context.Context, key Key, value []byte) error
	// Delete of an absent key is not an error.
	Delete(ctx context.Context, key Key) error
	Close() error
}

// GetJSON decodes the value at key into v.
func GetJSON(ctx context.Context, s Store, key Key, v interface{}) error {
	data, err := s.Get(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("storage: decode %s: %w", key, err)
	}
	return nil
}

// SetJSON encodes v and stores it at key.
func SetJSON(ctx context.Context, s Store, key Key, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("storage: encode %s: %w", key, err)
	}
	return s.Set(ctx, key, data)
}
