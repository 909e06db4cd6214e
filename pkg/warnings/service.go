// Package warnings manages the ordered list of warnings a member has in a guild.
package warnings

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/PancyStudios/PancyModBot/pkg/models"
	"github.com/PancyStudios/PancyModBot/pkg/storage"
	"github.com/google/uuid"
)

// ErrNoWarnings is returned by ClearOne when the member has no warnings.
var ErrNoWarnings = errors.New("warnings: member has no warnings")

// InvalidIndexError is returned by ClearOne for an index outside 1..Count.
type InvalidIndexError struct {
	Index int
	Count int
}

func (e *InvalidIndexError) Error() string {
	return fmt.Sprintf("warnings: index %d out of range 1..%d", e.Index, e.Count)
}

// Service stores warnings under the warns bucket, one list per (guild, user).
type Service struct {
	store storage.Store
	now   func() time.Time

	mu    sync.Mutex
	locks map[storage.Key]*sync.Mutex
}

// NewService returns a Service backed by store.
func NewService(store storage.Store) *Service {
	return &Service{
		store: store,
		now:   time.Now,
		locks: make(map[storage.Key]*sync.Mutex),
	}
}

// lock serializes read-modify-write cycles on one key.
func (s *Service) lock(key storage.Key) func() {
	s.mu.Lock()
	l, ok := s.locks[key]
	if !ok {
		l = &sync.Mutex{}
		s.locks[key] = l
	}
	s.mu.Unlock()

	l.Lock()
	return l.Unlock
}

func (s *Service) load(ctx context.Context, key storage.Key) ([]models.Warn, error) {
	var list []models.Warn
	err := storage.GetJSON(ctx, s.store, key, &list)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (s *Service) save(ctx context.Context, key storage.Key, list []models.Warn) error {
	if len(list) == 0 {
		return s.store.Delete(ctx, key)
	}
	return storage.SetJSON(ctx, s.store, key, list)
}

// Add appends a warning and returns the member's new total.
// ID and Timestamp are filled in when empty.
func (s *Service) Add(ctx context.Context, guildID, userID string, w models.Warn) (int, error) {
	key := storage.MemberKey(storage.BucketWarns, guildID, userID)
	defer s.lock(key)()

	list, err := s.load(ctx, key)
	if err != nil {
		return 0, err
	}

	if w.ID == "" {
		w.ID = uuid.NewString()
	}
	if w.Timestamp.IsZero() {
		w.Timestamp = models.NewWarnTime(s.now().UTC())
	}
	list = append(list, w)

	if err := s.save(ctx, key, list); err != nil {
		return 0, err
	}
	return len(list), nil
}

// List returns the member's warnings in the order they were given.
func (s *Service) List(ctx context.Context, guildID, userID string) ([]models.Warn, error) {
	return s.load(ctx, storage.MemberKey(storage.BucketWarns, guildID, userID))
}

// Count returns how many warnings the member has.
func (s *Service) Count(ctx context.Context, guildID, userID string) (int, error) {
	list, err := s.List(ctx, guildID, userID)
	return len(list), err
}

// ClearOne removes the warning at the 1-based index. Later warnings move up one place.
func (s *Service) ClearOne(ctx context.Context, guildID, userID string, index int) (models.Warn, int, error) {
	key := storage.MemberKey(storage.BucketWarns, guildID, userID)
	defer s.lock(key)()

	list, err := s.load(ctx, key)
	if err != nil {
		return models.Warn{}, 0, err
	}
	if len(list) == 0 {
		return models.Warn{}, 0, ErrNoWarnings
	}
	if index < 1 || index > len(list) {
		return models.Warn{}, len(list), &InvalidIndexError{Index: index, Count: len(list)}
	}

	removed := list[index-1]
	list = append(list[:index-1:index-1], list[index:]...)

	if err := s.save(ctx, key, list); err != nil {
		return models.Warn{}, 0, err
	}
	return removed, len(list), nil
}

// ClearAll removes every warning and returns how many there were.
func (s *Service) ClearAll(ctx context.Context, guildID, userID string) (int, error) {
	key := storage.MemberKey(storage.BucketWarns, guildID, userID)
	defer s.lock(key)()

	list, err := s.load(ctx, key)
	if err != nil {
		return 0, err
	}
	if len(list) == 0 {
		return 0, nil
	}
	if err := s.store.Delete(ctx, key); err != nil {
		return 0, err
	}
	return len(list), nil
}
