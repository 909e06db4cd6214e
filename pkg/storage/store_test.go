package storage

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func backends(t *testing.T) map[string]Store {
	return map[string]Store{
		"memory": NewMemoryStore(),
		"file":   NewFileStore(filepath.Join(t.TempDir(), "data")),
	}
}

func TestStoreContract(t *testing.T) {
	ctx := context.Background()

	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			guild := GuildKey(BucketLogChannels, "100")
			member := MemberKey(BucketWarns, "100", "200")

			_, err := s.Get(ctx, guild)
			assert.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, s.Set(ctx, guild, []byte(`555`)))
			require.NoError(t, s.Set(ctx, member, []byte(`[{"reason":"spam"}]`)))

			got, err := s.Get(ctx, guild)
			require.NoError(t, err)
			assert.JSONEq(t, `555`, string(got))

			got, err = s.Get(ctx, member)
			require.NoError(t, err)
			assert.JSONEq(t, `[{"reason":"spam"}]`, string(got))

			require.NoError(t, s.Delete(ctx, guild))
			_, err = s.Get(ctx, guild)
			assert.ErrorIs(t, err, ErrNotFound)

			// Deleting twice is fine.
			require.NoError(t, s.Delete(ctx, guild))
			require.NoError(t, s.Delete(ctx, member))
			_, err = s.Get(ctx, member)
			assert.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, s.Close())
		})
	}
}

func TestStoreRejectsInvalidKey(t *testing.T) {
	ctx := context.Background()

	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, err := s.Get(ctx, Key{Bucket: BucketWarns})
			assert.Error(t, err)
			assert.Error(t, s.Set(ctx, Key{GuildID: "1"}, []byte(`1`)))
		})
	}
}

func TestFileStoreCreatesMissingFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")
	s := NewFileStore(dir)

	_, err := s.Get(context.Background(), GuildKey(BucketLogChannels, "1"))
	assert.ErrorIs(t, err, ErrNotFound)

	data, err := os.ReadFile(filepath.Join(dir, "log_channels.json"))
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(data))
}

func TestFileStoreLayout(t *testing.T) {
	dir := t.TempDir()
	s := NewFileStore(dir)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, GuildKey(BucketLogChannels, "1"), []byte(`10`)))
	require.NoError(t, s.Set(ctx, MemberKey(BucketWarns, "1", "2"), []byte(`["a"]`)))
	require.NoError(t, s.Set(ctx, MemberKey(BucketWarns, "1", "3"), []byte(`["b"]`)))

	data, err := os.ReadFile(filepath.Join(dir, "log_channels.json"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"1": 10}`, string(data))

	data, err = os.ReadFile(filepath.Join(dir, "warns.json"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"1": {"2": ["a"], "3": ["b"]}}`, string(data))

	// Removing the last member of a guild drops the guild entry.
	require.NoError(t, s.Delete(ctx, MemberKey(BucketWarns, "1", "2")))
	require.NoError(t, s.Delete(ctx, MemberKey(BucketWarns, "1", "3")))
	data, err = os.ReadFile(filepath.Join(dir, "warns.json"))
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(data))
}

func TestFileStoreRejectsInvalidJSON(t *testing.T) {
	s := NewFileStore(t.TempDir())
	err := s.Set(context.Background(), GuildKey(BucketLogChannels, "1"), []byte(`not json`))
	assert.Error(t, err)
}

func TestFileStoreConcurrentWriters(t *testing.T) {
	s := NewFileStore(t.TempDir())
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			user := string(rune('a' + i))
			assert.NoError(t, s.Set(ctx, MemberKey(BucketWarns, "1", user), []byte(`1`)))
		}(i)
	}
	wg.Wait()

	data, err := os.ReadFile(filepath.Join(s.dir, "warns.json"))
	require.NoError(t, err)

	var doc map[string]map[string]int
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Len(t, doc["1"], 20)
}

func TestJSONHelpers(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	key := MemberKey(BucketWarns, "1", "2")

	type record struct {
		Reason string `json:"reason"`
	}

	require.NoError(t, SetJSON(ctx, s, key, []record{{Reason: "spam"}}))

	var got []record
	require.NoError(t, GetJSON(ctx, s, key, &got))
	assert.Equal(t, []record{{Reason: "spam"}}, got)

	var missing []record
	assert.ErrorIs(t, GetJSON(ctx, s, MemberKey(BucketWarns, "1", "9"), &missing), ErrNotFound)
}

func TestKeyString(t *testing.T) {
	assert.Equal(t, "log_channels:1", GuildKey(BucketLogChannels, "1").String())
	assert.Equal(t, "warns:1:2", MemberKey(BucketWarns, "1", "2").String())
	assert.Equal(t, "modbot:warns:1:2", redisKey(MemberKey(BucketWarns, "1", "2")))
}
