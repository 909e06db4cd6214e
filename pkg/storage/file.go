package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/goccy/go-json"
)

// FileStore keeps one JSON document per bucket at <dir>/<bucket>.json.
//
// Guild-level buckets have the shape {guild: value} and member buckets
// {guild: {user: value}}. Every call loads and saves the whole document.
type FileStore struct {
	dir string
	mu  sync.Mutex
}

// NewFileStore returns a FileStore rooted at dir. Nothing is touched on disk until first use.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

func (f *FileStore) path(bucket string) string {
	return filepath.Join(f.dir, bucket+".json")
}

// load reads a bucket, creating the directory and an empty document when missing.
func (f *FileStore) load(bucket string) (map[string]json.RawMessage, error) {
	if err := os.MkdirAll(f.dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: create %s: %w", f.dir, err)
	}

	path := f.path(bucket)
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		if err := os.WriteFile(path, []byte("{}"), 0o644); err != nil {
			return nil, fmt.Errorf("storage: create %s: %w", path, err)
		}
		return map[string]json.RawMessage{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage: read %s: %w", path, err)
	}

	doc := map[string]json.RawMessage{}
	if len(data) == 0 {
		return doc, nil
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("storage: parse %s: %w", path, err)
	}
	return doc, nil
}

// save replaces the bucket file through a temp file and rename.
func (f *FileStore) save(bucket string, doc map[string]json.RawMessage) error {
	data, err := json.MarshalIndent(doc, "", "    ")
	if err != nil {
		return fmt.Errorf("storage: encode %s: %w", bucket, err)
	}

	path := f.path(bucket)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("storage: write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("storage: replace %s: %w", path, err)
	}
	return nil
}

func members(doc map[string]json.RawMessage, guildID string) (map[string]json.RawMessage, error) {
	users := map[string]json.RawMessage{}
	raw, ok := doc[guildID]
	if !ok {
		return users, nil
	}
	if err := json.Unmarshal(raw, &users); err != nil {
		return nil, fmt.Errorf("storage: guild %s is not a member map: %w", guildID, err)
	}
	return users, nil
}

func (f *FileStore) Get(_ context.Context, key Key) ([]byte, error) {
	if err := key.validate(); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	doc, err := f.load(key.Bucket)
	if err != nil {
		return nil, err
	}

	if key.UserID == "" {
		v, ok := doc[key.GuildID]
		if !ok {
			return nil, ErrNotFound
		}
		return v, nil
	}

	users, err := members(doc, key.GuildID)
	if err != nil {
		return nil, err
	}
	v, ok := users[key.UserID]
	if !ok {
		return nil, ErrNotFound
	}
	return v, nil
}

func (f *FileStore) Set(_ context.Context, key Key, value []byte) error {
	if err := key.validate(); err != nil {
		return err
	}
	if !json.Valid(value) {
		return fmt.Errorf("storage: value for %s is not valid JSON", key)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	doc, err := f.load(key.Bucket)
	if err != nil {
		return err
	}

	if key.UserID == "" {
		doc[key.GuildID] = json.RawMessage(value)
		return f.save(key.Bucket, doc)
	}

	users, err := members(doc, key.GuildID)
	if err != nil {
		return err
	}
	users[key.UserID] = json.RawMessage(value)

	raw, err := json.Marshal(users)
	if err != nil {
		return fmt.Errorf("storage: encode %s: %w", key, err)
	}
	doc[key.GuildID] = raw
	return f.save(key.Bucket, doc)
}

func (f *FileStore) Delete(_ context.Context, key Key) error {
	if err := key.validate(); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	doc, err := f.load(key.Bucket)
	if err != nil {
		return err
	}

	if key.UserID == "" {
		if _, ok := doc[key.GuildID]; !ok {
			return nil
		}
		delete(doc, key.GuildID)
		return f.save(key.Bucket, doc)
	}

	users, err := members(doc, key.GuildID)
	if err != nil {
		return err
	}
	if _, ok := users[key.UserID]; !ok {
		return nil
	}
	delete(users, key.UserID)

	if len(users) == 0 {
		delete(doc, key.GuildID)
	} else {
		raw, err := json.Marshal(users)
		if err != nil {
			return fmt.Errorf("storage: encode %s: %w", key, err)
		}
		doc[key.GuildID] = raw
	}
	return f.save(key.Bucket, doc)
}

func (f *FileStore) Close() error { return nil }
