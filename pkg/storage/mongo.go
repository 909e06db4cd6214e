package storage

import (
	"context"
	"fmt"

	"github.com/PancyStudios/PancyModBot/pkg/database"
	"go.mongodb.org/mongo-driver/bson"
)

const mongoCollection = "kv"

// kvDocument is the shape of every value kept in the "kv" collection.
type kvDocument struct {
	ID      string `bson:"_id"`
	Bucket  string `bson:"bucket"`
	GuildID string `bson:"guildId"`
	UserID  string `bson:"userId,omitempty"`
	Value   string `bson:"value"`
}

// MongoStore keeps values in MongoDB through a cached DataManager.
// Writes made while the database is offline are queued and replayed on reconnect.
type MongoStore struct {
	dm *database.DataManager[kvDocument]
}

// NewMongoStore builds a store on top of an already initialised database.
func NewMongoStore(db *database.Database) *MongoStore {
	dm := database.NewDataManager[kvDocument](mongoCollection, db)
	dm.PrimeCache()
	return &MongoStore{dm: dm}
}

func (m *MongoStore) Get(ctx context.Context, key Key) ([]byte, error) {
	if err := key.validate(); err != nil {
		return nil, err
	}

	doc, err := m.dm.Get(ctx, bson.M{"_id": key.String()})
	if err != nil {
		return nil, fmt.Errorf("storage: mongo get %s: %w", key, err)
	}
	if doc == nil {
		return nil, ErrNotFound
	}
	return []byte(doc.Value), nil
}

func (m *MongoStore) Set(ctx context.Context, key Key, value []byte) error {
	if err := key.validate(); err != nil {
		return err
	}

	_, err := m.dm.Set(ctx, bson.M{"_id": key.String()}, bson.M{
		"bucket":  key.Bucket,
		"guildId": key.GuildID,
		"userId":  key.UserID,
		"value":   string(value),
	})
	if err != nil {
		return fmt.Errorf("storage: mongo set %s: %w", key, err)
	}
	return nil
}

func (m *MongoStore) Delete(ctx context.Context, key Key) error {
	if err := key.validate(); err != nil {
		return err
	}
	if err := m.dm.Delete(ctx, bson.M{"_id": key.String()}); err != nil {
		return fmt.Errorf("storage: mongo delete %s: %w", key, err)
	}
	return nil
}

// Close drops the cached documents. The connection belongs to the database package.
func (m *MongoStore) Close() error {
	m.dm.ClearCache()
	return nil
}
