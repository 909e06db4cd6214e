package storage

import (
	"context"
	"fmt"

	"github.com/PancyStudios/PancyModBot/pkg/config"
	"github.com/PancyStudios/PancyModBot/pkg/database"
	"github.com/PancyStudios/PancyModBot/pkg/logger"
)

// Open builds the Store selected by cfg.StorageBackend.
func Open(ctx context.Context, cfg *config.Config) (Store, error) {
	switch cfg.StorageBackend {
	case config.BackendFile:
		logger.System(fmt.Sprintf("Usando almacenamiento en archivos (%s)", cfg.DataDir), "Storage")
		return NewFileStore(cfg.DataDir), nil
	case config.BackendMemory:
		logger.Warn("Usando almacenamiento en memoria, los datos no se conservarán", "Storage")
		return NewMemoryStore(), nil
	case config.BackendMongo:
		db, err := database.Init(ctx, cfg.MongoDBURL, cfg.DBName)
		if err != nil {
			// The database keeps retrying in the background; writes are queued meanwhile.
			logger.Warn(fmt.Sprintf("MongoDB no disponible, modo offline: %v", err), "Storage")
		}
		return NewMongoStore(db), nil
	case config.BackendRedis:
		s, err := NewRedisStore(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, err
		}
		logger.Success(fmt.Sprintf("Conectado a Redis (%s)", cfg.RedisAddr), "Storage")
		return s, nil
	default:
		return nil, fmt.Errorf("storage: unknown backend %q", cfg.StorageBackend)
	}
}
