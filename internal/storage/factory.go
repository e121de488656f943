// internal/storage/factory.go
package storage

import (
	"fmt"
	"log/slog"

	"github.com/rs/zerolog"

	"github.com/industrialmelee/extension/internal/config"
	gdatastorage "github.com/industrialmelee/extension/internal/storage/gdata"
	"github.com/industrialmelee/extension/internal/storage/memory"
	"github.com/industrialmelee/extension/internal/storage/postgres"
	sqlitestorage "github.com/industrialmelee/extension/internal/storage/sqlite"
)

// Dependencies are handed to the backend the factory builds.
type Dependencies struct {
	DB       config.DBConfig
	Logger   *slog.Logger
	DBLogger zerolog.Logger
}

// NewBackend creates a storage backend based on configuration
func NewBackend(cfg config.StorageConfig, deps Dependencies) (Backend, error) {
	switch cfg.Type {
	case "postgres":
		b, err := postgres.New(deps.DB, deps.Logger, deps.DBLogger)
		if err != nil {
			return nil, err
		}
		return b, nil
	case "sqlite":
		b, err := sqlitestorage.New(cfg.SQLite, deps.Logger, deps.DBLogger)
		if err != nil {
			return nil, err
		}
		return b, nil
	case "gdata":
		return gdatastorage.New(cfg.GData), nil
	case "memory", "":
		return memory.New(cfg.Memory), nil
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}
