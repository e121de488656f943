// Package postgres connects the GORM storage backend to PostgreSQL.
package postgres

import (
	"log/slog"

	"github.com/rs/zerolog"

	"github.com/industrialmelee/extension/internal/config"
	"github.com/industrialmelee/extension/internal/database"
	gormstorage "github.com/industrialmelee/extension/internal/storage/gorm"
)

// New opens the postgres connection described by cfg and wraps it in the
// GORM backend.
func New(cfg config.DBConfig, logger *slog.Logger, dbLog zerolog.Logger) (*gormstorage.Backend, error) {
	db, err := database.OpenPostgres(cfg, dbLog)
	if err != nil {
		return nil, err
	}
	return gormstorage.New(gormstorage.Dependencies{
		DB:       db,
		Logger:   logger,
		DBLogger: dbLog,
	}), nil
}
