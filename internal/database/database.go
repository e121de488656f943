// Package database opens and prepares the gorm connections the relational
// storage backends write through.
package database

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/industrialmelee/extension/internal/config"
	"github.com/industrialmelee/extension/internal/model"
)

// RestoredTables are copied back from a dump by RestoreFrom.
var RestoredTables = []string{"actor_states", "effect_logs"}

var sqlitePragmas = []string{
	"PRAGMA user_version = 1;",
	"PRAGMA journal_mode = MEMORY;",
	"PRAGMA synchronous = OFF;",
	"PRAGMA cache_size = -32000;",
	"PRAGMA temp_store = MEMORY;",
	"PRAGMA page_size = 32768;",
	"PRAGMA mmap_size = 30000000000;",
}

// PostgresDSN builds the connection string for cfg.
func PostgresDSN(cfg config.DBConfig) string {
	return fmt.Sprintf(`host=%s port=%s user=%s password=%s dbname=%s sslmode=disable`,
		cfg.Host, cfg.Port, cfg.Username, cfg.Password, cfg.Database)
}

// OpenPostgres connects to postgres and validates the connection.
func OpenPostgres(cfg config.DBConfig, log zerolog.Logger) (*gorm.DB, error) {
	log.Debug().Str("host", cfg.Host).Str("database", cfg.Database).Msg("Connecting to Postgres DB")

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  PostgresDSN(cfg),
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		SkipDefaultTransaction: true,
		CreateBatchSize:        10000,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access sql interface: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to validate connection: %w", err)
	}
	sqlDB.SetMaxOpenConns(10)

	log.Info().Msg("Connected to database")
	return db, nil
}

// MemoryDSN names a shared-cache in-memory sqlite database. Connections
// opened with the same name see the same data.
func MemoryDSN(name string) string {
	return fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
}

// OpenSQLite opens a sqlite database at dsn, which is either a file path or
// a MemoryDSN.
func OpenSQLite(dsn string, log zerolog.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		PrepareStmt:            true,
		SkipDefaultTransaction: true,
		CreateBatchSize:        2000,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite DB: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access sql interface: %w", err)
	}
	// one writer; ATTACH and PRAGMAs are per connection
	sqlDB.SetMaxOpenConns(1)

	for _, pragma := range sqlitePragmas {
		if err := db.Exec(pragma).Error; err != nil {
			return nil, fmt.Errorf("error setting PRAGMA: %w", err)
		}
	}

	log.Info().Str("dsn", dsn).Msg("Using local SQLite DB")
	return db, nil
}

// Migrate creates the schema and the extension info row if missing.
func Migrate(db *gorm.DB, log zerolog.Logger) error {
	if !db.Migrator().HasTable(&model.ExtensionInfo{}) {
		if err := db.AutoMigrate(&model.ExtensionInfo{}); err != nil {
			return fmt.Errorf("failed to create extension_info table: %w", err)
		}
		if err := db.Create(&model.ExtensionInfo{SchemaVersion: model.SchemaVersion}).Error; err != nil {
			return fmt.Errorf("failed to create extension_info entry: %w", err)
		}
	}

	log.Info().Msg("Migrating schema")
	if err := db.AutoMigrate(model.DatabaseModels...); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}

	log.Info().Msg("Database setup complete")
	return nil
}

// VacuumInto writes a consistent copy of db to path. The copy is written
// next to path first and renamed over it, so a failed dump keeps the
// previous one.
func VacuumInto(db *gorm.DB, path string, log zerolog.Logger) error {
	if path == "" {
		return errors.New("sqlite file path not set")
	}

	tmp := path + ".tmp"
	if err := os.Remove(tmp); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("error removing stale dump: %w", err)
	}

	start := time.Now()
	if err := db.Exec("VACUUM INTO ?", tmp).Error; err != nil {
		return fmt.Errorf("error dumping DB to disk: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("error replacing DB dump: %w", err)
	}

	log.Debug().Dur("duration", time.Since(start)).Str("path", path).Msg("Dumped DB to disk")
	return nil
}

// RestoreFrom copies RestoredTables from the sqlite file at path into db.
// Both databases must share the schema Migrate creates.
func RestoreFrom(db *gorm.DB, path string, log zerolog.Logger) error {
	return db.Connection(func(tx *gorm.DB) error {
		if err := tx.Exec("ATTACH DATABASE ? AS dump", path).Error; err != nil {
			return fmt.Errorf("error attaching %s: %w", path, err)
		}
		defer func() {
			if err := tx.Exec("DETACH DATABASE dump").Error; err != nil {
				log.Warn().Err(err).Msg("Failed to detach dump")
			}
		}()

		for _, table := range RestoredTables {
			res := tx.Exec(fmt.Sprintf("INSERT OR IGNORE INTO main.%s SELECT * FROM dump.%s", table, table))
			if res.Error != nil {
				return fmt.Errorf("error restoring %s: %w", table, res.Error)
			}
			log.Info().Str("table", table).Int64("rows", res.RowsAffected).Msg("Restored table from dump")
		}
		return nil
	})
}
