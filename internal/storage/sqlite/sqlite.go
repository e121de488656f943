// Package sqlitestorage implements the storage.Backend interface using an in-memory
// SQLite database with periodic disk dumps via VACUUM INTO.
// It wraps the GORM backend; the SQLite-specific concerns are creating the
// in-memory DB, restoring the last dump on Init and dumping periodically.
package sqlitestorage

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/industrialmelee/extension/internal/config"
	"github.com/industrialmelee/extension/internal/database"
	gormstorage "github.com/industrialmelee/extension/internal/storage/gorm"
)

var memoryDBCounter atomic.Uint64

// Backend wraps the GORM backend for SQLite-specific behavior.
type Backend struct {
	*gormstorage.Backend
	cfg      config.SQLiteConfig
	log      *slog.Logger
	dbLog    zerolog.Logger
	stopChan chan struct{}
	done     chan struct{}
}

// New creates a new SQLite storage backend. cfg.Path is where dumps are
// written and restored from; an empty path keeps everything in memory.
func New(cfg config.SQLiteConfig, logger *slog.Logger, dbLog zerolog.Logger) (*Backend, error) {
	name := fmt.Sprintf("industrial_melee_%d", memoryDBCounter.Add(1))
	db, err := database.OpenSQLite(database.MemoryDSN(name), dbLog)
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory SQLite DB: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Backend{
		Backend: gormstorage.New(gormstorage.Dependencies{
			DB:       db,
			Logger:   logger,
			DBLogger: dbLog,
		}),
		cfg:      cfg,
		log:      logger,
		dbLog:    dbLog,
		stopChan: make(chan struct{}),
	}, nil
}

// Init migrates the schema, restores the last dump and starts the dump goroutine.
func (b *Backend) Init() error {
	if err := b.Backend.Init(); err != nil {
		return err
	}

	if b.cfg.Path != "" {
		if _, err := os.Stat(b.cfg.Path); err == nil {
			if err := database.RestoreFrom(b.DB(), b.cfg.Path, b.dbLog); err != nil {
				return fmt.Errorf("failed to restore %s: %w", b.cfg.Path, err)
			}
		}
	}

	if b.cfg.Path != "" && b.cfg.DumpInterval > 0 {
		b.done = make(chan struct{})
		go b.dumpLoop()
	}
	return nil
}

func (b *Backend) dumpLoop() {
	defer close(b.done)
	ticker := time.NewTicker(b.cfg.DumpInterval)
	defer ticker.Stop()

	for {
		select {
		case <-b.stopChan:
			return
		case <-ticker.C:
			if err := b.Dump(); err != nil {
				b.log.Error("Periodic SQLite dump failed", "error", err)
			}
		}
	}
}

// Dump flushes queued rows and writes the database to cfg.Path.
func (b *Backend) Dump() error {
	if err := b.Flush(); err != nil {
		return err
	}
	return database.VacuumInto(b.DB(), b.cfg.Path, b.dbLog)
}

// Close stops the dump goroutine, writes a final dump and closes the
// embedded GORM backend.
func (b *Backend) Close() error {
	close(b.stopChan)
	if b.done != nil {
		<-b.done
	}

	var dumpErr error
	if err := b.Backend.Stop(); err != nil {
		dumpErr = err
	} else if b.cfg.Path != "" {
		dumpErr = database.VacuumInto(b.DB(), b.cfg.Path, b.dbLog)
	}
	return errors.Join(dumpErr, b.Backend.Close())
}
