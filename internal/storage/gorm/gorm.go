// Package gormstorage implements the storage.Backend interface on any gorm
// connection. Actor state is written synchronously; effect rows go through a
// queue drained by a background writer goroutine.
package gormstorage

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/industrialmelee/extension/internal/database"
	"github.com/industrialmelee/extension/internal/model"
	"github.com/industrialmelee/extension/internal/persist"
	"github.com/industrialmelee/extension/internal/queue"
	"github.com/industrialmelee/extension/pkg/core"
)

const (
	DefaultBatchSize     = 500
	DefaultFlushInterval = 2 * time.Second
)

// Dependencies holds all dependencies for the GORM storage backend.
type Dependencies struct {
	DB       *gorm.DB
	Logger   *slog.Logger
	DBLogger zerolog.Logger

	BatchSize     int
	FlushInterval time.Duration
}

// Backend implements storage.Backend using GORM with queue-based batch writes.
type Backend struct {
	deps     Dependencies
	effects  *queue.Queue[model.EffectLog]
	stopChan chan struct{}
	wg       sync.WaitGroup
	stopOnce sync.Once
	started  bool
}

// New creates a new GORM storage backend.
func New(deps Dependencies) *Backend {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.BatchSize <= 0 {
		deps.BatchSize = DefaultBatchSize
	}
	if deps.FlushInterval <= 0 {
		deps.FlushInterval = DefaultFlushInterval
	}
	return &Backend{
		deps:     deps,
		effects:  queue.New[model.EffectLog](),
		stopChan: make(chan struct{}),
	}
}

// DB returns the underlying connection.
func (b *Backend) DB() *gorm.DB {
	return b.deps.DB
}

// Init runs schema migration and starts the DB writer goroutine.
func (b *Backend) Init() error {
	if b.deps.DB == nil {
		return errors.New("gorm backend has no database")
	}
	if err := database.Migrate(b.deps.DB, b.deps.DBLogger); err != nil {
		return fmt.Errorf("failed to setup DB: %w", err)
	}

	b.started = true
	b.wg.Add(1)
	go b.writeLoop()
	return nil
}

func (b *Backend) writeLoop() {
	defer b.wg.Done()
	ticker := time.NewTicker(b.deps.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-b.stopChan:
			return
		case <-ticker.C:
			if err := b.Flush(); err != nil {
				b.deps.Logger.Error("Failed to write effect logs", "error", err, "queued", b.effects.Len())
			}
		}
	}
}

// Flush writes every queued effect row. Rows of a failed batch are put back.
func (b *Backend) Flush() error {
	for !b.effects.Empty() {
		batch := b.effects.Drain(b.deps.BatchSize)
		if err := b.deps.DB.CreateInBatches(batch, b.deps.BatchSize).Error; err != nil {
			b.effects.Requeue(batch)
			return fmt.Errorf("failed to insert %d effect logs: %w", len(batch), err)
		}
		b.deps.Logger.Debug("Wrote effect logs", "count", len(batch))
	}
	return nil
}

// Stop halts the writer goroutine and flushes what is left. Safe to call
// more than once.
func (b *Backend) Stop() error {
	var err error
	b.stopOnce.Do(func() {
		close(b.stopChan)
		b.wg.Wait()
		if b.started {
			err = b.Flush()
		}
	})
	return err
}

// Close stops the writer and closes the connection.
func (b *Backend) Close() error {
	flushErr := b.Stop()
	if b.deps.DB == nil {
		return flushErr
	}
	sqlDB, err := b.deps.DB.DB()
	if err != nil {
		return errors.Join(flushErr, fmt.Errorf("failed to access sql interface: %w", err))
	}
	return errors.Join(flushErr, sqlDB.Close())
}

// SaveActor upserts the actor's row.
func (b *Backend) SaveActor(rec persist.Record) error {
	row, err := model.ActorStateFromRecord(rec)
	if err != nil {
		return err
	}
	err = b.deps.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "actor_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"cooldowns", "enabled_attacks", "charges", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("failed to save actor %s: %w", rec.ActorID, err)
	}
	return nil
}

func (b *Backend) LoadActor(id string) (persist.Record, bool, error) {
	var row model.ActorState
	err := b.deps.DB.Where("actor_id = ?", id).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return persist.Record{}, false, nil
	}
	if err != nil {
		return persist.Record{}, false, fmt.Errorf("failed to load actor %s: %w", id, err)
	}
	rec, err := row.Record()
	if err != nil {
		return persist.Record{}, false, err
	}
	return rec, true, nil
}

func (b *Backend) DeleteActor(id string) error {
	if err := b.deps.DB.Where("actor_id = ?", id).Delete(&model.ActorState{}).Error; err != nil {
		return fmt.Errorf("failed to delete actor %s: %w", id, err)
	}
	return nil
}

// RecordEffect converts and queues an effect row.
func (b *Backend) RecordEffect(e *core.EffectEvent) error {
	b.effects.Push(model.EffectLogFromEvent(*e))
	return nil
}
