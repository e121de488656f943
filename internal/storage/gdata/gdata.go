// Package gdatastorage keeps actor state in per-user save slots managed by
// quasilyte/gdata, one item per actor plus a rolling effect log item.
package gdatastorage

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/quasilyte/gdata"

	"github.com/industrialmelee/extension/internal/config"
	"github.com/industrialmelee/extension/internal/persist"
	"github.com/industrialmelee/extension/pkg/core"
)

const (
	// EffectsItem holds the most recent MaxEffects effect events.
	EffectsItem = "effects"
	MaxEffects  = 1000

	flushThreshold = 64
)

// ItemStore is the subset of *gdata.Manager the backend uses.
type ItemStore interface {
	SaveItem(itemKey string, data []byte) error
	LoadItem(itemKey string) ([]byte, error)
}

// Backend implements storage.Backend on top of an ItemStore.
type Backend struct {
	cfg     config.GDataConfig
	store   ItemStore
	pending []core.EffectEvent
	mu      sync.Mutex
}

// New creates a backend that opens the gdata manager on Init.
func New(cfg config.GDataConfig) *Backend {
	return &Backend{cfg: cfg}
}

// NewWithStore creates a backend over an already opened store.
func NewWithStore(store ItemStore) *Backend {
	return &Backend{store: store}
}

// ActorItemKey maps an actor id to an item key. Host ids may contain
// characters that are not valid in file names, so the key is a hash.
func ActorItemKey(id string) string {
	return fmt.Sprintf("actor_%016x", xxhash.Sum64String(id))
}

func (b *Backend) Init() error {
	if b.store != nil {
		return nil
	}
	if b.cfg.AppName == "" {
		return errors.New("gdata app name not set")
	}
	m, err := gdata.Open(gdata.Config{AppName: b.cfg.AppName})
	if err != nil {
		return fmt.Errorf("failed to open save data: %w", err)
	}
	b.store = m
	return nil
}

// Close writes pending effect events.
func (b *Backend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.flushLocked()
}

func (b *Backend) SaveActor(rec persist.Record) error {
	data, err := persist.Marshal(rec)
	if err != nil {
		return err
	}
	if err := b.store.SaveItem(ActorItemKey(rec.ActorID), data); err != nil {
		return fmt.Errorf("failed to save actor %s: %w", rec.ActorID, err)
	}
	return nil
}

func (b *Backend) LoadActor(id string) (persist.Record, bool, error) {
	data, err := b.store.LoadItem(ActorItemKey(id))
	if err != nil {
		return persist.Record{}, false, fmt.Errorf("failed to load actor %s: %w", id, err)
	}
	if len(data) == 0 {
		return persist.Record{}, false, nil
	}
	rec, err := persist.Unmarshal(data)
	if err != nil {
		return persist.Record{}, false, err
	}
	if rec.ActorID != id {
		return persist.Record{}, false, fmt.Errorf("save item for %s holds actor %s", id, rec.ActorID)
	}
	return rec, true, nil
}

// DeleteActor empties the actor's item; an empty item loads as missing.
func (b *Backend) DeleteActor(id string) error {
	if err := b.store.SaveItem(ActorItemKey(id), nil); err != nil {
		return fmt.Errorf("failed to delete actor %s: %w", id, err)
	}
	return nil
}

func (b *Backend) RecordEffect(e *core.EffectEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pending = append(b.pending, *e)
	if len(b.pending) < flushThreshold {
		return nil
	}
	return b.flushLocked()
}

// Effects returns the stored effect log including unflushed events.
func (b *Backend) Effects() ([]core.EffectEvent, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	stored, err := b.loadEffects()
	if err != nil {
		return nil, err
	}
	return trimEffects(append(stored, b.pending...)), nil
}

func (b *Backend) flushLocked() error {
	if len(b.pending) == 0 || b.store == nil {
		return nil
	}
	stored, err := b.loadEffects()
	if err != nil {
		return err
	}
	data, err := json.Marshal(trimEffects(append(stored, b.pending...)))
	if err != nil {
		return fmt.Errorf("failed to encode effects: %w", err)
	}
	if err := b.store.SaveItem(EffectsItem, data); err != nil {
		return fmt.Errorf("failed to save effects: %w", err)
	}
	b.pending = b.pending[:0]
	return nil
}

func (b *Backend) loadEffects() ([]core.EffectEvent, error) {
	data, err := b.store.LoadItem(EffectsItem)
	if err != nil {
		return nil, fmt.Errorf("failed to load effects: %w", err)
	}
	if len(data) == 0 {
		return nil, nil
	}
	var effects []core.EffectEvent
	if err := json.Unmarshal(data, &effects); err != nil {
		return nil, fmt.Errorf("failed to decode effects: %w", err)
	}
	return effects, nil
}

func trimEffects(effects []core.EffectEvent) []core.EffectEvent {
	if len(effects) > MaxEffects {
		return effects[len(effects)-MaxEffects:]
	}
	return effects
}
