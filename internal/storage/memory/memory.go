// internal/storage/memory/memory.go
package memory

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/industrialmelee/extension/internal/config"
	"github.com/industrialmelee/extension/internal/persist"
	"github.com/industrialmelee/extension/pkg/core"
)

// Backend keeps actor state and the effect log in memory and exports both
// to a JSON file on Close. Init reads the previous export back.
type Backend struct {
	cfg     config.MemoryConfig
	actors  map[string]persist.Record
	effects []core.EffectEvent

	exportedPath string
	mu           sync.RWMutex
}

// New creates a new memory backend
func New(cfg config.MemoryConfig) *Backend {
	return &Backend{
		cfg:    cfg,
		actors: make(map[string]persist.Record),
	}
}

// Init loads the previous export if one exists.
func (b *Backend) Init() error {
	if b.cfg.OutputDir == "" {
		return nil
	}
	export, err := readExport(b.exportPath())
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read previous export: %w", err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for _, rec := range export.Actors {
		b.actors[rec.ActorID] = rec
	}
	b.effects = append(b.effects, export.Effects...)
	return nil
}

// Close exports everything to OutputDir. Without an OutputDir nothing is written.
func (b *Backend) Close() error {
	if b.cfg.OutputDir == "" {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	path := b.exportPath()
	if err := writeExport(path, b.buildExport(), b.cfg.CompressOutput); err != nil {
		return err
	}
	b.exportedPath = path
	return nil
}

// GetExportedFilePath returns the file written by the last Close.
func (b *Backend) GetExportedFilePath() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.exportedPath
}

func (b *Backend) SaveActor(rec persist.Record) error {
	if rec.ActorID == "" {
		return errors.New("record has no actor id")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.actors[rec.ActorID] = rec
	return nil
}

func (b *Backend) LoadActor(id string) (persist.Record, bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	rec, ok := b.actors[id]
	return rec, ok, nil
}

func (b *Backend) DeleteActor(id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.actors, id)
	return nil
}

func (b *Backend) RecordEffect(e *core.EffectEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.effects = append(b.effects, *e)
	return nil
}

// Effects returns a copy of the recorded effect log.
func (b *Backend) Effects() []core.EffectEvent {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]core.EffectEvent, len(b.effects))
	copy(out, b.effects)
	return out
}

func (b *Backend) buildExport() Export {
	export := Export{
		Version: ExportVersion,
		Actors:  make([]persist.Record, 0, len(b.actors)),
		Effects: b.effects,
	}
	for _, rec := range b.actors {
		export.Actors = append(export.Actors, rec)
	}
	sort.Slice(export.Actors, func(i, j int) bool {
		return export.Actors[i].ActorID < export.Actors[j].ActorID
	})
	if export.Effects == nil {
		export.Effects = []core.EffectEvent{}
	}
	return export
}
