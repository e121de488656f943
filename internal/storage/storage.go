// internal/storage/storage.go
package storage

import (
	"github.com/industrialmelee/extension/internal/persist"
	"github.com/industrialmelee/extension/pkg/core"
)

// Backend is the interface all storage implementations must satisfy
type Backend interface {
	// Lifecycle
	Init() error
	Close() error

	// Actor state
	SaveActor(rec persist.Record) error
	// LoadActor reports false when nothing was saved for id.
	LoadActor(id string) (persist.Record, bool, error)
	DeleteActor(id string) error

	// Event recording
	RecordEffect(e *core.EffectEvent) error
}
