// Package model defines the database tables the gorm storage backend writes.
package model

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"

	"github.com/industrialmelee/extension/internal/persist"
	"github.com/industrialmelee/extension/pkg/core"
)

// DatabaseModels is every table in the schema, in migration order.
var DatabaseModels = []any{
	&ExtensionInfo{},
	&ActorState{},
	&EffectLog{},
}

// SchemaVersion is written to ExtensionInfo on first setup.
const SchemaVersion = 1

// ExtensionInfo is a single-row table identifying the schema.
type ExtensionInfo struct {
	ID            uint `gorm:"primarykey"`
	SchemaVersion int
	CreatedAt     time.Time
}

func (*ExtensionInfo) TableName() string { return "extension_info" }

// ActorState is the saved persistent state of one actor.
type ActorState struct {
	ID             uint           `gorm:"primarykey"`
	ActorID        string         `gorm:"size:128;uniqueIndex"`
	Cooldowns      datatypes.JSON `gorm:"type:json"`
	EnabledAttacks datatypes.JSON `gorm:"type:json"`
	Charges        datatypes.JSON `gorm:"type:json"`
	UpdatedAt      time.Time
}

func (*ActorState) TableName() string { return "actor_states" }

// EffectLog is one fired special effect.
type EffectLog struct {
	ID         uint      `gorm:"primarykey"`
	Time       time.Time `gorm:"index"`
	Tick       int
	AttackerID string `gorm:"size:128;index"`
	VictimID   string `gorm:"size:128;index"`
	Weapon     string `gorm:"size:32"`
	Kind       string `gorm:"size:16"`
	PartID     string `gorm:"size:64"`
	Emissions  int
	Damage     int
	Killed     bool
}

func (*EffectLog) TableName() string { return "effect_logs" }

// ActorStateFromRecord converts a persistence record to its row.
func ActorStateFromRecord(rec persist.Record) (ActorState, error) {
	cooldowns, err := json.Marshal(rec.Cooldowns)
	if err != nil {
		return ActorState{}, fmt.Errorf("encoding cooldowns: %w", err)
	}
	attacks, err := json.Marshal(rec.EnabledAttacks)
	if err != nil {
		return ActorState{}, fmt.Errorf("encoding enabled attacks: %w", err)
	}
	charges, err := json.Marshal(rec.Charges)
	if err != nil {
		return ActorState{}, fmt.Errorf("encoding charges: %w", err)
	}
	return ActorState{
		ActorID:        rec.ActorID,
		Cooldowns:      cooldowns,
		EnabledAttacks: attacks,
		Charges:        charges,
	}, nil
}

// Record converts the row back to a persistence record.
func (s ActorState) Record() (persist.Record, error) {
	rec := persist.Record{ActorID: s.ActorID}
	if err := unmarshalColumn(s.Cooldowns, &rec.Cooldowns); err != nil {
		return rec, fmt.Errorf("decoding cooldowns of %s: %w", s.ActorID, err)
	}
	if err := unmarshalColumn(s.EnabledAttacks, &rec.EnabledAttacks); err != nil {
		return rec, fmt.Errorf("decoding enabled attacks of %s: %w", s.ActorID, err)
	}
	if err := unmarshalColumn(s.Charges, &rec.Charges); err != nil {
		return rec, fmt.Errorf("decoding charges of %s: %w", s.ActorID, err)
	}
	return rec, nil
}

func unmarshalColumn(col datatypes.JSON, v any) error {
	if len(col) == 0 {
		return nil
	}
	return json.Unmarshal(col, v)
}

// EffectLogFromEvent converts a fired effect to its row.
func EffectLogFromEvent(e core.EffectEvent) EffectLog {
	return EffectLog{
		Time:       e.Time,
		Tick:       e.Tick,
		AttackerID: e.AttackerID,
		VictimID:   e.VictimID,
		Weapon:     e.Weapon.String(),
		Kind:       e.Kind.String(),
		PartID:     e.PartID,
		Emissions:  e.Emissions,
		Damage:     e.Damage,
		Killed:     e.Killed,
	}
}
