package gormstorage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/industrialmelee/extension/internal/combat"
	"github.com/industrialmelee/extension/internal/database"
	"github.com/industrialmelee/extension/internal/model"
	"github.com/industrialmelee/extension/internal/persist"
	"github.com/industrialmelee/extension/pkg/core"
)

func newTestBackend(t *testing.T) *Backend {
	t.Helper()
	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "test.db"), zerolog.Nop())
	require.NoError(t, err)
	b := New(Dependencies{DB: db, FlushInterval: time.Hour})
	require.NoError(t, b.Init())
	t.Cleanup(func() { b.Close() })
	return b
}

func TestInit_NoDB(t *testing.T) {
	b := New(Dependencies{})
	assert.Error(t, b.Init())
	assert.NoError(t, b.Close())
}

func TestSaveLoadActor(t *testing.T) {
	b := newTestBackend(t)

	_, ok, err := b.LoadActor("pawn1")
	require.NoError(t, err)
	assert.False(t, ok)

	rec := persist.Record{
		ActorID:        "pawn1",
		Cooldowns:      []combat.CooldownEntry{{Attack: core.DrillSpearGore, Tick: 7200}},
		EnabledAttacks: []core.AttackType{},
	}
	require.NoError(t, b.SaveActor(rec))

	got, ok, err := b.LoadActor("pawn1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, rec.Cooldowns, got.Cooldowns)
	assert.Empty(t, got.EnabledAttacks)

	// upsert replaces the row instead of adding one
	rec.Cooldowns = []combat.CooldownEntry{{Attack: core.Charge, Tick: 50}}
	rec.EnabledAttacks = []core.AttackType{core.ExplosiveArrows}
	require.NoError(t, b.SaveActor(rec))

	var count int64
	require.NoError(t, b.DB().Model(&model.ActorState{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	got, _, err = b.LoadActor("pawn1")
	require.NoError(t, err)
	assert.Equal(t, rec.Cooldowns, got.Cooldowns)
	assert.Equal(t, rec.EnabledAttacks, got.EnabledAttacks)

	require.NoError(t, b.DeleteActor("pawn1"))
	_, ok, err = b.LoadActor("pawn1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRecordEffect_FlushedOnStop(t *testing.T) {
	b := newTestBackend(t)

	for i := 0; i < 3; i++ {
		e := core.EffectEvent{Tick: i, AttackerID: "a", VictimID: "v", Weapon: core.HeaterSaw, Kind: core.EffectDismember}
		require.NoError(t, b.RecordEffect(&e))
	}
	assert.Equal(t, 3, b.effects.Len())

	require.NoError(t, b.Stop())
	require.NoError(t, b.Stop())
	assert.True(t, b.effects.Empty())

	var rows []model.EffectLog
	require.NoError(t, b.DB().Order("tick").Find(&rows).Error)
	require.Len(t, rows, 3)
	assert.Equal(t, "HeaterSaw", rows[2].Weapon)
	assert.Equal(t, "dismember", rows[2].Kind)
}

func TestFlush_Batches(t *testing.T) {
	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "batch.db"), zerolog.Nop())
	require.NoError(t, err)
	b := New(Dependencies{DB: db, BatchSize: 2, FlushInterval: time.Hour})
	require.NoError(t, b.Init())
	defer b.Close()

	for i := 0; i < 5; i++ {
		require.NoError(t, b.RecordEffect(&core.EffectEvent{Tick: i}))
	}
	require.NoError(t, b.Flush())

	var count int64
	require.NoError(t, db.Model(&model.EffectLog{}).Count(&count).Error)
	assert.Equal(t, int64(5), count)
}
