package handlers

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/industrialmelee/extension/pkg/core"
)

const instrumentationName = "github.com/industrialmelee/extension/internal/handlers"

type metrics struct {
	effects metric.Int64Counter
	kills   metric.Int64Counter
}

func newMetrics() (*metrics, error) {
	m := otel.Meter(instrumentationName)

	effects, err := m.Int64Counter("melee.effects",
		metric.WithDescription("Special melee effects fired"))
	if err != nil {
		return nil, fmt.Errorf("creating effects counter: %w", err)
	}
	kills, err := m.Int64Counter("melee.effect.kills",
		metric.WithDescription("Victims killed by a special melee effect"))
	if err != nil {
		return nil, fmt.Errorf("creating kills counter: %w", err)
	}
	return &metrics{effects: effects, kills: kills}, nil
}

func (m *metrics) record(e core.EffectEvent) {
	attrs := metric.WithAttributes(
		attribute.String("weapon", e.Weapon.String()),
		attribute.String("kind", e.Kind.String()),
	)
	m.effects.Add(context.Background(), 1, attrs)
	if e.Killed {
		m.kills.Add(context.Background(), 1, attrs)
	}
}
