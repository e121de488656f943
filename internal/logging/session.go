package logging

import (
	"context"
	"log/slog"
	"time"
)

// TickSource reports the simulation tick. It is read on every record, so it
// must not take locks a logging caller may hold.
type TickSource interface {
	Tick() int
}

// Session describes the running extension session stamped onto records.
type Session struct {
	Start time.Time
	Clock TickSource
	// Now defaults to time.Now.
	Now func() time.Time
}

func (s Session) attrs() []slog.Attr {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	out := make([]slog.Attr, 0, 2)
	if s.Clock != nil {
		out = append(out, slog.Int("tick", s.Clock.Tick()))
	}
	if !s.Start.IsZero() {
		out = append(out, slog.Duration("uptime", now().Sub(s.Start).Round(time.Second)))
	}
	return out
}

// SessionHandler adds the current tick and session uptime to each record.
type SessionHandler struct {
	next    slog.Handler
	session Session
}

func NewSessionHandler(next slog.Handler, session Session) *SessionHandler {
	return &SessionHandler{next: next, session: session}
}

func (h *SessionHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *SessionHandler) Handle(ctx context.Context, r slog.Record) error {
	r.AddAttrs(h.session.attrs()...)
	return h.next.Handle(ctx, r)
}

func (h *SessionHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &SessionHandler{next: h.next.WithAttrs(attrs), session: h.session}
}

func (h *SessionHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return &SessionHandler{next: h.next.WithGroup(name), session: h.session}
}
