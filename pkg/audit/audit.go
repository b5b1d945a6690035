// Package audit hands committed business events to the audit pipeline.
package audit

import (
	"context"
	"log/slog"

	"github.com/amirasaad/transfers/pkg/domain/events"
	"github.com/amirasaad/transfers/pkg/eventbus"
	"github.com/amirasaad/transfers/pkg/metrics"
)

// Recorder receives audit events after the state they describe was committed.
// Record never fails the caller: delivery problems are logged and dropped.
type Recorder interface {
	Record(ctx context.Context, evts ...events.Event)
}

// BusRecorder publishes audit events on an event bus.
type BusRecorder struct {
	bus    eventbus.Bus
	logger *slog.Logger
}

// NewBusRecorder returns a Recorder emitting on bus.
func NewBusRecorder(bus eventbus.Bus, logger *slog.Logger) *BusRecorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &BusRecorder{bus: bus, logger: logger.With("component", "audit")}
}

// Record emits each event in order. An Emit error is logged and counted and the
// remaining events are still emitted. A panic stops the call and is logged.
func (r *BusRecorder) Record(ctx context.Context, evts ...events.Event) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("panic recovered while recording audit events", "panic", rec)
		}
	}()
	for _, e := range evts {
		if err := r.bus.Emit(ctx, e); err != nil {
			metrics.AuditEmitFailuresTotal.WithLabelValues(e.Type()).Inc()
			r.logger.Warn("failed to emit audit event", "type", e.Type(), "error", err)
		}
	}
}

// Nop discards every event.
type Nop struct{}

func (Nop) Record(context.Context, ...events.Event) {}

var (
	_ Recorder = (*BusRecorder)(nil)
	_ Recorder = Nop{}
)
