// Package app wires the services together and subscribes the audit sinks to
// the event bus.
package app

import (
	"github.com/amirasaad/transfers/pkg/domain/events"
)

// setupEventBus subscribes every audit sink to every event type.
func (a *App) setupEventBus() {
	bus := a.Deps.EventBus
	if bus == nil {
		return
	}
	for _, eventType := range events.All() {
		for _, sink := range a.Deps.AuditSinks {
			bus.Register(eventType, sink)
		}
	}
	a.Deps.Logger.Info("audit sinks registered", "sinks", len(a.Deps.AuditSinks), "event_types", len(events.All()))
}
