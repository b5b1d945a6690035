// Package audit holds the sinks that persist audit events delivered by the
// event bus.
package audit

import (
	"context"
	"log/slog"

	"github.com/amirasaad/transfers/pkg/domain/events"
)

// LogSink writes one structured "audit" log line per event.
type LogSink struct {
	logger *slog.Logger
}

func NewLogSink(logger *slog.Logger) *LogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSink{logger: logger.With("component", "audit")}
}

// Handle is an eventbus.HandlerFunc.
func (s *LogSink) Handle(ctx context.Context, e events.Event) error {
	entry, ok := events.ToAuditEntry(e)
	if !ok {
		return nil
	}
	attrs := []any{
		"event", string(entry.Kind),
		"eventType", entry.EventType,
		"eventID", entry.EventID,
		"transferID", entry.TransferID,
		"amount", entry.Amount.String(),
		"status", entry.Status,
		"timestamp", entry.Timestamp,
	}
	if entry.AccountID != nil {
		attrs = append(attrs, "accountID", *entry.AccountID)
	}
	if entry.PreviousBalance != nil && entry.NewBalance != nil {
		attrs = append(attrs,
			"previousBalance", entry.PreviousBalance.String(),
			"newBalance", entry.NewBalance.String(),
		)
	}
	for k, v := range entry.Metadata {
		attrs = append(attrs, k, v)
	}
	s.logger.InfoContext(ctx, "audit", attrs...)
	return nil
}
