// Package eventhandler contains subscribers for domain events.
package eventhandler

import (
	"context"
	"log/slog"
	"sort"

	"github.com/examhub/exam-room-scheduler/internal/domain/shared"
)

// ═══════════════════════════════════════════════════════════════════════════
// AUDIT LOG HANDLER
// Writes every domain event as one structured log record, so schedule
// changes can be reconstructed from the logs.
// ═══════════════════════════════════════════════════════════════════════════

// AuditLogHandler logs domain events.
type AuditLogHandler struct {
	logger *slog.Logger
}

func NewAuditLogHandler(logger *slog.Logger) *AuditLogHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditLogHandler{logger: logger.With("component", "audit")}
}

// Register subscribes the handler to all events.
func (h *AuditLogHandler) Register(bus shared.EventSubscriber) error {
	return bus.SubscribeAll(h.Handle)
}

// Handle logs one event. Failed syncs are logged at warn level.
func (h *AuditLogHandler) Handle(event shared.Event) error {
	level := slog.LevelInfo
	if event.EventType() == shared.EventCatalogSyncFailed {
		level = slog.LevelWarn
	}

	payload := event.Payload()
	keys := make([]string, 0, len(payload))
	for k := range payload {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	attrs := make([]any, 0, 3+len(keys))
	attrs = append(attrs,
		slog.String("event_type", string(event.EventType())),
		slog.String("aggregate_id", event.AggregateID()),
		slog.Time("occurred_at", event.OccurredAt()),
	)
	for _, k := range keys {
		attrs = append(attrs, slog.Any(k, payload[k]))
	}

	h.logger.Log(context.Background(), level, "domain event", attrs...)
	return nil
}
