package command

import (
	"log/slog"

	"github.com/examhub/exam-room-scheduler/internal/domain/shared"
)

type nopPublisher struct{}

func (nopPublisher) Publish(shared.Event) error { return nil }

func publisherOrNop(p shared.EventPublisher) shared.EventPublisher {
	if p == nil {
		return nopPublisher{}
	}
	return p
}

// publish emits an event after the write it describes has committed. A
// publish failure is logged only.
func publish(logger *slog.Logger, p shared.EventPublisher, event shared.Event) {
	if err := p.Publish(event); err != nil {
		logger.Warn("failed to publish event", "event_type", event.EventType(), "error", err)
	}
}
