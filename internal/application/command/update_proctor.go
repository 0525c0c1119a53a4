package command

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/examhub/exam-room-scheduler/internal/domain/exam"
	"github.com/examhub/exam-room-scheduler/internal/domain/shared"
)

// UpdateProctorCommand assigns a proctor, by roster number, to a session.
// An empty Proctor clears the assignment.
type UpdateProctorCommand struct {
	SessionCode string
	Proctor     string
}

type UpdateProctorHandler struct {
	repo   exam.Repository
	events shared.EventPublisher
	logger *slog.Logger
}

func NewUpdateProctorHandler(repo exam.Repository, events shared.EventPublisher, logger *slog.Logger) *UpdateProctorHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &UpdateProctorHandler{repo: repo, events: publisherOrNop(events), logger: logger}
}

// Handle fails with shared.ErrNotFound for an unknown session and with
// shared.ErrConstraint for an unknown proctor.
func (h *UpdateProctorHandler) Handle(ctx context.Context, cmd UpdateProctorCommand) error {
	code := strings.TrimSpace(cmd.SessionCode)
	if code == "" {
		return fmt.Errorf("update_proctor: %w",
			shared.NewDomainError("exam", "UpdateProctor", shared.ErrValidation, "session code is required"))
	}

	var proctor *string
	if p := strings.TrimSpace(cmd.Proctor); p != "" {
		proctor = &p
	}

	if err := h.repo.UpdateProctor(ctx, code, proctor); err != nil {
		return fmt.Errorf("update_proctor: %w", err)
	}
	h.logger.Info("proctor updated", "code", code, "proctor", cmd.Proctor)

	assigned := ""
	if proctor != nil {
		assigned = *proctor
	}
	publish(h.logger, h.events, shared.NewProctorAssignedEvent(code, assigned))
	return nil
}
