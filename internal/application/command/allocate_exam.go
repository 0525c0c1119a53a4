package command

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/examhub/exam-room-scheduler/internal/dependencies/random"
	"github.com/examhub/exam-room-scheduler/internal/domain/exam"
	"github.com/examhub/exam-room-scheduler/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// ALLOCATE EXAM COMMAND
// Places one exam session in a (date, shift, room). A shift on a given date
// holds at most one session across all rooms.
// ══════════════════════════════════════════════════════════════════════════════

// AllocateExamCommand contains the data needed to schedule a session.
type AllocateExamCommand struct {
	SubjectCode string
	// ClassCodes are the class sections sitting the exam. They go to the
	// log and the allocation event, not the store.
	ClassCodes []string
	Date       string
	ShiftCode  string
	RoomNumber string
}

// Validate validates the command.
func (c AllocateExamCommand) Validate() error {
	var missing []string
	if strings.TrimSpace(c.SubjectCode) == "" {
		missing = append(missing, "subject code")
	}
	if strings.TrimSpace(c.ShiftCode) == "" {
		missing = append(missing, "shift code")
	}
	if strings.TrimSpace(c.RoomNumber) == "" {
		missing = append(missing, "room number")
	}
	for _, class := range c.ClassCodes {
		if strings.TrimSpace(class) == "" {
			missing = append(missing, "class code")
			break
		}
	}
	if len(missing) > 0 {
		return shared.NewDomainError("exam", "Allocate", shared.ErrValidation,
			strings.Join(missing, ", ")+" required")
	}
	if _, err := exam.ParseDate(c.Date); err != nil {
		return err
	}
	return nil
}

// AllocateExamResult carries the generated session code.
type AllocateExamResult struct {
	SessionCode string
	Session     exam.Session
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// AllocateExamHandler handles the AllocateExamCommand.
type AllocateExamHandler struct {
	uow    exam.UnitOfWork
	rand   random.Random
	events shared.EventPublisher
	logger *slog.Logger
}

func NewAllocateExamHandler(uow exam.UnitOfWork, rnd random.Random, events shared.EventPublisher, logger *slog.Logger) *AllocateExamHandler {
	if rnd == nil {
		rnd = random.New()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AllocateExamHandler{
		uow:    uow,
		rand:   rnd,
		events: publisherOrNop(events),
		logger: logger.With("component", "allocation"),
	}
}

// Handle checks the slot and inserts the session inside one transaction.
//
// An occupied slot fails with *exam.ConflictError. A generated code that is
// already taken fails with an error matching exam.ErrCodeCollision; the
// caller may retry the whole call. Nothing is written on failure.
func (h *AllocateExamHandler) Handle(ctx context.Context, cmd AllocateExamCommand) (*AllocateExamResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("allocate_exam: validation failed: %w", err)
	}

	date, _ := exam.ParseDate(cmd.Date)
	slot := exam.Slot{Date: date, ShiftCode: strings.TrimSpace(cmd.ShiftCode)}
	session := exam.Session{
		SubjectCode: strings.TrimSpace(cmd.SubjectCode),
		ShiftCode:   slot.ShiftCode,
		RoomNumber:  strings.TrimSpace(cmd.RoomNumber),
		Date:        slot.Date,
	}

	err := h.uow.WithinTx(ctx, func(tx exam.SlotTx) error {
		if err := tx.LockSlot(ctx, slot); err != nil {
			return err
		}

		existing, err := tx.SessionsInSlot(ctx, slot)
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			return &exam.ConflictError{Date: slot.Date, ShiftCode: slot.ShiftCode}
		}

		session.Code = exam.NewCode(h.rand)
		return tx.Insert(ctx, session)
	})
	if err != nil {
		if shared.IsConflict(err) {
			h.logger.Info("exam slot occupied", "date", slot.Date, "shift", slot.ShiftCode, "room", session.RoomNumber)
		} else {
			h.logger.Warn("exam allocation failed", "date", slot.Date, "shift", slot.ShiftCode, "error", err)
		}
		return nil, fmt.Errorf("allocate_exam: %w", err)
	}

	h.logger.Info("exam allocated",
		"code", session.Code,
		"subject", session.SubjectCode,
		"date", session.Date,
		"shift", session.ShiftCode,
		"room", session.RoomNumber,
		"classes", cmd.ClassCodes,
	)
	publish(h.logger, h.events, shared.NewExamAllocatedEvent(
		session.Code, session.SubjectCode, session.Date, session.ShiftCode, session.RoomNumber, cmd.ClassCodes))

	return &AllocateExamResult{SessionCode: session.Code, Session: session}, nil
}
