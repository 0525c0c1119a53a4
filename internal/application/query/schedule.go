package query

import (
	"context"
	"fmt"

	"github.com/examhub/exam-room-scheduler/internal/domain/exam"
)

// ══════════════════════════════════════════════════════════════════════════════
// SCHEDULE QUERIES
// ══════════════════════════════════════════════════════════════════════════════

// GetScheduledRoomsQuery asks which rooms are taken on a date.
type GetScheduledRoomsQuery struct {
	Date string
}

// ViewSessionsQuery lists allocated sessions. An empty Date lists all.
type ViewSessionsQuery struct {
	Date string
}

// ScheduleHandler answers questions about allocated sessions.
type ScheduleHandler struct {
	repo exam.Repository
}

func NewScheduleHandler(repo exam.Repository) *ScheduleHandler {
	return &ScheduleHandler{repo: repo}
}

// ScheduledRooms returns the (room, shift) pairs occupied on q.Date.
func (h *ScheduleHandler) ScheduledRooms(ctx context.Context, q GetScheduledRoomsQuery) ([]exam.ScheduledRoom, error) {
	date, err := exam.ParseDate(q.Date)
	if err != nil {
		return nil, fmt.Errorf("scheduled rooms: %w", err)
	}

	rooms, err := h.repo.ScheduledRooms(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("scheduled rooms: %w", err)
	}
	if rooms == nil {
		rooms = []exam.ScheduledRoom{}
	}
	return rooms, nil
}

// Sessions returns sessions ordered by date, shift and code.
func (h *ScheduleHandler) Sessions(ctx context.Context, q ViewSessionsQuery) ([]exam.Session, error) {
	var (
		out []exam.Session
		err error
	)
	if q.Date == "" {
		out, err = h.repo.List(ctx)
	} else {
		var date string
		if date, err = exam.ParseDate(q.Date); err != nil {
			return nil, fmt.Errorf("view sessions: %w", err)
		}
		out, err = h.repo.ListOn(ctx, date)
	}
	if err != nil {
		return nil, fmt.Errorf("view sessions: %w", err)
	}
	if out == nil {
		out = []exam.Session{}
	}
	return out, nil
}
