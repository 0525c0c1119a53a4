package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/examhub/exam-room-scheduler/internal/domain/exam"
	"github.com/examhub/exam-room-scheduler/internal/domain/shared"
)

// ExamRepository implements exam.Repository and exam.UnitOfWork.
type ExamRepository struct {
	db *sql.DB
}

var (
	_ exam.Repository = (*ExamRepository)(nil)
	_ exam.UnitOfWork = (*ExamRepository)(nil)
)

func NewExamRepository(s *Store) *ExamRepository {
	return &ExamRepository{db: s.db}
}

const sessionColumns = `code, subject_code, shift_code, room_number, date, proctor`

// WithinTx runs fn in an IMMEDIATE transaction. fn must only use the
// SlotTx it is given: the pool holds a single connection.
func (r *ExamRepository) WithinTx(ctx context.Context, fn func(tx exam.SlotTx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return translate("BeginTx", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(&slotTx{q: tx}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return errors.Join(err, translate("Rollback", rbErr))
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return translate("Commit", err)
	}
	return nil
}

func (r *ExamRepository) List(ctx context.Context) ([]exam.Session, error) {
	return querySessions(ctx, r.db, "List",
		`SELECT `+sessionColumns+` FROM exam_sessions
		 ORDER BY date, CAST(shift_code AS INTEGER), code`)
}

func (r *ExamRepository) ListOn(ctx context.Context, date string) ([]exam.Session, error) {
	return querySessions(ctx, r.db, "ListOn",
		`SELECT `+sessionColumns+` FROM exam_sessions
		 WHERE date = ?
		 ORDER BY CAST(shift_code AS INTEGER), code`, date)
}

func (r *ExamRepository) SessionsInSlot(ctx context.Context, slot exam.Slot) ([]exam.Session, error) {
	return sessionsInSlot(ctx, r.db, slot)
}

func (r *ExamRepository) ScheduledRooms(ctx context.Context, date string) ([]exam.ScheduledRoom, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT room_number, shift_code FROM exam_sessions
		WHERE date = ? ORDER BY room_number, CAST(shift_code AS INTEGER)`, date)
	if err != nil {
		return nil, translate("ScheduledRooms", err)
	}
	defer rows.Close()

	out := []exam.ScheduledRoom{}
	for rows.Next() {
		var sr exam.ScheduledRoom
		if err := rows.Scan(&sr.RoomNumber, &sr.ShiftCode); err != nil {
			return nil, translate("ScheduledRooms", err)
		}
		out = append(out, sr)
	}
	return out, translate("ScheduledRooms", rows.Err())
}

func (r *ExamRepository) UpdateProctor(ctx context.Context, code string, proctor *string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE exam_sessions SET proctor = ? WHERE code = ?`, proctor, code)
	if err != nil {
		return translate("UpdateProctor", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return translate("UpdateProctor", err)
	}
	if n == 0 {
		return shared.NewDomainError(domain, "UpdateProctor", shared.ErrNotFound, "no session with code "+code)
	}
	return nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Transaction-scoped operations
// ──────────────────────────────────────────────────────────────────────────────

type slotTx struct {
	q querier
}

// LockSlot is a no-op: the IMMEDIATE transaction already holds the write lock.
func (t *slotTx) LockSlot(context.Context, exam.Slot) error {
	return nil
}

func (t *slotTx) SessionsInSlot(ctx context.Context, slot exam.Slot) ([]exam.Session, error) {
	return sessionsInSlot(ctx, t.q, slot)
}

func (t *slotTx) Insert(ctx context.Context, s exam.Session) error {
	_, err := t.q.ExecContext(ctx, `
		INSERT INTO exam_sessions (`+sessionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?)`,
		s.Code, s.SubjectCode, s.ShiftCode, s.RoomNumber, s.Date, s.Proctor,
	)
	if err == nil {
		return nil
	}
	if isUniqueViolation(err) {
		return shared.WrapError(domain, "Insert", shared.ErrConstraint,
			"session code "+s.Code+" already exists", fmt.Errorf("%w: %w", exam.ErrCodeCollision, err))
	}
	return translate("Insert", err)
}

func sessionsInSlot(ctx context.Context, q querier, slot exam.Slot) ([]exam.Session, error) {
	return querySessions(ctx, q, "SessionsInSlot",
		`SELECT `+sessionColumns+` FROM exam_sessions
		 WHERE date = ? AND shift_code = ? ORDER BY code`, slot.Date, slot.ShiftCode)
}

func querySessions(ctx context.Context, q querier, op, query string, args ...any) ([]exam.Session, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, translate(op, err)
	}
	defer rows.Close()

	sessions := []exam.Session{}
	for rows.Next() {
		var s exam.Session
		var proctor sql.NullString
		if err := rows.Scan(&s.Code, &s.SubjectCode, &s.ShiftCode, &s.RoomNumber, &s.Date, &proctor); err != nil {
			return nil, translate(op, err)
		}
		if proctor.Valid {
			v := proctor.String
			s.Proctor = &v
		}
		sessions = append(sessions, s)
	}
	return sessions, translate(op, rows.Err())
}
