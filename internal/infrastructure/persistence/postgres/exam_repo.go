package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/examhub/exam-room-scheduler/internal/domain/exam"
	"github.com/examhub/exam-room-scheduler/internal/domain/shared"
)

// ExamRepository implements exam.Repository and exam.UnitOfWork.
type ExamRepository struct {
	conn *Connection
}

var (
	_ exam.Repository = (*ExamRepository)(nil)
	_ exam.UnitOfWork = (*ExamRepository)(nil)
)

func NewExamRepository(conn *Connection) *ExamRepository {
	return &ExamRepository{conn: conn}
}

const selectSessions = `
	SELECT code, subject_code, shift_code, room_number, to_char(date, 'YYYY-MM-DD'), proctor
	FROM exam_sessions`

// WithinTx runs fn in a read-committed transaction. Slot serialization is
// provided by LockSlot.
func (r *ExamRepository) WithinTx(ctx context.Context, fn func(tx exam.SlotTx) error) error {
	return r.conn.WithTx(ctx, func(tx pgx.Tx) error {
		return fn(&slotTx{q: tx})
	})
}

func (r *ExamRepository) List(ctx context.Context) ([]exam.Session, error) {
	return querySessions(ctx, r.conn, "List", selectSessions+` ORDER BY date, shift_code, code`)
}

func (r *ExamRepository) ListOn(ctx context.Context, date string) ([]exam.Session, error) {
	return querySessions(ctx, r.conn, "ListOn",
		selectSessions+` WHERE date = CAST($1::text AS date) ORDER BY shift_code, code`, date)
}

func (r *ExamRepository) SessionsInSlot(ctx context.Context, slot exam.Slot) ([]exam.Session, error) {
	return sessionsInSlot(ctx, r.conn, slot)
}

func (r *ExamRepository) ScheduledRooms(ctx context.Context, date string) ([]exam.ScheduledRoom, error) {
	rows, err := r.conn.Query(ctx, `
		SELECT room_number, shift_code FROM exam_sessions
		WHERE date = CAST($1::text AS date)
		ORDER BY room_number, shift_code`, date)
	if err != nil {
		return nil, translate("ScheduledRooms", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (exam.ScheduledRoom, error) {
		var sr exam.ScheduledRoom
		err := row.Scan(&sr.RoomNumber, &sr.ShiftCode)
		return sr, err
	})
	return nonNil(out), translate("ScheduledRooms", err)
}

func (r *ExamRepository) UpdateProctor(ctx context.Context, code string, proctor *string) error {
	tag, err := r.conn.Exec(ctx, `UPDATE exam_sessions SET proctor = $1 WHERE code = $2`, proctor, code)
	if err != nil {
		return translate("UpdateProctor", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.NewDomainError(domain, "UpdateProctor", shared.ErrNotFound, "no session with code "+code)
	}
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// TRANSACTION-SCOPED OPERATIONS
// ══════════════════════════════════════════════════════════════════════════════

type slotTx struct {
	q Querier
}

// LockSlot takes a transaction-scoped advisory lock keyed by the slot, so
// two allocations for the same date and shift cannot interleave their
// check and insert.
func (t *slotTx) LockSlot(ctx context.Context, slot exam.Slot) error {
	_, err := t.q.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, slot.String())
	return translate("LockSlot", err)
}

func (t *slotTx) SessionsInSlot(ctx context.Context, slot exam.Slot) ([]exam.Session, error) {
	return sessionsInSlot(ctx, t.q, slot)
}

func (t *slotTx) Insert(ctx context.Context, s exam.Session) error {
	_, err := t.q.Exec(ctx, `
		INSERT INTO exam_sessions (code, subject_code, shift_code, room_number, date, proctor)
		VALUES ($1, $2, $3, $4, CAST($5::text AS date), $6)`,
		s.Code, s.SubjectCode, s.ShiftCode, s.RoomNumber, s.Date, s.Proctor,
	)
	if err == nil {
		return nil
	}
	if IsUniqueViolation(err) {
		return shared.WrapError(domain, "Insert", shared.ErrConstraint,
			"session code "+s.Code+" already exists", fmt.Errorf("%w: %w", exam.ErrCodeCollision, err))
	}
	return translate("Insert", err)
}

func sessionsInSlot(ctx context.Context, q Querier, slot exam.Slot) ([]exam.Session, error) {
	return querySessions(ctx, q, "SessionsInSlot",
		selectSessions+` WHERE date = CAST($1::text AS date) AND shift_code = $2 ORDER BY code`,
		slot.Date, slot.ShiftCode)
}

func querySessions(ctx context.Context, q Querier, op, query string, args ...any) ([]exam.Session, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, translate(op, err)
	}
	sessions, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (exam.Session, error) {
		var s exam.Session
		err := row.Scan(&s.Code, &s.SubjectCode, &s.ShiftCode, &s.RoomNumber, &s.Date, &s.Proctor)
		return s, err
	})
	return nonNil(sessions), translate(op, err)
}
