package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/examhub/exam-room-scheduler/internal/domain/catalog"
	"github.com/examhub/exam-room-scheduler/internal/domain/shared"
)

// CatalogRepository implements catalog.Repository using PostgreSQL.
type CatalogRepository struct {
	conn *Connection
}

var _ catalog.Repository = (*CatalogRepository)(nil)

func NewCatalogRepository(conn *Connection) *CatalogRepository {
	return &CatalogRepository{conn: conn}
}

// ══════════════════════════════════════════════════════════════════════════════
// UPSERTS
// ══════════════════════════════════════════════════════════════════════════════

func (r *CatalogRepository) UpsertPerson(ctx context.Context, p catalog.Person) error {
	_, err := r.conn.Exec(ctx, `
		INSERT INTO users (roster_number, institution_number, name, major, role, initials)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (roster_number) DO UPDATE SET
			institution_number = EXCLUDED.institution_number,
			name = EXCLUDED.name,
			major = EXCLUDED.major,
			role = EXCLUDED.role,
			initials = EXCLUDED.initials`,
		p.RosterNumber, p.InstitutionNumber, p.Name, p.Major, p.Role, p.Initials,
	)
	return translate("UpsertPerson", err)
}

func (r *CatalogRepository) UpsertRoom(ctx context.Context, room catalog.Room) error {
	_, err := r.conn.Exec(ctx, `
		INSERT INTO rooms (number, capacity, campus) VALUES ($1, $2, $3)
		ON CONFLICT (number) DO UPDATE SET
			capacity = EXCLUDED.capacity,
			campus = EXCLUDED.campus`,
		room.Number, room.Capacity, room.Campus,
	)
	return translate("UpsertRoom", err)
}

func (r *CatalogRepository) UpsertSubject(ctx context.Context, s catalog.Subject) error {
	_, err := r.conn.Exec(ctx, `
		INSERT INTO subjects (code, name) VALUES ($1, $2)
		ON CONFLICT (code) DO UPDATE SET name = EXCLUDED.name`,
		s.Code, s.Name,
	)
	return translate("UpsertSubject", err)
}

func (r *CatalogRepository) UpsertEnrollment(ctx context.Context, e catalog.Enrollment) error {
	_, err := r.conn.Exec(ctx, `
		INSERT INTO enrollments (class_code, subject_code, roster_number) VALUES ($1, $2, $3)
		ON CONFLICT (class_code) DO UPDATE SET
			subject_code = EXCLUDED.subject_code,
			roster_number = EXCLUDED.roster_number`,
		e.ClassCode, e.SubjectCode, e.RosterNumber,
	)
	return translate("UpsertEnrollment", err)
}

func (r *CatalogRepository) UpdateRole(ctx context.Context, institutionNumber, role string) error {
	tag, err := r.conn.Exec(ctx,
		`UPDATE users SET role = $1 WHERE institution_number = $2`, role, institutionNumber)
	if err != nil {
		return translate("UpdateRole", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.NewDomainError(domain, "UpdateRole", shared.ErrNotFound,
			"no user with institution number "+institutionNumber)
	}
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// READS
// ══════════════════════════════════════════════════════════════════════════════

func (r *CatalogRepository) ListPeople(ctx context.Context) ([]catalog.Person, error) {
	rows, err := r.conn.Query(ctx, `
		SELECT institution_number, roster_number, name, major, role, initials
		FROM users ORDER BY roster_number`)
	if err != nil {
		return nil, translate("ListPeople", err)
	}
	people, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (catalog.Person, error) {
		var p catalog.Person
		err := row.Scan(&p.InstitutionNumber, &p.RosterNumber, &p.Name, &p.Major, &p.Role, &p.Initials)
		return p, err
	})
	return nonNil(people), translate("ListPeople", err)
}

func (r *CatalogRepository) ListSubjects(ctx context.Context) ([]catalog.Subject, error) {
	rows, err := r.conn.Query(ctx, `SELECT code, name FROM subjects ORDER BY code`)
	if err != nil {
		return nil, translate("ListSubjects", err)
	}
	subjects, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (catalog.Subject, error) {
		var s catalog.Subject
		err := row.Scan(&s.Code, &s.Name)
		return s, err
	})
	return nonNil(subjects), translate("ListSubjects", err)
}

func (r *CatalogRepository) ListRooms(ctx context.Context) ([]catalog.Room, error) {
	rows, err := r.conn.Query(ctx, `SELECT number, capacity, campus FROM rooms ORDER BY number`)
	if err != nil {
		return nil, translate("ListRooms", err)
	}
	rooms, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (catalog.Room, error) {
		var room catalog.Room
		err := row.Scan(&room.Number, &room.Capacity, &room.Campus)
		return room, err
	})
	return nonNil(rooms), translate("ListRooms", err)
}

func (r *CatalogRepository) ListShifts(ctx context.Context) ([]catalog.Shift, error) {
	rows, err := r.conn.Query(ctx, `
		SELECT code, to_char(start_time, 'HH24:MI:SS'), to_char(end_time, 'HH24:MI:SS')
		FROM shifts ORDER BY start_time`)
	if err != nil {
		return nil, translate("ListShifts", err)
	}
	shifts, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (catalog.Shift, error) {
		var sh catalog.Shift
		err := row.Scan(&sh.Code, &sh.StartTime, &sh.EndTime)
		return sh, err
	})
	return nonNil(shifts), translate("ListShifts", err)
}

func (r *CatalogRepository) ListEnrollments(ctx context.Context) ([]catalog.Enrollment, error) {
	return r.queryEnrollments(ctx, "ListEnrollments",
		`SELECT class_code, subject_code, roster_number FROM enrollments ORDER BY class_code`)
}

func (r *CatalogRepository) EnrollmentsBySubject(ctx context.Context, subjectCode string) ([]catalog.Enrollment, error) {
	return r.queryEnrollments(ctx, "EnrollmentsBySubject",
		`SELECT class_code, subject_code, roster_number FROM enrollments
		 WHERE subject_code = $1 ORDER BY class_code`, subjectCode)
}

func (r *CatalogRepository) queryEnrollments(ctx context.Context, op, query string, args ...any) ([]catalog.Enrollment, error) {
	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, translate(op, err)
	}
	enrollments, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (catalog.Enrollment, error) {
		var e catalog.Enrollment
		err := row.Scan(&e.ClassCode, &e.SubjectCode, &e.RosterNumber)
		return e, err
	})
	return nonNil(enrollments), translate(op, err)
}

// nonNil keeps empty results encoding as [] rather than null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
