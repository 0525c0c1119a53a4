package sqlite

import (
	"context"
	"database/sql"

	"github.com/examhub/exam-room-scheduler/internal/domain/catalog"
	"github.com/examhub/exam-room-scheduler/internal/domain/shared"
)

// CatalogRepository implements catalog.Repository.
type CatalogRepository struct {
	db *sql.DB
}

var _ catalog.Repository = (*CatalogRepository)(nil)

func NewCatalogRepository(s *Store) *CatalogRepository {
	return &CatalogRepository{db: s.db}
}

// ──────────────────────────────────────────────────────────────────────────────
// Upserts
// ──────────────────────────────────────────────────────────────────────────────

func (r *CatalogRepository) UpsertPerson(ctx context.Context, p catalog.Person) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (roster_number, institution_number, name, major, role, initials)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(roster_number) DO UPDATE SET
			institution_number = excluded.institution_number,
			name = excluded.name,
			major = excluded.major,
			role = excluded.role,
			initials = excluded.initials`,
		p.RosterNumber, p.InstitutionNumber, p.Name, p.Major, p.Role, p.Initials,
	)
	return translate("UpsertPerson", err)
}

func (r *CatalogRepository) UpsertRoom(ctx context.Context, room catalog.Room) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO rooms (number, capacity, campus) VALUES (?, ?, ?)
		ON CONFLICT(number) DO UPDATE SET
			capacity = excluded.capacity,
			campus = excluded.campus`,
		room.Number, room.Capacity, room.Campus,
	)
	return translate("UpsertRoom", err)
}

func (r *CatalogRepository) UpsertSubject(ctx context.Context, s catalog.Subject) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO subjects (code, name) VALUES (?, ?)
		ON CONFLICT(code) DO UPDATE SET name = excluded.name`,
		s.Code, s.Name,
	)
	return translate("UpsertSubject", err)
}

func (r *CatalogRepository) UpsertEnrollment(ctx context.Context, e catalog.Enrollment) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO enrollments (class_code, subject_code, roster_number) VALUES (?, ?, ?)
		ON CONFLICT(class_code) DO UPDATE SET
			subject_code = excluded.subject_code,
			roster_number = excluded.roster_number`,
		e.ClassCode, e.SubjectCode, e.RosterNumber,
	)
	return translate("UpsertEnrollment", err)
}

func (r *CatalogRepository) UpdateRole(ctx context.Context, institutionNumber, role string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET role = ? WHERE institution_number = ?`, role, institutionNumber)
	if err != nil {
		return translate("UpdateRole", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return translate("UpdateRole", err)
	}
	if n == 0 {
		return shared.NewDomainError(domain, "UpdateRole", shared.ErrNotFound,
			"no user with institution number "+institutionNumber)
	}
	return nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Reads
// ──────────────────────────────────────────────────────────────────────────────

func (r *CatalogRepository) ListPeople(ctx context.Context) ([]catalog.Person, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT institution_number, roster_number, name, major, role, initials
		FROM users ORDER BY roster_number`)
	if err != nil {
		return nil, translate("ListPeople", err)
	}
	defer rows.Close()

	people := []catalog.Person{}
	for rows.Next() {
		var p catalog.Person
		var initials sql.NullString
		if err := rows.Scan(&p.InstitutionNumber, &p.RosterNumber, &p.Name, &p.Major, &p.Role, &initials); err != nil {
			return nil, translate("ListPeople", err)
		}
		if initials.Valid {
			v := initials.String
			p.Initials = &v
		}
		people = append(people, p)
	}
	return people, translate("ListPeople", rows.Err())
}

func (r *CatalogRepository) ListSubjects(ctx context.Context) ([]catalog.Subject, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT code, name FROM subjects ORDER BY code`)
	if err != nil {
		return nil, translate("ListSubjects", err)
	}
	defer rows.Close()

	subjects := []catalog.Subject{}
	for rows.Next() {
		var s catalog.Subject
		if err := rows.Scan(&s.Code, &s.Name); err != nil {
			return nil, translate("ListSubjects", err)
		}
		subjects = append(subjects, s)
	}
	return subjects, translate("ListSubjects", rows.Err())
}

func (r *CatalogRepository) ListRooms(ctx context.Context) ([]catalog.Room, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT number, capacity, campus FROM rooms ORDER BY number`)
	if err != nil {
		return nil, translate("ListRooms", err)
	}
	defer rows.Close()

	rooms := []catalog.Room{}
	for rows.Next() {
		var room catalog.Room
		if err := rows.Scan(&room.Number, &room.Capacity, &room.Campus); err != nil {
			return nil, translate("ListRooms", err)
		}
		rooms = append(rooms, room)
	}
	return rooms, translate("ListRooms", rows.Err())
}

func (r *CatalogRepository) ListShifts(ctx context.Context) ([]catalog.Shift, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT code, start_time, end_time FROM shifts ORDER BY CAST(code AS INTEGER), code`)
	if err != nil {
		return nil, translate("ListShifts", err)
	}
	defer rows.Close()

	shifts := []catalog.Shift{}
	for rows.Next() {
		var sh catalog.Shift
		if err := rows.Scan(&sh.Code, &sh.StartTime, &sh.EndTime); err != nil {
			return nil, translate("ListShifts", err)
		}
		shifts = append(shifts, sh)
	}
	return shifts, translate("ListShifts", rows.Err())
}

func (r *CatalogRepository) ListEnrollments(ctx context.Context) ([]catalog.Enrollment, error) {
	return r.queryEnrollments(ctx, "ListEnrollments",
		`SELECT class_code, subject_code, roster_number FROM enrollments ORDER BY class_code`)
}

func (r *CatalogRepository) EnrollmentsBySubject(ctx context.Context, subjectCode string) ([]catalog.Enrollment, error) {
	return r.queryEnrollments(ctx, "EnrollmentsBySubject",
		`SELECT class_code, subject_code, roster_number FROM enrollments
		 WHERE subject_code = ? ORDER BY class_code`, subjectCode)
}

func (r *CatalogRepository) queryEnrollments(ctx context.Context, op, query string, args ...any) ([]catalog.Enrollment, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, translate(op, err)
	}
	defer rows.Close()

	enrollments := []catalog.Enrollment{}
	for rows.Next() {
		var e catalog.Enrollment
		if err := rows.Scan(&e.ClassCode, &e.SubjectCode, &e.RosterNumber); err != nil {
			return nil, translate(op, err)
		}
		enrollments = append(enrollments, e)
	}
	return enrollments, translate(op, rows.Err())
}
