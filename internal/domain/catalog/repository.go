package catalog

import "context"

// ══════════════════════════════════════════════════════════════════════════════
// REPOSITORY INTERFACES
// Implementations live in infrastructure/persistence.
// ══════════════════════════════════════════════════════════════════════════════

// Writer upserts replicated records by their unique key. An upsert inserts
// when the key is absent and otherwise overwrites every non-key field.
// Upserting a Person never touches its stored password hash.
type Writer interface {
	UpsertPerson(ctx context.Context, p Person) error
	UpsertRoom(ctx context.Context, r Room) error
	UpsertSubject(ctx context.Context, s Subject) error
	UpsertEnrollment(ctx context.Context, e Enrollment) error
}

// Reader lists catalog data. Every list is ordered by key.
type Reader interface {
	ListPeople(ctx context.Context) ([]Person, error)
	ListSubjects(ctx context.Context) ([]Subject, error)
	ListRooms(ctx context.Context) ([]Room, error)
	ListShifts(ctx context.Context) ([]Shift, error)
	ListEnrollments(ctx context.Context) ([]Enrollment, error)

	// EnrollmentsBySubject returns the enrollments of one subject.
	EnrollmentsBySubject(ctx context.Context, subjectCode string) ([]Enrollment, error)
}

// Repository is the full catalog store.
type Repository interface {
	Reader
	Writer

	// UpdateRole sets the role of the person with the given institution
	// number. Returns shared.ErrNotFound when nobody matches.
	UpdateRole(ctx context.Context, institutionNumber, role string) error
}
