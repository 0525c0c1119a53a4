package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/examhub/exam-room-scheduler/internal/domain/catalog"
)

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATOR
// ══════════════════════════════════════════════════════════════════════════════

// ErrMigrationFailed wraps the error of the migration that stopped Migrate.
var ErrMigrationFailed = errors.New("postgres: migration failed")

// Migration represents a database migration.
type Migration struct {
	Version   int
	Name      string
	UpSQL     string
	DownSQL   string
	AppliedAt time.Time
	IsApplied bool
}

// Migrator applies migrations and records them in schema_migrations.
type Migrator struct {
	conn       *Connection
	migrations []Migration
	tableName  string
}

// NewMigrator creates a new migrator with embedded migrations.
func NewMigrator(conn *Connection) *Migrator {
	return &Migrator{
		conn:       conn,
		migrations: GetMigrations(),
		tableName:  "schema_migrations",
	}
}

// EnsureMigrationTable creates the migration tracking table if it doesn't exist.
func (m *Migrator) EnsureMigrationTable(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
		)
	`, m.tableName)

	if _, err := m.conn.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", translate("Migrate", err))
	}

	return nil
}

func (m *Migrator) appliedVersions(ctx context.Context) (map[int]time.Time, error) {
	rows, err := m.conn.Query(ctx, fmt.Sprintf("SELECT version, applied_at FROM %s ORDER BY version", m.tableName))
	if err != nil {
		return nil, fmt.Errorf("failed to query applied migrations: %w", translate("Migrate", err))
	}
	defer rows.Close()

	applied := make(map[int]time.Time)
	for rows.Next() {
		var version int
		var appliedAt time.Time
		if err := rows.Scan(&version, &appliedAt); err != nil {
			return nil, fmt.Errorf("failed to scan migration row: %w", err)
		}
		applied[version] = appliedAt
	}

	return applied, rows.Err()
}

// Migrate applies all pending migrations, each in its own transaction.
// It returns the versions it applied.
func (m *Migrator) Migrate(ctx context.Context) ([]int, error) {
	if err := m.EnsureMigrationTable(ctx); err != nil {
		return nil, err
	}

	applied, err := m.appliedVersions(ctx)
	if err != nil {
		return nil, err
	}

	var done []int
	for _, mig := range m.migrations {
		if _, ok := applied[mig.Version]; ok {
			continue
		}

		err := m.conn.WithTx(ctx, func(tx pgx.Tx) error {
			if _, err := tx.Exec(ctx, mig.UpSQL); err != nil {
				return fmt.Errorf("failed to execute migration %d: %w", mig.Version, err)
			}
			_, err := tx.Exec(ctx,
				fmt.Sprintf("INSERT INTO %s (version, name) VALUES ($1, $2)", m.tableName),
				mig.Version, mig.Name)
			return err
		})
		if err != nil {
			return done, fmt.Errorf("%w: version %d: %w", ErrMigrationFailed, mig.Version, err)
		}
		done = append(done, mig.Version)
	}

	return done, nil
}

// Status returns every known migration with its applied state.
func (m *Migrator) Status(ctx context.Context) ([]Migration, error) {
	if err := m.EnsureMigrationTable(ctx); err != nil {
		return nil, err
	}

	applied, err := m.appliedVersions(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]Migration, len(m.migrations))
	copy(result, m.migrations)

	for i := range result {
		if appliedAt, ok := applied[result[i].Version]; ok {
			result[i].IsApplied = true
			result[i].AppliedAt = appliedAt
		}
	}

	return result, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// EMBEDDED MIGRATIONS
// ══════════════════════════════════════════════════════════════════════════════

// GetMigrations returns all embedded migrations in version order.
func GetMigrations() []Migration {
	return []Migration{
		{
			Version: 1,
			Name:    "create_catalog_and_sessions",
			UpSQL:   migration001Up,
			DownSQL: migration001Down,
		},
		{
			Version: 2,
			Name:    "seed_shifts",
			UpSQL:   seedShiftsSQL(),
			DownSQL: `DELETE FROM shifts;`,
		},
	}
}

const migration001Up = `
CREATE TABLE IF NOT EXISTS users (
    roster_number      VARCHAR(32) PRIMARY KEY,
    institution_number VARCHAR(32) NOT NULL,
    name               VARCHAR(200) NOT NULL,
    major              VARCHAR(200) NOT NULL,
    role               VARCHAR(50) NOT NULL,
    initials           VARCHAR(16),
    password_hash      TEXT
);

CREATE INDEX IF NOT EXISTS idx_users_initials ON users(initials);
CREATE INDEX IF NOT EXISTS idx_users_institution_number ON users(institution_number);

CREATE TABLE IF NOT EXISTS rooms (
    number   VARCHAR(32) PRIMARY KEY,
    capacity INTEGER NOT NULL,
    campus   VARCHAR(100) NOT NULL
);

CREATE TABLE IF NOT EXISTS shifts (
    code       VARCHAR(8) PRIMARY KEY,
    start_time TIME NOT NULL,
    end_time   TIME NOT NULL
);

CREATE TABLE IF NOT EXISTS subjects (
    code VARCHAR(32) PRIMARY KEY,
    name VARCHAR(200) NOT NULL
);

CREATE TABLE IF NOT EXISTS enrollments (
    class_code    VARCHAR(64) PRIMARY KEY,
    subject_code  VARCHAR(32) NOT NULL REFERENCES subjects(code),
    roster_number VARCHAR(32) NOT NULL REFERENCES users(roster_number)
);

CREATE INDEX IF NOT EXISTS idx_enrollments_subject ON enrollments(subject_code);

CREATE TABLE IF NOT EXISTS exam_sessions (
    code         VARCHAR(16) PRIMARY KEY,
    subject_code VARCHAR(32) NOT NULL REFERENCES subjects(code),
    shift_code   VARCHAR(8) NOT NULL REFERENCES shifts(code),
    room_number  VARCHAR(32) NOT NULL REFERENCES rooms(number),
    date         DATE NOT NULL,
    proctor      VARCHAR(32) REFERENCES users(roster_number)
);

CREATE INDEX IF NOT EXISTS idx_exam_sessions_slot ON exam_sessions(date, shift_code);
`

const migration001Down = `
DROP TABLE IF EXISTS exam_sessions;
DROP TABLE IF EXISTS enrollments;
DROP TABLE IF EXISTS subjects;
DROP TABLE IF EXISTS shifts;
DROP TABLE IF EXISTS rooms;
DROP TABLE IF EXISTS users;
`

func seedShiftsSQL() string {
	var b strings.Builder
	b.WriteString("INSERT INTO shifts (code, start_time, end_time) VALUES\n")
	for i, sh := range catalog.StandardShifts() {
		if i > 0 {
			b.WriteString(",\n")
		}
		fmt.Fprintf(&b, "    ('%s', '%s', '%s')", sh.Code, sh.StartTime, sh.EndTime)
	}
	b.WriteString("\nON CONFLICT (code) DO NOTHING;")
	return b.String()
}
