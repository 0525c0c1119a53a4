package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/mattn/go-sqlite3"

	"github.com/examhub/exam-room-scheduler/internal/domain/shared"
)

const domain = "store"

// translate maps driver errors onto the shared error kinds.
func translate(op string, err error) error {
	if err == nil {
		return nil
	}

	var se sqlite3.Error
	if errors.As(err, &se) {
		switch se.Code {
		case sqlite3.ErrConstraint:
			return shared.WrapError(domain, op, shared.ErrConstraint, constraintMessage(se), err)
		case sqlite3.ErrBusy, sqlite3.ErrLocked, sqlite3.ErrCantOpen, sqlite3.ErrIoErr:
			return shared.WrapError(domain, op, shared.ErrStoreConnection, "database unavailable", err)
		}
	}

	if errors.Is(err, sql.ErrNoRows) {
		return shared.WrapError(domain, op, shared.ErrNotFound, "no rows", err)
	}

	if errors.Is(err, sql.ErrConnDone) || strings.Contains(err.Error(), "database is closed") {
		return shared.WrapError(domain, op, shared.ErrStoreConnection, "database is closed", err)
	}

	return fmt.Errorf("%s.%s: %w", domain, op, err)
}

func constraintMessage(se sqlite3.Error) string {
	switch se.ExtendedCode {
	case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
		return "unique constraint violated"
	case sqlite3.ErrConstraintForeignKey:
		return "foreign key constraint violated"
	case sqlite3.ErrConstraintNotNull:
		return "not null constraint violated"
	default:
		return "constraint violated"
	}
}

// isUniqueViolation checks if the error is a unique or primary key violation.
func isUniqueViolation(err error) bool {
	var se sqlite3.Error
	if errors.As(err, &se) {
		return se.ExtendedCode == sqlite3.ErrConstraintUnique ||
			se.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}
