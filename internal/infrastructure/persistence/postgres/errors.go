package postgres

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/examhub/exam-room-scheduler/internal/domain/shared"
)

const domain = "store"

// translate maps pgx errors onto the shared error kinds.
func translate(op string, err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505", "23503", "23502":
			return shared.WrapError(domain, op, shared.ErrConstraint, pgErr.ConstraintName+": "+pgErr.Message, err)
		case "22001":
			// value too long for a VARCHAR key column
			return shared.WrapError(domain, op, shared.ErrConstraint, pgErr.Message, err)
		case "57P01", "57P02", "57P03", "53300":
			return shared.WrapError(domain, op, shared.ErrStoreConnection, "server unavailable", err)
		}
		return fmt.Errorf("%s.%s: %w", domain, op, err)
	}

	if IsNoRows(err) {
		return shared.WrapError(domain, op, shared.ErrNotFound, "no rows", err)
	}

	if isConnectionError(err) {
		return shared.WrapError(domain, op, shared.ErrStoreConnection, "database unavailable", err)
	}

	return fmt.Errorf("%s.%s: %w", domain, op, err)
}

func isConnectionError(err error) bool {
	if errors.Is(err, ErrConnectionClosed) {
		return true
	}
	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	return strings.Contains(err.Error(), "closed pool")
}

// IsUniqueViolation checks if the error is a unique constraint violation.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return false
}

// IsForeignKeyViolation checks if the error is a foreign key violation.
func IsForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23503" // foreign_key_violation
	}
	return false
}

// IsNoRows checks if the error is a "no rows" error.
func IsNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
