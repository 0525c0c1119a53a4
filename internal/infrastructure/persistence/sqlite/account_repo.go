package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/examhub/exam-room-scheduler/internal/domain/identity"
	"github.com/examhub/exam-room-scheduler/internal/domain/shared"
)

// AccountRepository implements identity.AccountRepository.
type AccountRepository struct {
	db *sql.DB
}

var _ identity.AccountRepository = (*AccountRepository)(nil)

func NewAccountRepository(s *Store) *AccountRepository {
	return &AccountRepository{db: s.db}
}

const accountColumns = `institution_number, roster_number, name, major, role, initials, password_hash`

func (r *AccountRepository) FindForLogin(ctx context.Context, identifier string) (*identity.Account, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+accountColumns+` FROM users
		WHERE roster_number = ? OR initials = ?
		ORDER BY roster_number = ? DESC, roster_number
		LIMIT 1`, identifier, identifier, identifier)
	return scanAccount("FindForLogin", row)
}

func (r *AccountRepository) FindByRosterNumber(ctx context.Context, rosterNumber string) (*identity.Account, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM users WHERE roster_number = ?`, rosterNumber)
	return scanAccount("FindByRosterNumber", row)
}

func (r *AccountRepository) SetPasswordHash(ctx context.Context, rosterNumber, hash string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET password_hash = ? WHERE roster_number = ?`, hash, rosterNumber)
	if err != nil {
		return translate("SetPasswordHash", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return translate("SetPasswordHash", err)
	}
	if n == 0 {
		return shared.NewDomainError(domain, "SetPasswordHash", shared.ErrNotFound, "no user "+rosterNumber)
	}
	return nil
}

func scanAccount(op string, row *sql.Row) (*identity.Account, error) {
	var a identity.Account
	var initials, hash sql.NullString
	err := row.Scan(&a.InstitutionNumber, &a.RosterNumber, &a.Name, &a.Major, &a.Role, &initials, &hash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, shared.NewDomainError(domain, op, shared.ErrNotFound, "account not found")
	}
	if err != nil {
		return nil, translate(op, err)
	}
	if initials.Valid {
		v := initials.String
		a.Initials = &v
	}
	if hash.Valid {
		a.Credential = identity.Hashed(hash.String)
	}
	return &a, nil
}
