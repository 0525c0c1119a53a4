package postgres

import (
	"context"

	"github.com/examhub/exam-room-scheduler/internal/domain/identity"
	"github.com/examhub/exam-room-scheduler/internal/domain/shared"
)

// AccountRepository implements identity.AccountRepository using PostgreSQL.
type AccountRepository struct {
	conn *Connection
}

var _ identity.AccountRepository = (*AccountRepository)(nil)

func NewAccountRepository(conn *Connection) *AccountRepository {
	return &AccountRepository{conn: conn}
}

const selectAccount = `
	SELECT institution_number, roster_number, name, major, role, initials, password_hash
	FROM users`

func (r *AccountRepository) FindForLogin(ctx context.Context, identifier string) (*identity.Account, error) {
	return r.scan(ctx, "FindForLogin", selectAccount+`
		WHERE roster_number = $1 OR initials = $1
		ORDER BY (roster_number = $1) DESC, roster_number
		LIMIT 1`, identifier)
}

func (r *AccountRepository) FindByRosterNumber(ctx context.Context, rosterNumber string) (*identity.Account, error) {
	return r.scan(ctx, "FindByRosterNumber", selectAccount+` WHERE roster_number = $1`, rosterNumber)
}

func (r *AccountRepository) SetPasswordHash(ctx context.Context, rosterNumber, hash string) error {
	tag, err := r.conn.Exec(ctx, `UPDATE users SET password_hash = $1 WHERE roster_number = $2`, hash, rosterNumber)
	if err != nil {
		return translate("SetPasswordHash", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.NewDomainError(domain, "SetPasswordHash", shared.ErrNotFound, "no user "+rosterNumber)
	}
	return nil
}

func (r *AccountRepository) scan(ctx context.Context, op, query string, args ...any) (*identity.Account, error) {
	var a identity.Account
	var hash *string
	err := r.conn.QueryRow(ctx, query, args...).Scan(
		&a.InstitutionNumber, &a.RosterNumber, &a.Name, &a.Major, &a.Role, &a.Initials, &hash,
	)
	if IsNoRows(err) {
		return nil, shared.NewDomainError(domain, op, shared.ErrNotFound, "account not found")
	}
	if err != nil {
		return nil, translate(op, err)
	}
	a.Credential = identity.CredentialFromColumn(hash)
	return &a, nil
}
