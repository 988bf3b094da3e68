package sqlstore

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/example/fitness-manager/internal/persistence"
)

const accountColumns = "account_id, email, password_hash, role, user_id, coach_id, disabled"

// AccountRepository implements persistence.AccountRepository.
type AccountRepository struct {
	db      *sqlx.DB
	dialect Dialect
}

// CreateAccount stores a new account and returns it with its generated key.
// Emails are stored lower-cased and must be unique.
func (r *AccountRepository) CreateAccount(ctx context.Context, account persistence.Account) (persistence.Account, error) {
	account.Email = strings.ToLower(strings.TrimSpace(account.Email))
	if account.Email == "" || account.PasswordHash == "" || !account.Role.Valid() {
		return persistence.Account{}, persistence.ErrConstraintViolation
	}

	insert := `INSERT INTO accounts (email, password_hash, role, user_id, coach_id, disabled)
		VALUES (:email, :password_hash, :role, :user_id, :coach_id, :disabled)`
	if r.dialect.returningKeys() {
		insert += " RETURNING account_id"
	}
	query, args, err := sqlx.Named(insert, account)
	if err != nil {
		return persistence.Account{}, fmt.Errorf("bind account insert: %w", err)
	}
	query = r.db.Rebind(query)

	if r.dialect.returningKeys() {
		if err := r.db.QueryRowxContext(ctx, query, args...).Scan(&account.ID); err != nil {
			return persistence.Account{}, mapError(err)
		}
		return account, nil
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return persistence.Account{}, mapError(err)
	}
	if account.ID, err = res.LastInsertId(); err != nil {
		return persistence.Account{}, fmt.Errorf("read account key: %w", err)
	}
	return account, nil
}

// GetAccount retrieves an account by key.
func (r *AccountRepository) GetAccount(ctx context.Context, id int64) (persistence.Account, error) {
	var account persistence.Account
	query := r.db.Rebind("SELECT " + accountColumns + " FROM accounts WHERE account_id = ?")
	if err := r.db.GetContext(ctx, &account, query, id); err != nil {
		return persistence.Account{}, mapError(err)
	}
	return account, nil
}

// GetAccountByEmail retrieves an account by its login email.
func (r *AccountRepository) GetAccountByEmail(ctx context.Context, email string) (persistence.Account, error) {
	normalized := strings.ToLower(strings.TrimSpace(email))
	if normalized == "" {
		return persistence.Account{}, persistence.ErrNotFound
	}
	var account persistence.Account
	query := r.db.Rebind("SELECT " + accountColumns + " FROM accounts WHERE email = ?")
	if err := r.db.GetContext(ctx, &account, query, normalized); err != nil {
		return persistence.Account{}, mapError(err)
	}
	return account, nil
}

var _ persistence.AccountRepository = (*AccountRepository)(nil)
