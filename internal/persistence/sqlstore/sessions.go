package sqlstore

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/example/fitness-manager/internal/persistence"
)

// SessionRepository implements persistence.SessionRepository. Instants are
// stored as Unix seconds so expiry comparisons work the same on every dialect.
type SessionRepository struct {
	db *sqlx.DB
}

type sessionRow struct {
	Token     string        `db:"token"`
	AccountID int64         `db:"account_id"`
	ExpiresAt int64         `db:"expires_at"`
	CreatedAt int64         `db:"created_at"`
	RevokedAt sql.NullInt64 `db:"revoked_at"`
}

func (row sessionRow) toSession() persistence.Session {
	session := persistence.Session{
		Token:     row.Token,
		AccountID: row.AccountID,
		ExpiresAt: time.Unix(row.ExpiresAt, 0).UTC(),
		CreatedAt: time.Unix(row.CreatedAt, 0).UTC(),
	}
	if row.RevokedAt.Valid {
		revoked := time.Unix(row.RevokedAt.Int64, 0).UTC()
		session.RevokedAt = &revoked
	}
	return session
}

// CreateSession stores a newly issued session token.
func (r *SessionRepository) CreateSession(ctx context.Context, session persistence.Session) (persistence.Session, error) {
	if strings.TrimSpace(session.Token) == "" || session.AccountID == 0 {
		return persistence.Session{}, persistence.ErrConstraintViolation
	}
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now()
	}

	query := r.db.Rebind(`INSERT INTO sessions (token, account_id, expires_at, created_at)
		VALUES (?, ?, ?, ?)`)
	if _, err := r.db.ExecContext(ctx, query,
		session.Token,
		session.AccountID,
		session.ExpiresAt.Unix(),
		session.CreatedAt.Unix(),
	); err != nil {
		return persistence.Session{}, mapError(err)
	}

	session.ExpiresAt = time.Unix(session.ExpiresAt.Unix(), 0).UTC()
	session.CreatedAt = time.Unix(session.CreatedAt.Unix(), 0).UTC()
	session.RevokedAt = nil
	return session, nil
}

// GetSession retrieves a session by its token value.
func (r *SessionRepository) GetSession(ctx context.Context, token string) (persistence.Session, error) {
	normalized := strings.TrimSpace(token)
	if normalized == "" {
		return persistence.Session{}, persistence.ErrNotFound
	}

	var row sessionRow
	query := r.db.Rebind(`SELECT token, account_id, expires_at, created_at, revoked_at
		FROM sessions WHERE token = ?`)
	if err := r.db.GetContext(ctx, &row, query, normalized); err != nil {
		return persistence.Session{}, mapError(err)
	}
	return row.toSession(), nil
}

// RevokeSession marks the session as revoked and returns its final state.
func (r *SessionRepository) RevokeSession(ctx context.Context, token string, revokedAt time.Time) (persistence.Session, error) {
	normalized := strings.TrimSpace(token)
	if normalized == "" {
		return persistence.Session{}, persistence.ErrNotFound
	}

	query := r.db.Rebind(`UPDATE sessions SET revoked_at = ? WHERE token = ?`)
	res, err := r.db.ExecContext(ctx, query, revokedAt.Unix(), normalized)
	if err != nil {
		return persistence.Session{}, mapError(err)
	}
	if err := requireAffected(res); err != nil {
		return persistence.Session{}, err
	}
	return r.GetSession(ctx, normalized)
}

// DeleteExpiredSessions removes sessions that expired at or before reference.
func (r *SessionRepository) DeleteExpiredSessions(ctx context.Context, reference time.Time) error {
	query := r.db.Rebind(`DELETE FROM sessions WHERE expires_at <= ?`)
	if _, err := r.db.ExecContext(ctx, query, reference.Unix()); err != nil {
		return mapError(err)
	}
	return nil
}

var _ persistence.SessionRepository = (*SessionRepository)(nil)
