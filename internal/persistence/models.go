package persistence

import (
	"time"

	"github.com/example/fitness-manager/internal/gym"
)

// Account holds login credentials and links them to the user or coach row the
// holder acts as.
type Account struct {
	ID           int64    `db:"account_id"`
	Email        string   `db:"email"`
	PasswordHash string   `db:"password_hash"`
	Role         gym.Role `db:"role"`
	UserID       *int64   `db:"user_id"`
	CoachID      *int64   `db:"coach_id"`
	Disabled     bool     `db:"disabled"`
}

// Session represents an issued session token.
type Session struct {
	Token     string
	AccountID int64
	ExpiresAt time.Time
	CreatedAt time.Time
	RevokedAt *time.Time
}
