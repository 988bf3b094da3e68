package application

import (
	"time"

	"github.com/example/fitness-manager/internal/gym"
	"github.com/example/fitness-manager/internal/persistence"
)

// Principal represents the authenticated account invoking a service method.
// UserID is set for students and CoachID for coaches.
type Principal struct {
	AccountID int64
	Email     string
	Role      gym.Role
	UserID    int64
	CoachID   int64
}

// Authenticated reports whether the principal came from a valid session.
func (p Principal) Authenticated() bool {
	return p.AccountID != 0 && p.Role.Valid()
}

// IsAdmin reports whether the principal has the admin role.
func (p Principal) IsAdmin() bool {
	return p.Authenticated() && p.Role == gym.RoleAdmin
}

func principalFromAccount(account persistence.Account) Principal {
	p := Principal{AccountID: account.ID, Email: account.Email, Role: account.Role}
	if account.UserID != nil {
		p.UserID = *account.UserID
	}
	if account.CoachID != nil {
		p.CoachID = *account.CoachID
	}
	return p
}

// Action names an operation for policy checks.
type Action string

const (
	ActionList   Action = "list"
	ActionGet    Action = "get"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// AuthenticateParams carries login credentials.
type AuthenticateParams struct {
	Email    string
	Password string
}

// AuthenticateResult is returned by a successful login.
type AuthenticateResult struct {
	Principal Principal
	Session   persistence.Session
}

// RegisterParams carries a self-service student registration.
type RegisterParams struct {
	User     gym.User
	Password string
}

// RegisterResult is returned by a successful registration.
type RegisterResult struct {
	User      gym.User
	Principal Principal
}

// CreateAccountParams carries an administrator-issued account.
type CreateAccountParams struct {
	Principal Principal
	Email     string
	Password  string
	Role      gym.Role
	UserID    *int64
	CoachID   *int64
}

// sessionActive reports whether session can still be used at now.
func sessionActive(session persistence.Session, now time.Time) error {
	if session.RevokedAt != nil && !session.RevokedAt.IsZero() {
		return ErrSessionRevoked
	}
	if !session.ExpiresAt.After(now) {
		return ErrSessionExpired
	}
	return nil
}
