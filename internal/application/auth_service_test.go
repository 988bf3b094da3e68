package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/fitness-manager/internal/gym"
	"github.com/example/fitness-manager/internal/persistence"
)

func plainVerifier(hashed, password string) error {
	if hashed != password {
		return ErrInvalidCredentials
	}
	return nil
}

func TestAuthService_Authenticate(t *testing.T) {
	t.Parallel()

	studentID := int64(7)
	account := persistence.Account{ID: 3, Email: "user@example.com", PasswordHash: "secret", Role: gym.RoleStudent, UserID: &studentID}

	t.Run("issues sessions for valid credentials", func(t *testing.T) {
		t.Parallel()

		now := time.Date(2025, 1, 2, 15, 4, 5, 0, time.UTC)
		accounts := newAccountRepositoryStub(account)
		repo := newSessionRepositoryStub()
		svc := NewAuthService(accounts, repo, plainVerifier, func() string { return "session-token" }, func() time.Time { return now }, time.Hour)

		result, err := svc.Authenticate(context.Background(), AuthenticateParams{Email: " User@Example.com", Password: "secret"})
		if err != nil {
			t.Fatalf("Authenticate failed: %v", err)
		}

		if result.Session.Token != "session-token" {
			t.Fatalf("expected issued token, got %s", result.Session.Token)
		}
		if !result.Session.ExpiresAt.Equal(now.Add(time.Hour)) {
			t.Fatalf("expected expiry one hour ahead, got %v", result.Session.ExpiresAt)
		}
		want := Principal{AccountID: 3, Email: "user@example.com", Role: gym.RoleStudent, UserID: 7}
		if result.Principal != want {
			t.Fatalf("expected principal %+v, got %+v", want, result.Principal)
		}
		if len(repo.deleteCalls) != 1 || !repo.deleteCalls[0].Equal(now) {
			t.Fatalf("expected DeleteExpiredSessions to be called with now, got %#v", repo.deleteCalls)
		}
	})

	t.Run("rejects disabled accounts", func(t *testing.T) {
		t.Parallel()

		disabled := account
		disabled.Disabled = true
		svc := NewAuthService(newAccountRepositoryStub(disabled), newSessionRepositoryStub(), plainVerifier, nil, time.Now, time.Hour)

		_, err := svc.Authenticate(context.Background(), AuthenticateParams{Email: "user@example.com", Password: "secret"})
		if !errors.Is(err, ErrAccountDisabled) {
			t.Fatalf("expected ErrAccountDisabled, got %v", err)
		}
	})

	t.Run("rejects invalid credentials with sentinel error", func(t *testing.T) {
		t.Parallel()

		svc := NewAuthService(newAccountRepositoryStub(account), newSessionRepositoryStub(), plainVerifier, nil, time.Now, time.Hour)

		for _, params := range []AuthenticateParams{
			{Email: "user@example.com", Password: "wrong"},
			{Email: "nobody@example.com", Password: "secret"},
			{Email: "", Password: ""},
		} {
			if _, err := svc.Authenticate(context.Background(), params); !errors.Is(err, ErrInvalidCredentials) {
				t.Fatalf("expected ErrInvalidCredentials for %+v, got %v", params, err)
			}
		}
	})

	t.Run("propagates repository failures", func(t *testing.T) {
		t.Parallel()

		accounts := newAccountRepositoryStub(account)
		accounts.err = errors.New("db down")
		svc := NewAuthService(accounts, newSessionRepositoryStub(), plainVerifier, nil, time.Now, time.Hour)

		if _, err := svc.Authenticate(context.Background(), AuthenticateParams{Email: "user@example.com", Password: "secret"}); err == nil || errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("expected raw repository error, got %v", err)
		}
	})
}

func TestAuthService_RevokeSession(t *testing.T) {
	t.Parallel()

	t.Run("marks session revoked and prunes", func(t *testing.T) {
		t.Parallel()

		now := time.Now().UTC()
		repo := newSessionRepositoryStub()
		repo.seed(persistence.Session{Token: "token", AccountID: 1, ExpiresAt: now.Add(time.Hour)})
		svc := NewAuthService(nil, repo, nil, nil, func() time.Time { return now }, time.Hour)

		if err := svc.RevokeSession(context.Background(), " token "); err != nil {
			t.Fatalf("RevokeSession: %v", err)
		}
		if repo.sessions["token"].RevokedAt == nil {
			t.Fatalf("expected session to be revoked")
		}
		if len(repo.deleteCalls) != 1 {
			t.Fatalf("expected expired sessions to be pruned")
		}
	})

	t.Run("unknown token is invalid", func(t *testing.T) {
		t.Parallel()

		svc := NewAuthService(nil, newSessionRepositoryStub(), nil, nil, time.Now, time.Hour)
		if err := svc.RevokeSession(context.Background(), "missing"); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
		if err := svc.RevokeSession(context.Background(), "  "); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials for blank token, got %v", err)
		}
	})
}

func TestAuthService_ValidateSession(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 1, 2, 15, 4, 5, 0, time.UTC)
	coachID := int64(4)
	account := persistence.Account{ID: 9, Email: "coach@example.com", Role: gym.RoleCoach, CoachID: &coachID}

	newService := func(session persistence.Session, accounts ...persistence.Account) *AuthService {
		repo := newSessionRepositoryStub()
		repo.seed(session)
		return NewAuthService(newAccountRepositoryStub(accounts...), repo, nil, nil, func() time.Time { return now }, time.Hour)
	}

	t.Run("returns principal for active session", func(t *testing.T) {
		t.Parallel()

		svc := newService(persistence.Session{Token: "token", AccountID: 9, ExpiresAt: now.Add(time.Minute)}, account)
		principal, err := svc.ValidateSession(context.Background(), "token")
		if err != nil {
			t.Fatalf("ValidateSession: %v", err)
		}
		if principal.Role != gym.RoleCoach || principal.CoachID != 4 || principal.AccountID != 9 {
			t.Fatalf("unexpected principal %+v", principal)
		}
	})

	t.Run("rejects expired session", func(t *testing.T) {
		t.Parallel()

		svc := newService(persistence.Session{Token: "token", AccountID: 9, ExpiresAt: now}, account)
		if _, err := svc.ValidateSession(context.Background(), "token"); !errors.Is(err, ErrSessionExpired) {
			t.Fatalf("expected ErrSessionExpired, got %v", err)
		}
	})

	t.Run("rejects revoked session", func(t *testing.T) {
		t.Parallel()

		revokedAt := now.Add(-time.Minute)
		svc := newService(persistence.Session{Token: "token", AccountID: 9, ExpiresAt: now.Add(time.Hour), RevokedAt: &revokedAt}, account)
		if _, err := svc.ValidateSession(context.Background(), "token"); !errors.Is(err, ErrSessionRevoked) {
			t.Fatalf("expected ErrSessionRevoked, got %v", err)
		}
	})

	t.Run("rejects unknown token and missing account", func(t *testing.T) {
		t.Parallel()

		svc := newService(persistence.Session{Token: "token", AccountID: 10, ExpiresAt: now.Add(time.Hour)}, account)
		if _, err := svc.ValidateSession(context.Background(), "other"); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials for unknown token, got %v", err)
		}
		if _, err := svc.ValidateSession(context.Background(), "token"); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials for orphaned session, got %v", err)
		}
	})

	t.Run("rejects disabled account", func(t *testing.T) {
		t.Parallel()

		disabled := account
		disabled.Disabled = true
		svc := newService(persistence.Session{Token: "token", AccountID: 9, ExpiresAt: now.Add(time.Hour)}, disabled)
		if _, err := svc.ValidateSession(context.Background(), "token"); !errors.Is(err, ErrAccountDisabled) {
			t.Fatalf("expected ErrAccountDisabled, got %v", err)
		}
	})
}

// accountRepositoryStub implements persistence.AccountRepository for tests.
type accountRepositoryStub struct {
	byID map[int64]persistence.Account
	err  error
}

func newAccountRepositoryStub(accounts ...persistence.Account) *accountRepositoryStub {
	stub := &accountRepositoryStub{byID: make(map[int64]persistence.Account)}
	for _, a := range accounts {
		stub.byID[a.ID] = a
	}
	return stub
}

func (a *accountRepositoryStub) CreateAccount(ctx context.Context, account persistence.Account) (persistence.Account, error) {
	if a.err != nil {
		return persistence.Account{}, a.err
	}
	for _, existing := range a.byID {
		if existing.Email == account.Email {
			return persistence.Account{}, persistence.ErrDuplicate
		}
	}
	account.ID = int64(len(a.byID) + 1)
	a.byID[account.ID] = account
	return account, nil
}

func (a *accountRepositoryStub) GetAccount(ctx context.Context, id int64) (persistence.Account, error) {
	if a.err != nil {
		return persistence.Account{}, a.err
	}
	account, ok := a.byID[id]
	if !ok {
		return persistence.Account{}, persistence.ErrNotFound
	}
	return account, nil
}

func (a *accountRepositoryStub) GetAccountByEmail(ctx context.Context, email string) (persistence.Account, error) {
	if a.err != nil {
		return persistence.Account{}, a.err
	}
	for _, account := range a.byID {
		if account.Email == email {
			return account, nil
		}
	}
	return persistence.Account{}, persistence.ErrNotFound
}

// sessionRepositoryStub provides an in-memory persistence.SessionRepository for tests.
type sessionRepositoryStub struct {
	sessions map[string]persistence.Session

	createErr error
	deleteErr error

	deleteCalls []time.Time
}

func newSessionRepositoryStub() *sessionRepositoryStub {
	return &sessionRepositoryStub{sessions: make(map[string]persistence.Session)}
}

func (s *sessionRepositoryStub) seed(session persistence.Session) {
	s.sessions[session.Token] = session
}

func (s *sessionRepositoryStub) CreateSession(ctx context.Context, session persistence.Session) (persistence.Session, error) {
	if s.createErr != nil {
		return persistence.Session{}, s.createErr
	}
	s.seed(session)
	return session, nil
}

func (s *sessionRepositoryStub) GetSession(ctx context.Context, token string) (persistence.Session, error) {
	session, ok := s.sessions[token]
	if !ok {
		return persistence.Session{}, persistence.ErrNotFound
	}
	return session, nil
}

func (s *sessionRepositoryStub) RevokeSession(ctx context.Context, token string, revokedAt time.Time) (persistence.Session, error) {
	session, ok := s.sessions[token]
	if !ok {
		return persistence.Session{}, persistence.ErrNotFound
	}
	revoked := revokedAt.UTC()
	session.RevokedAt = &revoked
	s.sessions[token] = session
	return session, nil
}

func (s *sessionRepositoryStub) DeleteExpiredSessions(ctx context.Context, reference time.Time) error {
	s.deleteCalls = append(s.deleteCalls, reference)
	return s.deleteErr
}
