package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/example/fitness-manager/internal/gym"
	"github.com/example/fitness-manager/internal/persistence"
)

// AccountService issues login accounts: self-service student registration,
// administrator-created accounts and the bootstrap administrator.
type AccountService struct {
	users    persistence.Resource[gym.User]
	accounts persistence.AccountRepository
	refs     ReferenceChecker
	hash     PasswordHasher
	logger   *slog.Logger
}

// NewAccountService constructs an AccountService using the default logger.
func NewAccountService(users persistence.Resource[gym.User], accounts persistence.AccountRepository, refs ReferenceChecker, hash PasswordHasher) *AccountService {
	return NewAccountServiceWithLogger(users, accounts, refs, hash, nil)
}

// NewAccountServiceWithLogger constructs an AccountService with a specified logger.
func NewAccountServiceWithLogger(users persistence.Resource[gym.User], accounts persistence.AccountRepository, refs ReferenceChecker, hash PasswordHasher, logger *slog.Logger) *AccountService {
	if hash == nil {
		hash = HashPassword
	}
	return &AccountService{
		users:    users,
		accounts: accounts,
		refs:     refs,
		hash:     hash,
		logger:   defaultLogger(logger),
	}
}

func (s *AccountService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "AccountService", operation, attrs...)
}

// Register creates a user row and a student account linked to it. The user
// row is removed again when the account cannot be stored.
func (s *AccountService) Register(ctx context.Context, params RegisterParams) (result RegisterResult, err error) {
	if s == nil || s.users == nil || s.accounts == nil {
		err = fmt.Errorf("AccountService is not configured")
		return
	}

	user := params.User
	user.UserID = 0

	logger := s.loggerWith(ctx, "Register", "email", user.Email)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "registration failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "student registered",
			"user_id", result.User.UserID,
			"account_id", result.Principal.AccountID,
		)
	}()

	vErr := &ValidationError{}
	if verr := validateStruct(&user); verr != nil {
		var fieldErrs *ValidationError
		if !errors.As(verr, &fieldErrs) {
			err = verr
			return
		}
		vErr.merge(fieldErrs)
	}
	validatePassword(vErr, params.Password)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	var hash string
	if hash, err = s.hash(params.Password); err != nil {
		return
	}

	var id int64
	id, err = s.users.Create(ctx, user)
	if err != nil {
		err = mapAccountError(err, "user")
		return
	}
	user.UserID = id

	var account persistence.Account
	account, err = s.accounts.CreateAccount(ctx, persistence.Account{
		Email:        user.Email,
		PasswordHash: hash,
		Role:         gym.RoleStudent,
		UserID:       &id,
	})
	if err != nil {
		if delErr := s.users.Delete(ctx, id); delErr != nil {
			logger.ErrorContext(ctx, "failed to remove user after account error", "error", delErr, "user_id", id)
		}
		err = mapAccountError(err, "account")
		return
	}

	result = RegisterResult{User: user, Principal: principalFromAccount(account)}
	return
}

// CreateAccount lets an administrator issue an account of any role. Coach
// accounts must reference a coach row and student accounts a user row.
func (s *AccountService) CreateAccount(ctx context.Context, params CreateAccountParams) (account persistence.Account, err error) {
	if s == nil || s.accounts == nil {
		err = fmt.Errorf("AccountService is not configured")
		return
	}

	email := strings.ToLower(strings.TrimSpace(params.Email))
	logger := s.loggerWith(ctx, "CreateAccount",
		"actor_id", params.Principal.AccountID,
		"email", email,
		"role", params.Role,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create account", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "account created", "account_id", account.ID)
	}()

	if !params.Principal.IsAdmin() {
		err = ErrUnauthorized
		return
	}

	vErr := &ValidationError{}
	if email == "" {
		vErr.add("email", "email is required")
	} else if structValidator().Var(email, "email") != nil {
		vErr.add("email", "email is invalid")
	}
	validatePassword(vErr, params.Password)

	account = persistence.Account{Email: email, Role: params.Role}
	switch params.Role {
	case gym.RoleAdmin:
	case gym.RoleCoach:
		if params.CoachID == nil {
			vErr.add("coach_id", "coach_id is required for coach accounts")
		} else if err = s.requireReference(ctx, vErr, "coach_id", ResourceCoaches, *params.CoachID); err != nil {
			return
		}
		account.CoachID = params.CoachID
	case gym.RoleStudent:
		if params.UserID == nil {
			vErr.add("user_id", "user_id is required for student accounts")
		} else if err = s.requireReference(ctx, vErr, "user_id", ResourceUsers, *params.UserID); err != nil {
			return
		}
		account.UserID = params.UserID
	default:
		vErr.add("role", "must be one of: student coach admin")
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	if account.PasswordHash, err = s.hash(params.Password); err != nil {
		return
	}

	account, err = s.accounts.CreateAccount(ctx, account)
	if err != nil {
		err = mapAccountError(err, "account")
		return
	}
	return
}

// EnsureAdmin creates the bootstrap administrator when no account uses email
// yet. It reports whether an account was created.
func (s *AccountService) EnsureAdmin(ctx context.Context, email, password string) (created bool, err error) {
	if s == nil || s.accounts == nil {
		return false, fmt.Errorf("AccountService is not configured")
	}

	email = strings.ToLower(strings.TrimSpace(email))
	logger := s.loggerWith(ctx, "EnsureAdmin", "email", email)

	if _, err = s.accounts.GetAccountByEmail(ctx, email); err == nil {
		logger.DebugContext(ctx, "bootstrap administrator already present")
		return false, nil
	} else if !errors.Is(err, persistence.ErrNotFound) {
		logger.ErrorContext(ctx, "failed to look up bootstrap administrator", "error", err)
		return false, err
	}

	vErr := &ValidationError{}
	validatePassword(vErr, password)
	if vErr.HasErrors() {
		return false, vErr
	}

	hash, err := s.hash(password)
	if err != nil {
		return false, err
	}
	account, err := s.accounts.CreateAccount(ctx, persistence.Account{
		Email:        email,
		PasswordHash: hash,
		Role:         gym.RoleAdmin,
	})
	if err != nil {
		err = mapAccountError(err, "account")
		logger.ErrorContext(ctx, "failed to create bootstrap administrator", "error", err, "error_kind", ErrorKind(err))
		return false, err
	}

	logger.InfoContext(ctx, "bootstrap administrator created", "account_id", account.ID)
	return true, nil
}

func (s *AccountService) requireReference(ctx context.Context, vErr *ValidationError, field, resource string, id int64) error {
	if s.refs == nil {
		return nil
	}
	ok, err := s.refs.Exists(ctx, resource, id)
	if err != nil {
		return err
	}
	if !ok {
		vErr.add(field, fmt.Sprintf("%s %d does not exist", field, id))
	}
	return nil
}

func validatePassword(vErr *ValidationError, password string) {
	if len(password) < MinPasswordLength {
		vErr.add("password", fmt.Sprintf("must be at least %d characters", MinPasswordLength))
	}
}

func mapAccountError(err error, noun string) error {
	switch {
	case errors.Is(err, persistence.ErrDuplicate):
		return &ConflictError{Resource: noun, Field: "email"}
	case errors.Is(err, persistence.ErrNotFound):
		return fmt.Errorf("%s: %w", noun, ErrNotFound)
	}
	return err
}
