package application

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/example/fitness-manager/internal/gym"
	"github.com/example/fitness-manager/internal/persistence"
)

// ProgressRepository adds the filtered read used for per-user history.
type ProgressRepository interface {
	persistence.Resource[gym.FitnessProgress]
	ListBy(ctx context.Context, column string, value any, orderBy string) ([]gym.FitnessProgress, error)
}

// ProgressService manages fitness progress entries. BMI is derived from
// weight and height when the caller does not supply it.
type ProgressService struct {
	*ResourceService[gym.FitnessProgress, *gym.FitnessProgress]
	repo   ProgressRepository
	refs   ReferenceChecker
	logger *slog.Logger
}

func NewProgressService(repo ProgressRepository, refs ReferenceChecker) *ProgressService {
	return NewProgressServiceWithLogger(repo, refs, nil)
}

func NewProgressServiceWithLogger(repo ProgressRepository, refs ReferenceChecker, logger *slog.Logger) *ProgressService {
	base := defaultLogger(logger)
	return &ProgressService{
		ResourceService: NewResourceServiceWithLogger[gym.FitnessProgress, *gym.FitnessProgress](repo, refs, progressSpec(), base),
		repo:            repo,
		refs:            refs,
		logger:          base,
	}
}

// ListForUser returns the entries of one user, newest date first.
func (s *ProgressService) ListForUser(ctx context.Context, principal Principal, userID int64) (entries []gym.FitnessProgress, err error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("ProgressService is not configured")
	}

	logger := serviceLogger(ctx, s.logger, "ProgressService", "ListForUser",
		"account_id", principal.AccountID,
		"user_id", userID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to list progress", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.DebugContext(ctx, "progress listed", "count", len(entries))
	}()

	if !s.canReadUser(principal, userID) {
		return nil, ErrUnauthorized
	}

	if s.refs != nil {
		var ok bool
		ok, err = s.refs.Exists(ctx, ResourceUsers, userID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("user: %w", ErrNotFound)
		}
	}

	entries, err = s.repo.ListBy(ctx, "user_id", userID, "-date")
	if err != nil {
		return nil, s.mapRepoError(err)
	}
	if entries == nil {
		entries = []gym.FitnessProgress{}
	}
	return entries, nil
}

func (s *ProgressService) canReadUser(principal Principal, userID int64) bool {
	if !principal.Authenticated() {
		return false
	}
	switch principal.Role {
	case gym.RoleAdmin, gym.RoleCoach:
		return true
	case gym.RoleStudent:
		return principal.UserID != 0 && principal.UserID == userID
	}
	return false
}
