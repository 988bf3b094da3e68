package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/example/fitness-manager/internal/gym"
	"github.com/example/fitness-manager/internal/persistence"
)

// ReferenceChecker reports whether a row exists in another resource table.
type ReferenceChecker interface {
	Exists(ctx context.Context, resource string, id int64) (bool, error)
}

// Reference names a foreign key held by a row. A zero ID is skipped.
type Reference struct {
	Field    string
	Resource string
	ID       int64
}

// ResourceSpec describes the per-entity behaviour layered over the generic
// CRUD flow.
type ResourceSpec[T any] struct {
	// Name is the table name used for reference checks and logging.
	Name string
	// Noun is the singular name used in messages.
	Noun   string
	Policy Policy[T]
	// Normalize fills derived fields before validation on create and update.
	Normalize func(*T)
	// BeforeCreate sets server controlled fields.
	BeforeCreate func(*T)
	References   func(*T) []Reference
	// UniqueField is reported when a write hits a unique index.
	UniqueField string
}

// ResourceService implements list, get, create, update and delete for one
// entity type.
type ResourceService[T any, PT gym.Record[T]] struct {
	repo   persistence.Resource[T]
	refs   ReferenceChecker
	spec   ResourceSpec[T]
	logger *slog.Logger
}

// NewResourceService constructs a ResourceService using the default logger.
func NewResourceService[T any, PT gym.Record[T]](repo persistence.Resource[T], refs ReferenceChecker, spec ResourceSpec[T]) *ResourceService[T, PT] {
	return NewResourceServiceWithLogger[T, PT](repo, refs, spec, nil)
}

// NewResourceServiceWithLogger constructs a ResourceService with a specified logger.
func NewResourceServiceWithLogger[T any, PT gym.Record[T]](repo persistence.Resource[T], refs ReferenceChecker, spec ResourceSpec[T], logger *slog.Logger) *ResourceService[T, PT] {
	return &ResourceService[T, PT]{
		repo:   repo,
		refs:   refs,
		spec:   spec,
		logger: defaultLogger(logger),
	}
}

// Name returns the table name the service manages.
func (s *ResourceService[T, PT]) Name() string {
	return s.spec.Name
}

func (s *ResourceService[T, PT]) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	attrs = append([]any{"resource", s.spec.Name}, attrs...)
	return serviceLogger(ctx, s.logger, "ResourceService", operation, attrs...)
}

func (s *ResourceService[T, PT]) ready() error {
	if s == nil {
		return fmt.Errorf("ResourceService is nil")
	}
	if s.repo == nil {
		return fmt.Errorf("%s repository not configured", s.spec.Name)
	}
	return nil
}

func (s *ResourceService[T, PT]) authorize(principal Principal, action Action, row *T) error {
	if !s.spec.Policy.allows(principal, action, row) {
		return ErrUnauthorized
	}
	return nil
}

// List returns every row in key order.
func (s *ResourceService[T, PT]) List(ctx context.Context, principal Principal) (rows []T, err error) {
	if err = s.ready(); err != nil {
		return nil, err
	}

	logger := s.loggerWith(ctx, "List", "account_id", principal.AccountID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to list rows", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.DebugContext(ctx, "rows listed", "count", len(rows))
	}()

	if err = s.authorize(principal, ActionList, nil); err != nil {
		return nil, err
	}

	rows, err = s.repo.List(ctx)
	if err != nil {
		return nil, s.mapRepoError(err)
	}
	if rows == nil {
		rows = []T{}
	}
	return rows, nil
}

// Get returns a single row or ErrNotFound.
func (s *ResourceService[T, PT]) Get(ctx context.Context, principal Principal, id int64) (row T, err error) {
	if err = s.ready(); err != nil {
		return row, err
	}

	logger := s.loggerWith(ctx, "Get", "account_id", principal.AccountID, "id", id)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to get row", "error", err, "error_kind", ErrorKind(err))
		}
	}()

	if !principal.Authenticated() {
		return row, ErrUnauthorized
	}

	row, err = s.fetch(ctx, id)
	if err != nil {
		return row, err
	}
	if err = s.authorize(principal, ActionGet, &row); err != nil {
		var zero T
		return zero, err
	}
	return row, nil
}

// Create validates and stores row, returning it with the generated key.
func (s *ResourceService[T, PT]) Create(ctx context.Context, principal Principal, row T) (created T, err error) {
	if err = s.ready(); err != nil {
		return created, err
	}

	logger := s.loggerWith(ctx, "Create", "account_id", principal.AccountID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create row", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "row created", "id", PT(&created).Key())
	}()

	PT(&row).SetKey(0)
	if s.spec.Normalize != nil {
		s.spec.Normalize(&row)
	}
	if s.spec.BeforeCreate != nil {
		s.spec.BeforeCreate(&row)
	}

	if err = s.authorize(principal, ActionCreate, &row); err != nil {
		return created, err
	}
	if err = s.check(ctx, &row); err != nil {
		return created, err
	}

	var id int64
	id, err = s.repo.Create(ctx, row)
	if err != nil {
		return created, s.mapRepoError(err)
	}
	PT(&row).SetKey(id)
	return row, nil
}

// Update replaces every writable column of the row with the given key.
func (s *ResourceService[T, PT]) Update(ctx context.Context, principal Principal, id int64, row T) (updated T, err error) {
	if err = s.ready(); err != nil {
		return updated, err
	}

	logger := s.loggerWith(ctx, "Update", "account_id", principal.AccountID, "id", id)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update row", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "row updated")
	}()

	if !principal.Authenticated() {
		return updated, ErrUnauthorized
	}

	var existing T
	existing, err = s.fetch(ctx, id)
	if err != nil {
		return updated, err
	}
	if err = s.authorize(principal, ActionUpdate, &existing); err != nil {
		return updated, err
	}

	PT(&row).SetKey(id)
	if s.spec.Normalize != nil {
		s.spec.Normalize(&row)
	}
	if err = s.authorize(principal, ActionUpdate, &row); err != nil {
		return updated, err
	}
	if err = s.check(ctx, &row); err != nil {
		return updated, err
	}

	if err = s.repo.Update(ctx, id, row); err != nil {
		return updated, s.mapRepoError(err)
	}
	return row, nil
}

// Delete removes the row with the given key.
func (s *ResourceService[T, PT]) Delete(ctx context.Context, principal Principal, id int64) (err error) {
	if err = s.ready(); err != nil {
		return err
	}

	logger := s.loggerWith(ctx, "Delete", "account_id", principal.AccountID, "id", id)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to delete row", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "row deleted")
	}()

	if !principal.Authenticated() {
		return ErrUnauthorized
	}

	var existing T
	existing, err = s.fetch(ctx, id)
	if err != nil {
		return err
	}
	if err = s.authorize(principal, ActionDelete, &existing); err != nil {
		return err
	}

	if err = s.repo.Delete(ctx, id); err != nil {
		return s.mapRepoError(err)
	}
	return nil
}

func (s *ResourceService[T, PT]) fetch(ctx context.Context, id int64) (T, error) {
	row, err := s.repo.Get(ctx, id)
	if err != nil {
		return row, s.mapRepoError(err)
	}
	return row, nil
}

// check validates struct rules then confirms every referenced row exists.
func (s *ResourceService[T, PT]) check(ctx context.Context, row *T) error {
	vErr := &ValidationError{}
	if err := validateStruct(row); err != nil {
		var fieldErrs *ValidationError
		if !errors.As(err, &fieldErrs) {
			return err
		}
		vErr.merge(fieldErrs)
	}

	if s.spec.References != nil && s.refs != nil {
		for _, ref := range s.spec.References(row) {
			if _, failed := vErr.FieldErrors[ref.Field]; failed {
				continue
			}
			ok, err := s.refs.Exists(ctx, ref.Resource, ref.ID)
			if err != nil {
				return err
			}
			if !ok {
				vErr.add(ref.Field, fmt.Sprintf("%s %d does not exist", ref.Field, ref.ID))
			}
		}
	}

	if vErr.HasErrors() {
		return vErr
	}
	return nil
}

func (s *ResourceService[T, PT]) mapRepoError(err error) error {
	switch {
	case errors.Is(err, persistence.ErrNotFound):
		return fmt.Errorf("%s: %w", s.spec.Noun, ErrNotFound)
	case errors.Is(err, persistence.ErrDuplicate):
		field := s.spec.UniqueField
		if field == "" {
			field = "value"
		}
		return &ConflictError{Resource: s.spec.Noun, Field: field}
	}
	return err
}
