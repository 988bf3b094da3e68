package application

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/example/fitness-manager/internal/gym"
	"github.com/example/fitness-manager/internal/persistence"
)

// BookingRepository adds the compare-and-set status write used by reviews.
type BookingRepository interface {
	persistence.Resource[gym.Booking]
	SetIf(ctx context.Context, id int64, column string, expected, next any) (bool, error)
}

// BookingService manages bookings. Creation always starts in the pending state
// and updates only move the status through the transition table.
type BookingService struct {
	*ResourceService[gym.Booking, *gym.Booking]
	repo   BookingRepository
	logger *slog.Logger
}

// NewBookingService constructs a BookingService using the default logger.
func NewBookingService(repo BookingRepository, refs ReferenceChecker) *BookingService {
	return NewBookingServiceWithLogger(repo, refs, nil)
}

// NewBookingServiceWithLogger constructs a BookingService with a specified logger.
func NewBookingServiceWithLogger(repo BookingRepository, refs ReferenceChecker, logger *slog.Logger) *BookingService {
	base := defaultLogger(logger)
	return &BookingService{
		ResourceService: NewResourceServiceWithLogger[gym.Booking, *gym.Booking](repo, refs, bookingSpec(), base),
		repo:            repo,
		logger:          base,
	}
}

// Update applies the status of row to the booking. Every other field of row
// is ignored.
func (s *BookingService) Update(ctx context.Context, principal Principal, id int64, row gym.Booking) (gym.Booking, error) {
	return s.Review(ctx, principal, id, row.Status)
}

// Review moves a booking to next when the transition table allows it. The
// write only succeeds while the stored status still matches the status the
// transition was checked against.
func (s *BookingService) Review(ctx context.Context, principal Principal, id int64, next gym.BookingStatus) (booking gym.Booking, err error) {
	if s == nil || s.repo == nil {
		return booking, fmt.Errorf("BookingService is not configured")
	}

	logger := serviceLogger(ctx, s.logger, "BookingService", "Review",
		"account_id", principal.AccountID,
		"booking_id", id,
		"next_status", next,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "booking review failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "booking reviewed", "status", booking.Status)
	}()

	if !principal.Authenticated() {
		return booking, ErrUnauthorized
	}

	booking, err = s.fetch(ctx, id)
	if err != nil {
		return gym.Booking{}, err
	}
	if err = s.authorize(principal, ActionUpdate, &booking); err != nil {
		return gym.Booking{}, err
	}

	if !next.Valid() {
		vErr := &ValidationError{}
		if next == "" {
			vErr.add("status", "status is required")
		} else {
			vErr.add("status", "status must be one of pending approved rejected")
		}
		return gym.Booking{}, vErr
	}

	current := booking.Status
	if _, err = current.Transition(next); err != nil {
		return gym.Booking{}, err
	}

	var applied bool
	applied, err = s.repo.SetIf(ctx, id, "status", string(current), string(next))
	if err != nil {
		return gym.Booking{}, s.mapRepoError(err)
	}
	if !applied {
		if _, err = s.fetch(ctx, id); err != nil {
			return gym.Booking{}, err
		}
		return gym.Booking{}, fmt.Errorf("booking %d changed concurrently: %w", id, &gym.TransitionError{From: current, To: next})
	}

	booking.Status = next
	return booking, nil
}
