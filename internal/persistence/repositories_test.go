package persistence_test

import (
	"context"
	"errors"
	"testing"

	"github.com/example/fitness-manager/internal/gym"
	"github.com/example/fitness-manager/internal/persistence"
	"github.com/example/fitness-manager/internal/persistence/sqlstore"
	"github.com/example/fitness-manager/internal/testfixtures"
)

var (
	_ persistence.Resource[gym.User]            = (*sqlstore.Table[gym.User])(nil)
	_ persistence.Resource[gym.Coach]           = (*sqlstore.Table[gym.Coach])(nil)
	_ persistence.Resource[gym.Facility]        = (*sqlstore.Table[gym.Facility])(nil)
	_ persistence.Resource[gym.Booking]         = (*sqlstore.Table[gym.Booking])(nil)
	_ persistence.Resource[gym.Event]           = (*sqlstore.Table[gym.Event])(nil)
	_ persistence.Resource[gym.Participant]     = (*sqlstore.Table[gym.Participant])(nil)
	_ persistence.Resource[gym.Attendance]      = (*sqlstore.Table[gym.Attendance])(nil)
	_ persistence.Resource[gym.FitnessProgress] = (*sqlstore.Table[gym.FitnessProgress])(nil)
	_ persistence.AccountRepository             = (*sqlstore.AccountRepository)(nil)
	_ persistence.SessionRepository             = (*sqlstore.SessionRepository)(nil)
)

func TestErrorSentinelsAreDistinct(t *testing.T) {
	t.Parallel()

	sentinels := []error{persistence.ErrNotFound, persistence.ErrDuplicate, persistence.ErrConstraintViolation}
	for i, a := range sentinels {
		for j, b := range sentinels {
			if i != j && errors.Is(a, b) {
				t.Fatalf("%v must not match %v", a, b)
			}
		}
	}
}

func TestStoreErrorTaxonomy(t *testing.T) {
	t.Parallel()

	store := testfixtures.NewStore(t)
	ctx := context.Background()

	t.Run("unknown booking status violates a constraint", func(t *testing.T) {
		booking := testfixtures.NewBooking(1, 1)
		booking.Status = "cancelled"
		_, err := store.Bookings.Create(ctx, booking)
		if !errors.Is(err, persistence.ErrConstraintViolation) {
			t.Fatalf("expected ErrConstraintViolation, got %v", err)
		}
	})

	t.Run("unknown attendance status violates a constraint", func(t *testing.T) {
		_, err := store.Attendance.Create(ctx, testfixtures.NewAttendance(1, 1, "late"))
		if !errors.Is(err, persistence.ErrConstraintViolation) {
			t.Fatalf("expected ErrConstraintViolation, got %v", err)
		}
	})

	t.Run("duplicate email is reported as a duplicate", func(t *testing.T) {
		user := testfixtures.NewUser()
		if _, err := store.Users.Create(ctx, user); err != nil {
			t.Fatalf("first create: %v", err)
		}
		_, err := store.Users.Create(ctx, user)
		if !errors.Is(err, persistence.ErrDuplicate) {
			t.Fatalf("expected ErrDuplicate, got %v", err)
		}
		if errors.Is(err, persistence.ErrConstraintViolation) {
			t.Fatalf("duplicate must not also be a generic constraint violation")
		}
	})

	t.Run("missing rows are not found", func(t *testing.T) {
		if _, err := store.Coaches.Get(ctx, 424242); !errors.Is(err, persistence.ErrNotFound) {
			t.Fatalf("expected ErrNotFound from Get, got %v", err)
		}
		if _, err := store.Sessions.GetSession(ctx, "no-such-token"); !errors.Is(err, persistence.ErrNotFound) {
			t.Fatalf("expected ErrNotFound from GetSession, got %v", err)
		}
		if _, err := store.Accounts.GetAccountByEmail(ctx, "nobody@example.com"); !errors.Is(err, persistence.ErrNotFound) {
			t.Fatalf("expected ErrNotFound from GetAccountByEmail, got %v", err)
		}
	})
}
