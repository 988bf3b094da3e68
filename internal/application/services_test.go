package application

import (
	"context"
	"testing"
	"time"

	"github.com/example/fitness-manager/internal/gym"
	"github.com/example/fitness-manager/internal/persistence/sqlstore"
	"github.com/example/fitness-manager/internal/testfixtures"
)

var (
	adminPrincipal = Principal{AccountID: 1, Role: gym.RoleAdmin}
	anonymous      = Principal{}
)

func studentPrincipal(userID int64) Principal {
	return Principal{AccountID: 100 + userID, Role: gym.RoleStudent, UserID: userID}
}

func coachPrincipal(coachID int64) Principal {
	return Principal{AccountID: 200 + coachID, Role: gym.RoleCoach, CoachID: coachID}
}

type testEnv struct {
	store    *sqlstore.Store
	services *Services
	clock    *testfixtures.Clock
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := testfixtures.NewStore(t)
	clock := testfixtures.NewClock(testfixtures.ReferenceTime())
	services := NewServices(Repositories{
		Users:        store.Users,
		Coaches:      store.Coaches,
		Facilities:   store.Facilities,
		Bookings:     store.Bookings,
		Events:       store.Events,
		Participants: store.Participants,
		Attendance:   store.Attendance,
		Progress:     store.Progress,
		Accounts:     store.Accounts,
		Sessions:     store.Sessions,
		References:   store,
	}, AuthOptions{
		TokenGenerator: testfixtures.NewSessionTokens("session").Generate,
		Now:            clock.Now,
		SessionTTL:     time.Hour,
		HashPassword:   cheapHash,
	}, testfixtures.QuietLogger())

	return &testEnv{store: store, services: services, clock: clock}
}

func (e *testEnv) seedUser(t *testing.T) gym.User {
	t.Helper()
	user, err := e.services.Users.Create(context.Background(), adminPrincipal, testfixtures.NewUser())
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

func (e *testEnv) seedCoach(t *testing.T) gym.Coach {
	t.Helper()
	coach, err := e.services.Coaches.Create(context.Background(), adminPrincipal, testfixtures.NewCoach("Carla"))
	if err != nil {
		t.Fatalf("seed coach: %v", err)
	}
	return coach
}

func (e *testEnv) seedFacility(t *testing.T) gym.Facility {
	t.Helper()
	facility, err := e.services.Facilities.Create(context.Background(), adminPrincipal, testfixtures.NewFacility("Court 1"))
	if err != nil {
		t.Fatalf("seed facility: %v", err)
	}
	return facility
}
