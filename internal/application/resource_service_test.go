package application

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"sync"
	"testing"

	"github.com/example/fitness-manager/internal/gym"
	"github.com/example/fitness-manager/internal/testfixtures"
)

func TestResourceService_CreateThenGetReturnsSubmittedFields(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	submitted := gym.User{
		Name:   "Ana",
		Email:  "a@x.com",
		Gender: testfixtures.Ptr("Female"),
		Age:    testfixtures.Ptr(30),
	}
	created, err := env.services.Users.Create(ctx, adminPrincipal, submitted)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.UserID == 0 {
		t.Fatalf("expected generated user_id")
	}

	got, err := env.services.Users.Get(ctx, adminPrincipal, created.UserID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	submitted.UserID = created.UserID
	if !reflect.DeepEqual(got, submitted) {
		t.Fatalf("expected %+v, got %+v", submitted, got)
	}

	users, err := env.services.Users.List(ctx, studentPrincipal(created.UserID))
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	matches := 0
	for _, u := range users {
		if u.Email == "a@x.com" {
			matches++
		}
	}
	if matches != 1 {
		t.Fatalf("expected exactly one row with email a@x.com, got %d", matches)
	}
}

func TestResourceService_UserTextIsStoredAsSubmitted(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	submitted := gym.User{Name: " Ana ", Email: "Ana@X.com"}
	created, err := env.services.Users.Create(ctx, adminPrincipal, submitted)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	got, err := env.services.Users.Get(ctx, adminPrincipal, created.UserID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Name != " Ana " || got.Email != "Ana@X.com" {
		t.Fatalf("expected submitted text back, got %q / %q", got.Name, got.Email)
	}

	_, err = env.services.Users.Create(ctx, adminPrincipal, gym.User{Name: "Twin", Email: "ana@x.com"})
	if !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("expected emails differing only in case to conflict, got %v", err)
	}
}

func TestResourceService_NotFound(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	if _, err := env.services.Coaches.Get(ctx, adminPrincipal, 4242); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown coach, got %v", err)
	}

	coach := env.seedCoach(t)
	if _, err := env.services.Coaches.Update(ctx, adminPrincipal, coach.CoachID+1, testfixtures.NewCoach("Ghost")); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound updating missing coach, got %v", err)
	}
	got, err := env.services.Coaches.Get(ctx, adminPrincipal, coach.CoachID)
	if err != nil || got.Name != "Carla" {
		t.Fatalf("expected existing coach untouched, got %+v, %v", got, err)
	}

	if err := env.services.Coaches.Delete(ctx, adminPrincipal, coach.CoachID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := env.services.Coaches.Get(ctx, adminPrincipal, coach.CoachID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := env.services.Coaches.Delete(ctx, adminPrincipal, coach.CoachID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound deleting twice, got %v", err)
	}
}

func TestResourceService_Validation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.services.Users.Create(ctx, adminPrincipal, gym.User{Email: "missing-name@example.com"})
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if vErr.FieldErrors["u_name"] == "" {
		t.Fatalf("expected u_name error, got %+v", vErr.FieldErrors)
	}

	_, err = env.services.Participants.Create(ctx, adminPrincipal, testfixtures.NewParticipant(99, 98))
	vErr = nil
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError for dangling references, got %v", err)
	}
	if vErr.FieldErrors["event_id"] == "" || vErr.FieldErrors["user_id"] == "" {
		t.Fatalf("expected reference errors, got %+v", vErr.FieldErrors)
	}
}

func TestResourceService_EventCoachReference(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	coach := env.seedCoach(t)

	cases := []struct {
		name    string
		coachID *int64
		wantErr bool
	}{
		{"no coach", nil, false},
		{"existing coach", testfixtures.Ptr(coach.CoachID), false},
		{"zero id", testfixtures.Ptr(int64(0)), true},
		{"unknown coach", testfixtures.Ptr(coach.CoachID + 100), true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			event := testfixtures.NewEvent("Relay", 0)
			event.CoachID = tc.coachID

			created, err := env.services.Events.Create(ctx, adminPrincipal, event)
			if !tc.wantErr {
				if err != nil {
					t.Fatalf("expected event to be created, got %v", err)
				}
				return
			}
			var vErr *ValidationError
			if !errors.As(err, &vErr) || vErr.FieldErrors["coach_id"] == "" {
				t.Fatalf("expected coach_id ValidationError, got %+v, %v", created, err)
			}
		})
	}
}

func TestResourceService_DuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	first := env.seedUser(t)
	_, err := env.services.Users.Create(ctx, adminPrincipal, testfixtures.NewUser(testfixtures.WithUserEmail(strings.ToUpper(first.Email))))
	var conflict *ConflictError
	if !errors.As(err, &conflict) || conflict.Field != "email" {
		t.Fatalf("expected email ConflictError, got %v", err)
	}

	second := env.seedUser(t)
	second.Email = first.Email
	if _, err := env.services.Users.Update(ctx, adminPrincipal, second.UserID, second); !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists on update, got %v", err)
	}
}

func TestResourceService_ConcurrentDuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	const attempts = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		conflicts int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.services.Users.Create(ctx, adminPrincipal, testfixtures.NewUser(testfixtures.WithUserEmail("race@example.com")))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, ErrAlreadyExists):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if successes != 1 || conflicts != attempts-1 {
		t.Fatalf("expected 1 success and %d conflicts, got %d and %d", attempts-1, successes, conflicts)
	}
}

func TestResourceService_Authorization(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.seedUser(t)
	bob := env.seedUser(t)
	facility := env.seedFacility(t)
	coach := env.seedCoach(t)

	if _, err := env.services.Users.List(ctx, anonymous); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected anonymous list to be rejected, got %v", err)
	}

	alice.Name = "Alice Updated"
	if _, err := env.services.Users.Update(ctx, studentPrincipal(alice.UserID), alice.UserID, alice); err != nil {
		t.Fatalf("expected student to update own profile, got %v", err)
	}
	bob.Name = "Hijacked"
	if _, err := env.services.Users.Update(ctx, studentPrincipal(alice.UserID), bob.UserID, bob); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected student update of another user to be rejected, got %v", err)
	}

	if _, err := env.services.Bookings.Create(ctx, studentPrincipal(alice.UserID), testfixtures.NewBooking(bob.UserID, facility.FacilityID)); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected booking on behalf of another user to be rejected, got %v", err)
	}
	if _, err := env.services.Facilities.Create(ctx, studentPrincipal(alice.UserID), testfixtures.NewFacility("Pool")); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected student facility create to be rejected, got %v", err)
	}

	mark := testfixtures.NewAttendance(alice.UserID, coach.CoachID, gym.AttendancePresent)
	if _, err := env.services.Attendance.Create(ctx, coachPrincipal(coach.CoachID+1), mark); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected attendance for another coach to be rejected, got %v", err)
	}
	created, err := env.services.Attendance.Create(ctx, coachPrincipal(coach.CoachID), mark)
	if err != nil {
		t.Fatalf("expected coach to mark attendance, got %v", err)
	}
	if created.Status != gym.AttendancePresent {
		t.Fatalf("unexpected attendance status %q", created.Status)
	}
}

func TestProgressService(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.seedUser(t)
	bob := env.seedUser(t)
	student := studentPrincipal(alice.UserID)

	for _, date := range []string{"2025-01-01", "2025-03-01", "2025-02-01"} {
		if _, err := env.services.Progress.Create(ctx, student, testfixtures.NewProgress(alice.UserID, date)); err != nil {
			t.Fatalf("Create progress %s: %v", date, err)
		}
	}

	entries, err := env.services.Progress.ListForUser(ctx, student, alice.UserID)
	if err != nil {
		t.Fatalf("ListForUser: %v", err)
	}
	if len(entries) != 3 || entries[0].Date != "2025-03-01" || entries[2].Date != "2025-01-01" {
		t.Fatalf("expected newest first, got %+v", entries)
	}
	if entries[0].BMI == nil || *entries[0].BMI != 22.86 {
		t.Fatalf("expected derived BMI 22.86, got %v", entries[0].BMI)
	}

	if _, err := env.services.Progress.ListForUser(ctx, student, bob.UserID); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected student to be denied another user's history, got %v", err)
	}
	if _, err := env.services.Progress.ListForUser(ctx, coachPrincipal(1), bob.UserID); err != nil {
		t.Fatalf("expected coach to read any history, got %v", err)
	}
	if _, err := env.services.Progress.ListForUser(ctx, adminPrincipal, 9999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown user, got %v", err)
	}
	if _, err := env.services.Progress.List(ctx, student); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected student full listing to be rejected, got %v", err)
	}
}
