package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/example/fitness-manager/internal/application"
	"github.com/example/fitness-manager/internal/gym"
	httptransport "github.com/example/fitness-manager/internal/http"
	"github.com/example/fitness-manager/internal/testfixtures"
)

const (
	adminEmail    = "admin@example.com"
	adminPassword = "admin password"
	coachEmail    = "coach@example.com"
	studentEmail  = "student@example.com"
	memberSecret  = "member password"
)

func cheapHash(password string) (string, error) {
	return application.CreatePasswordHash(password, application.Argon2idParams{
		Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 8, KeyLength: 16,
	})
}

// gymFixture is a running API with one coach, facility and event, a registered
// student and a coach account.
type gymFixture struct {
	server   *httptest.Server
	student  gym.User
	coach    gym.Coach
	facility gym.Facility
	event    gym.Event
}

func newServer(t *testing.T, wrap func(http.Handler) http.Handler) *httptest.Server {
	t.Helper()

	store := testfixtures.NewStore(t)
	logger := testfixtures.QuietLogger()
	services := application.NewServices(application.Repositories{
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
	}, application.AuthOptions{
		TokenGenerator: testfixtures.NewSessionTokens("client").Generate,
		SessionTTL:     time.Hour,
		HashPassword:   cheapHash,
	}, logger)

	if _, err := services.Accounts.EnsureAdmin(context.Background(), adminEmail, adminPassword); err != nil {
		t.Fatalf("EnsureAdmin: %v", err)
	}

	var handler http.Handler = httptransport.NewRouter(httptransport.RouterConfig{
		Auth:      httptransport.NewAuthHandler(services.Auth, services.Accounts, logger),
		Resources: httptransport.NewResources(services, logger),
		Progress:  httptransport.NewProgressHistoryHandler(services.Progress, logger),
		System:    httptransport.NewSystemHandler(store, "", logger),
		Protect:   httptransport.RequireSession(services.Auth, logger),
	})
	if wrap != nil {
		handler = wrap(handler)
	}

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server
}

func newGymFixture(t *testing.T, wrap func(http.Handler) http.Handler) *gymFixture {
	t.Helper()
	ctx := context.Background()
	f := &gymFixture{server: newServer(t, wrap)}

	admin := f.newClient(t)
	if _, err := admin.Login(ctx, adminEmail, adminPassword); err != nil {
		t.Fatalf("admin login: %v", err)
	}

	var err error
	if f.coach, err = admin.Coaches.Create(ctx, gym.Coach{Name: "Carla Coach"}); err != nil {
		t.Fatalf("create coach: %v", err)
	}
	if f.facility, err = admin.Facilities.Create(ctx, gym.Facility{Name: "Lap Pool"}); err != nil {
		t.Fatalf("create facility: %v", err)
	}
	if f.event, err = admin.Events.Create(ctx, gym.Event{
		Name:    "Spring Relay",
		Sport:   testfixtures.Ptr("swimming"),
		Date:    "2025-04-12",
		CoachID: &f.coach.CoachID,
	}); err != nil {
		t.Fatalf("create event: %v", err)
	}
	if _, err = admin.CreateAccount(ctx, AccountRequest{
		Email:    coachEmail,
		Password: memberSecret,
		Role:     gym.RoleCoach,
		CoachID:  &f.coach.CoachID,
	}); err != nil {
		t.Fatalf("create coach account: %v", err)
	}

	anonymous := f.newClient(t)
	if f.student, err = anonymous.Register(ctx, gym.User{Name: "Sam Student", Email: studentEmail}, memberSecret); err != nil {
		t.Fatalf("register student: %v", err)
	}
	return f
}

func (f *gymFixture) newClient(t *testing.T) *Client {
	t.Helper()
	c, err := New(f.server.URL, WithHTTPClient(f.server.Client()), WithLogger(testfixtures.QuietLogger()))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func (f *gymFixture) signIn(t *testing.T, email, password string) *Aggregator {
	t.Helper()
	agg := NewAggregator(f.newClient(t), testfixtures.QuietLogger())
	if _, err := agg.Login(context.Background(), email, password); err != nil {
		t.Fatalf("login %s: %v", email, err)
	}
	if err := agg.Load(context.Background()); err != nil {
		t.Fatalf("load for %s: %v", email, err)
	}
	return agg
}

func TestNew_RejectsRelativeURL(t *testing.T) {
	t.Parallel()
	for _, raw := range []string{"", "localhost:8080", "/api", "ftp://example.com"} {
		if _, err := New(raw); err == nil {
			t.Errorf("expected error for %q", raw)
		}
	}
}

func TestClient_APIErrors(t *testing.T) {
	t.Parallel()
	f := &gymFixture{server: newServer(t, nil)}
	c := f.newClient(t)
	ctx := context.Background()

	_, err := c.Login(ctx, adminEmail, "wrong password")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Status != http.StatusUnauthorized || apiErr.Code != "AUTH_INVALID_CREDENTIALS" {
		t.Fatalf("unexpected error %+v", apiErr)
	}
	if c.Token() != "" {
		t.Fatalf("failed login must not store a token")
	}

	if _, err := c.Users.List(ctx); StatusCode(err) != http.StatusUnauthorized {
		t.Fatalf("expected 401 without a session, got %v", err)
	}

	if _, err := c.Login(ctx, adminEmail, adminPassword); err != nil {
		t.Fatalf("login: %v", err)
	}
	_, err = c.Facilities.Create(ctx, gym.Facility{})
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %v", err)
	}
	if apiErr.Fields["name"] == "" {
		t.Fatalf("expected a field error for name, got %+v", apiErr.Fields)
	}

	if _, err := c.Coaches.Get(ctx, 999); StatusCode(err) != http.StatusNotFound {
		t.Fatalf("expected 404, got %v", err)
	}

	if err := c.Logout(ctx); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if c.Token() != "" {
		t.Fatalf("expected token to be cleared")
	}
}

func TestAggregator_StudentFlow(t *testing.T) {
	t.Parallel()
	f := newGymFixture(t, nil)
	ctx := context.Background()

	student := f.signIn(t, studentEmail, memberSecret)
	p, ok := student.Identity()
	if !ok || p.Role != gym.RoleStudent || p.UserID == nil || *p.UserID != f.student.UserID {
		t.Fatalf("unexpected identity %+v", p)
	}
	if !student.Progress.Loaded() {
		t.Fatalf("expected progress to load for a student")
	}

	booking, err := student.BookFacility(ctx, f.facility.FacilityID, "2025-04-01T10:00")
	if err != nil {
		t.Fatalf("BookFacility: %v", err)
	}
	if booking.Status != gym.BookingPending {
		t.Fatalf("expected pending booking, got %q", booking.Status)
	}
	bookings, err := student.MyBookings()
	if err != nil {
		t.Fatalf("MyBookings: %v", err)
	}
	if len(bookings) != 1 || bookings[0].FacilityName != "Lap Pool" {
		t.Fatalf("unexpected bookings %+v", bookings)
	}

	if _, err := student.RegisterForEvent(ctx, f.event.EventID); err != nil {
		t.Fatalf("RegisterForEvent: %v", err)
	}
	events, err := student.MyEvents()
	if err != nil {
		t.Fatalf("MyEvents: %v", err)
	}
	if len(events) != 1 || events[0].EventName != "Spring Relay" || events[0].Sport != "swimming" {
		t.Fatalf("unexpected events %+v", events)
	}

	for _, date := range []string{"2025-03-01", "2025-03-15"} {
		if _, err := student.LogProgress(ctx, gym.FitnessProgress{
			Date:   date,
			Weight: testfixtures.Ptr(80.0),
			Height: testfixtures.Ptr(200.0),
		}); err != nil {
			t.Fatalf("LogProgress %s: %v", date, err)
		}
	}
	history, err := student.ProgressHistory()
	if err != nil {
		t.Fatalf("ProgressHistory: %v", err)
	}
	if len(history) != 2 || history[0].Date != "2025-03-15" {
		t.Fatalf("expected newest entry first, got %+v", history)
	}
	if history[0].BMI == nil || *history[0].BMI != 20 {
		t.Fatalf("expected derived BMI of 20, got %v", history[0].BMI)
	}

	updated, err := student.UpdateProfile(ctx, gym.User{Name: "Samantha Student", Email: studentEmail})
	if err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	if cached, _ := student.Users.Get(updated.UserID); cached.Name != "Samantha Student" {
		t.Fatalf("expected cache to be patched, got %+v", cached)
	}

	// Students cannot review bookings or see the admin queue.
	if _, err := student.ReviewBooking(ctx, booking.BookingID, gym.BookingApproved); !errors.Is(err, ErrWrongRole) {
		t.Fatalf("expected ErrWrongRole, got %v", err)
	}
	if _, err := student.PendingBookings(); !errors.Is(err, ErrWrongRole) {
		t.Fatalf("expected ErrWrongRole, got %v", err)
	}
}

func TestAggregator_CoachAndAdminFlow(t *testing.T) {
	t.Parallel()
	f := newGymFixture(t, nil)
	ctx := context.Background()

	student := f.signIn(t, studentEmail, memberSecret)
	booking, err := student.BookFacility(ctx, f.facility.FacilityID, "2025-04-02T09:30")
	if err != nil {
		t.Fatalf("BookFacility: %v", err)
	}

	coach := f.signIn(t, coachEmail, memberSecret)
	if coach.Progress.Loaded() {
		t.Fatalf("progress must only load for students")
	}
	if _, err := coach.MarkAttendance(ctx, f.student.UserID, "2025-04-02", gym.AttendancePresent); err != nil {
		t.Fatalf("MarkAttendance: %v", err)
	}
	roster, err := coach.CoachRoster()
	if err != nil {
		t.Fatalf("CoachRoster: %v", err)
	}
	if len(roster) != 1 || roster[0].StudentName != "Sam Student" || roster[0].CoachName != "Carla Coach" {
		t.Fatalf("unexpected roster %+v", roster)
	}

	if err := student.Load(ctx); err != nil {
		t.Fatalf("reload student: %v", err)
	}
	attendance, err := student.MyAttendance()
	if err != nil {
		t.Fatalf("MyAttendance: %v", err)
	}
	if len(attendance) != 1 || attendance[0].CoachName != "Carla Coach" {
		t.Fatalf("unexpected attendance %+v", attendance)
	}

	admin := f.signIn(t, adminEmail, adminPassword)
	pending, err := admin.PendingBookings()
	if err != nil {
		t.Fatalf("PendingBookings: %v", err)
	}
	if len(pending) != 1 || pending[0].StudentName != "Sam Student" || pending[0].FacilityName != "Lap Pool" {
		t.Fatalf("unexpected pending bookings %+v", pending)
	}

	approved, err := admin.ReviewBooking(ctx, booking.BookingID, gym.BookingApproved)
	if err != nil {
		t.Fatalf("ReviewBooking: %v", err)
	}
	if approved.Status != gym.BookingApproved {
		t.Fatalf("expected approved booking, got %q", approved.Status)
	}
	if pending, _ := admin.PendingBookings(); len(pending) != 0 {
		t.Fatalf("expected review to patch the cache, got %+v", pending)
	}

	_, err = admin.ReviewBooking(ctx, booking.BookingID, gym.BookingRejected)
	if StatusCode(err) != http.StatusConflict {
		t.Fatalf("expected 409 for a terminal booking, got %v", err)
	}
	if cached, _ := admin.Bookings.Get(booking.BookingID); cached.Status != gym.BookingApproved {
		t.Fatalf("failed review must leave the cache unchanged, got %q", cached.Status)
	}

	if err := admin.Logout(ctx); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if _, err := admin.PendingBookings(); !errors.Is(err, ErrNotSignedIn) {
		t.Fatalf("expected ErrNotSignedIn after logout, got %v", err)
	}
}

func TestAggregator_ReportsFailedCollections(t *testing.T) {
	t.Parallel()

	failCoaches := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/api/coaches") {
				http.Error(w, `{"message":"store offline"}`, http.StatusInternalServerError)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
	f := newGymFixture(t, failCoaches)
	ctx := context.Background()

	agg := NewAggregator(f.newClient(t), testfixtures.QuietLogger())
	if _, err := agg.Login(ctx, adminEmail, adminPassword); err != nil {
		t.Fatalf("login: %v", err)
	}

	err := agg.Load(ctx)
	var failures LoadErrors
	if !errors.As(err, &failures) {
		t.Fatalf("expected LoadErrors, got %v", err)
	}
	if len(failures) != 1 || !failures.Failed(CollectionCoaches) {
		t.Fatalf("expected only coaches to fail, got %v", failures)
	}
	if StatusCode(failures[0]) != http.StatusInternalServerError {
		t.Fatalf("expected wrapped API error, got %v", failures[0].Err)
	}
	if agg.Coaches.Loaded() {
		t.Fatalf("failed collection must stay unloaded")
	}
	if !agg.Facilities.Loaded() || agg.Facilities.Len() != 1 {
		t.Fatalf("expected facilities to load despite the failure")
	}
}

func TestAggregator_ReportsEveryFailedCollection(t *testing.T) {
	t.Parallel()

	failing := []string{"/api/events", "/api/coaches", "/api/attendance"}
	wrap := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, prefix := range failing {
				if r.Method == http.MethodGet && r.URL.Path == prefix {
					http.Error(w, `{"message":"store offline"}`, http.StatusServiceUnavailable)
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
	f := newGymFixture(t, wrap)
	ctx := context.Background()

	agg := NewAggregator(f.newClient(t), testfixtures.QuietLogger())
	if _, err := agg.Login(ctx, adminEmail, adminPassword); err != nil {
		t.Fatalf("login: %v", err)
	}

	var failures LoadErrors
	if err := agg.Load(ctx); !errors.As(err, &failures) {
		t.Fatalf("expected LoadErrors, got %v", err)
	}
	got := make([]string, 0, len(failures))
	for _, le := range failures {
		got = append(got, le.Collection)
	}
	want := []string{CollectionAttendance, CollectionCoaches, CollectionEvents}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("expected failures %v in name order, got %v", want, got)
	}
	if !agg.Users.Loaded() || !agg.Bookings.Loaded() {
		t.Fatalf("expected healthy collections to load")
	}
}

func TestAggregator_ResumeUsesServerSession(t *testing.T) {
	t.Parallel()
	f := newGymFixture(t, nil)
	ctx := context.Background()

	first := f.newClient(t)
	session, err := first.Login(ctx, studentEmail, memberSecret)
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	resumed, err := New(f.server.URL, WithHTTPClient(f.server.Client()), WithToken(session.Token))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	agg := NewAggregator(resumed, testfixtures.QuietLogger())
	p, err := agg.Resume(ctx)
	if err != nil {
		t.Fatalf("Resume: %v", err)
	}
	if p.Email != studentEmail || p.Role != gym.RoleStudent {
		t.Fatalf("unexpected principal %+v", p)
	}

	if _, err := NewAggregator(f.newClient(t), nil).Resume(ctx); !errors.Is(err, ErrNotSignedIn) {
		t.Fatalf("expected ErrNotSignedIn without a token, got %v", err)
	}
}
