package client

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/example/fitness-manager/internal/gym"
)

// Collection names used in LoadError.
const (
	CollectionUsers        = "users"
	CollectionCoaches      = "coaches"
	CollectionFacilities   = "facilities"
	CollectionBookings     = "bookings"
	CollectionEvents       = "events"
	CollectionParticipants = "participants"
	CollectionAttendance   = "attendance"
	CollectionProgress     = "fitness-progress"
)

var (
	ErrNotSignedIn = errors.New("client: not signed in")
	ErrWrongRole   = errors.New("client: not available for this role")
)

// LoadError is the failure of one collection refresh.
type LoadError struct {
	Collection string
	Err        error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s: %v", e.Collection, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// LoadErrors lists every collection that failed during one Load.
type LoadErrors []*LoadError

func (e LoadErrors) Error() string {
	parts := make([]string, 0, len(e))
	for _, le := range e {
		parts = append(parts, le.Error())
	}
	return strings.Join(parts, "; ")
}

func (e LoadErrors) Unwrap() []error {
	out := make([]error, 0, len(e))
	for _, le := range e {
		out = append(out, le)
	}
	return out
}

// Failed reports whether the named collection is among the failures.
func (e LoadErrors) Failed(collection string) bool {
	for _, le := range e {
		if le.Collection == collection {
			return true
		}
	}
	return false
}

// Aggregator holds the collections shown by the dashboard and the identity
// of the signed in account. Views join collections by key.
type Aggregator struct {
	client *Client
	logger *slog.Logger

	Users        *Collection[gym.User, *gym.User]
	Coaches      *Collection[gym.Coach, *gym.Coach]
	Facilities   *Collection[gym.Facility, *gym.Facility]
	Bookings     *Collection[gym.Booking, *gym.Booking]
	Events       *Collection[gym.Event, *gym.Event]
	Participants *Collection[gym.Participant, *gym.Participant]
	Attendance   *Collection[gym.Attendance, *gym.Attendance]
	Progress     *Collection[gym.FitnessProgress, *gym.FitnessProgress]

	mu        sync.RWMutex
	principal *Principal
}

func NewAggregator(client *Client, logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{
		client:       client,
		logger:       logger.With("component", "aggregator"),
		Users:        NewCollection[gym.User](),
		Coaches:      NewCollection[gym.Coach](),
		Facilities:   NewCollection[gym.Facility](),
		Bookings:     NewCollection[gym.Booking](),
		Events:       NewCollection[gym.Event](),
		Participants: NewCollection[gym.Participant](),
		Attendance:   NewCollection[gym.Attendance](),
		Progress:     NewCollection[gym.FitnessProgress](),
	}
}

// Identity returns the principal established by Login or Resume.
func (a *Aggregator) Identity() (Principal, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.principal == nil {
		return Principal{}, false
	}
	return *a.principal, true
}

func (a *Aggregator) setIdentity(p *Principal) {
	a.mu.Lock()
	a.principal = p
	a.mu.Unlock()
}

// Login signs in and, for students, loads their fitness progress.
func (a *Aggregator) Login(ctx context.Context, email, password string) (Principal, error) {
	session, err := a.client.Login(ctx, email, password)
	if err != nil {
		return Principal{}, err
	}
	return a.adopt(ctx, session.Principal)
}

// Resume establishes identity from the client's existing session token.
func (a *Aggregator) Resume(ctx context.Context) (Principal, error) {
	if a.client.Token() == "" {
		return Principal{}, ErrNotSignedIn
	}
	principal, err := a.client.CurrentSession(ctx)
	if err != nil {
		return Principal{}, err
	}
	return a.adopt(ctx, principal)
}

func (a *Aggregator) adopt(ctx context.Context, principal Principal) (Principal, error) {
	a.setIdentity(&principal)
	a.Progress.Clear()
	a.logger.DebugContext(ctx, "identity established", "account_id", principal.AccountID, "role", principal.Role)

	if principal.Role == gym.RoleStudent && principal.UserID != nil {
		if err := a.refreshProgress(ctx, *principal.UserID); err != nil {
			return principal, &LoadError{Collection: CollectionProgress, Err: err}
		}
	}
	return principal, nil
}

// Logout revokes the session and forgets identity bound state.
func (a *Aggregator) Logout(ctx context.Context) error {
	err := a.client.Logout(ctx)
	a.setIdentity(nil)
	a.Progress.Clear()
	return err
}

// maxParallelFetches bounds the list requests one Load keeps in flight.
const maxParallelFetches = 4

// firstLoadAttempts bounds how often a first refresh is reissued after losing
// to a concurrent mutation.
const firstLoadAttempts = 3

// Load refreshes every shared collection concurrently, plus the signed in
// student's fitness progress. A failing collection keeps its previous rows
// and is reported in the returned LoadErrors; the others still load.
func (a *Aggregator) Load(ctx context.Context) error {
	type job struct {
		name string
		load func(context.Context) error
	}
	jobs := []job{
		{CollectionUsers, func(ctx context.Context) error { return refresh(ctx, a.Users, a.client.Users.List) }},
		{CollectionCoaches, func(ctx context.Context) error { return refresh(ctx, a.Coaches, a.client.Coaches.List) }},
		{CollectionFacilities, func(ctx context.Context) error { return refresh(ctx, a.Facilities, a.client.Facilities.List) }},
		{CollectionBookings, func(ctx context.Context) error { return refresh(ctx, a.Bookings, a.client.Bookings.List) }},
		{CollectionEvents, func(ctx context.Context) error { return refresh(ctx, a.Events, a.client.Events.List) }},
		{CollectionParticipants, func(ctx context.Context) error {
			return refresh(ctx, a.Participants, a.client.Participants.List)
		}},
		{CollectionAttendance, func(ctx context.Context) error { return refresh(ctx, a.Attendance, a.client.Attendance.List) }},
	}
	if p, ok := a.Identity(); ok && p.Role == gym.RoleStudent && p.UserID != nil {
		userID := *p.UserID
		jobs = append(jobs, job{CollectionProgress, func(ctx context.Context) error { return a.refreshProgress(ctx, userID) }})
	}

	// Each goroutine writes only its own slot.
	results := make([]*LoadError, len(jobs))
	var g errgroup.Group
	g.SetLimit(maxParallelFetches)
	for i, j := range jobs {
		g.Go(func() error {
			err := j.load(ctx)
			if err == nil {
				return nil
			}
			a.logger.WarnContext(ctx, "collection load failed", "collection", j.name, "error", err)
			results[i] = &LoadError{Collection: j.name, Err: err}
			return results[i]
		})
	}
	if err := g.Wait(); err == nil {
		return nil
	}

	var failures LoadErrors
	for _, le := range results {
		if le != nil {
			failures = append(failures, le)
		}
	}
	slices.SortFunc(failures, func(x, y *LoadError) int { return strings.Compare(x.Collection, y.Collection) })
	return failures
}

func (a *Aggregator) refreshProgress(ctx context.Context, userID int64) error {
	return refresh(ctx, a.Progress, func(ctx context.Context) ([]gym.FitnessProgress, error) {
		return a.client.ProgressForUser(ctx, userID)
	})
}

func refresh[T any, PT gym.Record[T]](ctx context.Context, c *Collection[T, PT], list func(context.Context) ([]T, error)) error {
	for attempt := 1; ; attempt++ {
		token := c.BeginFetch()
		rows, err := list(ctx)
		if err != nil {
			return err
		}
		if c.Replace(token, rows) || !c.Retry(token) || attempt == firstLoadAttempts {
			return nil
		}
	}
}
