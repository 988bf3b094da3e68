package application

import (
	"log/slog"
	"time"

	"github.com/example/fitness-manager/internal/gym"
	"github.com/example/fitness-manager/internal/persistence"
)

// Repositories groups the storage dependencies of every service.
type Repositories struct {
	Users        persistence.Resource[gym.User]
	Coaches      persistence.Resource[gym.Coach]
	Facilities   persistence.Resource[gym.Facility]
	Bookings     BookingRepository
	Events       persistence.Resource[gym.Event]
	Participants persistence.Resource[gym.Participant]
	Attendance   persistence.Resource[gym.Attendance]
	Progress     ProgressRepository
	Accounts     persistence.AccountRepository
	Sessions     persistence.SessionRepository
	References   ReferenceChecker
}

// AuthOptions configures session issuance and password handling.
type AuthOptions struct {
	TokenGenerator func() string
	Now            func() time.Time
	SessionTTL     time.Duration
	HashPassword   PasswordHasher
	VerifyPassword PasswordVerifier
}

// Services is the full set of application services exposed over HTTP.
type Services struct {
	Users        *ResourceService[gym.User, *gym.User]
	Coaches      *ResourceService[gym.Coach, *gym.Coach]
	Facilities   *ResourceService[gym.Facility, *gym.Facility]
	Bookings     *BookingService
	Events       *ResourceService[gym.Event, *gym.Event]
	Participants *ResourceService[gym.Participant, *gym.Participant]
	Attendance   *ResourceService[gym.Attendance, *gym.Attendance]
	Progress     *ProgressService
	Auth         *AuthService
	Accounts     *AccountService
}

// NewServices wires every service to its repository.
func NewServices(repos Repositories, auth AuthOptions, logger *slog.Logger) *Services {
	base := defaultLogger(logger)
	refs := repos.References
	return &Services{
		Users:        NewResourceServiceWithLogger[gym.User, *gym.User](repos.Users, refs, userSpec(), base),
		Coaches:      NewResourceServiceWithLogger[gym.Coach, *gym.Coach](repos.Coaches, refs, coachSpec(), base),
		Facilities:   NewResourceServiceWithLogger[gym.Facility, *gym.Facility](repos.Facilities, refs, facilitySpec(), base),
		Bookings:     NewBookingServiceWithLogger(repos.Bookings, refs, base),
		Events:       NewResourceServiceWithLogger[gym.Event, *gym.Event](repos.Events, refs, eventSpec(), base),
		Participants: NewResourceServiceWithLogger[gym.Participant, *gym.Participant](repos.Participants, refs, participantSpec(), base),
		Attendance:   NewResourceServiceWithLogger[gym.Attendance, *gym.Attendance](repos.Attendance, refs, attendanceSpec(), base),
		Progress:     NewProgressServiceWithLogger(repos.Progress, refs, base),
		Auth:         NewAuthServiceWithLogger(repos.Accounts, repos.Sessions, auth.VerifyPassword, auth.TokenGenerator, auth.Now, auth.SessionTTL, base),
		Accounts:     NewAccountServiceWithLogger(repos.Users, repos.Accounts, refs, auth.HashPassword, base),
	}
}
