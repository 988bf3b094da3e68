package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/fitness-manager/internal/gym"
)

var userCounter uint64

var referenceTime = time.Date(2025, time.January, 2, 15, 4, 5, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}

// UserOption configures the generated user fixture.
type UserOption func(*gym.User)

// NewUser returns a user with a unique email.
func NewUser(opts ...UserOption) gym.User {
	idx := atomic.AddUint64(&userCounter, 1)
	user := gym.User{
		Name:   fmt.Sprintf("Member %03d", idx),
		Email:  fmt.Sprintf("member-%03d@example.com", idx),
		Gender: Ptr("Female"),
		Age:    Ptr(30),
	}
	for _, opt := range opts {
		opt(&user)
	}
	return user
}

func WithUserName(name string) UserOption {
	return func(u *gym.User) { u.Name = name }
}

func WithUserEmail(email string) UserOption {
	return func(u *gym.User) { u.Email = email }
}

// NewCoach returns a coach fixture.
func NewCoach(name string) gym.Coach {
	return gym.Coach{
		Name:           name,
		Specialization: Ptr("Strength"),
		Schedule:       Ptr("Mon-Fri 07:00-12:00"),
		Contact:        Ptr("coach@example.com"),
	}
}

// NewFacility returns a facility fixture.
func NewFacility(name string) gym.Facility {
	return gym.Facility{
		Name:         name,
		Type:         Ptr("Court"),
		Availability: Ptr("Daily"),
		Location:     Ptr("Building A"),
	}
}

// NewBooking returns a pending booking for the given user and facility.
func NewBooking(userID, facilityID int64) gym.Booking {
	return gym.Booking{
		UserID:     userID,
		FacilityID: facilityID,
		DateTime:   "2025-01-01T10:00",
		Status:     gym.BookingPending,
	}
}

// NewEvent returns an event fixture led by coachID when it is non-zero.
func NewEvent(name string, coachID int64) gym.Event {
	event := gym.Event{Name: name, Sport: Ptr("Football"), Date: "2025-03-15"}
	if coachID != 0 {
		event.CoachID = Ptr(coachID)
	}
	return event
}

// NewParticipant returns a pending event registration.
func NewParticipant(eventID, userID int64) gym.Participant {
	return gym.Participant{EventID: eventID, UserID: userID, Result: Ptr("Pending"), Score: Ptr(0.0)}
}

// NewAttendance returns an attendance record for the given day.
func NewAttendance(userID, coachID int64, status gym.AttendanceStatus) gym.Attendance {
	return gym.Attendance{UserID: userID, CoachID: coachID, Date: "2025-01-06", Status: status}
}

// NewProgress returns a progress entry with weight and height set.
func NewProgress(userID int64, date string) gym.FitnessProgress {
	return gym.FitnessProgress{
		UserID:      userID,
		Date:        date,
		Weight:      Ptr(70.0),
		Height:      Ptr(175.0),
		WorkoutType: Ptr("Cardio"),
		Duration:    Ptr(45),
		Notes:       Ptr("steady pace"),
	}
}
