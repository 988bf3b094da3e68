package client

import (
	"context"

	"github.com/example/fitness-manager/internal/gym"
)

// BookFacility requests a booking for the signed in student. The new booking
// is pending until an administrator reviews it.
func (a *Aggregator) BookFacility(ctx context.Context, facilityID int64, dateTime string) (gym.Booking, error) {
	userID, err := a.student()
	if err != nil {
		return gym.Booking{}, err
	}
	created, err := a.client.Bookings.Create(ctx, gym.Booking{
		UserID:     userID,
		FacilityID: facilityID,
		DateTime:   dateTime,
	})
	if err != nil {
		return gym.Booking{}, err
	}
	a.Bookings.Upsert(created)
	return created, nil
}

// ReviewBooking approves or rejects a pending booking.
func (a *Aggregator) ReviewBooking(ctx context.Context, bookingID int64, status gym.BookingStatus) (gym.Booking, error) {
	if err := a.admin(); err != nil {
		return gym.Booking{}, err
	}
	updated, err := a.client.Bookings.Update(ctx, bookingID, gym.Booking{Status: status})
	if err != nil {
		return gym.Booking{}, err
	}
	a.Bookings.Upsert(updated)
	return updated, nil
}

func (a *Aggregator) RegisterForEvent(ctx context.Context, eventID int64) (gym.Participant, error) {
	userID, err := a.student()
	if err != nil {
		return gym.Participant{}, err
	}
	result := "Pending"
	score := 0.0
	created, err := a.client.Participants.Create(ctx, gym.Participant{
		EventID: eventID,
		UserID:  userID,
		Result:  &result,
		Score:   &score,
	})
	if err != nil {
		return gym.Participant{}, err
	}
	a.Participants.Upsert(created)
	return created, nil
}

// MarkAttendance records a student's attendance under the signed in coach.
func (a *Aggregator) MarkAttendance(ctx context.Context, userID int64, date string, status gym.AttendanceStatus) (gym.Attendance, error) {
	coachID, err := a.coach()
	if err != nil {
		return gym.Attendance{}, err
	}
	created, err := a.client.Attendance.Create(ctx, gym.Attendance{
		UserID:  userID,
		CoachID: coachID,
		Date:    date,
		Status:  status,
	})
	if err != nil {
		return gym.Attendance{}, err
	}
	a.Attendance.Upsert(created)
	return created, nil
}

// LogProgress stores a progress entry for the signed in student. The server
// derives BMI from weight and height.
func (a *Aggregator) LogProgress(ctx context.Context, entry gym.FitnessProgress) (gym.FitnessProgress, error) {
	userID, err := a.student()
	if err != nil {
		return gym.FitnessProgress{}, err
	}
	entry.ProgressID = 0
	entry.UserID = userID
	created, err := a.client.Progress.Create(ctx, entry)
	if err != nil {
		return gym.FitnessProgress{}, err
	}
	a.Progress.Upsert(created)
	return created, nil
}

// UpdateProfile replaces the signed in student's user row.
func (a *Aggregator) UpdateProfile(ctx context.Context, user gym.User) (gym.User, error) {
	userID, err := a.student()
	if err != nil {
		return gym.User{}, err
	}
	user.UserID = userID
	updated, err := a.client.Users.Update(ctx, userID, user)
	if err != nil {
		return gym.User{}, err
	}
	a.Users.Upsert(updated)
	return updated, nil
}
