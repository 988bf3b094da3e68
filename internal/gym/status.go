package gym

import (
	"errors"
	"fmt"
)

// BookingStatus is the review state of a booking.
type BookingStatus string

const (
	BookingPending  BookingStatus = "pending"
	BookingApproved BookingStatus = "approved"
	BookingRejected BookingStatus = "rejected"
)

// ErrInvalidTransition is returned when a booking status change is not in the
// transition table.
var ErrInvalidTransition = errors.New("gym: invalid booking status transition")

var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingPending:  {BookingApproved, BookingRejected},
	BookingApproved: nil,
	BookingRejected: nil,
}

// Valid reports whether s is a known status.
func (s BookingStatus) Valid() bool {
	_, ok := bookingTransitions[s]
	return ok
}

// Terminal reports whether no further transition is possible from s.
func (s BookingStatus) Terminal() bool {
	return s.Valid() && len(bookingTransitions[s]) == 0
}

// CanTransition reports whether moving from s to next is allowed.
func (s BookingStatus) CanTransition(next BookingStatus) bool {
	for _, candidate := range bookingTransitions[s] {
		if candidate == next {
			return true
		}
	}
	return false
}

// TransitionError describes a rejected status change. It matches
// ErrInvalidTransition under errors.Is.
type TransitionError struct {
	From BookingStatus
	To   BookingStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%v: %q to %q", ErrInvalidTransition, e.From, e.To)
}

func (e *TransitionError) Unwrap() error { return ErrInvalidTransition }

// Transition returns next when the move is allowed and a *TransitionError
// otherwise.
func (s BookingStatus) Transition(next BookingStatus) (BookingStatus, error) {
	if !s.CanTransition(next) {
		return s, &TransitionError{From: s, To: next}
	}
	return next, nil
}

type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "present"
	AttendanceAbsent  AttendanceStatus = "absent"
)

func (s AttendanceStatus) Valid() bool {
	return s == AttendancePresent || s == AttendanceAbsent
}
