package client

import (
	"cmp"
	"slices"

	"github.com/example/fitness-manager/internal/gym"
)

type BookingView struct {
	Booking      gym.Booking
	FacilityName string
	StudentName  string
}

type EventView struct {
	Participant gym.Participant
	EventName   string
	Sport       string
	Date        string
}

type AttendanceView struct {
	Attendance  gym.Attendance
	StudentName string
	CoachName   string
}

func (a *Aggregator) student() (int64, error) {
	p, ok := a.Identity()
	if !ok {
		return 0, ErrNotSignedIn
	}
	if p.Role != gym.RoleStudent || p.UserID == nil {
		return 0, ErrWrongRole
	}
	return *p.UserID, nil
}

func (a *Aggregator) coach() (int64, error) {
	p, ok := a.Identity()
	if !ok {
		return 0, ErrNotSignedIn
	}
	if p.Role != gym.RoleCoach || p.CoachID == nil {
		return 0, ErrWrongRole
	}
	return *p.CoachID, nil
}

func (a *Aggregator) admin() error {
	p, ok := a.Identity()
	if !ok {
		return ErrNotSignedIn
	}
	if p.Role != gym.RoleAdmin {
		return ErrWrongRole
	}
	return nil
}

func (a *Aggregator) userName(id int64) string {
	if u, ok := a.Users.Get(id); ok {
		return u.Name
	}
	return ""
}

func (a *Aggregator) coachName(id int64) string {
	if c, ok := a.Coaches.Get(id); ok {
		return c.Name
	}
	return ""
}

func (a *Aggregator) facilityName(id int64) string {
	if f, ok := a.Facilities.Get(id); ok {
		return f.Name
	}
	return ""
}

func (a *Aggregator) bookingViews(rows []gym.Booking) []BookingView {
	out := make([]BookingView, 0, len(rows))
	for _, b := range rows {
		out = append(out, BookingView{
			Booking:      b,
			FacilityName: a.facilityName(b.FacilityID),
			StudentName:  a.userName(b.UserID),
		})
	}
	return out
}

func (a *Aggregator) attendanceViews(rows []gym.Attendance) []AttendanceView {
	out := make([]AttendanceView, 0, len(rows))
	for _, row := range rows {
		out = append(out, AttendanceView{
			Attendance:  row,
			StudentName: a.userName(row.UserID),
			CoachName:   a.coachName(row.CoachID),
		})
	}
	return out
}

// MyBookings lists the signed in student's bookings with facility names.
func (a *Aggregator) MyBookings() ([]BookingView, error) {
	userID, err := a.student()
	if err != nil {
		return nil, err
	}
	rows := a.Bookings.Filter(func(b gym.Booking) bool { return b.UserID == userID })
	return a.bookingViews(rows), nil
}

// MyEvents lists the events the signed in student is registered for.
func (a *Aggregator) MyEvents() ([]EventView, error) {
	userID, err := a.student()
	if err != nil {
		return nil, err
	}
	rows := a.Participants.Filter(func(p gym.Participant) bool { return p.UserID == userID })
	out := make([]EventView, 0, len(rows))
	for _, p := range rows {
		view := EventView{Participant: p}
		if event, ok := a.Events.Get(p.EventID); ok {
			view.EventName = event.Name
			view.Date = event.Date
			if event.Sport != nil {
				view.Sport = *event.Sport
			}
		}
		out = append(out, view)
	}
	return out, nil
}

func (a *Aggregator) MyAttendance() ([]AttendanceView, error) {
	userID, err := a.student()
	if err != nil {
		return nil, err
	}
	rows := a.Attendance.Filter(func(at gym.Attendance) bool { return at.UserID == userID })
	return a.attendanceViews(rows), nil
}

// CoachRoster lists attendance marked by the signed in coach. Administrators
// see every record.
func (a *Aggregator) CoachRoster() ([]AttendanceView, error) {
	if a.admin() == nil {
		return a.attendanceViews(a.Attendance.All()), nil
	}
	coachID, err := a.coach()
	if err != nil {
		return nil, err
	}
	rows := a.Attendance.Filter(func(at gym.Attendance) bool { return at.CoachID == coachID })
	return a.attendanceViews(rows), nil
}

// PendingBookings lists bookings awaiting review. Administrators only.
func (a *Aggregator) PendingBookings() ([]BookingView, error) {
	if err := a.admin(); err != nil {
		return nil, err
	}
	rows := a.Bookings.Filter(func(b gym.Booking) bool { return b.Status == gym.BookingPending })
	return a.bookingViews(rows), nil
}

// ProgressHistory returns the loaded fitness progress, newest date first.
func (a *Aggregator) ProgressHistory() ([]gym.FitnessProgress, error) {
	if _, err := a.student(); err != nil {
		return nil, err
	}
	rows := a.Progress.All()
	slices.SortStableFunc(rows, func(x, y gym.FitnessProgress) int {
		if c := cmp.Compare(y.Date, x.Date); c != 0 {
			return c
		}
		return cmp.Compare(y.ProgressID, x.ProgressID)
	})
	return rows, nil
}
