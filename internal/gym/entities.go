// Package gym defines the records managed by the fitness facility service and
// the rules that belong to them independently of storage or transport.
package gym

// Record is implemented by pointers to every stored entity. The key is the
// store generated surrogate identifier.
type Record[T any] interface {
	*T
	Key() int64
	SetKey(id int64)
}

// User is a member of the facility. Students log in through an account linked
// to a user row.
type User struct {
	UserID int64   `db:"user_id" json:"user_id"`
	Name   string  `db:"u_name" json:"u_name" validate:"required,max=100"`
	Email  string  `db:"email" json:"email" validate:"required,email,max=255"`
	Gender *string `db:"gender" json:"gender" validate:"omitempty,max=20"`
	Age    *int    `db:"age" json:"age" validate:"omitempty,gte=0,lte=150"`
}

func (u *User) Key() int64      { return u.UserID }
func (u *User) SetKey(id int64) { u.UserID = id }

type Coach struct {
	CoachID        int64   `db:"coach_id" json:"coach_id"`
	Name           string  `db:"c_name" json:"c_name" validate:"required,max=100"`
	Specialization *string `db:"specialization" json:"specialization" validate:"omitempty,max=100"`
	Schedule       *string `db:"schedule" json:"schedule" validate:"omitempty,max=255"`
	Contact        *string `db:"contact" json:"contact" validate:"omitempty,max=255"`
}

func (c *Coach) Key() int64      { return c.CoachID }
func (c *Coach) SetKey(id int64) { c.CoachID = id }

type Facility struct {
	FacilityID   int64   `db:"facility_id" json:"facility_id"`
	Name         string  `db:"name" json:"name" validate:"required,max=100"`
	Type         *string `db:"type" json:"type" validate:"omitempty,max=50"`
	Availability *string `db:"availability" json:"availability" validate:"omitempty,max=100"`
	Location     *string `db:"location" json:"location" validate:"omitempty,max=255"`
}

func (f *Facility) Key() int64      { return f.FacilityID }
func (f *Facility) SetKey(id int64) { f.FacilityID = id }

// Booking reserves a facility for a user at a point in time. Status follows
// the BookingStatus state machine.
type Booking struct {
	BookingID  int64         `db:"booking_id" json:"booking_id"`
	UserID     int64         `db:"user_id" json:"user_id" validate:"required"`
	FacilityID int64         `db:"facility_id" json:"facility_id" validate:"required"`
	DateTime   string        `db:"datetime" json:"datetime" validate:"required,datetime_local"`
	Status     BookingStatus `db:"status" json:"status"`
}

func (b *Booking) Key() int64      { return b.BookingID }
func (b *Booking) SetKey(id int64) { b.BookingID = id }

type Event struct {
	EventID int64   `db:"event_id" json:"event_id"`
	Name    string  `db:"e_name" json:"e_name" validate:"required,max=100"`
	Sport   *string `db:"sports" json:"sports" validate:"omitempty,max=100"`
	Date    string  `db:"date" json:"date" validate:"required,calendar_date"`
	CoachID *int64  `db:"coach_id" json:"coach_id"`
}

func (e *Event) Key() int64      { return e.EventID }
func (e *Event) SetKey(id int64) { e.EventID = id }

// Participant registers a user for an event and records the outcome.
type Participant struct {
	ParticipantID int64    `db:"participant_id" json:"participant_id"`
	EventID       int64    `db:"event_id" json:"event_id" validate:"required"`
	UserID        int64    `db:"user_id" json:"user_id" validate:"required"`
	Result        *string  `db:"result" json:"result" validate:"omitempty,max=100"`
	Score         *float64 `db:"score" json:"score"`
}

func (p *Participant) Key() int64      { return p.ParticipantID }
func (p *Participant) SetKey(id int64) { p.ParticipantID = id }

type Attendance struct {
	AttendanceID int64            `db:"attendance_id" json:"attendance_id"`
	UserID       int64            `db:"user_id" json:"user_id" validate:"required"`
	CoachID      int64            `db:"coach_id" json:"coach_id" validate:"required"`
	Date         string           `db:"date" json:"date" validate:"required,calendar_date"`
	Status       AttendanceStatus `db:"status" json:"status" validate:"required,oneof=present absent"`
}

func (a *Attendance) Key() int64      { return a.AttendanceID }
func (a *Attendance) SetKey(id int64) { a.AttendanceID = id }

// FitnessProgress is one workout log entry. Weight is in kilograms, height in
// centimetres and duration in minutes.
type FitnessProgress struct {
	ProgressID  int64    `db:"progress_id" json:"progress_id"`
	UserID      int64    `db:"user_id" json:"user_id" validate:"required"`
	Date        string   `db:"date" json:"date" validate:"required,calendar_date"`
	Weight      *float64 `db:"weight" json:"weight" validate:"omitempty,gt=0"`
	Height      *float64 `db:"height" json:"height" validate:"omitempty,gt=0"`
	BMI         *float64 `db:"bmi" json:"bmi" validate:"omitempty,gt=0"`
	WorkoutType *string  `db:"workout_type" json:"workout_type" validate:"omitempty,max=100"`
	Duration    *int     `db:"duration" json:"duration" validate:"omitempty,gte=0"`
	Notes       *string  `db:"notes" json:"notes"`
}

func (p *FitnessProgress) Key() int64      { return p.ProgressID }
func (p *FitnessProgress) SetKey(id int64) { p.ProgressID = id }
