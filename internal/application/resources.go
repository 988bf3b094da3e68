package application

import "github.com/example/fitness-manager/internal/gym"

// Table names shared with the store and used in reference checks.
const (
	ResourceUsers        = "users"
	ResourceCoaches      = "coaches"
	ResourceFacilities   = "facilities"
	ResourceBookings     = "bookings"
	ResourceEvents       = "events"
	ResourceParticipants = "participants"
	ResourceAttendance   = "attendance"
	ResourceProgress     = "fitness_progress"
)

func userSpec() ResourceSpec[gym.User] {
	policy := readOnly[gym.User]()
	policy[ActionUpdate] = studentOwns(func(u *gym.User) int64 { return u.UserID })
	return ResourceSpec[gym.User]{
		Name:        ResourceUsers,
		Noun:        "user",
		Policy:      policy,
		UniqueField: "email",
	}
}

func coachSpec() ResourceSpec[gym.Coach] {
	return ResourceSpec[gym.Coach]{
		Name:   ResourceCoaches,
		Noun:   "coach",
		Policy: readOnly[gym.Coach](),
	}
}

func facilitySpec() ResourceSpec[gym.Facility] {
	return ResourceSpec[gym.Facility]{
		Name:   ResourceFacilities,
		Noun:   "facility",
		Policy: readOnly[gym.Facility](),
	}
}

func bookingSpec() ResourceSpec[gym.Booking] {
	policy := readOnly[gym.Booking]()
	policy[ActionCreate] = studentOwns(func(b *gym.Booking) int64 { return b.UserID })
	return ResourceSpec[gym.Booking]{
		Name:   ResourceBookings,
		Noun:   "booking",
		Policy: policy,
		BeforeCreate: func(b *gym.Booking) {
			b.Status = gym.BookingPending
		},
		References: func(b *gym.Booking) []Reference {
			return []Reference{
				{Field: "user_id", Resource: ResourceUsers, ID: b.UserID},
				{Field: "facility_id", Resource: ResourceFacilities, ID: b.FacilityID},
			}
		},
	}
}

func eventSpec() ResourceSpec[gym.Event] {
	return ResourceSpec[gym.Event]{
		Name:   ResourceEvents,
		Noun:   "event",
		Policy: readOnly[gym.Event](),
		References: func(e *gym.Event) []Reference {
			if e.CoachID == nil {
				return nil
			}
			return []Reference{{Field: "coach_id", Resource: ResourceCoaches, ID: *e.CoachID}}
		},
	}
}

func participantSpec() ResourceSpec[gym.Participant] {
	policy := readOnly[gym.Participant]()
	policy[ActionCreate] = studentOwns(func(p *gym.Participant) int64 { return p.UserID })
	return ResourceSpec[gym.Participant]{
		Name:   ResourceParticipants,
		Noun:   "participant",
		Policy: policy,
		References: func(p *gym.Participant) []Reference {
			return []Reference{
				{Field: "event_id", Resource: ResourceEvents, ID: p.EventID},
				{Field: "user_id", Resource: ResourceUsers, ID: p.UserID},
			}
		},
	}
}

func attendanceSpec() ResourceSpec[gym.Attendance] {
	policy := readOnly[gym.Attendance]()
	owns := coachOwns(func(a *gym.Attendance) int64 { return a.CoachID })
	policy[ActionCreate] = owns
	policy[ActionUpdate] = owns
	policy[ActionDelete] = owns
	return ResourceSpec[gym.Attendance]{
		Name:   ResourceAttendance,
		Noun:   "attendance",
		Policy: policy,
		References: func(a *gym.Attendance) []Reference {
			return []Reference{
				{Field: "user_id", Resource: ResourceUsers, ID: a.UserID},
				{Field: "coach_id", Resource: ResourceCoaches, ID: a.CoachID},
			}
		},
	}
}

func progressSpec() ResourceSpec[gym.FitnessProgress] {
	owns := studentOwns(func(p *gym.FitnessProgress) int64 { return p.UserID })
	return ResourceSpec[gym.FitnessProgress]{
		Name: ResourceProgress,
		Noun: "fitness progress",
		Policy: Policy[gym.FitnessProgress]{
			ActionList:   roleIs[gym.FitnessProgress](gym.RoleCoach),
			ActionGet:    anyOf(roleIs[gym.FitnessProgress](gym.RoleCoach), owns),
			ActionCreate: owns,
			ActionUpdate: owns,
			ActionDelete: owns,
		},
		Normalize: func(p *gym.FitnessProgress) {
			if p.BMI == nil {
				if bmi, ok := gym.BMI(p.Weight, p.Height); ok {
					p.BMI = &bmi
				}
			}
		},
		References: func(p *gym.FitnessProgress) []Reference {
			return []Reference{{Field: "user_id", Resource: ResourceUsers, ID: p.UserID}}
		},
	}
}
