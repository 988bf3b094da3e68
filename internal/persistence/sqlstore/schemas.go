package sqlstore

var (
	UsersSchema = Schema{
		Table:   "users",
		Key:     "user_id",
		Columns: []string{"u_name", "email", "gender", "age"},
	}
	CoachesSchema = Schema{
		Table:   "coaches",
		Key:     "coach_id",
		Columns: []string{"c_name", "specialization", "schedule", "contact"},
	}
	FacilitiesSchema = Schema{
		Table:   "facilities",
		Key:     "facility_id",
		Columns: []string{"name", "type", "availability", "location"},
	}
	BookingsSchema = Schema{
		Table:   "bookings",
		Key:     "booking_id",
		Columns: []string{"user_id", "facility_id", "datetime", "status"},
	}
	EventsSchema = Schema{
		Table:   "events",
		Key:     "event_id",
		Columns: []string{"e_name", "sports", "date", "coach_id"},
	}
	ParticipantsSchema = Schema{
		Table:   "participants",
		Key:     "participant_id",
		Columns: []string{"event_id", "user_id", "result", "score"},
	}
	AttendanceSchema = Schema{
		Table:   "attendance",
		Key:     "attendance_id",
		Columns: []string{"user_id", "coach_id", "date", "status"},
	}
	ProgressSchema = Schema{
		Table:   "fitness_progress",
		Key:     "progress_id",
		Columns: []string{"user_id", "date", "weight", "height", "bmi", "workout_type", "duration", "notes"},
	}
)

var resourceSchemas = []Schema{
	UsersSchema,
	CoachesSchema,
	FacilitiesSchema,
	BookingsSchema,
	EventsSchema,
	ParticipantsSchema,
	AttendanceSchema,
	ProgressSchema,
}
