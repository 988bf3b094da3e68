package http

import (
	"log/slog"

	"github.com/example/fitness-manager/internal/application"
	"github.com/example/fitness-manager/internal/gym"
)

// NewResources builds the handler for every managed entity.
func NewResources(s *application.Services, logger *slog.Logger) []Resource {
	return []Resource{
		{Path: "/api/users", Handler: NewResourceHandler[gym.User, *gym.User](s.Users, "user_id", "user", logger)},
		{Path: "/api/coaches", Handler: NewResourceHandler[gym.Coach, *gym.Coach](s.Coaches, "coach_id", "coach", logger)},
		{Path: "/api/facilities", Handler: NewResourceHandler[gym.Facility, *gym.Facility](s.Facilities, "facility_id", "facility", logger)},
		{Path: "/api/bookings", Handler: NewResourceHandler[gym.Booking, *gym.Booking](s.Bookings, "booking_id", "booking", logger)},
		{Path: "/api/events", Handler: NewResourceHandler[gym.Event, *gym.Event](s.Events, "event_id", "event", logger)},
		{Path: "/api/participants", Handler: NewResourceHandler[gym.Participant, *gym.Participant](s.Participants, "participant_id", "participant", logger)},
		{Path: "/api/attendance", Handler: NewResourceHandler[gym.Attendance, *gym.Attendance](s.Attendance, "attendance_id", "attendance", logger)},
		{Path: "/api/fitness-progress", Handler: NewResourceHandler[gym.FitnessProgress, *gym.FitnessProgress](s.Progress, "progress_id", "fitness progress", logger)},
	}
}
