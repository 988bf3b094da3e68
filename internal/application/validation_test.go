package application

import (
	"errors"
	"testing"

	"github.com/example/fitness-manager/internal/gym"
	"github.com/example/fitness-manager/internal/testfixtures"
)

func TestValidateStruct(t *testing.T) {
	t.Parallel()

	t.Run("accepts a complete user", func(t *testing.T) {
		t.Parallel()
		user := testfixtures.NewUser()
		if err := validateStruct(&user); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
	})

	t.Run("reports fields by json name", func(t *testing.T) {
		t.Parallel()
		user := gym.User{Email: "not-an-email", Age: testfixtures.Ptr(200)}
		err := validateStruct(&user)

		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		want := map[string]string{
			"u_name": "u_name is required",
			"email":  "email is invalid",
			"age":    "must be less than or equal to 150",
		}
		for field, msg := range want {
			if got := vErr.FieldErrors[field]; got != msg {
				t.Errorf("field %s: got %q, want %q", field, got, msg)
			}
		}
	})

	t.Run("checks date formats", func(t *testing.T) {
		t.Parallel()
		booking := gym.Booking{UserID: 1, FacilityID: 1, DateTime: "tomorrow"}
		attendance := gym.Attendance{UserID: 1, CoachID: 1, Date: "06/01/2025", Status: "late"}

		var vErr *ValidationError
		if !errors.As(validateStruct(&booking), &vErr) || vErr.FieldErrors["datetime"] == "" {
			t.Fatalf("expected datetime error, got %+v", vErr)
		}
		vErr = nil
		if !errors.As(validateStruct(&attendance), &vErr) {
			t.Fatalf("expected ValidationError for attendance")
		}
		if got := vErr.FieldErrors["date"]; got != "must be a date in YYYY-MM-DD format" {
			t.Errorf("unexpected date message %q", got)
		}
		if got := vErr.FieldErrors["status"]; got != "must be one of: present absent" {
			t.Errorf("unexpected status message %q", got)
		}
	})
}
