package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/example/fitness-manager/internal/gym"
)

var (
	attendDate   string
	attendStatus string

	progressDate     string
	progressWeight   float64
	progressHeight   float64
	progressWorkout  string
	progressDuration int
	progressNotes    string

	profileName   string
	profileEmail  string
	profileGender string
	profileAge    int
)

var bookCmd = &cobra.Command{
	Use:   "book FACILITY_ID DATETIME",
	Short: "Request a facility booking, for example 'book 3 2025-04-01T10:00'",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		facilityID, err := parseID(args[0])
		if err != nil {
			return err
		}
		if _, err := signedIn(cmd.Context()); err != nil {
			return err
		}
		booking, err := agg.BookFacility(cmd.Context(), facilityID, args[1])
		if err != nil {
			return err
		}
		color.Green("✓ booking %d requested, status %s", booking.BookingID, booking.Status)
		return nil
	},
}

var reviewCmd = &cobra.Command{
	Use:   "review BOOKING_ID approve|reject",
	Short: "Approve or reject a pending booking",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		bookingID, err := parseID(args[0])
		if err != nil {
			return err
		}
		status, err := parseDecision(args[1])
		if err != nil {
			return err
		}
		if _, err := signedIn(cmd.Context()); err != nil {
			return err
		}
		booking, err := agg.ReviewBooking(cmd.Context(), bookingID, status)
		if err != nil {
			return err
		}
		color.Green("✓ booking %d is now %s", booking.BookingID, booking.Status)
		return nil
	},
}

var joinCmd = &cobra.Command{
	Use:   "join EVENT_ID",
	Short: "Register for an event",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		eventID, err := parseID(args[0])
		if err != nil {
			return err
		}
		if _, err := signedIn(cmd.Context()); err != nil {
			return err
		}
		if _, err := agg.RegisterForEvent(cmd.Context(), eventID); err != nil {
			return err
		}
		color.Green("✓ registered for event %d", eventID)
		return nil
	},
}

var attendCmd = &cobra.Command{
	Use:   "attend USER_ID",
	Short: "Mark a student's attendance",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, err := parseID(args[0])
		if err != nil {
			return err
		}
		status := gym.AttendanceStatus(strings.ToLower(attendStatus))
		if !status.Valid() {
			return fmt.Errorf("status must be present or absent, got %q", attendStatus)
		}
		if _, err := signedIn(cmd.Context()); err != nil {
			return err
		}
		if _, err := agg.MarkAttendance(cmd.Context(), userID, attendDate, status); err != nil {
			return err
		}
		color.Green("✓ marked user %d %s on %s", userID, status, attendDate)
		return nil
	},
}

var progressCmd = &cobra.Command{
	Use:   "progress",
	Short: "Show your fitness progress",
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := signedIn(cmd.Context()); err != nil {
			return err
		}
		entries, err := agg.ProgressHistory()
		if err != nil {
			return err
		}
		renderProgress(cmd.OutOrStdout(), entries)
		return nil
	},
}

var progressLogCmd = &cobra.Command{
	Use:   "log",
	Short: "Log a workout",
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := signedIn(cmd.Context()); err != nil {
			return err
		}
		entry := gym.FitnessProgress{Date: progressDate}
		if progressWeight > 0 {
			entry.Weight = &progressWeight
		}
		if progressHeight > 0 {
			entry.Height = &progressHeight
		}
		if progressWorkout != "" {
			entry.WorkoutType = &progressWorkout
		}
		if progressDuration > 0 {
			entry.Duration = &progressDuration
		}
		if progressNotes != "" {
			entry.Notes = &progressNotes
		}

		created, err := agg.LogProgress(cmd.Context(), entry)
		if err != nil {
			return err
		}
		color.Green("✓ logged progress for %s (BMI %s)", created.Date, formatFloat(created.BMI, ""))
		return nil
	},
}

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Update your profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		principal, err := signedIn(cmd.Context())
		if err != nil {
			return err
		}
		if principal.UserID == nil {
			return fmt.Errorf("only students have a profile")
		}
		current, ok := agg.Users.Get(*principal.UserID)
		if !ok {
			return fmt.Errorf("user %d is not loaded", *principal.UserID)
		}
		if profileName != "" {
			current.Name = profileName
		}
		if profileEmail != "" {
			current.Email = profileEmail
		}
		if profileGender != "" {
			current.Gender = &profileGender
		}
		if profileAge > 0 {
			current.Age = &profileAge
		}

		updated, err := agg.UpdateProfile(cmd.Context(), current)
		if err != nil {
			return err
		}
		color.Green("✓ profile updated for %s", updated.Name)
		return nil
	},
}

func init() {
	today := time.Now().Format(gym.DateLayout)

	attendCmd.Flags().StringVar(&attendDate, "date", today, "attendance date (YYYY-MM-DD)")
	attendCmd.Flags().StringVar(&attendStatus, "status", string(gym.AttendancePresent), "present or absent")

	progressLogCmd.Flags().StringVar(&progressDate, "date", today, "workout date (YYYY-MM-DD)")
	progressLogCmd.Flags().Float64Var(&progressWeight, "weight", 0, "weight in kg")
	progressLogCmd.Flags().Float64Var(&progressHeight, "height", 0, "height in cm")
	progressLogCmd.Flags().StringVar(&progressWorkout, "workout", "", "workout type")
	progressLogCmd.Flags().IntVar(&progressDuration, "duration", 0, "duration in minutes")
	progressLogCmd.Flags().StringVar(&progressNotes, "notes", "", "free text notes")
	progressCmd.AddCommand(progressLogCmd)

	profileCmd.Flags().StringVar(&profileName, "name", "", "full name")
	profileCmd.Flags().StringVar(&profileEmail, "email", "", "email address")
	profileCmd.Flags().StringVar(&profileGender, "gender", "", "gender")
	profileCmd.Flags().IntVar(&profileAge, "age", 0, "age in years")

	rootCmd.AddCommand(bookCmd, reviewCmd, joinCmd, attendCmd, progressCmd, profileCmd)
}

func parseID(value string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%q is not a valid id", value)
	}
	return id, nil
}

func parseDecision(value string) (gym.BookingStatus, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "approve", "approved":
		return gym.BookingApproved, nil
	case "reject", "rejected":
		return gym.BookingRejected, nil
	}
	return "", fmt.Errorf("decision must be approve or reject, got %q", value)
}
