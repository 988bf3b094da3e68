package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/example/fitness-manager/internal/client"
	"github.com/example/fitness-manager/internal/gym"
)

var dashboardCmd = &cobra.Command{
	Use:     "dashboard",
	Aliases: []string{"dash", "d"},
	Short:   "Show the dashboard for the signed in role",
	RunE: func(cmd *cobra.Command, args []string) error {
		principal, err := signedIn(cmd.Context())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Signed in as %s %s\n", principal.Email, faint.Sprintf("(%s)", principal.Role))

		switch principal.Role {
		case gym.RoleStudent:
			return studentDashboard(out, agg)
		case gym.RoleCoach:
			return coachDashboard(out, agg)
		case gym.RoleAdmin:
			return adminDashboard(out, agg)
		}
		return fmt.Errorf("unknown role %q", principal.Role)
	},
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
}

func studentDashboard(w io.Writer, a *client.Aggregator) error {
	bookings, err := a.MyBookings()
	if err != nil {
		return err
	}
	events, err := a.MyEvents()
	if err != nil {
		return err
	}
	attendance, err := a.MyAttendance()
	if err != nil {
		return err
	}
	progress, err := a.ProgressHistory()
	if err != nil {
		return err
	}

	section(w, "My bookings")
	renderBookings(w, bookings, false)
	section(w, "My events")
	renderEvents(w, events)
	section(w, "My attendance")
	renderAttendance(w, attendance)
	section(w, "Fitness progress")
	renderProgress(w, progress)
	return nil
}

func coachDashboard(w io.Writer, a *client.Aggregator) error {
	roster, err := a.CoachRoster()
	if err != nil {
		return err
	}
	section(w, "Attendance roster")
	renderAttendance(w, roster)
	return nil
}

func adminDashboard(w io.Writer, a *client.Aggregator) error {
	pending, err := a.PendingBookings()
	if err != nil {
		return err
	}
	section(w, "Overview")
	fmt.Fprintf(w, "  %d users  %d coaches  %d facilities  %d bookings  %d events\n",
		a.Users.Len(), a.Coaches.Len(), a.Facilities.Len(), a.Bookings.Len(), a.Events.Len())
	section(w, "Pending bookings")
	renderBookings(w, pending, true)
	return nil
}
