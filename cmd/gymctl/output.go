package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"

	"github.com/example/fitness-manager/internal/client"
	"github.com/example/fitness-manager/internal/gym"
)

var (
	faint   = color.New(color.Faint)
	heading = color.New(color.Bold, color.FgCyan)
)

func warn(format string, args ...any) {
	color.New(color.FgYellow).Fprintf(os.Stderr, "! "+format+"\n", args...)
}

func section(w io.Writer, title string) {
	fmt.Fprintln(w)
	heading.Fprintln(w, title)
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

func statusText(status string) string {
	switch status {
	case string(gym.BookingApproved), string(gym.AttendancePresent):
		return color.GreenString(status)
	case string(gym.BookingRejected), string(gym.AttendanceAbsent):
		return color.RedString(status)
	case string(gym.BookingPending):
		return color.YellowString(status)
	}
	return status
}

func table(w io.Writer, header string, rows [][]string) {
	if len(rows) == 0 {
		faint.Fprintln(w, "  nothing yet")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "  "+faint.Sprint(header))
	for _, row := range rows {
		fmt.Fprintln(tw, "  "+strings.Join(row, "\t"))
	}
	_ = tw.Flush()
}

func renderBookings(w io.Writer, views []client.BookingView, withStudent bool) {
	header := "ID\tFACILITY\tWHEN\tSTATUS"
	if withStudent {
		header = "ID\tSTUDENT\tFACILITY\tWHEN\tSTATUS"
	}
	rows := make([][]string, 0, len(views))
	for _, v := range views {
		row := []string{fmt.Sprint(v.Booking.BookingID)}
		if withStudent {
			row = append(row, orDash(v.StudentName))
		}
		row = append(row, orDash(v.FacilityName), v.Booking.DateTime, statusText(string(v.Booking.Status)))
		rows = append(rows, row)
	}
	table(w, header, rows)
}

func renderEvents(w io.Writer, views []client.EventView) {
	rows := make([][]string, 0, len(views))
	for _, v := range views {
		result := ""
		if v.Participant.Result != nil {
			result = *v.Participant.Result
		}
		rows = append(rows, []string{orDash(v.EventName), orDash(v.Sport), orDash(v.Date), orDash(result)})
	}
	table(w, "EVENT\tSPORT\tDATE\tRESULT", rows)
}

func renderAttendance(w io.Writer, views []client.AttendanceView) {
	rows := make([][]string, 0, len(views))
	for _, v := range views {
		rows = append(rows, []string{
			v.Attendance.Date,
			orDash(v.StudentName),
			orDash(v.CoachName),
			statusText(string(v.Attendance.Status)),
		})
	}
	table(w, "DATE\tSTUDENT\tCOACH\tSTATUS", rows)
}

func renderProgress(w io.Writer, entries []gym.FitnessProgress) {
	rows := make([][]string, 0, len(entries))
	for _, p := range entries {
		rows = append(rows, []string{
			p.Date,
			formatFloat(p.Weight, "kg"),
			formatFloat(p.BMI, ""),
			orDash(deref(p.WorkoutType)),
			formatMinutes(p.Duration),
		})
	}
	table(w, "DATE\tWEIGHT\tBMI\tWORKOUT\tDURATION", rows)
}

func formatFloat(v *float64, unit string) string {
	if v == nil {
		return "-"
	}
	if unit == "" {
		return fmt.Sprintf("%.2f", *v)
	}
	return fmt.Sprintf("%.1f %s", *v, unit)
}

func formatMinutes(v *int) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%d min", *v)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
