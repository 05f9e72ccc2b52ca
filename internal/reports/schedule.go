package reports

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"sasamom-server/internal/models"
	"sasamom-server/internal/repos"
	"sasamom-server/internal/utils"
)

// Entry is one scheduled dose as seen by staff.
type Entry struct {
	DoseID        string `json:"doseId"`
	ChildName     string `json:"childName"`
	MotherName    string `json:"motherName"`
	MotherPhone   string `json:"motherPhone"`
	Vaccine       string `json:"vaccine"`
	ScheduledDate string `json:"scheduledDate"`
	Completed     bool   `json:"completed"`
	DayBeforeSent bool   `json:"dayBeforeSent"`
	OnDaySent     bool   `json:"onDaySent"`
	DueNow        bool   `json:"dueNow"`
}

// Schedule lists every dose and how many are due today or tomorrow.
type Schedule struct {
	Date     string  `json:"date"`
	Entries  []Entry `json:"entries"`
	DueCount int     `json:"dueCount"`
}

// BuildSchedule reads every dose. A dose is due now when it is incomplete and
// scheduled for today or tomorrow, which is exactly what the next reminder
// sweep will look at.
func BuildSchedule(ctx context.Context, doses repos.DoseRepo, today time.Time) (*Schedule, error) {
	today = utils.DateOf(today)
	tomorrow := utils.AddDays(today, 1)

	rows, err := doses.ListForReport(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("list doses: %w", err)
	}

	out := &Schedule{Date: today.Format(utils.DateLayout), Entries: make([]Entry, 0, len(rows))}
	for _, d := range rows {
		due := d.DueDate()
		e := Entry{
			DoseID:        d.ID,
			ChildName:     childName(&d.Child),
			MotherName:    d.Child.Mother.Name,
			MotherPhone:   d.Child.Mother.Phone,
			Vaccine:       d.Vaccination.Name,
			ScheduledDate: due.Format(utils.DateLayout),
			Completed:     d.Completed,
			DayBeforeSent: d.ReminderDayBeforeSent,
			OnDaySent:     d.ReminderOnDaySent,
			DueNow:        !d.Completed && (due.Equal(today) || due.Equal(tomorrow)),
		}
		if e.DueNow {
			out.DueCount++
		}
		out.Entries = append(out.Entries, e)
	}
	return out, nil
}

func childName(c *models.Child) string {
	if c.Name == "" {
		return "Child"
	}
	return c.Name
}

// WriteText renders the schedule as an aligned table.
func (s *Schedule) WriteText(w io.Writer) error {
	if len(s.Entries) == 0 {
		_, err := fmt.Fprintln(w, "No scheduled vaccinations found.")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "CHILD\tMOTHER\tPHONE\tVACCINE\tDATE\tSTATUS\tDAY-BEFORE\tON-DAY\t")
	for _, e := range s.Entries {
		due := ""
		if e.DueNow {
			due = "DUE NOW"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			e.ChildName, e.MotherName, e.MotherPhone, e.Vaccine, e.ScheduledDate,
			status(e.Completed), sentLabel(e.DayBeforeSent), sentLabel(e.OnDaySent), due)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "\nVaccinations due today or tomorrow: %d\n", s.DueCount)
	return err
}

func status(completed bool) string {
	if completed {
		return "COMPLETED"
	}
	return "PENDING"
}

func sentLabel(sent bool) string {
	if sent {
		return "SENT"
	}
	return "NOT SENT"
}
