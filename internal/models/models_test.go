package models

import (
	"errors"
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestMotherCurrentStatus(t *testing.T) {
	today := date(2024, 6, 1)
	m := &Mother{Name: "Amina"}

	future := NewDate(date(2024, 8, 1))
	past := NewDate(date(2024, 5, 1))
	todayDue := NewDate(today)

	cases := []struct {
		name        string
		hasChildren bool
		pregnancy   *Pregnancy
		want        MotherStatus
	}{
		{"child wins", true, &Pregnancy{DueDate: &future}, StatusChildBorn},
		{"antenatal", false, &Pregnancy{DueDate: &future}, StatusPregnant},
		{"due today is antenatal", false, &Pregnancy{DueDate: &todayDue}, StatusPregnant},
		{"due passed", false, &Pregnancy{DueDate: &past}, StatusDueDatePassed},
		{"pregnancy without due date", false, &Pregnancy{}, StatusPending},
		{"nothing recorded", false, nil, StatusPending},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := m.CurrentStatus(tc.hasChildren, tc.pregnancy, today); got != tc.want {
				t.Fatalf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestScheduledDoseHooks(t *testing.T) {
	d := &ScheduledDose{ChildID: "c1", VaccinationID: "v1", ScheduledDate: NewDate(date(2024, 1, 1))}
	if err := d.BeforeCreate(nil); err != nil {
		t.Fatalf("BeforeCreate: %v", err)
	}
	if d.ID == "" {
		t.Fatalf("expected id assigned")
	}
	if d.ActiveKey == nil || *d.ActiveKey != "c1:v1" {
		t.Fatalf("expected active key c1:v1, got %v", d.ActiveKey)
	}
	if !d.DueDate().Equal(date(2024, 1, 1)) {
		t.Fatalf("unexpected due date %s", d.DueDate())
	}

	d.Completed = true
	if err := d.BeforeSave(nil); !errors.Is(err, ErrCompletionMismatch) {
		t.Fatalf("expected mismatch error, got %v", err)
	}
	now := time.Now()
	d.CompletedAt = &now
	if err := d.BeforeSave(nil); err != nil {
		t.Fatalf("expected consistent dose, got %v", err)
	}
}

func TestChildDisplayNameAndBirthDate(t *testing.T) {
	c := &Child{}
	if c.DisplayName() != "your child" {
		t.Fatalf("unexpected fallback name %q", c.DisplayName())
	}
	if _, ok := c.BirthDate(); ok {
		t.Fatalf("expected unknown birth date")
	}
	dob := NewDate(date(2024, 1, 1))
	c.DateOfBirth = &dob
	c.Name = "Baraka"
	got, ok := c.BirthDate()
	if !ok || !got.Equal(date(2024, 1, 1)) || c.DisplayName() != "Baraka" {
		t.Fatalf("unexpected child view %s %v %q", got, ok, c.DisplayName())
	}
}

func TestSQLiteDSN(t *testing.T) {
	cases := map[string]string{
		"sasamom.db":                        "sasamom.db?_txlock=immediate&_busy_timeout=60000",
		"sasamom.db?_foreign_keys=on":       "sasamom.db?_foreign_keys=on&_txlock=immediate&_busy_timeout=60000",
		"a.db?_txlock=immediate":            "a.db?_txlock=immediate&_busy_timeout=60000",
		"a.db?_txlock=exclusive&_timeout=5": "a.db?_txlock=exclusive&_timeout=5",
	}
	for in, want := range cases {
		if got := SQLiteDSN(in); got != want {
			t.Errorf("SQLiteDSN(%q) = %q, want %q", in, got, want)
		}
	}
}
