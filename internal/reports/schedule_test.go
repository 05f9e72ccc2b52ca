package reports

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"sasamom-server/internal/repos"
	"sasamom-server/internal/testutil"
)

func TestBuildScheduleFlagsDueDoses(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	r := repos.New(db, testutil.Logger(t))

	mother := testutil.CreateMother(t, db, true)
	dob := testutil.Date(2024, 1, 1)
	child := testutil.CreateChild(t, db, mother, "", &dob)
	testutil.CreateDose(t, db, child, testutil.CreateVaccination(t, db, "BCG", 0, 1), testutil.Date(2024, 3, 10))
	testutil.CreateDose(t, db, child, testutil.CreateVaccination(t, db, "OPV 1", 42, 2), testutil.Date(2024, 3, 11))
	testutil.CreateDose(t, db, child, testutil.CreateVaccination(t, db, "IPV", 98, 1), testutil.Date(2024, 3, 12))
	done := testutil.CreateDose(t, db, child, testutil.CreateVaccination(t, db, "OPV 0", 0, 1), testutil.Date(2024, 3, 10))
	if _, err := r.Doses.MarkCompleted(ctx, nil, done.ID, testutil.Date(2024, 3, 10)); err != nil {
		t.Fatalf("MarkCompleted: %v", err)
	}

	sched, err := BuildSchedule(ctx, r.Doses, testutil.Date(2024, 3, 10))
	if err != nil {
		t.Fatalf("BuildSchedule: %v", err)
	}
	if len(sched.Entries) != 4 || sched.DueCount != 2 {
		t.Fatalf("unexpected schedule %+v", sched)
	}
	due := map[string]bool{}
	for _, e := range sched.Entries {
		due[e.Vaccine] = e.DueNow
		if e.ChildName != "Child" || e.MotherName != "Amina" {
			t.Fatalf("unexpected names in %+v", e)
		}
	}
	if !due["BCG"] || !due["OPV 1"] || due["IPV"] || due["OPV 0"] {
		t.Fatalf("unexpected due flags %v", due)
	}

	var buf bytes.Buffer
	if err := sched.WriteText(&buf); err != nil {
		t.Fatalf("WriteText: %v", err)
	}
	text := buf.String()
	if !strings.Contains(text, "DUE NOW") || !strings.Contains(text, "COMPLETED") || !strings.Contains(text, "due today or tomorrow: 2") {
		t.Fatalf("unexpected text report:\n%s", text)
	}
}

func TestEmptySchedule(t *testing.T) {
	db := testutil.DB(t)
	sched, err := BuildSchedule(context.Background(), repos.New(db, testutil.Logger(t)).Doses, testutil.Date(2024, 3, 10))
	if err != nil {
		t.Fatalf("BuildSchedule: %v", err)
	}
	var buf bytes.Buffer
	_ = sched.WriteText(&buf)
	if !strings.Contains(buf.String(), "No scheduled vaccinations") {
		t.Fatalf("unexpected output %q", buf.String())
	}
}
