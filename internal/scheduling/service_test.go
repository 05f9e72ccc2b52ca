package scheduling

import (
	"context"
	"errors"
	"testing"

	"sasamom-server/internal/models"
	"sasamom-server/internal/repos"
	"sasamom-server/internal/testutil"
)

func TestScheduleChildIsIdempotent(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	svc := NewService(repos.New(db, testutil.Logger(t)), DuplicateActiveOnly, testutil.Logger(t))

	mother := testutil.CreateMother(t, db, true)
	dob := testutil.Date(2024, 1, 1)
	baby := testutil.CreateChild(t, db, mother, "Baraka", &dob)
	testutil.CreateVaccination(t, db, "BCG", 0, 1)
	testutil.CreateVaccination(t, db, "IPV", 98, 1)

	res, err := svc.ScheduleChild(ctx, baby.ID, dob)
	if err != nil {
		t.Fatalf("ScheduleChild: %v", err)
	}
	if res.Created != 2 || len(res.Doses) != 2 || res.SkippedReason != "" {
		t.Fatalf("unexpected result %+v", res)
	}
	if !res.Doses[0].DueDate().Equal(dob) {
		t.Fatalf("expected BCG due on birth date, got %s", res.Doses[0].DueDate())
	}

	res, err = svc.ScheduleChild(ctx, baby.ID, dob)
	if err != nil {
		t.Fatalf("second ScheduleChild: %v", err)
	}
	if res.Created != 0 {
		t.Fatalf("expected nothing created on rerun, got %+v", res)
	}
	var count int64
	db.Model(&models.ScheduledDose{}).Count(&count)
	if count != 2 {
		t.Fatalf("expected 2 doses stored, got %d", count)
	}
}

func TestScheduleChildWithoutBirthDate(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	svc := NewService(repos.New(db, testutil.Logger(t)), DuplicateActiveOnly, testutil.Logger(t))

	mother := testutil.CreateMother(t, db, true)
	baby := testutil.CreateChild(t, db, mother, "", nil)
	testutil.CreateVaccination(t, db, "BCG", 0, 1)

	res, err := svc.ScheduleChild(ctx, baby.ID, testutil.Date(2024, 1, 1))
	if err != nil {
		t.Fatalf("ScheduleChild: %v", err)
	}
	if res.SkippedReason != SkipNoBirthDate || res.Created != 0 || res.ChildName != "your child" {
		t.Fatalf("unexpected result %+v", res)
	}

	if _, err := svc.ScheduleChild(ctx, "missing", testutil.Date(2024, 1, 1)); !errors.Is(err, ErrChildNotFound) {
		t.Fatalf("expected ErrChildNotFound, got %v", err)
	}
}

func TestPersistTreatsDuplicateAsAlreadyScheduled(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	svc := NewService(repos.New(db, testutil.Logger(t)), DuplicateActiveOnly, testutil.Logger(t))

	mother := testutil.CreateMother(t, db, true)
	dob := testutil.Date(2024, 1, 1)
	baby := testutil.CreateChild(t, db, mother, "Baraka", &dob)
	bcg := testutil.CreateVaccination(t, db, "BCG", 0, 1)
	// A concurrent run got there first.
	testutil.CreateDose(t, db, baby, bcg, dob)

	res := &Result{}
	planned := []*models.ScheduledDose{{ChildID: baby.ID, VaccinationID: bcg.ID, ScheduledDate: models.NewDate(dob)}}
	if err := svc.persist(ctx, res, planned); err != nil {
		t.Fatalf("persist: %v", err)
	}
	if res.Created != 0 || res.AlreadyScheduled != 1 {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestScheduleAllCountsChildren(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	svc := NewService(repos.New(db, testutil.Logger(t)), DuplicateActiveOnly, testutil.Logger(t))

	mother := testutil.CreateMother(t, db, true)
	dob := testutil.Date(2024, 1, 1)
	testutil.CreateChild(t, db, mother, "Baraka", &dob)
	testutil.CreateChild(t, db, mother, "Neema", &dob)
	testutil.CreateChild(t, db, mother, "Unborn", nil)
	testutil.CreateVaccination(t, db, "BCG", 0, 1)
	testutil.CreateVaccination(t, db, "OPV 0", 0, 1)

	out, err := svc.ScheduleAll(ctx, dob)
	if err != nil {
		t.Fatalf("ScheduleAll: %v", err)
	}
	if out.Date != "2024-01-01" || out.Children != 3 || out.Created != 4 || out.SkippedNoBirthDate != 1 || out.Failed != 0 {
		t.Fatalf("unexpected batch result %+v", out)
	}

	out, err = svc.ScheduleAll(ctx, dob)
	if err != nil {
		t.Fatalf("second ScheduleAll: %v", err)
	}
	if out.Created != 0 {
		t.Fatalf("expected idempotent batch, got %+v", out)
	}
}

func TestScheduleChildRespectsPolicyAfterCompletion(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	r := repos.New(db, testutil.Logger(t))

	mother := testutil.CreateMother(t, db, true)
	dob := testutil.Date(2024, 1, 1)
	baby := testutil.CreateChild(t, db, mother, "Baraka", &dob)
	bcg := testutil.CreateVaccination(t, db, "BCG", 0, 1)
	dose := testutil.CreateDose(t, db, baby, bcg, dob)
	if _, err := r.Doses.MarkCompleted(ctx, nil, dose.ID, dob); err != nil {
		t.Fatalf("MarkCompleted: %v", err)
	}

	res, err := NewService(r, DuplicateAny, testutil.Logger(t)).ScheduleChild(ctx, baby.ID, dob)
	if err != nil || res.Created != 0 {
		t.Fatalf("any policy: res=%+v err=%v", res, err)
	}
	res, err = NewService(r, DuplicateActiveOnly, testutil.Logger(t)).ScheduleChild(ctx, baby.ID, dob)
	if err != nil || res.Created != 1 {
		t.Fatalf("active policy: res=%+v err=%v", res, err)
	}
}
