package seed

import (
	"context"
	"testing"

	"sasamom-server/internal/repos"
	"sasamom-server/internal/testutil"
)

func TestSeedVaccinationsIsIdempotent(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	r := repos.New(db, testutil.Logger(t))

	// A pre-existing entry keeps its own values.
	testutil.CreateVaccination(t, db, "BCG", 3, 1)

	res, err := Vaccinations(ctx, r.Vaccinations, testutil.Logger(t), KenyaEPI())
	if err != nil {
		t.Fatalf("Vaccinations: %v", err)
	}
	if res.Created != 10 || res.Existing != 1 {
		t.Fatalf("unexpected first seed %+v", res)
	}

	res, err = Vaccinations(ctx, r.Vaccinations, testutil.Logger(t), KenyaEPI())
	if err != nil {
		t.Fatalf("second Vaccinations: %v", err)
	}
	if res.Created != 0 || res.Existing != 11 {
		t.Fatalf("unexpected second seed %+v", res)
	}

	all, err := r.Vaccinations.List(ctx, nil)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 11 {
		t.Fatalf("expected 11 vaccinations, got %d", len(all))
	}
	for _, v := range all {
		if v.Name == "BCG" && v.RecommendedAgeDays != 3 {
			t.Fatalf("existing entry overwritten: %+v", v)
		}
		if v.Name == "Measles Rubella 2" && v.RecommendedAgeDays != 540 {
			t.Fatalf("unexpected MR2 age %d", v.RecommendedAgeDays)
		}
	}
}
