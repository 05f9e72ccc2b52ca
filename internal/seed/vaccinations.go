package seed

import (
	"context"
	"fmt"

	"sasamom-server/internal/logger"
	"sasamom-server/internal/models"
	"sasamom-server/internal/repos"
)

// KenyaEPI is the Kenya Expanded Programme on Immunization infant schedule.
func KenyaEPI() []models.Vaccination {
	return []models.Vaccination{
		{Name: "BCG", Description: "Protects against tuberculosis", RecommendedAgeDays: 0, DoseOrder: 1},
		{Name: "OPV 0", Description: "Oral Polio Vaccine given at birth", RecommendedAgeDays: 0, DoseOrder: 1},
		{Name: "OPV 1", Description: "First dose of oral polio vaccine", RecommendedAgeDays: 42, DoseOrder: 2},
		{Name: "Pentavalent 1", Description: "Protects against DPT, Hepatitis B and Hib", RecommendedAgeDays: 42, DoseOrder: 1},
		{Name: "OPV 2", Description: "Second dose of oral polio vaccine", RecommendedAgeDays: 70, DoseOrder: 3},
		{Name: "Pentavalent 2", Description: "Second dose of pentavalent vaccine", RecommendedAgeDays: 70, DoseOrder: 2},
		{Name: "OPV 3", Description: "Third dose of oral polio vaccine", RecommendedAgeDays: 98, DoseOrder: 4},
		{Name: "Pentavalent 3", Description: "Third dose of pentavalent vaccine", RecommendedAgeDays: 98, DoseOrder: 3},
		{Name: "IPV", Description: "Inactivated Polio Vaccine", RecommendedAgeDays: 98, DoseOrder: 1},
		{Name: "Measles Rubella 1", Description: "Protects against measles and rubella", RecommendedAgeDays: 270, DoseOrder: 1},
		{Name: "Measles Rubella 2", Description: "Second dose of measles rubella vaccine", RecommendedAgeDays: 540, DoseOrder: 2},
	}
}

// Result counts what Vaccinations did.
type Result struct {
	Created  int `json:"created"`
	Existing int `json:"existing"`
}

// Vaccinations inserts every catalog entry whose name is not yet present.
// Existing entries are left untouched, so it is safe to run on every deploy.
func Vaccinations(ctx context.Context, r repos.VaccinationRepo, log *logger.Logger, catalog []models.Vaccination) (*Result, error) {
	out := &Result{}
	for i := range catalog {
		v := catalog[i]
		created, err := r.FirstOrCreateByName(ctx, nil, &v)
		if err != nil {
			return out, fmt.Errorf("seed vaccination %q: %w", v.Name, err)
		}
		if created {
			out.Created++
			log.Debug("Seeded vaccination", "name", v.Name, "age_days", v.RecommendedAgeDays)
		} else {
			out.Existing++
		}
	}
	log.Info("Vaccination catalog seeded", "created", out.Created, "existing", out.Existing)
	return out, nil
}
