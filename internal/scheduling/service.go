package scheduling

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"sasamom-server/internal/logger"
	"sasamom-server/internal/models"
	"sasamom-server/internal/repos"
	"sasamom-server/internal/utils"
)

var ErrChildNotFound = errors.New("child not found")

// SkipNoBirthDate is reported when a child cannot be scheduled yet.
const SkipNoBirthDate = "no date of birth"

// Result is the outcome of scheduling one child.
type Result struct {
	ChildID          string                  `json:"childId"`
	ChildName        string                  `json:"childName"`
	Created          int                     `json:"created"`
	AlreadyScheduled int                     `json:"alreadyScheduled"`
	SkippedReason    string                  `json:"skippedReason,omitempty"`
	Doses            []*models.ScheduledDose `json:"doses"`
}

// BatchResult is the outcome of scheduling every child.
type BatchResult struct {
	Date               string   `json:"date"`
	Children           int      `json:"children"`
	Created            int      `json:"created"`
	SkippedNoBirthDate int      `json:"skippedNoBirthDate"`
	Failed             int      `json:"failed"`
	Errors             []string `json:"errors,omitempty"`
}

// Service persists the doses Generate plans.
type Service struct {
	repos  *repos.Repos
	policy DuplicatePolicy
	log    *logger.Logger
}

func NewService(r *repos.Repos, policy DuplicatePolicy, baseLog *logger.Logger) *Service {
	return &Service{
		repos:  r,
		policy: policy,
		log:    baseLog.With("service", "ScheduleService"),
	}
}

// ScheduleChild creates the missing doses for one child. Running it again
// with the same inputs creates nothing.
func (s *Service) ScheduleChild(ctx context.Context, childID string, today time.Time) (*Result, error) {
	child, err := s.repos.Children.GetByID(ctx, nil, childID)
	if errors.Is(err, repos.ErrNotFound) {
		return nil, ErrChildNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load child: %w", err)
	}
	catalog, err := s.repos.Vaccinations.List(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("load vaccination catalog: %w", err)
	}
	return s.schedule(ctx, child, catalog, today)
}

// ScheduleAll schedules every child. A failure for one child is logged and
// counted; the batch carries on.
func (s *Service) ScheduleAll(ctx context.Context, today time.Time) (*BatchResult, error) {
	today = utils.DateOf(today)
	children, err := s.repos.Children.ListAll(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("load children: %w", err)
	}
	catalog, err := s.repos.Vaccinations.List(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("load vaccination catalog: %w", err)
	}

	out := &BatchResult{Date: today.Format(utils.DateLayout), Children: len(children)}
	for _, child := range children {
		if ctx.Err() != nil {
			return out, ctx.Err()
		}
		res, err := s.schedule(ctx, child, catalog, today)
		if err != nil {
			out.Failed++
			out.Errors = append(out.Errors, fmt.Sprintf("child %s: %v", child.ID, err))
			s.log.Error("Scheduling child failed", "child_id", child.ID, "error", err)
			continue
		}
		if res.SkippedReason == SkipNoBirthDate {
			out.SkippedNoBirthDate++
		}
		out.Created += res.Created
	}
	s.log.Info("Scheduled vaccinations for all children",
		"date", out.Date,
		"children", out.Children,
		"created", out.Created,
		"skipped_no_dob", out.SkippedNoBirthDate,
		"failed", out.Failed,
	)
	return out, nil
}

func (s *Service) schedule(ctx context.Context, child *models.Child, catalog []*models.Vaccination, today time.Time) (*Result, error) {
	res := &Result{ChildID: child.ID, ChildName: child.DisplayName(), Doses: []*models.ScheduledDose{}}
	if _, ok := child.BirthDate(); !ok {
		res.SkippedReason = SkipNoBirthDate
		s.log.Info("Skipping child without date of birth", "child_id", child.ID)
		return res, nil
	}

	existing, err := s.repos.Doses.ListByChild(ctx, nil, child.ID)
	if err != nil {
		return nil, fmt.Errorf("load existing doses: %w", err)
	}

	planned := Generate(child, catalog, existing, today, s.policy)
	if err := s.persist(ctx, res, planned); err != nil {
		return nil, err
	}
	return res, nil
}

// persist inserts planned doses. A unique violation means a concurrent run
// already created the active dose, which is the state we wanted anyway.
func (s *Service) persist(ctx context.Context, res *Result, planned []*models.ScheduledDose) error {
	for _, dose := range planned {
		err := s.repos.Doses.Create(ctx, nil, dose)
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			res.AlreadyScheduled++
			s.log.Debug("Dose already scheduled", "child_id", dose.ChildID, "vaccination_id", dose.VaccinationID)
			continue
		}
		if err != nil {
			return fmt.Errorf("create dose for vaccination %s: %w", dose.VaccinationID, err)
		}
		res.Created++
		res.Doses = append(res.Doses, dose)
		s.log.Debug("Scheduled dose",
			"child_id", dose.ChildID,
			"vaccination_id", dose.VaccinationID,
			"scheduled_date", dose.DueDate().Format(utils.DateLayout),
		)
	}
	return nil
}
