package reminders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"sasamom-server/internal/config"
	"sasamom-server/internal/logger"
	"sasamom-server/internal/models"
	"sasamom-server/internal/repos"
	"sasamom-server/internal/sms"
	"sasamom-server/internal/utils"
)

// ErrGatewayNotConfigured aborts a sweep before any dose is touched.
var ErrGatewayNotConfigured = errors.New("reminder sweep aborted: messaging gateway not configured")

const defaultSendTimeout = 15 * time.Second

// Failure is one reminder that could not be delivered in this sweep.
type Failure struct {
	DoseID      string               `json:"doseId"`
	Stage       models.ReminderStage `json:"stage"`
	Destination string               `json:"destination"`
	Reason      string               `json:"reason"`
}

func (f Failure) String() string {
	return fmt.Sprintf("dose %s %s to %s: %s", f.DoseID, f.Stage, f.Destination, f.Reason)
}

// SweepResult summarizes one Run.
type SweepResult struct {
	Date             string    `json:"date"`
	Considered       int       `json:"considered"`
	Sent             int       `json:"sent"`
	Failed           int       `json:"failed"`
	SkippedNoConsent int       `json:"skippedNoConsent"`
	SkippedCompleted int       `json:"skippedCompleted"`
	SkippedNotDue    int       `json:"skippedNotDue"`
	Errors           int       `json:"errors"`
	Failures         []Failure `json:"failures"`
}

type outcome int

const (
	outcomeSent outcome = iota
	outcomeFailed
	outcomeNoConsent
	outcomeCompleted
	outcomeNotDue
)

// Dispatcher sends the day-before and on-day reminders for scheduled doses.
type Dispatcher struct {
	repos       *repos.Repos
	gateway     sms.Gateway
	log         *logger.Logger
	sendTimeout time.Duration
	countryCode string
	now         func() time.Time
}

func NewDispatcher(r *repos.Repos, gateway sms.Gateway, cfg config.SMSConfig, baseLog *logger.Logger) *Dispatcher {
	timeout := cfg.SendTimeout
	if timeout <= 0 {
		timeout = defaultSendTimeout
	}
	return &Dispatcher{
		repos:       r,
		gateway:     gateway,
		log:         baseLog.With("service", "ReminderDispatcher"),
		sendTimeout: timeout,
		countryCode: cfg.CountryCallingCode,
		now:         time.Now,
	}
}

// Run performs one reminder sweep for today. Each dose is handled in its own
// transaction under a row lock, so concurrent sweeps and clinical updates
// never send a stage twice or remind about a completed dose. A failed send
// leaves the stage unsent for the next sweep.
func (d *Dispatcher) Run(ctx context.Context, today time.Time) (*SweepResult, error) {
	if err := d.gateway.Validate(); err != nil {
		d.log.Error("Reminder sweep aborted", "error", err)
		return nil, fmt.Errorf("%w: %w", ErrGatewayNotConfigured, err)
	}

	today = utils.DateOf(today)
	out := &SweepResult{Date: today.Format(utils.DateLayout), Failures: []Failure{}}

	ids, err := d.repos.Doses.ListDueIDs(ctx, nil, today, utils.AddDays(today, 1))
	if err != nil {
		return nil, fmt.Errorf("list due doses: %w", err)
	}
	out.Considered = len(ids)

	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			d.log.Warn("Reminder sweep interrupted", "date", out.Date, "remaining", out.Considered-out.processed())
			return out, err
		}
		res, failure, err := d.process(ctx, id, today)
		if err != nil {
			out.Errors++
			d.log.Error("Reminder processing failed", "dose_id", id, "error", err)
			continue
		}
		switch res {
		case outcomeSent:
			out.Sent++
		case outcomeFailed:
			out.Failed++
			out.Failures = append(out.Failures, *failure)
		case outcomeNoConsent:
			out.SkippedNoConsent++
		case outcomeCompleted:
			out.SkippedCompleted++
		case outcomeNotDue:
			out.SkippedNotDue++
		}
	}

	d.log.Info("Reminder sweep finished",
		"date", out.Date,
		"considered", out.Considered,
		"sent", out.Sent,
		"failed", out.Failed,
		"skipped_no_consent", out.SkippedNoConsent,
		"skipped_completed", out.SkippedCompleted,
		"skipped_not_due", out.SkippedNotDue,
		"errors", out.Errors,
	)
	return out, nil
}

func (r *SweepResult) processed() int {
	return r.Sent + r.Failed + r.SkippedNoConsent + r.SkippedCompleted + r.SkippedNotDue + r.Errors
}

// process runs read-decide-send-write for one dose inside one transaction.
// Every repository call uses tx: the row lock lives on that connection.
func (d *Dispatcher) process(ctx context.Context, id string, today time.Time) (outcome, *Failure, error) {
	var (
		res     outcome
		failure *Failure
	)
	err := d.repos.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dose, err := d.repos.Doses.LockByID(ctx, tx, id)
		if errors.Is(err, repos.ErrNotFound) {
			// Deleted with its child since the candidate scan.
			res = outcomeNotDue
			return nil
		}
		if err != nil {
			return err
		}
		if dose.Completed {
			res = outcomeCompleted
			return nil
		}
		if dose.Child.Mother.ID == "" || !dose.Child.Mother.Consent {
			res = outcomeNoConsent
			return nil
		}
		stage, ok := stageFor(dose, today)
		if !ok {
			res = outcomeNotDue
			return nil
		}

		body := Message(stage, dose)
		to := utils.NormalizePhone(dose.Child.Mother.Phone, d.countryCode)
		entry := &models.ReminderLog{
			DoseID:      dose.ID,
			Stage:       stage,
			Destination: to,
			Body:        body,
			AttemptedAt: d.now().UTC(),
		}

		sent, sendErr := d.send(ctx, to, body)
		if sendErr != nil {
			res = outcomeFailed
			failure = &Failure{DoseID: dose.ID, Stage: stage, Destination: to, Reason: sendErr.Error()}
			entry.Status = models.ReminderFailed
			entry.Error = sendErr.Error()
			d.log.Warn("Reminder not delivered",
				"dose_id", dose.ID,
				"stage", stage,
				"destination", to,
				"error", sendErr,
			)
			return d.repos.ReminderLogs.Create(ctx, tx, entry)
		}

		changed, err := d.repos.Doses.MarkReminderSent(ctx, tx, dose.ID, stage)
		if err != nil {
			return fmt.Errorf("mark %s sent: %w", stage, err)
		}
		if !changed {
			d.log.Warn("Reminder flag already set under lock", "dose_id", dose.ID, "stage", stage)
		}
		res = outcomeSent
		entry.Status = models.ReminderSent
		entry.ProviderMessageID = sent.MessageID
		d.log.Info("Reminder sent",
			"dose_id", dose.ID,
			"stage", stage,
			"destination", to,
			"message_id", sent.MessageID,
		)
		return d.repos.ReminderLogs.Create(ctx, tx, entry)
	})
	if err != nil {
		return 0, nil, err
	}
	return res, failure, nil
}

func (d *Dispatcher) send(ctx context.Context, to, body string) (*sms.SendResult, error) {
	sendCtx, cancel := context.WithTimeout(ctx, d.sendTimeout)
	defer cancel()

	res, err := d.gateway.Send(sendCtx, to, body)
	if err == nil && res == nil {
		res = &sms.SendResult{}
	}
	if err != nil && errors.Is(err, context.DeadlineExceeded) {
		return nil, fmt.Errorf("gateway timed out after %s: %w", d.sendTimeout, err)
	}
	return res, err
}

// stageFor picks the reminder due for dose today, if any. No catch-up: a
// dose dated neither today nor tomorrow gets nothing.
func stageFor(dose *models.ScheduledDose, today time.Time) (models.ReminderStage, bool) {
	due := dose.DueDate()
	switch {
	case utils.SameDay(due, utils.AddDays(today, 1)) && !dose.ReminderDayBeforeSent:
		return models.StageDayBefore, true
	case utils.SameDay(due, today) && !dose.ReminderOnDaySent:
		return models.StageOnDay, true
	}
	return "", false
}
