package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron"
	"golang.org/x/sync/singleflight"

	"sasamom-server/internal/config"
	"sasamom-server/internal/logger"
	"sasamom-server/internal/reminders"
	"sasamom-server/internal/scheduling"
	"sasamom-server/internal/utils"
)

// Scheduler generates doses for every child.
type Scheduler interface {
	ScheduleAll(ctx context.Context, today time.Time) (*scheduling.BatchResult, error)
}

// Sweeper runs one reminder sweep.
type Sweeper interface {
	Run(ctx context.Context, today time.Time) (*reminders.SweepResult, error)
}

// Runner is the single entry point for the two batch jobs, whether they are
// triggered by cron, HTTP or the CLI. Triggers of the same job for the same
// date that overlap in this process share one execution.
type Runner struct {
	scheduler Scheduler
	sweeper   Sweeper
	log       *logger.Logger
	group     singleflight.Group
	today     func() time.Time
}

func NewRunner(scheduler Scheduler, sweeper Sweeper, baseLog *logger.Logger) *Runner {
	return &Runner{
		scheduler: scheduler,
		sweeper:   sweeper,
		log:       baseLog.With("component", "JobRunner"),
		today:     utils.Today,
	}
}

// Schedule generates missing doses for every child as of today.
func (r *Runner) Schedule(ctx context.Context, today time.Time) (*scheduling.BatchResult, error) {
	key := "schedule:" + utils.DateOf(today).Format(utils.DateLayout)
	v, err, shared := r.group.Do(key, func() (interface{}, error) {
		// A caller that goes away must not cancel the run others share.
		return r.scheduler.ScheduleAll(context.WithoutCancel(ctx), today)
	})
	if shared {
		r.log.Debug("Joined running job", "key", key)
	}
	if err != nil {
		return nil, err
	}
	return v.(*scheduling.BatchResult), nil
}

// Remind runs the reminder sweep for today.
func (r *Runner) Remind(ctx context.Context, today time.Time) (*reminders.SweepResult, error) {
	key := "remind:" + utils.DateOf(today).Format(utils.DateLayout)
	v, err, shared := r.group.Do(key, func() (interface{}, error) {
		return r.sweeper.Run(context.WithoutCancel(ctx), today)
	})
	if shared {
		r.log.Debug("Joined running job", "key", key)
	}
	if err != nil {
		return nil, err
	}
	return v.(*reminders.SweepResult), nil
}

// RunCron registers both jobs and blocks until ctx is done. It returns
// immediately when cron is disabled.
func (r *Runner) RunCron(ctx context.Context, cfg config.SchedulerConfig) error {
	if !cfg.Enabled {
		r.log.Info("Cron disabled; jobs run only on demand")
		return nil
	}

	c := cron.New()
	if err := c.AddFunc(cfg.ScheduleSpec, r.scheduleTick); err != nil {
		return fmt.Errorf("invalid SCHEDULE_CRON %q: %w", cfg.ScheduleSpec, err)
	}
	if err := c.AddFunc(cfg.ReminderSpec, r.remindTick); err != nil {
		return fmt.Errorf("invalid REMINDER_CRON %q: %w", cfg.ReminderSpec, err)
	}

	c.Start()
	r.log.Info("Cron started", "schedule_spec", cfg.ScheduleSpec, "reminder_spec", cfg.ReminderSpec)
	<-ctx.Done()
	c.Stop()
	r.log.Info("Cron stopped")
	return nil
}

func (r *Runner) scheduleTick() {
	today := r.today()
	res, err := r.Schedule(context.Background(), today)
	if err != nil {
		r.log.Error("Scheduled schedule job failed", "date", today.Format(utils.DateLayout), "error", err)
		return
	}
	r.log.Info("Scheduled schedule job finished", "date", res.Date, "created", res.Created, "failed", res.Failed)
}

func (r *Runner) remindTick() {
	today := r.today()
	res, err := r.Remind(context.Background(), today)
	if err != nil {
		r.log.Error("Scheduled reminder job failed", "date", today.Format(utils.DateLayout), "error", err)
		return
	}
	for _, f := range res.Failures {
		r.log.Warn("Reminder failure", "detail", f.String())
	}
	r.log.Info("Scheduled reminder job finished", "date", res.Date, "sent", res.Sent, "failed", res.Failed)
}
