package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"sasamom-server/internal/app"
	"sasamom-server/internal/config"
	"sasamom-server/internal/logger"
	"sasamom-server/internal/reminders"
	"sasamom-server/internal/reports"
	"sasamom-server/internal/scheduling"
	"sasamom-server/internal/seed"
	"sasamom-server/internal/utils"
)

func main() {
	var action, date, childID string
	var asJSON bool
	flag.StringVar(&action, "action", "", "seed | schedule | remind | report")
	flag.StringVar(&date, "date", "", "run as of YYYY-MM-DD (default today)")
	flag.StringVar(&childID, "child", "", "schedule only this child id")
	flag.BoolVar(&asJSON, "json", false, "print the result as JSON")
	flag.Parse()

	if err := run(action, date, childID, asJSON); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", action, err)
		os.Exit(1)
	}
}

func run(action, date, childID string, asJSON bool) error {
	switch action {
	case "seed", "schedule", "remind", "report":
	default:
		flag.Usage()
		return fmt.Errorf("unknown action %q", action)
	}
	today, err := utils.DateOrToday(date)
	if err != nil {
		return err
	}

	_ = godotenv.Load()
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	application, err := app.New(cfg, log)
	if err != nil {
		return err
	}
	defer application.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var out interface{}
	switch action {
	case "seed":
		out, err = seed.Vaccinations(ctx, application.Repos.Vaccinations, log, seed.KenyaEPI())
	case "schedule":
		if childID != "" {
			out, err = application.Scheduler.ScheduleChild(ctx, childID, today)
		} else {
			out, err = application.Runner.Schedule(ctx, today)
		}
	case "remind":
		out, err = application.Runner.Remind(ctx, today)
	case "report":
		var sched *reports.Schedule
		sched, err = reports.BuildSchedule(ctx, application.Repos.Doses, today)
		if err == nil && !asJSON {
			return sched.WriteText(os.Stdout)
		}
		out = sched
	}
	if err != nil {
		return err
	}
	return printResult(out, asJSON)
}

func printResult(v interface{}, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	switch r := v.(type) {
	case *reminders.SweepResult:
		fmt.Printf("Reminders for %s: %d considered, %d sent, %d failed, %d skipped (no consent %d, not due %d), %d errors\n",
			r.Date, r.Considered, r.Sent, r.Failed, r.SkippedNoConsent+r.SkippedNotDue+r.SkippedCompleted,
			r.SkippedNoConsent, r.SkippedNotDue, r.Errors)
		for _, f := range r.Failures {
			fmt.Println("  FAILED " + f.String())
		}
	case *scheduling.BatchResult:
		fmt.Printf("Scheduled %s: %d children, %d doses created, %d without date of birth, %d failed\n",
			r.Date, r.Children, r.Created, r.SkippedNoBirthDate, r.Failed)
		for _, e := range r.Errors {
			fmt.Println("  FAILED " + e)
		}
	case *scheduling.Result:
		fmt.Printf("Child %s (%s): %d doses created, %d already scheduled %s\n",
			r.ChildID, r.ChildName, r.Created, r.AlreadyScheduled, r.SkippedReason)
	case *seed.Result:
		fmt.Printf("Vaccinations seeded: %d created, %d already present\n", r.Created, r.Existing)
	default:
		fmt.Printf("%+v\n", v)
	}
	return nil
}
