package scheduler

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/Alias1177/StockSignals/internal/config"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// clock is a time of day in minutes after midnight
type clock int

// Schedule yields the next market-day check time
type Schedule struct {
	loc    *time.Location
	checks []clock
}

// New builds a schedule from config; check times are "HH:MM" in cfg.Timezone
func New(cfg config.Schedule) (*Schedule, error) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone: %w", err)
	}

	s := &Schedule{loc: loc}
	for _, c := range cfg.Checks {
		t, err := time.Parse("15:04", c)
		if err != nil {
			return nil, fmt.Errorf("parse check time %q: %w", c, err)
		}
		s.checks = append(s.checks, clock(t.Hour()*60+t.Minute()))
	}
	if len(s.checks) == 0 {
		return nil, fmt.Errorf("no check times configured")
	}
	sort.Slice(s.checks, func(i, j int) bool { return s.checks[i] < s.checks[j] })
	return s, nil
}

// Location is the timezone check times are read in
func (s *Schedule) Location() *time.Location {
	return s.loc
}

// Next returns the first check strictly after now, Monday to Friday
func (s *Schedule) Next(now time.Time) time.Time {
	local := now.In(s.loc)
	y, m, d := local.Date()

	for day := 0; day < 8; day++ {
		date := time.Date(y, m, d+day, 0, 0, 0, 0, s.loc)
		if wd := date.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}
		for _, c := range s.checks {
			at := time.Date(date.Year(), date.Month(), date.Day(), int(c)/60, int(c)%60, 0, 0, s.loc)
			if at.After(now) {
				return at
			}
		}
	}
	// Unreachable with at least one check time
	return now.Add(24 * time.Hour)
}

// Job is one scheduled unit of work; the argument is the scheduled time
type Job func(ctx context.Context, at time.Time) error

// Runner executes a job at every check until the context ends
type Runner struct {
	schedule *Schedule
	now      func() time.Time
	after    func(d time.Duration) <-chan time.Time
	logger   zerolog.Logger
}

// NewRunner creates a runner over s
func NewRunner(s *Schedule) *Runner {
	return &Runner{
		schedule: s,
		now:      time.Now,
		after:    time.After,
		logger:   log.With().Str("component", "scheduler").Logger(),
	}
}

// Run blocks until ctx is done. Job errors are logged and do not stop the loop.
func (r *Runner) Run(ctx context.Context, job Job) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		next := r.schedule.Next(r.now())
		wait := next.Sub(r.now())
		r.logger.Info().Time("next_run", next).Dur("wait", wait).Msg("Waiting for next check")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-r.after(wait):
		}

		if err := job(ctx, next); err != nil {
			r.logger.Error().Err(err).Time("scheduled", next).Msg("Scheduled run failed")
		}
	}
}
