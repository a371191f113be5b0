// Package jobs runs report regenerations on a cron schedule.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/redtally/internal/domain"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Timeout bounds one scheduled regeneration.
const Timeout = 10 * time.Minute

type regenerator interface {
	Regenerate(ctx context.Context) error
}

// Cron regenerates the report on a standard five-field cron schedule.
type Cron struct {
	log zerolog.Logger
	svc regenerator
	c   *cron.Cron
}

// NewCron schedules svc.Regenerate on spec, a five-field cron line or a
// descriptor such as @daily.
func NewCron(spec string, log zerolog.Logger, svc regenerator) (*Cron, error) {
	c := cron.New(cron.WithParser(cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)))
	cr := &Cron{log: log, svc: svc, c: c}
	if _, err := c.AddFunc(spec, cr.regenerate); err != nil {
		return nil, fmt.Errorf("%w: server.schedule %q: %w", domain.ErrConfiguration, spec, err)
	}
	return cr, nil
}

func (cr *Cron) Start() { cr.c.Start() }

// Stop halts the schedule and waits for a running regeneration.
func (cr *Cron) Stop() {
	<-cr.c.Stop().Done()
}

// Next returns the next scheduled run.
func (cr *Cron) Next() time.Time {
	entries := cr.c.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Schedule.Next(time.Now())
}

func (cr *Cron) regenerate() {
	ctx, cancel := context.WithTimeout(context.Background(), Timeout)
	defer cancel()
	cr.log.Info().Msg("cron: regenerating report")
	if err := cr.svc.Regenerate(ctx); err != nil {
		cr.log.Error().Err(err).Msg("cron: regeneration failed")
	}
}
