package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// UseCaseEvent describes one finished service call.
type UseCaseEvent struct {
	Name      string
	StartedAt time.Time
	Duration  time.Duration
	Success   bool
	Err       error
	// Fields are extra log attributes such as the run ID and window.
	Fields map[string]any
}

// UseCaseObserver is told about every finished generation.
type UseCaseObserver interface {
	ObserveUseCase(ctx context.Context, event UseCaseEvent)
}

// ObserverFunc adapts a function to UseCaseObserver.
type ObserverFunc func(ctx context.Context, event UseCaseEvent)

func (f ObserverFunc) ObserveUseCase(ctx context.Context, event UseCaseEvent) { f(ctx, event) }

// observers fans an event out to each non-nil observer in order.
type observers []UseCaseObserver

func (obs observers) ObserveUseCase(ctx context.Context, event UseCaseEvent) {
	for _, o := range obs {
		o.ObserveUseCase(ctx, event)
	}
}

func combineObservers(list []UseCaseObserver) UseCaseObserver {
	var out observers
	for _, o := range list {
		if o != nil {
			out = append(out, o)
		}
	}
	return out
}

// NewLogUseCaseObserver logs each event at info, or at error with the
// failure attached.
func NewLogUseCaseObserver(log zerolog.Logger) UseCaseObserver {
	return ObserverFunc(func(_ context.Context, e UseCaseEvent) {
		ev := log.Info()
		if e.Err != nil {
			ev = log.Error().Err(e.Err)
		}
		ev.Str("use_case", e.Name).
			Int64("duration_ms", e.Duration.Milliseconds()).
			Bool("success", e.Success).
			Fields(e.Fields).
			Msg("use case finished")
	})
}
