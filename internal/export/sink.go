package export

import (
	"context"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/jwulff/commutes/internal/tables"
)

// Sink persists one run's tables.
type Sink interface {
	Name() string
	Save(ctx context.Context, res tables.Result) error
}

// SaveAll tries every sink in order, logging each outcome. A failing sink
// does not stop the ones after it; the returned error names every sink that
// failed.
func SaveAll(ctx context.Context, log *zap.Logger, res tables.Result, sinks ...Sink) error {
	var err error
	for _, s := range sinks {
		start := time.Now()
		if serr := s.Save(ctx, res); serr != nil {
			log.Error("save failed", zap.String("sink", s.Name()), zap.Error(serr))
			err = multierr.Append(err, &SinkError{Sink: s.Name(), Err: serr})
			continue
		}
		log.Info("saved",
			zap.String("sink", s.Name()),
			zap.Int("routes", len(res.Routes)),
			zap.Duration("elapsed", time.Since(start)),
		)
	}
	return err
}

// SinkError wraps the failure of one sink.
type SinkError struct {
	Sink string
	Err  error
}

func (e *SinkError) Error() string { return e.Sink + ": " + e.Err.Error() }

func (e *SinkError) Unwrap() error { return e.Err }
