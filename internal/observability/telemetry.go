package observability

import (
	"context"
	"errors"
	"net/http"

	"github.com/riskibarqy/tournament-scoring/internal/config"
	"github.com/riskibarqy/tournament-scoring/internal/platform/logging"
)

// Telemetry owns the process-wide tracing, profiling and pprof hooks so the
// api binary starts and stops them as one unit.
type Telemetry struct {
	logger       *logging.Logger
	flushTraces  func(context.Context) error
	stopProfiler func() error
	pprof        *http.Server
}

// Start enables whatever cfg turns on. Components that are off cost nothing
// at shutdown.
func Start(cfg config.Config, logger *logging.Logger) (*Telemetry, error) {
	if logger == nil {
		logger = logging.Default()
	}
	logger = logger.Named("observability")

	t := &Telemetry{logger: logger}
	t.flushTraces = startTracing(cfg, logger)

	stop, err := startProfiler(cfg, logger)
	if err != nil {
		_ = t.flushTraces(context.Background())
		return nil, err
	}
	t.stopProfiler = stop
	t.pprof = startPprofServer(cfg, logger)
	return t, nil
}

// Shutdown stops pprof first and flushes spans last so profiles and traces
// of the shutdown itself are not lost.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	if t == nil {
		return nil
	}

	var errs []error
	if err := stopPprofServer(ctx, t.pprof); err != nil {
		errs = append(errs, err)
	}
	if t.stopProfiler != nil {
		if err := t.stopProfiler(); err != nil {
			errs = append(errs, err)
		}
	}
	if t.flushTraces != nil {
		if err := t.flushTraces(ctx); err != nil {
			errs = append(errs, err)
		}
	}

	err := errors.Join(errs...)
	if err == nil {
		t.logger.Info("telemetry stopped")
	}
	return err
}

func noopFlush(context.Context) error { return nil }
