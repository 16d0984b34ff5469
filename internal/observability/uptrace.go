package observability

import (
	"context"
	"strings"

	"github.com/riskibarqy/tournament-scoring/internal/config"
	"github.com/riskibarqy/tournament-scoring/internal/platform/logging"
	"github.com/uptrace/uptrace-go/uptrace"
	"go.opentelemetry.io/otel/attribute"
)

// startTracing installs the Uptrace exporter as the global OpenTelemetry
// provider. Spans started by otelhttp, otelsqlx and the use cases all flow
// through it.
func startTracing(cfg config.Config, logger *logging.Logger) func(context.Context) error {
	if reason := tracingDisabledReason(cfg); reason != "" {
		logger.Info("tracing disabled", "reason", reason)
		return noopFlush
	}

	uptrace.ConfigureOpentelemetry(
		uptrace.WithDSN(cfg.UptraceDSN),
		uptrace.WithServiceName(cfg.ServiceName),
		uptrace.WithServiceVersion(cfg.ServiceVersion),
		uptrace.WithDeploymentEnvironment(cfg.AppEnv),
		uptrace.WithResourceAttributes(resourceAttributes(cfg)...),
	)

	logger.Info("tracing enabled",
		"exporter", "uptrace",
		"service_name", cfg.ServiceName,
		"environment", cfg.AppEnv,
	)
	return uptrace.Shutdown
}

func tracingDisabledReason(cfg config.Config) string {
	switch {
	case !cfg.UptraceEnabled:
		return "UPTRACE_ENABLED=false"
	case strings.TrimSpace(cfg.UptraceDSN) == "":
		return "UPTRACE_DSN empty"
	default:
		return ""
	}
}

// resourceAttributes tag every span with the backends in use, which is what
// tells a memory-backed dev run apart from production in the trace UI.
func resourceAttributes(cfg config.Config) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("tournament.db_driver", cfg.DBDriver),
		attribute.String("tournament.storage_driver", cfg.StorageDriver),
	}
}
