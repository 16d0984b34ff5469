package observability

import (
	"fmt"
	"runtime"

	"github.com/grafana/pyroscope-go"
	"github.com/riskibarqy/tournament-scoring/internal/config"
	"github.com/riskibarqy/tournament-scoring/internal/platform/logging"
)

// Sampling rates applied only while contention profiles are collected.
const (
	mutexProfileFraction = 5
	blockProfileRate     = 5
)

func startProfiler(cfg config.Config, logger *logging.Logger) (func() error, error) {
	if !cfg.PyroscopeEnabled {
		logger.Info("profiling disabled", "reason", "PYROSCOPE_ENABLED=false")
		return func() error { return nil }, nil
	}

	types := profileTypes(cfg.AppEnv)
	contention := hasContentionProfiles(types)
	if contention {
		runtime.SetMutexProfileFraction(mutexProfileFraction)
		runtime.SetBlockProfileRate(blockProfileRate)
	}

	profiler, err := pyroscope.Start(pyroscope.Config{
		ApplicationName:   cfg.PyroscopeAppName,
		ServerAddress:     cfg.PyroscopeServerAddress,
		AuthToken:         cfg.PyroscopeAuthToken,
		BasicAuthUser:     cfg.PyroscopeBasicAuthUser,
		BasicAuthPassword: cfg.PyroscopeBasicAuthPassword,
		UploadRate:        cfg.PyroscopeUploadRate,
		Tags:              profileTags(cfg),
		ProfileTypes:      types,
	})
	if err != nil {
		return nil, fmt.Errorf("start pyroscope: %w", err)
	}

	logger.Info("profiling enabled",
		"server_address", cfg.PyroscopeServerAddress,
		"application", cfg.PyroscopeAppName,
		"profiles", len(types),
	)
	return func() error {
		err := profiler.Stop()
		if contention {
			runtime.SetMutexProfileFraction(0)
			runtime.SetBlockProfileRate(0)
		}
		return err
	}, nil
}

// profileTypes keeps production to the cheap profiles; contention profiling
// is only switched on in dev and staging.
func profileTypes(appEnv string) []pyroscope.ProfileType {
	types := []pyroscope.ProfileType{
		pyroscope.ProfileCPU,
		pyroscope.ProfileAllocSpace,
		pyroscope.ProfileInuseSpace,
		pyroscope.ProfileGoroutines,
	}
	if appEnv != config.EnvProd {
		types = append(types, pyroscope.ProfileMutexDuration, pyroscope.ProfileBlockDuration)
	}
	return types
}

func hasContentionProfiles(types []pyroscope.ProfileType) bool {
	for _, t := range types {
		if t == pyroscope.ProfileMutexDuration || t == pyroscope.ProfileBlockDuration {
			return true
		}
	}
	return false
}

func profileTags(cfg config.Config) map[string]string {
	return map[string]string{
		"env":            cfg.AppEnv,
		"service":        cfg.ServiceName,
		"version":        cfg.ServiceVersion,
		"db_driver":      cfg.DBDriver,
		"storage_driver": cfg.StorageDriver,
	}
}
