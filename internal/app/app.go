package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/riskibarqy/tournament-scoring/external/analyzer"
	"github.com/riskibarqy/tournament-scoring/internal/config"
	"github.com/riskibarqy/tournament-scoring/internal/infrastructure/account/token"
	"github.com/riskibarqy/tournament-scoring/internal/infrastructure/objectstore"
	"github.com/riskibarqy/tournament-scoring/internal/interfaces/httpapi"
	idgen "github.com/riskibarqy/tournament-scoring/internal/platform/id"
	"github.com/riskibarqy/tournament-scoring/internal/platform/logging"
	"github.com/riskibarqy/tournament-scoring/internal/platform/resilience"
	"github.com/riskibarqy/tournament-scoring/internal/usecase"
)

// App owns the HTTP server and every resource it depends on.
type App struct {
	Server  *http.Server
	closers []func(context.Context) error
	logger  *logging.Logger
}

func New(ctx context.Context, cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.HTTPAddr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	a := &App{logger: logger}
	ids := idgen.NewUUIDGenerator()

	repos, err := buildRepositories(ctx, cfg, ids, logger)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, repos.close)

	objects, objectReader, err := buildObjectStore(ctx, cfg, logger)
	if err != nil {
		_ = a.Close(ctx)
		return nil, err
	}

	analyzerClient, err := analyzer.NewClient(analyzer.ClientConfig{
		BaseURL:    cfg.AnalyzerBaseURL,
		APIKey:     cfg.AnalyzerAPIKey,
		Timeout:    cfg.AnalyzerTimeout,
		MaxRetries: cfg.AnalyzerMaxRetries,
		Logger:     logger,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.AnalyzerCircuitEnabled,
			FailureThreshold: cfg.AnalyzerCircuitFailureCount,
			OpenTimeout:      cfg.AnalyzerCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.AnalyzerCircuitHalfOpenMaxReq,
		},
	})
	if err != nil {
		_ = a.Close(ctx)
		return nil, fmt.Errorf("build analyzer client: %w", err)
	}

	issuer, err := token.NewIssuer(cfg.JWTSecret, cfg.JWTTTL)
	if err != nil {
		_ = a.Close(ctx)
		return nil, fmt.Errorf("build token issuer: %w", err)
	}

	standingSvc := usecase.NewStandingService(repos.tournaments, repos.teams, repos.screenshots, cfg.CacheTTL, logger)
	authSvc := usecase.NewAuthService(repos.accessCodes, repos.sessions, issuer, ids, logger)
	tournamentSvc := usecase.NewTournamentService(repos.tournaments, repos.teams, repos.screenshots, objects, ids, standingSvc, logger)
	teamSvc := usecase.NewTeamService(repos.tournaments, repos.teams, repos.screenshots, objects, ids, standingSvc, cfg.MaxLogoBytes, logger)
	screenshotSvc := usecase.NewScreenshotService(repos.tournaments, repos.teams, repos.screenshots, objects, analyzerClient, ids, standingSvc, cfg.MaxUploadBytes, logger)
	reanalysisSvc := usecase.NewReanalysisService(repos.tournaments, repos.screenshots, analyzerClient, standingSvc, cfg.ReanalysisWorkers, logger)

	handler := httpapi.NewHandler(
		authSvc,
		tournamentSvc,
		teamSvc,
		screenshotSvc,
		standingSvc,
		reanalysisSvc,
		httpapi.UploadLimits{
			MaxFileBytes: cfg.MaxUploadBytes,
			MaxLogoBytes: cfg.MaxLogoBytes,
			MaxFiles:     cfg.MaxUploadFiles,
		},
		logger,
	)
	router := httpapi.NewRouter(handler, authSvc, logger, cfg.SwaggerEnabled, cfg.CORSAllowedOrigins, objectReader)

	a.Server = &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.WriteTimeout,
	}

	logger.Info("app wired",
		"db_driver", cfg.DBDriver,
		"storage_driver", cfg.StorageDriver,
		"cache_enabled", cfg.CacheEnabled,
		"swagger_enabled", cfg.SwaggerEnabled,
	)
	return a, nil
}

// Close releases resources in reverse order of acquisition.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// Shutdown drains in-flight requests before closing resources.
func (a *App) Shutdown(ctx context.Context) error {
	var errs []error
	if a.Server != nil {
		if err := a.Server.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shutdown http server: %w", err))
		}
	}
	if err := a.Close(ctx); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func buildObjectStore(ctx context.Context, cfg config.Config, logger *logging.Logger) (usecase.ObjectStore, httpapi.ObjectReader, error) {
	switch cfg.StorageDriver {
	case config.DriverMemory:
		publicBaseURL := cfg.StoragePublicBaseURL
		if publicBaseURL == "" {
			publicBaseURL = localObjectsURL(cfg.HTTPAddr)
		}
		store := objectstore.NewMemoryStore(publicBaseURL)
		logger.Warn("using in-memory object storage", "public_base_url", publicBaseURL)
		return store, store, nil
	default:
		store, err := objectstore.NewS3Store(ctx, objectstore.S3Config{
			Endpoint:        cfg.S3Endpoint,
			Region:          cfg.S3Region,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
			Bucket:          cfg.S3Bucket,
			PublicBaseURL:   cfg.StoragePublicBaseURL,
			UsePathStyle:    cfg.S3UsePathStyle,
			Logger:          logger,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("build s3 object store: %w", err)
		}
		return store, nil, nil
	}
}

// localObjectsURL points memory-stored objects at this server's /objects route.
func localObjectsURL(addr string) string {
	host := addr
	if len(host) > 0 && host[0] == ':' {
		host = "localhost" + host
	}
	return "http://" + host + "/objects"
}
