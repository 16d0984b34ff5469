package app

import (
	"context"
	"fmt"
	"time"

	"github.com/riskibarqy/tournament-scoring/internal/config"
	"github.com/riskibarqy/tournament-scoring/internal/domain/accesscode"
	"github.com/riskibarqy/tournament-scoring/internal/domain/screenshot"
	"github.com/riskibarqy/tournament-scoring/internal/domain/session"
	"github.com/riskibarqy/tournament-scoring/internal/domain/team"
	"github.com/riskibarqy/tournament-scoring/internal/domain/tournament"
	"github.com/riskibarqy/tournament-scoring/internal/domain/user"
	"github.com/riskibarqy/tournament-scoring/internal/infrastructure/account/codehash"
	"github.com/riskibarqy/tournament-scoring/internal/infrastructure/repository/cache"
	"github.com/riskibarqy/tournament-scoring/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/tournament-scoring/internal/infrastructure/repository/postgres"
	idgen "github.com/riskibarqy/tournament-scoring/internal/platform/id"
	"github.com/riskibarqy/tournament-scoring/internal/platform/logging"
)

type repositories struct {
	tournaments tournament.Repository
	teams       team.Repository
	screenshots screenshot.Repository
	sessions    session.Repository
	accessCodes accesscode.Repository
	close       func(context.Context) error
}

func buildRepositories(ctx context.Context, cfg config.Config, ids idgen.Generator, logger *logging.Logger) (repositories, error) {
	var repos repositories

	switch cfg.DBDriver {
	case config.DriverMemory:
		store := memory.NewStore()
		repos = repositories{
			tournaments: memory.NewTournamentRepository(store),
			teams:       memory.NewTeamRepository(store),
			screenshots: memory.NewScreenshotRepository(store),
			sessions:    memory.NewSessionRepository(store),
			accessCodes: memory.NewAccessCodeRepository(store),
			close:       func(context.Context) error { return nil },
		}
		logger.Warn("using in-memory repositories; data is lost on restart")

		if cfg.BootstrapAdminCode != "" {
			if err := seedAdminCode(ctx, repos.accessCodes, ids, cfg.BootstrapAdminCode); err != nil {
				return repositories{}, err
			}
			logger.Info("bootstrap admin access code seeded")
		}
	default:
		db, err := openDB(ctx, cfg)
		if err != nil {
			return repositories{}, err
		}
		repos = repositories{
			tournaments: postgres.NewTournamentRepository(db),
			teams:       postgres.NewTeamRepository(db),
			screenshots: postgres.NewScreenshotRepository(db),
			sessions:    postgres.NewSessionRepository(db),
			accessCodes: postgres.NewAccessCodeRepository(db),
			close: func(context.Context) error {
				return db.Close()
			},
		}
		target := parseDBTarget(cfg.DBURL)
		logger.Info("postgres connected", "db_name", target.Name, "db_host", target.Host)
	}

	if cfg.CacheEnabled {
		repos.tournaments = cache.NewTournamentRepository(repos.tournaments, cfg.CacheTTL)
	}
	return repos, nil
}

func seedAdminCode(ctx context.Context, repo accesscode.Repository, ids idgen.Generator, code string) error {
	hash, err := codehash.Hash(code)
	if err != nil {
		return fmt.Errorf("hash bootstrap admin code: %w", err)
	}
	codeID, err := ids.NewID()
	if err != nil {
		return err
	}
	item := accesscode.AccessCode{
		ID:        codeID,
		Label:     "bootstrap admin",
		CodeHash:  hash,
		Role:      user.RoleAdmin,
		Active:    true,
		CreatedAt: time.Now().UTC(),
	}
	if err := item.Validate(); err != nil {
		return err
	}
	if err := repo.Create(ctx, item); err != nil {
		return fmt.Errorf("seed bootstrap admin code: %w", err)
	}
	return nil
}
