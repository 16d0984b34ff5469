package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/tournament-scoring/internal/domain/screenshot"
	qb "github.com/riskibarqy/tournament-scoring/internal/platform/querybuilder"
)

const screenshotSource = "match_screenshots ms JOIN teams t ON t.id = ms.team_id"

var screenshotColumns = []string{
	"ms.id", "ms.team_id", "t.tournament_id", "ms.player_id", "ms.day",
	"ms.image_key", "ms.image_url", "ms.placement", "ms.kills", "ms.points", "ms.created_at",
}

type ScreenshotRepository struct {
	db *sqlx.DB
}

func NewScreenshotRepository(db *sqlx.DB) *ScreenshotRepository {
	return &ScreenshotRepository{db: db}
}

func (r *ScreenshotRepository) CountByTeam(ctx context.Context, teamID string) (int, error) {
	if !isUUID(teamID) {
		return 0, nil
	}

	query, args, err := qb.Select("COUNT(*)").From("match_screenshots").
		Where(qb.Eq("team_id", teamID)).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build count screenshots query: %w", err)
	}

	var count int
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return 0, fmt.Errorf("count screenshots by team: %w", err)
	}
	return count, nil
}

// CreateWithinLimit locks the team row so concurrent uploads for one team
// serialize on the count check.
func (r *ScreenshotRepository) CreateWithinLimit(ctx context.Context, item screenshot.Screenshot, limit int) (screenshot.Screenshot, error) {
	err := withTx(ctx, r.db, "create screenshot", func(tx *sqlx.Tx) error {
		lockQuery, lockArgs, err := qb.Select("tournament_id").From("teams").
			Where(qb.Eq("id", item.TeamID)).
			ForUpdate().
			ToSQL()
		if err != nil {
			return fmt.Errorf("build lock team query: %w", err)
		}
		if err := tx.GetContext(ctx, &item.TournamentID, lockQuery, lockArgs...); err != nil {
			if isNotFound(err) {
				return fmt.Errorf("lock team %s: team does not exist", item.TeamID)
			}
			return fmt.Errorf("lock team: %w", err)
		}

		if limit > 0 {
			countQuery, countArgs, err := qb.Select("COUNT(*)").From("match_screenshots").
				Where(qb.Eq("team_id", item.TeamID)).
				ToSQL()
			if err != nil {
				return fmt.Errorf("build count screenshots query: %w", err)
			}
			var count int
			if err := tx.GetContext(ctx, &count, countQuery, countArgs...); err != nil {
				return fmt.Errorf("count screenshots in tx: %w", err)
			}
			if count >= limit {
				return fmt.Errorf("%w: team=%s", screenshot.ErrLimitReached, item.TeamID)
			}
		}

		model := screenshotTableModel{
			ID:        item.ID,
			TeamID:    item.TeamID,
			PlayerID:  item.PlayerID,
			Day:       item.Day,
			ImageKey:  item.ImageKey,
			ImageURL:  item.ImageURL,
			Placement: nullableInt(item.Placement),
			Kills:     nullableInt(item.Kills),
			Points:    item.Points,
			CreatedAt: item.CreatedAt,
		}
		insertQuery, insertArgs, err := qb.InsertModel("match_screenshots", model, "created_at")
		if err != nil {
			return fmt.Errorf("build insert screenshot query: %w", err)
		}
		if err := tx.QueryRowxContext(ctx, insertQuery, insertArgs...).Scan(&item.CreatedAt); err != nil {
			return fmt.Errorf("insert screenshot: %w", err)
		}
		return nil
	})
	if err != nil {
		return screenshot.Screenshot{}, err
	}
	return item, nil
}

func (r *ScreenshotRepository) GetByID(ctx context.Context, id string) (screenshot.Screenshot, bool, error) {
	if !isUUID(id) {
		return screenshot.Screenshot{}, false, nil
	}

	query, args, err := qb.Select(screenshotColumns...).From(screenshotSource).
		Where(qb.Eq("ms.id", id)).
		Limit(1).
		ToSQL()
	if err != nil {
		return screenshot.Screenshot{}, false, fmt.Errorf("build select screenshot query: %w", err)
	}

	var row screenshotTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return screenshot.Screenshot{}, false, nil
		}
		return screenshot.Screenshot{}, false, fmt.Errorf("select screenshot: %w", err)
	}
	return screenshotFromRow(row), true, nil
}

func (r *ScreenshotRepository) List(ctx context.Context, filter screenshot.Filter) ([]screenshot.Screenshot, error) {
	if !optionalUUID(filter.TournamentID) || !optionalUUID(filter.TeamID) {
		return []screenshot.Screenshot{}, nil
	}

	builder := qb.Select(screenshotColumns...).From(screenshotSource).
		OrderBy("ms.created_at DESC", "ms.id")
	if filter.TournamentID != "" {
		builder.Where(qb.Eq("t.tournament_id", filter.TournamentID))
	}
	if filter.TeamID != "" {
		builder.Where(qb.Eq("ms.team_id", filter.TeamID))
	}
	if filter.Day != 0 {
		builder.Where(qb.Eq("ms.day", filter.Day))
	}
	if filter.OnlyUnanalyzed {
		builder.Where(qb.Or(qb.IsNull("ms.placement"), qb.IsNull("ms.kills")))
	}

	query, args, err := builder.ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select screenshots query: %w", err)
	}

	var rows []screenshotTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select screenshots: %w", err)
	}

	out := make([]screenshot.Screenshot, 0, len(rows))
	for _, row := range rows {
		out = append(out, screenshotFromRow(row))
	}
	return out, nil
}

func (r *ScreenshotRepository) UpdateResult(ctx context.Context, id string, placement, kills *int, points int) (screenshot.Screenshot, bool, error) {
	if !isUUID(id) {
		return screenshot.Screenshot{}, false, nil
	}

	query, args, err := qb.Update("match_screenshots").
		Set("placement", nullableInt(placement)).
		Set("kills", nullableInt(kills)).
		Set("points", points).
		Where(qb.Eq("id", id)).
		ToSQL()
	if err != nil {
		return screenshot.Screenshot{}, false, fmt.Errorf("build update screenshot query: %w", err)
	}
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return screenshot.Screenshot{}, false, fmt.Errorf("update screenshot result: %w", err)
	}
	updated, err := rowsAffected(result, "update screenshot result")
	if err != nil || !updated {
		return screenshot.Screenshot{}, false, err
	}
	return r.GetByID(ctx, id)
}

func (r *ScreenshotRepository) ReplaceResult(ctx context.Context, id string, prevPlacement, prevKills, placement, kills *int, points int) (screenshot.Screenshot, bool, error) {
	if !isUUID(id) {
		return screenshot.Screenshot{}, false, nil
	}

	query, args, err := qb.Update("match_screenshots").
		Set("placement", nullableInt(placement)).
		Set("kills", nullableInt(kills)).
		Set("points", points).
		Where(
			qb.Eq("id", id),
			qb.NotDistinctFrom("placement", nullableInt(prevPlacement)),
			qb.NotDistinctFrom("kills", nullableInt(prevKills)),
		).
		ToSQL()
	if err != nil {
		return screenshot.Screenshot{}, false, fmt.Errorf("build replace screenshot query: %w", err)
	}
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return screenshot.Screenshot{}, false, fmt.Errorf("replace screenshot result: %w", err)
	}
	replaced, err := rowsAffected(result, "replace screenshot result")
	if err != nil || !replaced {
		return screenshot.Screenshot{}, false, err
	}
	return r.GetByID(ctx, id)
}

func (r *ScreenshotRepository) Delete(ctx context.Context, id string) (bool, error) {
	if !isUUID(id) {
		return false, nil
	}

	query, args, err := qb.DeleteFrom("match_screenshots").Where(qb.Eq("id", id)).ToSQL()
	if err != nil {
		return false, fmt.Errorf("build delete screenshot query: %w", err)
	}
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("delete screenshot: %w", err)
	}
	return rowsAffected(result, "delete screenshot")
}

func screenshotFromRow(row screenshotTableModel) screenshot.Screenshot {
	return screenshot.Screenshot{
		ID:           row.ID,
		TeamID:       row.TeamID,
		TournamentID: row.TournamentID,
		PlayerID:     row.PlayerID,
		Day:          row.Day,
		ImageKey:     row.ImageKey,
		ImageURL:     row.ImageURL,
		Placement:    intFromNull(row.Placement),
		Kills:        intFromNull(row.Kills),
		Points:       row.Points,
		CreatedAt:    row.CreatedAt,
	}
}
