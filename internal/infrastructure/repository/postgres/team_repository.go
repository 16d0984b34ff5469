package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/tournament-scoring/internal/domain/team"
	qb "github.com/riskibarqy/tournament-scoring/internal/platform/querybuilder"
)

var teamColumns = []string{"id", "tournament_id", "name", "logo_key", "logo_url", "created_at"}

type TeamRepository struct {
	db *sqlx.DB
}

func NewTeamRepository(db *sqlx.DB) *TeamRepository {
	return &TeamRepository{db: db}
}

func (r *TeamRepository) ListByTournament(ctx context.Context, tournamentID string) ([]team.Team, error) {
	if !isUUID(tournamentID) {
		return []team.Team{}, nil
	}

	query, args, err := qb.Select(teamColumns...).From("teams").
		Where(qb.Eq("tournament_id", tournamentID)).
		OrderBy("created_at", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select teams by tournament query: %w", err)
	}

	var rows []teamTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select teams by tournament: %w", err)
	}

	out := make([]team.Team, 0, len(rows))
	for _, row := range rows {
		out = append(out, teamFromRow(row))
	}
	return out, nil
}

func (r *TeamRepository) GetByID(ctx context.Context, teamID string) (team.Team, bool, error) {
	if !isUUID(teamID) {
		return team.Team{}, false, nil
	}

	query, args, err := qb.Select(teamColumns...).From("teams").
		Where(qb.Eq("id", teamID)).
		Limit(1).
		ToSQL()
	if err != nil {
		return team.Team{}, false, fmt.Errorf("build select team query: %w", err)
	}

	var row teamTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return team.Team{}, false, nil
		}
		return team.Team{}, false, fmt.Errorf("select team: %w", err)
	}
	return teamFromRow(row), true, nil
}

func (r *TeamRepository) Create(ctx context.Context, item team.Team) (team.Team, error) {
	model := teamTableModel{
		ID:           item.ID,
		TournamentID: item.TournamentID,
		Name:         item.Name,
		LogoKey:      nullableString(item.LogoKey),
		LogoURL:      nullableString(item.LogoURL),
		CreatedAt:    item.CreatedAt,
	}
	query, args, err := qb.InsertModel("teams", model, "created_at")
	if err != nil {
		return team.Team{}, fmt.Errorf("build insert team query: %w", err)
	}
	if err := r.db.QueryRowxContext(ctx, query, args...).Scan(&item.CreatedAt); err != nil {
		return team.Team{}, fmt.Errorf("insert team: %w", err)
	}
	return item, nil
}

func (r *TeamRepository) Delete(ctx context.Context, teamID string) (bool, error) {
	if !isUUID(teamID) {
		return false, nil
	}

	query, args, err := qb.DeleteFrom("teams").Where(qb.Eq("id", teamID)).ToSQL()
	if err != nil {
		return false, fmt.Errorf("build delete team query: %w", err)
	}
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("delete team: %w", err)
	}
	return rowsAffected(result, "delete team")
}

func teamFromRow(row teamTableModel) team.Team {
	return team.Team{
		ID:           row.ID,
		TournamentID: row.TournamentID,
		Name:         row.Name,
		LogoKey:      row.LogoKey.String,
		LogoURL:      row.LogoURL.String,
		CreatedAt:    row.CreatedAt,
	}
}
