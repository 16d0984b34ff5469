package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/tournament-scoring/internal/domain/tournament"
	qb "github.com/riskibarqy/tournament-scoring/internal/platform/querybuilder"
)

var tournamentColumns = []string{"id", "name", "description", "total_matches", "created_at"}

type TournamentRepository struct {
	db *sqlx.DB
}

func NewTournamentRepository(db *sqlx.DB) *TournamentRepository {
	return &TournamentRepository{db: db}
}

func (r *TournamentRepository) List(ctx context.Context) ([]tournament.Tournament, error) {
	query, args, err := qb.Select(tournamentColumns...).From("tournaments").
		OrderBy("created_at DESC", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select tournaments query: %w", err)
	}

	var rows []tournamentTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select tournaments: %w", err)
	}

	out := make([]tournament.Tournament, 0, len(rows))
	for _, row := range rows {
		out = append(out, tournamentFromRow(row))
	}
	return out, nil
}

func (r *TournamentRepository) GetByID(ctx context.Context, id string) (tournament.Tournament, bool, error) {
	if !isUUID(id) {
		return tournament.Tournament{}, false, nil
	}

	query, args, err := qb.Select(tournamentColumns...).From("tournaments").
		Where(qb.Eq("id", id)).
		Limit(1).
		ToSQL()
	if err != nil {
		return tournament.Tournament{}, false, fmt.Errorf("build select tournament query: %w", err)
	}

	var row tournamentTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return tournament.Tournament{}, false, nil
		}
		return tournament.Tournament{}, false, fmt.Errorf("select tournament: %w", err)
	}
	return tournamentFromRow(row), true, nil
}

func (r *TournamentRepository) Create(ctx context.Context, item tournament.Tournament) (tournament.Tournament, error) {
	model := tournamentTableModel{
		ID:           item.ID,
		Name:         item.Name,
		Description:  item.Description,
		TotalMatches: item.TotalMatches,
		CreatedAt:    item.CreatedAt,
	}
	query, args, err := qb.InsertModel("tournaments", model, "created_at")
	if err != nil {
		return tournament.Tournament{}, fmt.Errorf("build insert tournament query: %w", err)
	}
	if err := r.db.QueryRowxContext(ctx, query, args...).Scan(&item.CreatedAt); err != nil {
		return tournament.Tournament{}, fmt.Errorf("insert tournament: %w", err)
	}
	return item, nil
}

// Delete relies on ON DELETE CASCADE for teams and screenshots.
func (r *TournamentRepository) Delete(ctx context.Context, id string) (bool, error) {
	if !isUUID(id) {
		return false, nil
	}

	query, args, err := qb.DeleteFrom("tournaments").Where(qb.Eq("id", id)).ToSQL()
	if err != nil {
		return false, fmt.Errorf("build delete tournament query: %w", err)
	}
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("delete tournament: %w", err)
	}
	return rowsAffected(result, "delete tournament")
}

func tournamentFromRow(row tournamentTableModel) tournament.Tournament {
	return tournament.Tournament{
		ID:           row.ID,
		Name:         row.Name,
		Description:  row.Description,
		TotalMatches: row.TotalMatches,
		CreatedAt:    row.CreatedAt,
	}
}
