package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/tournament-scoring/internal/domain/session"
	"github.com/riskibarqy/tournament-scoring/internal/domain/user"
	qb "github.com/riskibarqy/tournament-scoring/internal/platform/querybuilder"
)

type SessionRepository struct {
	db *sqlx.DB
}

func NewSessionRepository(db *sqlx.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) Create(ctx context.Context, item session.Session) error {
	query, args, err := qb.InsertModel("sessions", sessionTableModel{
		ID:        item.ID,
		UserID:    item.UserID,
		Role:      string(item.Role),
		TeamID:    nullableString(item.TeamID),
		CreatedAt: item.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("build insert session query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

func (r *SessionRepository) GetByID(ctx context.Context, id string) (session.Session, bool, error) {
	if !isUUID(id) {
		return session.Session{}, false, nil
	}

	query, args, err := qb.Select("id", "user_id", "role", "team_id", "created_at").From("sessions").
		Where(qb.Eq("id", id)).
		Limit(1).
		ToSQL()
	if err != nil {
		return session.Session{}, false, fmt.Errorf("build select session query: %w", err)
	}

	var row sessionTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return session.Session{}, false, nil
		}
		return session.Session{}, false, fmt.Errorf("select session: %w", err)
	}
	return session.Session{
		ID:        row.ID,
		UserID:    row.UserID,
		Role:      user.Role(row.Role),
		TeamID:    row.TeamID.String,
		CreatedAt: row.CreatedAt,
	}, true, nil
}

func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	query, args, err := qb.DeleteFrom("sessions").Where(qb.Eq("id", id)).ToSQL()
	if err != nil {
		return fmt.Errorf("build delete session query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
