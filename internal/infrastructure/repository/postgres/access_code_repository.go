package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/tournament-scoring/internal/domain/accesscode"
	"github.com/riskibarqy/tournament-scoring/internal/domain/user"
	qb "github.com/riskibarqy/tournament-scoring/internal/platform/querybuilder"
)

const validateAccessCodeQuery = "SELECT code_id, role, team_id FROM validate_access_code($1) LIMIT 1"

type AccessCodeRepository struct {
	db *sqlx.DB
}

func NewAccessCodeRepository(db *sqlx.DB) *AccessCodeRepository {
	return &AccessCodeRepository{db: db}
}

// Validate delegates to the validate_access_code SQL function, which checks
// the code against stored bcrypt hashes with pgcrypto.
func (r *AccessCodeRepository) Validate(ctx context.Context, code string) (accesscode.Grant, bool, error) {
	var row accessGrantRow
	if err := r.db.GetContext(ctx, &row, validateAccessCodeQuery, code); err != nil {
		if isNotFound(err) {
			return accesscode.Grant{}, false, nil
		}
		return accesscode.Grant{}, false, fmt.Errorf("validate access code: %w", err)
	}
	return accesscode.Grant{
		CodeID: row.CodeID,
		Role:   user.Role(row.Role),
		TeamID: row.TeamID.String,
	}, true, nil
}

func (r *AccessCodeRepository) Create(ctx context.Context, item accesscode.AccessCode) error {
	query, args, err := qb.InsertModel("access_codes", accessCodeTableModel{
		ID:        item.ID,
		Label:     item.Label,
		CodeHash:  item.CodeHash,
		Role:      string(item.Role),
		TeamID:    nullableString(item.TeamID),
		Active:    item.Active,
		CreatedAt: item.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("build insert access code query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert access code: %w", err)
	}
	return nil
}
