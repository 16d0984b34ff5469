package screenshot

import "context"

// Repository describes screenshot persistence needs from use cases.
type Repository interface {
	CountByTeam(ctx context.Context, teamID string) (int, error)
	// CreateWithinLimit inserts s unless the team already holds limit rows,
	// in which case it returns ErrLimitReached.
	CreateWithinLimit(ctx context.Context, s Screenshot, limit int) (Screenshot, error)
	GetByID(ctx context.Context, id string) (Screenshot, bool, error)
	List(ctx context.Context, filter Filter) ([]Screenshot, error)
	UpdateResult(ctx context.Context, id string, placement, kills *int, points int) (Screenshot, bool, error)
	// ReplaceResult writes like UpdateResult only while the stored placement
	// and kills still equal prevPlacement and prevKills. ok is false when the
	// row is gone or was changed in between.
	ReplaceResult(ctx context.Context, id string, prevPlacement, prevKills, placement, kills *int, points int) (s Screenshot, ok bool, err error)
	Delete(ctx context.Context, id string) (bool, error)
}
