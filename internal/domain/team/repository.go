package team

import "context"

// Repository describes team persistence needs from use cases.
type Repository interface {
	ListByTournament(ctx context.Context, tournamentID string) ([]Team, error)
	GetByID(ctx context.Context, teamID string) (Team, bool, error)
	Create(ctx context.Context, t Team) (Team, error)
	Delete(ctx context.Context, teamID string) (bool, error)
}
