package tournament

import "context"

// Repository describes tournament persistence needs from use cases.
type Repository interface {
	List(ctx context.Context) ([]Tournament, error)
	GetByID(ctx context.Context, id string) (Tournament, bool, error)
	Create(ctx context.Context, t Tournament) (Tournament, error)
	// Delete removes the tournament with its teams and screenshots.
	Delete(ctx context.Context, id string) (bool, error)
}
