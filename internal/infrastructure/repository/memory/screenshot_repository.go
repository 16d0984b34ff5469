package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/riskibarqy/tournament-scoring/internal/domain/screenshot"
)

type ScreenshotRepository struct {
	store *Store
}

func NewScreenshotRepository(store *Store) *ScreenshotRepository {
	return &ScreenshotRepository{store: store}
}

func (r *ScreenshotRepository) CountByTeam(_ context.Context, teamID string) (int, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	return r.countLocked(teamID), nil
}

func (r *ScreenshotRepository) countLocked(teamID string) int {
	count := 0
	for _, item := range r.store.screenshots {
		if item.TeamID == teamID {
			count++
		}
	}
	return count
}

func (r *ScreenshotRepository) CreateWithinLimit(_ context.Context, item screenshot.Screenshot, limit int) (screenshot.Screenshot, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	teamIdx := r.store.teamIndex(item.TeamID)
	if teamIdx < 0 {
		return screenshot.Screenshot{}, fmt.Errorf("team %s does not exist", item.TeamID)
	}
	if limit > 0 && r.countLocked(item.TeamID) >= limit {
		return screenshot.Screenshot{}, fmt.Errorf("%w: team=%s", screenshot.ErrLimitReached, item.TeamID)
	}
	if r.store.screenshotIndex(item.ID) >= 0 {
		return screenshot.Screenshot{}, fmt.Errorf("screenshot %s already exists", item.ID)
	}

	item.TournamentID = r.store.teams[teamIdx].TournamentID
	r.store.screenshots = append(r.store.screenshots, cloneScreenshot(item))
	return cloneScreenshot(item), nil
}

func (r *ScreenshotRepository) GetByID(_ context.Context, id string) (screenshot.Screenshot, bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	if idx := r.store.screenshotIndex(id); idx >= 0 {
		return cloneScreenshot(r.store.screenshots[idx]), true, nil
	}
	return screenshot.Screenshot{}, false, nil
}

// List returns matching screenshots, newest first.
func (r *ScreenshotRepository) List(_ context.Context, filter screenshot.Filter) ([]screenshot.Screenshot, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]screenshot.Screenshot, 0)
	for _, item := range r.store.screenshots {
		if filter.TournamentID != "" && item.TournamentID != filter.TournamentID {
			continue
		}
		if filter.TeamID != "" && item.TeamID != filter.TeamID {
			continue
		}
		if filter.Day != 0 && item.Day != filter.Day {
			continue
		}
		if filter.OnlyUnanalyzed && item.Analyzed() {
			continue
		}
		out = append(out, cloneScreenshot(item))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *ScreenshotRepository) UpdateResult(_ context.Context, id string, placement, kills *int, points int) (screenshot.Screenshot, bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	idx := r.store.screenshotIndex(id)
	if idx < 0 {
		return screenshot.Screenshot{}, false, nil
	}
	row := &r.store.screenshots[idx]
	row.Placement = copyIntPtr(placement)
	row.Kills = copyIntPtr(kills)
	row.Points = points
	return cloneScreenshot(*row), true, nil
}

func (r *ScreenshotRepository) ReplaceResult(_ context.Context, id string, prevPlacement, prevKills, placement, kills *int, points int) (screenshot.Screenshot, bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	idx := r.store.screenshotIndex(id)
	if idx < 0 {
		return screenshot.Screenshot{}, false, nil
	}
	row := &r.store.screenshots[idx]
	if !equalIntPtr(row.Placement, prevPlacement) || !equalIntPtr(row.Kills, prevKills) {
		return screenshot.Screenshot{}, false, nil
	}
	row.Placement = copyIntPtr(placement)
	row.Kills = copyIntPtr(kills)
	row.Points = points
	return cloneScreenshot(*row), true, nil
}

func equalIntPtr(a, b *int) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func (r *ScreenshotRepository) Delete(_ context.Context, id string) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	idx := r.store.screenshotIndex(id)
	if idx < 0 {
		return false, nil
	}
	r.store.screenshots = append(r.store.screenshots[:idx], r.store.screenshots[idx+1:]...)
	return true, nil
}

var _ screenshot.Repository = (*ScreenshotRepository)(nil)
