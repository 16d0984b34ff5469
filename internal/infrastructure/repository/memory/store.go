package memory

import (
	"sync"

	"github.com/riskibarqy/tournament-scoring/internal/domain/accesscode"
	"github.com/riskibarqy/tournament-scoring/internal/domain/screenshot"
	"github.com/riskibarqy/tournament-scoring/internal/domain/session"
	"github.com/riskibarqy/tournament-scoring/internal/domain/team"
	"github.com/riskibarqy/tournament-scoring/internal/domain/tournament"
)

// Store holds every table of the in-memory driver behind one lock so
// deletes can cascade the way the SQL foreign keys do.
type Store struct {
	mu sync.RWMutex

	tournaments []tournament.Tournament
	teams       []team.Team
	screenshots []screenshot.Screenshot
	sessions    map[string]session.Session
	accessCodes []accesscode.AccessCode
}

func NewStore() *Store {
	return &Store{sessions: make(map[string]session.Session)}
}

func (s *Store) tournamentIndex(id string) int {
	for i := range s.tournaments {
		if s.tournaments[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) teamIndex(id string) int {
	for i := range s.teams {
		if s.teams[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) screenshotIndex(id string) int {
	for i := range s.screenshots {
		if s.screenshots[i].ID == id {
			return i
		}
	}
	return -1
}

// deleteScreenshotsWhere must be called with the write lock held.
func (s *Store) deleteScreenshotsWhere(match func(screenshot.Screenshot) bool) {
	kept := s.screenshots[:0]
	for _, item := range s.screenshots {
		if !match(item) {
			kept = append(kept, item)
		}
	}
	s.screenshots = kept
}

// deleteTeamsWhere removes matching teams with their screenshots, access
// codes and sessions. It must be called with the write lock held.
func (s *Store) deleteTeamsWhere(match func(team.Team) bool) int {
	removed := make(map[string]struct{})
	keptTeams := s.teams[:0]
	for _, item := range s.teams {
		if match(item) {
			removed[item.ID] = struct{}{}
			continue
		}
		keptTeams = append(keptTeams, item)
	}
	s.teams = keptTeams
	if len(removed) == 0 {
		return 0
	}

	s.deleteScreenshotsWhere(func(item screenshot.Screenshot) bool {
		_, ok := removed[item.TeamID]
		return ok
	})

	removedCodes := make(map[string]struct{})
	keptCodes := s.accessCodes[:0]
	for _, item := range s.accessCodes {
		if _, ok := removed[item.TeamID]; ok {
			removedCodes[item.ID] = struct{}{}
			continue
		}
		keptCodes = append(keptCodes, item)
	}
	s.accessCodes = keptCodes

	for id, item := range s.sessions {
		_, byTeam := removed[item.TeamID]
		_, byCode := removedCodes[item.UserID]
		if byTeam || byCode {
			delete(s.sessions, id)
		}
	}
	return len(removed)
}

func copyIntPtr(v *int) *int {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}

func cloneScreenshot(item screenshot.Screenshot) screenshot.Screenshot {
	item.Placement = copyIntPtr(item.Placement)
	item.Kills = copyIntPtr(item.Kills)
	return item
}
