package scoring

import "sort"

// MatchResult is the scoring-relevant part of one accepted screenshot.
type MatchResult struct {
	TeamID    string
	Placement *int
	Kills     *int
	// StoredPoints is the value persisted at upload/correction time.
	StoredPoints int
}

// TeamEntry identifies a team taking part in the standings.
type TeamEntry struct {
	ID      string
	Name    string
	LogoURL string
}

// Standing is one row of a tournament table.
type Standing struct {
	Position      int
	TeamID        string
	TeamName      string
	LogoURL       string
	TotalPoints   int
	TotalKills    int
	Wins          int
	MatchesPlayed int
}

// Mismatch records a result whose stored points disagree with Calculate.
type Mismatch struct {
	TeamID   string
	Stored   int
	Computed int
}

// Aggregate builds the standings table. Teams keep the order they were
// given in when their totals tie.
func Aggregate(teams []TeamEntry, results []MatchResult) ([]Standing, []Mismatch) {
	indexByTeam := make(map[string]int, len(teams))
	rows := make([]Standing, 0, len(teams))
	for _, t := range teams {
		if _, dup := indexByTeam[t.ID]; dup {
			continue
		}
		indexByTeam[t.ID] = len(rows)
		rows = append(rows, Standing{
			TeamID:   t.ID,
			TeamName: t.Name,
			LogoURL:  t.LogoURL,
		})
	}

	var mismatches []Mismatch
	for _, r := range results {
		idx, ok := indexByTeam[r.TeamID]
		if !ok {
			continue
		}
		points := Calculate(r.Placement, r.Kills)
		if points != r.StoredPoints {
			mismatches = append(mismatches, Mismatch{TeamID: r.TeamID, Stored: r.StoredPoints, Computed: points})
		}

		row := &rows[idx]
		row.TotalPoints += points
		row.TotalKills += killCount(r.Kills)
		row.MatchesPlayed++
		if IsWin(r.Placement) {
			row.Wins++
		}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].TotalPoints > rows[j].TotalPoints
	})
	for i := range rows {
		rows[i].Position = i + 1
	}

	return rows, mismatches
}

func killCount(kills *int) int {
	if kills == nil || *kills < 0 {
		return 0
	}
	return *kills
}
