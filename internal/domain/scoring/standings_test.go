package scoring

import "testing"

func TestAggregate(t *testing.T) {
	t.Parallel()

	teams := []TeamEntry{
		{ID: "alpha", Name: "Alpha"},
		{ID: "bravo", Name: "Bravo"},
		{ID: "charlie", Name: "Charlie"},
	}
	results := []MatchResult{
		{TeamID: "alpha", Placement: intPtr(1), Kills: intPtr(5), StoredPoints: 15},
		{TeamID: "alpha", Placement: intPtr(9), Kills: intPtr(3), StoredPoints: 3},
		{TeamID: "bravo", Placement: intPtr(1), Kills: intPtr(12), StoredPoints: 22},
		{TeamID: "bravo", Placement: nil, Kills: nil, StoredPoints: 0},
		{TeamID: "ghost", Placement: intPtr(1), Kills: intPtr(1), StoredPoints: 11},
	}

	rows, mismatches := Aggregate(teams, results)
	if len(mismatches) != 0 {
		t.Fatalf("unexpected mismatches: %+v", mismatches)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}

	bravo := rows[0]
	if bravo.TeamID != "bravo" || bravo.Position != 1 || bravo.TotalPoints != 22 || bravo.TotalKills != 12 || bravo.Wins != 1 || bravo.MatchesPlayed != 2 {
		t.Fatalf("unexpected first row: %+v", bravo)
	}
	alpha := rows[1]
	if alpha.TeamID != "alpha" || alpha.Position != 2 || alpha.TotalPoints != 18 || alpha.TotalKills != 8 || alpha.Wins != 1 || alpha.MatchesPlayed != 2 {
		t.Fatalf("unexpected second row: %+v", alpha)
	}
	charlie := rows[2]
	if charlie.TeamID != "charlie" || charlie.Position != 3 || charlie.TotalPoints != 0 || charlie.MatchesPlayed != 0 {
		t.Fatalf("expected empty team last with zeros, got %+v", charlie)
	}
}

func TestAggregate_TiesKeepTeamOrder(t *testing.T) {
	t.Parallel()

	teams := []TeamEntry{{ID: "b"}, {ID: "a"}, {ID: "c"}}
	results := []MatchResult{
		{TeamID: "a", Placement: intPtr(2), Kills: intPtr(0), StoredPoints: 6},
		{TeamID: "b", Placement: intPtr(3), Kills: intPtr(1), StoredPoints: 6},
	}

	rows, _ := Aggregate(teams, results)
	got := []string{rows[0].TeamID, rows[1].TeamID, rows[2].TeamID}
	want := []string{"b", "a", "c"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("unexpected order %v want %v", got, want)
		}
	}
	for i, row := range rows {
		if row.Position != i+1 {
			t.Fatalf("row %d has position %d", i, row.Position)
		}
	}
}

func TestAggregate_ReportsStoredPointMismatch(t *testing.T) {
	t.Parallel()

	rows, mismatches := Aggregate(
		[]TeamEntry{{ID: "a"}},
		[]MatchResult{{TeamID: "a", Placement: intPtr(1), Kills: intPtr(2), StoredPoints: 9}},
	)
	if rows[0].TotalPoints != 12 {
		t.Fatalf("expected recomputed total 12, got %d", rows[0].TotalPoints)
	}
	if len(mismatches) != 1 || mismatches[0].Stored != 9 || mismatches[0].Computed != 12 {
		t.Fatalf("unexpected mismatches: %+v", mismatches)
	}
}
