package scoring

// placementPoints maps a final match rank to its placement points.
// Ranks outside the table are worth nothing.
var placementPoints = map[int]int{
	1: 10,
	2: 6,
	3: 5,
	4: 4,
	5: 3,
	6: 2,
	7: 1,
	8: 1,
}

// PointsPerKill is the flat reward for every elimination.
const PointsPerKill = 1

// PlacementPoints returns the placement contribution for a rank.
// A nil or unknown rank yields zero.
func PlacementPoints(placement *int) int {
	if placement == nil {
		return 0
	}
	return placementPoints[*placement]
}

// KillPoints returns the kill contribution. Missing or negative counts yield zero.
func KillPoints(kills *int) int {
	if kills == nil || *kills < 0 {
		return 0
	}
	return *kills * PointsPerKill
}

// Calculate is the single scoring rule used at upload time, on admin
// correction and while aggregating standings.
func Calculate(placement, kills *int) int {
	return PlacementPoints(placement) + KillPoints(kills)
}

// IsWin reports whether the placement counts as a match win.
func IsWin(placement *int) bool {
	return placement != nil && *placement == 1
}
