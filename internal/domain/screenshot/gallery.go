package screenshot

import "sort"

type DayGroup struct {
	Day         int
	Screenshots []Screenshot
}

type TeamGroup struct {
	TeamID string
	Days   []DayGroup
}

// Group arranges screenshots by team and then by day. Teams keep the order
// of their first screenshot in items; days are ascending.
func Group(items []Screenshot) []TeamGroup {
	order := make([]string, 0)
	byTeam := make(map[string]map[int][]Screenshot)
	for _, s := range items {
		days, ok := byTeam[s.TeamID]
		if !ok {
			days = make(map[int][]Screenshot)
			byTeam[s.TeamID] = days
			order = append(order, s.TeamID)
		}
		days[s.Day] = append(days[s.Day], s)
	}

	out := make([]TeamGroup, 0, len(order))
	for _, teamID := range order {
		days := byTeam[teamID]
		group := TeamGroup{TeamID: teamID, Days: make([]DayGroup, 0, len(days))}
		for day, shots := range days {
			group.Days = append(group.Days, DayGroup{Day: day, Screenshots: shots})
		}
		sort.Slice(group.Days, func(i, j int) bool { return group.Days[i].Day < group.Days[j].Day })
		out = append(out, group)
	}
	return out
}
