package optimizer

import (
	"sort"

	"spot-optimizer/internal/model"
)

// Normalize groups raw records into per-day series ready for optimization:
// days appear in first-encounter order, each series is sorted by hour
// ascending, and duplicate (day, hour) observations keep the first record
// seen. The number of duplicates dropped is returned.
//
// Normalize is a pure function of its input.
func Normalize(records []model.SpotPrice) (*model.DayGroups, int) {
	groups := model.NewDayGroups()
	seen := map[string]map[int]bool{}
	dropped := 0

	for _, r := range records {
		key := model.FormatDayISO(r.Day)
		hours := seen[key]
		if hours == nil {
			hours = map[int]bool{}
			seen[key] = hours
		}
		if hours[r.Hour] {
			dropped++
			continue
		}
		hours[r.Hour] = true
		groups.Add(r)
	}

	for _, day := range groups.Days() {
		s := groups.Series(day)
		sort.SliceStable(s, func(i, j int) bool { return s[i].Hour < s[j].Hour })
		groups.SetSeries(day, s)
	}
	return groups, dropped
}
