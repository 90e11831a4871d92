package model

import "time"

// DayGroups is a day-keyed collection of price series that preserves the
// order in which days were first encountered. Plain Go maps do not keep
// insertion order, and cycle sequence numbers depend on it, so the keys are
// tracked separately.
type DayGroups struct {
	days   []time.Time
	series map[string]DaySeries
}

func NewDayGroups() *DayGroups {
	return &DayGroups{series: map[string]DaySeries{}}
}

// Add appends a point to its day's series, registering the day on first use.
func (g *DayGroups) Add(p SpotPrice) {
	key := FormatDayISO(p.Day)
	if _, ok := g.series[key]; !ok {
		g.days = append(g.days, p.Day)
	}
	g.series[key] = append(g.series[key], p)
}

// Days returns the day keys in first-encounter order.
func (g *DayGroups) Days() []time.Time { return g.days }

// Series returns the series for a day, or nil if the day is unknown.
func (g *DayGroups) Series(day time.Time) DaySeries {
	return g.series[FormatDayISO(day)]
}

// SetSeries replaces a day's series. The day must already be registered.
func (g *DayGroups) SetSeries(day time.Time, s DaySeries) {
	g.series[FormatDayISO(day)] = s
}

// Len is the number of distinct days.
func (g *DayGroups) Len() int { return len(g.days) }
