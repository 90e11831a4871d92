package data

import (
	"math"
	"math/rand"
	"time"

	"spot-optimizer/internal/model"
)

// GenerateSyntheticPrices produces plausible hourly spot prices for the date
// window, used when the real API is unavailable or test data is requested
// explicitly. Each day gets a random base price of 5-15 ct/kWh shaped by an
// intraday factor (rising toward noon, falling into the evening) plus ±0.5 ct
// of noise, floored at 1.0 ct/kWh. Every day has all 24 hours.
func GenerateSyntheticPrices(start, end time.Time) []model.SpotPrice {
	days := int(model.Midnight(end).Sub(model.Midnight(start)).Hours()/24) + 1
	if days <= 0 {
		days = 1
	}

	out := make([]model.SpotPrice, 0, days*24)
	day := model.Midnight(start)

	for d := 0; d < days; d++ {
		base := 5.0 + rand.Float64()*10.0

		for hour := 0; hour < 24; hour++ {
			var shape float64
			if hour < 12 {
				shape = 0.5 * float64(hour-3) / 9.0
			} else {
				shape = 0.5 - 0.5*float64(hour-12)/12.0
			}
			factor := 1.0 + 0.5*shape
			noise := rand.Float64() - 0.5

			ct := math.Max(1.0, base*factor+noise)
			out = append(out, model.NewSpotPrice(day, hour, ct))
		}
		day = day.AddDate(0, 0, 1)
	}
	return out
}
