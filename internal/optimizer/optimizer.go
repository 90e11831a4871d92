// Package optimizer finds, per calendar day, a single charge/discharge cycle
// for an energy-storage asset: charge at the day's cheapest hour, discharge
// at its most expensive hour, report only cycles whose gross profit exceeds a
// threshold.
package optimizer

import (
	"sort"

	"spot-optimizer/internal/model"
)

// Candidate is a daily cycle before sequence assignment.
type Candidate struct {
	ChargeHour     int
	DischargeHour  int
	ChargePrice    float64
	DischargePrice float64
	GrossProfit    float64
}

// FindDailyCycle computes the single best charge/discharge pair for one day.
//
// The scan proceeds in hour-ascending order tracking the minimum- and
// maximum-price points with strict comparisons, so ties resolve to the first
// hour at which the extreme price occurs. A candidate exists only when the
// minimum-price hour is strictly before the maximum-price hour and the gross
// profit strictly exceeds the threshold. When the ordering check fails and
// opts.AlternatePair is set, the best still-ordered pair is searched instead.
func FindDailyCycle(series model.DaySeries, threshold float64, opts Options) (Candidate, bool) {
	opts = opts.withDefaults()
	if len(series) == 0 {
		return Candidate{}, false
	}

	sorted := append(model.DaySeries(nil), series...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Hour < sorted[j].Hour })

	minEntry := sorted[0]
	maxEntry := sorted[0]
	for _, p := range sorted[1:] {
		if p.PriceEUR < minEntry.PriceEUR {
			minEntry = p
		}
		if p.PriceEUR > maxEntry.PriceEUR {
			maxEntry = p
		}
	}

	if minEntry.Hour < maxEntry.Hour {
		profit := (maxEntry.PriceEUR - minEntry.PriceEUR) * opts.BatchSizeKWh
		if profit > threshold {
			return Candidate{
				ChargeHour:     minEntry.Hour,
				DischargeHour:  maxEntry.Hour,
				ChargePrice:    minEntry.PriceEUR,
				DischargePrice: maxEntry.PriceEUR,
				GrossProfit:    profit,
			}, true
		}
		return Candidate{}, false
	}

	if opts.AlternatePair {
		return findAlternatePair(sorted, threshold, opts)
	}
	return Candidate{}, false
}

// findAlternatePair scans for the pair (buy, sell) with buy.Hour < sell.Hour
// maximizing the price spread. series must already be sorted by hour.
func findAlternatePair(series model.DaySeries, threshold float64, opts Options) (Candidate, bool) {
	best := Candidate{}
	found := false
	buy := series[0]

	for _, p := range series[1:] {
		if p.PriceEUR < buy.PriceEUR {
			buy = p
			continue
		}
		spread := p.PriceEUR - buy.PriceEUR
		if !found || spread > best.DischargePrice-best.ChargePrice {
			best = Candidate{
				ChargeHour:     buy.Hour,
				DischargeHour:  p.Hour,
				ChargePrice:    buy.PriceEUR,
				DischargePrice: p.PriceEUR,
			}
			found = true
		}
	}
	if !found {
		return Candidate{}, false
	}
	best.GrossProfit = (best.DischargePrice - best.ChargePrice) * opts.BatchSizeKWh
	if best.GrossProfit > threshold {
		return best, true
	}
	return Candidate{}, false
}

// Optimize runs FindDailyCycle over every day in the grouping's iteration
// order and assembles the cycle list. Days producing no candidate are
// omitted; sequence numbers are contiguous starting at 1 over the remaining
// days. An empty grouping yields an empty result, never an error.
func Optimize(groups *model.DayGroups, threshold float64, opts Options) []model.Cycle {
	opts = opts.withDefaults()

	var cycles []model.Cycle
	for _, day := range groups.Days() {
		cand, ok := FindDailyCycle(groups.Series(day), threshold, opts)
		if !ok {
			continue
		}
		cycles = append(cycles, model.Cycle{
			Sequence:          len(cycles) + 1,
			Day:               day,
			ChargeHour:        cand.ChargeHour,
			DischargeHour:     cand.DischargeHour,
			ChargePrice:       cand.ChargePrice,
			DischargePrice:    cand.DischargePrice,
			GrossProfit:       cand.GrossProfit,
			ProfitAfterLosses: cand.GrossProfit * opts.EfficiencyFactor,
		})
	}
	return cycles
}
