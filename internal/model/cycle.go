package model

import "time"

// Cycle is the buy-low/sell-high result for a single day.
//
// Sequence numbers are 1-based and assigned in the order days are processed,
// counting only days that produced a cycle. Prices are EUR/kWh; profits are
// EUR for the notional batch size the optimizer was configured with.
type Cycle struct {
	Sequence          int
	Day               time.Time
	ChargeHour        int
	DischargeHour     int
	ChargePrice       float64
	DischargePrice    float64
	GrossProfit       float64
	ProfitAfterLosses float64
}

// Charge/discharge windows occupy exactly one hour, so the end markers are
// derived from the start hours rather than chosen independently.

func (c Cycle) ChargeStart() string    { return HourLabel(c.ChargeHour) }
func (c Cycle) ChargeEnd() string      { return HourLabel(c.ChargeHour + 1) }
func (c Cycle) DischargeStart() string { return HourLabel(c.DischargeHour) }
func (c Cycle) DischargeEnd() string   { return HourLabel(c.DischargeHour + 1) }
