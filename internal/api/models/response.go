package models

import "spot-optimizer/internal/model"

// CycleResponse is the JSON shape of one optimized cycle. Hours are exposed
// both as numeric values and as formatted HH:00 labels.
type CycleResponse struct {
	Cycle             int     `json:"cycle"`
	Date              string  `json:"date"` // DD.MM.YYYY
	ChargeHour        int     `json:"charge_hour"`
	DischargeHour     int     `json:"discharge_hour"`
	ChargeStart       string  `json:"charge_start"`
	ChargeEnd         string  `json:"charge_end"`
	DischargeStart    string  `json:"discharge_start"`
	DischargeEnd      string  `json:"discharge_end"`
	ChargePrice       float64 `json:"charge_price"`
	DischargePrice    float64 `json:"discharge_price"`
	Profit            float64 `json:"profit"`
	ProfitAfterLosses float64 `json:"profit_after_losses"`
}

// NewCycleResponse converts a cycle into its wire form.
func NewCycleResponse(c model.Cycle) CycleResponse {
	return CycleResponse{
		Cycle:             c.Sequence,
		Date:              model.FormatDayDE(c.Day),
		ChargeHour:        c.ChargeHour,
		DischargeHour:     c.DischargeHour,
		ChargeStart:       c.ChargeStart(),
		ChargeEnd:         c.ChargeEnd(),
		DischargeStart:    c.DischargeStart(),
		DischargeEnd:      c.DischargeEnd(),
		ChargePrice:       c.ChargePrice,
		DischargePrice:    c.DischargePrice,
		Profit:            c.GrossProfit,
		ProfitAfterLosses: c.ProfitAfterLosses,
	}
}

// OptimizationResponse is the body of the JSON optimization endpoints.
type OptimizationResponse struct {
	Cycles     []CycleResponse `json:"cycles"`
	IsTestData bool            `json:"is_test_data"`
	Message    string          `json:"message,omitempty"`
}

// MarketDataRow is one normalized price record on the wire.
type MarketDataRow struct {
	Date       string  `json:"date"` // DD.MM.YYYY
	Hour       int     `json:"hour"`
	PriceCtKWh float64 `json:"price_ct_kwh"`
	PriceEUR   float64 `json:"price_eur"`
}

func NewMarketDataRow(p model.SpotPrice) MarketDataRow {
	return MarketDataRow{
		Date:       model.FormatDayDE(p.Day),
		Hour:       p.Hour,
		PriceCtKWh: p.PriceCtKWh,
		PriceEUR:   p.PriceEUR,
	}
}

// MarketDataResponse is the body of GET /market-data.
type MarketDataResponse struct {
	Data       []MarketDataRow `json:"data"`
	IsTestData bool            `json:"is_test_data"`
	Message    string          `json:"message,omitempty"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information
type ErrorDetail struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}
