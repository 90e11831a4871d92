package models

// OptimizeRequest carries the query parameters of the optimization endpoints.
// Dates are YYYY-MM-DD. When both dates are absent the previous calendar
// month is used; when only start_date is given the window is 30 days.
type OptimizeRequest struct {
	StartDate   string  `form:"start_date"`
	EndDate     string  `form:"end_date"`
	Threshold   float64 `form:"threshold"`
	UseTestData *bool   `form:"use_test_data"`
}

// MarketDataRequest carries the query parameters of GET /market-data.
// Defaults: the last 7 days.
type MarketDataRequest struct {
	StartDate   string `form:"start_date"`
	EndDate     string `form:"end_date"`
	UseTestData *bool  `form:"use_test_data"`
}
