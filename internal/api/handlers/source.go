package handlers

import (
	"errors"
	"fmt"
	"log"
	"time"

	"spot-optimizer/internal/data"
	"spot-optimizer/internal/model"
)

// MarketDataFetcher is the collaborator that retrieves real spot prices.
// *data.Client satisfies it; tests substitute their own.
type MarketDataFetcher interface {
	FetchSpotPrices(start, end time.Time) ([]model.SpotPrice, error)
}

// marketDataResult is the outcome of acquiring price data for a request,
// including whether synthetic data had to be substituted and why.
type marketDataResult struct {
	Records []model.SpotPrice
	IsTest  bool
	Message string
	Reason  string // set when synthetic data was substituted
}

// acquireMarketData fetches real data and falls back to synthetic prices when
// the fetch fails or returns nothing. The fallback decision lives here, at
// the edge; the fetcher just reports a typed error and the optimizer never
// sees any of this.
func acquireMarketData(fetcher MarketDataFetcher, start, end time.Time, useTest bool) marketDataResult {
	if useTest {
		return marketDataResult{
			Records: data.GenerateSyntheticPrices(start, end),
			IsTest:  true,
			Message: "Using test data as requested",
			Reason:  "user_request",
		}
	}

	records, err := fetcher.FetchSpotPrices(start, end)
	if err != nil {
		reason, message := classifyFetchError(err)
		log.Printf("[API] Market data fetch failed (%s): %v. Using test data.", reason, err)
		return marketDataResult{
			Records: data.GenerateSyntheticPrices(start, end),
			IsTest:  true,
			Message: message,
			Reason:  reason,
		}
	}
	if len(records) == 0 {
		log.Printf("[API] API returned no data for %s..%s, using test data",
			model.FormatDayISO(start), model.FormatDayISO(end))
		return marketDataResult{
			Records: data.GenerateSyntheticPrices(start, end),
			IsTest:  true,
			Message: "API returned no data for the requested period. Using test data.",
			Reason:  "empty_response",
		}
	}
	return marketDataResult{
		Records: records,
		Message: "Data retrieved from Netztransparenz API",
	}
}

func classifyFetchError(err error) (reason, message string) {
	var apiErr *data.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case "TOKEN_ERROR", "MISSING_CREDENTIALS":
			return "auth_token_error", "Could not obtain an authorization token. Using test data."
		case "AUTH_ERROR":
			return "api_auth_error", "Authentication with the API failed. Using test data."
		case "RATE_LIMIT_EXCEEDED":
			return "api_rate_limit", "API rate limit exceeded. Using test data."
		}
		return "api_error", fmt.Sprintf("API error (status %d). Using test data.", apiErr.StatusCode)
	}
	return "api_unreachable", "Could not reach the API. Using test data."
}

// resolveOptimizeWindow applies the optimization endpoints' date defaults:
// no dates at all means the previous calendar month, a lone start date means
// 30 days from it.
func resolveOptimizeWindow(startStr, endStr string, now time.Time) (time.Time, time.Time, error) {
	if startStr == "" {
		end := model.Midnight(now).AddDate(0, 0, -now.Day())
		start := end.AddDate(0, 0, -end.Day()+1)
		return start, end, nil
	}
	start, err := model.ParseDay(startStr)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if endStr == "" {
		return start, start.AddDate(0, 0, 30), nil
	}
	end, err := model.ParseDay(endStr)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if start.After(end) {
		return time.Time{}, time.Time{}, fmt.Errorf("start_date must not be after end_date")
	}
	return start, end, nil
}

// resolveMarketDataWindow applies GET /market-data defaults: the last 7 days.
func resolveMarketDataWindow(startStr, endStr string, now time.Time) (time.Time, time.Time, error) {
	if startStr == "" {
		end := model.Midnight(now)
		return end.AddDate(0, 0, -7), end, nil
	}
	start, err := model.ParseDay(startStr)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if endStr == "" {
		return start, start.AddDate(0, 0, 7), nil
	}
	end, err := model.ParseDay(endStr)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if start.After(end) {
		return time.Time{}, time.Time{}, fmt.Errorf("start_date must not be after end_date")
	}
	return start, end, nil
}
