package handlers

import (
	"errors"
	"testing"
	"time"

	"spot-optimizer/internal/data"
	"spot-optimizer/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveOptimizeWindowDefaultsToPreviousMonth(t *testing.T) {
	now := time.Date(2023, time.March, 15, 10, 30, 0, 0, time.UTC)

	start, end, err := resolveOptimizeWindow("", "", now)
	require.NoError(t, err)
	assert.Equal(t, "2023-02-01", model.FormatDayISO(start))
	assert.Equal(t, "2023-02-28", model.FormatDayISO(end))
}

func TestResolveOptimizeWindowLoneStart(t *testing.T) {
	start, end, err := resolveOptimizeWindow("2023-01-10", "", time.Now())
	require.NoError(t, err)
	assert.Equal(t, "2023-01-10", model.FormatDayISO(start))
	assert.Equal(t, "2023-02-09", model.FormatDayISO(end))
}

func TestResolveOptimizeWindowRejectsInversion(t *testing.T) {
	_, _, err := resolveOptimizeWindow("2023-02-01", "2023-01-01", time.Now())
	assert.Error(t, err)
}

func TestResolveOptimizeWindowAcceptsGermanDates(t *testing.T) {
	start, end, err := resolveOptimizeWindow("01.01.2023", "31.01.2023", time.Now())
	require.NoError(t, err)
	assert.Equal(t, "2023-01-01", model.FormatDayISO(start))
	assert.Equal(t, "2023-01-31", model.FormatDayISO(end))
}

func TestResolveMarketDataWindowDefaults(t *testing.T) {
	now := time.Date(2023, time.March, 15, 10, 30, 0, 0, time.UTC)

	start, end, err := resolveMarketDataWindow("", "", now)
	require.NoError(t, err)
	assert.Equal(t, "2023-03-08", model.FormatDayISO(start))
	assert.Equal(t, "2023-03-15", model.FormatDayISO(end))
}

func TestClassifyFetchError(t *testing.T) {
	cases := []struct {
		err    error
		reason string
	}{
		{&data.APIError{Code: "TOKEN_ERROR"}, "auth_token_error"},
		{&data.APIError{Code: "MISSING_CREDENTIALS"}, "auth_token_error"},
		{&data.APIError{Code: "AUTH_ERROR"}, "api_auth_error"},
		{&data.APIError{Code: "RATE_LIMIT_EXCEEDED"}, "api_rate_limit"},
		{&data.APIError{Code: "API_ERROR", StatusCode: 502}, "api_error"},
		{errors.New("connection refused"), "api_unreachable"},
	}
	for _, tc := range cases {
		reason, message := classifyFetchError(tc.err)
		assert.Equal(t, tc.reason, reason)
		assert.NotEmpty(t, message)
	}
}

func TestAcquireMarketDataEmptyResponse(t *testing.T) {
	fetcher := &fakeFetcher{records: nil}
	start, _ := time.Parse("2006-01-02", "2023-01-01")

	res := acquireMarketData(fetcher, start, start, false)
	assert.True(t, res.IsTest)
	assert.Equal(t, "empty_response", res.Reason)
	assert.Len(t, res.Records, 24)
}
