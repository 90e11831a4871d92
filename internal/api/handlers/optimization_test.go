package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"spot-optimizer/internal/api/models"
	"spot-optimizer/internal/config"
	"spot-optimizer/internal/data"
	"spot-optimizer/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// fakeFetcher returns canned records or a canned error.
type fakeFetcher struct {
	records []model.SpotPrice
	err     error
}

func (f *fakeFetcher) FetchSpotPrices(start, end time.Time) ([]model.SpotPrice, error) {
	return f.records, f.err
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	c := config.Default()
	require.NoError(t, c.Validate())
	return c
}

func newRouter(fetcher MarketDataFetcher, cfg *config.Config) *gin.Engine {
	r := gin.New()
	h := NewOptimizationHandler(fetcher, cfg)
	m := NewMarketDataHandler(fetcher, cfg)
	r.POST("/optimize", h.Optimize)
	r.POST("/optimize-csv", h.OptimizeCSV)
	r.POST("/upload-csv", h.UploadCSV)
	r.POST("/upload-csv-download", h.UploadCSVDownload)
	r.GET("/market-data", m.GetMarketData)
	return r
}

// shapedRecords builds one day whose minimum (hour 3) precedes its maximum
// (hour 8).
func shapedRecords(t *testing.T, dayStr string) []model.SpotPrice {
	t.Helper()
	d, err := model.ParseDay(dayStr)
	require.NoError(t, err)
	prices := []float64{
		20.0, 18.5, 15.0, 12.5, 14.0, 17.0, 22.0, 25.0, 28.0, 26.5, 24.0, 22.5,
		21.0, 20.0, 19.5, 18.0, 17.5, 19.0, 22.0, 24.0, 23.0, 21.0, 19.0, 17.0,
	}
	out := make([]model.SpotPrice, 0, len(prices))
	for h, ct := range prices {
		out = append(out, model.NewSpotPrice(d, h, ct))
	}
	return out
}

func TestOptimizeWithRealData(t *testing.T) {
	fetcher := &fakeFetcher{records: shapedRecords(t, "2023-01-01")}
	r := newRouter(fetcher, testConfig(t))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/optimize?start_date=2023-01-01&end_date=2023-01-01", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "false", w.Header().Get("X-Test-Data"))
	assert.Equal(t, "netztransparenz_api", w.Header().Get("X-Data-Source"))

	var resp models.OptimizationResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.IsTestData)
	require.Len(t, resp.Cycles, 1)

	cycle := resp.Cycles[0]
	assert.Equal(t, 1, cycle.Cycle)
	assert.Equal(t, "01.01.2023", cycle.Date)
	assert.Equal(t, 3, cycle.ChargeHour)
	assert.Equal(t, 8, cycle.DischargeHour)
	assert.Equal(t, "03:00", cycle.ChargeStart)
	assert.Equal(t, "04:00", cycle.ChargeEnd)
	assert.Equal(t, "08:00", cycle.DischargeStart)
	assert.Equal(t, "09:00", cycle.DischargeEnd)
	assert.InDelta(t, 0.125, cycle.ChargePrice, 1e-9)
	assert.InDelta(t, 0.28, cycle.DischargePrice, 1e-9)
	assert.InDelta(t, 15.5, cycle.Profit, 1e-9)
	assert.InDelta(t, 15.5*0.85, cycle.ProfitAfterLosses, 1e-9)
}

func TestOptimizeThresholdSuppressesCycles(t *testing.T) {
	fetcher := &fakeFetcher{records: shapedRecords(t, "2023-01-01")}
	r := newRouter(fetcher, testConfig(t))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/optimize?start_date=2023-01-01&end_date=2023-01-01&threshold=100", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp models.OptimizationResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Empty(t, resp.Cycles)
}

func TestOptimizeFallsBackToTestData(t *testing.T) {
	fetcher := &fakeFetcher{err: &data.APIError{Code: "AUTH_ERROR", StatusCode: 403}}
	r := newRouter(fetcher, testConfig(t))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/optimize?start_date=2023-01-01&end_date=2023-01-02", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "true", w.Header().Get("X-Test-Data"))
	assert.Equal(t, "api_auth_error", w.Header().Get("X-Test-Reason"))

	var resp models.OptimizationResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.IsTestData)
	assert.NotEmpty(t, resp.Message)
}

func TestOptimizeExplicitTestData(t *testing.T) {
	// The fetcher must not be consulted at all.
	fetcher := &fakeFetcher{err: fmt.Errorf("should not be called")}
	r := newRouter(fetcher, testConfig(t))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/optimize?start_date=2023-01-01&end_date=2023-01-03&use_test_data=true", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "true", w.Header().Get("X-Test-Data"))
	assert.Equal(t, "user_request", w.Header().Get("X-Test-Reason"))

	var resp models.OptimizationResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.IsTestData)
	assert.NotEmpty(t, resp.Cycles, "synthetic data has a morning dip and a noon peak")
	for _, cy := range resp.Cycles {
		assert.Less(t, cy.ChargeHour, cy.DischargeHour)
	}
}

func TestOptimizeRejectsBadDates(t *testing.T) {
	r := newRouter(&fakeFetcher{}, testConfig(t))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/optimize?start_date=bogus", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOptimizeCSVDownload(t *testing.T) {
	fetcher := &fakeFetcher{records: shapedRecords(t, "2023-01-01")}
	r := newRouter(fetcher, testConfig(t))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/optimize-csv?start_date=2023-01-01&end_date=2023-01-01", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "attachment; filename=optimization_20230101_20230101.csv", w.Header().Get("Content-Disposition"))

	lines := strings.Split(strings.TrimRight(w.Body.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "Cycle;Date;"))
	assert.Equal(t, "1;01.01.2023;03:00;04:00;08:00;09:00;0,1250;0,2800;15,50", lines[1])
}

func uploadRequest(t *testing.T, path, threshold, csvBody string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("threshold", threshold))
	fw, err := mw.CreateFormFile("file", "prices.csv")
	require.NoError(t, err)
	_, err = fw.Write([]byte(csvBody))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

const uploadCSV = `Datum;von;Zeitzone von;bis;Zeitzone bis;Spotmarktpreis in ct/kWh
01.01.2023;0;CET;1;CET;20,0
01.01.2023;3;CET;4;CET;12,5
01.01.2023;8;CET;9;CET;28,0
01.01.2023;23;CET;24;CET;17,0
`

func TestUploadCSV(t *testing.T) {
	r := newRouter(&fakeFetcher{}, testConfig(t))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, uploadRequest(t, "/upload-csv", "0", uploadCSV))

	require.Equal(t, http.StatusOK, w.Code)
	var resp models.OptimizationResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Cycles, 1)
	assert.Equal(t, 3, resp.Cycles[0].ChargeHour)
	assert.Equal(t, 8, resp.Cycles[0].DischargeHour)
	assert.InDelta(t, 15.5, resp.Cycles[0].Profit, 1e-9)
}

func TestUploadCSVMalformedHeader(t *testing.T) {
	r := newRouter(&fakeFetcher{}, testConfig(t))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, uploadRequest(t, "/upload-csv", "0", "foo;bar\n1;2\n"))

	require.Equal(t, http.StatusBadRequest, w.Code)
	var resp models.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "MALFORMED_CSV", resp.Error.Code)
	assert.Contains(t, resp.Error.Details, "expected_columns")
}

func TestUploadCSVSkipsBadRows(t *testing.T) {
	body := uploadCSV + "01.01.2023;bad-hour;CET;5;CET;11,0\n"
	r := newRouter(&fakeFetcher{}, testConfig(t))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, uploadRequest(t, "/upload-csv", "0", body))

	require.Equal(t, http.StatusOK, w.Code)
	var resp models.OptimizationResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Cycles, 1)
}

func TestUploadCSVDownloadRoundTrip(t *testing.T) {
	r := newRouter(&fakeFetcher{}, testConfig(t))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, uploadRequest(t, "/upload-csv-download", "0", uploadCSV))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, w.Body.String(), "1;01.01.2023;03:00;04:00;08:00;09:00;")
}

func TestUploadCSVRejectsNegativeThreshold(t *testing.T) {
	r := newRouter(&fakeFetcher{}, testConfig(t))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, uploadRequest(t, "/upload-csv", "-5", uploadCSV))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetMarketData(t *testing.T) {
	fetcher := &fakeFetcher{records: shapedRecords(t, "2023-01-01")}
	r := newRouter(fetcher, testConfig(t))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/market-data?start_date=2023-01-01&end_date=2023-01-01", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "false", w.Header().Get("X-Test-Data"))

	var resp models.MarketDataResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 24)
	assert.Equal(t, "01.01.2023", resp.Data[0].Date)
	assert.Equal(t, 20.0, resp.Data[0].PriceCtKWh)
	assert.Equal(t, 0.2, resp.Data[0].PriceEUR)
}

func TestGetMarketDataFallsBack(t *testing.T) {
	fetcher := &fakeFetcher{err: &data.APIError{Code: "TOKEN_ERROR"}}
	r := newRouter(fetcher, testConfig(t))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/market-data?start_date=2023-01-01&end_date=2023-01-01", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "true", w.Header().Get("X-Test-Data"))
	assert.Equal(t, "auth_token_error", w.Header().Get("X-Test-Reason"))

	var resp models.MarketDataResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.IsTestData)
	assert.NotEmpty(t, resp.Data)
}
