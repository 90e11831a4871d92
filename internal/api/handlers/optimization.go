package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"spot-optimizer/internal/api/models"
	"spot-optimizer/internal/config"
	"spot-optimizer/internal/data"
	"spot-optimizer/internal/export"
	"spot-optimizer/internal/model"
	"spot-optimizer/internal/optimizer"

	"github.com/gin-gonic/gin"
)

// OptimizationHandler serves the cycle-optimization endpoints.
type OptimizationHandler struct {
	fetcher MarketDataFetcher
	cfg     *config.Config
}

func NewOptimizationHandler(fetcher MarketDataFetcher, cfg *config.Config) *OptimizationHandler {
	return &OptimizationHandler{fetcher: fetcher, cfg: cfg}
}

// Optimize handles POST /api/v1/optimization/optimize.
func (h *OptimizationHandler) Optimize(c *gin.Context) {
	req, start, end, ok := h.bindOptimizeRequest(c)
	if !ok {
		return
	}

	res := acquireMarketData(h.fetcher, start, end, h.useTestData(req.UseTestData))
	if len(res.Records) == 0 {
		respondError(c, http.StatusNotFound, "NO_DATA", "no market data found for the specified period")
		return
	}

	cycles := h.runOptimization(res.Records, req.Threshold)
	setDataSourceHeaders(c, res)
	c.JSON(http.StatusOK, models.OptimizationResponse{
		Cycles:     cycles,
		IsTestData: res.IsTest,
		Message:    res.Message,
	})
}

// OptimizeCSV handles POST /api/v1/optimization/optimize-csv.
func (h *OptimizationHandler) OptimizeCSV(c *gin.Context) {
	req, start, end, ok := h.bindOptimizeRequest(c)
	if !ok {
		return
	}

	res := acquireMarketData(h.fetcher, start, end, h.useTestData(req.UseTestData))
	if len(res.Records) == 0 {
		respondError(c, http.StatusNotFound, "NO_DATA", "no market data found for the specified period")
		return
	}

	groups, _ := optimizer.Normalize(res.Records)
	cycles := optimizer.Optimize(groups, req.Threshold, h.cfg.OptimizerOptions())

	var buf bytes.Buffer
	if err := export.WriteCycles(&buf, cycles); err != nil {
		respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}

	filename := fmt.Sprintf("optimization_%s_%s.csv", start.Format("20060102"), end.Format("20060102"))
	setDataSourceHeaders(c, res)
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// UploadCSV handles POST /api/v1/optimization/upload-csv.
func (h *OptimizationHandler) UploadCSV(c *gin.Context) {
	records, threshold, ok := h.bindUpload(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, models.OptimizationResponse{
		Cycles: h.runOptimization(records, threshold),
	})
}

// UploadCSVDownload handles POST /api/v1/optimization/upload-csv-download.
func (h *OptimizationHandler) UploadCSVDownload(c *gin.Context) {
	records, threshold, ok := h.bindUpload(c)
	if !ok {
		return
	}

	groups, _ := optimizer.Normalize(records)
	cycles := optimizer.Optimize(groups, threshold, h.cfg.OptimizerOptions())

	var buf bytes.Buffer
	if err := export.WriteCycles(&buf, cycles); err != nil {
		respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

func (h *OptimizationHandler) bindOptimizeRequest(c *gin.Context) (models.OptimizeRequest, time.Time, time.Time, bool) {
	var req models.OptimizeRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return req, time.Time{}, time.Time{}, false
	}
	if req.Threshold < 0 {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", "threshold must be >= 0")
		return req, time.Time{}, time.Time{}, false
	}
	start, end, err := resolveOptimizeWindow(req.StartDate, req.EndDate, time.Now())
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_DATE", err.Error())
		return req, time.Time{}, time.Time{}, false
	}
	log.Printf("[API] Optimization request %s..%s threshold=%.2f",
		model.FormatDayISO(start), model.FormatDayISO(end), req.Threshold)
	return req, start, end, true
}

func (h *OptimizationHandler) bindUpload(c *gin.Context) ([]model.SpotPrice, float64, bool) {
	threshold, err := strconv.ParseFloat(c.DefaultPostForm("threshold", "0"), 64)
	if err != nil || threshold < 0 {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", "threshold must be a number >= 0")
		return nil, 0, false
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", "file is required")
		return nil, 0, false
	}
	f, err := fileHeader.Open()
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return nil, 0, false
	}
	defer f.Close()

	records, diags, err := data.ParseSpotPrices(f)
	if err != nil {
		var malformed *data.MalformedInputError
		if errors.As(err, &malformed) {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: models.ErrorDetail{
				Code:    "MALFORMED_CSV",
				Message: malformed.Error(),
				Details: map[string]interface{}{
					"expected_columns": malformed.Expected,
					"actual_columns":   malformed.Actual,
				},
			}})
			return nil, 0, false
		}
		respondError(c, http.StatusBadRequest, "MALFORMED_CSV", err.Error())
		return nil, 0, false
	}
	if len(diags) > 0 {
		log.Printf("[API] Upload %s: skipped %d malformed rows", fileHeader.Filename, len(diags))
	}
	return records, threshold, true
}

func (h *OptimizationHandler) runOptimization(records []model.SpotPrice, threshold float64) []models.CycleResponse {
	groups, dropped := optimizer.Normalize(records)
	if dropped > 0 {
		log.Printf("[API] Dropped %d duplicate price records during normalization", dropped)
	}
	cycles := optimizer.Optimize(groups, threshold, h.cfg.OptimizerOptions())

	out := make([]models.CycleResponse, 0, len(cycles))
	for _, c := range cycles {
		out = append(out, models.NewCycleResponse(c))
	}
	return out
}

func (h *OptimizationHandler) useTestData(flag *bool) bool {
	if flag != nil {
		return *flag
	}
	return h.cfg.API.UseTestDataByDefault
}

func setDataSourceHeaders(c *gin.Context, res marketDataResult) {
	c.Header("X-Test-Data", strconv.FormatBool(res.IsTest))
	if res.IsTest {
		c.Header("X-Test-Reason", res.Reason)
	} else {
		c.Header("X-Data-Source", "netztransparenz_api")
	}
}

func respondError(c *gin.Context, status int, code, message string) {
	c.JSON(status, models.ErrorResponse{Error: models.ErrorDetail{
		Code:    code,
		Message: message,
	}})
}
