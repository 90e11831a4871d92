package handlers

import (
	"net/http"
	"time"

	"spot-optimizer/internal/api/models"
	"spot-optimizer/internal/config"

	"github.com/gin-gonic/gin"
)

// MarketDataHandler serves GET /api/v1/market-data.
type MarketDataHandler struct {
	fetcher MarketDataFetcher
	cfg     *config.Config
}

func NewMarketDataHandler(fetcher MarketDataFetcher, cfg *config.Config) *MarketDataHandler {
	return &MarketDataHandler{fetcher: fetcher, cfg: cfg}
}

func (h *MarketDataHandler) GetMarketData(c *gin.Context) {
	var req models.MarketDataRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}
	start, end, err := resolveMarketDataWindow(req.StartDate, req.EndDate, time.Now())
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_DATE", err.Error())
		return
	}

	useTest := h.cfg.API.UseTestDataByDefault
	if req.UseTestData != nil {
		useTest = *req.UseTestData
	}

	res := acquireMarketData(h.fetcher, start, end, useTest)
	rows := make([]models.MarketDataRow, 0, len(res.Records))
	for _, p := range res.Records {
		rows = append(rows, models.NewMarketDataRow(p))
	}

	setDataSourceHeaders(c, res)
	c.JSON(http.StatusOK, models.MarketDataResponse{
		Data:       rows,
		IsTestData: res.IsTest,
		Message:    res.Message,
	})
}
