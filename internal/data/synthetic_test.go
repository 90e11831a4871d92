package data

import (
	"testing"
	"time"

	"spot-optimizer/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateSyntheticPrices(t *testing.T) {
	start, _ := time.Parse("2006-01-02", "2023-01-01")
	end, _ := time.Parse("2006-01-02", "2023-01-03")

	records := GenerateSyntheticPrices(start, end)
	require.Len(t, records, 3*24, "every day gets all 24 hours")

	for i, p := range records {
		assert.Equal(t, i%24, p.Hour)
		assert.GreaterOrEqual(t, p.PriceCtKWh, 1.0, "prices floored at 1 ct/kWh")
		assert.InDelta(t, p.PriceCtKWh/100.0, p.PriceEUR, 1e-12)
	}

	assert.Equal(t, "2023-01-01", model.FormatDayISO(records[0].Day))
	assert.Equal(t, "2023-01-03", model.FormatDayISO(records[len(records)-1].Day))
}

func TestGenerateSyntheticPricesInvertedWindow(t *testing.T) {
	start, _ := time.Parse("2006-01-02", "2023-01-05")
	end, _ := time.Parse("2006-01-02", "2023-01-01")

	// A nonsensical window still yields one day of data.
	records := GenerateSyntheticPrices(start, end)
	assert.Len(t, records, 24)
}
