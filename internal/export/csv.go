// Package export renders cycle lists in the `;`-separated, comma-decimal
// tabular form consumers of the optimizer expect, and reads that form back.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"spot-optimizer/internal/model"
)

var header = []string{
	"Cycle",
	"Date",
	"Charge_Start",
	"Charge_End",
	"Discharge_Start",
	"Discharge_End",
	"Charge_Price",
	"Discharge_Price",
	"Profit",
}

// WriteCycles writes the cycle table: dates as DD.MM.YYYY, times as HH:00,
// prices rounded to 4 decimals and profit to 2, comma as decimal separator.
func WriteCycles(w io.Writer, cycles []model.Cycle) error {
	cw := csv.NewWriter(w)
	cw.Comma = ';'

	if err := cw.Write(header); err != nil {
		return err
	}
	for _, c := range cycles {
		row := []string{
			strconv.Itoa(c.Sequence),
			model.FormatDayDE(c.Day),
			c.ChargeStart(),
			c.ChargeEnd(),
			c.DischargeStart(),
			c.DischargeEnd(),
			formatDecimal(c.ChargePrice, 4),
			formatDecimal(c.DischargePrice, 4),
			formatDecimal(c.GrossProfit, 2),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCycles parses a table written by WriteCycles, treating the text as
// authoritative: hours are re-derived from the HH:00 labels and profit from
// the Profit column. ProfitAfterLosses is not carried by the tabular form
// and is left zero.
func ReadCycles(r io.Reader) ([]model.Cycle, error) {
	cr := csv.NewReader(r)
	cr.Comma = ';'

	head, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if len(head) != len(header) {
		return nil, fmt.Errorf("unexpected header %v", head)
	}

	var cycles []model.Cycle
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		c, err := parseRow(row)
		if err != nil {
			return nil, err
		}
		cycles = append(cycles, c)
	}
	return cycles, nil
}

func parseRow(row []string) (model.Cycle, error) {
	if len(row) != len(header) {
		return model.Cycle{}, fmt.Errorf("unexpected row %v", row)
	}
	seq, err := strconv.Atoi(row[0])
	if err != nil {
		return model.Cycle{}, fmt.Errorf("cycle number %q: %w", row[0], err)
	}
	day, err := model.ParseDay(row[1])
	if err != nil {
		return model.Cycle{}, err
	}
	chargeHour, err := model.ParseHourLabel(row[2])
	if err != nil {
		return model.Cycle{}, err
	}
	dischargeHour, err := model.ParseHourLabel(row[4])
	if err != nil {
		return model.Cycle{}, err
	}
	chargePrice, err := parseDecimal(row[6])
	if err != nil {
		return model.Cycle{}, err
	}
	dischargePrice, err := parseDecimal(row[7])
	if err != nil {
		return model.Cycle{}, err
	}
	profit, err := parseDecimal(row[8])
	if err != nil {
		return model.Cycle{}, err
	}
	return model.Cycle{
		Sequence:       seq,
		Day:            day,
		ChargeHour:     chargeHour,
		DischargeHour:  dischargeHour,
		ChargePrice:    chargePrice,
		DischargePrice: dischargePrice,
		GrossProfit:    profit,
	}, nil
}

func formatDecimal(x float64, prec int) string {
	return strings.ReplaceAll(strconv.FormatFloat(x, 'f', prec, 64), ".", ",")
}

func parseDecimal(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(s), ",", "."), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid decimal %q", s)
	}
	return v, nil
}
