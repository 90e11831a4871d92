package data

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"spot-optimizer/internal/model"
)

// RequiredColumns is the header of the Netztransparenz Spotmarktpreise CSV.
// Column order is free; all six must be present.
var RequiredColumns = []string{
	"Datum",
	"von",
	"Zeitzone von",
	"bis",
	"Zeitzone bis",
	"Spotmarktpreis in ct/kWh",
}

// MalformedInputError reports input that lacks the required structure
// entirely: a missing or incomplete header, or a file in which no row could
// be parsed. It aborts the whole parse, unlike per-row failures.
type MalformedInputError struct {
	Expected []string
	Actual   []string
}

func (e *MalformedInputError) Error() string {
	return fmt.Sprintf("malformed CSV: expected columns %v, got %v", e.Expected, e.Actual)
}

// RowDiagnostic records a single skipped row. Row-level failures never abort
// the parse.
type RowDiagnostic struct {
	Line int
	Row  []string
	Err  error
}

// ParseSpotPrices reads `;`-separated spot-price rows. Decimal commas are
// accepted, dates may be DD.MM.YYYY or YYYY-MM-DD, and the hour column may
// carry either a bare hour ("3") or a time label ("3:00"). Malformed rows
// are skipped and reported as diagnostics.
func ParseSpotPrices(r io.Reader) ([]model.SpotPrice, []RowDiagnostic, error) {
	cr := csv.NewReader(r)
	cr.Comma = ';'
	cr.FieldsPerRecord = -1

	head, err := cr.Read()
	if err != nil {
		return nil, nil, &MalformedInputError{Expected: RequiredColumns}
	}
	for i := range head {
		head[i] = strings.TrimSpace(head[i])
	}

	idx := map[string]int{}
	for i, col := range head {
		idx[col] = i
	}
	for _, col := range RequiredColumns {
		if _, ok := idx[col]; !ok {
			return nil, nil, &MalformedInputError{Expected: RequiredColumns, Actual: head}
		}
	}
	dateIdx := idx["Datum"]
	hourIdx := idx["von"]
	priceIdx := idx["Spotmarktpreis in ct/kWh"]
	maxIdx := dateIdx
	for _, i := range []int{hourIdx, priceIdx} {
		if i > maxIdx {
			maxIdx = i
		}
	}

	var (
		out   []model.SpotPrice
		diags []RowDiagnostic
		line  = 1
		rows  = 0
	)
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			diags = append(diags, RowDiagnostic{Line: line, Err: err})
			continue
		}
		if len(row) == 0 || (len(row) == 1 && strings.TrimSpace(row[0]) == "") {
			continue
		}
		rows++

		p, err := parseRow(row, dateIdx, hourIdx, priceIdx, maxIdx)
		if err != nil {
			diags = append(diags, RowDiagnostic{Line: line, Row: row, Err: err})
			continue
		}
		out = append(out, p)
	}

	if len(out) == 0 && rows > 0 {
		// Every row failed; treat the input as structurally unreadable.
		return nil, diags, &MalformedInputError{Expected: RequiredColumns, Actual: head}
	}
	return out, diags, nil
}

func parseRow(row []string, dateIdx, hourIdx, priceIdx, maxIdx int) (model.SpotPrice, error) {
	if len(row) <= maxIdx {
		return model.SpotPrice{}, fmt.Errorf("expected at least %d fields, got %d", maxIdx+1, len(row))
	}

	day, err := model.ParseDay(row[dateIdx])
	if err != nil {
		return model.SpotPrice{}, err
	}

	hourStr := strings.TrimSpace(row[hourIdx])
	if head, _, ok := strings.Cut(hourStr, ":"); ok {
		hourStr = head
	}
	hour, err := strconv.Atoi(hourStr)
	if err != nil {
		return model.SpotPrice{}, fmt.Errorf("invalid hour %q", row[hourIdx])
	}
	if hour < 0 || hour > 23 {
		return model.SpotPrice{}, fmt.Errorf("hour %d out of range", hour)
	}

	ct, err := parseDecimal(row[priceIdx])
	if err != nil {
		return model.SpotPrice{}, err
	}
	return model.NewSpotPrice(day, hour, ct), nil
}

// WriteSpotPrices writes records back out in the feed's own format, so a
// dump produced by the CLI can be fed to the upload/optimize paths again.
func WriteSpotPrices(w io.Writer, records []model.SpotPrice) error {
	cw := csv.NewWriter(w)
	cw.Comma = ';'

	if err := cw.Write(RequiredColumns); err != nil {
		return err
	}
	for _, p := range records {
		row := []string{
			model.FormatDayDE(p.Day),
			strconv.Itoa(p.Hour),
			"CET",
			strconv.Itoa(p.Hour + 1),
			"CET",
			formatDecimal(p.PriceCtKWh, 4),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func parseDecimal(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(s), ",", "."), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid price %q", s)
	}
	return v, nil
}

func formatDecimal(x float64, prec int) string {
	return strings.ReplaceAll(strconv.FormatFloat(x, 'f', prec, 64), ".", ",")
}
