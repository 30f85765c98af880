package journal

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"scalper-journal-go/internal/models"
)

// csvTime matches the ISO instant format the export has always used.
const csvTime = "2006-01-02T15:04:05.000Z07:00"

var csvHeader = []string{"time", "market", "strategy", "pnl"}

// WriteCSV projects the ledger onto the four-column export format, most
// recent rows first. Fields containing a comma, quote, or newline are quoted
// with embedded quotes doubled, so the file round-trips through ReadCSV.
func WriteCSV(w io.Writer, trades []models.Trade) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	rows := newestFirst(sortedByTime(trades))
	for _, t := range rows {
		record := []string{
			time.UnixMilli(t.Timestamp).UTC().Format(csvTime),
			t.Instrument,
			t.Notes,
			decimal.NewFromFloat(t.Pnl).StringFixed(2),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV parses a file produced by WriteCSV back into trade records. Only
// the four exported fields are recovered; ids and optional fields are not
// part of the projection.
func ReadCSV(r io.Reader) ([]models.Trade, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}
	if len(header) != len(csvHeader) {
		return nil, fmt.Errorf("unexpected csv header %v", header)
	}

	var trades []models.Trade
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read csv row: %w", err)
		}
		ts, err := time.Parse(csvTime, record[0])
		if err != nil {
			return nil, fmt.Errorf("bad time %q: %w", record[0], err)
		}
		pnl, err := strconv.ParseFloat(record[3], 64)
		if err != nil {
			return nil, fmt.Errorf("bad pnl %q: %w", record[3], err)
		}
		trades = append(trades, models.Trade{
			Timestamp:  ts.UnixMilli(),
			Instrument: record[1],
			Notes:      record[2],
			Pnl:        pnl,
		})
	}
	return trades, nil
}
