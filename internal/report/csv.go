package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"table-reservation-backend/internal/model"
)

var csvHeader = []string{"id", "clientName", "date", "time", "people", "table", "createdAt", "updatedAt"}

// WriteCSV writes list as CSV with a header row, in the given order.
func WriteCSV(w io.Writer, list []model.Reservation) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, r := range list {
		row := []string{
			strconv.FormatInt(r.ID, 10),
			cell(r.ClientName),
			r.Date,
			r.Time,
			strconv.Itoa(r.People),
			cell(r.Table),
			r.CreatedAt.UTC().Format(time.RFC3339),
			r.UpdatedAt.UTC().Format(time.RFC3339),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write reservation %d: %w", r.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// cell quotes free text that a spreadsheet would otherwise evaluate as a formula.
func cell(s string) string {
	if s != "" && strings.IndexByte("=+-@", s[0]) >= 0 {
		return "'" + s
	}
	return s
}
