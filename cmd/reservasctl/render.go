package main

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"table-reservation-backend/internal/model"
	"table-reservation-backend/internal/report"
)

func newTable(w io.Writer, header []string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")
	return table
}

func renderList(w io.Writer, list []model.Reservation) {
	if len(list) == 0 {
		fmt.Fprintln(w, "No hay reservas registradas")
		return
	}
	table := newTable(w, []string{"ID", "Cliente", "Fecha", "Hora", "Personas", "Mesa"})
	for _, r := range list {
		table.Append([]string{
			strconv.FormatInt(r.ID, 10),
			r.ClientName,
			r.Date,
			r.Time,
			strconv.Itoa(r.People),
			r.Table,
		})
	}
	table.Render()
}

func renderStats(w io.Writer, s report.Stats) {
	summary := newTable(w, []string{"Indicador", "Valor"})
	summary.Append([]string{"Total de reservas", strconv.Itoa(s.TotalReservations)})
	summary.Append([]string{"Total de personas", strconv.Itoa(s.TotalPeople)})
	summary.Append([]string{"Media por reserva", strconv.FormatFloat(s.AverageParty, 'f', 1, 64)})
	summary.Append([]string{"Próximas", strconv.Itoa(s.Upcoming)})
	popular := s.MostPopularTable
	if popular == "" {
		popular = "N/A"
	}
	summary.Append([]string{"Mesa más popular", popular})
	summary.Render()

	if len(s.ByTable) == 0 {
		return
	}
	fmt.Fprintln(w)
	tables := newTable(w, []string{"Mesa", "Reservas", "Personas"})
	for _, tc := range s.ByTable {
		tables.Append([]string{tc.Table, strconv.Itoa(tc.Reservations), strconv.Itoa(tc.People)})
	}
	tables.Render()
}

func export(stdout io.Writer, path string, list []model.Reservation) (err error) {
	if path == "" {
		return report.WriteCSV(stdout, list)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return report.WriteCSV(f, list)
}
