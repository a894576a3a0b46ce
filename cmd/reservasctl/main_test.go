package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"table-reservation-backend/internal/model"
	"table-reservation-backend/internal/report"
)

var sample = []model.Reservation{
	{ID: 1, ClientName: "Ana", Date: "2026-10-20", Time: "12:00", People: 2, Table: "T1"},
	{ID: 2, ClientName: "Bruno", Date: "2026-10-21", Time: "20:30", People: 5, Table: "T1"},
}

func writeConfig(t *testing.T, dir string) string {
	t.Helper()
	body := "database:\n  driver: sqlite\n  dsn: " + filepath.Join(dir, "reservations.db") + "\n"
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestRenderList(t *testing.T) {
	var buf bytes.Buffer
	renderList(&buf, sample)

	out := buf.String()
	assert.Contains(t, out, "CLIENTE")
	assert.Contains(t, out, "Bruno")
	assert.Less(t, strings.Index(out, "Ana"), strings.Index(out, "Bruno"))

	buf.Reset()
	renderList(&buf, nil)
	assert.Equal(t, "No hay reservas registradas\n", buf.String())
}

func TestRenderStats(t *testing.T) {
	var buf bytes.Buffer
	renderStats(&buf, report.Stats{TotalReservations: 2, TotalPeople: 7, AverageParty: 3.5, MostPopularTable: "T1",
		ByTable: []report.TableCount{{Table: "T1", Reservations: 2, People: 7}}})

	out := buf.String()
	assert.Contains(t, out, "3.5")
	assert.Contains(t, out, "T1")
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeConfig(t, dir)

	var buf bytes.Buffer
	require.NoError(t, run([]string{"-config", cfgPath, "list"}, &buf))
	assert.Contains(t, buf.String(), "No hay reservas")

	buf.Reset()
	require.NoError(t, run([]string{"-config", cfgPath, "stats"}, &buf))
	assert.Contains(t, buf.String(), "N/A")

	csvPath := filepath.Join(dir, "out.csv")
	require.NoError(t, run([]string{"-config", cfgPath, "-o", csvPath, "export"}, &buf))
	data, err := os.ReadFile(csvPath)
	require.NoError(t, err)
	assert.Equal(t, "id,clientName,date,time,people,table,createdAt,updatedAt\n", string(data))

	assert.Error(t, run([]string{"-config", cfgPath, "clear"}, &buf))

	buf.Reset()
	require.NoError(t, run([]string{"-config", cfgPath, "-yes", "clear"}, &buf))
	assert.Equal(t, "0 reservations deleted\n", buf.String())

	assert.Error(t, run([]string{"-config", cfgPath, "purge"}, &buf))
	assert.Error(t, run([]string{"-config", cfgPath}, &buf))
}
