package api

import (
	"bytes"
	"net/http"

	"github.com/gin-gonic/gin"

	"table-reservation-backend/internal/clock"
	"table-reservation-backend/internal/report"
)

// GetStats returns aggregate figures over all reservations.
func (h *Handler) GetStats(c *gin.Context) {
	h.mu.Lock()
	stats := report.Compute(h.engine.List(), h.engine.Today())
	h.mu.Unlock()

	c.JSON(http.StatusOK, stats)
}

// ExportCSV streams all reservations as a CSV attachment.
func (h *Handler) ExportCSV(c *gin.Context) {
	h.mu.Lock()
	list := h.engine.List()
	h.mu.Unlock()

	var buf bytes.Buffer
	if err := report.WriteCSV(&buf, list); err != nil {
		h.writeError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="reservas.csv"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// GetVenue returns what the form needs to render its inputs.
func (h *Handler) GetVenue(c *gin.Context) {
	h.mu.Lock()
	rules := h.engine.Rules()
	today := h.engine.Today()
	h.mu.Unlock()

	c.JSON(http.StatusOK, gin.H{
		"openHour":  rules.OpenHour,
		"closeHour": rules.CloseHour,
		"tables":    rules.Tables,
		"minDate":   today.Format(clock.DateLayout),
	})
}
