package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"table-reservation-backend/internal/model"
	"table-reservation-backend/internal/validation"
)

type reservationRequest struct {
	ClientName string `json:"clientName"`
	Date       string `json:"date"`
	Time       string `json:"time"`
	People     int    `json:"people"`
	Table      string `json:"table"`
}

func (r reservationRequest) draft() model.Draft {
	return model.Draft{
		ClientName: r.ClientName,
		Date:       r.Date,
		Time:       r.Time,
		People:     r.People,
		Table:      r.Table,
	}
}

func reservationID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid reservation id"})
		return 0, false
	}
	return id, true
}

// ListReservations returns every reservation sorted by date and time.
func (h *Handler) ListReservations(c *gin.Context) {
	h.mu.Lock()
	list := h.engine.List()
	h.mu.Unlock()

	if list == nil {
		list = []model.Reservation{}
	}
	c.JSON(http.StatusOK, list)
}

// SubmitReservation creates a reservation, or updates the one being edited.
func (h *Handler) SubmitReservation(c *gin.Context) {
	var req reservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	_, editing := h.state.Target()
	r, next, err := h.engine.Submit(c.Request.Context(), h.state, req.draft())
	h.state = next
	if err != nil {
		h.writeError(c, err)
		return
	}

	status := http.StatusCreated
	if editing {
		status = http.StatusOK
	}
	c.JSON(status, gin.H{"reservation": r, "session": viewOf(h.state)})
}

// BeginEdit switches the session to editing the given reservation and
// returns the values to prefill the form with.
func (h *Handler) BeginEdit(c *gin.Context) {
	id, ok := reservationID(c)
	if !ok {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	r, next, found := h.engine.BeginEdit(h.state, id)
	if !found {
		h.writeError(c, validation.NotFound(id))
		return
	}
	h.state = next
	c.JSON(http.StatusOK, gin.H{"draft": r.Draft(), "session": viewOf(h.state)})
}

// GetSession reports whether the form is creating or editing.
func (h *Handler) GetSession(c *gin.Context) {
	h.mu.Lock()
	st := h.state
	h.mu.Unlock()

	c.JSON(http.StatusOK, viewOf(st))
}

// CancelEdit returns the session to creating.
func (h *Handler) CancelEdit(c *gin.Context) {
	h.mu.Lock()
	h.state = h.engine.CancelEdit(h.state)
	st := h.state
	h.mu.Unlock()

	c.JSON(http.StatusOK, viewOf(st))
}

// DeleteReservation removes one reservation regardless of the session state.
func (h *Handler) DeleteReservation(c *gin.Context) {
	id, ok := reservationID(c)
	if !ok {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	removed, err := h.engine.Delete(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	if !removed {
		h.writeError(c, validation.NotFound(id))
		return
	}
	c.Status(http.StatusNoContent)
}

// ClearReservations removes every reservation.
func (h *Handler) ClearReservations(c *gin.Context) {
	h.mu.Lock()
	defer h.mu.Unlock()

	n, err := h.engine.Clear(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	h.state = h.engine.CancelEdit(h.state)
	c.JSON(http.StatusOK, gin.H{"removed": n})
}

type validateRequest struct {
	Field string `json:"field" binding:"required"`
	Value string `json:"value"`
}

// ValidateField checks a single form field as the user types.
func (h *Handler) ValidateField(c *gin.Context) {
	var req validateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	h.mu.Lock()
	res := h.engine.ValidateField(req.Field, req.Value)
	h.mu.Unlock()

	c.JSON(http.StatusOK, res)
}
