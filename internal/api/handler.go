package api

import (
	"errors"
	"log/slog"
	"net/http"
	"sync"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"table-reservation-backend/internal/engine"
	"table-reservation-backend/internal/store"
	"table-reservation-backend/internal/validation"
)

// Handler holds shared dependencies for API handlers. The engine is not safe
// for concurrent use, so every handler that touches it holds mu, which also
// guards the single user's form state.
type Handler struct {
	mu      sync.Mutex
	engine  *engine.Engine
	state   engine.State
	db      *gorm.DB
	webpush *webpush.Options
	log     *slog.Logger
}

// NewHandler creates a new API handler. db may be nil when push
// subscriptions are not stored, webpushOptions when push is disabled.
func NewHandler(e *engine.Engine, db *gorm.DB, webpushOptions *webpush.Options, log *slog.Logger) *Handler {
	return &Handler{
		engine:  e,
		state:   engine.Creating(),
		db:      db,
		webpush: webpushOptions,
		log:     log,
	}
}

type sessionView struct {
	Mode      string `json:"mode"`
	EditingID *int64 `json:"editingId,omitempty"`
}

func viewOf(st engine.State) sessionView {
	if id, ok := st.Target(); ok {
		return sessionView{Mode: "editing", EditingID: &id}
	}
	return sessionView{Mode: "creating"}
}

// writeError maps engine errors to HTTP responses.
func (h *Handler) writeError(c *gin.Context, err error) {
	var verr *validation.ValidationError
	if errors.As(err, &verr) {
		status := http.StatusUnprocessableEntity
		switch verr.Kind {
		case validation.KindConflict:
			status = http.StatusConflict
		case validation.KindNotFound:
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": verr.Message, "kind": verr.Kind, "field": verr.Field})
		return
	}

	var perr *store.PersistenceError
	if errors.As(err, &perr) {
		h.log.Error("Persistence failure", "op", perr.Op, "error", perr.Err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no se pudieron guardar las reservas"})
		return
	}

	h.log.Error("Unexpected error", "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
