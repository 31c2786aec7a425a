package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/resulta/resulta-gateway/internal/config"
	"github.com/resulta/resulta-gateway/internal/response"
)

// UIConfigHandler serves the knobs the screens need but must not hard-code:
// search debounce windows per screen kind and the poll interval. Keeping
// them here means every screen coalesces input against the same settings.
type UIConfigHandler struct {
	cfg *config.Config
}

func NewUIConfigHandler(cfg *config.Config) *UIConfigHandler {
	return &UIConfigHandler{cfg: cfg}
}

// Get godoc
// GET /api/v1/public/ui-config
func (h *UIConfigHandler) Get(c *gin.Context) {
	response.Success(c, http.StatusOK, gin.H{
		"news_search_debounce_ms":   h.cfg.NewsSearchDebounce.Milliseconds(),
		"roster_search_debounce_ms": h.cfg.RosterSearchDebounce.Milliseconds(),
		"refresh_debounce_ms":       h.cfg.RefreshDebounce.Milliseconds(),
		"news_poll_interval_s":      int(h.cfg.NewsPollInterval.Seconds()),
	})
}
