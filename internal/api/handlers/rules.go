package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/stitts-dev/golf-scoreboard/internal/api/middleware"
)

// RulesHandler serves the static tournament rules
type RulesHandler struct {
	refreshInterval time.Duration
}

func NewRulesHandler(refreshInterval time.Duration) *RulesHandler {
	return &RulesHandler{refreshInterval: refreshInterval}
}

// Show renders the rules page
// GET /rules
func (h *RulesHandler) Show(c *gin.Context) {
	c.HTML(http.StatusOK, "rules.html", gin.H{
		"Title":           "Rules",
		"Team":            middleware.CurrentTeam(c),
		"RefreshInterval": h.refreshInterval.String(),
	})
}
