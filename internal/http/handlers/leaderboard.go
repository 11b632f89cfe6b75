package handlers

import (
	"net/http"

	"kushklicker/internal/game"

	"github.com/gin-gonic/gin"
)

// GetLeaderboard returns the top players by total KUSH
func (h *Handler) GetLeaderboard(c *gin.Context) {
	limit, err := queryInt64(c, "limit", game.DefaultLeaderboardSize)
	if err != nil {
		h.fail(c, err)
		return
	}

	top, err := h.Engine.TopPlayers(c.Request.Context(), int(limit))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, top)
}
