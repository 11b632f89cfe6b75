package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) ListAchievements(c *gin.Context) {
	achievements, err := h.Engine.ListAchievements(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, achievements)
}

// PlayerAchievements returns the catalog merged with the player's progress
func (h *Handler) PlayerAchievements(c *gin.Context) {
	progress, err := h.Engine.PlayerAchievements(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, progress)
}
