package handlers

import (
	"errors"
	"net/http"

	"kushklicker/internal/domain"
	"kushklicker/internal/game"

	"github.com/gin-gonic/gin"
)

// GetPlayer resolves :ref as a player id, then as a username
func (h *Handler) GetPlayer(c *gin.Context) {
	p, err := h.Engine.ResolvePlayer(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) CreatePlayer(c *gin.Context) {
	var req game.NewPlayerInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	p, err := h.Engine.CreatePlayer(c.Request.Context(), req)
	if errors.Is(err, domain.ErrDuplicateUsername) {
		// registration has always answered 400 here
		c.JSON(http.StatusBadRequest, gin.H{"message": "Username already exists"})
		return
	}
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *Handler) UpdatePlayer(c *gin.Context) {
	var patch domain.PlayerPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, err)
		return
	}

	p, err := h.Engine.UpdatePlayer(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) Click(c *gin.Context) {
	res, err := h.Engine.RecordClick(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"player":                res.Player,
		"kushGained":            res.KushGained,
		"totalKush":             res.Player.TotalKush,
		"completedAchievements": res.Completed,
	})
}

type tickRequest struct {
	ElapsedSeconds int64 `json:"elapsedSeconds"`
}

func (h *Handler) Tick(c *gin.Context) {
	var req tickRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	res, err := h.Engine.TickPassiveIncome(c.Request.Context(), c.Param("id"), req.ElapsedSeconds)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"player":                res.Player,
		"kushGained":            res.KushGained,
		"completedAchievements": res.Completed,
	})
}
