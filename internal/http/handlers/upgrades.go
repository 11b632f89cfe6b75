package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) ListUpgrades(c *gin.Context) {
	upgrades, err := h.Engine.ListUpgrades(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, upgrades)
}

func (h *Handler) PlayerUpgrades(c *gin.Context) {
	owned, err := h.Engine.ListPlayerUpgrades(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, owned)
}

type purchaseRequest struct {
	UpgradeID string `json:"upgradeId" binding:"required"`
	Quantity  int64  `json:"quantity"`
}

// PurchaseUpgrade buys quantity (default 1) units of an upgrade
func (h *Handler) PurchaseUpgrade(c *gin.Context) {
	var req purchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	res, err := h.Engine.PurchaseUpgrade(c.Request.Context(), c.Param("id"), req.UpgradeID, req.Quantity)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"player":                res.Player,
		"cost":                  res.Cost,
		"quantity":              res.Quantity,
		"owned":                 res.Owned,
		"completedAchievements": res.Completed,
	})
}

// UpgradeCost previews the price of the next quantity units
func (h *Handler) UpgradeCost(c *gin.Context) {
	quantity, err := queryInt64(c, "quantity", 1)
	if err != nil {
		h.fail(c, err)
		return
	}

	quote, err := h.Engine.QuoteUpgrade(c.Request.Context(), c.Param("id"), c.Param("upgradeId"), quantity)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, quote)
}
