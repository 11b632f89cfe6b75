package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"kushklicker/internal/domain"
	"kushklicker/internal/game"
	"kushklicker/internal/logger"

	"github.com/gin-gonic/gin"
)

// Handler serves the game API on top of the engine
type Handler struct {
	Engine *game.Engine
	log    *slog.Logger
}

func NewHandler(engine *game.Engine) *Handler {
	return &Handler{
		Engine: engine,
		log:    logger.With("component", "http"),
	}
}

// fail maps engine errors onto status codes and {"message": ...} bodies.
// Anything unexpected is logged and hidden behind a 500.
func (h *Handler) fail(c *gin.Context, err error) {
	var (
		funds *domain.InsufficientFundsError
		verr  *domain.ValidationError
	)
	switch {
	case errors.As(err, &funds):
		c.JSON(http.StatusBadRequest, gin.H{
			"message":   "Insufficient KUSH",
			"required":  funds.Required,
			"available": funds.Available,
		})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": notFoundMessage(err)})
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid input", "field": verr.Field, "error": verr.Error()})
	case errors.Is(err, domain.ErrUpgradeLocked):
		c.JSON(http.StatusBadRequest, gin.H{"message": "Upgrade is locked"})
	case errors.Is(err, domain.ErrDuplicateUsername):
		c.JSON(http.StatusConflict, gin.H{"message": "Username already exists"})
	default:
		logger.WithContext(c.Request.Context()).Error("request failed",
			"path", c.FullPath(),
			"error", err,
		)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
	}
}

func notFoundMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrPlayerNotFound):
		return "Player not found"
	case errors.Is(err, domain.ErrUpgradeNotFound):
		return "Upgrade not found"
	case errors.Is(err, domain.ErrAchievementNotFound):
		return "Achievement not found"
	}
	return "Not found"
}

// badRequest answers a malformed request body or query
func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid input", "error": err.Error()})
}

// queryInt64 reads an optional integer query parameter
func queryInt64(c *gin.Context, name string, def int64) (int64, error) {
	v := c.Query(name)
	if v == "" {
		return def, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, domain.NewValidationError(name, "must be an integer")
	}
	return n, nil
}
