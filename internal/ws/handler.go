package ws

import (
	"errors"
	"net/http"
	"slices"
	"time"

	"kushklicker/internal/domain"
	"kushklicker/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// HandlerOptions configure the live-feed endpoint
type HandlerOptions struct {
	// AllowedOrigins restricts the Origin header; empty allows any origin
	AllowedOrigins []string
	TickInterval   time.Duration
}

// HandleWS upgrades GET /ws/players/:id into a live feed for that player
func HandleWS(engine Engine, hub *Hub, opts HandlerOptions) gin.HandlerFunc {
	if opts.TickInterval <= 0 {
		opts.TickInterval = time.Second
	}
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			if len(opts.AllowedOrigins) == 0 {
				return true
			}
			return slices.Contains(opts.AllowedOrigins, r.Header.Get("Origin"))
		},
	}

	return func(c *gin.Context) {
		playerID := c.Param("id")
		if _, err := engine.GetPlayer(c.Request.Context(), playerID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"message": "Player not found"})
				return
			}
			logger.WithContext(c.Request.Context()).Error("ws player lookup failed", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.Warn("ws upgrade error", "error", err)
			return
		}

		client := NewClient(playerID, conn, engine, hub, opts.TickInterval)
		go client.Run()
	}
}
