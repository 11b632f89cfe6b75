package http

import (
	"kushklicker/internal/config"
	"kushklicker/internal/http/handlers"
	"kushklicker/internal/http/middleware"
	"kushklicker/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RegisterRoutes wires the REST API, the live feed and the health checks onto r.
func RegisterRoutes(r *gin.Engine, h *handlers.Handler, health *handlers.HealthHandler, hub *ws.Hub, cfg *config.Config) {
	r.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.AccessLog(),
		middleware.Metrics(),
		middleware.CORS(cfg.AllowedOrigins),
	)

	// Health checks (no rate limiting)
	r.GET("/health", health.Health)
	r.GET("/healthz", health.Liveness)
	r.GET("/readyz", health.Readiness)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Gameplay limits are per player and shared by both prefixes
	limits := gameplayLimits{
		click:    middleware.PlayerRateLimit("click", cfg.ClickRateLimit, cfg.ClickRateWindow),
		tick:     middleware.PlayerRateLimit("tick", cfg.ClickRateLimit, cfg.ClickRateWindow),
		purchase: middleware.PlayerRateLimit("purchase", cfg.ClickRateLimit, cfg.ClickRateWindow),
	}
	apiRL := middleware.RedisRateLimit(cfg.APIRateLimit, cfg.APIRateWindow)

	// /api stays unversioned for the web client
	for _, prefix := range []string{"/api/v1", "/api"} {
		registerGameplayRoutes(r.Group(prefix), h, limits)

		api := r.Group(prefix)
		api.Use(apiRL)
		registerAPIRoutes(api, h)
	}
	r.GET("/api/health", health.Health)

	r.GET("/ws/players/:id", ws.HandleWS(h.Engine, hub, ws.HandlerOptions{
		AllowedOrigins: cfg.AllowedOrigins,
		TickInterval:   cfg.WSTickInterval,
	}))
}

type gameplayLimits struct {
	click    gin.HandlerFunc
	tick     gin.HandlerFunc
	purchase gin.HandlerFunc
}

// registerGameplayRoutes mounts the per-tap endpoints. They skip the per-IP
// limiter: a player clicks many times a second and is limited by player id.
func registerGameplayRoutes(api *gin.RouterGroup, h *handlers.Handler, limits gameplayLimits) {
	api.POST("/players/:id/click", limits.click, h.Click)
	api.POST("/players/:id/tick", limits.tick, h.Tick)
	api.POST("/players/:id/upgrades", limits.purchase, h.PurchaseUpgrade)
}

func registerAPIRoutes(api *gin.RouterGroup, h *handlers.Handler) {
	players := api.Group("/players")
	{
		players.POST("", h.CreatePlayer)
		players.GET("/:id", h.GetPlayer)
		players.PATCH("/:id", h.UpdatePlayer)
		players.GET("/:id/upgrades", h.PlayerUpgrades)
		players.GET("/:id/upgrades/:upgradeId/cost", h.UpgradeCost)
		players.GET("/:id/achievements", h.PlayerAchievements)
	}

	api.GET("/leaderboard", h.GetLeaderboard)
	api.GET("/upgrades", h.ListUpgrades)
	api.GET("/achievements", h.ListAchievements)
}
