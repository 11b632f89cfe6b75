package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	AppPort    string `envconfig:"APP_PORT" default:"8080"`
	AppVersion string `envconfig:"APP_VERSION" default:"dev"`

	// empty selects the in-memory store
	DatabaseURL string `envconfig:"DATABASE_URL"`

	RedisAddr     string `envconfig:"REDIS_ADDR"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	LogJSON  bool   `envconfig:"LOG_JSON" default:"false"`

	// Bots start only when their token is set
	TelegramBotToken string `envconfig:"TELEGRAM_BOT_TOKEN"`
	DiscordBotToken  string `envconfig:"DISCORD_BOT_TOKEN"`
	GameURL          string `envconfig:"GAME_URL" default:"http://localhost:5000"`

	APIRateLimit    int           `envconfig:"API_RATE_LIMIT" default:"120"`
	APIRateWindow   time.Duration `envconfig:"API_RATE_WINDOW" default:"1m"`
	ClickRateLimit  int           `envconfig:"CLICK_RATE_LIMIT" default:"50"`
	ClickRateWindow time.Duration `envconfig:"CLICK_RATE_WINDOW" default:"1s"`

	// comma separated, empty allows any origin
	AllowedOrigins []string `envconfig:"ALLOWED_ORIGINS"`

	EnforceUnlockRequirement bool          `envconfig:"ENFORCE_UNLOCK_REQUIREMENT" default:"false"`
	WSTickInterval           time.Duration `envconfig:"WS_TICK_INTERVAL" default:"1s"`
	LeaderboardResync        string        `envconfig:"LEADERBOARD_RESYNC" default:"@every 5m"`
}

// Validate rejects settings the server cannot run with
func (c *Config) Validate() error {
	if strings.TrimSpace(c.AppPort) == "" {
		return fmt.Errorf("APP_PORT must not be empty")
	}
	if c.APIRateLimit <= 0 || c.APIRateWindow <= 0 {
		return fmt.Errorf("API_RATE_LIMIT and API_RATE_WINDOW must be positive")
	}
	if c.ClickRateLimit <= 0 || c.ClickRateWindow <= 0 {
		return fmt.Errorf("CLICK_RATE_LIMIT and CLICK_RATE_WINDOW must be positive")
	}
	if c.WSTickInterval <= 0 {
		return fmt.Errorf("WS_TICK_INTERVAL must be positive")
	}
	return nil
}

// Load reads .env (if present) and then the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	for i, origin := range cfg.AllowedOrigins {
		cfg.AllowedOrigins[i] = strings.TrimSpace(origin)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// UsePostgres reports whether a database is configured
func (c *Config) UsePostgres() bool {
	return c.DatabaseURL != ""
}
