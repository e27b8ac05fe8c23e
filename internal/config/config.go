package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Port            string        `env:"PORT" envDefault:"8080"`
	MatchTimeout    time.Duration `env:"MATCH_TIMEOUT" envDefault:"10s"`
	ReconnectWindow time.Duration `env:"RECONNECT_WINDOW" envDefault:"30s"`
	PersistGames    bool          `env:"PERSIST_GAMES" envDefault:"true"`
	SaveTimeout     time.Duration `env:"SAVE_TIMEOUT" envDefault:"5s"`

	// Empty disables persistence.
	DatabaseURL       string        `env:"DATABASE_URL"`
	DBMaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS" envDefault:"25"`
	DBMaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS" envDefault:"25"`
	DBConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"5m"`

	// Zero keeps games forever.
	GameRetention   time.Duration `env:"GAME_RETENTION" envDefault:"0s"`
	CleanupInterval time.Duration `env:"CLEANUP_INTERVAL" envDefault:"1h"`

	// Empty keeps analytics in the process log.
	RedisURL        string `env:"REDIS_URL"`
	RedisPassword   string `env:"REDIS_PASSWORD"`
	AnalyticsStream string `env:"ANALYTICS_STREAM" envDefault:"game-analytics"`
	AnalyticsBuffer int    `env:"ANALYTICS_BUFFER" envDefault:"256"`

	AllowedOrigins   []string `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:5173,http://localhost:3000"`
	LeaderboardLimit int      `env:"LEADERBOARD_LIMIT" envDefault:"20"`
}

// LoadConfig reads a .env file when one is present, then the environment.
func LoadConfig(files ...string) (*Config, error) {
	if err := godotenv.Load(files...); err != nil {
		log.Println("[CONFIG] No .env file found, using environment")
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	origins := cfg.AllowedOrigins[:0]
	for _, o := range cfg.AllowedOrigins {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	cfg.AllowedOrigins = origins

	return &cfg, nil
}

func (c *Config) validate() error {
	if c.MatchTimeout <= 0 {
		return fmt.Errorf("MATCH_TIMEOUT must be positive, got %s", c.MatchTimeout)
	}
	if c.ReconnectWindow <= 0 {
		return fmt.Errorf("RECONNECT_WINDOW must be positive, got %s", c.ReconnectWindow)
	}
	if c.SaveTimeout <= 0 {
		return fmt.Errorf("SAVE_TIMEOUT must be positive, got %s", c.SaveTimeout)
	}
	if c.GameRetention < 0 {
		return fmt.Errorf("GAME_RETENTION must not be negative, got %s", c.GameRetention)
	}
	if c.CleanupInterval <= 0 {
		return fmt.Errorf("CLEANUP_INTERVAL must be positive, got %s", c.CleanupInterval)
	}
	if c.AnalyticsBuffer <= 0 {
		return fmt.Errorf("ANALYTICS_BUFFER must be positive, got %d", c.AnalyticsBuffer)
	}
	return nil
}
