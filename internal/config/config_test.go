package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// missing points godotenv at a file that does not exist so a developer's
// local .env never leaks into the tests.
func missing(t *testing.T) string {
	return filepath.Join(t.TempDir(), "absent.env")
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(missing(t))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 10*time.Second, cfg.MatchTimeout)
	assert.Equal(t, 30*time.Second, cfg.ReconnectWindow)
	assert.True(t, cfg.PersistGames)
	assert.Equal(t, 5*time.Second, cfg.SaveTimeout)
	assert.Empty(t, cfg.DatabaseURL)
	assert.Equal(t, 25, cfg.DBMaxOpenConns)
	assert.Equal(t, 5*time.Minute, cfg.DBConnMaxLifetime)
	assert.Zero(t, cfg.GameRetention)
	assert.Equal(t, time.Hour, cfg.CleanupInterval)
	assert.Empty(t, cfg.RedisURL)
	assert.Equal(t, "game-analytics", cfg.AnalyticsStream)
	assert.Equal(t, 256, cfg.AnalyticsBuffer)
	assert.Equal(t, 20, cfg.LeaderboardLimit)
	assert.Equal(t, []string{"http://localhost:5173", "http://localhost:3000"}, cfg.AllowedOrigins)
}

func TestLoadConfig_FromEnv(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("MATCH_TIMEOUT", "3s")
	t.Setenv("RECONNECT_WINDOW", "1m")
	t.Setenv("PERSIST_GAMES", "false")
	t.Setenv("DATABASE_URL", "sqlite://games.db")
	t.Setenv("ALLOWED_ORIGINS", " https://a.example , ,https://b.example")

	cfg, err := LoadConfig(missing(t))
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, 3*time.Second, cfg.MatchTimeout)
	assert.Equal(t, time.Minute, cfg.ReconnectWindow)
	assert.False(t, cfg.PersistGames)
	assert.Equal(t, "sqlite://games.db", cfg.DatabaseURL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
}

func TestLoadConfig_DotEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("LEADERBOARD_LIMIT=5\nANALYTICS_STREAM=c4-events\n"), 0o600))
	t.Cleanup(func() {
		os.Unsetenv("LEADERBOARD_LIMIT")
		os.Unsetenv("ANALYTICS_STREAM")
	})

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.LeaderboardLimit)
	assert.Equal(t, "c4-events", cfg.AnalyticsStream)
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := map[string]string{
		"MATCH_TIMEOUT":    "0s",
		"RECONNECT_WINDOW": "-1s",
		"SAVE_TIMEOUT":     "0s",
		"ANALYTICS_BUFFER": "0",
		"GAME_RETENTION":   "-1h",
		"CLEANUP_INTERVAL": "0s",
	}

	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			_, err := LoadConfig(missing(t))
			assert.Error(t, err)
		})
	}

	t.Run("unparsable duration", func(t *testing.T) {
		t.Setenv("MATCH_TIMEOUT", "soon")
		_, err := LoadConfig(missing(t))
		assert.Error(t, err)
	})
}
