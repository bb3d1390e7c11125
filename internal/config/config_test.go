package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("defaults when file is missing", func(t *testing.T) {
		t.Setenv("PORT", "")
		cfg, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
		require.NoError(t, err)

		assert.Equal(t, "5175", cfg.Server.Port)
		assert.Equal(t, 10.0, cfg.Server.RateLimit)
		assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
		assert.Equal(t, "info", cfg.Log.Level)
		assert.Equal(t, 5*time.Minute, cfg.Game.DuelRound)
		assert.Equal(t, 10*time.Second, cfg.Game.AICountdown)
		assert.Equal(t, 30*time.Minute, cfg.Game.PlayerTTL)
		assert.Equal(t, 4, cfg.Game.SharedMaxPlayers)
		assert.Equal(t, 256, cfg.Store.Buffer)
		assert.Empty(t, cfg.Seat.Secret)
	})

	t.Run("yaml file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "server.yaml")
		yamlContent := `
server:
  port: "9000"
game:
  duelRound: 2m
  sharedMaxPlayers: 6
log:
  format: pretty
`
		require.NoError(t, os.WriteFile(path, []byte(yamlContent), 0o644))

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "9000", cfg.Server.Port)
		assert.Equal(t, 2*time.Minute, cfg.Game.DuelRound)
		assert.Equal(t, 6, cfg.Game.SharedMaxPlayers)
		assert.Equal(t, "pretty", cfg.Log.Format)
	})

	t.Run("env overrides file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "server.yaml")
		require.NoError(t, os.WriteFile(path, []byte("server:\n  port: \"9000\"\n"), 0o644))
		t.Setenv("PORT", "7000")
		t.Setenv("PLAYER_TTL", "1h")
		t.Setenv("SEAT_SECRET", "s3cret")
		t.Setenv("DB_PATH", "./data/results.db")

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "7000", cfg.Server.Port)
		assert.Equal(t, time.Hour, cfg.Game.PlayerTTL)
		assert.Equal(t, "s3cret", cfg.Seat.Secret)
		assert.Equal(t, "./data/results.db", cfg.Store.DSN)
	})

	t.Run("invalid values", func(t *testing.T) {
		t.Setenv("SHARED_MAX_GUESSES", "20")
		_, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
		assert.Error(t, err)
	})
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server: ServerSettings{Port: "5175", RateLimit: 10, RateLimitBurst: 20},
			Log:    LogSettings{Level: "info", Format: "json"},
			Store:  StoreSettings{Buffer: 16},
			Game: GameSettings{
				DuelRound: time.Minute, AICountdown: time.Second, PlayerTTL: time.Minute,
				SweepInterval: time.Minute, SharedMaxPlayers: 4, SharedMaxGuesses: 6,
				EventRate: 5, EventBurst: 10,
			},
		}
	}
	require.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"no port", func(c *Config) { c.Server.Port = "" }},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }},
		{"bad format", func(c *Config) { c.Log.Format = "xml" }},
		{"zero duel round", func(c *Config) { c.Game.DuelRound = 0 }},
		{"shared needs two", func(c *Config) { c.Game.SharedMaxPlayers = 1 }},
		{"no event burst", func(c *Config) { c.Game.EventBurst = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			assert.Error(t, c.Validate())
		})
	}
}
