// internal/config/viper_config.go
//
// Viper loader for Config. Deployments set the short env names bound below;
// the yaml file is optional.

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/spf13/viper"
)

// Load reads configuration using Viper.
// Priority order: Environment variables > Config file > Defaults
func Load(configPath string) (*Config, error) {
	v := viper.New()

	v.SetConfigName("server")
	v.SetConfigType("yaml")
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Short names the deployment already uses.
	bind := map[string]string{
		"server.port":            "PORT",
		"server.clientorigin":    "CLIENT_ORIGIN",
		"server.ratelimit":       "RATE_LIMIT",
		"server.ratelimitburst":  "RATE_LIMIT_BURST",
		"server.shutdowntimeout": "SHUTDOWN_TIMEOUT",
		"log.level":              "LOG_LEVEL",
		"log.format":             "LOG_FORMAT",
		"words.answersfile":      "WORDS_ANSWERS_FILE",
		"words.allowedfile":      "WORDS_ALLOWED_FILE",
		"store.dsn":              "DB_PATH",
		"store.buffer":           "STORE_BUFFER",
		"seat.secret":            "SEAT_SECRET",
		"seat.ttl":               "SEAT_TTL",
		"game.duelround":         "DUEL_ROUND",
		"game.aicountdown":       "AI_COUNTDOWN",
		"game.playerttl":         "PLAYER_TTL",
		"game.sweepinterval":     "SWEEP_INTERVAL",
		"game.sharedmaxplayers":  "SHARED_MAX_PLAYERS",
		"game.sharedmaxguesses":  "SHARED_MAX_GUESSES",
		"game.eventrate":         "EVENT_RATE",
		"game.eventburst":        "EVENT_BURST",
	}
	for key, env := range bind {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("bind %s: %w", key, err)
		}
	}

	v.SetDefault("server.port", "5175")
	v.SetDefault("server.clientorigin", "http://localhost:5173")
	v.SetDefault("server.ratelimit", 10.0)
	v.SetDefault("server.ratelimitburst", 20)
	v.SetDefault("server.shutdowntimeout", "10s")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("words.answersfile", "")
	v.SetDefault("words.allowedfile", "")

	v.SetDefault("store.dsn", "")
	v.SetDefault("store.buffer", 256)

	v.SetDefault("seat.secret", "")
	v.SetDefault("seat.ttl", "24h")

	v.SetDefault("game.duelround", "5m")
	v.SetDefault("game.aicountdown", "10s")
	v.SetDefault("game.playerttl", "30m")
	v.SetDefault("game.sweepinterval", "5m")
	v.SetDefault("game.sharedmaxplayers", 4)
	v.SetDefault("game.sharedmaxguesses", 6)
	v.SetDefault("game.eventrate", 5.0)
	v.SetDefault("game.eventburst", 10)

	// The config file is optional.
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
