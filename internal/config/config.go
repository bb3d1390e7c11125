// internal/config/config.go

package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Config is the process configuration. Loading is handled by viper in
// viper_config.go.
type Config struct {
	Server ServerSettings `mapstructure:"server"`
	Log    LogSettings    `mapstructure:"log"`
	Words  WordsSettings  `mapstructure:"words"`
	Store  StoreSettings  `mapstructure:"store"`
	Seat   SeatSettings   `mapstructure:"seat"`
	Game   GameSettings   `mapstructure:"game"`
}

// ServerSettings configures the HTTP listener.
type ServerSettings struct {
	Port            string        `mapstructure:"port"`
	ClientOrigin    string        `mapstructure:"clientorigin"`
	RateLimit       float64       `mapstructure:"ratelimit"` // requests per second per IP
	RateLimitBurst  int           `mapstructure:"ratelimitburst"`
	ShutdownTimeout time.Duration `mapstructure:"shutdowntimeout"`
}

type LogSettings struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json | pretty
}

// WordsSettings points at optional word list files. Empty means embedded lists.
type WordsSettings struct {
	AnswersFile string `mapstructure:"answersfile"`
	AllowedFile string `mapstructure:"allowedfile"`
}

// StoreSettings selects the results ledger. An empty DSN keeps results in memory.
type StoreSettings struct {
	DSN    string `mapstructure:"dsn"`
	Buffer int    `mapstructure:"buffer"`
}

// SeatSettings configures seat tokens. An empty secret disables them.
type SeatSettings struct {
	Secret string        `mapstructure:"secret"`
	TTL    time.Duration `mapstructure:"ttl"`
}

// GameSettings are the room engine tunables.
type GameSettings struct {
	DuelRound        time.Duration `mapstructure:"duelround"`
	AICountdown      time.Duration `mapstructure:"aicountdown"`
	PlayerTTL        time.Duration `mapstructure:"playerttl"`
	SweepInterval    time.Duration `mapstructure:"sweepinterval"`
	SharedMaxPlayers int           `mapstructure:"sharedmaxplayers"`
	SharedMaxGuesses int           `mapstructure:"sharedmaxguesses"`
	EventRate        float64       `mapstructure:"eventrate"` // events per second per connection
	EventBurst       int           `mapstructure:"eventburst"`
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port must be set")
	}
	if c.Server.RateLimit <= 0 || c.Server.RateLimitBurst < 1 {
		return fmt.Errorf("rate limit must be positive")
	}
	if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log level %q: %w", c.Log.Level, err)
	}
	switch strings.ToLower(c.Log.Format) {
	case "json", "pretty":
	default:
		return fmt.Errorf("log format must be json or pretty, got %q", c.Log.Format)
	}
	if c.Store.Buffer < 1 {
		return fmt.Errorf("store buffer must be at least 1")
	}

	g := c.Game
	if g.DuelRound <= 0 || g.AICountdown <= 0 || g.PlayerTTL <= 0 || g.SweepInterval <= 0 {
		return fmt.Errorf("game durations must be positive")
	}
	if g.SharedMaxPlayers < 2 {
		return fmt.Errorf("sharedMaxPlayers must be at least 2")
	}
	if g.SharedMaxGuesses < 2 || g.SharedMaxGuesses > 12 {
		return fmt.Errorf("sharedMaxGuesses must be between 2 and 12")
	}
	if g.EventRate <= 0 || g.EventBurst < 1 {
		return fmt.Errorf("event rate must be positive")
	}
	return nil
}
