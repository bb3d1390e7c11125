// main.go
//
// Entry point for the versus room server.
// Loads .env and configuration, builds the word dictionary, results ledger,
// room engine, and HTTP/websocket server, then serves until SIGINT/SIGTERM.

package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordle/apps/versus-server/internal/config"
	"github.com/robalobadob/wordle/apps/versus-server/internal/httpserver"
	"github.com/robalobadob/wordle/apps/versus-server/internal/rooms"
	"github.com/robalobadob/wordle/apps/versus-server/internal/seat"
	"github.com/robalobadob/wordle/apps/versus-server/internal/store"
	"github.com/robalobadob/wordle/apps/versus-server/internal/words"
)

func main() {
	configPath := flag.String("config", "", "path to a config file (yaml)")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	setupLogging(cfg.Log)

	dict, err := words.Load(cfg.Words.AnswersFile, cfg.Words.AllowedFile)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load word lists")
	}
	answers, allowed := dict.Stats()
	log.Info().Int("answers", answers).Int("allowed", allowed).Msg("word lists loaded")

	results, err := openStore(cfg.Store)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open results store")
	}
	writer := store.NewWriter(results, cfg.Store.Buffer)
	writer.Start()

	hub := httpserver.NewHub()
	engine := rooms.NewEngine(rooms.Options{
		DuelRound:        cfg.Game.DuelRound,
		AICountdown:      cfg.Game.AICountdown,
		PlayerTTL:        cfg.Game.PlayerTTL,
		SharedMaxPlayers: cfg.Game.SharedMaxPlayers,
		SharedMaxGuesses: cfg.Game.SharedMaxGuesses,
	}, rooms.Deps{
		Dict:        dict,
		Broadcaster: hub,
		Recorder:    writer,
	}, cfg.Game.SweepInterval)

	seats := seat.NewSigner(cfg.Seat.Secret, cfg.Seat.TTL)
	if !seats.Enabled() {
		log.Warn().Msg("SEAT_SECRET not set, resume is not token-checked")
	}

	srv := httpserver.New(httpserver.Options{
		ClientOrigin:   cfg.Server.ClientOrigin,
		RateLimit:      cfg.Server.RateLimit,
		RateLimitBurst: cfg.Server.RateLimitBurst,
		EventRate:      cfg.Game.EventRate,
		EventBurst:     cfg.Game.EventBurst,
	}, httpserver.Deps{
		Engine:  engine,
		Hub:     hub,
		Dict:    dict,
		Results: results,
		Seats:   seats,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	engineCtx, stopEngine := context.WithCancel(context.Background())
	go engine.Run(engineCtx)

	httpSrv := &http.Server{Addr: ":" + cfg.Server.Port, Handler: srv.Router()}
	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("starting versus-server")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server exited")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("http shutdown")
	}

	// The engine is the only Recorder caller, so it must stop before the writer closes.
	stopEngine()
	<-engine.Done()
	writer.Close()
	if err := results.Close(); err != nil {
		log.Warn().Err(err).Msg("close results store")
	}
}

func setupLogging(cfg config.LogSettings) {
	if lvl, err := zerolog.ParseLevel(cfg.Level); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}
	if strings.EqualFold(cfg.Format, "pretty") {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}

func openStore(cfg config.StoreSettings) (store.Store, error) {
	if cfg.DSN == "" {
		log.Info().Msg("results kept in memory")
		return store.NewMemoryStore(1000), nil
	}
	st, err := store.OpenSQLite(cfg.DSN)
	if err != nil {
		return nil, err
	}
	log.Info().Str("dsn", cfg.DSN).Msg("results stored in sqlite")
	return st, nil
}
