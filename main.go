// Package main provides the cardlearn CLI: the HTTP API, the Telegram bot and deck
// administration.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"

	"github.com/example/cardlearn/internal/clock"
	"github.com/example/cardlearn/internal/config"
	"github.com/example/cardlearn/internal/database"
	"github.com/example/cardlearn/internal/learning"
	"github.com/example/cardlearn/internal/logger"
	"github.com/example/cardlearn/internal/scheduler"
)

const defaultConfigPath = "cardlearn.toml"

var configPath string

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "cardlearn",
		Short:        "Spaced-repetition flashcard service",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", defaultConfigPath, "path to the TOML config file")

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newBotCmd())
	rootCmd.AddCommand(newDeckCmd())
	rootCmd.AddCommand(newEnrollCmd())
	rootCmd.AddCommand(newTokenCmd())
	return rootCmd
}

// app holds the services every command shares
type app struct {
	cfg   config.Config
	log   *logger.Logger
	db    *sqlx.DB
	clock clock.Clock

	decks    *database.DeckRepository
	cards    *database.CardRepository
	progress *database.ProgressRepository
	stats    *database.StatisticsRepository

	controller *learning.Controller
	enrollment *learning.Enrollment
}

func newApp() (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	mode := "production"
	if cfg.IsDev() {
		mode = "dev"
	}
	log, err := logger.New(mode)
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}

	db, err := database.Connect(cfg.Database())
	if err != nil {
		log.Sync()
		return nil, err
	}
	log.Info("Database connected", "type", cfg.DBType)

	a := &app{
		cfg:      cfg,
		log:      log,
		db:       db,
		clock:    clock.Real{Location: cfg.Location()},
		decks:    database.NewDeckRepository(db),
		cards:    database.NewCardRepository(db),
		progress: database.NewProgressRepository(db),
		stats:    database.NewStatisticsRepository(db),
	}
	var decoys learning.DecoyProvider
	if cfg.DecoyCount > 0 {
		decoys = learning.NewDeckDecoys(a.cards, cfg.DecoyCount)
	}
	a.controller = learning.NewController(a.progress, a.cards, decoys, a.clock, log)
	a.enrollment = learning.NewEnrollment(a.decks, a.progress, a.clock, log)
	return a, nil
}

func (a *app) Close() {
	if err := a.db.Close(); err != nil {
		a.log.Warn("Failed to close database", "error", err)
	}
	a.log.Sync()
}

func (a *app) newScheduler(reporters ...scheduler.Reporter) *scheduler.Scheduler {
	reporters = append([]scheduler.Reporter{scheduler.LogReporter{Log: a.log}}, reporters...)
	return scheduler.New(a.stats, a.clock, a.cfg.Location(), a.cfg.StatsInterval, a.log, reporters...)
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
