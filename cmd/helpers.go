package cmd

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"

	"github.com/ziadkadry99/promptforge/internal/config"
	"github.com/ziadkadry99/promptforge/internal/credentials"
	"github.com/ziadkadry99/promptforge/internal/db"
	"github.com/ziadkadry99/promptforge/internal/library"
	"github.com/ziadkadry99/promptforge/internal/llm"
	"github.com/ziadkadry99/promptforge/internal/refine"
)

// app bundles the wired dependencies every command needs.
type app struct {
	cfg     *config.Config
	db      *db.DB
	logger  *log.Logger
	library *library.Store
	creds   *credentials.Store
	engine  *refine.Engine
}

// openApp loads config, opens the database, and wires the stores and the
// refinement engine. Callers must Close it.
func openApp() (*app, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	logger := newLogger(cfg.LogLevel)

	database, err := db.Open(cfg.DatabasePath())
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	lib := library.NewStore(database)
	creds := credentials.NewStore(database)
	engine := refine.NewEngine(creds, llm.NewClient(logger), logger, refine.Options{
		Temperature:     cfg.Temperature,
		MaxAnswerTokens: cfg.MaxAnswerTokens,
		ModelTimeout:    cfg.ModelTimeout,
	})

	return &app{
		cfg:     cfg,
		db:      database,
		logger:  logger,
		library: lib,
		creds:   creds,
		engine:  engine,
	}, nil
}

func (a *app) Close() {
	a.db.Close()
}

// newLogger builds the CLI logger on stderr. Stdout stays clean for
// command output and the MCP protocol.
func newLogger(level string) *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
	})
	if verbose {
		logger.SetLevel(log.DebugLevel)
		return logger
	}
	if lvl, err := log.ParseLevel(level); err == nil {
		logger.SetLevel(lvl)
	}
	return logger
}
