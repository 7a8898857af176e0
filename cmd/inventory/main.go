// Package main runs the interactive inventory tracker.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/abgdnv/inventory/internal/config"
	"github.com/abgdnv/inventory/internal/platform/bootstrap"
	"github.com/abgdnv/inventory/internal/product/app"
	"golang.org/x/sync/errgroup"
)

func main() {
	configFile := flag.String("config", config.DefaultConfigFile, "path to the yaml configuration file")
	dataFile := flag.String("file", "", "data file to open, overrides store.path")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *configFile, *dataFile); err != nil {
		log.Printf("application run failed: %v", err)
		os.Exit(1)
	}
}

// run loads the configuration, opens the data file and runs the menu until the user quits or a signal arrives.
func run(ctx context.Context, configFile, dataFile string) error {
	cfg, err := config.Load(config.Options{ConfigFile: configFile})
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if dataFile != "" {
		cfg.Store.Path = dataFile
	}

	logger, closeLog := bootstrap.NewLogger(cfg.Log.Level, cfg.Log.File)
	defer closeLog()
	slog.SetDefault(logger)
	logger.Debug("Configuration loaded", "config", cfg.String())

	deps, err := app.SetupDependencies(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to open inventory: %w", err)
	}
	m := app.SetupMenu(deps, os.Stdin, os.Stdout)

	sessionCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gCtx := errgroup.WithContext(sessionCtx)

	// Run the menu; quitting ends the session
	g.Go(func() error {
		defer cancel()
		return m.Run(gCtx)
	})
	// Report an interrupted session
	g.Go(func() error {
		<-gCtx.Done()
		// ctx is only done here if a signal arrived
		if ctx.Err() != nil {
			fmt.Fprintln(os.Stdout, "\nInterrupted, exiting.")
			logger.Info("Session interrupted by signal")
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("menu stopped: %w", err)
	}
	logger.Info("Session ended", "file", deps.ProductService.CurrentFile())
	return nil
}
