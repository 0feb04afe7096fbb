package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"furnistore/storefront/internal/config"
	"furnistore/storefront/internal/container"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
)

func main() {
	flags := newFlagSet()
	if err := flags.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			os.Exit(0)
		}
		os.Exit(2)
	}

	// Load configuration using viper
	cfg, err := config.Load(flags.FlagSet)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	setupLogging(cfg.Log)
	log.Debugf("Configuration loaded, backend at %s", cfg.API.BaseURL)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize container with all dependencies
	app, err := container.New(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}

	err = run(ctx, app, flags)
	app.Close()
	if err != nil {
		fmt.Fprintln(os.Stderr, displayError(err))
		os.Exit(1)
	}
}

func setupLogging(cfg config.LogConfig) {
	log.SetOutput(os.Stderr)

	level, err := log.ParseLevel(cfg.Level)
	if err != nil {
		log.Warnf("⚠️ Unknown log level %q, using info", cfg.Level)
		level = log.InfoLevel
	}
	log.SetLevel(level)

	if cfg.Format == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
}
