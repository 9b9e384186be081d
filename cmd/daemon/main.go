package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/freemaltson/whiskynights/internal/api"
	"github.com/freemaltson/whiskynights/internal/catalog"
	"github.com/freemaltson/whiskynights/internal/config"
	"github.com/freemaltson/whiskynights/internal/library"
	wnlog "github.com/freemaltson/whiskynights/internal/log"
	"github.com/freemaltson/whiskynights/internal/registry"
	"github.com/freemaltson/whiskynights/internal/session"
	"github.com/freemaltson/whiskynights/internal/store"
)

var (
	version   = "v1.0.0"
	commit    = "none"
	buildDate = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("%s (commit: %s, built: %s)\n", version, commit, buildDate)
		os.Exit(0)
	}

	wnlog.Configure(wnlog.Config{Service: "whiskynights"})
	logger := wnlog.WithComponent("daemon")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.FromEnv()
	group, err := config.LoadGroup(cfg.GroupFile)
	if err != nil {
		logger.Fatal().Err(err).Str("path", cfg.GroupFile).Msg("failed to load group file")
	}
	roundSize := cfg.RoundSize
	if group.RoundSize > 0 {
		roundSize = group.RoundSize
	}

	reg := registry.New(store.NewFileStore(cfg.DataFile), registry.Config{
		Resolver:  session.NewResolver(group.Aliases),
		RoundSize: roundSize,
	})

	lib := library.Open(cfg.LibraryFile)
	go func() {
		if err := lib.Watch(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Warn().Err(err).Msg("library watcher stopped")
		}
	}()

	cat := catalog.New(cfg.CatalogBaseURL, cfg.CatalogTimeout)
	server := api.New(reg, lib, cat, cfg.StaticDir)

	httpServer := &http.Server{
		Addr:              cfg.Listen,
		Handler:           server.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		// Enrichment walks the whole registry with one catalog fetch per
		// record; give it room before cutting the response off.
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  2 * time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().
			Str("addr", cfg.Listen).
			Str("version", version).
			Int("round_size", roundSize).
			Msg("whiskynights listening")
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info().Msg("shutdown signal received")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}
	logger.Info().Msg("whiskynights stopped")
}
