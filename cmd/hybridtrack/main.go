package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/claude/hybridtrack/internal/badges"
	"github.com/claude/hybridtrack/internal/config"
	"github.com/claude/hybridtrack/internal/program"
	"github.com/claude/hybridtrack/internal/server"
	"github.com/claude/hybridtrack/internal/storage"
	"github.com/claude/hybridtrack/internal/tracker"
	"tailscale.com/tsnet"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	badgePath := flag.String("badge-catalog", "", "optional YAML badge catalog overriding the built-in one")
	migrateOnly := flag.Bool("migrate-only", false, "run migrations and exit (postgres only)")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	log.Info("HybridTrack starting", "version", Version)

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	var snapStore storage.SnapshotStore
	switch cfg.Storage.Driver {
	case "postgres":
		dsn := cfg.Storage.Postgres.DSN()
		if err := storage.RunMigrations(dsn, "migrations"); err != nil {
			log.Error("migration failed", "error", err)
			os.Exit(1)
		}
		log.Info("migrations applied")
		if *migrateOnly {
			log.Info("migrate-only: exiting")
			return
		}
		snapStore, err = storage.OpenPostgres(ctx, dsn)
		if err != nil {
			log.Error("failed to connect database", "error", err)
			os.Exit(1)
		}
	default:
		if *migrateOnly {
			log.Info("migrate-only is a no-op for sqlite: exiting")
			return
		}
		snapStore, err = storage.OpenSQLite(cfg.Storage.SQLite.Path)
		if err != nil {
			log.Error("failed to open snapshot db", "error", err)
			os.Exit(1)
		}
	}
	defer snapStore.Close()
	log.Info("snapshot store ready", "driver", cfg.Storage.Driver)

	badgeCatalog := badges.DefaultCatalog()
	if *badgePath != "" {
		badgeCatalog, err = badges.LoadCatalog(*badgePath)
		if err != nil {
			log.Error("failed to load badge catalog", "error", err)
			os.Exit(1)
		}
		log.Info("badge catalog loaded", "path", *badgePath, "badges", len(badgeCatalog))
	}

	programCatalog, err := program.LoadCatalog()
	if err != nil {
		log.Error("failed to load program catalog", "error", err)
		os.Exit(1)
	}

	store, err := tracker.New(ctx, snapStore, badges.NewEvaluator(badgeCatalog), programCatalog, time.Now, log)
	if err != nil {
		log.Error("failed to restore state", "error", err)
		os.Exit(1)
	}

	srv := server.New(store, cfg.Auth.APIKey, log)

	// Start server over tsnet or plain TCP
	var listener net.Listener
	if cfg.Tailscale.Enabled {
		tsServer := &tsnet.Server{
			Hostname: cfg.Tailscale.Hostname,
			Dir:      cfg.Tailscale.StateDir,
		}
		if err := tsServer.Start(); err != nil {
			log.Error("tsnet start failed", "error", err)
			os.Exit(1)
		}
		defer tsServer.Close()

		listener, err = tsServer.Listen("tcp", ":80")
		if err != nil {
			log.Error("tsnet listen failed", "error", err)
			os.Exit(1)
		}
		log.Info("tsnet server starting", "hostname", cfg.Tailscale.Hostname)
	} else {
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		listener, err = net.Listen("tcp", addr)
		if err != nil {
			log.Error("listen failed", "addr", addr, "error", err)
			os.Exit(1)
		}
		log.Info("server starting", "addr", addr, "mode", "dev (no tailscale)")
	}

	httpSrv := &http.Server{Handler: srv}

	go func() {
		if err := httpSrv.Serve(listener); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Info("shutting down", "signal", sig)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", "error", err)
	}
	log.Info("server stopped")
}
