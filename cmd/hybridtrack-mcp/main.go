// hybridtrack-mcp serves the tracker over MCP on stdio. In local mode it
// opens the SQLite snapshot store directly; with -remote it proxies a
// running server's REST API instead (useful over Tailscale).
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/claude/hybridtrack/internal/badges"
	hmcp "github.com/claude/hybridtrack/internal/mcp"
	"github.com/claude/hybridtrack/internal/program"
	"github.com/claude/hybridtrack/internal/storage"
	"github.com/claude/hybridtrack/internal/tracker"
	"github.com/mark3labs/mcp-go/server"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	dbPath := flag.String("db", "data/hybridtrack.db", "path to the SQLite snapshot db (local mode)")
	remote := flag.String("remote", "", "base URL of a running server (remote mode, e.g. http://hybridtrack:80)")
	apiKey := flag.String("api-key", os.Getenv("HYBRIDTRACK_AUTH_API_KEY"), "API key for mutating calls in remote mode")
	flag.Parse()

	// stdout carries the MCP protocol; log to stderr.
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	var ds hmcp.DataSource
	if *remote != "" {
		ds = hmcp.NewHTTPClient(*remote, *apiKey)
		log.Info("remote mode", "base_url", *remote)
	} else {
		snapStore, err := storage.OpenSQLite(*dbPath)
		if err != nil {
			log.Error("failed to open snapshot db", "error", err)
			os.Exit(1)
		}
		defer snapStore.Close()

		programCatalog, err := program.LoadCatalog()
		if err != nil {
			log.Error("failed to load program catalog", "error", err)
			os.Exit(1)
		}

		store, err := tracker.New(context.Background(), snapStore,
			badges.NewEvaluator(badges.DefaultCatalog()), programCatalog, time.Now, log)
		if err != nil {
			log.Error("failed to restore state", "error", err)
			os.Exit(1)
		}
		ds = hmcp.Local{Store: store}
		log.Info("local mode", "db", *dbPath)
	}

	s := hmcp.New(ds, Version, log)
	if err := server.ServeStdio(s); err != nil {
		log.Error("mcp server error", "error", err)
		os.Exit(1)
	}
}
