package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/mark3labs/mcp-go/server"

	"github.com/claude/repbot/internal/config"
	"github.com/claude/repbot/internal/mcp"
	"github.com/claude/repbot/internal/storage"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file (local mode)")
	remoteURL := flag.String("url", "", "admin API base URL (remote mode, e.g. http://repbot:8080)")
	apiKey := flag.String("api-key", "", "admin API key (remote mode)")
	userID := flag.Int64("user", 0, "Telegram user ID to scope all queries to")
	flag.Parse()

	// Logs go to stderr: stdout carries the MCP stdio protocol.
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *userID == 0 {
		log.Error("-user is required")
		os.Exit(1)
	}

	var ds mcp.DataSource

	if *remoteURL != "" {
		if *apiKey == "" {
			*apiKey = os.Getenv("REPBOT_SERVER_API_KEY")
		}
		ds = mcp.NewHTTPClient(*remoteURL, *apiKey)
		log.Info("remote mode", "url", *remoteURL)
	} else {
		cfg, err := config.Load(*configPath)
		if err != nil {
			log.Error("failed to load config", "error", err)
			os.Exit(1)
		}

		db, err := storage.New(context.Background(), cfg.Database.DSN())
		if err != nil {
			log.Error("failed to connect database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		ds = db
		log.Info("local mode", "database", cfg.Database.Name)
	}

	s := mcp.New(ds, Version, log)

	bindUser := func(ctx context.Context) context.Context {
		return mcp.WithUserID(ctx, *userID)
	}

	if err := server.ServeStdio(s, server.WithStdioContextFunc(bindUser)); err != nil {
		log.Error("mcp server stopped", "error", err)
		os.Exit(1)
	}
}
