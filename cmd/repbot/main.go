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

	"tailscale.com/tsnet"

	"github.com/claude/repbot/internal/bot"
	"github.com/claude/repbot/internal/catalog"
	"github.com/claude/repbot/internal/config"
	"github.com/claude/repbot/internal/nlp"
	"github.com/claude/repbot/internal/server"
	"github.com/claude/repbot/internal/speech"
	"github.com/claude/repbot/internal/storage"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	migrateOnly := flag.Bool("migrate-only", false, "run migrations and exit")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	log.Info("RepBot starting", "version", Version)

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Run migrations
	dsn := cfg.Database.DSN()
	if err := storage.RunMigrations(dsn, "migrations"); err != nil {
		log.Error("migration failed", "error", err)
		os.Exit(1)
	}
	log.Info("migrations applied")

	if *migrateOnly {
		log.Info("migrate-only: exiting")
		return
	}

	// Connect database
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := storage.New(ctx, dsn)
	if err != nil {
		log.Error("failed to connect database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	log.Info("database connected")

	// Seed the exercise catalog (idempotent — ON CONFLICT DO NOTHING)
	cat, err := catalog.Load()
	if err != nil {
		log.Error("failed to load exercise catalog", "error", err)
		os.Exit(1)
	}
	seeded, err := db.SeedExercises(ctx, cat.Models())
	if err != nil {
		log.Error("exercise seeding failed", "error", err)
		os.Exit(1)
	}
	if seeded > 0 {
		log.Info("exercise catalog seeded", "added", seeded)
	}

	// Per-chat conversation state
	state, err := bot.OpenStateDB(cfg.State.Dir)
	if err != nil {
		log.Error("failed to open state database", "error", err)
		os.Exit(1)
	}
	defer state.Close()

	parser := nlp.NewParser(cfg.OpenAI.APIKey, cfg.OpenAI.ChatModel, log)
	transcriber := speech.NewTranscriber(cfg.OpenAI.APIKey, cfg.OpenAI.WhisperModel, log)

	b, err := bot.New(cfg.Telegram.Token, db, state, parser, transcriber, cat, log)
	if err != nil {
		log.Error("failed to start telegram bot", "error", err)
		os.Exit(1)
	}

	// Optional admin API — tsnet or plain HTTP
	var httpSrv *http.Server
	if cfg.Server.Enabled {
		srv := server.New(db, cfg.Server.APIKey, log)

		var listener net.Listener
		var tsServer *tsnet.Server

		if cfg.Tailscale.Enabled {
			tsServer = &tsnet.Server{
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
			log.Info("admin API starting", "hostname", cfg.Tailscale.Hostname, "mode", "tsnet")
		} else {
			addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
			listener, err = net.Listen("tcp", addr)
			if err != nil {
				log.Error("listen failed", "addr", addr, "error", err)
				os.Exit(1)
			}
			log.Info("admin API starting", "addr", addr)
		}

		httpSrv = &http.Server{Handler: srv}
		go func() {
			if err := httpSrv.Serve(listener); err != nil && err != http.ErrServerClosed {
				log.Error("admin API error", "error", err)
				os.Exit(1)
			}
		}()
	}

	// Run the bot until a signal arrives
	botDone := make(chan error, 1)
	go func() {
		botDone <- b.Run(ctx)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		log.Info("shutting down", "signal", sig)
	case err := <-botDone:
		if err != nil {
			log.Error("bot stopped", "error", err)
		}
	}

	cancel()

	if httpSrv != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			log.Error("shutdown error", "error", err)
		}
	}
	log.Info("stopped")
}
