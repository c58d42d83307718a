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

	"github.com/claude/repcoach/internal/catalog"
	"github.com/claude/repcoach/internal/config"
	repmcp "github.com/claude/repcoach/internal/mcp"
	"github.com/claude/repcoach/internal/server"
	"github.com/claude/repcoach/internal/service"
	"github.com/claude/repcoach/internal/storage"
	"github.com/joho/godotenv"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"tailscale.com/tsnet"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	migrateOnly := flag.Bool("migrate-only", false, "run migrations and exit")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	log.Info("RepCoach starting", "version", Version)

	// .env is optional
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warn("reading .env", "error", err)
	}

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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect database
	db, err := storage.New(ctx, dsn)
	if err != nil {
		log.Error("failed to connect database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	log.Info("database connected")

	// Exercise catalog: a YAML seed file (optionally hot-reloaded) or the
	// exercises table, seeded with the built-in set.
	var exercises service.Catalog = db
	if cfg.Catalog.SeedFile != "" {
		c, err := catalog.Load(cfg.Catalog.SeedFile)
		if err != nil {
			log.Error("failed to load catalog", "path", cfg.Catalog.SeedFile, "error", err)
			os.Exit(1)
		}
		if cfg.Catalog.Watch {
			if err := c.Watch(ctx, cfg.Catalog.SeedFile, log); err != nil {
				log.Warn("catalog watch disabled", "error", err)
			}
		}
		exercises = c
		log.Info("catalog loaded", "path", cfg.Catalog.SeedFile, "exercises", c.Len())
	} else {
		n, err := db.UpsertExercises(ctx, catalog.Default().All())
		if err != nil {
			log.Error("failed to seed exercises", "error", err)
			os.Exit(1)
		}
		log.Info("exercise table seeded", "upserted", n)
	}

	svc := service.New(db, exercises, cfg.Coach.Thresholds(), log)

	sched, err := service.NewScheduler(svc, cfg.Coach.ReviewSchedule, log)
	if err != nil {
		log.Error("failed to schedule reviews", "error", err)
		os.Exit(1)
	}
	sched.Start()
	defer sched.Stop()

	// Create server
	srv := server.New(svc, db, cfg.Auth.APIKey, log)

	mcpSrv := repmcp.New(svc, Version, log)
	srv.SetMCP(mcpserver.NewStreamableHTTPServer(mcpSrv,
		mcpserver.WithHTTPContextFunc(func(ctx context.Context, r *http.Request) context.Context {
			return repmcp.WithUserID(ctx, server.CallerID(r))
		}),
	))

	// Start server: tsnet or plain HTTP
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

		lc, err := tsServer.LocalClient()
		if err != nil {
			log.Error("tsnet local client failed", "error", err)
			os.Exit(1)
		}
		srv.SetTailscale(lc)

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

	httpSrv := &http.Server{Handler: srv, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		if err := httpSrv.Serve(listener); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			stop()
		}
	}()

	// Graceful shutdown
	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", "error", err)
	}
	log.Info("server stopped")
}
