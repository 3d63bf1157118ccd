package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/udisondev/rs2go/internal/config"
	"github.com/udisondev/rs2go/internal/gameserver"
	"github.com/udisondev/rs2go/internal/metrics"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// Load config FIRST to determine log level
	cfgPath := config.ConfigPath()
	cfg, err := config.LoadGameServer(cfgPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	closeLog, err := setupLogging(cfg.Log)
	if err != nil {
		return err
	}
	defer closeLog()

	slog.Info("rs2go server starting",
		"config", cfgPath,
		"bind", cfg.BindAddress,
		"port", cfg.Port,
		"tick", cfg.Sync.TickInterval,
		"player_slots", cfg.World.PlayerSlots,
		"npc_slots", cfg.World.NpcSlots)

	clients := gameserver.NewClientManager()
	engine := gameserver.NewEngine(cfg, clients)
	if err := engine.SpawnNpcs(cfg.World.Npcs); err != nil {
		return fmt.Errorf("spawning npcs: %w", err)
	}
	server := gameserver.NewServer(cfg, engine, clients)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := engine.Run(gctx); err != nil {
			return fmt.Errorf("engine: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		slog.Info("starting game server", "port", cfg.Port)
		if err := server.Run(gctx); err != nil {
			return fmt.Errorf("game server: %w", err)
		}
		return nil
	})

	if cfg.Metrics.Enabled {
		g.Go(func() error {
			router := metrics.NewRouter(metrics.RouterConfig{Status: engine})
			if err := metrics.Serve(gctx, cfg.Metrics.ListenAddr, router); err != nil {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	slog.Info("rs2go server stopped")
	return nil
}

// setupLogging installs the default logger: stdout, plus a rolling file when
// configured.
func setupLogging(cfg config.LogConfig) (func(), error) {
	level, err := cfg.SlogLevel()
	if err != nil {
		return nil, err
	}

	var out io.Writer = os.Stdout
	closeFn := func() {}
	if cfg.File != "" {
		file := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   cfg.Compress,
		}
		out = io.MultiWriter(os.Stdout, file)
		closeFn = func() { _ = file.Close() }
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{
		Level: level,
	})))
	return closeFn, nil
}
