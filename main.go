package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/Scrimzay/tacticsim/internal/archive"
	"github.com/Scrimzay/tacticsim/internal/config"
	"github.com/Scrimzay/tacticsim/internal/rules"
	"github.com/Scrimzay/tacticsim/internal/server"
	"github.com/Scrimzay/tacticsim/internal/world"
)

func main() {
	cfg := config.Load()

	logger, err := cfg.Logger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = run(ctx, cfg, logger)
	stop()

	if err != nil {
		logger.Error("server stopped", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
	logger.Info("server stopped")
	logger.Sync()
}

// run serves until ctx is cancelled, then drains HTTP and closes the battle log
func run(ctx context.Context, cfg config.Config, logger *zap.Logger) error {
	logger.Info("=== STARTING TACTICSIM ===")

	gameRules := rules.Default()
	if cfg.RulesFile != "" {
		loaded, err := rules.Load(cfg.RulesFile)
		if err != nil {
			return fmt.Errorf("load rules: %w", err)
		}
		gameRules = loaded
	}
	if cfg.StartingGold > 0 {
		gameRules.StartingGold = cfg.StartingGold
	}

	store, err := openArchive(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open %s battle log: %w", cfg.ArchiveType, err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Warn("battle log close failed", zap.Error(err))
		}
	}()

	// Init game
	seed := time.Now().UnixNano()
	terrain := world.GenerateMapSeeded(cfg.MapSize, gameRules, seed)
	game := world.New(gameRules, terrain, rand.New(rand.NewSource(seed)), logger.Named("world"))
	logger.Info("map generated", zap.Int("size", cfg.MapSize), zap.Int64("seed", seed))

	room := server.NewRoom("main", game, gameRules.StartingGold, store, logger.Named("room"))

	// Start broadcaster in background
	broadcaster := server.NewBroadcaster(room, logger.Named("broadcaster"))
	go broadcaster.Run(ctx)

	server.SetMode(cfg.LogDev)
	router := server.SetupRouter(broadcaster, room, gameRules, store, logger.Named("http"))

	logger.Info("server starting", zap.String("port", cfg.Port))
	return server.Serve(ctx, ":"+cfg.Port, router, logger.Named("http"))
}

func openArchive(ctx context.Context, cfg config.Config) (archive.Storage, error) {
	switch cfg.ArchiveType {
	case config.ArchivePostgres:
		return archive.NewPostgresStore(ctx, cfg.DatabaseURL)
	default:
		return archive.NewJSONStore(cfg.ArchiveFile)
	}
}
