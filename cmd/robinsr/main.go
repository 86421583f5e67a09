package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ruyzb5645usejk/robinsr/internal/config"
	"github.com/ruyzb5645usejk/robinsr/internal/data"
	"github.com/ruyzb5645usejk/robinsr/internal/handler"
	"github.com/ruyzb5645usejk/robinsr/internal/metrics"
	gonet "github.com/ruyzb5645usejk/robinsr/internal/net"
	"github.com/ruyzb5645usejk/robinsr/internal/net/packet"
	"github.com/ruyzb5645usejk/robinsr/internal/persist"
	"github.com/ruyzb5645usejk/robinsr/internal/scripting"
)

// Client notice version delivered with heartbeats. Bumped when the
// notice script changes in a way clients must re-apply.
const noticeVersion = 51

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// ── Startup display helpers ────────────────────────────────────────

func printBanner(serverName string, serverID int) {
	fmt.Println()
	fmt.Println("\033[36;1m  ┌───────────────────────────────────────────┐\033[0m")
	fmt.Println("\033[36;1m  │\033[0m            robinsr  v0.1.0                \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  │\033[0m      world simulation game server         \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Println()
	fmt.Printf("  \033[1mserver:\033[0m %s \033[90m(id: %d)\033[0m\n\n", serverName, serverID)
}

func printSection(title string) {
	lineLen := 46 - len(title) - 1
	if lineLen < 3 {
		lineLen = 3
	}
	fmt.Printf("  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func printStat(label string, count int) {
	numStr := fmt.Sprintf("%d", count)
	dotsLen := 42 - len(label) - len(numStr)
	if dotsLen < 3 {
		dotsLen = 3
	}
	fmt.Printf("  %s \033[90m%s\033[0m \033[32m%s\033[0m\n", label, strings.Repeat("·", dotsLen), numStr)
}

func printOK(msg string) {
	fmt.Printf("  \033[32m✓\033[0m %s\n", msg)
}

func printReady(msg string) {
	fmt.Printf("  \033[32m▶\033[0m %s\n", msg)
}

// ── Main server logic ─────────────────────────────────────────────

func run() error {
	// 1. Load config
	cfgPath := "config/server.toml"
	if p := os.Getenv("ROBINSR_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	printBanner(cfg.Server.Name, cfg.Server.ID)

	// 3. Connect to PostgreSQL and run migrations
	printSection("database")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := persist.NewDB(ctx, cfg.Database, log)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer db.Close()
	printOK("PostgreSQL connected")

	if err := persist.RunMigrations(ctx, db.Pool); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	printOK("migrations applied")
	fmt.Println()

	playerRepo := persist.NewPlayerRepo(db)

	// 4. Load the resource catalog
	printSection("resource catalog")

	catalog, err := data.Load(
		"data/catalog/map_entrance.yaml",
		"data/catalog/maze_plane.yaml",
		"data/catalog/level_group.yaml",
	)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}
	printStat("map entrances", catalog.EntranceCount())
	printStat("maze planes", catalog.PlaneCount())
	printStat("floor group configs", catalog.FloorCount())

	// 5. Load the client notice script (optional)
	notice, err := scripting.LoadNotice("scripts/notice.lua", noticeVersion, log)
	if err != nil {
		return fmt.Errorf("load notice: %w", err)
	}
	if notice != nil {
		printOK("client notice loaded")
	}
	fmt.Println()

	// 6. Metrics
	var stats *metrics.Collector
	if cfg.Metrics.Enabled {
		stats = metrics.NewCollector()
		mux := http.NewServeMux()
		mux.Handle("/metrics", stats.Handler())
		go func() {
			if err := http.ListenAndServe(cfg.Metrics.BindAddress, mux); err != nil {
				log.Error("metrics listener stopped", zap.Error(err))
			}
		}()
	}

	// 7. Command registry and handler wiring
	reg := packet.NewRegistry(log)
	deps := &handler.Deps{
		Store:   playerRepo,
		Catalog: catalog,
		Config:  cfg,
		Log:     log,
		Notice:  notice,
		Stats:   stats,
	}
	handler.RegisterAll(reg, deps)

	// 8. Network server: one dispatch goroutine per session
	server, err := gonet.NewServer(cfg.Network.BindAddress, reg, gonet.SessionOptions{
		InQueueSize:  cfg.Network.InQueueSize,
		OutQueueSize: cfg.Network.OutQueueSize,
		MaxFrameSize: cfg.Network.MaxFrameSize,
		WriteTimeout: cfg.Network.WriteTimeout,
		PktPerSec:    cfg.Network.PacketsPerSecond,
	}, stats, log)
	if err != nil {
		return fmt.Errorf("net server: %w", err)
	}
	go server.AcceptLoop()

	printSection("server ready")
	printReady(fmt.Sprintf("listening on %s", server.Addr().String()))
	if cfg.Metrics.Enabled {
		printReady(fmt.Sprintf("metrics on %s", cfg.Metrics.BindAddress))
	}
	fmt.Println()

	// 9. Wait for shutdown
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-shutdownCh
	log.Info("shutdown signal received", zap.String("signal", sig.String()))
	server.Shutdown()
	log.Info("server stopped")
	return nil
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
