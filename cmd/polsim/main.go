// Command polsim runs the reputation and electoral simulation engine.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/joho/godotenv"

	"github.com/NathanielJL/polsim-sub000/internal/api"
	"github.com/NathanielJL/polsim-sub000/internal/engine"
	"github.com/NathanielJL/polsim-sub000/internal/entropy"
	"github.com/NathanielJL/polsim-sub000/internal/persistence"
	"github.com/NathanielJL/polsim-sub000/internal/tuning"
	"github.com/NathanielJL/polsim-sub000/internal/worldgen"
)

func main() {
	if err := godotenv.Load(); err != nil {
		// Not fatal; environment may be set by the host.
		slog.Debug("no .env file loaded", "error", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	slog.Info("polsim — reputation & electoral simulation engine")

	seed := envInt64("POLSIM_SEED", 42)
	dbPath := envStr("POLSIM_DB", "data/polsim.db")
	apiPort := int(envInt64("POLSIM_PORT", 8080))

	// ── Tuning ────────────────────────────────────────────────────────
	cfg := tuning.Default()
	if path := os.Getenv("POLSIM_CONFIG"); path != "" {
		var err error
		cfg, err = tuning.Load(path)
		if err != nil {
			slog.Error("failed to load tuning config", "path", path, "error", err)
			os.Exit(1)
		}
		slog.Info("tuning config loaded", "path", path)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid tuning config", "error", err)
		os.Exit(1)
	}

	// ── Database ──────────────────────────────────────────────────────
	os.MkdirAll("data", 0755)
	db, err := persistence.Open(dbPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("database opened", "path", dbPath)

	// ── Load or Generate Electorate ───────────────────────────────────
	catalog, err := db.LoadSlices()
	if err != nil {
		slog.Error("failed to load slices", "error", err)
		os.Exit(1)
	}

	fresh := catalog == nil
	if fresh {
		slog.Info("no saved electorate found, generating...", "seed", seed)
		genCfg := worldgen.DefaultGenConfig()
		genCfg.Seed = seed
		catalog, err = worldgen.Generate(genCfg)
		if err != nil {
			slog.Error("world generation failed", "error", err)
			os.Exit(1)
		}
		if err := db.SaveSlices(catalog.All()); err != nil {
			slog.Error("failed to save generated slices", "error", err)
			os.Exit(1)
		}
	} else {
		slog.Info("electorate restored from database")
	}

	// ── Entropy ───────────────────────────────────────────────────────
	randomKey := os.Getenv("RANDOM_ORG_KEY")
	src := entropy.FromEnv(randomKey)
	if randomKey == "" {
		slog.Info("RANDOM_ORG_KEY not set — using crypto/rand entropy")
	}

	// ── Simulation ────────────────────────────────────────────────────
	sim := engine.NewSimulation(catalog, cfg, src)
	if !fresh {
		if err := db.RestoreSessionState(sim); err != nil {
			slog.Error("failed to restore session state", "error", err)
			os.Exit(1)
		}
	}

	ticker := engine.NewTicker(sim, time.Duration(cfg.TurnIntervalSeconds)*time.Second)
	ticker.OnTurn = func(turn int) error {
		// Auto-save after every turn.
		return db.SaveSessionState(sim)
	}

	// ── HTTP API ──────────────────────────────────────────────────────
	adminKey := os.Getenv("POLSIM_ADMIN_KEY")
	if adminKey == "" {
		slog.Warn("POLSIM_ADMIN_KEY not set — admin POST endpoints will be disabled")
	}

	apiServer := &api.Server{
		Sim:      sim,
		Ticker:   ticker,
		DB:       db,
		Config:   cfg,
		Port:     apiPort,
		AdminKey: adminKey,
	}
	apiServer.Start()

	// ── Start ─────────────────────────────────────────────────────────
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("received signal, shutting down", "signal", sig)
		ticker.Stop()
	}()

	fmt.Printf("\nThe colonies stir: %s souls across %d slices, %s of them eligible to vote.\n",
		humanize.Comma(catalog.TotalPopulation()), catalog.Len(), humanize.Comma(catalog.EligiblePopulation()))
	fmt.Printf("API: http://localhost:%d/api/v1/status\n", apiPort)
	if turn := sim.CurrentTurn(); turn > 0 {
		fmt.Printf("Resuming from turn %d\n", turn)
	}
	fmt.Println("Starting simulation... (Ctrl+C to stop)")

	ticker.Run()

	// Final save on shutdown.
	slog.Info("final save...")
	if err := db.SaveSessionState(sim); err != nil {
		slog.Error("final save failed", "error", err)
	}

	fmt.Println("Simulation stopped. Session state saved.")
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
		slog.Warn("invalid integer in environment", "key", key, "value", v)
	}
	return fallback
}
