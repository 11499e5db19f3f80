package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/akratos/surebet/internal/api"
	"github.com/akratos/surebet/internal/engine"
	"github.com/akratos/surebet/internal/pkg/config"
	"github.com/akratos/surebet/internal/pkg/logging"
)

const defaultConfigPath = "configs/surebet.yaml"

func main() {
	_ = godotenv.Load()

	defaultConfig := os.Getenv("CONFIG_PATH")
	if defaultConfig == "" {
		defaultConfig = defaultConfigPath
	}

	var configPath string
	var addr string
	flag.StringVar(&configPath, "config", defaultConfig, "Path to config file (can be set via CONFIG_PATH env var)")
	flag.StringVar(&addr, "addr", ":8080", "HTTP listen address (e.g. :8080)")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	_, closeLog, err := logging.SetupLogger(&cfg.Logging, "surebet-server")
	if err != nil {
		log.Printf("Warning: failed to setup logging: %v, continuing with default logger", err)
	} else {
		defer closeLog()
	}

	eng, err := buildEngine(cfg)
	if err != nil {
		log.Fatalf("Failed to build engine: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		slog.Info("Received shutdown signal, stopping server...")
		cancel()
	}()

	mux := http.NewServeMux()
	mux.HandleFunc("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("pong\n"))
	})
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok\n"))
	})
	api.NewServer(eng).RegisterHTTP(mux)

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	slog.Info("HTTP server listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("HTTP server error", "error", err)
		os.Exit(1)
	}
	slog.Info("Server stopped")
}

func buildEngine(cfg *config.Config) (*engine.Engine, error) {
	bucket, err := cfg.Engine.BucketDuration()
	if err != nil {
		return nil, err
	}
	loc, err := cfg.Engine.ReferenceLocation()
	if err != nil {
		return nil, err
	}

	var aliases *engine.AliasTable
	if cfg.Engine.AliasesPath != "" {
		aliases, err = engine.LoadAliasFile(cfg.Engine.AliasesPath)
		if err != nil {
			return nil, err
		}
		slog.Info("Loaded alias table", "path", cfg.Engine.AliasesPath, "entries", aliases.Len())
	}

	return engine.New(aliases, engine.Config{
		KickoffBucket:       bucket,
		SimilarityThreshold: cfg.Engine.SimilarityThreshold,
		RequireLeagueMatch:  cfg.Engine.RequireLeagueMatch,
		ReferenceLocation:   loc,
		TotalStake:          cfg.Report.TotalStake,
	}), nil
}
