package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/akratos/surebet/internal/engine"
	"github.com/akratos/surebet/internal/ingest"
	"github.com/akratos/surebet/internal/notify"
	"github.com/akratos/surebet/internal/pkg/config"
	"github.com/akratos/surebet/internal/pkg/logging"
	"github.com/akratos/surebet/internal/pkg/models"
	"github.com/akratos/surebet/internal/pkg/storage"
)

const defaultConfigPath = "configs/surebet.yaml"

func main() {
	_ = godotenv.Load()

	defaultConfig := os.Getenv("CONFIG_PATH")
	if defaultConfig == "" {
		defaultConfig = defaultConfigPath
	}

	var configPath string
	var rawDir string
	flag.StringVar(&configPath, "config", defaultConfig, "Path to config file (can be set via CONFIG_PATH env var)")
	flag.StringVar(&rawDir, "raw-dir", "", "Override raw data directory from config")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	applyEnvOverrides(cfg)
	if rawDir != "" {
		cfg.Ingest.RawDir = rawDir
	}

	_, closeLog, err := logging.SetupLogger(&cfg.Logging, "surebet")
	if err != nil {
		log.Printf("Warning: failed to setup logging: %v, continuing with default logger", err)
	} else {
		defer closeLog()
	}

	eng, err := buildEngine(cfg)
	if err != nil {
		log.Fatalf("Failed to build engine: %v", err)
	}

	byBookmaker, report, err := ingest.LoadDir(cfg.Ingest.RawDir)
	if err != nil {
		log.Fatalf("Failed to load raw data: %v", err)
	}
	slog.Info("Loaded raw records",
		"bookmakers", len(byBookmaker),
		"parsed", report.Parsed,
		"malformed", report.Malformed)

	// feed one bookmaker at a time, the same shape incremental mode sees
	names := make([]string, 0, len(byBookmaker))
	for name := range byBookmaker {
		names = append(names, name)
	}
	sort.Strings(names)
	rejectedTotal := 0
	for _, name := range names {
		rejected := eng.Add(byBookmaker[name])
		rejectedTotal += len(rejected)
	}
	if rejectedTotal > 0 {
		slog.Warn("Some records were rejected as malformed", "count", rejectedTotal)
	}

	matches := eng.Matches()
	opps, evalFlags := eng.Opportunities()
	flags := append(eng.Flags(), evalFlags...)

	printSummary(cfg, matches, opps, flags, report)

	if cfg.Report.OutputFile != "" {
		if err := writeOpportunities(cfg.Report.OutputFile, opps); err != nil {
			slog.Error("Failed to write opportunities file", "path", cfg.Report.OutputFile, "error", err)
		} else {
			slog.Info("Wrote opportunities", "path", cfg.Report.OutputFile, "count", len(opps))
		}
	}

	deliver(cfg, opps)
}

func applyEnvOverrides(cfg *config.Config) {
	if dsn := os.Getenv("POSTGRES_DSN"); dsn != "" {
		cfg.Postgres.DSN = dsn
	}
	if token := os.Getenv("TELEGRAM_BOT_TOKEN"); token != "" {
		cfg.Telegram.BotToken = token
	}
	if chatIDStr := os.Getenv("TELEGRAM_CHAT_ID"); chatIDStr != "" {
		if chatID, err := strconv.ParseInt(chatIDStr, 10, 64); err == nil {
			cfg.Telegram.ChatID = chatID
		}
	}
	if url := os.Getenv("WEBHOOK_URL"); url != "" {
		cfg.Webhook.URL = url
	}
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

func printSummary(cfg *config.Config, matches []models.Match, opps []models.Opportunity, flags []engine.Flag, report ingest.Report) {
	fmt.Println("============================================================")
	fmt.Println("ARBITRAGE DETECTION")
	fmt.Println("============================================================")
	fmt.Printf("Records parsed: %d (malformed lines skipped: %d)\n", report.Parsed, report.Malformed)
	fmt.Printf("Canonical matches: %d\n", len(matches))

	coverage := map[int]int{}
	for i := range matches {
		coverage[len(matches[i].Records)]++
	}
	counts := make([]int, 0, len(coverage))
	for n := range coverage {
		counts = append(counts, n)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(counts)))
	fmt.Println("Coverage by bookmaker count:")
	for _, n := range counts {
		fmt.Printf("  %d bookmakers: %d matches\n", n, coverage[n])
	}

	if len(flags) > 0 {
		fmt.Printf("Data-quality flags: %d (see logs)\n", len(flags))
	}

	fmt.Printf("\nFound %d arbitrage opportunities\n\n", len(opps))
	top := cfg.Report.Top
	if top > len(opps) {
		top = len(opps)
	}
	for i := 0; i < top; i++ {
		opp := opps[i]
		fmt.Printf("%d. %s\n", i+1, opp.MatchName)
		fmt.Printf("   Profit: %.2f%% (%.2f per %.0f)\n", opp.ProfitPercent, opp.Profit, opp.TotalStake)
		fmt.Printf("   Bookmakers needed: %d\n", opp.UniqueBookmakers)
		for _, bet := range opp.Bets {
			fmt.Printf("   %s: %.2f @ %s, stake %.2f\n", bet.Outcome, bet.Odd, bet.Bookmaker, bet.Stake)
		}
		fmt.Println()
	}
	if len(opps) == 0 {
		fmt.Println("No arbitrage in current data. Opportunities are rare and")
		fmt.Println("usually carry margins under 1-2%.")
	}
	fmt.Println("============================================================")
}

func writeOpportunities(path string, opps []models.Opportunity) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	for i := range opps {
		if err := enc.Encode(&opps[i]); err != nil {
			return fmt.Errorf("failed to encode opportunity: %w", err)
		}
	}
	return nil
}

// deliver pushes found opportunities to the configured outlets: PostgreSQL,
// Telegram, webhook. Each outlet is optional and failures never abort the
// others.
func deliver(cfg *config.Config, opps []models.Opportunity) {
	if len(opps) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	if cfg.Postgres.DSN != "" {
		store, err := storage.NewPostgresOpportunityStorage(&cfg.Postgres)
		if err != nil {
			slog.Error("Failed to initialize postgres storage", "error", err)
		} else {
			defer store.Close()
			stored := 0
			for i := range opps {
				inserted, err := store.StoreOpportunity(ctx, &opps[i])
				if err != nil {
					slog.Error("Failed to store opportunity", "match", opps[i].MatchName, "error", err)
					continue
				}
				if inserted {
					stored++
				}
			}
			slog.Info("Stored opportunities", "count", stored)
		}
	}

	if cfg.Telegram.BotToken != "" && cfg.Telegram.ChatID != 0 {
		notifier, err := notify.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
		if err != nil {
			slog.Error("Failed to initialize telegram notifier", "error", err)
		} else {
			for i := range opps {
				if err := notifier.SendOpportunity(ctx, &opps[i]); err != nil {
					slog.Error("Failed to send telegram alert", "match", opps[i].MatchName, "error", err)
				}
			}
		}
	}

	if cfg.Webhook.URL != "" {
		poster := notify.NewWebhookPoster(cfg.Webhook.URL)
		if err := poster.Post(ctx, opps); err != nil {
			slog.Error("Failed to post opportunities to webhook", "error", err)
		} else {
			slog.Info("Posted opportunities to webhook", "count", len(opps))
		}
	}
}
