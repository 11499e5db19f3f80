package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/akratos/surebet/internal/pkg/config"
	"github.com/akratos/surebet/internal/pkg/models"
)

// Ensure PostgresOpportunityStorage implements OpportunityStorage
var _ OpportunityStorage = (*PostgresOpportunityStorage)(nil)

// PostgresOpportunityStorage persists found arbitrage opportunities in
// PostgreSQL, one row per opportunity with the three legs inlined.
type PostgresOpportunityStorage struct {
	db *sql.DB
}

// NewPostgresOpportunityStorage opens the connection and ensures the schema.
func NewPostgresOpportunityStorage(cfg *config.PostgresConfig) (*PostgresOpportunityStorage, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("postgres DSN is required")
	}

	db, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres connection: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	storage := &PostgresOpportunityStorage{db: db}
	if err := storage.initSchema(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return storage, nil
}

func (s *PostgresOpportunityStorage) initSchema(ctx context.Context) error {
	query := `
	CREATE TABLE IF NOT EXISTS opportunities (
		id VARCHAR(64) PRIMARY KEY,
		match_id VARCHAR(500) NOT NULL,
		match_name VARCHAR(500) NOT NULL,
		league VARCHAR(500) NOT NULL DEFAULT '',
		kickoff_time TIMESTAMP NOT NULL,
		total_inverse DECIMAL(10, 6) NOT NULL,
		profit_percent DECIMAL(10, 4) NOT NULL,
		total_stake DECIMAL(12, 2) NOT NULL,
		profit DECIMAL(12, 2) NOT NULL,
		home_bookmaker VARCHAR(100) NOT NULL,
		home_odd DECIMAL(10, 4) NOT NULL,
		home_stake DECIMAL(12, 2) NOT NULL,
		draw_bookmaker VARCHAR(100) NOT NULL,
		draw_odd DECIMAL(10, 4) NOT NULL,
		draw_stake DECIMAL(12, 2) NOT NULL,
		away_bookmaker VARCHAR(100) NOT NULL,
		away_odd DECIMAL(10, 4) NOT NULL,
		away_stake DECIMAL(12, 2) NOT NULL,
		unique_bookmakers INTEGER NOT NULL,
		executable BOOLEAN NOT NULL,
		found_at TIMESTAMP NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT NOW(),
		UNIQUE(match_id, found_at)
	);

	CREATE INDEX IF NOT EXISTS idx_opportunities_match_id ON opportunities(match_id);
	CREATE INDEX IF NOT EXISTS idx_opportunities_found_at ON opportunities(found_at DESC);
	CREATE INDEX IF NOT EXISTS idx_opportunities_profit_percent ON opportunities(profit_percent DESC);
	`

	_, err := s.db.ExecContext(ctx, query)
	return err
}

// StoreOpportunity inserts an opportunity if not already recorded for the
// same match and timestamp. Returns true when newly inserted.
func (s *PostgresOpportunityStorage) StoreOpportunity(ctx context.Context, opp *models.Opportunity) (bool, error) {
	query := `
	INSERT INTO opportunities (
		id, match_id, match_name, league, kickoff_time,
		total_inverse, profit_percent, total_stake, profit,
		home_bookmaker, home_odd, home_stake,
		draw_bookmaker, draw_odd, draw_stake,
		away_bookmaker, away_odd, away_stake,
		unique_bookmakers, executable, found_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
	ON CONFLICT (match_id, found_at) DO NOTHING
	RETURNING id
	`

	var id string
	err := s.db.QueryRowContext(ctx, query,
		opp.ID,
		opp.MatchID,
		opp.MatchName,
		opp.League,
		opp.KickoffTime,
		opp.TotalInverse,
		opp.ProfitPercent,
		opp.TotalStake,
		opp.Profit,
		opp.Bets[0].Bookmaker, opp.Bets[0].Odd, opp.Bets[0].Stake,
		opp.Bets[1].Bookmaker, opp.Bets[1].Odd, opp.Bets[1].Stake,
		opp.Bets[2].Bookmaker, opp.Bets[2].Odd, opp.Bets[2].Stake,
		opp.UniqueBookmakers,
		opp.Executable,
		opp.FoundAt,
	).Scan(&id)

	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to store opportunity: %w", err)
	}
	return true, nil
}

// GetRecentOpportunities returns opportunities found within the last N
// minutes with at least the given profit percent, best first.
func (s *PostgresOpportunityStorage) GetRecentOpportunities(ctx context.Context, withinMinutes int, minProfitPercent float64) ([]models.Opportunity, error) {
	query := `
	SELECT
		id, match_id, match_name, league, kickoff_time,
		total_inverse, profit_percent, total_stake, profit,
		home_bookmaker, home_odd, home_stake,
		draw_bookmaker, draw_odd, draw_stake,
		away_bookmaker, away_odd, away_stake,
		unique_bookmakers, executable, found_at
	FROM opportunities
	WHERE found_at > NOW() - ($1 * INTERVAL '1 minute')
	  AND profit_percent >= $2
	ORDER BY profit_percent DESC, found_at DESC
	`

	rows, err := s.db.QueryContext(ctx, query, withinMinutes, minProfitPercent)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent opportunities: %w", err)
	}
	defer rows.Close()

	var opps []models.Opportunity
	for rows.Next() {
		var opp models.Opportunity
		err := rows.Scan(
			&opp.ID, &opp.MatchID, &opp.MatchName, &opp.League, &opp.KickoffTime,
			&opp.TotalInverse, &opp.ProfitPercent, &opp.TotalStake, &opp.Profit,
			&opp.Bets[0].Bookmaker, &opp.Bets[0].Odd, &opp.Bets[0].Stake,
			&opp.Bets[1].Bookmaker, &opp.Bets[1].Odd, &opp.Bets[1].Stake,
			&opp.Bets[2].Bookmaker, &opp.Bets[2].Odd, &opp.Bets[2].Stake,
			&opp.UniqueBookmakers, &opp.Executable, &opp.FoundAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan opportunity: %w", err)
		}
		opp.Bets[0].Outcome = models.OutcomeHome
		opp.Bets[1].Outcome = models.OutcomeDraw
		opp.Bets[2].Outcome = models.OutcomeAway
		opps = append(opps, opp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return opps, nil
}

// Close closes the database connection.
func (s *PostgresOpportunityStorage) Close() error {
	return s.db.Close()
}
