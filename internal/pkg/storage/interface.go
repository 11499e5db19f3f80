package storage

import (
	"context"

	"github.com/akratos/surebet/internal/pkg/models"
)

// OpportunityStorage persists arbitrage opportunities across runs.
type OpportunityStorage interface {
	StoreOpportunity(ctx context.Context, opp *models.Opportunity) (bool, error)
	GetRecentOpportunities(ctx context.Context, withinMinutes int, minProfitPercent float64) ([]models.Opportunity, error)
	Close() error
}
