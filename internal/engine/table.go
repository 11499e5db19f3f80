package engine

import (
	"github.com/akratos/surebet/internal/pkg/models"
)

// BuildOddsTable projects a match into its per-bookmaker odds table: one row
// per contributing bookmaker, in first-seen order. Partial rows (fewer than
// three legs) are kept for transparency; the calculator skips the missing
// legs. Pure: rebuilding from the same match always gives the same table.
func BuildOddsTable(m *models.Match) models.OddsTable {
	table := models.OddsTable{
		MatchID:     m.ID,
		MatchName:   m.Name(),
		League:      m.League,
		KickoffTime: m.KickoffTime,
		Rows:        make([]models.OddsRow, 0, len(m.Records)),
	}
	for i := range m.Records {
		rec := &m.Records[i]
		table.Rows = append(table.Rows, models.OddsRow{
			Bookmaker: rec.Bookmaker,
			Home:      rec.OddsHome,
			Draw:      rec.OddsDraw,
			Away:      rec.OddsAway,
		})
	}
	return table
}
