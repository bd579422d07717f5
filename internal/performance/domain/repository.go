package domain

import (
	"context"

	pkgdb "github.com/loopwire/partnerly/pkg/db"
	"gorm.io/gorm"
)

// PairStatsRow is one grouped aggregate over raw link counters.
type PairStatsRow struct {
	PartnerID        string         `gorm:"column:partner_id"`
	ProgramID        string         `gorm:"column:program_id"`
	TotalClicks      int64          `gorm:"column:total_clicks"`
	TotalLeads       int64          `gorm:"column:total_leads"`
	TotalConversions int64          `gorm:"column:total_conversions"`
	TotalSales       int64          `gorm:"column:total_sales"`
	TotalSaleAmount  int64          `gorm:"column:total_sale_amount"`
	LastConversionAt pkgdb.NullTime `gorm:"column:last_conversion_at"`
}

type Repository interface {
	// AggregatePairStats groups raw link counters by (partner, program),
	// skipping unattributed links, programs excluded from discovery, the
	// configured test program and pairs below minClicks.
	AggregatePairStats(ctx context.Context, db *gorm.DB, minClicks int64, testProgramID string) ([]PairStatsRow, error)
	// ReplaceAll clears the performance table and writes the new row
	// set in one transaction.
	ReplaceAll(ctx context.Context, db *gorm.DB, rows []PartnerProgramPerformance) error
}
