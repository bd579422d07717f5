package domain

import (
	"context"

	pkgdb "github.com/loopwire/partnerly/pkg/db"
	"gorm.io/gorm"
)

// LinkStatsRow holds freshly summed link counters for one pair.
type LinkStatsRow struct {
	ProgramID        string         `gorm:"column:program_id"`
	PartnerID        string         `gorm:"column:partner_id"`
	TotalClicks      int64          `gorm:"column:total_clicks"`
	TotalLeads       int64          `gorm:"column:total_leads"`
	TotalConversions int64          `gorm:"column:total_conversions"`
	TotalSales       int64          `gorm:"column:total_sales"`
	TotalSaleAmount  int64          `gorm:"column:total_sale_amount"`
	LastConversionAt pkgdb.NullTime `gorm:"column:last_conversion_at"`
}

// CommissionStatsRow holds freshly summed payable earnings for one pair.
type CommissionStatsRow struct {
	ProgramID        string `gorm:"column:program_id"`
	PartnerID        string `gorm:"column:partner_id"`
	TotalCommissions int64  `gorm:"column:total_commissions"`
}

type Repository interface {
	// SumLinkStats aggregates raw link counters for exactly the pairs
	// touched by a batch, never the whole table.
	SumLinkStats(ctx context.Context, db *gorm.DB, pairs []PairKey) ([]LinkStatsRow, error)
	// SumCommissions aggregates earnings over payable commission
	// statuses for the given pairs.
	SumCommissions(ctx context.Context, db *gorm.DB, pairs []PairKey) ([]CommissionStatsRow, error)
	// ApplyStatsUpdate SETs the non-nil fields of the patch on the
	// matching enrollment row. Idempotent: values are authoritative
	// sums, not increments.
	ApplyStatsUpdate(ctx context.Context, db *gorm.DB, update EnrollmentStatsUpdate) error
}
