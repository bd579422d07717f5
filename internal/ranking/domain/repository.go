package domain

import (
	"context"
	"time"

	catalogdomain "github.com/loopwire/partnerly/internal/catalog/domain"
	pkgdb "github.com/loopwire/partnerly/pkg/db"
	"gorm.io/gorm"
)

// EligibilityFilter narrows the partner population before any join.
type EligibilityFilter struct {
	ProgramID  string
	Status     Status
	PartnerIDs []string
	Country    string
	Starred    *bool
}

// SimilarEnrollmentRow is one approved enrollment of a candidate in a
// program similar to the target, with the metrics the scorer reads.
type SimilarEnrollmentRow struct {
	PartnerID            string  `gorm:"column:partner_id"`
	ProgramID            string  `gorm:"column:program_id"`
	ConsistencyScore     float64 `gorm:"column:consistency_score"`
	ConversionRate       float64 `gorm:"column:conversion_rate"`
	AverageLifetimeValue float64 `gorm:"column:average_lifetime_value"`
	TotalCommissions     int64   `gorm:"column:total_commissions"`
}

// HolisticStatsRow sums link counters across every program the partner
// touches; used for displayed metrics only, never for scoring.
type HolisticStatsRow struct {
	PartnerID        string         `gorm:"column:partner_id"`
	TotalClicks      int64          `gorm:"column:total_clicks"`
	TotalConversions int64          `gorm:"column:total_conversions"`
	LastConversionAt pkgdb.NullTime `gorm:"column:last_conversion_at"`
}

// DiscoveredRow carries the discovery bookkeeping timestamps needed for
// starred/invited orderings.
type DiscoveredRow struct {
	PartnerID string     `gorm:"column:partner_id"`
	StarredAt *time.Time `gorm:"column:starred_at"`
	InvitedAt *time.Time `gorm:"column:invited_at"`
}

// EnrollmentMetaRow carries enrollment creation time for the recruited
// ordering.
type EnrollmentMetaRow struct {
	PartnerID string    `gorm:"column:partner_id"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

type Repository interface {
	// EligiblePartners applies every cheap predicate (discoverable,
	// not ignored, sanity guard, allowlist, country, status clause)
	// directly against the partners table, so expensive joins only ever
	// see the small eligible population.
	EligiblePartners(ctx context.Context, db *gorm.DB, filter EligibilityFilter) ([]catalogdomain.Partner, error)
	ApprovedSimilarEnrollments(ctx context.Context, db *gorm.DB, partnerIDs, programIDs []string) ([]SimilarEnrollmentRow, error)
	HolisticStats(ctx context.Context, db *gorm.DB, partnerIDs []string) ([]HolisticStatsRow, error)
	DiscoveredRows(ctx context.Context, db *gorm.DB, programID string, partnerIDs []string) ([]DiscoveredRow, error)
	EnrollmentMeta(ctx context.Context, db *gorm.DB, programID string, partnerIDs []string) ([]EnrollmentMetaRow, error)
}
