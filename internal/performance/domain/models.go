// Package domain defines per-partner-per-program performance rows.
// Like similarity edges, the table is a materialized view rewritten in
// full on every run, restricted to pairs with enough traffic to score.
package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
)

const (
	// MinClicks is the minimum sample size for meaningful statistics.
	MinClicks = 10
	// FullConfidenceClicks is where the linear sample-size ramp on top
	// of Wilson shrinkage reaches 1.0.
	FullConfidenceClicks = 50
)

type PartnerProgramPerformance struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	PartnerID string       `gorm:"not null;uniqueIndex:idx_performance_pair,priority:1" json:"partner_id"`
	ProgramID string       `gorm:"not null;uniqueIndex:idx_performance_pair,priority:2" json:"program_id"`

	TotalClicks      int64 `gorm:"not null;default:0" json:"total_clicks"`
	TotalLeads       int64 `gorm:"not null;default:0" json:"total_leads"`
	TotalConversions int64 `gorm:"not null;default:0" json:"total_conversions"`
	TotalSales       int64 `gorm:"not null;default:0" json:"total_sales"`
	// TotalSaleAmount is in cents.
	TotalSaleAmount int64 `gorm:"not null;default:0" json:"total_sale_amount"`

	ConversionRate       float64 `gorm:"not null;default:0" json:"conversion_rate"`
	LeadConversionRate   float64 `gorm:"not null;default:0" json:"lead_conversion_rate"`
	AverageLifetimeValue float64 `gorm:"not null;default:0" json:"average_lifetime_value"`

	LastConversionAt        *time.Time `json:"last_conversion_at"`
	DaysSinceLastConversion *int       `json:"days_since_last_conversion"`

	// PerformanceScore is the Wilson lower bound times the sample-size
	// ramp, scaled to 0-100.
	PerformanceScore float64 `gorm:"not null;default:0" json:"performance_score"`
	ConsistencyScore float64 `gorm:"not null;default:0" json:"consistency_score"`

	LastCalculatedAt time.Time `gorm:"not null" json:"last_calculated_at"`
}

func (PartnerProgramPerformance) TableName() string { return "partner_program_performances" }

type Service interface {
	// CalculatePartnerProgramPerformances recomputes the whole
	// performance table from raw link counters.
	CalculatePartnerProgramPerformances(ctx context.Context) error
}
