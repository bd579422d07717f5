package domain

import (
	"context"

	"gorm.io/gorm"
)

// PerformanceProfile is a program's average conversion rate and average
// order value over links with meaningful traffic.
type PerformanceProfile struct {
	AvgConversionRate float64 `gorm:"column:avg_conversion_rate"`
	AvgOrderValue     float64 `gorm:"column:avg_order_value"`
}

type Repository interface {
	// ConvertingPartnerCount counts distinct partners with at least one
	// conversion on the program's links.
	ConvertingPartnerCount(ctx context.Context, db *gorm.DB, programID string) (int64, error)
	// SharedConvertingPartnerCount counts distinct partners converting
	// on both programs.
	SharedConvertingPartnerCount(ctx context.Context, db *gorm.DB, programID, otherProgramID string) (int64, error)
	// PerformanceProfile averages conversion rate and order value over
	// links with more than minClicks clicks and at least one conversion.
	PerformanceProfile(ctx context.Context, db *gorm.DB, programID string, minClicks int64) (PerformanceProfile, error)
	// ReplaceAll clears the similarity table and writes the new edge
	// set in one transaction.
	ReplaceAll(ctx context.Context, db *gorm.DB, edges []ProgramSimilarity) error
	// ListByProgram returns edges for one program with combined score
	// above minScore, strongest first.
	ListByProgram(ctx context.Context, db *gorm.DB, programID string, minScore float64) ([]ProgramSimilarity, error)
}
