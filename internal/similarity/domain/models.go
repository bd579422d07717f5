// Package domain defines program-to-program similarity edges. The table
// is a fully recomputable materialized view: every run clears it and
// rewrites all qualifying pairs, both directions.
package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
)

// Combined-score weights: shared taxonomy is the strongest signal,
// co-occurring partners second, performance similarity corroborating.
const (
	IndustryOverlapWeight    = 0.40
	PartnerOverlapWeight     = 0.35
	PerformancePatternWeight = 0.25

	// PersistThreshold drops noise pairs from the table entirely.
	PersistThreshold = 0.10

	// RankingRelevanceThreshold filters the similarity list handed to
	// the ranking query.
	RankingRelevanceThreshold = 0.3
)

// ProgramSimilarity is one directed edge. Edges are always written in
// symmetric pairs with identical scores.
type ProgramSimilarity struct {
	ID               snowflake.ID `gorm:"primaryKey" json:"id"`
	ProgramID        string       `gorm:"not null;uniqueIndex:idx_similarity_pair,priority:1" json:"program_id"`
	SimilarProgramID string       `gorm:"not null;uniqueIndex:idx_similarity_pair,priority:2" json:"similar_program_id"`

	IndustryOverlapScore    float64 `gorm:"not null;default:0" json:"industry_overlap_score"`
	PartnerOverlapScore     float64 `gorm:"not null;default:0" json:"partner_overlap_score"`
	PerformancePatternScore float64 `gorm:"not null;default:0" json:"performance_pattern_score"`
	CombinedSimilarityScore float64 `gorm:"not null;default:0;index" json:"combined_similarity_score"`

	SharedPartnerCount  int `gorm:"not null;default:0" json:"shared_partner_count"`
	SharedIndustryCount int `gorm:"not null;default:0" json:"shared_industry_count"`

	CalculatedAt time.Time `gorm:"not null" json:"calculated_at"`
}

func (ProgramSimilarity) TableName() string { return "program_similarities" }

// SimilarProgram is the slim shape the ranking query consumes.
type SimilarProgram struct {
	ProgramID string  `json:"program_id"`
	Score     float64 `json:"score"`
}

type Service interface {
	// CalculateProgramSimilarities recomputes the whole similarity
	// table from scratch.
	CalculateProgramSimilarities(ctx context.Context) error
	// SimilarPrograms returns the precomputed list for one program,
	// filtered to scores above the ranking relevance threshold.
	SimilarPrograms(ctx context.Context, programID string) ([]SimilarProgram, error)
}
