package repository

import (
	"context"

	"github.com/loopwire/partnerly/internal/similarity/domain"
	"gorm.io/gorm"
)

const insertBatchSize = 500

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) ConvertingPartnerCount(ctx context.Context, db *gorm.DB, programID string) (int64, error) {
	var count int64
	err := db.WithContext(ctx).Raw(
		`SELECT COUNT(DISTINCT partner_id)
		 FROM links
		 WHERE program_id = ? AND partner_id <> '' AND conversions > 0`,
		programID,
	).Scan(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *repo) SharedConvertingPartnerCount(ctx context.Context, db *gorm.DB, programID, otherProgramID string) (int64, error) {
	var count int64
	err := db.WithContext(ctx).Raw(
		`SELECT COUNT(DISTINCT a.partner_id)
		 FROM links a
		 JOIN links b ON b.partner_id = a.partner_id
		 WHERE a.program_id = ? AND b.program_id = ?
		   AND a.partner_id <> ''
		   AND a.conversions > 0 AND b.conversions > 0`,
		programID,
		otherProgramID,
	).Scan(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *repo) PerformanceProfile(ctx context.Context, db *gorm.DB, programID string, minClicks int64) (domain.PerformanceProfile, error) {
	var profile domain.PerformanceProfile
	// 1.0 * keeps the division floating point on every dialect.
	err := db.WithContext(ctx).Raw(
		`SELECT COALESCE(AVG(1.0 * conversions / clicks), 0)      AS avg_conversion_rate,
		        COALESCE(AVG(1.0 * sale_amount / conversions), 0) AS avg_order_value
		 FROM links
		 WHERE program_id = ? AND clicks > ? AND conversions >= 1`,
		programID,
		minClicks,
	).Scan(&profile).Error
	if err != nil {
		return domain.PerformanceProfile{}, err
	}
	return profile, nil
}

func (r *repo) ReplaceAll(ctx context.Context, db *gorm.DB, edges []domain.ProgramSimilarity) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(`DELETE FROM program_similarities`).Error; err != nil {
			return err
		}
		if len(edges) == 0 {
			return nil
		}
		return tx.CreateInBatches(edges, insertBatchSize).Error
	})
}

func (r *repo) ListByProgram(ctx context.Context, db *gorm.DB, programID string, minScore float64) ([]domain.ProgramSimilarity, error) {
	var edges []domain.ProgramSimilarity
	err := db.WithContext(ctx).
		Where("program_id = ? AND combined_similarity_score > ?", programID, minScore).
		Order("combined_similarity_score desc, similar_program_id asc").
		Find(&edges).Error
	if err != nil {
		return nil, err
	}
	return edges, nil
}
