package repository

import (
	"context"

	"github.com/loopwire/partnerly/internal/performance/domain"
	"gorm.io/gorm"
)

const insertBatchSize = 500

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) AggregatePairStats(ctx context.Context, db *gorm.DB, minClicks int64, testProgramID string) ([]domain.PairStatsRow, error) {
	var rows []domain.PairStatsRow
	err := db.WithContext(ctx).Raw(
		`SELECT partner_id, program_id,
		        COALESCE(SUM(clicks), 0)      AS total_clicks,
		        COALESCE(SUM(leads), 0)       AS total_leads,
		        COALESCE(SUM(conversions), 0) AS total_conversions,
		        COALESCE(SUM(sales), 0)       AS total_sales,
		        COALESCE(SUM(sale_amount), 0) AS total_sale_amount,
		        MAX(last_conversion_at)       AS last_conversion_at
		 FROM links
		 WHERE partner_id <> ''
		   AND program_id <> ?
		   AND program_id NOT IN (SELECT id FROM programs WHERE exclude_from_discovery = ?)
		 GROUP BY partner_id, program_id
		 HAVING COALESCE(SUM(clicks), 0) >= ?`,
		testProgramID,
		true,
		minClicks,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repo) ReplaceAll(ctx context.Context, db *gorm.DB, rows []domain.PartnerProgramPerformance) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(`DELETE FROM partner_program_performances`).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.CreateInBatches(rows, insertBatchSize).Error
	})
}
