package repository

import (
	"context"
	"strings"

	"github.com/loopwire/partnerly/internal/activity/domain"
	enrollmentdomain "github.com/loopwire/partnerly/internal/enrollment/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) SumLinkStats(ctx context.Context, db *gorm.DB, pairs []domain.PairKey) ([]domain.LinkStatsRow, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	where, args := pairPredicate(pairs)
	var rows []domain.LinkStatsRow
	err := db.WithContext(ctx).Raw(
		`SELECT program_id, partner_id,
		        COALESCE(SUM(clicks), 0)      AS total_clicks,
		        COALESCE(SUM(leads), 0)       AS total_leads,
		        COALESCE(SUM(conversions), 0) AS total_conversions,
		        COALESCE(SUM(sales), 0)       AS total_sales,
		        COALESCE(SUM(sale_amount), 0) AS total_sale_amount,
		        MAX(last_conversion_at)       AS last_conversion_at
		 FROM links
		 WHERE `+where+`
		 GROUP BY program_id, partner_id`,
		args...,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repo) SumCommissions(ctx context.Context, db *gorm.DB, pairs []domain.PairKey) ([]domain.CommissionStatsRow, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	where, args := pairPredicate(pairs)
	args = append(args, enrollmentdomain.PayableCommissionStatuses)
	var rows []domain.CommissionStatsRow
	err := db.WithContext(ctx).Raw(
		`SELECT program_id, partner_id,
		        COALESCE(SUM(earnings), 0) AS total_commissions
		 FROM commissions
		 WHERE `+where+` AND status IN ?
		 GROUP BY program_id, partner_id`,
		args...,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repo) ApplyStatsUpdate(ctx context.Context, db *gorm.DB, update domain.EnrollmentStatsUpdate) error {
	values := map[string]any{}
	if update.TotalClicks != nil {
		values["total_clicks"] = *update.TotalClicks
	}
	if update.TotalLeads != nil {
		values["total_leads"] = *update.TotalLeads
	}
	if update.TotalConversions != nil {
		values["total_conversions"] = *update.TotalConversions
	}
	if update.TotalSales != nil {
		values["total_sales"] = *update.TotalSales
	}
	if update.TotalSaleAmount != nil {
		values["total_sale_amount"] = *update.TotalSaleAmount
	}
	if update.TotalCommissions != nil {
		values["total_commissions"] = *update.TotalCommissions
	}
	if update.ConversionRate != nil {
		values["conversion_rate"] = *update.ConversionRate
	}
	if update.LeadConversionRate != nil {
		values["lead_conversion_rate"] = *update.LeadConversionRate
	}
	if update.AverageLifetimeValue != nil {
		values["average_lifetime_value"] = *update.AverageLifetimeValue
	}
	if update.ConsistencyScore != nil {
		values["consistency_score"] = *update.ConsistencyScore
	}
	if update.DaysSinceLastConversion != nil {
		values["days_since_last_conversion"] = *update.DaysSinceLastConversion
	}
	if update.LastConversionAt != nil {
		values["last_conversion_at"] = *update.LastConversionAt
	}
	if len(values) == 0 {
		return nil
	}
	return db.WithContext(ctx).
		Model(&enrollmentdomain.ProgramEnrollment{}).
		Where("program_id = ? AND partner_id = ?", update.ProgramID, update.PartnerID).
		Updates(values).Error
}

// pairPredicate builds an OR chain of (program_id, partner_id) matches.
// Explicit pairs keep the aggregate scans bounded to the touched rows.
func pairPredicate(pairs []domain.PairKey) (string, []any) {
	clauses := make([]string, 0, len(pairs))
	args := make([]any, 0, len(pairs)*2)
	for _, pair := range pairs {
		clauses = append(clauses, "(program_id = ? AND partner_id = ?)")
		args = append(args, pair.ProgramID, pair.PartnerID)
	}
	return "(" + strings.Join(clauses, " OR ") + ")", args
}
