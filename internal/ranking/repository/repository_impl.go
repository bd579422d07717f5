package repository

import (
	"context"

	catalogdomain "github.com/loopwire/partnerly/internal/catalog/domain"
	enrollmentdomain "github.com/loopwire/partnerly/internal/enrollment/domain"
	"github.com/loopwire/partnerly/internal/ranking/domain"
	"gorm.io/gorm"
)

// idChunkSize bounds the IN lists issued against the pre-filtered
// population.
const idChunkSize = 500

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) EligiblePartners(ctx context.Context, db *gorm.DB, filter domain.EligibilityFilter) ([]catalogdomain.Partner, error) {
	stmt := db.WithContext(ctx).
		Model(&catalogdomain.Partner{}).
		Where("discoverable_at IS NOT NULL")

	if filter.Country != "" {
		stmt = stmt.Where("country = ?", filter.Country)
	}
	if len(filter.PartnerIDs) > 0 {
		stmt = stmt.Where("id IN ?", filter.PartnerIDs)
	}

	// Partners the program operator dismissed stay out of every status.
	stmt = stmt.Where(
		`NOT EXISTS (SELECT 1 FROM discovered_partners dp
		  WHERE dp.program_id = ? AND dp.partner_id = partners.id AND dp.ignored_at IS NOT NULL)`,
		filter.ProgramID,
	)

	// Data-quality guard: a >=100% conversion rate on the target
	// program marks the pair as corrupt rather than exceptional.
	stmt = stmt.Where(
		`NOT EXISTS (SELECT 1 FROM program_enrollments e
		  WHERE e.program_id = ? AND e.partner_id = partners.id AND e.conversion_rate >= 1)`,
		filter.ProgramID,
	)

	switch filter.Status {
	case domain.StatusDiscover:
		stmt = stmt.Where(
			`NOT EXISTS (SELECT 1 FROM program_enrollments e
			  WHERE e.program_id = ? AND e.partner_id = partners.id)`,
			filter.ProgramID,
		)
	case domain.StatusInvited:
		stmt = stmt.Where(
			`EXISTS (SELECT 1 FROM program_enrollments e
			  WHERE e.program_id = ? AND e.partner_id = partners.id AND e.status = ?)`,
			filter.ProgramID, enrollmentdomain.StatusInvited,
		).Where(
			`EXISTS (SELECT 1 FROM discovered_partners dp
			  WHERE dp.program_id = ? AND dp.partner_id = partners.id AND dp.invited_at IS NOT NULL)`,
			filter.ProgramID,
		)
	case domain.StatusRecruited:
		stmt = stmt.Where(
			`EXISTS (SELECT 1 FROM program_enrollments e
			  WHERE e.program_id = ? AND e.partner_id = partners.id AND e.status = ?)`,
			filter.ProgramID, enrollmentdomain.StatusApproved,
		).Where(
			`EXISTS (SELECT 1 FROM discovered_partners dp
			  WHERE dp.program_id = ? AND dp.partner_id = partners.id AND dp.invited_at IS NOT NULL)`,
			filter.ProgramID,
		)
	}

	if filter.Starred != nil {
		clause := `EXISTS (SELECT 1 FROM discovered_partners dp
		  WHERE dp.program_id = ? AND dp.partner_id = partners.id AND dp.starred_at IS NOT NULL)`
		if !*filter.Starred {
			clause = "NOT " + clause
		}
		stmt = stmt.Where(clause, filter.ProgramID)
	}

	var partners []catalogdomain.Partner
	if err := stmt.Order("id asc").Find(&partners).Error; err != nil {
		return nil, err
	}
	return partners, nil
}

func (r *repo) ApprovedSimilarEnrollments(ctx context.Context, db *gorm.DB, partnerIDs, programIDs []string) ([]domain.SimilarEnrollmentRow, error) {
	if len(partnerIDs) == 0 || len(programIDs) == 0 {
		return nil, nil
	}
	var rows []domain.SimilarEnrollmentRow
	for _, chunk := range chunkIDs(partnerIDs) {
		var part []domain.SimilarEnrollmentRow
		err := db.WithContext(ctx).Raw(
			`SELECT partner_id, program_id, consistency_score, conversion_rate,
			        average_lifetime_value, total_commissions
			 FROM program_enrollments
			 WHERE partner_id IN ? AND program_id IN ? AND status = ?`,
			chunk, programIDs, enrollmentdomain.StatusApproved,
		).Scan(&part).Error
		if err != nil {
			return nil, err
		}
		rows = append(rows, part...)
	}
	return rows, nil
}

func (r *repo) HolisticStats(ctx context.Context, db *gorm.DB, partnerIDs []string) ([]domain.HolisticStatsRow, error) {
	if len(partnerIDs) == 0 {
		return nil, nil
	}
	var rows []domain.HolisticStatsRow
	for _, chunk := range chunkIDs(partnerIDs) {
		var part []domain.HolisticStatsRow
		err := db.WithContext(ctx).Raw(
			`SELECT partner_id,
			        COALESCE(SUM(clicks), 0)      AS total_clicks,
			        COALESCE(SUM(conversions), 0) AS total_conversions,
			        MAX(last_conversion_at)       AS last_conversion_at
			 FROM links
			 WHERE partner_id IN ?
			 GROUP BY partner_id`,
			chunk,
		).Scan(&part).Error
		if err != nil {
			return nil, err
		}
		rows = append(rows, part...)
	}
	return rows, nil
}

func (r *repo) DiscoveredRows(ctx context.Context, db *gorm.DB, programID string, partnerIDs []string) ([]domain.DiscoveredRow, error) {
	if len(partnerIDs) == 0 {
		return nil, nil
	}
	var rows []domain.DiscoveredRow
	for _, chunk := range chunkIDs(partnerIDs) {
		var part []domain.DiscoveredRow
		err := db.WithContext(ctx).Raw(
			`SELECT partner_id, starred_at, invited_at
			 FROM discovered_partners
			 WHERE program_id = ? AND partner_id IN ?`,
			programID, chunk,
		).Scan(&part).Error
		if err != nil {
			return nil, err
		}
		rows = append(rows, part...)
	}
	return rows, nil
}

func (r *repo) EnrollmentMeta(ctx context.Context, db *gorm.DB, programID string, partnerIDs []string) ([]domain.EnrollmentMetaRow, error) {
	if len(partnerIDs) == 0 {
		return nil, nil
	}
	var rows []domain.EnrollmentMetaRow
	for _, chunk := range chunkIDs(partnerIDs) {
		var part []domain.EnrollmentMetaRow
		err := db.WithContext(ctx).Raw(
			`SELECT partner_id, created_at
			 FROM program_enrollments
			 WHERE program_id = ? AND partner_id IN ?`,
			programID, chunk,
		).Scan(&part).Error
		if err != nil {
			return nil, err
		}
		rows = append(rows, part...)
	}
	return rows, nil
}

func chunkIDs(ids []string) [][]string {
	if len(ids) <= idChunkSize {
		return [][]string{ids}
	}
	chunks := make([][]string, 0, len(ids)/idChunkSize+1)
	for start := 0; start < len(ids); start += idChunkSize {
		end := start + idChunkSize
		if end > len(ids) {
			end = len(ids)
		}
		chunks = append(chunks, ids[start:end])
	}
	return chunks
}
