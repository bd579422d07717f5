package service

import (
	"context"
	"time"

	catalogdomain "github.com/loopwire/partnerly/internal/catalog/domain"
	"github.com/loopwire/partnerly/internal/ranking/domain"
	"github.com/loopwire/partnerly/internal/scoring"
	similaritydomain "github.com/loopwire/partnerly/internal/similarity/domain"
)

// Saturation points for the log curves, in dollars. Spend past these
// marks stops adding score.
const (
	lifetimeValueSaturation = 500.0
	commissionsSaturation   = 1000.0
)

type partnerScore struct {
	similarityScore   float64
	programMatchCount int
}

func (s partnerScore) final(partner catalogdomain.Partner) float64 {
	score := s.similarityScore
	if score > domain.SimilarityScoreCap {
		score = domain.SimilarityScoreCap
	}

	matchScore := domain.ProgramMatchPoints * float64(s.programMatchCount)
	if matchScore > domain.ProgramMatchCap {
		matchScore = domain.ProgramMatchCap
	}

	total := score + matchScore
	if partner.TrustedAt != nil {
		total += domain.TrustedBonus
	}
	return total
}

// scoreCandidates computes the similarity-scoped component: how well
// each candidate performs specifically in programs similar to the
// target, weighted by how similar those programs are.
func (s *Service) scoreCandidates(ctx context.Context, partnerIDs []string, similarPrograms []similaritydomain.SimilarProgram) (map[string]partnerScore, error) {
	scores := make(map[string]partnerScore, len(partnerIDs))
	if len(similarPrograms) == 0 {
		return scores, nil
	}

	weightByProgram := make(map[string]float64, len(similarPrograms))
	programIDs := make([]string, 0, len(similarPrograms))
	for _, similar := range similarPrograms {
		if similar.Score <= 0 {
			continue
		}
		weightByProgram[similar.ProgramID] = similar.Score
		programIDs = append(programIDs, similar.ProgramID)
	}
	if len(programIDs) == 0 {
		return scores, nil
	}

	enrollments, err := s.repo.ApprovedSimilarEnrollments(ctx, s.db, partnerIDs, programIDs)
	if err != nil {
		return nil, err
	}

	sums := make(map[string]float64, len(partnerIDs))
	matches := make(map[string]map[string]struct{}, len(partnerIDs))
	for _, row := range enrollments {
		weight, ok := weightByProgram[row.ProgramID]
		if !ok {
			continue
		}
		sums[row.PartnerID] += programComposite(row) * weight

		if matches[row.PartnerID] == nil {
			matches[row.PartnerID] = map[string]struct{}{}
		}
		matches[row.PartnerID][row.ProgramID] = struct{}{}
	}

	for partnerID, sum := range sums {
		similarityScore := sum * domain.SimilarityScoreScale
		if similarityScore > domain.SimilarityScoreCap {
			similarityScore = domain.SimilarityScoreCap
		}
		scores[partnerID] = partnerScore{
			similarityScore:   similarityScore,
			programMatchCount: len(matches[partnerID]),
		}
	}
	return scores, nil
}

// programComposite blends a candidate's metrics in one similar program
// onto [0, 0.5]: recency-weighted consistency plus saturating curves
// over conversion rate, lifetime value and commission volume.
func programComposite(row domain.SimilarEnrollmentRow) float64 {
	consistency := row.ConsistencyScore / 100 * domain.ConsistencyWeight
	conversion := scoring.ConversionRateCurve(row.ConversionRate) * domain.ConversionWeight
	lifetime := scoring.LogSaturationCurve(row.AverageLifetimeValue/100, lifetimeValueSaturation) * domain.LifetimeWeight
	commissions := scoring.LogSaturationCurve(float64(row.TotalCommissions)/100, commissionsSaturation) * domain.CommissionWeight
	return consistency + conversion + lifetime + commissions
}

// timeAscNilLast orders by timestamp ascending with nil values last and
// partner id as the deterministic tie-break.
func timeAscNilLast(a, b *time.Time, idA, idB string) bool {
	if a != nil && b != nil && !a.Equal(*b) {
		return a.Before(*b)
	}
	if (a != nil) != (b != nil) {
		return a != nil
	}
	return idA < idB
}
