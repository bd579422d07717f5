package service

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/loopwire/partnerly/internal/cache"
	catalogdomain "github.com/loopwire/partnerly/internal/catalog/domain"
	"github.com/loopwire/partnerly/internal/clock"
	"github.com/loopwire/partnerly/internal/config"
	"github.com/loopwire/partnerly/internal/scoring"
	"github.com/loopwire/partnerly/internal/similarity/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	// profileMinClicks is the traffic floor a link needs before its
	// conversion rate says anything about the program.
	profileMinClicks = 10

	similarProgramsTTL = 10 * time.Minute
)

type Service struct {
	db            *gorm.DB
	log           *zap.Logger
	genID         *snowflake.Node
	clock         clock.Clock
	repo          domain.Repository
	catalogRepo   catalogdomain.Repository
	testProgramID string

	similarCache cache.Cache[string, []domain.SimilarProgram]
}

type Params struct {
	fx.In

	Cfg         config.Config
	DB          *gorm.DB
	Log         *zap.Logger
	GenID       *snowflake.Node
	Clock       clock.Clock
	Repo        domain.Repository
	CatalogRepo catalogdomain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:            p.DB,
		log:           p.Log.Named("similarity.service"),
		genID:         p.GenID,
		clock:         p.Clock,
		repo:          p.Repo,
		catalogRepo:   p.CatalogRepo,
		testProgramID: p.Cfg.TestProgramID,
		similarCache:  cache.NewTTLCache[string, []domain.SimilarProgram](),
	}
}

// programSignals caches the per-program aggregates a run needs, so the
// O(P^2) pair loop issues O(P) single-program queries plus one shared
// count per pair.
type programSignals struct {
	convertingPartners int64
	profile            domain.PerformanceProfile
}

func (s *Service) CalculateProgramSimilarities(ctx context.Context) error {
	programs, err := s.catalogRepo.ListPrograms(ctx, s.db)
	if err != nil {
		return err
	}

	eligible := programs[:0:0]
	for _, program := range programs {
		if !program.Eligible() {
			continue
		}
		if s.testProgramID != "" && program.ID == s.testProgramID {
			continue
		}
		eligible = append(eligible, program)
	}

	signals := make(map[string]programSignals, len(eligible))
	for _, program := range eligible {
		converting, err := s.repo.ConvertingPartnerCount(ctx, s.db, program.ID)
		if err != nil {
			return err
		}
		profile, err := s.repo.PerformanceProfile(ctx, s.db, program.ID, profileMinClicks)
		if err != nil {
			return err
		}
		signals[program.ID] = programSignals{convertingPartners: converting, profile: profile}
	}

	now := s.clock.Now()
	edges := make([]domain.ProgramSimilarity, 0)
	for i := 0; i < len(eligible); i++ {
		for j := i + 1; j < len(eligible); j++ {
			a, b := eligible[i], eligible[j]

			industryScore, sharedIndustries := scoring.Jaccard(a.IndustryInterests, b.IndustryInterests)

			shared, err := s.repo.SharedConvertingPartnerCount(ctx, s.db, a.ID, b.ID)
			if err != nil {
				return err
			}
			partnerScore := partnerOverlap(shared, signals[a.ID].convertingPartners, signals[b.ID].convertingPartners)

			patternScore := performancePattern(signals[a.ID].profile, signals[b.ID].profile)

			combined := domain.IndustryOverlapWeight*industryScore +
				domain.PartnerOverlapWeight*partnerScore +
				domain.PerformancePatternWeight*patternScore
			if combined < domain.PersistThreshold {
				continue
			}

			edge := domain.ProgramSimilarity{
				IndustryOverlapScore:    industryScore,
				PartnerOverlapScore:     partnerScore,
				PerformancePatternScore: patternScore,
				CombinedSimilarityScore: combined,
				SharedPartnerCount:      int(shared),
				SharedIndustryCount:     sharedIndustries,
				CalculatedAt:            now,
			}

			forward := edge
			forward.ID = s.genID.Generate()
			forward.ProgramID = a.ID
			forward.SimilarProgramID = b.ID

			backward := edge
			backward.ID = s.genID.Generate()
			backward.ProgramID = b.ID
			backward.SimilarProgramID = a.ID

			edges = append(edges, forward, backward)
		}
	}

	if err := s.repo.ReplaceAll(ctx, s.db, edges); err != nil {
		return err
	}

	s.log.Info("program similarities recomputed",
		zap.Int("programs", len(eligible)),
		zap.Int("edges", len(edges)),
	)
	return nil
}

func (s *Service) SimilarPrograms(ctx context.Context, programID string) ([]domain.SimilarProgram, error) {
	if cached, ok := s.similarCache.Get(programID); ok {
		return cached, nil
	}

	edges, err := s.repo.ListByProgram(ctx, s.db, programID, domain.RankingRelevanceThreshold)
	if err != nil {
		return nil, err
	}
	similar := make([]domain.SimilarProgram, 0, len(edges))
	for _, edge := range edges {
		similar = append(similar, domain.SimilarProgram{
			ProgramID: edge.SimilarProgramID,
			Score:     edge.CombinedSimilarityScore,
		})
	}

	s.similarCache.Set(programID, similar, similarProgramsTTL)
	return similar, nil
}

// partnerOverlap is shared / |union of converting partners|.
func partnerOverlap(shared, total1, total2 int64) float64 {
	denominator := total1 + total2 - shared
	if denominator <= 0 {
		return 0
	}
	return float64(shared) / float64(denominator)
}

// performancePattern averages the conversion-rate and order-value
// similarities. A metric missing on either side contributes zero.
func performancePattern(a, b domain.PerformanceProfile) float64 {
	crSim := scoring.MetricSimilarity(a.AvgConversionRate, b.AvgConversionRate)
	aovSim := scoring.MetricSimilarity(a.AvgOrderValue, b.AvgOrderValue)
	return (crSim + aovSim) / 2
}
