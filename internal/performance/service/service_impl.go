package service

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/loopwire/partnerly/internal/clock"
	"github.com/loopwire/partnerly/internal/config"
	"github.com/loopwire/partnerly/internal/performance/domain"
	"github.com/loopwire/partnerly/internal/scoring"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service struct {
	db            *gorm.DB
	log           *zap.Logger
	genID         *snowflake.Node
	clock         clock.Clock
	repo          domain.Repository
	testProgramID string
}

type Params struct {
	fx.In

	Cfg   config.Config
	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:            p.DB,
		log:           p.Log.Named("performance.service"),
		genID:         p.GenID,
		clock:         p.Clock,
		repo:          p.Repo,
		testProgramID: p.Cfg.TestProgramID,
	}
}

func (s *Service) CalculatePartnerProgramPerformances(ctx context.Context) error {
	stats, err := s.repo.AggregatePairStats(ctx, s.db, domain.MinClicks, s.testProgramID)
	if err != nil {
		return err
	}

	now := s.clock.Now()
	rows := make([]domain.PartnerProgramPerformance, 0, len(stats))
	for _, stat := range stats {
		row := domain.PartnerProgramPerformance{
			ID:               s.genID.Generate(),
			PartnerID:        stat.PartnerID,
			ProgramID:        stat.ProgramID,
			TotalClicks:      stat.TotalClicks,
			TotalLeads:       stat.TotalLeads,
			TotalConversions: stat.TotalConversions,
			TotalSales:       stat.TotalSales,
			TotalSaleAmount:  stat.TotalSaleAmount,
			LastConversionAt: stat.LastConversionAt.Ptr(),
			LastCalculatedAt: now,
		}

		if stat.TotalClicks > 0 {
			row.ConversionRate = float64(stat.TotalConversions) / float64(stat.TotalClicks)
		}
		if stat.TotalLeads > 0 {
			row.LeadConversionRate = float64(stat.TotalConversions) / float64(stat.TotalLeads)
		}
		if stat.TotalConversions > 0 {
			row.AverageLifetimeValue = float64(stat.TotalSaleAmount) / float64(stat.TotalConversions)
		}

		if stat.LastConversionAt.Valid {
			days := int(now.Sub(stat.LastConversionAt.Time).Hours() / 24)
			if days < 0 {
				days = 0
			}
			row.DaysSinceLastConversion = &days
		}

		// Wilson shrinkage pulls small samples toward zero; the linear
		// ramp further discounts anything under the confidence floor.
		wilson := scoring.WilsonLowerBound(row.ConversionRate, stat.TotalClicks, scoring.WilsonZ)
		ramp := scoring.SampleSizeRamp(stat.TotalClicks, domain.FullConfidenceClicks)
		row.PerformanceScore = wilson * ramp * 100
		row.ConsistencyScore = scoring.ConsistencyScore(row.DaysSinceLastConversion)

		rows = append(rows, row)
	}

	if err := s.repo.ReplaceAll(ctx, s.db, rows); err != nil {
		return err
	}

	s.log.Info("partner program performances recomputed",
		zap.Int("pairs", len(rows)),
	)
	return nil
}
