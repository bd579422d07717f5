package service

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	catalogdomain "github.com/loopwire/partnerly/internal/catalog/domain"
	"github.com/loopwire/partnerly/internal/clock"
	"github.com/loopwire/partnerly/internal/discovery/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	clock       clock.Clock
	repo        domain.Repository
	catalogRepo catalogdomain.Repository
}

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	GenID       *snowflake.Node
	Clock       clock.Clock
	Repo        domain.Repository
	CatalogRepo catalogdomain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("discovery.service"),
		genID:       p.GenID,
		clock:       p.Clock,
		repo:        p.Repo,
		catalogRepo: p.CatalogRepo,
	}
}

func (s *Service) Star(ctx context.Context, programID, partnerID string, starred bool) (*domain.DiscoveredPartner, error) {
	return s.patch(ctx, programID, partnerID, func(row *domain.DiscoveredPartner, now time.Time) {
		if starred {
			row.StarredAt = &now
			return
		}
		row.StarredAt = nil
	})
}

func (s *Service) Ignore(ctx context.Context, programID, partnerID string, ignored bool) (*domain.DiscoveredPartner, error) {
	return s.patch(ctx, programID, partnerID, func(row *domain.DiscoveredPartner, now time.Time) {
		if ignored {
			row.IgnoredAt = &now
			return
		}
		row.IgnoredAt = nil
	})
}

func (s *Service) MarkInvited(ctx context.Context, programID, partnerID string) (*domain.DiscoveredPartner, error) {
	return s.patch(ctx, programID, partnerID, func(row *domain.DiscoveredPartner, now time.Time) {
		if row.InvitedAt == nil {
			row.InvitedAt = &now
		}
	})
}

func (s *Service) patch(ctx context.Context, programID, partnerID string, apply func(*domain.DiscoveredPartner, time.Time)) (*domain.DiscoveredPartner, error) {
	program, err := s.catalogRepo.FindProgramByID(ctx, s.db, programID)
	if err != nil {
		return nil, err
	}
	if program == nil {
		return nil, domain.ErrUnknownProgram
	}
	partner, err := s.catalogRepo.FindPartnerByID(ctx, s.db, partnerID)
	if err != nil {
		return nil, err
	}
	if partner == nil {
		return nil, domain.ErrUnknownPartner
	}

	now := s.clock.Now()
	var result *domain.DiscoveredPartner
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row, err := s.repo.FindByPair(ctx, tx, programID, partnerID)
		if err != nil {
			return err
		}
		if row == nil {
			row = &domain.DiscoveredPartner{
				ID:        s.genID.Generate(),
				ProgramID: programID,
				PartnerID: partnerID,
				CreatedAt: now,
			}
		}
		apply(row, now)
		row.UpdatedAt = now
		if err := s.repo.Save(ctx, tx, row); err != nil {
			return err
		}
		result = row
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
