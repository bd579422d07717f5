package service

import (
	"context"
	"sort"

	catalogdomain "github.com/loopwire/partnerly/internal/catalog/domain"
	"github.com/loopwire/partnerly/internal/ranking/domain"
	"github.com/loopwire/partnerly/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	repo        domain.Repository
	catalogRepo catalogdomain.Repository
}

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	Repo        domain.Repository
	CatalogRepo catalogdomain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("ranking.service"),
		repo:        p.Repo,
		catalogRepo: p.CatalogRepo,
	}
}

func (s *Service) CalculatePartnerRanking(ctx context.Context, req domain.Request) ([]domain.RankedPartner, error) {
	page := pagination.Pagination{Page: req.Page, PageSize: req.PageSize}
	if !page.Valid() {
		return nil, domain.ErrInvalidPagination
	}
	switch req.Status {
	case domain.StatusDiscover, domain.StatusInvited, domain.StatusRecruited:
	default:
		return nil, domain.ErrInvalidStatus
	}

	program, err := s.catalogRepo.FindProgramByID(ctx, s.db, req.ProgramID)
	if err != nil {
		return nil, err
	}
	if program == nil {
		return nil, domain.ErrUnknownProgram
	}

	partners, err := s.repo.EligiblePartners(ctx, s.db, domain.EligibilityFilter{
		ProgramID:  req.ProgramID,
		Status:     req.Status,
		PartnerIDs: req.PartnerIDs,
		Country:    req.Country,
		Starred:    req.Starred,
	})
	if err != nil {
		return nil, err
	}
	if len(partners) == 0 {
		return []domain.RankedPartner{}, nil
	}

	partnerIDs := make([]string, 0, len(partners))
	for _, partner := range partners {
		partnerIDs = append(partnerIDs, partner.ID)
	}

	holistic, err := s.repo.HolisticStats(ctx, s.db, partnerIDs)
	if err != nil {
		return nil, err
	}
	holisticByPartner := make(map[string]domain.HolisticStatsRow, len(holistic))
	for _, row := range holistic {
		holisticByPartner[row.PartnerID] = row
	}

	discovered, err := s.repo.DiscoveredRows(ctx, s.db, req.ProgramID, partnerIDs)
	if err != nil {
		return nil, err
	}
	discoveredByPartner := make(map[string]domain.DiscoveredRow, len(discovered))
	for _, row := range discovered {
		discoveredByPartner[row.PartnerID] = row
	}

	var scores map[string]partnerScore
	if req.Status == domain.StatusDiscover {
		scores, err = s.scoreCandidates(ctx, partnerIDs, req.SimilarPrograms)
		if err != nil {
			return nil, err
		}
	}

	var enrolledByPartner map[string]domain.EnrollmentMetaRow
	if req.Status == domain.StatusRecruited {
		meta, err := s.repo.EnrollmentMeta(ctx, s.db, req.ProgramID, partnerIDs)
		if err != nil {
			return nil, err
		}
		enrolledByPartner = make(map[string]domain.EnrollmentMetaRow, len(meta))
		for _, row := range meta {
			enrolledByPartner[row.PartnerID] = row
		}
	}

	ranked := make([]domain.RankedPartner, 0, len(partners))
	for _, partner := range partners {
		row := domain.RankedPartner{Partner: partner}

		if stats, ok := holisticByPartner[partner.ID]; ok {
			if stats.TotalClicks > 0 {
				row.ConversionRate = float64(stats.TotalConversions) / float64(stats.TotalClicks)
			}
			row.LastConversionAt = stats.LastConversionAt.Ptr()
		}
		if dp, ok := discoveredByPartner[partner.ID]; ok {
			row.StarredAt = dp.StarredAt
			row.InvitedAt = dp.InvitedAt
		}
		if meta, ok := enrolledByPartner[partner.ID]; ok {
			created := meta.CreatedAt
			row.EnrolledAt = &created
		}
		if req.Status == domain.StatusDiscover {
			row.FinalScore = scores[partner.ID].final(partner)
		}

		ranked = append(ranked, row)
	}

	s.order(ranked, req)
	return pagination.Slice(ranked, page), nil
}

func (s *Service) order(ranked []domain.RankedPartner, req domain.Request) {
	switch {
	case req.Status == domain.StatusDiscover && req.Starred != nil && *req.Starred:
		// A manually curated queue: oldest star first.
		sort.SliceStable(ranked, func(i, j int) bool {
			return timeAscNilLast(ranked[i].StarredAt, ranked[j].StarredAt, ranked[i].ID, ranked[j].ID)
		})
	case req.Status == domain.StatusDiscover:
		sort.SliceStable(ranked, func(i, j int) bool {
			if ranked[i].FinalScore != ranked[j].FinalScore {
				return ranked[i].FinalScore > ranked[j].FinalScore
			}
			pi, pj := ranked[i].HasOnlinePresence(), ranked[j].HasOnlinePresence()
			if pi != pj {
				return pi
			}
			return ranked[i].ID < ranked[j].ID
		})
	case req.Status == domain.StatusInvited:
		sort.SliceStable(ranked, func(i, j int) bool {
			return timeAscNilLast(ranked[i].InvitedAt, ranked[j].InvitedAt, ranked[i].ID, ranked[j].ID)
		})
	case req.Status == domain.StatusRecruited:
		sort.SliceStable(ranked, func(i, j int) bool {
			ei, ej := ranked[i].EnrolledAt, ranked[j].EnrolledAt
			if ei != nil && ej != nil && !ei.Equal(*ej) {
				return ei.After(*ej)
			}
			if (ei != nil) != (ej != nil) {
				return ei != nil
			}
			return ranked[i].ID < ranked[j].ID
		})
	}
}
