package repository

import (
	"context"
	"errors"

	"github.com/loopwire/partnerly/internal/discovery/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) FindByPair(ctx context.Context, db *gorm.DB, programID, partnerID string) (*domain.DiscoveredPartner, error) {
	var row domain.DiscoveredPartner
	err := db.WithContext(ctx).
		Where("program_id = ? AND partner_id = ?", programID, partnerID).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *repo) Save(ctx context.Context, db *gorm.DB, row *domain.DiscoveredPartner) error {
	return db.WithContext(ctx).Save(row).Error
}
