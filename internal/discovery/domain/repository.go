package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	FindByPair(ctx context.Context, db *gorm.DB, programID, partnerID string) (*DiscoveredPartner, error)
	Save(ctx context.Context, db *gorm.DB, row *DiscoveredPartner) error
}
