package repository

import (
	"context"
	"errors"

	"github.com/loopwire/partnerly/internal/catalog/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) FindProgramByID(ctx context.Context, db *gorm.DB, id string) (*domain.Program, error) {
	var program domain.Program
	err := db.WithContext(ctx).Where("id = ?", id).First(&program).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &program, nil
}

func (r *repo) ListPrograms(ctx context.Context, db *gorm.DB) ([]domain.Program, error) {
	var programs []domain.Program
	err := db.WithContext(ctx).
		Where("exclude_from_discovery = ?", false).
		Order("id asc").
		Find(&programs).Error
	if err != nil {
		return nil, err
	}
	return programs, nil
}

func (r *repo) FindPartnerByID(ctx context.Context, db *gorm.DB, id string) (*domain.Partner, error) {
	var partner domain.Partner
	err := db.WithContext(ctx).Where("id = ?", id).First(&partner).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &partner, nil
}
