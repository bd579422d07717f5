package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	FindProgramByID(ctx context.Context, db *gorm.DB, id string) (*Program, error)
	// ListPrograms returns every program that is not excluded from
	// discovery. Industry-tag eligibility is filtered by the caller.
	ListPrograms(ctx context.Context, db *gorm.DB) ([]Program, error)
	FindPartnerByID(ctx context.Context, db *gorm.DB, id string) (*Partner, error)
}
