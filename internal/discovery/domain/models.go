// Package domain contains discovery-workflow bookkeeping: one row per
// (program, partner) once a program operator interacts with a candidate.
package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

type DiscoveredPartner struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	ProgramID string       `gorm:"not null;uniqueIndex:idx_discovered_pair,priority:1" json:"program_id"`
	PartnerID string       `gorm:"not null;uniqueIndex:idx_discovered_pair,priority:2" json:"partner_id"`

	StarredAt *time.Time `json:"starred_at"`
	IgnoredAt *time.Time `json:"ignored_at"`
	InvitedAt *time.Time `json:"invited_at"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (DiscoveredPartner) TableName() string { return "discovered_partners" }

var (
	ErrUnknownProgram = errors.New("unknown_program")
	ErrUnknownPartner = errors.New("unknown_partner")
)

type Service interface {
	Star(ctx context.Context, programID, partnerID string, starred bool) (*DiscoveredPartner, error)
	Ignore(ctx context.Context, programID, partnerID string, ignored bool) (*DiscoveredPartner, error)
	MarkInvited(ctx context.Context, programID, partnerID string) (*DiscoveredPartner, error)
}
