// Package domain defines the on-demand partner ranking query: filters,
// scoring weights and the ranked candidate shape returned to callers.
package domain

import (
	"context"
	"errors"
	"time"

	catalogdomain "github.com/loopwire/partnerly/internal/catalog/domain"
	similaritydomain "github.com/loopwire/partnerly/internal/similarity/domain"
)

type Status string

const (
	// StatusDiscover surfaces partners not yet enrolled in the program.
	StatusDiscover Status = "discover"
	// StatusInvited lists partners holding an open invitation.
	StatusInvited Status = "invited"
	// StatusRecruited lists invited partners who were approved.
	StatusRecruited Status = "recruited"
)

// Scoring constants for the discover status.
const (
	// TrustedBonus puts manually curated partners above any
	// algorithmic candidate.
	TrustedBonus = 200.0

	// SimilarityScoreCap bounds the similarity-weighted performance
	// component.
	SimilarityScoreCap = 50.0
	// SimilarityScoreScale converts the summed per-program composites
	// into the 0-50 range.
	SimilarityScoreScale = 50.0

	ConsistencyWeight = 0.20
	ConversionWeight  = 0.10
	LifetimeWeight    = 0.15
	CommissionWeight  = 0.05

	// ProgramMatchPoints rewards breadth of relevant experience.
	ProgramMatchPoints = 2.0
	ProgramMatchCap    = 15.0
)

// Request drives one ranking query. SimilarPrograms is the precomputed
// similarity list for ProgramID, already filtered upstream to scores
// above the relevance threshold.
type Request struct {
	ProgramID       string
	Status          Status
	PartnerIDs      []string
	Country         string
	Starred         *bool
	Page            int
	PageSize        int
	SimilarPrograms []similaritydomain.SimilarProgram
}

// RankedPartner is one candidate row. Displayed metrics are holistic
// (across all of the partner's programs); FinalScore is similarity
// scoped by construction.
type RankedPartner struct {
	catalogdomain.Partner

	FinalScore       float64    `json:"final_score"`
	ConversionRate   float64    `json:"conversion_rate"`
	LastConversionAt *time.Time `json:"last_conversion_at"`

	StarredAt  *time.Time `json:"starred_at,omitempty"`
	InvitedAt  *time.Time `json:"invited_at,omitempty"`
	EnrolledAt *time.Time `json:"enrolled_at,omitempty"`
}

var (
	ErrUnknownProgram    = errors.New("unknown_program")
	ErrInvalidStatus     = errors.New("invalid_status")
	ErrInvalidPagination = errors.New("invalid_pagination")
)

type Service interface {
	// CalculatePartnerRanking returns one ordered page of candidates.
	// "No candidates" is an empty page, never an error.
	CalculatePartnerRanking(ctx context.Context, req Request) ([]RankedPartner, error)
}
