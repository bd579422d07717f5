// Package domain contains the read-side catalog entities the pipeline
// consumes: programs (merchants) and partners (affiliates). Both are
// owned by the onboarding surfaces; this engine never mutates them.
package domain

import (
	"time"

	"gorm.io/datatypes"
)

// Program is a merchant running a partner program.
type Program struct {
	ID                string                      `gorm:"primaryKey" json:"id"`
	Name              string                      `gorm:"not null" json:"name"`
	IndustryInterests datatypes.JSONSlice[string] `gorm:"type:jsonb" json:"industry_interests"`
	// ExcludeFromDiscovery marks internal smoke-test programs that must
	// never appear in similarity or ranking output.
	ExcludeFromDiscovery bool      `gorm:"not null;default:false" json:"exclude_from_discovery"`
	CreatedAt            time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt            time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Program) TableName() string { return "programs" }

// Eligible reports whether the program participates in similarity
// computation: not a test program and carrying at least one industry tag.
func (p Program) Eligible() bool {
	return !p.ExcludeFromDiscovery && len(p.IndustryInterests) > 0
}

// Partner is an affiliate who can be enrolled in programs.
type Partner struct {
	ID      string `gorm:"primaryKey" json:"id"`
	Name    string `gorm:"not null" json:"name"`
	Country string `gorm:"index" json:"country"`

	// DiscoverableAt is set when the partner opts into being surfaced to
	// programs for recruitment.
	DiscoverableAt *time.Time `gorm:"index" json:"discoverable_at"`
	// TrustedAt marks manually curated partners that sort above
	// algorithmic candidates.
	TrustedAt *time.Time `json:"trusted_at"`

	Website         string `json:"website"`
	YoutubeHandle   string `json:"youtube_handle"`
	TwitterHandle   string `json:"twitter_handle"`
	LinkedinHandle  string `json:"linkedin_handle"`
	InstagramHandle string `json:"instagram_handle"`
	TiktokHandle    string `json:"tiktok_handle"`

	Categories                 datatypes.JSONSlice[string] `gorm:"type:jsonb" json:"categories"`
	PreferredEarningStructures datatypes.JSONSlice[string] `gorm:"type:jsonb" json:"preferred_earning_structures"`
	SalesChannels              datatypes.JSONSlice[string] `gorm:"type:jsonb" json:"sales_channels"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Partner) TableName() string { return "partners" }

// HasOnlinePresence reports whether any independently verifiable
// online-presence field is filled in. Used as a ranking tie-break.
func (p Partner) HasOnlinePresence() bool {
	return p.Website != "" ||
		p.YoutubeHandle != "" ||
		p.TwitterHandle != "" ||
		p.LinkedinHandle != "" ||
		p.InstagramHandle != "" ||
		p.TiktokHandle != ""
}
