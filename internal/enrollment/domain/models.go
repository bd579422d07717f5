// Package domain contains the enrollment relationship between a partner
// and a program, plus the raw tracking rows (links, commissions) its
// rolled-up counters are derived from. Counters and derived metrics are
// written exclusively by the activity aggregator; they are never
// hand-edited.
package domain

import "time"

type EnrollmentStatus string

const (
	StatusPending  EnrollmentStatus = "pending"
	StatusApproved EnrollmentStatus = "approved"
	StatusRejected EnrollmentStatus = "rejected"
	StatusInvited  EnrollmentStatus = "invited"
	StatusBanned   EnrollmentStatus = "banned"
)

// ProgramEnrollment holds rolled-up per-partner-per-program stats.
// At most one row exists per (program_id, partner_id).
type ProgramEnrollment struct {
	ID        string           `gorm:"primaryKey" json:"id"`
	ProgramID string           `gorm:"not null;uniqueIndex:idx_enrollment_pair,priority:1" json:"program_id"`
	PartnerID string           `gorm:"not null;uniqueIndex:idx_enrollment_pair,priority:2;index" json:"partner_id"`
	Status    EnrollmentStatus `gorm:"not null;default:pending" json:"status"`

	TotalClicks      int64 `gorm:"not null;default:0" json:"total_clicks"`
	TotalLeads       int64 `gorm:"not null;default:0" json:"total_leads"`
	TotalConversions int64 `gorm:"not null;default:0" json:"total_conversions"`
	TotalSales       int64 `gorm:"not null;default:0" json:"total_sales"`
	// Amounts are in cents.
	TotalSaleAmount  int64 `gorm:"not null;default:0" json:"total_sale_amount"`
	TotalCommissions int64 `gorm:"not null;default:0" json:"total_commissions"`

	ConversionRate          float64    `gorm:"not null;default:0" json:"conversion_rate"`
	LeadConversionRate      float64    `gorm:"not null;default:0" json:"lead_conversion_rate"`
	AverageLifetimeValue    float64    `gorm:"not null;default:0" json:"average_lifetime_value"`
	ConsistencyScore        float64    `gorm:"not null;default:0" json:"consistency_score"`
	DaysSinceLastConversion *int       `json:"days_since_last_conversion"`
	LastConversionAt        *time.Time `json:"last_conversion_at"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (ProgramEnrollment) TableName() string { return "program_enrollments" }

// Link is a raw tracking link with source-of-truth counters. The
// aggregator re-derives enrollment stats from sums over these rows.
type Link struct {
	ID        string `gorm:"primaryKey" json:"id"`
	ProgramID string `gorm:"not null;index:idx_link_pair,priority:1" json:"program_id"`
	// PartnerID is empty for unattributed links.
	PartnerID string `gorm:"index:idx_link_pair,priority:2" json:"partner_id"`

	Clicks      int64 `gorm:"not null;default:0" json:"clicks"`
	Leads       int64 `gorm:"not null;default:0" json:"leads"`
	Conversions int64 `gorm:"not null;default:0" json:"conversions"`
	Sales       int64 `gorm:"not null;default:0" json:"sales"`
	// SaleAmount is in cents.
	SaleAmount       int64      `gorm:"not null;default:0" json:"sale_amount"`
	LastConversionAt *time.Time `json:"last_conversion_at"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Link) TableName() string { return "links" }

type CommissionStatus string

const (
	CommissionPending   CommissionStatus = "pending"
	CommissionProcessed CommissionStatus = "processed"
	CommissionPaid      CommissionStatus = "paid"
	CommissionRefunded  CommissionStatus = "refunded"
	CommissionDuplicate CommissionStatus = "duplicate"
	CommissionFraud     CommissionStatus = "fraud"
	CommissionCanceled  CommissionStatus = "canceled"
)

// Commission is a single earned commission. Duplicate and fraud rows
// carry zero earnings by construction, so earnings sums over the payable
// statuses need no extra exclusion step.
type Commission struct {
	ID        string `gorm:"primaryKey" json:"id"`
	ProgramID string `gorm:"not null;index:idx_commission_pair,priority:1" json:"program_id"`
	PartnerID string `gorm:"not null;index:idx_commission_pair,priority:2" json:"partner_id"`
	// Earnings is in cents.
	Earnings  int64            `gorm:"not null;default:0" json:"earnings"`
	Status    CommissionStatus `gorm:"not null;default:pending" json:"status"`
	CreatedAt time.Time        `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (Commission) TableName() string { return "commissions" }

// PayableCommissionStatuses are the statuses counted toward a partner's
// rolled-up commission total.
var PayableCommissionStatuses = []CommissionStatus{
	CommissionPending,
	CommissionProcessed,
	CommissionPaid,
}
