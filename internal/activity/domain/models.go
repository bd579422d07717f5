// Package domain defines the activity event stream contract and the
// batch aggregation service that rolls events up into enrollment stats.
package domain

import (
	"context"
	"errors"
	"fmt"
	"time"
)

type EventType string

const (
	EventLead       EventType = "lead"
	EventCommission EventType = "commission"
)

// Event is one immutable activity record delivered at least once from
// the stream. EntryID is the stream's own id and doubles as the ack
// handle; ID is the upstream event id carried in the payload.
type Event struct {
	EntryID   string    `json:"entry_id"`
	ID        string    `json:"id"`
	ProgramID string    `json:"program_id"`
	PartnerID string    `json:"partner_id"`
	Type      EventType `json:"type"`
}

// PairKey identifies a (program, partner) pair touched by a batch.
type PairKey struct {
	ProgramID string
	PartnerID string
}

func (k PairKey) String() string {
	return fmt.Sprintf("%s:%s", k.ProgramID, k.PartnerID)
}

// Stream is the at-least-once event log. Entries persist until acked.
type Stream interface {
	ReadBatch(ctx context.Context, count int64) ([]Event, error)
	// Ack deletes processed entries. The aggregator acks every entry it
	// read; redelivery safety comes from idempotent overwrite, not from
	// replaying failed rows.
	Ack(ctx context.Context, entryIDs []string) error
	Publish(ctx context.Context, event Event) (string, error)
}

// EnrollmentStatsUpdate is a partial update for one enrollment row.
// A nil field is excluded from the generated SET list entirely; absent
// never means zero.
type EnrollmentStatsUpdate struct {
	ProgramID string
	PartnerID string

	TotalClicks      *int64
	TotalLeads       *int64
	TotalConversions *int64
	TotalSales       *int64
	TotalSaleAmount  *int64
	TotalCommissions *int64

	ConversionRate          *float64
	LeadConversionRate      *float64
	AverageLifetimeValue    *float64
	ConsistencyScore        *float64
	DaysSinceLastConversion *int
	LastConversionAt        *time.Time
}

// RowError is a single enrollment row that failed to update. The batch
// keeps a bounded sample for diagnostics.
type RowError struct {
	ProgramID string `json:"program_id"`
	PartnerID string `json:"partner_id"`
	Message   string `json:"message"`
}

// BatchResult summarizes one aggregation pass.
type BatchResult struct {
	Processed  int        `json:"processed"`
	ErrorCount int        `json:"error_count"`
	Errors     []RowError `json:"errors,omitempty"`
	// EntryIDs lists every stream entry consumed, acked or not.
	EntryIDs []string `json:"entry_ids,omitempty"`
}

type Service interface {
	// ProcessBatch reads up to batchSize events, rolls them up into
	// enrollment stats and, when deleteAfterRead is set, acks the
	// consumed entries. An empty batch is a successful no-op.
	ProcessBatch(ctx context.Context, batchSize int64, deleteAfterRead bool) (BatchResult, error)
}

var ErrStreamUnavailable = errors.New("activity_stream_unavailable")
