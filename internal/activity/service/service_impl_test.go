package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/loopwire/partnerly/internal/activity/domain"
	"github.com/loopwire/partnerly/internal/activity/repository"
	"github.com/loopwire/partnerly/internal/clock"
	enrollmentdomain "github.com/loopwire/partnerly/internal/enrollment/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fakeStream struct {
	mu      sync.Mutex
	entries []domain.Event
	acked   []string
	readErr error
	ackErr  error
}

func (f *fakeStream) ReadBatch(ctx context.Context, count int64) ([]domain.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.readErr != nil {
		return nil, f.readErr
	}
	if int64(len(f.entries)) <= count {
		return append([]domain.Event(nil), f.entries...), nil
	}
	return append([]domain.Event(nil), f.entries[:count]...), nil
}

func (f *fakeStream) Ack(ctx context.Context, entryIDs []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ackErr != nil {
		return f.ackErr
	}
	f.acked = append(f.acked, entryIDs...)
	remaining := f.entries[:0]
	for _, e := range f.entries {
		keep := true
		for _, id := range entryIDs {
			if e.EntryID == id {
				keep = false
				break
			}
		}
		if keep {
			remaining = append(remaining, e)
		}
	}
	f.entries = remaining
	return nil
}

func (f *fakeStream) Publish(ctx context.Context, event domain.Event) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	event.EntryID = fmt.Sprintf("%d-0", len(f.acked)+len(f.entries)+1)
	f.entries = append(f.entries, event)
	return event.EntryID, nil
}

func setupAggregator(t *testing.T, stream domain.Stream, clk clock.Clock) (domain.Service, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&enrollmentdomain.ProgramEnrollment{},
		&enrollmentdomain.Link{},
		&enrollmentdomain.Commission{},
	))

	svc := New(Params{
		DB:     db,
		Log:    zap.NewNop(),
		Clock:  clk,
		Stream: stream,
		Repo:   repository.Provide(),
	})
	return svc, db
}

func seedEnrollment(t *testing.T, db *gorm.DB, id, programID, partnerID string) {
	t.Helper()
	require.NoError(t, db.Create(&enrollmentdomain.ProgramEnrollment{
		ID:        id,
		ProgramID: programID,
		PartnerID: partnerID,
		Status:    enrollmentdomain.StatusApproved,
	}).Error)
}

func fetchEnrollment(t *testing.T, db *gorm.DB, programID, partnerID string) enrollmentdomain.ProgramEnrollment {
	t.Helper()
	var row enrollmentdomain.ProgramEnrollment
	require.NoError(t, db.Where("program_id = ? AND partner_id = ?", programID, partnerID).First(&row).Error)
	return row
}

func TestProcessBatchEmptyStreamIsNoOp(t *testing.T) {
	svc, _ := setupAggregator(t, &fakeStream{}, clock.NewFakeClock(time.Now()))

	result, err := svc.ProcessBatch(context.Background(), 100, true)
	require.NoError(t, err)
	assert.Zero(t, result.Processed)
	assert.Zero(t, result.ErrorCount)
	assert.Empty(t, result.EntryIDs)
}

func TestProcessBatchRollsUpLinkAndCommissionStats(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	lastConv := now.Add(-48 * time.Hour)

	stream := &fakeStream{entries: []domain.Event{
		{EntryID: "1-0", ID: "ev1", ProgramID: "prog-a", PartnerID: "partner-1", Type: domain.EventLead},
		{EntryID: "2-0", ID: "ev2", ProgramID: "prog-a", PartnerID: "partner-1", Type: domain.EventLead},
		{EntryID: "3-0", ID: "ev3", ProgramID: "prog-a", PartnerID: "partner-1", Type: domain.EventLead},
		{EntryID: "4-0", ID: "ev4", ProgramID: "prog-a", PartnerID: "partner-1", Type: domain.EventCommission},
	}}
	svc, db := setupAggregator(t, stream, clock.NewFakeClock(now))

	seedEnrollment(t, db, "en-1", "prog-a", "partner-1")
	require.NoError(t, db.Create(&enrollmentdomain.Link{
		ID: "link-1", ProgramID: "prog-a", PartnerID: "partner-1",
		Clicks: 100, Leads: 20, Conversions: 10, Sales: 10, SaleAmount: 50000,
		LastConversionAt: &lastConv,
	}).Error)
	require.NoError(t, db.Create(&enrollmentdomain.Link{
		ID: "link-2", ProgramID: "prog-a", PartnerID: "partner-1",
		Clicks: 100, Leads: 0, Conversions: 0,
	}).Error)
	require.NoError(t, db.Create(&enrollmentdomain.Commission{
		ID: "com-1", ProgramID: "prog-a", PartnerID: "partner-1", Earnings: 1500, Status: enrollmentdomain.CommissionPaid,
	}).Error)
	require.NoError(t, db.Create(&enrollmentdomain.Commission{
		ID: "com-2", ProgramID: "prog-a", PartnerID: "partner-1", Earnings: 900, Status: enrollmentdomain.CommissionFraud,
	}).Error)

	result, err := svc.ProcessBatch(context.Background(), 100, true)
	require.NoError(t, err)
	// three leads and one commission on the same pair collapse into a
	// single row update
	assert.Equal(t, 1, result.Processed)
	assert.Zero(t, result.ErrorCount)
	assert.Len(t, result.EntryIDs, 4)

	row := fetchEnrollment(t, db, "prog-a", "partner-1")
	assert.Equal(t, int64(200), row.TotalClicks)
	assert.Equal(t, int64(20), row.TotalLeads)
	assert.Equal(t, int64(10), row.TotalConversions)
	assert.Equal(t, int64(50000), row.TotalSaleAmount)
	// fraud commission excluded
	assert.Equal(t, int64(1500), row.TotalCommissions)
	assert.InDelta(t, 0.05, row.ConversionRate, 1e-9)
	assert.InDelta(t, 0.5, row.LeadConversionRate, 1e-9)
	assert.InDelta(t, 5000.0, row.AverageLifetimeValue, 1e-9)
	require.NotNil(t, row.DaysSinceLastConversion)
	assert.Equal(t, 2, *row.DaysSinceLastConversion)
	assert.Equal(t, 100.0, row.ConsistencyScore)
}

func TestProcessBatchIsIdempotent(t *testing.T) {
	now := time.Now().UTC()
	stream := &fakeStream{entries: []domain.Event{
		{EntryID: "1-0", ID: "ev1", ProgramID: "prog-a", PartnerID: "partner-1", Type: domain.EventLead},
	}}
	svc, db := setupAggregator(t, stream, clock.NewFakeClock(now))

	seedEnrollment(t, db, "en-1", "prog-a", "partner-1")
	require.NoError(t, db.Create(&enrollmentdomain.Link{
		ID: "link-1", ProgramID: "prog-a", PartnerID: "partner-1", Clicks: 40, Leads: 4,
	}).Error)

	_, err := svc.ProcessBatch(context.Background(), 100, false)
	require.NoError(t, err)
	first := fetchEnrollment(t, db, "prog-a", "partner-1")

	// redelivery: same entries read again since nothing was acked
	_, err = svc.ProcessBatch(context.Background(), 100, false)
	require.NoError(t, err)
	second := fetchEnrollment(t, db, "prog-a", "partner-1")

	// SET to authoritative sums, never increment
	assert.Equal(t, int64(40), first.TotalClicks)
	assert.Equal(t, first.TotalClicks, second.TotalClicks)
	assert.Equal(t, first.TotalLeads, second.TotalLeads)
}

func TestProcessBatchCommissionOnlyLeavesLinkStatsAlone(t *testing.T) {
	now := time.Now().UTC()
	stream := &fakeStream{entries: []domain.Event{
		{EntryID: "1-0", ID: "ev1", ProgramID: "prog-a", PartnerID: "partner-1", Type: domain.EventCommission},
	}}
	svc, db := setupAggregator(t, stream, clock.NewFakeClock(now))

	seedEnrollment(t, db, "en-1", "prog-a", "partner-1")
	require.NoError(t, db.Model(&enrollmentdomain.ProgramEnrollment{}).
		Where("id = ?", "en-1").
		Updates(map[string]any{"total_clicks": 123, "conversion_rate": 0.25}).Error)
	require.NoError(t, db.Create(&enrollmentdomain.Commission{
		ID: "com-1", ProgramID: "prog-a", PartnerID: "partner-1", Earnings: 700, Status: enrollmentdomain.CommissionPending,
	}).Error)

	_, err := svc.ProcessBatch(context.Background(), 100, false)
	require.NoError(t, err)

	row := fetchEnrollment(t, db, "prog-a", "partner-1")
	assert.Equal(t, int64(700), row.TotalCommissions)
	// absent link aggregates must not zero out existing stats
	assert.Equal(t, int64(123), row.TotalClicks)
	assert.InDelta(t, 0.25, row.ConversionRate, 1e-9)
}

func TestProcessBatchZeroDenominators(t *testing.T) {
	now := time.Now().UTC()
	stream := &fakeStream{entries: []domain.Event{
		{EntryID: "1-0", ID: "ev1", ProgramID: "prog-a", PartnerID: "partner-1", Type: domain.EventLead},
	}}
	svc, db := setupAggregator(t, stream, clock.NewFakeClock(now))

	seedEnrollment(t, db, "en-1", "prog-a", "partner-1")
	require.NoError(t, db.Create(&enrollmentdomain.Link{
		ID: "link-1", ProgramID: "prog-a", PartnerID: "partner-1",
	}).Error)

	_, err := svc.ProcessBatch(context.Background(), 100, false)
	require.NoError(t, err)

	row := fetchEnrollment(t, db, "prog-a", "partner-1")
	assert.Zero(t, row.ConversionRate)
	assert.Zero(t, row.LeadConversionRate)
	assert.Zero(t, row.AverageLifetimeValue)
	// never converted → midpoint consistency
	assert.Equal(t, 50.0, row.ConsistencyScore)
	assert.Nil(t, row.DaysSinceLastConversion)
}

func TestProcessBatchSkipsUnattributedEvents(t *testing.T) {
	now := time.Now().UTC()
	stream := &fakeStream{entries: []domain.Event{
		{EntryID: "1-0", ID: "ev1", ProgramID: "prog-a", PartnerID: "", Type: domain.EventLead},
		{EntryID: "2-0", ID: "ev2", ProgramID: "", PartnerID: "partner-1", Type: domain.EventLead},
	}}
	svc, _ := setupAggregator(t, stream, clock.NewFakeClock(now))

	result, err := svc.ProcessBatch(context.Background(), 100, true)
	require.NoError(t, err)
	assert.Zero(t, result.Processed)
	// unattributed entries are still consumed and acked
	assert.Len(t, result.EntryIDs, 2)
	assert.Len(t, stream.acked, 2)
}

func TestProcessBatchAcksOnlyWhenRequested(t *testing.T) {
	now := time.Now().UTC()
	stream := &fakeStream{entries: []domain.Event{
		{EntryID: "1-0", ID: "ev1", ProgramID: "prog-a", PartnerID: "partner-1", Type: domain.EventLead},
	}}
	svc, db := setupAggregator(t, stream, clock.NewFakeClock(now))
	seedEnrollment(t, db, "en-1", "prog-a", "partner-1")

	_, err := svc.ProcessBatch(context.Background(), 100, false)
	require.NoError(t, err)
	assert.Empty(t, stream.acked)

	_, err = svc.ProcessBatch(context.Background(), 100, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"1-0"}, stream.acked)
}

func TestProcessBatchStreamError(t *testing.T) {
	stream := &fakeStream{readErr: domain.ErrStreamUnavailable}
	svc, _ := setupAggregator(t, stream, clock.NewFakeClock(time.Now()))

	_, err := svc.ProcessBatch(context.Background(), 100, true)
	assert.ErrorIs(t, err, domain.ErrStreamUnavailable)
}
