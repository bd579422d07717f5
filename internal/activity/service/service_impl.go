package service

import (
	"context"
	"sort"
	"sync"

	"github.com/loopwire/partnerly/internal/activity/domain"
	"github.com/loopwire/partnerly/internal/clock"
	"github.com/loopwire/partnerly/internal/scoring"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	// updateSubBatchSize bounds in-flight row updates; each sub-batch is
	// issued concurrently and awaited before the next one starts.
	updateSubBatchSize = 50
	// maxErrorSamples caps the per-batch error detail kept for
	// diagnostics; the full count is always reported.
	maxErrorSamples = 10
)

type Service struct {
	db     *gorm.DB
	log    *zap.Logger
	clock  clock.Clock
	stream domain.Stream
	repo   domain.Repository
}

type Params struct {
	fx.In

	DB     *gorm.DB
	Log    *zap.Logger
	Clock  clock.Clock
	Stream domain.Stream
	Repo   domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:     p.DB,
		log:    p.Log.Named("activity.aggregator"),
		clock:  p.Clock,
		stream: p.Stream,
		repo:   p.Repo,
	}
}

func (s *Service) ProcessBatch(ctx context.Context, batchSize int64, deleteAfterRead bool) (domain.BatchResult, error) {
	events, err := s.stream.ReadBatch(ctx, batchSize)
	if err != nil {
		return domain.BatchResult{}, err
	}
	if len(events) == 0 {
		return domain.BatchResult{}, nil
	}

	entryIDs := make([]string, 0, len(events))
	for _, event := range events {
		entryIDs = append(entryIDs, event.EntryID)
	}

	linkPairs, commissionPairs := partition(events)

	linkRows, err := s.repo.SumLinkStats(ctx, s.db, linkPairs)
	if err != nil {
		return domain.BatchResult{}, err
	}
	commissionRows, err := s.repo.SumCommissions(ctx, s.db, commissionPairs)
	if err != nil {
		return domain.BatchResult{}, err
	}

	updates := s.mergeUpdates(linkRows, commissionRows)
	result := s.applyUpdates(ctx, updates)
	result.EntryIDs = entryIDs

	// Entries are acked regardless of row failures: the update SETs
	// authoritative sums, so the next run converges without replay.
	if deleteAfterRead {
		if err := s.stream.Ack(ctx, entryIDs); err != nil {
			return result, err
		}
	}

	s.log.Info("activity batch processed",
		zap.Int("events", len(events)),
		zap.Int("updates", len(updates)),
		zap.Int("processed", result.Processed),
		zap.Int("errors", result.ErrorCount),
	)
	return result, nil
}

// partition splits a batch into the pair sets touched by lead-family
// events and by commission events, deduplicating within the batch so a
// partner with fifty clicks contributes one update.
func partition(events []domain.Event) (linkPairs, commissionPairs []domain.PairKey) {
	linkSeen := map[domain.PairKey]struct{}{}
	commissionSeen := map[domain.PairKey]struct{}{}
	for _, event := range events {
		if event.ProgramID == "" || event.PartnerID == "" {
			continue
		}
		key := domain.PairKey{ProgramID: event.ProgramID, PartnerID: event.PartnerID}
		switch event.Type {
		case domain.EventCommission:
			commissionSeen[key] = struct{}{}
		default:
			linkSeen[key] = struct{}{}
		}
	}
	linkPairs = sortedKeys(linkSeen)
	commissionPairs = sortedKeys(commissionSeen)
	return linkPairs, commissionPairs
}

func sortedKeys(set map[domain.PairKey]struct{}) []domain.PairKey {
	keys := make([]domain.PairKey, 0, len(set))
	for key := range set {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].ProgramID != keys[j].ProgramID {
			return keys[i].ProgramID < keys[j].ProgramID
		}
		return keys[i].PartnerID < keys[j].PartnerID
	})
	return keys
}

// mergeUpdates folds both aggregate result sets into one pending-update
// map. A pair present in only one set keeps the other set's fields nil,
// so the partial update never overwrites existing values with zero.
func (s *Service) mergeUpdates(linkRows []domain.LinkStatsRow, commissionRows []domain.CommissionStatsRow) []domain.EnrollmentStatsUpdate {
	pending := map[domain.PairKey]*domain.EnrollmentStatsUpdate{}

	ensure := func(key domain.PairKey) *domain.EnrollmentStatsUpdate {
		if update, ok := pending[key]; ok {
			return update
		}
		update := &domain.EnrollmentStatsUpdate{ProgramID: key.ProgramID, PartnerID: key.PartnerID}
		pending[key] = update
		return update
	}

	now := s.clock.Now()
	for _, row := range linkRows {
		update := ensure(domain.PairKey{ProgramID: row.ProgramID, PartnerID: row.PartnerID})

		clicks, leads, conversions := row.TotalClicks, row.TotalLeads, row.TotalConversions
		sales, saleAmount := row.TotalSales, row.TotalSaleAmount
		update.TotalClicks = &clicks
		update.TotalLeads = &leads
		update.TotalConversions = &conversions
		update.TotalSales = &sales
		update.TotalSaleAmount = &saleAmount

		conversionRate := safeRatio(conversions, clicks)
		leadConversionRate := safeRatio(conversions, leads)
		averageLifetimeValue := safeRatio(saleAmount, conversions)
		update.ConversionRate = &conversionRate
		update.LeadConversionRate = &leadConversionRate
		update.AverageLifetimeValue = &averageLifetimeValue

		if row.LastConversionAt.Valid {
			last := row.LastConversionAt.Time
			days := int(now.Sub(last).Hours() / 24)
			if days < 0 {
				days = 0
			}
			update.LastConversionAt = &last
			update.DaysSinceLastConversion = &days
		}
		consistency := scoring.ConsistencyScore(update.DaysSinceLastConversion)
		update.ConsistencyScore = &consistency
	}

	for _, row := range commissionRows {
		update := ensure(domain.PairKey{ProgramID: row.ProgramID, PartnerID: row.PartnerID})
		total := row.TotalCommissions
		update.TotalCommissions = &total
	}

	updates := make([]domain.EnrollmentStatsUpdate, 0, len(pending))
	for _, key := range sortedKeys(keySet(pending)) {
		updates = append(updates, *pending[key])
	}
	return updates
}

func keySet(pending map[domain.PairKey]*domain.EnrollmentStatsUpdate) map[domain.PairKey]struct{} {
	set := make(map[domain.PairKey]struct{}, len(pending))
	for key := range pending {
		set[key] = struct{}{}
	}
	return set
}

// applyUpdates writes pending updates in fixed-size sub-batches. Rows
// within a sub-batch run concurrently; one row's failure never blocks
// or aborts its siblings.
func (s *Service) applyUpdates(ctx context.Context, updates []domain.EnrollmentStatsUpdate) domain.BatchResult {
	result := domain.BatchResult{}

	for start := 0; start < len(updates); start += updateSubBatchSize {
		end := start + updateSubBatchSize
		if end > len(updates) {
			end = len(updates)
		}
		subBatch := updates[start:end]

		var (
			wg sync.WaitGroup
			mu sync.Mutex
		)
		for _, update := range subBatch {
			wg.Add(1)
			go func(update domain.EnrollmentStatsUpdate) {
				defer wg.Done()
				err := s.repo.ApplyStatsUpdate(ctx, s.db, update)

				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					result.ErrorCount++
					if len(result.Errors) < maxErrorSamples {
						result.Errors = append(result.Errors, domain.RowError{
							ProgramID: update.ProgramID,
							PartnerID: update.PartnerID,
							Message:   err.Error(),
						})
					}
					s.log.Warn("enrollment stats update failed",
						zap.String("program_id", update.ProgramID),
						zap.String("partner_id", update.PartnerID),
						zap.Error(err),
					)
					return
				}
				result.Processed++
			}(update)
		}
		wg.Wait()
	}

	return result
}

func safeRatio(numerator, denominator int64) float64 {
	if denominator == 0 {
		return 0
	}
	return float64(numerator) / float64(denominator)
}
