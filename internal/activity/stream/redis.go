// Package stream implements the activity event log on a Redis Stream.
// Entries are read oldest-first and explicitly deleted on ack, which
// gives the aggregator at-least-once delivery with delete-on-success.
package stream

import (
	"context"
	"fmt"

	"github.com/loopwire/partnerly/internal/activity/domain"
	"github.com/loopwire/partnerly/internal/config"
	redis "github.com/redis/go-redis/v9"
)

const (
	fieldEventID   = "id"
	fieldProgramID = "program_id"
	fieldPartnerID = "partner_id"
	fieldType      = "type"
)

func NewClient(cfg config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
}

type RedisStream struct {
	client *redis.Client
	key    string
}

func NewRedisStream(client *redis.Client, cfg config.Config) domain.Stream {
	return &RedisStream{client: client, key: cfg.ActivityStreamKey}
}

func (s *RedisStream) ReadBatch(ctx context.Context, count int64) ([]domain.Event, error) {
	if count <= 0 {
		return nil, nil
	}
	messages, err := s.client.XRangeN(ctx, s.key, "-", "+", count).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStreamUnavailable, err)
	}

	events := make([]domain.Event, 0, len(messages))
	for _, msg := range messages {
		events = append(events, domain.Event{
			EntryID:   msg.ID,
			ID:        stringField(msg, fieldEventID),
			ProgramID: stringField(msg, fieldProgramID),
			PartnerID: stringField(msg, fieldPartnerID),
			Type:      domain.EventType(stringField(msg, fieldType)),
		})
	}
	return events, nil
}

func (s *RedisStream) Ack(ctx context.Context, entryIDs []string) error {
	if len(entryIDs) == 0 {
		return nil
	}
	if err := s.client.XDel(ctx, s.key, entryIDs...).Err(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStreamUnavailable, err)
	}
	return nil
}

func (s *RedisStream) Publish(ctx context.Context, event domain.Event) (string, error) {
	entryID, err := s.client.XAdd(ctx, &redis.XAddArgs{
		Stream: s.key,
		Values: map[string]any{
			fieldEventID:   event.ID,
			fieldProgramID: event.ProgramID,
			fieldPartnerID: event.PartnerID,
			fieldType:      string(event.Type),
		},
	}).Result()
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrStreamUnavailable, err)
	}
	return entryID, nil
}

func stringField(msg redis.XMessage, field string) string {
	if v, ok := msg.Values[field]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
