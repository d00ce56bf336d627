package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kodihomes/rental-platform/internal/core/domain"
)

const defaultDraftTTL = 2 * time.Hour

// DraftStore keeps booking drafts as JSON values that expire after ttl of
// inactivity. Key format: booking:draft:<id>
type DraftStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewDraftStore(client *redis.Client, ttl time.Duration) *DraftStore {
	if ttl <= 0 {
		ttl = defaultDraftTTL
	}
	return &DraftStore{client: client, ttl: ttl}
}

func (s *DraftStore) Save(ctx context.Context, d *domain.BookingDraft) error {
	raw, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("encode draft: %w", err)
	}
	if err := s.client.Set(ctx, draftKey(d.ID), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("save draft: %w", err)
	}
	return nil
}

func (s *DraftStore) Get(ctx context.Context, id string) (*domain.BookingDraft, error) {
	raw, err := s.client.Get(ctx, draftKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrDraftNotFound
		}
		return nil, fmt.Errorf("get draft: %w", err)
	}
	var d domain.BookingDraft
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("decode draft: %w", err)
	}
	return &d, nil
}

func (s *DraftStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, draftKey(id)).Err(); err != nil {
		return fmt.Errorf("delete draft: %w", err)
	}
	return nil
}
