package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/event-ticket-booking/internal/model"
)

// AvailabilityStore is the read surface for catalog display.
type AvailabilityStore interface {
	GetEvent(ctx context.Context, eventID uint64) (*model.Event, error)
	ListTierAvailability(ctx context.Context, eventID uint64) ([]model.TierAvailability, error)
}

// AvailabilityService serves per-tier seat counts for catalog display
// through a short-lived Redis cache.  The authoritative capacity check
// always happens inside the booking transaction, so these reads are
// allowed to be slightly stale; with a nil Redis client every read
// goes straight to the database.
type AvailabilityService struct {
	store AvailabilityStore
	rdb   *redis.Client // nil disables caching
	ttl   time.Duration
}

const defaultAvailabilityTTL = 5 * time.Second

// NewAvailabilityService constructs an AvailabilityService.  rdb may
// be nil.
func NewAvailabilityService(store AvailabilityStore, rdb *redis.Client) *AvailabilityService {
	return &AvailabilityService{store: store, rdb: rdb, ttl: defaultAvailabilityTTL}
}

func availabilityKey(eventID uint64) string {
	return fmt.Sprintf("availability:%d", eventID)
}

// EventAvailability returns the availability projection of every tier
// of the event.  Cache errors are logged and fall through to the
// database.
func (s *AvailabilityService) EventAvailability(ctx context.Context, eventID uint64) ([]model.TierAvailability, error) {
	key := availabilityKey(eventID)
	if s.rdb != nil {
		raw, err := s.rdb.Get(ctx, key).Result()
		if err == nil {
			var cached []model.TierAvailability
			if jsonErr := json.Unmarshal([]byte(raw), &cached); jsonErr == nil {
				return cached, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			log.Printf("availability: cache read for event %d failed: %v", eventID, err)
		}
	}

	if _, err := s.store.GetEvent(ctx, eventID); err != nil {
		return nil, err
	}
	tiers, err := s.store.ListTierAvailability(ctx, eventID)
	if err != nil {
		return nil, err
	}

	if s.rdb != nil {
		if raw, err := json.Marshal(tiers); err == nil {
			if err := s.rdb.Set(ctx, key, raw, s.ttl).Err(); err != nil {
				log.Printf("availability: cache write for event %d failed: %v", eventID, err)
			}
		}
	}
	return tiers, nil
}

// Invalidate drops the cached projection for an event.  Called after
// every transition that changes a tier counter; best effort, the TTL
// bounds staleness anyway.
func (s *AvailabilityService) Invalidate(ctx context.Context, eventID uint64) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, availabilityKey(eventID)).Err(); err != nil {
		log.Printf("availability: cache invalidate for event %d failed: %v", eventID, err)
	}
}
