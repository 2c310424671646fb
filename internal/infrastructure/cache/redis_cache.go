// Package cache holds the Redis read-through cache of completed assessments.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/bibbank/creditrisk/internal/domain/model"
	"github.com/bibbank/creditrisk/internal/domain/port"
)

const keyPrefix = "credit:assessment:"

// RedisAssessmentCache implements port.AssessmentCache. Entries are JSON
// snapshots that expire after ttl.
type RedisAssessmentCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

var _ port.AssessmentCache = (*RedisAssessmentCache)(nil)

func NewRedisAssessmentCache(client redis.Cmdable, ttl time.Duration) *RedisAssessmentCache {
	return &RedisAssessmentCache{client: client, ttl: ttl}
}

type snapshot struct {
	ID          string              `json:"id"`
	TenantID    string              `json:"tenant_id"`
	ApplicantID string              `json:"applicant_id"`
	Result      model.ScoringResult `json:"result"`
	Version     int                 `json:"version"`
	CreatedAt   time.Time           `json:"created_at"`
}

func key(tenantID, id string) string {
	return keyPrefix + tenantID + ":" + id
}

// Get returns the cached assessment, or ok=false on a miss.
func (c *RedisAssessmentCache) Get(ctx context.Context, tenantID, id string) (model.CreditAssessment, bool, error) {
	raw, err := c.client.Get(ctx, key(tenantID, id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return model.CreditAssessment{}, false, nil
	}
	if err != nil {
		return model.CreditAssessment{}, false, fmt.Errorf("cache get: %w", err)
	}

	var s snapshot
	if err := json.Unmarshal(raw, &s); err != nil {
		return model.CreditAssessment{}, false, fmt.Errorf("cache decode: %w", err)
	}
	return model.ReconstructCreditAssessment(s.ID, s.TenantID, s.ApplicantID, s.Result, s.Version, s.CreatedAt), true, nil
}

// Set stores a snapshot of the assessment. Domain events are not cached.
func (c *RedisAssessmentCache) Set(ctx context.Context, a model.CreditAssessment) error {
	raw, err := json.Marshal(snapshot{
		ID:          a.ID(),
		TenantID:    a.TenantID(),
		ApplicantID: a.ApplicantID(),
		Result:      a.Result(),
		Version:     a.Version(),
		CreatedAt:   a.CreatedAt(),
	})
	if err != nil {
		return fmt.Errorf("cache encode: %w", err)
	}
	if err := c.client.Set(ctx, key(a.TenantID(), a.ID()), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}
