package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultRoleTTL = 5 * time.Minute

// RoleCache caches the role list of a subject so the auth middleware does not
// hit Mongo on every request. Key format: roles:<subject_id>
type RoleCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRoleCache creates a RoleCache wrapping the given Redis client. A
// non-positive ttl falls back to defaultRoleTTL.
func NewRoleCache(client *redis.Client, ttl time.Duration) *RoleCache {
	if ttl <= 0 {
		ttl = defaultRoleTTL
	}
	return &RoleCache{client: client, ttl: ttl}
}

// Get returns the cached roles for the subject. The second result reports
// whether the entry was present.
func (c *RoleCache) Get(ctx context.Context, subjectID string) ([]string, bool, error) {
	raw, err := c.client.Get(ctx, c.key(subjectID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("role cache get: %w", err)
	}

	var roles []string
	if err := json.Unmarshal(raw, &roles); err != nil {
		// Corrupt entry; treat as a miss so it gets rewritten.
		return nil, false, nil
	}
	return roles, true, nil
}

// Set stores the roles of the subject (expires after the configured TTL).
func (c *RoleCache) Set(ctx context.Context, subjectID string, roles []string) error {
	raw, err := json.Marshal(roles)
	if err != nil {
		return fmt.Errorf("role cache encode: %w", err)
	}
	return c.client.Set(ctx, c.key(subjectID), raw, c.ttl).Err()
}

// Invalidate drops the cached entry, forcing the next lookup through Mongo.
func (c *RoleCache) Invalidate(ctx context.Context, subjectID string) error {
	return c.client.Del(ctx, c.key(subjectID)).Err()
}

func (c *RoleCache) key(subjectID string) string {
	return fmt.Sprintf("roles:%s", subjectID)
}
