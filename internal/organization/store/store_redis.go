package store

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"obligo/internal/publishing/metrics"
	"obligo/internal/publishing/models"
	id "obligo/pkg/domain"
)

const (
	// Redis key prefix for cached organization listings
	orgListKeyPrefix = "obligo:orgs:"
	allCountriesKey  = "all"
)

// Lister is the read surface the cache wraps.
type Lister interface {
	ListOrganizations(ctx context.Context, filter models.OrganizationFilter) ([]models.Organization, error)
	GetByIDs(ctx context.Context, ids []id.OrganizationID) ([]models.Organization, error)
}

// CachedStore is a read-through Redis cache over a Lister. Redis failures
// fall back to the underlying store; they never fail the read.
type CachedStore struct {
	next    Lister
	client  *redis.Client
	ttl     time.Duration
	logger  *slog.Logger
	metrics *metrics.Metrics
}

type CacheOption func(*CachedStore)

func WithCacheLogger(logger *slog.Logger) CacheOption {
	return func(c *CachedStore) { c.logger = logger }
}

func WithCacheMetrics(m *metrics.Metrics) CacheOption {
	return func(c *CachedStore) { c.metrics = m }
}

func NewCached(next Lister, client *redis.Client, ttl time.Duration, opts ...CacheOption) *CachedStore {
	c := &CachedStore{next: next, client: client, ttl: ttl, logger: slog.Default()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *CachedStore) ListOrganizations(ctx context.Context, filter models.OrganizationFilter) ([]models.Organization, error) {
	key := listKey(filter)

	raw, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var orgs []models.Organization
		if jsonErr := json.Unmarshal(raw, &orgs); jsonErr == nil {
			c.metrics.RecordCacheLookup("hit")
			return orgs, nil
		}
		c.logger.WarnContext(ctx, "discarding undecodable organization cache entry", "key", key)
		c.metrics.RecordCacheLookup("error")
	case errors.Is(err, redis.Nil):
		c.metrics.RecordCacheLookup("miss")
	default:
		c.logger.WarnContext(ctx, "organization cache read failed", "key", key, "error", err)
		c.metrics.RecordCacheLookup("error")
	}

	orgs, err := c.next.ListOrganizations(ctx, filter)
	if err != nil {
		return nil, err
	}
	if payload, err := json.Marshal(orgs); err == nil {
		if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
			c.logger.WarnContext(ctx, "organization cache write failed", "key", key, "error", err)
		}
	}
	return orgs, nil
}

// GetByIDs is not cached; publish-time existence checks read the source.
func (c *CachedStore) GetByIDs(ctx context.Context, ids []id.OrganizationID) ([]models.Organization, error) {
	return c.next.GetByIDs(ctx, ids)
}

// listKey normalizes the country set so equal filters share one entry.
func listKey(filter models.OrganizationFilter) string {
	if filter.IsZero() {
		return orgListKeyPrefix + allCountriesKey
	}
	codes := slices.Clone(filter.CountryCodes)
	slices.Sort(codes)
	codes = slices.Compact(codes)
	return orgListKeyPrefix + "country:" + strings.Join(codes, ",")
}
