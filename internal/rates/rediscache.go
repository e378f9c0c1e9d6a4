// internal/rates/rediscache.go
package rates

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"renoquote/internal/common/logger"
	"renoquote/internal/common/metrics"

	"github.com/redis/go-redis/v9"
)

// CachedProvider is a read-through cache in front of another provider chain.
// Material entries hold the unit cost, so one cached value serves every qty.
// Cache failures are invisible to callers: a broken Redis just means every
// lookup reaches the inner chain.
type CachedProvider struct {
	client    *redis.Client
	inner     Providers
	ttl       time.Duration
	keyPrefix string
	logger    logger.Logger
}

// NewCached wraps inner with a Redis cache. keyPrefix namespaces the entries
// so several deployments can share one Redis.
func NewCached(client *redis.Client, inner Providers, ttl time.Duration, keyPrefix string, log logger.Logger) *CachedProvider {
	return &CachedProvider{
		client:    client,
		inner:     inner,
		ttl:       ttl,
		keyPrefix: keyPrefix,
		logger:    log.Named("rates.cache"),
	}
}

// MaterialCost serves the cached unit cost when present, else asks the inner
// chain for it and stores the result.
func (p *CachedProvider) MaterialCost(ctx context.Context, sku string, qty float64, city string) float64 {
	key := p.key("material", sku, city)
	if unit, ok := p.cachedValue(ctx, key, "material"); ok {
		return unit * qty
	}

	unit := p.inner.Materials.MaterialCost(ctx, sku, 1, city)
	p.store(ctx, key, unit)
	return unit * qty
}

// HourlyRate serves the cached rate for city when present.
func (p *CachedProvider) HourlyRate(ctx context.Context, city string) float64 {
	key := p.key("labor", city)
	if rate, ok := p.cachedValue(ctx, key, "labor"); ok {
		return rate
	}

	rate := p.inner.Labor.HourlyRate(ctx, city)
	p.store(ctx, key, rate)
	return rate
}

// VATRate serves the cached rate for the task and city when present.
func (p *CachedProvider) VATRate(ctx context.Context, taskName, city string) float64 {
	key := p.key("vat", taskName, city)
	if rate, ok := p.cachedValue(ctx, key, "vat"); ok {
		return rate
	}

	rate := p.inner.VAT.VATRate(ctx, taskName, city)
	p.store(ctx, key, rate)
	return rate
}

// CacheKey builds the canonical cache key for a lookup. Exported so the
// seeder can pre-populate entries the provider will later read.
func CacheKey(prefix string, parts ...string) string {
	return prefix + strings.ToLower(strings.Join(parts, ":"))
}

func (p *CachedProvider) key(parts ...string) string {
	return CacheKey(p.keyPrefix, parts...)
}

func (p *CachedProvider) cachedValue(ctx context.Context, key, lookup string) (float64, bool) {
	val, err := p.client.Get(ctx, key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			metrics.ProviderFallbacks.WithLabelValues("redis", lookup).Inc()
			p.logger.WithError(err).Warn("cache read failed", map[string]interface{}{
				"key": key,
			})
		}
		return 0, false
	}

	value, err := strconv.ParseFloat(val, 64)
	if err != nil {
		p.logger.WithError(err).Warn("corrupt cache entry, recomputing", map[string]interface{}{
			"key": key,
		})
		return 0, false
	}
	return value, true
}

func (p *CachedProvider) store(ctx context.Context, key string, value float64) {
	p.client.Set(ctx, key, strconv.FormatFloat(value, 'f', -1, 64), p.ttl)
}
