// Package cache keeps derived read payloads in Redis.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"kaizen-backend-go/internal/services"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const (
	sitemapKey    = "kaizen:sitemap-data"
	generationKey = "kaizen:sitemap-data:generation"

	DefaultSitemapTTL = 5 * time.Minute
)

// Connect parses a redis:// URL and verifies the server with a ping.
func Connect(rawURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	logrus.WithField("addr", opts.Addr).Info("redis connected")
	return client, nil
}

// SitemapCache stores the sitemap payload. A nil *SitemapCache is valid and
// caches nothing. Cache errors are logged and treated as misses.
//
// Payloads live under a generation-numbered key. Invalidate bumps the
// generation, so a reader that loaded rows before a write commits stores its
// result under a key nobody reads again.
type SitemapCache struct {
	client *redis.Client
	ttl    time.Duration
}

// Generation identifies the cache slot a Get looked at. Set writes to that
// slot only.
type Generation struct {
	value int64
	valid bool
}

func NewSitemapCache(client *redis.Client, ttl time.Duration) *SitemapCache {
	if client == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = DefaultSitemapTTL
	}
	return &SitemapCache{client: client, ttl: ttl}
}

func payloadKey(generation int64) string {
	return sitemapKey + ":" + strconv.FormatInt(generation, 10)
}

func (c *SitemapCache) generation(ctx context.Context) (Generation, error) {
	value, err := c.client.Get(ctx, generationKey).Int64()
	if err == redis.Nil {
		return Generation{valid: true}, nil
	}
	if err != nil {
		return Generation{}, err
	}
	return Generation{value: value, valid: true}, nil
}

func (c *SitemapCache) Get(ctx context.Context) (services.SitemapData, Generation, bool) {
	if c == nil {
		return services.SitemapData{}, Generation{}, false
	}
	gen, err := c.generation(ctx)
	if err != nil {
		logrus.WithError(err).Warn("sitemap cache generation read failed")
		return services.SitemapData{}, Generation{}, false
	}
	raw, err := c.client.Get(ctx, payloadKey(gen.value)).Bytes()
	if err == redis.Nil {
		return services.SitemapData{}, gen, false
	}
	if err != nil {
		logrus.WithError(err).Warn("sitemap cache get failed")
		return services.SitemapData{}, Generation{}, false
	}
	var data services.SitemapData
	if err := json.Unmarshal(raw, &data); err != nil {
		logrus.WithError(err).Warn("sitemap cache entry unreadable")
		return services.SitemapData{}, gen, false
	}
	return data, gen, true
}

// Set stores data under the generation returned by the Get that missed.
func (c *SitemapCache) Set(ctx context.Context, gen Generation, data services.SitemapData) {
	if c == nil || !gen.valid {
		return
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, payloadKey(gen.value), raw, c.ttl).Err(); err != nil {
		logrus.WithError(err).Warn("sitemap cache set failed")
	}
}

// Invalidate retires the current payload after an article or company write
// has committed.
func (c *SitemapCache) Invalidate(ctx context.Context) {
	if c == nil {
		return
	}
	if err := c.client.Incr(ctx, generationKey).Err(); err != nil {
		logrus.WithError(err).Warn("sitemap cache invalidate failed")
	}
}
