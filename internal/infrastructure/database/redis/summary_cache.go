package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/jurisio/casebrain/internal/infrastructure/monitoring/logging"
	braintypes "github.com/jurisio/casebrain/pkg/types/brain"
)

const (
	defaultCachePrefix = "casebrain:"
	summaryKey         = "brain:summary"
	defaultSummaryTTL  = 5 * time.Minute
)

// SummaryCache stores the serialized dashboard summary under a single key
// with a jittered TTL so concurrent instances do not all recompute at the
// same instant.  All failures degrade to a cache miss; the orchestrator
// recomputes and the practice keeps working without Redis.
type SummaryCache struct {
	client *Client
	log    logging.Logger
	prefix string
	ttl    time.Duration
	jitter func(time.Duration) time.Duration
}

type SummaryCacheOption func(*SummaryCache)

func WithPrefix(prefix string) SummaryCacheOption {
	return func(c *SummaryCache) { c.prefix = prefix }
}

func WithTTL(ttl time.Duration) SummaryCacheOption {
	return func(c *SummaryCache) { c.ttl = ttl }
}

func NewSummaryCache(client *Client, log logging.Logger, opts ...SummaryCacheOption) *SummaryCache {
	c := &SummaryCache{
		client: client,
		log:    log,
		prefix: defaultCachePrefix,
		ttl:    defaultSummaryTTL,
		jitter: jitterTTL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *SummaryCache) Get(ctx context.Context) (*braintypes.BrainSummary, bool) {
	data, err := c.client.Underlying().Get(ctx, c.prefix+summaryKey).Bytes()
	if err != nil {
		if err != goredis.Nil {
			c.log.Warn("Summary cache read failed", logging.Err(err))
		}
		return nil, false
	}

	var summary braintypes.BrainSummary
	if err := json.Unmarshal(data, &summary); err != nil {
		c.log.Warn("Summary cache entry corrupt, treating as miss", logging.Err(err))
		return nil, false
	}
	return &summary, true
}

func (c *SummaryCache) Set(ctx context.Context, summary *braintypes.BrainSummary) {
	if summary == nil {
		return
	}
	data, err := json.Marshal(summary)
	if err != nil {
		c.log.Warn("Summary cache serialization failed", logging.Err(err))
		return
	}
	if err := c.client.Underlying().Set(ctx, c.prefix+summaryKey, data, c.jitter(c.ttl)).Err(); err != nil {
		c.log.Warn("Summary cache write failed", logging.Err(err))
	}
}

// jitterTTL spreads expirations by up to ±10% of the base TTL.
func jitterTTL(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return ttl
	}
	spread := int64(float64(ttl) * 0.1)
	if spread == 0 {
		return ttl
	}
	return ttl + time.Duration(rand.Int63n(2*spread)-spread)
}
