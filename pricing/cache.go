package pricing

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/rustyeddy/tradelog/market"
)

var ErrNoRate = errors.New("rate not found")

// DefaultTTL is how long a fetched rate stays usable.
const DefaultTTL = 5 * time.Minute

type RateSource interface {
	Rates(ctx context.Context) (market.Rates, error)
}

type quote struct {
	rate float64
	at   time.Time
}

// RateCache holds exchange rates keyed "FROM/TO" and expires them after a TTL.
// It is safe for concurrent use.
type RateCache struct {
	mu    sync.RWMutex
	rates map[string]quote
	ttl   time.Duration
	now   func() time.Time
	log   logrus.FieldLogger
}

type Option func(*RateCache)

func WithClock(now func() time.Time) Option {
	return func(c *RateCache) { c.now = now }
}

func WithLogger(l logrus.FieldLogger) Option {
	return func(c *RateCache) { c.log = l }
}

// NewRateCache returns an empty cache. A ttl <= 0 uses DefaultTTL.
func NewRateCache(ttl time.Duration, opts ...Option) *RateCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	c := &RateCache{
		rates: make(map[string]quote),
		ttl:   ttl,
		now:   time.Now,
		log:   logrus.StandardLogger(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Set stores rate for pair. Non-positive rates are ignored.
func (c *RateCache) Set(pair string, rate float64) {
	if rate <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rates[pair] = quote{rate: rate, at: c.now()}
}

// Get returns the cached rate for pair, or ErrNoRate when it is missing or stale.
func (c *RateCache) Get(pair string) (float64, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	q, ok := c.rates[pair]
	if !ok || c.stale(q) {
		return 0, fmt.Errorf("%w: %s", ErrNoRate, pair)
	}
	return q.rate, nil
}

// Snapshot copies the fresh entries into a plain map for the calculators.
func (c *RateCache) Snapshot() market.Rates {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(market.Rates, len(c.rates))
	for pair, q := range c.rates {
		if !c.stale(q) {
			out[pair] = q.rate
		}
	}
	return out
}

// Fresh reports whether every entry is within the TTL and at least one exists.
func (c *RateCache) Fresh() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if len(c.rates) == 0 {
		return false
	}
	for _, q := range c.rates {
		if c.stale(q) {
			return false
		}
	}
	return true
}

// Refresh replaces the cached rates with what src returns. On error the
// existing entries are left untouched.
func (c *RateCache) Refresh(ctx context.Context, src RateSource) error {
	rates, err := src.Rates(ctx)
	if err != nil {
		return fmt.Errorf("refresh rates: %w", err)
	}

	at := c.now()
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rates = make(map[string]quote, len(rates))
	for pair, r := range rates {
		if r > 0 {
			c.rates[pair] = quote{rate: r, at: at}
		}
	}
	c.log.WithField("pairs", len(c.rates)).Debug("rates refreshed")
	return nil
}

func (c *RateCache) stale(q quote) bool {
	return c.now().Sub(q.at) > c.ttl
}
