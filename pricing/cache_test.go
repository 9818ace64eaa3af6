package pricing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/tradelog/market"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time          { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestCache(ttl time.Duration) (*RateCache, *clock) {
	clk := &clock{t: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
	log, _ := test.NewNullLogger()
	return NewRateCache(ttl, WithClock(clk.now), WithLogger(log)), clk
}

type failingSource struct{}

func (failingSource) Rates(context.Context) (market.Rates, error) {
	return nil, errors.New("upstream down")
}

func TestRateCache_SetGet(t *testing.T) {
	t.Parallel()

	c, _ := newTestCache(time.Minute)
	c.Set("USD/JPY", 154.2)

	got, err := c.Get("USD/JPY")
	assert.NoError(t, err)
	assert.Equal(t, 154.2, got)
}

func TestRateCache_GetMissing(t *testing.T) {
	t.Parallel()

	c, _ := newTestCache(time.Minute)
	c.Set("EUR/USD", 0)

	got, err := c.Get("EUR/USD")
	assert.True(t, errors.Is(err, ErrNoRate))
	assert.Equal(t, 0.0, got)
}

func TestRateCache_Expires(t *testing.T) {
	t.Parallel()

	c, clk := newTestCache(time.Minute)
	c.Set("EUR/USD", 1.08)
	assert.True(t, c.Fresh())

	clk.advance(time.Minute)
	_, err := c.Get("EUR/USD")
	assert.NoError(t, err, "exactly at the ttl is still fresh")

	clk.advance(time.Second)
	_, err = c.Get("EUR/USD")
	assert.True(t, errors.Is(err, ErrNoRate))
	assert.False(t, c.Fresh())
	assert.Empty(t, c.Snapshot())
}

func TestRateCache_SnapshotIsACopy(t *testing.T) {
	t.Parallel()

	c, clk := newTestCache(time.Minute)
	c.Set("EUR/USD", 1.08)
	clk.advance(30 * time.Second)
	c.Set("GBP/USD", 1.27)
	clk.advance(45 * time.Second)

	snap := c.Snapshot()
	assert.Equal(t, market.Rates{"GBP/USD": 1.27}, snap)

	snap["GBP/USD"] = 99
	got, err := c.Get("GBP/USD")
	require.NoError(t, err)
	assert.Equal(t, 1.27, got)
}

func TestRateCache_Refresh(t *testing.T) {
	t.Parallel()

	c, _ := newTestCache(0)
	c.Set("OLD/PAIR", 2)

	src := StaticSource{"EUR/USD": 1.09, "USD/JPY": 150, "BAD/PAIR": -1}
	require.NoError(t, c.Refresh(context.Background(), src))

	assert.Equal(t, market.Rates{"EUR/USD": 1.09, "USD/JPY": 150}, c.Snapshot())
	assert.True(t, c.Fresh())
}

func TestRateCache_RefreshErrorKeepsRates(t *testing.T) {
	t.Parallel()

	c, _ := newTestCache(time.Minute)
	c.Set("EUR/USD", 1.08)

	err := c.Refresh(context.Background(), failingSource{})
	assert.ErrorContains(t, err, "upstream down")

	got, err := c.Get("EUR/USD")
	require.NoError(t, err)
	assert.Equal(t, 1.08, got)
}

func TestStaticSourceCopies(t *testing.T) {
	t.Parallel()

	src := StaticSource{"EUR/USD": 1.08}
	got, err := src.Rates(context.Background())
	require.NoError(t, err)
	got["EUR/USD"] = 2
	assert.Equal(t, 1.08, src["EUR/USD"])
}
