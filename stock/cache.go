package stock

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

type cacheEntry struct {
	series *Series
	start  time.Time
	end    time.Time
}

// Cache keeps downloaded price series in memory so several simulation
// runs can share them. Reads are concurrent; a fill for a ticker
// overwrites whatever was there, so duplicate fills for the same ticker
// are harmless.
type Cache struct {
	mu       sync.RWMutex
	provider Provider
	entries  map[string]cacheEntry
}

// NewCache is constructor of Cache
func NewCache(provider Provider) *Cache {
	return &Cache{
		provider: provider,
		entries:  make(map[string]cacheEntry),
	}
}

// Load makes sure a series covering [start, end] is cached for every
// ticker it can. Tickers already covered are not refetched; tickers the
// provider returns nothing for are left absent.
func (c *Cache) Load(ctx context.Context, tickers []string, start, end time.Time) error {
	start, end = Day(start), Day(end)

	var missing []string
	c.mu.RLock()
	for _, ticker := range tickers {
		entry, ok := c.entries[ticker]
		if !ok || start.Before(entry.start) || end.After(entry.end) {
			missing = append(missing, ticker)
		}
	}
	c.mu.RUnlock()

	if len(missing) == 0 {
		return nil
	}

	logrus.Infof("price cache fill: %d tickers, %s ~ %s", len(missing), start.Format(dayFormat), end.Format(dayFormat))

	fetched, err := c.provider.Get(ctx, missing, start, end)
	if err != nil {
		return err
	}

	c.mu.Lock()
	for ticker, series := range fetched {
		c.entries[ticker] = cacheEntry{series: series, start: start, end: end}
	}
	c.mu.Unlock()
	return nil
}

// Series returns the cached series for ticker.
func (c *Cache) Series(ticker string) (*Series, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[ticker]
	if !ok {
		return nil, false
	}
	return entry.series, true
}

// AsOf resolves the latest known price for ticker at or before day.
func (c *Cache) AsOf(ticker string, day time.Time) (float64, bool) {
	series, ok := c.Series(ticker)
	if !ok {
		return 0, false
	}
	return series.AsOf(day)
}
