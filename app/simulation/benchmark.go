package simulation

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Adarsh-S-Nair/zentari-sub000/stock"
)

// BenchmarkTracker is a fixed-share passive holding used for comparison.
// The share count is computed once at simulation start and never changes;
// only the valuation is recomputed per day.
type BenchmarkTracker struct {
	ticker string
	shares float64
	series *stock.Series
}

// NewBenchmarkTracker buys starting_value worth of the benchmark at the
// as-of price on start. When no price resolves, the tracker holds zero
// shares and reports every day's value as unavailable.
func NewBenchmarkTracker(ticker string, startingValue float64, series *stock.Series, start time.Time) *BenchmarkTracker {
	tracker := &BenchmarkTracker{ticker: ticker, series: series}
	if series == nil {
		logrus.Warnf("benchmark %s: no price series, values will be unavailable", ticker)
		return tracker
	}
	price, ok := series.AsOf(start)
	if !ok || price <= 0 {
		logrus.Warnf("benchmark %s: no price on or before %s, values will be unavailable", ticker, start.Format("2006-01-02"))
		return tracker
	}
	tracker.shares = startingValue / price
	return tracker
}

// Shares is the fixed holding size.
func (b *BenchmarkTracker) Shares() float64 { return b.shares }

// ValueOn returns shares times the as-of price on date, or nil when the
// price cannot be resolved for that day.
func (b *BenchmarkTracker) ValueOn(date time.Time) *float64 {
	if b.shares == 0 || b.series == nil {
		return nil
	}
	price, ok := b.series.AsOf(date)
	if !ok {
		return nil
	}
	value := b.shares * price
	return &value
}
