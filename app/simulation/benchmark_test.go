package simulation_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Adarsh-S-Nair/zentari-sub000/app/simulation"
	"github.com/Adarsh-S-Nair/zentari-sub000/stock"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// fakeProvider serves prepared series so no network is touched.
type fakeProvider map[string]*stock.Series

func (f fakeProvider) Get(ctx context.Context, tickers []string, start, end time.Time) (map[string]*stock.Series, error) {
	out := make(map[string]*stock.Series)
	for _, ticker := range tickers {
		if series, ok := f[ticker]; ok {
			out[ticker] = series
		}
	}
	return out, nil
}

// seriesOf builds a series of consecutive daily closes starting at start.
func seriesOf(start time.Time, days int, price func(i int) float64) *stock.Series {
	series := stock.NewSeries()
	for i := 0; i < days; i++ {
		series.Put(start.AddDate(0, 0, i), price(i))
	}
	return series
}

func TestBenchmarkTrackerFixedShares(t *testing.T) {
	assert := assert.New(t)

	// 500 at the start, 550 by the end
	series := seriesOf(day(2024, 1, 2), 120, func(i int) float64 { return 500 + 50*float64(i)/119 })
	tracker := simulation.NewBenchmarkTracker("SPY", 10000, series, day(2024, 1, 2))

	assert.InDelta(20.0, tracker.Shares(), 1e-9)

	start := tracker.ValueOn(day(2024, 1, 2))
	assert.NotNil(start)
	assert.InDelta(10000.0, *start, 1e-6)

	end := tracker.ValueOn(day(2024, 1, 2).AddDate(0, 0, 119))
	assert.NotNil(end)
	assert.InDelta(11000.0, *end, 1e-6)
}

func TestBenchmarkTrackerGapsAreNil(t *testing.T) {
	assert := assert.New(t)

	series := seriesOf(day(2024, 1, 2), 10, func(i int) float64 { return 500 })
	tracker := simulation.NewBenchmarkTracker("SPY", 10000, series, day(2024, 1, 2))

	// before the first observation
	assert.Nil(tracker.ValueOn(day(2023, 12, 1)))

	// after it, the as-of rule carries the last close forward
	assert.NotNil(tracker.ValueOn(day(2024, 3, 1)))
}

func TestBenchmarkTrackerNoSeries(t *testing.T) {
	assert := assert.New(t)

	tracker := simulation.NewBenchmarkTracker("SPY", 10000, nil, day(2024, 1, 2))
	assert.Equal(0.0, tracker.Shares())
	assert.Nil(tracker.ValueOn(day(2024, 1, 2)))
}

func TestBenchmarkTrackerNoStartPrice(t *testing.T) {
	assert := assert.New(t)

	series := seriesOf(day(2024, 6, 1), 10, func(i int) float64 { return 500 })
	tracker := simulation.NewBenchmarkTracker("SPY", 10000, series, day(2024, 1, 2))
	assert.Equal(0.0, tracker.Shares())
	assert.Nil(tracker.ValueOn(day(2024, 6, 5)))
}
