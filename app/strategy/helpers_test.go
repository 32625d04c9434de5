package strategy_test

import (
	"context"
	"time"

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
