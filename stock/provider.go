package stock

import (
	"context"
	"sync"
	"time"

	"github.com/markcheno/go-quote"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Provider supplies, per ticker, a date-indexed series of adjusted
// closing prices over a requested range.
type Provider interface {
	Get(ctx context.Context, tickers []string, start, end time.Time) (map[string]*Series, error)
}

// QuoteProvider downloads daily stock data from a remote quote source.
type QuoteProvider struct {
	workers int
}

// NewQuoteProvider is constructor of QuoteProvider,
// workers bounds how many tickers are fetched at once.
func NewQuoteProvider(workers int) *QuoteProvider {
	if workers <= 0 {
		workers = 4
	}
	return &QuoteProvider{workers: workers}
}

// Get downloads daily adjusted closes for each ticker during start ~ end.
// A ticker whose download fails or returns no rows is omitted from the
// result rather than failing the whole batch.
func (p *QuoteProvider) Get(ctx context.Context, tickers []string, start, end time.Time) (map[string]*Series, error) {
	var mu sync.Mutex
	out := make(map[string]*Series, len(tickers))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)

	for _, ticker := range tickers {
		ticker := ticker
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			q, err := quote.NewQuoteFromYahoo(
				ticker, start.Format(dayFormat), end.Format(dayFormat), quote.Daily, true)
			if err != nil {
				logrus.Warnf("stock get error, symbol: %v: %v", ticker, err)
				return nil
			}
			if len(q.Date) == 0 {
				logrus.Warnf("stock get error, no rows for symbol: %v", ticker)
				return nil
			}

			series := NewSeries()
			for i := range q.Date {
				series.Put(q.Date[i], q.Close[i])
			}

			mu.Lock()
			out[ticker] = series
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
