package strategy

import (
	"context"
	"time"

	"github.com/markcheno/go-talib"
	"github.com/sirupsen/logrus"

	"github.com/Adarsh-S-Nair/zentari-sub000/app/models"
	"github.com/Adarsh-S-Nair/zentari-sub000/stock"
)

const (
	smaShortPeriod = 50
	smaLongPeriod  = 200
	// the long average plus one prior value for cross detection
	smaMinObservations = smaLongPeriod + 1
	// how often the index membership list is re-queried
	universeRefreshDays = 90
)

// CrossoverStrategy trades golden/death crosses of the 50 and 200 day
// simple moving averages. Universe membership is refreshed from the
// membership provider as of the simulation date, so tickers enter and
// leave over a multi-year backtest.
type CrossoverStrategy struct {
	cfg      Config
	prices   *stock.Cache
	universe stock.UniverseProvider
	pf       *models.Portfolio

	ctx         context.Context
	members     []string
	lastRefresh time.Time
}

// NewCrossoverStrategy is constructor of CrossoverStrategy
func NewCrossoverStrategy(cfg Config, prices *stock.Cache, universe stock.UniverseProvider, pf *models.Portfolio) *CrossoverStrategy {
	return &CrossoverStrategy{cfg: cfg, prices: prices, universe: universe, pf: pf}
}

// Name implements Strategy
func (s *CrossoverStrategy) Name() string { return Crossover }

// Warmup resolves the starting membership and loads enough history to have
// a 200-day average on the first simulated day.
func (s *CrossoverStrategy) Warmup(ctx context.Context) error {
	s.ctx = ctx
	s.members = s.universe.TickersAsOf(s.cfg.Start)
	s.lastRefresh = s.cfg.Start
	from := s.cfg.Start.AddDate(0, 0, -2*smaLongPeriod)
	return s.prices.Load(ctx, s.members, from, s.cfg.End)
}

// ShouldRebalance implements Strategy; crosses are edge-triggered so the
// signals are checked every day.
func (s *CrossoverStrategy) ShouldRebalance(date, lastRebalance time.Time) bool {
	return true
}

func (s *CrossoverStrategy) refreshMembers(date time.Time) {
	if date.Sub(s.lastRefresh).Hours() < universeRefreshDays*24 {
		return
	}
	s.members = s.universe.TickersAsOf(date)
	s.lastRefresh = date

	from := date.AddDate(0, 0, -2*smaLongPeriod)
	if err := s.prices.Load(s.ctx, s.members, from, s.cfg.End); err != nil {
		logrus.Warnf("crossover: membership refresh load error: %v", err)
	}
	logrus.Infof("crossover: universe refreshed on %s, %d members", date.Format("2006-01-02"), len(s.members))
}

// signals computes the day's buy and sell tickers. A golden cross
// (short average crossing above the long) buys, a death cross sells.
func (s *CrossoverStrategy) signals(date time.Time) (buys, sells []string) {
	for _, ticker := range s.members {
		series, ok := s.prices.Series(ticker)
		if !ok {
			continue
		}
		closes := series.ClosesUpTo(date, smaMinObservations)
		if len(closes) < smaMinObservations {
			continue
		}

		short := talib.Sma(closes, smaShortPeriod)
		long := talib.Sma(closes, smaLongPeriod)
		n := len(closes) - 1

		if short[n-1] <= long[n-1] && short[n] > long[n] {
			buys = append(buys, ticker)
		}
		if short[n-1] >= long[n-1] && short[n] < long[n] {
			sells = append(sells, ticker)
		}
	}
	return buys, sells
}

// Rebalance closes positions with sell signals, then splits available cash
// equally among simultaneous buy signals not already held.
func (s *CrossoverStrategy) Rebalance(date time.Time) ([]models.Order, error) {
	s.refreshMembers(date)

	buys, sells := s.signals(date)

	var placed []models.Order
	for _, ticker := range sells {
		if !s.pf.HasOpenPosition(ticker) {
			continue
		}
		if trade := s.pf.CloseLong(ticker, date); trade != nil {
			placed = append(placed, *trade.Exit)
		}
	}

	var entering []string
	for _, ticker := range buys {
		if !s.pf.HasOpenPosition(ticker) {
			entering = append(entering, ticker)
		}
	}
	if len(entering) > 0 {
		allocation := s.pf.AvailableCash() / float64(len(entering))
		for _, ticker := range entering {
			if trade := s.pf.OpenLong(ticker, allocation, date); trade != nil {
				placed = append(placed, trade.Entry)
			}
		}
	}

	if len(placed) > 0 {
		logrus.Infof("crossover rebalance on %s: %d orders", date.Format("2006-01-02"), len(placed))
	}
	return placed, nil
}
