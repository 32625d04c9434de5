package strategy

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Adarsh-S-Nair/zentari-sub000/app/models"
	"github.com/Adarsh-S-Nair/zentari-sub000/stock"
)

// MomentumStrategy ranks the universe by trailing relative price change and
// holds the top N as equal-weight longs. It rebalances when the hold period
// lapses or when the portfolio has moved past its gain/loss thresholds since
// the last rebalance.
type MomentumStrategy struct {
	cfg    Config
	prices *stock.Cache
	pf     *models.Portfolio

	valueAtLastRebalance float64
}

// NewMomentumStrategy is constructor of MomentumStrategy
func NewMomentumStrategy(cfg Config, prices *stock.Cache, pf *models.Portfolio) *MomentumStrategy {
	return &MomentumStrategy{cfg: cfg, prices: prices, pf: pf}
}

// Name implements Strategy
func (s *MomentumStrategy) Name() string { return Momentum }

// Warmup loads the universe's history back far enough to cover the first
// day's lookback window.
func (s *MomentumStrategy) Warmup(ctx context.Context) error {
	months := s.cfg.LookbackMonths + s.cfg.SkipRecentMonths + 1
	from := s.cfg.Start.AddDate(0, -months, 0)
	return s.prices.Load(ctx, s.universe(), from, s.cfg.End)
}

// universe is every tracked ticker except the benchmark.
func (s *MomentumStrategy) universe() []string {
	var tickers []string
	for _, ticker := range s.cfg.Tickers {
		if ticker == s.cfg.Benchmark {
			continue
		}
		tickers = append(tickers, ticker)
	}
	return tickers
}

// ShouldRebalance implements Strategy: true when never rebalanced, when the
// hold period has elapsed, or when portfolio value has moved past either
// threshold since the last rebalance.
func (s *MomentumStrategy) ShouldRebalance(date, lastRebalance time.Time) bool {
	if lastRebalance.IsZero() {
		return true
	}
	if !date.Before(lastRebalance.AddDate(0, s.cfg.HoldMonths, 0)) {
		return true
	}
	if s.valueAtLastRebalance > 0 {
		changePct := (s.pf.ValueOn(date) - s.valueAtLastRebalance) / s.valueAtLastRebalance * 100
		if changePct >= s.cfg.GainThresholdPct || changePct <= -s.cfg.LossThresholdPct {
			logrus.Infof("momentum: threshold trigger on %s (%.2f%%)", date.Format("2006-01-02"), changePct)
			return true
		}
	}
	return false
}

type momentumScore struct {
	Ticker string
	Score  float64
}

// Rank scores the universe over [date-skip-lookback, date-skip] and returns
// tickers by descending momentum. Tickers with fewer than two valid prices
// in the window, or a non-finite score, are excluded. Ordering is
// deterministic: ties break on ticker name.
func (s *MomentumStrategy) Rank(date time.Time) []momentumScore {
	lookbackEnd := date.AddDate(0, -s.cfg.SkipRecentMonths, 0)
	lookbackStart := lookbackEnd.AddDate(0, -s.cfg.LookbackMonths, 0)

	var scores []momentumScore
	for _, ticker := range s.universe() {
		series, ok := s.prices.Series(ticker)
		if !ok {
			continue
		}
		if len(series.Between(lookbackStart, lookbackEnd)) < 2 {
			continue
		}

		startPrice, okStart := series.AsOf(lookbackStart)
		endPrice, okEnd := series.AsOf(lookbackEnd)
		if !okStart || !okEnd || startPrice <= 0 {
			continue
		}

		score := endPrice/startPrice - 1
		if math.IsNaN(score) || math.IsInf(score, 0) {
			continue
		}
		scores = append(scores, momentumScore{Ticker: ticker, Score: score})
	}

	sort.Slice(scores, func(i, j int) bool {
		if scores[i].Score == scores[j].Score {
			return scores[i].Ticker < scores[j].Ticker
		}
		return scores[i].Score > scores[j].Score
	})
	return scores
}

// Rebalance sells positions that fell out of the top set, then splits
// available cash equally across newly selected tickers.
func (s *MomentumStrategy) Rebalance(date time.Time) ([]models.Order, error) {
	scores := s.Rank(date)

	top := make(map[string]bool, s.cfg.TopN)
	var selected []string
	for i, score := range scores {
		if i >= s.cfg.TopN {
			break
		}
		top[score.Ticker] = true
		selected = append(selected, score.Ticker)
	}

	var placed []models.Order

	for _, ticker := range s.pf.OpenTickers() {
		if top[ticker] {
			continue
		}
		if trade := s.pf.CloseLong(ticker, date); trade != nil {
			placed = append(placed, *trade.Exit)
		}
	}

	var entering []string
	for _, ticker := range selected {
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

	s.valueAtLastRebalance = s.pf.ValueOn(date)
	logrus.Infof("momentum rebalance on %s: %d orders, holding %d", date.Format("2006-01-02"), len(placed), len(s.pf.OpenTickers()))
	return placed, nil
}
