package strategy

import (
	"context"
	"math"
	"time"

	"github.com/markcheno/go-talib"
	"github.com/sirupsen/logrus"

	"github.com/Adarsh-S-Nair/zentari-sub000/app/models"
	"github.com/Adarsh-S-Nair/zentari-sub000/stock"
)

const (
	swingRsiPeriod      = 14
	swingRsiOverbought  = 70.0
	swingRsiExit        = 75.0
	swingMacdFast       = 12
	swingMacdSlow       = 26
	swingMacdSignal     = 9
	swingVolWindow      = 20
	swingVolCap         = 0.06 // daily return stddev
	swingMomentumDays   = 5
	swingTrailingStop   = 7.0  // percent drawdown from peak since entry
	swingMaxHoldDays    = 15
	swingProfitTarget   = 10.0 // percent over entry
	swingMaxFraction    = 0.25 // of total portfolio value per ticker
	swingHistoryCandles = 60
)

// SwingStrategy swing-trades a fixed small universe of leveraged ETFs.
// Entries require calm volatility, an RSI that is not overbought, a fresh
// bullish MACD crossover and positive short-term momentum; exits fire on a
// trailing stop, a hold-period cap, a profit target or a bearish technical
// reversal. Position sizes are inverse-volatility weighted.
type SwingStrategy struct {
	cfg    Config
	prices *stock.Cache
	pf     *models.Portfolio

	peaks map[string]float64 // peak price since entry, per open ticker
}

// NewSwingStrategy is constructor of SwingStrategy
func NewSwingStrategy(cfg Config, prices *stock.Cache, pf *models.Portfolio) *SwingStrategy {
	s := &SwingStrategy{cfg: cfg, prices: prices, pf: pf, peaks: make(map[string]float64)}
	if len(s.cfg.Tickers) == 0 {
		s.cfg.Tickers = []string{"TQQQ", "UPRO", "SOXL"}
	}
	return s
}

// Name implements Strategy
func (s *SwingStrategy) Name() string { return Swing }

// Warmup loads enough candles to seed the RSI, MACD and volatility windows.
func (s *SwingStrategy) Warmup(ctx context.Context) error {
	from := s.cfg.Start.AddDate(0, 0, -2*swingHistoryCandles)
	return s.prices.Load(ctx, s.cfg.Tickers, from, s.cfg.End)
}

// ShouldRebalance implements Strategy; entries and exits are checked daily.
func (s *SwingStrategy) ShouldRebalance(date, lastRebalance time.Time) bool {
	return true
}

// dailyVol is the standard deviation of daily returns over the trailing
// volatility window, or false when there is not enough history.
func dailyVol(closes []float64) (float64, bool) {
	if len(closes) < swingVolWindow+1 {
		return 0, false
	}
	returns := make([]float64, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		if closes[i-1] == 0 {
			return 0, false
		}
		returns[i-1] = closes[i]/closes[i-1] - 1
	}
	stddev := talib.StdDev(returns, swingVolWindow, 1.0)
	vol := stddev[len(stddev)-1]
	if vol <= 0 || math.IsNaN(vol) {
		return 0, false
	}
	return vol, true
}

func (s *SwingStrategy) shouldExit(ticker string, date time.Time, price float64) (string, bool) {
	trade := s.pf.OpenTrade(ticker)
	if trade == nil {
		return "", false
	}

	peak := s.peaks[ticker]
	if price > peak {
		peak = price
		s.peaks[ticker] = peak
	}

	if peak > 0 && (peak-price)/peak*100 >= swingTrailingStop {
		return "trailing stop", true
	}
	if int(date.Sub(trade.Entry.Date).Hours()/24) >= swingMaxHoldDays {
		return "hold period cap", true
	}
	if trade.Entry.Price > 0 && (price-trade.Entry.Price)/trade.Entry.Price*100 >= swingProfitTarget {
		return "profit target", true
	}

	series, ok := s.prices.Series(ticker)
	if !ok {
		return "", false
	}
	closes := series.ClosesUpTo(date, swingHistoryCandles)
	if len(closes) < swingMacdSlow+swingMacdSignal {
		return "", false
	}

	rsi := talib.Rsi(closes, swingRsiPeriod)
	if rsi[len(rsi)-1] > swingRsiExit {
		return "overbought reversal", true
	}
	macd, signal, hist := talib.Macd(closes, swingMacdFast, swingMacdSlow, swingMacdSignal)
	n := len(closes) - 1
	if macd[n] < signal[n] && hist[n] < 0 {
		return "bearish macd", true
	}
	return "", false
}

// entrySignal reports whether ticker qualifies for entry on date, along
// with its trailing volatility for sizing.
func (s *SwingStrategy) entrySignal(ticker string, date time.Time) (float64, bool) {
	series, ok := s.prices.Series(ticker)
	if !ok {
		return 0, false
	}
	closes := series.ClosesUpTo(date, swingHistoryCandles)
	if len(closes) < swingMacdSlow+swingMacdSignal {
		return 0, false
	}

	vol, ok := dailyVol(closes)
	if !ok || vol > swingVolCap {
		return 0, false
	}

	rsi := talib.Rsi(closes, swingRsiPeriod)
	if rsi[len(rsi)-1] > swingRsiOverbought {
		return 0, false
	}

	macd, signal, hist := talib.Macd(closes, swingMacdFast, swingMacdSlow, swingMacdSignal)
	n := len(closes) - 1
	if !(macd[n] > signal[n] && hist[n] > 0 && hist[n-1] <= 0) {
		return 0, false
	}

	if closes[n] <= closes[n-swingMomentumDays] {
		return 0, false
	}
	return vol, true
}

// Rebalance runs exits first, then sizes qualifying entries by inverse
// volatility, capped per ticker at a fraction of total portfolio value.
func (s *SwingStrategy) Rebalance(date time.Time) ([]models.Order, error) {
	var placed []models.Order

	for _, ticker := range s.pf.OpenTickers() {
		price, ok := s.prices.AsOf(ticker, date)
		if !ok {
			continue
		}
		reason, exit := s.shouldExit(ticker, date, price)
		if !exit {
			continue
		}
		if trade := s.pf.CloseLong(ticker, date); trade != nil {
			placed = append(placed, *trade.Exit)
			delete(s.peaks, ticker)
			logrus.Infof("swing: closed %s on %s (%s, pnl %.2f)", ticker, date.Format("2006-01-02"), reason, trade.PNL)
		}
	}

	type candidate struct {
		ticker string
		weight float64
	}
	var candidates []candidate
	var weightSum float64
	for _, ticker := range s.cfg.Tickers {
		if s.pf.HasOpenPosition(ticker) {
			continue
		}
		vol, ok := s.entrySignal(ticker, date)
		if !ok {
			continue
		}
		weight := 1 / vol
		candidates = append(candidates, candidate{ticker: ticker, weight: weight})
		weightSum += weight
	}
	if len(candidates) == 0 {
		return placed, nil
	}

	totalValue := s.pf.ValueOn(date)
	for _, c := range candidates {
		amount := totalValue * c.weight / weightSum
		if limit := totalValue * swingMaxFraction; amount > limit {
			amount = limit
		}
		if available := s.pf.AvailableCash(); amount > available {
			amount = available
		}
		if amount <= 0 {
			continue
		}
		if trade := s.pf.OpenLong(c.ticker, amount, date); trade != nil {
			placed = append(placed, trade.Entry)
			s.peaks[c.ticker] = trade.Entry.Price
		}
	}

	return placed, nil
}
