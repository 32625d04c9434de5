package strategy

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Adarsh-S-Nair/zentari-sub000/app/models"
	"github.com/Adarsh-S-Nair/zentari-sub000/stock"
)

const (
	pairEntryZ    = 1.0
	pairExitZ     = 0.2
	minPairPoints = 20
	// trading days per lookback month
	pairWindowDays = 21
)

type spreadState int

const (
	spreadFlat spreadState = iota
	spreadLong             // holding leg A
	spreadShort            // holding leg B
)

// PairsStrategy trades the regression spread between a fixed pair of
// tickers. The spread y = alpha + beta*x is fit by ordinary least squares
// on the trailing window; its residual z-score drives entries and exits.
// At most one spread position is open at a time.
type PairsStrategy struct {
	cfg    Config
	prices *stock.Cache
	pf     *models.Portfolio

	legA  string // y side of the regression
	legB  string // x side
	state spreadState
}

// NewPairsStrategy is constructor of PairsStrategy
func NewPairsStrategy(cfg Config, prices *stock.Cache, pf *models.Portfolio) (*PairsStrategy, error) {
	if cfg.PairA == "" || cfg.PairB == "" || cfg.PairA == cfg.PairB {
		return nil, fmt.Errorf("pairs strategy needs two distinct tickers, got %q and %q", cfg.PairA, cfg.PairB)
	}
	return &PairsStrategy{cfg: cfg, prices: prices, pf: pf, legA: cfg.PairA, legB: cfg.PairB}, nil
}

// Name implements Strategy
func (s *PairsStrategy) Name() string { return Pairs }

// Warmup loads both legs back far enough for the first day's window.
func (s *PairsStrategy) Warmup(ctx context.Context) error {
	from := s.cfg.Start.AddDate(0, -(s.cfg.LookbackMonths + 1), 0)
	return s.prices.Load(ctx, []string{s.legA, s.legB}, from, s.cfg.End)
}

// ShouldRebalance implements Strategy; the z-score is evaluated daily.
func (s *PairsStrategy) ShouldRebalance(date, lastRebalance time.Time) bool {
	return true
}

// ZScore fits the spread regression on the trailing window ending at date
// and standardizes the latest residual. Returns false when fewer than
// minPairPoints aligned observations exist or the residuals have no spread.
func (s *PairsStrategy) ZScore(date time.Time) (float64, bool) {
	seriesA, okA := s.prices.Series(s.legA)
	seriesB, okB := s.prices.Series(s.legB)
	if !okA || !okB {
		return 0, false
	}

	window := s.cfg.LookbackMonths * pairWindowDays
	from := stock.Day(date).AddDate(0, 0, -2*window)

	var xs, ys []float64
	for _, point := range seriesA.Between(from, date) {
		if x, ok := seriesB.At(point.Day); ok {
			ys = append(ys, point.Price)
			xs = append(xs, x)
		}
	}
	if len(xs) > window {
		xs = xs[len(xs)-window:]
		ys = ys[len(ys)-window:]
	}
	if len(xs) < minPairPoints {
		return 0, false
	}

	n := float64(len(xs))
	var meanX, meanY float64
	for i := range xs {
		meanX += xs[i]
		meanY += ys[i]
	}
	meanX /= n
	meanY /= n

	var covXY, varX float64
	for i := range xs {
		covXY += (xs[i] - meanX) * (ys[i] - meanY)
		varX += (xs[i] - meanX) * (xs[i] - meanX)
	}
	if varX == 0 {
		return 0, false
	}
	beta := covXY / varX
	alpha := meanY - beta*meanX

	residuals := make([]float64, len(xs))
	var meanResid float64
	for i := range xs {
		residuals[i] = ys[i] - (alpha + beta*xs[i])
		meanResid += residuals[i]
	}
	meanResid /= n

	var sumSq float64
	for _, r := range residuals {
		sumSq += (r - meanResid) * (r - meanResid)
	}
	std := math.Sqrt(sumSq / (n - 1))
	if std == 0 || math.IsNaN(std) {
		return 0, false
	}

	return (residuals[len(residuals)-1] - meanResid) / std, true
}

// Rebalance enters the spread when the z-score leaves the entry band and
// unwinds it once the spread reverts inside the exit band.
func (s *PairsStrategy) Rebalance(date time.Time) ([]models.Order, error) {
	z, ok := s.ZScore(date)
	if !ok {
		return nil, nil
	}

	var placed []models.Order
	switch {
	case s.state == spreadFlat && z < -pairEntryZ:
		if trade := s.pf.OpenLong(s.legA, s.pf.AvailableCash(), date); trade != nil {
			placed = append(placed, trade.Entry)
			s.state = spreadLong
			logrus.Infof("pairs: long spread on %s (z=%.2f)", date.Format("2006-01-02"), z)
		}

	case s.state == spreadFlat && z > pairEntryZ:
		if trade := s.pf.OpenLong(s.legB, s.pf.AvailableCash(), date); trade != nil {
			placed = append(placed, trade.Entry)
			s.state = spreadShort
			logrus.Infof("pairs: short spread on %s (z=%.2f)", date.Format("2006-01-02"), z)
		}

	case s.state != spreadFlat && math.Abs(z) < pairExitZ:
		leg := s.legA
		if s.state == spreadShort {
			leg = s.legB
		}
		if trade := s.pf.CloseLong(leg, date); trade != nil {
			placed = append(placed, *trade.Exit)
			s.state = spreadFlat
			logrus.Infof("pairs: spread closed on %s (z=%.2f)", date.Format("2006-01-02"), z)
		}
	}

	return placed, nil
}
