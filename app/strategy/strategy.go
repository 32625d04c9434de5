package strategy

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Adarsh-S-Nair/zentari-sub000/app/models"
	"github.com/Adarsh-S-Nair/zentari-sub000/stock"
)

// Strategy is a decision policy driving one simulation run. The driver asks
// ShouldRebalance once per simulated day and, when it says yes, executes
// Rebalance against the ledger the strategy was constructed with.
type Strategy interface {
	Name() string
	// Warmup loads the price history the variant needs through the
	// injected cache, before the first simulated day.
	Warmup(ctx context.Context) error
	// ShouldRebalance reports whether date is a rebalance day.
	// A zero lastRebalance means the strategy has never rebalanced.
	ShouldRebalance(date, lastRebalance time.Time) bool
	// Rebalance executes the day's decisions against the ledger and
	// returns the orders that were actually placed.
	Rebalance(date time.Time) ([]models.Order, error)
}

// Config carries the tunables shared across strategy variants.
// Fields a variant does not use are ignored by it.
type Config struct {
	Tickers          []string
	Benchmark        string
	Start            time.Time
	End              time.Time
	LookbackMonths   int
	SkipRecentMonths int
	HoldMonths       int
	TopN             int
	GainThresholdPct float64
	LossThresholdPct float64
	PairA            string
	PairB            string
}

// Strategy names accepted by New
const (
	Momentum  = "momentum"
	Crossover = "sma_crossover"
	Pairs     = "pairs"
	Swing     = "swing"
)

// New selects a concrete strategy by name. Each variant keeps its own
// state; nothing is shared between runs.
func New(name string, cfg Config, prices *stock.Cache, universe stock.UniverseProvider, pf *models.Portfolio) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case Momentum, "":
		return NewMomentumStrategy(cfg, prices, pf), nil
	case Crossover, "crossover":
		return NewCrossoverStrategy(cfg, prices, universe, pf), nil
	case Pairs:
		return NewPairsStrategy(cfg, prices, pf)
	case Swing:
		return NewSwingStrategy(cfg, prices, pf), nil
	default:
		return nil, fmt.Errorf("unknown strategy %q (supported: momentum, sma_crossover, pairs, swing)", name)
	}
}
