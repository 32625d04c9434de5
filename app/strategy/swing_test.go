package strategy_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Adarsh-S-Nair/zentari-sub000/app/models"
	"github.com/Adarsh-S-Nair/zentari-sub000/app/strategy"
	"github.com/Adarsh-S-Nair/zentari-sub000/stock"
)

func swingFixture(t *testing.T, provider fakeProvider, tickers []string) (*strategy.SwingStrategy, *models.Portfolio) {
	t.Helper()

	prices := stock.NewCache(provider)
	pf := models.NewPortfolio(10000, prices)
	cfg := strategy.Config{
		Tickers: tickers,
		Start:   day(2024, 1, 1),
		End:     day(2024, 12, 31),
	}
	strat := strategy.NewSwingStrategy(cfg, prices, pf)
	assert.NoError(t, strat.Warmup(context.Background()))
	return strat, pf
}

func TestSwingNoEntryOnDeadFlatSeries(t *testing.T) {
	assert := assert.New(t)

	provider := fakeProvider{"TQQQ": seriesOf(day(2024, 1, 1), 100, func(i int) float64 { return 50 })}
	strat, pf := swingFixture(t, provider, []string{"TQQQ"})

	placed, err := strat.Rebalance(day(2024, 4, 1))
	assert.NoError(err)
	assert.Empty(placed)
	assert.Empty(pf.OpenTickers())
}

func TestSwingEntersOnRecovery(t *testing.T) {
	assert := assert.New(t)

	// a choppy decline followed by a choppy recovery: at some point in the
	// recovery the macd turns while rsi is still moderate and volatility low
	base := day(2024, 1, 1)
	provider := fakeProvider{"TQQQ": seriesOf(base, 100, func(i int) float64 {
		wiggle := 0.0
		if i%2 == 0 {
			wiggle = 0.55
		}
		if i < 70 {
			return 120 - 0.15*float64(i) - wiggle
		}
		return 109.5 + 0.15*float64(i-70) + wiggle
	})}
	strat, pf := swingFixture(t, provider, []string{"TQQQ"})

	var entered bool
	for i := 72; i < 100; i++ {
		placed, err := strat.Rebalance(base.AddDate(0, 0, i))
		assert.NoError(err)
		if pf.HasOpenPosition("TQQQ") {
			assert.NotEmpty(placed)
			entered = true
			break
		}
	}
	assert.True(entered, "expected an entry during the recovery")

	// sizing is capped at a quarter of portfolio value
	trade := pf.OpenTrade("TQQQ")
	assert.NotNil(trade)
	assert.InDelta(2500.0, trade.Entry.Amount, 1.0)
}

func TestSwingHoldPeriodCap(t *testing.T) {
	assert := assert.New(t)

	base := day(2024, 1, 1)
	provider := fakeProvider{"TQQQ": seriesOf(base, 160, func(i int) float64 { return 50 })}
	strat, pf := swingFixture(t, provider, []string{"TQQQ"})

	entryDay := base.AddDate(0, 0, 100)
	assert.NotNil(pf.OpenLong("TQQQ", 2000, entryDay))

	// well within the cap: stays open
	placed, err := strat.Rebalance(entryDay.AddDate(0, 0, 5))
	assert.NoError(err)
	assert.Empty(placed)
	assert.True(pf.HasOpenPosition("TQQQ"))

	placed, err = strat.Rebalance(entryDay.AddDate(0, 0, 20))
	assert.NoError(err)
	assert.Len(placed, 1)
	assert.Equal(models.Sell, placed[0].Side)
	assert.False(pf.HasOpenPosition("TQQQ"))
}

func TestSwingProfitTarget(t *testing.T) {
	assert := assert.New(t)

	base := day(2024, 1, 1)
	jump := base.AddDate(0, 0, 105)
	provider := fakeProvider{"TQQQ": seriesOf(base, 160, func(i int) float64 {
		if i >= 105 {
			return 56 // +12% over the entry
		}
		return 50
	})}
	strat, pf := swingFixture(t, provider, []string{"TQQQ"})

	entryDay := base.AddDate(0, 0, 100)
	assert.NotNil(pf.OpenLong("TQQQ", 2000, entryDay))

	placed, err := strat.Rebalance(jump)
	assert.NoError(err)
	assert.Len(placed, 1)
	assert.False(pf.HasOpenPosition("TQQQ"))

	trades := pf.Trades()
	assert.Len(trades, 1)
	assert.Greater(trades[0].PNL, 0.0)
}

func TestSwingTrailingStop(t *testing.T) {
	assert := assert.New(t)

	base := day(2024, 1, 1)
	provider := fakeProvider{"TQQQ": seriesOf(base, 160, func(i int) float64 {
		switch {
		case i < 103:
			// light chop keeps the rsi off the stops
			if i%2 == 0 {
				return 50.2
			}
			return 49.8
		case i < 106:
			return 52 // modest run-up, below the profit target
		default:
			return 48 // 7.7% off the peak
		}
	})}
	strat, pf := swingFixture(t, provider, []string{"TQQQ"})

	entryDay := base.AddDate(0, 0, 100)
	assert.NotNil(pf.OpenLong("TQQQ", 2000, entryDay))

	// peak is recorded while the position rides up
	placed, err := strat.Rebalance(base.AddDate(0, 0, 104))
	assert.NoError(err)
	assert.Empty(placed)

	placed, err = strat.Rebalance(base.AddDate(0, 0, 107))
	assert.NoError(err)
	assert.Len(placed, 1)
	assert.False(pf.HasOpenPosition("TQQQ"))
}

func TestSwingDefaultTickers(t *testing.T) {
	assert := assert.New(t)

	prices := stock.NewCache(fakeProvider{})
	pf := models.NewPortfolio(10000, prices)
	strat := strategy.NewSwingStrategy(strategy.Config{Start: day(2024, 1, 1)}, prices, pf)

	assert.Equal(strategy.Swing, strat.Name())
	assert.True(strat.ShouldRebalance(day(2024, 2, 1), time.Time{}))
}
