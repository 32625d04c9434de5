package strategy_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Adarsh-S-Nair/zentari-sub000/app/models"
	"github.com/Adarsh-S-Nair/zentari-sub000/app/strategy"
	"github.com/Adarsh-S-Nair/zentari-sub000/stock"
)

// pairSeries builds the two legs on the same trading days. Leg B walks up
// one point a day; leg A tracks 2x+50 plus the residual from resid(i).
func pairSeries(days int, resid func(i int) float64) (legA, legB *stock.Series) {
	base := day(2024, 1, 2)
	legB = seriesOf(base, days, func(i int) float64 { return 100 + float64(i) })
	legA = seriesOf(base, days, func(i int) float64 { return 2*(100+float64(i)) + 50 + resid(i) })
	return legA, legB
}

// zigzag is alternating unit noise, enough residual spread to standardize
// against without drowning a deliberate outlier.
func zigzag(i int) float64 {
	if i%2 == 0 {
		return 1
	}
	return -1
}

func pairsFixture(t *testing.T, legA, legB *stock.Series) (*strategy.PairsStrategy, *models.Portfolio) {
	t.Helper()

	prices := stock.NewCache(fakeProvider{"KO": legA, "PEP": legB})
	pf := models.NewPortfolio(10000, prices)
	cfg := strategy.Config{
		Start:          day(2024, 2, 1),
		End:            day(2024, 12, 31),
		LookbackMonths: 2,
		PairA:          "KO",
		PairB:          "PEP",
	}
	strat, err := strategy.NewPairsStrategy(cfg, prices, pf)
	assert.NoError(t, err)
	assert.NoError(t, strat.Warmup(context.Background()))
	return strat, pf
}

func TestPairsConstructorValidation(t *testing.T) {
	assert := assert.New(t)

	prices := stock.NewCache(fakeProvider{})
	pf := models.NewPortfolio(10000, prices)

	_, err := strategy.NewPairsStrategy(strategy.Config{PairA: "KO"}, prices, pf)
	assert.Error(err)

	_, err = strategy.NewPairsStrategy(strategy.Config{PairA: "KO", PairB: "KO"}, prices, pf)
	assert.Error(err)
}

func TestPairsZScoreDivergence(t *testing.T) {
	assert := assert.New(t)

	// leg A drops well below the fit on the last day
	legA, legB := pairSeries(42, func(i int) float64 {
		if i == 41 {
			return -5
		}
		return zigzag(i)
	})
	strat, _ := pairsFixture(t, legA, legB)

	z, ok := strat.ZScore(day(2024, 1, 2).AddDate(0, 0, 41))
	assert.True(ok)
	assert.Less(z, -1.0)
}

func TestPairsZScoreDegenerateSpread(t *testing.T) {
	assert := assert.New(t)

	// a perfect linear relation leaves no residual spread
	legA, legB := pairSeries(42, func(i int) float64 { return 0 })
	strat, _ := pairsFixture(t, legA, legB)

	_, ok := strat.ZScore(day(2024, 1, 2).AddDate(0, 0, 41))
	assert.False(ok)
}

func TestPairsZScoreTooFewPoints(t *testing.T) {
	assert := assert.New(t)

	legA, legB := pairSeries(10, zigzag)
	strat, _ := pairsFixture(t, legA, legB)

	_, ok := strat.ZScore(day(2024, 1, 2).AddDate(0, 0, 9))
	assert.False(ok)
}

func TestPairsSpreadRoundTrip(t *testing.T) {
	assert := assert.New(t)

	base := day(2024, 1, 2)
	entryDay := base.AddDate(0, 0, 41)
	exitDay := base.AddDate(0, 0, 87)

	// zigzag noise with leg A breaking down on the entry day, then back in
	// line with the fit on the exit day
	legA, legB := pairSeries(88, func(i int) float64 {
		switch i {
		case 41:
			return -5
		case 87:
			return 0
		default:
			return zigzag(i)
		}
	})
	strat, pf := pairsFixture(t, legA, legB)

	// spread is cheap: long leg A with everything available
	placed, err := strat.Rebalance(entryDay)
	assert.NoError(err)
	assert.Len(placed, 1)
	assert.Equal(models.Buy, placed[0].Side)
	assert.Equal("KO", placed[0].Ticker)
	assert.True(pf.HasOpenPosition("KO"))

	// still stretched mid-way: no doubling up, no premature exit
	placed, err = strat.Rebalance(base.AddDate(0, 0, 60))
	assert.NoError(err)
	assert.Empty(placed)
	assert.True(pf.HasOpenPosition("KO"))

	// reverted inside the exit band: unwind
	placed, err = strat.Rebalance(exitDay)
	assert.NoError(err)
	assert.Len(placed, 1)
	assert.Equal(models.Sell, placed[0].Side)
	assert.False(pf.HasOpenPosition("KO"))
	assert.Empty(pf.OpenTickers())
}

func TestPairsNoEntryInsideBand(t *testing.T) {
	assert := assert.New(t)

	legA, legB := pairSeries(42, zigzag)
	strat, pf := pairsFixture(t, legA, legB)

	// the last residual sits at one standard deviation, inside the band
	placed, err := strat.Rebalance(day(2024, 1, 2).AddDate(0, 0, 41))
	assert.NoError(err)
	assert.Empty(placed)
	assert.Empty(pf.OpenTickers())
}
