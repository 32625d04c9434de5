package simulation

import (
	"context"
	"fmt"
	"time"

	"github.com/oarkflow/xid"
	"github.com/sirupsen/logrus"

	"github.com/Adarsh-S-Nair/zentari-sub000/app/models"
	"github.com/Adarsh-S-Nair/zentari-sub000/app/strategy"
	"github.com/Adarsh-S-Nair/zentari-sub000/stock"
)

// Driver steps a calendar date range day by day, invoking the strategy,
// valuing the portfolio and benchmark, and emitting one progress event per
// day on a bounded channel. Cancellation is observed right after each
// emission; a cancelled run performs no final liquidation. An error during
// a simulated day ends the run with a single error event and no summary.
type Driver struct {
	params *Params
	prices *stock.Cache
	pf     *models.Portfolio
	strat  strategy.Strategy
	store  *models.Store // optional, nil skips persistence
	events chan Event
}

// NewDriver validates nothing itself; params must come from Request.Validate.
// When the request names no tickers, the universe membership at the start
// date becomes the tracked universe.
func NewDriver(params *Params, prices *stock.Cache, universe stock.UniverseProvider, store *models.Store, eventBuffer int) (*Driver, error) {
	if eventBuffer <= 0 {
		eventBuffer = 64
	}

	tickers := params.Tickers
	if len(tickers) == 0 {
		tickers = universe.TickersAsOf(params.Start)
	}

	pf := models.NewPortfolio(params.StartingValue, prices)

	cfg := strategy.Config{
		Tickers:          tickers,
		Benchmark:        params.Benchmark,
		Start:            params.Start,
		End:              params.End,
		LookbackMonths:   params.LookbackMonths,
		SkipRecentMonths: params.SkipRecentMonths,
		HoldMonths:       params.HoldMonths,
		TopN:             params.TopN,
		GainThresholdPct: params.TakeProfitThreshold,
		LossThresholdPct: params.StopLossThreshold,
		PairA:            params.PairA,
		PairB:            params.PairB,
	}

	strat, err := strategy.New(params.Strategy, cfg, prices, universe, pf)
	if err != nil {
		return nil, err
	}

	return &Driver{
		params: params,
		prices: prices,
		pf:     pf,
		strat:  strat,
		store:  store,
		events: make(chan Event, eventBuffer),
	}, nil
}

// Events is the progress stream. It is closed when the run ends, after a
// terminal done or error event.
func (d *Driver) Events() <-chan Event { return d.events }

// Portfolio exposes the run's ledger, mainly for tests and reporting.
func (d *Driver) Portfolio() *models.Portfolio { return d.pf }

// emit delivers one event, returning false when the consumer is gone.
func (d *Driver) emit(ctx context.Context, event Event) bool {
	select {
	case d.events <- event:
	case <-ctx.Done():
		return false
	}
	// cancellation is observed here, right after each emission
	return ctx.Err() == nil
}

// Run executes the simulation to completion, closing the event stream at
// the end. It is meant to run on its own goroutine while the transport
// layer drains Events.
func (d *Driver) Run(ctx context.Context) {
	defer close(d.events)
	started := time.Now()

	if !d.emit(ctx, statusEvent(fmt.Sprintf("loading price data for %s", d.strat.Name()))) {
		return
	}

	if err := d.strat.Warmup(ctx); err != nil {
		logrus.Warnf("simulation warmup error: %v", err)
		d.emit(ctx, errorEvent(fmt.Sprintf("price data load failed: %v", err)))
		return
	}

	if err := d.prices.Load(ctx, []string{d.params.Benchmark}, d.params.Start.AddDate(0, 0, -14), d.params.End); err != nil {
		logrus.Warnf("benchmark load error: %v", err)
		d.emit(ctx, errorEvent(fmt.Sprintf("benchmark data load failed: %v", err)))
		return
	}
	benchSeries, _ := d.prices.Series(d.params.Benchmark)
	bench := NewBenchmarkTracker(d.params.Benchmark, d.params.StartingValue, benchSeries, d.params.Start)

	if !d.emit(ctx, statusEvent("simulation started")) {
		return
	}

	var dailyValues, dailyBenchmarks []DailyValue
	var lastRebalance time.Time

	for day := d.params.Start; !day.After(d.params.End); day = day.AddDate(0, 0, 1) {
		if d.strat.ShouldRebalance(day, lastRebalance) {
			if _, err := d.strat.Rebalance(day); err != nil {
				logrus.Warnf("simulation day %s error: %v", day.Format("2006-01-02"), err)
				d.emit(ctx, errorEvent(fmt.Sprintf("failed on %s: %v", day.Format("2006-01-02"), err)))
				return
			}
			lastRebalance = day
		}

		value := d.pf.ValueOn(day)
		benchValue := bench.ValueOn(day)

		dateStr := day.Format("2006-01-02")
		v := value
		dailyValues = append(dailyValues, DailyValue{Date: dateStr, Value: &v})
		dailyBenchmarks = append(dailyBenchmarks, DailyValue{Date: dateStr, Value: benchValue})

		if !d.emit(ctx, dailyEvent(day, value, benchValue)) {
			logrus.Infof("simulation cancelled on %s", dateStr)
			return
		}
	}

	closed := d.pf.CloseAll(d.params.End)
	logrus.Infof("simulation liquidated %d positions at end date", len(closed))

	finalValue := d.pf.ValueOn(d.params.End)
	summary := &Summary{
		RunID:                xid.New().String(),
		StartDate:            d.params.Start.Format("2006-01-02"),
		EndDate:              d.params.End.Format("2006-01-02"),
		Strategy:             d.strat.Name(),
		Benchmark:            d.params.Benchmark,
		StartingValue:        d.params.StartingValue,
		FinalPortfolioValue:  finalValue,
		FinalBenchmarkValue:  bench.ValueOn(d.params.End),
		TotalReturnPct:       (finalValue - d.params.StartingValue) / d.params.StartingValue * 100,
		TradeHistory:         d.pf.Trades(),
		DailyValues:          dailyValues,
		DailyBenchmarkValues: dailyBenchmarks,
		DurationSeconds:      time.Since(started).Seconds(),
	}

	if d.store != nil {
		if err := d.store.SaveRun(d.runRecord(summary)); err != nil {
			logrus.Warnf("run save error: %v", err)
		}
	}

	d.emit(ctx, doneEvent(summary))
}

// runRecord converts a completed summary into store records. Only closed
// trades are persisted; a position the liquidation could not close stays
// in the summary's trade history but gets no record.
func (d *Driver) runRecord(summary *Summary) *models.RunRecord {
	run := &models.RunRecord{
		ID:                  summary.RunID,
		CreatedAt:           time.Now(),
		Strategy:            summary.Strategy,
		Benchmark:           summary.Benchmark,
		StartDate:           d.params.Start,
		EndDate:             d.params.End,
		StartingValue:       summary.StartingValue,
		FinalValue:          summary.FinalPortfolioValue,
		FinalBenchmarkValue: summary.FinalBenchmarkValue,
		TotalReturnPct:      summary.TotalReturnPct,
		DurationSeconds:     summary.DurationSeconds,
	}

	for _, trade := range summary.TradeHistory {
		if trade.Status != models.TradeClosed {
			continue
		}
		run.Trades = append(run.Trades, models.TradeRecord{
			TradeID:      trade.ID,
			Ticker:       trade.Ticker,
			Position:     string(trade.Position),
			Quantity:     trade.Entry.Quantity,
			EntryDate:    trade.Entry.Date,
			EntryPrice:   trade.Entry.Price,
			ExitDate:     trade.Exit.Date,
			ExitPrice:    trade.Exit.Price,
			PNL:          trade.PNL,
			PNLPercent:   trade.PNLPercent,
			DurationDays: trade.DurationDays,
		})
	}

	for i, dv := range summary.DailyValues {
		record := models.DailyValueRecord{RunID: run.ID, Date: stock.Day(mustParseDay(dv.Date))}
		if dv.Value != nil {
			record.PortfolioValue = *dv.Value
		}
		record.BenchmarkValue = summary.DailyBenchmarkValues[i].Value
		run.DailyValues = append(run.DailyValues, record)
	}

	return run
}

func mustParseDay(s string) time.Time {
	t, _ := time.Parse("2006-01-02", s)
	return t
}
