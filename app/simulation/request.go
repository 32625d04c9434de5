package simulation

import (
	"fmt"
	"time"

	"github.com/araddon/dateparse"

	"github.com/Adarsh-S-Nair/zentari-sub000/stock"
)

const maxRangeYears = 10

// Request is the caller-supplied configuration for one simulation run.
// It is validated before any price data is loaded.
type Request struct {
	StartDate           string   `json:"start_date"`
	EndDate             string   `json:"end_date"`
	LookbackMonths      int      `json:"lookback_months"`
	SkipRecentMonths    int      `json:"skip_recent_months"`
	HoldMonths          int      `json:"hold_months"`
	TopN                int      `json:"top_n"`
	StartingValue       float64  `json:"starting_value"`
	Benchmark           string   `json:"benchmark"`
	Strategy            string   `json:"strategy"`
	TakeProfitThreshold float64  `json:"take_profit_threshold"`
	StopLossThreshold   float64  `json:"stop_loss_threshold"`
	Tickers             []string `json:"tickers,omitempty"`
	PairA               string   `json:"pair_a,omitempty"`
	PairB               string   `json:"pair_b,omitempty"`
}

// Params is a validated Request with parsed dates.
type Params struct {
	Request
	Start time.Time
	End   time.Time
}

// Validate checks dates and numeric bounds, returning parsed parameters.
// It touches no external collaborator, so a bad request costs nothing.
func (r *Request) Validate() (*Params, error) {
	start, err := dateparse.ParseAny(r.StartDate)
	if err != nil {
		return nil, fmt.Errorf("bad parameter(start_date): %w", err)
	}
	end, err := dateparse.ParseAny(r.EndDate)
	if err != nil {
		return nil, fmt.Errorf("bad parameter(end_date): %w", err)
	}
	start, end = stock.Day(start), stock.Day(end)

	if start.After(end) {
		return nil, fmt.Errorf("bad parameter(start_date): start %s is after end %s", start.Format("2006-01-02"), end.Format("2006-01-02"))
	}
	if end.After(start.AddDate(maxRangeYears, 0, 0)) {
		return nil, fmt.Errorf("bad parameter(end_date): range exceeds %d years", maxRangeYears)
	}
	if r.LookbackMonths < 1 || r.LookbackMonths > 12 {
		return nil, fmt.Errorf("bad parameter(lookback_months): %d not in [1, 12]", r.LookbackMonths)
	}
	if r.SkipRecentMonths < 0 || r.SkipRecentMonths > 6 {
		return nil, fmt.Errorf("bad parameter(skip_recent_months): %d not in [0, 6]", r.SkipRecentMonths)
	}
	if r.HoldMonths < 1 || r.HoldMonths > 3 {
		return nil, fmt.Errorf("bad parameter(hold_months): %d not in [1, 3]", r.HoldMonths)
	}
	if r.TopN < 1 || r.TopN > 20 {
		return nil, fmt.Errorf("bad parameter(top_n): %d not in [1, 20]", r.TopN)
	}
	if r.StartingValue <= 0 || r.StartingValue > 1e9 {
		return nil, fmt.Errorf("bad parameter(starting_value): %.2f not in (0, 1e9]", r.StartingValue)
	}
	if r.Benchmark == "" {
		return nil, fmt.Errorf("bad parameter(benchmark): required")
	}
	if r.TakeProfitThreshold < 0 || r.StopLossThreshold < 0 {
		return nil, fmt.Errorf("bad parameter(thresholds): must not be negative")
	}

	return &Params{Request: *r, Start: start, End: end}, nil
}
