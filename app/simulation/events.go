package simulation

import (
	"time"

	"github.com/Adarsh-S-Nair/zentari-sub000/app/models"
)

// EventType tags one progress event on the stream
type EventType string

const (
	// EventStatus is an informational message
	EventStatus EventType = "status"
	// EventDaily carries one day's valuations
	EventDaily EventType = "daily"
	// EventError is terminal, the run produced no summary
	EventError EventType = "error"
	// EventDone is terminal, carrying the full summary
	EventDone EventType = "done"
)

// Event is one message on the progress stream. Consumers must treat
// error and done as end-of-stream.
type Event struct {
	Type           EventType `json:"type"`
	Message        string    `json:"message,omitempty"`
	Date           string    `json:"date,omitempty"`
	PortfolioValue *float64  `json:"portfolio_value,omitempty"`
	BenchmarkValue *float64  `json:"benchmark_value,omitempty"`
	Summary        *Summary  `json:"summary,omitempty"`
}

// DailyValue is one day of a value series; Value is nil when no price
// could be resolved for that day.
type DailyValue struct {
	Date  string   `json:"date"`
	Value *float64 `json:"value"`
}

// Summary is the final result of a completed run
type Summary struct {
	RunID                string          `json:"run_id"`
	StartDate            string          `json:"start_date"`
	EndDate              string          `json:"end_date"`
	Strategy             string          `json:"strategy"`
	Benchmark            string          `json:"benchmark"`
	StartingValue        float64         `json:"starting_value"`
	FinalPortfolioValue  float64         `json:"final_portfolio_value"`
	FinalBenchmarkValue  *float64        `json:"final_benchmark_value"`
	TotalReturnPct       float64         `json:"total_return_pct"`
	TradeHistory         []*models.Trade `json:"trade_history"`
	DailyValues          []DailyValue    `json:"daily_values"`
	DailyBenchmarkValues []DailyValue    `json:"daily_benchmark_values"`
	DurationSeconds      float64         `json:"duration_seconds"`
}

func statusEvent(message string) Event {
	return Event{Type: EventStatus, Message: message}
}

func dailyEvent(date time.Time, portfolioValue float64, benchmarkValue *float64) Event {
	return Event{
		Type:           EventDaily,
		Date:           date.Format("2006-01-02"),
		PortfolioValue: &portfolioValue,
		BenchmarkValue: benchmarkValue,
	}
}

func errorEvent(message string) Event {
	return Event{Type: EventError, Message: message}
}

func doneEvent(summary *Summary) Event {
	return Event{Type: EventDone, Summary: summary}
}
