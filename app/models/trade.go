package models

import (
	"fmt"

	"github.com/oarkflow/xid"
)

// TradeStatus is the lifecycle state of a Trade
type TradeStatus string

const (
	// TradeOpen is the initial state, set at creation
	TradeOpen TradeStatus = "OPEN"
	// TradeClosed is terminal, set exactly once by Close
	TradeClosed TradeStatus = "CLOSED"
)

// Trade represents one round-trip position: an entry order and,
// once closed, an exit order with realized results.
type Trade struct {
	ID           string       `json:"id"`
	Ticker       string       `json:"ticker"`
	Position     PositionType `json:"position"`
	Entry        Order        `json:"entry"`
	Exit         *Order       `json:"exit,omitempty"`
	Status       TradeStatus  `json:"status"`
	PNL          float64      `json:"pnl"`
	PNLPercent   float64      `json:"pnl_pct"`
	DurationDays int          `json:"duration_days"`
}

// NewTrade is constructor of Trade, registered open with the entry order
func NewTrade(position PositionType, entry Order) *Trade {
	return &Trade{
		ID:       xid.New().String(),
		Ticker:   entry.Ticker,
		Position: position,
		Entry:    entry,
		Status:   TradeOpen,
	}
}

// Close transitions the trade open -> closed and realizes results.
// It is the only way a trade leaves the open state; a second call is rejected.
func (t *Trade) Close(exit Order) error {
	if t.Status == TradeClosed {
		return fmt.Errorf("trade %s already closed", t.ID)
	}

	t.Exit = &exit
	t.Status = TradeClosed

	if t.Position == Short {
		t.PNL = (t.Entry.Price - exit.Price) * exit.Quantity
	} else {
		t.PNL = (exit.Price - t.Entry.Price) * exit.Quantity
	}
	if t.Entry.Amount != 0 {
		t.PNLPercent = t.PNL / t.Entry.Amount * 100
	}
	t.DurationDays = int(exit.Date.Sub(t.Entry.Date).Hours() / 24)

	return nil
}
