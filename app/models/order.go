package models

import "time"

// OrderSide is the side of an Order (buy or sell)
type OrderSide string

const (
	// Buy represents a buy order
	Buy OrderSide = "BUY"
	// Sell represents a sell order
	Sell OrderSide = "SELL"
)

// PositionType says which direction a trade is exposed in
type PositionType string

const (
	// Long profits when the price rises
	Long PositionType = "LONG"
	// Short profits when the price falls
	Short PositionType = "SHORT"
)

// Order represents one execution against the ledger.
// Immutable once created.
type Order struct {
	Side     OrderSide `json:"side"`
	Ticker   string    `json:"ticker"`
	Quantity float64   `json:"quantity"`
	Price    float64   `json:"price"`
	Date     time.Time `json:"date"`
	Amount   float64   `json:"amount"`
}

// NewOrder is constructor of Order, Amount is the notional quantity x price
func NewOrder(side OrderSide, ticker string, quantity, price float64, date time.Time) Order {
	return Order{
		Side:     side,
		Ticker:   ticker,
		Quantity: quantity,
		Price:    price,
		Date:     date,
		Amount:   quantity * price,
	}
}
