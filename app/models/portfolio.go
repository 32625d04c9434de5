package models

import (
	"sort"
	"time"

	"github.com/sirupsen/logrus"
)

// PriceSource resolves a ticker price with the as-of rule:
// the latest known price at or before the requested day.
type PriceSource interface {
	AsOf(ticker string, day time.Time) (float64, bool)
}

// Portfolio owns cash, reserved cash, signed share holdings and the trade
// collection for one simulation run. All mutation goes through its methods,
// keeping the accounting invariants in one place:
//   - available cash = cash - reserved cash, never negative before a new long
//   - a ticker appears in holdings iff it has a nonzero position
//   - at most one open trade per ticker, consistent with the holding's sign
//
// Operations fail silently (return nil and log) rather than erroring, so a
// strategy's batch of intended trades can partially execute.
type Portfolio struct {
	cash           float64
	reservedCash   float64
	holdings       map[string]float64 // signed shares, negative = short
	purchasePrices map[string]float64
	trades         map[string]*Trade
	openTrades     map[string]string // ticker -> open trade id
	borrowedShares map[string]float64
	shortProceeds  map[string]float64 // cash received at short entry
	orders         []Order
	prices         PriceSource
}

// NewPortfolio is constructor of Portfolio
func NewPortfolio(startingCash float64, prices PriceSource) *Portfolio {
	return &Portfolio{
		cash:           startingCash,
		holdings:       make(map[string]float64),
		purchasePrices: make(map[string]float64),
		trades:         make(map[string]*Trade),
		openTrades:     make(map[string]string),
		borrowedShares: make(map[string]float64),
		shortProceeds:  make(map[string]float64),
		prices:         prices,
	}
}

// Cash is the raw cash balance, short proceeds included.
func (p *Portfolio) Cash() float64 { return p.cash }

// ReservedCash is cash earmarked to cover open shorts, not spendable.
func (p *Portfolio) ReservedCash() float64 { return p.reservedCash }

// AvailableCash is what new long positions may spend.
func (p *Portfolio) AvailableCash() float64 { return p.cash - p.reservedCash }

// Position returns the signed share count held for ticker.
func (p *Portfolio) Position(ticker string) float64 { return p.holdings[ticker] }

// HasOpenPosition reports whether ticker has an open trade.
func (p *Portfolio) HasOpenPosition(ticker string) bool {
	_, ok := p.openTrades[ticker]
	return ok
}

// OpenTrade returns the open trade for ticker, nil when there is none.
func (p *Portfolio) OpenTrade(ticker string) *Trade {
	id, ok := p.openTrades[ticker]
	if !ok {
		return nil
	}
	return p.trades[id]
}

// OpenTickers returns the tickers with open positions, sorted.
func (p *Portfolio) OpenTickers() []string {
	tickers := make([]string, 0, len(p.openTrades))
	for ticker := range p.openTrades {
		tickers = append(tickers, ticker)
	}
	sort.Strings(tickers)
	return tickers
}

// OpenLong buys amount worth of ticker at the as-of price on date.
// Returns nil when amount exceeds available cash, no price resolves,
// or the ticker already has an open trade.
func (p *Portfolio) OpenLong(ticker string, amount float64, date time.Time) *Trade {
	if amount <= 0 {
		logrus.Warnf("open long %s: non-positive amount %.2f", ticker, amount)
		return nil
	}
	if _, ok := p.openTrades[ticker]; ok {
		logrus.Warnf("open long %s: position already open", ticker)
		return nil
	}
	if amount > p.AvailableCash() {
		logrus.Warnf("open long %s: amount %.2f exceeds available cash %.2f", ticker, amount, p.AvailableCash())
		return nil
	}

	price, ok := p.prices.AsOf(ticker, date)
	if !ok {
		logrus.Warnf("open long %s: no price on or before %s", ticker, date.Format("2006-01-02"))
		return nil
	}

	shares := amount / price
	p.cash -= amount
	p.holdings[ticker] += shares
	p.purchasePrices[ticker] = price

	entry := NewOrder(Buy, ticker, shares, price, date)
	p.orders = append(p.orders, entry)

	trade := NewTrade(Long, entry)
	p.trades[trade.ID] = trade
	p.openTrades[ticker] = trade.ID
	return trade
}

// CloseLong sells the whole long position in ticker at the as-of price on date.
// Returns nil when no long is open for ticker or no price resolves.
func (p *Portfolio) CloseLong(ticker string, date time.Time) *Trade {
	trade := p.openTrade(ticker, Long)
	if trade == nil {
		return nil
	}

	price, ok := p.prices.AsOf(ticker, date)
	if !ok {
		logrus.Warnf("close long %s: no price on or before %s", ticker, date.Format("2006-01-02"))
		return nil
	}

	shares := p.holdings[ticker]
	p.cash += shares * price
	delete(p.holdings, ticker)
	delete(p.purchasePrices, ticker)
	delete(p.openTrades, ticker)

	exit := NewOrder(Sell, ticker, shares, price, date)
	p.orders = append(p.orders, exit)

	if err := trade.Close(exit); err != nil {
		logrus.Warnf("close long %s: %v", ticker, err)
		return nil
	}
	return trade
}

// OpenShort sells amount worth of borrowed ticker shares at the as-of price
// on date. The sale proceeds are credited to cash but reserved in full, so
// they are not spendable while the short is open.
func (p *Portfolio) OpenShort(ticker string, amount float64, date time.Time) *Trade {
	if amount <= 0 {
		logrus.Warnf("open short %s: non-positive amount %.2f", ticker, amount)
		return nil
	}
	if _, ok := p.openTrades[ticker]; ok {
		logrus.Warnf("open short %s: position already open", ticker)
		return nil
	}

	price, ok := p.prices.AsOf(ticker, date)
	if !ok {
		logrus.Warnf("open short %s: no price on or before %s", ticker, date.Format("2006-01-02"))
		return nil
	}

	shares := amount / price
	p.cash += amount
	p.reservedCash += amount
	p.holdings[ticker] -= shares
	p.purchasePrices[ticker] = price
	p.borrowedShares[ticker] += shares
	p.shortProceeds[ticker] += amount

	entry := NewOrder(Sell, ticker, shares, price, date)
	p.orders = append(p.orders, entry)

	trade := NewTrade(Short, entry)
	p.trades[trade.ID] = trade
	p.openTrades[ticker] = trade.ID
	return trade
}

// CloseShort buys back the borrowed shares at the as-of price on date.
// Returns nil when no short is open, no price resolves, or the cover cost
// exceeds cash. Reserved cash is released by the original short proceeds,
// not the cover cost, so after a move in either direction the released
// amount can differ from the real liability; callers watching exposure
// should read both Cash and ReservedCash from the summary.
func (p *Portfolio) CloseShort(ticker string, date time.Time) *Trade {
	trade := p.openTrade(ticker, Short)
	if trade == nil {
		return nil
	}

	price, ok := p.prices.AsOf(ticker, date)
	if !ok {
		logrus.Warnf("close short %s: no price on or before %s", ticker, date.Format("2006-01-02"))
		return nil
	}

	shares := p.borrowedShares[ticker]
	cost := shares * price
	if cost > p.cash {
		logrus.Warnf("close short %s: cover cost %.2f exceeds cash %.2f", ticker, cost, p.cash)
		return nil
	}

	p.cash -= cost
	p.reservedCash -= p.shortProceeds[ticker]
	delete(p.holdings, ticker)
	delete(p.purchasePrices, ticker)
	delete(p.borrowedShares, ticker)
	delete(p.shortProceeds, ticker)
	delete(p.openTrades, ticker)

	exit := NewOrder(Buy, ticker, shares, price, date)
	p.orders = append(p.orders, exit)

	if err := trade.Close(exit); err != nil {
		logrus.Warnf("close short %s: %v", ticker, err)
		return nil
	}
	return trade
}

// CloseAll liquidates every open position at the as-of prices on date,
// returning the trades it managed to close.
func (p *Portfolio) CloseAll(date time.Time) []*Trade {
	var closed []*Trade
	for _, ticker := range p.OpenTickers() {
		var trade *Trade
		if p.holdings[ticker] < 0 {
			trade = p.CloseShort(ticker, date)
		} else {
			trade = p.CloseLong(ticker, date)
		}
		if trade != nil {
			closed = append(closed, trade)
		}
	}
	return closed
}

// ValueOn is cash plus the signed market value of every holding on date.
// A ticker whose price cannot be resolved is skipped, not fatal.
func (p *Portfolio) ValueOn(date time.Time) float64 {
	value := p.cash
	for ticker, shares := range p.holdings {
		price, ok := p.prices.AsOf(ticker, date)
		if !ok {
			logrus.Warnf("value on %s: no price for %s, skipped", date.Format("2006-01-02"), ticker)
			continue
		}
		value += shares * price
	}
	return value
}

// Trades returns every trade recorded, ordered by entry date then id.
func (p *Portfolio) Trades() []*Trade {
	trades := make([]*Trade, 0, len(p.trades))
	for _, trade := range p.trades {
		trades = append(trades, trade)
	}
	sort.Slice(trades, func(i, j int) bool {
		if trades[i].Entry.Date.Equal(trades[j].Entry.Date) {
			return trades[i].ID < trades[j].ID
		}
		return trades[i].Entry.Date.Before(trades[j].Entry.Date)
	})
	return trades
}

// Orders returns every order executed, in execution order.
func (p *Portfolio) Orders() []Order {
	orders := make([]Order, len(p.orders))
	copy(orders, p.orders)
	return orders
}

func (p *Portfolio) openTrade(ticker string, position PositionType) *Trade {
	id, ok := p.openTrades[ticker]
	if !ok {
		logrus.Warnf("close %s %s: no open position", position, ticker)
		return nil
	}
	trade := p.trades[id]
	if trade.Position != position {
		logrus.Warnf("close %s %s: open position is %s", position, ticker, trade.Position)
		return nil
	}
	return trade
}

// PositionSummary is one holding inside a PortfolioSummary
type PositionSummary struct {
	Shares     float64 `json:"shares"`
	EntryPrice float64 `json:"entry_price"`
	Price      float64 `json:"price"`
	Value      float64 `json:"value"`
}

// PortfolioSummary is a structured snapshot used for external reporting
type PortfolioSummary struct {
	Date          time.Time                  `json:"date"`
	Cash          float64                    `json:"cash"`
	ReservedCash  float64                    `json:"reserved_cash"`
	AvailableCash float64                    `json:"available_cash"`
	Longs         map[string]PositionSummary `json:"longs"`
	Shorts        map[string]PositionSummary `json:"shorts"`
	TotalValue    float64                    `json:"total_value"`
}

// Summary assembles a reporting snapshot of the ledger as of date.
func (p *Portfolio) Summary(date time.Time) *PortfolioSummary {
	summary := &PortfolioSummary{
		Date:          date,
		Cash:          p.cash,
		ReservedCash:  p.reservedCash,
		AvailableCash: p.AvailableCash(),
		Longs:         make(map[string]PositionSummary),
		Shorts:        make(map[string]PositionSummary),
		TotalValue:    p.ValueOn(date),
	}

	for ticker, shares := range p.holdings {
		price, _ := p.prices.AsOf(ticker, date)
		position := PositionSummary{
			Shares:     shares,
			EntryPrice: p.purchasePrices[ticker],
			Price:      price,
			Value:      shares * price,
		}
		if shares < 0 {
			summary.Shorts[ticker] = position
		} else {
			summary.Longs[ticker] = position
		}
	}
	return summary
}
