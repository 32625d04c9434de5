package stock

import (
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// Membership is one ticker's membership window in an index.
// A zero Removed time means the ticker is still a member.
type Membership struct {
	Ticker  string
	Added   time.Time
	Removed time.Time
}

// UniverseProvider reports historical index composition,
// so a multi-year backtest sees tickers enter and leave over time.
type UniverseProvider interface {
	TickersAsOf(day time.Time) []string
}

// StaticUniverse serves membership from an in-memory window list.
type StaticUniverse struct {
	members []Membership
}

// NewStaticUniverse is constructor of StaticUniverse
func NewStaticUniverse(members []Membership) *StaticUniverse {
	return &StaticUniverse{members: members}
}

// TickersAsOf returns the sorted set of tickers that were index members on day.
func (u *StaticUniverse) TickersAsOf(day time.Time) []string {
	day = Day(day)
	var tickers []string
	for _, m := range u.members {
		if day.Before(Day(m.Added)) {
			continue
		}
		if !m.Removed.IsZero() && !day.Before(Day(m.Removed)) {
			continue
		}
		tickers = append(tickers, m.Ticker)
	}
	sort.Strings(tickers)
	return tickers
}

// UniverseFromCSV loads membership windows from a csv file with rows of
// "ticker,added,removed", removed may be empty.
func UniverseFromCSV(path string) (*StaticUniverse, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("universe file open error: %w", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("universe file read error: %w", err)
	}

	var members []Membership
	for i, row := range rows {
		if len(row) < 2 {
			return nil, fmt.Errorf("universe row %d: want ticker,added[,removed]", i+1)
		}

		added, err := dateparse.ParseAny(strings.TrimSpace(row[1]))
		if err != nil {
			return nil, fmt.Errorf("universe row %d: bad added date: %w", i+1, err)
		}

		m := Membership{Ticker: strings.ToUpper(strings.TrimSpace(row[0])), Added: added}
		if len(row) > 2 && strings.TrimSpace(row[2]) != "" {
			removed, err := dateparse.ParseAny(strings.TrimSpace(row[2]))
			if err != nil {
				return nil, fmt.Errorf("universe row %d: bad removed date: %w", i+1, err)
			}
			m.Removed = removed
		}
		members = append(members, m)
	}

	return NewStaticUniverse(members), nil
}

// DefaultUniverse is a small builtin sample of long-lived large caps,
// used when no membership file is configured.
func DefaultUniverse() *StaticUniverse {
	added := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	var members []Membership
	for _, ticker := range []string{
		"AAPL", "MSFT", "AMZN", "GOOGL", "JPM", "JNJ", "XOM", "PG", "KO", "PEP",
		"WMT", "HD", "MCD", "IBM", "CSCO", "INTC", "VZ", "T", "MRK", "PFE",
	} {
		members = append(members, Membership{Ticker: ticker, Added: added})
	}
	return NewStaticUniverse(members)
}
