package stock

import (
	"time"

	"github.com/google/btree"
)

const dayFormat = "2006-01-02"

// PricePoint is one daily observation of an adjusted closing price.
type PricePoint struct {
	Day   time.Time
	Price float64
}

// Less orders points by date so a btree can hold them.
func (p PricePoint) Less(than btree.Item) bool {
	return p.Day.Before(than.(PricePoint).Day)
}

// Series is a date-indexed series of daily prices for one ticker.
// Lookups follow the as-of rule: the latest observation at or before
// the requested day, which absorbs weekends and market holidays.
type Series struct {
	tree *btree.BTree
}

// NewSeries returns a new, empty, Series
func NewSeries() *Series {
	return &Series{tree: btree.New(8)}
}

// Day truncates t to midnight UTC, so observations coming from
// different sources index identically.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Put records the price observed on day, overwriting any previous
// observation for the same day.
func (s *Series) Put(day time.Time, price float64) {
	s.tree.ReplaceOrInsert(PricePoint{Day: Day(day), Price: price})
}

// Len is the number of observations held.
func (s *Series) Len() int {
	return s.tree.Len()
}

// AsOf returns the latest known price at or before day,
// or false when no observation exists at or before it.
func (s *Series) AsOf(day time.Time) (float64, bool) {
	var found *PricePoint
	s.tree.DescendLessOrEqual(PricePoint{Day: Day(day)}, func(item btree.Item) bool {
		p := item.(PricePoint)
		found = &p
		return false
	})
	if found == nil {
		return 0, false
	}
	return found.Price, true
}

// At returns the price observed exactly on day.
func (s *Series) At(day time.Time) (float64, bool) {
	item := s.tree.Get(PricePoint{Day: Day(day)})
	if item == nil {
		return 0, false
	}
	return item.(PricePoint).Price, true
}

// Between returns the observations within [from, to] in ascending date order.
func (s *Series) Between(from, to time.Time) []PricePoint {
	var points []PricePoint
	s.tree.AscendRange(
		PricePoint{Day: Day(from)},
		PricePoint{Day: Day(to).AddDate(0, 0, 1)},
		func(item btree.Item) bool {
			points = append(points, item.(PricePoint))
			return true
		})
	return points
}

// ClosesUpTo returns at most limit closing prices at or before day,
// in ascending date order. Used by strategies needing a trailing window.
func (s *Series) ClosesUpTo(day time.Time, limit int) []float64 {
	var rev []float64
	s.tree.DescendLessOrEqual(PricePoint{Day: Day(day)}, func(item btree.Item) bool {
		rev = append(rev, item.(PricePoint).Price)
		return len(rev) < limit
	})
	closes := make([]float64, len(rev))
	for i, v := range rev {
		closes[len(rev)-1-i] = v
	}
	return closes
}

// First returns the earliest observation.
func (s *Series) First() (PricePoint, bool) {
	item := s.tree.Min()
	if item == nil {
		return PricePoint{}, false
	}
	return item.(PricePoint), true
}

// Last returns the most recent observation.
func (s *Series) Last() (PricePoint, bool) {
	item := s.tree.Max()
	if item == nil {
		return PricePoint{}, false
	}
	return item.(PricePoint), true
}
