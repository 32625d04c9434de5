package stock_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Adarsh-S-Nair/zentari-sub000/stock"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestSeriesAsOf(t *testing.T) {
	assert := assert.New(t)

	series := stock.NewSeries()
	// friday, then monday: the weekend resolves to friday's close
	series.Put(day(2024, 3, 1), 100)
	series.Put(day(2024, 3, 4), 104)

	price, ok := series.AsOf(day(2024, 3, 1))
	assert.True(ok)
	assert.Equal(100.0, price)

	price, ok = series.AsOf(day(2024, 3, 3))
	assert.True(ok)
	assert.Equal(100.0, price)

	price, ok = series.AsOf(day(2024, 3, 10))
	assert.True(ok)
	assert.Equal(104.0, price)

	// before the first observation there is nothing to resolve
	_, ok = series.AsOf(day(2024, 2, 28))
	assert.False(ok)
}

func TestSeriesAt(t *testing.T) {
	assert := assert.New(t)

	series := stock.NewSeries()
	series.Put(day(2024, 3, 1), 100)

	price, ok := series.At(day(2024, 3, 1))
	assert.True(ok)
	assert.Equal(100.0, price)

	_, ok = series.At(day(2024, 3, 2))
	assert.False(ok)
}

func TestSeriesPutOverwrites(t *testing.T) {
	assert := assert.New(t)

	series := stock.NewSeries()
	series.Put(day(2024, 3, 1), 100)
	series.Put(day(2024, 3, 1), 101)

	assert.Equal(1, series.Len())
	price, _ := series.AsOf(day(2024, 3, 1))
	assert.Equal(101.0, price)
}

func TestSeriesBetweenAndClosesUpTo(t *testing.T) {
	assert := assert.New(t)

	series := stock.NewSeries()
	for i := 0; i < 10; i++ {
		series.Put(day(2024, 3, 1).AddDate(0, 0, i), 100+float64(i))
	}

	points := series.Between(day(2024, 3, 3), day(2024, 3, 5))
	assert.Len(points, 3)
	assert.Equal(102.0, points[0].Price)
	assert.Equal(104.0, points[2].Price)

	closes := series.ClosesUpTo(day(2024, 3, 10), 4)
	assert.Equal([]float64{106, 107, 108, 109}, closes)

	// fewer observations than the limit returns what exists
	closes = series.ClosesUpTo(day(2024, 3, 2), 4)
	assert.Equal([]float64{100, 101}, closes)
}

func TestSeriesFirstLast(t *testing.T) {
	assert := assert.New(t)

	series := stock.NewSeries()
	_, ok := series.First()
	assert.False(ok)

	series.Put(day(2024, 3, 1), 100)
	series.Put(day(2024, 3, 8), 108)

	first, _ := series.First()
	last, _ := series.Last()
	assert.Equal(100.0, first.Price)
	assert.Equal(108.0, last.Price)
}
