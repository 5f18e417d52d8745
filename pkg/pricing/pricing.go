package pricing

import (
	"errors"
	"time"
)

// Period is a billing period a package tier can be purchased for. The names
// are part of the wire contract and round-trip as-is.
type Period string

const (
	PeriodDay   Period = "day"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
)

var (
	ErrInvalidPeriod   = errors.New("period must be day, week or month")
	ErrInvalidQuantity = errors.New("quantity must be a positive integer")
)

// Rates carries a tier's unit price per billing period.
type Rates struct {
	Day   int64
	Week  int64
	Month int64
}

var periodDays = map[Period]int{
	PeriodDay:   1,
	PeriodWeek:  7,
	PeriodMonth: 30,
}

// Valid reports whether p is a known billing period.
func Valid(p Period) bool {
	_, ok := periodDays[p]
	return ok
}

// Unit returns the price of a single period.
func (r Rates) Unit(p Period) (int64, error) {
	switch p {
	case PeriodDay:
		return r.Day, nil
	case PeriodWeek:
		return r.Week, nil
	case PeriodMonth:
		return r.Month, nil
	default:
		return 0, ErrInvalidPeriod
	}
}

// Amount computes the charge for quantity units of the given period. Pure:
// same inputs always produce the same amount, so recorded purchases can be
// replayed against frozen rates.
func Amount(r Rates, period Period, quantity int) (int64, error) {
	if quantity <= 0 {
		return 0, ErrInvalidQuantity
	}
	unit, err := r.Unit(period)
	if err != nil {
		return 0, err
	}
	return unit * int64(quantity), nil
}

// Duration maps a period and quantity to the visibility window it buys.
// A month is a flat 30 days.
func Duration(period Period, quantity int) (time.Duration, error) {
	if quantity <= 0 {
		return 0, ErrInvalidQuantity
	}
	days, ok := periodDays[period]
	if !ok {
		return 0, ErrInvalidPeriod
	}
	return time.Duration(days*quantity) * 24 * time.Hour, nil
}
