package inventory

import (
	"time"

	"github.com/lodgeworks/booking-saga/internal/pkg/errs"
)

// Nights expands a half-open [checkIn, checkOut) stay into the set of
// nightly dates it covers, in ascending order. checkOut is exclusive: a
// stay from day 1 to day 3 covers nights 1 and 2 only.
func Nights(checkIn, checkOut time.Time) ([]time.Time, error) {
	checkIn = truncateToDay(checkIn)
	checkOut = truncateToDay(checkOut)

	if !checkIn.Before(checkOut) {
		return nil, errs.ErrInvalidDateRange
	}

	var nights []time.Time
	for d := checkIn; d.Before(checkOut); d = d.AddDate(0, 0, 1) {
		nights = append(nights, d)
	}
	return nights, nil
}

func truncateToDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
