package service

import (
	"time"

	apperr "rentalcar/internal/errors"
)

const day = 24 * time.Hour

// ValidateInterval enforces the half-open rental interval [start, end).
func ValidateInterval(start, end time.Time) error {
	if !end.After(start) {
		return apperr.ErrInvalidInterval
	}
	return nil
}

// PriceCents computes the rental price: days spanned rounded up, with a
// floor of one day, times the car's daily rate. Pure; never recomputed once
// a booking is confirmed.
func PriceCents(ratePerDayCents int64, start, end time.Time) (int64, error) {
	if err := ValidateInterval(start, end); err != nil {
		return 0, err
	}
	if ratePerDayCents <= 0 {
		return 0, apperr.ErrInvalidCarState
	}

	d := end.Sub(start)
	days := int64(d / day)
	if d%day != 0 {
		days++
	}
	if days < 1 {
		days = 1
	}
	return days * ratePerDayCents, nil
}

// Overlaps is the half-open interval predicate shared with the ledger:
// [aStart, aEnd) and [bStart, bEnd) conflict iff aStart < bEnd && bStart < aEnd.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}
