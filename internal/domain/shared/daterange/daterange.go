package daterange

import (
	"errors"
	"time"
)

const day = 24 * time.Hour

var (
	ErrMissingBound = errors.New("daterange: checkin and checkout are required")
	ErrInvalidRange = errors.New("daterange: checkout must be after checkin")
)

// DateRange represents a half-open interval [checkIn, checkOut)
type DateRange struct {
	CheckIn  time.Time
	CheckOut time.Time
}

// New reduces both bounds to their calendar day, so time of day and zone
// offsets never change the night count.
func New(checkIn, checkOut time.Time) (DateRange, error) {
	if checkIn.IsZero() || checkOut.IsZero() {
		return DateRange{}, ErrMissingBound
	}
	dr := DateRange{CheckIn: Date(checkIn), CheckOut: Date(checkOut)}
	if err := dr.Validate(); err != nil {
		return DateRange{}, err
	}
	return dr, nil
}

func (dr DateRange) Validate() error {
	if dr.CheckIn.IsZero() || dr.CheckOut.IsZero() {
		return ErrMissingBound
	}
	if !dr.CheckOut.After(dr.CheckIn) {
		return ErrInvalidRange
	}
	return nil
}

// Nights counts started days between the bounds, so a partial day is billed as a night.
func (dr DateRange) Nights() int {
	span := dr.CheckOut.Sub(dr.CheckIn)
	if span <= 0 {
		return 0
	}
	nights := int(span / day)
	if span%day != 0 {
		nights++
	}
	return nights
}

// Night returns the calendar day the i-th night starts on.
func (dr DateRange) Night(i int) time.Time {
	return dr.CheckIn.AddDate(0, 0, i)
}

// Date returns midnight UTC of the calendar day t falls on in its own location.
func Date(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
