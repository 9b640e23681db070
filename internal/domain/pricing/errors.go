package pricing

import "fmt"

// ErrorKind classifies why a quote could not be produced.
type ErrorKind string

const (
	KindMissingDates     ErrorKind = "missing_dates"
	KindInvalidRange     ErrorKind = "invalid_range"
	KindBelowMinimumStay ErrorKind = "below_minimum_stay"
)

// QuoteError is a user-correctable input problem. It carries no partial quote.
type QuoteError struct {
	Kind      ErrorKind
	MinNights int
}

var (
	ErrMissingDates     = &QuoteError{Kind: KindMissingDates}
	ErrInvalidRange     = &QuoteError{Kind: KindInvalidRange}
	ErrBelowMinimumStay = &QuoteError{Kind: KindBelowMinimumStay}
)

func (e *QuoteError) Error() string {
	switch e.Kind {
	case KindMissingDates:
		return "pricing: checkin and checkout dates are required"
	case KindInvalidRange:
		return "pricing: checkout must be after checkin"
	case KindBelowMinimumStay:
		return fmt.Sprintf("pricing: stay is shorter than the minimum of %d nights", e.MinNights)
	default:
		return "pricing: " + string(e.Kind)
	}
}

// Is matches on Kind so errors.Is(err, ErrBelowMinimumStay) holds whatever MinNights is.
func (e *QuoteError) Is(target error) bool {
	t, ok := target.(*QuoteError)
	return ok && t.Kind == e.Kind
}
