package pricing

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"venue/internal/domain/shared/daterange"
)

// QuoteRequest is built fresh from the booking form for every calculation.
// A zero CheckIn or CheckOut means the date was missing or unparseable.
type QuoteRequest struct {
	CheckIn  time.Time
	CheckOut time.Time
	Guests   int
	Extras   []string
}

// ExtraLine is one priced add-on. Guests and Nights are the factors the amount was built from.
type ExtraLine struct {
	ID     string
	Label  string
	Mode   Mode
	Amount decimal.Decimal
	Guests int
	Nights int
}

type Quote struct {
	Currency           string
	Nights             int
	TotalNightlyRate   decimal.Decimal
	AverageNightlyRate int64
	ExtraGuestCharge   decimal.Decimal
	Extras             []ExtraLine
	ExtrasTotal        decimal.Decimal
	Subtotal           decimal.Decimal
	Total              int64
}

// ComputeQuote prices a stay against cfg. It has no side effects; the only
// errors it returns are *QuoteError values.
func ComputeQuote(req QuoteRequest, cfg Config) (Quote, error) {
	stay, err := daterange.New(req.CheckIn, req.CheckOut)
	if err != nil {
		if errors.Is(err, daterange.ErrMissingBound) {
			return Quote{}, ErrMissingDates
		}
		return Quote{}, ErrInvalidRange
	}
	nights := stay.Nights()
	if nights < cfg.MinNights {
		return Quote{}, &QuoteError{Kind: KindBelowMinimumStay, MinNights: cfg.MinNights}
	}

	totalNightly := decimal.Zero
	for i := 0; i < nights; i++ {
		totalNightly = totalNightly.Add(cfg.NightRate(stay.Night(i)))
	}

	guests := req.Guests
	if guests < 1 {
		guests = 1
	}
	extraGuestCharge := decimal.Zero
	if guests > IncludedGuests {
		extraGuestCharge = cfg.ExtraGuestRate.
			Mul(decimal.NewFromInt(int64(guests - IncludedGuests))).
			Mul(decimal.NewFromInt(int64(nights)))
	}

	lines := extraLines(cfg, req.Extras, guests, nights)
	extrasTotal := decimal.Zero
	for _, l := range lines {
		extrasTotal = extrasTotal.Add(l.Amount)
	}

	subtotal := totalNightly.Add(extraGuestCharge).Add(extrasTotal)
	return Quote{
		Currency:           cfg.Currency,
		Nights:             nights,
		TotalNightlyRate:   totalNightly,
		AverageNightlyRate: roundInt(totalNightly.Div(decimal.NewFromInt(int64(nights)))),
		ExtraGuestCharge:   extraGuestCharge,
		Extras:             lines,
		ExtrasTotal:        extrasTotal,
		Subtotal:           subtotal,
		Total:              roundInt(subtotal),
	}, nil
}

// NightRate prices a single night starting on the given day.
func (c Config) NightRate(night time.Time) decimal.Decimal {
	rate := c.BaseNightlyRate.Mul(c.Multiplier(night.Month()))
	if isWeekendNight(night.Weekday()) {
		rate = rate.Add(c.WeekendSurcharge)
	}
	return rate
}

// Friday and Saturday nights carry the surcharge; Sunday does not.
func isWeekendNight(d time.Weekday) bool {
	return d == time.Friday || d == time.Saturday
}

func extraLines(cfg Config, selected []string, guests, nights int) []ExtraLine {
	if len(selected) == 0 {
		return nil
	}
	want := make(map[string]struct{}, len(selected))
	for _, id := range selected {
		want[id] = struct{}{}
	}
	var lines []ExtraLine
	for _, extra := range cfg.Extras {
		if _, ok := want[extra.ID]; !ok {
			continue
		}
		line := ExtraLine{ID: extra.ID, Label: extra.Label, Mode: extra.Mode}
		switch extra.Mode {
		case ModePerDay:
			line.Nights = nights
			line.Amount = extra.Amount.Mul(decimal.NewFromInt(int64(nights)))
		case ModePerPerson:
			line.Guests = guests
			line.Nights = nights
			line.Amount = extra.Amount.Mul(decimal.NewFromInt(int64(guests * nights)))
		default:
			line.Amount = extra.Amount
		}
		lines = append(lines, line)
	}
	return lines
}

// roundInt rounds half away from zero.
func roundInt(d decimal.Decimal) int64 {
	return d.Round(0).IntPart()
}
