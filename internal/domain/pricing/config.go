package pricing

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Mode describes how an extra is charged.
type Mode string

const (
	ModeFlat      Mode = "flat"
	ModePerDay    Mode = "per_day"
	ModePerPerson Mode = "per_person"
)

func (m Mode) Valid() bool {
	switch m {
	case ModeFlat, ModePerDay, ModePerPerson:
		return true
	default:
		return false
	}
}

// IncludedGuests is the number of guests covered by the base nightly rate.
const IncludedGuests = 2

var ErrInvalidConfig = errors.New("pricing: invalid config")

// Season groups calendar months sharing one nightly-rate multiplier.
type Season struct {
	Name       string
	Months     []time.Month
	Multiplier decimal.Decimal
}

func (s Season) Covers(month time.Month) bool {
	for _, m := range s.Months {
		if m == month {
			return true
		}
	}
	return false
}

// Extra is an optional add-on from the catalog.
type Extra struct {
	ID     string
	Label  string
	Mode   Mode
	Amount decimal.Decimal
}

// Config is the immutable price list a quote is computed against.
// Seasons and Extras are ordered: season lookup is first-match and the
// extras breakdown follows catalog order.
type Config struct {
	Currency         string
	BaseNightlyRate  decimal.Decimal
	WeekendSurcharge decimal.Decimal
	ExtraGuestRate   decimal.Decimal
	Seasons          []Season
	Extras           []Extra
	MinNights        int
}

// Multiplier returns the multiplier of the first season covering month, or 1.
func (c Config) Multiplier(month time.Month) decimal.Decimal {
	for _, s := range c.Seasons {
		if s.Covers(month) {
			return s.Multiplier
		}
	}
	return decimal.NewFromInt(1)
}

// Clone returns a copy that shares no slices with c.
func (c Config) Clone() Config {
	cp := c
	cp.Extras = slices.Clone(c.Extras)
	if c.Seasons != nil {
		cp.Seasons = make([]Season, len(c.Seasons))
		for i, s := range c.Seasons {
			s.Months = slices.Clone(s.Months)
			cp.Seasons[i] = s
		}
	}
	return cp
}

// Validate checks the catalog is usable. Seasons may overlap or leave months
// uncovered; Multiplier resolves both.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Currency) == "" {
		errs = append(errs, errors.New("currency is required"))
	}
	if !c.BaseNightlyRate.IsPositive() {
		errs = append(errs, errors.New("base nightly rate must be positive"))
	}
	if c.WeekendSurcharge.IsNegative() {
		errs = append(errs, errors.New("weekend surcharge cannot be negative"))
	}
	if c.ExtraGuestRate.IsNegative() {
		errs = append(errs, errors.New("extra guest rate cannot be negative"))
	}
	if c.MinNights < 1 {
		errs = append(errs, errors.New("min nights must be at least 1"))
	}
	for _, s := range c.Seasons {
		if !s.Multiplier.IsPositive() {
			errs = append(errs, fmt.Errorf("season %q: multiplier must be positive", s.Name))
		}
		for _, m := range s.Months {
			if m < time.January || m > time.December {
				errs = append(errs, fmt.Errorf("season %q: month %d out of range", s.Name, m))
			}
		}
	}
	seen := make(map[string]struct{}, len(c.Extras))
	for _, e := range c.Extras {
		if e.ID == "" {
			errs = append(errs, errors.New("extra id is required"))
			continue
		}
		if _, dup := seen[e.ID]; dup {
			errs = append(errs, fmt.Errorf("extra %q: duplicate id", e.ID))
		}
		seen[e.ID] = struct{}{}
		if e.ID != strings.ToLower(e.ID) {
			errs = append(errs, fmt.Errorf("extra %q: id must be lower case", e.ID))
		}
		if !e.Mode.Valid() {
			errs = append(errs, fmt.Errorf("extra %q: unknown mode %q", e.ID, e.Mode))
		}
		if e.Amount.IsNegative() {
			errs = append(errs, fmt.Errorf("extra %q: amount cannot be negative", e.ID))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}
