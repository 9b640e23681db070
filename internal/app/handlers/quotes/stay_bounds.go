package quotes

import (
	"context"
	"time"

	"venue/internal/app/dto"
	"venue/internal/app/policies"
	"venue/internal/app/queries"
	"venue/internal/domain/shared/daterange"
)

const stayBoundsKey = "quotes.stay_bounds"

// StayBoundsQuery asks for the earliest selectable dates given the current picks.
type StayBoundsQuery struct {
	CheckIn  time.Time
	CheckOut time.Time
}

func (q StayBoundsQuery) Key() string { return stayBoundsKey }

type StayBoundsHandler struct {
	Pricing policies.PricingPort
	Now     func() time.Time
}

// Handle returns today as the earliest check-in and the check-in plus the
// minimum stay as the earliest check-out. A check-out before that bound is
// flagged for clearing.
func (h *StayBoundsHandler) Handle(ctx context.Context, q StayBoundsQuery) (dto.StayBoundsView, error) {
	now := time.Now
	if h.Now != nil {
		now = h.Now
	}
	cfg, err := h.Pricing.Catalog(ctx)
	if err != nil {
		return dto.StayBoundsView{}, err
	}
	minNights := cfg.MinNights
	if minNights < 1 {
		minNights = 1
	}

	today := daterange.Date(now().UTC())
	from := today
	if !q.CheckIn.IsZero() {
		from = daterange.Date(q.CheckIn)
	}
	minCheckOut := from.AddDate(0, 0, minNights)

	return dto.StayBoundsView{
		MinCheckIn:    today.Format(dateLayout),
		MinCheckOut:   minCheckOut.Format(dateLayout),
		ClearCheckOut: !q.CheckOut.IsZero() && daterange.Date(q.CheckOut).Before(minCheckOut),
	}, nil
}

var _ queries.Handler[StayBoundsQuery, dto.StayBoundsView] = (*StayBoundsHandler)(nil)
