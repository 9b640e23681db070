package quotes

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"venue/internal/app/dto"
	"venue/internal/app/policies"
	"venue/internal/app/queries"
	domainpricing "venue/internal/domain/pricing"
)

const calculateQuoteKey = "quotes.calculate"

type CalculateQuoteQuery struct {
	CheckIn  time.Time  `json:"checkin"`
	CheckOut time.Time  `json:"checkout"`
	Guests   int        `json:"guests" validate:"lte=100"`
	Extras   []string   `json:"extras" validate:"max=32,dive,max=64"`
	Locale   dto.Locale `json:"-"`
}

func (q CalculateQuoteQuery) Key() string { return calculateQuoteKey }

// NewCalculateQuoteQuery wraps a parsed form in a query.
func NewCalculateQuoteQuery(req domainpricing.QuoteRequest, locale dto.Locale) CalculateQuoteQuery {
	return CalculateQuoteQuery{
		CheckIn:  req.CheckIn,
		CheckOut: req.CheckOut,
		Guests:   req.Guests,
		Extras:   req.Extras,
		Locale:   locale,
	}
}

func (q CalculateQuoteQuery) request() domainpricing.QuoteRequest {
	return domainpricing.QuoteRequest{CheckIn: q.CheckIn, CheckOut: q.CheckOut, Guests: q.Guests, Extras: q.Extras}
}

// QuoteRecorder observes quote outcomes.
type QuoteRecorder interface {
	QuoteComputed(q domainpricing.Quote)
	QuoteRejected(kind domainpricing.ErrorKind)
}

type CalculateQuoteHandler struct {
	Pricing policies.PricingPort
	Metrics QuoteRecorder
	Logger  *slog.Logger
}

func (h *CalculateQuoteHandler) Handle(ctx context.Context, q CalculateQuoteQuery) (dto.QuoteView, error) {
	quote, err := h.Pricing.Quote(ctx, q.request())
	if err != nil {
		var qerr *domainpricing.QuoteError
		if errors.As(err, &qerr) {
			if h.Metrics != nil {
				h.Metrics.QuoteRejected(qerr.Kind)
			}
			h.logger().DebugContext(ctx, "quote rejected", "kind", qerr.Kind)
		}
		return dto.QuoteView{}, err
	}
	if h.Metrics != nil {
		h.Metrics.QuoteComputed(quote)
	}
	return dto.NewQuoteView(quote, q.Locale), nil
}

func (h *CalculateQuoteHandler) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

var _ queries.Handler[CalculateQuoteQuery, dto.QuoteView] = (*CalculateQuoteHandler)(nil)
