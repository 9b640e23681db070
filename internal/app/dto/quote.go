package dto

import (
	"fmt"

	"github.com/shopspring/decimal"

	domainpricing "venue/internal/domain/pricing"
)

type ExtraLineView struct {
	ID     string          `json:"id"`
	Label  string          `json:"label"`
	Mode   string          `json:"mode"`
	Amount decimal.Decimal `json:"amount"`
	Guests int             `json:"guests,omitempty"`
	Nights int             `json:"nights,omitempty"`
	Text   string          `json:"text"`
}

// QuoteView is the rendered price breakdown returned to the booking form.
type QuoteView struct {
	Currency                    string          `json:"currency"`
	Nights                      int             `json:"nights"`
	TotalNightlyRate            decimal.Decimal `json:"total_nightly_rate"`
	AverageNightlyRate          int64           `json:"average_nightly_rate"`
	AverageNightlyRateFormatted string          `json:"average_nightly_rate_formatted"`
	ExtraGuestCharge            decimal.Decimal `json:"extra_guest_charge"`
	Extras                      []ExtraLineView `json:"extras"`
	ExtrasTotal                 decimal.Decimal `json:"extras_total"`
	Total                       int64           `json:"total"`
	TotalFormatted              string          `json:"total_formatted"`
	Lines                       []string        `json:"lines"`
}

type QuoteErrorView struct {
	Kind      string `json:"kind"`
	MinNights int    `json:"min_nights,omitempty"`
	Message   string `json:"message"`
}

func NewQuoteView(q domainpricing.Quote, locale Locale) QuoteView {
	view := QuoteView{
		Currency:                    q.Currency,
		Nights:                      q.Nights,
		TotalNightlyRate:            q.TotalNightlyRate,
		AverageNightlyRate:          q.AverageNightlyRate,
		AverageNightlyRateFormatted: FormatMoney(decimal.NewFromInt(q.AverageNightlyRate), q.Currency),
		ExtraGuestCharge:            q.ExtraGuestCharge,
		Extras:                      make([]ExtraLineView, 0, len(q.Extras)),
		ExtrasTotal:                 q.ExtrasTotal,
		Total:                       q.Total,
		TotalFormatted:              FormatMoney(decimal.NewFromInt(q.Total), q.Currency),
		Lines:                       []string{},
	}
	if q.ExtraGuestCharge.IsPositive() {
		view.Lines = append(view.Lines, fmt.Sprintf("+ %s: %s",
			locale.text(msgExtraGuests), FormatMoney(q.ExtraGuestCharge, q.Currency)))
	}
	for _, line := range q.Extras {
		text := extraLineText(line, q.Currency, locale)
		view.Extras = append(view.Extras, ExtraLineView{
			ID:     line.ID,
			Label:  line.Label,
			Mode:   string(line.Mode),
			Amount: line.Amount,
			Guests: line.Guests,
			Nights: line.Nights,
			Text:   text,
		})
		view.Lines = append(view.Lines, "+ "+text)
	}
	return view
}

func extraLineText(line domainpricing.ExtraLine, currency string, locale Locale) string {
	price := FormatMoney(line.Amount, currency)
	switch line.Mode {
	case domainpricing.ModePerDay:
		return fmt.Sprintf("%s: %s (%d %s)", line.Label, price, line.Nights, locale.text(msgNights))
	case domainpricing.ModePerPerson:
		return fmt.Sprintf("%s: %s (%d %s × %d %s)", line.Label, price,
			line.Guests, locale.text(msgPersons), line.Nights, locale.text(msgNights))
	default:
		return fmt.Sprintf("%s: %s", line.Label, price)
	}
}

func NewQuoteErrorView(err *domainpricing.QuoteError, locale Locale) QuoteErrorView {
	view := QuoteErrorView{Kind: string(err.Kind), Message: QuoteErrorMessage(err, locale)}
	if err.Kind == domainpricing.KindBelowMinimumStay {
		view.MinNights = err.MinNights
	}
	return view
}

// StayBoundsView constrains the date pickers of the booking form.
type StayBoundsView struct {
	MinCheckIn    string `json:"min_check_in"`
	MinCheckOut   string `json:"min_check_out,omitempty"`
	ClearCheckOut bool   `json:"clear_check_out"`
}
