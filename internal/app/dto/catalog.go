package dto

import (
	"github.com/shopspring/decimal"

	domainmenu "venue/internal/domain/menu"
	domainpricing "venue/internal/domain/pricing"
)

type SeasonView struct {
	Name       string          `json:"name"`
	Months     []int           `json:"months"`
	Multiplier decimal.Decimal `json:"multiplier"`
}

type ExtraView struct {
	ID        string          `json:"id"`
	Label     string          `json:"label"`
	Mode      string          `json:"mode"`
	Amount    decimal.Decimal `json:"amount"`
	Formatted string          `json:"formatted"`
}

// PricingCatalogView is the public price list the booking form is drawn from.
type PricingCatalogView struct {
	Currency         string          `json:"currency"`
	BaseNightlyRate  decimal.Decimal `json:"base_nightly_rate"`
	WeekendSurcharge decimal.Decimal `json:"weekend_surcharge"`
	ExtraGuestRate   decimal.Decimal `json:"extra_guest_rate"`
	IncludedGuests   int             `json:"included_guests"`
	MinNights        int             `json:"min_nights"`
	Seasons          []SeasonView    `json:"seasons"`
	Extras           []ExtraView     `json:"extras"`
}

func NewPricingCatalogView(cfg domainpricing.Config) PricingCatalogView {
	view := PricingCatalogView{
		Currency:         cfg.Currency,
		BaseNightlyRate:  cfg.BaseNightlyRate,
		WeekendSurcharge: cfg.WeekendSurcharge,
		ExtraGuestRate:   cfg.ExtraGuestRate,
		IncludedGuests:   domainpricing.IncludedGuests,
		MinNights:        cfg.MinNights,
		Seasons:          make([]SeasonView, 0, len(cfg.Seasons)),
		Extras:           make([]ExtraView, 0, len(cfg.Extras)),
	}
	for _, s := range cfg.Seasons {
		months := make([]int, 0, len(s.Months))
		for _, m := range s.Months {
			months = append(months, int(m))
		}
		view.Seasons = append(view.Seasons, SeasonView{Name: s.Name, Months: months, Multiplier: s.Multiplier})
	}
	for _, e := range cfg.Extras {
		view.Extras = append(view.Extras, ExtraView{
			ID:        e.ID,
			Label:     e.Label,
			Mode:      string(e.Mode),
			Amount:    e.Amount,
			Formatted: FormatMoney(e.Amount, cfg.Currency),
		})
	}
	return view
}

type MenuCategoryView struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

type MenuItemView struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Description    string          `json:"description,omitempty"`
	Category       string          `json:"category"`
	Price          decimal.Decimal `json:"price"`
	PriceFormatted string          `json:"price_formatted"`
	Unit           string          `json:"unit,omitempty"`
}

type MenuView struct {
	Category   string             `json:"category"`
	Categories []MenuCategoryView `json:"categories"`
	Items      []MenuItemView     `json:"items"`
}

func NewMenuView(m domainmenu.Menu, category string, items []domainmenu.Item) MenuView {
	view := MenuView{
		Category:   category,
		Categories: make([]MenuCategoryView, 0, len(m.Categories)),
		Items:      make([]MenuItemView, 0, len(items)),
	}
	for _, c := range m.Categories {
		view.Categories = append(view.Categories, MenuCategoryView{ID: c.ID, Title: c.Title})
	}
	for _, item := range items {
		view.Items = append(view.Items, MenuItemView{
			ID:             item.ID,
			Name:           item.Name,
			Description:    item.Description,
			Category:       item.Category,
			Price:          item.Price,
			PriceFormatted: FormatMoney(item.Price, m.Currency),
			Unit:           item.Unit,
		})
	}
	return view
}

type SubmitInquiryView struct {
	InquiryID string `json:"inquiry_id"`
	Message   string `json:"message"`
}
