package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"

	domainmenu "venue/internal/domain/menu"
	domainpricing "venue/internal/domain/pricing"
)

var ErrInvalidCatalog = errors.New("catalog: invalid document")

// Catalog is the price list and menu the site is served from. It is loaded
// once and never mutated.
type Catalog struct {
	Pricing domainpricing.Config
	Menu    domainmenu.Menu
}

type document struct {
	Pricing pricingDoc `json:"pricing"`
	Menu    menuDoc    `json:"menu"`
}

type pricingDoc struct {
	Currency         string          `json:"currency"`
	BaseNightlyRate  decimal.Decimal `json:"base_nightly_rate"`
	WeekendSurcharge decimal.Decimal `json:"weekend_surcharge"`
	ExtraGuestRate   decimal.Decimal `json:"extra_guest_rate"`
	MinNights        int             `json:"min_nights"`
	Seasons          []seasonDoc     `json:"seasons"`
	Extras           []extraDoc      `json:"extras"`
}

type seasonDoc struct {
	Name       string          `json:"name"`
	Months     []int           `json:"months"`
	Multiplier decimal.Decimal `json:"multiplier"`
}

type extraDoc struct {
	ID     string          `json:"id"`
	Label  string          `json:"label"`
	Mode   string          `json:"mode"`
	Amount decimal.Decimal `json:"amount"`
}

type menuDoc struct {
	Currency   string        `json:"currency"`
	Categories []categoryDoc `json:"categories"`
	Items      []itemDoc     `json:"items"`
}

type categoryDoc struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

type itemDoc struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Price       decimal.Decimal `json:"price"`
	Unit        string          `json:"unit"`
}

// Decode reads and validates a catalog document. Unknown fields are rejected.
func Decode(r io.Reader) (*Catalog, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	var doc document
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCatalog, err)
	}
	c := &Catalog{
		Pricing: doc.Pricing.config(),
		Menu:    doc.Menu.menu(),
	}
	if err := c.Pricing.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCatalog, err)
	}
	if err := c.Menu.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCatalog, err)
	}
	return c, nil
}

// DecodeBytes is Decode over an in-memory document.
func DecodeBytes(data []byte) (*Catalog, error) {
	return Decode(bytes.NewReader(data))
}

func (d pricingDoc) config() domainpricing.Config {
	cfg := domainpricing.Config{
		Currency:         d.Currency,
		BaseNightlyRate:  d.BaseNightlyRate,
		WeekendSurcharge: d.WeekendSurcharge,
		ExtraGuestRate:   d.ExtraGuestRate,
		MinNights:        d.MinNights,
	}
	for _, s := range d.Seasons {
		months := make([]time.Month, 0, len(s.Months))
		for _, m := range s.Months {
			months = append(months, time.Month(m))
		}
		cfg.Seasons = append(cfg.Seasons, domainpricing.Season{Name: s.Name, Months: months, Multiplier: s.Multiplier})
	}
	for _, e := range d.Extras {
		cfg.Extras = append(cfg.Extras, domainpricing.Extra{
			ID:     e.ID,
			Label:  e.Label,
			Mode:   domainpricing.Mode(e.Mode),
			Amount: e.Amount,
		})
	}
	return cfg
}

func (d menuDoc) menu() domainmenu.Menu {
	m := domainmenu.Menu{Currency: d.Currency}
	for _, c := range d.Categories {
		m.Categories = append(m.Categories, domainmenu.Category{ID: c.ID, Title: c.Title})
	}
	for _, item := range d.Items {
		m.Items = append(m.Items, domainmenu.Item{
			ID:          item.ID,
			Name:        item.Name,
			Description: item.Description,
			Category:    item.Category,
			Price:       item.Price,
			Unit:        item.Unit,
		})
	}
	return m
}
