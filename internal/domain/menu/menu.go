package menu

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/shopspring/decimal"
)

// AllCategories selects every item.
const AllCategories = "all"

var ErrInvalidMenu = errors.New("menu: invalid menu")

type Category struct {
	ID    string
	Title string
}

type Item struct {
	ID          string
	Name        string
	Description string
	Category    string
	Price       decimal.Decimal
	Unit        string
}

// Menu is the restaurant card. Items keep their catalog order.
type Menu struct {
	Currency   string
	Categories []Category
	Items      []Item
}

func (m Menu) Clone() Menu {
	cp := m
	cp.Categories = slices.Clone(m.Categories)
	cp.Items = slices.Clone(m.Items)
	return cp
}

// Filter returns the items of one category; empty or "all" returns everything.
// An unknown category yields an empty list.
func (m Menu) Filter(category string) []Item {
	category = strings.ToLower(strings.TrimSpace(category))
	if category == "" || category == AllCategories {
		return append([]Item(nil), m.Items...)
	}
	var out []Item
	for _, item := range m.Items {
		if strings.ToLower(item.Category) == category {
			out = append(out, item)
		}
	}
	return out
}

func (m Menu) Validate() error {
	var errs []error
	known := make(map[string]struct{}, len(m.Categories))
	for _, c := range m.Categories {
		id := strings.ToLower(c.ID)
		if id == "" || id == AllCategories {
			errs = append(errs, fmt.Errorf("category %q: reserved or empty id", c.ID))
			continue
		}
		known[id] = struct{}{}
	}
	for _, item := range m.Items {
		if strings.TrimSpace(item.Name) == "" {
			errs = append(errs, fmt.Errorf("item %q: name is required", item.ID))
		}
		if _, ok := known[strings.ToLower(item.Category)]; !ok {
			errs = append(errs, fmt.Errorf("item %q: unknown category %q", item.ID, item.Category))
		}
		if item.Price.IsNegative() {
			errs = append(errs, fmt.Errorf("item %q: price cannot be negative", item.ID))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidMenu, errors.Join(errs...))
	}
	return nil
}
