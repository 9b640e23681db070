package memory

import (
	"context"

	"venue/internal/app/policies"
	domainmenu "venue/internal/domain/menu"
	domainpricing "venue/internal/domain/pricing"
)

// PricingEngine prices stays against a catalog held in memory.
type PricingEngine struct {
	config domainpricing.Config
}

func NewPricingEngine(cfg domainpricing.Config) *PricingEngine {
	return &PricingEngine{config: cfg.Clone()}
}

func (p *PricingEngine) Quote(ctx context.Context, req domainpricing.QuoteRequest) (domainpricing.Quote, error) {
	if err := ctx.Err(); err != nil {
		return domainpricing.Quote{}, err
	}
	return domainpricing.ComputeQuote(req, p.config)
}

func (p *PricingEngine) Catalog(context.Context) (domainpricing.Config, error) {
	return p.config.Clone(), nil
}

// MenuCatalog serves a menu held in memory.
type MenuCatalog struct {
	menu domainmenu.Menu
}

func NewMenuCatalog(m domainmenu.Menu) *MenuCatalog {
	return &MenuCatalog{menu: m.Clone()}
}

func (m *MenuCatalog) Menu(context.Context) (domainmenu.Menu, error) {
	return m.menu.Clone(), nil
}

var _ policies.PricingPort = (*PricingEngine)(nil)
var _ policies.MenuPort = (*MenuCatalog)(nil)
