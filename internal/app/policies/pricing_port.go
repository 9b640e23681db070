package policies

import (
	"context"

	domainmenu "venue/internal/domain/menu"
	domainpricing "venue/internal/domain/pricing"
)

// PricingPort prices stays against the active catalog.
type PricingPort interface {
	Quote(ctx context.Context, req domainpricing.QuoteRequest) (domainpricing.Quote, error)
	Catalog(ctx context.Context) (domainpricing.Config, error)
}

// MenuPort serves the restaurant card.
type MenuPort interface {
	Menu(ctx context.Context) (domainmenu.Menu, error)
}
