package quotes

import (
	"context"

	"venue/internal/app/dto"
	"venue/internal/app/policies"
	"venue/internal/app/queries"
)

const pricingCatalogKey = "quotes.pricing_catalog"

type PricingCatalogQuery struct{}

func (q PricingCatalogQuery) Key() string { return pricingCatalogKey }

type PricingCatalogHandler struct {
	Pricing policies.PricingPort
}

func (h *PricingCatalogHandler) Handle(ctx context.Context, _ PricingCatalogQuery) (dto.PricingCatalogView, error) {
	cfg, err := h.Pricing.Catalog(ctx)
	if err != nil {
		return dto.PricingCatalogView{}, err
	}
	return dto.NewPricingCatalogView(cfg), nil
}

var _ queries.Handler[PricingCatalogQuery, dto.PricingCatalogView] = (*PricingCatalogHandler)(nil)
