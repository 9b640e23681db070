package menu

import (
	"context"
	"strings"

	"venue/internal/app/dto"
	"venue/internal/app/policies"
	"venue/internal/app/queries"
	domainmenu "venue/internal/domain/menu"
)

const listMenuKey = "menu.list"

type ListMenuQuery struct {
	Category string `json:"category" validate:"max=64"`
}

func (q ListMenuQuery) Key() string { return listMenuKey }

type ListMenuHandler struct {
	Menu policies.MenuPort
}

func (h *ListMenuHandler) Handle(ctx context.Context, q ListMenuQuery) (dto.MenuView, error) {
	m, err := h.Menu.Menu(ctx)
	if err != nil {
		return dto.MenuView{}, err
	}
	category := strings.ToLower(strings.TrimSpace(q.Category))
	if category == "" {
		category = domainmenu.AllCategories
	}
	return dto.NewMenuView(m, category, m.Filter(category)), nil
}

var _ queries.Handler[ListMenuQuery, dto.MenuView] = (*ListMenuHandler)(nil)
