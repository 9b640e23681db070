package ginserver

import (
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"venue/internal/app/dto"
	menuapp "venue/internal/app/handlers/menu"
	"venue/internal/app/queries"
)

type MenuHandler struct {
	Queries       queries.Bus
	DefaultLocale dto.Locale
	Logger        *slog.Logger
}

func (h MenuHandler) List(c *gin.Context) {
	locale := requestLocale(c, h.DefaultLocale)
	if h.Queries == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "menu unavailable"})
		return
	}
	query := menuapp.ListMenuQuery{Category: c.Query("category")}
	result, err := queries.Ask[menuapp.ListMenuQuery, dto.MenuView](c.Request.Context(), h.Queries, query)
	if err != nil {
		writeError(c, h.Logger, locale, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ MenuHTTP = MenuHandler{}
