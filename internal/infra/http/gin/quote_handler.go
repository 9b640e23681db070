package ginserver

import (
	"log/slog"
	"net/http"
	"strconv"

	gin "github.com/gin-gonic/gin"

	"venue/internal/app/dto"
	quotesapp "venue/internal/app/handlers/quotes"
	"venue/internal/app/queries"
)

// QuoteHandler serves the booking form: price quotes, the price list and date bounds.
type QuoteHandler struct {
	Queries       queries.Bus
	DefaultLocale dto.Locale
	Logger        *slog.Logger
}

type quoteRequest struct {
	CheckIn  string   `json:"check_in"`
	CheckOut string   `json:"check_out"`
	Guests   any      `json:"guests"`
	Extras   []string `json:"extras"`
}

// Calculate prices a stay from a JSON body (POST) or the query string (GET).
func (h QuoteHandler) Calculate(c *gin.Context) {
	locale := requestLocale(c, h.DefaultLocale)
	if h.Queries == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "quotes unavailable"})
		return
	}
	var form quotesapp.QuoteForm
	if c.Request.Method == http.MethodPost {
		var req quoteRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, locale, err)
			return
		}
		form = quotesapp.QuoteForm{
			CheckIn:  req.CheckIn,
			CheckOut: req.CheckOut,
			Guests:   guestsValue(req.Guests),
			Extras:   req.Extras,
		}
	} else if err := c.ShouldBindQuery(&form); err != nil {
		badRequest(c, locale, err)
		return
	}

	query := quotesapp.NewCalculateQuoteQuery(quotesapp.ParseQuoteForm(form), locale)
	result, err := queries.Ask[quotesapp.CalculateQuoteQuery, dto.QuoteView](c.Request.Context(), h.Queries, query)
	if err != nil {
		writeError(c, h.Logger, locale, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h QuoteHandler) Pricing(c *gin.Context) {
	locale := requestLocale(c, h.DefaultLocale)
	if h.Queries == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "quotes unavailable"})
		return
	}
	result, err := queries.Ask[quotesapp.PricingCatalogQuery, dto.PricingCatalogView](c.Request.Context(), h.Queries, quotesapp.PricingCatalogQuery{})
	if err != nil {
		writeError(c, h.Logger, locale, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h QuoteHandler) StayBounds(c *gin.Context) {
	locale := requestLocale(c, h.DefaultLocale)
	if h.Queries == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "quotes unavailable"})
		return
	}
	query := quotesapp.StayBoundsQuery{
		CheckIn:  quotesapp.ParseDate(c.Query("check_in")),
		CheckOut: quotesapp.ParseDate(c.Query("check_out")),
	}
	result, err := queries.Ask[quotesapp.StayBoundsQuery, dto.StayBoundsView](c.Request.Context(), h.Queries, query)
	if err != nil {
		writeError(c, h.Logger, locale, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// guestsValue accepts guests sent as a JSON number or as a string.
func guestsValue(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return ""
	}
}

var _ QuoteHTTP = QuoteHandler{}
