package ginserver

import (
	"errors"
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"venue/internal/app/dto"
	"venue/internal/app/middleware"
	domaininquiry "venue/internal/domain/inquiry"
	domainpricing "venue/internal/domain/pricing"
)

const langQuery = "lang"

// requestLocale prefers an explicit ?lang= over Accept-Language.
func requestLocale(c *gin.Context, fallback dto.Locale) dto.Locale {
	if lang := c.Query(langQuery); lang != "" {
		if l := dto.ParseLocale(lang, ""); l != "" {
			return l
		}
	}
	return dto.MatchLocale(c.GetHeader("Accept-Language"), fallback)
}

// writeError maps application errors to HTTP responses.
func writeError(c *gin.Context, logger *slog.Logger, locale dto.Locale, err error) {
	var (
		quoteErr      *domainpricing.QuoteError
		validationErr *middleware.ValidationError
	)
	switch {
	case errors.As(err, &quoteErr):
		c.JSON(http.StatusUnprocessableEntity, dto.NewQuoteErrorView(quoteErr, locale))
		return
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":  dto.InvalidRequestMessage(locale),
			"fields": validationErr.Fields,
		})
		return
	case errors.Is(err, middleware.ErrIdempotencyKeyReused):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	case errors.Is(err, domaininquiry.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	if msg, ok := dto.InquiryErrorMessage(err, locale); ok {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": msg})
		return
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger.ErrorContext(c.Request.Context(), "request failed", "path", c.FullPath(), "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": dto.InternalErrorMessage(locale)})
}

func badRequest(c *gin.Context, locale dto.Locale, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": dto.InvalidRequestMessage(locale), "detail": err.Error()})
}
