package ginserver

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	gin "github.com/gin-gonic/gin"

	"venue/internal/app/commands"
	"venue/internal/app/dto"
	inquiriesapp "venue/internal/app/handlers/inquiries"
	appoutbox "venue/internal/app/outbox"
	"venue/internal/infra/obs"
	"venue/internal/infra/ratelimit"
)

const requestIDEventHeader = "x-request-id"

// RateLimitRecorder counts requests turned away by the limiter.
type RateLimitRecorder interface {
	RateLimited()
}

type InquiryHandler struct {
	Commands      commands.Bus
	DefaultLocale dto.Locale
	Metrics       RateLimitRecorder
	Logger        *slog.Logger
	Now           func() time.Time
}

type submitInquiryRequest struct {
	Name    string `json:"name" form:"name"`
	Email   string `json:"email" form:"email"`
	Phone   string `json:"phone" form:"phone"`
	Message string `json:"message" form:"message"`
}

// Submit accepts the contact form as JSON or as a url-encoded form post.
func (h InquiryHandler) Submit(c *gin.Context) {
	locale := requestLocale(c, h.DefaultLocale)
	if h.Commands == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "inquiries unavailable"})
		return
	}
	var req submitInquiryRequest
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, locale, err)
		return
	}
	cmd := inquiriesapp.SubmitInquiryCommand{
		Name:            req.Name,
		Email:           req.Email,
		Phone:           req.Phone,
		Message:         req.Message,
		Locale:          locale,
		IdempotencyKeyV: c.GetHeader("Idempotency-Key"),
	}
	ctx := appoutbox.WithHeaders(c.Request.Context(), map[string]string{
		requestIDEventHeader: obs.RequestIDFromContext(c.Request.Context()),
	})
	result, err := commands.Dispatch[inquiriesapp.SubmitInquiryCommand, *dto.SubmitInquiryView](ctx, h.Commands, cmd)
	if err != nil {
		writeError(c, h.Logger, locale, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

// RateLimited is the ratelimit.DenyFunc for the contact form.
func (h InquiryHandler) RateLimited(c *gin.Context, res ratelimit.Result) {
	if h.Metrics != nil {
		h.Metrics.RateLimited()
	}
	now := time.Now
	if h.Now != nil {
		now = h.Now
	}
	if wait := res.Reset.Sub(now()); wait > 0 {
		c.Header("Retry-After", strconv.Itoa(int(wait.Round(time.Second)/time.Second)))
	}
	c.JSON(http.StatusTooManyRequests, gin.H{"error": dto.RateLimitedMessage(requestLocale(c, h.DefaultLocale))})
}

var (
	_ InquiryHTTP        = InquiryHandler{}
	_ ratelimit.DenyFunc = InquiryHandler{}.RateLimited
)
