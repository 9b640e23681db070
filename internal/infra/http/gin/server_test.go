package ginserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	gin "github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"venue/internal/app/commands"
	"venue/internal/app/dto"
	inquiriesapp "venue/internal/app/handlers/inquiries"
	menuapp "venue/internal/app/handlers/menu"
	quotesapp "venue/internal/app/handlers/quotes"
	"venue/internal/app/middleware"
	"venue/internal/app/queries"
	"venue/internal/infra/catalog"
	"venue/internal/infra/config"
	"venue/internal/infra/obs"
	"venue/internal/infra/ratelimit"
	"venue/internal/infra/storage/memory"
)

type testStack struct {
	router    *gin.Engine
	outbox    *memory.Outbox
	inquiries *memory.InquiryRepository
}

func newTestStack(t *testing.T, limiter ratelimit.Limiter) testStack {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cat := catalog.Default()
	pricing := memory.NewPricingEngine(cat.Pricing)
	box := memory.NewOutbox()
	repo := memory.NewInquiryRepository()
	metrics := obs.NewMetrics(prometheus.NewRegistry())
	validator := middleware.NewStructValidator()
	now := func() time.Time { return time.Date(2024, time.July, 1, 9, 0, 0, 0, time.UTC) }

	qbus := queries.NewInMemoryBus()
	queries.Register[quotesapp.CalculateQuoteQuery, dto.QuoteView](qbus, &quotesapp.CalculateQuoteHandler{Pricing: pricing, Metrics: metrics})
	queries.Register[quotesapp.PricingCatalogQuery, dto.PricingCatalogView](qbus, &quotesapp.PricingCatalogHandler{Pricing: pricing})
	queries.Register[quotesapp.StayBoundsQuery, dto.StayBoundsView](qbus, &quotesapp.StayBoundsHandler{Pricing: pricing, Now: now})
	queries.Register[menuapp.ListMenuQuery, dto.MenuView](qbus, &menuapp.ListMenuHandler{Menu: memory.NewMenuCatalog(cat.Menu)})

	cbus := commands.NewInMemoryBus()
	units := memory.Factory{Inquiries: repo, Outbox: box}
	commands.Register[inquiriesapp.SubmitInquiryCommand, *dto.SubmitInquiryView](cbus, &inquiriesapp.SubmitInquiryHandler{
		UoWFactory: units,
		Now:        now,
	})

	qb := middleware.ChainQueries(qbus, middleware.QueryValidation(validator))
	cb := middleware.ChainCommands(cbus,
		middleware.Validation(validator),
		middleware.Idempotency(memory.NewIdempotencyStore(time.Hour), now),
		middleware.Transaction(units, nil),
	)

	inquiry := InquiryHandler{Commands: cb, DefaultLocale: dto.LocaleRO, Metrics: metrics, Now: now}
	h := Handlers{
		Quotes:    QuoteHandler{Queries: qb, DefaultLocale: dto.LocaleRO},
		Menu:      MenuHandler{Queries: qb, DefaultLocale: dto.LocaleRO},
		Inquiries: inquiry,
		Metrics:   metrics.Handler(),
	}
	if limiter != nil {
		h.InquiryLimiter = ratelimit.Middleware(limiter, "inquiries", nil, inquiry.RateLimited)
	}
	router := newRouter(config.Defaults(), obs.Middleware{Metrics: metrics}, obs.HealthHandlers{}, h)
	return testStack{router: router, outbox: box, inquiries: repo}
}

func (s testStack) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestQuoteViaQueryString(t *testing.T) {
	s := newTestStack(t, nil)
	rec := s.do(httptest.NewRequest(http.MethodGet,
		"/api/v1/quotes?check_in=2024-07-15&check_out=2024-07-17&guests=3&extras=bbq&extras=bike&lang=en", nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	view := decode[dto.QuoteView](t, rec)
	assert.Equal(t, 2, view.Nights)
	assert.Equal(t, int64(1500), view.AverageNightlyRate)
	assert.Equal(t, int64(3700), view.Total)
	require.Len(t, view.Lines, 3)
	assert.True(t, strings.HasPrefix(view.Lines[0], "+ Additional guests:"), view.Lines[0])
	assert.NotEmpty(t, rec.Header().Get(obs.RequestIDHeader))
}

func TestQuoteViaJSON(t *testing.T) {
	s := newTestStack(t, nil)
	body := `{"check_in":"2024-07-15","check_out":"2024-07-17","guests":"3","extras":["BBQ"," bike "]}`
	rec := s.do(jsonRequest(http.MethodPost, "/api/v1/quotes", body))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, int64(3700), decode[dto.QuoteView](t, rec).Total)

	body = `{"check_in":"2024-07-15","check_out":"2024-07-17","guests":2}`
	rec = s.do(jsonRequest(http.MethodPost, "/api/v1/quotes", body))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	view := decode[dto.QuoteView](t, rec)
	assert.Equal(t, int64(3000), view.Total)
	assert.Empty(t, view.Lines)
}

func TestQuoteErrors(t *testing.T) {
	s := newTestStack(t, nil)

	tests := []struct {
		name     string
		req      *http.Request
		status   int
		kind     string
		contains string
	}{
		{
			name:     "missing dates in romanian by default",
			req:      httptest.NewRequest(http.MethodGet, "/api/v1/quotes", nil),
			status:   http.StatusUnprocessableEntity,
			kind:     "missing_dates",
			contains: "Vă rugăm să selectați",
		},
		{
			name: "reversed range in english",
			req: func() *http.Request {
				r := httptest.NewRequest(http.MethodGet, "/api/v1/quotes?check_in=2024-07-17&check_out=2024-07-15", nil)
				r.Header.Set("Accept-Language", "en-GB,en;q=0.9")
				return r
			}(),
			status:   http.StatusUnprocessableEntity,
			kind:     "invalid_range",
			contains: "Check-out date must be after",
		},
		{
			name:   "malformed json",
			req:    jsonRequest(http.MethodPost, "/api/v1/quotes", `{"check_in":`),
			status: http.StatusBadRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(tt.req)
			require.Equal(t, tt.status, rec.Code, rec.Body.String())
			if tt.kind == "" {
				return
			}
			view := decode[dto.QuoteErrorView](t, rec)
			assert.Equal(t, tt.kind, view.Kind)
			assert.Contains(t, view.Message, tt.contains)
		})
	}
}

func TestQuoteTooManyExtrasIsBadRequest(t *testing.T) {
	s := newTestStack(t, nil)
	q := url.Values{"check_in": {"2024-07-15"}, "check_out": {"2024-07-17"}}
	for i := 0; i < 40; i++ {
		q.Add("extras", "x"+strings.Repeat("a", i))
	}
	rec := s.do(httptest.NewRequest(http.MethodGet, "/api/v1/quotes?"+q.Encode(), nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "extras")
}

func TestPricingAndStayBounds(t *testing.T) {
	s := newTestStack(t, nil)

	rec := s.do(httptest.NewRequest(http.MethodGet, "/api/v1/pricing", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	catalogView := decode[dto.PricingCatalogView](t, rec)
	assert.Equal(t, "MDL", catalogView.Currency)
	assert.Len(t, catalogView.Extras, 4)

	rec = s.do(httptest.NewRequest(http.MethodGet, "/api/v1/stay-bounds?check_in=2024-07-15&check_out=2024-07-15", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	bounds := decode[dto.StayBoundsView](t, rec)
	assert.Equal(t, "2024-07-01", bounds.MinCheckIn)
	assert.Equal(t, "2024-07-16", bounds.MinCheckOut)
	assert.True(t, bounds.ClearCheckOut)
}

func TestMenu(t *testing.T) {
	s := newTestStack(t, nil)

	rec := s.do(httptest.NewRequest(http.MethodGet, "/api/v1/menu", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	all := decode[dto.MenuView](t, rec)
	assert.Equal(t, "all", all.Category)
	assert.Len(t, all.Items, 8)

	rec = s.do(httptest.NewRequest(http.MethodGet, "/api/v1/menu?category=desert", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	desserts := decode[dto.MenuView](t, rec)
	require.Len(t, desserts.Items, 1)
	assert.Equal(t, "coltunasi", desserts.Items[0].ID)
}

func TestSubmitInquiry(t *testing.T) {
	s := newTestStack(t, nil)

	body := `{"name":"Ana","email":"ana@example.md","message":"Aveți loc pe 12 iulie?"}`
	req := jsonRequest(http.MethodPost, "/api/v1/inquiries", body)
	req.Header.Set("Idempotency-Key", "form-1")
	rec := s.do(req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	first := decode[dto.SubmitInquiryView](t, rec)
	assert.NotEmpty(t, first.InquiryID)
	assert.Contains(t, first.Message, "Mulțumim")
	assert.Equal(t, 1, s.outbox.Pending())

	req = jsonRequest(http.MethodPost, "/api/v1/inquiries", body)
	req.Header.Set("Idempotency-Key", "form-1")
	rec = s.do(req)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, first.InquiryID, decode[dto.SubmitInquiryView](t, rec).InquiryID)
	assert.Len(t, s.inquiries.List(context.Background()), 1)
	assert.Equal(t, 1, s.outbox.Pending())

	claimed, err := s.outbox.Claim(context.Background(), "test")
	require.NoError(t, err)
	require.NotNil(t, claimed)
	assert.Equal(t, "inquiry.received", claimed.Name)
	assert.Equal(t, "inquiry", claimed.Headers["stream"])
	assert.NotEmpty(t, claimed.Headers[requestIDEventHeader])
}

func TestSubmitInquiryAsForm(t *testing.T) {
	s := newTestStack(t, nil)
	form := url.Values{"name": {"Ion"}, "email": {"ion@example.md"}, "message": {"Hello"}}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/inquiries?lang=en", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := s.do(req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Contains(t, decode[dto.SubmitInquiryView](t, rec).Message, "Thank you")
}

func TestSubmitInquiryRejected(t *testing.T) {
	s := newTestStack(t, nil)

	rec := s.do(jsonRequest(http.MethodPost, "/api/v1/inquiries?lang=en", `{"name":"Ana","email":"not-an-email","message":"hi"}`))
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.JSONEq(t, `{"error":"Please enter a valid email address."}`, rec.Body.String())

	rec = s.do(jsonRequest(http.MethodPost, "/api/v1/inquiries", `{"name":"Ana"}`))
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "câmpurile obligatorii")
	assert.Zero(t, s.outbox.Pending())
}

func TestSubmitInquiryRateLimited(t *testing.T) {
	s := newTestStack(t, denyAll{})
	req := jsonRequest(http.MethodPost, "/api/v1/inquiries", `{"name":"Ana","email":"ana@example.md","message":"hi"}`)
	req.Header.Set("Accept-Language", "en")
	rec := s.do(req)

	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))
	assert.Contains(t, rec.Body.String(), "Too many requests")
	assert.Empty(t, s.inquiries.List(context.Background()))
}

type denyAll struct{}

func (denyAll) Allow(context.Context, string) (ratelimit.Result, error) {
	return ratelimit.Result{
		Allowed: false,
		Limit:   5,
		Reset:   time.Date(2024, time.July, 1, 9, 1, 0, 0, time.UTC),
	}, nil
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestStack(t, nil)
	s.do(httptest.NewRequest(http.MethodGet, "/api/v1/quotes?check_in=2024-07-15&check_out=2024-07-17", nil))

	rec := s.do(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `venue_quotes_total{outcome="ok"} 1`)
	assert.Contains(t, rec.Body.String(), "venue_http_requests_total")
}

func TestWriteErrorMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{name: "key reused", err: middleware.ErrIdempotencyKeyReused, status: http.StatusConflict},
		{name: "validation", err: &middleware.ValidationError{Fields: map[string]string{"guests": "lte=100"}}, status: http.StatusBadRequest},
		{name: "unexpected", err: errors.New("mongo: connection refused"), status: http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(rec)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
			writeError(c, nil, dto.LocaleEN, tt.err)
			assert.Equal(t, tt.status, rec.Code)
			assert.NotContains(t, rec.Body.String(), "connection refused")
		})
	}
}

func TestHealthRoutes(t *testing.T) {
	s := newTestStack(t, nil)
	assert.Equal(t, http.StatusOK, s.do(httptest.NewRequest(http.MethodGet, "/livez", nil)).Code)
	assert.Equal(t, http.StatusOK, s.do(httptest.NewRequest(http.MethodGet, "/readyz", nil)).Code)
}
