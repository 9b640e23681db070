package ginserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	gin "github.com/gin-gonic/gin"

	"venue/internal/infra/config"
	"venue/internal/infra/obs"
)

type QuoteHTTP interface {
	Calculate(c *gin.Context)
	Pricing(c *gin.Context)
	StayBounds(c *gin.Context)
}

type MenuHTTP interface {
	List(c *gin.Context)
}

type InquiryHTTP interface {
	Submit(c *gin.Context)
}

type Handlers struct {
	Quotes    QuoteHTTP
	Menu      MenuHTTP
	Inquiries InquiryHTTP
	// InquiryLimiter runs in front of Submit when set.
	InquiryLimiter gin.HandlerFunc
	Metrics        http.Handler
}

func NewServer(cfg config.Config, obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *http.Server {
	mode := configureGinMode(cfg.Env)
	if obsMW.Logger != nil {
		obsMW.Logger.Info("gin initialized", "mode", mode)
	}
	return &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           newRouter(cfg, obsMW, health, h),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

func newRouter(cfg config.Config, obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(obsMW.RequestID())
	router.Use(obsMW.LoggerMiddleware())
	router.Use(cors.New(corsConfig(cfg.CORSOrigins)))

	router.GET("/livez", health.Livez)
	router.GET("/readyz", health.Readyz)
	if h.Metrics != nil {
		router.GET("/metrics", gin.WrapH(h.Metrics))
	}

	api := router.Group("/api/v1")
	if h.Quotes != nil {
		api.GET("/quotes", h.Quotes.Calculate)
		api.POST("/quotes", h.Quotes.Calculate)
		api.GET("/pricing", h.Quotes.Pricing)
		api.GET("/stay-bounds", h.Quotes.StayBounds)
	}
	if h.Menu != nil {
		api.GET("/menu", h.Menu.List)
	}
	if h.Inquiries != nil {
		chain := []gin.HandlerFunc{}
		if h.InquiryLimiter != nil {
			chain = append(chain, h.InquiryLimiter)
		}
		chain = append(chain, h.Inquiries.Submit)
		api.POST("/inquiries", chain...)
	}
	return router
}

func corsConfig(origins []string) cors.Config {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.Config{
		AllowOrigins: origins,
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Accept-Language", "Idempotency-Key"},
		ExposeHeaders: []string{
			"Content-Length",
			"Content-Type",
			"X-Request-ID",
			"X-RateLimit-Limit",
			"X-RateLimit-Remaining",
			"X-RateLimit-Reset",
			"Retry-After",
		},
		MaxAge: 12 * time.Hour,
	}
}

func configureGinMode(env string) string {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "debug":
		gin.SetMode(gin.DebugMode)
		return gin.DebugMode
	case "test", "testing":
		gin.SetMode(gin.TestMode)
		return gin.TestMode
	default:
		gin.SetMode(gin.ReleaseMode)
		return gin.ReleaseMode
	}
}
