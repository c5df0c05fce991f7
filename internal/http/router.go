// Package httpapi wires the HTTP transport (Gin) to application services,
// middleware, and route handlers. It centralizes cross-cutting concerns such
// as tracing, correlation IDs, logging/redaction, panic recovery, metrics,
// CORS, security headers, and request smoothing.
//
// Design goals:
//   - Put observability first (OTel + Prometheus)
//   - Safe-by-default middleware ordering (RequestID → logging → recovery)
//   - Deterministic, minimal router setup; all dependencies injected
//   - Invite codes never reach logs, metric labels, or caches
package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	_ "github.com/tbourn/go-wedding-rsvp/docs"
	"github.com/tbourn/go-wedding-rsvp/internal/config"
	"github.com/tbourn/go-wedding-rsvp/internal/http/handlers"
	"github.com/tbourn/go-wedding-rsvp/internal/http/middleware"
	"github.com/tbourn/go-wedding-rsvp/internal/notify"
	"github.com/tbourn/go-wedding-rsvp/internal/ratelimit"
	"github.com/tbourn/go-wedding-rsvp/internal/services"
	"github.com/tbourn/go-wedding-rsvp/internal/session"
)

// Deps are the long-lived resources the routes are built on.
type Deps struct {
	DB       *gorm.DB
	Counters ratelimit.Store
	Notifier notify.Notifier
}

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine. It configures observability (tracing, metrics), the coarse token
// bucket, CORS and security headers, health and metrics endpoints, and then
// mounts the RSVP flow under /rsvp.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. RedactingLogger: structured logs with code/cookie scrubbing
//  4. Recovery: capture panics after logger
//  5. Body size limiter
//  6. Metrics
//  7. Token-bucket smoothing per IP (/64 for IPv6)
//  8. gzip, CORS and Security headers
func RegisterRoutes(r *gin.Engine, deps Deps, cfg config.Config) {
	r.HandleMethodNotAllowed = true
	if err := r.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		log.Warn().Err(err).Msg("invalid TRUSTED_PROXIES, trusting none")
		_ = r.SetTrustedProxies(nil)
	}

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Structured logging with redaction
	r.Use(middleware.RedactingLogger(middleware.RedactOptions{}))

	// 4) Panic recovery to JSON 500 (with request id)
	r.Use(middleware.Recovery())

	// 5) Global body size limit (1 MiB)
	r.Use(limitBody(1 << 20))

	// 6) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 7) Token-bucket smoothing; abuse lockout lives in the services
	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByClientIP())
	r.Use(rl.Handler())

	// 8) Compression, CORS and security headers
	r.Use(gzip.Gzip(gzip.DefaultCompression))
	useCORS(r, cfg.CORS.AllowedOrigins)
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		NoStore:      true,
		EnablePolicy: true,
	}))

	// Fallbacks
	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	// Liveness/health
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	if cfg.SwaggerEnabled {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// Dependency injection: services ← limiters/db/notifier
	ipLimiter := ratelimit.New(deps.Counters, "ip", "rsvp:ip:", cfg.Lockout.Threshold, cfg.Lockout.Window)
	codeLimiter := ratelimit.New(deps.Counters, "code", "rsvp:code:", cfg.Lockout.Threshold, cfg.Lockout.Window)
	sessions := session.New(session.Options{
		HashKey:  []byte(cfg.Session.HashKey),
		BlockKey: []byte(cfg.Session.BlockKey),
		TTL:      cfg.Session.TTL,
		Secure:   cfg.Session.CookieSecure,
		Domain:   cfg.Session.CookieDomain,
	})
	h := handlers.New(
		&services.AuthService{DB: deps.DB, IPLimiter: ipLimiter},
		services.NewWorkflowService(deps.DB, codeLimiter, deps.Notifier, cfg.Lockout.CountFormViews),
		services.NewAdminService(deps.DB),
		sessions,
	)

	rsvp := r.Group("/rsvp")
	{
		rsvp.GET("", h.Entry)
		rsvp.GET("/lockout", h.Lockout)
		rsvp.POST("/authenticate", h.Authenticate)
		rsvp.GET("/form", h.Form)
		rsvp.GET("/submit", h.SubmitRedirect)
		rsvp.POST("/submit", h.Submit)
	}

	// Admin area stays unmounted (404) without a password.
	if cfg.Admin.Password == "" {
		log.Warn().Msg("ADMIN_PASSWORD not set, admin area disabled")
		return
	}
	admin := rsvp.Group("/admin", gin.BasicAuth(gin.Accounts{cfg.Admin.User: cfg.Admin.Password}))
	{
		admin.GET("", h.AdminOverview)
		admin.GET("/add", h.AdminAddForm)
		admin.POST("/add", h.AdminAdd)
		admin.GET("/edit/:code", h.AdminEditForm)
		admin.POST("/edit/:code", h.AdminEdit)
	}
}

// useCORS installs the CORS posture: allow all (without credentials) when no
// origins are configured, otherwise echo allowlisted origins.
func useCORS(r *gin.Engine, origins []string) {
	methods := []string{"GET", "POST", "OPTIONS"}
	headers := []string{"Origin", "Content-Type", "Accept", "Authorization"}
	exposed := []string{"X-Request-ID", "Content-Length", "ETag"}

	if len(origins) == 0 {
		// Force ACAO: * even for requests without an Origin header.
		r.Use(func(c *gin.Context) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowAllOrigins:  true,
			AllowMethods:     methods,
			AllowHeaders:     headers,
			ExposeHeaders:    exposed,
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}))
		return
	}

	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		allowed[o] = struct{}{}
	}
	r.Use(func(c *gin.Context) {
		if origin := c.GetHeader("Origin"); origin != "" {
			if _, ok := allowed[origin]; ok {
				h := c.Writer.Header()
				h.Set("Access-Control-Allow-Origin", origin)
				h.Add("Vary", "Origin")
			}
		}
		c.Next()
	})
	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     methods,
		AllowHeaders:     headers,
		ExposeHeaders:    exposed,
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
}

// limitBody returns a Gin middleware that caps the request body size for all
// endpoints to maxBytes using http.MaxBytesReader. Requests exceeding the cap
// will cause downstream body reads to error.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
