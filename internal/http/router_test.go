package httpapi

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	sqlite "github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/go-wedding-rsvp/internal/config"
	"github.com/tbourn/go-wedding-rsvp/internal/domain"
	"github.com/tbourn/go-wedding-rsvp/internal/notify"
	"github.com/tbourn/go-wedding-rsvp/internal/ratelimit"
	"github.com/tbourn/go-wedding-rsvp/internal/session"
)

// --- test DB helper (pure-Go sqlite, no CGO) ---
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:router_%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	if err := db.AutoMigrate(&domain.Guest{}, &domain.RateCounter{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func testConfig() config.Config {
	return config.Config{
		RateRPS:   100,
		RateBurst: 100,
		Lockout:   config.LockoutConfig{Threshold: 5, Window: 24 * time.Hour},
		Session: config.SessionConfig{
			HashKey: "0123456789abcdef0123456789abcdef",
			TTL:     time.Hour,
		},
		Admin: config.AdminConfig{User: "admin", Password: "secret"},
		OTEL:  config.OTELConfig{ServiceName: "test-svc"},
	}
}

func newRouter(t *testing.T, cfg config.Config) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := newTestDB(t)
	r := gin.New()
	RegisterRoutes(r, Deps{DB: db, Counters: ratelimit.NewSQLStore(db), Notifier: notify.Log{}}, cfg)
	return r, db
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRegisterRoutes_CORSAllowAll_Health_Metrics_Fallbacks(t *testing.T) {
	r, _ := newRouter(t, testConfig())

	w := serve(r, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("GET /health = %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("AllowAllOrigins expected '*', got %q", got)
	}
	if got := w.Header().Get("Cache-Control"); !strings.Contains(got, "no-store") {
		t.Fatalf("expected no-store, got %q", got)
	}

	w = serve(r, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if w.Code != http.StatusOK || w.Body.Len() == 0 {
		t.Fatalf("GET /metrics bad: code=%d len=%d", w.Code, w.Body.Len())
	}

	w = serve(r, httptest.NewRequest(http.MethodGet, "/nope", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("GET /nope expected 404, got %d", w.Code)
	}

	w = serve(r, httptest.NewRequest(http.MethodPost, "/health", nil))
	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("POST /health expected 405, got %d", w.Code)
	}
}

func TestRegisterRoutes_CORSWithOrigins_HeaderEcho(t *testing.T) {
	cfg := testConfig()
	cfg.CORS = config.CORSConfig{AllowedOrigins: []string{"http://example.com"}}
	r, _ := newRouter(t, cfg)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://example.com")
	w := serve(r, req)
	if w.Code != http.StatusOK {
		t.Fatalf("GET /health = %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://example.com" {
		t.Fatalf("expected ACAO echo, got %q", got)
	}
}

func Test_limitBody_Middleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(limitBody(10))
	r.POST("/echo", func(c *gin.Context) {
		if _, err := io.ReadAll(c.Request.Body); err != nil {
			c.String(http.StatusRequestEntityTooLarge, "too big")
			return
		}
		c.String(http.StatusOK, "ok")
	})

	w := serve(r, httptest.NewRequest(http.MethodPost, "/echo", bytes.NewBufferString("0123456789AB")))
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413 from limitBody, got %d", w.Code)
	}
}

func TestRegisterRoutes_GuestFlow(t *testing.T) {
	r, db := newRouter(t, testConfig())
	if err := db.Create(&domain.Guest{ID: "ABCDEFGHIJKL", GuestName: "Ada"}).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}

	form := url.Values{"code": {"abcd-efgh-ijkl"}}
	req := httptest.NewRequest(http.MethodPost, "/rsvp/authenticate", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := serve(r, req)
	if w.Code != http.StatusSeeOther || w.Header().Get("Location") != "/rsvp/form" {
		t.Fatalf("authenticate = %d %q", w.Code, w.Header().Get("Location"))
	}
	var cookie *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == session.CookieName {
			cookie = c
		}
	}
	if cookie == nil {
		t.Fatal("no session cookie")
	}

	req = httptest.NewRequest(http.MethodGet, "/rsvp/form", nil)
	req.AddCookie(cookie)
	w = serve(r, req)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "Ada") {
		t.Fatalf("form = %d %s", w.Code, w.Body.String())
	}

	form = url.Values{"accepted": {"yes"}}
	req = httptest.NewRequest(http.MethodPost, "/rsvp/submit", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(cookie)
	w = serve(r, req)
	if w.Code != http.StatusOK {
		t.Fatalf("submit = %d %s", w.Code, w.Body.String())
	}

	var g domain.Guest
	if err := db.Where("id = ?", "ABCDEFGHIJKL").Take(&g).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if g.Decision != domain.Accepted || g.DateOfFirstRSVP == nil {
		t.Fatalf("guest not updated: %+v", g)
	}

	w = serve(r, httptest.NewRequest(http.MethodGet, "/rsvp/submit", nil))
	if w.Code != http.StatusTemporaryRedirect || w.Header().Get("Location") != "/" {
		t.Fatalf("GET submit = %d %q", w.Code, w.Header().Get("Location"))
	}
}

func TestRegisterRoutes_AdminRequiresBasicAuth(t *testing.T) {
	r, _ := newRouter(t, testConfig())

	w := serve(r, httptest.NewRequest(http.MethodGet, "/rsvp/admin", nil))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous admin = %d", w.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/rsvp/admin", nil)
	req.SetBasicAuth("admin", "wrong")
	if w = serve(r, req); w.Code != http.StatusUnauthorized {
		t.Fatalf("bad password admin = %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/rsvp/admin", nil)
	req.SetBasicAuth("admin", "secret")
	if w = serve(r, req); w.Code != http.StatusOK {
		t.Fatalf("admin = %d %s", w.Code, w.Body.String())
	}
	if w.Header().Get("ETag") == "" {
		t.Fatal("expected ETag on admin overview")
	}
}

func TestRegisterRoutes_AdminDisabledWithoutPassword(t *testing.T) {
	cfg := testConfig()
	cfg.Admin.Password = ""
	r, _ := newRouter(t, cfg)

	req := httptest.NewRequest(http.MethodGet, "/rsvp/admin", nil)
	req.SetBasicAuth("admin", "")
	if w := serve(r, req); w.Code != http.StatusNotFound {
		t.Fatalf("disabled admin = %d", w.Code)
	}
}

func TestRegisterRoutes_Swagger(t *testing.T) {
	r, _ := newRouter(t, testConfig())
	if w := serve(r, httptest.NewRequest(http.MethodGet, "/swagger/index.html", nil)); w.Code != http.StatusNotFound {
		t.Fatalf("swagger should be off by default, got %d", w.Code)
	}

	cfg := testConfig()
	cfg.SwaggerEnabled = true
	r, _ = newRouter(t, cfg)
	w := serve(r, httptest.NewRequest(http.MethodGet, "/swagger/doc.json", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("GET /swagger/doc.json = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "BasicAuth") {
		t.Fatalf("doc.json lacks security definition: %s", w.Body.String())
	}
}

func TestPipeline_Smoke(t *testing.T) {
	cfg := testConfig()
	cfg.Security = config.SecurityConfig{EnableHSTS: true, HSTSMaxAge: time.Hour}
	r, _ := newRouter(t, cfg)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Forwarded-Proto", "https")
	w := serve(r, req)
	if w.Code != http.StatusOK {
		t.Fatalf("pipeline GET /health = %d", w.Code)
	}
	if rid := w.Header().Get("X-Request-ID"); rid == "" {
		t.Fatalf("expected X-Request-ID header to be set")
	}
}
