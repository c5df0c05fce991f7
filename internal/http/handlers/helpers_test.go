package handlers

import (
	"context"
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

	"github.com/tbourn/go-wedding-rsvp/internal/domain"
	"github.com/tbourn/go-wedding-rsvp/internal/notify"
	"github.com/tbourn/go-wedding-rsvp/internal/ratelimit"
	"github.com/tbourn/go-wedding-rsvp/internal/services"
	"github.com/tbourn/go-wedding-rsvp/internal/session"
)

const testCode = "ABCDEFGHIJKL"

type fixture struct {
	t      *testing.T
	db     *gorm.DB
	router *gin.Engine
	sent   []domain.Guest
}

func newDB(t *testing.T, migrate bool) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:handlers_%s?mode=memory&cache=shared", uuid.NewString())
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
	if migrate {
		if err := db.AutoMigrate(&domain.Guest{}, &domain.RateCounter{}); err != nil {
			t.Fatalf("migrate: %v", err)
		}
	}
	return db
}

// newFixture wires real services over an in-memory database, mounted the
// same way the router mounts them.
func newFixture(t *testing.T, migrate bool) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	f := &fixture{t: t, db: newDB(t, migrate)}
	store := ratelimit.NewSQLStore(f.db)
	ipLimiter := ratelimit.New(store, "ip", "rsvp:ip:", 5, 24*time.Hour)
	codeLimiter := ratelimit.New(store, "code", "rsvp:code:", 5, 24*time.Hour)

	n := notify.NotifierFunc(func(_ context.Context, g *domain.Guest) error {
		f.sent = append(f.sent, *g)
		return nil
	})
	h := New(
		&services.AuthService{DB: f.db, IPLimiter: ipLimiter},
		services.NewWorkflowService(f.db, codeLimiter, n, false),
		services.NewAdminService(f.db),
		session.New(session.Options{HashKey: []byte("0123456789abcdef0123456789abcdef"), TTL: time.Hour}),
	)

	r := gin.New()
	r.GET("/rsvp", h.Entry)
	r.GET("/rsvp/lockout", h.Lockout)
	r.POST("/rsvp/authenticate", h.Authenticate)
	r.GET("/rsvp/form", h.Form)
	r.GET("/rsvp/submit", h.SubmitRedirect)
	r.POST("/rsvp/submit", h.Submit)
	r.GET("/rsvp/admin", h.AdminOverview)
	r.GET("/rsvp/admin/add", h.AdminAddForm)
	r.POST("/rsvp/admin/add", h.AdminAdd)
	r.GET("/rsvp/admin/edit/:code", h.AdminEditForm)
	r.POST("/rsvp/admin/edit/:code", h.AdminEdit)
	f.router = r
	return f
}

func (f *fixture) insertGuest(g domain.Guest) {
	f.t.Helper()
	if err := f.db.Create(&g).Error; err != nil {
		f.t.Fatalf("insert guest: %v", err)
	}
}

func (f *fixture) do(method, path string, body io.Reader, contentType string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	f.t.Helper()
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func (f *fixture) postForm(path string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	f.t.Helper()
	return f.do(http.MethodPost, path, strings.NewReader(form.Encode()), "application/x-www-form-urlencoded", cookies...)
}

func (f *fixture) postJSON(path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	f.t.Helper()
	return f.do(http.MethodPost, path, strings.NewReader(body), "application/json", cookies...)
}

// login authenticates code and returns the session cookie.
func (f *fixture) login(code string) *http.Cookie {
	f.t.Helper()
	w := f.postForm("/rsvp/authenticate", url.Values{"code": {code}})
	if w.Code != http.StatusSeeOther || w.Header().Get("Location") != "/rsvp/form" {
		f.t.Fatalf("login %s: %d %q", code, w.Code, w.Header().Get("Location"))
	}
	return sessionCookie(f.t, w)
}

func sessionCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == session.CookieName {
			return c
		}
	}
	t.Fatalf("no %s cookie in response", session.CookieName)
	return nil
}

func strp(s string) *string { return &s }
