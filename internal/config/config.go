// Package config provides application configuration loaded from environment
// variables with defaults and validation. It centralizes settings such as
// server timeouts, logging, the guest directory, the abuse-control counter
// store, sessions, notification channels, and observability.
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

// CORSConfig defines Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string
}

// SecurityConfig defines security-related settings such as HSTS.
type SecurityConfig struct {
	EnableHSTS bool
	HSTSMaxAge time.Duration
}

// OTELConfig defines OpenTelemetry observability settings.
type OTELConfig struct {
	Enabled     bool    // OTEL_ENABLED
	Endpoint    string  // OTEL_EXPORTER_OTLP_ENDPOINT (e.g. "otel:4317")
	Insecure    bool    // OTEL_EXPORTER_OTLP_INSECURE (true if no TLS)
	ServiceName string  // OTEL_SERVICE_NAME (e.g. "wedding-rsvp")
	SampleRatio float64 // OTEL_TRACES_SAMPLER_ARG in [0..1]
}

// LockoutConfig controls the counter-based limiters guarding login and the
// RSVP form.
type LockoutConfig struct {
	Threshold      int           // events before a subject is throttled
	Window         time.Duration // sliding TTL refreshed on every event
	CountFormViews bool          // record form views, not only submissions
}

// SessionConfig controls the signed invite-code cookie.
type SessionConfig struct {
	HashKey      string
	BlockKey     string
	TTL          time.Duration
	CookieSecure bool
	CookieDomain string
}

// AdminConfig holds the basic-auth credentials for the admin area.
type AdminConfig struct {
	User     string
	Password string
}

// NotifyConfig lists the operator notification channels. Channels with an
// empty host/URL are disabled.
type NotifyConfig struct {
	SMTPHost string
	SMTPPort int
	SMTPUser string
	SMTPPass string
	From     string
	To       []string
	ReplyTo  string
	Timeout  time.Duration

	NATSURL     string
	NATSSubject string
}

// Config holds all configuration values for the application.
type Config struct {
	// Server
	Port              string        // just the number
	ReadTimeout       time.Duration // e.g. 15s
	ReadHeaderTimeout time.Duration // e.g. 10s
	WriteTimeout      time.Duration // e.g. 20s
	IdleTimeout       time.Duration // e.g. 60s
	MaxHeaderBytes    int           // bytes
	GinMode           string        // debug|release|test
	TrustedProxies    []string      // CIDRs/IPs allowed to set X-Forwarded-For

	// Logging / Docs
	LogLevel       string // debug|info|warn|error|fatal|panic
	LogPretty      bool   // pretty console logs in dev
	SwaggerEnabled bool   // enable Swagger UI route

	// Guest directory
	DBDriver string // sqlite|postgres|mysql
	DBDSN    string

	// Counter store
	CounterBackend string // redis|sql
	RedisURL       string

	// Coarse token bucket in front of every route
	RateRPS   float64 // tokens per second (>= 0)
	RateBurst int     // bucket size (>= 1)

	Lockout LockoutConfig
	Session SessionConfig
	Admin   AdminConfig
	Notify  NotifyConfig

	// Web protection
	CORS     CORSConfig
	Security SecurityConfig

	// Observability
	OTEL OTELConfig
}

// MustLoad loads the configuration and panics if validation fails.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads configuration from environment variables,
// applies defaults, normalizes values, and validates the result.
func Load() (Config, error) {
	cfg := Config{
		// Server
		Port:              getenv("PORT", "8080"),
		ReadTimeout:       getdur("READ_TIMEOUT", 15*time.Second),
		ReadHeaderTimeout: getdur("READ_HEADER_TIMEOUT", 10*time.Second),
		WriteTimeout:      getdur("WRITE_TIMEOUT", 20*time.Second),
		IdleTimeout:       getdur("IDLE_TIMEOUT", 60*time.Second),
		MaxHeaderBytes:    getint("MAX_HEADER_BYTES", 1<<20),
		GinMode:           strings.ToLower(getenv("GIN_MODE", "release")),
		TrustedProxies:    splitCSV(getenv("TRUSTED_PROXIES", "")),

		// Logging / Docs
		LogLevel:       strings.ToLower(getenv("LOG_LEVEL", "info")),
		LogPretty:      getbool("LOG_PRETTY", false),
		SwaggerEnabled: getbool("SWAGGER_ENABLED", false),

		// Guest directory
		DBDriver: strings.ToLower(getenv("DB_DRIVER", "sqlite")),
		DBDSN:    getenv("DB_DSN", "rsvp.db"),

		// Counter store
		CounterBackend: strings.ToLower(getenv("COUNTER_BACKEND", "sql")),
		RedisURL:       getenv("REDIS_URL", "redis://localhost:6379/0"),

		// Rate limiting
		RateRPS:   getfloat("RATE_RPS", 5.0),
		RateBurst: getint("RATE_BURST", 20),

		Lockout: LockoutConfig{
			Threshold:      getint("LOCKOUT_THRESHOLD", 5),
			Window:         getdur("LOCKOUT_WINDOW", 24*time.Hour),
			CountFormViews: getbool("COUNT_FORM_VIEWS", false),
		},
		Session: SessionConfig{
			HashKey:      getenv("SESSION_HASH_KEY", ""),
			BlockKey:     getenv("SESSION_BLOCK_KEY", ""),
			TTL:          getdur("SESSION_TTL", 7*24*time.Hour),
			CookieSecure: getbool("COOKIE_SECURE", false),
			CookieDomain: getenv("COOKIE_DOMAIN", ""),
		},
		Admin: AdminConfig{
			User:     getenv("ADMIN_USER", "admin"),
			Password: getenv("ADMIN_PASSWORD", ""),
		},
		Notify: NotifyConfig{
			SMTPHost:    getenv("SMTP_HOST", ""),
			SMTPPort:    getint("SMTP_PORT", 587),
			SMTPUser:    getenv("SMTP_USER", ""),
			SMTPPass:    getenv("SMTP_PASS", ""),
			From:        getenv("NOTIFY_FROM", ""),
			To:          splitCSV(getenv("NOTIFY_TO", "")),
			ReplyTo:     getenv("NOTIFY_REPLY_TO", ""),
			Timeout:     getdur("NOTIFY_TIMEOUT", 30*time.Second),
			NATSURL:     getenv("NATS_URL", ""),
			NATSSubject: getenv("NATS_SUBJECT", "rsvp.submitted"),
		},

		// Web protection
		CORS: CORSConfig{
			AllowedOrigins: splitCSV(getenv("CORS_ALLOWED_ORIGINS", "")),
		},
		Security: SecurityConfig{
			EnableHSTS: getbool("ENABLE_HSTS", false),
			HSTSMaxAge: getdur("HSTS_MAX_AGE", 180*24*time.Hour),
		},

		// Observability (OpenTelemetry)
		OTEL: OTELConfig{
			Enabled:     getbool("OTEL_ENABLED", false),
			Endpoint:    getenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			Insecure:    getbool("OTEL_EXPORTER_OTLP_INSECURE", true),
			ServiceName: getenv("OTEL_SERVICE_NAME", "wedding-rsvp"),
			SampleRatio: getfloat("OTEL_TRACES_SAMPLER_ARG", 1.0),
		},
	}

	// --- normalization ---
	if cfg.LogLevel == "warning" {
		cfg.LogLevel = "warn"
	}
	switch cfg.GinMode {
	case "debug", "release", "test":
	default:
		cfg.GinMode = "release"
	}
	if cfg.DBDriver == "postgresql" || cfg.DBDriver == "pg" {
		cfg.DBDriver = "postgres"
	}

	// --- validation ---
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error", "fatal", "panic":
	default:
		return cfg, errors.New("LOG_LEVEL must be one of: debug, info, warn, error, fatal, panic")
	}
	if strings.TrimSpace(cfg.Port) == "" {
		return cfg, errors.New("PORT must not be empty")
	}
	if cfg.ReadTimeout <= 0 || cfg.ReadHeaderTimeout <= 0 || cfg.WriteTimeout <= 0 || cfg.IdleTimeout <= 0 {
		return cfg, errors.New("timeouts must be positive durations")
	}
	if cfg.MaxHeaderBytes <= 0 {
		return cfg, errors.New("MAX_HEADER_BYTES must be > 0")
	}
	switch cfg.DBDriver {
	case "sqlite", "postgres", "mysql":
	default:
		return cfg, errors.New("DB_DRIVER must be one of: sqlite, postgres, mysql")
	}
	if strings.TrimSpace(cfg.DBDSN) == "" {
		return cfg, errors.New("DB_DSN must not be empty")
	}
	switch cfg.CounterBackend {
	case "sql":
	case "redis":
		if strings.TrimSpace(cfg.RedisURL) == "" {
			return cfg, errors.New("REDIS_URL must be set when COUNTER_BACKEND=redis")
		}
	default:
		return cfg, errors.New("COUNTER_BACKEND must be one of: redis, sql")
	}
	if cfg.RateRPS < 0 {
		return cfg, errors.New("RATE_RPS must be >= 0")
	}
	if cfg.RateBurst < 1 {
		return cfg, errors.New("RATE_BURST must be >= 1")
	}
	if cfg.Lockout.Threshold < 1 {
		return cfg, errors.New("LOCKOUT_THRESHOLD must be >= 1")
	}
	if cfg.Lockout.Window < time.Second {
		return cfg, errors.New("LOCKOUT_WINDOW must be at least 1s")
	}
	if len(cfg.Session.HashKey) < 32 {
		return cfg, errors.New("SESSION_HASH_KEY must be at least 32 bytes")
	}
	switch len(cfg.Session.BlockKey) {
	case 0, 16, 24, 32:
	default:
		return cfg, errors.New("SESSION_BLOCK_KEY must be 16, 24 or 32 bytes")
	}
	if cfg.Session.TTL <= 0 {
		return cfg, errors.New("SESSION_TTL must be > 0")
	}
	if cfg.Notify.SMTPHost != "" && (cfg.Notify.From == "" || len(cfg.Notify.To) == 0) {
		return cfg, errors.New("NOTIFY_FROM and NOTIFY_TO are required when SMTP_HOST is set")
	}
	if cfg.Notify.Timeout <= 0 {
		return cfg, errors.New("NOTIFY_TIMEOUT must be > 0")
	}
	if cfg.Security.HSTSMaxAge < 0 {
		return cfg, errors.New("HSTS_MAX_AGE must be >= 0")
	}
	if cfg.OTEL.SampleRatio < 0 || cfg.OTEL.SampleRatio > 1 {
		return cfg, errors.New("OTEL_TRACES_SAMPLER_ARG must be in [0,1]")
	}

	return cfg, nil
}

// ---- helpers (no external deps) ----

func getenv(k, def string) string {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		return v
	}
	return def
}

func getfloat(k string, def float64) float64 {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getint(k string, def int) int {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getbool(k string, def bool) bool {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "yes", "y", "on":
			return true
		case "0", "false", "no", "n", "off":
			return false
		}
	}
	return def
}

func getdur(k string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		t := strings.TrimSpace(p)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}
