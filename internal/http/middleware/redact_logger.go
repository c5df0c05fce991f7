// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements RedactingLogger, the access log. It never logs
// bodies, masks credential headers (Authorization, Cookie, Set-Cookie plus
// any configured), and scrubs invitation codes, e-mail addresses and UUIDs
// from the query string and remaining header values. An invitation code is
// a bearer credential, so it must never reach the logs in clear.
package middleware

import (
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const maxQueryLogLength = 2048

var (
	uuidRE  = regexp.MustCompile(`(?i)\b[0-9a-f]{8}-[0-9a-f]{4}-[1-5][0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}\b`)
	emailRE = regexp.MustCompile(`(?i)\b[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}\b`)
	// Invitation codes, with or without the XXXX-XXXX-XXXX grouping.
	codeRE = regexp.MustCompile(`(?i)\b[a-z0-9]{4}-?[a-z0-9]{4}-?[a-z0-9]{4}\b`)
)

// RedactOptions configures RedactingLogger. MaskHeaders adds header names
// (case-insensitive) whose values are replaced with "[REDACTED]".
type RedactOptions struct {
	MaskHeaders []string
}

// redact scrubs s. UUIDs go first so the code pattern never sees their
// 12-hex tail.
func redact(s string) string {
	if s == "" {
		return s
	}
	s = uuidRE.ReplaceAllString(s, "[REDACTED:id]")
	s = emailRE.ReplaceAllString(s, "[REDACTED:email]")
	return codeRE.ReplaceAllString(s, "[REDACTED:code]")
}

// RedactingLogger logs one line per request at info, warn (4xx) or error
// (5xx or gin errors) and attaches a request-scoped logger for handlers.
func RedactingLogger(opts RedactOptions) gin.HandlerFunc {
	masked := map[string]struct{}{
		"authorization": {},
		"cookie":        {},
		"set-cookie":    {},
	}
	for _, h := range opts.MaskHeaders {
		if h = strings.ToLower(strings.TrimSpace(h)); h != "" {
			masked[h] = struct{}{}
		}
	}

	return func(c *gin.Context) {
		start := time.Now()

		path := c.FullPath()
		if path == "" {
			path = redact(c.Request.URL.Path)
		}
		reqID := RequestIDFrom(c)
		if reqID == "" {
			reqID = truncate(c.GetHeader(requestIDHeader), maxRequestIDLength)
		}

		headers := make(map[string]string, len(c.Request.Header))
		for k, vv := range c.Request.Header {
			if _, ok := masked[strings.ToLower(k)]; ok {
				headers[k] = "[REDACTED]"
				continue
			}
			headers[k] = redact(strings.Join(vv, ", "))
		}

		scoped := log.With().
			Str("request_id", reqID).
			Str("method", c.Request.Method).
			Str("path", path).
			Logger()
		c.Set(loggerKey, &scoped)

		c.Next()

		if rid := c.Writer.Header().Get(requestIDHeader); rid != "" {
			reqID = rid
		}
		status := c.Writer.Status()
		ev := log.Info()
		switch {
		case status >= 500 || len(c.Errors) > 0:
			ev = log.Error()
		case status >= 400:
			ev = log.Warn()
		}
		if len(c.Errors) > 0 {
			ev = ev.Str("errors", c.Errors.String())
		}
		ev.
			Str("request_id", reqID).
			Str("method", c.Request.Method).
			Str("path", path).
			Str("query", truncate(redact(c.Request.URL.RawQuery), maxQueryLogLength)).
			Int("status", status).
			Int("bytes", c.Writer.Size()).
			Dur("latency", time.Since(start)).
			Interface("headers", headers).
			Msg("http_request")
	}
}
