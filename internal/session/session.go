// Package session binds an authenticated invite code to a browser through a
// signed, optionally encrypted cookie. Nothing is stored server side: the
// cookie carries the invite code and its own expiry, and possession of a
// valid cookie is the only authorization the guest routes require.
package session

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/securecookie"
)

// CookieName is the name of the session cookie.
const CookieName = "rsvp_session"

var (
	// ErrInvalid is returned for cookies that fail signature or decryption.
	ErrInvalid = errors.New("session: invalid token")
	// ErrExpired is returned for well-formed tokens past their expiry.
	ErrExpired = errors.New("session: expired token")
)

// Options configures a Codec.
type Options struct {
	HashKey  []byte        // HMAC key, at least 32 bytes
	BlockKey []byte        // optional AES key (16/24/32 bytes); empty disables encryption
	TTL      time.Duration // token lifetime
	Secure   bool          // set the Secure attribute
	Domain   string        // cookie domain; empty for host-only
}

type payload struct {
	Code      string `json:"code"`
	ExpiresAt int64  `json:"expires_at"`
}

// Codec issues and validates session tokens. It is safe for concurrent use.
type Codec struct {
	sc     *securecookie.SecureCookie
	opts   Options
	nowFun func() time.Time
}

// New returns a Codec for opts.
func New(opts Options) *Codec {
	var block []byte
	if len(opts.BlockKey) > 0 {
		block = opts.BlockKey
	}
	sc := securecookie.New(opts.HashKey, block)
	sc.SetSerializer(securecookie.JSONEncoder{})
	sc.MaxAge(int(opts.TTL / time.Second))
	return &Codec{sc: sc, opts: opts, nowFun: time.Now}
}

// Encode returns the opaque token for code.
func (c *Codec) Encode(code string) (string, error) {
	p := payload{Code: code, ExpiresAt: c.nowFun().Add(c.opts.TTL).Unix()}
	return c.sc.Encode(CookieName, p)
}

// Decode validates token and returns the invite code it carries.
func (c *Codec) Decode(token string) (string, error) {
	var p payload
	if err := c.sc.Decode(CookieName, token, &p); err != nil {
		return "", ErrInvalid
	}
	if p.Code == "" {
		return "", ErrInvalid
	}
	if c.nowFun().Unix() >= p.ExpiresAt {
		return "", ErrExpired
	}
	return p.Code, nil
}

// Issue sets the session cookie for code on the response.
func (c *Codec) Issue(g *gin.Context, code string) error {
	token, err := c.Encode(code)
	if err != nil {
		return err
	}
	g.SetSameSite(http.SameSiteLaxMode)
	g.SetCookie(CookieName, token, int(c.opts.TTL/time.Second), "/", c.opts.Domain, c.opts.Secure, true)
	return nil
}

// Read returns the invite code from the request's session cookie. ok is
// false when the cookie is missing, tampered with or expired.
func (c *Codec) Read(g *gin.Context) (code string, ok bool) {
	token, err := g.Cookie(CookieName)
	if err != nil || token == "" {
		return "", false
	}
	code, err = c.Decode(token)
	if err != nil {
		return "", false
	}
	return code, true
}

// Clear expires the session cookie.
func (c *Codec) Clear(g *gin.Context) {
	g.SetSameSite(http.SameSiteLaxMode)
	g.SetCookie(CookieName, "", -1, "/", c.opts.Domain, c.opts.Secure, true)
}
