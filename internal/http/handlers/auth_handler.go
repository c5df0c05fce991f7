// Guest login endpoints.
//
//   - GET  /rsvp               entry
//   - GET  /rsvp/lockout       lockout notice
//   - POST /rsvp/authenticate  invitation code login
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-wedding-rsvp/internal/http/middleware"
	"github.com/tbourn/go-wedding-rsvp/internal/services"
)

const (
	pathEntry   = "/rsvp"
	pathLockout = "/rsvp/lockout"
	pathForm    = "/rsvp/form"
)

// EntryResponse is the entry page payload.
type EntryResponse struct {
	// Error is "invalid_code" after a failed login attempt.
	Error string `json:"error,omitempty" example:"invalid_code"`
}

// LockoutResponse describes a client's failed-login counter.
type LockoutResponse struct {
	Code     string `json:"code,omitempty" example:"locked_out"`
	IP       string `json:"ip" example:"2001:0db8:0001:0002::/64"`
	Failures int64  `json:"failures" example:"5"`
	Locked   bool   `json:"locked" example:"true"`
}

// AuthenticateRequest carries the invitation code, as a form field or JSON.
type AuthenticateRequest struct {
	Code string `json:"code" form:"code" example:"ABCD-EFGH-IJKL"`
}

func lockoutBody(l services.Lockout) LockoutResponse {
	resp := LockoutResponse{IP: l.Subject, Failures: l.Failures, Locked: l.Locked}
	if l.Locked {
		resp.Code = ErrCodeLockedOut
	}
	return resp
}

// abortIfLockedOut answers 403 with the lockout notice when the client IP
// is over its failure limit.
func (h *Handlers) abortIfLockedOut(c *gin.Context) bool {
	l := h.auth.LockoutStatus(c.Request.Context(), c.ClientIP())
	if !l.Locked {
		return false
	}
	c.AbortWithStatusJSON(http.StatusForbidden, lockoutBody(l))
	return true
}

// Entry godoc
// @ID          entry
// @Summary     Invitation entry page
// @Description Returns the entry state, or the lockout notice when this client has too many failed logins.
// @Tags        Guest
// @Produce     json
// @Param       error  query   string  false  "Set to invalid_code after a failed login"
// @Success     200  {object} handlers.EntryResponse
// @Failure     403  {object} handlers.LockoutResponse "Client is locked out"
// @Router      /rsvp [get]
func (h *Handlers) Entry(c *gin.Context) {
	if h.abortIfLockedOut(c) {
		return
	}
	var resp EntryResponse
	if c.Query("error") == ErrCodeInvalidCode {
		resp.Error = ErrCodeInvalidCode
	}
	ok(c, http.StatusOK, resp)
}

// Lockout godoc
// @ID          lockout
// @Summary     Lockout notice
// @Description Shows the client's subject (IP or IPv6 /64) and its failed-login count.
// @Tags        Guest
// @Produce     json
// @Success     200  {object} handlers.LockoutResponse
// @Router      /rsvp/lockout [get]
func (h *Handlers) Lockout(c *gin.Context) {
	ok(c, http.StatusOK, lockoutBody(h.auth.LockoutStatus(c.Request.Context(), c.ClientIP())))
}

// Authenticate godoc
// @ID          authenticate
// @Summary     Log in with an invitation code
// @Description Hyphens and whitespace in the code are ignored. On success the session cookie is set and the client is sent to the form.
// @Tags        Guest
// @Accept      x-www-form-urlencoded,json
// @Param       code  formData  string  true  "Invitation code"  example(ABCD-EFGH-IJKL)
// @Success     303  {string} string "Location: /rsvp/form (success), /rsvp?error=invalid_code, /rsvp/lockout or /rsvp"
// @Failure     400  {object} handlers.ErrorResponse "Unreadable body"
// @Failure     500  {object} handlers.ErrorResponse "Session could not be issued"
// @Router      /rsvp/authenticate [post]
func (h *Handlers) Authenticate(c *gin.Context) {
	var req AuthenticateRequest
	if err := c.ShouldBind(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid request body")
		return
	}

	code, err := h.auth.Authenticate(c.Request.Context(), req.Code, c.ClientIP())
	switch {
	case err == nil:
	case errors.Is(err, services.ErrThrottled):
		seeOther(c, pathLockout)
		return
	case errors.Is(err, services.ErrInvalidCode):
		seeOther(c, pathEntry+"?error="+ErrCodeInvalidCode)
		return
	default:
		middleware.LoggerFrom(c).Warn().Err(err).Msg("authentication unavailable")
		seeOther(c, pathEntry)
		return
	}

	if err := h.sessions.Issue(c, code); err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not start session")
		return
	}
	seeOther(c, pathForm)
}
