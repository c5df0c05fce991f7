// Guest RSVP endpoints. All require the session cookie set by
// Authenticate.
//
//   - GET  /rsvp/form    the guest's current record
//   - GET  /rsvp/submit  stray GETs are sent home
//   - POST /rsvp/submit  store an answer
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-wedding-rsvp/internal/domain"
	"github.com/tbourn/go-wedding-rsvp/internal/services"
)

// FormResponse pre-fills the RSVP form.
type FormResponse struct {
	InviteCode                 string `json:"invite_code" example:"ABCD-EFGH-IJKL"`
	Name                       string `json:"name" example:"Alex Doe"`
	Decision                   string `json:"decision" example:"no_reply"`
	GuestDietaryRestrictions   string `json:"guest_dietary_restrictions" example:"vegan"`
	PlusOneAllowed             bool   `json:"plus_one_allowed" example:"true"`
	PlusOneName                string `json:"plus_one_name,omitempty" example:"Sam"`
	PlusOneDietaryRestrictions string `json:"plus_one_dietary_restrictions,omitempty"`
}

// ThankYouResponse acknowledges a submission. Every field is empty when the
// session did not resolve to a guest.
type ThankYouResponse struct {
	Name                       string `json:"name" example:"Alex Doe"`
	Decision                   string `json:"decision,omitempty" example:"accepted"`
	GuestDietaryRestrictions   string `json:"guest_dietary_restrictions,omitempty" example:"vegan"`
	PlusOneAllowed             bool   `json:"plus_one_allowed"`
	PlusOneName                string `json:"plus_one_name,omitempty" example:"Sam"`
	PlusOneDietaryRestrictions string `json:"plus_one_dietary_restrictions,omitempty"`
}

func formBody(g *domain.Guest) FormResponse {
	resp := FormResponse{
		InviteCode:               services.FormatCode(g.ID),
		Name:                     g.GuestName,
		Decision:                 g.Decision.String(),
		GuestDietaryRestrictions: optional(g.GuestDietaryRestrictions),
		PlusOneAllowed:           g.PlusOneAllowed,
	}
	if g.PlusOneAllowed {
		resp.PlusOneName = optional(g.PlusOneName)
		resp.PlusOneDietaryRestrictions = optional(g.PlusOneDietaryRestrictions)
	}
	return resp
}

func thankYouBody(g *domain.Guest) ThankYouResponse {
	resp := ThankYouResponse{
		Name:                     g.GuestName,
		Decision:                 g.Decision.String(),
		GuestDietaryRestrictions: optional(g.GuestDietaryRestrictions),
		PlusOneAllowed:           g.PlusOneAllowed,
	}
	if g.PlusOneAllowed {
		resp.PlusOneName = optional(g.PlusOneName)
		resp.PlusOneDietaryRestrictions = optional(g.PlusOneDietaryRestrictions)
	}
	return resp
}

func slowDown(c *gin.Context) {
	fail(c, http.StatusTooManyRequests, ErrCodeSlowDown, "too many attempts for this invitation")
}

func directoryDown(c *gin.Context) {
	fail(c, http.StatusServiceUnavailable, ErrCodeDirectoryUnavailable, "guest list unavailable, try again later")
}

// Form godoc
// @ID          rsvpForm
// @Summary     Load the RSVP form
// @Description Returns the logged-in guest's record. Clients without a valid session are sent to the entry page.
// @Tags        Guest
// @Produce     json
// @Success     200  {object} handlers.FormResponse
// @Success     303  {string} string "Location: /rsvp (no session)"
// @Failure     403  {object} handlers.LockoutResponse "Client is locked out"
// @Failure     429  {object} handlers.ErrorResponse "Too many attempts for this invitation"
// @Failure     503  {object} handlers.ErrorResponse "Guest list unavailable"
// @Router      /rsvp/form [get]
func (h *Handlers) Form(c *gin.Context) {
	if h.abortIfLockedOut(c) {
		return
	}
	code, found := h.sessions.Read(c)
	if !found {
		seeOther(c, pathEntry)
		return
	}

	g, err := h.workflow.LoadForSession(c.Request.Context(), code)
	switch {
	case err == nil:
		ok(c, http.StatusOK, formBody(g))
	case errors.Is(err, services.ErrThrottled):
		slowDown(c)
	case errors.Is(err, services.ErrMalformedSession), errors.Is(err, services.ErrGuestNotFound):
		h.sessions.Clear(c)
		seeOther(c, pathEntry)
	default:
		directoryDown(c)
	}
}

// SubmitRedirect godoc
// @ID          rsvpSubmitGet
// @Summary     Redirect stray GETs of the submit URL
// @Tags        Guest
// @Success     307  {string} string "Location: /"
// @Router      /rsvp/submit [get]
func (h *Handlers) SubmitRedirect(c *gin.Context) {
	c.Redirect(http.StatusTemporaryRedirect, "/")
}

// Submit godoc
// @ID          rsvpSubmit
// @Summary     Submit an RSVP
// @Description Stores the guest's answer. accepted="yes" accepts, anything else declines. Plus-one fields are ignored unless the invitation allows a plus-one. Without a valid session the acknowledgment is empty.
// @Tags        Guest
// @Accept      x-www-form-urlencoded,json
// @Produce     json
// @Param       accepted                       formData  string  false  "yes to accept"  example(yes)
// @Param       guest_dietary_restrictions     formData  string  false  "Guest dietary restrictions"
// @Param       plus_one_name                  formData  string  false  "Plus-one name"
// @Param       plus_one_dietary_restrictions  formData  string  false  "Plus-one dietary restrictions"
// @Success     200  {object} handlers.ThankYouResponse
// @Failure     400  {object} handlers.ErrorResponse "Unreadable body"
// @Failure     429  {object} handlers.ErrorResponse "Too many attempts for this invitation"
// @Failure     503  {object} handlers.ErrorResponse "Guest list unavailable"
// @Router      /rsvp/submit [post]
func (h *Handlers) Submit(c *gin.Context) {
	var in services.RSVPInput
	if err := c.ShouldBind(&in); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid request body")
		return
	}
	code, found := h.sessions.Read(c)
	if !found {
		ok(c, http.StatusOK, ThankYouResponse{})
		return
	}

	g, err := h.workflow.SubmitRSVP(c.Request.Context(), code, in)
	switch {
	case err == nil:
		ok(c, http.StatusOK, thankYouBody(g))
	case errors.Is(err, services.ErrThrottled):
		slowDown(c)
	case errors.Is(err, services.ErrMalformedSession), errors.Is(err, services.ErrGuestNotFound):
		ok(c, http.StatusOK, ThankYouResponse{})
	default:
		directoryDown(c)
	}
}
