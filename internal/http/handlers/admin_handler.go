// Admin endpoints, mounted behind HTTP Basic auth.
//
//   - GET  /rsvp/admin             overview (ETag support)
//   - GET  /rsvp/admin/add         blank guest form
//   - POST /rsvp/admin/add         create a guest
//   - GET  /rsvp/admin/edit/{code} load a guest
//   - POST /rsvp/admin/edit/{code} overwrite a guest
package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"github.com/tbourn/go-wedding-rsvp/internal/domain"
	"github.com/tbourn/go-wedding-rsvp/internal/services"
)

// AdminGuestResponse is a full guest record plus its printable code.
type AdminGuestResponse struct {
	domain.Guest
	FormattedCode string `json:"formatted_code" example:"ABCD-EFGH-IJKL"`
}

// AdminGuestResult echoes an edit or create.
type AdminGuestResult struct {
	InviteCode string `json:"invite_code" example:"ABCDEFGHIJKL"`
	// Accepted is the submitted answer as sent ("yes", "no" or other).
	Accepted                   string `json:"accepted" example:"yes"`
	Name                       string `json:"name" example:"Alex Doe"`
	Decision                   string `json:"decision" example:"accepted"`
	GuestDietaryRestrictions   string `json:"guest_dietary_restrictions,omitempty"`
	PlusOneAllowed             bool   `json:"plus_one_allowed"`
	PlusOneName                string `json:"plus_one_name,omitempty"`
	PlusOneDietaryRestrictions string `json:"plus_one_dietary_restrictions,omitempty"`
}

func guestResult(g *domain.Guest, accepted string) AdminGuestResult {
	return AdminGuestResult{
		InviteCode:                 g.ID,
		Accepted:                   accepted,
		Name:                       g.GuestName,
		Decision:                   g.Decision.String(),
		GuestDietaryRestrictions:   optional(g.GuestDietaryRestrictions),
		PlusOneAllowed:             g.PlusOneAllowed,
		PlusOneName:                optional(g.PlusOneName),
		PlusOneDietaryRestrictions: optional(g.PlusOneDietaryRestrictions),
	}
}

// checked interprets an HTML checkbox value.
func checked(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "on", "true", "1", "yes":
		return true
	}
	return false
}

// bindGuestInput reads a guest from JSON or from an HTML form, where the
// plus-one checkbox arrives as "on" or not at all.
func bindGuestInput(c *gin.Context) (services.GuestInput, error) {
	var in services.GuestInput
	if c.ContentType() == binding.MIMEJSON {
		err := c.ShouldBindJSON(&in)
		return in, err
	}
	if err := c.Request.ParseForm(); err != nil {
		return in, err
	}
	in = services.GuestInput{
		GuestName:                  c.PostForm("guest_name"),
		Accepted:                   c.PostForm("accepted"),
		GuestDietaryRestrictions:   c.PostForm("guest_dietary_restrictions"),
		PlusOneAllowed:             checked(c.PostForm("plus_one_allowed")),
		PlusOneName:                c.PostForm("plus_one_name"),
		PlusOneDietaryRestrictions: c.PostForm("plus_one_dietary_restrictions"),
	}
	return in, nil
}

func (h *Handlers) adminFailed(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrGuestNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "guest not found")
	case errors.Is(err, services.ErrInvalidGuest):
		fail(c, http.StatusBadRequest, ErrCodeInvalidGuest, "guest name is required")
	case errors.Is(err, services.ErrCodeSpaceExhausted):
		fail(c, http.StatusInternalServerError, ErrCodeCreateFailed, "could not allocate an invitation code")
	default:
		directoryDown(c)
	}
}

// AdminOverview godoc
// @ID          adminOverview
// @Summary     Guest overview
// @Description Guests grouped by decision (ordered by name), the confirmed plus-one count and per-decision totals. Supports a weak ETag via If-None-Match.
// @Tags        Admin
// @Produce     json
// @Security    BasicAuth
// @Param       If-None-Match  header  string  false  "Return 304 if ETag matches"
// @Header      200  {string} ETag "Weak ETag for the current directory state"
// @Success     200  {object} services.Overview
// @Success     304  {string} string "Not Modified"
// @Failure     503  {object} handlers.ErrorResponse "Guest list unavailable"
// @Router      /rsvp/admin [get]
func (h *Handlers) AdminOverview(c *gin.Context) {
	ctx := c.Request.Context()

	if counts, last, err := h.admin.Stats(ctx); err == nil {
		var ts int64
		if last != nil {
			ts = last.UnixNano()
		}
		etag := fmt.Sprintf(`W/"guests:%d:%d:%d:%d:%d"`,
			counts.Total, counts.Accepted, counts.Declined, counts.NoReply, ts)
		c.Header("ETag", etag)
		if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
			c.Status(http.StatusNotModified)
			return
		}
	}

	ov, err := h.admin.Overview(ctx)
	if err != nil {
		directoryDown(c)
		return
	}
	ok(c, http.StatusOK, ov)
}

// AdminAddForm godoc
// @ID          adminAddForm
// @Summary     Blank guest form
// @Tags        Admin
// @Produce     json
// @Security    BasicAuth
// @Success     200  {object} services.GuestInput
// @Router      /rsvp/admin/add [get]
func (h *Handlers) AdminAddForm(c *gin.Context) {
	ok(c, http.StatusOK, services.GuestInput{})
}

// AdminAdd godoc
// @ID          adminAdd
// @Summary     Create a guest
// @Description Creates a guest under a fresh, collision-checked invitation code. accepted is "yes", "no" or anything else for no reply.
// @Tags        Admin
// @Accept      x-www-form-urlencoded,json
// @Produce     json
// @Security    BasicAuth
// @Param       body  body  services.GuestInput  true  "Guest"
// @Success     201  {object} handlers.AdminGuestResult
// @Failure     400  {object} handlers.ErrorResponse "Invalid guest"
// @Failure     500  {object} handlers.ErrorResponse "No free invitation code"
// @Failure     503  {object} handlers.ErrorResponse "Guest list unavailable"
// @Router      /rsvp/admin/add [post]
func (h *Handlers) AdminAdd(c *gin.Context) {
	in, err := bindGuestInput(c)
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid request body")
		return
	}
	code, err := h.admin.CreateGuest(c.Request.Context(), in)
	if err != nil {
		h.adminFailed(c, err)
		return
	}
	g, err := h.admin.LoadForEdit(c.Request.Context(), code)
	if err != nil {
		h.adminFailed(c, err)
		return
	}
	ok(c, http.StatusCreated, guestResult(g, in.Accepted))
}

// AdminEditForm godoc
// @ID          adminEditForm
// @Summary     Load a guest for editing
// @Tags        Admin
// @Produce     json
// @Security    BasicAuth
// @Param       code  path  string  true  "Invitation code"  example(ABCDEFGHIJKL)
// @Success     200  {object} handlers.AdminGuestResponse
// @Failure     404  {object} handlers.ErrorResponse "Guest not found"
// @Failure     503  {object} handlers.ErrorResponse "Guest list unavailable"
// @Router      /rsvp/admin/edit/{code} [get]
func (h *Handlers) AdminEditForm(c *gin.Context) {
	g, err := h.admin.LoadForEdit(c.Request.Context(), c.Param("code"))
	if err != nil {
		h.adminFailed(c, err)
		return
	}
	ok(c, http.StatusOK, AdminGuestResponse{Guest: *g, FormattedCode: services.FormatCode(g.ID)})
}

// AdminEdit godoc
// @ID          adminEdit
// @Summary     Overwrite a guest
// @Description Admin override of every field. accepted "yes"/"no" sets the decision, anything else resets it to no reply. Unchecking plus_one_allowed clears the plus-one fields.
// @Tags        Admin
// @Accept      x-www-form-urlencoded,json
// @Produce     json
// @Security    BasicAuth
// @Param       code  path  string               true  "Invitation code"  example(ABCDEFGHIJKL)
// @Param       body  body  services.GuestInput  true  "Guest"
// @Success     200  {object} handlers.AdminGuestResult
// @Failure     400  {object} handlers.ErrorResponse "Invalid guest"
// @Failure     404  {object} handlers.ErrorResponse "Guest not found"
// @Failure     503  {object} handlers.ErrorResponse "Guest list unavailable"
// @Router      /rsvp/admin/edit/{code} [post]
func (h *Handlers) AdminEdit(c *gin.Context) {
	in, err := bindGuestInput(c)
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid request body")
		return
	}
	g, err := h.admin.ApplyEdit(c.Request.Context(), c.Param("code"), in)
	if err != nil {
		h.adminFailed(c, err)
		return
	}
	ok(c, http.StatusOK, guestResult(g, in.Accepted))
}
