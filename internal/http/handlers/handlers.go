// Package handlers wires the guest and admin endpoints to the services.
//
// Handlers are transport-thin: they bind input, call a service, and map
// the service's sentinel errors onto redirects, notices or error envelopes.
// Rendering is left to the client; every endpoint answers with JSON or a
// redirect.
package handlers

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-wedding-rsvp/internal/domain"
	"github.com/tbourn/go-wedding-rsvp/internal/repo"
	"github.com/tbourn/go-wedding-rsvp/internal/services"
)

// AuthService logs guests in by invitation code.
type AuthService interface {
	Authenticate(ctx context.Context, rawCode, clientIP string) (string, error)
	LockoutStatus(ctx context.Context, clientIP string) services.Lockout
}

// WorkflowService runs the guest RSVP flow.
type WorkflowService interface {
	LoadForSession(ctx context.Context, code string) (*domain.Guest, error)
	SubmitRSVP(ctx context.Context, code string, in services.RSVPInput) (*domain.Guest, error)
}

// AdminService backs the admin area.
type AdminService interface {
	Overview(ctx context.Context) (*services.Overview, error)
	Stats(ctx context.Context) (repo.DirectoryCounts, *time.Time, error)
	LoadForEdit(ctx context.Context, code string) (*domain.Guest, error)
	ApplyEdit(ctx context.Context, code string, in services.GuestInput) (*domain.Guest, error)
	CreateGuest(ctx context.Context, in services.GuestInput) (string, error)
}

// Sessions stores the invite code of a logged-in guest on the client.
type Sessions interface {
	Issue(c *gin.Context, code string) error
	Read(c *gin.Context) (code string, ok bool)
	Clear(c *gin.Context)
}

// Handlers groups the HTTP endpoints.
type Handlers struct {
	auth     AuthService
	workflow WorkflowService
	admin    AdminService
	sessions Sessions
}

// New returns Handlers bound to the given services.
func New(auth AuthService, workflow WorkflowService, admin AdminService, sessions Sessions) *Handlers {
	return &Handlers{auth: auth, workflow: workflow, admin: admin, sessions: sessions}
}

// optional dereferences p, mapping nil to "".
func optional(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
