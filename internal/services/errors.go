// Package services defines the business logic of the RSVP site: invite-code
// authentication, the guest RSVP workflow, and the admin editor. This file
// centralizes common service-level error values so that they can be
// consistently returned by service methods and checked by callers.
//
// Translation into user-facing messages, redirects or HTTP status codes is
// performed at the handler layer.
package services

import "errors"

var (
	// ErrThrottled indicates that the subject (client IP or invite code) has
	// tripped its abuse counter. Callers show a "slow down" or lockout notice
	// instead of an error page.
	ErrThrottled = errors.New("too many attempts")

	// ErrInvalidCode is returned when a submitted invitation code does not
	// match any guest. The failure has already been counted against the IP.
	ErrInvalidCode = errors.New("invalid invitation code")

	// ErrGuestNotFound indicates that a session refers to a code that is no
	// longer in the directory.
	ErrGuestNotFound = errors.New("guest not found")

	// ErrMalformedSession is returned when the session carries no code or one
	// of the wrong shape. Handlers render a neutral response.
	ErrMalformedSession = errors.New("malformed session")

	// ErrDirectoryUnavailable wraps guest directory failures. Writes never
	// proceed past one.
	ErrDirectoryUnavailable = errors.New("guest directory unavailable")

	// ErrInvalidGuest is returned when admin input fails validation (for
	// example an empty guest name).
	ErrInvalidGuest = errors.New("invalid guest")
)
