package handlers

import (
	"encoding/json"
	"net/http"
	"net/url"
	"testing"

	"github.com/tbourn/go-wedding-rsvp/internal/domain"
)

func decodeThankYou(t *testing.T, body []byte) ThankYouResponse {
	t.Helper()
	var resp ThankYouResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		t.Fatalf("json: %v", err)
	}
	return resp
}

func TestSubmit_AcceptThenDecline(t *testing.T) {
	f := newFixture(t, true)
	f.insertGuest(domain.Guest{ID: testCode, GuestName: "Alex", PlusOneAllowed: true})
	cookie := f.login(testCode)

	w := f.postForm("/rsvp/submit", url.Values{
		"accepted":                   {"yes"},
		"guest_dietary_restrictions": {"vegan"},
		"plus_one_name":              {"Sam"},
	}, cookie)
	if w.Code != http.StatusOK {
		t.Fatalf("submit -> %d %s", w.Code, w.Body.String())
	}
	got := decodeThankYou(t, w.Body.Bytes())
	if got.Name != "Alex" || got.Decision != "accepted" || got.GuestDietaryRestrictions != "vegan" || got.PlusOneName != "Sam" {
		t.Fatalf("unexpected thank-you: %+v", got)
	}

	w = f.postJSON("/rsvp/submit", `{"accepted":"no","guest_dietary_restrictions":"none"}`, cookie)
	got = decodeThankYou(t, w.Body.Bytes())
	if got.Decision != "declined" || got.GuestDietaryRestrictions != "none" {
		t.Fatalf("unexpected thank-you: %+v", got)
	}
	if len(f.sent) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(f.sent))
	}
}

func TestSubmit_NoSessionIsNeutral(t *testing.T) {
	f := newFixture(t, true)
	f.insertGuest(domain.Guest{ID: testCode, GuestName: "Alex"})

	w := f.postForm("/rsvp/submit", url.Values{"accepted": {"yes"}})
	if w.Code != http.StatusOK {
		t.Fatalf("submit -> %d", w.Code)
	}
	if got := decodeThankYou(t, w.Body.Bytes()); got != (ThankYouResponse{}) {
		t.Fatalf("expected empty acknowledgment, got %+v", got)
	}
	g := domain.Guest{}
	if err := f.db.Where("id = ?", testCode).Take(&g).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if g.Decision != domain.NoReply {
		t.Fatalf("guest must be untouched, got %v", g.Decision)
	}
}

func TestSubmit_ThrottledAfterFive(t *testing.T) {
	f := newFixture(t, true)
	f.insertGuest(domain.Guest{ID: testCode, GuestName: "Alex"})
	cookie := f.login(testCode)

	for i := 0; i < 5; i++ {
		if w := f.postForm("/rsvp/submit", url.Values{"accepted": {"yes"}}, cookie); w.Code != http.StatusOK {
			t.Fatalf("submit %d -> %d", i+1, w.Code)
		}
	}
	w := f.postForm("/rsvp/submit", url.Values{"accepted": {"no"}}, cookie)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("sixth submit -> %d", w.Code)
	}
	var er ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &er); err != nil || er.Code != ErrCodeSlowDown {
		t.Fatalf("unexpected body %s (%v)", w.Body.String(), err)
	}

	if w := f.do(http.MethodGet, "/rsvp/form", nil, "", cookie); w.Code != http.StatusTooManyRequests {
		t.Fatalf("form while throttled -> %d", w.Code)
	}
}

func TestForm_WithoutValidSessionRedirects(t *testing.T) {
	f := newFixture(t, true)

	w := f.do(http.MethodGet, "/rsvp/form", nil, "")
	if w.Code != http.StatusSeeOther || w.Header().Get("Location") != "/rsvp" {
		t.Fatalf("no cookie -> %d %q", w.Code, w.Header().Get("Location"))
	}

	forged := &http.Cookie{Name: "rsvp_session", Value: "not-a-token"}
	w = f.do(http.MethodGet, "/rsvp/form", nil, "", forged)
	if w.Code != http.StatusSeeOther {
		t.Fatalf("forged cookie -> %d", w.Code)
	}
}

func TestForm_DeletedGuestClearsSession(t *testing.T) {
	f := newFixture(t, true)
	f.insertGuest(domain.Guest{ID: testCode, GuestName: "Alex"})
	cookie := f.login(testCode)

	if err := f.db.Where("id = ?", testCode).Delete(&domain.Guest{}).Error; err != nil {
		t.Fatalf("delete: %v", err)
	}
	w := f.do(http.MethodGet, "/rsvp/form", nil, "", cookie)
	if w.Code != http.StatusSeeOther || w.Header().Get("Location") != "/rsvp" {
		t.Fatalf("form -> %d %q", w.Code, w.Header().Get("Location"))
	}
	if c := sessionCookie(t, w); c.MaxAge >= 0 {
		t.Fatalf("expected session cookie to be cleared, got %+v", c)
	}
}

func TestForm_HidesPlusOneWhenNotAllowed(t *testing.T) {
	f := newFixture(t, true)
	f.insertGuest(domain.Guest{ID: testCode, GuestName: "Alex", PlusOneName: strp("Ghost")})
	cookie := f.login(testCode)

	w := f.do(http.MethodGet, "/rsvp/form", nil, "", cookie)
	var form FormResponse
	if err := json.Unmarshal(w.Body.Bytes(), &form); err != nil {
		t.Fatalf("json: %v", err)
	}
	if form.PlusOneAllowed || form.PlusOneName != "" {
		t.Fatalf("plus-one must be hidden: %+v", form)
	}
}

func TestSubmitRedirect(t *testing.T) {
	f := newFixture(t, true)
	w := f.do(http.MethodGet, "/rsvp/submit", nil, "")
	if w.Code != http.StatusTemporaryRedirect || w.Header().Get("Location") != "/" {
		t.Fatalf("GET /rsvp/submit -> %d %q", w.Code, w.Header().Get("Location"))
	}
}
