package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/tbourn/go-wedding-rsvp/internal/domain"
	"github.com/tbourn/go-wedding-rsvp/internal/services"
)

func TestAdminOverview_ETag(t *testing.T) {
	f := newFixture(t, true)
	f.insertGuest(domain.Guest{ID: "AAAAAAAAAAA1", GuestName: "Bo", Decision: domain.Accepted, PlusOneAllowed: true, PlusOneName: strp("Kim")})
	f.insertGuest(domain.Guest{ID: "AAAAAAAAAAA2", GuestName: "Al", Decision: domain.Accepted})
	f.insertGuest(domain.Guest{ID: "AAAAAAAAAAA3", GuestName: "Cy"})

	w := f.do(http.MethodGet, "/rsvp/admin", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("overview -> %d", w.Code)
	}
	etag := w.Header().Get("ETag")
	if etag == "" {
		t.Fatalf("expected ETag")
	}
	var ov services.Overview
	if err := json.Unmarshal(w.Body.Bytes(), &ov); err != nil {
		t.Fatalf("json: %v", err)
	}
	if len(ov.Accepted) != 2 || ov.Accepted[0].GuestName != "Al" || len(ov.NoReply) != 1 || ov.PlusOnes != 1 {
		t.Fatalf("unexpected overview: %+v", ov)
	}

	w = f.do(http.MethodGet, "/rsvp/admin", nil, "")
	if w.Header().Get("ETag") != etag {
		t.Fatalf("ETag should be stable without changes")
	}

	f.insertGuest(domain.Guest{ID: "AAAAAAAAAAA4", GuestName: "Di"})
	w = f.do(http.MethodGet, "/rsvp/admin", nil, "")
	if w.Header().Get("ETag") == etag {
		t.Fatalf("ETag should change after an insert")
	}
}

func TestAdminOverview_NotModified(t *testing.T) {
	f := newFixture(t, true)
	f.insertGuest(domain.Guest{ID: testCode, GuestName: "Alex"})

	etag := f.do(http.MethodGet, "/rsvp/admin", nil, "").Header().Get("ETag")

	req := httptest.NewRequest(http.MethodGet, "/rsvp/admin", nil)
	req.Header.Set("If-None-Match", etag)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	if w.Code != http.StatusNotModified {
		t.Fatalf("expected 304, got %d", w.Code)
	}
}

func TestAdminOverview_DirectoryDown(t *testing.T) {
	f := newFixture(t, false)
	if w := f.do(http.MethodGet, "/rsvp/admin", nil, ""); w.Code != http.StatusServiceUnavailable {
		t.Fatalf("overview -> %d", w.Code)
	}
}

func TestAdminAdd_FormAndJSON(t *testing.T) {
	f := newFixture(t, true)

	w := f.postForm("/rsvp/admin/add", url.Values{
		"guest_name":       {"Alex Doe"},
		"accepted":         {"yes"},
		"plus_one_allowed": {"on"},
		"plus_one_name":    {""},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("add -> %d %s", w.Code, w.Body.String())
	}
	var res AdminGuestResult
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatalf("json: %v", err)
	}
	if !services.ValidCode(res.InviteCode) || res.Accepted != "yes" || res.Decision != "accepted" || !res.PlusOneAllowed || res.PlusOneName != "" {
		t.Fatalf("unexpected result: %+v", res)
	}

	w = f.postJSON("/rsvp/admin/add", `{"guest_name":"Bo","plus_one_allowed":false}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("add json -> %d %s", w.Code, w.Body.String())
	}

	w = f.postForm("/rsvp/admin/add", url.Values{"guest_name": {"  "}})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("empty name -> %d", w.Code)
	}

	if w := f.do(http.MethodGet, "/rsvp/admin/add", nil, ""); w.Code != http.StatusOK {
		t.Fatalf("add form -> %d", w.Code)
	}
}

func TestAdminEdit(t *testing.T) {
	f := newFixture(t, true)
	f.insertGuest(domain.Guest{ID: testCode, GuestName: "Alex", Decision: domain.Accepted, PlusOneAllowed: true, PlusOneName: strp("Sam")})

	w := f.do(http.MethodGet, "/rsvp/admin/edit/abcd-efgh-ijkl", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("edit form -> %d", w.Code)
	}
	var g AdminGuestResponse
	if err := json.Unmarshal(w.Body.Bytes(), &g); err != nil {
		t.Fatalf("json: %v", err)
	}
	if g.ID != testCode || g.FormattedCode != "ABCD-EFGH-IJKL" || g.PlusOneName == nil {
		t.Fatalf("unexpected guest: %+v", g)
	}

	// Unchecked plus-one box: field absent from the form.
	w = f.postForm("/rsvp/admin/edit/"+testCode, url.Values{
		"guest_name":    {"Alex Doe"},
		"accepted":      {"maybe"},
		"plus_one_name": {"Sam"},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("edit -> %d %s", w.Code, w.Body.String())
	}
	var res AdminGuestResult
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatalf("json: %v", err)
	}
	if res.Accepted != "maybe" || res.Decision != "no_reply" || res.PlusOneAllowed || res.PlusOneName != "" || res.Name != "Alex Doe" {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestAdminEdit_Errors(t *testing.T) {
	f := newFixture(t, true)

	if w := f.do(http.MethodGet, "/rsvp/admin/edit/ZZZZZZZZZZZZ", nil, ""); w.Code != http.StatusNotFound {
		t.Fatalf("unknown edit form -> %d", w.Code)
	}
	if w := f.postForm("/rsvp/admin/edit/ZZZZZZZZZZZZ", url.Values{"guest_name": {"X"}}); w.Code != http.StatusNotFound {
		t.Fatalf("unknown edit -> %d", w.Code)
	}
	if w := f.postJSON("/rsvp/admin/edit/ZZZZZZZZZZZZ", `{"guest_name":`); w.Code != http.StatusBadRequest {
		t.Fatalf("broken JSON -> %d", w.Code)
	}
}

func TestChecked(t *testing.T) {
	for v, want := range map[string]bool{"on": true, "TRUE": true, "1": true, "yes": true, "": false, "off": false} {
		if got := checked(v); got != want {
			t.Errorf("checked(%q) = %v; want %v", v, got, want)
		}
	}
}
