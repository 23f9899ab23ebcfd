package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/lox/cityweather/internal/lookup"
)

type nopLooker struct{}

func (nopLooker) Lookup(ctx context.Context, city string) lookup.Outcome {
	return lookup.Outcome{Kind: lookup.KindFailure}
}

func TestSessions_ReuseAndEvict(t *testing.T) {
	now := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)
	s := newSessions(nopLooker{}, 10*time.Minute)
	s.now = func() time.Time { return now }

	rec := httptest.NewRecorder()
	first := s.widgetFor(rec, httptest.NewRequest("GET", "/", nil))
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != sessionCookie {
		t.Fatalf("cookies = %+v", cookies)
	}

	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(cookies[0])
	if got := s.widgetFor(httptest.NewRecorder(), req); got != first {
		t.Error("expected the same widget for the same session")
	}

	now = now.Add(11 * time.Minute)
	req = httptest.NewRequest("GET", "/", nil)
	req.AddCookie(cookies[0])
	if got := s.widgetFor(httptest.NewRecorder(), req); got == first {
		t.Error("expected idle session to be evicted")
	}
	if s.len() != 1 {
		t.Errorf("len = %d, want 1", s.len())
	}
}

func TestSessions_UnknownCookieGetsNewSession(t *testing.T) {
	s := newSessions(nopLooker{}, time.Minute)
	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookie, Value: "forged"})
	rec := httptest.NewRecorder()
	s.widgetFor(rec, req)

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Value == "forged" {
		t.Errorf("expected a fresh session id, got %+v", cookies)
	}
}

func TestSessions_ExistingDoesNotCreate(t *testing.T) {
	s := newSessions(nopLooker{}, time.Minute)
	if _, ok := s.existing(httptest.NewRequest("GET", "/", nil)); ok {
		t.Error("expected no session without a cookie")
	}
	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookie, Value: "forged"})
	if _, ok := s.existing(req); ok {
		t.Error("expected no session for an unknown cookie")
	}
	if s.len() != 0 {
		t.Errorf("len = %d, want 0", s.len())
	}

	rec := httptest.NewRecorder()
	created := s.widgetFor(rec, httptest.NewRequest("POST", "/lookup", nil))
	req = httptest.NewRequest("GET", "/", nil)
	req.AddCookie(rec.Result().Cookies()[0])
	if got, ok := s.existing(req); !ok || got != created {
		t.Error("expected the created session to be found")
	}
}

func TestSessions_CapEvictsLeastRecentlySeen(t *testing.T) {
	now := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)
	s := newSessions(nopLooker{}, time.Hour)
	s.max = 2
	s.now = func() time.Time { return now }

	newSession := func() *http.Cookie {
		rec := httptest.NewRecorder()
		s.widgetFor(rec, httptest.NewRequest("POST", "/lookup", nil))
		now = now.Add(time.Second)
		return rec.Result().Cookies()[0]
	}

	first := newSession()
	second := newSession()

	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(first)
	if _, ok := s.existing(req); !ok {
		t.Fatal("expected first session")
	}
	now = now.Add(time.Second)

	newSession()
	if s.len() != 2 {
		t.Errorf("len = %d, want 2", s.len())
	}

	req = httptest.NewRequest("GET", "/", nil)
	req.AddCookie(second)
	if _, ok := s.existing(req); ok {
		t.Error("expected least recently seen session to be evicted")
	}
	req = httptest.NewRequest("GET", "/", nil)
	req.AddCookie(first)
	if _, ok := s.existing(req); !ok {
		t.Error("expected recently used session to survive")
	}
}
