package api

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lox/cityweather/internal/metrics"
	"github.com/lox/cityweather/internal/widget"
)

const (
	sessionCookie      = "cw_session"
	DefaultSessionIdle = 30 * time.Minute
	DefaultMaxSessions = 10000
)

// sessions gives every browser that has run a lookup its own widget. Widgets
// live in memory only, are dropped after sitting idle, and the least recently
// seen one is dropped when the table is full.
type sessions struct {
	looker  widget.Looker
	maxIdle time.Duration
	max     int
	now     func() time.Time

	mu      sync.Mutex
	widgets map[string]*sessionEntry
}

type sessionEntry struct {
	widget   *widget.Widget
	lastSeen time.Time
}

func newSessions(looker widget.Looker, maxIdle time.Duration) *sessions {
	return &sessions{
		looker:  looker,
		maxIdle: maxIdle,
		max:     DefaultMaxSessions,
		now:     time.Now,
		widgets: make(map[string]*sessionEntry),
	}
}

// lookupLocked returns the live entry for the request's cookie, if any.
func (s *sessions) lookupLocked(r *http.Request, now time.Time) *sessionEntry {
	s.evictLocked(now)
	c, err := r.Cookie(sessionCookie)
	if err != nil {
		return nil
	}
	e, ok := s.widgets[c.Value]
	if !ok {
		return nil
	}
	e.lastSeen = now
	return e
}

// existing returns the widget for the request's session without creating
// one.
func (s *sessions) existing(r *http.Request) (*widget.Widget, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e := s.lookupLocked(r, s.now()); e != nil {
		return e.widget, true
	}
	return nil, false
}

// widgetFor returns the widget for the request's session, creating the
// session and setting its cookie if needed.
func (s *sessions) widgetFor(w http.ResponseWriter, r *http.Request) *widget.Widget {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if e := s.lookupLocked(r, now); e != nil {
		return e.widget
	}
	if s.max > 0 && len(s.widgets) >= s.max {
		s.evictOldestLocked()
	}

	id := uuid.NewString()
	e := &sessionEntry{widget: widget.New(s.looker), lastSeen: now}
	s.widgets[id] = e
	metrics.ActiveSessions.Set(float64(len(s.widgets)))

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return e.widget
}

func (s *sessions) evictLocked(now time.Time) {
	for id, e := range s.widgets {
		if now.Sub(e.lastSeen) > s.maxIdle {
			delete(s.widgets, id)
		}
	}
	metrics.ActiveSessions.Set(float64(len(s.widgets)))
}

func (s *sessions) evictOldestLocked() {
	var oldestID string
	var oldest time.Time
	for id, e := range s.widgets {
		if oldestID == "" || e.lastSeen.Before(oldest) {
			oldestID, oldest = id, e.lastSeen
		}
	}
	delete(s.widgets, oldestID)
}

func (s *sessions) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.widgets)
}
