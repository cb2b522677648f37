package service

import (
	"sync"
	"time"

	"github.com/msomdec/task-tracker/internal/domain"
)

// Session is the per-browser session store. It holds at most one identity,
// shared by every tab of the browser, and at most one live task
// subscription per tab.
type Session struct {
	mu       sync.Mutex
	user     *domain.User
	subs     map[string]domain.Subscription
	flash    *domain.Notice
	lastSeen time.Time
}

// NewSession returns an unauthenticated session.
func NewSession() *Session {
	return &Session{subs: make(map[string]domain.Subscription), lastSeen: time.Now()}
}

// Login installs user as the current identity. Logging in again as the same
// identity changes nothing and keeps the active subscriptions; a different
// identity replaces the old one and releases its subscriptions.
func (s *Session) Login(user *domain.User) {
	u := *user

	s.mu.Lock()
	var stale []domain.Subscription
	if s.user == nil || s.user.ID != u.ID {
		stale = s.detachAll()
	}
	s.user = &u
	s.lastSeen = time.Now()
	s.mu.Unlock()

	cancelAll(stale)
}

// Logout clears the identity and releases every subscription.
func (s *Session) Logout() {
	s.mu.Lock()
	stale := s.detachAll()
	s.user = nil
	s.mu.Unlock()

	cancelAll(stale)
}

// detachAll must be called with s.mu held.
func (s *Session) detachAll() []domain.Subscription {
	subs := make([]domain.Subscription, 0, len(s.subs))
	for tab, sub := range s.subs {
		subs = append(subs, sub)
		delete(s.subs, tab)
	}
	return subs
}

func cancelAll(subs []domain.Subscription) {
	for _, sub := range subs {
		sub.Cancel()
	}
}

// User returns a copy of the current identity, or nil.
func (s *Session) User() *domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// Attach makes sub the only subscription of tab, releasing the tab's
// previous one first. Other tabs keep theirs. An unauthenticated session
// refuses and releases sub.
func (s *Session) Attach(tab string, sub domain.Subscription) error {
	s.mu.Lock()
	if s.user == nil {
		s.mu.Unlock()
		sub.Cancel()
		return domain.ErrUnauthorized
	}
	prev := s.subs[tab]
	s.subs[tab] = sub
	s.lastSeen = time.Now()
	s.mu.Unlock()

	if prev != nil && prev != sub {
		prev.Cancel()
	}
	return nil
}

// Release cancels sub and forgets it if it is still the tab's active one.
func (s *Session) Release(tab string, sub domain.Subscription) {
	s.mu.Lock()
	if s.subs[tab] == sub {
		delete(s.subs, tab)
	}
	s.mu.Unlock()
	sub.Cancel()
}

// Subscription returns the active subscription of tab, or nil.
func (s *Session) Subscription(tab string) domain.Subscription {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.subs[tab]
}

// Subscriptions returns the number of tabs with a live subscription.
func (s *Session) Subscriptions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}

// Flash stores a notice to show on the next page render.
func (s *Session) Flash(n domain.Notice) {
	s.mu.Lock()
	s.flash = &n
	s.mu.Unlock()
}

// TakeFlash returns and clears the pending notice.
func (s *Session) TakeFlash() *domain.Notice {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := s.flash
	s.flash = nil
	return n
}

func (s *Session) touch() {
	s.mu.Lock()
	s.lastSeen = time.Now()
	s.mu.Unlock()
}

func (s *Session) idleSince(cutoff time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs) == 0 && s.lastSeen.Before(cutoff)
}

// SessionRegistry maps browser session ids to their sessions.
type SessionRegistry struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{sessions: make(map[string]*Session)}
}

// Get returns the session for id, creating an empty one on first use.
func (r *SessionRegistry) Get(id string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		s = NewSession()
		r.sessions[id] = s
	}
	s.touch()
	return s
}

// Drop logs the session out and forgets it.
func (r *SessionRegistry) Drop(id string) {
	r.mu.Lock()
	s, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()

	if ok {
		s.Logout()
	}
}

// ReleaseAll ends every live subscription but keeps identities, so open
// board streams return ahead of a server shutdown.
func (r *SessionRegistry) ReleaseAll() {
	r.mu.Lock()
	var stale []domain.Subscription
	for _, s := range r.sessions {
		s.mu.Lock()
		stale = append(stale, s.detachAll()...)
		s.mu.Unlock()
	}
	r.mu.Unlock()

	cancelAll(stale)
}

// Prune forgets sessions without a live subscription that have not been
// used for idle. It returns the number removed.
func (r *SessionRegistry) Prune(idle time.Duration) int {
	cutoff := time.Now().Add(-idle)

	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for id, s := range r.sessions {
		if s.idleSince(cutoff) {
			delete(r.sessions, id)
			n++
		}
	}
	return n
}

func (r *SessionRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
