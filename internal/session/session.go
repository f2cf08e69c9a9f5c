// Package session implements the admin console session guard: a small state
// machine over a persisted (user, token) record that decides whether a
// protected view renders or redirects to login. The role held here gates UI
// only; server routes re-verify the signed token independently.
package session

import (
	"encoding/json"
	"sync"

	"cakeshop/internal/domain"
)

// Store is the persistence capability behind the guard. Browser local
// storage, a cookie jar or an in-memory map can all satisfy it; a record
// that is absent or fails to parse reads as logged out.
type Store interface {
	Get() (user *domain.User, token string, ok bool)
	Set(user *domain.User, token string)
	Clear()
}

// MemoryStore is an in-process Store. Records round-trip through JSON so a
// corrupt payload degrades to logged-out exactly like a browser store would.
type MemoryStore struct {
	mu    sync.Mutex
	user  []byte
	token string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Get() (*domain.User, string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token == "" || len(s.user) == 0 {
		return nil, "", false
	}

	user := &domain.User{}
	if err := json.Unmarshal(s.user, user); err != nil {
		return nil, "", false
	}

	return user, s.token, true
}

func (s *MemoryStore) Set(user *domain.User, token string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(user)
	if err != nil {
		return
	}
	s.user = data
	s.token = token
}

func (s *MemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = nil
	s.token = ""
}

// Decision is the outcome of a guard check
type Decision int

const (
	// RedirectToLogin: no session record is present
	RedirectToLogin Decision = iota
	// ClearAndRedirect: a record is present but its role does not satisfy
	// the route; the store has been cleared
	ClearAndRedirect
	// Render: the session satisfies the route
	Render
)

func (d Decision) String() string {
	switch d {
	case RedirectToLogin:
		return "redirect-to-login"
	case ClearAndRedirect:
		return "clear-and-redirect"
	case Render:
		return "render"
	default:
		return "unknown"
	}
}

// Guard gates protected views against the session store. The login view is
// exempt by construction: it simply never calls Check.
type Guard struct {
	store Store
}

func NewGuard(store Store) *Guard {
	return &Guard{store: store}
}

// Check runs the guard state machine for a view requiring the given role.
// An empty requiredRole accepts any authenticated user.
func (g *Guard) Check(requiredRole string) (Decision, *domain.User) {
	user, _, ok := g.store.Get()
	if !ok {
		return RedirectToLogin, nil
	}

	if requiredRole != "" && user.Role != requiredRole {
		g.store.Clear()
		return ClearAndRedirect, nil
	}

	return Render, user
}

// Logout clears the stored session
func (g *Guard) Logout() {
	g.store.Clear()
}
