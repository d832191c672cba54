// Package session holds the per-request authentication store.
//
// A Store is created for every request from the auth_token cookie and
// attached to the gin context. Nothing in it outlives the request.
package session

import (
	"github.com/selgo-dev/selgo-web/internal/models"
)

// Store is the authentication state of a single request
type Store struct {
	token     string
	user      *models.User
	userID    string
	userName  string
	userEmail string
	loading   bool
}

// New creates a store holding token (empty for anonymous visitors)
func New(token string) *Store {
	return &Store{token: token}
}

// IsAuthenticated reports whether a session token is present
func (s *Store) IsAuthenticated() bool {
	return s != nil && s.token != ""
}

// Token returns the raw session token
func (s *Store) Token() string {
	return s.token
}

// SetUser records the fetched user
func (s *Store) SetUser(u *models.User) {
	s.user = u
	if u == nil {
		s.userID, s.userName, s.userEmail = "", "", ""
		return
	}
	s.userID = u.ID
	s.userName = u.Name
	s.userEmail = u.Email
}

// User returns the fetched user, nil until a fetch succeeds
func (s *Store) User() *models.User {
	if s == nil {
		return nil
	}
	return s.user
}

func (s *Store) UserID() string    { return s.userID }
func (s *Store) UserName() string  { return s.userName }
func (s *Store) UserEmail() string { return s.userEmail }

// Loading reports whether a user fetch is in flight
func (s *Store) Loading() bool {
	return s.loading
}

// BeginFetch marks the store as loading and returns the func that clears it.
// The returned func must run once the fetch settles, whatever its outcome.
func (s *Store) BeginFetch() (done func()) {
	s.loading = true
	return func() { s.loading = false }
}

// Logout drops the token and resets all user fields
func (s *Store) Logout() {
	s.token = ""
	s.user = nil
	s.userID = ""
	s.userName = ""
	s.userEmail = ""
	s.loading = false
}
