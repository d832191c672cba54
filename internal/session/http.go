package session

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// CookieName is the cookie carrying the session token
const CookieName = "auth_token"

const contextKey = "session"

// CookieOptions controls how the session cookie is written
type CookieOptions struct {
	MaxAge time.Duration
	Secure bool
}

// ReadCookie returns the session token from the request, empty if absent
func ReadCookie(c *gin.Context) string {
	token, err := c.Cookie(CookieName)
	if err != nil {
		return ""
	}
	return token
}

// WriteCookie stores token in the session cookie
func WriteCookie(c *gin.Context, token string, opts CookieOptions) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, token, int(opts.MaxAge.Seconds()), "/", "", opts.Secure, true)
}

// ClearCookie expires the session cookie
func ClearCookie(c *gin.Context, opts CookieOptions) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, "", -1, "/", "", opts.Secure, true)
}

// Attach binds store to the request context
func Attach(c *gin.Context, store *Store) {
	c.Set(contextKey, store)
}

// FromContext returns the request's store. Requests that never passed
// through the guard get an anonymous store.
func FromContext(c *gin.Context) *Store {
	if v, ok := c.Get(contextKey); ok {
		if store, ok := v.(*Store); ok {
			return store
		}
	}
	store := New("")
	Attach(c, store)
	return store
}
