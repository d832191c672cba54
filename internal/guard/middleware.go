package guard

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/selgo-dev/selgo-web/internal/models"
	"github.com/selgo-dev/selgo-web/internal/session"
)

// ReasonSession is appended to the sign-in URL when a stored session could not be used
const ReasonSession = "session"

// UserFetcher resolves the user behind a session token
type UserFetcher interface {
	// Fetch loads the current user profile. It may block on storage.
	Fetch(ctx context.Context, token string) (*models.User, error)
	// Peek reads the user carried by the token without any I/O
	Peek(token string) (*models.User, error)
}

// Guard gates protected routes behind a signed-in user
type Guard struct {
	routes  *Routes
	fetcher UserFetcher
	timeout time.Duration
	cookie  session.CookieOptions
	logger  zerolog.Logger
}

// Options configures a Guard
type Options struct {
	FetchTimeout time.Duration
	Cookie       session.CookieOptions
}

// New creates a guard over routes
func New(routes *Routes, fetcher UserFetcher, opts Options, logger zerolog.Logger) *Guard {
	return &Guard{
		routes:  routes,
		fetcher: fetcher,
		timeout: opts.FetchTimeout,
		cookie:  opts.Cookie,
		logger:  logger,
	}
}

// Routes returns the protected route set
func (g *Guard) Routes() *Routes {
	return g.routes
}

// Middleware runs the guard on every request. It attaches a session store
// to the context before any handler runs.
func (g *Guard) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		store := session.New(session.ReadCookie(c))
		session.Attach(c, store)

		path := c.Request.URL.Path
		switch g.routes.Decide(path, store.IsAuthenticated()) {
		case Render:
			if store.IsAuthenticated() {
				g.peek(c, store)
			}
			c.Next()

		case Redirect:
			g.deny(c, "")

		case Fetch:
			if err := g.fetch(c.Request.Context(), store); err != nil {
				g.logger.Warn().Err(err).Str("path", path).Msg("Session rejected on protected route")
				store.Logout()
				session.ClearCookie(c, g.cookie)
				g.deny(c, ReasonSession)
				return
			}
			c.Next()
		}
	}
}

// fetch resolves the user for a protected route. Loading is cleared once
// the fetch settles, success or failure.
func (g *Guard) fetch(ctx context.Context, store *session.Store) error {
	done := store.BeginFetch()
	defer done()

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	user, err := g.fetcher.Fetch(ctx, store.Token())
	if err != nil {
		return err
	}
	if user == nil {
		return errors.New("fetcher returned no user")
	}
	store.SetUser(user)
	return nil
}

// peek fills the store from the token alone so public pages can show who is
// signed in. A token that cannot be read is dropped.
func (g *Guard) peek(c *gin.Context, store *session.Store) {
	user, err := g.fetcher.Peek(store.Token())
	if err != nil {
		g.logger.Debug().Err(err).Msg("Dropping unreadable session cookie")
		store.Logout()
		session.ClearCookie(c, g.cookie)
		return
	}
	store.SetUser(user)
}

func (g *Guard) deny(c *gin.Context, reason string) {
	if strings.HasPrefix(c.Request.URL.Path, "/api/") {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	location := SignInURL(c.Request.URL.RequestURI())
	if reason != "" {
		location += "&reason=" + reason
	}

	status := http.StatusFound
	if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
		status = http.StatusSeeOther
	}
	c.Redirect(status, location)
	c.Abort()
}
