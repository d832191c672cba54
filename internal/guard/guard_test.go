package guard

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/selgo-dev/selgo-web/internal/models"
	"github.com/selgo-dev/selgo-web/internal/session"
)

type fakeFetcher struct {
	user    *models.User
	err     error
	peekErr error
	calls   int
	onFetch func(ctx context.Context)
}

func (f *fakeFetcher) Fetch(ctx context.Context, token string) (*models.User, error) {
	f.calls++
	if f.onFetch != nil {
		f.onFetch(ctx)
	}
	return f.user, f.err
}

func (f *fakeFetcher) Peek(token string) (*models.User, error) {
	return f.user, f.peekErr
}

func testUser() *models.User {
	u := &models.User{Email: "ingrid@example.com", Name: "Ingrid"}
	u.ID = "01J00000000000000000000001"
	return u
}

func TestRoutes_Protected(t *testing.T) {
	routes := MustRoutes(
		"/routes/profile",
		"/routes/settings/*",
		"/routes/listings/:id/edit",
	)

	tests := []struct {
		path string
		want bool
	}{
		{"/routes/profile", true},
		{"/routes/profile/", true},
		{"/routes/profile/edit", false},
		{"/routes/boat", false},
		{"/", false},
		{"/routes/settings", false},
		{"/routes/settings/password", true},
		{"/routes/settings/a/b", true},
		{"/routes/listings/01ABC/edit", true},
		{"/routes/listings//edit", false},
		{"/routes/listings/01ABC", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, routes.Protected(tt.path))
		})
	}
}

func TestNewRoutes_Invalid(t *testing.T) {
	for _, p := range []string{"routes/profile", "/routes/*/edit", "/a*b"} {
		_, err := NewRoutes(p)
		assert.Error(t, err, p)
	}
}

func TestDecide(t *testing.T) {
	routes := MustRoutes("/routes/profile")

	assert.Equal(t, Render, routes.Decide("/routes/boat", false))
	assert.Equal(t, Render, routes.Decide("/routes/boat", true))
	assert.Equal(t, Redirect, routes.Decide("/routes/profile", false))
	assert.Equal(t, Fetch, routes.Decide("/routes/profile", true))
	assert.Equal(t, "redirect", Redirect.String())
}

func TestSignInURL(t *testing.T) {
	assert.Equal(t, "/routes/auth/signin?redirect=%2Froutes%2Fprofile", SignInURL("/routes/profile"))
	assert.Equal(t, "/routes/auth/signin?redirect=%2Froutes%2Fmy-ads%3Fpage%3D2", SignInURL("/routes/my-ads?page=2"))
}

func TestSafeRedirect(t *testing.T) {
	tests := map[string]string{
		"/routes/profile":            "/routes/profile",
		"/routes/boat?sort=price":    "/routes/boat?sort=price",
		"":                           "/",
		"https://evil.example":       "/",
		"//evil.example/path":        "/",
		"/\\evil.example":            "/",
		"routes/profile":             "/",
		"/routes/auth/signin?x=1":    "/",
	}
	for in, want := range tests {
		assert.Equal(t, want, SafeRedirect(in, "/"), in)
	}
}

func newTestEngine(g *Guard, seen **session.Store) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(g.Middleware())
	handler := func(c *gin.Context) {
		*seen = session.FromContext(c)
		c.String(http.StatusOK, "page")
	}
	r.GET("/routes/boat", handler)
	r.GET("/routes/profile", handler)
	r.POST("/routes/profile", handler)
	r.GET("/api/auth/me", handler)
	return r
}

func doRequest(r http.Handler, method, target, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	if token != "" {
		req.AddCookie(&http.Cookie{Name: session.CookieName, Value: token})
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestMiddleware_UnprotectedRendersImmediately(t *testing.T) {
	fetcher := &fakeFetcher{user: testUser()}
	g := New(MustRoutes("/routes/profile"), fetcher, Options{}, zerolog.Nop())
	var seen *session.Store
	r := newTestEngine(g, &seen)

	w := doRequest(r, http.MethodGet, "/routes/boat", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Location"))
	assert.Equal(t, 0, fetcher.calls)
	require.NotNil(t, seen)
	assert.False(t, seen.IsAuthenticated())
}

func TestMiddleware_UnprotectedWithCookiePeeks(t *testing.T) {
	fetcher := &fakeFetcher{user: testUser()}
	g := New(MustRoutes("/routes/profile"), fetcher, Options{}, zerolog.Nop())
	var seen *session.Store
	r := newTestEngine(g, &seen)

	w := doRequest(r, http.MethodGet, "/routes/boat", "tok")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, fetcher.calls)
	assert.Equal(t, "Ingrid", seen.UserName())
}

func TestMiddleware_UnprotectedUnreadableCookieIsDropped(t *testing.T) {
	fetcher := &fakeFetcher{peekErr: errors.New("bad token")}
	g := New(MustRoutes("/routes/profile"), fetcher, Options{}, zerolog.Nop())
	var seen *session.Store
	r := newTestEngine(g, &seen)

	w := doRequest(r, http.MethodGet, "/routes/boat", "tok")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.False(t, seen.IsAuthenticated())
	assert.Contains(t, w.Header().Get("Set-Cookie"), session.CookieName+"=;")
}

func TestMiddleware_ProtectedWithoutCookieRedirects(t *testing.T) {
	fetcher := &fakeFetcher{user: testUser()}
	g := New(MustRoutes("/routes/profile"), fetcher, Options{}, zerolog.Nop())
	var seen *session.Store
	r := newTestEngine(g, &seen)

	w := doRequest(r, http.MethodGet, "/routes/profile", "")

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/routes/auth/signin?redirect=%2Froutes%2Fprofile", w.Header().Get("Location"))
	assert.Nil(t, seen)
	assert.Equal(t, 0, fetcher.calls)

	w = doRequest(r, http.MethodPost, "/routes/profile", "")
	assert.Equal(t, http.StatusSeeOther, w.Code)
}

func TestMiddleware_ProtectedAPIReturns401(t *testing.T) {
	g := New(MustRoutes("/api/auth/me"), &fakeFetcher{}, Options{}, zerolog.Nop())
	var seen *session.Store
	r := newTestEngine(g, &seen)

	w := doRequest(r, http.MethodGet, "/api/auth/me", "")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"error":"Authentication required"}`, w.Body.String())
}

func TestMiddleware_ProtectedWithCookieFetchesUser(t *testing.T) {
	fetcher := &fakeFetcher{user: testUser()}
	g := New(MustRoutes("/routes/profile"), fetcher, Options{FetchTimeout: time.Second}, zerolog.Nop())
	var seen *session.Store
	r := newTestEngine(g, &seen)

	w := doRequest(r, http.MethodGet, "/routes/profile", "tok")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, fetcher.calls)
	require.NotNil(t, seen)
	assert.False(t, seen.Loading())
	assert.Equal(t, "ingrid@example.com", seen.UserEmail())
}

func TestMiddleware_FailedFetchDenies(t *testing.T) {
	fetcher := &fakeFetcher{err: errors.New("user not found")}
	g := New(MustRoutes("/routes/profile"), fetcher, Options{}, zerolog.Nop())
	var seen *session.Store
	r := newTestEngine(g, &seen)

	w := doRequest(r, http.MethodGet, "/routes/profile", "tok")

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/routes/auth/signin?redirect=%2Froutes%2Fprofile&reason=session", w.Header().Get("Location"))
	assert.Contains(t, w.Header().Get("Set-Cookie"), session.CookieName+"=;")
	assert.Nil(t, seen)
}

func TestFetch_LoadingClearedAfterSettling(t *testing.T) {
	for name, fetchErr := range map[string]error{"success": nil, "failure": errors.New("boom")} {
		t.Run(name, func(t *testing.T) {
			store := session.New("tok")
			var loadingDuringFetch bool
			fetcher := &fakeFetcher{user: testUser(), err: fetchErr}
			fetcher.onFetch = func(context.Context) { loadingDuringFetch = store.Loading() }
			g := New(MustRoutes("/routes/profile"), fetcher, Options{}, zerolog.Nop())

			err := g.fetch(context.Background(), store)

			assert.True(t, loadingDuringFetch)
			assert.False(t, store.Loading())
			assert.Equal(t, fetchErr, err)
		})
	}
}

func TestFetch_AppliesTimeout(t *testing.T) {
	store := session.New("tok")
	fetcher := &fakeFetcher{user: testUser()}
	var deadline time.Time
	var hasDeadline bool
	fetcher.onFetch = func(ctx context.Context) { deadline, hasDeadline = ctx.Deadline() }
	g := New(MustRoutes("/routes/profile"), fetcher, Options{FetchTimeout: 50 * time.Millisecond}, zerolog.Nop())

	require.NoError(t, g.fetch(context.Background(), store))
	assert.True(t, hasDeadline)
	assert.WithinDuration(t, time.Now(), deadline, time.Second)
}
