package users

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/selgo-dev/selgo-web/internal/auth"
	"github.com/selgo-dev/selgo-web/internal/cache"
	"github.com/selgo-dev/selgo-web/internal/database"
	"github.com/selgo-dev/selgo-web/internal/guard"
	"github.com/selgo-dev/selgo-web/internal/models"
)

var _ guard.UserFetcher = (*Service)(nil)

// memoryCache is an in-memory ProfileCache for tests
type memoryCache struct {
	items map[string][]byte
	gets  int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{items: make(map[string][]byte)}
}

func (m *memoryCache) GetJSON(ctx context.Context, key string, dest interface{}) error {
	m.gets++
	data, ok := m.items[key]
	if !ok {
		return cache.ErrMiss
	}
	return json.Unmarshal(data, dest)
}

func (m *memoryCache) SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.items[key] = data
	return nil
}

func (m *memoryCache) Delete(ctx context.Context, key string) error {
	delete(m.items, key)
	return nil
}

func newTestService(t *testing.T, c ProfileCache) *Service {
	t.Helper()
	db, err := database.Open(database.MemoryURL, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { database.Close(db) })

	return NewService(db, auth.NewIssuer("test-secret", time.Hour), c, time.Minute, zerolog.Nop())
}

func TestRegisterAndAuthenticate(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := context.Background()

	user, token, err := svc.Register(ctx, "  Per@Example.com ", "Per", "hunter2hunter2")
	require.NoError(t, err)
	assert.Equal(t, "per@example.com", user.Email)
	assert.NotEmpty(t, token)

	_, _, err = svc.Register(ctx, "per@example.com", "Per again", "hunter2hunter2")
	assert.ErrorIs(t, err, ErrEmailTaken)

	got, token2, err := svc.Authenticate(ctx, "PER@example.com", "hunter2hunter2")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.NotEmpty(t, token2)

	_, _, err = svc.Authenticate(ctx, "per@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = svc.Authenticate(ctx, "nobody@example.com", "hunter2hunter2")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestFetch(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := context.Background()

	user, token, err := svc.Register(ctx, "liv@example.com", "Liv", "password123")
	require.NoError(t, err)

	got, err := svc.Fetch(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.Equal(t, "Liv", got.Name)

	_, err = svc.Fetch(ctx, "garbage")
	assert.ErrorIs(t, err, auth.ErrInvalidToken)

	require.NoError(t, svc.db.Delete(&models.User{}, "id = ?", user.ID).Error)
	_, err = svc.Fetch(ctx, token)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestPeek(t *testing.T) {
	svc := newTestService(t, nil)
	token, err := svc.tokens.GenerateToken("01J00000000000000000000009", "ane@example.com", "Ane")
	require.NoError(t, err)

	user, err := svc.Peek(token)
	require.NoError(t, err)
	assert.Equal(t, "01J00000000000000000000009", user.ID)
	assert.Equal(t, "Ane", user.Name)

	_, err = svc.Peek("nope")
	assert.Error(t, err)
}

func TestGet_UsesCache(t *testing.T) {
	mc := newMemoryCache()
	svc := newTestService(t, mc)
	ctx := context.Background()

	user, _, err := svc.Register(ctx, "eva@example.com", "Eva", "password123")
	require.NoError(t, err)

	_, err = svc.Get(ctx, user.ID)
	require.NoError(t, err)
	require.Contains(t, mc.items, profileKey(user.ID))
	assert.NotContains(t, string(mc.items[profileKey(user.ID)]), "$2a$")

	// a cached profile survives the row being renamed behind the service's back
	require.NoError(t, svc.db.Model(&models.User{}).Where("id = ?", user.ID).Update("name", "Changed").Error)
	cached, err := svc.Get(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Eva", cached.Name)

	require.NoError(t, svc.UpdateName(ctx, user.ID, "Eva B"))
	assert.NotContains(t, mc.items, profileKey(user.ID))

	fresh, err := svc.Get(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Eva B", fresh.Name)

	svc.Logout(ctx, user.ID)
	assert.Empty(t, mc.items)
}

func TestUpdateName_Unknown(t *testing.T) {
	svc := newTestService(t, nil)
	assert.ErrorIs(t, svc.UpdateName(context.Background(), "missing", "x"), ErrUserNotFound)
}

func TestEnsureJWTSecret(t *testing.T) {
	db, err := database.Open(database.MemoryURL, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { database.Close(db) })
	ctx := context.Background()

	secret, err := EnsureJWTSecret(ctx, db)
	require.NoError(t, err)
	assert.Len(t, secret, 64)

	again, err := EnsureJWTSecret(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, secret, again)

	var count int64
	require.NoError(t, db.Model(&models.Config{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestIssueToken_CarriesNewName(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := context.Background()

	user, _, err := svc.Register(ctx, "nora@example.com", "Nora", "password123")
	require.NoError(t, err)
	require.NoError(t, svc.UpdateName(ctx, user.ID, "Nora K"))

	user.Name = "Nora K"
	token, err := svc.IssueToken(user)
	require.NoError(t, err)

	peeked, err := svc.Peek(token)
	require.NoError(t, err)
	assert.Equal(t, "Nora K", peeked.Name)
	assert.Equal(t, user.ID, peeked.ID)
}
