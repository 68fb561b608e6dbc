package auth_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/shiftwork/paybook/auth"
)

// memStore is a minimal in-memory IdentityStore for tests.
type memStore struct {
	users map[string]auth.User // keyed by id
}

func newMemStore() *memStore {
	return &memStore{users: make(map[string]auth.User)}
}

func (m *memStore) LookupByName(_ context.Context, name string) (auth.User, error) {
	for _, u := range m.users {
		if u.Name == name {
			return u, nil
		}
	}
	return auth.User{}, auth.ErrUserNotFound
}

func (m *memStore) LookupByID(_ context.Context, id string) (auth.User, error) {
	u, ok := m.users[id]
	if !ok {
		return auth.User{}, auth.ErrUserNotFound
	}
	return u, nil
}

func (m *memStore) Create(_ context.Context, u auth.User) error {
	if _, err := m.LookupByName(context.Background(), u.Name); err == nil {
		return auth.ErrUserExists
	}
	m.users[u.ID] = u
	return nil
}

func (m *memStore) Rename(_ context.Context, id, newName string) error {
	u, ok := m.users[id]
	if !ok {
		return auth.ErrUserNotFound
	}
	u.Name = newName
	m.users[id] = u
	return nil
}

func newService(store auth.IdentityStore) *auth.Service {
	return auth.NewService(store, auth.Config{
		Secret: "test-secret",
		Issuer: "paybook-test",
	})
}

func TestService_RegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	svc := newService(newMemStore())

	u, err := svc.Register(ctx, "alice", "hunter2")
	require.NoError(t, err)
	require.NotEmpty(t, u.ID)
	require.NotEqual(t, "hunter2", u.PasswordHash, "password must be hashed")

	token, err := svc.Login(ctx, "alice", "hunter2")
	require.NoError(t, err)

	claims, err := svc.Parse(token)
	require.NoError(t, err)
	require.Equal(t, u.ID, claims.UserID)
	require.Equal(t, "alice", claims.Name)
	require.True(t, claims.ExpiresAt.After(time.Now()))
}

func TestService_RegisterDuplicate(t *testing.T) {
	ctx := context.Background()
	svc := newService(newMemStore())

	_, err := svc.Register(ctx, "alice", "pw")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "alice", "other")
	require.True(t, errors.Is(err, auth.ErrUserExists))
}

func TestService_LoginFailures(t *testing.T) {
	ctx := context.Background()
	svc := newService(newMemStore())
	_, err := svc.Register(ctx, "alice", "hunter2")
	require.NoError(t, err)

	// Wrong password and unknown user look identical.
	_, err = svc.Login(ctx, "alice", "wrong")
	require.True(t, errors.Is(err, auth.ErrInvalidCredentials))
	_, err = svc.Login(ctx, "nobody", "hunter2")
	require.True(t, errors.Is(err, auth.ErrInvalidCredentials))
}

func TestService_ParseRejectsForgedToken(t *testing.T) {
	ctx := context.Background()
	svc := newService(newMemStore())
	_, err := svc.Register(ctx, "alice", "pw")
	require.NoError(t, err)
	token, err := svc.Login(ctx, "alice", "pw")
	require.NoError(t, err)

	other := auth.NewService(newMemStore(), auth.Config{
		Secret: "different-secret",
		Issuer: "paybook-test",
	})
	_, err = other.Parse(token)
	require.True(t, errors.Is(err, auth.ErrInvalidToken))

	_, err = svc.Parse("")
	require.True(t, errors.Is(err, auth.ErrMissingToken))
	_, err = svc.Parse("not.a.jwt")
	require.True(t, errors.Is(err, auth.ErrInvalidToken))
}

func TestService_Rename(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	svc := newService(store)

	a, err := svc.Register(ctx, "alice", "pw")
	require.NoError(t, err)
	_, err = svc.Register(ctx, "bob", "pw")
	require.NoError(t, err)

	require.True(t, errors.Is(svc.Rename(ctx, a.ID, "bob"), auth.ErrUserExists))
	require.NoError(t, svc.Rename(ctx, a.ID, "alicia"))

	renamed, err := store.LookupByID(ctx, a.ID)
	require.NoError(t, err)
	require.Equal(t, "alicia", renamed.Name)
}

func TestMiddleware(t *testing.T) {
	ctx := context.Background()
	svc := newService(newMemStore())
	u, err := svc.Register(ctx, "alice", "pw")
	require.NoError(t, err)
	token, err := svc.Login(ctx, "alice", "pw")
	require.NoError(t, err)

	var gotUserID string
	protected := auth.NewMiddleware(svc, nil).Wrap(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := auth.FromContext(r.Context())
			require.True(t, ok)
			gotUserID = claims.UserID
		}))

	// No token: 401.
	rec := httptest.NewRecorder()
	protected.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	// Valid bearer token: claims land on the context.
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	protected.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, u.ID, gotUserID)

	// Skipper bypasses authentication entirely.
	skipAll := auth.NewMiddleware(svc, func(*http.Request) bool { return true }).Wrap(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	rec = httptest.NewRecorder()
	skipAll.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
}
