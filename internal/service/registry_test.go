package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/deskops/console-api/internal/domain/auth"
	apperrors "github.com/deskops/console-api/internal/errors"
	mockauth "github.com/deskops/console-api/internal/mocks/auth"
)

func newTestRegistry(store *mockauth.MemoryStore, evictions EvictionMarker) *SessionRegistry {
	return NewSessionRegistry(SessionRegistryOptions{
		Store:     store,
		Hasher:    mockauth.PlainHasher{},
		Evictions: evictions,
	})
}

// evictionRecorder records MarkForEviction / CancelEviction calls.
type evictionRecorder struct {
	marked   []domainauth.UserID
	canceled []domainauth.UserID
}

func (r *evictionRecorder) MarkForEviction(id domainauth.UserID) { r.marked = append(r.marked, id) }
func (r *evictionRecorder) CancelEviction(id domainauth.UserID)  { r.canceled = append(r.canceled, id) }

func TestSessionRegistry_Authenticate_Success(t *testing.T) {
	store := mockauth.NewMemoryStore()
	store.AddUser(domainauth.UserRecord{
		ID:     "u1",
		Name:   "alice",
		Email:  "alice@example.com",
		Active: true,
	}, "secret")
	registry := newTestRegistry(store, nil)

	view, token, err := registry.Authenticate(context.Background(), "alice", "secret", false)
	require.NoError(t, err)
	assert.Equal(t, "alice", view.Name)
	assert.Equal(t, "alice@example.com", view.Email)
	assert.False(t, view.Admin)
	assert.NotEqual(t, domainauth.Token{}, token)

	info, ok := registry.Resolve(token)
	require.True(t, ok)
	assert.Equal(t, domainauth.UserID("u1"), info.UserID)
	assert.Equal(t, 1, registry.SessionCount("u1"))
}

func TestSessionRegistry_Authenticate_UniformFailure(t *testing.T) {
	store := mockauth.NewMemoryStore()
	store.AddUser(domainauth.UserRecord{ID: "u1", Name: "alice", Active: true}, "secret")
	store.AddUser(domainauth.UserRecord{ID: "u2", Name: "mallory", Active: false}, "secret")
	store.AddUser(domainauth.UserRecord{ID: "u3", Name: "bob", Active: true}, "secret")

	registry := newTestRegistry(store, nil)
	ctx := context.Background()

	tests := []struct {
		name      string
		username  string
		password  string
		adminOnly bool
	}{
		{name: "unknown user", username: "nobody", password: "secret"},
		{name: "wrong password", username: "alice", password: "wrong"},
		{name: "inactive user", username: "mallory", password: "secret"},
		{name: "not admin", username: "bob", password: "secret", adminOnly: true},
	}

	var messages []string
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := registry.Authenticate(ctx, tt.username, tt.password, tt.adminOnly)
			require.Error(t, err)
			assert.True(t, apperrors.IsUnauthorized(err))
			messages = append(messages, err.Error())
		})
	}

	// Every rejection carries the identical message: none of them may leak
	// which check failed.
	for _, msg := range messages {
		assert.Equal(t, messages[0], msg)
	}
}

func TestSessionRegistry_Authenticate_StoreErrorIsUnauthorized(t *testing.T) {
	store := mockauth.NewMemoryStore()
	store.FindUserByNameFunc = func(context.Context, string) (*domainauth.UserRecord, error) {
		return nil, errors.New("connection refused")
	}
	registry := newTestRegistry(store, nil)

	_, _, err := registry.Authenticate(context.Background(), "alice", "secret", false)
	require.Error(t, err)
	assert.True(t, apperrors.IsUnauthorized(err))
	assert.NotContains(t, err.Error(), "connection refused")
}

func TestSessionRegistry_SessionLifecycle(t *testing.T) {
	store := mockauth.NewMemoryStore()
	evictions := &evictionRecorder{}
	registry := newTestRegistry(store, evictions)

	token1, err := registry.Issue("u1", domainauth.UserView{Name: "alice"})
	require.NoError(t, err)
	token2, err := registry.Issue("u1", domainauth.UserView{Name: "alice"})
	require.NoError(t, err)
	assert.NotEqual(t, token1, token2)
	assert.Equal(t, 2, registry.SessionCount("u1"))

	// The first session cancels any pending cache eviction.
	assert.Equal(t, []domainauth.UserID{"u1"}, evictions.canceled)

	info1, ok := registry.Resolve(token1)
	require.True(t, ok)
	info2, ok := registry.Resolve(token2)
	require.True(t, ok)
	assert.NotEqual(t, info1.SessionID, info2.SessionID)

	// Revoking one of two sessions keeps the user summary.
	ok = registry.Revoke(domainauth.SessionIdentity{SessionID: info1.SessionID, UserID: "u1", Token: token1})
	require.True(t, ok)
	assert.Equal(t, 1, registry.SessionCount("u1"))
	assert.Empty(t, evictions.marked)

	_, ok = registry.Resolve(token1)
	assert.False(t, ok)
	_, ok = registry.UserSummary("u1")
	assert.True(t, ok)

	// Revoking the last session drops the summary and marks the cache entry.
	ok = registry.Revoke(domainauth.SessionIdentity{SessionID: info2.SessionID, UserID: "u1", Token: token2})
	require.True(t, ok)
	assert.Equal(t, 0, registry.SessionCount("u1"))
	_, ok = registry.UserSummary("u1")
	assert.False(t, ok)
	assert.Equal(t, []domainauth.UserID{"u1"}, evictions.marked)

	// Double revoke is a no-op.
	ok = registry.Revoke(domainauth.SessionIdentity{SessionID: info2.SessionID, UserID: "u1", Token: token2})
	assert.False(t, ok)
	assert.Len(t, evictions.marked, 1)
}

func TestSessionRegistry_UserSummary(t *testing.T) {
	registry := newTestRegistry(mockauth.NewMemoryStore(), nil)

	_, err := registry.Issue("u1", domainauth.UserView{Name: "alice", Email: "alice@example.com", Admin: true})
	require.NoError(t, err)

	view, ok := registry.UserSummary("u1")
	require.True(t, ok)
	assert.Equal(t, "alice", view.Name)
	assert.Equal(t, "alice@example.com", view.Email)
	assert.True(t, view.Admin)

	_, ok = registry.UserSummary("unknown")
	assert.False(t, ok)
}
