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
	"github.com/deskops/console-api/internal/ports"
)

func newTestCoordinator(store *mockauth.MemoryStore, provider ports.Provider) (*OidcFlowCoordinator, *SessionRegistry) {
	registry := newTestRegistry(store, nil)
	coordinator := NewOidcFlowCoordinator(OidcFlowCoordinatorOptions{
		Providers: map[string]ports.Provider{provider.Name(): provider},
		Store:     store,
		Registry:  registry,
	})
	return coordinator, registry
}

func TestOidcFlow_HappyPath(t *testing.T) {
	store := mockauth.NewMemoryStore()
	store.AutoActivate = true
	provider := &mockauth.FakeProvider{
		ProviderName: "fake",
		Identity: ports.ProviderIdentity{
			Credential:  "cred-1",
			DisplayName: "alice",
			Email:       "alice@example.com",
		},
	}
	coordinator, registry := newTestCoordinator(store, provider)
	ctx := context.Background()

	begin, err := coordinator.Begin("client-1", "uuid-1", "fake", "https://console/cb")
	require.NoError(t, err)
	assert.NotEmpty(t, begin.FlowID)
	assert.Contains(t, begin.RedirectURL, begin.FlowID)
	assert.Equal(t, 1, coordinator.FlowCount())

	// Poll before the callback: pending.
	_, ok := coordinator.Finalize(ctx, begin.FlowID)
	assert.False(t, ok)

	require.True(t, coordinator.ReceiveCallback(ctx, begin.FlowID, "auth-code"))
	assert.Equal(t, 1, provider.ExchangeCalls)

	result, ok := coordinator.Finalize(ctx, begin.FlowID)
	require.True(t, ok)
	assert.Equal(t, "alice", result.User.Name)
	assert.Equal(t, "alice@example.com", result.User.Email)
	assert.NotEqual(t, domainauth.Token{}, result.Token)

	// The issued token resolves to a live session.
	info, ok := registry.Resolve(result.Token)
	require.True(t, ok)
	assert.Equal(t, 1, registry.SessionCount(info.UserID))

	// The flow is consumed: a second poll reports pending/unknown.
	_, ok = coordinator.Finalize(ctx, begin.FlowID)
	assert.False(t, ok)
	assert.Equal(t, 0, coordinator.FlowCount())
}

func TestOidcFlow_UnknownProvider(t *testing.T) {
	coordinator, _ := newTestCoordinator(mockauth.NewMemoryStore(), &mockauth.FakeProvider{})

	_, err := coordinator.Begin("client-1", "uuid-1", "nope", "https://console/cb")
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestOidcFlow_UnknownFlowCallback(t *testing.T) {
	coordinator, _ := newTestCoordinator(mockauth.NewMemoryStore(), &mockauth.FakeProvider{})

	assert.False(t, coordinator.ReceiveCallback(context.Background(), "no-such-flow", "code"))
}

func TestOidcFlow_FailedExchangeIsDead(t *testing.T) {
	store := mockauth.NewMemoryStore()
	store.AutoActivate = true
	provider := &mockauth.FakeProvider{
		ProviderName: "fake",
		ExchangeErr:  errors.New("idp unreachable"),
	}
	coordinator, _ := newTestCoordinator(store, provider)
	ctx := context.Background()

	begin, err := coordinator.Begin("client-1", "uuid-1", "fake", "https://console/cb")
	require.NoError(t, err)

	assert.False(t, coordinator.ReceiveCallback(ctx, begin.FlowID, "auth-code"))

	// The flow stays resident but can never finalize.
	_, ok := coordinator.Finalize(ctx, begin.FlowID)
	assert.False(t, ok)
	assert.Equal(t, 1, coordinator.FlowCount())
}

func TestOidcFlow_InactiveUserRejected(t *testing.T) {
	store := mockauth.NewMemoryStore() // AutoActivate false: JIT users start inactive
	provider := &mockauth.FakeProvider{
		ProviderName: "fake",
		Identity:     ports.ProviderIdentity{DisplayName: "newcomer"},
	}
	coordinator, registry := newTestCoordinator(store, provider)
	ctx := context.Background()

	begin, err := coordinator.Begin("client-1", "uuid-1", "fake", "https://console/cb")
	require.NoError(t, err)
	require.True(t, coordinator.ReceiveCallback(ctx, begin.FlowID, "code"))

	_, ok := coordinator.Finalize(ctx, begin.FlowID)
	assert.False(t, ok)

	// The account exists but no session was issued.
	user, err := store.FindUserByName(ctx, "newcomer")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.False(t, user.Active)
	assert.Equal(t, 0, registry.SessionCount(user.ID))
}

func TestOidcFlow_FailedFinalizeCanRetry(t *testing.T) {
	store := mockauth.NewMemoryStore()
	fail := true
	store.GetOrCreateFederatedFunc = func(ctx context.Context, identity domainauth.FederatedIdentity) (*domainauth.UserRecord, error) {
		if fail {
			return nil, errors.New("db down")
		}
		return &domainauth.UserRecord{ID: "u1", Name: identity.DisplayName, Active: true}, nil
	}
	provider := &mockauth.FakeProvider{
		ProviderName: "fake",
		Identity:     ports.ProviderIdentity{DisplayName: "alice"},
	}
	coordinator, _ := newTestCoordinator(store, provider)
	ctx := context.Background()

	begin, err := coordinator.Begin("client-1", "uuid-1", "fake", "https://console/cb")
	require.NoError(t, err)
	require.True(t, coordinator.ReceiveCallback(ctx, begin.FlowID, "code"))

	_, ok := coordinator.Finalize(ctx, begin.FlowID)
	assert.False(t, ok)

	// The failure cleared the in-progress guard; a later poll succeeds.
	fail = false
	result, ok := coordinator.Finalize(ctx, begin.FlowID)
	require.True(t, ok)
	assert.Equal(t, "alice", result.User.Name)
}

func TestOidcFlow_IdentityNameFallsBackToClientID(t *testing.T) {
	store := mockauth.NewMemoryStore()
	store.AutoActivate = true
	provider := &mockauth.FakeProvider{
		ProviderName: "fake",
		Identity:     ports.ProviderIdentity{Credential: "cred"},
	}
	coordinator, _ := newTestCoordinator(store, provider)
	ctx := context.Background()

	begin, err := coordinator.Begin("desk-1234", "uuid-1", "fake", "https://console/cb")
	require.NoError(t, err)
	require.True(t, coordinator.ReceiveCallback(ctx, begin.FlowID, "code"))

	result, ok := coordinator.Finalize(ctx, begin.FlowID)
	require.True(t, ok)
	assert.Equal(t, "desk-1234", result.User.Name)
}
