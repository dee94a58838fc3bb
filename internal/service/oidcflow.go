package service

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"github.com/google/uuid"

	domainauth "github.com/deskops/console-api/internal/domain/auth"
	apperrors "github.com/deskops/console-api/internal/errors"
	"github.com/deskops/console-api/internal/ports"
)

// flowPhase tracks how far one authorization attempt has progressed.
type flowPhase int

const (
	// flowInitiated: redirect URL handed out, waiting for the provider to
	// send the browser back.
	flowInitiated flowPhase = iota
	// flowCodeReceived: authorization code recorded. A flow that stays here
	// (failed exchange) is dead and will never finalize.
	flowCodeReceived
	// flowExchanged: provider exchange succeeded, identity resolved, ready
	// for the client's next poll.
	flowExchanged
)

// oidcFlow is the correlated server-side state of one in-progress
// authorization-code login.
type oidcFlow struct {
	clientID    string
	clientUUID  string
	provider    ports.Provider
	callbackURL string

	code       string
	credential string
	name       string
	email      string

	phase flowPhase
	// finalizing guards the store round-trip in Finalize so two concurrent
	// polls cannot both issue a session for the same flow.
	finalizing bool
}

// OidcFlowCoordinator manages the three-leg authorization-code federation
// protocol. The desktop client cannot receive the provider redirect itself,
// so it begins a flow, the browser completes the callback leg against this
// server, and the client polls for the outcome.
//
// Flows are keyed by a server-generated opaque id, distinct from the client's
// own UUID, so outcomes cannot be fetched by guessing client identifiers.
type OidcFlowCoordinator struct {
	providers map[string]ports.Provider
	store     ports.Store
	registry  *SessionRegistry
	logger    *slog.Logger

	mu    sync.RWMutex
	flows map[string]*oidcFlow
}

// OidcFlowCoordinatorOptions groups dependencies for NewOidcFlowCoordinator.
type OidcFlowCoordinatorOptions struct {
	Providers map[string]ports.Provider
	Store     ports.Store
	Registry  *SessionRegistry
	Logger    *slog.Logger
}

// NewOidcFlowCoordinator constructs a coordinator over a closed provider set.
func NewOidcFlowCoordinator(opts OidcFlowCoordinatorOptions) *OidcFlowCoordinator {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &OidcFlowCoordinator{
		providers: opts.Providers,
		store:     opts.Store,
		registry:  opts.Registry,
		logger:    logger,
		flows:     make(map[string]*oidcFlow),
	}
}

// BeginResult is the outcome of starting a flow: where to send the user's
// browser, and the opaque id the client polls with.
type BeginResult struct {
	FlowID      string
	RedirectURL string
}

// Begin creates flow state for one authorization attempt and returns the
// provider redirect URL carrying the flow id as correlation state. It fails
// with a not-found error when the named provider is not configured.
func (c *OidcFlowCoordinator) Begin(clientID, clientUUID, providerName, callbackURL string) (BeginResult, error) {
	provider, ok := c.providers[providerName]
	if !ok {
		return BeginResult{}, apperrors.NotFoundf("unknown oauth2 provider %q", providerName)
	}

	flowID := uuid.NewString()
	redirectURL := provider.BuildAuthorizationURL(callbackURL, flowID)

	c.mu.Lock()
	c.flows[flowID] = &oidcFlow{
		clientID:    clientID,
		clientUUID:  clientUUID,
		provider:    provider,
		callbackURL: callbackURL,
		phase:       flowInitiated,
	}
	c.mu.Unlock()

	return BeginResult{FlowID: flowID, RedirectURL: redirectURL}, nil
}

// ReceiveCallback handles the provider redirect leg: it records the
// authorization code and synchronously exchanges it for the provider
// credential and identity. Returns false for unknown flow ids and for failed
// exchanges; a failed exchange leaves the flow permanently un-finalizable.
//
// The provider exchange is a network call and runs with the flow lock
// released: lock, copy what the call needs, unlock, call out, lock again to
// commit the result.
func (c *OidcFlowCoordinator) ReceiveCallback(ctx context.Context, flowID, code string) bool {
	c.mu.Lock()
	flow, ok := c.flows[flowID]
	if !ok {
		c.mu.Unlock()
		return false
	}
	flow.code = code
	flow.phase = flowCodeReceived
	provider := flow.provider
	callbackURL := flow.callbackURL
	c.mu.Unlock()

	identity, err := provider.ExchangeCode(ctx, code, callbackURL)
	if err != nil {
		c.logger.WarnContext(ctx, "oauth2 code exchange failed",
			"provider", provider.Name(), "error", err)
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	flow, ok = c.flows[flowID]
	if !ok {
		return false
	}
	flow.credential = identity.Credential
	flow.name = identity.DisplayName
	if flow.name == "" {
		flow.name = flow.clientID
	}
	flow.email = identity.Email
	flow.phase = flowExchanged
	return true
}

// LoginResult is a completed federated login: the issued bearer token plus
// the view of the resolved local user.
type LoginResult struct {
	Token domainauth.Token
	User  domainauth.UserView
}

// Finalize consumes an exchanged flow: it resolves (or just-in-time creates)
// the local user for the federated identity, rejects inactive users, issues a
// session token, and deletes the flow. Clients poll this until it returns
// ok=true or give up; unknown, pending, and dead flows all report ok=false.
//
// The flow is consumed exactly once. A finalizing flow reports pending to
// concurrent polls, and failures clear the guard so a later poll may retry.
func (c *OidcFlowCoordinator) Finalize(ctx context.Context, flowID string) (LoginResult, bool) {
	c.mu.Lock()
	flow, ok := c.flows[flowID]
	if !ok || flow.phase != flowExchanged || flow.finalizing {
		c.mu.Unlock()
		return LoginResult{}, false
	}
	flow.finalizing = true
	identity := domainauth.FederatedIdentity{
		DisplayName: flow.name,
		Email:       flow.email,
		UUID:        flow.clientUUID,
	}
	c.mu.Unlock()

	user, err := c.store.GetOrCreateFederatedUser(ctx, identity)
	if err != nil || user == nil {
		c.logger.WarnContext(ctx, "federated user resolution failed", "error", err)
		c.clearFinalizing(flowID)
		return LoginResult{}, false
	}
	if !user.Active {
		c.logger.DebugContext(ctx, "federated user inactive", "user_id", user.ID)
		c.clearFinalizing(flowID)
		return LoginResult{}, false
	}

	view := domainauth.UserView{Name: user.Name, Email: user.Email, Admin: user.Admin}
	token, err := c.registry.Issue(user.ID, view)
	if err != nil {
		c.logger.WarnContext(ctx, "issue token for federated login failed", "error", err)
		c.clearFinalizing(flowID)
		return LoginResult{}, false
	}

	c.mu.Lock()
	delete(c.flows, flowID)
	c.mu.Unlock()

	return LoginResult{Token: token, User: view}, true
}

func (c *OidcFlowCoordinator) clearFinalizing(flowID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if flow, ok := c.flows[flowID]; ok {
		flow.finalizing = false
	}
}

// FlowCount reports the number of flows currently held. Abandoned flows are
// never reaped; they stay until process restart.
func (c *OidcFlowCoordinator) FlowCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.flows)
}

// ProviderNames returns the configured provider names in sorted order. The
// provider set is fixed at construction, so no lock is needed.
func (c *OidcFlowCoordinator) ProviderNames() []string {
	names := make([]string, 0, len(c.providers))
	for name := range c.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
