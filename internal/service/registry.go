package service

import (
	"context"
	"log/slog"
	"sync"

	domainauth "github.com/deskops/console-api/internal/domain/auth"
	apperrors "github.com/deskops/console-api/internal/errors"
	"github.com/deskops/console-api/internal/ports"
)

// EvictionMarker is the hook the registry uses to tie address-book cache
// retention to session lifetime. It is implemented by AddressBookCache.
type EvictionMarker interface {
	// MarkForEviction flags a user's cache entry for removal after its next
	// successful flush.
	MarkForEviction(id domainauth.UserID)
	// CancelEviction clears a pending eviction flag; called when a user logs
	// back in before their entry was flushed out.
	CancelEviction(id domainauth.UserID)
}

// userSummary is the registry's transient per-user record. It exists only
// while the user has at least one live session.
type userSummary struct {
	sessionsCount int
	name          string
	email         string
	admin         bool
}

// SessionRegistry maps bearer tokens to sessions, sessions to users, and
// tracks live-session counts per user.
//
// Three maps, three locks. Every path that takes more than one acquires them
// in the fixed order tokens → sessions → users; the address-book cache has its
// own lock and is only touched after all three are released.
type SessionRegistry struct {
	store     ports.Store
	hasher    ports.PasswordHasher
	evictions EvictionMarker
	logger    *slog.Logger

	tokensMu sync.RWMutex
	tokens   map[domainauth.Token]domainauth.AccessTokenInfo

	sessionsMu     sync.RWMutex
	sessionCounter domainauth.SessionID
	sessions       map[domainauth.SessionID]domainauth.UserID

	usersMu sync.RWMutex
	users   map[domainauth.UserID]*userSummary
}

// SessionRegistryOptions groups dependencies for NewSessionRegistry.
type SessionRegistryOptions struct {
	Store     ports.Store
	Hasher    ports.PasswordHasher
	Evictions EvictionMarker
	Logger    *slog.Logger
}

// NewSessionRegistry constructs an empty registry.
func NewSessionRegistry(opts SessionRegistryOptions) *SessionRegistry {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionRegistry{
		store:     opts.Store,
		hasher:    opts.Hasher,
		evictions: opts.Evictions,
		logger:    logger,
		tokens:    make(map[domainauth.Token]domainauth.AccessTokenInfo),
		sessions:  make(map[domainauth.SessionID]domainauth.UserID),
		users:     make(map[domainauth.UserID]*userSummary),
	}
}

// Authenticate verifies a username/password pair against the store and, on
// success, issues a new session token. adminOnly additionally requires the
// admin flag on the user record.
//
// Every failure (unknown user, inactive user, wrong role, bad password, or a
// store error) returns the same unauthorized error so callers cannot
// enumerate users. The internal cause is logged at debug level only.
func (r *SessionRegistry) Authenticate(
	ctx context.Context,
	username, password string,
	adminOnly bool,
) (domainauth.UserView, domainauth.Token, error) {
	fail := func(reason string, err error) (domainauth.UserView, domainauth.Token, error) {
		r.logger.DebugContext(ctx, "authentication rejected", "reason", reason, "error", err)
		return domainauth.UserView{}, domainauth.Token{}, apperrors.Unauthorized("invalid credentials")
	}

	user, err := r.store.FindUserByName(ctx, username)
	if err != nil || user == nil {
		return fail("user lookup", err)
	}
	if !user.Active {
		return fail("user inactive", nil)
	}
	if adminOnly && !user.Admin {
		return fail("admin required", nil)
	}

	hash, err := r.store.GetPasswordHash(ctx, user.ID)
	if err != nil || hash == "" {
		return fail("password lookup", err)
	}
	if !r.hasher.Verify(password, hash) {
		return fail("password mismatch", nil)
	}

	view := domainauth.UserView{Name: user.Name, Email: user.Email, Admin: user.Admin}
	token, err := r.Issue(user.ID, view)
	if err != nil {
		return domainauth.UserView{}, domainauth.Token{}, apperrors.Wrap(err, apperrors.ErrCodeInternal, "issue token")
	}

	return view, token, nil
}

// Issue allocates a fresh token and monotonic session id for the user and
// records all three map entries as one atomic unit. The first session for a
// user also cancels any pending eviction of their address-book cache entry.
func (r *SessionRegistry) Issue(id domainauth.UserID, view domainauth.UserView) (domainauth.Token, error) {
	token, err := domainauth.NewToken()
	if err != nil {
		return domainauth.Token{}, err
	}

	r.tokensMu.Lock()
	r.sessionsMu.Lock()
	r.usersMu.Lock()

	r.sessionCounter++
	sessionID := r.sessionCounter

	firstSession := false
	if summary, ok := r.users[id]; ok {
		summary.sessionsCount++
	} else {
		r.users[id] = &userSummary{sessionsCount: 1, name: view.Name, email: view.Email, admin: view.Admin}
		firstSession = true
	}

	r.sessions[sessionID] = id
	r.tokens[token] = domainauth.AccessTokenInfo{SessionID: sessionID, UserID: id}

	r.usersMu.Unlock()
	r.sessionsMu.Unlock()
	r.tokensMu.Unlock()

	if firstSession && r.evictions != nil {
		// The user is back online before their cache entry was evicted.
		r.evictions.CancelEviction(id)
	}

	return token, nil
}

// Resolve looks up the session bound to a token. It is on the hot path of
// every authenticated request and takes only the token read lock.
func (r *SessionRegistry) Resolve(token domainauth.Token) (domainauth.AccessTokenInfo, bool) {
	r.tokensMu.RLock()
	defer r.tokensMu.RUnlock()

	info, ok := r.tokens[token]
	return info, ok
}

// Revoke removes a session, its token, and decrements the owning user's live
// session count. When the count reaches zero the user summary is dropped and
// the user's address-book cache entry (if any) is marked for post-flush
// eviction.
//
// Revoking an already-revoked session returns false and changes nothing.
func (r *SessionRegistry) Revoke(identity domainauth.SessionIdentity) bool {
	r.tokensMu.Lock()
	r.sessionsMu.Lock()
	r.usersMu.Lock()

	if _, ok := r.sessions[identity.SessionID]; !ok {
		r.usersMu.Unlock()
		r.sessionsMu.Unlock()
		r.tokensMu.Unlock()
		return false
	}
	summary, ok := r.users[identity.UserID]
	if !ok {
		r.usersMu.Unlock()
		r.sessionsMu.Unlock()
		r.tokensMu.Unlock()
		return false
	}

	summary.sessionsCount--
	lastSession := summary.sessionsCount == 0
	if lastSession {
		delete(r.users, identity.UserID)
	}

	delete(r.sessions, identity.SessionID)
	delete(r.tokens, identity.Token)

	r.usersMu.Unlock()
	r.sessionsMu.Unlock()
	r.tokensMu.Unlock()

	if lastSession && r.evictions != nil {
		r.evictions.MarkForEviction(identity.UserID)
	}

	return true
}

// UserSummary returns the cached view of a user while they have live
// sessions. Used for authorization checks such as "is this caller an admin".
func (r *SessionRegistry) UserSummary(id domainauth.UserID) (domainauth.UserView, bool) {
	r.usersMu.RLock()
	defer r.usersMu.RUnlock()

	summary, ok := r.users[id]
	if !ok {
		return domainauth.UserView{}, false
	}
	return domainauth.UserView{Name: summary.name, Email: summary.email, Admin: summary.admin}, true
}

// SessionCount reports the number of live sessions for a user.
func (r *SessionRegistry) SessionCount(id domainauth.UserID) int {
	r.usersMu.RLock()
	defer r.usersMu.RUnlock()

	summary, ok := r.users[id]
	if !ok {
		return 0
	}
	return summary.sessionsCount
}
