package auth

// Package auth contains simple hand-written test doubles for the session and
// federation ports. These are lightweight and suitable for unit tests without
// codegen.

import (
	"context"
	"fmt"
	"sync"

	domainauth "github.com/deskops/console-api/internal/domain/auth"
	"github.com/deskops/console-api/internal/ports"
)

// Ensure compile-time conformance to ports.
var (
	_ ports.Store          = (*MemoryStore)(nil)
	_ ports.Provider       = (*FakeProvider)(nil)
	_ ports.PasswordHasher = (*PlainHasher)(nil)
)

// MemoryStore is an in-memory ports.Store. Each method can be overridden with
// a Func field; otherwise it operates on the in-memory maps.
type MemoryStore struct {
	mu sync.Mutex

	Users         map[domainauth.UserID]*domainauth.UserRecord
	PasswordHashs map[domainauth.UserID]string
	AddressBooks  map[domainauth.UserID]string

	// AutoActivate controls whether JIT-created federated users start active.
	AutoActivate bool

	// UpsertCalls records every batch submitted to BatchUpsertAddressBooks.
	UpsertCalls [][]ports.AddressBookUpsert

	FindUserByNameFunc       func(ctx context.Context, name string) (*domainauth.UserRecord, error)
	GetLegacyAddressBookFunc func(ctx context.Context, id domainauth.UserID) (*domainauth.AddressBook, error)
	BatchUpsertFunc          func(ctx context.Context, pairs []ports.AddressBookUpsert) (int64, error)
	GetOrCreateFederatedFunc func(ctx context.Context, identity domainauth.FederatedIdentity) (*domainauth.UserRecord, error)
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		Users:         make(map[domainauth.UserID]*domainauth.UserRecord),
		PasswordHashs: make(map[domainauth.UserID]string),
		AddressBooks:  make(map[domainauth.UserID]string),
	}
}

// AddUser registers a user with the given plaintext password (stored via
// PlainHasher convention: the "hash" is the plaintext).
func (s *MemoryStore) AddUser(user domainauth.UserRecord, password string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := user
	s.Users[user.ID] = &u
	s.PasswordHashs[user.ID] = password
}

func (s *MemoryStore) FindUserByName(ctx context.Context, name string) (*domainauth.UserRecord, error) {
	if s.FindUserByNameFunc != nil {
		return s.FindUserByNameFunc(ctx, name)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.Users {
		if u.Name == name {
			out := *u
			return &out, nil
		}
	}
	return nil, nil
}

func (s *MemoryStore) GetPasswordHash(_ context.Context, id domainauth.UserID) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.PasswordHashs[id], nil
}

func (s *MemoryStore) GetLegacyAddressBook(ctx context.Context, id domainauth.UserID) (*domainauth.AddressBook, error) {
	if s.GetLegacyAddressBookFunc != nil {
		return s.GetLegacyAddressBookFunc(ctx, id)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	ab, ok := s.AddressBooks[id]
	if !ok {
		return nil, nil
	}
	return &domainauth.AddressBook{AB: ab}, nil
}

func (s *MemoryStore) BatchUpsertAddressBooks(ctx context.Context, pairs []ports.AddressBookUpsert) (int64, error) {
	if s.BatchUpsertFunc != nil {
		return s.BatchUpsertFunc(ctx, pairs)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.UpsertCalls = append(s.UpsertCalls, pairs)
	for _, p := range pairs {
		s.AddressBooks[p.UserID] = p.AddressBook.AB
	}
	return int64(len(pairs)), nil
}

func (s *MemoryStore) GetOrCreateFederatedUser(ctx context.Context, identity domainauth.FederatedIdentity) (*domainauth.UserRecord, error) {
	if s.GetOrCreateFederatedFunc != nil {
		return s.GetOrCreateFederatedFunc(ctx, identity)
	}
	if existing, err := s.FindUserByName(ctx, identity.DisplayName); err != nil || existing != nil {
		return existing, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	user := &domainauth.UserRecord{
		ID:     domainauth.UserID(fmt.Sprintf("jit-%d", len(s.Users)+1)),
		Name:   identity.DisplayName,
		Email:  identity.Email,
		Active: s.AutoActivate,
	}
	s.Users[user.ID] = user
	out := *user
	return &out, nil
}

func (s *MemoryStore) UpdatePassword(_ context.Context, id domainauth.UserID, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.Users[id]; !ok {
		return fmt.Errorf("user %s not found", id)
	}
	s.PasswordHashs[id] = hash
	return nil
}

// FakeProvider simulates an identity provider with deterministic outcomes.
type FakeProvider struct {
	ProviderName string
	Identity     ports.ProviderIdentity
	ExchangeErr  error

	// ExchangeCalls counts invocations of ExchangeCode.
	ExchangeCalls int
}

func (p *FakeProvider) Name() string {
	if p.ProviderName == "" {
		return "fake"
	}
	return p.ProviderName
}

func (p *FakeProvider) BuildAuthorizationURL(callbackURL, state string) string {
	return fmt.Sprintf("https://fake-idp/authorize?redirect_uri=%s&state=%s", callbackURL, state)
}

func (p *FakeProvider) ExchangeCode(_ context.Context, _, _ string) (ports.ProviderIdentity, error) {
	p.ExchangeCalls++
	if p.ExchangeErr != nil {
		return ports.ProviderIdentity{}, p.ExchangeErr
	}
	return p.Identity, nil
}

// PlainHasher "hashes" by identity, keeping password assertions readable in
// tests.
type PlainHasher struct{}

func (PlainHasher) Hash(plaintext string) (string, error) { return plaintext, nil }

func (PlainHasher) Verify(plaintext, hash string) bool { return plaintext == hash }
