// Package mocks provides mock implementations for testing the console API.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks for
// the store interface. The mocks are generated using go:generate directives
// and provide a fluent API for setting up test expectations.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	defer ctrl.Finish()
//	mockStore := mocks.NewMockStore(ctrl)
//	mockStore.EXPECT().FindUserByName(gomock.Any(), "alice").Return(user, nil)
//
// Hand-written doubles for simpler cases live in the auth subpackage.
package mocks

// Generate mock for the Store interface from internal/ports.
// This creates MockStore with methods for all Store interface methods:
// FindUserByName, GetPasswordHash, GetLegacyAddressBook,
// BatchUpsertAddressBooks, GetOrCreateFederatedUser, UpdatePassword
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=store_mock.go github.com/deskops/console-api/internal/ports Store
