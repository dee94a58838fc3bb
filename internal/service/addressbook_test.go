package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/deskops/console-api/internal/domain/auth"
	mockauth "github.com/deskops/console-api/internal/mocks/auth"
	"github.com/deskops/console-api/internal/ports"
)

func TestAddressBookCache_ReadThrough(t *testing.T) {
	store := mockauth.NewMemoryStore()
	store.AddressBooks["u1"] = `{"peers":[]}`
	cache := NewAddressBookCache(store, nil)
	ctx := context.Background()

	ab := cache.Read(ctx, "u1")
	assert.Equal(t, `{"peers":[]}`, ab.AB)

	// Second read is served from cache even if the store forgets the row.
	delete(store.AddressBooks, "u1")
	ab = cache.Read(ctx, "u1")
	assert.Equal(t, `{"peers":[]}`, ab.AB)
}

func TestAddressBookCache_ReadMissNotCached(t *testing.T) {
	store := mockauth.NewMemoryStore()
	cache := NewAddressBookCache(store, nil)
	ctx := context.Background()

	ab := cache.Read(ctx, "u1")
	assert.True(t, ab.Empty())

	// The miss was not pinned: once the store has data it is visible.
	store.AddressBooks["u1"] = "data"
	ab = cache.Read(ctx, "u1")
	assert.Equal(t, "data", ab.AB)
}

func TestAddressBookCache_ReadStoreErrorFailsClosed(t *testing.T) {
	store := mockauth.NewMemoryStore()
	store.GetLegacyAddressBookFunc = func(context.Context, domainauth.UserID) (*domainauth.AddressBook, error) {
		return nil, errors.New("db down")
	}
	cache := NewAddressBookCache(store, nil)

	ab := cache.Read(context.Background(), "u1")
	assert.True(t, ab.Empty())
}

func TestAddressBookCache_ReadYourWrites(t *testing.T) {
	store := mockauth.NewMemoryStore()
	cache := NewAddressBookCache(store, nil)
	ctx := context.Background()

	cache.Write("u1", domainauth.AddressBook{AB: "v1"})
	assert.Equal(t, "v1", cache.Read(ctx, "u1").AB)

	cache.Write("u1", domainauth.AddressBook{AB: "v2"})
	assert.Equal(t, "v2", cache.Read(ctx, "u1").AB)
}

func TestAddressBookCache_FlushExactlyDirty(t *testing.T) {
	store := mockauth.NewMemoryStore()
	cache := NewAddressBookCache(store, nil)
	ctx := context.Background()

	// First write inserts a clean entry; only the re-write dirties it.
	cache.Write("clean", domainauth.AddressBook{AB: "same"})
	cache.Write("dirty", domainauth.AddressBook{AB: "v1"})
	cache.Write("dirty", domainauth.AddressBook{AB: "v2"})

	report := cache.FlushDirty(ctx)
	assert.Equal(t, 1, report.Submitted)
	assert.False(t, report.Failed)
	require.Len(t, store.UpsertCalls, 1)
	require.Len(t, store.UpsertCalls[0], 1)
	assert.Equal(t, domainauth.UserID("dirty"), store.UpsertCalls[0][0].UserID)
	assert.Equal(t, "v2", store.UpsertCalls[0][0].AddressBook.AB)

	// Nothing left to flush.
	report = cache.FlushDirty(ctx)
	assert.Equal(t, 0, report.Submitted)
}

func TestAddressBookCache_WriteSameValueNotDirty(t *testing.T) {
	store := mockauth.NewMemoryStore()
	store.AddressBooks["u1"] = "v1"
	cache := NewAddressBookCache(store, nil)
	ctx := context.Background()

	cache.Read(ctx, "u1")
	cache.Write("u1", domainauth.AddressBook{AB: "v1"})

	report := cache.FlushDirty(ctx)
	assert.Equal(t, 0, report.Submitted)
}

func TestAddressBookCache_EvictionAfterFlush(t *testing.T) {
	store := mockauth.NewMemoryStore()
	cache := NewAddressBookCache(store, nil)
	ctx := context.Background()

	cache.Write("u1", domainauth.AddressBook{AB: "v1"})
	cache.Write("u1", domainauth.AddressBook{AB: "v2"})
	cache.MarkForEviction("u1")

	report := cache.FlushDirty(ctx)
	assert.Equal(t, 1, report.Submitted)
	assert.Equal(t, 1, report.Evicted)

	// Entry is gone; the next read repopulates from the store.
	assert.Equal(t, "v2", store.AddressBooks["u1"])
	store.AddressBooks["u1"] = "durable"
	assert.Equal(t, "durable", cache.Read(ctx, "u1").AB)
}

func TestAddressBookCache_CleanEntryEvictedWithoutWrite(t *testing.T) {
	store := mockauth.NewMemoryStore()
	cache := NewAddressBookCache(store, nil)

	cache.Write("u1", domainauth.AddressBook{AB: "v1"})
	cache.MarkForEviction("u1")

	report := cache.FlushDirty(context.Background())
	assert.Equal(t, 0, report.Submitted)
	assert.Equal(t, 1, report.Evicted)
	assert.Empty(t, store.UpsertCalls)
}

func TestAddressBookCache_CancelEvictionKeepsEntry(t *testing.T) {
	store := mockauth.NewMemoryStore()
	cache := NewAddressBookCache(store, nil)
	ctx := context.Background()

	cache.Write("u1", domainauth.AddressBook{AB: "v1"})
	cache.MarkForEviction("u1")
	cache.CancelEviction("u1")

	report := cache.FlushDirty(ctx)
	assert.Equal(t, 0, report.Evicted)
	assert.Equal(t, "v1", cache.Read(ctx, "u1").AB)
}

func TestAddressBookCache_FailedFlushNotRetried(t *testing.T) {
	store := mockauth.NewMemoryStore()
	calls := 0
	store.BatchUpsertFunc = func(_ context.Context, pairs []ports.AddressBookUpsert) (int64, error) {
		calls++
		return 0, errors.New("db down")
	}
	cache := NewAddressBookCache(store, nil)
	ctx := context.Background()

	cache.Write("u1", domainauth.AddressBook{AB: "v1"})
	cache.Write("u1", domainauth.AddressBook{AB: "v2"})

	report := cache.FlushDirty(ctx)
	assert.True(t, report.Failed)
	assert.Equal(t, 1, calls)

	// Dirty flags were cleared before the write and are not reverted: the
	// failed batch is not resubmitted until a new write dirties the entry.
	report = cache.FlushDirty(ctx)
	assert.Equal(t, 0, report.Submitted)
	assert.Equal(t, 1, calls)

	cache.Write("u1", domainauth.AddressBook{AB: "v3"})
	report = cache.FlushDirty(ctx)
	assert.Equal(t, 1, report.Submitted)
	assert.Equal(t, 2, calls)
}

func TestAddressBookCache_ShortAffectedCountIsFailure(t *testing.T) {
	store := mockauth.NewMemoryStore()
	store.BatchUpsertFunc = func(_ context.Context, pairs []ports.AddressBookUpsert) (int64, error) {
		return int64(len(pairs)) - 1, nil
	}
	cache := NewAddressBookCache(store, nil)

	cache.Write("u1", domainauth.AddressBook{AB: "v1"})
	cache.Write("u1", domainauth.AddressBook{AB: "v2"})
	cache.MarkForEviction("u1")

	report := cache.FlushDirty(context.Background())
	assert.True(t, report.Failed)
	// A failed flush never evicts flushed entries.
	assert.Equal(t, 0, report.Evicted)
}

func TestAddressBookCache_RewrittenEntrySurvivesEviction(t *testing.T) {
	store := mockauth.NewMemoryStore()
	cache := NewAddressBookCache(store, nil)
	ctx := context.Background()

	cache.Write("u1", domainauth.AddressBook{AB: "v1"})
	cache.Write("u1", domainauth.AddressBook{AB: "v2"})
	cache.MarkForEviction("u1")

	// Dirty the entry again mid-flush by wrapping the store call.
	store.BatchUpsertFunc = func(_ context.Context, pairs []ports.AddressBookUpsert) (int64, error) {
		cache.Write("u1", domainauth.AddressBook{AB: "v3"})
		return int64(len(pairs)), nil
	}

	report := cache.FlushDirty(ctx)
	assert.Equal(t, 1, report.Submitted)
	assert.Equal(t, 0, report.Evicted)
	assert.Equal(t, "v3", cache.Read(ctx, "u1").AB)
}
