package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/deskops/console-api/internal/domain/auth"
	mockauth "github.com/deskops/console-api/internal/mocks/auth"
)

func TestMaintenanceScheduler_IntervalGating(t *testing.T) {
	store := mockauth.NewMemoryStore()
	cache := NewAddressBookCache(store, nil)
	scheduler := NewMaintenanceScheduler(cache, 60*time.Second, nil)
	ctx := context.Background()

	base := time.Unix(1_000_000, 0)

	cache.Write("u1", domainauth.AddressBook{AB: "v1"})
	cache.Write("u1", domainauth.AddressBook{AB: "v2"})

	assert.True(t, scheduler.MaybeRun(ctx, base))
	require.Len(t, store.UpsertCalls, 1)

	// Within the interval nothing runs, even with dirty entries waiting.
	cache.Write("u1", domainauth.AddressBook{AB: "v3"})
	assert.False(t, scheduler.MaybeRun(ctx, base.Add(30*time.Second)))
	assert.Len(t, store.UpsertCalls, 1)

	// Once the interval has elapsed the next call flushes.
	assert.True(t, scheduler.MaybeRun(ctx, base.Add(61*time.Second)))
	assert.Len(t, store.UpsertCalls, 2)
}

func TestMaintenanceScheduler_DefaultInterval(t *testing.T) {
	cache := NewAddressBookCache(mockauth.NewMemoryStore(), nil)

	scheduler := NewMaintenanceScheduler(cache, 0, nil)
	assert.Equal(t, DefaultMaintenanceInterval, scheduler.interval)

	scheduler = NewMaintenanceScheduler(cache, -time.Second, nil)
	assert.Equal(t, DefaultMaintenanceInterval, scheduler.interval)
}

func TestMaintenanceScheduler_RunsOnFirstCall(t *testing.T) {
	store := mockauth.NewMemoryStore()
	cache := NewAddressBookCache(store, nil)
	scheduler := NewMaintenanceScheduler(cache, time.Hour, nil)

	assert.True(t, scheduler.MaybeRun(context.Background(), time.Now()))
}
