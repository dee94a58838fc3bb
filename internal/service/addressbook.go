package service

import (
	"context"
	"log/slog"
	"sync"

	domainauth "github.com/deskops/console-api/internal/domain/auth"
	"github.com/deskops/console-api/internal/ports"
)

// abEntry is one user's cached address book. modified means the value differs
// from the last known durable value; removeAfterFlush means the owning user's
// last session has logged out and the entry should be dropped once durable.
type abEntry struct {
	modified         bool
	removeAfterFlush bool
	addressBook      domainauth.AddressBook
}

// AddressBookCache is a read-through/write-back cache of each user's legacy
// address book. Writes land in memory and are persisted by a later batched
// flush; retention is bounded by session lifetime via the eviction flags the
// session registry flips through the EvictionMarker hook.
//
// The cache lock guards only the in-memory map. Store calls are always made
// with the lock released.
type AddressBookCache struct {
	store  ports.Store
	logger *slog.Logger

	mu      sync.RWMutex
	entries map[domainauth.UserID]*abEntry
}

var _ EvictionMarker = (*AddressBookCache)(nil)

// NewAddressBookCache constructs an empty cache backed by the given store.
func NewAddressBookCache(store ports.Store, logger *slog.Logger) *AddressBookCache {
	if logger == nil {
		logger = slog.Default()
	}
	return &AddressBookCache{
		store:   store,
		logger:  logger,
		entries: make(map[domainauth.UserID]*abEntry),
	}
}

// Read returns the user's address book from cache, pulling it from the store
// on a miss. A store miss returns an empty address book without caching it,
// so "not found" is never pinned in memory. Store failures fail closed to the
// same empty book.
func (c *AddressBookCache) Read(ctx context.Context, id domainauth.UserID) domainauth.AddressBook {
	c.mu.RLock()
	if entry, ok := c.entries[id]; ok {
		ab := entry.addressBook
		c.mu.RUnlock()
		return ab
	}
	c.mu.RUnlock()

	ab, err := c.store.GetLegacyAddressBook(ctx, id)
	if err != nil {
		c.logger.WarnContext(ctx, "address book read failed", "user_id", id, "error", err)
		return domainauth.AddressBook{}
	}
	if ab == nil {
		return domainauth.AddressBook{}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// A concurrent reader or writer may have populated the entry while the
	// store call was in flight; theirs wins.
	if entry, ok := c.entries[id]; ok {
		return entry.addressBook
	}
	c.entries[id] = &abEntry{addressBook: *ab}
	return *ab
}

// Write stores a new address book value for the user. An existing entry is
// marked dirty only when the value actually changed. A first write inserts a
// clean entry, treated as durable-equivalent until the next differing write.
func (c *AddressBookCache) Write(id domainauth.UserID, ab domainauth.AddressBook) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, ok := c.entries[id]; ok {
		if entry.addressBook != ab {
			entry.addressBook = ab
			entry.modified = true
		}
		return
	}
	c.entries[id] = &abEntry{addressBook: ab}
}

// MarkForEviction implements EvictionMarker.
func (c *AddressBookCache) MarkForEviction(id domainauth.UserID) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, ok := c.entries[id]; ok {
		entry.removeAfterFlush = true
	}
}

// CancelEviction implements EvictionMarker.
func (c *AddressBookCache) CancelEviction(id domainauth.UserID) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, ok := c.entries[id]; ok {
		entry.removeAfterFlush = false
	}
}

// FlushReport summarizes one flush pass.
type FlushReport struct {
	// Submitted is the number of dirty entries included in the batch write.
	Submitted int
	// Evicted is the number of entries removed from the cache this pass.
	Evicted int
	// Failed is true when the batch write errored or affected fewer rows
	// than submitted. Dirty flags are not reverted in that case.
	Failed bool
}

// FlushDirty persists every dirty entry in one batched store write and clears
// their dirty flags up front (at-most-once: a failed persist is logged, not
// retried, until a later write dirties the entry again). Entries flagged
// removeAfterFlush are dropped once their data is known durable: flushed
// entries after a successful batch, already-clean entries immediately.
func (c *AddressBookCache) FlushDirty(ctx context.Context) FlushReport {
	var report FlushReport
	var pairs []ports.AddressBookUpsert

	c.mu.Lock()
	for id, entry := range c.entries {
		if entry.removeAfterFlush && !entry.modified {
			// Nothing to persist; the cached value matches durable state.
			delete(c.entries, id)
			report.Evicted++
			continue
		}
		if !entry.modified {
			continue
		}
		entry.modified = false
		pairs = append(pairs, ports.AddressBookUpsert{UserID: id, AddressBook: entry.addressBook})
	}
	c.mu.Unlock()

	report.Submitted = len(pairs)
	if len(pairs) == 0 {
		return report
	}

	affected, err := c.store.BatchUpsertAddressBooks(ctx, pairs)
	if err != nil || affected != int64(len(pairs)) {
		report.Failed = true
		c.logger.WarnContext(ctx, "address book flush failed",
			"submitted", len(pairs), "affected", affected, "error", err)
		return report
	}

	c.mu.Lock()
	for _, pair := range pairs {
		entry, ok := c.entries[pair.UserID]
		if !ok || !entry.removeAfterFlush {
			continue
		}
		// Skip entries dirtied again after the snapshot was taken; the next
		// flush picks them up.
		if entry.modified {
			continue
		}
		delete(c.entries, pair.UserID)
		report.Evicted++
	}
	c.mu.Unlock()

	return report
}
