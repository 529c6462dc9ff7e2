// Package filterstore persists the filters eth_newFilter creates so
// eth_getFilterChanges/eth_getFilterLogs/eth_uninstallFilter can later
// look them up, potentially from a different gateway process instance
// than the one that created them. The store itself is a pluggable
// key/value backend (in-memory for a single instance, Redis for a
// fleet), the same cachestore2 abstraction ethkit uses for its own
// caches.
package filterstore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/0xsequence/hyperrpc-gateway/rpctypes"
	memcache "github.com/goware/cachestore-mem"
	cachestore "github.com/goware/cachestore2"
	"github.com/google/uuid"
)

// Stored is one eth_newFilter registration: the filter criteria plus
// where the next eth_getFilterChanges poll should resume from.
type Stored struct {
	Filter        rpctypes.LogFilter `json:"filter"`
	NextPollBlock uint64             `json:"nextPollBlock"`
}

// Store is the seam eth_newFilter/eth_getFilterChanges/
// eth_uninstallFilter are built against.
type Store interface {
	Create(ctx context.Context, filter rpctypes.LogFilter, startBlock uint64) (rpctypes.FilterId, error)
	Get(ctx context.Context, id rpctypes.FilterId) (Stored, bool, error)
	// UpdatePoll advances a filter's next-poll cursor. Callers must only
	// call this after successfully delivering the logs up to
	// newNextPollBlock: the update is the commit point for "this filter
	// has now seen everything up to here".
	UpdatePoll(ctx context.Context, id rpctypes.FilterId, newNextPollBlock uint64) error
	Delete(ctx context.Context, id rpctypes.FilterId) error
}

// CacheStore implements Store on top of any cachestore2 backend.
type CacheStore struct {
	store cachestore.Store[[]byte]
}

// New wraps an already-opened cachestore2 store. Use NewMem or NewRedis
// to build one of the two supported backends, or pass a store built
// some other way (e.g. in tests).
func New(store cachestore.Store[[]byte]) *CacheStore {
	return &CacheStore{store: store}
}

// NewMem backs the store with an in-process, size-bounded cache. It
// loses all filters on restart: fine for a single dev instance, wrong
// for anything running behind a load balancer.
func NewMem(maxFilters uint32) (*CacheStore, error) {
	store, err := memcache.NewCacheWithSize[[]byte](maxFilters)
	if err != nil {
		return nil, fmt.Errorf("filterstore: new mem cache: %w", err)
	}
	return New(store), nil
}

// NewRedis backs the store with a Redis-backed cachestore2 Backend, so
// any gateway instance in a fleet can serve eth_getFilterChanges for a
// filter another instance created.
func NewRedis(backend cachestore.Backend) *CacheStore {
	return New(cachestore.OpenStore[[]byte](backend))
}

func (s *CacheStore) Create(ctx context.Context, filter rpctypes.LogFilter, startBlock uint64) (rpctypes.FilterId, error) {
	id := rpctypes.FilterId(uuid.NewString())
	if err := s.save(ctx, id, Stored{Filter: filter, NextPollBlock: startBlock}); err != nil {
		return "", err
	}
	return id, nil
}

func (s *CacheStore) Get(ctx context.Context, id rpctypes.FilterId) (Stored, bool, error) {
	raw, ok, err := s.store.Get(ctx, string(id))
	if err != nil {
		return Stored{}, false, fmt.Errorf("filterstore: get: %w", err)
	}
	if !ok {
		return Stored{}, false, nil
	}
	var stored Stored
	if err := json.Unmarshal(raw, &stored); err != nil {
		return Stored{}, false, fmt.Errorf("filterstore: decode: %w", err)
	}
	return stored, true, nil
}

func (s *CacheStore) UpdatePoll(ctx context.Context, id rpctypes.FilterId, newNextPollBlock uint64) error {
	stored, ok, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("filterstore: filter %s not found", id)
	}
	stored.NextPollBlock = newNextPollBlock
	return s.save(ctx, id, stored)
}

func (s *CacheStore) Delete(ctx context.Context, id rpctypes.FilterId) error {
	if err := s.store.Delete(ctx, string(id)); err != nil {
		return fmt.Errorf("filterstore: delete: %w", err)
	}
	return nil
}

func (s *CacheStore) save(ctx context.Context, id rpctypes.FilterId, stored Stored) error {
	raw, err := json.Marshal(stored)
	if err != nil {
		return fmt.Errorf("filterstore: encode: %w", err)
	}
	if err := s.store.Set(ctx, string(id), raw); err != nil {
		return fmt.Errorf("filterstore: set: %w", err)
	}
	return nil
}

var _ Store = (*CacheStore)(nil)
