package cache

import (
	"sync"
	"time"
)

// Store is a read-through, TTL-bounded cache for entity snapshots, grouped
// into named regions. A region can be evicted wholesale (aggregate listings
// that depend on every record) or one key at a time. The cache never
// originates data: a miss or an expired entry always goes back to the
// loader, and values are treated as immutable snapshots by callers.
//
// A Store is constructed once at process start and passed by reference to
// the components that need it; there is no package-level instance.
type Store struct {
	mu      sync.Mutex
	ttl     time.Duration
	regions map[string]map[string]entry

	now func() time.Time
}

type entry struct {
	value     interface{}
	expiresAt time.Time
}

// DefaultTTL bounds the staleness window of cached snapshots.
const DefaultTTL = 10 * time.Minute

// New creates a cache store with the given entry TTL.
// A non-positive ttl falls back to DefaultTTL.
func New(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{
		ttl:     ttl,
		regions: make(map[string]map[string]entry),
		now:     time.Now,
	}
}

// Get returns the cached value for (region, key), if present and fresh.
func (s *Store) Get(region, key string) (interface{}, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys, ok := s.regions[region]
	if !ok {
		return nil, false
	}
	e, ok := keys[key]
	if !ok {
		return nil, false
	}
	if s.now().After(e.expiresAt) {
		delete(keys, key)
		return nil, false
	}
	return e.value, true
}

// Set stores a value under (region, key) with the configured TTL.
func (s *Store) Set(region, key string, value interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys, ok := s.regions[region]
	if !ok {
		keys = make(map[string]entry)
		s.regions[region] = keys
	}
	keys[key] = entry{value: value, expiresAt: s.now().Add(s.ttl)}
}

// Evict removes a single key from a region.
func (s *Store) Evict(region, key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if keys, ok := s.regions[region]; ok {
		delete(keys, key)
	}
}

// EvictRegion removes every entry in a region.
func (s *Store) EvictRegion(region string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.regions, region)
}

// GetOrLoad returns the cached value for (region, key), calling load and
// caching its result on a miss. Loader failures are returned to the caller
// and never cached.
//
// The lock is not held across load, so concurrent misses on the same key
// may each call load once; the last result wins. That is an accepted
// trade-off: loaders fetch immutable snapshots from a source of truth.
func (s *Store) GetOrLoad(region, key string, load func() (interface{}, error)) (interface{}, error) {
	if v, ok := s.Get(region, key); ok {
		return v, nil
	}

	v, err := load()
	if err != nil {
		return nil, err
	}
	s.Set(region, key, v)
	return v, nil
}
