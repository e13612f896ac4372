// Package cache stores recognition results keyed by content fingerprint.
package cache

import (
	"fmt"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/ironsheep/ocr-gateway/internal/models"
)

// Eviction policies understood by NewMemory.
const (
	PolicyLRU = "lru"
	Policy2Q  = "2q"
	PolicyTTL = "ttl"
)

// ResultCache maps fingerprints to previously computed responses.
// Implementations must be safe for concurrent use.
type ResultCache interface {
	Lookup(fingerprint string) (models.OCRResponse, bool)
	Peek(fingerprint string) (models.OCRResponse, bool)
	Store(fingerprint string, resp models.OCRResponse)
	Len() int
	Stats() Stats
}

// Stats reports cache performance counters.
type Stats struct {
	Entries  int    `json:"entries"`
	Hits     int64  `json:"hits"`
	Misses   int64  `json:"misses"`
	Capacity int    `json:"capacity"`
	Policy   string `json:"policy"`
}

// store is the subset of the golang-lru caches Memory relies on.
type store interface {
	Get(key string) (models.OCRResponse, bool)
	Peek(key string) (models.OCRResponse, bool)
	Add(key string, value models.OCRResponse)
	Len() int
}

// Memory is a bounded in-process ResultCache.
type Memory struct {
	store    store
	capacity int
	policy   string
	hits     atomic.Int64
	misses   atomic.Int64
}

// NewMemory creates a cache holding at most capacity entries. ttl is only
// used by the ttl policy.
func NewMemory(capacity int, policy string, ttl time.Duration) (*Memory, error) {
	if capacity < 1 {
		return nil, fmt.Errorf("cache capacity must be at least 1, got %d", capacity)
	}

	var s store
	switch policy {
	case PolicyLRU, "":
		policy = PolicyLRU
		c, err := lru.New[string, models.OCRResponse](capacity)
		if err != nil {
			return nil, fmt.Errorf("create lru cache: %w", err)
		}
		s = lruStore{c}
	case Policy2Q:
		c, err := lru.New2Q[string, models.OCRResponse](capacity)
		if err != nil {
			return nil, fmt.Errorf("create 2q cache: %w", err)
		}
		s = c
	case PolicyTTL:
		if ttl <= 0 {
			return nil, fmt.Errorf("ttl policy requires a positive ttl, got %s", ttl)
		}
		s = expirableStore{expirable.NewLRU[string, models.OCRResponse](capacity, nil, ttl)}
	default:
		return nil, fmt.Errorf("unknown cache policy %q", policy)
	}

	return &Memory{store: s, capacity: capacity, policy: policy}, nil
}

// Lookup returns a copy of the stored response.
func (m *Memory) Lookup(fingerprint string) (models.OCRResponse, bool) {
	resp, ok := m.store.Get(fingerprint)
	if !ok {
		m.misses.Add(1)
		return models.OCRResponse{}, false
	}
	m.hits.Add(1)
	return resp, true
}

// Peek is Lookup without touching recency or the hit/miss counters.
func (m *Memory) Peek(fingerprint string) (models.OCRResponse, bool) {
	return m.store.Peek(fingerprint)
}

// Store records resp under fingerprint, evicting per policy when full.
func (m *Memory) Store(fingerprint string, resp models.OCRResponse) {
	m.store.Add(fingerprint, resp)
}

// Len returns the number of live entries.
func (m *Memory) Len() int {
	return m.store.Len()
}

// Stats returns cache performance metrics.
func (m *Memory) Stats() Stats {
	return Stats{
		Entries:  m.store.Len(),
		Hits:     m.hits.Load(),
		Misses:   m.misses.Load(),
		Capacity: m.capacity,
		Policy:   m.policy,
	}
}

type lruStore struct {
	*lru.Cache[string, models.OCRResponse]
}

func (s lruStore) Add(key string, value models.OCRResponse) {
	s.Cache.Add(key, value)
}

type expirableStore struct {
	*expirable.LRU[string, models.OCRResponse]
}

func (s expirableStore) Add(key string, value models.OCRResponse) {
	s.LRU.Add(key, value)
}

// Disabled never stores anything; every lookup misses.
type Disabled struct {
	misses atomic.Int64
}

func (d *Disabled) Lookup(string) (models.OCRResponse, bool) {
	d.misses.Add(1)
	return models.OCRResponse{}, false
}

func (d *Disabled) Peek(string) (models.OCRResponse, bool) {
	return models.OCRResponse{}, false
}

func (d *Disabled) Store(string, models.OCRResponse) {}

func (d *Disabled) Len() int { return 0 }

func (d *Disabled) Stats() Stats {
	return Stats{Misses: d.misses.Load(), Policy: "disabled"}
}

// New builds the ResultCache described by the arguments.
func New(enabled bool, capacity int, policy string, ttl time.Duration) (ResultCache, error) {
	if !enabled {
		return &Disabled{}, nil
	}
	return NewMemory(capacity, policy, ttl)
}
