package lookup

import (
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"heliroute/internal/performance"
)

type Repository interface {
	GetRegistration(registration string) (*performance.Measured, error)
	SaveRegistration(m *performance.Measured) error
}

// Registry answers measured-performance queries for individual tails. Hits
// and misses are both cached so a busy route editor does not hammer the
// database. Without a repository, recorded tails are kept in memory.
type Registry struct {
	repo  Repository
	cache *expirable.LRU[string, cacheEntry]

	mu    sync.RWMutex
	local map[string]*performance.Measured
}

type cacheEntry struct {
	measured *performance.Measured
	notFound bool
}

func NewRegistry(repo Repository, size int, ttl time.Duration) *Registry {
	if size <= 0 {
		size = 256
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Registry{
		repo:  repo,
		cache: expirable.NewLRU[string, cacheEntry](size, nil, ttl),
		local: make(map[string]*performance.Measured),
	}
}

func normalize(registration string) string {
	return strings.ToUpper(strings.TrimSpace(registration))
}

// Measured implements performance.RegistrationSource.
func (r *Registry) Measured(registration string) (*performance.Measured, bool) {
	key := normalize(registration)
	if key == "" {
		return nil, false
	}

	if entry, ok := r.cache.Get(key); ok {
		if entry.notFound {
			return nil, false
		}
		m := *entry.measured
		return &m, true
	}

	if r.repo == nil {
		r.mu.RLock()
		m, ok := r.local[key]
		r.mu.RUnlock()
		if !ok {
			return nil, false
		}
		c := *m
		return &c, true
	}

	m, err := r.repo.GetRegistration(key)
	if err != nil {
		// Not cached, so the next request retries the database.
		log.Printf("[LOOKUP] Registration lookup failed for %s: %v", key, err)
		return nil, false
	}
	if m == nil {
		r.cache.Add(key, cacheEntry{notFound: true})
		return nil, false
	}

	r.cache.Add(key, cacheEntry{measured: m})
	c := *m
	return &c, true
}

// Record stores measured figures for a tail and refreshes the cache.
func (r *Registry) Record(m performance.Measured) error {
	m.Registration = normalize(m.Registration)
	if m.Registration == "" {
		return fmt.Errorf("registration required")
	}
	if m.CruiseSpeedKnots < 0 || m.FuelBurnLbsPerHour < 0 {
		return fmt.Errorf("measured figures for %s must not be negative", m.Registration)
	}
	if m.UpdatedAt.IsZero() {
		m.UpdatedAt = time.Now()
	}

	if r.repo != nil {
		if err := r.repo.SaveRegistration(&m); err != nil {
			return fmt.Errorf("failed to save registration %s: %w", m.Registration, err)
		}
	} else {
		r.mu.Lock()
		r.local[m.Registration] = &m
		r.mu.Unlock()
	}

	r.cache.Add(m.Registration, cacheEntry{measured: &m})
	log.Printf("[LOOKUP] Recorded performance for %s", m.Registration)
	return nil
}
