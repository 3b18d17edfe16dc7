package route

import (
	"sync"
	"time"

	"github.com/brunoga/deep"
)

// Snapshot is one published version of the current route statistics.
type Snapshot struct {
	Version   uint64     `json:"version" msgpack:"version"`
	Stats     RouteStats `json:"stats" msgpack:"stats"`
	Reason    string     `json:"reason,omitempty" msgpack:"reason,omitempty"`
	UpdatedAt time.Time  `json:"updated_at" msgpack:"updated_at"`
}

// Store owns the current snapshot. Every write replaces the snapshot whole
// and bumps the version; readers always get their own copy.
//
// Subscribers are notified in subscription order while the write lock is
// held, so each subscriber sees versions in increasing order. A subscriber
// whose buffer is full misses that version and can catch up with Current.
type Store struct {
	mu      sync.Mutex
	current *Snapshot
	version uint64
	now     func() time.Time

	subscribers []chan Snapshot
}

func NewStore() *Store {
	return &Store{now: time.Now}
}

func (s *Store) Publish(stats RouteStats, reason string) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.publishLocked(stats, reason)
}

// Update runs fn with the current snapshot under the store lock. If fn
// returns publish=true its stats replace the snapshot before any other
// writer can run, so a read-check-write sequence cannot interleave with a
// concurrent Publish.
func (s *Store) Update(fn func(cur Snapshot, ok bool) (stats RouteStats, reason string, publish bool)) (Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var cur Snapshot
	ok := s.current != nil
	if ok {
		cur = deep.MustCopy(*s.current)
	}

	stats, reason, publish := fn(cur, ok)
	if !publish {
		return cur, false
	}
	return s.publishLocked(stats, reason), true
}

func (s *Store) publishLocked(stats RouteStats, reason string) Snapshot {
	s.version++
	snap := Snapshot{
		Version:   s.version,
		Stats:     deep.MustCopy(stats),
		Reason:    reason,
		UpdatedAt: s.now().UTC(),
	}
	s.current = &snap

	for _, ch := range s.subscribers {
		select {
		case ch <- deep.MustCopy(snap):
		default:
		}
	}
	return deep.MustCopy(snap)
}

// Current returns a copy of the latest snapshot; ok is false before the
// first publish.
func (s *Store) Current() (Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return Snapshot{}, false
	}
	return deep.MustCopy(*s.current), true
}

// Version returns the latest published version, 0 before the first publish.
func (s *Store) Version() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

func (s *Store) Subscribe() chan Snapshot {
	ch := make(chan Snapshot, 16)
	s.mu.Lock()
	s.subscribers = append(s.subscribers, ch)
	s.mu.Unlock()
	return ch
}

func (s *Store) Unsubscribe(ch chan Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, sub := range s.subscribers {
		if sub == ch {
			s.subscribers = append(s.subscribers[:i], s.subscribers[i+1:]...)
			close(ch)
			return
		}
	}
}
