// internal/room/registry.go
package room

import (
	"log"
	"strings"
	"sync"
	"time"
)

const (
	// SweepInterval is how often the reaper scans for leaked rooms.
	SweepInterval = 30 * time.Minute
	// RetentionWindow is the inactivity age past which a room is evicted,
	// regardless of player count.
	RetentionWindow = 24 * time.Hour
)

// Store is the keyed collection backing a Registry. Injecting it keeps the
// registry free of hidden global state and lets tests swap in a fake.
type Store interface {
	Get(code string) (*Room, bool)
	Put(code string, r *Room)
	Delete(code string)
	// Each visits every room until fn returns false.
	Each(fn func(code string, r *Room) bool)
	Len() int
}

// MemoryStore is the default in-process Store.
type MemoryStore struct {
	mu    sync.Mutex
	rooms map[string]*Room
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{rooms: make(map[string]*Room)}
}

func (s *MemoryStore) Get(code string) (*Room, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rooms[code]
	return r, ok
}

func (s *MemoryStore) Put(code string, r *Room) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rooms[code] = r
}

func (s *MemoryStore) Delete(code string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rooms, code)
}

func (s *MemoryStore) Each(fn func(code string, r *Room) bool) {
	s.mu.Lock()
	snapshot := make(map[string]*Room, len(s.rooms))
	for k, v := range s.rooms {
		snapshot[k] = v
	}
	s.mu.Unlock()

	for k, v := range snapshot {
		if !fn(k, v) {
			return
		}
	}
}

func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rooms)
}

// Registry maps short room codes to live rooms and owns the reaper that
// evicts rooms left behind by abrupt process-level disconnects.
type Registry struct {
	store Store
}

// NewRegistry builds a registry over the given store; nil selects the
// in-memory default.
func NewRegistry(store Store) *Registry {
	if store == nil {
		store = NewMemoryStore()
	}
	return &Registry{store: store}
}

// NewCode returns a code not currently present in the registry.
func (reg *Registry) NewCode() string {
	return GenerateCode(func(code string) bool {
		_, exists := reg.store.Get(code)
		return exists
	})
}

// Register adds a room under its code and wires its OnEmpty cleanup if the
// room does not already have one.
func (reg *Registry) Register(r *Room) {
	if r.OnEmpty == nil {
		r.OnEmpty = func(code string) {
			reg.Deregister(code)
		}
	}
	reg.store.Put(r.Code, r)
	log.Printf("registry: room %s registered", r.Code)
}

// Lookup resolves a code to a live room. Codes are case-insensitive on the
// wire and canonically uppercase.
func (reg *Registry) Lookup(code string) (*Room, bool) {
	return reg.store.Get(strings.ToUpper(code))
}

// Deregister removes a room by code.
func (reg *Registry) Deregister(code string) {
	if _, ok := reg.store.Get(code); !ok {
		return
	}
	reg.store.Delete(code)
	log.Printf("registry: room %s deregistered", code)
}

// Count returns the number of live rooms.
func (reg *Registry) Count() int {
	return reg.store.Len()
}

// Sweep evicts every room whose last activity is older than maxAge as of now,
// returning how many were removed.
func (reg *Registry) Sweep(maxAge time.Duration, now time.Time) int {
	var stale []string
	reg.store.Each(func(code string, r *Room) bool {
		r.Mu.Lock()
		expired := now.Sub(r.LastActivityAt) > maxAge
		if expired {
			r.StopTurnTimerUnsafe()
		}
		r.Mu.Unlock()
		if expired {
			stale = append(stale, code)
		}
		return true
	})
	for _, code := range stale {
		reg.store.Delete(code)
		log.Printf("registry: cleaned up inactive room %s", code)
	}
	return len(stale)
}

// StartReaper runs Sweep every interval until the returned stop function is
// called.
func (reg *Registry) StartReaper(interval, maxAge time.Duration) (stop func()) {
	ticker := time.NewTicker(interval)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				reg.Sweep(maxAge, time.Now())
			}
		}
	}()
	return func() {
		ticker.Stop()
		close(done)
	}
}
