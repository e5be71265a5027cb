// internal/room/registry_test.go
package room

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore records operations so tests can observe registry behavior
// without the real map.
type fakeStore struct {
	rooms   map[string]*Room
	deletes []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{rooms: make(map[string]*Room)}
}

func (s *fakeStore) Get(code string) (*Room, bool) {
	r, ok := s.rooms[code]
	return r, ok
}

func (s *fakeStore) Put(code string, r *Room) { s.rooms[code] = r }

func (s *fakeStore) Delete(code string) {
	delete(s.rooms, code)
	s.deletes = append(s.deletes, code)
}

func (s *fakeStore) Each(fn func(code string, r *Room) bool) {
	for k, v := range s.rooms {
		if !fn(k, v) {
			return
		}
	}
}

func (s *fakeStore) Len() int { return len(s.rooms) }

func TestGeneratedCodesAreWellFormed(t *testing.T) {
	pattern := regexp.MustCompile(`^[A-Z0-9]{6}$`)
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		code := GenerateCode(func(string) bool { return false })
		assert.Regexp(t, pattern, code)
		seen[code] = true
	}
	assert.Greater(t, len(seen), 90, "codes should rarely collide by chance")
}

func TestGenerateCodeRetriesOnCollision(t *testing.T) {
	rejected := 0
	GenerateCode(func(code string) bool {
		rejected++
		return rejected <= 3 // pretend the first three draws are taken
	})
	assert.Equal(t, 4, rejected)
}

func TestRegistryRegisterLookupDeregister(t *testing.T) {
	reg := NewRegistry(newFakeStore())
	r := New(reg.NewCode(), DefaultSettings())
	reg.Register(r)

	got, ok := reg.Lookup(r.Code)
	require.True(t, ok)
	assert.Same(t, r, got)
	assert.Equal(t, 1, reg.Count())

	// Lookup is case-insensitive on the wire.
	got, ok = reg.Lookup(lower(r.Code))
	require.True(t, ok)
	assert.Same(t, r, got)

	reg.Deregister(r.Code)
	_, ok = reg.Lookup(r.Code)
	assert.False(t, ok)
	assert.Equal(t, 0, reg.Count())
}

func lower(s string) string {
	out := []byte(s)
	for i, c := range out {
		if c >= 'A' && c <= 'Z' {
			out[i] = c + 'a' - 'A'
		}
	}
	return string(out)
}

func TestRegisterWiresOnEmpty(t *testing.T) {
	reg := NewRegistry(newFakeStore())
	r := New("EMPT01", DefaultSettings())
	reg.Register(r)
	require.NotNil(t, r.OnEmpty)

	r.OnEmpty(r.Code)
	_, ok := reg.Lookup(r.Code)
	assert.False(t, ok, "OnEmpty must deregister the room")
}

func TestSweepEvictsStaleRooms(t *testing.T) {
	store := newFakeStore()
	reg := NewRegistry(store)

	fresh := New("FRESH1", DefaultSettings())
	stale := New("STALE1", DefaultSettings())
	stale.LastActivityAt = time.Now().Add(-25 * time.Hour)
	reg.Register(fresh)
	reg.Register(stale)

	evicted := reg.Sweep(RetentionWindow, time.Now())
	assert.Equal(t, 1, evicted)
	assert.Contains(t, store.deletes, "STALE1")
	_, ok := reg.Lookup("FRESH1")
	assert.True(t, ok)
}

func TestSweepIgnoresActiveRoomsRegardlessOfAge(t *testing.T) {
	reg := NewRegistry(newFakeStore())
	old := New("OLD001", DefaultSettings())
	old.CreatedAt = time.Now().Add(-48 * time.Hour)
	old.LastActivityAt = time.Now().Add(-time.Minute)
	reg.Register(old)

	assert.Equal(t, 0, reg.Sweep(RetentionWindow, time.Now()), "recent activity protects an old room")
}
