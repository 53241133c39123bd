package input

import (
	"sort"
	"sync"
)

// Listener receives key transitions from a Source.
type Listener interface {
	KeyDown(k Key)
	KeyUp(k Key)
}

// Source delivers key events to subscribed listeners. The returned function
// removes the listener; after it returns the source must not call it again.
type Source interface {
	Subscribe(l Listener) (unsubscribe func())
}

// Sampler is the set of currently held keys. Inserting a held key and
// removing an unheld key are both no-ops, so key repeat needs no filtering.
type Sampler struct {
	mu   sync.Mutex
	held map[Key]struct{}
}

// NewSampler returns an empty sampler.
func NewSampler() *Sampler {
	return &Sampler{held: make(map[Key]struct{})}
}

// KeyDown marks k as held.
func (s *Sampler) KeyDown(k Key) {
	s.mu.Lock()
	s.held[k] = struct{}{}
	s.mu.Unlock()
}

// KeyUp marks k as released.
func (s *Sampler) KeyUp(k Key) {
	s.mu.Lock()
	delete(s.held, k)
	s.mu.Unlock()
}

// ReleaseAll clears the set.
func (s *Sampler) ReleaseAll() {
	s.mu.Lock()
	clear(s.held)
	s.mu.Unlock()
}

// Held reports whether k is currently held.
func (s *Sampler) Held(k Key) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.held[k]
	return ok
}

// Snapshot returns a copy of the held set.
func (s *Sampler) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make(map[Key]struct{}, len(s.held))
	for k := range s.held {
		keys[k] = struct{}{}
	}
	return Snapshot{keys: keys}
}

// Snapshot is an immutable view of the held keys at one instant.
type Snapshot struct {
	keys map[Key]struct{}
}

// SnapshotOf builds a snapshot holding keys.
func SnapshotOf(keys ...Key) Snapshot {
	m := make(map[Key]struct{}, len(keys))
	for _, k := range keys {
		m[k] = struct{}{}
	}
	return Snapshot{keys: m}
}

// Held reports whether k was held.
func (s Snapshot) Held(k Key) bool {
	_, ok := s.keys[k]
	return ok
}

// Len returns the number of held keys.
func (s Snapshot) Len() int {
	return len(s.keys)
}

// Keys returns the held keys in sorted order.
func (s Snapshot) Keys() []Key {
	keys := make([]Key, 0, len(s.keys))
	for k := range s.keys {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// Listen creates a sampler subscribed to every source. The returned stop
// function unsubscribes from all of them and releases every held key; it is
// safe to call more than once.
func Listen(sources ...Source) (*Sampler, func()) {
	s := NewSampler()
	unsubs := make([]func(), 0, len(sources))
	for _, src := range sources {
		unsubs = append(unsubs, src.Subscribe(s))
	}

	var once sync.Once
	stop := func() {
		once.Do(func() {
			for i := len(unsubs) - 1; i >= 0; i-- {
				unsubs[i]()
			}
			s.ReleaseAll()
		})
	}
	return s, stop
}
