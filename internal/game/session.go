package game

import (
	"context"
	"errors"
	"sync"

	"github.com/bookistos/warehouse-simulator/internal/core/pose"
	"github.com/bookistos/warehouse-simulator/internal/input"
	"github.com/bookistos/warehouse-simulator/internal/simulation"
	"github.com/bookistos/warehouse-simulator/internal/world/warehouse"
)

// ErrMounted is returned by Mount when the session is already running.
var ErrMounted = errors.New("session already mounted")

// Session ties the input sampler, the integrator and its tick to the life of
// a mounted view. Mount starts all three; Unmount stops the tick and drops
// the key listeners together.
type Session struct {
	world    *warehouse.Map
	config   *simulation.Config
	bindings input.Bindings

	mu         sync.Mutex
	observers  []func(simulation.TickResult)
	integrator *simulation.Integrator
	scheduler  *simulation.Scheduler
	teardown   []func()
}

// NewSession creates an unmounted session on m.
func NewSession(m *warehouse.Map, cfg *simulation.Config, b input.Bindings) *Session {
	if b == nil {
		b = input.DefaultBindings()
	}
	return &Session{world: m, config: cfg, bindings: b}
}

// World returns the floor plan.
func (s *Session) World() *warehouse.Map {
	return s.world
}

// Config returns the simulation config.
func (s *Session) Config() *simulation.Config {
	return s.config
}

// Observe registers fn for every tick of every future mount.
func (s *Session) Observe(fn func(simulation.TickResult)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, fn)
}

// Mount subscribes to sources and starts ticking from the spawn pose. It
// returns the store the tick publishes to.
func (s *Session) Mount(ctx context.Context, sources ...input.Source) (*pose.Store, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.scheduler != nil {
		return nil, ErrMounted
	}

	keys, stopInput := input.Listen(sources...)
	integrator := simulation.NewIntegrator(s.world, keys, s.bindings, s.config)

	teardown := []func(){stopInput}
	for _, fn := range s.observers {
		teardown = append(teardown, integrator.Subscribe(fn))
	}

	scheduler := simulation.NewScheduler(s.config.TickInterval(), func() { integrator.Tick() })
	scheduler.Start(ctx)

	s.integrator = integrator
	s.scheduler = scheduler
	s.teardown = teardown
	return integrator.Store(), nil
}

// Unmount stops the tick, then unsubscribes observers and key sources. It
// is a no-op when the session is not mounted.
func (s *Session) Unmount() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.scheduler == nil {
		return
	}
	s.scheduler.Stop()
	for i := len(s.teardown) - 1; i >= 0; i-- {
		s.teardown[i]()
	}

	s.scheduler = nil
	s.teardown = nil
}

// Mounted reports whether the session is running.
func (s *Session) Mounted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scheduler != nil
}

// Ticks returns the number of ticks of the current or last mount.
func (s *Session) Ticks() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.integrator == nil {
		return 0
	}
	return s.integrator.Ticks()
}
