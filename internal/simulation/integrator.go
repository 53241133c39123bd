package simulation

import (
	"math"
	"sync"
	"sync/atomic"

	"github.com/bookistos/warehouse-simulator/internal/core/pose"
	"github.com/bookistos/warehouse-simulator/internal/input"
	"github.com/bookistos/warehouse-simulator/internal/world/warehouse"
)

// Step is the outcome of one tick.
type Step struct {
	Pose         pose.Pose
	DX, DZ       float64 // Displacement requested this tick
	Moved        bool    // Displacement was committed
	Blocked      bool    // A non-zero displacement was rejected
	HeadingDelta float64
}

// Advance computes the pose after one tick. Rotation is applied first and
// always commits; the displacement is then derived from the new heading and
// committed whole or not at all, depending on the tile under the candidate
// position.
func Advance(p pose.Pose, keys input.Snapshot, b input.Bindings, m *warehouse.Map, mv MovementConfig) Step {
	fast := b.Active(keys, input.Fast)

	rotation := mv.RotationSpeed
	if fast {
		rotation *= mv.FastRotationMultiplier
	}
	heading := p.Heading
	if b.Active(keys, input.TurnLeft) {
		heading += rotation
	}
	if b.Active(keys, input.TurnRight) {
		heading -= rotation
	}

	speed := mv.MoveSpeed
	if fast {
		speed = mv.FastMoveSpeed
	}
	sin, cos := math.Sincos(heading)

	var dx, dz float64
	if b.Active(keys, input.Forward) {
		dx, dz = sin*speed, cos*speed
	}
	if b.Active(keys, input.Backward) {
		dx, dz = -sin*speed, -cos*speed
	}

	// Strafe reuses the turn keys for direction and never runs fast.
	if b.Active(keys, input.Strafe) {
		if b.Active(keys, input.TurnLeft) {
			dx, dz = cos*mv.MoveSpeed, -sin*mv.MoveSpeed
		}
		if b.Active(keys, input.TurnRight) {
			dx, dz = -cos*mv.MoveSpeed, sin*mv.MoveSpeed
		}
	}

	next := pose.Pose{X: p.X, Z: p.Z, Heading: heading}
	step := Step{DX: dx, DZ: dz, HeadingDelta: heading - p.Heading}
	if m.IsWalkable(p.X+dx, p.Z+dz) {
		next = next.Translate(dx, dz)
		step.Moved = dx != 0 || dz != 0
	} else {
		step.Blocked = dx != 0 || dz != 0
	}
	step.Pose = next
	return step
}

// KeyReader supplies the held keys for a tick.
type KeyReader interface {
	Snapshot() input.Snapshot
}

// TickResult is emitted to subscribers after every tick.
type TickResult struct {
	Seq uint64
	Step
}

// Integrator owns the authoritative pose and advances it once per Tick.
type Integrator struct {
	world    *warehouse.Map
	keys     KeyReader
	bindings input.Bindings
	movement MovementConfig
	store    *pose.Store

	seq atomic.Uint64

	mu     sync.Mutex
	nextID int
	subs   map[int]func(TickResult)
}

// NewIntegrator creates an integrator starting at the configured spawn.
func NewIntegrator(m *warehouse.Map, keys KeyReader, b input.Bindings, cfg *Config) *Integrator {
	return &Integrator{
		world:    m,
		keys:     keys,
		bindings: b,
		movement: cfg.Movement,
		store:    pose.NewStore(pose.Pose{X: cfg.Spawn.X, Z: cfg.Spawn.Z, Heading: cfg.Spawn.Heading}),
		subs:     make(map[int]func(TickResult)),
	}
}

// Pose returns the last committed pose.
func (in *Integrator) Pose() pose.Pose {
	return in.store.Load()
}

// Store exposes the pose store for read-only consumers.
func (in *Integrator) Store() *pose.Store {
	return in.store
}

// Ticks returns the number of ticks run so far.
func (in *Integrator) Ticks() uint64 {
	return in.seq.Load()
}

// Tick advances the pose by one step, publishes it and notifies subscribers.
// Ticks must not run concurrently with each other.
func (in *Integrator) Tick() TickResult {
	step := Advance(in.store.Load(), in.keys.Snapshot(), in.bindings, in.world, in.movement)
	in.store.Set(step.Pose)

	result := TickResult{Seq: in.seq.Add(1), Step: step}
	for _, fn := range in.subscribers() {
		fn(result)
	}
	return result
}

// Subscribe registers fn to receive every tick result. Callbacks run on the
// ticking goroutine and must not block.
func (in *Integrator) Subscribe(fn func(TickResult)) (cancel func()) {
	in.mu.Lock()
	id := in.nextID
	in.nextID++
	in.subs[id] = fn
	in.mu.Unlock()

	return func() {
		in.mu.Lock()
		delete(in.subs, id)
		in.mu.Unlock()
	}
}

func (in *Integrator) subscribers() []func(TickResult) {
	in.mu.Lock()
	defer in.mu.Unlock()
	fns := make([]func(TickResult), 0, len(in.subs))
	for _, fn := range in.subs {
		fns = append(fns, fn)
	}
	return fns
}
