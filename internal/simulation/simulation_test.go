package simulation

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bookistos/warehouse-simulator/internal/core/pose"
	"github.com/bookistos/warehouse-simulator/internal/input"
	"github.com/bookistos/warehouse-simulator/internal/world/warehouse"
)

const eps = 1e-9

func near(a, b float64) bool {
	return math.Abs(a-b) < eps
}

// openFloor is a 5x5 all-aisle grid spanning [-10, 10) on both axes.
func openFloor() *warehouse.Map {
	return warehouse.MustParse([]string{"_____", "_____", "_____", "_____", "_____"}, 4)
}

func movement() MovementConfig {
	return DefaultConfig().Movement
}

func advance(p pose.Pose, m *warehouse.Map, keys ...input.Key) Step {
	return Advance(p, input.SnapshotOf(keys...), input.DefaultBindings(), m, movement())
}

func TestForwardCommitsOnWalkableTile(t *testing.T) {
	step := advance(pose.Pose{X: 0, Z: 8}, openFloor(), input.KeyArrowUp)

	if !near(step.Pose.X, 0) || !near(step.Pose.Z, 8.2) {
		t.Errorf("Expected (0, 8.2), got (%v, %v)", step.Pose.X, step.Pose.Z)
	}
	if !step.Moved || step.Blocked {
		t.Errorf("Expected moved and not blocked, got moved=%v blocked=%v", step.Moved, step.Blocked)
	}
}

func TestForwardRejectedOnRack(t *testing.T) {
	// (0, 8) and (0, 8.2) are both inside rack zone E of the default layout.
	step := advance(pose.Pose{X: 0, Z: 8}, warehouse.Default(), input.KeyArrowUp)

	if step.Pose.X != 0 || step.Pose.Z != 8 {
		t.Errorf("Expected position to stay (0, 8), got (%v, %v)", step.Pose.X, step.Pose.Z)
	}
	if !step.Blocked {
		t.Error("Expected step to be blocked")
	}
}

func TestForwardIntoRackNeverMoves(t *testing.T) {
	m := warehouse.Default()
	p := pose.Pose{X: 2, Z: 4}

	var last pose.Pose
	for i := 0; i < 200; i++ {
		step := advance(p, m, input.KeyArrowUp)
		p = step.Pose
		if i >= 20 {
			if p != last {
				t.Fatalf("tick %d: Expected pose to hold at %+v, got %+v", i, last, p)
			}
			if !step.Blocked {
				t.Fatalf("tick %d: Expected blocked step", i)
			}
		}
		last = p
	}

	if p.Z >= 6 {
		t.Errorf("Expected to stop before the rack row at z=6, got z=%v", p.Z)
	}
	tile, ok := m.TileAt(p.X, p.Z)
	if !ok || !tile.Walkable {
		t.Errorf("Expected to remain on a walkable tile, got %+v ok=%v", tile, ok)
	}
}

func TestBackward(t *testing.T) {
	step := advance(pose.Pose{}, openFloor(), input.KeyArrowDown)
	if !near(step.Pose.Z, -0.2) || !near(step.Pose.X, 0) {
		t.Errorf("Expected (0, -0.2), got (%v, %v)", step.Pose.X, step.Pose.Z)
	}
}

func TestBackwardOverridesForward(t *testing.T) {
	step := advance(pose.Pose{}, openFloor(), input.KeyArrowUp, input.KeyArrowDown)
	if !near(step.Pose.Z, -0.2) {
		t.Errorf("Expected backward to win, got z=%v", step.Pose.Z)
	}
}

func TestFastForwardUsesFastSpeed(t *testing.T) {
	step := advance(pose.Pose{}, openFloor(), input.KeyArrowUp, input.KeyShiftRight)
	if !near(step.Pose.Z, 0.4) {
		t.Errorf("Expected z=0.4, got %v", step.Pose.Z)
	}
}

func TestRotation(t *testing.T) {
	m := openFloor()

	step := advance(pose.Pose{}, m, input.KeyArrowLeft)
	if !near(step.Pose.Heading, 0.03) {
		t.Errorf("Expected heading 0.03, got %v", step.Pose.Heading)
	}

	step = advance(pose.Pose{}, m, input.KeyArrowRight)
	if !near(step.Pose.Heading, -0.03) {
		t.Errorf("Expected heading -0.03, got %v", step.Pose.Heading)
	}

	step = advance(pose.Pose{}, m, input.KeyArrowLeft, input.KeyShiftLeft)
	if !near(step.Pose.Heading, 0.075) {
		t.Errorf("Expected fast heading 0.075, got %v", step.Pose.Heading)
	}
	if step.Moved || step.Blocked {
		t.Error("Expected rotation alone not to move")
	}
}

func TestOppositeTurnsCancel(t *testing.T) {
	start := pose.Pose{X: 1, Z: 1, Heading: 0.5}
	step := advance(start, openFloor(), input.KeyArrowLeft, input.KeyArrowRight)
	if !near(step.Pose.Heading, 0.5) {
		t.Errorf("Expected heading unchanged at 0.5, got %v", step.Pose.Heading)
	}
}

func TestForwardUsesUpdatedHeading(t *testing.T) {
	step := advance(pose.Pose{}, openFloor(), input.KeyArrowUp, input.KeyArrowLeft)
	wantX, wantZ := math.Sin(0.03)*0.2, math.Cos(0.03)*0.2
	if !near(step.Pose.X, wantX) || !near(step.Pose.Z, wantZ) {
		t.Errorf("Expected (%v, %v), got (%v, %v)", wantX, wantZ, step.Pose.X, step.Pose.Z)
	}
}

func TestStrafeRotatesAndSlides(t *testing.T) {
	m := openFloor()

	step := advance(pose.Pose{}, m, input.KeyMetaLeft, input.KeyArrowLeft)
	h := 0.03
	if !near(step.Pose.Heading, h) {
		t.Errorf("Expected strafe to still rotate to %v, got %v", h, step.Pose.Heading)
	}
	if !near(step.Pose.X, math.Cos(h)*0.2) || !near(step.Pose.Z, -math.Sin(h)*0.2) {
		t.Errorf("Expected left strafe (%v, %v), got (%v, %v)",
			math.Cos(h)*0.2, -math.Sin(h)*0.2, step.Pose.X, step.Pose.Z)
	}

	step = advance(pose.Pose{}, m, input.KeyMetaRight, input.KeyArrowRight)
	h = -0.03
	if !near(step.Pose.X, -math.Cos(h)*0.2) || !near(step.Pose.Z, math.Sin(h)*0.2) {
		t.Errorf("Expected right strafe (%v, %v), got (%v, %v)",
			-math.Cos(h)*0.2, math.Sin(h)*0.2, step.Pose.X, step.Pose.Z)
	}
}

func TestStrafeOverridesForwardAndIgnoresFast(t *testing.T) {
	step := advance(pose.Pose{}, openFloor(),
		input.KeyArrowUp, input.KeyMetaLeft, input.KeyArrowLeft, input.KeyShiftLeft)

	h := 0.075 // fast rotation still applies
	if !near(step.Pose.Heading, h) {
		t.Errorf("Expected heading %v, got %v", h, step.Pose.Heading)
	}
	if !near(step.Pose.X, math.Cos(h)*0.2) || !near(step.Pose.Z, -math.Sin(h)*0.2) {
		t.Errorf("Expected base-speed strafe, got (%v, %v)", step.Pose.X, step.Pose.Z)
	}
}

func TestStrafeModifierAloneKeepsForward(t *testing.T) {
	step := advance(pose.Pose{}, openFloor(), input.KeyArrowUp, input.KeyMetaLeft)
	if !near(step.Pose.Z, 0.2) {
		t.Errorf("Expected forward movement without a strafe direction, got z=%v", step.Pose.Z)
	}
}

func TestHeadingCommitsWhenBlocked(t *testing.T) {
	step := advance(pose.Pose{X: 0, Z: 8}, warehouse.Default(), input.KeyArrowUp, input.KeyArrowLeft)
	if step.Pose.X != 0 || step.Pose.Z != 8 {
		t.Errorf("Expected position unchanged, got (%v, %v)", step.Pose.X, step.Pose.Z)
	}
	if !near(step.Pose.Heading, 0.03) {
		t.Errorf("Expected heading 0.03, got %v", step.Pose.Heading)
	}
}

func TestLeavingGridIsBlocked(t *testing.T) {
	// One aisle tile spanning [-2, 2).
	m := warehouse.MustParse([]string{"_"}, 4)
	step := advance(pose.Pose{X: 0, Z: 1.9}, m, input.KeyArrowUp)
	if step.Pose.Z != 1.9 || !step.Blocked {
		t.Errorf("Expected edge of the map to block, got z=%v blocked=%v", step.Pose.Z, step.Blocked)
	}
}

type fixedKeys struct{ snap input.Snapshot }

func (f fixedKeys) Snapshot() input.Snapshot { return f.snap }

func TestIntegratorTick(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Spawn = SpawnConfig{X: 0, Z: 0}
	in := NewIntegrator(openFloor(), fixedKeys{input.SnapshotOf(input.KeyArrowUp)}, input.DefaultBindings(), cfg)

	var got []TickResult
	cancel := in.Subscribe(func(r TickResult) { got = append(got, r) })

	in.Tick()
	in.Tick()
	cancel()
	in.Tick()

	if len(got) != 2 {
		t.Fatalf("Expected 2 results before cancel, got %d", len(got))
	}
	if got[0].Seq != 1 || got[1].Seq != 2 {
		t.Errorf("Expected sequence 1,2, got %d,%d", got[0].Seq, got[1].Seq)
	}
	if in.Ticks() != 3 {
		t.Errorf("Expected 3 ticks, got %d", in.Ticks())
	}
	if p := in.Pose(); !near(p.Z, 0.6) {
		t.Errorf("Expected z=0.6 after 3 ticks, got %v", p.Z)
	}
	if p := in.Store().Load(); !near(p.Z, 0.6) {
		t.Errorf("Expected store to hold the committed pose, got %v", p.Z)
	}
}

func TestSchedulerRunsAndStops(t *testing.T) {
	var count atomic.Int64
	s := NewScheduler(time.Millisecond, func() { count.Add(1) })
	s.Start(context.Background())
	s.Start(context.Background())

	deadline := time.Now().Add(2 * time.Second)
	for count.Load() < 3 {
		if time.Now().After(deadline) {
			t.Fatalf("Expected at least 3 ticks, got %d", count.Load())
		}
		time.Sleep(time.Millisecond)
	}

	s.Stop()
	s.Stop()
	stopped := count.Load()
	time.Sleep(10 * time.Millisecond)
	if count.Load() != stopped {
		t.Errorf("Expected no ticks after Stop, got %d more", count.Load()-stopped)
	}

	select {
	case <-s.Done():
	default:
		t.Error("Expected Done to be closed after Stop")
	}
}

func TestSchedulerStopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := NewScheduler(time.Millisecond, func() {})
	s.Start(ctx)
	cancel()

	select {
	case <-s.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("Expected scheduler to exit after context cancel")
	}
	s.Stop()
}

func TestSchedulerStopBeforeStart(t *testing.T) {
	s := NewScheduler(time.Millisecond, func() { t.Error("Expected task never to run") })
	s.Stop()
	s.Start(context.Background())

	select {
	case <-s.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("Expected loop to exit immediately")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Expected default config to be valid: %v", err)
	}
	if cfg.TickInterval() != 16*time.Millisecond {
		t.Errorf("Expected 16ms tick, got %v", cfg.TickInterval())
	}
	if !warehouse.Default().IsWalkable(cfg.Spawn.X, cfg.Spawn.Z) {
		t.Error("Expected default spawn on a walkable tile")
	}
}

func TestLoadConfigOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sim.json")
	data := `{"movement": {"move_speed": 0.5}, "tick_ms": 20}`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if cfg.Movement.MoveSpeed != 0.5 {
		t.Errorf("Expected move speed 0.5, got %v", cfg.Movement.MoveSpeed)
	}
	if cfg.Movement.FastMoveSpeed != 0.4 {
		t.Errorf("Expected default fast speed 0.4, got %v", cfg.Movement.FastMoveSpeed)
	}
	if cfg.TickInterval() != 20*time.Millisecond {
		t.Errorf("Expected 20ms tick, got %v", cfg.TickInterval())
	}
}

func TestLoadConfigMissingAndInvalid(t *testing.T) {
	dir := t.TempDir()

	cfg, err := LoadConfig(filepath.Join(dir, "missing.json"))
	if err != nil {
		t.Fatalf("Expected defaults for missing file, got %v", err)
	}
	if cfg.TickMillis != 16 {
		t.Errorf("Expected default tick, got %d", cfg.TickMillis)
	}

	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte(`{"tick_ms": 0}`), 0o644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	if _, err := LoadConfig(bad); err == nil {
		t.Error("Expected error for zero tick length")
	}

	garbled := filepath.Join(dir, "garbled.json")
	if err := os.WriteFile(garbled, []byte(`{`), 0o644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	if _, err := LoadConfig(garbled); err == nil {
		t.Error("Expected error for malformed JSON")
	}
}
