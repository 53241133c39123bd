package game

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bookistos/warehouse-simulator/internal/core/pose"
	"github.com/bookistos/warehouse-simulator/internal/input"
	"github.com/bookistos/warehouse-simulator/internal/render"
	"github.com/bookistos/warehouse-simulator/internal/render/rendertest"
	"github.com/bookistos/warehouse-simulator/internal/simulation"
	"github.com/bookistos/warehouse-simulator/internal/world/warehouse"
)

// fakeInput is an InputManager whose Poll delivers queued events.
type fakeInput struct {
	input.Dispatcher
	queued      []func()
	justPressed map[input.Key]bool
	polls       int
}

func (f *fakeInput) Poll() {
	f.polls++
	for _, fn := range f.queued {
		fn()
	}
	f.queued = nil
}

func (f *fakeInput) IsKeyJustPressed(k input.Key) bool { return f.justPressed[k] }

func fastConfig() *simulation.Config {
	cfg := simulation.DefaultConfig()
	cfg.TickMillis = 1
	return cfg
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("Timed out waiting for %s", what)
		}
		time.Sleep(time.Millisecond)
	}
}

func TestSessionMountTicksFromSpawn(t *testing.T) {
	s := NewSession(warehouse.Default(), fastConfig(), nil)
	src := &input.Dispatcher{}

	poses, err := s.Mount(context.Background(), src)
	if err != nil {
		t.Fatalf("Failed to mount: %v", err)
	}
	defer s.Unmount()

	if got := poses.Load(); got != (pose.Pose{X: 2, Z: 4}) {
		t.Errorf("Expected spawn (2,4), got %v", got)
	}

	src.KeyDown(input.KeyArrowLeft)
	waitFor(t, "heading change", func() bool { return poses.Load().Heading > 0 })
	src.KeyUp(input.KeyArrowLeft)

	if p := poses.Load(); p.X != 2 || p.Z != 4 {
		t.Errorf("Expected turning in place, got %v", p)
	}
}

func TestSessionDoubleMount(t *testing.T) {
	s := NewSession(warehouse.Default(), fastConfig(), nil)
	if _, err := s.Mount(context.Background()); err != nil {
		t.Fatalf("Failed to mount: %v", err)
	}
	defer s.Unmount()

	if _, err := s.Mount(context.Background()); !errors.Is(err, ErrMounted) {
		t.Errorf("Expected ErrMounted, got %v", err)
	}
}

func TestSessionUnmountStopsTickAndInput(t *testing.T) {
	s := NewSession(warehouse.Default(), fastConfig(), nil)
	src := &input.Dispatcher{}

	var observed int
	s.Observe(func(simulation.TickResult) { observed++ })

	if _, err := s.Mount(context.Background(), src); err != nil {
		t.Fatalf("Failed to mount: %v", err)
	}
	waitFor(t, "ticks", func() bool { return s.Ticks() > 2 })

	s.Unmount()
	if s.Mounted() {
		t.Error("Expected session unmounted")
	}
	if n := src.Listeners(); n != 0 {
		t.Errorf("Expected key listeners removed, got %d", n)
	}

	ticks := s.Ticks()
	if observed == 0 || uint64(observed) != ticks {
		t.Errorf("Expected observer to see all %d ticks, saw %d", ticks, observed)
	}
	time.Sleep(10 * time.Millisecond)
	if got := s.Ticks(); got != ticks {
		t.Errorf("Expected no ticks after unmount, went from %d to %d", ticks, got)
	}

	// Unmount is idempotent and the session can be mounted again.
	s.Unmount()
	if _, err := s.Mount(context.Background(), src); err != nil {
		t.Fatalf("Expected remount to succeed, got %v", err)
	}
	s.Unmount()
}

func TestSessionStopsWithContext(t *testing.T) {
	s := NewSession(warehouse.Default(), fastConfig(), nil)
	ctx, cancel := context.WithCancel(context.Background())
	if _, err := s.Mount(ctx); err != nil {
		t.Fatalf("Failed to mount: %v", err)
	}
	defer s.Unmount()

	waitFor(t, "ticks", func() bool { return s.Ticks() > 0 })
	cancel()
	time.Sleep(10 * time.Millisecond)
	ticks := s.Ticks()
	time.Sleep(10 * time.Millisecond)
	if got := s.Ticks(); got != ticks {
		t.Errorf("Expected ticks to stop with the context, went from %d to %d", ticks, got)
	}
}

func newManager(t *testing.T) (*Manager, *fakeInput, *rendertest.Renderer) {
	t.Helper()
	r := &rendertest.Renderer{}
	in := &fakeInput{justPressed: map[input.Key]bool{}}
	s := NewSession(warehouse.Default(), fastConfig(), nil)
	m := NewManager(r, in, s, 800, 600)
	t.Cleanup(m.Close)
	return m, in, r
}

func TestManagerLoadAndQuit(t *testing.T) {
	m, in, _ := newManager(t)

	if err := m.LoadGame(context.Background()); err != nil {
		t.Fatalf("Failed to load game: %v", err)
	}
	if !m.Session.Mounted() {
		t.Fatal("Expected session mounted after LoadGame")
	}
	if in.Listeners() != 1 {
		t.Errorf("Expected window input subscribed, got %d listeners", in.Listeners())
	}

	if err := m.Update(); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if in.polls != 1 {
		t.Errorf("Expected one poll per update, got %d", in.polls)
	}

	in.justPressed[input.KeyEscape] = true
	if err := m.Update(); !errors.Is(err, render.ErrQuit) {
		t.Errorf("Expected ErrQuit on Escape, got %v", err)
	}
}

func TestManagerQuitsWhenContextDone(t *testing.T) {
	m, _, _ := newManager(t)
	ctx, cancel := context.WithCancel(context.Background())
	if err := m.LoadGame(ctx); err != nil {
		t.Fatalf("Failed to load game: %v", err)
	}

	cancel()
	if err := m.Update(); !errors.Is(err, render.ErrQuit) {
		t.Errorf("Expected ErrQuit after cancel, got %v", err)
	}
}

func TestManagerPolledKeysMove(t *testing.T) {
	m, in, _ := newManager(t)
	if err := m.LoadGame(context.Background()); err != nil {
		t.Fatalf("Failed to load game: %v", err)
	}

	in.queued = append(in.queued, func() { in.KeyDown(input.KeyArrowUp) })
	m.Update()

	poses := m.Game.Poses
	waitFor(t, "forward motion", func() bool { return poses.Load().Z > 4 })
}

func TestManagerDraw(t *testing.T) {
	m, _, r := newManager(t)
	screen := rendertest.NewImage(r, 800, 600)

	m.Draw(screen)
	if len(r.Ops) != 1 || r.Ops[0].Kind != "fill" {
		t.Errorf("Expected a single fill before loading, got %+v", r.Ops)
	}

	if err := m.LoadGame(context.Background()); err != nil {
		t.Fatalf("Failed to load game: %v", err)
	}
	r.Ops = nil
	m.Draw(screen)

	if r.Count("polygon") != 1 {
		t.Errorf("Expected the minimap marker, got %d polygons", r.Count("polygon"))
	}
	found := false
	for _, text := range r.Texts() {
		if text == "Warehouse Map" {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected HUD title, got %v", r.Texts())
	}
}

func TestManagerCloseReleasesHUD(t *testing.T) {
	m, _, r := newManager(t)
	if err := m.LoadGame(context.Background()); err != nil {
		t.Fatalf("Failed to load game: %v", err)
	}
	m.Draw(rendertest.NewImage(r, 800, 600))

	if len(r.Images) != 1 {
		t.Fatalf("Expected one cached minimap image, got %d", len(r.Images))
	}
	m.Close()
	if !r.Images[0].Disposed {
		t.Error("Expected the minimap image disposed on close")
	}
	if m.Session.Mounted() {
		t.Error("Expected session unmounted on close")
	}
	// Closing again is harmless.
	m.Close()
}

func TestLayoutResizesHUD(t *testing.T) {
	m, _, _ := newManager(t)
	if err := m.LoadGame(context.Background()); err != nil {
		t.Fatalf("Failed to load game: %v", err)
	}

	w, h := m.Layout(1024, 768)
	if w != 1024 || h != 768 {
		t.Errorf("Expected 1024x768, got %dx%d", w, h)
	}
	if m.Game.ScreenWidth != 1024 {
		t.Errorf("Expected game width 1024, got %d", m.Game.ScreenWidth)
	}
}

func TestMessagesFade(t *testing.T) {
	g := &Game{}
	g.ShowMessage("hello")
	for i := 0; i < 200; i++ {
		g.updateMessages(1.0 / 60.0)
	}
	if len(g.Messages) != 0 {
		t.Errorf("Expected message to fade after 3s, got %d", len(g.Messages))
	}
}
