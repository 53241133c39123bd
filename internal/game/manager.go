package game

import (
	"context"
	"fmt"
	"image/color"
	"log"

	"github.com/bookistos/warehouse-simulator/internal/input"
	"github.com/bookistos/warehouse-simulator/internal/render"
	"github.com/bookistos/warehouse-simulator/internal/ui/hud"
	"github.com/bookistos/warehouse-simulator/internal/ui/scene"
	"github.com/bookistos/warehouse-simulator/internal/view"
)

// Manager owns the session and the mounted Game, and implements render.Game
// for the engine.
type Manager struct {
	ScreenWidth  int
	ScreenHeight int
	Renderer     render.Renderer
	InputMgr     render.InputManager
	Session      *Session
	HUDConfig    *hud.HUDConfig
	Game         *Game

	ctx context.Context
}

// NewManager creates a new game manager.
func NewManager(r render.Renderer, inputMgr render.InputManager, session *Session, width, height int) *Manager {
	return &Manager{
		ScreenWidth:  width,
		ScreenHeight: height,
		Renderer:     r,
		InputMgr:     inputMgr,
		Session:      session,
		HUDConfig:    hud.DefaultConfig(),
	}
}

// LoadGame mounts the session with the window keyboard plus any extra key
// sources and builds the view.
func (m *Manager) LoadGame(ctx context.Context, extra ...input.Source) error {
	sources := append([]input.Source{m.InputMgr}, extra...)
	poses, err := m.Session.Mount(ctx, sources...)
	if err != nil {
		return fmt.Errorf("failed to mount session: %w", err)
	}

	m.ctx = ctx
	world := m.Session.World()
	cfg := m.Session.Config()

	sceneCfg := scene.DefaultConfig()
	sceneCfg.FieldOfView = cfg.View.FieldOfView
	sceneCfg.WallHeight = cfg.View.WallHeight

	m.Game = &Game{
		ScreenWidth:  m.ScreenWidth,
		ScreenHeight: m.ScreenHeight,
		Renderer:     m.Renderer,
		InputMgr:     m.InputMgr,
		Poses:        poses,
		EyeHeight:    cfg.View.EyeHeight,
		Scene:        scene.New(m.Renderer, world, view.Placements(world), sceneCfg),
		GameHUD:      hud.New(m.HUDConfig, m.Renderer, world, cfg.View.PixelsPerTile, m.ScreenWidth, m.ScreenHeight),
	}
	m.Game.ShowMessage(fmt.Sprintf("Warehouse %dx%d, spawn %s", world.Rows(), world.Cols(), poses.Load()))
	log.Printf("Session mounted")
	return nil
}

// Close unmounts the session and releases the HUD resources.
func (m *Manager) Close() {
	if m.Game != nil && m.Game.GameHUD != nil {
		m.Game.GameHUD.Close()
	}
	if !m.Session.Mounted() {
		return
	}
	m.Session.Unmount()
	log.Printf("Session unmounted")
}

// Update updates the game state. It quits once the context the game was
// loaded with is done.
func (m *Manager) Update() error {
	if m.ctx != nil && m.ctx.Err() != nil {
		return render.ErrQuit
	}
	if m.Game == nil {
		m.InputMgr.Poll()
		if m.InputMgr.IsKeyJustPressed(input.KeyEscape) {
			return render.ErrQuit
		}
		return nil
	}
	return m.Game.Update()
}

// Draw renders the mounted game, or a blank screen before it is loaded.
func (m *Manager) Draw(screen render.Image) {
	if m.Game == nil {
		screen.Fill(color.Black)
		return
	}
	m.Game.Draw(screen)
}

// Layout returns the logical screen size.
func (m *Manager) Layout(outsideWidth, outsideHeight int) (int, int) {
	if m.Game != nil {
		m.ScreenWidth, m.ScreenHeight = m.Game.Layout(outsideWidth, outsideHeight)
	}
	return m.ScreenWidth, m.ScreenHeight
}
