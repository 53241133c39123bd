package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/bookistos/warehouse-simulator/internal/audio"
	"github.com/bookistos/warehouse-simulator/internal/feed"
	"github.com/bookistos/warehouse-simulator/internal/game"
	"github.com/bookistos/warehouse-simulator/internal/input"
	ebitenrender "github.com/bookistos/warehouse-simulator/internal/render/ebiten"
	"github.com/bookistos/warehouse-simulator/internal/render/terminal"
	"github.com/bookistos/warehouse-simulator/internal/simulation"
	"github.com/bookistos/warehouse-simulator/internal/world/layouts"
	"github.com/bookistos/warehouse-simulator/internal/world/warehouse"
)

func main() {
	flag.Parse()

	if *listLayoutsFlag {
		if err := listLayouts(*layoutsDirFlag); err != nil {
			log.Fatalf("Failed to list layouts: %v", err)
		}
		return
	}

	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	config, err := simulation.LoadConfig(*configFlag)
	if err != nil {
		return fmt.Errorf("failed to load simulation config: %w", err)
	}

	world, err := loadWorld(*layoutFlag, *layoutsDirFlag)
	if err != nil {
		return err
	}
	log.Printf("Loaded %dx%d warehouse, tile size %v", world.Rows(), world.Cols(), world.TileSize())
	if !world.IsWalkable(config.Spawn.X, config.Spawn.Z) {
		log.Printf("Warning: spawn (%v, %v) is not on a walkable tile", config.Spawn.X, config.Spawn.Z)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	session := game.NewSession(world, config, input.DefaultBindings())

	var extra []input.Source
	if *feedAddrFlag != "" {
		hub := feed.NewHub(world, config.View.EyeHeight, config.View.PixelsPerTile)
		session.Observe(hub.Publish)
		extra = append(extra, hub)

		srv := startFeed(*feedAddrFlag, hub)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				log.Printf("Warning: render feed shutdown: %v", err)
			}
			hub.Close()
		}()
	}

	if *audioFlag {
		sounds := audio.NewSoundManager()
		if err := sounds.Initialize(); err != nil {
			// Non-fatal, the walkthrough runs without sound
			log.Printf("Audio initialization failed: %v", err)
		} else {
			defer sounds.Cleanup()
		}
		session.Observe(audio.NewBumpCue(sounds).Observe)
	}

	switch *backendFlag {
	case "ebiten":
		return runWindow(ctx, session, extra)
	case "terminal":
		return runTerminal(ctx, session, extra)
	default:
		return fmt.Errorf("unknown backend %q, want ebiten or terminal", *backendFlag)
	}
}

// loadWorld resolves the layout flag: a path to a JSON file, a layout name
// in the layouts directory, or empty for the built-in floor plan.
func loadWorld(layout, dir string) (*warehouse.Map, error) {
	if layout == "" {
		return warehouse.Default(), nil
	}

	path := layout
	if !strings.HasSuffix(strings.ToLower(layout), ".json") {
		entry, err := layouts.Find(dir, layout)
		if err != nil {
			return nil, fmt.Errorf("failed to find layout: %w", err)
		}
		path = entry.Path
	}

	world, err := warehouse.LoadLayout(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load layout: %w", err)
	}
	return world, nil
}

func listLayouts(dir string) error {
	entries, err := layouts.ScanDirectory(dir)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Printf("No layouts in %s\n", dir)
		return nil
	}
	for _, e := range entries {
		fmt.Printf("%-20s %s\n", e.Name, e.Path)
	}
	return nil
}

func startFeed(addr string, hub *feed.Hub) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/ws", hub)
	srv := &http.Server{Addr: addr, Handler: mux}

	go func() {
		log.Printf("Render feed listening on %s/ws", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("Render feed stopped: %v", err)
		}
	}()
	return srv
}

func runWindow(ctx context.Context, session *game.Session, extra []input.Source) error {
	screenWidth := *widthFlag
	screenHeight := *heightFlag

	// Initialize the renderer backend (ebiten)
	renderer := ebitenrender.NewRenderer()
	inputMgr := ebitenrender.NewInputManager()
	engine := ebitenrender.NewEngine()

	gameManager := game.NewManager(renderer, inputMgr, session, screenWidth, screenHeight)
	if err := gameManager.LoadGame(ctx, extra...); err != nil {
		return err
	}
	defer gameManager.Close()

	// Set up the window
	engine.SetWindowSize(screenWidth, screenHeight)
	engine.SetWindowTitle("Warehouse Walkthrough")
	engine.SetWindowResizable(true)

	log.Println("Starting walkthrough...")
	return engine.RunGame(gameManager)
}

func runTerminal(ctx context.Context, session *game.Session, extra []input.Source) error {
	// The screen owns the terminal; send log output to a file meanwhile.
	logPath := filepath.Join(os.TempDir(), "warehouse.log")
	if f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644); err == nil {
		log.Printf("Logging to %s", logPath)
		log.SetOutput(f)
		defer func() {
			log.SetOutput(os.Stderr)
			f.Close()
		}()
	}

	screen, err := terminal.NewScreen()
	if err != nil {
		return err
	}
	defer screen.Fini()

	viewer := terminal.NewViewer(screen, session.World())
	poses, err := session.Mount(ctx, append([]input.Source{viewer}, extra...)...)
	if err != nil {
		return fmt.Errorf("failed to mount session: %w", err)
	}
	defer session.Unmount()

	if err := viewer.Run(ctx, poses); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
