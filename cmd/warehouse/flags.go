package main

import "flag"

// Command-line flags for the walkthrough.
var (
	// configFlag points at the simulation tuning overlay; a missing file
	// means defaults.
	configFlag = flag.String("config", "data/simulation.json", "simulation config JSON file")

	// layoutFlag selects a floor plan by file path or by name in the layouts
	// directory. Empty uses the built-in layout.
	layoutFlag = flag.String("layout", "", "layout file or layout name (default: built-in)")

	layoutsDirFlag = flag.String("layouts", "data/layouts", "directory searched for named layouts")

	// listLayoutsFlag prints the layouts found in the layouts directory and exits.
	listLayoutsFlag = flag.Bool("list-layouts", false, "list available layouts and exit")

	// backendFlag picks the view: the ebiten window or the terminal minimap.
	backendFlag = flag.String("backend", "ebiten", "view backend: ebiten or terminal")

	// feedAddrFlag enables the WebSocket render feed on the given address.
	feedAddrFlag = flag.String("feed", "", "serve the render feed on this address, e.g. :8080")

	// audioFlag enables the bump tone.
	audioFlag = flag.Bool("audio", false, "play a tone when walking into racks")

	widthFlag  = flag.Int("width", 1280, "window width")
	heightFlag = flag.Int("height", 800, "window height")
)
