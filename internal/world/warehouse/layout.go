package warehouse

import (
	"encoding/json"
	"fmt"
	"os"
)

// LayoutData is the on-disk form of a floor plan.
type LayoutData struct {
	Name     string   `json:"name"`
	TileSize float64  `json:"tile_size"` // World units per tile; defaults to DefaultTileSize
	Rows     []string `json:"rows"`
}

// LoadLayout reads a JSON layout file and parses it into a Map.
func LoadLayout(path string) (*Map, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read layout file %s: %w", path, err)
	}

	var layout LayoutData
	if err := json.Unmarshal(data, &layout); err != nil {
		return nil, fmt.Errorf("failed to parse layout file %s: %w", path, err)
	}
	if layout.TileSize == 0 {
		layout.TileSize = DefaultTileSize
	}

	m, err := Parse(layout.Rows, layout.TileSize)
	if err != nil {
		return nil, fmt.Errorf("invalid layout data in %s: %w", path, err)
	}
	return m, nil
}
