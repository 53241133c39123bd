// Package warehouse holds the immutable floor plan of the warehouse and the
// transforms between grid cells and continuous world coordinates.
package warehouse

import (
	"errors"
	"fmt"
	"math"
)

// Kind classifies a tile.
type Kind int

const (
	Dock Kind = iota
	Aisle
	Rack
)

// String returns the lowercase kind name.
func (k Kind) String() string {
	switch k {
	case Dock:
		return "dock"
	case Aisle:
		return "aisle"
	case Rack:
		return "rack"
	default:
		return "unknown"
	}
}

// Source characters for the non-rack tile kinds. Every other character is a
// rack whose zone is the character itself.
const (
	DockChar  = 'D'
	AisleChar = '_'
)

// DefaultTileSize is the world-space edge length of one tile.
const DefaultTileSize = 4.0

// DefaultLayout is the compiled-in warehouse floor plan.
var DefaultLayout = []string{
	"DDDDDDDDDDDD",
	"____________",
	"AAAA_BBBB_AA",
	"AAAA_BBBB_BB",
	"____________",
	"CCCC_EEEE_CC",
	"CCCC_EEEE_CC",
}

var (
	ErrEmptyLayout     = errors.New("layout has no tiles")
	ErrNotRectangular  = errors.New("layout rows have unequal length")
	ErrInvalidTileSize = errors.New("tile size must be positive")
)

// Tile is one parsed cell of the grid.
type Tile struct {
	Kind     Kind
	Zone     rune // 0 unless Kind is Rack
	Walkable bool
}

// HasZone reports whether the tile carries a zone identifier.
func (t Tile) HasZone() bool {
	return t.Zone != 0
}

// ParseTile classifies a single source character.
func ParseTile(c rune) Tile {
	switch c {
	case DockChar:
		return Tile{Kind: Dock}
	case AisleChar:
		return Tile{Kind: Aisle, Walkable: true}
	default:
		return Tile{Kind: Rack, Zone: c}
	}
}

// Map is a rectangular grid of tiles centered on the world origin.
// It is never mutated after Parse returns.
type Map struct {
	source   []string
	tiles    [][]Tile
	rows     int
	cols     int
	tileSize float64
}

// Parse builds a Map from source rows. Rows must all have the same number
// of characters.
func Parse(rows []string, tileSize float64) (*Map, error) {
	if err := validateLayout(rows, tileSize); err != nil {
		return nil, err
	}

	m := &Map{
		source:   append([]string(nil), rows...),
		tiles:    make([][]Tile, len(rows)),
		rows:     len(rows),
		tileSize: tileSize,
	}
	for r, row := range rows {
		chars := []rune(row)
		m.tiles[r] = make([]Tile, len(chars))
		for c, ch := range chars {
			m.tiles[r][c] = ParseTile(ch)
		}
	}
	m.cols = len(m.tiles[0])
	return m, nil
}

// MustParse is Parse for compiled-in layouts; it panics on error.
func MustParse(rows []string, tileSize float64) *Map {
	m, err := Parse(rows, tileSize)
	if err != nil {
		panic(fmt.Sprintf("warehouse: %v", err))
	}
	return m
}

// Default returns the compiled-in layout at the default tile size.
func Default() *Map {
	return MustParse(DefaultLayout, DefaultTileSize)
}

func validateLayout(rows []string, tileSize float64) error {
	if !(tileSize > 0) || math.IsInf(tileSize, 0) {
		return fmt.Errorf("%w: %v", ErrInvalidTileSize, tileSize)
	}
	if len(rows) == 0 {
		return ErrEmptyLayout
	}

	width := len([]rune(rows[0]))
	if width == 0 {
		return ErrEmptyLayout
	}
	for r, row := range rows {
		if n := len([]rune(row)); n != width {
			return fmt.Errorf("%w: row %d has %d tiles, expected %d", ErrNotRectangular, r, n, width)
		}
	}
	return nil
}

// Rows returns the number of grid rows.
func (m *Map) Rows() int { return m.rows }

// Cols returns the number of grid columns.
func (m *Map) Cols() int { return m.cols }

// TileSize returns the world-space edge length of a tile.
func (m *Map) TileSize() float64 { return m.tileSize }

// Source returns a copy of the rows the map was parsed from.
func (m *Map) Source() []string {
	return append([]string(nil), m.source...)
}

// At returns the tile at grid cell (row, col).
func (m *Map) At(row, col int) (Tile, bool) {
	if row < 0 || row >= m.rows || col < 0 || col >= m.cols {
		return Tile{}, false
	}
	return m.tiles[row][col], true
}

// WorldPosition returns the world coordinates of grid cell (row, col).
// The grid is centered on the origin regardless of its size.
func (m *Map) WorldPosition(row, col int) (x, z float64) {
	x = (float64(col) - float64(m.cols)/2) * m.tileSize
	z = (float64(row) - float64(m.rows)/2) * m.tileSize
	return x, z
}

// Cell returns the grid cell containing world position (x, z). It floors
// rather than rounds, so a position on a tile's lower boundary belongs to
// that tile.
func (m *Map) Cell(x, z float64) (row, col int, ok bool) {
	fc := math.Floor(x/m.tileSize + float64(m.cols)/2)
	fr := math.Floor(z/m.tileSize + float64(m.rows)/2)
	if math.IsNaN(fc) || math.IsNaN(fr) {
		return 0, 0, false
	}
	if fr < 0 || fr >= float64(m.rows) || fc < 0 || fc >= float64(m.cols) {
		return 0, 0, false
	}
	return int(fr), int(fc), true
}

// TileAt returns the tile containing world position (x, z), or false when
// the position lies outside the grid.
func (m *Map) TileAt(x, z float64) (Tile, bool) {
	row, col, ok := m.Cell(x, z)
	if !ok {
		return Tile{}, false
	}
	return m.tiles[row][col], true
}

// IsWalkable reports whether (x, z) lies on a walkable tile.
func (m *Map) IsWalkable(x, z float64) bool {
	tile, ok := m.TileAt(x, z)
	return ok && tile.Walkable
}

// Zones returns the distinct rack zones in row-major order of appearance.
func (m *Map) Zones() []rune {
	seen := make(map[rune]bool)
	var zones []rune
	for _, row := range m.tiles {
		for _, t := range row {
			if t.Kind == Rack && !seen[t.Zone] {
				seen[t.Zone] = true
				zones = append(zones, t.Zone)
			}
		}
	}
	return zones
}
