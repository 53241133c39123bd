package warehouse

import (
	"fmt"
	"image/color"
)

// Tile colors shared by the minimap, the first-person scene and the feed.
var (
	DockColor    = color.RGBA{0x66, 0x66, 0x66, 0xff}
	AisleColor   = color.RGBA{0xcc, 0xcc, 0xcc, 0xff}
	UnknownColor = color.RGBA{0x33, 0x33, 0x33, 0xff}
	PlayerColor  = color.RGBA{0xff, 0x44, 0x44, 0xff}
)

var zoneColors = map[rune]color.RGBA{
	'A': {0xff, 0x44, 0x44, 0xff}, // red
	'B': {0x44, 0x44, 0xff, 0xff}, // blue
	'C': {0x44, 0xff, 0x44, 0xff}, // green
	'D': {0xff, 0xff, 0x44, 0xff}, // yellow
	'E': {0xff, 0x44, 0xff, 0xff}, // magenta
}

// ZoneColor returns the color-coding of a rack zone.
func ZoneColor(zone rune) (color.RGBA, bool) {
	c, ok := zoneColors[zone]
	return c, ok
}

// Color returns the fill color of a tile.
func (t Tile) Color() color.RGBA {
	switch t.Kind {
	case Dock:
		return DockColor
	case Aisle:
		return AisleColor
	}
	if c, ok := zoneColors[t.Zone]; ok {
		return c
	}
	return UnknownColor
}

// LegendEntry is one line of the static map legend.
type LegendEntry struct {
	Label string
	Color color.RGBA
}

// Legend returns the static legend for m: the player marker, the floor
// kinds, then one entry per rack zone present in the map.
func (m *Map) Legend() []LegendEntry {
	entries := []LegendEntry{
		{Label: "You", Color: PlayerColor},
		{Label: "Aisle", Color: AisleColor},
		{Label: "Dock", Color: DockColor},
	}
	for _, z := range m.Zones() {
		c, ok := zoneColors[z]
		if !ok {
			c = UnknownColor
		}
		entries = append(entries, LegendEntry{Label: fmt.Sprintf("Zone %c", z), Color: c})
	}
	return entries
}

// Hex formats c as #rrggbb.
func Hex(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
