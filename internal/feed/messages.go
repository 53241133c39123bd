package feed

import (
	"github.com/bookistos/warehouse-simulator/internal/simulation"
	"github.com/bookistos/warehouse-simulator/internal/view"
	"github.com/bookistos/warehouse-simulator/internal/world/warehouse"
)

// MessageType defines the type of message being sent
type MessageType string

const (
	MessageTypeScene   MessageType = "scene"
	MessageTypeFrame   MessageType = "frame"
	MessageTypeKeyDown MessageType = "keydown"
	MessageTypeKeyUp   MessageType = "keyup"
	MessageTypeError   MessageType = "error"
)

// BaseMessage is the envelope for every outgoing message
type BaseMessage struct {
	Type    MessageType `json:"type"`
	Payload interface{} `json:"payload"`
}

// KeyMessage is an incoming key event. Code uses the browser KeyboardEvent
// code names, e.g. "ArrowUp" or "ShiftLeft".
type KeyMessage struct {
	Type MessageType `json:"type"`
	Code string      `json:"code"`
}

// ErrorMessage represents an error response
type ErrorMessage struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// SceneMessage describes the static scene, sent once on connect
type SceneMessage struct {
	Rows       int                `json:"rows"`
	Cols       int                `json:"cols"`
	TileSize   float64            `json:"tile_size"`
	Layout     []string           `json:"layout"`
	Placements []PlacementMessage `json:"placements"`
	Legend     []LegendMessage    `json:"legend"`
}

// PlacementMessage is one tile positioned in world space
type PlacementMessage struct {
	Row   int     `json:"row"`
	Col   int     `json:"col"`
	X     float64 `json:"x"`
	Z     float64 `json:"z"`
	Kind  string  `json:"kind"`
	Zone  string  `json:"zone,omitempty"`
	Color string  `json:"color"`
}

// LegendMessage is one legend line
type LegendMessage struct {
	Label string `json:"label"`
	Color string `json:"color"`
}

// FrameMessage carries the render parameters of one committed tick
type FrameMessage struct {
	Seq     uint64        `json:"seq"`
	Pose    PoseMessage   `json:"pose"`
	Camera  CameraMessage `json:"camera"`
	Marker  MarkerMessage `json:"marker"`
	Blocked bool          `json:"blocked"`
}

// PoseMessage is the player pose; heading in radians
type PoseMessage struct {
	X       float64 `json:"x"`
	Z       float64 `json:"z"`
	Heading float64 `json:"heading"`
}

// CameraMessage places the first-person camera, y up
type CameraMessage struct {
	Position [3]float64 `json:"position"`
	LookAt   [3]float64 `json:"look_at"`
}

// MarkerMessage places the minimap marker in panel pixels
type MarkerMessage struct {
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	RotationDeg float64 `json:"rotation_deg"`
}

func newSceneMessage(m *warehouse.Map) SceneMessage {
	placements := view.Placements(m)
	msg := SceneMessage{
		Rows:       m.Rows(),
		Cols:       m.Cols(),
		TileSize:   m.TileSize(),
		Layout:     m.Source(),
		Placements: make([]PlacementMessage, 0, len(placements)),
	}
	for _, p := range placements {
		tile := warehouse.Tile{Kind: p.Kind, Zone: p.Zone}
		pm := PlacementMessage{
			Row:   p.Row,
			Col:   p.Col,
			X:     p.X,
			Z:     p.Z,
			Kind:  p.Kind.String(),
			Color: warehouse.Hex(tile.Color()),
		}
		if p.Kind == warehouse.Rack {
			pm.Zone = string(p.Zone)
		}
		msg.Placements = append(msg.Placements, pm)
	}
	for _, e := range m.Legend() {
		msg.Legend = append(msg.Legend, LegendMessage{Label: e.Label, Color: warehouse.Hex(e.Color)})
	}
	return msg
}

func newFrameMessage(res simulation.TickResult, eyeHeight float64, mm view.Minimap) FrameMessage {
	cam := view.ProjectCamera(res.Pose, eyeHeight)
	marker := mm.Project(res.Pose)
	return FrameMessage{
		Seq:  res.Seq,
		Pose: PoseMessage{X: res.Pose.X, Z: res.Pose.Z, Heading: res.Pose.Heading},
		Camera: CameraMessage{
			Position: [3]float64{cam.Position.X, cam.Position.Y, cam.Position.Z},
			LookAt:   [3]float64{cam.LookAt.X, cam.LookAt.Y, cam.LookAt.Z},
		},
		Marker:  MarkerMessage{X: marker.X, Y: marker.Y, RotationDeg: marker.RotationDeg},
		Blocked: res.Blocked,
	}
}
