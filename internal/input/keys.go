// Package input tracks which keys are held down, independently of the fixed
// rate simulation that reads them.
package input

// Key is a physical key code. Values follow the KeyboardEvent.code names a
// browser reports, so remote clients can forward them unchanged.
type Key string

const (
	KeyArrowUp    Key = "ArrowUp"
	KeyArrowDown  Key = "ArrowDown"
	KeyArrowLeft  Key = "ArrowLeft"
	KeyArrowRight Key = "ArrowRight"
	KeyShiftLeft  Key = "ShiftLeft"
	KeyShiftRight Key = "ShiftRight"
	KeyMetaLeft   Key = "MetaLeft"
	KeyMetaRight  Key = "MetaRight"
	KeyEscape     Key = "Escape"
)

// Known lists every key the application reacts to.
var Known = []Key{
	KeyArrowUp,
	KeyArrowDown,
	KeyArrowLeft,
	KeyArrowRight,
	KeyShiftLeft,
	KeyShiftRight,
	KeyMetaLeft,
	KeyMetaRight,
	KeyEscape,
}

// IsKnown reports whether k is one of the Known keys.
func IsKnown(k Key) bool {
	for _, known := range Known {
		if k == known {
			return true
		}
	}
	return false
}

// Action is a logical input the integrator reacts to.
type Action int

const (
	Forward Action = iota
	Backward
	TurnLeft
	TurnRight
	Fast
	Strafe
)

func (a Action) String() string {
	switch a {
	case Forward:
		return "forward"
	case Backward:
		return "backward"
	case TurnLeft:
		return "turn-left"
	case TurnRight:
		return "turn-right"
	case Fast:
		return "fast"
	case Strafe:
		return "strafe"
	default:
		return "unknown"
	}
}

// Bindings maps each action to the physical keys that trigger it.
type Bindings map[Action][]Key

// DefaultBindings drives movement with the arrow keys, with either Shift as
// the fast modifier and either Meta as the strafe modifier.
func DefaultBindings() Bindings {
	return Bindings{
		Forward:   {KeyArrowUp},
		Backward:  {KeyArrowDown},
		TurnLeft:  {KeyArrowLeft},
		TurnRight: {KeyArrowRight},
		Fast:      {KeyShiftLeft, KeyShiftRight},
		Strafe:    {KeyMetaLeft, KeyMetaRight},
	}
}

// Active reports whether any key bound to a is held in s.
func (b Bindings) Active(s Snapshot, a Action) bool {
	for _, k := range b[a] {
		if s.Held(k) {
			return true
		}
	}
	return false
}
