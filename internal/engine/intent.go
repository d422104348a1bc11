package engine

import (
	"errors"
	"fmt"
)

// ErrInvalidIntent reports a malformed intent from an input source.
var ErrInvalidIntent = errors.New("invalid intent")

// IntentKind names a discrete user intent.
type IntentKind string

const (
	IntentRotate     IntentKind = "rotate" // Sign
	IntentSetAxis    IntentKind = "axis"   // Axis
	IntentToggleLeg  IntentKind = "leg"    // Slot
	IntentToggleSide IntentKind = "side"
	IntentToggleSeg  IntentKind = "segment" // Part: proximal, middle, distal
	IntentTogglePart IntentKind = "part"    // Part: body or eye name
	IntentNextPose   IntentKind = "pose.next"
	IntentResetPose  IntentKind = "pose.reset"
	IntentResetView  IntentKind = "view.reset"
	IntentDragBegin  IntentKind = "drag.begin" // X, Y
	IntentDragMove   IntentKind = "drag.move"  // X, Y
	IntentDragEnd    IntentKind = "drag.end"
	IntentDrag       IntentKind = "view.drag" // DX, DY
	IntentLook       IntentKind = "look"      // X, Y, Width, Height
)

// Intent is a discrete command delivered by an input source. Only the fields
// used by Kind are read.
type Intent struct {
	Kind   IntentKind `json:"kind"`
	Sign   int        `json:"sign,omitempty"`
	Axis   *Axis      `json:"axis,omitempty"`
	Slot   int        `json:"slot,omitempty"`
	Part   string     `json:"part,omitempty"`
	X      int        `json:"x,omitempty"`
	Y      int        `json:"y,omitempty"`
	DX     int        `json:"dx,omitempty"`
	DY     int        `json:"dy,omitempty"`
	Width  int        `json:"width,omitempty"`
	Height int        `json:"height,omitempty"`
}

// Apply dispatches an intent to the matching command.
func (e *Engine) Apply(in Intent) error {
	switch in.Kind {
	case IntentRotate:
		switch {
		case in.Sign > 0:
			e.RotateSelection(1)
		case in.Sign < 0:
			e.RotateSelection(-1)
		default:
			return fmt.Errorf("%w: rotate needs a non-zero sign", ErrInvalidIntent)
		}
	case IntentSetAxis:
		if in.Axis == nil {
			return fmt.Errorf("%w: axis missing", ErrInvalidIntent)
		}
		return e.SetAxis(*in.Axis)
	case IntentToggleLeg:
		return e.ToggleLeg(in.Slot)
	case IntentToggleSide:
		e.ToggleSide()
	case IntentToggleSeg:
		part, err := ParseLegPart(in.Part)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidIntent, err)
		}
		e.ToggleLegPart(part)
	case IntentTogglePart:
		return e.TogglePart(in.Part)
	case IntentNextPose:
		e.NextPose()
	case IntentResetPose:
		e.ResetPose()
	case IntentResetView:
		e.ResetView()
	case IntentDragBegin:
		e.BeginDrag(in.X, in.Y)
	case IntentDragMove:
		e.DragTo(in.X, in.Y)
	case IntentDragEnd:
		e.EndDrag()
	case IntentDrag:
		e.Drag(in.DX, in.DY)
	case IntentLook:
		return e.LookAt(in.X, in.Y, in.Width, in.Height)
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidIntent, in.Kind)
	}
	return nil
}
