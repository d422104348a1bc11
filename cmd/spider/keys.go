package main

import (
	"github.com/gdamore/tcell/v2"

	"github.com/inamate/spider/internal/engine"
)

type command int

const (
	cmdNone command = iota
	cmdIntent
	cmdDump
	cmdQuit
)

// part keys select rig parts in PartOrder
var partKeys = []rune{'6', '7', '8', '9', '0'}

func axisIntent(a engine.Axis) engine.Intent {
	return engine.Intent{Kind: engine.IntentSetAxis, Axis: &a}
}

// mapKey translates a key press into an engine intent or an app command.
func mapKey(ev *tcell.EventKey, parts []string) (engine.Intent, command) {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return engine.Intent{}, cmdQuit
	case tcell.KeyUp, tcell.KeyRight:
		return engine.Intent{Kind: engine.IntentRotate, Sign: 1}, cmdIntent
	case tcell.KeyDown, tcell.KeyLeft:
		return engine.Intent{Kind: engine.IntentRotate, Sign: -1}, cmdIntent
	case tcell.KeyRune:
	default:
		return engine.Intent{}, cmdNone
	}

	r := ev.Rune()
	switch r {
	case 'q':
		return engine.Intent{}, cmdQuit
	case 'k':
		return engine.Intent{}, cmdDump
	case 'x':
		return axisIntent(engine.AxisX), cmdIntent
	case 'y':
		return axisIntent(engine.AxisY), cmdIntent
	case 'z':
		return axisIntent(engine.AxisZ), cmdIntent
	case 'a':
		return engine.Intent{Kind: engine.IntentToggleSide}, cmdIntent
	case 'p':
		return engine.Intent{Kind: engine.IntentToggleSeg, Part: "proximal"}, cmdIntent
	case 'm':
		return engine.Intent{Kind: engine.IntentToggleSeg, Part: "middle"}, cmdIntent
	case 'd':
		return engine.Intent{Kind: engine.IntentToggleSeg, Part: "distal"}, cmdIntent
	case 't':
		return engine.Intent{Kind: engine.IntentNextPose}, cmdIntent
	case 'c':
		return engine.Intent{Kind: engine.IntentResetPose}, cmdIntent
	case 'r':
		return engine.Intent{Kind: engine.IntentResetView}, cmdIntent
	}

	if r >= '1' && r <= '5' {
		return engine.Intent{Kind: engine.IntentToggleLeg, Slot: int(r - '1')}, cmdIntent
	}
	for i, k := range partKeys {
		if r == k && i < len(parts) {
			return engine.Intent{Kind: engine.IntentTogglePart, Part: parts[i]}, cmdIntent
		}
	}
	return engine.Intent{}, cmdNone
}

// pointer tracks the left button so mouse events become drag or look intents.
type pointer struct {
	down bool
}

// mapMouse returns the intents for one mouse event in a width x height view.
func (p *pointer) mapMouse(ev *tcell.EventMouse, width, height int) []engine.Intent {
	x, y := ev.Position()
	pressed := ev.Buttons()&tcell.Button1 != 0

	switch {
	case pressed && !p.down:
		p.down = true
		return []engine.Intent{{Kind: engine.IntentDragBegin, X: x, Y: y}}
	case pressed:
		return []engine.Intent{{Kind: engine.IntentDragMove, X: x, Y: y}}
	case p.down:
		p.down = false
		return []engine.Intent{{Kind: engine.IntentDragEnd}}
	}
	return []engine.Intent{{Kind: engine.IntentLook, X: x, Y: y, Width: width, Height: height}}
}
