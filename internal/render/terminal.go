package render

import (
	"math"

	"github.com/gdamore/tcell/v2"

	"github.com/inamate/spider/internal/engine"
)

// CellAspect is the height of a terminal cell relative to its width.
const CellAspect = 2

const (
	runeBody   = '█'
	runeLimb   = '▓'
	runePupil  = '●'
	minCapsule = 0.5
)

// TerminalRenderer rasterizes draw calls into tcell cells with a per-cell
// depth buffer, so draw order does not matter.
type TerminalRenderer struct {
	screen tcell.Screen
	camera Camera
	style  tcell.Style

	w, h  int
	proj  Projector
	depth []float32
}

// NewTerminalRenderer draws onto screen through camera.
func NewTerminalRenderer(screen tcell.Screen, camera Camera) *TerminalRenderer {
	return &TerminalRenderer{
		screen: screen,
		camera: camera,
		style:  tcell.StyleDefault,
	}
}

// Begin clears the screen and depth buffer for a new frame, picking up any
// resize. rows lines are reserved at the bottom for text.
func (t *TerminalRenderer) Begin(rows int) {
	w, h := t.screen.Size()
	h = max(h-rows, 1)
	if w != t.w || h != t.h || t.depth == nil {
		t.w, t.h = w, h
		t.proj = t.camera.Projector(w, h, CellAspect)
		t.depth = make([]float32, w*h)
	}
	for i := range t.depth {
		t.depth[i] = math.MaxFloat32
	}
	t.screen.Clear()
}

// Size returns the drawable area in cells.
func (t *TerminalRenderer) Size() (int, int) {
	return t.w, t.h
}

// DrawPrimitive implements engine.Renderer.
func (t *TerminalRenderer) DrawPrimitive(call engine.DrawCall) {
	if t.depth == nil {
		t.Begin(0)
	}
	for _, s := range t.proj.flatten(call) {
		t.fill(s)
	}
}

func (t *TerminalRenderer) fill(s shape) {
	r := max(s.r, minCapsule)
	ry := r / CellAspect

	x0, x1 := s.ax, s.ax
	y0, y1 := s.ay, s.ay
	if s.kind == shapeCapsule {
		x0, x1 = min(s.ax, s.bx), max(s.ax, s.bx)
		y0, y1 = min(s.ay, s.by), max(s.ay, s.by)
	}
	minX := max(int(math.Floor(float64(x0-r))), 0)
	maxX := min(int(math.Ceil(float64(x1+r))), t.w-1)
	minY := max(int(math.Floor(float64(y0-ry))), 0)
	maxY := min(int(math.Ceil(float64(y1+ry))), t.h-1)

	ch := runeBody
	fg := s.color
	switch s.kind {
	case shapeCapsule:
		ch = runeLimb
	case shapePupil:
		ch = runePupil
		fg = engine.Color{R: 0.1, G: 0.1, B: 0.1}
	}
	n := fg.NRGBA()
	style := t.style.Foreground(tcell.NewRGBColor(int32(n.R), int32(n.G), int32(n.B)))

	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			// cell centers in isotropic units
			px := float32(x) + 0.5
			py := (float32(y) + 0.5) * CellAspect
			if !s.covers(px, py, r) {
				continue
			}
			i := y*t.w + x
			if s.depth > t.depth[i] {
				continue
			}
			t.depth[i] = s.depth
			t.screen.SetContent(x, y, ch, nil, style)
		}
	}
}

// covers reports whether isotropic point (px, py) lies within r of s.
func (s shape) covers(px, py, r float32) bool {
	ax, ay := s.ax, s.ay*CellAspect
	if s.kind != shapeCapsule {
		dx, dy := px-ax, py-ay
		return dx*dx+dy*dy <= r*r
	}
	bx, by := s.bx, s.by*CellAspect
	vx, vy := bx-ax, by-ay
	l2 := vx*vx + vy*vy
	var u float32
	if l2 > 0 {
		u = min(max(((px-ax)*vx+(py-ay)*vy)/l2, 0), 1)
	}
	dx, dy := px-(ax+u*vx), py-(ay+u*vy)
	return dx*dx+dy*dy <= r*r
}

// DrawText writes a line of text at (x, y), clipped to the screen.
func DrawText(screen tcell.Screen, x, y int, text string, style tcell.Style) {
	w, h := screen.Size()
	if y < 0 || y >= h {
		return
	}
	for _, r := range text {
		if x >= w {
			return
		}
		if x >= 0 {
			screen.SetContent(x, y, r, nil, style)
		}
		x++
	}
}
