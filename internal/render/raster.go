package render

import (
	"cmp"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"
	"slices"

	"golang.org/x/image/vector"

	"github.com/inamate/spider/internal/engine"
)

// Background is the default snapshot background.
var Background = color.NRGBA{R: 26, G: 27, B: 38, A: 255}

// bezier control distance for a quarter circle
const kappa = 0.5522847498

// RasterRenderer collects draw calls and paints them far to near into an
// RGBA image with anti-aliased vector fills.
type RasterRenderer struct {
	Background color.Color

	w, h   int
	proj   Projector
	shapes []shape
	rast   *vector.Rasterizer
}

// NewRasterRenderer creates a width x height renderer.
func NewRasterRenderer(width, height int, camera Camera) *RasterRenderer {
	return &RasterRenderer{
		Background: Background,
		w:          width,
		h:          height,
		proj:       camera.Projector(width, height, 1),
		rast:       vector.NewRasterizer(width, height),
	}
}

// DrawPrimitive implements engine.Renderer.
func (r *RasterRenderer) DrawPrimitive(call engine.DrawCall) {
	r.shapes = append(r.shapes, r.proj.flatten(call)...)
}

// Reset drops collected shapes.
func (r *RasterRenderer) Reset() {
	r.shapes = r.shapes[:0]
}

// Len returns the number of collected shapes.
func (r *RasterRenderer) Len() int {
	return len(r.shapes)
}

// Image paints the collected shapes.
func (r *RasterRenderer) Image() *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, r.w, r.h))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(r.Background), image.Point{}, draw.Src)

	order := slices.Clone(r.shapes)
	slices.SortStableFunc(order, func(a, b shape) int {
		return cmp.Compare(b.depth, a.depth)
	})
	for _, s := range order {
		src := image.NewUniform(s.color.NRGBA())
		switch s.kind {
		case shapeCapsule:
			r.circle(dst, src, s.ax, s.ay, s.r)
			r.circle(dst, src, s.bx, s.by, s.r)
			r.quad(dst, src, s)
		case shapePupil:
			r.circle(dst, image.NewUniform(color.Black), s.ax, s.ay, s.r)
		default:
			r.circle(dst, src, s.ax, s.ay, s.r)
		}
	}
	return dst
}

// EncodePNG paints and writes the image as PNG.
func (r *RasterRenderer) EncodePNG(w io.Writer) error {
	if err := png.Encode(w, r.Image()); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

func (r *RasterRenderer) circle(dst draw.Image, src image.Image, cx, cy, radius float32) {
	if radius <= 0 {
		return
	}
	kr := kappa * radius
	r.rast.Reset(r.w, r.h)
	r.rast.MoveTo(cx, cy-radius)
	r.rast.CubeTo(cx+kr, cy-radius, cx+radius, cy-kr, cx+radius, cy)
	r.rast.CubeTo(cx+radius, cy+kr, cx+kr, cy+radius, cx, cy+radius)
	r.rast.CubeTo(cx-kr, cy+radius, cx-radius, cy+kr, cx-radius, cy)
	r.rast.CubeTo(cx-radius, cy-kr, cx-kr, cy-radius, cx, cy-radius)
	r.rast.ClosePath()
	r.rast.Draw(dst, dst.Bounds(), src, image.Point{})
}

func (r *RasterRenderer) quad(dst draw.Image, src image.Image, s shape) {
	dx, dy := s.bx-s.ax, s.by-s.ay
	l := float32(math.Hypot(float64(dx), float64(dy)))
	if l == 0 || s.r <= 0 {
		return
	}
	nx, ny := -dy/l*s.r, dx/l*s.r
	r.rast.Reset(r.w, r.h)
	r.rast.MoveTo(s.ax+nx, s.ay+ny)
	r.rast.LineTo(s.bx+nx, s.by+ny)
	r.rast.LineTo(s.bx-nx, s.by-ny)
	r.rast.LineTo(s.ax-nx, s.ay-ny)
	r.rast.ClosePath()
	r.rast.Draw(dst, dst.Bounds(), src, image.Point{})
}

// Snapshot replays recorded commands into a width x height image.
func Snapshot(commands []engine.DrawCommand, width, height int, camera Camera) *image.RGBA {
	r := NewRasterRenderer(width, height, camera)
	engine.Replay(commands, r)
	return r.Image()
}
