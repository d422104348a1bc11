// Package render draws frames emitted by the engine: to a terminal through
// tcell or to an RGBA image through x/image/vector.
package render

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Camera is a fixed perspective camera looking at the origin.
type Camera struct {
	FovY   float32 // degrees
	Eye    mgl32.Vec3
	Center mgl32.Vec3
	Up     mgl32.Vec3
	Near   float32
	Far    float32
}

// DefaultCamera sits 12 units down +Z with a 25 degree field of view.
func DefaultCamera() Camera {
	return Camera{
		FovY:   25,
		Eye:    mgl32.Vec3{0, 0, 12},
		Center: mgl32.Vec3{0, 0, 0},
		Up:     mgl32.Vec3{0, 1, 0},
		Near:   0.1,
		Far:    100,
	}
}

// ViewProjection returns projection * view for the given aspect ratio.
func (c Camera) ViewProjection(aspect float32) mgl32.Mat4 {
	proj := mgl32.Perspective(mgl32.DegToRad(c.FovY), aspect, c.Near, c.Far)
	view := mgl32.LookAtV(c.Eye, c.Center, c.Up)
	return proj.Mul4(view)
}

// Projector maps world points onto a width x height grid.
type Projector struct {
	vp   mgl32.Mat4
	w, h float32
}

// Projector builds a projector for a grid whose cells are cellAspect times
// taller than they are wide (1 for pixels, about 2 for terminal cells).
func (c Camera) Projector(width, height int, cellAspect float32) Projector {
	if cellAspect <= 0 {
		cellAspect = 1
	}
	aspect := float32(width) / (float32(height) * cellAspect)
	return Projector{
		vp: c.ViewProjection(aspect),
		w:  float32(width),
		h:  float32(height),
	}
}

// Project returns grid coordinates (y down) and NDC depth of p, where smaller
// depth is nearer. ok is false for points behind the camera.
func (p Projector) Project(v mgl32.Vec3) (x, y, depth float32, ok bool) {
	clip := p.vp.Mul4x1(v.Vec4(1))
	if clip.W() <= 1e-6 {
		return 0, 0, 0, false
	}
	ndc := clip.Vec3().Mul(1 / clip.W())
	x = (ndc.X() + 1) / 2 * p.w
	y = (1 - ndc.Y()) / 2 * p.h
	return x, y, ndc.Z(), true
}

// ProjectRadius returns the on-grid radius of a sphere of radius r centered
// at the origin of world, measured along the grid's horizontal axis.
func (p Projector) ProjectRadius(world mgl32.Mat4, r float32) float32 {
	center := mgl32.TransformCoordinate(mgl32.Vec3{}, world)
	scale := world.Col(0).Vec3().Len()
	cx, _, _, ok1 := p.Project(center)
	ex, _, _, ok2 := p.Project(center.Add(mgl32.Vec3{r * scale, 0, 0}))
	if !ok1 || !ok2 {
		return 0
	}
	return float32(math.Abs(float64(ex - cx)))
}
