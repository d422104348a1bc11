package render

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/inamate/spider/internal/engine"
	"github.com/inamate/spider/internal/mesh"
)

type shapeKind int

const (
	shapeDisc shapeKind = iota
	shapeCapsule
	shapePupil
)

// shape is a primitive flattened onto the grid. Discs use (ax, ay); capsules
// span a to b. r is the horizontal radius in grid units.
type shape struct {
	kind           shapeKind
	node           engine.NodeID
	ax, ay, bx, by float32
	r              float32
	depth          float32
	color          engine.Color
}

// shading range along world Z after the view rotation
const (
	shadeNear = 2
	shadeFar  = -2
	shadeMin  = 0.55
)

func shade(c engine.Color, z float32) engine.Color {
	t := (z - shadeFar) / (shadeNear - shadeFar)
	t = min(max(t, 0), 1)
	return c.Shade(shadeMin + (1-shadeMin)*t)
}

// flatten projects one draw call. Primitives of unknown kinds are skipped.
func (p Projector) flatten(call engine.DrawCall) []shape {
	switch prim := call.Primitive.(type) {
	case mesh.Sphere:
		return p.disc(call, prim.Radius)
	case mesh.Eyeball:
		out := p.disc(call, prim.Radius)
		if len(out) == 0 {
			return nil
		}
		pupil := mgl32.TransformCoordinate(prim.Pupil(), call.World)
		x, y, depth, ok := p.Project(pupil)
		if !ok {
			return out
		}
		return append(out, shape{
			kind:  shapePupil,
			node:  call.Node,
			ax:    x,
			ay:    y,
			r:     out[0].r / 2,
			depth: depth,
			color: engine.Color{},
		})
	case mesh.Cylinder:
		a, b := prim.Axis()
		wa := mgl32.TransformCoordinate(a, call.World)
		wb := mgl32.TransformCoordinate(b, call.World)
		ax, ay, da, ok1 := p.Project(wa)
		bx, by, db, ok2 := p.Project(wb)
		if !ok1 || !ok2 {
			return nil
		}
		return []shape{{
			kind:  shapeCapsule,
			node:  call.Node,
			ax:    ax,
			ay:    ay,
			bx:    bx,
			by:    by,
			r:     p.ProjectRadius(call.World, prim.Radius),
			depth: (da + db) / 2,
			color: shade(call.Color, (wa.Z()+wb.Z())/2),
		}}
	}
	return nil
}

func (p Projector) disc(call engine.DrawCall, radius float32) []shape {
	center := mgl32.TransformCoordinate(mgl32.Vec3{}, call.World)
	x, y, depth, ok := p.Project(center)
	if !ok {
		return nil
	}
	return []shape{{
		kind:  shapeDisc,
		node:  call.Node,
		ax:    x,
		ay:    y,
		r:     p.ProjectRadius(call.World, radius),
		depth: depth,
		color: shade(call.Color, center.Z()),
	}}
}
