// Package mesh describes the drawable primitives attached to rig nodes.
// Renderers interpret them; the engine treats them as opaque.
package mesh

import (
	"encoding/json"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/inamate/spider/internal/engine"
)

const (
	KindCylinder = "cylinder"
	KindSphere   = "sphere"
	KindEyeball  = "eyeball"
)

// Cylinder is a rounded cylinder standing on the local origin along +Z.
type Cylinder struct {
	Radius float32 `json:"radius"`
	Height float32 `json:"height"`
}

func (Cylinder) Kind() string { return KindCylinder }

// Axis returns the local endpoints of the cylinder's center line.
func (c Cylinder) Axis() (mgl32.Vec3, mgl32.Vec3) {
	return mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0, 0, c.Height}
}

// Sphere is a body segment centered on the local origin.
type Sphere struct {
	Radius float32 `json:"radius"`
}

func (Sphere) Kind() string { return KindSphere }

// Eyeball is a sphere with a pupil facing local +Z.
type Eyeball struct {
	Radius float32 `json:"radius"`
}

func (Eyeball) Kind() string { return KindEyeball }

// Pupil returns the local position of the pupil on the surface.
func (e Eyeball) Pupil() mgl32.Vec3 {
	return mgl32.Vec3{0, 0, e.Radius}
}

func init() {
	engine.RegisterPrimitive(KindCylinder, decode[Cylinder])
	engine.RegisterPrimitive(KindSphere, decode[Sphere])
	engine.RegisterPrimitive(KindEyeball, decode[Eyeball])
}

func decode[P engine.Primitive](data []byte) (engine.Primitive, error) {
	var p P
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, err
	}
	return p, nil
}
