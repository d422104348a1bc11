// Package spider assembles the posable spider: a three-segment body carrying
// ten legs (four limbs and a claw per side) and two eyes on stalks.
package spider

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/inamate/spider/internal/engine"
	"github.com/inamate/spider/internal/mesh"
)

const (
	BodyRadius        = 0.5
	LimbRadius        = 0.09
	ProximalHeight    = 0.25
	MiddleHeight      = 0.25
	DistalHeight      = 0.2
	LegsPerSide       = 5
	PartLeftBody      = "left-body"
	PartMiddleBody    = "middle-body"
	PartRightBody     = "right-body"
	PartLeftEye       = "left-eye"
	PartRightEye      = "right-eye"
	rootName          = "top-level"
	freeRange         = 180
	pupilRange        = 90
	reversedLegYawDeg = -180
)

// Finger names in leg-slot order.
var fingers = [LegsPerSide]string{"pinky", "ring", "middle", "index", "claw"}

var (
	frozen = engine.NewLimits(0, 0, 0, 0, 0, 0)
	free   = engine.NewLimits(-freeRange, freeRange, -freeRange, freeRange, -freeRange, freeRange)
	pupil  = engine.NewLimits(-pupilRange, pupilRange, -pupilRange, pupilRange, 0, 0)

	middleLimits = engine.NewLimits(0, 100, 0, 0, 0, 0)
	distalLimits = engine.NewLimits(-5, 70, 0, 0, 0, 0)
)

type legJoints struct {
	proximal, middle, distal engine.Joint
}

var limbJoints = [LegsPerSide - 1]legJoints{
	{engine.JointPinkyProximal, engine.JointPinkyMiddle, engine.JointPinkyDistal},
	{engine.JointRingProximal, engine.JointRingMiddle, engine.JointRingDistal},
	{engine.JointMiddleProximal, engine.JointMiddleMiddle, engine.JointMiddleDistal},
	{engine.JointIndexProximal, engine.JointIndexMiddle, engine.JointIndexDistal},
}

// limb offsets on the left side; the right side mirrors Z
var limbOffsets = [LegsPerSide - 1]mgl32.Vec3{
	{-0.3, 0, 0.7},
	{-0.1, 0, 0.9},
	{0.1, 0, 0.95},
	{0.3, 0, 0.75},
}

var clawOffset = mgl32.Vec3{0.24, 0, 0.23}

type side struct {
	name  string
	zSign float32

	limbLimits   engine.Limits
	limbAngles   engine.Angles
	limbMirror   engine.Mirror
	clawLimits   engine.Limits
	clawMirror   engine.Mirror
	clawMidRange engine.Limits
}

var sides = [2]side{
	{
		name:         "left",
		zSign:        1,
		limbLimits:   engine.NewLimits(-15, 30, -10, 10, 0, 0),
		limbAngles:   engine.NewAngles(0, 0, 0),
		limbMirror:   engine.MirrorNone,
		clawLimits:   engine.NewLimits(90, 100, 0, 30, 0, 0),
		clawMirror:   engine.MirrorNone,
		clawMidRange: engine.NewLimits(0, 15, 0, 0, 0, 0),
	},
	{
		name:         "right",
		zSign:        -1,
		limbLimits:   engine.NewLimits(-30, 15, -190, -170, 0, 0),
		limbAngles:   engine.NewAngles(0, reversedLegYawDeg, 0),
		limbMirror:   engine.MirrorReverse,
		clawLimits:   engine.NewLimits(80, 90, 0, 30, 0, 0),
		clawMirror:   engine.MirrorClaw,
		clawMidRange: engine.NewLimits(-15, 0, 0, 0, 0, 0),
	},
}

// Build assembles the rig in its rest pose.
func Build() *engine.Rig {
	g := engine.NewSceneGraph(engine.NodeSpec{Name: rootName, Limits: frozen})

	leftBody := g.Add(engine.NodeSpec{
		Name:      PartLeftBody,
		Primitive: mesh.Sphere{Radius: BodyRadius},
		Limits:    engine.NewLimits(-90, 90, -100, -80, -10, 10),
		Angles:    engine.NewAngles(0, -90, 0),
	})
	middleBody := g.Add(engine.NodeSpec{
		Name:      PartMiddleBody,
		Offset:    mgl32.Vec3{0, 0, -1},
		Primitive: mesh.Sphere{Radius: BodyRadius},
		Limits:    frozen,
	})
	rightBody := g.Add(engine.NodeSpec{
		Name:      PartRightBody,
		Offset:    mgl32.Vec3{0, 0, -0.5},
		Primitive: mesh.Sphere{Radius: BodyRadius},
		Limits:    frozen,
	})
	g.AddChild(g.Root(), leftBody)
	g.AddChildren(leftBody, middleBody, rightBody)

	rig := &engine.Rig{
		Graph:       g,
		LegsPerSide: LegsPerSide,
		Parts: map[string]engine.NodeID{
			PartLeftBody:   leftBody,
			PartMiddleBody: middleBody,
			PartRightBody:  rightBody,
		},
		PartOrder: []string{PartLeftBody, PartMiddleBody, PartRightBody, PartLeftEye, PartRightEye},
	}

	for _, s := range sides {
		for i, joints := range limbJoints {
			offset := limbOffsets[i]
			offset[2] *= s.zSign
			leg := addLeg(g, leftBody, s.name+"-"+fingers[i], offset,
				engine.NodeSpec{Limits: s.limbLimits, Angles: s.limbAngles, Joint: joints.proximal, Mirror: s.limbMirror},
				engine.NodeSpec{Limits: middleLimits, Angles: engine.NewAngles(50, 0, 0), Joint: joints.middle},
				engine.NodeSpec{Limits: distalLimits, Joint: joints.distal},
			)
			rig.Legs = append(rig.Legs, leg)
		}

		offset := clawOffset
		offset[2] *= s.zSign
		// The claw's distal segment is not pose-bound.
		leg := addLeg(g, leftBody, s.name+"-claw", offset,
			engine.NodeSpec{Limits: s.clawLimits, Angles: engine.NewAngles(90, 0, 0), Joint: engine.JointClaw, Mirror: s.clawMirror},
			engine.NodeSpec{Limits: s.clawMidRange, Joint: engine.JointClawMiddle},
			engine.NodeSpec{Limits: distalLimits},
		)
		rig.Legs = append(rig.Legs, leg)
	}

	for _, s := range sides {
		stalk := g.Add(engine.NodeSpec{
			Name:      s.name + "-eye-stalk",
			Offset:    mgl32.Vec3{clawOffset[0], 0, clawOffset[2] * s.zSign},
			Primitive: mesh.Eyeball{Radius: LimbRadius * 2},
			Limits:    free,
			Angles:    engine.NewAngles(0, 90, 0),
		})
		eye := g.Add(engine.NodeSpec{
			Name:      s.name + "-eye",
			Offset:    mgl32.Vec3{0, 0, 0.23},
			Primitive: mesh.Eyeball{Radius: LimbRadius},
			Limits:    pupil,
		})
		g.AddChild(leftBody, stalk)
		g.AddChild(stalk, eye)
		rig.Parts[s.name+"-eye"] = eye
		rig.Eyes = append(rig.Eyes, eye)
	}

	return rig
}

// addLeg builds proximal -> middle -> distal under body. Names, offsets and
// primitives are filled in here; the specs carry limits, angles and bindings.
func addLeg(g *engine.SceneGraph, body engine.NodeID, name string, offset mgl32.Vec3, proximal, middle, distal engine.NodeSpec) engine.Leg {
	proximal.Name = fmt.Sprintf("%s-proximal", name)
	proximal.Offset = offset
	proximal.Primitive = mesh.Cylinder{Radius: LimbRadius, Height: ProximalHeight}

	middle.Name = fmt.Sprintf("%s-middle", name)
	middle.Offset = mgl32.Vec3{0, 0, ProximalHeight}
	middle.Primitive = mesh.Cylinder{Radius: LimbRadius, Height: MiddleHeight}

	distal.Name = fmt.Sprintf("%s-distal", name)
	distal.Offset = mgl32.Vec3{0, 0, MiddleHeight}
	distal.Primitive = mesh.Cylinder{Radius: LimbRadius, Height: DistalHeight}

	leg := engine.Leg{
		Proximal: g.Add(proximal),
		Middle:   g.Add(middle),
		Distal:   g.Add(distal),
	}
	g.AddChild(body, leg.Proximal)
	g.AddChild(leg.Proximal, leg.Middle)
	g.AddChild(leg.Middle, leg.Distal)
	return leg
}
