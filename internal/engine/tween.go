package engine

import (
	"fmt"
	"math"
)

// Easing shapes the interpolation factor of a pose transition.
type Easing string

const (
	EasingLinear     Easing = "linear"
	EasingEaseIn     Easing = "easeIn"
	EasingEaseOut    Easing = "easeOut"
	EasingEaseInOut  Easing = "easeInOut"
	EasingCubicIn    Easing = "cubicIn"
	EasingCubicOut   Easing = "cubicOut"
	EasingCubicInOut Easing = "cubicInOut"
	EasingBackOut    Easing = "backOut"
	EasingElasticOut Easing = "elasticOut"
	EasingBounceOut  Easing = "bounceOut"
)

// ParseEasing validates an easing name. The empty string selects easeInOut.
func ParseEasing(s string) (Easing, error) {
	switch e := Easing(s); e {
	case "":
		return EasingEaseInOut, nil
	case EasingLinear, EasingEaseIn, EasingEaseOut, EasingEaseInOut,
		EasingCubicIn, EasingCubicOut, EasingCubicInOut,
		EasingBackOut, EasingElasticOut, EasingBounceOut:
		return e, nil
	}
	return "", fmt.Errorf("unknown easing %q", s)
}

// Apply maps t in [0, 1] through the easing curve.
func (e Easing) Apply(t float64) float64 {
	t = min(max(t, 0), 1)
	switch e {
	case EasingEaseIn:
		return t * t

	case EasingEaseOut:
		return t * (2 - t)

	case EasingEaseInOut:
		if t < 0.5 {
			return 2 * t * t
		}
		return -1 + (4-2*t)*t

	case EasingCubicIn:
		return t * t * t

	case EasingCubicOut:
		t2 := 1 - t
		return 1 - t2*t2*t2

	case EasingCubicInOut:
		if t < 0.5 {
			return 4 * t * t * t
		}
		t2 := -2*t + 2
		return 1 - t2*t2*t2/2

	case EasingBackOut:
		c1 := 1.70158
		c3 := c1 + 1
		t2 := t - 1
		return 1 + c3*t2*t2*t2 + c1*t2*t2

	case EasingElasticOut:
		if t == 0 || t == 1 {
			return t
		}
		c4 := (2 * math.Pi) / 3
		return math.Pow(2, -10*t)*math.Sin((t*10-0.75)*c4) + 1

	case EasingBounceOut:
		return bounceOut(t)

	default: // linear
		return t
	}
}

// bounceOut implements the standard 4-segment parabolic bounce curve.
func bounceOut(t float64) float64 {
	n1 := 7.5625
	d1 := 2.75
	if t < 1/d1 {
		return n1 * t * t
	} else if t < 2/d1 {
		t -= 1.5 / d1
		return n1*t*t + 0.75
	} else if t < 2.5/d1 {
		t -= 2.25 / d1
		return n1*t*t + 0.9375
	} else {
		t -= 2.625 / d1
		return n1*t*t + 0.984375
	}
}

// TweenPoses blends two snapshots at factor t (already eased). Joints present
// in only one snapshot keep that snapshot's value.
func TweenPoses(from, to Pose, t float64) Pose {
	out := make(map[Joint]Angles, max(from.Len(), to.Len()))
	for j, a := range from.angles {
		out[j] = a
	}
	for j, b := range to.angles {
		a, ok := from.angles[j]
		if !ok {
			out[j] = b
			continue
		}
		out[j] = lerpAngles(a, b, float32(t))
	}
	name := to.name
	if t < 1 {
		name = fmt.Sprintf("%s>%s", from.name, to.name)
	}
	return Pose{name: name, angles: out}
}

func lerpAngles(a, b Angles, t float32) Angles {
	var v [3]float32
	for i := range v {
		v[i] = a.v[i] + (b.v[i]-a.v[i])*t
	}
	return Angles{v: v}
}
