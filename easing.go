package marks

import (
	"math"

	"github.com/tanema/gween/ease"
)

// Easing maps normalized progress in [0, 1] to eased progress.
type Easing func(t float64) float64

// FromTween adapts a gween easing function to an Easing over [0, 1].
func FromTween(fn ease.TweenFunc) Easing {
	return func(t float64) float64 {
		return float64(fn(float32(t), 0, 1, 1))
	}
}

var (
	Linear      Easing = func(t float64) float64 { return t }
	Sine               = FromTween(ease.InOutSine)
	Exponential        = FromTween(ease.InOutExpo)
	Circular           = FromTween(ease.InOutCirc)
	Elastic            = FromTween(ease.InOutElastic)
	Bounce             = FromTween(ease.OutBounce)
	Back               = FromTween(ease.InOutBack)
)

// Sigmoid is a logistic in-out curve centered at t = 0.5.
var Sigmoid Easing = func(t float64) float64 {
	return 1 / (1 + math.Exp(6-12*t))
}

// Poly returns a symmetric in-out polynomial easing of the given exponent.
// Poly(1) is linear.
func Poly(exp float64) Easing {
	return func(t float64) float64 {
		switch {
		case t <= 0:
			return 0
		case t >= 1:
			return 1
		case t < 0.5:
			return 0.5 * math.Pow(2*t, exp)
		default:
			return 0.5 * (2 - math.Pow(2*(1-t), exp))
		}
	}
}

// defaultEasing is the transition easing when none is configured.
var defaultEasing = Poly(2.2)
