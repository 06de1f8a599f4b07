package marks

import (
	"math"

	"github.com/aclements/go-moremath/scale"
)

// LinearScale maps a numeric data domain onto a pixel range. Property
// functions use it to position items:
//
//	y := marks.NewLinearScale(0, 100, 0, 300)
//	bar.Height(y.By(func(it *marks.Item) float64 { return it.Data.(float64) }))
type LinearScale struct {
	domain scale.Linear
	r0, r1 float64
}

// NewLinearScale returns a scale mapping [d0, d1] onto [r0, r1].
func NewLinearScale(d0, d1, r0, r1 float64) LinearScale {
	return LinearScale{domain: scale.Linear{Min: d0, Max: d1}, r0: r0, r1: r1}
}

// Domain returns the data domain.
func (s LinearScale) Domain() (float64, float64) { return s.domain.Min, s.domain.Max }

// Range returns the output range.
func (s LinearScale) Range() (float64, float64) { return s.r0, s.r1 }

// Clamp returns a copy of s that clamps inputs to the domain.
func (s LinearScale) Clamp(on bool) LinearScale {
	s.domain.Clamp = on
	return s
}

// Map scales x. A degenerate domain maps everything to the range midpoint.
func (s LinearScale) Map(x float64) float64 {
	if s.domain.Min == s.domain.Max {
		return (s.r0 + s.r1) / 2
	}
	return lerp(s.r0, s.r1, s.domain.Map(x))
}

// Invert maps a range value back into the domain.
func (s LinearScale) Invert(y float64) float64 {
	if s.r0 == s.r1 {
		return s.domain.Min
	}
	return lerp(s.domain.Min, s.domain.Max, (y-s.r0)/(s.r1-s.r0))
}

// Ticks returns at most n evenly spaced, round domain values.
func (s LinearScale) Ticks(n int) []float64 {
	if n < 1 || s.domain.Min == s.domain.Max || math.IsNaN(s.domain.Min) || math.IsNaN(s.domain.Max) {
		return nil
	}
	lin := s.domain
	if lin.Min > lin.Max {
		lin.Min, lin.Max = lin.Max, lin.Min
	}
	major, _ := lin.Ticks(scale.TickOptions{Max: n})
	return major
}

// By returns a property function that scales the value f reads from an item.
func (s LinearScale) By(f func(*Item) float64) func(*Item) float64 {
	return func(it *Item) float64 { return s.Map(f(it)) }
}
