package marks

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tanema/gween/ease"
)

func TestEasings(t *testing.T) {
	assert.Equal(t, 0.3, Linear(0.3))
	assert.Equal(t, 0.125, Poly(2)(0.25))
	assert.Equal(t, 0.875, Poly(2)(0.75))
	assert.Equal(t, 0.0, Poly(3)(-1))
	assert.Equal(t, 1.0, Poly(3)(2))
	assert.True(t, approx(Poly(1)(0.4), 0.4))
	assert.Equal(t, 0.5, Sigmoid(0.5))

	for name, e := range map[string]Easing{
		"sine":        Sine,
		"exponential": Exponential,
		"circular":    Circular,
		"back":        Back,
		"bounce":      Bounce,
	} {
		assert.InDelta(t, 0, e(0), 1e-4, name)
		assert.InDelta(t, 1, e(1), 1e-4, name)
	}
	assert.InDelta(t, 0.5, Sine(0.5), 1e-6)
}

func TestFromTween(t *testing.T) {
	lin := FromTween(ease.Linear)
	assert.InDelta(t, 0.25, lin(0.25), 1e-6)
	quad := FromTween(ease.InQuad)
	assert.InDelta(t, 0.25, quad(0.5), 1e-6)
}

func TestTweenStepsField(t *testing.T) {
	x := 0.0
	steps := 0
	tw := NewTween().Float(&x, 10).SetEasing(Linear).OnStep(func() { steps++ })

	assert.Equal(t, defaultPause, tw.Step(0, time.Second, nil))
	assert.Equal(t, 0.0, x)

	tw.Step(500*time.Millisecond, time.Second, nil)
	assert.InDelta(t, 5, x, 1e-4)

	assert.LessOrEqual(t, tw.Step(time.Second, time.Second, nil), time.Duration(0))
	assert.Equal(t, 10.0, x)
	assert.Equal(t, 3, steps)
}

func TestTweenFloatFromUsesTransitionEasing(t *testing.T) {
	y := 99.0
	tw := NewTween().FloatFrom(&y, 0, 100)
	tw.Step(0, time.Second, Poly(2))
	assert.Equal(t, 0.0, y, "explicit start replaces the current value")

	tw.Step(250*time.Millisecond, time.Second, Poly(2))
	require.InDelta(t, 12.5, y, 1e-3)

	tw.Step(2*time.Second, time.Second, Poly(2))
	assert.Equal(t, 100.0, y)
}

func TestTweenInParallel(t *testing.T) {
	a, b := 0.0, 0.0
	p := NewParallel()
	p.Add(NewTween().Float(&a, 1))
	p.Add(NewTween().Float(&b, 2))

	p.Step(0, time.Second, Linear)
	assert.Equal(t, defaultPause, p.Step(500*time.Millisecond, time.Second, Linear))
	assert.InDelta(t, 0.5, a, 1e-4)
	assert.InDelta(t, 1, b, 1e-4)

	assert.LessOrEqual(t, p.Step(time.Second, time.Second, Linear), time.Duration(0))
	assert.Equal(t, 2.0, b)
}
