package marks

import (
	"sync"
	"time"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// Tween animates float64 fields that live outside the item tree, such as a
// zoom factor read by property functions. It is a Stepper: wrap it in a
// Transition to play it on the scheduler, or add it to a Parallel next to
// group transitions.
//
// Each field is driven by a gween tween created on the first step, when the
// duration is known; later steps advance it by the elapsed delta.
type Tween struct {
	mu      sync.Mutex
	targets []tweenTarget
	ease    Easing
	last    time.Duration
	onStep  func()
}

type tweenTarget struct {
	field    *float64
	from, to float64
	fromSet  bool
	tw       *gween.Tween
}

// NewTween returns an empty tween.
func NewTween() *Tween { return &Tween{} }

// Float animates *field from its value at the first step to to.
func (t *Tween) Float(field *float64, to float64) *Tween {
	t.mu.Lock()
	t.targets = append(t.targets, tweenTarget{field: field, to: to})
	t.mu.Unlock()
	return t
}

// FloatFrom animates *field from from to to.
func (t *Tween) FloatFrom(field *float64, from, to float64) *Tween {
	t.mu.Lock()
	t.targets = append(t.targets, tweenTarget{field: field, from: from, to: to, fromSet: true})
	t.mu.Unlock()
	return t
}

// SetEasing overrides the transition's easing for this tween.
func (t *Tween) SetEasing(e Easing) *Tween {
	t.mu.Lock()
	t.ease = e
	t.mu.Unlock()
	return t
}

// OnStep registers fn to run after every step, typically to queue a scene
// update that reads the animated fields.
func (t *Tween) OnStep(fn func()) *Tween {
	t.mu.Lock()
	t.onStep = fn
	t.mu.Unlock()
	return t
}

// Step implements Stepper.
func (t *Tween) Step(dt, dd time.Duration, e Easing) time.Duration {
	t.mu.Lock()
	if t.ease != nil {
		e = t.ease
	}
	delta := float32((dt - t.last).Seconds())
	t.last = dt
	finished := true
	for i := range t.targets {
		tt := &t.targets[i]
		if tt.tw == nil {
			if !tt.fromSet {
				tt.from = *tt.field
			}
			tt.tw = gween.New(float32(tt.from), float32(tt.to), float32(dd.Seconds()), tweenFunc(e))
		}
		v, done := tt.tw.Update(delta)
		if done {
			*tt.field = tt.to
		} else {
			*tt.field = float64(v)
			finished = false
		}
	}
	fn := t.onStep
	t.mu.Unlock()

	if fn != nil {
		fn()
	}
	if finished || dt >= dd {
		return -1
	}
	return defaultPause
}

// tweenFunc adapts an Easing to gween's easing signature. nil is linear.
func tweenFunc(e Easing) ease.TweenFunc {
	if e == nil {
		return ease.Linear
	}
	return func(t, b, c, d float32) float32 {
		if d <= 0 {
			return b + c
		}
		return b + c*float32(e(float64(t/d)))
	}
}
