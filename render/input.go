package render

import (
	"math"
	"sync"
	"time"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/phanxgames/marks"
)

// defaultDragDeadZone is the distance in pixels a pressed pointer may move
// before its release no longer counts as a click.
const defaultDragDeadZone = 4.0

// PointerSample is the mouse state read at one game tick, in scene
// coordinates.
type PointerSample struct {
	X, Y    float64
	Pressed bool
	Button  int
	WheelX  float64
	WheelY  float64
}

// Input routes mouse and keyboard input into mark event handlers. Samples
// are queued on the scene's scheduler so hit testing and handlers see a
// settled item tree, and handlers may call Scene.Update directly.
type Input struct {
	scene    *marks.Scene
	deadZone float64

	feedMu sync.Mutex
	last   PointerSample
	primed bool

	// touched only on the scheduler goroutine
	hover    *marks.Item
	press    *marks.Item
	down     bool
	dragging bool
	startX   float64
	startY   float64
	lastX    float64
	lastY    float64
	button   int
}

// NewInput returns an input dispatching into s.
func NewInput(s *marks.Scene) *Input {
	return &Input{scene: s, deadZone: defaultDragDeadZone}
}

// SetDragDeadZone sets how far a press may travel and still click.
func (p *Input) SetDragDeadZone(pixels float64) {
	p.feedMu.Lock()
	p.deadZone = pixels
	p.feedMu.Unlock()
}

// Hover returns the item under the pointer. Call it from an event handler
// or another scheduler task.
func (p *Input) Hover() *marks.Item { return p.hover }

// FeedPointer queues one pointer sample. A sample equal to the previous one
// is dropped unless the wheel moved.
func (p *Input) FeedPointer(in PointerSample) error {
	p.feedMu.Lock()
	if p.primed && in == p.last && in.WheelX == 0 && in.WheelY == 0 {
		p.feedMu.Unlock()
		return nil
	}
	p.last, p.primed = in, true
	dead := p.deadZone
	p.feedMu.Unlock()

	return p.scene.Engine().Scheduler().Add(marks.NewTask("", func(now time.Time) time.Duration {
		p.process(in, dead, now)
		return 0
	}))
}

// FeedKey queues a key press, delivered to the handlers of the scene mark.
func (p *Input) FeedKey(key string) error {
	return p.scene.Engine().Scheduler().Add(marks.NewTask("", func(now time.Time) time.Duration {
		if g := p.scene.Group(); g != nil {
			g.Fire(&marks.Event{Type: marks.EventKeyPress, When: now, Key: key}, nil)
		}
		return 0
	}))
}

// process runs the pointer state machine for one sample.
func (p *Input) process(in PointerSample, deadZone float64, now time.Time) {
	target, lx, ly := Pick(p.scene.Root(), in.X, in.Y)
	ev := func(typ string) *marks.Event {
		return &marks.Event{Type: typ, When: now, X: lx, Y: ly, Button: p.button}
	}

	if target != p.hover {
		if p.hover != nil {
			marks.FireItem(ev(marks.EventMouseExit), p.hover)
		}
		if target != nil {
			marks.FireItem(ev(marks.EventMouseEnter), target)
		}
		p.hover = target
	}

	switch {
	case in.Pressed && !p.down:
		p.down, p.dragging = true, false
		p.button = in.Button
		p.startX, p.startY = in.X, in.Y
		p.press = target
		marks.FireItem(ev(marks.EventMousePress), target)
	case !in.Pressed && p.down:
		if !p.dragging && p.press != nil && p.press == target {
			marks.FireItem(ev(marks.EventMouseClick), target)
		}
		p.down, p.dragging, p.press = false, false, nil
	case in.Pressed && p.down:
		if !p.dragging && math.Hypot(in.X-p.startX, in.Y-p.startY) > deadZone {
			p.dragging = true
		}
		if in.X != p.lastX || in.Y != p.lastY {
			marks.FireItem(ev(marks.EventMouseMove), target)
		}
	default:
		if in.X != p.lastX || in.Y != p.lastY {
			marks.FireItem(ev(marks.EventMouseMove), target)
		}
	}
	p.lastX, p.lastY = in.X, in.Y

	if wheel := in.WheelY; wheel != 0 && target != nil {
		e := ev(marks.EventMouseWheel)
		e.Wheel = wheel
		marks.FireItem(e, target)
	}
}

// Pick returns the topmost visible item at (x, y) in the root's coordinate
// space, searching in reverse draw order, together with the point in the
// item's group coordinates. Only groups that accept pointer events are
// searched.
func Pick(root *marks.Item, x, y float64) (*marks.Item, float64, float64) {
	var c collector
	return c.pick(root, x, y)
}

func (c *collector) pick(it *marks.Item, x, y float64) (*marks.Item, float64, float64) {
	layers := c.sortLayers(it.Layers)
	for i := len(layers) - 1; i >= 0; i-- {
		g := layers[i]
		if !g.Visible || !g.Interactive() {
			continue
		}
		for j := len(g.Items) - 1; j >= 0; j-- {
			child := g.Items[j]
			if child == nil || !child.Visible || child.Dead() {
				continue
			}
			if len(child.Layers) > 0 {
				if hit, lx, ly := c.pick(child, x-child.Left, y-child.Top); hit != nil {
					return hit, lx, ly
				}
			}
			if child.Hit(x, y) {
				return child, x, y
			}
		}
	}
	return nil, 0, 0
}

// samplePointer reads the mouse through ebiten. The cursor is already in
// the layout's logical coordinates.
func samplePointer() PointerSample {
	mx, my := ebiten.CursorPosition()
	in := PointerSample{X: float64(mx), Y: float64(my)}
	switch {
	case ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft):
		in.Pressed, in.Button = true, int(ebiten.MouseButtonLeft)
	case ebiten.IsMouseButtonPressed(ebiten.MouseButtonRight):
		in.Pressed, in.Button = true, int(ebiten.MouseButtonRight)
	case ebiten.IsMouseButtonPressed(ebiten.MouseButtonMiddle):
		in.Pressed, in.Button = true, int(ebiten.MouseButtonMiddle)
	}
	in.WheelX, in.WheelY = ebiten.Wheel()
	return in
}
