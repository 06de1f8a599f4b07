package marks

import (
	"sync"
	"time"
)

// defaultPause is the minimum interval between two steps of a transition.
const defaultPause = time.Second / 60

// Stepper advances an animation to elapsed time dt of total duration dd.
// It returns the wait requested before the next step, or a non-positive
// duration once it has finished.
type Stepper interface {
	Step(dt, dd time.Duration, ease Easing) time.Duration
}

// StepperFunc adapts a function to the Stepper interface.
type StepperFunc func(dt, dd time.Duration, ease Easing) time.Duration

// Step calls f.
func (f StepperFunc) Step(dt, dd time.Duration, ease Easing) time.Duration {
	return f(dt, dd, ease)
}

// Transition is a scheduler task that drives a Stepper over a fixed
// duration. The clock starts at the first scheduler tick after Play, so the
// first step always sees dt = 0.
type Transition struct {
	mu       sync.Mutex
	sched    *Scheduler
	id       string
	stepper  Stepper
	duration time.Duration
	pause    time.Duration
	ease     Easing

	started  bool
	stopped  bool
	start    time.Time
	lastStep time.Time
	done     chan struct{}
}

// NewTransition returns a transition running s for d on the engine's
// scheduler. It does nothing until Play is called.
func NewTransition(e *Engine, d time.Duration, s Stepper) *Transition {
	return &Transition{
		sched:    e.sched,
		stepper:  s,
		duration: d,
		pause:    defaultPause,
		ease:     defaultEasing,
		done:     make(chan struct{}),
	}
}

// ID returns the scheduler id, or "" for an anonymous transition.
func (t *Transition) ID() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.id
}

// Duration returns the total duration.
func (t *Transition) Duration() time.Duration { return t.duration }

// Stepper returns the driven stepper.
func (t *Transition) Stepper() Stepper { return t.stepper }

// SetEasing sets the easing applied to items without their own. A nil
// easing is linear.
func (t *Transition) SetEasing(e Easing) *Transition {
	t.mu.Lock()
	t.ease = e
	t.mu.Unlock()
	return t
}

// SetPause sets the minimum interval between steps.
func (t *Transition) SetPause(d time.Duration) *Transition {
	t.mu.Lock()
	t.pause = d
	t.mu.Unlock()
	return t
}

// Play queues the transition on the scheduler.
func (t *Transition) Play() error {
	return t.sched.Add(t)
}

// PlayID queues the transition under id, replacing any task with that id.
// A replaced transition stops where it is and closes its Done channel.
func (t *Transition) PlayID(id string) error {
	t.mu.Lock()
	t.id = id
	t.mu.Unlock()
	return t.sched.Add(t)
}

// Stop ends the transition and removes it from the scheduler, leaving items
// where they are.
func (t *Transition) Stop() {
	t.mu.Lock()
	t.finishLocked()
	t.mu.Unlock()
	t.sched.CancelTask(t)
}

// cancel is called by the scheduler when another task takes over the
// transition's id.
func (t *Transition) cancel() {
	t.mu.Lock()
	t.finishLocked()
	t.mu.Unlock()
}

// Done is closed when the transition finishes, is stopped or is replaced
// under its id.
func (t *Transition) Done() <-chan struct{} { return t.done }

// Evaluate implements Task.
func (t *Transition) Evaluate(now time.Time) time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped {
		return 0
	}
	if !t.started {
		t.started = true
		t.start = now
	} else if since := now.Sub(t.lastStep); since < t.pause {
		return t.pause - since
	}
	t.lastStep = now

	next := t.stepper.Step(now.Sub(t.start), t.duration, t.ease)
	if next <= 0 {
		t.finishLocked()
	}
	return next
}

func (t *Transition) finishLocked() {
	t.stopped = true
	select {
	case <-t.done:
	default:
		close(t.done)
	}
}

// Parallel steps a set of steppers together and reports the smallest
// positive wait among them. An empty Parallel finishes immediately.
type Parallel struct {
	mu    sync.Mutex
	steps []Stepper
}

// NewParallel returns an empty Parallel.
func NewParallel() *Parallel { return &Parallel{} }

// Add appends s. Nil steppers are ignored. Add is safe for concurrent use.
func (p *Parallel) Add(s Stepper) {
	if s == nil {
		return
	}
	p.mu.Lock()
	p.steps = append(p.steps, s)
	p.mu.Unlock()
}

// Len returns the number of steppers.
func (p *Parallel) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.steps)
}

// Step implements Stepper.
func (p *Parallel) Step(dt, dd time.Duration, ease Easing) time.Duration {
	p.mu.Lock()
	steps := p.steps
	p.mu.Unlock()
	next := time.Duration(-1)
	for _, s := range steps {
		next = minPositive(next, s.Step(dt, dd, ease))
	}
	return next
}

// minPositive merges two requested waits, ignoring non-positive ones.
func minPositive(a, b time.Duration) time.Duration {
	switch {
	case b <= 0:
		return a
	case a <= 0 || b < a:
		return b
	}
	return a
}
