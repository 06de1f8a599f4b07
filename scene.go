package marks

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// Scene is the root panel mark of a visualization. It owns the root item
// under which the whole item tree is built, and submits update passes to
// its engine's scheduler.
type Scene struct {
	*Mark

	engine *Engine
	name   string
	root   *Item
	debug  atomic.Bool

	mu        sync.Mutex
	err       error
	lastStats UpdateStats
}

// NewScene creates an empty scene named name on engine e. The name keys the
// scene's scheduler tasks, so scenes sharing an engine need distinct names.
func NewScene(e *Engine, name string) *Scene {
	s := &Scene{
		engine: e,
		name:   name,
		root:   &Item{Visible: true, Layers: make([]*GroupItem, 1)},
	}
	m := NewMark(MarkPanel)
	m.scene = s
	s.Mark = m
	s.debug.Store(e.debug)
	return s
}

// Name returns the scene name.
func (s *Scene) Name() string { return s.name }

// Engine returns the owning engine.
func (s *Scene) Engine() *Engine { return s.engine }

// Root returns the root item. Its single layer holds the scene's group.
func (s *Scene) Root() *Item { return s.root }

// Group returns the group of panel items the scene mark produced, or nil
// before the first update.
func (s *Scene) Group() *GroupItem { return s.root.Layers[0] }

// Err returns the error of the last update pass, or nil if it succeeded.
func (s *Scene) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// LastStats returns the metrics of the last update pass.
func (s *Scene) LastStats() UpdateStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastStats
}

// SetDebugMode enables per-pass timing logs and size checks.
func (s *Scene) SetDebugMode(on bool) { s.debug.Store(on) }

// OnUpdate registers a handler fired once per pass after the build phase.
func (s *Scene) OnUpdate(h EventHandler) *Scene {
	s.Mark.On(EventUpdate, h)
	return s
}

func (s *Scene) updateID() string     { return "update/" + s.name }
func (s *Scene) repeatID() string     { return "repeated-update/" + s.name }
func (s *Scene) transitionID() string { return "scene-transition/" + s.name }

// Update rebuilds and re-evaluates the item tree without animation. Called
// off the scheduler goroutine it queues the pass, replacing a pending one.
func (s *Scene) Update() error {
	return s.submit(s.updateID(), nil, nil)
}

// UpdateAndWait is Update followed by waiting for the pass to run.
func (s *Scene) UpdateAndWait() error {
	if err := s.Update(); err != nil {
		return err
	}
	s.engine.sched.WaitOneCycle()
	return s.Err()
}

// Animate runs an animated pass and plays the transition to the new state
// over d. The returned transition starts once the pass has run; it replaces
// any scene transition still playing.
func (s *Scene) Animate(d time.Duration) *Transition {
	p := NewParallel()
	t := NewTransition(s.engine, d, p)
	play := func() {
		if err := t.PlayID(s.transitionID()); err != nil {
			t.Stop()
		}
	}
	if err := s.submit("", p, play); err != nil {
		t.Stop()
	}
	return t
}

// AnimateAndWait is Animate followed by waiting for the transition to end.
func (s *Scene) AnimateAndWait(d time.Duration) *Transition {
	t := s.Animate(d)
	<-t.Done()
	return t
}

// RepeatUpdate runs an update pass every pause. iterations > 0 limits the
// number of passes and until > 0 limits how long the task keeps running;
// zero values mean unbounded. A previous repeated update is replaced.
func (s *Scene) RepeatUpdate(pause time.Duration, iterations int, until time.Duration) error {
	if pause <= 0 {
		pause = defaultPause
	}
	var end time.Time
	left := iterations
	task := NewTask(s.repeatID(), func(now time.Time) time.Duration {
		if end.IsZero() && until > 0 {
			end = now.Add(until)
		}
		s.pass(nil)
		if iterations > 0 {
			left--
			if left <= 0 {
				return 0
			}
		}
		if !end.IsZero() && now.After(end) {
			return 0
		}
		return pause
	})
	return s.engine.sched.Add(task)
}

// StopRepeat cancels a repeated update started with RepeatUpdate.
func (s *Scene) StopRepeat() {
	s.engine.sched.Cancel(s.repeatID())
}

// submit runs a pass inline on the scheduler goroutine, otherwise queues it
// under id. then runs after the pass.
func (s *Scene) submit(id string, p *Parallel, then func()) error {
	run := func() {
		s.pass(p)
		if then != nil {
			then()
		}
	}
	if s.engine.sched.OnSchedulerGoroutine() {
		run()
		return nil
	}
	return s.engine.sched.Add(NewTask(id, func(time.Time) time.Duration {
		run()
		return 0
	}))
}

// pass performs one complete update. Failures are logged and kept in Err;
// they never escape to the scheduler.
func (s *Scene) pass(p *Parallel) {
	var st updateStats
	err := protect(func() error {
		s.Mark.setTreeIndex(-1)
		t0 := time.Now()
		if err := s.engine.bindTree(s.Mark, &st); err != nil {
			return err
		}
		st.bind = time.Since(t0)
		return s.engine.updater.update(s, p, &st)
	})
	if err != nil {
		err = fmt.Errorf("scene %s: %w", s.name, err)
		s.engine.logger.Warn("update failed", "scene", s.name, "err", err)
	}

	stats := st.snapshot()
	s.mu.Lock()
	s.err = err
	s.lastStats = stats
	s.mu.Unlock()

	if s.debug.Load() {
		s.debugLog(stats)
		s.debugCheckGroups(s.root, 0)
	}
}

// fireUpdate delivers the update event to the scene's handlers.
func (s *Scene) fireUpdate() {
	g := s.Group()
	if g == nil {
		return
	}
	g.Fire(&Event{Type: EventUpdate, When: s.engine.now()}, nil)
}
