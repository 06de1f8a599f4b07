package marks

import (
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/petermattis/goid"
)

// minSleep bounds how often the scheduler polls while tasks are pending.
const minSleep = time.Millisecond

// Task is a unit of time-driven work run by the Scheduler. Evaluate is
// called on the scheduler goroutine with the tick's timestamp and returns
// the wait before it wants to run again; a non-positive wait removes it.
type Task interface {
	ID() string
	Evaluate(now time.Time) time.Duration
}

type funcTask struct {
	id string
	fn func(now time.Time) time.Duration
}

func (t *funcTask) ID() string                           { return t.id }
func (t *funcTask) Evaluate(now time.Time) time.Duration { return t.fn(now) }

// NewTask wraps fn as a Task. An empty id makes the task anonymous.
func NewTask(id string, fn func(now time.Time) time.Duration) Task {
	return &funcTask{id: id, fn: fn}
}

// Scheduler runs tasks on a single dedicated goroutine. Each tick evaluates
// every queued task once, then, only if at least one task ran, every post
// task once. The loop sleeps for the smallest wait any task requested.
type Scheduler struct {
	mu    sync.Mutex
	queue []Task
	post  []Task
	ids   map[string]Task

	clock  func() time.Time
	logger *slog.Logger

	wake   chan struct{}
	done   chan struct{}
	exited chan struct{}
	closed atomic.Bool
	gid    atomic.Int64

	// added counts Add calls; processed is the value of added captured
	// by the last completed tick.
	added     uint64
	cycleMu   sync.Mutex
	cycle     *sync.Cond
	processed uint64
}

func newScheduler(clock func() time.Time, logger *slog.Logger) *Scheduler {
	s := &Scheduler{
		ids:    make(map[string]Task),
		clock:  clock,
		logger: logger,
		wake:   make(chan struct{}, 1),
		done:   make(chan struct{}),
		exited: make(chan struct{}),
	}
	s.cycle = sync.NewCond(&s.cycleMu)
	s.gid.Store(-1)
	go s.run()
	return s
}

// OnSchedulerGoroutine reports whether the caller is the scheduler loop.
func (s *Scheduler) OnSchedulerGoroutine() bool {
	return goid.Get() == s.gid.Load()
}

// Add queues t. A queued task with the same non-empty id is cancelled
// first, so re-adding a task under an id restarts it. A replaced task that
// implements cancel() is told so after it leaves the queue.
func (s *Scheduler) Add(t Task) error {
	if s.closed.Load() {
		return ErrClosed
	}
	var replaced Task
	s.mu.Lock()
	if id := t.ID(); id != "" {
		if prev, ok := s.ids[id]; ok {
			s.queue = deleteTask(s.queue, prev)
			if prev != t {
				replaced = prev
			}
		}
		s.ids[id] = t
	}
	s.queue = append(s.queue, t)
	s.added++
	s.mu.Unlock()
	if c, ok := replaced.(canceler); ok {
		c.cancel()
	}
	s.signal()
	return nil
}

// canceler is implemented by tasks that must learn they were replaced.
type canceler interface {
	cancel()
}

// AddPost queues t on the post queue, which runs after every tick in which
// at least one primary task ran.
func (s *Scheduler) AddPost(t Task) error {
	if s.closed.Load() {
		return ErrClosed
	}
	s.mu.Lock()
	s.post = append(s.post, t)
	s.mu.Unlock()
	return nil
}

// RemovePost removes t from the post queue.
func (s *Scheduler) RemovePost(t Task) {
	s.mu.Lock()
	s.post = deleteTask(s.post, t)
	s.mu.Unlock()
}

// Cancel removes the task queued under id and returns it, or nil.
func (s *Scheduler) Cancel(id string) Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.ids[id]
	if !ok {
		return nil
	}
	delete(s.ids, id)
	s.queue = deleteTask(s.queue, t)
	return t
}

// CancelTask removes t from the queue.
func (s *Scheduler) CancelTask(t Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queue = deleteTask(s.queue, t)
	if id := t.ID(); id != "" && s.ids[id] == t {
		delete(s.ids, id)
	}
}

// Lookup returns the task queued under id, or nil.
func (s *Scheduler) Lookup(id string) Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ids[id]
}

// Len returns the number of queued primary tasks.
func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

// WaitOneCycle blocks until the scheduler has completed a tick that ran
// every task added before the call. It returns at once when called from
// the scheduler goroutine, when nothing is queued, or after Close.
func (s *Scheduler) WaitOneCycle() {
	if s.OnSchedulerGoroutine() {
		return
	}
	s.mu.Lock()
	seq, empty := s.added, len(s.queue) == 0
	s.mu.Unlock()
	if empty {
		return
	}
	s.cycleMu.Lock()
	defer s.cycleMu.Unlock()
	for s.processed < seq && !s.closed.Load() {
		s.cycle.Wait()
	}
}

// Close stops the loop and waits for it to exit. Queued tasks are dropped.
func (s *Scheduler) Close() {
	if !s.closed.CompareAndSwap(false, true) {
		return
	}
	close(s.done)
	<-s.exited
	s.cycleMu.Lock()
	s.cycle.Broadcast()
	s.cycleMu.Unlock()
}

func (s *Scheduler) signal() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *Scheduler) run() {
	defer close(s.exited)
	s.gid.Store(goid.Get())

	timer := time.NewTimer(time.Hour)
	timer.Stop()
	for {
		begin := time.Now()
		now := s.clock()

		s.mu.Lock()
		tasks := slices.Clone(s.queue)
		seq := s.added
		s.mu.Unlock()

		ran := false
		next := time.Duration(-1)
		for _, t := range tasks {
			if !s.queued(t) {
				continue
			}
			w := s.evaluate(t, now)
			ran = true
			if w <= 0 {
				s.CancelTask(t)
				continue
			}
			next = minPositive(next, w)
		}

		s.cycleMu.Lock()
		s.processed = seq
		s.cycle.Broadcast()
		s.cycleMu.Unlock()

		if ran {
			s.mu.Lock()
			post := slices.Clone(s.post)
			s.mu.Unlock()
			for _, t := range post {
				if s.evaluate(t, now) <= 0 {
					s.RemovePost(t)
				}
			}
		}

		var after <-chan time.Time
		if s.Len() > 0 {
			wait := minSleep
			if next > 0 {
				wait = max(next-time.Since(begin), minSleep)
			}
			timer.Reset(wait)
			after = timer.C
		}
		select {
		case <-s.done:
			timer.Stop()
			return
		case <-s.wake:
			timer.Stop()
		case <-after:
		}
	}
}

func (s *Scheduler) queued(t Task) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Contains(s.queue, t)
}

// evaluate runs one task, converting a panic into removal.
func (s *Scheduler) evaluate(t Task, now time.Time) (wait time.Duration) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Warn("scheduler task panicked", "task", t.ID(), "panic", fmt.Sprint(r))
			wait = -1
		}
	}()
	return t.Evaluate(now)
}

func deleteTask(ts []Task, t Task) []Task {
	return slices.DeleteFunc(ts, func(x Task) bool { return x == t })
}
