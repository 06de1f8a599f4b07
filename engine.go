package marks

import (
	"log/slog"
	"runtime"
	"time"

	"github.com/phanxgames/marks/internal/lru"
	"github.com/phanxgames/marks/internal/parallel"
)

// UpdaterKind selects how an update pass walks the mark tree.
type UpdaterKind uint8

const (
	// UpdaterAuto picks the parallel updater when more than one worker is
	// configured.
	UpdaterAuto UpdaterKind = iota
	// UpdaterSerial builds and evaluates depth-first on the scheduler goroutine.
	UpdaterSerial
	// UpdaterParallel fans builds and evaluation blocks out to the worker pool.
	UpdaterParallel
)

func (k UpdaterKind) String() string {
	switch k {
	case UpdaterSerial:
		return "serial"
	case UpdaterParallel:
		return "parallel"
	}
	return "auto"
}

// Option configures an Engine.
type Option func(*engineOptions)

type engineOptions struct {
	workers   int
	updater   UpdaterKind
	evaluator EvaluatorKind
	logger    *slog.Logger
	clock     func() time.Time
	debug     bool
	cacheSize int
}

func defaultEngineOptions() engineOptions {
	return engineOptions{
		workers:   runtime.GOMAXPROCS(0),
		evaluator: EvaluatorCompiled,
		clock:     time.Now,
		cacheSize: lru.DefaultCapacity,
	}
}

// WithWorkers sets the worker pool size. Values below 1 use GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(o *engineOptions) {
		if n < 1 {
			n = runtime.GOMAXPROCS(0)
		}
		o.workers = n
	}
}

// WithUpdater selects the update strategy.
func WithUpdater(k UpdaterKind) Option {
	return func(o *engineOptions) { o.updater = k }
}

// WithEvaluator selects the evaluator strategy.
func WithEvaluator(k EvaluatorKind) Option {
	return func(o *engineOptions) { o.evaluator = k }
}

// WithLogger sets the logger. nil restores the silent default.
func WithLogger(l *slog.Logger) Option {
	return func(o *engineOptions) { o.logger = l }
}

// WithClock replaces the time source used to stamp scheduler ticks and
// events. Sleeping between ticks always uses the wall clock.
func WithClock(now func() time.Time) Option {
	return func(o *engineOptions) {
		if now != nil {
			o.clock = now
		}
	}
}

// WithDebug enables per-update timing stats at Debug level.
func WithDebug(on bool) Option {
	return func(o *engineOptions) { o.debug = on }
}

// WithPlanCacheSize sets how many compiled evaluator plans are cached.
func WithPlanCacheSize(n int) Option {
	return func(o *engineOptions) { o.cacheSize = n }
}

// Engine owns the scheduler goroutine, the worker pool and the evaluator
// plan cache shared by its scenes. Engines are independent; Close releases
// one without affecting others.
type Engine struct {
	evalKind    EvaluatorKind
	updaterKind UpdaterKind
	compiler    *compiler
	pool        *parallel.WorkerPool
	sched       *Scheduler
	updater     updater
	logger      *slog.Logger
	clock       func() time.Time
	debug       bool
}

// NewEngine starts an engine configured by opts.
func NewEngine(opts ...Option) *Engine {
	o := defaultEngineOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = newNopLogger()
	}
	if o.updater == UpdaterAuto {
		o.updater = UpdaterSerial
		if o.workers > 1 {
			o.updater = UpdaterParallel
		}
	}

	e := &Engine{
		evalKind:    o.evaluator,
		updaterKind: o.updater,
		compiler:    newCompiler(o.cacheSize, o.logger),
		pool:        parallel.NewWorkerPool(o.workers),
		logger:      o.logger,
		clock:       o.clock,
		debug:       o.debug,
	}
	e.sched = newScheduler(e.clock, e.logger)
	if o.updater == UpdaterParallel {
		e.updater = &parallelUpdater{engine: e}
	} else {
		e.updater = &serialUpdater{engine: e}
	}
	return e
}

// Scheduler returns the engine's scheduler.
func (e *Engine) Scheduler() *Scheduler { return e.sched }

// Logger returns the engine's logger.
func (e *Engine) Logger() *slog.Logger { return e.logger }

// Workers returns the worker pool size.
func (e *Engine) Workers() int { return e.pool.Workers() }

// Updater reports the update strategy in use.
func (e *Engine) Updater() UpdaterKind { return e.updaterKind }

// EvaluatorStrategy reports the evaluator strategy in use.
func (e *Engine) EvaluatorStrategy() EvaluatorKind { return e.evalKind }

// PlanCacheStats reports the counters of the compiled plan cache.
func (e *Engine) PlanCacheStats() (hits, misses, evictions uint64) {
	st := e.compiler.shapes.Stats()
	return st.Hits, st.Misses, st.Evictions
}

// Close stops the scheduler and the worker pool. Pending tasks are dropped
// and later submissions fail with ErrClosed.
func (e *Engine) Close() {
	e.sched.Close()
	e.pool.Close()
}

func (e *Engine) now() time.Time { return e.clock() }
