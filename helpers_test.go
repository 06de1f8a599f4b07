package marks

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

type engineConfig struct {
	name string
	opts []Option
}

// engineConfigs covers every evaluator and updater combination.
var engineConfigs = []engineConfig{
	{"serial/compiled", []Option{WithUpdater(UpdaterSerial), WithEvaluator(EvaluatorCompiled), WithWorkers(4)}},
	{"serial/generic", []Option{WithUpdater(UpdaterSerial), WithEvaluator(EvaluatorGeneric), WithWorkers(4)}},
	{"parallel/compiled", []Option{WithUpdater(UpdaterParallel), WithEvaluator(EvaluatorCompiled), WithWorkers(4)}},
	{"parallel/generic", []Option{WithUpdater(UpdaterParallel), WithEvaluator(EvaluatorGeneric), WithWorkers(4)}},
}

// forEachConfig runs fn as a subtest against a fresh engine per config.
func forEachConfig(t *testing.T, fn func(t *testing.T, e *Engine)) {
	t.Helper()
	for _, c := range engineConfigs {
		t.Run(c.name, func(t *testing.T) {
			e := NewEngine(c.opts...)
			t.Cleanup(e.Close)
			fn(t, e)
		})
	}
}

func newTestEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	e := NewEngine(opts...)
	t.Cleanup(e.Close)
	return e
}

func newTestScene(e *Engine, name string) *Scene {
	s := NewScene(e, name)
	s.Width(100).Height(100)
	return s
}

// runPass runs one update pass on the calling goroutine. Tests use it when
// nothing else is scheduled on the scene, to inspect items without racing
// the scheduler.
func runPass(t *testing.T, s *Scene, p *Parallel) {
	t.Helper()
	s.pass(p)
	require.NoError(t, s.Err())
}

// groupOf returns the group m produced under the scene's first panel item.
func groupOf(t *testing.T, s *Scene, m *Mark) *GroupItem {
	t.Helper()
	g := s.Group()
	require.NotNil(t, g)
	require.NotEmpty(t, g.Items)
	mg := g.Items[0].Layer(m)
	require.NotNil(t, mg)
	return mg
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}
