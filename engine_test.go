package marks

import (
	"bytes"
	"log/slog"
	"runtime"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngineAutoUpdater(t *testing.T) {
	one := newTestEngine(t, WithWorkers(1))
	assert.Equal(t, UpdaterSerial, one.Updater())
	assert.Equal(t, 1, one.Workers())

	three := newTestEngine(t, WithWorkers(3))
	assert.Equal(t, UpdaterParallel, three.Updater())
	assert.Equal(t, 3, three.Workers())

	forced := newTestEngine(t, WithWorkers(3), WithUpdater(UpdaterSerial))
	assert.Equal(t, UpdaterSerial, forced.Updater())

	def := newTestEngine(t, WithWorkers(0))
	assert.Equal(t, runtime.GOMAXPROCS(0), def.Workers())
}

func TestEngineDefaults(t *testing.T) {
	e := newTestEngine(t)
	assert.Equal(t, EvaluatorCompiled, e.EvaluatorStrategy())
	assert.NotNil(t, e.Logger())
	assert.NotNil(t, e.Scheduler())

	g := newTestEngine(t, WithEvaluator(EvaluatorGeneric))
	assert.Equal(t, EvaluatorGeneric, g.EvaluatorStrategy())
}

func TestKindStrings(t *testing.T) {
	assert.Equal(t, "auto", UpdaterAuto.String())
	assert.Equal(t, "serial", UpdaterSerial.String())
	assert.Equal(t, "parallel", UpdaterParallel.String())
	assert.Equal(t, "compiled", EvaluatorCompiled.String())
	assert.Equal(t, "generic", EvaluatorGeneric.String())
}

func TestEnginesAreIndependent(t *testing.T) {
	a := NewEngine(WithWorkers(2))
	b := newTestEngine(t, WithWorkers(2))
	sa := newTestScene(a, "same")
	sb := newTestScene(b, "same")
	sa.Add(MarkBar).Data([]int{1})
	sb.Add(MarkBar).Data([]int{1})

	require.NoError(t, sa.UpdateAndWait())
	a.Close()
	assert.ErrorIs(t, sa.Update(), ErrClosed)
	require.NoError(t, sb.UpdateAndWait())
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestEngineLogsFailedUpdates(t *testing.T) {
	var out syncBuffer
	logger := slog.New(slog.NewTextHandler(&out, &slog.HandlerOptions{Level: slog.LevelDebug}))
	e := newTestEngine(t, WithLogger(logger), WithWorkers(1))
	s := newTestScene(e, "logged")
	s.Add(MarkBar).Data([]int{1}).Width(func(*Item) float64 { panic("no width") })

	require.Error(t, s.UpdateAndWait())
	assert.Contains(t, out.String(), "update failed")
	assert.Contains(t, out.String(), "scene=logged")
}

func TestSceneDebugMode(t *testing.T) {
	var out syncBuffer
	logger := slog.New(slog.NewTextHandler(&out, &slog.HandlerOptions{Level: slog.LevelDebug}))
	e := newTestEngine(t, WithLogger(logger), WithWorkers(1))
	s := newTestScene(e, "debugged")
	s.Add(MarkDot).Data([]int{1, 2, 3})

	require.NoError(t, s.UpdateAndWait())
	assert.NotContains(t, out.String(), "update pass")

	s.SetDebugMode(true)
	require.NoError(t, s.UpdateAndWait())
	logs := out.String()
	assert.Contains(t, logs, "update pass")
	assert.Contains(t, logs, "evaluator=compiled")
	assert.Contains(t, logs, "update size")
	assert.Contains(t, logs, "items=4")

	st := s.LastStats()
	assert.Equal(t, 2, st.Groups)
	assert.Equal(t, 4, st.Items)
	assert.Equal(t, 0, st.Transitions)

	dbg := newTestEngine(t, WithLogger(logger), WithDebug(true))
	assert.True(t, NewScene(dbg, "on").debug.Load())
}
