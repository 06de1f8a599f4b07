package marks

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstKinds(t *testing.T) {
	tests := []struct {
		v    any
		kind Kind
	}{
		{true, KindBool},
		{3, KindNumber},
		{float32(1.5), KindNumber},
		{"x", KindString},
		{ShapeSquare, KindString},
		{RGB(0xff0000), KindFill},
		{SolidFill(ColorBlack), KindFill},
		{SolidStroke(2, ColorBlack), KindStroke},
		{DefaultFont, KindFont},
		{[]int{1}, KindObject},
	}
	for _, tt := range tests {
		p := Const(tt.v)
		assert.Equal(t, tt.kind, p.Kind(), "%T", tt.v)
		assert.True(t, p.IsConst())
	}
}

func TestPropertyConversions(t *testing.T) {
	it := &Item{Index: 2}
	assert.Equal(t, 3.0, Const(3).Number(it))
	assert.True(t, math.IsNaN(Const("abc").Number(it)))
	assert.Equal(t, "3", Const(3).Text(it))
	assert.True(t, Const(1).Bool(it))
	assert.False(t, Const(0).Bool(it))

	idx := Fn(func(it *Item) int { return it.Index * 2 })
	assert.Equal(t, KindNumber, idx.Kind())
	assert.Equal(t, 4.0, idx.Number(it))
	assert.Equal(t, 4.0, idx.Object(it))

	red := Fn(func(*Item) Color { return RGB(0xff0000) })
	assert.Equal(t, KindFill, red.Kind())
	assert.Equal(t, SolidFill(RGB(0xff0000)), red.Fill(it))
}

func TestVariableVersioning(t *testing.T) {
	v := NewVariable(1.0)
	p := Var(v)
	assert.False(t, p.Dirty())
	assert.Equal(t, uint64(0), v.Version())

	assert.False(t, v.Set(1.0))
	assert.False(t, p.Dirty())

	assert.True(t, v.Set(2.0))
	assert.True(t, p.Dirty())
	assert.Equal(t, 2.0, p.Number(nil))

	p.Observe()
	assert.False(t, p.Dirty())
	assert.False(t, Const(1).Dirty())
}

func TestSetRejectsUnregisteredValue(t *testing.T) {
	m := NewMark(MarkDot)
	defer func() {
		r := recover()
		require.NotNil(t, r)
		err, ok := r.(error)
		require.True(t, ok)
		var pe *PropertyError
		require.True(t, errors.As(err, &pe))
		assert.Equal(t, "shape", pe.Name)
		assert.ErrorIs(t, err, ErrInvalidValue)
	}()
	m.Shape("hexagon")
}

func TestSetNilRemoves(t *testing.T) {
	m := NewMark(MarkBar).Width(3)
	require.NotNil(t, m.Property("width"))
	m.Set("width", nil)
	assert.Nil(t, m.Property("width"))

	m.Width(4)
	p := m.Remove("width")
	require.NotNil(t, p)
	assert.Equal(t, 4.0, p.Number(nil))
}

func TestBindFlattensPrototypes(t *testing.T) {
	base := NewMark(MarkBar).Width(10).Fill("red")
	m := NewMark(MarkBar).Extend(base).Width(20)

	ps := m.bind()
	assert.Equal(t, 20.0, ps.Get("width").Number(nil))
	assert.Equal(t, SolidFill(RGB(0xff0000)), ps.Get("fill").Fill(nil))
	assert.Equal(t, StrokeNone, ps.Get("stroke").Stroke(nil), "type default")
	assert.NotNil(t, ps.Get("key"))
	assert.NotNil(t, ps.Data)
	assert.Contains(t, ps.Names("instance"), "width")
	assert.Contains(t, ps.Names("key"), "key")
	assert.Equal(t, []string{"alpha"}, ps.Names("enter"))
}

func TestBindDirtyTracksIdentity(t *testing.T) {
	m := NewMark(MarkBar).Width(10)
	assert.True(t, m.bind().Dirty, "first resolution")
	assert.False(t, m.bind().Dirty)

	w := m.Property("width")
	m.Set("width", w)
	assert.False(t, m.bind().Dirty, "same property rebound")

	m.Width(10)
	assert.True(t, m.bind().Dirty, "equal value, new property")
	assert.False(t, m.bind().Dirty)

	proto := NewMark(MarkBar)
	m.Extend(proto)
	assert.False(t, m.bind().Dirty, "empty prototype adds nothing")
	proto.Height(4)
	assert.True(t, m.bind().Dirty, "prototype change")
}

func TestBindHandlersAccumulate(t *testing.T) {
	var calls []string
	base := NewMark(MarkBar).On("ping", func(*Event, *Item) { calls = append(calls, "base") })
	m := NewMark(MarkBar).Extend(base).On("ping", func(*Event, *Item) { calls = append(calls, "own") })

	ps := m.bind()
	require.Len(t, ps.Handlers["ping"], 2)
	for _, h := range ps.Handlers["ping"] {
		h(nil, nil)
	}
	assert.ElementsMatch(t, []string{"base", "own"}, calls)
}

func TestEvaluatorRebuiltOnlyWhenDirty(t *testing.T) {
	forEachConfig(t, func(t *testing.T, e *Engine) {
		s := newTestScene(e, "gating")
		width := NewVariable(5.0)
		bars := s.Add(MarkBar).Data([]int{1, 2}).Width(width).Height(5)

		runPass(t, s, nil)
		assert.Equal(t, 2, s.LastStats().Rebuilt)
		ev := bars.Evaluator()

		runPass(t, s, nil)
		assert.Equal(t, 0, s.LastStats().Rebuilt)
		assert.Same(t, ev, bars.Evaluator())

		width.Set(8.0)
		runPass(t, s, nil)
		assert.Equal(t, 0, s.LastStats().Rebuilt, "variable change reuses evaluator")
		assert.Equal(t, 8.0, groupOf(t, s, bars).Items[0].Width)

		bars.Height(6)
		runPass(t, s, nil)
		assert.Equal(t, 1, s.LastStats().Rebuilt)
		assert.NotSame(t, ev, bars.Evaluator())
		assert.Equal(t, 6.0, groupOf(t, s, bars).Items[1].Height)
	})
}

func TestMarkDefVariable(t *testing.T) {
	e := newTestEngine(t)
	s := newTestScene(e, "def")
	v := s.Def("scale", 2.0)
	assert.Same(t, v, s.Var("scale"))
	assert.Nil(t, s.Var("missing"))

	bars := s.Add(MarkBar).
		Data([]float64{1, 3}).
		Width(func(it *Item) float64 { return it.Data.(float64) * v.Get().(float64) })
	runPass(t, s, nil)
	assert.Equal(t, 6.0, groupOf(t, s, bars).Items[1].Width)

	v.Set(10.0)
	runPass(t, s, nil)
	assert.Equal(t, 30.0, groupOf(t, s, bars).Items[1].Width)
}

func TestBindSkipsHandlersOfAddParent(t *testing.T) {
	bars := NewMark(MarkBar).On("ping", func(*Event, *Item) {})
	labels := bars.Add(MarkLabel)
	assert.Empty(t, labels.bind().Handlers["ping"])

	labels.On("ping", func(*Event, *Item) {})
	assert.Len(t, labels.bind().Handlers["ping"], 1)
}
