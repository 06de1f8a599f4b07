package render

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phanxgames/marks"
)

func newScene(t *testing.T) *marks.Scene {
	t.Helper()
	e := marks.NewEngine(marks.WithWorkers(1))
	t.Cleanup(e.Close)
	s := marks.NewScene(e, t.Name())
	s.Width(100).Height(100)
	return s
}

func commandsOf(cmds []Command, k Kind) []Command {
	var out []Command
	for _, c := range cmds {
		if c.Kind == k {
			out = append(out, c)
		}
	}
	return out
}

func TestCollectBars(t *testing.T) {
	s := newScene(t)
	s.Add(marks.MarkBar).
		Data([]float64{1, 2}).
		Left(func(it *marks.Item) float64 { return float64(it.Index) * 30 }).
		Width(20).
		Bottom(0).
		Height(func(it *marks.Item) float64 { return it.Data.(float64) * 10 }).
		Fill("#ff0000")
	require.NoError(t, s.UpdateAndWait())

	cmds := Collect(s.Root())
	fills := commandsOf(cmds, KindFill)
	require.Len(t, fills, 2)
	assert.Empty(t, commandsOf(cmds, KindStroke))

	second := fills[1]
	require.Len(t, second.Verts, 4)
	assert.Len(t, second.Inds, 6)
	assert.InDelta(t, 30, second.Verts[0].DstX, 1e-4)
	assert.InDelta(t, 80, second.Verts[0].DstY, 1e-4)
	assert.InDelta(t, 50, second.Verts[2].DstX, 1e-4)
	assert.InDelta(t, 100, second.Verts[2].DstY, 1e-4)
	assert.InDelta(t, 1, second.Verts[0].ColorR, 1e-6)
	assert.InDelta(t, 0, second.Verts[0].ColorG, 1e-6)
	assert.Equal(t, "bar", second.Source)
}

func TestCollectClearsDirty(t *testing.T) {
	s := newScene(t)
	bars := s.Add(marks.MarkBar).Data([]int{1, 2, 3}).Width(5).Height(5)
	require.NoError(t, s.UpdateAndWait())

	g := s.Root().Layers[0].Items[0].Layer(bars)
	require.NotNil(t, g)
	for _, it := range g.Items {
		assert.True(t, it.Dirty())
	}
	Collect(s.Root())
	for _, it := range g.Items {
		assert.False(t, it.Dirty())
	}
	assert.False(t, g.Dirty())
}

func TestCollectSkipsInvisible(t *testing.T) {
	s := newScene(t)
	s.Add(marks.MarkBar).
		Data([]int{0, 1, 2}).
		Visible(func(it *marks.Item) bool { return it.Index != 1 }).
		Width(5).Height(5)
	require.NoError(t, s.UpdateAndWait())

	fills := commandsOf(Collect(s.Root()), KindFill)
	require.Len(t, fills, 2)
	assert.Equal(t, 0, fills[0].Item.Index)
	assert.Equal(t, 2, fills[1].Item.Index)
}

func TestCollectNestedPanelOffset(t *testing.T) {
	s := newScene(t)
	p := s.Add(marks.MarkPanel).Left(10).Top(20).Width(50).Height(50)
	p.Add(marks.MarkBar).Left(5).Top(5).Width(10).Height(10).Fill("black")
	require.NoError(t, s.UpdateAndWait())

	fills := commandsOf(Collect(s.Root()), KindFill)
	require.Len(t, fills, 1)
	assert.InDelta(t, 15, fills[0].Verts[0].DstX, 1e-4)
	assert.InDelta(t, 25, fills[0].Verts[0].DstY, 1e-4)
}

func TestCollectLayerDepthOrder(t *testing.T) {
	s := newScene(t)
	s.Add(marks.MarkBar).Depth(2).Width(1).Height(1).Fill("red")
	s.Add(marks.MarkBar).Depth(1).Width(1).Height(1).Fill("blue")
	require.NoError(t, s.UpdateAndWait())

	fills := commandsOf(Collect(s.Root()), KindFill)
	require.Len(t, fills, 2)
	assert.Equal(t, 0.0, fills[0].Color.R)
	assert.Equal(t, 1.0, fills[1].Color.R)
}

func TestCollectLineAndLabel(t *testing.T) {
	s := newScene(t)
	s.Add(marks.MarkLine).
		Data([]float64{0, 10, 20}).
		Left(func(it *marks.Item) float64 { return it.Data.(float64) }).
		Top(50)
	s.Add(marks.MarkLabel).
		Data([]string{"hi"}).
		Left(50).Top(50).
		TextAlign(marks.AlignCenter).
		TextBaseline(marks.BaselineMiddle)
	require.NoError(t, s.UpdateAndWait())

	cmds := Collect(s.Root())
	strokes := commandsOf(cmds, KindStroke)
	require.Len(t, strokes, 1)
	assert.Len(t, strokes[0].Verts, 8)

	texts := commandsOf(cmds, KindText)
	require.Len(t, texts, 1)
	lbl := texts[0]
	assert.Equal(t, "hi", lbl.Text)
	assert.InDelta(t, 50-lbl.W/2, lbl.X, 1e-9)
	assert.InDelta(t, 50-lbl.H/2, lbl.Y, 1e-9)
}

func TestCollectEmptyRoot(t *testing.T) {
	assert.Empty(t, Collect(&marks.Item{}))
	assert.Empty(t, Collect(nil))
}

func TestStrokePolylineHorizontal(t *testing.T) {
	ms := strokePolyline([]point{{0, 10}, {20, 10}}, 4, false, rgba{1, 1, 1, 1})
	require.Len(t, ms, 1)
	v := ms[0].verts
	require.Len(t, v, 4)
	assert.InDelta(t, 0, v[0].DstX, 1e-6)
	assert.InDelta(t, 12, v[0].DstY, 1e-6)
	assert.InDelta(t, 20, v[2].DstX, 1e-6)
	assert.InDelta(t, 8, v[2].DstY, 1e-6)
}

func TestStrokePolylineSplitsLargeMeshes(t *testing.T) {
	pts := make([]point, 20001)
	for i := range pts {
		pts[i] = point{float64(i), 0}
	}
	ms := strokePolyline(pts, 1, false, rgba{})
	require.Len(t, ms, 2)
	total := 0
	for _, m := range ms {
		assert.LessOrEqual(t, len(m.verts), maxMeshVerts)
		total += len(m.verts)
	}
	assert.Equal(t, 4*20000, total)
}

func TestPolygonFan(t *testing.T) {
	ms := polygonFan(rectPoints(0, 0, 1, 1), rgba{})
	require.Len(t, ms, 1)
	assert.Equal(t, []uint16{0, 1, 2, 0, 2, 3}, ms[0].inds)
	assert.Nil(t, polygonFan([]point{{0, 0}, {1, 1}}, rgba{}))
}

func TestDotPoints(t *testing.T) {
	pts, closed := dotPoints(marks.ShapeSquare, 10, 10, 2)
	assert.True(t, closed)
	assert.Equal(t, []point{{8, 8}, {12, 8}, {12, 12}, {8, 12}}, pts)

	pts, closed = dotPoints(marks.ShapeCross, 0, 0, 1)
	assert.False(t, closed)
	assert.Len(t, pts, 4)

	pts, _ = dotPoints(marks.ShapeCircle, 0, 0, 3)
	for _, p := range pts {
		assert.InDelta(t, 3, math.Hypot(p.x, p.y), 1e-9)
	}
}

func TestWedgeArcs(t *testing.T) {
	out, in := wedgeArcs(0, 0, 5, 10, 0, math.Pi/2)
	require.Equal(t, len(out), len(in))
	assert.InDelta(t, 10, out[0].x, 1e-9)
	assert.InDelta(t, 10, out[len(out)-1].y, 1e-9)
	assert.InDelta(t, 5, in[len(in)-1].y, 1e-9)

	out, _ = wedgeArcs(0, 0, 0, 10, math.NaN(), 1)
	assert.Nil(t, out)
}

func TestInterpolateSteps(t *testing.T) {
	pts := []point{{0, 0}, {10, 5}}
	assert.Equal(t, []point{{0, 0}, {10, 0}, {10, 5}}, interpolate(marks.InterpolateStepAfter, pts))
	assert.Equal(t, []point{{0, 0}, {0, 5}, {10, 5}}, interpolate(marks.InterpolateStepBefore, pts))
	assert.Equal(t, pts, interpolate(marks.InterpolateLinear, pts))
}

func TestPremultiply(t *testing.T) {
	c := premultiply(marks.Color{R: 1, G: 0.5, B: 0, A: 0.5}, 0.5)
	assert.InDelta(t, 0.25, c[0], 1e-6)
	assert.InDelta(t, 0.125, c[1], 1e-6)
	assert.InDelta(t, 0.25, c[3], 1e-6)
}

func TestDisplayCollectsAfterUpdate(t *testing.T) {
	s := newScene(t)
	s.Add(marks.MarkBar).Width(10).Height(10).Fill("black")

	d, err := NewDisplay(s, 100, 100)
	require.NoError(t, err)
	defer d.Close()

	require.NoError(t, s.UpdateAndWait())
	require.Eventually(t, func() bool { return d.Frames() > 0 }, time.Second, time.Millisecond)
	assert.Len(t, commandsOf(d.Commands(), KindFill), 1)

	w, h := d.Layout(640, 480)
	assert.Equal(t, 100, w)
	assert.Equal(t, 100, h)
}
