package marks

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinearScaleMap(t *testing.T) {
	s := NewLinearScale(0, 10, 0, 100)
	assert.Equal(t, 50.0, s.Map(5))
	assert.Equal(t, 0.0, s.Map(0))
	assert.Equal(t, 100.0, s.Map(10))
	assert.Equal(t, 200.0, s.Map(20), "unclamped scales extrapolate")
	assert.Equal(t, 100.0, s.Clamp(true).Map(20))
	assert.Equal(t, 200.0, s.Map(20), "Clamp returns a copy")

	inv := NewLinearScale(0, 10, 300, 0)
	assert.Equal(t, 300.0, inv.Map(0))
	assert.Equal(t, 150.0, inv.Map(5))

	d0, d1 := s.Domain()
	r0, r1 := s.Range()
	assert.Equal(t, [4]float64{0, 10, 0, 100}, [4]float64{d0, d1, r0, r1})
}

func TestLinearScaleInvert(t *testing.T) {
	s := NewLinearScale(0, 10, 0, 100)
	assert.Equal(t, 5.0, s.Invert(50))
	assert.Equal(t, 0.0, NewLinearScale(2, 4, 7, 7).Invert(7), "flat range inverts to the domain start")
}

func TestLinearScaleDegenerateDomain(t *testing.T) {
	s := NewLinearScale(3, 3, 0, 100)
	assert.Equal(t, 50.0, s.Map(3))
	assert.Equal(t, 50.0, s.Map(-10))
	assert.Nil(t, s.Ticks(5))
}

func TestLinearScaleTicks(t *testing.T) {
	s := NewLinearScale(0, 10, 0, 100)
	ticks := s.Ticks(5)
	require.NotEmpty(t, ticks)
	assert.LessOrEqual(t, len(ticks), 5)
	assert.InDeltaSlice(t, []float64{0, 5, 10}, ticks, 1e-9)

	rev := NewLinearScale(100, 0, 0, 1).Ticks(10)
	require.NotEmpty(t, rev)
	assert.LessOrEqual(t, len(rev), 10)
	for i, v := range rev {
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 100.0)
		if i > 0 {
			assert.Greater(t, v, rev[i-1])
		}
	}

	assert.Nil(t, s.Ticks(0))
}

func TestLinearScaleBy(t *testing.T) {
	e := newTestEngine(t)
	sc := newTestScene(e, "scaled")
	y := NewLinearScale(0, 4, 0, 100)
	bars := sc.Add(MarkBar).
		Data([]float64{1, 2, 4}).
		Bottom(0).
		Height(y.By(func(it *Item) float64 { return it.Data.(float64) }))

	runPass(t, sc, nil)
	g := groupOf(t, sc, bars)
	require.Len(t, g.Items, 3)
	assert.Equal(t, 25.0, g.Items[0].Height)
	assert.Equal(t, 50.0, g.Items[1].Height)
	assert.Equal(t, 100.0, g.Items[2].Height)
	assert.Equal(t, 0.0, g.Items[2].Top)
}
