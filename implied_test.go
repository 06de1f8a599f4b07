package marks

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImpliedGeometry(t *testing.T) {
	tests := []struct {
		name  string
		setup func(m *Mark)
		check func(t *testing.T, it *Item)
	}{
		{
			name:  "left and width imply right",
			setup: func(m *Mark) { m.Left(10).Width(20) },
			check: func(t *testing.T, it *Item) {
				assert.Equal(t, 70.0, it.Right)
				assert.Equal(t, 100.0, it.Height)
			},
		},
		{
			name:  "left and right imply width",
			setup: func(m *Mark) { m.Left(10).Right(30) },
			check: func(t *testing.T, it *Item) {
				assert.Equal(t, 60.0, it.Width)
			},
		},
		{
			name:  "right and width imply left",
			setup: func(m *Mark) { m.Right(10).Width(20) },
			check: func(t *testing.T, it *Item) {
				assert.Equal(t, 70.0, it.Left)
			},
		},
		{
			name:  "bottom and height imply top",
			setup: func(m *Mark) { m.Bottom(0).Height(25) },
			check: func(t *testing.T, it *Item) {
				assert.Equal(t, 75.0, it.Top)
			},
		},
		{
			name:  "defined values are kept",
			setup: func(m *Mark) { m.Left(1).Right(2).Width(3) },
			check: func(t *testing.T, it *Item) {
				assert.Equal(t, 1.0, it.Left)
				assert.Equal(t, 2.0, it.Right)
				assert.Equal(t, 3.0, it.Width)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEngine(t, WithUpdater(UpdaterSerial))
			s := newTestScene(e, "implied")
			bar := s.Add(MarkBar)
			tt.setup(bar)
			runPass(t, s, nil)
			g := groupOf(t, s, bar)
			require.Len(t, g.Items, 1)
			tt.check(t, g.Items[0])
		})
	}
}

func TestImpliedRuleOrientation(t *testing.T) {
	e := newTestEngine(t)
	s := newTestScene(e, "rules")
	horizontal := s.Add(MarkRule).Bottom(20)
	vertical := s.Add(MarkRule).Left(30)

	runPass(t, s, nil)
	h := groupOf(t, s, horizontal).Items[0]
	assert.Equal(t, 0.0, h.Height)
	assert.Equal(t, 100.0, h.Width)
	assert.Equal(t, 80.0, h.Top)

	v := groupOf(t, s, vertical).Items[0]
	assert.Equal(t, 0.0, v.Width)
	assert.Equal(t, 100.0, v.Height)
	assert.Equal(t, 30.0, v.Left)
}

func TestImpliedAnchor(t *testing.T) {
	e := newTestEngine(t)
	s := newTestScene(e, "anchor")
	dot := s.Add(MarkDot).Right(10).Bottom(20)

	runPass(t, s, nil)
	it := groupOf(t, s, dot).Items[0]
	assert.Equal(t, 90.0, it.Left)
	assert.Equal(t, 80.0, it.Top)
	assert.Equal(t, 4.0, it.Radius, "radius follows size 16")
}

func TestImpliedWedgeAngles(t *testing.T) {
	e := newTestEngine(t)
	s := newTestScene(e, "wedge")
	byAngle := s.Add(MarkWedge).StartAngle(0.5).Angle(math.Pi)
	byEnd := s.Add(MarkWedge).StartAngle(1).EndAngle(3)

	runPass(t, s, nil)
	a := groupOf(t, s, byAngle).Items[0]
	assert.True(t, approx(a.EndAngle, 0.5+math.Pi))
	b := groupOf(t, s, byEnd).Items[0]
	assert.True(t, approx(b.Angle, 2))
}
