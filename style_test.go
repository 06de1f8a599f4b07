package marks

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFill(t *testing.T) {
	tests := []struct {
		in   string
		want Fill
	}{
		{"none", FillNone},
		{"", FillNone},
		{"#f00", SolidFill(RGB(0xff0000))},
		{"#00ff00", SolidFill(RGB(0x00ff00))},
		{"#800000ff", SolidFill(Color{R: 0, G: 0, B: 1, A: 128.0 / 255})},
		{"Black", SolidFill(ColorBlack)},
		{" white ", SolidFill(ColorWhite)},
	}
	for _, tt := range tests {
		got, err := ParseFill(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	for _, bad := range []string{"#12", "notacolor"} {
		_, err := ParseFill(bad)
		assert.ErrorIs(t, err, ErrInvalidValue, bad)
	}
	_, err := ParseFill("#xyzxyz")
	var pe *PropertyError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "fill", pe.Name)
}

func TestParseStroke(t *testing.T) {
	s, err := ParseStroke("2px red")
	require.NoError(t, err)
	assert.Equal(t, SolidStroke(2, RGB(0xff0000)), s)

	s, err = ParseStroke("black")
	require.NoError(t, err)
	assert.Equal(t, 1.0, s.Width)

	s, err = ParseStroke("none")
	require.NoError(t, err)
	assert.True(t, s.IsNone())

	_, err = ParseStroke("wide red")
	assert.Error(t, err)
	_, err = ParseStroke("1 2 3")
	assert.Error(t, err)
}

func TestParseFont(t *testing.T) {
	f, err := ParseFont("italic bold 14px Arial")
	require.NoError(t, err)
	assert.Equal(t, Font{Name: "Arial", Size: 14, Bold: true, Italic: true}, f)
	assert.Equal(t, "italic bold 14 Arial", f.String())

	f, err = ParseFont("Courier")
	require.NoError(t, err)
	assert.Equal(t, 10.0, f.Size)

	_, err = ParseFont("")
	assert.Error(t, err)
	_, err = ParseFont("heavy 12 Arial")
	assert.Error(t, err)
}

func TestInterpolateFillFadesMissingSide(t *testing.T) {
	red := SolidFill(RGB(0xff0000))
	mid := interpolateFill(0.5, FillNone, red)
	assert.True(t, mid.Solid)
	assert.Equal(t, 1.0, mid.Color.R)
	assert.True(t, approx(mid.Color.A, 0.5))

	assert.Equal(t, FillNone, interpolateFill(0.5, FillNone, FillNone))
	assert.Equal(t, red, interpolateFill(0.3, red, red))
}

func TestInterpolateFontSwitchesHalfway(t *testing.T) {
	a := Font{Name: "A", Size: 10}
	b := Font{Name: "B", Size: 20, Bold: true}
	early := interpolateFont(0.2, a, b)
	assert.Equal(t, "A", early.Name)
	assert.False(t, early.Bold)
	assert.True(t, approx(early.Size, 12))

	late := interpolateFont(0.8, a, b)
	assert.Equal(t, "B", late.Name)
	assert.True(t, late.Bold)
	assert.True(t, approx(late.Size, 18))
}

func TestColorRGBA(t *testing.T) {
	r, g, b, a := Color{R: 1, G: 0.5, B: 0, A: 0.5}.RGBA()
	assert.Equal(t, uint32(0x7fff), a)
	assert.Equal(t, uint32(0x7fff), r)
	assert.Equal(t, uint32(0x3fff), g)
	assert.Equal(t, uint32(0), b)
}
