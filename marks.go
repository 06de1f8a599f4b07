package marks

import "math"

// Color represents an RGBA color with components in [0, 1]. Not premultiplied.
// Premultiplication occurs when the color is handed to image/color consumers.
type Color struct {
	R, G, B, A float64
}

var (
	ColorBlack       = Color{0, 0, 0, 1}
	ColorWhite       = Color{1, 1, 1, 1}
	ColorTransparent = Color{}
)

// RGB returns an opaque color from a 0xRRGGBB value.
func RGB(hex uint32) Color {
	return Color{
		R: float64(hex>>16&0xff) / 255,
		G: float64(hex>>8&0xff) / 255,
		B: float64(hex&0xff) / 255,
		A: 1,
	}
}

// ARGB returns a color from a 0xAARRGGBB value.
func ARGB(hex uint32) Color {
	c := RGB(hex)
	c.A = float64(hex>>24&0xff) / 255
	return c
}

// RGBA implements image/color.Color with premultiplied 16-bit components.
func (c Color) RGBA() (r, g, b, a uint32) {
	a16 := clamp01(c.A) * 0xffff
	r = uint32(clamp01(c.R) * a16)
	g = uint32(clamp01(c.G) * a16)
	b = uint32(clamp01(c.B) * a16)
	return r, g, b, uint32(a16)
}

// WithAlpha returns c with its alpha replaced.
func (c Color) WithAlpha(a float64) Color {
	c.A = a
	return c
}

func (c Color) lerp(d Color, f float64) Color {
	return Color{
		R: lerp(c.R, d.R, f),
		G: lerp(c.G, d.G, f),
		B: lerp(c.B, d.B, f),
		A: lerp(c.A, d.A, f),
	}
}

// Rect is an axis-aligned rectangle. The coordinate system has its origin at
// the top-left, with Y increasing downward.
type Rect struct {
	X, Y, Width, Height float64
}

// Contains reports whether the point (x, y) lies inside the rectangle.
// Points on the edge are considered inside.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width &&
		y >= r.Y && y <= r.Y+r.Height
}

// Intersects reports whether r and other overlap.
// Adjacent rectangles (sharing only an edge) are considered intersecting.
func (r Rect) Intersects(other Rect) bool {
	return r.X <= other.X+other.Width &&
		r.X+r.Width >= other.X &&
		r.Y <= other.Y+other.Height &&
		r.Y+r.Height >= other.Y
}

// Empty reports whether r covers no area.
func (r Rect) Empty() bool {
	return r.Width <= 0 && r.Height <= 0
}

// Union returns the smallest rectangle containing r and other. An empty
// rectangle is ignored.
func (r Rect) Union(other Rect) Rect {
	if r.Empty() {
		return other
	}
	if other.Empty() {
		return r
	}
	x0 := math.Min(r.X, other.X)
	y0 := math.Min(r.Y, other.Y)
	x1 := math.Max(r.X+r.Width, other.X+other.Width)
	y1 := math.Max(r.Y+r.Height, other.Y+other.Height)
	return Rect{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
}

// Offset returns r translated by (dx, dy).
func (r Rect) Offset(dx, dy float64) Rect {
	r.X += dx
	r.Y += dy
	return r
}

// Expand grows r by d on every side.
func (r Rect) Expand(d float64) Rect {
	return Rect{X: r.X - d, Y: r.Y - d, Width: r.Width + 2*d, Height: r.Height + 2*d}
}

// MarkType selects the item layout, defaults and implied geometry of a Mark.
type MarkType uint8

const (
	MarkItem  MarkType = iota // untyped mark, no defaults
	MarkArea                  // filled area under a line
	MarkBar                   // axis-aligned rectangle
	MarkDot                   // shaped point
	MarkImage                 // image drawn into a rectangle
	MarkLabel                 // text
	MarkLine                  // connected line segments
	MarkLink                  // edge between two node items
	MarkPanel                 // container owning nested marks
	MarkRule                  // horizontal or vertical line
	MarkWedge                 // pie slice or annulus sector
)

var markTypeNames = [...]string{
	MarkItem:  "item",
	MarkArea:  "area",
	MarkBar:   "bar",
	MarkDot:   "dot",
	MarkImage: "image",
	MarkLabel: "label",
	MarkLine:  "line",
	MarkLink:  "link",
	MarkPanel: "panel",
	MarkRule:  "rule",
	MarkWedge: "wedge",
}

func (t MarkType) String() string {
	if int(t) < len(markTypeNames) {
		return markTypeNames[t]
	}
	return "unknown"
}

// Shape names the glyph a dot is drawn with.
type Shape string

const (
	ShapeCircle   Shape = "circle"
	ShapeSquare   Shape = "square"
	ShapeTriangle Shape = "triangle"
	ShapeCross    Shape = "cross"
	ShapeX        Shape = "x"
	ShapeDiamond  Shape = "diamond"
	ShapePoint    Shape = "point"
)

// TextAlign controls horizontal label alignment relative to the anchor.
type TextAlign string

const (
	AlignLeft   TextAlign = "left"   // anchor at the left edge of the text (default)
	AlignCenter TextAlign = "center" // anchor at the horizontal center
	AlignRight  TextAlign = "right"  // anchor at the right edge
)

// TextBaseline controls vertical label alignment relative to the anchor.
type TextBaseline string

const (
	BaselineTop    TextBaseline = "top"    // anchor at the top of the text (default)
	BaselineMiddle TextBaseline = "middle" // anchor at the vertical center
	BaselineBottom TextBaseline = "bottom" // anchor at the bottom of the text
)

// Interpolation controls how line and area vertices are connected.
type Interpolation string

const (
	InterpolateLinear     Interpolation = "linear"
	InterpolateStepAfter  Interpolation = "step-after"
	InterpolateStepBefore Interpolation = "step-before"
)

// registered holds the accepted values of enumerated string properties.
// Values outside these sets are rejected when the property is defined.
var registered = map[string]map[string]bool{
	"shape": {
		string(ShapeCircle): true, string(ShapeSquare): true, string(ShapeTriangle): true,
		string(ShapeCross): true, string(ShapeX): true, string(ShapeDiamond): true,
		string(ShapePoint): true,
	},
	"textAlign": {
		string(AlignLeft): true, string(AlignCenter): true, string(AlignRight): true,
	},
	"textBaseline": {
		string(BaselineTop): true, string(BaselineMiddle): true, string(BaselineBottom): true,
	},
	"interpolate": {
		string(InterpolateLinear): true, string(InterpolateStepAfter): true,
		string(InterpolateStepBefore): true,
	},
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// lerp returns a at f = 0 and b at f = 1 exactly.
func lerp(a, b, f float64) float64 {
	return a*(1-f) + b*f
}
