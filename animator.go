package marks

import "math"

// PropBits is a set of animatable property categories. An evaluation pass
// records which categories differ between each item's from and to states so
// that transitions only run the animators they need.
type PropBits uint32

const (
	PropAlpha PropBits = 1 << iota
	PropPosition
	PropWidth
	PropHeight
	PropFill
	PropStroke
	PropShape
	PropSize
	PropURL
	PropInner
	PropOuter
	PropAngle
	PropFont
	PropText
	PropBaseline
	PropAlign
	PropMargin
	PropTextAngle
	PropEndpoints
)

var propBitNames = [...]string{
	"alpha", "position", "width", "height", "fill", "stroke", "shape", "size", "url",
	"inner", "outer", "angle", "font", "text", "baseline", "align", "margin", "textAngle",
	"endpoints",
}

func (b PropBits) String() string {
	if b == 0 {
		return "none"
	}
	s := ""
	for i, name := range propBitNames {
		if b&(1<<i) != 0 {
			if s != "" {
				s += "|"
			}
			s += name
		}
	}
	return s
}

// differs compares floats treating two NaNs as equal.
func differs(a, b float64) bool {
	if a == b {
		return false
	}
	return !(math.IsNaN(a) && math.IsNaN(b))
}

// changedProps returns the categories that differ between a and b.
func changedProps(a, b *State) PropBits {
	var p PropBits
	if differs(a.Alpha, b.Alpha) {
		p |= PropAlpha
	}
	if differs(a.Left, b.Left) || differs(a.Right, b.Right) ||
		differs(a.Top, b.Top) || differs(a.Bottom, b.Bottom) {
		p |= PropPosition
	}
	if differs(a.Width, b.Width) {
		p |= PropWidth
	}
	if differs(a.Height, b.Height) {
		p |= PropHeight
	}
	if a.Fill != b.Fill {
		p |= PropFill
	}
	if a.Stroke != b.Stroke {
		p |= PropStroke
	}
	if a.Shape != b.Shape {
		p |= PropShape
	}
	if differs(a.Size, b.Size) || differs(a.Radius, b.Radius) {
		p |= PropSize
	}
	if a.URL != b.URL {
		p |= PropURL
	}
	if differs(a.InnerRadius, b.InnerRadius) {
		p |= PropInner
	}
	if differs(a.OuterRadius, b.OuterRadius) {
		p |= PropOuter
	}
	if differs(a.StartAngle, b.StartAngle) || differs(a.EndAngle, b.EndAngle) ||
		differs(a.Angle, b.Angle) {
		p |= PropAngle
	}
	if a.Font != b.Font {
		p |= PropFont
	}
	if a.Text != b.Text {
		p |= PropText
	}
	if a.TextBaseline != b.TextBaseline {
		p |= PropBaseline
	}
	if a.TextAlign != b.TextAlign {
		p |= PropAlign
	}
	if differs(a.TextMargin, b.TextMargin) {
		p |= PropMargin
	}
	if differs(a.TextAngle, b.TextAngle) {
		p |= PropTextAngle
	}
	if differs(a.SourceX, b.SourceX) || differs(a.SourceY, b.SourceY) ||
		differs(a.TargetX, b.TargetX) || differs(a.TargetY, b.TargetY) {
		p |= PropEndpoints
	}
	return p
}

// Animator interpolates one property category of x between a and b.
type Animator func(f float64, x *Item, a, b *State)

var (
	animateAlpha Animator = func(f float64, x *Item, a, b *State) {
		x.Alpha = lerp(a.Alpha, b.Alpha, f)
	}
	animateWidth Animator = func(f float64, x *Item, a, b *State) {
		x.Width = lerp(a.Width, b.Width, f)
	}
	animateHeight Animator = func(f float64, x *Item, a, b *State) {
		x.Height = lerp(a.Height, b.Height, f)
	}
	// animatePosition moves the anchor and rederives right and bottom from
	// the enclosing panel, so it runs after the size animators.
	animatePosition Animator = func(f float64, x *Item, a, b *State) {
		x.Left = lerp(a.Left, b.Left, f)
		x.Top = lerp(a.Top, b.Top, f)
		pw, ph := x.panelSize()
		x.Right = pw - x.Left - x.Width
		x.Bottom = ph - x.Top - x.Height
	}
	animateFill Animator = func(f float64, x *Item, a, b *State) {
		x.Fill = interpolateFill(f, a.Fill, b.Fill)
	}
	animateStroke Animator = func(f float64, x *Item, a, b *State) {
		x.Stroke = interpolateStroke(f, a.Stroke, b.Stroke)
	}
	animateSize Animator = func(f float64, x *Item, a, b *State) {
		x.Size = lerp(a.Size, b.Size, f)
		x.Radius = lerp(a.Radius, b.Radius, f)
	}
	animateShape Animator = func(f float64, x *Item, a, b *State) {
		x.Shape = half(f, a.Shape, b.Shape)
	}
	animateURL Animator = func(f float64, x *Item, a, b *State) {
		x.URL = half(f, a.URL, b.URL)
	}
	animateInner Animator = func(f float64, x *Item, a, b *State) {
		x.InnerRadius = lerp(a.InnerRadius, b.InnerRadius, f)
	}
	animateOuter Animator = func(f float64, x *Item, a, b *State) {
		x.OuterRadius = lerp(a.OuterRadius, b.OuterRadius, f)
	}
	animateAngle Animator = func(f float64, x *Item, a, b *State) {
		x.StartAngle = lerp(a.StartAngle, b.StartAngle, f)
		x.EndAngle = lerp(a.EndAngle, b.EndAngle, f)
		x.Angle = x.EndAngle - x.StartAngle
	}
	animateFont Animator = func(f float64, x *Item, a, b *State) {
		x.Font = interpolateFont(f, a.Font, b.Font)
	}
	animateText Animator = func(f float64, x *Item, a, b *State) {
		x.Text = half(f, a.Text, b.Text)
	}
	animateBaseline Animator = func(f float64, x *Item, a, b *State) {
		x.TextBaseline = half(f, a.TextBaseline, b.TextBaseline)
	}
	animateAlign Animator = func(f float64, x *Item, a, b *State) {
		x.TextAlign = half(f, a.TextAlign, b.TextAlign)
	}
	animateMargin Animator = func(f float64, x *Item, a, b *State) {
		x.TextMargin = lerp(a.TextMargin, b.TextMargin, f)
	}
	animateTextAngle Animator = func(f float64, x *Item, a, b *State) {
		x.TextAngle = lerp(a.TextAngle, b.TextAngle, f)
	}
	animateEndpoints Animator = func(f float64, x *Item, a, b *State) {
		x.SourceX = lerp(a.SourceX, b.SourceX, f)
		x.SourceY = lerp(a.SourceY, b.SourceY, f)
		x.TargetX = lerp(a.TargetX, b.TargetX, f)
		x.TargetY = lerp(a.TargetY, b.TargetY, f)
	}
)

// half switches from a to b at the midpoint.
func half[T any](f float64, a, b T) T {
	if f < 0.5 {
		return a
	}
	return b
}

// animatorOrder lists categories in application order. Size animators come
// before position so rederived right and bottom use the current extent.
var animatorOrder = []struct {
	bit PropBits
	fn  Animator
}{
	{PropAlpha, animateAlpha},
	{PropWidth, animateWidth},
	{PropHeight, animateHeight},
	{PropPosition, animatePosition},
	{PropFill, animateFill},
	{PropStroke, animateStroke},
	{PropShape, animateShape},
	{PropSize, animateSize},
	{PropURL, animateURL},
	{PropInner, animateInner},
	{PropOuter, animateOuter},
	{PropAngle, animateAngle},
	{PropFont, animateFont},
	{PropText, animateText},
	{PropBaseline, animateBaseline},
	{PropAlign, animateAlign},
	{PropMargin, animateMargin},
	{PropTextAngle, animateTextAngle},
	{PropEndpoints, animateEndpoints},
}

// animatorsFor returns the animators for the categories in bits, restricted
// to those meaningful for mark type t.
func animatorsFor(t MarkType, bits PropBits) []Animator {
	bits &= supportedProps(t)
	var out []Animator
	for _, a := range animatorOrder {
		if bits&a.bit != 0 {
			out = append(out, a.fn)
		}
	}
	return out
}

const baseProps = PropAlpha | PropPosition | PropWidth | PropHeight | PropFill | PropStroke

func supportedProps(t MarkType) PropBits {
	switch t {
	case MarkDot:
		return baseProps | PropShape | PropSize
	case MarkImage:
		return baseProps | PropURL
	case MarkLabel:
		return baseProps | PropFont | PropText | PropBaseline | PropAlign | PropMargin | PropTextAngle
	case MarkWedge:
		return baseProps | PropInner | PropOuter | PropAngle
	case MarkLink:
		return baseProps | PropEndpoints
	}
	return baseProps
}
