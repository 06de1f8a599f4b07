package marks

import (
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
)

// labelFace provides approximate text metrics for bounds and hit testing.
// Widths are scaled from its 13px cell to the label's font size.
var labelFace = basicfont.Face7x13

const labelFaceSize = 13

// strokePad returns the distance an item's outline extends past its geometry.
func (it *Item) strokePad() float64 {
	s := it.Stroke.Width
	if it.Stroke.IsNone() {
		s = 0
	}
	if s > 1 {
		s /= 2
	}
	if s < 1 {
		s = 1
	}
	return s
}

// Bounds returns the item's extent in its group's coordinate space,
// including its stroke.
func (it *Item) Bounds() Rect {
	s := it.strokePad()
	switch it.markType() {
	case MarkDot:
		s += it.Radius
		return Rect{X: it.Left - s, Y: it.Top - s, Width: 2 * s, Height: 2 * s}
	case MarkLink:
		if it.Source == nil || it.Target == nil {
			return Rect{}
		}
		x0, x1 := math.Min(it.Source.Left, it.Target.Left), math.Max(it.Source.Left, it.Target.Left)
		y0, y1 := math.Min(it.Source.Top, it.Target.Top), math.Max(it.Source.Top, it.Target.Top)
		return Rect{X: x0 - s, Y: y0 - s, Width: x1 - x0 + 2*s, Height: y1 - y0 + 2*s}
	case MarkLabel:
		return it.textBounds()
	}
	return Rect{X: it.Left - s, Y: it.Top - s, Width: it.Width + 2*s, Height: it.Height + 2*s}
}

// TextSize measures the label text at the item's font size.
func (it *Item) TextSize() (w, h float64) {
	size := it.Font.Size
	if size <= 0 {
		size = DefaultFont.Size
	}
	adv := font.MeasureString(labelFace, it.Text)
	scale := size / labelFaceSize
	return float64(adv) / 64 * scale, size
}

func (it *Item) textBounds() Rect {
	w, h := it.TextSize()
	x, y := it.Left, it.Top
	switch it.TextAlign {
	case AlignCenter:
		x -= w / 2
	case AlignRight:
		x -= w + it.TextMargin
	default:
		x += it.TextMargin
	}
	switch it.TextBaseline {
	case BaselineMiddle:
		y -= h / 2
	case BaselineBottom:
		y -= h + it.TextMargin
	default:
		y += it.TextMargin
	}
	return Rect{X: x, Y: y, Width: w, Height: h}
}

// Hit reports whether the point (x, y), in the group's coordinate space,
// falls on the item.
func (it *Item) Hit(x, y float64) bool {
	switch it.markType() {
	case MarkLink:
		return false
	case MarkDot:
		r := it.Radius + it.strokePad()
		dx, dy := x-it.Left, y-it.Top
		return dx*dx+dy*dy <= r*r
	}
	return it.Bounds().Contains(x, y)
}

func (it *Item) markType() MarkType {
	if it.Group == nil {
		return MarkItem
	}
	return it.Group.typ
}

// ComputeBounds recomputes the union of the group's item bounds, offset by
// the group's own position.
func (g *GroupItem) ComputeBounds() Rect {
	var b Rect
	first := true
	for _, it := range g.Items {
		if it == nil || !it.Visible {
			continue
		}
		r := it.Bounds().Offset(g.Left, g.Top)
		if first {
			b, first = r, false
			continue
		}
		b = b.Union(r)
	}
	if first {
		b = Rect{X: g.Left, Y: g.Top}
	}
	g.Bounds = b
	return b
}
