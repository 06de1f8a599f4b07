package marks

import "math"

// impliedMask records which geometry properties a mark leaves undefined.
// It is computed once per resolved property set.
type impliedMask uint8

const (
	missLeft impliedMask = 1 << iota
	missRight
	missTop
	missBottom
	missWidth
	missHeight
	missAngle
	missEndAngle
)

func impliedMaskOf(inst propertyList) impliedMask {
	var m impliedMask
	for name, bit := range map[string]impliedMask{
		"left": missLeft, "right": missRight, "top": missTop, "bottom": missBottom,
		"width": missWidth, "height": missHeight, "angle": missAngle, "endAngle": missEndAngle,
	} {
		if !inst.has(name) {
			m |= bit
		}
	}
	return m
}

// panelSize returns the width and height of the panel instance holding it.
func (it *Item) panelSize() (float64, float64) {
	if it.Group == nil || it.Group.panel == nil {
		return 0, 0
	}
	p := it.Group.panel
	return p.Width, p.Height
}

// buildImplied derives undefined geometry from the defined properties and
// the enclosing panel's size.
func (it *Item) buildImplied(t MarkType, miss impliedMask) {
	switch t {
	case MarkDot, MarkLabel, MarkImage:
		it.impliedAnchor(miss)
	case MarkRule:
		it.impliedRule(miss)
	case MarkWedge:
		it.impliedBox(miss)
		it.impliedWedge(miss)
	case MarkLink, MarkItem:
	default:
		it.impliedBox(miss)
	}
}

// impliedBox solves left + width + right = panel width for whichever term
// is missing, width first, and likewise vertically.
func (it *Item) impliedBox(miss impliedMask) {
	pw, ph := it.panelSize()
	l, r, w := it.Left, it.Right, it.Width
	t, b, h := it.Top, it.Bottom, it.Height
	if miss&missLeft != 0 {
		l = 0
	}
	if miss&missRight != 0 {
		r = 0
	}
	if miss&missTop != 0 {
		t = 0
	}
	if miss&missBottom != 0 {
		b = 0
	}

	switch {
	case miss&missWidth != 0:
		w = pw - r - l
	case miss&missRight != 0:
		r = pw - w - l
	case miss&missLeft != 0:
		l = pw - w - r
	}
	switch {
	case miss&missHeight != 0:
		h = ph - t - b
	case miss&missBottom != 0:
		b = ph - h - t
	case miss&missTop != 0:
		t = ph - h - b
	}

	it.Left, it.Right, it.Top, it.Bottom = l, r, t, b
	if miss&missWidth != 0 {
		it.Width = w
	}
	if miss&missHeight != 0 {
		it.Height = h
	}
}

// impliedAnchor places point marks, which have no extent of their own.
func (it *Item) impliedAnchor(miss impliedMask) {
	pw, ph := it.panelSize()
	l, r, t, b := it.Left, it.Right, it.Top, it.Bottom
	if miss&missLeft != 0 {
		l = 0
	}
	if miss&missRight != 0 {
		r = 0
	}
	if miss&missTop != 0 {
		t = 0
	}
	if miss&missBottom != 0 {
		b = 0
	}
	switch {
	case miss&missRight != 0:
		r = pw - l
	case miss&missLeft != 0:
		l = pw - r
	}
	switch {
	case miss&missBottom != 0:
		b = ph - t
	case miss&missTop != 0:
		t = ph - b
	}
	it.Left, it.Right, it.Top, it.Bottom = l, r, t, b
}

// impliedRule picks an orientation before applying the box rule. A rule is
// horizontal unless it has an explicit width or exactly one of left and
// right, in which case it is vertical.
func (it *Item) impliedRule(miss impliedMask) {
	ml, mr := miss&missLeft != 0, miss&missRight != 0
	if miss&missWidth == 0 || (ml && mr) || (!ml && !mr) {
		it.Height = 0
		miss &^= missHeight
	} else {
		it.Width = 0
		miss &^= missWidth
	}
	it.impliedBox(miss)
}

// impliedWedge completes the angle triple. NaN angles count as missing.
func (it *Item) impliedWedge(miss impliedMask) {
	noAngle := miss&missAngle != 0 || math.IsNaN(it.Angle)
	noEnd := miss&missEndAngle != 0 || math.IsNaN(it.EndAngle)
	switch {
	case noEnd && !noAngle:
		it.EndAngle = it.StartAngle + it.Angle
	case noAngle && !noEnd:
		it.Angle = it.EndAngle - it.StartAngle
	}
}
