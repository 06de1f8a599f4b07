// Package render turns a marks item tree into draw commands and submits
// them to an ebiten image.
//
// [Collect] is pure: it walks the tree on the calling goroutine and produces
// triangle meshes with premultiplied vertex colors, so it can be tested
// without a graphics context. [Submit] draws the commands. [Display] ties
// both to an engine's scheduler and implements [ebiten.Game].
package render

import (
	"github.com/hajimehoshi/ebiten/v2"

	"github.com/phanxgames/marks"
)

// Kind identifies the kind of draw command.
type Kind uint8

const (
	KindFill   Kind = iota // filled triangles
	KindStroke             // outline triangles
	KindText               // a label drawn with the text face
	KindImage              // an image mark's registered picture
)

func (k Kind) String() string {
	switch k {
	case KindFill:
		return "fill"
	case KindStroke:
		return "stroke"
	case KindText:
		return "text"
	case KindImage:
		return "image"
	}
	return "unknown"
}

// Command is a single draw instruction emitted while walking the item tree.
// Coordinates are absolute, in scene space.
type Command struct {
	Kind Kind
	Item *marks.Item

	// Mesh fields (KindFill, KindStroke).
	Verts []ebiten.Vertex
	Inds  []uint16

	// Text and image fields. X and Y locate the top-left corner before
	// rotation by Angle around it.
	Text   string
	URL    string
	X, Y   float64
	W, H   float64
	Size   float64
	Angle  float64
	Color  marks.Color
	Alpha  float64
	Source string // producing mark type, for debugging
}

// Collect walks the tree under root and returns its draw commands in paint
// order. Layers of a panel are painted by ascending group depth, stable in
// tree order. Each visited item's dirty flag is cleared and each group's
// bounds recomputed.
func Collect(root *marks.Item) []Command {
	c := &collector{}
	c.item(root, 0, 0)
	return c.cmds
}

type collector struct {
	cmds   []Command
	sorted []*marks.GroupItem
}

func (c *collector) item(it *marks.Item, ox, oy float64) {
	if it == nil || len(it.Layers) == 0 {
		return
	}
	for _, g := range c.sortLayers(it.Layers) {
		c.group(g, ox, oy)
	}
}

// sortLayers returns the non-nil layers ordered by depth. Insertion sort:
// panels have few layers and they are usually already ordered.
func (c *collector) sortLayers(layers []*marks.GroupItem) []*marks.GroupItem {
	start := len(c.sorted)
	for _, g := range layers {
		if g != nil {
			c.sorted = append(c.sorted, g)
		}
	}
	s := c.sorted[start:]
	for i := 1; i < len(s); i++ {
		key := s[i]
		j := i - 1
		for j >= 0 && s[j].Depth > key.Depth {
			s[j+1] = s[j]
			j--
		}
		s[j+1] = key
	}
	out := make([]*marks.GroupItem, len(s))
	copy(out, s)
	c.sorted = c.sorted[:start]
	return out
}

func (c *collector) group(g *marks.GroupItem, ox, oy float64) {
	g.ComputeBounds()
	g.SetDirty(false)
	if !g.Visible {
		return
	}
	switch g.Type() {
	case marks.MarkLine:
		c.line(g, ox, oy)
	case marks.MarkArea:
		c.area(g, ox, oy)
	default:
		for _, it := range g.Items {
			if it == nil || it.Dead() {
				continue
			}
			it.SetDirty(false)
			if !it.Visible || it.Alpha <= 0 {
				continue
			}
			c.shape(g.Type(), it, ox, oy)
			if len(it.Layers) > 0 {
				c.item(it, ox+it.Left, oy+it.Top)
			}
		}
	}
}

func (c *collector) shape(t marks.MarkType, it *marks.Item, ox, oy float64) {
	x, y := ox+it.Left, oy+it.Top
	switch t {
	case marks.MarkBar, marks.MarkPanel:
		pts := rectPoints(x, y, it.Width, it.Height)
		c.fill(it, pts, it.Fill)
		c.outline(it, pts, true)
	case marks.MarkImage:
		c.cmds = append(c.cmds, Command{
			Kind: KindImage, Item: it, URL: it.URL,
			X: x, Y: y, W: it.Width, H: it.Height, Alpha: it.Alpha,
			Source: t.String(),
		})
		c.outline(it, rectPoints(x, y, it.Width, it.Height), true)
	case marks.MarkDot:
		pts, closed := dotPoints(it.Shape, x, y, it.Radius)
		if closed {
			c.fill(it, pts, it.Fill)
			c.outline(it, pts, true)
			return
		}
		// cross and x are drawn as two strokes
		c.outline(it, pts[:2], false)
		c.outline(it, pts[2:], false)
	case marks.MarkRule:
		c.outline(it, []point{{x, y}, {x + it.Width, y + it.Height}}, false)
	case marks.MarkLink:
		c.outline(it, []point{
			{ox + it.SourceX, oy + it.SourceY},
			{ox + it.TargetX, oy + it.TargetY},
		}, false)
	case marks.MarkWedge:
		out, in := wedgeArcs(x, y, it.InnerRadius, it.OuterRadius, it.StartAngle, it.EndAngle)
		c.fillStrip(it, out, in, it.Fill)
		c.outline(it, ring(out, in), true)
	case marks.MarkLabel:
		c.label(it, x, y)
	}
}

func (c *collector) label(it *marks.Item, x, y float64) {
	if it.Text == "" || it.Fill.IsNone() {
		return
	}
	w, h := it.TextSize()
	switch it.TextAlign {
	case marks.AlignCenter:
		x -= w / 2
	case marks.AlignRight:
		x -= w + it.TextMargin
	default:
		x += it.TextMargin
	}
	switch it.TextBaseline {
	case marks.BaselineMiddle:
		y -= h / 2
	case marks.BaselineBottom:
		y -= h + it.TextMargin
	default:
		y += it.TextMargin
	}
	c.cmds = append(c.cmds, Command{
		Kind: KindText, Item: it, Text: it.Text,
		X: x, Y: y, W: w, H: h, Size: h, Angle: it.TextAngle,
		Color: it.Fill.Color, Alpha: it.Alpha,
		Source: marks.MarkLabel.String(),
	})
}

// line draws the group's visible items as one polyline styled by the first
// of them, or segment by segment when the group is segmented.
func (c *collector) line(g *marks.GroupItem, ox, oy float64) {
	runs := visibleRuns(g)
	for _, run := range runs {
		if g.Segmented {
			for i := 1; i < len(run); i++ {
				a, b := run[i-1], run[i]
				pts := interpolate(g.Interpolate, []point{
					{ox + a.Left, oy + a.Top}, {ox + b.Left, oy + b.Top},
				})
				c.outline(a, pts, false)
			}
			continue
		}
		pts := make([]point, len(run))
		for i, it := range run {
			pts[i] = point{ox + it.Left, oy + it.Top}
		}
		c.outline(run[0], interpolate(g.Interpolate, pts), false)
	}
}

// area fills the region between the upper edge through each item's
// (left, top) and the lower edge through (left+width, top+height).
func (c *collector) area(g *marks.GroupItem, ox, oy float64) {
	for _, run := range visibleRuns(g) {
		upper := make([]point, len(run))
		lower := make([]point, len(run))
		for i, it := range run {
			upper[i] = point{ox + it.Left, oy + it.Top}
			lower[i] = point{ox + it.Left + it.Width, oy + it.Top + it.Height}
		}
		upper = interpolate(g.Interpolate, upper)
		lower = interpolate(g.Interpolate, lower)
		pts := make([]point, 0, len(upper)+len(lower))
		pts = append(pts, upper...)
		for i := len(lower) - 1; i >= 0; i-- {
			pts = append(pts, lower[i])
		}
		first := run[0]
		c.fillStrip(first, upper, lower, first.Fill)
		c.outline(first, pts, true)
	}
}

// visibleRuns splits the group's items into maximal runs of visible items,
// clearing every item's dirty flag on the way.
func visibleRuns(g *marks.GroupItem) [][]*marks.Item {
	var (
		runs [][]*marks.Item
		cur  []*marks.Item
	)
	for _, it := range g.Items {
		if it == nil || it.Dead() {
			continue
		}
		it.SetDirty(false)
		if !it.Visible || it.Alpha <= 0 {
			if len(cur) > 0 {
				runs = append(runs, cur)
				cur = nil
			}
			continue
		}
		cur = append(cur, it)
	}
	if len(cur) > 0 {
		runs = append(runs, cur)
	}
	return runs
}

func (c *collector) fill(it *marks.Item, pts []point, f marks.Fill) {
	if f.IsNone() || len(pts) < 3 {
		return
	}
	clr := premultiply(f.Color, it.Alpha)
	for _, m := range polygonFan(pts, clr) {
		c.cmds = append(c.cmds, Command{Kind: KindFill, Item: it, Verts: m.verts, Inds: m.inds,
			Color: f.Color, Alpha: it.Alpha, Source: sourceOf(it)})
	}
}

func (c *collector) fillStrip(it *marks.Item, upper, lower []point, f marks.Fill) {
	if f.IsNone() || len(upper) < 2 {
		return
	}
	clr := premultiply(f.Color, it.Alpha)
	for _, m := range quadStrip(upper, lower, clr) {
		c.cmds = append(c.cmds, Command{Kind: KindFill, Item: it, Verts: m.verts, Inds: m.inds,
			Color: f.Color, Alpha: it.Alpha, Source: sourceOf(it)})
	}
}

func (c *collector) outline(it *marks.Item, pts []point, closed bool) {
	s := it.Stroke
	if s.IsNone() || len(pts) < 2 {
		return
	}
	clr := premultiply(s.Fill.Color, it.Alpha)
	for _, m := range strokePolyline(pts, s.Width, closed, clr) {
		c.cmds = append(c.cmds, Command{Kind: KindStroke, Item: it, Verts: m.verts, Inds: m.inds,
			Color: s.Fill.Color, Alpha: it.Alpha, Source: sourceOf(it)})
	}
}

func sourceOf(it *marks.Item) string {
	if it.Group == nil {
		return marks.MarkItem.String()
	}
	return it.Group.Type().String()
}
