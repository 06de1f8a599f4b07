package render

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/phanxgames/marks"
)

// maxMeshVerts keeps every mesh addressable by uint16 indices.
const maxMeshVerts = 1<<16 - 4

type point struct {
	x, y float64
}

type mesh struct {
	verts []ebiten.Vertex
	inds  []uint16
}

// rgba is a premultiplied vertex color.
type rgba [4]float32

// premultiply scales c by its own alpha times the item alpha.
func premultiply(c marks.Color, alpha float64) rgba {
	a := float32(c.A * alpha)
	return rgba{float32(c.R) * a, float32(c.G) * a, float32(c.B) * a, a}
}

// meshBuilder appends vertices to the current mesh and starts a new one
// before the index range overflows.
type meshBuilder struct {
	out []mesh
	cur mesh
	clr rgba
}

func (b *meshBuilder) reserve(n int) {
	if len(b.cur.verts)+n > maxMeshVerts {
		b.flush()
	}
}

func (b *meshBuilder) vertex(p point) uint16 {
	i := uint16(len(b.cur.verts))
	// untextured: sample the center of the white pixel
	b.cur.verts = append(b.cur.verts, ebiten.Vertex{
		DstX: float32(p.x), DstY: float32(p.y),
		SrcX: 0.5, SrcY: 0.5,
		ColorR: b.clr[0], ColorG: b.clr[1], ColorB: b.clr[2], ColorA: b.clr[3],
	})
	return i
}

func (b *meshBuilder) quad(p0, p1, p2, p3 point) {
	b.reserve(4)
	i := b.vertex(p0)
	b.vertex(p1)
	b.vertex(p2)
	b.vertex(p3)
	b.cur.inds = append(b.cur.inds, i, i+1, i+2, i, i+2, i+3)
}

func (b *meshBuilder) flush() {
	if len(b.cur.verts) > 0 {
		b.out = append(b.out, b.cur)
	}
	b.cur = mesh{}
}

func (b *meshBuilder) meshes() []mesh {
	b.flush()
	return b.out
}

// polygonFan triangulates a convex polygon as a fan around its first vertex.
func polygonFan(pts []point, clr rgba) []mesh {
	b := &meshBuilder{clr: clr}
	n := len(pts)
	if n < 3 {
		return nil
	}
	b.reserve(n)
	first := b.vertex(pts[0])
	prev := b.vertex(pts[1])
	for i := 2; i < n; i++ {
		if len(b.cur.verts)+1 > maxMeshVerts {
			b.flush()
			first = b.vertex(pts[0])
			prev = b.vertex(pts[i-1])
		}
		cur := b.vertex(pts[i])
		b.cur.inds = append(b.cur.inds, first, prev, cur)
		prev = cur
	}
	return b.meshes()
}

// quadStrip fills the band between two polylines of equal length.
func quadStrip(upper, lower []point, clr rgba) []mesh {
	b := &meshBuilder{clr: clr}
	n := min(len(upper), len(lower))
	for i := 1; i < n; i++ {
		b.quad(upper[i-1], upper[i], lower[i], lower[i-1])
	}
	return b.meshes()
}

// strokePolyline outlines pts with quads of the given width. Interior
// segment ends are extended by half the width so joints have no gaps.
// Widths under one pixel draw a one pixel hairline.
func strokePolyline(pts []point, width float64, closed bool, clr rgba) []mesh {
	hw := max(width, 1) / 2
	n := len(pts)
	segs := n - 1
	if closed && n > 2 {
		segs = n
	}
	b := &meshBuilder{clr: clr}
	for i := range segs {
		p, q := pts[i], pts[(i+1)%n]
		dx, dy := q.x-p.x, q.y-p.y
		l := math.Hypot(dx, dy)
		if l == 0 {
			continue
		}
		ux, uy := dx/l, dy/l
		if closed || i > 0 {
			p = point{p.x - ux*hw, p.y - uy*hw}
		}
		if closed || i < segs-1 {
			q = point{q.x + ux*hw, q.y + uy*hw}
		}
		nx, ny := -uy*hw, ux*hw
		b.quad(
			point{p.x + nx, p.y + ny},
			point{q.x + nx, q.y + ny},
			point{q.x - nx, q.y - ny},
			point{p.x - nx, p.y - ny},
		)
	}
	return b.meshes()
}

func rectPoints(x, y, w, h float64) []point {
	return []point{{x, y}, {x + w, y}, {x + w, y + h}, {x, y + h}}
}

// circlePoints approximates a circle with a segment count that grows with
// the radius.
func circlePoints(x, y, r float64) []point {
	n := min(max(int(r*2), 12), 64)
	pts := make([]point, n)
	for i := range n {
		a := 2 * math.Pi * float64(i) / float64(n)
		pts[i] = point{x + r*math.Cos(a), y + r*math.Sin(a)}
	}
	return pts
}

// dotPoints returns the outline of a dot shape centred on (x, y). Shapes
// that are not closed polygons return two line segments.
func dotPoints(s marks.Shape, x, y, r float64) (pts []point, closed bool) {
	switch s {
	case marks.ShapeSquare:
		return rectPoints(x-r, y-r, 2*r, 2*r), true
	case marks.ShapeDiamond:
		d := r * math.Sqrt2
		return []point{{x, y - d}, {x + d, y}, {x, y + d}, {x - d, y}}, true
	case marks.ShapeTriangle:
		h := r * math.Sqrt(3)
		return []point{{x, y - r}, {x + h/2, y + r/2}, {x - h/2, y + r/2}}, true
	case marks.ShapeCross:
		return []point{{x - r, y}, {x + r, y}, {x, y - r}, {x, y + r}}, false
	case marks.ShapeX:
		return []point{{x - r, y - r}, {x + r, y + r}, {x + r, y - r}, {x - r, y + r}}, false
	case marks.ShapePoint:
		return circlePoints(x, y, 1), true
	}
	return circlePoints(x, y, r), true
}

// wedgeArcs returns the outer and inner arcs of an annular sector centred
// on (x, y), both running from start to end. Angles are in radians,
// clockwise from the positive x axis.
func wedgeArcs(x, y, inner, outer, start, end float64) (out, in []point) {
	if math.IsNaN(start) || math.IsNaN(end) || outer <= 0 {
		return nil, nil
	}
	n := min(max(int(math.Ceil(math.Abs(end-start)*outer/4)), 2), 256)
	out = make([]point, n+1)
	in = make([]point, n+1)
	for i := range n + 1 {
		a := start + (end-start)*float64(i)/float64(n)
		c, s := math.Cos(a), math.Sin(a)
		out[i] = point{x + outer*c, y + outer*s}
		in[i] = point{x + inner*c, y + inner*s}
	}
	return out, in
}

// ring joins the outer arc to the reversed inner arc into one closed outline.
func ring(out, in []point) []point {
	pts := make([]point, 0, len(out)+len(in))
	pts = append(pts, out...)
	for i := len(in) - 1; i >= 0; i-- {
		if len(pts) > 0 && pts[len(pts)-1] == in[i] {
			continue
		}
		pts = append(pts, in[i])
	}
	return pts
}

// interpolate inserts the corner vertices of step interpolation.
func interpolate(mode marks.Interpolation, pts []point) []point {
	if len(pts) < 2 {
		return pts
	}
	switch mode {
	case marks.InterpolateStepAfter, marks.InterpolateStepBefore:
	default:
		return pts
	}
	out := make([]point, 0, 2*len(pts)-1)
	out = append(out, pts[0])
	for i := 1; i < len(pts); i++ {
		p, q := pts[i-1], pts[i]
		if mode == marks.InterpolateStepAfter {
			out = append(out, point{q.x, p.y})
		} else {
			out = append(out, point{p.x, q.y})
		}
		out = append(out, q)
	}
	return out
}
