package marks

import (
	"math"
	"reflect"
)

// Edge is implemented by link data that names its endpoints. The default
// link source and target keys read it.
type Edge interface {
	Source() any
	Target() any
}

var anyType = reflect.TypeFor[any]()

// definitions holds the per-type default marks. Each sits at protos[0] of
// every mark of its type; its properties are shared so identity comparison
// sees them as unchanged between updates.
var definitions = map[MarkType]*Mark{}

func definition(t MarkType) *Mark {
	if t == MarkItem {
		return nil
	}
	return definitions[t]
}

func init() {
	for t := MarkArea; t <= MarkWedge; t++ {
		definitions[t] = baseDefinition(t)
	}

	definitions[MarkArea].
		Interpolate(InterpolateLinear).
		Width(0).
		Height(0).
		Stroke(StrokeNone).
		Fill(SolidFill(RGB(0x0000aa)))

	// Bars leave width and height undefined so the implied-geometry rule can
	// derive them from left, right, top and bottom.
	definitions[MarkBar].
		Stroke(StrokeNone).
		Fill(SolidFill(RGB(0x0000aa)))

	definitions[MarkDot].
		Size(16).
		Shape(ShapeCircle).
		Stroke(SolidStroke(1, ColorBlack)).
		Radius(func(it *Item) float64 { return math.Sqrt(it.Size) })

	definitions[MarkImage].
		Width(-1).
		Height(-1)

	definitions[MarkLabel].
		Text(func(it *Item) string { return toString(it.Data) }).
		TextAlign(AlignLeft).
		TextBaseline(BaselineTop).
		TextAngle(0).
		TextMargin(3).
		Font(DefaultFont).
		Fill(SolidFill(ColorBlack))

	definitions[MarkPanel].
		Left(0).
		Right(0).
		Top(0).
		Bottom(0).
		Width(0).
		Height(0).
		Stroke(StrokeNone).
		Fill(FillNone)

	definitions[MarkLink].
		Depth(1).
		Set("sourceX", func(it *Item) float64 { return endpoint(it.Source, true) }).
		Set("sourceY", func(it *Item) float64 { return endpoint(it.Source, false) }).
		Set("targetX", func(it *Item) float64 { return endpoint(it.Target, true) }).
		Set("targetY", func(it *Item) float64 { return endpoint(it.Target, false) }).
		Visible(func(it *Item) bool {
			return it.Source != nil && it.Target != nil && it.Source.Visible && it.Target.Visible
		}).
		Nodes(func(it *Item) *GroupItem { return it.Group.proto }).
		NodeKey(func(it *Item) any { return it.Data }).
		SourceKey(func(it *Item) any {
			if e, ok := it.Data.(Edge); ok {
				return e.Source()
			}
			return nil
		}).
		TargetKey(func(it *Item) any {
			if e, ok := it.Data.(Edge); ok {
				return e.Target()
			}
			return nil
		}).
		Stroke(SolidStroke(1, RGB(0xcccccc)))

	definitions[MarkLine].
		Width(0).
		Height(0).
		Stroke(SolidStroke(1, RGB(0x0000aa))).
		Interpolate(InterpolateLinear)

	definitions[MarkRule].
		Stroke(SolidStroke(1, ColorBlack))

	definitions[MarkWedge].
		StartAngle(math.NaN()).
		EndAngle(math.NaN()).
		Angle(math.NaN()).
		InnerRadius(0).
		OuterRadius(1).
		Stroke(StrokeNone).
		Fill(FillNone)
}

// baseDefinition holds the properties every typed mark starts from: any
// datatype, the enclosing panel's datum as data, the index as key, visible,
// and opaque.
func baseDefinition(t MarkType) *Mark {
	d := &Mark{typ: t, treeIndex: -1}
	return d.
		Datatype(anyType).
		Data(func(it *Item) any {
			if p := it.Parent(); p != nil {
				return p.Data
			}
			return nil
		}).
		Key(func(it *Item) any { return it.Index }).
		Visible(true).
		Alpha(1)
}

func endpoint(it *Item, x bool) float64 {
	switch {
	case it == nil:
		return math.NaN()
	case x:
		return it.Left
	default:
		return it.Top
	}
}
