package marks

import "sync/atomic"

// --- Flags ---

type itemFlags uint8

const (
	flagDirty    itemFlags = 1 << iota // needs redraw; cleared by the renderer
	flagZombie                         // key left the data, animating out
	flagDead                           // exit finished, dropped on next build
	flagBorn                           // created by the current build
	flagModified                       // group indexing changed
)

// --- State ---

// State is the animatable visual state of an item. Transitions interpolate
// between two State snapshots; fields unused by a mark type stay zero.
type State struct {
	Left, Right, Top, Bottom float64
	Width, Height            float64
	Alpha                    float64
	Fill                     Fill
	Stroke                   Stroke

	// Dot fields (MarkDot)
	Shape  Shape
	Size   float64
	Radius float64

	// Label fields (MarkLabel)
	Text         string
	Font         Font
	TextAlign    TextAlign
	TextBaseline TextBaseline
	TextAngle    float64
	TextMargin   float64

	// Wedge fields (MarkWedge)
	StartAngle, EndAngle, Angle float64
	InnerRadius, OuterRadius    float64

	// Image fields (MarkImage)
	URL string

	// Link fields (MarkLink)
	SourceX, SourceY float64
	TargetX, TargetY float64
}

// shadow holds the two snapshots an animated item interpolates between:
// from is the rendered state before evaluation, to the evaluated target.
type shadow struct {
	from, to State
}

// --- Item ---

// Item is one rendered instance of a Mark for one datum. A single flat struct
// is used for all mark types to avoid interface dispatch on the hot path.
type Item struct {
	State

	Index   int
	Visible bool
	Data    any
	Group   *GroupItem

	// Per-item transition overrides. Delay is in seconds.
	Ease  Easing
	Delay float64

	// Link endpoints (MarkLink)
	Source, Target *Item

	// Nested layers, one per child mark by tree index (MarkPanel)
	Layers []*GroupItem
	Cache  bool

	flags  itemFlags
	shadow *shadow
}

func newItem(g *GroupItem, index int, datum any) *Item {
	return &Item{
		Index:   index,
		Visible: true,
		Data:    datum,
		Group:   g,
		flags:   flagDirty | flagBorn,
	}
}

func (it *Item) is(f itemFlags) bool { return it.flags&f != 0 }

func (it *Item) set(f itemFlags, on bool) {
	if on {
		it.flags |= f
	} else {
		it.flags &^= f
	}
}

// Born reports whether the item was created by the most recent build.
func (it *Item) Born() bool { return it.is(flagBorn) }

// Zombie reports whether the item's key left the data and it is animating out.
func (it *Item) Zombie() bool { return it.is(flagZombie) }

// Dead reports whether the item finished exiting and will be dropped.
func (it *Item) Dead() bool { return it.is(flagDead) }

// Dirty reports whether the item needs redrawing. For a GroupItem it reports
// whether the group's size changed since the renderer last cleared it.
func (it *Item) Dirty() bool { return it.is(flagDirty) }

// SetDirty is called by renderers after drawing.
func (it *Item) SetDirty(d bool) { it.set(flagDirty, d) }

// Modified reports whether a GroupItem's indexing changed in the last build.
func (it *Item) Modified() bool { return it.is(flagModified) }

// Animating reports whether the item carries transition snapshots.
func (it *Item) Animating() bool { return it.shadow != nil }

// From returns the pre-evaluation snapshot of an animating item.
func (it *Item) From() (State, bool) {
	if it.shadow == nil {
		return State{}, false
	}
	return it.shadow.from, true
}

// To returns the evaluated target snapshot of an animating item.
func (it *Item) To() (State, bool) {
	if it.shadow == nil {
		return State{}, false
	}
	return it.shadow.to, true
}

// --- Navigation ---

// Parent returns the panel instance containing the item's group.
func (it *Item) Parent() *Item {
	if it.Group == nil {
		return nil
	}
	return it.Group.panel
}

// Ancestor returns the n-th enclosing panel instance. Ancestor(1) is Parent.
func (it *Item) Ancestor(n int) *Item {
	p := it
	for ; n > 0 && p != nil; n-- {
		p = p.Parent()
	}
	return p
}

// Proto returns the item at the same index in the prototype group, or nil.
func (it *Item) Proto() *Item {
	g := it.Group
	if g == nil || g.proto == nil || it.Index >= len(g.proto.Items) || it.Index < 0 {
		return nil
	}
	return g.proto.Items[it.Index]
}

// Sibling returns the previous item in the group, or nil for the first.
func (it *Item) Sibling() *Item {
	g := it.Group
	if g == nil || it.Index <= 0 || it.Index > len(g.Items) {
		return nil
	}
	return g.Items[it.Index-1]
}

// Cousin returns the item at the same index in the same mark's group under
// the previous panel instance, or nil.
func (it *Item) Cousin() *Item {
	g := it.Group
	if g == nil || g.panel == nil {
		return nil
	}
	prev := g.panel.Sibling()
	if prev == nil || g.Index >= len(prev.Layers) {
		return nil
	}
	pg := prev.Layers[g.Index]
	if pg == nil || it.Index >= len(pg.Items) {
		return nil
	}
	return pg.Items[it.Index]
}

// Layer returns the group a child mark produced under this panel instance.
func (it *Item) Layer(m *Mark) *GroupItem {
	if m == nil || m.treeIndex < 0 || m.treeIndex >= len(it.Layers) {
		return nil
	}
	return it.Layers[m.treeIndex]
}

// Mark returns the mark that produced the item.
func (it *Item) Mark() *Mark {
	if it.Group == nil {
		return nil
	}
	return it.Group.mark
}

// populate copies src's visual state into it.
func (it *Item) populate(src *Item) {
	it.State = src.State
}

// --- GroupItem ---

// GroupItem owns the items one Mark produced for one data collection under
// one panel instance. Its embedded Item is addressed by the mark's tree index
// inside the panel's Layers and carries group-level state; its Group field
// points at itself so navigation from group-level property functions
// resolves the enclosing panel.
type GroupItem struct {
	Item

	Items []*Item

	Depth       float64
	Segmented   bool
	Interpolate Interpolation
	Bounds      Rect

	mark     *Mark
	typ      MarkType
	proto    *GroupItem
	panel    *Item
	props    atomic.Uint32
	handlers map[string][]EventHandler
}

func newGroupItem(m *Mark, panel *Item) *GroupItem {
	g := &GroupItem{mark: m, typ: m.typ, panel: panel}
	g.Item.Index = m.treeIndex
	g.Item.Visible = true
	g.Item.Group = g
	g.Item.flags = flagDirty
	return g
}

// Type returns the mark type of the group's items.
func (g *GroupItem) Type() MarkType { return g.typ }

// Mark returns the producing mark.
func (g *GroupItem) Mark() *Mark { return g.mark }

// Panel returns the panel instance owning the group.
func (g *GroupItem) Panel() *Item { return g.panel }

// ProtoGroup returns the prototype group the items inherit from, or nil.
func (g *GroupItem) ProtoGroup() *GroupItem { return g.proto }

// Len returns the number of items, zombies included.
func (g *GroupItem) Len() int { return len(g.Items) }

// Changed returns the property categories that differ between the from and
// to snapshots of the group's items in the last animated evaluation.
func (g *GroupItem) Changed() PropBits { return PropBits(g.props.Load()) }

func (g *GroupItem) addChanged(b PropBits) {
	if b != 0 {
		g.props.Or(uint32(b))
	}
}

// discard drops items at and beyond idx.
func (g *GroupItem) discard(idx int) {
	for i := idx; i < len(g.Items); i++ {
		if it := g.Items[i]; it != nil {
			it.set(flagDead, true)
			it.shadow = nil
		}
		g.Items[i] = nil
	}
	g.Items = g.Items[:idx]
}

// visibleItems counts items that are visible and not dead.
func (g *GroupItem) visibleItems() int {
	n := 0
	for _, it := range g.Items {
		if it != nil && it.Visible && !it.Dead() {
			n++
		}
	}
	return n
}
