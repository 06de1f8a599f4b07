package marks

import (
	"reflect"
	"sync"
)

// --- Ordered property maps ---

type namedProperty struct {
	name string
	prop *Property
}

// propertyList is an insertion-ordered property map. Evaluation follows
// insertion order, so a property may read fields assigned by earlier ones.
type propertyList []namedProperty

func (l propertyList) get(name string) *Property {
	for i := range l {
		if l[i].name == name {
			return l[i].prop
		}
	}
	return nil
}

func (l propertyList) has(name string) bool {
	for i := range l {
		if l[i].name == name {
			return true
		}
	}
	return false
}

// put returns a copy of l with name bound to p, keeping the position of an
// existing entry. Resolved property sets share these slices, so they are
// never written in place.
func (l propertyList) put(name string, p *Property) propertyList {
	out := make(propertyList, len(l), len(l)+1)
	copy(out, l)
	for i := range out {
		if out[i].name == name {
			out[i].prop = p
			return out
		}
	}
	return append(out, namedProperty{name, p})
}

func (l propertyList) remove(name string) (propertyList, *Property) {
	for i := range l {
		if l[i].name == name {
			out := make(propertyList, 0, len(l)-1)
			out = append(append(out, l[:i]...), l[i+1:]...)
			return out, l[i].prop
		}
	}
	return l, nil
}

// same reports whether both lists bind every name to the identical Property.
func (l propertyList) same(o propertyList) bool {
	if len(l) != len(o) {
		return false
	}
	for i := range l {
		if o.get(l[i].name) != l[i].prop {
			return false
		}
	}
	return true
}

// --- Mark ---

// Mark is a node in the declared mark tree: a set of property definitions
// bound to a mark type, inheriting from a prototype chain. Marks are built
// with chained setters and are turned into items by a Scene update.
type Mark struct {
	mu       sync.RWMutex
	typ      MarkType
	props    propertyList
	vars     propertyList
	handlers map[string][]EventHandler
	enter    propertyList
	exit     propertyList

	// protos[0] is the type's defaults; protos[1], if present, is the
	// parent mark inherited through Add or the first extended mark.
	protos   []*Mark
	hasProto bool

	children []*Mark
	parent   *Mark
	panel    *Mark
	scene    *Scene

	treeIndex int
	panelSize int

	pset *PropertySet
	eval Evaluator
}

// NewMark returns a detached mark of type t. Detached marks are used as
// prototypes with Extend and as enter or exit property sets.
func NewMark(t MarkType) *Mark {
	m := &Mark{typ: t, treeIndex: -1}
	if d := definition(t); d != nil {
		m.protos = append(m.protos, d)
	}
	m.enter = defaultEnterExit
	m.exit = defaultEnterExit
	return m
}

// Add creates a child mark of type t. A child of a non-panel mark inherits
// that mark's properties and uses its group as prototype.
func (m *Mark) Add(t MarkType) *Mark {
	c := NewMark(t)
	if m.typ != MarkPanel {
		c.protos = append(c.protos, m)
		c.hasProto = true
		c.panel = m.panel
	} else {
		c.panel = m
	}
	c.parent = m
	c.scene = m.scene
	m.mu.Lock()
	m.children = append(m.children, c)
	m.mu.Unlock()
	return c
}

// Extend appends proto to the mark's prototype chain.
func (m *Mark) Extend(proto *Mark) *Mark {
	m.mu.Lock()
	m.protos = append(m.protos, proto)
	m.mu.Unlock()
	return m
}

// Type returns the mark type.
func (m *Mark) Type() MarkType { return m.typ }

// Parent returns the mark this one was added to, or nil.
func (m *Mark) Parent() *Mark { return m.parent }

// Panel returns the nearest enclosing panel mark.
func (m *Mark) Panel() *Mark { return m.panel }

// Scene returns the owning scene, or nil for detached marks.
func (m *Mark) Scene() *Scene { return m.scene }

// Children returns the child marks in insertion order.
func (m *Mark) Children() []*Mark {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]*Mark(nil), m.children...)
}

// TreeIndex returns the index of the mark's group inside its panel's layers.
// It is only valid for the update in which it was assigned.
func (m *Mark) TreeIndex() int { return m.treeIndex }

// PropertySet returns the last resolved property set, or nil before the
// first update.
func (m *Mark) PropertySet() *PropertySet { return m.pset }

// Evaluator returns the evaluator bound by the last update, or nil.
func (m *Mark) Evaluator() Evaluator { return m.eval }

// proto returns the first inherited mark after the type defaults.
func (m *Mark) proto() *Mark {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if len(m.protos) > 1 {
		return m.protos[1]
	}
	return nil
}

// setTreeIndex assigns depth-first indices. Children of a panel restart at
// zero inside the panel's layers; children of other marks continue the
// parent's sequence since their groups live in the same layers.
func (m *Mark) setTreeIndex(idx int) int {
	idx++
	m.treeIndex = idx
	children := m.Children()
	if m.typ == MarkPanel {
		n := -1
		for _, c := range children {
			n = c.setTreeIndex(n)
		}
		m.panelSize = n + 1
		return idx
	}
	for _, c := range children {
		idx = c.setTreeIndex(idx)
	}
	return idx
}

// --- Property definition ---

// Set defines property name from v. v may be a *Property, a *Variable, a
// func(*Item) T, or a constant. Enumerated properties reject unregistered
// constant values by panicking with a *PropertyError.
func (m *Mark) Set(name string, v any) *Mark {
	p := toProperty(v)
	if p != nil && p.mode == modeConst && p.kind == KindString {
		if err := checkRegistered(name, p.cStr); err != nil {
			panic(err)
		}
	}
	m.mu.Lock()
	if p == nil {
		m.props, _ = m.props.remove(name)
	} else {
		m.props = m.props.put(name, p)
	}
	m.mu.Unlock()
	return m
}

// Property returns the mark's own definition of name, ignoring prototypes.
func (m *Mark) Property(name string) *Property {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.props.get(name)
}

// Remove deletes the mark's own definition of name and returns it.
func (m *Mark) Remove(name string) *Property {
	m.mu.Lock()
	defer m.mu.Unlock()
	var p *Property
	m.props, p = m.props.remove(name)
	return p
}

// Def declares a named variable on the mark and returns it. Property
// functions read it through the returned *Variable.
func (m *Mark) Def(name string, value any) *Variable {
	v, ok := value.(*Variable)
	if !ok {
		v = NewVariable(value)
	}
	m.mu.Lock()
	m.vars = m.vars.put(name, Var(v))
	m.mu.Unlock()
	return v
}

// Var returns the variable declared with Def, or nil.
func (m *Mark) Var(name string) *Variable {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if p := m.vars.get(name); p != nil {
		return p.variable
	}
	return nil
}

// Enter sets the properties applied to the starting state of items born
// during an animated update. Alpha starts at zero unless props overrides it.
func (m *Mark) Enter(props *Mark) *Mark {
	l := enterExit(props)
	m.mu.Lock()
	m.enter = l
	m.mu.Unlock()
	return m
}

// Exit sets the properties applied to the final state of exiting items.
// Alpha ends at zero unless props overrides it.
func (m *Mark) Exit(props *Mark) *Mark {
	l := enterExit(props)
	m.mu.Lock()
	m.exit = l
	m.mu.Unlock()
	return m
}

var zeroAlpha = Const(0.0)

var defaultEnterExit = propertyList{{"alpha", zeroAlpha}}

func enterExit(props *Mark) propertyList {
	l := propertyList{{"alpha", zeroAlpha}}
	if props == nil {
		return l
	}
	props.mu.RLock()
	defer props.mu.RUnlock()
	for _, np := range props.props {
		l = l.put(np.name, np.prop)
	}
	return l
}

func toProperty(v any) *Property {
	switch x := v.(type) {
	case nil:
		return nil
	case *Property:
		return x
	case *Variable:
		return Var(x)
	case func(*Item) float64:
		return Fn(x)
	case func(*Item) int:
		return Fn(x)
	case func(*Item) bool:
		return Fn(x)
	case func(*Item) string:
		return Fn(x)
	case func(*Item) Shape:
		return Fn(x)
	case func(*Item) TextAlign:
		return Fn(x)
	case func(*Item) TextBaseline:
		return Fn(x)
	case func(*Item) Fill:
		return Fn(x)
	case func(*Item) Color:
		return Fn(x)
	case func(*Item) Stroke:
		return Fn(x)
	case func(*Item) Font:
		return Fn(x)
	case func(*Item) any:
		return Fn(x)
	case func(*Item) *GroupItem:
		return Fn(x)
	case func(*Item) *Mark:
		return Fn(x)
	case func(*Item) Easing:
		return Fn(x)
	}
	return Const(v)
}

// --- Events ---

// On registers a handler for the named event.
func (m *Mark) On(name string, h EventHandler) *Mark {
	m.mu.Lock()
	if m.handlers == nil {
		m.handlers = make(map[string][]EventHandler)
	}
	m.handlers[name] = append(m.handlers[name], h)
	m.mu.Unlock()
	return m
}

// OnBuild registers a handler fired for each group after reconciliation.
func (m *Mark) OnBuild(h EventHandler) *Mark { return m.On(EventBuild, h) }

// OnUpdate registers a handler on the owning scene, fired once per update
// after the build phase.
func (m *Mark) OnUpdate(h EventHandler) *Mark {
	if m.scene != nil {
		m.scene.Mark.On(EventUpdate, h)
	}
	return m
}

// --- Group-level properties ---

// Data sets the data collection. v may be a slice, an iter.Seq[any], or a
// func(*Item) any evaluated against the group.
func (m *Mark) Data(v any) *Mark { return m.Set("data", v) }

// Datatype declares the element type every datum must be assignable to.
func (m *Mark) Datatype(t reflect.Type) *Mark { return m.Set("datatype", Const(t)) }

func (m *Mark) Depth(v any) *Mark     { return m.Set("depth", v) }
func (m *Mark) Segmented(v any) *Mark { return m.Set("segmented", v) }

// Interpolate sets line and area interpolation. Unregistered constant values panic.
func (m *Mark) Interpolate(v any) *Mark { return m.Set("interpolate", v) }

// Cache marks panel instances as cacheable by renderers.
func (m *Mark) Cache(v any) *Mark { return m.Set("cache", v) }

// --- Key-level properties ---

// Key sets the identity function matching items to data across updates.
// Keys must be comparable and unique within one group.
func (m *Mark) Key(v any) *Mark { return m.Set("key", v) }

func (m *Mark) SourceNodes(v any) *Mark   { return m.Set("sourceNodes", v) }
func (m *Mark) TargetNodes(v any) *Mark   { return m.Set("targetNodes", v) }
func (m *Mark) SourceNodeKey(v any) *Mark { return m.Set("sourceNodeKey", v) }
func (m *Mark) TargetNodeKey(v any) *Mark { return m.Set("targetNodeKey", v) }
func (m *Mark) SourceKey(v any) *Mark     { return m.Set("sourceKey", v) }
func (m *Mark) TargetKey(v any) *Mark     { return m.Set("targetKey", v) }

// Nodes sets both the source and target node groups of a link mark.
func (m *Mark) Nodes(v any) *Mark {
	p := toProperty(v)
	return m.Set("sourceNodes", p).Set("targetNodes", p)
}

// NodeKey sets both node key functions of a link mark.
func (m *Mark) NodeKey(v any) *Mark {
	p := toProperty(v)
	return m.Set("sourceNodeKey", p).Set("targetNodeKey", p)
}

// --- Instance-level properties ---

func (m *Mark) Visible(v any) *Mark { return m.Set("visible", v) }
func (m *Mark) Left(v any) *Mark    { return m.Set("left", v) }
func (m *Mark) Right(v any) *Mark   { return m.Set("right", v) }
func (m *Mark) Top(v any) *Mark     { return m.Set("top", v) }
func (m *Mark) Bottom(v any) *Mark  { return m.Set("bottom", v) }
func (m *Mark) Width(v any) *Mark   { return m.Set("width", v) }
func (m *Mark) Height(v any) *Mark  { return m.Set("height", v) }
func (m *Mark) Alpha(v any) *Mark   { return m.Set("alpha", v) }

// Delay sets the per-item transition delay in seconds.
func (m *Mark) Delay(v any) *Mark { return m.Set("delay", v) }

// Ease sets the per-item transition easing.
func (m *Mark) Ease(v any) *Mark {
	if e, ok := v.(Easing); ok {
		return m.Set("ease", Const(e))
	}
	return m.Set("ease", v)
}

// Fill sets the fill. Strings are parsed with ParseFill; invalid specs panic.
func (m *Mark) Fill(v any) *Mark {
	if s, ok := v.(string); ok {
		f, err := ParseFill(s)
		if err != nil {
			panic(err)
		}
		return m.Set("fill", f)
	}
	return m.Set("fill", v)
}

// Stroke sets the stroke. Strings are parsed with ParseStroke; invalid specs panic.
func (m *Mark) Stroke(v any) *Mark {
	if s, ok := v.(string); ok {
		st, err := ParseStroke(s)
		if err != nil {
			panic(err)
		}
		return m.Set("stroke", st)
	}
	return m.Set("stroke", v)
}

func (m *Mark) Size(v any) *Mark   { return m.Set("size", v) }
func (m *Mark) Radius(v any) *Mark { return m.Set("radius", v) }

// Shape sets the dot shape. Unregistered constant shapes panic.
func (m *Mark) Shape(v any) *Mark { return m.Set("shape", v) }

func (m *Mark) URL(v any) *Mark         { return m.Set("url", v) }
func (m *Mark) InnerRadius(v any) *Mark { return m.Set("innerRadius", v) }
func (m *Mark) OuterRadius(v any) *Mark { return m.Set("outerRadius", v) }
func (m *Mark) StartAngle(v any) *Mark  { return m.Set("startAngle", v) }
func (m *Mark) EndAngle(v any) *Mark    { return m.Set("endAngle", v) }
func (m *Mark) Angle(v any) *Mark       { return m.Set("angle", v) }
func (m *Mark) Text(v any) *Mark        { return m.Set("text", v) }
func (m *Mark) TextAngle(v any) *Mark   { return m.Set("textAngle", v) }
func (m *Mark) TextMargin(v any) *Mark  { return m.Set("textMargin", v) }

// TextAlign sets label alignment. Unregistered constant values panic.
func (m *Mark) TextAlign(v any) *Mark { return m.Set("textAlign", v) }

// TextBaseline sets the label baseline. Unregistered constant values panic.
func (m *Mark) TextBaseline(v any) *Mark { return m.Set("textBaseline", v) }

// Font sets the label font. Strings are parsed with ParseFont; invalid specs panic.
func (m *Mark) Font(v any) *Mark {
	if s, ok := v.(string); ok {
		f, err := ParseFont(s)
		if err != nil {
			panic(err)
		}
		return m.Set("font", f)
	}
	return m.Set("font", v)
}
