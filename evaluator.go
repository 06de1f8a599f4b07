package marks

import (
	"fmt"
	"iter"
	"reflect"
)

// Evaluator reconciles and evaluates the groups of one mark. An evaluator
// is bound to a resolved PropertySet and is rebuilt when the set is dirty.
type Evaluator interface {
	// Strategy reports which evaluator strategy produced the evaluator.
	Strategy() EvaluatorKind

	// Datatype returns the declared element type of the mark's data.
	Datatype() reflect.Type

	// Data resolves the data collection for a build of g.
	Data(g *GroupItem) iter.Seq[any]

	// Build reconciles the group of m under panel with the current data and
	// returns it. proto is the group the mark inherits from, or nil.
	Build(m *Mark, proto *GroupItem, panel *Item, animate bool) (*GroupItem, error)

	// Evaluate computes instance properties of items [start, end) and
	// returns the categories that changed in animated items.
	Evaluate(g *GroupItem, start, end int, animate bool) (PropBits, error)

	// Transition returns the stepper animating g's changes, or nil.
	Transition(g *GroupItem) Stepper
}

// EvaluatorKind selects how resolved properties are applied to items.
type EvaluatorKind uint8

const (
	// EvaluatorCompiled specializes a plan of typed closures per property
	// set, folding constants; plans are cached by generated source.
	EvaluatorCompiled EvaluatorKind = iota
	// EvaluatorGeneric dispatches every property through a name table.
	EvaluatorGeneric
)

func (k EvaluatorKind) String() string {
	if k == EvaluatorGeneric {
		return "generic"
	}
	return "compiled"
}

// plan applies one property set's levels to items. The two evaluator
// strategies differ only in their plan.
type plan interface {
	group(g *GroupItem)
	data(g *GroupItem) any
	key(it *Item) any
	instance(it *Item)
	enter(it *Item)
	exit(it *Item)
}

// evaluator drives reconciliation and evaluation through a plan.
type evaluator struct {
	engine   *Engine
	kind     EvaluatorKind
	mark     *Mark
	ps       *PropertySet
	typ      MarkType
	datatype reflect.Type
	miss     impliedMask
	plan     plan
	graph    *linkGraph
	source   string
}

func newEvaluator(e *Engine, m *Mark, ps *PropertySet) (*evaluator, error) {
	if err := checkNames(ps); err != nil {
		return nil, fmt.Errorf("%s mark: %w", m.typ, err)
	}
	ev := &evaluator{
		engine: e,
		kind:   e.evalKind,
		mark:   m,
		ps:     ps,
		typ:    m.typ,
		miss:   impliedMaskOf(ps.Instance),
	}
	if p := ps.Group.get("datatype"); p != nil {
		if !p.IsConst() {
			return nil, &PropertyError{Name: "datatype", Value: "function", Err: ErrInvalidValue}
		}
		t, ok := p.Object(nil).(reflect.Type)
		if !ok && p.Object(nil) != nil {
			return nil, &PropertyError{Name: "datatype", Value: p.Object(nil), Err: ErrInvalidValue}
		}
		if t != anyType {
			ev.datatype = t
		}
	}
	switch e.evalKind {
	case EvaluatorGeneric:
		ev.plan = &genericPlan{ps: ps}
	default:
		cp, src, err := e.compiler.compile(m.typ, ps)
		if err != nil {
			return nil, err
		}
		ev.plan, ev.source = cp, src
	}
	if m.typ == MarkLink {
		ev.graph = &linkGraph{}
	}
	return ev, nil
}

func (ev *evaluator) Strategy() EvaluatorKind { return ev.kind }

func (ev *evaluator) Datatype() reflect.Type {
	if ev.datatype == nil {
		return anyType
	}
	return ev.datatype
}

// Source returns the generated source of a compiled evaluator, or "".
func (ev *evaluator) Source() string { return ev.source }

func (ev *evaluator) Data(g *GroupItem) iter.Seq[any] {
	return dataSeq(ev.plan.data(g))
}

func (ev *evaluator) checkDatum(d any) error {
	t := ev.datatype
	if t == nil {
		return nil
	}
	if d == nil {
		switch t.Kind() {
		case reflect.Interface, reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
			return nil
		}
		return fmt.Errorf("%w: nil is not %v", ErrDatatype, t)
	}
	if dt := reflect.TypeOf(d); !dt.AssignableTo(t) {
		return fmt.Errorf("%w: %v is not %v", ErrDatatype, dt, t)
	}
	return nil
}

// keyOf evaluates the key function for datum d at index i.
func (ev *evaluator) keyOf(g *GroupItem, d any, i int) (any, error) {
	probe := Item{Index: i, Data: d, Group: g, Visible: true}
	k := ev.plan.key(&probe)
	if k != nil && !reflect.TypeOf(k).Comparable() {
		return nil, fmt.Errorf("key %v of type %T is not comparable", k, k)
	}
	return k, nil
}

// Build reconciles the mark's group under panel. Items are matched to data
// by key when animating so that reordered data keeps item identity and
// departing items stay as zombies for their exit transition; otherwise
// items are reused by position.
func (ev *evaluator) Build(m *Mark, proto *GroupItem, panel *Item, animate bool) (*GroupItem, error) {
	idx := m.treeIndex
	for len(panel.Layers) <= idx {
		panel.Layers = append(panel.Layers, nil)
	}
	g := panel.Layers[idx]
	if g == nil || g.mark != m {
		g = newGroupItem(m, panel)
		panel.Layers[idx] = g
	} else {
		g.SetDirty(false)
	}
	g.Item.Index = idx
	g.panel = panel
	g.proto = proto
	g.props.Store(0)
	g.set(flagModified, false)

	for _, v := range ev.ps.Vars {
		v.prop.Observe()
	}
	ev.plan.group(g)

	prev := len(g.Items)
	old := g.Items
	var (
		byKey   map[any]*Item
		oldKeys []any
		items   = g.Items
	)
	if animate {
		byKey = make(map[any]*Item, prev)
		oldKeys = make([]any, prev)
		for i, it := range old {
			if it == nil {
				continue
			}
			k, err := ev.keyOf(g, it.Data, it.Index)
			if err != nil {
				return nil, err
			}
			oldKeys[i] = k
			byKey[k] = it
		}
		items = make([]*Item, 0, prev)
	}

	n := 0
	for d := range ev.Data(g) {
		if err := ev.checkDatum(d); err != nil {
			return nil, fmt.Errorf("%s mark datum %d: %w", m.typ, n, err)
		}
		var it *Item
		if byKey != nil {
			k, err := ev.keyOf(g, d, n)
			if err != nil {
				return nil, err
			}
			if x, ok := byKey[k]; ok {
				it = x
				delete(byKey, k)
			}
		} else if n < len(items) {
			it = items[n]
		}

		if it == nil {
			it = newItem(g, n, d)
		} else {
			if !sameValue(it.Data, d) {
				g.set(flagModified, true)
			}
			it.Index = n
			it.Data = d
			it.Group = g
			it.set(flagZombie|flagDead|flagBorn, false)
		}
		if animate {
			if it.shadow == nil {
				it.shadow = &shadow{}
			}
			it.shadow.from = it.State
		} else {
			it.shadow = nil
		}

		if byKey == nil && n < len(items) {
			items[n] = it
		} else {
			items = append(items, it)
		}
		n++
	}

	if animate {
		for i, it := range old {
			if it == nil || byKey[oldKeys[i]] != it {
				continue
			}
			delete(byKey, oldKeys[i])
			if it.Dead() {
				g.set(flagModified, true)
				continue
			}
			it.set(flagZombie, true)
			if it.shadow == nil {
				it.shadow = &shadow{}
			}
			it.shadow.from = it.State
			items = append(items, it)
		}
		g.Items = items
	} else {
		g.Items = items
		if n < len(items) {
			g.discard(n)
		}
	}
	if len(g.Items) != prev {
		g.SetDirty(true)
		g.set(flagModified, true)
	}

	g.handlers = ev.ps.Handlers
	if len(g.handlers[EventBuild]) > 0 {
		g.Fire(&Event{Type: EventBuild, When: ev.engine.now()}, nil)
	}
	return g, nil
}

// Evaluate computes instance properties for items [start, end). Zombies
// additionally get exit properties. When animating, the evaluated state
// becomes each item's target, born items start from their enter state, and
// every item is reset to its starting state for the transition to run.
func (ev *evaluator) Evaluate(g *GroupItem, start, end int, animate bool) (PropBits, error) {
	var bits PropBits
	for i := start; i < end && i < len(g.Items); i++ {
		it := g.Items[i]
		if it == nil {
			continue
		}
		before := it.State
		ev.plan.instance(it)
		if it.Zombie() {
			ev.plan.exit(it)
		}
		it.buildImplied(ev.typ, ev.miss)

		if animate && it.shadow != nil {
			sh := it.shadow
			sh.to = it.State
			if it.Born() {
				ev.plan.enter(it)
				it.buildImplied(ev.typ, ev.miss)
				sh.from = it.State
			}
			it.State = sh.from
			b := changedProps(&sh.from, &sh.to)
			if b != 0 {
				it.SetDirty(true)
			}
			bits |= b
			continue
		}
		if it.State != before {
			it.SetDirty(true)
		}
	}
	g.addChanged(bits)
	return bits, nil
}

// Transition returns a GroupTransition over g's animated items. When
// nothing changed, exiting items finish immediately and nil is returned.
func (ev *evaluator) Transition(g *GroupItem) Stepper {
	anims := animatorsFor(ev.typ, g.Changed())
	if len(anims) == 0 {
		for _, it := range g.Items {
			if it == nil {
				continue
			}
			if it.Zombie() {
				it.set(flagDead, true)
			}
			if it.shadow != nil {
				it.State = it.shadow.to
				it.shadow = nil
			}
		}
		return nil
	}
	return newGroupTransition(g, anims, ev.engine)
}

// checkNames rejects instance properties no evaluator can assign.
func checkNames(ps *PropertySet) error {
	for _, l := range []propertyList{ps.Instance, ps.Enter, ps.Exit} {
		for _, np := range l {
			if _, ok := instanceSetters[np.name]; !ok {
				return fmt.Errorf("%w: %q", ErrUnknownProperty, np.name)
			}
		}
	}
	return nil
}

// dataSeq adapts a data value to a sequence. nil yields a single nil datum,
// so a mark without data still produces one item; slices, arrays and
// iter.Seq[any] yield their elements; any other value is a single datum.
func dataSeq(v any) iter.Seq[any] {
	switch x := v.(type) {
	case nil:
		return func(yield func(any) bool) { yield(nil) }
	case []any:
		return func(yield func(any) bool) {
			for _, d := range x {
				if !yield(d) {
					return
				}
			}
		}
	case iter.Seq[any]:
		return x
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		return func(yield func(any) bool) {
			for i := 0; i < rv.Len(); i++ {
				if !yield(rv.Index(i).Interface()) {
					return
				}
			}
		}
	}
	return func(yield func(any) bool) { yield(v) }
}
