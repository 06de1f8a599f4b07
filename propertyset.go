package marks

import "slices"

// Property names are sorted into three evaluation levels. Group-level
// properties are evaluated once per group, key-level ones identify items
// and link endpoints, everything else is evaluated per item.
var (
	groupLevel = map[string]bool{
		"data": true, "datatype": true, "depth": true, "segmented": true, "interpolate": true,
	}
	keyLevel = map[string]bool{
		"key": true, "sourceNodes": true, "targetNodes": true,
		"sourceNodeKey": true, "targetNodeKey": true, "sourceKey": true, "targetKey": true,
	}
)

// PropertySet is a mark's fully resolved property bindings, with the
// prototype chain flattened. Dirty reports whether any binding differs by
// identity from the previous resolution, which is what forces the mark's
// evaluator to be rebuilt.
type PropertySet struct {
	Data     *Property
	Group    propertyList
	Instance propertyList
	Keys     propertyList
	Vars     propertyList
	Enter    propertyList
	Exit     propertyList
	Handlers map[string][]EventHandler
	Dirty    bool
}

// Names returns the property names of one level in evaluation order. level
// is one of "group", "key", "instance", "enter" or "exit".
func (ps *PropertySet) Names(level string) []string {
	var l propertyList
	switch level {
	case "group":
		l = ps.Group
	case "key":
		l = ps.Keys
	case "instance":
		l = ps.Instance
	case "enter":
		l = ps.Enter
	case "exit":
		l = ps.Exit
	}
	names := make([]string, len(l))
	for i := range l {
		names[i] = l[i].name
	}
	return names
}

// Get returns the resolved binding of name at any level, or nil.
func (ps *PropertySet) Get(name string) *Property {
	switch {
	case name == "data":
		return ps.Data
	case groupLevel[name]:
		return ps.Group.get(name)
	case keyLevel[name]:
		return ps.Keys.get(name)
	}
	return ps.Instance.get(name)
}

// Equal reports whether o binds every name to the identical Property.
func (ps *PropertySet) Equal(o *PropertySet) bool {
	if o == nil || ps.Data != o.Data {
		return false
	}
	return ps.Group.same(o.Group) &&
		ps.Instance.same(o.Instance) &&
		ps.Vars.same(o.Vars) &&
		ps.Keys.same(o.Keys) &&
		ps.Enter.same(o.Enter) &&
		ps.Exit.same(o.Exit)
}

// bind resolves the mark's effective properties. The chain is the mark's
// prototypes followed by the mark itself, visited from last to first so
// that the most specific definition of a name wins. From each chain link
// the walk follows proto() until it reaches the mark. Event handlers
// accumulate along the chain, except from the parent inherited through Add.
func (m *Mark) bind() *PropertySet {
	m.mu.RLock()
	chain := make([]*Mark, 0, len(m.protos)+1)
	chain = append(chain, m.protos...)
	chain = append(chain, m)
	inherited := -1
	if m.hasProto {
		inherited = slices.Index(m.protos, m.parent)
	}
	ps := &PropertySet{
		Vars:  m.vars,
		Enter: m.enter,
		Exit:  m.exit,
	}
	m.mu.RUnlock()

	var group, inst, keys propertyList
	for i := len(chain) - 1; i >= 0; i-- {
		p := chain[i]
		if i != inherited {
			p.mu.RLock()
			for name, hs := range p.handlers {
				if ps.Handlers == nil {
					ps.Handlers = make(map[string][]EventHandler)
				}
				ps.Handlers[name] = append(ps.Handlers[name], hs...)
			}
			p.mu.RUnlock()
		}
		for ; p != nil; p = p.proto() {
			p.mu.RLock()
			for _, np := range p.props {
				switch {
				case groupLevel[np.name]:
					if !group.has(np.name) {
						group = append(group, np)
					}
				case keyLevel[np.name]:
					if !keys.has(np.name) {
						keys = append(keys, np)
					}
				default:
					if !inst.has(np.name) {
						inst = append(inst, np)
					}
				}
			}
			p.mu.RUnlock()
			if p == m {
				break
			}
		}
	}

	group, ps.Data = group.remove("data")
	ps.Group = group
	ps.Instance = inst
	ps.Keys = keys
	ps.Dirty = !ps.Equal(m.pset)
	m.pset = ps
	return ps
}
