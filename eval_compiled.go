package marks

import (
	"fmt"
	"log/slog"
	"strings"
	"text/template"

	"github.com/phanxgames/marks/internal/lru"
)

// The compiled strategy renders a property set into source text describing
// a specialized evaluator, then builds a plan of typed closures from it.
// Structurally identical property sets render the same source, so the
// closure shape is built once per source and cached; binding a cached shape
// to a new set only captures that set's constants and functions.

const planSource = `// {{.Type}} evaluator
func group(g *GroupItem) {
{{- range .Group}}
	g.{{.Field}} = {{.Expr}}
{{- end}}
}

func data(g *GroupItem) any {
	return {{.Data}}
}

func key(it *Item) any {
	return {{.Key}}
}
{{range $level := .Levels}}
func {{$level.Name}}(it *Item) {
{{- range $level.Entries}}
	it.{{.Field}} = {{.Expr}}
{{- end}}
}
{{end}}`

type sourceEntry struct {
	Field string
	Expr  string
}

type sourceLevel struct {
	Name    string
	Entries []sourceEntry
}

type sourceModel struct {
	Type   string
	Group  []sourceEntry
	Data   string
	Key    string
	Levels []sourceLevel
}

// op assigns one property of an item.
type op func(it *Item)

// binder captures one property into an op.
type binder func(p *Property) op

// planShape is the cached, property-independent part of a compiled plan.
type planShape struct {
	instance, enter, exit []binder
	key                   func(p *Property) func(*Item) any
}

// compiledPlan applies a property set through pre-bound closures.
type compiledPlan struct {
	ps                         *PropertySet
	groupOps                   []func(g *GroupItem)
	dataFn                     func(g *GroupItem) any
	keyFn                      func(it *Item) any
	instOps, enterOps, exitOps []op
}

func (cp *compiledPlan) group(g *GroupItem) {
	for _, fn := range cp.groupOps {
		fn(g)
	}
}

func (cp *compiledPlan) data(g *GroupItem) any {
	if cp.dataFn == nil {
		return nil
	}
	return cp.dataFn(g)
}

func (cp *compiledPlan) key(it *Item) any { return cp.keyFn(it) }

func (cp *compiledPlan) instance(it *Item) {
	for _, o := range cp.instOps {
		o(it)
	}
}

func (cp *compiledPlan) enter(it *Item) {
	for _, o := range cp.enterOps {
		o(it)
	}
}

func (cp *compiledPlan) exit(it *Item) {
	for _, o := range cp.exitOps {
		o(it)
	}
}

// compiler renders and caches plan shapes.
type compiler struct {
	tmpl   *template.Template
	shapes *lru.Cache[string, *planShape]
	logger *slog.Logger
}

func newCompiler(cacheSize int, logger *slog.Logger) *compiler {
	return &compiler{
		tmpl:   template.Must(template.New("plan").Parse(planSource)),
		shapes: lru.New[string, *planShape](cacheSize),
		logger: logger,
	}
}

// compile returns a plan bound to ps and the source it was derived from.
func (c *compiler) compile(t MarkType, ps *PropertySet) (*compiledPlan, string, error) {
	src, err := c.source(t, ps)
	if err != nil {
		return nil, "", err
	}
	shape, err := c.shapes.GetOrCreate(src, func() (*planShape, error) {
		c.logger.Debug("compiled evaluator plan", "mark", t.String(), "bytes", len(src))
		return newPlanShape(ps), nil
	})
	if err != nil {
		return nil, "", err
	}

	cp := &compiledPlan{
		ps:       ps,
		instOps:  bindAll(shape.instance, ps.Instance),
		enterOps: bindAll(shape.enter, ps.Enter),
		exitOps:  bindAll(shape.exit, ps.Exit),
	}
	for _, np := range ps.Group {
		if set, ok := groupSetters[np.name]; ok {
			p := np.prop
			cp.groupOps = append(cp.groupOps, func(g *GroupItem) { set(g, p) })
		}
	}
	if ps.Data != nil {
		data := ps.Data
		cp.dataFn = func(g *GroupItem) any { return data.Object(&g.Item) }
	}
	if p := ps.Keys.get("key"); p != nil {
		cp.keyFn = shape.key(p)
	} else {
		cp.keyFn = func(it *Item) any { return it.Index }
	}
	return cp, src, nil
}

func bindAll(bs []binder, l propertyList) []op {
	ops := make([]op, len(l))
	for i, np := range l {
		ops[i] = bs[i](np.prop)
	}
	return ops
}

// source renders the evaluator source for ps. Constants appear as slots,
// not values, so the source depends only on names, kinds and forms.
func (c *compiler) source(t MarkType, ps *PropertySet) (string, error) {
	m := sourceModel{
		Type: t.String(),
		Data: "nil",
		Key:  "it.Index",
	}
	slot := 0
	expr := func(p *Property) string {
		slot++
		switch p.mode {
		case modeConst:
			return fmt.Sprintf("c%d /* %s */", slot, p.kind)
		case modeVar:
			return fmt.Sprintf("v%d.Get().(%s)", slot, p.kind)
		}
		return fmt.Sprintf("f%d(it) /* %s */", slot, p.kind)
	}
	for _, np := range ps.Group {
		m.Group = append(m.Group, sourceEntry{Field: exportName(np.name), Expr: expr(np.prop)})
	}
	if ps.Data != nil {
		m.Data = expr(ps.Data)
	}
	if p := ps.Keys.get("key"); p != nil {
		m.Key = expr(p)
	}
	for _, lv := range []struct {
		name string
		l    propertyList
	}{{"instance", ps.Instance}, {"enter", ps.Enter}, {"exit", ps.Exit}} {
		sl := sourceLevel{Name: lv.name}
		for _, np := range lv.l {
			sl.Entries = append(sl.Entries, sourceEntry{Field: exportName(np.name), Expr: expr(np.prop)})
		}
		m.Levels = append(m.Levels, sl)
	}

	var sb strings.Builder
	if err := c.tmpl.Execute(&sb, m); err != nil {
		return "", fmt.Errorf("render evaluator source: %w", err)
	}
	return sb.String(), nil
}

func exportName(name string) string {
	if name == "" {
		return name
	}
	return strings.ToUpper(name[:1]) + name[1:]
}

func newPlanShape(ps *PropertySet) *planShape {
	s := &planShape{
		instance: bindersFor(ps.Instance),
		enter:    bindersFor(ps.Enter),
		exit:     bindersFor(ps.Exit),
	}
	if p := ps.Keys.get("key"); p != nil {
		s.key = keyBinder(p.mode, p.kind)
	}
	return s
}

func bindersFor(l propertyList) []binder {
	bs := make([]binder, len(l))
	for i, np := range l {
		bs[i] = binderFor(np.name, np.prop.mode, np.prop.kind)
	}
	return bs
}

// binderFor picks the specialized closure for one property. Constants are
// folded at bind time and typed functions are called directly.
func binderFor(name string, mode propertyMode, kind Kind) binder {
	if field, ok := numberFields[name]; ok {
		switch {
		case mode == modeConst:
			return func(p *Property) op {
				v := p.Number(nil)
				return func(it *Item) { *field(it) = v }
			}
		case mode == modeFunc && kind == KindNumber:
			return func(p *Property) op {
				fn := p.numFn
				return func(it *Item) { *field(it) = fn(it) }
			}
		}
		return func(p *Property) op {
			return func(it *Item) { *field(it) = p.Number(it) }
		}
	}
	if field, ok := boolFields[name]; ok {
		switch {
		case mode == modeConst:
			return func(p *Property) op {
				v := p.Bool(nil)
				return func(it *Item) { *field(it) = v }
			}
		case mode == modeFunc && kind == KindBool:
			return func(p *Property) op {
				fn := p.boolFn
				return func(it *Item) { *field(it) = fn(it) }
			}
		}
		return func(p *Property) op {
			return func(it *Item) { *field(it) = p.Bool(it) }
		}
	}
	if set, ok := stringFields[name]; ok {
		switch {
		case mode == modeConst:
			return func(p *Property) op {
				v := p.Text(nil)
				return func(it *Item) { set(it, v) }
			}
		case mode == modeFunc && kind == KindString:
			return func(p *Property) op {
				fn := p.strFn
				return func(it *Item) { set(it, fn(it)) }
			}
		}
		return func(p *Property) op {
			return func(it *Item) { set(it, p.Text(it)) }
		}
	}
	switch name {
	case "fill":
		if mode == modeConst {
			return func(p *Property) op {
				v := p.Fill(nil)
				return func(it *Item) { it.Fill = v }
			}
		}
		return func(p *Property) op { return func(it *Item) { it.Fill = p.Fill(it) } }
	case "stroke":
		if mode == modeConst {
			return func(p *Property) op {
				v := p.Stroke(nil)
				return func(it *Item) { it.Stroke = v }
			}
		}
		return func(p *Property) op { return func(it *Item) { it.Stroke = p.Stroke(it) } }
	case "font":
		if mode == modeConst {
			return func(p *Property) op {
				v := p.Font(nil)
				return func(it *Item) { it.Font = v }
			}
		}
		return func(p *Property) op { return func(it *Item) { it.Font = p.Font(it) } }
	case "ease":
		if mode == modeConst {
			return func(p *Property) op {
				v := toEasing(p.Object(nil))
				return func(it *Item) { it.Ease = v }
			}
		}
		return func(p *Property) op { return func(it *Item) { it.Ease = toEasing(p.Object(it)) } }
	}
	set := instanceSetters[name]
	return func(p *Property) op { return func(it *Item) { set(it, p) } }
}

func keyBinder(mode propertyMode, kind Kind) func(p *Property) func(*Item) any {
	switch {
	case mode == modeConst:
		return func(p *Property) func(*Item) any {
			v := p.Object(nil)
			return func(*Item) any { return v }
		}
	case mode == modeFunc && kind == KindObject:
		return func(p *Property) func(*Item) any { return p.objFn }
	}
	return func(p *Property) func(*Item) any { return p.Object }
}
