package marks

// Field accessors shared by both evaluator strategies.
var (
	numberFields = map[string]func(it *Item) *float64{
		"left":        func(it *Item) *float64 { return &it.Left },
		"right":       func(it *Item) *float64 { return &it.Right },
		"top":         func(it *Item) *float64 { return &it.Top },
		"bottom":      func(it *Item) *float64 { return &it.Bottom },
		"width":       func(it *Item) *float64 { return &it.Width },
		"height":      func(it *Item) *float64 { return &it.Height },
		"alpha":       func(it *Item) *float64 { return &it.Alpha },
		"size":        func(it *Item) *float64 { return &it.Size },
		"radius":      func(it *Item) *float64 { return &it.Radius },
		"textAngle":   func(it *Item) *float64 { return &it.TextAngle },
		"textMargin":  func(it *Item) *float64 { return &it.TextMargin },
		"startAngle":  func(it *Item) *float64 { return &it.StartAngle },
		"endAngle":    func(it *Item) *float64 { return &it.EndAngle },
		"angle":       func(it *Item) *float64 { return &it.Angle },
		"innerRadius": func(it *Item) *float64 { return &it.InnerRadius },
		"outerRadius": func(it *Item) *float64 { return &it.OuterRadius },
		"sourceX":     func(it *Item) *float64 { return &it.SourceX },
		"sourceY":     func(it *Item) *float64 { return &it.SourceY },
		"targetX":     func(it *Item) *float64 { return &it.TargetX },
		"targetY":     func(it *Item) *float64 { return &it.TargetY },
		"delay":       func(it *Item) *float64 { return &it.Delay },
	}
	stringFields = map[string]func(it *Item, s string){
		"text":         func(it *Item, s string) { it.Text = s },
		"url":          func(it *Item, s string) { it.URL = s },
		"shape":        func(it *Item, s string) { it.Shape = Shape(s) },
		"textAlign":    func(it *Item, s string) { it.TextAlign = TextAlign(s) },
		"textBaseline": func(it *Item, s string) { it.TextBaseline = TextBaseline(s) },
	}
	boolFields = map[string]func(it *Item) *bool{
		"visible": func(it *Item) *bool { return &it.Visible },
		"cache":   func(it *Item) *bool { return &it.Cache },
	}
)

type setter func(it *Item, p *Property)

// instanceSetters maps every assignable instance property to its setter.
var instanceSetters = map[string]setter{
	"fill":   func(it *Item, p *Property) { it.Fill = p.Fill(it) },
	"stroke": func(it *Item, p *Property) { it.Stroke = p.Stroke(it) },
	"font":   func(it *Item, p *Property) { it.Font = p.Font(it) },
	"ease":   func(it *Item, p *Property) { it.Ease = toEasing(p.Object(it)) },
}

func init() {
	for name, field := range numberFields {
		instanceSetters[name] = func(it *Item, p *Property) { *field(it) = p.Number(it) }
	}
	for name, field := range stringFields {
		instanceSetters[name] = func(it *Item, p *Property) { field(it, p.Text(it)) }
	}
	for name, field := range boolFields {
		instanceSetters[name] = func(it *Item, p *Property) { *field(it) = p.Bool(it) }
	}
}

func toEasing(v any) Easing {
	switch e := v.(type) {
	case Easing:
		return e
	case func(float64) float64:
		return e
	}
	return nil
}

// groupSetters assigns group-level properties other than data and datatype.
var groupSetters = map[string]func(g *GroupItem, p *Property){
	"depth":       func(g *GroupItem, p *Property) { g.Depth = p.Number(&g.Item) },
	"segmented":   func(g *GroupItem, p *Property) { g.Segmented = p.Bool(&g.Item) },
	"interpolate": func(g *GroupItem, p *Property) { g.Interpolate = Interpolation(p.Text(&g.Item)) },
}

// genericPlan evaluates by looking up each property's setter by name on
// every application.
type genericPlan struct {
	ps *PropertySet
}

func (gp *genericPlan) group(g *GroupItem) {
	for _, np := range gp.ps.Group {
		if set, ok := groupSetters[np.name]; ok {
			set(g, np.prop)
		}
	}
}

func (gp *genericPlan) data(g *GroupItem) any {
	if gp.ps.Data == nil {
		return nil
	}
	return gp.ps.Data.Object(&g.Item)
}

func (gp *genericPlan) key(it *Item) any {
	if p := gp.ps.Keys.get("key"); p != nil {
		return p.Object(it)
	}
	return it.Index
}

func (gp *genericPlan) apply(l propertyList, it *Item) {
	for _, np := range l {
		instanceSetters[np.name](it, np.prop)
	}
}

func (gp *genericPlan) instance(it *Item) { gp.apply(gp.ps.Instance, it) }
func (gp *genericPlan) enter(it *Item)    { gp.apply(gp.ps.Enter, it) }
func (gp *genericPlan) exit(it *Item)     { gp.apply(gp.ps.Exit, it) }
