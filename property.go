package marks

import (
	"fmt"
	"math"
	"reflect"
	"sync"
	"sync/atomic"
)

// Kind is the declared value kind of a Property.
type Kind uint8

const (
	KindObject Kind = iota // arbitrary value
	KindBool               // boolean
	KindNumber             // float64
	KindString             // string
	KindFill               // Fill
	KindStroke             // Stroke
	KindFont               // Font
)

var kindNames = [...]string{"object", "bool", "number", "string", "fill", "stroke", "font"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

type propertyMode uint8

const (
	modeConst propertyMode = iota
	modeFunc
	modeVar
)

func (m propertyMode) String() string {
	switch m {
	case modeConst:
		return "const"
	case modeFunc:
		return "func"
	default:
		return "var"
	}
}

// Property is a value source for one mark property: a constant, a function
// of the item being evaluated, or a Variable. Properties are compared by
// pointer identity when deciding whether a mark's definitions changed, so a
// Property should be created once and reused rather than rebuilt per update.
type Property struct {
	kind Kind
	mode propertyMode

	// constant forms
	cBool   bool
	cNum    float64
	cStr    string
	cFill   Fill
	cStroke Stroke
	cFont   Font
	cObj    any

	// function forms; exactly one is set for modeFunc
	boolFn   func(*Item) bool
	numFn    func(*Item) float64
	strFn    func(*Item) string
	fillFn   func(*Item) Fill
	strokeFn func(*Item) Stroke
	fontFn   func(*Item) Font
	objFn    func(*Item) any

	variable *Variable
	seen     atomic.Uint64
}

// Const returns a constant property. The kind is inferred from the Go type
// of v: bool, numeric types, string (and the string enum types), Fill, Color,
// Stroke and Font map to their kinds; anything else is an object.
func Const(v any) *Property {
	p := &Property{mode: modeConst, cObj: v}
	switch x := v.(type) {
	case bool:
		p.kind, p.cBool = KindBool, x
	case string:
		p.kind, p.cStr = KindString, x
	case Shape:
		p.kind, p.cStr = KindString, string(x)
	case TextAlign:
		p.kind, p.cStr = KindString, string(x)
	case TextBaseline:
		p.kind, p.cStr = KindString, string(x)
	case Interpolation:
		p.kind, p.cStr = KindString, string(x)
	case Fill:
		p.kind, p.cFill = KindFill, x
	case Color:
		p.kind, p.cFill = KindFill, SolidFill(x)
		p.cObj = p.cFill
	case Stroke:
		p.kind, p.cStroke = KindStroke, x
	case Font:
		p.kind, p.cFont = KindFont, x
	default:
		if f, ok := numeric(v); ok {
			p.kind, p.cNum = KindNumber, f
			p.cObj = f
		}
	}
	return p
}

// Fn returns a property computed by fn for every item. Functions returning
// float64, int, bool, string (or a string enum type), Fill, Color, Stroke or
// Font produce typed properties; any other result type is an object property.
func Fn[T any](fn func(*Item) T) *Property {
	p := &Property{mode: modeFunc}
	switch f := any(fn).(type) {
	case func(*Item) float64:
		p.kind, p.numFn = KindNumber, f
	case func(*Item) int:
		p.kind = KindNumber
		p.numFn = func(it *Item) float64 { return float64(f(it)) }
	case func(*Item) bool:
		p.kind, p.boolFn = KindBool, f
	case func(*Item) string:
		p.kind, p.strFn = KindString, f
	case func(*Item) Shape:
		p.kind = KindString
		p.strFn = func(it *Item) string { return string(f(it)) }
	case func(*Item) TextAlign:
		p.kind = KindString
		p.strFn = func(it *Item) string { return string(f(it)) }
	case func(*Item) TextBaseline:
		p.kind = KindString
		p.strFn = func(it *Item) string { return string(f(it)) }
	case func(*Item) Fill:
		p.kind, p.fillFn = KindFill, f
	case func(*Item) Color:
		p.kind = KindFill
		p.fillFn = func(it *Item) Fill { return SolidFill(f(it)) }
	case func(*Item) Stroke:
		p.kind, p.strokeFn = KindStroke, f
	case func(*Item) Font:
		p.kind, p.fontFn = KindFont, f
	default:
		p.kind = KindObject
		p.objFn = func(it *Item) any { return fn(it) }
	}
	return p
}

// Var returns a property reading the current value of v.
func Var(v *Variable) *Property {
	p := &Property{mode: modeVar, variable: v, kind: kindOf(v.Get())}
	p.seen.Store(v.Version())
	return p
}

// Kind returns the declared value kind.
func (p *Property) Kind() Kind { return p.kind }

// IsConst reports whether p is a constant.
func (p *Property) IsConst() bool { return p.mode == modeConst }

// Dirty reports whether p is backed by a Variable whose value changed since
// the last call to Observe.
func (p *Property) Dirty() bool {
	return p.mode == modeVar && p.seen.Load() != p.variable.Version()
}

// Observe records the backing Variable's current version.
func (p *Property) Observe() {
	if p.mode == modeVar {
		p.seen.Store(p.variable.Version())
	}
}

// Bool evaluates p as a boolean for it.
func (p *Property) Bool(it *Item) bool {
	switch p.mode {
	case modeConst:
		if p.kind == KindBool {
			return p.cBool
		}
		return toBool(p.cObj)
	case modeFunc:
		if p.boolFn != nil {
			return p.boolFn(it)
		}
	}
	return toBool(p.Object(it))
}

// Number evaluates p as a number for it. Values that are not numeric yield NaN.
func (p *Property) Number(it *Item) float64 {
	switch p.mode {
	case modeConst:
		if p.kind == KindNumber {
			return p.cNum
		}
		return toFloat(p.cObj)
	case modeFunc:
		if p.numFn != nil {
			return p.numFn(it)
		}
	}
	return toFloat(p.Object(it))
}

// Text evaluates p as a string for it.
func (p *Property) Text(it *Item) string {
	switch p.mode {
	case modeConst:
		if p.kind == KindString {
			return p.cStr
		}
		return toString(p.cObj)
	case modeFunc:
		if p.strFn != nil {
			return p.strFn(it)
		}
	}
	return toString(p.Object(it))
}

// Fill evaluates p as a Fill for it.
func (p *Property) Fill(it *Item) Fill {
	switch p.mode {
	case modeConst:
		if p.kind == KindFill {
			return p.cFill
		}
		return toFill(p.cObj)
	case modeFunc:
		if p.fillFn != nil {
			return p.fillFn(it)
		}
	}
	return toFill(p.Object(it))
}

// Stroke evaluates p as a Stroke for it.
func (p *Property) Stroke(it *Item) Stroke {
	switch p.mode {
	case modeConst:
		if p.kind == KindStroke {
			return p.cStroke
		}
		return toStroke(p.cObj)
	case modeFunc:
		if p.strokeFn != nil {
			return p.strokeFn(it)
		}
	}
	return toStroke(p.Object(it))
}

// Font evaluates p as a Font for it.
func (p *Property) Font(it *Item) Font {
	switch p.mode {
	case modeConst:
		if p.kind == KindFont {
			return p.cFont
		}
		return toFont(p.cObj)
	case modeFunc:
		if p.fontFn != nil {
			return p.fontFn(it)
		}
	}
	return toFont(p.Object(it))
}

// Object evaluates p as an untyped value for it.
func (p *Property) Object(it *Item) any {
	switch p.mode {
	case modeConst:
		return p.cObj
	case modeVar:
		return p.variable.Get()
	}
	switch {
	case p.objFn != nil:
		return p.objFn(it)
	case p.numFn != nil:
		return p.numFn(it)
	case p.boolFn != nil:
		return p.boolFn(it)
	case p.strFn != nil:
		return p.strFn(it)
	case p.fillFn != nil:
		return p.fillFn(it)
	case p.strokeFn != nil:
		return p.strokeFn(it)
	case p.fontFn != nil:
		return p.fontFn(it)
	}
	return nil
}

// Variable is a mutable boxed value with a version counter. The version
// advances only when Set stores a value different from the current one.
type Variable struct {
	mu      sync.RWMutex
	value   any
	version atomic.Uint64
}

// NewVariable returns a variable holding v.
func NewVariable(v any) *Variable {
	return &Variable{value: v}
}

// Get returns the current value.
func (v *Variable) Get() any {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.value
}

// Set stores x and reports whether the value changed.
func (v *Variable) Set(x any) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if sameValue(v.value, x) {
		return false
	}
	v.value = x
	v.version.Add(1)
	return true
}

// Version returns the number of changes applied so far.
func (v *Variable) Version() uint64 { return v.version.Load() }

func kindOf(v any) Kind {
	switch v.(type) {
	case bool:
		return KindBool
	case string, Shape, TextAlign, TextBaseline, Interpolation:
		return KindString
	case Fill, Color:
		return KindFill
	case Stroke:
		return KindStroke
	case Font:
		return KindFont
	}
	if _, ok := numeric(v); ok {
		return KindNumber
	}
	return KindObject
}

func numeric(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int8:
		return float64(x), true
	case int16:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint:
		return float64(x), true
	case uint8:
		return float64(x), true
	case uint16:
		return float64(x), true
	case uint32:
		return float64(x), true
	case uint64:
		return float64(x), true
	}
	return 0, false
}

func toFloat(v any) float64 {
	if f, ok := numeric(v); ok {
		return f
	}
	if b, ok := v.(bool); ok && b {
		return 1
	}
	return math.NaN()
}

func toBool(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case string:
		return x != ""
	}
	if f, ok := numeric(v); ok {
		return f != 0 && !math.IsNaN(f)
	}
	return true
}

func toString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case fmt.Stringer:
		return x.String()
	}
	return fmt.Sprint(v)
}

func toFill(v any) Fill {
	switch x := v.(type) {
	case Fill:
		return x
	case Color:
		return SolidFill(x)
	case string:
		f, _ := ParseFill(x)
		return f
	}
	return FillNone
}

func toStroke(v any) Stroke {
	switch x := v.(type) {
	case Stroke:
		return x
	case Color:
		return SolidStroke(1, x)
	case Fill:
		return Stroke{Width: 1, Fill: x}
	case string:
		s, _ := ParseStroke(x)
		return s
	}
	return StrokeNone
}

func toFont(v any) Font {
	switch x := v.(type) {
	case Font:
		return x
	case string:
		if f, err := ParseFont(x); err == nil {
			return f
		}
	}
	return DefaultFont
}

// sameValue compares two data values without panicking on uncomparable
// dynamic types. Slices compare by backing array and length, maps and funcs
// by pointer.
func sameValue(a, b any) bool {
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb {
		return false
	}
	if ta == nil {
		return true
	}
	if ta.Comparable() {
		return a == b
	}
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	switch va.Kind() {
	case reflect.Slice:
		return va.Len() == vb.Len() && va.Pointer() == vb.Pointer()
	case reflect.Map, reflect.Func:
		return va.Pointer() == vb.Pointer()
	}
	return false
}
