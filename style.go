package marks

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
)

// Fill is a solid paint. The zero Fill paints nothing.
type Fill struct {
	Color Color
	Solid bool
}

// FillNone paints nothing.
var FillNone = Fill{}

// SolidFill returns a fill painting c.
func SolidFill(c Color) Fill {
	return Fill{Color: c, Solid: true}
}

// IsNone reports whether f paints nothing.
func (f Fill) IsNone() bool { return !f.Solid }

// ParseFill parses "none", "#rgb", "#rrggbb", "#aarrggbb" or an SVG color name.
func ParseFill(spec string) (Fill, error) {
	s := strings.ToLower(strings.TrimSpace(spec))
	if s == "" || s == "none" {
		return FillNone, nil
	}
	if strings.HasPrefix(s, "#") {
		hex := s[1:]
		if len(hex) == 3 {
			hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
		}
		v, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return FillNone, &PropertyError{Name: "fill", Value: spec, Err: err}
		}
		switch len(hex) {
		case 6:
			return SolidFill(RGB(uint32(v))), nil
		case 8:
			return SolidFill(ARGB(uint32(v))), nil
		}
		return FillNone, &PropertyError{Name: "fill", Value: spec}
	}
	c, ok := colornames.Map[s]
	if !ok {
		return FillNone, &PropertyError{Name: "fill", Value: spec}
	}
	return SolidFill(Color{
		R: float64(c.R) / 255,
		G: float64(c.G) / 255,
		B: float64(c.B) / 255,
		A: float64(c.A) / 255,
	}), nil
}

// interpolateFill blends two fills. A missing side fades through the other
// side's color at zero alpha.
func interpolateFill(f float64, a, b Fill) Fill {
	switch {
	case a == b:
		return a
	case !a.Solid && !b.Solid:
		return FillNone
	case !a.Solid:
		a = SolidFill(b.Color.WithAlpha(0))
	case !b.Solid:
		b = SolidFill(a.Color.WithAlpha(0))
	}
	return SolidFill(a.Color.lerp(b.Color, f))
}

// Stroke outlines a shape. The zero Stroke draws nothing.
type Stroke struct {
	Width float64
	Fill  Fill
}

// StrokeNone draws nothing.
var StrokeNone = Stroke{}

// SolidStroke returns a stroke of the given width and color.
func SolidStroke(width float64, c Color) Stroke {
	return Stroke{Width: width, Fill: SolidFill(c)}
}

// IsNone reports whether s draws nothing.
func (s Stroke) IsNone() bool { return s.Width <= 0 || s.Fill.IsNone() }

// ParseStroke parses "<width> <fill>" or "none". A bare fill implies width 1.
func ParseStroke(spec string) (Stroke, error) {
	fields := strings.Fields(spec)
	switch len(fields) {
	case 0:
		return StrokeNone, nil
	case 1:
		if fields[0] == "none" {
			return StrokeNone, nil
		}
		f, err := ParseFill(fields[0])
		if err != nil {
			return StrokeNone, err
		}
		return Stroke{Width: 1, Fill: f}, nil
	case 2:
		w, err := strconv.ParseFloat(strings.TrimSuffix(fields[0], "px"), 64)
		if err != nil {
			return StrokeNone, &PropertyError{Name: "stroke", Value: spec, Err: err}
		}
		f, err := ParseFill(fields[1])
		if err != nil {
			return StrokeNone, err
		}
		return Stroke{Width: w, Fill: f}, nil
	}
	return StrokeNone, &PropertyError{Name: "stroke", Value: spec}
}

func interpolateStroke(f float64, a, b Stroke) Stroke {
	if a == b {
		return a
	}
	return Stroke{
		Width: lerp(a.Width, b.Width, f),
		Fill:  interpolateFill(f, a.Fill, b.Fill),
	}
}

// Font describes a label typeface.
type Font struct {
	Name      string
	Size      float64
	Bold      bool
	Italic    bool
	SmallCaps bool
}

// DefaultFont is the label font when none is declared.
var DefaultFont = Font{Name: "Helvetica", Size: 12}

// ParseFont parses "[italic] [small-caps] [bold] <size> <name>". A spec with
// only a name uses size 10.
func ParseFont(spec string) (Font, error) {
	tok := strings.Fields(spec)
	if len(tok) == 0 {
		return Font{}, &PropertyError{Name: "font", Value: spec}
	}
	f := Font{Name: tok[len(tok)-1], Size: 10}
	tok = tok[:len(tok)-1]
	if n := len(tok); n > 0 {
		size, err := strconv.ParseFloat(strings.TrimSuffix(tok[n-1], "px"), 64)
		if err != nil {
			return Font{}, &PropertyError{Name: "font", Value: spec, Err: err}
		}
		f.Size = size
		tok = tok[:n-1]
	}
	for _, t := range tok {
		switch t {
		case "bold":
			f.Bold = true
		case "italic":
			f.Italic = true
		case "small-caps":
			f.SmallCaps = true
		default:
			return Font{}, &PropertyError{Name: "font", Value: spec,
				Err: fmt.Errorf("unrecognized font option %q", t)}
		}
	}
	return f, nil
}

// String formats f in the form ParseFont accepts.
func (f Font) String() string {
	var sb strings.Builder
	if f.Italic {
		sb.WriteString("italic ")
	}
	if f.SmallCaps {
		sb.WriteString("small-caps ")
	}
	if f.Bold {
		sb.WriteString("bold ")
	}
	sb.WriteString(strconv.FormatFloat(f.Size, 'g', -1, 64))
	sb.WriteByte(' ')
	sb.WriteString(f.Name)
	return sb.String()
}

// interpolateFont lerps the size and switches face and options halfway.
func interpolateFont(f float64, a, b Font) Font {
	out := b
	if f < 0.5 {
		out = a
	}
	out.Size = lerp(a.Size, b.Size, f)
	return out
}
