package render

import (
	"image/color"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/font/basicfont"
)

// labelFaceSize is the pixel height of the bitmap face labels are drawn
// with; labels are scaled from it to their font size.
const labelFaceSize = 13

// Renderer draws commands onto an ebiten image. The zero value is not
// usable; create one with NewRenderer.
type Renderer struct {
	mu     sync.RWMutex
	images map[string]*ebiten.Image
	face   text.Face
	white  *ebiten.Image
}

// NewRenderer creates a renderer drawing labels with the basic bitmap face.
func NewRenderer() *Renderer {
	return &Renderer{
		images: make(map[string]*ebiten.Image),
		face:   text.NewGoXFace(basicfont.Face7x13),
	}
}

// RegisterImage makes img the picture drawn by image marks whose url
// property equals url.
func (r *Renderer) RegisterImage(url string, img *ebiten.Image) {
	r.mu.Lock()
	r.images[url] = img
	r.mu.Unlock()
}

// whitePixel returns a lazily created 1x1 white image used as the source
// texture of untextured meshes.
func (r *Renderer) whitePixel() *ebiten.Image {
	if r.white == nil {
		r.white = ebiten.NewImage(1, 1)
		r.white.Fill(color.RGBA{R: 255, G: 255, B: 255, A: 255})
	}
	return r.white
}

// Submit draws cmds onto dst in order. It must be called from ebiten's
// draw callback.
func (r *Renderer) Submit(dst *ebiten.Image, cmds []Command) {
	for i := range cmds {
		cmd := &cmds[i]
		switch cmd.Kind {
		case KindFill, KindStroke:
			r.submitMesh(dst, cmd)
		case KindText:
			r.submitText(dst, cmd)
		case KindImage:
			r.submitImage(dst, cmd)
		}
	}
}

func (r *Renderer) submitMesh(dst *ebiten.Image, cmd *Command) {
	if len(cmd.Verts) == 0 || len(cmd.Inds) == 0 {
		return
	}
	var op ebiten.DrawTrianglesOptions
	op.AntiAlias = true
	dst.DrawTriangles(cmd.Verts, cmd.Inds, r.whitePixel(), &op)
}

func (r *Renderer) submitText(dst *ebiten.Image, cmd *Command) {
	s := cmd.Size / labelFaceSize
	op := &text.DrawOptions{}
	op.GeoM.Scale(s, s)
	op.GeoM.Rotate(cmd.Angle)
	op.GeoM.Translate(cmd.X, cmd.Y)
	a := float32(cmd.Color.A * cmd.Alpha)
	op.ColorScale.Scale(float32(cmd.Color.R)*a, float32(cmd.Color.G)*a, float32(cmd.Color.B)*a, a)
	text.Draw(dst, cmd.Text, r.face, op)
}

func (r *Renderer) submitImage(dst *ebiten.Image, cmd *Command) {
	r.mu.RLock()
	img := r.images[cmd.URL]
	r.mu.RUnlock()
	if img == nil {
		return
	}
	b := img.Bounds()
	op := &ebiten.DrawImageOptions{}
	if cmd.W > 0 && cmd.H > 0 && b.Dx() > 0 && b.Dy() > 0 {
		op.GeoM.Scale(cmd.W/float64(b.Dx()), cmd.H/float64(b.Dy()))
	}
	op.GeoM.Translate(cmd.X, cmd.Y)
	op.ColorScale.ScaleAlpha(float32(cmd.Alpha))
	op.Filter = ebiten.FilterLinear
	dst.DrawImage(img, op)
}
