package render

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
)

// Screenshot queues a capture of the next drawn frame. The PNG is written
// to the display's screenshot directory as <timestamp>_<label>.png.
func (d *Display) Screenshot(label string) {
	d.mu.Lock()
	d.shots = append(d.shots, label)
	d.mu.Unlock()
}

// SetScreenshotDir sets where screenshots are written.
func (d *Display) SetScreenshotDir(dir string) {
	d.mu.Lock()
	d.shotDir = dir
	d.mu.Unlock()
}

// flushScreenshots writes the frame on screen for every queued label.
func (d *Display) flushScreenshots(screen *ebiten.Image) {
	d.mu.Lock()
	labels, dir := d.shots, d.shotDir
	d.shots = nil
	d.mu.Unlock()
	if len(labels) == 0 {
		return
	}

	logger := d.scene.Engine().Logger()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		logger.Warn("screenshot failed", "dir", dir, "err", err)
		return
	}

	b := screen.Bounds()
	pixels := make([]byte, 4*b.Dx()*b.Dy())
	screen.ReadPixels(pixels)
	img := unpremultiply(pixels, b.Dx(), b.Dy())

	stamp := time.Now().Format("20060102_150405")
	for _, label := range labels {
		path := filepath.Join(dir, stamp+"_"+sanitizeLabel(label)+".png")
		if err := writePNG(path, img); err != nil {
			logger.Warn("screenshot failed", "path", path, "err", err)
		}
	}
}

// unpremultiply converts premultiplied RGBA pixels to straight alpha.
func unpremultiply(pixels []byte, w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i+3 < len(pixels) && i+3 < len(img.Pix); i += 4 {
		r, g, b, a := pixels[i], pixels[i+1], pixels[i+2], pixels[i+3]
		if a > 0 && a < 255 {
			r = uint8(min(int(r)*255/int(a), 255))
			g = uint8(min(int(g)*255/int(a), 255))
			b = uint8(min(int(b)*255/int(a), 255))
		}
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = r, g, b, a
	}
	return img
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}

// sanitizeLabel keeps file-name safe characters and replaces the rest
// with underscores.
func sanitizeLabel(label string) string {
	label = strings.TrimSpace(label)
	if label == "" {
		return "unlabeled"
	}
	var b strings.Builder
	b.Grow(len(label))
	for _, r := range label {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z',
			r >= '0' && r <= '9', r == '-', r == '.':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
