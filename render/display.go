package render

import (
	"fmt"
	"image/color"
	"sync"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/phanxgames/marks"
)

// Display shows a scene in an ebiten window. It registers a post task on
// the scene's scheduler that collects draw commands after every tick that
// ran work, and implements ebiten.Game to draw the latest collection.
// Mouse and key input is forwarded to the scene's event handlers.
//
//	d, err := render.NewDisplay(scene, 640, 480)
//	...
//	ebiten.RunGame(d)
type Display struct {
	scene    *marks.Scene
	renderer *Renderer
	input    *Input
	task     marks.Task
	keys     []ebiten.Key

	width, height int
	background    marks.Color

	mu      sync.Mutex
	cmds    []Command
	frames  uint64
	showFPS bool
	shots   []string
	shotDir string
}

// NewDisplay creates a display of the given logical size for s and starts
// collecting its items.
func NewDisplay(s *marks.Scene, width, height int) (*Display, error) {
	d := &Display{
		scene:      s,
		renderer:   NewRenderer(),
		input:      NewInput(s),
		shotDir:    "screenshots",
		width:      width,
		height:     height,
		background: marks.ColorWhite,
	}
	d.task = marks.NewTask("display/"+s.Name(), d.collect)
	if err := s.Engine().Scheduler().AddPost(d.task); err != nil {
		return nil, err
	}
	return d, nil
}

// Renderer returns the renderer used to draw the scene.
func (d *Display) Renderer() *Renderer { return d.renderer }

// Input returns the input router feeding the scene's event handlers.
func (d *Display) Input() *Input { return d.input }

// SetShowFPS toggles an FPS and TPS readout in the top-left corner.
func (d *Display) SetShowFPS(on bool) {
	d.mu.Lock()
	d.showFPS = on
	d.mu.Unlock()
}

// SetBackground sets the color the screen is cleared to.
func (d *Display) SetBackground(c marks.Color) {
	d.mu.Lock()
	d.background = c
	d.mu.Unlock()
}

// Commands returns the most recently collected commands.
func (d *Display) Commands() []Command {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.cmds
}

// Frames returns how many times the scene has been collected.
func (d *Display) Frames() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.frames
}

// Close stops collecting.
func (d *Display) Close() {
	d.scene.Engine().Scheduler().RemovePost(d.task)
}

func (d *Display) collect(time.Time) time.Duration {
	cmds := Collect(d.scene.Root())
	d.mu.Lock()
	d.cmds = cmds
	d.frames++
	d.mu.Unlock()
	return time.Second
}

// Update implements ebiten.Game. It only forwards input; scene updates are
// driven by the scheduler, not by the game loop. Once the engine is closed
// the returned error ends the game.
func (d *Display) Update() error {
	if err := d.input.FeedPointer(samplePointer()); err != nil {
		return err
	}
	d.keys = inpututil.AppendJustPressedKeys(d.keys[:0])
	for _, k := range d.keys {
		if err := d.input.FeedKey(k.String()); err != nil {
			return err
		}
	}
	return nil
}

// Draw implements ebiten.Game.
func (d *Display) Draw(screen *ebiten.Image) {
	d.mu.Lock()
	cmds, bg, fps := d.cmds, d.background, d.showFPS
	d.mu.Unlock()
	screen.Fill(color.Color(bg))
	d.renderer.Submit(screen, cmds)
	d.flushScreenshots(screen)
	if fps {
		ebitenutil.DebugPrint(screen, fmt.Sprintf("FPS: %.1f\nTPS: %.1f", ebiten.ActualFPS(), ebiten.ActualTPS()))
	}
}

// Layout implements ebiten.Game.
func (d *Display) Layout(int, int) (int, int) {
	return d.width, d.height
}
