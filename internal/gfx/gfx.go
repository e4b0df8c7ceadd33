// Package gfx shows the shapes of a scene program in a window.
package gfx

import (
	"errors"
	"fmt"
	"image/color"
	"sync"

	"blocks/internal/scene"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("blocks.gfx")

type Options struct {
	Width      int
	Height     int
	Title      string
	Background color.RGBA
	// Scale multiplies shape coordinates; program units are usually small.
	Scale float32
}

func DefaultOptions() Options {
	return Options{
		Width:      640,
		Height:     480,
		Title:      "Blocks",
		Background: color.RGBA{A: 255},
		Scale:      1,
	}
}

// Frame produces the shapes to draw. It is called once at start and again
// whenever the user asks for a reload.
type Frame func() ([]scene.Rect, error)

type state struct {
	mu       sync.Mutex
	opts     Options
	commands []rectCmd
	status   string
}

type rectCmd struct {
	x, y, w, h float32
	c          color.RGBA
}

func (r rectCmd) draw(dst *ebiten.Image) {
	vector.DrawFilledRect(dst, r.x, r.y, r.w, r.h, r.c, false)
}

func Run(opts Options, frame Frame) error {
	if opts.Width <= 0 || opts.Height <= 0 {
		return errors.New("preview window needs positive width/height")
	}
	if opts.Scale <= 0 {
		opts.Scale = 1
	}
	s := &state{opts: opts}
	if err := s.reload(frame); err != nil {
		return err
	}

	ebiten.SetWindowSize(opts.Width, opts.Height)
	ebiten.SetWindowTitle(opts.Title)
	return ebiten.RunGame(&ebitenGame{state: s, frame: frame})
}

// reload replaces the drawn shapes. A failing frame keeps the previous
// shapes and shows the error instead.
func (s *state) reload(frame Frame) error {
	rects, err := frame()
	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		log.Errorf("reload: %s", err)
		s.status = err.Error()
		return nil
	}
	s.commands = s.commands[:0]
	for _, r := range rects {
		s.commands = append(s.commands, rectCmd{
			x: r.X * s.opts.Scale,
			y: r.Y * s.opts.Scale,
			w: r.W * s.opts.Scale,
			h: r.H * s.opts.Scale,
			c: r.Color,
		})
	}
	s.status = fmt.Sprintf("%d shapes  [r] reload  [esc] quit", len(rects))
	log.Infof("drawing %d shapes", len(rects))
	return nil
}

type ebitenGame struct {
	state *state
	frame Frame
}

func (g *ebitenGame) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) || ebiten.IsWindowBeingClosed() {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		return g.state.reload(g.frame)
	}
	return nil
}

func (g *ebitenGame) Draw(screen *ebiten.Image) {
	s := g.state
	s.mu.Lock()
	bg := s.opts.Background
	cmds := append([]rectCmd(nil), s.commands...)
	status := s.status
	s.mu.Unlock()

	screen.Fill(bg)
	for _, cmd := range cmds {
		cmd.draw(screen)
	}
	ebitenutil.DebugPrint(screen, status)
}

func (g *ebitenGame) Layout(outsideWidth, outsideHeight int) (int, int) {
	s := g.state
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.opts.Width, s.opts.Height
}
