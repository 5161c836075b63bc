//go:build !headless

// Package graphics provides host-adapter implementations of the
// console's Display and InputSource ports: an ebiten-backed windowed
// adapter, and a headless adapter for smoke runs and tests.
package graphics

import (
	"fmt"
	"image"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/nesgo/nesgo/internal/console"
	"github.com/nesgo/nesgo/internal/input"
	"github.com/nesgo/nesgo/internal/ppu"
)

// EbitenGame drives one Console through ebiten's Update/Draw loop. It
// implements both console.Display (Present) and console.InputSource
// (ButtonState), and ebiten.Game.
type EbitenGame struct {
	c *console.Console

	frame   ppu.Framebuffer
	img     *image.RGBA
	texture *ebiten.Image

	scale int
}

var player1Keys = map[input.Button]ebiten.Key{
	input.ButtonUp:     ebiten.KeyW,
	input.ButtonDown:   ebiten.KeyS,
	input.ButtonLeft:   ebiten.KeyA,
	input.ButtonRight:  ebiten.KeyD,
	input.ButtonA:      ebiten.KeyJ,
	input.ButtonB:      ebiten.KeyK,
	input.ButtonStart:  ebiten.KeyEnter,
	input.ButtonSelect: ebiten.KeySpace,
}

// NewEbitenGame builds an EbitenGame rendering at the given integer
// window scale. Call Attach before running it, since the Console
// itself is typically constructed with this EbitenGame as its
// Display and InputSource.
func NewEbitenGame(scale int) *EbitenGame {
	if scale <= 0 {
		scale = 1
	}
	return &EbitenGame{
		img:     image.NewRGBA(image.Rect(0, 0, 256, 240)),
		texture: ebiten.NewImage(256, 240),
		scale:   scale,
	}
}

// Attach sets the Console this EbitenGame drives. It must be called
// before the game loop starts.
func (g *EbitenGame) Attach(c *console.Console) {
	g.c = c
}

// Present implements console.Display.
func (g *EbitenGame) Present(fb *ppu.Framebuffer) {
	g.frame = *fb
}

// ButtonState implements console.InputSource.
func (g *EbitenGame) ButtonState(b input.Button) bool {
	key, ok := player1Keys[b]
	if !ok {
		return false
	}
	return ebiten.IsKeyPressed(key)
}

// Update implements ebiten.Game. One ebiten tick advances the console
// by exactly one frame, matching ebiten's default 60Hz tick rate to
// the NES's own 60Hz frame rate.
func (g *EbitenGame) Update() error {
	if g.c == nil {
		return nil
	}
	if g.c.Halted() {
		return fmt.Errorf("nesgo: cpu halted: %s", g.c.HaltReason())
	}
	g.c.RunFrame()
	return nil
}

// Draw implements ebiten.Game.
func (g *EbitenGame) Draw(screen *ebiten.Image) {
	for y := 0; y < 240; y++ {
		for x := 0; x < 256; x++ {
			r, gr, b := ppu.ColorToRGB(g.frame[y][x])
			g.img.SetRGBA(x, y, color.RGBA{R: r, G: gr, B: b, A: 255})
		}
	}
	g.texture.WritePixels(g.img.Pix)

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(g.scale), float64(g.scale))
	screen.DrawImage(g.texture, op)
}

// Layout implements ebiten.Game.
func (g *EbitenGame) Layout(outsideWidth, outsideHeight int) (int, int) {
	return 256 * g.scale, 240 * g.scale
}

// Run opens a window titled title and drives game until it quits or
// the console halts.
func Run(title string, game *EbitenGame) error {
	width, height := game.Layout(0, 0)
	ebiten.SetWindowTitle(title)
	ebiten.SetWindowSize(width, height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	return ebiten.RunGame(game)
}
