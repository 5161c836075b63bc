package graphics

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/nesgo/nesgo/internal/input"
	"github.com/nesgo/nesgo/internal/ppu"
)

// HeadlessDisplay implements console.Display without any real window.
// It keeps the last presented framebuffer for tests and automation,
// and can optionally dump a PPM snapshot every N frames.
type HeadlessDisplay struct {
	last       ppu.Framebuffer
	frameCount int

	dumpEvery int
	dumpDir   string
}

// NewHeadlessDisplay returns a HeadlessDisplay that never dumps PPM
// files. Call SetDumpInterval to enable periodic snapshots.
func NewHeadlessDisplay() *HeadlessDisplay {
	return &HeadlessDisplay{}
}

// SetDumpInterval makes Present write a PPM snapshot to dir every n
// frames. n <= 0 disables dumping.
func (d *HeadlessDisplay) SetDumpInterval(n int, dir string) {
	d.dumpEvery = n
	d.dumpDir = dir
}

// Present implements console.Display.
func (d *HeadlessDisplay) Present(fb *ppu.Framebuffer) {
	d.last = *fb
	d.frameCount++

	if d.dumpEvery > 0 && d.frameCount%d.dumpEvery == 0 {
		path := filepath.Join(d.dumpDir, fmt.Sprintf("frame_%05d.ppm", d.frameCount))
		if err := d.dumpPPM(path); err != nil {
			fmt.Fprintf(os.Stderr, "nesgo: failed to dump %s: %v\n", path, err)
		}
	}
}

// LastFrame returns the most recently presented framebuffer.
func (d *HeadlessDisplay) LastFrame() *ppu.Framebuffer {
	return &d.last
}

// FrameCount reports how many frames have been presented.
func (d *HeadlessDisplay) FrameCount() int {
	return d.frameCount
}

func (d *HeadlessDisplay) dumpPPM(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	fmt.Fprintf(file, "P3\n256 240\n255\n")
	for y := 0; y < 240; y++ {
		for x := 0; x < 256; x++ {
			r, g, b := ppu.ColorToRGB(d.last[y][x])
			fmt.Fprintf(file, "%d %d %d ", r, g, b)
		}
		fmt.Fprintf(file, "\n")
	}
	return nil
}

// NoInput is a console.InputSource that never reports a button held,
// for headless runs driven without a real controller.
type NoInput struct{}

// ButtonState implements console.InputSource.
func (NoInput) ButtonState(b input.Button) bool { return false }
