// Package console orchestrates the CPU, PPU, bus, and controller into
// a running NES: it owns the per-scanline cycle budget and drives one
// frame's worth of emulation at a time.
package console

import (
	"context"
	"fmt"

	"github.com/nesgo/nesgo/internal/bus"
	"github.com/nesgo/nesgo/internal/cpu"
	"github.com/nesgo/nesgo/internal/input"
	"github.com/nesgo/nesgo/internal/ppu"
	"github.com/nesgo/nesgo/internal/rom"
)

const (
	scanlinesPerFrame    = 262
	cpuCyclesPerScanline = 113
)

// Display receives one fully rendered framebuffer per emulated frame.
// Implementations decide how (or whether) to present it; the console
// never performs pixel format conversion itself.
type Display interface {
	Present(fb *ppu.Framebuffer)
}

// InputSource reports the live state of a single controller's buttons,
// polled once per frame.
type InputSource interface {
	ButtonState(b input.Button) bool
}

// Console wires together one cartridge's CPU, PPU, bus, and controller
// 1, and drives them forward one frame at a time.
type Console struct {
	cpu        *cpu.CPU
	ppu        *ppu.PPU
	bus        *bus.Bus
	controller *input.Controller

	display     Display
	inputSource InputSource

	overrun int
	bank    int

	frame uint64
}

// New constructs a Console from a parsed ROM image. If the image uses
// a mapper other than 0, it returns a *rom.ErrUnsupportedMapper for
// that mapper ID alongside a fully wired Console.
func New(img *rom.Image, display Display, inputSource InputSource) (*Console, error) {
	var unsupported error
	if img.MapperID != 0 {
		unsupported = &rom.ErrUnsupportedMapper{MapperID: img.MapperID}
	}

	p := ppu.New(ppu.Mirroring(img.Mirroring))
	p.LoadCHR(img.CHRBank)

	controller := input.New()
	b := bus.New(p, controller)
	b.LoadPRG(img.PRGBank1, img.PRGBank2)

	c := cpu.New(b)
	c.Reset()
	p.Reset()

	console := &Console{
		cpu:         c,
		ppu:         p,
		bus:         b,
		controller:  controller,
		display:     display,
		inputSource: inputSource,
	}
	return console, unsupported
}

// Run drives the console frame by frame until ctx is cancelled or the
// CPU halts on an illegal opcode.
func (c *Console) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		c.RunFrame()
		if c.cpu.Halted() {
			return fmt.Errorf("console: cpu halted: %s", c.cpu.HaltReason())
		}
	}
}

// RunFrame advances the console by exactly one frame: it samples
// InputSource once, steps every scanline, and presents the resulting
// framebuffer to Display.
func (c *Console) RunFrame() {
	c.sampleInput()

	for scanline := 0; scanline < scanlinesPerFrame; scanline++ {
		if c.cpu.Halted() {
			return
		}

		budget := cpuCyclesPerScanline
		c.bank += 2
		if c.bank >= 3 {
			budget++
			c.bank -= 3
		}

		c.overrun = c.cpu.Emulate(budget + c.overrun)
		if c.ppu.Step() {
			c.cpu.RequestNMI()
		}
	}

	c.frame++
	if c.display != nil {
		c.display.Present(c.ppu.Framebuffer())
	}
}

func (c *Console) sampleInput() {
	if c.inputSource == nil {
		return
	}
	for b := input.Button(0); b < input.ButtonCount; b++ {
		c.controller.SetButtonState(b, c.inputSource.ButtonState(b))
	}
}

// Frame reports how many frames have completed.
func (c *Console) Frame() uint64 {
	return c.frame
}

// Halted reports whether the CPU has stopped on an illegal opcode.
func (c *Console) Halted() bool {
	return c.cpu.Halted()
}

// HaltReason describes why the CPU halted. It is only meaningful once
// Halted reports true.
func (c *Console) HaltReason() string {
	return c.cpu.HaltReason()
}
