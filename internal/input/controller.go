// Package input implements the NES controller serial-shift strobe
// protocol at $4016.
package input

// Button identifies one of the eight NES controller buttons. Order
// matches the hardware shift-out sequence.
type Button int

const (
	ButtonA Button = iota
	ButtonB
	ButtonSelect
	ButtonStart
	ButtonUp
	ButtonDown
	ButtonLeft
	ButtonRight

	// ButtonCount is the number of buttons in the shift-out sequence.
	ButtonCount
)

const buttonCount = int(ButtonCount)

// strobeState is the controller's internal latch state. Named
// explicitly rather than a bare bool so the strobe protocol's three
// distinct phases are visible at the type level.
type strobeState int

const (
	stateIdle strobeState = iota
	stateStrobing
	stateShifting
)

// Controller models one NES controller port's serial shift register.
type Controller struct {
	// buttons is the live state set by the host; while Strobing it is
	// continuously re-sampled, matching real hardware.
	buttons [buttonCount]bool

	state     strobeState
	readIndex uint8

	// snapshot is latched from buttons the instant strobe goes low,
	// and is what Shifting reads actually shift out.
	snapshot [buttonCount]bool
}

// New returns a Controller with no buttons pressed.
func New() *Controller {
	return &Controller{}
}

// SetButtonState is called by the host's InputSource, outside the
// emulation step, to update which buttons are currently held.
func (c *Controller) SetButtonState(b Button, pressed bool) {
	c.buttons[b] = pressed
}

// Write handles a store to $4016. Writing 1 enters Strobing. Writing 0
// while Strobing latches the current buttons into snapshot, resets the
// read index, and transitions to Shifting.
func (c *Controller) Write(value uint8) {
	strobeHigh := value&1 != 0

	if strobeHigh {
		c.state = stateStrobing
		return
	}

	if c.state == stateStrobing {
		// Bug-compatibility quirk preserved from the source: all
		// buttons are cleared when the latch closes after exactly seven
		// reads since the previous latch (readIndex == 7). After a full
		// eight-read cycle readIndex is 8 and the buttons are kept.
		if c.readIndex == 7 {
			c.buttons = [buttonCount]bool{}
		}
		c.snapshot = c.buttons
		c.state = stateShifting
		c.readIndex = 0
	}
}

// Read returns the next button state shifted out in bit 0, then
// post-increments the read index. Past the 8th read, it returns 1
// ("no further data"), a stable implementation-defined choice the
// spec permits.
func (c *Controller) Read() uint8 {
	if int(c.readIndex) >= buttonCount {
		return 1
	}

	pressed := c.snapshot[c.readIndex]
	c.readIndex++
	if pressed {
		return 1
	}
	return 0
}

// Reset returns the controller to its power-on state.
func (c *Controller) Reset() {
	c.buttons = [buttonCount]bool{}
	c.snapshot = [buttonCount]bool{}
	c.state = stateIdle
	c.readIndex = 0
}
