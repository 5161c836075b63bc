package cpu

import "testing"

type testBus struct {
	ram   [0x10000]byte
	stall int
}

func (b *testBus) Read(addr uint16) uint8          { return b.ram[addr] }
func (b *testBus) Write(addr uint16, value uint8)  { b.ram[addr] = value }
func (b *testBus) TakeDMAStallCycles() int {
	s := b.stall
	b.stall = 0
	return s
}

func (b *testBus) setResetVector(addr uint16) {
	b.ram[resetVector] = uint8(addr)
	b.ram[resetVector+1] = uint8(addr >> 8)
}

func (b *testBus) load(addr uint16, bytes ...uint8) {
	copy(b.ram[addr:], bytes)
}

func newTestCPU(org uint16) (*CPU, *testBus) {
	bus := &testBus{}
	bus.setResetVector(org)
	c := New(bus)
	c.Reset()
	return c, bus
}

// runOne drives exactly one instruction by giving Emulate a 1-cycle
// budget, which every instruction's cost meets or exceeds. The
// returned overrun is discarded.
func runOne(c *CPU) {
	c.Emulate(1)
}

func TestResetLoadsVectorAndPowerOnState(t *testing.T) {
	c, _ := newTestCPU(0xC000)
	if c.PC != 0xC000 {
		t.Fatalf("PC = %#04x, want 0xC000", c.PC)
	}
	if c.SP != 0xFD {
		t.Fatalf("SP = %#02x, want 0xFD", c.SP)
	}
	if !c.I {
		t.Fatalf("I flag should be set after reset")
	}
	if c.Cycles() != 7 {
		t.Fatalf("reset should cost 7 cycles, got %d", c.Cycles())
	}
}

func TestLDAImmediateSetsZeroAndNegative(t *testing.T) {
	c, bus := newTestCPU(0x8000)
	bus.load(0x8000, 0xA9, 0x00) // LDA #$00
	runOne(c)
	if !c.Z || c.N {
		t.Fatalf("LDA #$00: Z=%v N=%v, want Z=true N=false", c.Z, c.N)
	}

	c2, bus2 := newTestCPU(0x8000)
	bus2.load(0x8000, 0xA9, 0x80) // LDA #$80
	runOne(c2)
	if c2.Z || !c2.N {
		t.Fatalf("LDA #$80: Z=%v N=%v, want Z=false N=true", c2.Z, c2.N)
	}
}

func TestADCSetsCarryAndOverflow(t *testing.T) {
	c, bus := newTestCPU(0x8000)
	c.A = 0x7F
	c.C = false
	bus.load(0x8000, 0x69, 0x01) // ADC #$01
	runOne(c)
	if c.A != 0x80 {
		t.Fatalf("A = %#02x, want 0x80", c.A)
	}
	if !c.V {
		t.Fatalf("expected overflow set (0x7F+0x01 crosses into negative)")
	}
	if c.C {
		t.Fatalf("expected no carry out of 0x7F+0x01")
	}
	if !c.N {
		t.Fatalf("expected N set, A=0x80")
	}
}

func TestSBCBorrowsWhenCarryClear(t *testing.T) {
	c, bus := newTestCPU(0x8000)
	c.A = 0x00
	c.C = false // carry clear means a borrow is pending
	bus.load(0x8000, 0xE9, 0x01) // SBC #$01
	runOne(c)
	if c.A != 0xFE {
		t.Fatalf("A = %#02x, want 0xFE", c.A)
	}
	if c.C {
		t.Fatalf("expected carry clear (result still needs a borrow)")
	}
}

func TestCMPSetsCarryOnGreaterOrEqual(t *testing.T) {
	c, bus := newTestCPU(0x8000)
	c.A = 0x10
	bus.load(0x8000, 0xC9, 0x10) // CMP #$10
	runOne(c)
	if !c.C || !c.Z {
		t.Fatalf("CMP equal: C=%v Z=%v, want both true", c.C, c.Z)
	}
}

func TestZeroPageXWrapsWithinZeroPage(t *testing.T) {
	c, bus := newTestCPU(0x8000)
	c.X = 0xFF
	bus.load(0x8000, 0xB5, 0x80) // LDA $80,X
	bus.ram[0x7F] = 0x42         // (0x80+0xFF) & 0xFF = 0x7F
	runOne(c)
	if c.A != 0x42 {
		t.Fatalf("A = %#02x, want 0x42 (zero-page wraparound)", c.A)
	}
}

func TestAbsoluteXPageCrossAddsCycle(t *testing.T) {
	c, bus := newTestCPU(0x8000)
	c.X = 0xFF
	bus.load(0x8000, 0xBD, 0x01, 0x20) // LDA $2001,X -> $2100, crosses page
	bus.ram[0x2100] = 0x55
	overrun := c.Emulate(4) // base cost is 4; page-cross penalty makes it 5
	if c.A != 0x55 {
		t.Fatalf("A = %#02x, want 0x55", c.A)
	}
	if overrun != -1 {
		t.Fatalf("overrun = %d, want -1 (5 cycles spent against a 4-cycle budget)", overrun)
	}
}

func TestIndirectJMPPageBoundaryBug(t *testing.T) {
	c, bus := newTestCPU(0x8000)
	bus.load(0x8000, 0x6C, 0xFF, 0x20) // JMP ($20FF)
	bus.ram[0x20FF] = 0x00
	bus.ram[0x2000] = 0x40 // high byte buggily read from $2000, not $2100
	bus.ram[0x2100] = 0x80
	runOne(c)
	if c.PC != 0x4000 {
		t.Fatalf("PC = %#04x, want 0x4000 (page-wrap bug)", c.PC)
	}
}

func TestIndexedIndirectAddressing(t *testing.T) {
	c, bus := newTestCPU(0x8000)
	c.X = 0x04
	bus.load(0x8000, 0xA1, 0x20) // LDA ($20,X)
	bus.ram[0x24] = 0x00
	bus.ram[0x25] = 0x30
	bus.ram[0x3000] = 0x77
	runOne(c)
	if c.A != 0x77 {
		t.Fatalf("A = %#02x, want 0x77", c.A)
	}
}

func TestIndirectIndexedAddressing(t *testing.T) {
	c, bus := newTestCPU(0x8000)
	c.Y = 0x10
	bus.load(0x8000, 0xB1, 0x20) // LDA ($20),Y
	bus.ram[0x20] = 0x00
	bus.ram[0x21] = 0x30
	bus.ram[0x3010] = 0x99
	runOne(c)
	if c.A != 0x99 {
		t.Fatalf("A = %#02x, want 0x99", c.A)
	}
}

func TestJSRAndRTSRoundTrip(t *testing.T) {
	c, bus := newTestCPU(0x8000)
	bus.load(0x8000, 0x20, 0x00, 0x90) // JSR $9000
	bus.load(0x9000, 0x60)             // RTS
	runOne(c)
	if c.PC != 0x9000 {
		t.Fatalf("PC after JSR = %#04x, want 0x9000", c.PC)
	}
	runOne(c)
	if c.PC != 0x8003 {
		t.Fatalf("PC after RTS = %#04x, want 0x8003", c.PC)
	}
}

func TestBranchTakenAndPageCrossCycles(t *testing.T) {
	c, bus := newTestCPU(0x80FD)
	c.Z = true
	bus.load(0x80FD, 0xF0, 0x05) // BEQ +5; PC+2=0x80FF, target 0x8104 crosses into page 0x81
	overrun := c.Emulate(2)      // base cost 2; taken(+1)+page-cross(+1) = 4
	if overrun != -2 {
		t.Fatalf("overrun = %d, want -2", overrun)
	}
	if c.PC != 0x8104 {
		t.Fatalf("PC = %#04x, want 0x8104", c.PC)
	}
}

func TestNMIServicedAtInstructionBoundary(t *testing.T) {
	c, bus := newTestCPU(0x8000)
	bus.load(0x8000, 0xEA) // NOP
	bus.ram[nmiVector] = 0x00
	bus.ram[nmiVector+1] = 0x40
	c.RequestNMI()
	c.Emulate(2) // NOP (2) + NMI service (7)
	if c.PC != 0x4000 {
		t.Fatalf("PC after NMI = %#04x, want 0x4000", c.PC)
	}
	if !c.I {
		t.Fatalf("NMI should set the I flag")
	}
}

func TestIRQIgnoredWhenInterruptsDisabled(t *testing.T) {
	c, bus := newTestCPU(0x8000)
	c.I = true
	bus.load(0x8000, 0xEA) // NOP
	c.SetIRQLine(true)
	c.Emulate(2)
	if c.PC != 0x8001 {
		t.Fatalf("PC = %#04x, IRQ should have been ignored while I is set", c.PC)
	}
}

func TestIRQServicedWhenEnabled(t *testing.T) {
	c, bus := newTestCPU(0x8000)
	c.I = false
	bus.load(0x8000, 0xEA) // NOP
	bus.ram[irqVector] = 0x00
	bus.ram[irqVector+1] = 0x50
	c.SetIRQLine(true)
	c.Emulate(2)
	if c.PC != 0x5000 {
		t.Fatalf("PC after IRQ = %#04x, want 0x5000", c.PC)
	}
}

func TestNMIPriorityOverIRQ(t *testing.T) {
	c, bus := newTestCPU(0x8000)
	c.I = false
	bus.load(0x8000, 0xEA)
	bus.ram[nmiVector] = 0x00
	bus.ram[nmiVector+1] = 0x40
	bus.ram[irqVector] = 0x00
	bus.ram[irqVector+1] = 0x50
	c.RequestNMI()
	c.SetIRQLine(true)
	c.Emulate(2)
	if c.PC != 0x4000 {
		t.Fatalf("PC = %#04x, want 0x4000 (NMI must win over a simultaneous IRQ)", c.PC)
	}
}

func TestIllegalOpcodeHaltsDeterministically(t *testing.T) {
	c, bus := newTestCPU(0x8000)
	bus.load(0x8000, 0x02) // not a documented opcode
	c.Emulate(10)
	if !c.Halted() {
		t.Fatalf("expected CPU to halt on an illegal opcode")
	}
	if c.HaltReason() == "" {
		t.Fatalf("expected a non-empty halt reason")
	}
	pc := c.PC
	c.Emulate(10)
	if c.PC != pc {
		t.Fatalf("halted CPU must not advance PC on further Emulate calls")
	}
}

func TestOAMDMAStallConsumesBudgetWithoutExecuting(t *testing.T) {
	c, bus := newTestCPU(0x8000)
	bus.load(0x8000, 0xEA) // NOP
	bus.stall = 513
	overrun := c.Emulate(1)
	if c.PC != 0x8000 {
		t.Fatalf("PC = %#04x, want 0x8000 (stall alone should exceed a 1-cycle budget)", c.PC)
	}
	if overrun != 1-513 {
		t.Fatalf("overrun = %d, want %d", overrun, 1-513)
	}

	// A budget that outlasts the stall still executes the instruction.
	overrun = c.Emulate(2)
	if c.PC != 0x8001 {
		t.Fatalf("PC = %#04x, want 0x8001 after the NOP runs", c.PC)
	}
	if overrun != 0 {
		t.Fatalf("overrun = %d, want 0 (2-cycle budget, 2-cycle NOP)", overrun)
	}
}
