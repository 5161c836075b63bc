// Package cpu implements a NMOS 6502 interpreter covering the
// documented instruction set used by NES software.
package cpu

import "fmt"

// AddressingMode selects how an instruction's operand address is
// computed from the bytes following its opcode.
type AddressingMode int

const (
	Implied AddressingMode = iota
	Accumulator
	Immediate
	ZeroPage
	ZeroPageX
	ZeroPageY
	Relative
	Absolute
	AbsoluteX
	AbsoluteY
	Indirect
	IndexedIndirect // (zp,X)
	IndirectIndexed // (zp),Y
)

const (
	stackBase = 0x0100

	nFlagMask  = 0x80
	vFlagMask  = 0x40
	unusedMask = 0x20
	bFlagMask  = 0x10
	dFlagMask  = 0x08
	iFlagMask  = 0x04
	zFlagMask  = 0x02
	cFlagMask  = 0x01

	zeroPageMask = 0xFF
	pageMask     = 0xFF00

	nmiVector   = 0xFFFA
	resetVector = 0xFFFC
	irqVector   = 0xFFFE
)

// Bus is the memory interface the CPU executes against; it also
// surfaces CPU cycles owed to OAM DMA transfers.
type Bus interface {
	Read(addr uint16) uint8
	Write(addr uint16, value uint8)
	TakeDMAStallCycles() int
}

// instruction describes one opcode: its mnemonic, operand size, base
// cycle cost, and addressing mode.
type instruction struct {
	name   string
	bytes  uint8
	cycles uint8
	mode   AddressingMode
}

// CPU is a NMOS 6502 interpreter. It holds no notion of wall-clock
// time; callers drive it by cycle budget via Emulate.
type CPU struct {
	A, X, Y uint8
	SP      uint8
	PC      uint16

	C, Z, I, D, B, V, N bool

	bus Bus

	cycles uint64

	nmiPending bool
	irqLine    bool

	halted    bool
	haltOpcode uint8

	instructions [256]*instruction
}

// New constructs a CPU wired to bus. Call Reset before running it.
func New(bus Bus) *CPU {
	cpu := &CPU{bus: bus, SP: 0xFD}
	cpu.initInstructions()
	return cpu
}

// Reset performs the 6502 reset sequence: registers to their power-up
// state and PC loaded from the reset vector.
func (cpu *CPU) Reset() {
	cpu.A, cpu.X, cpu.Y = 0, 0, 0
	cpu.SP = 0xFD
	cpu.C, cpu.Z, cpu.D, cpu.V, cpu.N = false, false, false, false, false
	cpu.I = true
	cpu.B = true
	cpu.halted = false
	cpu.nmiPending = false
	cpu.irqLine = false

	low := uint16(cpu.bus.Read(resetVector))
	high := uint16(cpu.bus.Read(resetVector + 1))
	cpu.PC = (high << 8) | low
	cpu.cycles += 7
}

// RequestNMI latches a non-maskable interrupt to be serviced at the
// next instruction boundary. The caller (the PPU, via the console) is
// responsible for edge detection; each call latches exactly one NMI.
func (cpu *CPU) RequestNMI() {
	cpu.nmiPending = true
}

// SetIRQLine sets the level of the maskable interrupt line. While
// asserted and the I flag is clear, an IRQ is serviced after every
// instruction.
func (cpu *CPU) SetIRQLine(asserted bool) {
	cpu.irqLine = asserted
}

// Halted reports whether the CPU has encountered an opcode outside
// the documented instruction set and stopped executing.
func (cpu *CPU) Halted() bool {
	return cpu.halted
}

// HaltReason describes why the CPU halted, or the empty string if it
// has not.
func (cpu *CPU) HaltReason() string {
	if !cpu.halted {
		return ""
	}
	return fmt.Sprintf("illegal opcode %#02x at %#04x", cpu.haltOpcode, cpu.PC)
}

// Cycles reports the total number of cycles executed since construction.
func (cpu *CPU) Cycles() uint64 {
	return cpu.cycles
}

// Emulate executes instructions until at least budget cycles have been
// spent (servicing pending interrupts between instructions), or until
// the CPU halts on an illegal opcode. It returns the signed overrun:
// budget minus cycles actually spent, negative when an instruction's
// cost overshot the budget. Callers fold the overrun into the next
// call's budget to keep long-run cycle accounting exact.
func (cpu *CPU) Emulate(budget int) int {
	spent := 0
	for spent < budget {
		if cpu.halted {
			return budget - spent
		}

		if stall := cpu.bus.TakeDMAStallCycles(); stall > 0 {
			spent += stall
			cpu.cycles += uint64(stall)
			continue
		}

		spent += cpu.step()
		cpu.serviceInterrupts(&spent)
	}
	return budget - spent
}

func (cpu *CPU) serviceInterrupts(spent *int) {
	if cpu.nmiPending {
		cpu.nmiPending = false
		cpu.handleInterrupt(nmiVector)
		*spent += 7
		cpu.cycles += 7
		return
	}
	if cpu.irqLine && !cpu.I {
		cpu.handleInterrupt(irqVector)
		*spent += 7
		cpu.cycles += 7
	}
}

func (cpu *CPU) handleInterrupt(vector uint16) {
	cpu.pushWord(cpu.PC)
	status := cpu.statusByte() &^ bFlagMask
	status |= unusedMask
	cpu.push(status)
	cpu.I = true
	low := uint16(cpu.bus.Read(vector))
	high := uint16(cpu.bus.Read(vector + 1))
	cpu.PC = (high << 8) | low
}

// step executes one instruction and returns the cycles it cost,
// including page-cross and branch-taken penalties.
func (cpu *CPU) step() int {
	opcode := cpu.bus.Read(cpu.PC)
	inst := cpu.instructions[opcode]
	if inst == nil {
		cpu.halted = true
		cpu.haltOpcode = opcode
		return 0
	}

	address, pageCrossed := cpu.operandAddress(inst.mode)
	extra := cpu.execute(opcode, address, pageCrossed)

	if pageCrossed && readPenalizesPageCross(opcode) {
		extra++
	}

	total := int(inst.cycles) + int(extra)
	cpu.cycles += uint64(total)
	return total
}

func readPenalizesPageCross(opcode uint8) bool {
	switch opcode {
	case 0xBD, 0xB9, 0xB1, 0xBE, 0xBC, 0x7D, 0x79, 0x71, 0x3D, 0x39, 0x31,
		0x1D, 0x19, 0x11, 0x5D, 0x59, 0x51, 0xDD, 0xD9, 0xD1, 0xFD, 0xF9, 0xF1:
		return true
	default:
		return false
	}
}

func (cpu *CPU) operandAddress(mode AddressingMode) (uint16, bool) {
	switch mode {
	case Implied, Accumulator:
		cpu.PC++
		return 0, false

	case Immediate:
		address := cpu.PC + 1
		cpu.PC += 2
		return address, false

	case ZeroPage:
		address := uint16(cpu.bus.Read(cpu.PC + 1))
		cpu.PC += 2
		return address, false

	case ZeroPageX:
		base := cpu.bus.Read(cpu.PC + 1)
		address := uint16((base + cpu.X) & zeroPageMask)
		cpu.PC += 2
		return address, false

	case ZeroPageY:
		base := cpu.bus.Read(cpu.PC + 1)
		address := uint16((base + cpu.Y) & zeroPageMask)
		cpu.PC += 2
		return address, false

	case Relative:
		offset := int8(cpu.bus.Read(cpu.PC + 1))
		oldPC := cpu.PC + 2
		newPC := uint16(int32(oldPC) + int32(offset))
		cpu.PC = oldPC
		return newPC, (oldPC & pageMask) != (newPC & pageMask)

	case Absolute:
		address := cpu.readWord(cpu.PC + 1)
		cpu.PC += 3
		return address, false

	case AbsoluteX:
		base := cpu.readWord(cpu.PC + 1)
		address := base + uint16(cpu.X)
		cpu.PC += 3
		return address, (base & pageMask) != (address & pageMask)

	case AbsoluteY:
		base := cpu.readWord(cpu.PC + 1)
		address := base + uint16(cpu.Y)
		cpu.PC += 3
		return address, (base & pageMask) != (address & pageMask)

	case Indirect:
		ptr := cpu.readWord(cpu.PC + 1)
		var address uint16
		if ptr&zeroPageMask == zeroPageMask {
			low := uint16(cpu.bus.Read(ptr))
			high := uint16(cpu.bus.Read(ptr & pageMask))
			address = (high << 8) | low
		} else {
			address = cpu.readWord(ptr)
		}
		cpu.PC += 3
		return address, false

	case IndexedIndirect:
		base := cpu.bus.Read(cpu.PC + 1)
		ptr := (base + cpu.X) & zeroPageMask
		low := uint16(cpu.bus.Read(uint16(ptr)))
		high := uint16(cpu.bus.Read(uint16((ptr + 1) & zeroPageMask)))
		cpu.PC += 2
		return (high << 8) | low, false

	case IndirectIndexed:
		ptr := uint16(cpu.bus.Read(cpu.PC + 1))
		low := uint16(cpu.bus.Read(ptr))
		high := uint16(cpu.bus.Read((ptr + 1) & zeroPageMask))
		base := (high << 8) | low
		address := base + uint16(cpu.Y)
		cpu.PC += 2
		return address, (base & pageMask) != (address & pageMask)

	default:
		return 0, false
	}
}

func (cpu *CPU) readWord(addr uint16) uint16 {
	low := uint16(cpu.bus.Read(addr))
	high := uint16(cpu.bus.Read(addr + 1))
	return (high << 8) | low
}

func (cpu *CPU) push(value uint8) {
	cpu.bus.Write(stackBase+uint16(cpu.SP), value)
	cpu.SP--
}

func (cpu *CPU) pop() uint8 {
	cpu.SP++
	return cpu.bus.Read(stackBase + uint16(cpu.SP))
}

func (cpu *CPU) pushWord(value uint16) {
	cpu.push(uint8(value >> 8))
	cpu.push(uint8(value))
}

func (cpu *CPU) popWord() uint16 {
	low := uint16(cpu.pop())
	high := uint16(cpu.pop())
	return (high << 8) | low
}

func (cpu *CPU) setZN(value uint8) {
	cpu.Z = value == 0
	cpu.N = value&nFlagMask != 0
}

func (cpu *CPU) statusByte() uint8 {
	var s uint8
	if cpu.N {
		s |= nFlagMask
	}
	if cpu.V {
		s |= vFlagMask
	}
	s |= unusedMask
	if cpu.B {
		s |= bFlagMask
	}
	if cpu.D {
		s |= dFlagMask
	}
	if cpu.I {
		s |= iFlagMask
	}
	if cpu.Z {
		s |= zFlagMask
	}
	if cpu.C {
		s |= cFlagMask
	}
	return s
}

func (cpu *CPU) setStatusByte(s uint8) {
	cpu.N = s&nFlagMask != 0
	cpu.V = s&vFlagMask != 0
	cpu.B = s&bFlagMask != 0
	cpu.D = s&dFlagMask != 0
	cpu.I = s&iFlagMask != 0
	cpu.Z = s&zFlagMask != 0
	cpu.C = s&cFlagMask != 0
}
