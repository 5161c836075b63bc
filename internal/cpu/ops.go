package cpu

// Load/store

func (cpu *CPU) lda(addr uint16) { cpu.A = cpu.bus.Read(addr); cpu.setZN(cpu.A) }
func (cpu *CPU) ldx(addr uint16) { cpu.X = cpu.bus.Read(addr); cpu.setZN(cpu.X) }
func (cpu *CPU) ldy(addr uint16) { cpu.Y = cpu.bus.Read(addr); cpu.setZN(cpu.Y) }
func (cpu *CPU) sta(addr uint16) { cpu.bus.Write(addr, cpu.A) }
func (cpu *CPU) stx(addr uint16) { cpu.bus.Write(addr, cpu.X) }
func (cpu *CPU) sty(addr uint16) { cpu.bus.Write(addr, cpu.Y) }

// Arithmetic

func (cpu *CPU) adc(addr uint16) {
	value := cpu.bus.Read(addr)
	carry := uint16(0)
	if cpu.C {
		carry = 1
	}
	result := uint16(cpu.A) + uint16(value) + carry
	cpu.V = (cpu.A^uint8(result))&0x80 != 0 && (cpu.A^value)&0x80 == 0
	cpu.C = result > 0xFF
	cpu.A = uint8(result)
	cpu.setZN(cpu.A)
}

func (cpu *CPU) sbc(addr uint16) {
	value := cpu.bus.Read(addr) ^ 0xFF
	carry := uint16(0)
	if cpu.C {
		carry = 1
	}
	result := uint16(cpu.A) + uint16(value) + carry
	cpu.V = (cpu.A^uint8(result))&0x80 != 0 && (cpu.A^value)&0x80 == 0
	cpu.C = result > 0xFF
	cpu.A = uint8(result)
	cpu.setZN(cpu.A)
}

// Logic

func (cpu *CPU) and(addr uint16) { cpu.A &= cpu.bus.Read(addr); cpu.setZN(cpu.A) }
func (cpu *CPU) ora(addr uint16) { cpu.A |= cpu.bus.Read(addr); cpu.setZN(cpu.A) }
func (cpu *CPU) eor(addr uint16) { cpu.A ^= cpu.bus.Read(addr); cpu.setZN(cpu.A) }

// Shifts and rotates (memory form)

func (cpu *CPU) asl(addr uint16) {
	v := cpu.bus.Read(addr)
	cpu.C = v&0x80 != 0
	v <<= 1
	cpu.bus.Write(addr, v)
	cpu.setZN(v)
}

func (cpu *CPU) lsr(addr uint16) {
	v := cpu.bus.Read(addr)
	cpu.C = v&0x01 != 0
	v >>= 1
	cpu.bus.Write(addr, v)
	cpu.setZN(v)
}

func (cpu *CPU) rol(addr uint16) {
	v := cpu.bus.Read(addr)
	oldCarry := cpu.C
	cpu.C = v&0x80 != 0
	v <<= 1
	if oldCarry {
		v |= 0x01
	}
	cpu.bus.Write(addr, v)
	cpu.setZN(v)
}

func (cpu *CPU) ror(addr uint16) {
	v := cpu.bus.Read(addr)
	oldCarry := cpu.C
	cpu.C = v&0x01 != 0
	v >>= 1
	if oldCarry {
		v |= 0x80
	}
	cpu.bus.Write(addr, v)
	cpu.setZN(v)
}

// Shifts and rotates (accumulator form)

func (cpu *CPU) aslA() {
	cpu.C = cpu.A&0x80 != 0
	cpu.A <<= 1
	cpu.setZN(cpu.A)
}

func (cpu *CPU) lsrA() {
	cpu.C = cpu.A&0x01 != 0
	cpu.A >>= 1
	cpu.setZN(cpu.A)
}

func (cpu *CPU) rolA() {
	oldCarry := cpu.C
	cpu.C = cpu.A&0x80 != 0
	cpu.A <<= 1
	if oldCarry {
		cpu.A |= 0x01
	}
	cpu.setZN(cpu.A)
}

func (cpu *CPU) rorA() {
	oldCarry := cpu.C
	cpu.C = cpu.A&0x01 != 0
	cpu.A >>= 1
	if oldCarry {
		cpu.A |= 0x80
	}
	cpu.setZN(cpu.A)
}

// Comparisons

func (cpu *CPU) cmp(addr uint16) {
	v := cpu.bus.Read(addr)
	cpu.C = cpu.A >= v
	cpu.setZN(cpu.A - v)
}

func (cpu *CPU) cpx(addr uint16) {
	v := cpu.bus.Read(addr)
	cpu.C = cpu.X >= v
	cpu.setZN(cpu.X - v)
}

func (cpu *CPU) cpy(addr uint16) {
	v := cpu.bus.Read(addr)
	cpu.C = cpu.Y >= v
	cpu.setZN(cpu.Y - v)
}

// Increment/decrement

func (cpu *CPU) inc(addr uint16) { v := cpu.bus.Read(addr) + 1; cpu.bus.Write(addr, v); cpu.setZN(v) }
func (cpu *CPU) dec(addr uint16) { v := cpu.bus.Read(addr) - 1; cpu.bus.Write(addr, v); cpu.setZN(v) }
func (cpu *CPU) inx()            { cpu.X++; cpu.setZN(cpu.X) }
func (cpu *CPU) dex()            { cpu.X--; cpu.setZN(cpu.X) }
func (cpu *CPU) iny()            { cpu.Y++; cpu.setZN(cpu.Y) }
func (cpu *CPU) dey()            { cpu.Y--; cpu.setZN(cpu.Y) }

// Register transfers

func (cpu *CPU) tax() { cpu.X = cpu.A; cpu.setZN(cpu.X) }
func (cpu *CPU) txa() { cpu.A = cpu.X; cpu.setZN(cpu.A) }
func (cpu *CPU) tay() { cpu.Y = cpu.A; cpu.setZN(cpu.Y) }
func (cpu *CPU) tya() { cpu.A = cpu.Y; cpu.setZN(cpu.A) }
func (cpu *CPU) tsx() { cpu.X = cpu.SP; cpu.setZN(cpu.X) }
func (cpu *CPU) txs() { cpu.SP = cpu.X }

// Stack

func (cpu *CPU) pha() { cpu.push(cpu.A) }
func (cpu *CPU) pla() { cpu.A = cpu.pop(); cpu.setZN(cpu.A) }
func (cpu *CPU) php() { cpu.push(cpu.statusByte() | bFlagMask) }
func (cpu *CPU) plp() { cpu.setStatusByte(cpu.pop()) }

// Flags

func (cpu *CPU) clc() { cpu.C = false }
func (cpu *CPU) sec() { cpu.C = true }
func (cpu *CPU) cli() { cpu.I = false }
func (cpu *CPU) sei() { cpu.I = true }
func (cpu *CPU) clv() { cpu.V = false }
func (cpu *CPU) cld() { cpu.D = false }
func (cpu *CPU) sed() { cpu.D = true }

// Control flow

func (cpu *CPU) jmp(addr uint16) { cpu.PC = addr }

func (cpu *CPU) jsr(addr uint16) {
	cpu.pushWord(cpu.PC - 1)
	cpu.PC = addr
}

func (cpu *CPU) rts() { cpu.PC = cpu.popWord() + 1 }

func (cpu *CPU) rti() {
	cpu.setStatusByte(cpu.pop())
	cpu.PC = cpu.popWord()
}

// branchTaken sets PC to addr and returns the extra cycles owed for a
// taken branch (1, plus a second if it crosses a page).
func (cpu *CPU) branchTaken(addr uint16, pageCrossed bool) uint8 {
	cpu.PC = addr
	if pageCrossed {
		return 2
	}
	return 1
}

func (cpu *CPU) bcc(addr uint16, pageCrossed bool) uint8 {
	if !cpu.C {
		return cpu.branchTaken(addr, pageCrossed)
	}
	return 0
}

func (cpu *CPU) bcs(addr uint16, pageCrossed bool) uint8 {
	if cpu.C {
		return cpu.branchTaken(addr, pageCrossed)
	}
	return 0
}

func (cpu *CPU) bne(addr uint16, pageCrossed bool) uint8 {
	if !cpu.Z {
		return cpu.branchTaken(addr, pageCrossed)
	}
	return 0
}

func (cpu *CPU) beq(addr uint16, pageCrossed bool) uint8 {
	if cpu.Z {
		return cpu.branchTaken(addr, pageCrossed)
	}
	return 0
}

func (cpu *CPU) bpl(addr uint16, pageCrossed bool) uint8 {
	if !cpu.N {
		return cpu.branchTaken(addr, pageCrossed)
	}
	return 0
}

func (cpu *CPU) bmi(addr uint16, pageCrossed bool) uint8 {
	if cpu.N {
		return cpu.branchTaken(addr, pageCrossed)
	}
	return 0
}

func (cpu *CPU) bvc(addr uint16, pageCrossed bool) uint8 {
	if !cpu.V {
		return cpu.branchTaken(addr, pageCrossed)
	}
	return 0
}

func (cpu *CPU) bvs(addr uint16, pageCrossed bool) uint8 {
	if cpu.V {
		return cpu.branchTaken(addr, pageCrossed)
	}
	return 0
}

// Misc

func (cpu *CPU) bit(addr uint16) {
	v := cpu.bus.Read(addr)
	cpu.N = v&nFlagMask != 0
	cpu.V = v&vFlagMask != 0
	cpu.Z = cpu.A&v == 0
}

func (cpu *CPU) nop() {}

// brk pushes PC+2 (Implied addressing has already moved PC past the
// opcode; brk itself skips the padding byte) and jumps through the IRQ
// vector with B set.
func (cpu *CPU) brk() {
	cpu.PC++
	cpu.pushWord(cpu.PC)
	cpu.push(cpu.statusByte() | bFlagMask)
	cpu.I = true
	cpu.PC = cpu.readWord(irqVector)
}
