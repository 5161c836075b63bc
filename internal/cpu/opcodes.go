package cpu

// execute dispatches opcode to its operation, passing the address
// operandAddress already resolved. It returns the extra cycles the
// operation itself contributes (branch-taken penalties, including a
// taken branch's page-cross cycle); the caller folds in the page-cross
// penalty of indexed reads separately.
func (cpu *CPU) execute(opcode uint8, address uint16, pageCrossed bool) uint8 {
	switch opcode {
	case 0xA9, 0xA5, 0xB5, 0xAD, 0xBD, 0xB9, 0xA1, 0xB1:
		cpu.lda(address)
	case 0xA2, 0xA6, 0xB6, 0xAE, 0xBE:
		cpu.ldx(address)
	case 0xA0, 0xA4, 0xB4, 0xAC, 0xBC:
		cpu.ldy(address)
	case 0x85, 0x95, 0x8D, 0x9D, 0x99, 0x81, 0x91:
		cpu.sta(address)
	case 0x86, 0x96, 0x8E:
		cpu.stx(address)
	case 0x84, 0x94, 0x8C:
		cpu.sty(address)

	case 0x69, 0x65, 0x75, 0x6D, 0x7D, 0x79, 0x61, 0x71:
		cpu.adc(address)
	case 0xE9, 0xE5, 0xF5, 0xED, 0xFD, 0xF9, 0xE1, 0xF1:
		cpu.sbc(address)

	case 0x29, 0x25, 0x35, 0x2D, 0x3D, 0x39, 0x21, 0x31:
		cpu.and(address)
	case 0x09, 0x05, 0x15, 0x0D, 0x1D, 0x19, 0x01, 0x11:
		cpu.ora(address)
	case 0x49, 0x45, 0x55, 0x4D, 0x5D, 0x59, 0x41, 0x51:
		cpu.eor(address)

	case 0x0A:
		cpu.aslA()
	case 0x06, 0x16, 0x0E, 0x1E:
		cpu.asl(address)
	case 0x4A:
		cpu.lsrA()
	case 0x46, 0x56, 0x4E, 0x5E:
		cpu.lsr(address)
	case 0x2A:
		cpu.rolA()
	case 0x26, 0x36, 0x2E, 0x3E:
		cpu.rol(address)
	case 0x6A:
		cpu.rorA()
	case 0x66, 0x76, 0x6E, 0x7E:
		cpu.ror(address)

	case 0xC9, 0xC5, 0xD5, 0xCD, 0xDD, 0xD9, 0xC1, 0xD1:
		cpu.cmp(address)
	case 0xE0, 0xE4, 0xEC:
		cpu.cpx(address)
	case 0xC0, 0xC4, 0xCC:
		cpu.cpy(address)

	case 0xE6, 0xF6, 0xEE, 0xFE:
		cpu.inc(address)
	case 0xC6, 0xD6, 0xCE, 0xDE:
		cpu.dec(address)
	case 0xE8:
		cpu.inx()
	case 0xCA:
		cpu.dex()
	case 0xC8:
		cpu.iny()
	case 0x88:
		cpu.dey()

	case 0xAA:
		cpu.tax()
	case 0x8A:
		cpu.txa()
	case 0xA8:
		cpu.tay()
	case 0x98:
		cpu.tya()
	case 0xBA:
		cpu.tsx()
	case 0x9A:
		cpu.txs()

	case 0x48:
		cpu.pha()
	case 0x68:
		cpu.pla()
	case 0x08:
		cpu.php()
	case 0x28:
		cpu.plp()

	case 0x18:
		cpu.clc()
	case 0x38:
		cpu.sec()
	case 0x58:
		cpu.cli()
	case 0x78:
		cpu.sei()
	case 0xB8:
		cpu.clv()
	case 0xD8:
		cpu.cld()
	case 0xF8:
		cpu.sed()

	case 0x4C, 0x6C:
		cpu.jmp(address)
	case 0x20:
		cpu.jsr(address)
	case 0x60:
		cpu.rts()
	case 0x40:
		cpu.rti()

	case 0x90:
		return cpu.bcc(address, pageCrossed)
	case 0xB0:
		return cpu.bcs(address, pageCrossed)
	case 0xD0:
		return cpu.bne(address, pageCrossed)
	case 0xF0:
		return cpu.beq(address, pageCrossed)
	case 0x10:
		return cpu.bpl(address, pageCrossed)
	case 0x30:
		return cpu.bmi(address, pageCrossed)
	case 0x50:
		return cpu.bvc(address, pageCrossed)
	case 0x70:
		return cpu.bvs(address, pageCrossed)

	case 0x24, 0x2C:
		cpu.bit(address)
	case 0xEA:
		cpu.nop()
	case 0x00:
		cpu.brk()
	}
	return 0
}

// initInstructions populates the dispatch table with the documented
// 6502 instruction set. Opcodes left nil are illegal and halt the CPU.
func (cpu *CPU) initInstructions() {
	set := func(opcode uint8, name string, bytes, cycles uint8, mode AddressingMode) {
		cpu.instructions[opcode] = &instruction{name, bytes, cycles, mode}
	}

	set(0xA9, "LDA", 2, 2, Immediate)
	set(0xA5, "LDA", 2, 3, ZeroPage)
	set(0xB5, "LDA", 2, 4, ZeroPageX)
	set(0xAD, "LDA", 3, 4, Absolute)
	set(0xBD, "LDA", 3, 4, AbsoluteX)
	set(0xB9, "LDA", 3, 4, AbsoluteY)
	set(0xA1, "LDA", 2, 6, IndexedIndirect)
	set(0xB1, "LDA", 2, 5, IndirectIndexed)

	set(0xA2, "LDX", 2, 2, Immediate)
	set(0xA6, "LDX", 2, 3, ZeroPage)
	set(0xB6, "LDX", 2, 4, ZeroPageY)
	set(0xAE, "LDX", 3, 4, Absolute)
	set(0xBE, "LDX", 3, 4, AbsoluteY)

	set(0xA0, "LDY", 2, 2, Immediate)
	set(0xA4, "LDY", 2, 3, ZeroPage)
	set(0xB4, "LDY", 2, 4, ZeroPageX)
	set(0xAC, "LDY", 3, 4, Absolute)
	set(0xBC, "LDY", 3, 4, AbsoluteX)

	set(0x85, "STA", 2, 3, ZeroPage)
	set(0x95, "STA", 2, 4, ZeroPageX)
	set(0x8D, "STA", 3, 4, Absolute)
	set(0x9D, "STA", 3, 5, AbsoluteX)
	set(0x99, "STA", 3, 5, AbsoluteY)
	set(0x81, "STA", 2, 6, IndexedIndirect)
	set(0x91, "STA", 2, 6, IndirectIndexed)

	set(0x86, "STX", 2, 3, ZeroPage)
	set(0x96, "STX", 2, 4, ZeroPageY)
	set(0x8E, "STX", 3, 4, Absolute)

	set(0x84, "STY", 2, 3, ZeroPage)
	set(0x94, "STY", 2, 4, ZeroPageX)
	set(0x8C, "STY", 3, 4, Absolute)

	set(0x69, "ADC", 2, 2, Immediate)
	set(0x65, "ADC", 2, 3, ZeroPage)
	set(0x75, "ADC", 2, 4, ZeroPageX)
	set(0x6D, "ADC", 3, 4, Absolute)
	set(0x7D, "ADC", 3, 4, AbsoluteX)
	set(0x79, "ADC", 3, 4, AbsoluteY)
	set(0x61, "ADC", 2, 6, IndexedIndirect)
	set(0x71, "ADC", 2, 5, IndirectIndexed)

	set(0xE9, "SBC", 2, 2, Immediate)
	set(0xE5, "SBC", 2, 3, ZeroPage)
	set(0xF5, "SBC", 2, 4, ZeroPageX)
	set(0xED, "SBC", 3, 4, Absolute)
	set(0xFD, "SBC", 3, 4, AbsoluteX)
	set(0xF9, "SBC", 3, 4, AbsoluteY)
	set(0xE1, "SBC", 2, 6, IndexedIndirect)
	set(0xF1, "SBC", 2, 5, IndirectIndexed)

	set(0x29, "AND", 2, 2, Immediate)
	set(0x25, "AND", 2, 3, ZeroPage)
	set(0x35, "AND", 2, 4, ZeroPageX)
	set(0x2D, "AND", 3, 4, Absolute)
	set(0x3D, "AND", 3, 4, AbsoluteX)
	set(0x39, "AND", 3, 4, AbsoluteY)
	set(0x21, "AND", 2, 6, IndexedIndirect)
	set(0x31, "AND", 2, 5, IndirectIndexed)

	set(0x09, "ORA", 2, 2, Immediate)
	set(0x05, "ORA", 2, 3, ZeroPage)
	set(0x15, "ORA", 2, 4, ZeroPageX)
	set(0x0D, "ORA", 3, 4, Absolute)
	set(0x1D, "ORA", 3, 4, AbsoluteX)
	set(0x19, "ORA", 3, 4, AbsoluteY)
	set(0x01, "ORA", 2, 6, IndexedIndirect)
	set(0x11, "ORA", 2, 5, IndirectIndexed)

	set(0x49, "EOR", 2, 2, Immediate)
	set(0x45, "EOR", 2, 3, ZeroPage)
	set(0x55, "EOR", 2, 4, ZeroPageX)
	set(0x4D, "EOR", 3, 4, Absolute)
	set(0x5D, "EOR", 3, 4, AbsoluteX)
	set(0x59, "EOR", 3, 4, AbsoluteY)
	set(0x41, "EOR", 2, 6, IndexedIndirect)
	set(0x51, "EOR", 2, 5, IndirectIndexed)

	set(0x0A, "ASL", 1, 2, Accumulator)
	set(0x06, "ASL", 2, 5, ZeroPage)
	set(0x16, "ASL", 2, 6, ZeroPageX)
	set(0x0E, "ASL", 3, 6, Absolute)
	set(0x1E, "ASL", 3, 7, AbsoluteX)

	set(0x4A, "LSR", 1, 2, Accumulator)
	set(0x46, "LSR", 2, 5, ZeroPage)
	set(0x56, "LSR", 2, 6, ZeroPageX)
	set(0x4E, "LSR", 3, 6, Absolute)
	set(0x5E, "LSR", 3, 7, AbsoluteX)

	set(0x2A, "ROL", 1, 2, Accumulator)
	set(0x26, "ROL", 2, 5, ZeroPage)
	set(0x36, "ROL", 2, 6, ZeroPageX)
	set(0x2E, "ROL", 3, 6, Absolute)
	set(0x3E, "ROL", 3, 7, AbsoluteX)

	set(0x6A, "ROR", 1, 2, Accumulator)
	set(0x66, "ROR", 2, 5, ZeroPage)
	set(0x76, "ROR", 2, 6, ZeroPageX)
	set(0x6E, "ROR", 3, 6, Absolute)
	set(0x7E, "ROR", 3, 7, AbsoluteX)

	set(0xC9, "CMP", 2, 2, Immediate)
	set(0xC5, "CMP", 2, 3, ZeroPage)
	set(0xD5, "CMP", 2, 4, ZeroPageX)
	set(0xCD, "CMP", 3, 4, Absolute)
	set(0xDD, "CMP", 3, 4, AbsoluteX)
	set(0xD9, "CMP", 3, 4, AbsoluteY)
	set(0xC1, "CMP", 2, 6, IndexedIndirect)
	set(0xD1, "CMP", 2, 5, IndirectIndexed)

	set(0xE0, "CPX", 2, 2, Immediate)
	set(0xE4, "CPX", 2, 3, ZeroPage)
	set(0xEC, "CPX", 3, 4, Absolute)

	set(0xC0, "CPY", 2, 2, Immediate)
	set(0xC4, "CPY", 2, 3, ZeroPage)
	set(0xCC, "CPY", 3, 4, Absolute)

	set(0xE6, "INC", 2, 5, ZeroPage)
	set(0xF6, "INC", 2, 6, ZeroPageX)
	set(0xEE, "INC", 3, 6, Absolute)
	set(0xFE, "INC", 3, 7, AbsoluteX)

	set(0xC6, "DEC", 2, 5, ZeroPage)
	set(0xD6, "DEC", 2, 6, ZeroPageX)
	set(0xCE, "DEC", 3, 6, Absolute)
	set(0xDE, "DEC", 3, 7, AbsoluteX)

	set(0xE8, "INX", 1, 2, Implied)
	set(0xCA, "DEX", 1, 2, Implied)
	set(0xC8, "INY", 1, 2, Implied)
	set(0x88, "DEY", 1, 2, Implied)

	set(0xAA, "TAX", 1, 2, Implied)
	set(0x8A, "TXA", 1, 2, Implied)
	set(0xA8, "TAY", 1, 2, Implied)
	set(0x98, "TYA", 1, 2, Implied)
	set(0xBA, "TSX", 1, 2, Implied)
	set(0x9A, "TXS", 1, 2, Implied)

	set(0x48, "PHA", 1, 3, Implied)
	set(0x68, "PLA", 1, 4, Implied)
	set(0x08, "PHP", 1, 3, Implied)
	set(0x28, "PLP", 1, 4, Implied)

	set(0x18, "CLC", 1, 2, Implied)
	set(0x38, "SEC", 1, 2, Implied)
	set(0x58, "CLI", 1, 2, Implied)
	set(0x78, "SEI", 1, 2, Implied)
	set(0xB8, "CLV", 1, 2, Implied)
	set(0xD8, "CLD", 1, 2, Implied)
	set(0xF8, "SED", 1, 2, Implied)

	set(0x4C, "JMP", 3, 3, Absolute)
	set(0x6C, "JMP", 3, 5, Indirect)
	set(0x20, "JSR", 3, 6, Absolute)
	set(0x60, "RTS", 1, 6, Implied)
	set(0x40, "RTI", 1, 6, Implied)

	set(0x90, "BCC", 2, 2, Relative)
	set(0xB0, "BCS", 2, 2, Relative)
	set(0xD0, "BNE", 2, 2, Relative)
	set(0xF0, "BEQ", 2, 2, Relative)
	set(0x10, "BPL", 2, 2, Relative)
	set(0x30, "BMI", 2, 2, Relative)
	set(0x50, "BVC", 2, 2, Relative)
	set(0x70, "BVS", 2, 2, Relative)

	set(0x24, "BIT", 2, 3, ZeroPage)
	set(0x2C, "BIT", 3, 4, Absolute)
	set(0xEA, "NOP", 1, 2, Implied)
	set(0x00, "BRK", 1, 7, Implied)
}
