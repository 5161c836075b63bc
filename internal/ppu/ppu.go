// Package ppu implements a simplified, scanline-at-a-time model of the
// NES 2C02 Picture Processing Unit: register protocol, VRAM/OAM
// ownership, background and sprite rendering, and VBlank/NMI signalling.
package ppu

// Mirroring selects how the four logical nametables alias onto the
// PPU's two physical 1KiB pages. Duplicated from package rom rather
// than imported, so the PPU has no dependency on ROM parsing.
type Mirroring uint8

const (
	Horizontal Mirroring = iota
	Vertical
	SingleScreen
	FourScreen
)

// WriteLatch is the PPU's shared two-write latch for $2005/$2006,
// modeled explicitly rather than as a boolean named first_write so
// that resets triggered by reading $2002 are visible at the type level.
type WriteLatch uint8

const (
	LatchFirst WriteLatch = iota
	LatchSecond
)

const (
	ctrl1NametableMask      = 0x03
	ctrl1AddrIncrement32    = 1 << 2
	ctrl1SpritePatternTable = 1 << 3
	ctrl1BGPatternTable     = 1 << 4
	ctrl1SpriteSize16       = 1 << 5
	ctrl1NMIEnable          = 1 << 7

	ctrl2ShowBackground = 1 << 3
	ctrl2ShowSprites    = 1 << 4

	statusVBlank = 1 << 7

	vramSize       = 0x4000
	oamSize        = 256
	spritesInOAM   = 64
	tilesPerRow    = 32
	visibleRows    = 240
	visibleCols    = 256
	lastScanline   = 261
	vblankScanline = 240
	attrTableSize  = 960
)

// Framebuffer holds one frame of 6-bit NES palette indices, 240 rows
// of 256 pixels.
type Framebuffer [visibleRows][visibleCols]uint8

// PPU owns VRAM, OAM, the framebuffer, and the $2000-$2007 register
// file. Addresses passed to ReadRegister/WriteRegister are assumed
// already mirrored into 0x2000-0x2007 by the caller (the bus).
type PPU struct {
	vram [vramSize]byte
	oam  [oamSize]byte

	ctrl1, ctrl2, status uint8
	oamAddr              uint8
	addrHighByte         uint8
	vramAddr             uint16
	readBuffer           uint8
	latch                WriteLatch
	fineX, fineY         uint8

	mirroring Mirroring
	scanline  int

	framebuffer Framebuffer

	attributeByteTable   [attrTableSize]uint8
	attributeSquareTable [attrTableSize]uint8
}

// New constructs a PPU with its attribute lookup tables precomputed.
func New(mirroring Mirroring) *PPU {
	p := &PPU{mirroring: mirroring}
	p.buildAttributeTables()
	return p
}

func (p *PPU) buildAttributeTables() {
	for tile := 0; tile < attrTableSize; tile++ {
		row := tile / tilesPerRow
		col := tile % tilesPerRow
		p.attributeByteTable[tile] = uint8((row/4)*8 + col/4)
		squareRow := (row >> 1) & 1
		squareCol := (col >> 1) & 1
		p.attributeSquareTable[tile] = uint8(squareRow*2 + squareCol)
	}
}

// Reset returns the PPU to its post-power-on state without touching
// VRAM/OAM contents.
func (p *PPU) Reset() {
	p.ctrl1, p.ctrl2, p.status = 0, 0, 0
	p.oamAddr = 0
	p.addrHighByte = 0
	p.vramAddr = 0
	p.readBuffer = 0
	p.latch = LatchFirst
	p.fineX, p.fineY = 0, 0
	p.scanline = 0
}

// LoadCHR copies a ROM's CHR bank directly into VRAM 0x0000-0x1FFF,
// byte-for-byte.
func (p *PPU) LoadCHR(chr []byte) {
	copy(p.vram[0:0x2000], chr)
}

// VRAMSnapshot returns the pattern-table region of VRAM, for the
// round-trip property that CHR bytes loaded equal VRAM 0x0000-0x1FFF.
func (p *PPU) VRAMSnapshot() [0x2000]byte {
	var out [0x2000]byte
	copy(out[:], p.vram[0:0x2000])
	return out
}

// Framebuffer returns the current (possibly partially rendered) frame.
func (p *PPU) Framebuffer() *Framebuffer {
	return &p.framebuffer
}

// Scanline reports the PPU's current scanline, 0..261.
func (p *PPU) Scanline() int {
	return p.scanline
}

// vramAddress resolves a raw 14-bit VRAM address into its physical
// storage slot: pattern tables are identity-mapped, nametables fold
// through the configured mirroring, and the palette region mirrors
// every 32 bytes with the background-color aliasing quirk at
// $3F10/$14/$18/$1C.
func (p *PPU) vramAddress(addr uint16) uint16 {
	addr &= 0x3FFF
	switch {
	case addr < 0x2000:
		return addr
	case addr < 0x3F00:
		folded := 0x2000 + (addr-0x2000)%0x1000
		return p.mirrorNametable(folded)
	default:
		pal := 0x3F00 + (addr-0x3F00)%0x20
		if pal == 0x3F10 || pal == 0x3F14 || pal == 0x3F18 || pal == 0x3F1C {
			pal -= 0x10
		}
		return pal
	}
}

func (p *PPU) mirrorNametable(addr uint16) uint16 {
	table := (addr - 0x2000) / 0x400
	offset := (addr - 0x2000) % 0x400

	mirroring := p.mirroring
	if mirroring == FourScreen {
		// Four-screen mirroring needs dedicated cartridge RAM this
		// core does not model; fall back to Vertical.
		mirroring = Vertical
	}

	var physical uint16
	switch mirroring {
	case Horizontal:
		if table == 0 || table == 1 {
			physical = 0
		} else {
			physical = 1
		}
	case Vertical:
		if table == 0 || table == 2 {
			physical = 0
		} else {
			physical = 1
		}
	case SingleScreen:
		physical = 0
	}
	return 0x2000 + physical*0x400 + offset
}

// ReadRegister handles CPU reads of $2002 and $2007.
func (p *PPU) ReadRegister(addr uint16) uint8 {
	switch addr {
	case 0x2002:
		return p.readStatus()
	case 0x2007:
		return p.readData()
	default:
		panic("ppu: read of non-readable register")
	}
}

// WriteRegister handles CPU writes of $2000, $2001, $2003-$2007.
func (p *PPU) WriteRegister(addr uint16, value uint8) {
	switch addr {
	case 0x2000:
		p.ctrl1 = value
	case 0x2001:
		p.ctrl2 = value
	case 0x2003:
		p.oamAddr = value
	case 0x2004:
		p.oam[p.oamAddr] = value
		p.oamAddr++
	case 0x2005:
		p.writeScroll(value)
	case 0x2006:
		p.writeAddr(value)
	case 0x2007:
		p.writeData(value)
	default:
		panic("ppu: write of non-writable register")
	}
}

func (p *PPU) readStatus() uint8 {
	status := p.status
	p.status &^= statusVBlank
	p.latch = LatchFirst
	return status
}

func (p *PPU) writeScroll(value uint8) {
	if p.latch == LatchFirst {
		p.fineX = value
		p.latch = LatchSecond
	} else {
		p.fineY = value
		p.latch = LatchFirst
	}
}

func (p *PPU) writeAddr(value uint8) {
	if p.latch == LatchFirst {
		p.addrHighByte = value & 0x3F
		p.latch = LatchSecond
	} else {
		p.vramAddr = uint16(p.addrHighByte)<<8 | uint16(value)
		p.latch = LatchFirst
	}
}

func (p *PPU) addrIncrement() uint16 {
	if p.ctrl1&ctrl1AddrIncrement32 != 0 {
		return 32
	}
	return 1
}

func (p *PPU) readData() uint8 {
	logical := p.vramAddr & 0x3FFF
	physical := p.vramAddress(p.vramAddr)

	var value uint8
	if logical >= 0x3F00 {
		value = p.vram[physical]
	} else {
		value = p.readBuffer
		p.readBuffer = p.vram[physical]
	}
	p.vramAddr = (p.vramAddr + p.addrIncrement()) & 0x3FFF
	return value
}

func (p *PPU) writeData(value uint8) {
	physical := p.vramAddress(p.vramAddr)
	p.vram[physical] = value
	p.vramAddr = (p.vramAddr + p.addrIncrement()) & 0x3FFF
}

// OAMDMA copies 256 bytes into OAM starting at the current OAM address,
// wrapping at 256 bytes. Invoked by the bus on a $4014 write.
func (p *PPU) OAMDMA(data [256]byte) {
	for i := 0; i < oamSize; i++ {
		p.oam[(int(p.oamAddr)+i)%oamSize] = data[i]
	}
}

// Step renders the current scanline's contribution to the framebuffer,
// applies the VBlank-entry/pre-render transitions, and advances to the
// next scanline (wrapping 261 back to 0). It returns true exactly on
// the scanline where VBlank is entered with NMI-on-VBlank enabled in
// CTRL1, signalling the caller to latch an NMI for the CPU to service
// at its next instruction boundary.
func (p *PPU) Step() (nmiRequested bool) {
	switch {
	case p.scanline < visibleRows:
		p.renderBackgroundScanline()
	case p.scanline == vblankScanline:
		p.status |= statusVBlank
		p.renderSprites()
		if p.ctrl1&ctrl1NMIEnable != 0 {
			nmiRequested = true
		}
	case p.scanline == lastScanline:
		p.status &^= statusVBlank
		p.latch = LatchFirst
	}

	p.scanline++
	if p.scanline > lastScanline {
		p.scanline = 0
	}
	return nmiRequested
}

func nametableBase(bits uint8) uint16 {
	return 0x2000 + uint16(bits)*0x400
}

func (p *PPU) renderBackgroundScanline() {
	row := p.scanline

	if p.ctrl2&ctrl2ShowBackground == 0 {
		for col := 0; col < visibleCols; col++ {
			p.framebuffer[row][col] = 0
		}
		return
	}

	tileRow := row / 8
	fineY := uint16(row % 8)
	ntBase := nametableBase(p.ctrl1 & ctrl1NametableMask)

	bgPatternBase := uint16(0)
	if p.ctrl1&ctrl1BGPatternTable != 0 {
		bgPatternBase = 0x1000
	}

	for col := 0; col < tilesPerRow; col++ {
		tileIndex := tileRow*tilesPerRow + col
		tileID := p.vram[p.vramAddress(ntBase+uint16(tileIndex))]

		attrByteOffset := p.attributeByteTable[tileIndex]
		attrSquare := p.attributeSquareTable[tileIndex]
		attrByte := p.vram[p.vramAddress(ntBase+0x3C0+uint16(attrByteOffset))]
		paletteSet := (attrByte >> (attrSquare * 2)) & 0x03

		patternAddr := bgPatternBase + uint16(tileID)*16 + fineY
		plane0 := p.vram[p.vramAddress(patternAddr)]
		plane1 := p.vram[p.vramAddress(patternAddr+8)]

		for bit := 0; bit < 8; bit++ {
			shift := 7 - bit
			lo := (plane0 >> shift) & 1
			hi := (plane1 >> shift) & 1
			pixelValue := (hi << 1) | lo

			var paletteIndex uint8
			if pixelValue == 0 {
				paletteIndex = p.vram[p.vramAddress(0x3F00)]
			} else {
				paletteIndex = p.vram[p.vramAddress(0x3F00+uint16(paletteSet)*4+uint16(pixelValue))]
			}
			p.framebuffer[row][col*8+bit] = paletteIndex & 0x3F
		}
	}
}

func (p *PPU) renderSprites() {
	if p.ctrl2&ctrl2ShowSprites == 0 {
		return
	}

	spritePatternBase := uint16(0)
	if p.ctrl1&ctrl1SpritePatternTable != 0 {
		spritePatternBase = 0x1000
	}
	spriteHeight := 8
	if p.ctrl1&ctrl1SpriteSize16 != 0 {
		spriteHeight = 16
	}

	bgColor := p.vram[p.vramAddress(0x3F00)]

	for i := spritesInOAM - 1; i >= 0; i-- {
		base := i * 4
		y := int(p.oam[base]) + 1
		tile := p.oam[base+1]
		attr := p.oam[base+2]
		x := int(p.oam[base+3])

		flipH := attr&0x40 != 0
		flipV := attr&0x80 != 0
		behindBackground := attr&0x20 != 0
		paletteSet := attr & 0x03

		for row := 0; row < spriteHeight; row++ {
			screenY := y + row
			if screenY < 0 || screenY >= visibleRows {
				continue
			}
			patternRow := row
			if flipV {
				patternRow = spriteHeight - 1 - row
			}

			var tileAddr uint16
			if spriteHeight == 16 {
				table := uint16(tile&0x01) * 0x1000
				subTile := uint16(tile&0xFE) + uint16(patternRow/8)
				tileAddr = table + subTile*16 + uint16(patternRow%8)
			} else {
				tileAddr = spritePatternBase + uint16(tile)*16 + uint16(patternRow)
			}
			plane0 := p.vram[p.vramAddress(tileAddr)]
			plane1 := p.vram[p.vramAddress(tileAddr+8)]

			for col := 0; col < 8; col++ {
				screenX := x + col
				if screenX < 0 || screenX >= visibleCols {
					continue
				}
				bit := 7 - col
				if flipH {
					bit = col
				}
				lo := (plane0 >> bit) & 1
				hi := (plane1 >> bit) & 1
				pixelValue := (hi << 1) | lo
				if pixelValue == 0 {
					continue
				}
				if behindBackground && p.framebuffer[screenY][screenX] != bgColor {
					continue
				}
				paletteIndex := p.vram[p.vramAddress(0x3F10+uint16(paletteSet)*4+uint16(pixelValue))]
				p.framebuffer[screenY][screenX] = paletteIndex & 0x3F
			}
		}
	}
}
