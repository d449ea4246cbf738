// Package ppu models the 2C02's register-visible behavior: the CPU's
// $2000-$2007 window, VRAM address latch/auto-increment, VBlank timing
// and the NMI line it drives. Pixel rendering is out of scope; nothing
// here produces a framebuffer.
package ppu

import "github.com/anhldptit2610/nesla/mapper"

const (
	dotsPerScanline   = 341
	scanlinesPerFrame = 262
	vblankScanline    = 241
	preRenderScanline = 261
)

// PPU is the register/timing model. Cart supplies pattern-table (CHR)
// data; it may be nil until a cartridge is inserted, in which case
// pattern-table reads return 0. Nametable mirroring is set separately
// through SetMirroring.
type PPU struct {
	cart mapper.Mapper

	ctrl   uint8 // $2000
	mask   uint8 // $2001
	status uint8 // $2002 (only bits 5-7 are meaningful; 0-4 read back as last bus value)
	oamAddr uint8

	oam [256]uint8
	nt  [2][0x400]uint8 // two physical nametables; mirroring picks which one a given address lands on
	pal [32]uint8

	v uint16 // current VRAM address
	t uint16 // temporary VRAM address (scroll latch)
	x uint8  // fine X scroll
	w bool   // write toggle shared by $2005/$2006

	readBuffer uint8 // PPUDATA's one-read-behind buffering for non-palette addresses
	busLatch   uint8 // last byte written to/read from any PPU register, for open-bus bits

	dot      int
	scanline int
	nmiLine  bool // Output NMI line, sampled by the CPU's irq.Sender.
	oddFrame bool

	mirrorHorizontal bool // Set from the iNES header at cartridge-insert time.
}

// New returns a powered-off PPU not yet attached to a cartridge.
func New() *PPU {
	return &PPU{}
}

// AttachCartridge wires pattern-table data in. Call before PowerOn.
func (p *PPU) AttachCartridge(cart mapper.Mapper) {
	p.cart = cart
}

// PowerOn resets all register and timing state.
func (p *PPU) PowerOn() {
	p.ctrl, p.mask, p.status, p.oamAddr = 0, 0, 0, 0
	p.v, p.t, p.x, p.w = 0, 0, 0, false
	p.readBuffer, p.busLatch = 0, 0
	p.dot, p.scanline = 0, 0
	p.nmiLine, p.oddFrame = false, false
}

// Raised implements irq.Sender for the NMI line.
func (p *PPU) Raised() bool { return p.nmiLine }

// Tick advances the PPU by one dot (1/3 of a CPU cycle). The bus calls
// this three times per CPU bus access.
func (p *PPU) Tick() {
	p.dot++
	if p.dot >= dotsPerScanline {
		p.dot = 0
		p.scanline++
		if p.scanline >= scanlinesPerFrame {
			p.scanline = 0
			p.oddFrame = !p.oddFrame
		}
	}

	if p.scanline == vblankScanline && p.dot == 1 {
		p.status |= 0x80 // set VBlank
		p.updateNMI()
	}
	if p.scanline == preRenderScanline && p.dot == 1 {
		p.status &^= 0xE0 // clear VBlank, sprite 0 hit, sprite overflow
		p.updateNMI()
	}
}

// updateNMI re-evaluates the NMI output line from VBlank status and the
// ctrl register's NMI-enable bit (bit 7). Matches the hardware behavior
// that toggling either one mid-VBlank can raise or drop NMI immediately.
func (p *PPU) updateNMI() {
	p.nmiLine = p.status&0x80 != 0 && p.ctrl&0x80 != 0
}

// Read implements the CPU-facing register window ($2000-$2007, mirrored
// every 8 bytes by the caller masking addr&0x7 first).
func (p *PPU) Read(addr uint16) uint8 {
	var val uint8
	switch addr & 0x7 {
	case 2: // PPUSTATUS
		val = (p.busLatch & 0x1F) | (p.status & 0xE0)
		p.status &^= 0x80 // reading clears VBlank
		p.w = false
		p.updateNMI()
	case 4: // OAMDATA
		val = p.oam[p.oamAddr]
	case 7: // PPUDATA
		val = p.readVRAM(p.v)
		p.incrementV()
	default:
		val = p.busLatch
	}
	p.busLatch = val
	return val
}

// Write implements the CPU-facing register window.
func (p *PPU) Write(addr uint16, val uint8) {
	p.busLatch = val
	switch addr & 0x7 {
	case 0: // PPUCTRL
		p.ctrl = val
		p.t = (p.t & 0x73FF) | (uint16(val&0x03) << 10)
		p.updateNMI()
	case 1: // PPUMASK
		p.mask = val
	case 3: // OAMADDR
		p.oamAddr = val
	case 4: // OAMDATA
		p.oam[p.oamAddr] = val
		p.oamAddr++
	case 5: // PPUSCROLL
		if !p.w {
			p.t = (p.t & 0x7FE0) | uint16(val>>3)
			p.x = val & 0x07
		} else {
			p.t = (p.t & 0x0C1F) | uint16(val&0x07)<<12 | uint16(val>>3)<<5
		}
		p.w = !p.w
	case 6: // PPUADDR
		if !p.w {
			p.t = (p.t & 0x00FF) | uint16(val&0x3F)<<8
		} else {
			p.t = (p.t & 0x7F00) | uint16(val)
			p.v = p.t
		}
		p.w = !p.w
	case 7: // PPUDATA
		p.writeVRAM(p.v, val)
		p.incrementV()
	}
}

func (p *PPU) incrementV() {
	if p.ctrl&0x04 != 0 {
		p.v += 32
	} else {
		p.v++
	}
}

// readVRAM implements the PPUDATA read-behind-buffer quirk: palette reads
// are immediate, everything else returns the previous buffer contents and
// refills the buffer with the newly addressed byte.
func (p *PPU) readVRAM(addr uint16) uint8 {
	addr &= 0x3FFF
	if addr >= 0x3F00 {
		return p.pal[p.paletteIndex(addr)]
	}
	val := p.readBuffer
	p.readBuffer = p.fetchVRAM(addr)
	return val
}

func (p *PPU) writeVRAM(addr uint16, val uint8) {
	addr &= 0x3FFF
	if addr >= 0x3F00 {
		p.pal[p.paletteIndex(addr)] = val
		return
	}
	p.storeVRAM(addr, val)
}

func (p *PPU) paletteIndex(addr uint16) uint16 {
	idx := addr & 0x1F
	// $3F10/$3F14/$3F18/$3F1C mirror the universal background color.
	if idx&0x13 == 0x10 {
		idx &^= 0x10
	}
	return idx
}

func (p *PPU) fetchVRAM(addr uint16) uint8 {
	switch {
	case addr < 0x2000:
		if p.cart != nil {
			return p.cart.ReadCHR(addr)
		}
		return 0
	default:
		return p.nt[p.nametableBank(addr)][addr&0x3FF]
	}
}

func (p *PPU) storeVRAM(addr uint16, val uint8) {
	switch {
	case addr < 0x2000:
		if p.cart != nil {
			p.cart.WriteCHR(addr, val)
		}
	default:
		p.nt[p.nametableBank(addr)][addr&0x3FF] = val
	}
}

// nametableBank resolves which of the two physical 1KB nametables a
// $2000-$2FFF (or its $3000-$3EFF mirror) address lands on, per the
// cartridge's declared mirroring.
func (p *PPU) nametableBank(addr uint16) int {
	addr &= 0x2FFF
	quadrant := (addr - 0x2000) / 0x400
	if p.horizontalMirroring() {
		return int(quadrant / 2)
	}
	return int(quadrant % 2)
}

func (p *PPU) horizontalMirroring() bool {
	return p.mirrorHorizontal
}

// SetMirroring records the cartridge's nametable mirroring, read off the
// iNES header at insert time (mapper 0 carries no mirroring logic of its
// own so the PPU takes it directly rather than asking the mapper).
func (p *PPU) SetMirroring(horizontal bool) {
	p.mirrorHorizontal = horizontal
}
