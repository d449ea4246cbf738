// Package mapper implements the cartridge address-translation boards that
// sit on both the CPU and PPU buses. Only mapper 0 (NROM) is implemented;
// everything else is out of scope per spec.
package mapper

import (
	"fmt"

	"github.com/anhldptit2610/nesla/ines"
	"github.com/anhldptit2610/nesla/memory"
)

// UnsupportedMapper is returned when a ROM names a mapper number this
// module doesn't implement.
type UnsupportedMapper struct {
	Number uint8
}

// Error implements the error interface.
func (e UnsupportedMapper) Error() string {
	return fmt.Sprintf("unsupported mapper: %d", e.Number)
}

// Mapper is the interface the console's bus and PPU address through.
// It implements memory.Bank for the CPU's cartridge window ($4020-$FFFF)
// directly; CHR access is separate since it lives on the PPU's own bus
// and (unlike PRG) may be backed by RAM instead of ROM.
type Mapper interface {
	memory.Bank

	// ReadCHR/WriteCHR address the PPU's $0000-$1FFF pattern table window.
	ReadCHR(addr uint16) uint8
	WriteCHR(addr uint16, val uint8)

	// Raised reports the mapper's IRQ line. Mapper 0 never asserts it;
	// this exists so nes.NES can fold it into irq.Senders uniformly
	// without special-casing mapper 0.
	Raised() bool
}

// New builds the Mapper named by a parsed ROM's header, or returns
// UnsupportedMapper.
func New(rom *ines.ROM) (Mapper, error) {
	switch rom.Mapper {
	case 0:
		return newMapper000(rom), nil
	default:
		return nil, UnsupportedMapper{rom.Mapper}
	}
}

// mapper000 implements NROM: a single fixed 16KB or 32KB PRG window and a
// fixed 8KB CHR window (ROM or, if the cartridge declared none, RAM).
type mapper000 struct {
	prg []uint8
	chr []uint8

	chrIsRAM   bool
	databusVal uint8
}

func newMapper000(rom *ines.ROM) *mapper000 {
	m := &mapper000{prg: rom.PRG}
	if len(rom.CHR) == 0 {
		m.chr = make([]uint8, 8*1024)
		m.chrIsRAM = true
	} else {
		m.chr = rom.CHR
	}
	return m
}

// Read implements memory.Bank over the CPU's $8000-$FFFF window. A single
// 16KB bank mirrors across both halves; two banks map straight through.
func (m *mapper000) Read(addr uint16) uint8 {
	off := m.prgOffset(addr)
	val := m.prg[off]
	m.databusVal = val
	return val
}

// Write implements memory.Bank; PRG ROM is not writable on NROM boards.
func (m *mapper000) Write(addr uint16, val uint8) {
	m.databusVal = val
}

func (m *mapper000) prgOffset(addr uint16) uint16 {
	if len(m.prg) > 16*1024 {
		return addr & 0x7FFF
	}
	return addr & 0x3FFF
}

// PowerOn implements memory.Bank. PRG ROM contents never change.
func (m *mapper000) PowerOn() {}

// Parent implements memory.Bank; the cartridge is always the outermost
// bank for its own window.
func (m *mapper000) Parent() memory.Bank { return nil }

// DatabusVal implements memory.Bank.
func (m *mapper000) DatabusVal() uint8 { return m.databusVal }

// ReadCHR reads the PPU's $0000-$1FFF pattern table window.
func (m *mapper000) ReadCHR(addr uint16) uint8 {
	return m.chr[addr&0x1FFF]
}

// WriteCHR writes the pattern table window. Only meaningful when the
// cartridge declared CHR RAM; writes to CHR ROM are dropped.
func (m *mapper000) WriteCHR(addr uint16, val uint8) {
	if m.chrIsRAM {
		m.chr[addr&0x1FFF] = val
	}
}

// Raised implements irq.Sender. NROM has no onboard IRQ source.
func (m *mapper000) Raised() bool { return false }
