// Package nes wires a CPU, PPU, mapper and the flat memory surfaces
// together into a runnable console: it owns the address decode (the
// "MMU" from the component design), and drives the PPU-ticks-three-times
// cycle engine from inside each CPU bus access.
package nes

import (
	"io"

	"github.com/anhldptit2610/nesla/apu"
	"github.com/anhldptit2610/nesla/cpu"
	"github.com/anhldptit2610/nesla/ines"
	"github.com/anhldptit2610/nesla/irq"
	"github.com/anhldptit2610/nesla/mapper"
	"github.com/anhldptit2610/nesla/memory"
	"github.com/anhldptit2610/nesla/ppu"
)

const (
	ramSize       = 2 * 1024
	ramMask       = 0x1FFF
	ppuWindowLow  = 0x2000
	ppuWindowHigh = 0x3FFF
	apuWindowLow  = 0x4000
	apuWindowHigh = 0x401F
)

// NES is the console context: the single memory.Bank the CPU talks to,
// decoding every access into RAM, the PPU register window, the APU/IO
// surface, or the cartridge, per the memory map.
type NES struct {
	CPU    *cpu.Chip
	PPU    *ppu.PPU
	APU    *apu.APU
	Mapper mapper.Mapper
	ram    *memory.MirroredBank
	open   *memory.OpenBus

	databusVal uint8
}

// New builds a console around a parsed ROM and returns it powered on and
// ready to Tick.
func New(rom *ines.ROM) (*NES, error) {
	m, err := mapper.New(rom)
	if err != nil {
		return nil, err
	}

	n := &NES{
		PPU:    ppu.New(),
		APU:    apu.New(),
		Mapper: m,
	}
	ram, err := memory.New8BitRAMBank(ramSize, nil)
	if err != nil {
		return nil, err
	}
	mirrored, err := memory.NewMirroredBank(ram, ramSize)
	if err != nil {
		return nil, err
	}
	n.ram = mirrored
	n.open = memory.NewOpenBus(func() uint8 { return n.databusVal })

	n.PPU.AttachCartridge(m)
	n.PPU.SetMirroring(rom.Mirroring == ines.MirrorHorizontal)
	n.PowerOn()

	c, err := cpu.Init(&cpu.ChipDef{
		Cpu: cpu.CPU_NMOS_RICOH,
		Ram: n,
		Nmi: n.PPU,
		Irq: irq.Senders{n.Mapper, n.APU},
	})
	if err != nil {
		return nil, err
	}
	n.CPU = c

	return n, nil
}

// Load reads an iNES file and builds a console from it.
func Load(r io.Reader) (*NES, error) {
	rom, err := ines.Load(r)
	if err != nil {
		return nil, err
	}
	return New(rom)
}

// Tick runs one CPU cycle: exactly one CPU bus access (zero or more of
// which trigger through Read/Write below, each ticking the PPU three
// times), matching the NES's 1 CPU cycle : 3 PPU dot ratio.
func (n *NES) Tick() error {
	err := n.CPU.Tick()
	n.CPU.TickDone()
	return err
}

// Read implements memory.Bank: the CPU's view of the entire 64KB space.
func (n *NES) Read(addr uint16) uint8 {
	n.tickPPU()
	var val uint8
	switch {
	case addr <= ramMask:
		val = n.ram.Read(addr)
	case addr >= ppuWindowLow && addr <= ppuWindowHigh:
		val = n.PPU.Read(addr & 0x0007)
	case addr >= apuWindowLow && addr <= apuWindowHigh:
		val = n.APU.Read(addr)
	case addr >= 0x4020:
		val = n.Mapper.Read(addr)
	default:
		val = n.open.Read(addr)
	}
	n.databusVal = val
	return val
}

// Write implements memory.Bank.
func (n *NES) Write(addr uint16, val uint8) {
	n.tickPPU()
	n.databusVal = val
	switch {
	case addr <= ramMask:
		n.ram.Write(addr, val)
	case addr >= ppuWindowLow && addr <= ppuWindowHigh:
		n.PPU.Write(addr&0x0007, val)
	case addr >= apuWindowLow && addr <= apuWindowHigh:
		n.APU.Write(addr, val)
	case addr >= 0x4020:
		n.Mapper.Write(addr, val)
	}
}

// tickPPU advances the PPU three dots for every CPU bus access, the core
// of the cycle engine: 1 CPU cycle == 1 bus access == 3 PPU dots.
func (n *NES) tickPPU() {
	n.PPU.Tick()
	n.PPU.Tick()
	n.PPU.Tick()
}

// PowerOn resets every collaborator to its power-on state.
func (n *NES) PowerOn() {
	n.ram.PowerOn()
	n.PPU.PowerOn()
	n.APU.PowerOn()
	n.Mapper.PowerOn()
}

// Parent implements memory.Bank; NES is always the outermost bank.
func (n *NES) Parent() memory.Bank { return nil }

// DatabusVal implements memory.Bank.
func (n *NES) DatabusVal() uint8 { return n.databusVal }
