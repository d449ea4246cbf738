// Package apu models just enough of the 2A03's memory-mapped surface
// ($4000-$4017) for the CPU to see correct register behavior. Audio
// synthesis is out of scope; this is a register bank with two pieces of
// real side-effecting behavior layered on top of it: the status register
// ($4015) and the frame counter control register ($4017).
package apu

import "github.com/anhldptit2610/nesla/memory"

// APU is the $4000-$401F register surface. Most of it is a flat byte
// array (Non-goal: actual sound generation); $4015 and $4017 get the
// side effects real software depends on for timing.
type APU struct {
	reg        [0x20]uint8 // $4000-$401F, minus the two specialized below.
	frameIRQ   bool        // Pending frame-sequencer IRQ.
	frameMode5 bool        // True if $4017 bit 7 selected 5-step mode (disables the IRQ).
	inhibitIRQ bool        // $4017 bit 6: frame IRQ generation disabled.
	databusVal uint8
}

// New returns a powered-off APU register bank.
func New() *APU {
	return &APU{}
}

// Read implements memory.Bank over $4000-$401F (the caller masks the
// address into this range first; io ports $4016/$4018-$401F fall through
// to the flat array like any other unmodeled register).
func (a *APU) Read(addr uint16) uint8 {
	var val uint8
	switch addr & 0x1F {
	case 0x15:
		val = a.status()
		// Reading $4015 acknowledges (clears) the frame IRQ.
		a.frameIRQ = false
	default:
		val = a.reg[addr&0x1F]
	}
	a.databusVal = val
	return val
}

// Write implements memory.Bank.
func (a *APU) Write(addr uint16, val uint8) {
	a.databusVal = val
	switch addr & 0x1F {
	case 0x17:
		a.frameMode5 = val&0x80 != 0
		a.inhibitIRQ = val&0x40 != 0
		if a.inhibitIRQ || a.frameMode5 {
			// 5-step mode and the inhibit bit both suppress the frame IRQ
			// immediately, per NES frame-counter semantics.
			a.frameIRQ = false
		}
	default:
		a.reg[addr&0x1F] = val
	}
}

// PowerOn resets all registers and pending IRQ state.
func (a *APU) PowerOn() {
	for i := range a.reg {
		a.reg[i] = 0
	}
	a.frameIRQ = false
	a.frameMode5 = false
	a.inhibitIRQ = false
}

// Parent implements memory.Bank; the APU bank has no parent chain.
func (a *APU) Parent() memory.Bank { return nil }

// DatabusVal implements memory.Bank.
func (a *APU) DatabusVal() uint8 { return a.databusVal }

// Raised implements irq.Sender for the frame counter's IRQ line.
func (a *APU) Raised() bool { return a.frameIRQ }

// status computes the $4015 read value. Only the frame-IRQ bit (6) is
// meaningful here since the channel length counters are unimplemented
// (Non-goal: audio output); they always read back as silent/zero.
func (a *APU) status() uint8 {
	var v uint8
	if a.frameIRQ {
		v |= 0x40
	}
	return v
}
