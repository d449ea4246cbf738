// Package disassemble implements a disassembler for 6502 opcodes running
// against the NES memory map. Mnemonics and addressing modes come straight
// from cpu.OpcodeMnemonic so this package carries no opcode table of its
// own to fall out of sync with the core; what it adds is NES-specific:
// resolving absolute-mode operands that land on a known PPU/APU/controller
// register into its hardware name.
package disassemble

import (
	"fmt"
	"strings"

	"github.com/anhldptit2610/nesla/cpu"
	"github.com/anhldptit2610/nesla/memory"
)

// regName maps a mirror-reduced hardware register address to its NESDev
// name, for absolute-mode operands that fall in $2000-$2007 (PPU, mirrored
// every 8 bytes through $3FFF), $4000-$4017 (APU/IO) or $4014 (OAM DMA).
var regName = map[uint16]string{
	0x2000: "PPUCTRL",
	0x2001: "PPUMASK",
	0x2002: "PPUSTATUS",
	0x2003: "OAMADDR",
	0x2004: "OAMDATA",
	0x2005: "PPUSCROLL",
	0x2006: "PPUADDR",
	0x2007: "PPUDATA",
	0x4000: "SQ1_VOL",
	0x4001: "SQ1_SWEEP",
	0x4002: "SQ1_LO",
	0x4003: "SQ1_HI",
	0x4004: "SQ2_VOL",
	0x4005: "SQ2_SWEEP",
	0x4006: "SQ2_LO",
	0x4007: "SQ2_HI",
	0x4008: "TRI_LINEAR",
	0x400A: "TRI_LO",
	0x400B: "TRI_HI",
	0x400C: "NOISE_VOL",
	0x400E: "NOISE_LO",
	0x400F: "NOISE_HI",
	0x4010: "DMC_FREQ",
	0x4011: "DMC_RAW",
	0x4012: "DMC_START",
	0x4013: "DMC_LEN",
	0x4014: "OAMDMA",
	0x4015: "SND_CHN",
	0x4016: "JOY1",
	0x4017: "JOY2",
}

// registerName returns the NESDev register name for addr, or "" if it
// doesn't map to a known register. PPU ports mirror every 8 bytes from
// $2008 through $3FFF.
func registerName(addr uint16) string {
	if addr >= 0x2008 && addr < 0x4000 {
		addr = 0x2000 + (addr & 0x0007)
	}
	return regName[addr]
}

// Step disassembles the instruction at pc, returning the formatted line and
// the number of bytes (including the opcode) the instruction occupies. Like
// the original 6502, this always reads two bytes past pc whether or not
// they're meaningful for the opcode found, so both addresses must be valid
// reads on r.
func Step(pc uint16, r memory.Bank) (string, int) {
	o := r.Read(pc)
	b1 := r.Read(pc + 1)
	b2 := r.Read(pc + 2)

	full := cpu.OpcodeMnemonic(o)
	op, suffix := full, ""
	if i := strings.IndexByte(full, ' '); i >= 0 {
		op, suffix = full[:i], full[i+1:]
	}

	out := fmt.Sprintf("%.4X %.2X ", pc, o)
	switch suffix {
	case "":
		out += fmt.Sprintf("        %s           ", op)
		return out, 1
	case "#i":
		out += fmt.Sprintf("%.2X      %s #%.2X       ", b1, op, b1)
		return out, 2
	case "d":
		out += fmt.Sprintf("%.2X      %s %.2X        ", b1, op, b1)
		return out, 2
	case "d,x":
		out += fmt.Sprintf("%.2X      %s %.2X,X      ", b1, op, b1)
		return out, 2
	case "d,y":
		out += fmt.Sprintf("%.2X      %s %.2X,Y      ", b1, op, b1)
		return out, 2
	case "(d,x)":
		out += fmt.Sprintf("%.2X      %s (%.2X,X)    ", b1, op, b1)
		return out, 2
	case "(d),y":
		out += fmt.Sprintf("%.2X      %s (%.2X),Y    ", b1, op, b1)
		return out, 2
	case "*+d":
		target := pc + 2 + uint16(int16(int8(b1)))
		out += fmt.Sprintf("%.2X      %s %.2X (%.4X) ", b1, op, b1, target)
		return out, 2
	}

	// Everything left is a two operand byte mode: a / a,x / a,y / (a).
	addr := (uint16(b2) << 8) | uint16(b1)
	reg := registerName(addr)
	switch suffix {
	case "a":
		if reg != "" {
			out += fmt.Sprintf("%.2X %.2X   %s %.2X%.2X [%s] ", b1, b2, op, b2, b1, reg)
		} else {
			out += fmt.Sprintf("%.2X %.2X   %s %.2X%.2X      ", b1, b2, op, b2, b1)
		}
	case "a,x":
		out += fmt.Sprintf("%.2X %.2X   %s %.2X%.2X,X    ", b1, b2, op, b2, b1)
	case "a,y":
		out += fmt.Sprintf("%.2X %.2X   %s %.2X%.2X,Y    ", b1, b2, op, b2, b1)
	case "(a)":
		out += fmt.Sprintf("%.2X %.2X   %s (%.2X%.2X)    ", b1, b2, op, b2, b1)
	default:
		panic(fmt.Sprintf("disassemble: unrecognized addressing suffix %q for opcode 0x%.2X", suffix, o))
	}
	return out, 3
}
