// nesdasm loads an iNES cartridge and statically disassembles its PRG
// ROM starting from the CPU reset vector (or -start), walking linearly
// for -count instructions (it does not follow branches/jumps).
package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/anhldptit2610/nesla/disassemble"
	"github.com/anhldptit2610/nesla/nes"
	"gopkg.in/urfave/cli.v2"
)

func main() {
	app := &cli.App{
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "rom", Aliases: []string{"r"}, Usage: "iNES ROM file to disassemble"},
			&cli.IntFlag{Name: "start", Usage: "PC to start at; defaults to the reset vector", Value: -1},
			&cli.IntFlag{Name: "count", Usage: "number of instructions to print", Value: 64},
		},
		Name:    "nesdasm",
		Usage:   "statically disassemble an iNES cartridge's PRG ROM",
		Version: "v0.0.1",
		Action: func(c *cli.Context) error {
			romPath := c.String("rom")
			if romPath == "" {
				cli.ShowAppHelp(c)
				return cli.Exit("", 86)
			}
			f, err := os.Open(romPath)
			if err != nil {
				return cli.Exit(err.Error(), 1)
			}
			defer f.Close()

			console, err := nes.Load(f)
			if err != nil {
				return cli.Exit(err.Error(), 1)
			}

			pc := console.CPU.PC
			if v := c.Int("start"); v >= 0 {
				pc = uint16(v)
			}
			for i := 0; i < c.Int("count"); i++ {
				out, n := disassemble.Step(pc, console)
				fmt.Println(out)
				pc += uint16(n)
			}
			return nil
		},
	}
	sort.Sort(cli.FlagsByName(app.Flags))
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
