// chr2png dumps the pattern tables of an iNES cartridge to PNG tile
// sheets, one 256x128 image per 8KB CHR bank (32 tiles wide, 16 tall,
// matching the layout tools like FCEUX's PPU viewer use).
package main

import (
	"encoding/hex"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math/bits"
	"os"
	"sort"

	"github.com/anhldptit2610/nesla/ines"
	"gopkg.in/urfave/cli.v2"
)

const (
	rgbSize         = 3
	pageSizeInBytes = 256 * 16 // 16x16 tiles, 16 bytes/tile
)

// paletteRGB is the default 64-color NES master palette, RGB triplets.
const paletteRGB = "6d6d6d0024920000db6d49db92006db6006db624009249006d4900244900006d24009200004949000000000000000000b6b6b6006ddb0049ff9200ffb600ffff0092ff0000db6d00926d0024920000920000b66d009292242424000000000000ffffff6db6ff9292ffdb6dffff00ffff6dffff9200ffb600dbdb006ddb0000ff0049ffdb00ffff494949000000000000ffffffb6dbffdbb6ffffb6ffff92ffffb6b6ffdb92ffff49ffff6db6ff4992ff6d49ffdb92dbff929292000000000000"

func main() {
	app := &cli.App{
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "rom", Aliases: []string{"r"}, Usage: "iNES ROM file to dump CHR from"},
			&cli.StringFlag{Name: "sp", Aliases: []string{"s"}, Usage: "four palette-index bytes, hex, used for the 2bpp tiles", Value: "22271618"},
			&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "output file prefix", Value: "chr"},
		},
		Name:    "chr2png",
		Usage:   "dump a cartridge's pattern tables to PNG tile sheets",
		Version: "v0.0.1",
		Action: func(c *cli.Context) error {
			romPath := c.String("rom")
			if romPath == "" {
				cli.ShowAppHelp(c)
				return cli.Exit("", 86)
			}
			spritePalette, err := hex.DecodeString(c.String("sp"))
			if err != nil {
				return cli.Exit(fmt.Sprintf("invalid -sp: %v", err), 1)
			}
			palette, err := hex.DecodeString(paletteRGB)
			if err != nil {
				return cli.Exit(fmt.Sprintf("invalid built-in palette: %v", err), 1)
			}

			f, err := os.Open(romPath)
			if err != nil {
				return cli.Exit(err.Error(), 1)
			}
			defer f.Close()
			rom, err := ines.Load(f)
			if err != nil {
				return cli.Exit(err.Error(), 1)
			}
			if len(rom.CHR) == 0 {
				return cli.Exit("cartridge uses CHR RAM; nothing to dump", 1)
			}

			out := c.String("out")
			for bank := 0; bank*8*1024 < len(rom.CHR); bank++ {
				lo := bank * 8 * 1024
				hi := lo + 8*1024
				if hi > len(rom.CHR) {
					hi = len(rom.CHR)
				}
				fn := fmt.Sprintf("%s_%04d.png", out, bank)
				if err := drawPNG(fn, rom.CHR[lo:hi], palette, spritePalette); err != nil {
					return cli.Exit(err.Error(), 1)
				}
				fmt.Printf("wrote %s\n", fn)
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

func setTilePixel(y int, line byte, buf []uint, add bool) {
	mirror := bits.Reverse8(line)
	for x := 0; x < 8; x++ {
		bit := uint(mirror) >> uint(x) & 0x1
		pos := y*8 + x
		if add {
			buf[pos] = buf[pos]*2 + bit
		} else {
			buf[pos] = bit
		}
	}
}

func writeTile(img *image.RGBA, page, tx, ty int, pixels []uint, palette, spritePalette []byte) {
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			pixel := pixels[y*8+x]
			ox := (tx+page*16)*8 + x
			oy := ty*8 + y
			paletteValue := spritePalette[pixel]
			r := palette[int(paletteValue)*rgbSize]
			g := palette[int(paletteValue)*rgbSize+1]
			b := palette[int(paletteValue)*rgbSize+2]
			img.Set(ox, oy, color.RGBA{r, g, b, 255})
		}
	}
}

func drawPNG(fn string, data []byte, palette, spritePalette []byte) error {
	img := image.NewRGBA(image.Rect(0, 0, 256, 128))
	tileData := make([]uint, 64)
	for i, b := range data {
		page := i / pageSizeInBytes
		ii := i % pageSizeInBytes
		tileX := ii / 16 % 16
		tileY := ii / 256
		ti := i % 16
		if ti < 8 {
			setTilePixel(i%8, b, tileData, false)
		} else {
			setTilePixel(i%8, b, tileData, true)
		}
		if ti == 15 {
			writeTile(img, page, tileX, tileY, tileData, palette, spritePalette)
		}
	}

	f, err := os.OpenFile(fn, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}
