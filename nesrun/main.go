// nesrun runs a cartridge against the core and renders a live register
// overlay in an SDL2 window. The core in this module stops at
// cycle-accurate CPU/PPU timing and bus decode; it produces no pixel
// output, so this is a debug harness rather than a player.
package main

import (
	"fmt"
	"image"
	"image/color"
	"os"
	"sort"
	"sync"
	"time"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"gopkg.in/urfave/cli.v2"

	"github.com/veandco/go-sdl2/sdl"

	"github.com/anhldptit2610/nesla/nes"
)

const (
	winWidth  = 512
	winHeight = 240
)

// fastImage wraps an SDL surface as a draw.Image so font.Drawer can blit
// text straight into the window's pixel buffer.
type fastImage struct {
	surface *sdl.Surface
	data    []byte
}

func (f *fastImage) Set(x, y int, c color.Color) {
	if x < 0 || y < 0 || int32(x) >= f.surface.W || int32(y) >= f.surface.H {
		return
	}
	i := int32(y)*f.surface.Pitch + int32(x)*int32(f.surface.Format.BytesPerPixel)
	r, g, b, a := c.RGBA()
	f.data[i+0] = byte(b >> 8)
	f.data[i+1] = byte(g >> 8)
	f.data[i+2] = byte(r >> 8)
	f.data[i+3] = byte(a >> 8)
}

func (f *fastImage) ColorModel() color.Model { return f.surface.ColorModel() }
func (f *fastImage) Bounds() image.Rectangle { return f.surface.Bounds() }
func (f *fastImage) At(x, y int) color.Color { return f.surface.At(x, y) }

func main() {
	app := &cli.App{
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "rom", Aliases: []string{"r"}, Usage: "iNES ROM file to run"},
			&cli.IntFlag{Name: "scale", Aliases: []string{"s"}, Usage: "window scale factor", Value: 2},
		},
		Name:    "nesrun",
		Usage:   "run a cartridge and show live register state in an SDL2 window",
		Version: "v0.0.1",
		Action: func(c *cli.Context) error {
			romPath := c.String("rom")
			if romPath == "" {
				cli.ShowAppHelp(c)
				return cli.Exit("", 86)
			}
			return run(romPath, c.Int("scale"))
		},
	}
	sort.Sort(cli.FlagsByName(app.Flags))
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(romPath string, scale int) error {
	f, err := os.Open(romPath)
	if err != nil {
		return err
	}
	defer f.Close()
	console, err := nes.Load(f)
	if err != nil {
		return err
	}

	var runErr error
	sdl.Main(func() {
		var window *sdl.Window
		fi := &fastImage{}
		var wg sync.WaitGroup
		wg.Add(1)
		sdl.Do(func() {
			if err := sdl.Init(sdl.INIT_EVERYTHING); err != nil {
				runErr = fmt.Errorf("init SDL: %w", err)
				wg.Done()
				return
			}
			window, err = sdl.CreateWindow("nesrun", sdl.WINDOWPOS_UNDEFINED, sdl.WINDOWPOS_UNDEFINED,
				int32(winWidth*scale), int32(winHeight*scale), sdl.WINDOW_SHOWN)
			if err != nil {
				runErr = fmt.Errorf("create window: %w", err)
				wg.Done()
				return
			}
			fi.surface, err = window.GetSurface()
			if err != nil {
				runErr = fmt.Errorf("get surface: %w", err)
				wg.Done()
				return
			}
			fi.data = fi.surface.Pixels()
			wg.Done()
		})
		wg.Wait()
		if runErr != nil {
			return
		}
		defer func() {
			window.Destroy()
			sdl.Quit()
		}()

		drawer := &font.Drawer{
			Dst:  fi,
			Src:  image.NewUniform(color.RGBA{0xE0, 0xE0, 0xE0, 0xFF}),
			Face: basicfont.Face7x13,
		}

		running := true
		frame := 0
		for running {
			sdl.Do(func() {
				for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
					if _, ok := event.(*sdl.QuitEvent); ok {
						running = false
					}
				}
			})

			// Run roughly one frame's worth of CPU cycles (NTSC: 29780.5
			// CPU cycles per 262-scanline frame) before redrawing the
			// overlay; exact PPU pixel output is out of scope.
			for i := 0; i < 29781; i++ {
				if err := console.Tick(); err != nil {
					runErr = err
					running = false
					break
				}
			}

			sdl.Do(func() {
				fillRect(fi, 0, 0, winWidth*scale, winHeight*scale, color.RGBA{0x10, 0x10, 0x10, 0xFF})
				lines := []string{
					fmt.Sprintf("frame %d", frame),
					fmt.Sprintf("PC:%.4X A:%.2X X:%.2X Y:%.2X S:%.2X P:%.2X", console.CPU.PC, console.CPU.A, console.CPU.X, console.CPU.Y, console.CPU.S, console.CPU.P),
				}
				for i, line := range lines {
					drawer.Dot = fixed.Point26_6{X: fixed.I(8), Y: fixed.I(16 + i*16)}
					drawer.DrawString(line)
				}
				window.UpdateSurface()
			})
			frame++
			time.Sleep(16 * time.Millisecond)
		}
	})
	return runErr
}

func fillRect(img *fastImage, x, y, w, h int, c color.Color) {
	for yy := y; yy < y+h; yy++ {
		for xx := x; xx < x+w; xx++ {
			img.Set(xx, yy, c)
		}
	}
}
