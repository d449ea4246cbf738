// nestrace is a terminal step-debugger: it runs a cartridge against the
// core and renders a scrolling log of cpu.Trace records as they're
// emitted, one per completed instruction or interrupt dispatch.
package main

import (
	"fmt"
	"os"
	"sort"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"gopkg.in/urfave/cli.v2"

	"github.com/anhldptit2610/nesla/cpu"
	"github.com/anhldptit2610/nesla/nes"
)

const historyLimit = 500

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	rowStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	irqStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
)

type traceMsg cpu.Trace

type model struct {
	console *nes.NES
	trace   chan cpu.Trace
	history []cpu.Trace
	running bool
	err     error
}

func (m model) Init() tea.Cmd {
	return waitForTrace(m.trace)
}

func waitForTrace(ch chan cpu.Trace) tea.Cmd {
	return func() tea.Msg {
		return traceMsg(<-ch)
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		}
	case traceMsg:
		if m.running {
			m.history = append(m.history, cpu.Trace(msg))
			if len(m.history) > historyLimit {
				m.history = m.history[len(m.history)-historyLimit:]
			}
		}
		return m, waitForTrace(m.trace)
	}
	return m, nil
}

func (m model) View() string {
	out := headerStyle.Render(" PC    OP  A  X  Y  S  P  IRQ") + "\n"
	for _, t := range m.history {
		style := rowStyle
		if t.Interrupt {
			style = irqStyle
		}
		out += style.Render(fmt.Sprintf("%.4X  %.2X  %.2X %.2X %.2X %.2X %.2X %v",
			t.PC, t.Op, t.A, t.X, t.Y, t.S, t.P, t.Interrupt)) + "\n"
	}
	out += "\n(space to pause, q to quit)"
	return out
}

func main() {
	app := &cli.App{
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "rom", Aliases: []string{"r"}, Usage: "iNES ROM file to trace"},
		},
		Name:    "nestrace",
		Usage:   "step-trace a cartridge's CPU instructions in a terminal UI",
		Version: "v0.0.1",
		Action: func(c *cli.Context) error {
			romPath := c.String("rom")
			if romPath == "" {
				cli.ShowAppHelp(c)
				return cli.Exit("", 86)
			}
			return run(romPath)
		},
	}
	sort.Sort(cli.FlagsByName(app.Flags))
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(romPath string) error {
	f, err := os.Open(romPath)
	if err != nil {
		return err
	}
	defer f.Close()
	console, err := nes.Load(f)
	if err != nil {
		return err
	}

	traceCh := make(chan cpu.Trace, 64)
	console.CPU.SetTrace(func(t cpu.Trace) {
		select {
		case traceCh <- t:
		default:
		}
	})

	go func() {
		for {
			if err := console.Tick(); err != nil {
				return
			}
		}
	}()

	m := model{console: console, trace: traceCh, running: true}
	p := tea.NewProgram(m)
	_, err = p.Run()
	return err
}
