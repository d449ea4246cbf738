package cpu

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/anhldptit2610/nesla/memory"
)

var vectorPath = flag.String("vectorpath", "", "directory of per-opcode 6502 JSON test vectors (ProcessorTests/65x02 format)")
var vectorStrict = flag.Bool("vectorstrict", false, "run vector files with documented known failures")

// vectorSkip lists opcode files that are expected to fail against this
// implementation for documented reasons, matching the Non-goals: the six
// declared "highly unstable" undocumented opcodes are only best-effort.
var vectorSkip = map[string]string{
	"ane.json": "ANE is documented unstable; only a best-effort formula is implemented",
	"lxa.json": "LXA is documented unstable; only a best-effort formula is implemented",
	"sha.json": "SHA is documented unstable; only a best-effort formula is implemented",
	"shx.json": "SHX is documented unstable; only a best-effort formula is implemented",
	"shy.json": "SHY is documented unstable; only a best-effort formula is implemented",
	"tas.json": "TAS is documented unstable; only a best-effort formula is implemented",
}

type vectorState struct {
	PC  uint16     `json:"pc"`
	S   uint8      `json:"s"`
	A   uint8      `json:"a"`
	X   uint8      `json:"x"`
	Y   uint8      `json:"y"`
	P   uint8      `json:"p"`
	RAM [][]int    `json:"ram"`
}

type vectorTest struct {
	Name    string        `json:"name"`
	Initial vectorState   `json:"initial"`
	Final   vectorState   `json:"final"`
	Cycles  []interface{} `json:"cycles"`
}

// busOp is one entry of a replayed bus transaction: an address, the value
// that crossed the bus, and whether it was a read or a write.
type busOp struct {
	addr uint16
	val  uint8
	kind string
}

// recordingMemory wraps a memory.Bank and records every Read/Write it sees,
// in order, so a full instruction's bus traffic can be diffed against the
// vector file's own per-cycle trace rather than only final state.
type recordingMemory struct {
	memory.Bank
	ops []busOp
}

func (r *recordingMemory) Read(addr uint16) uint8 {
	val := r.Bank.Read(addr)
	r.ops = append(r.ops, busOp{addr: addr, val: val, kind: "read"})
	return val
}

func (r *recordingMemory) Write(addr uint16, val uint8) {
	r.ops = append(r.ops, busOp{addr: addr, val: val, kind: "write"})
	r.Bank.Write(addr, val)
}

// parseCycles decodes the vector file's "cycles" field, each entry a
// 3-element [address, value, "read"|"write"] tuple, into busOps.
func parseCycles(raw []interface{}) ([]busOp, error) {
	ops := make([]busOp, 0, len(raw))
	for _, c := range raw {
		entry, ok := c.([]interface{})
		if !ok || len(entry) != 3 {
			return nil, fmt.Errorf("malformed cycle entry: %#v", c)
		}
		addrF, ok1 := entry[0].(float64)
		valF, ok2 := entry[1].(float64)
		kind, ok3 := entry[2].(string)
		if !ok1 || !ok2 || !ok3 {
			return nil, fmt.Errorf("malformed cycle entry: %#v", c)
		}
		ops = append(ops, busOp{addr: uint16(addrF), val: uint8(valF), kind: kind})
	}
	return ops, nil
}

func runVectorTest(t *testing.T, vt *vectorTest) {
	t.Helper()

	r := &flatMemory{}
	for _, entry := range vt.Initial.RAM {
		r.addr[uint16(entry[0])] = uint8(entry[1])
	}
	rec := &recordingMemory{Bank: r}
	c := &Chip{
		cpuType:  CPU_NMOS_RICOH,
		ram:      rec,
		PC:       vt.Initial.PC,
		S:        vt.Initial.S,
		A:        vt.Initial.A,
		X:        vt.Initial.X,
		Y:        vt.Initial.Y,
		P:        vt.Initial.P,
		tickDone: true,
	}

	for !c.InstructionDone() {
		if err := c.Tick(); err != nil {
			t.Fatalf("%s: Tick: %v", vt.Name, err)
		}
		c.TickDone()
	}

	wantOps, err := parseCycles(vt.Cycles)
	if err != nil {
		t.Errorf("%s: %v", vt.Name, err)
	} else if len(rec.ops) != len(wantOps) {
		t.Errorf("%s: recorded %d bus transactions, vector wants %d: got %+v want %+v",
			vt.Name, len(rec.ops), len(wantOps), rec.ops, wantOps)
	} else {
		for i, got := range rec.ops {
			want := wantOps[i]
			if got != want {
				t.Errorf("%s: bus transaction %d = %+v want %+v", vt.Name, i, got, want)
			}
		}
	}

	if got, want := c.PC, vt.Final.PC; got != want {
		t.Errorf("%s: PC = %.4X want %.4X", vt.Name, got, want)
	}
	if got, want := c.S, vt.Final.S; got != want {
		t.Errorf("%s: S = %.2X want %.2X", vt.Name, got, want)
	}
	if got, want := c.A, vt.Final.A; got != want {
		t.Errorf("%s: A = %.2X want %.2X", vt.Name, got, want)
	}
	if got, want := c.X, vt.Final.X; got != want {
		t.Errorf("%s: X = %.2X want %.2X", vt.Name, got, want)
	}
	if got, want := c.Y, vt.Final.Y; got != want {
		t.Errorf("%s: Y = %.2X want %.2X", vt.Name, got, want)
	}
	if got, want := c.P, vt.Final.P; got != want {
		t.Errorf("%s: P = %.2X want %.2X (diff %.2X)", vt.Name, got, want, got^want)
	}
	for _, entry := range vt.Final.RAM {
		addr := uint16(entry[0])
		want := uint8(entry[1])
		if got := r.addr[addr]; got != want {
			t.Errorf("%s: RAM[%.4X] = %.2X want %.2X", vt.Name, addr, got, want)
		}
	}
}

// TestVectorReplay replays the public per-opcode 6502 JSON test vectors
// (10,000 cases per opcode) against every official and unofficial opcode
// slot. Skipped entirely unless -vectorpath points at an extracted copy,
// since the corpus itself isn't vendored into this module.
func TestVectorReplay(t *testing.T) {
	if *vectorPath == "" {
		t.Skip("no -vectorpath provided")
	}

	entries, err := os.ReadDir(*vectorPath)
	if err != nil {
		t.Fatalf("reading vectorpath: %v", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		fname := entry.Name()
		if reason, ok := vectorSkip[fname]; ok && !*vectorStrict {
			t.Run(fname, func(t *testing.T) {
				t.Skipf("known failure: %s (use -vectorstrict to run)", reason)
			})
			continue
		}
		t.Run(fname, func(t *testing.T) {
			t.Parallel()
			data, err := os.ReadFile(filepath.Join(*vectorPath, fname))
			if err != nil {
				t.Fatalf("reading %s: %v", fname, err)
			}
			var tests []vectorTest
			if err := json.Unmarshal(data, &tests); err != nil {
				t.Fatalf("parsing %s: %v", fname, err)
			}
			for i := range tests {
				vt := &tests[i]
				t.Run(vt.Name, func(t *testing.T) {
					runVectorTest(t, vt)
				})
			}
		})
	}
}
