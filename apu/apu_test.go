package apu

import "testing"

func TestStatusReadAcknowledgesFrameIRQ(t *testing.T) {
	a := New()
	a.PowerOn()
	a.frameIRQ = true

	if got := a.Read(0x4015); got&0x40 == 0 {
		t.Fatalf("expected bit 6 set on pending frame IRQ, got %.2X", got)
	}
	if a.Raised() {
		t.Errorf("frame IRQ should be acknowledged (cleared) by the $4015 read")
	}
}

func TestFrameCounterWriteModeClearsIRQ(t *testing.T) {
	a := New()
	a.PowerOn()
	a.frameIRQ = true

	a.Write(0x4017, 0x80) // 5-step mode
	if a.Raised() {
		t.Errorf("selecting 5-step mode should clear the pending frame IRQ")
	}
}

func TestFrameCounterInhibitBitClearsIRQ(t *testing.T) {
	a := New()
	a.PowerOn()
	a.frameIRQ = true

	a.Write(0x4017, 0x40) // inhibit bit, 4-step mode otherwise
	if a.Raised() {
		t.Errorf("inhibit bit should clear the pending frame IRQ")
	}
	if !a.inhibitIRQ {
		t.Errorf("expected inhibitIRQ recorded")
	}
}

func TestFlatRegistersRoundTrip(t *testing.T) {
	a := New()
	a.PowerOn()
	a.Write(0x4000, 0x5A)
	if got, want := a.Read(0x4000), uint8(0x5A); got != want {
		t.Errorf("Read($4000) = %.2X want %.2X", got, want)
	}
}

func TestPowerOnClearsPendingIRQ(t *testing.T) {
	a := New()
	a.frameIRQ = true
	a.PowerOn()
	if a.Raised() {
		t.Errorf("PowerOn should clear any pending frame IRQ")
	}
}
