package bus

import (
	"testing"

	"github.com/aldenreed/gbcore/internal/cart"
	"github.com/aldenreed/gbcore/internal/joypad"
)

func romOnly(size int) cart.Cartridge { return cart.NewROMOnly(make([]byte, size)) }

func TestBus_ROMAndRAM(t *testing.T) {
	rom := make([]byte, 0x8000)
	rom[0x0100] = 0x42
	b := New(cart.NewROMOnly(rom), 44100, false)

	if got := b.Read(0x0100); got != 0x42 {
		t.Fatalf("ROM read got %02x, want 42", got)
	}

	b.Write(0xC000, 0x99)
	if got := b.Read(0xC000); got != 0x99 {
		t.Fatalf("RAM read got %02x, want 99", got)
	}

	b.Write(0xE000, 0x55)
	if got := b.Read(0xC000); got != 0x55 {
		t.Fatalf("Echo write did not mirror to WRAM: got %02x", got)
	}

	b.Write(0xFF80, 0xAB)
	if got := b.Read(0xFF80); got != 0xAB {
		t.Fatalf("HRAM read got %02x, want AB", got)
	}

	if got := b.Read(0xA123); got != 0xFF {
		t.Fatalf("Ext RAM (ROM-only) got %02x, want FF", got)
	}
}

func TestBus_VRAM_OAM_InterruptRegs(t *testing.T) {
	b := New(romOnly(0x8000), 44100, false)

	b.Write(0x8000, 0x11)
	if got := b.Read(0x8000); got != 0x11 {
		t.Fatalf("VRAM read got %02x, want 11", got)
	}

	b.Write(0xFE00, 0x22)
	if got := b.Read(0xFE00); got != 0x22 {
		t.Fatalf("OAM read got %02x, want 22", got)
	}

	b.Write(0xFF0F, 0x3F)
	if got := b.Read(0xFF0F); got != 0xE0|0x1F {
		t.Fatalf("IF read got %02x, want %02x", got, 0xE0|0x1F)
	}

	b.Write(0xFFFF, 0x1B)
	if got := b.Read(0xFFFF); got != 0x1B {
		t.Fatalf("IE read got %02x, want 1B", got)
	}
}

func TestBus_JOYP(t *testing.T) {
	b := New(romOnly(0x8000), 44100, false)

	if got := b.Read(0xFF00); got&0x0F != 0x0F {
		t.Fatalf("JOYP default lower bits got %02x want 0x0F", got)
	}

	b.Write(0xFF00, 0x20) // select D-Pad
	b.Joypad().Press(joypad.Right | joypad.Up)
	if got := b.Read(0xFF00); got&0x0F != 0x0A {
		t.Fatalf("JOYP D-Pad got %02x want 0x0A", got&0x0F)
	}

	b.Write(0xFF00, 0x10) // select Buttons
	b.Joypad().Press(joypad.A | joypad.Start)
	if got := b.Read(0xFF00); got&0x0F != 0x06 {
		t.Fatalf("JOYP Buttons got %02x want 0x06", got&0x0F)
	}
}

func TestBus_Timers(t *testing.T) {
	b := New(romOnly(0x8000), 44100, false)

	b.Write(0xFF04, 0x12)
	if got := b.Read(0xFF04); got != 0x00 {
		t.Fatalf("DIV got %02x want 00", got)
	}
	b.Write(0xFF05, 0x77)
	if got := b.Read(0xFF05); got != 0x77 {
		t.Fatalf("TIMA got %02x want 77", got)
	}
	b.Write(0xFF06, 0x88)
	if got := b.Read(0xFF06); got != 0x88 {
		t.Fatalf("TMA got %02x want 88", got)
	}
	b.Write(0xFF07, 0xFD)
	if got := b.Read(0xFF07); got != (0xF8 | (0xFD & 0x07)) {
		t.Fatalf("TAC got %02x want %02x", got, 0xF8|(0xFD&0x07))
	}
}

type serialCapture struct{ bytes []byte }

func (s *serialCapture) Byte(b byte) { s.bytes = append(s.bytes, b) }

func TestBus_SerialImmediate(t *testing.T) {
	b := New(romOnly(0x8000), 44100, false)
	var sink serialCapture
	b.Serial().SetSink(&sink)

	b.Write(0xFF01, 0x41) // 'A'
	b.Write(0xFF02, 0x81) // start, external clock
	if len(sink.bytes) != 1 || sink.bytes[0] != 0x41 {
		t.Fatalf("serial out got %v want [0x41]", sink.bytes)
	}
	if got := b.Read(0xFF02); (got & 0x80) != 0 {
		t.Fatalf("serial control bit7 not cleared: %02x", got)
	}
	if (b.Read(0xFF0F) & (1 << 3)) == 0 {
		t.Fatalf("serial IF bit not set after transfer")
	}
}

func TestBus_TimerOverflow_ReloadTiming(t *testing.T) {
	b := New(romOnly(0x8000), 44100, false)
	b.Write(0xFF07, 0x00) // disabled while TMA/TIMA are staged
	b.Write(0xFF06, 0xAB) // TMA
	b.Write(0xFF05, 0xFF) // TIMA one edge from overflow
	b.Write(0xFF04, 0x00) // re-sync div16 to a known 0 baseline
	b.Write(0xFF07, 0x05) // enable, select DIV16 bit3 (falls every 16 dots)

	// Write(0xFF07, ...) itself consumed one machine cycle (4 dots) of
	// div16 before the enable took effect, so div16 is at 4 here.
	// 12 more dots carries it to 16, the bit3 falling edge that latches
	// the overflow; one further dot performs the reload.
	b.AdvanceDots(12)
	b.AdvanceDots(1)

	if got := b.Read(0xFF05); got != 0xAB {
		t.Fatalf("after overflow+reload, TIMA got %02X want AB", got)
	}
	if (b.Read(0xFF0F) & (1 << 2)) == 0 {
		t.Fatalf("timer IF bit not set on reload")
	}
}
