package cart

import "testing"

func TestMMM01_PowerUpShowsLastBank(t *testing.T) {
	rom := make([]byte, 256*1024) // 64 banks
	last := len(rom)/0x4000 - 1
	rom[last*0x4000] = 0xEE

	m := NewMMM01(rom, testHeader(0x0B, 0))
	if got := m.Read(0x0000); got != 0xEE {
		t.Fatalf("unmapped 0x0000 should show last bank: got %02X", got)
	}
	if got := m.Read(0x4000); got != 0xEE {
		t.Fatalf("unmapped 0x4000 should show last bank: got %02X", got)
	}
}

func TestMMM01_MapsOnLatchWrite(t *testing.T) {
	rom := make([]byte, 256*1024)
	rom[2*0x4000] = 0x02 // bank 2

	m := NewMMM01(rom, testHeader(0x0B, 0))
	m.Write(0x0000, 0x40) // bit6 set -> latch mapped mode
	m.Write(0x2000, 0x02) // low bank field -> bank 2
	if got := m.Read(0x4000); got != 0x02 {
		t.Fatalf("mapped bank2 read got %02X want 02", got)
	}
}

func TestMMM01_RAMBanking(t *testing.T) {
	rom := make([]byte, 256*1024)
	m := NewMMM01(rom, testHeader(0x0D, 4*8192))

	m.Write(0x0000, 0x40) // latch mapped
	m.Write(0x0000, 0x0A) // enable RAM
	m.Write(0x4000, 0x02) // ram bank 2 (feeds ROM-bank-high only when multiplexed)
	m.Write(0xA000, 0x55)
	if got := m.Read(0xA000); got != 0x55 {
		t.Fatalf("RAM bank2 RW failed: got %02X", got)
	}
}

func TestMMM01_SaveLoadRoundTrip(t *testing.T) {
	rom := make([]byte, 256*1024)
	m := NewMMM01(rom, testHeader(0x0D, 8192))
	if !m.HasBattery() {
		t.Fatalf("0x0D should report a battery")
	}
	m.Write(0x0000, 0x40)
	m.Write(0x0000, 0x0A)
	m.Write(0xA010, 0x7E)

	saved := m.Save()
	m2 := NewMMM01(rom, testHeader(0x0D, 8192))
	if err := m2.Load(saved); err != nil {
		t.Fatalf("Load: %v", err)
	}
	m2.Write(0x0000, 0x40)
	m2.Write(0x0000, 0x0A)
	if got := m2.Read(0xA010); got != 0x7E {
		t.Fatalf("restored RAM got %02X want 7E", got)
	}
}
