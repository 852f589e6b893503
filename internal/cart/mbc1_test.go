package cart

import "testing"

func testHeader(cartType byte, ramSize int) *Header {
	return &Header{CartType: cartType, RAMSizeBytes: ramSize}
}

func TestMBC1_ROMBanking(t *testing.T) {
	rom := make([]byte, 128*1024)
	for bank := 0; bank < 8; bank++ {
		rom[bank*0x4000] = byte(bank)
	}
	m := NewMBC1(rom, testHeader(0x01, 0))

	if got := m.Read(0x0000); got != 0x00 {
		t.Fatalf("bank0 read got %02X want 00", got)
	}
	if got := m.Read(0x4000); got != 0x01 {
		t.Fatalf("bank1 read got %02X want 01", got)
	}

	m.Write(0x2000, 0x03)
	if got := m.Read(0x4000); got != 0x03 {
		t.Fatalf("bank3 read got %02X want 03", got)
	}

	m.Write(0x2000, 0x00)
	if got := m.Read(0x4000); got != 0x01 {
		t.Fatalf("bank0->1 remap failed: got %02X", got)
	}
}

func TestMBC1_RAMBanking_Mode1(t *testing.T) {
	rom := make([]byte, 128*1024)
	m := NewMBC1(rom, testHeader(0x03, 32*1024))

	m.Write(0x0000, 0x0A)
	m.Write(0x6000, 0x01)
	m.Write(0x4000, 0x02)

	m.Write(0xA000, 0x77)
	if got := m.Read(0xA000); got != 0x77 {
		t.Fatalf("RAM bank2 RW failed: got %02X", got)
	}
}

func TestMBC1M_FourBitBank(t *testing.T) {
	rom := make([]byte, 512*1024)
	for bank := 0; bank < 16; bank++ {
		rom[bank*0x4000] = byte(bank)
	}
	h := testHeader(0x01, 0)
	h.IsMBC1M = true
	m := NewMBC1(rom, h)

	m.Write(0x2000, 0x10) // bit 4 ignored for MBC1M low field
	if got := m.Read(0x4000); got != 0x01 {
		t.Fatalf("MBC1M low nibble wrap failed: got %02X", got)
	}
}
