package cart

import "time"

// Cartridge is the minimal interface the bus needs for ROM/RAM banking.
// Addresses are CPU addresses; implementations decode their own windows.
type Cartridge interface {
	Read(addr uint16) byte
	Write(addr uint16, value byte)
}

// BatteryBacked is implemented by cartridges with persistable external
// RAM. Save returns a raw RAM image (an MBC3 with RTC appends the
// 48-byte footer described in spec §4.6); Load restores it, returning
// a SaveSizeMismatch error if the blob can't possibly be this cart's RAM.
type BatteryBacked interface {
	HasBattery() bool
	Save() []byte
	Load(data []byte) error
}

// Now is the wall-clock source used by the MBC3 RTC. Overridable for tests.
var Now = time.Now

// New picks an implementation based on the ROM header, per spec §4.6's
// mapper dispatch on header byte 0x0147. Returns UnsupportedMapper for
// cart types outside the five families this core targets.
func New(rom []byte) (Cartridge, error) {
	h, err := ParseHeader(rom)
	if err != nil {
		return nil, err
	}
	switch h.CartType {
	case 0x00:
		return NewROMOnly(rom), nil
	case 0x01, 0x02, 0x03:
		return NewMBC1(rom, h), nil
	case 0x0B, 0x0C, 0x0D:
		return NewMMM01(rom, h), nil
	case 0x0F, 0x10, 0x11, 0x12, 0x13:
		return NewMBC3(rom, h), nil
	case 0x19, 0x1A, 0x1B, 0x1C, 0x1D, 0x1E:
		return NewMBC5(rom, h), nil
	default:
		return nil, &Error{Kind: UnsupportedMapper, Detail: h.CartTypeStr, Byte: h.CartType}
	}
}
