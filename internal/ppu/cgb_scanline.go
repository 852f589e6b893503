package ppu

// BankedVRAMReader is a VRAMReader that can also address a specific
// CGB VRAM bank, for CGB rendering paths that must reach bank 1's tile
// attributes alongside bank 0's tile data/indices.
type BankedVRAMReader interface {
	VRAMReader
	ReadBank(bank int, addr uint16) byte
}

// cgbTileAttr decodes one CGB BG/window map attribute byte: bit7
// BG-to-OAM priority, bit6 Y-flip, bit5 X-flip, bit4 tile data bank,
// bits2-0 palette number.
func cgbTileAttr(attr byte) (bank int, xflip, yflip, priority bool, pal byte) {
	bank = int((attr >> 4) & 0x01)
	xflip = attr&0x20 != 0
	yflip = attr&0x40 != 0
	priority = attr&0x80 != 0
	pal = attr & 0x07
	return
}

func cgbTilePixel(mem BankedVRAMReader, tileNum byte, tileData8000 bool, bank int, fy byte, fx byte, xflip bool) byte {
	var base uint16
	if tileData8000 {
		base = 0x8000 + uint16(tileNum)*16 + uint16(fy)*2
	} else {
		base = 0x9000 + uint16(int8(tileNum))*16 + uint16(fy)*2
	}
	lo := mem.ReadBank(bank, base)
	hi := mem.ReadBank(bank, base+1)
	bit := 7 - fx
	if xflip {
		bit = fx
	}
	return ((hi>>bit)&1)<<1 | ((lo >> bit) & 1)
}

// RenderBGScanlineCGB renders one BG scanline's color indices alongside
// the per-pixel CGB palette number and BG-to-OAM priority flag, reading
// tile numbers from bank 0 of mapBase and attributes from bank 1 of
// attrBase (the same map address space, addressed per-bank).
func RenderBGScanlineCGB(mem BankedVRAMReader, mapBase, attrBase uint16, tileData8000 bool, scx, scy, ly byte) (ci [160]byte, pal [160]byte, pri [160]bool) {
	bgY := uint16(ly) + uint16(scy)
	fineY := byte(bgY & 7)
	mapY := (bgY >> 3) & 31

	for x := 0; x < 160; x++ {
		bgX := uint16(x) + uint16(scx)
		tileX := (bgX >> 3) & 31
		tileOff := mapY*32 + tileX

		tileNum := mem.ReadBank(0, mapBase+tileOff)
		attr := mem.ReadBank(1, attrBase+tileOff)
		bank, xflip, yflip, priority, p := cgbTileAttr(attr)

		fy := fineY
		if yflip {
			fy = 7 - fineY
		}
		fx := byte(bgX & 7)
		ci[x] = cgbTilePixel(mem, tileNum, tileData8000, bank, fy, fx, xflip)
		pal[x] = p
		pri[x] = priority
	}
	return
}

// RenderWindowScanlineCGB is RenderBGScanlineCGB's window-layer
// counterpart: winLine is the line within the window (WY already
// subtracted by the caller), and columns before wxStart are left zero.
func RenderWindowScanlineCGB(mem BankedVRAMReader, mapBase, attrBase uint16, tileData8000 bool, wxStart int, winLine byte) (ci [160]byte, pal [160]byte, pri [160]bool) {
	if wxStart >= 160 {
		return
	}
	if wxStart < 0 {
		wxStart = 0
	}
	mapY := uint16(winLine) >> 3
	fineY := winLine & 7

	for x := wxStart; x < 160; x++ {
		col := uint16(x - wxStart)
		tileX := (col >> 3) & 31
		tileOff := (mapY&31)*32 + tileX

		tileNum := mem.ReadBank(0, mapBase+tileOff)
		attr := mem.ReadBank(1, attrBase+tileOff)
		bank, xflip, yflip, priority, p := cgbTileAttr(attr)

		fy := fineY
		if yflip {
			fy = 7 - fineY
		}
		fx := byte(col & 7)
		ci[x] = cgbTilePixel(mem, tileNum, tileData8000, bank, fy, fx, xflip)
		pal[x] = p
		pri[x] = priority
	}
	return
}
