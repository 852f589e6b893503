package emu

import "github.com/aldenreed/gbcore/internal/ppu"

// vramView adapts *ppu.PPU to the ppu.VRAMReader/BankedVRAMReader
// interfaces the scanline renderers expect, reading banks directly
// (bypassing the CPU-facing mode-3/OAM-scan access blocks) since a
// renderer only ever runs after a line's pixel-transfer has finished.
type vramView struct{ p *ppu.PPU }

func (v vramView) Read(addr uint16) byte               { return v.p.ReadBank(0, addr) }
func (v vramView) ReadBank(bank int, addr uint16) byte { return v.p.ReadBank(bank, addr) }

// renderFrame composes all 144 scanlines into m.fb from the registers
// each line captured at its own pixel-transfer entry, so mid-frame
// scroll/palette writes (raster effects) are reflected per line rather
// than using only the end-of-frame register values.
func (m *Machine) renderFrame() {
	p := m.bus.PPU()
	mem := vramView{p}
	// A DMG-only cartridge in CGB compatibility mode renders through the
	// DMG path; paintRow colors it with the compat palette.
	cgb := m.UseCGBBG() && !m.IsCGBCompat()

	for ly := 0; ly < 144; ly++ {
		regs := p.LineRegs(ly)

		var bgCI, bgPal [160]byte
		var bgPri [160]bool

		bgMapBase := uint16(0x9800)
		if regs.LCDC&0x08 != 0 {
			bgMapBase = 0x9C00
		}
		winMapBase := uint16(0x9800)
		if regs.LCDC&0x40 != 0 {
			winMapBase = 0x9C00
		}
		tileData8000 := regs.LCDC&0x10 != 0
		bgAttrBase := bgMapBase
		winAttrBase := winMapBase

		// On DMG, LCDC bit0 turns the BG off entirely (shows white).
		// On CGB it instead only strips BG-over-sprite priority, so the
		// background layer is always sampled.
		if cgb || regs.LCDC&0x01 != 0 {
			if cgb {
				bgCI, bgPal, bgPri = ppu.RenderBGScanlineCGB(mem, bgMapBase, bgAttrBase, tileData8000, regs.SCX, regs.SCY, byte(ly))
			} else {
				bgCI = ppu.RenderBGScanlineUsingFetcher(mem, bgMapBase, tileData8000, regs.SCX, regs.SCY, byte(ly))
			}
		}

		if regs.WinVisible {
			wxStart := int(regs.WX) - 7
			start := wxStart
			if start < 0 {
				start = 0
			}
			if cgb {
				wci, wpal, wpri := ppu.RenderWindowScanlineCGB(mem, winMapBase, winAttrBase, tileData8000, wxStart, regs.WinLine)
				for x := start; x < 160; x++ {
					bgCI[x], bgPal[x], bgPri[x] = wci[x], wpal[x], wpri[x]
				}
			} else {
				wrow := ppu.RenderWindowScanlineUsingFetcher(mem, winMapBase, tileData8000, wxStart, regs.WinLine)
				for x := start; x < 160; x++ {
					bgCI[x] = wrow[x]
				}
			}
		}

		var sprCI [160]byte
		var sprPal [160]byte
		if regs.LCDC&0x02 != 0 {
			tall := regs.LCDC&0x04 != 0
			sprites := ppu.ScanOAM(p.OAM(), byte(ly), tall)
			sprCI, sprPal = ppu.ComposeSpriteLinePalette(mem, sprites, byte(ly), bgCI, tall, cgb)
		}

		m.paintRow(ly, regs, cgb, bgCI, bgPal, bgPri, sprCI, sprPal)
	}
}

// paintRow resolves one scanline's background/window and sprite color
// indices through the active palettes and writes RGBA8888 into m.fb.
func (m *Machine) paintRow(ly int, regs ppu.LineRegs, cgb bool, bgCI, bgPal [160]byte, bgPri [160]bool, sprCI, sprPal [160]byte) {
	p := m.bus.PPU()
	for x := 0; x < 160; x++ {
		var r, g, b byte
		useSprite := sprCI[x] != 0 && !(cgb && bgPri[x] && bgCI[x] != 0)
		bgShade := dmgShade(regs.BGP, bgCI[x])
		if !cgb && regs.LCDC&0x01 == 0 {
			bgShade = 0xFF
		}

		switch {
		case useSprite && cgb:
			r, g, b = unpack555(p.CGBObjectColor(sprPal[x], sprCI[x]))
		case useSprite:
			obp := regs.OBP0
			if sprPal[x] == 1 {
				obp = regs.OBP1
			}
			shade := dmgShade(obp, sprCI[x])
			r, g, b = shade, shade, shade
		case cgb:
			r, g, b = unpack555(p.CGBBackgroundColor(bgPal[x], bgCI[x]))
		case m.IsCGBCompat():
			r, g, b = compatShade(m.compatPalID, bgShade)
		default:
			r, g, b = bgShade, bgShade, bgShade
		}

		off := (ly*160 + x) * 4
		m.fb[off+0] = r
		m.fb[off+1] = g
		m.fb[off+2] = b
		m.fb[off+3] = 0xFF
	}
}

// dmgShade maps a 2-bit color index through a DMG palette register to
// a 4-level gray shade (0xFF lightest, 0x00 darkest).
func dmgShade(palReg, ci byte) byte {
	shade := (palReg >> (ci * 2)) & 0x03
	switch shade {
	case 0:
		return 0xFF
	case 1:
		return 0xAA
	case 2:
		return 0x55
	default:
		return 0x00
	}
}

// unpack555 expands a 15-bit RGB555 (as stored in CGB palette RAM) to 8-bit channels.
func unpack555(c uint16) (r, g, b byte) {
	r5 := c & 0x1F
	g5 := (c >> 5) & 0x1F
	b5 := (c >> 10) & 0x1F
	return byte(r5<<3 | r5>>2), byte(g5<<3 | g5>>2), byte(b5<<3 | b5>>2)
}
