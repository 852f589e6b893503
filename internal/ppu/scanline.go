package ppu

// tileRowFetcher walks one 32-tile map row left to right, refilling the
// FIFO a tile at a time as callers drain it. Shared by the BG and window
// scanline renderers below, since both pull 8-pixel strips from the same
// kind of 32x32 tilemap and only differ in starting column and clipping.
type tileRowFetcher struct {
	f        *bgFetcher
	q        *fifo
	mapBase  uint16
	mapY     uint16
	tileX    uint16
	fineY    byte
	data8000 bool
}

func newTileRowFetcher(mem VRAMReader, q *fifo, mapBase uint16, tileData8000 bool, mapY uint16, startTileX uint16, fineY byte) *tileRowFetcher {
	r := &tileRowFetcher{
		f:        newBGFetcher(mem, q),
		q:        q,
		mapBase:  mapBase,
		mapY:     mapY,
		tileX:    startTileX & 31,
		fineY:    fineY,
		data8000: tileData8000,
	}
	r.fetchCurrent()
	return r
}

func (r *tileRowFetcher) fetchCurrent() {
	addr := r.mapBase + r.mapY*32 + r.tileX
	r.f.Configure(r.mapBase, r.data8000, addr, r.fineY)
	r.f.Fetch()
}

// next advances to the following tile column (wrapping at 32) and refills
// the FIFO, but only once the caller has drained the current tile dry.
func (r *tileRowFetcher) next() {
	if r.q.Len() > 0 {
		return
	}
	r.tileX = (r.tileX + 1) & 31
	r.fetchCurrent()
}

// discard drops n leading pixels, used to skip SCX's fractional tile offset.
func (r *tileRowFetcher) discard(n int) {
	for i := 0; i < n; i++ {
		_, _ = r.q.Pop()
	}
}

func (r *tileRowFetcher) pop() byte {
	r.next()
	px, _ := r.q.Pop()
	return px
}

// RenderBGScanlineUsingFetcher renders 160 BG pixels for the given LY.
// mapBase is 0x9800 or 0x9C00; tileData8000 selects 0x8000 vs. signed
// 0x8800 tile addressing; scx/scy are the scroll registers.
func RenderBGScanlineUsingFetcher(mem VRAMReader, mapBase uint16, tileData8000 bool, scx, scy, ly byte) [160]byte {
	var out [160]byte

	bgY := uint16(ly) + uint16(scy)
	fineY := byte(bgY & 7)
	mapY := (bgY >> 3) & 31

	startX := uint16(scx)
	tileX := (startX >> 3) & 31
	fineX := int(startX & 7)

	row := newTileRowFetcher(mem, &fifo{}, mapBase, tileData8000, mapY, tileX, fineY)
	row.discard(fineX)

	for x := 0; x < 160; x++ {
		out[x] = row.pop()
	}
	return out
}

// RenderWindowScanlineUsingFetcher renders the window layer for a scanline.
// It fills pixels starting at wxStart (WX-7) using winLine as the vertical
// line within the window; pixels before wxStart stay 0 so callers can blend
// against the BG layer underneath.
func RenderWindowScanlineUsingFetcher(mem VRAMReader, mapBase uint16, tileData8000 bool, wxStart int, winLine byte) [160]byte {
	var out [160]byte
	if wxStart >= 160 {
		return out
	}
	if wxStart < 0 {
		wxStart = 0
	}

	mapY := (uint16(winLine) >> 3) & 31
	fineY := winLine & 7
	row := newTileRowFetcher(mem, &fifo{}, mapBase, tileData8000, mapY, 0, fineY)

	for x := wxStart; x < 160; x++ {
		out[x] = row.pop()
	}
	return out
}
