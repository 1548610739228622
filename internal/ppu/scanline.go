package ppu

import "sort"

// object is one OAM entry surviving the per-line 10-sprite scan.
type object struct {
	y, x, tile, flags byte
	oamIndex          int
}

const (
	objPriority = 1 << 7
	objYFlip    = 1 << 6
	objXFlip    = 1 << 5
	objPalette  = 1 << 4
)

// renderScanline draws one full 160-pixel line atomically into p.lcd:
// background, then window, then objects, composed per pixel through the
// BGP/OBP palettes. It never touches xdot/ly/mode, only the pixel buffer
// for the current p.ly.
func (p *PPU) renderScanline(h Host) {
	ly := p.ly
	lcdc := h.LCDC()
	bgp := h.BGP()

	var bg [ScreenWidth]byte
	if lcdc&0x01 != 0 {
		bg = p.renderBackground(h, lcdc, ly)
	}

	var win [ScreenWidth]byte
	var winCovers [ScreenWidth]bool
	wx := h.WX()
	windowOn := lcdc&0x20 != 0 && p.wyCond && wx <= 166 && lcdc&0x01 != 0
	if windowOn {
		win, winCovers = p.renderWindow(h, lcdc, wx)
		p.wyCounter++
	}

	var objLine [ScreenWidth]byte
	var objPresent [ScreenWidth]bool
	var objFlags [ScreenWidth]byte
	if lcdc&0x02 != 0 {
		p.renderObjects(h, lcdc, ly, &objLine, &objPresent, &objFlags)
	}

	row := ly
	for x := 0; x < ScreenWidth; x++ {
		var colorIdx byte
		if winCovers[x] {
			colorIdx = win[x]
		} else {
			colorIdx = bg[x]
		}
		shade := (bgp >> (colorIdx * 2)) & 0x03

		if objPresent[x] {
			bgWinOpaque := colorIdx != 0
			objBehindBG := objFlags[x]&objPriority != 0
			if !(objBehindBG && bgWinOpaque) {
				obpReg := h.OBP0()
				if objFlags[x]&objPalette != 0 {
					obpReg = h.OBP1()
				}
				shade = (obpReg >> (objLine[x] * 2)) & 0x03
			}
		}
		p.lcd[int(row)*ScreenWidth+x] = shade
	}
}

// renderBackground unpacks the 32x32 background tilemap row covering ly into
// 160 screen-space color indices.
func (p *PPU) renderBackground(h Host, lcdc, ly byte) [ScreenWidth]byte {
	var out [ScreenWidth]byte
	scx, scy := h.SCX(), h.SCY()
	mapBase := uint16(0x9800)
	if lcdc&0x08 != 0 {
		mapBase = 0x9C00
	}
	tileData8000 := lcdc&0x10 != 0

	bgY := uint16(ly) + uint16(scy)
	fineY := byte(bgY & 7)
	mapRow := (bgY >> 3) & 31

	for x := 0; x < ScreenWidth; x++ {
		bgX := uint16(x) + uint16(scx)
		mapCol := (bgX >> 3) & 31
		fineX := byte(bgX & 7)

		tileMapAddr := mapBase + mapRow*32 + mapCol
		tileNum := h.VRAMByte(tileMapAddr)
		tileAddr := effectiveTileAddr(tileData8000, tileNum)
		lo, hi := p.tileRow(h, tileAddr, fineY)
		out[x] = pixelFromRow(lo, hi, fineX)
	}
	return out
}

// renderWindow unpacks the window layer using its own internal scanline
// counter. covers[x] is true for screen columns the window paints over;
// window pixels left of WX-7 are not drawn.
func (p *PPU) renderWindow(h Host, lcdc, wx byte) (out [ScreenWidth]byte, covers [ScreenWidth]bool) {
	mapBase := uint16(0x9800)
	if lcdc&0x40 != 0 {
		mapBase = 0x9C00
	}
	tileData8000 := lcdc&0x10 != 0

	winLine := p.wyCounter
	fineY := winLine & 7
	mapRow := uint16(winLine>>3) & 31

	wxStart := int(wx) - 7
	for x := 0; x < ScreenWidth; x++ {
		if x+7 < int(wx) {
			continue
		}
		winX := x - wxStart
		mapCol := uint16(winX>>3) & 31
		fineX := byte(winX & 7)

		tileMapAddr := mapBase + mapRow*32 + mapCol
		tileNum := h.VRAMByte(tileMapAddr)
		tileAddr := effectiveTileAddr(tileData8000, tileNum)
		lo, hi := p.tileRow(h, tileAddr, fineY)
		out[x] = pixelFromRow(lo, hi, fineX)
		covers[x] = true
	}
	return out, covers
}

// renderObjects scans all 40 OAM entries, keeps the first 10 intersecting
// ly, sorts them for priority, and paints surviving sprite pixels into the
// output arrays.
func (p *PPU) renderObjects(h Host, lcdc, ly byte, line *[ScreenWidth]byte, present *[ScreenWidth]bool, flagsOut *[ScreenWidth]byte) {
	objHeight := byte(8)
	if lcdc&0x04 != 0 {
		objHeight = 16
	}

	var kept []object
	for i := 0; i < 40 && len(kept) < 10; i++ {
		y, x, tile, flags := h.OAMEntry(i)
		top := int(y) - 16
		if int(ly) >= top && int(ly) < top+int(objHeight) {
			kept = append(kept, object{y: y, x: x, tile: tile, flags: flags, oamIndex: i})
		}
	}

	sort.SliceStable(kept, func(i, j int) bool {
		if kept[i].x != kept[j].x {
			return kept[i].x > kept[j].x
		}
		return kept[i].oamIndex > kept[j].oamIndex
	})

	for _, o := range kept {
		tile := o.tile
		if objHeight == 16 {
			tile &^= 0x01
		}
		row := int(ly) - (int(o.y) - 16)
		if o.flags&objYFlip != 0 {
			row = int(objHeight) - 1 - row
		}
		tileNum := tile
		if row >= 8 {
			tileNum++
			row -= 8
		}
		tileAddr := 0x8000 + uint16(tileNum)*16
		lo, hi := p.tileRow(h, tileAddr, byte(row))

		for col := 0; col < 8; col++ {
			sx := int(o.x) - 8 + col
			if sx < 0 || sx >= ScreenWidth {
				continue
			}
			fineX := byte(col)
			if o.flags&objXFlip != 0 {
				fineX = 7 - fineX
			}
			colorIdx := pixelFromRow(lo, hi, fineX)
			if colorIdx == 0 {
				continue
			}
			// kept is sorted x-descending/index-descending and painted in
			// that order so a later (lower x, lower OAM index) sprite
			// overwrites an earlier one at the same pixel — that is how
			// "lower-x/lower-index wins" is realized here.
			line[sx] = colorIdx
			present[sx] = true
			flagsOut[sx] = o.flags
		}
	}
}

// effectiveTileAddr resolves 8000- or 8800-addressing from LCDC bit 4.
func effectiveTileAddr(tileData8000 bool, tileNum byte) uint16 {
	if tileData8000 {
		return 0x8000 + uint16(tileNum)*16
	}
	signed := int(int8(tileNum))
	return uint16(0x9000 + signed*16)
}

// tileRow reads the two bytes of 2bpp tile data for one row.
func (p *PPU) tileRow(h Host, tileAddr uint16, fineY byte) (lo, hi byte) {
	addr := tileAddr + uint16(fineY)*2
	return h.VRAMByte(addr), h.VRAMByte(addr + 1)
}

// pixelFromRow extracts the 2-bit color index for screen column fineX (0=left) from a tile row's two bitplanes.
func pixelFromRow(lo, hi byte, fineX byte) byte {
	bit := 7 - fineX
	l := (lo >> bit) & 1
	hb := (hi >> bit) & 1
	return (hb << 1) | l
}
