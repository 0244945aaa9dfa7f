package glyph

import (
	_ "embed"

	"github.com/user-none/eblitvideo/surface"
)

// font8x8 holds 128 glyphs of 8 rows each. Bit 7 of a row is the leftmost
// column.
//
//go:embed assets/font8x8.bin
var font8x8 []byte

const (
	glyphWidth  = 8
	glyphHeight = 8
	glyphCount  = 128

	// LineHeight is the vertical advance when text wraps, for every backend.
	LineHeight = 12
)

// DrawBitmap draws text with the built-in 8x8 font. Bytes above 0x7F are
// skipped. A set bit paints a white pixel and, with shadow, forces the
// pixel one row and one column below-right to black.
func DrawBitmap(dst Canvas, x, y int, text string, allowWrap, shadow bool) {
	wrapX := dst.Bounds().Dx() - glyphWidth
	for i := 0; i < len(text); i++ {
		c := text[i]
		if c >= glyphCount {
			continue
		}
		rows := font8x8[int(c)*glyphHeight : int(c+1)*glyphHeight]
		for l, bits := range rows {
			for col := 0; col < glyphWidth; col++ {
				if bits&(0x80>>col) == 0 {
					continue
				}
				dst.SetPixel(x+col, y+l, surface.White)
				if shadow {
					dst.SetPixel(x+col+1, y+l+1, surface.Black)
				}
			}
		}

		x += glyphWidth
		if x > wrapX {
			if !allowWrap {
				break
			}
			x = 0
			y += LineHeight
		}
	}
}
