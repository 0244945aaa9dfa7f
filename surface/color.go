package surface

import "image/color"

// RGB565 is a packed 16-bit color: 5 bits red, 6 bits green, 5 bits blue.
type RGB565 uint16

// Channel maxima of the packed format.
const (
	maxRed   = 0x1F
	maxGreen = 0x3F
	maxBlue  = 0x1F
)

// White and Black are the full-bright and zero packed values.
const (
	White RGB565 = 0xFFFF
	Black RGB565 = 0
)

// Pack quantizes 8-bit channels by bit truncation. No rounding or dithering
// is applied.
func Pack(r, g, b uint8) RGB565 {
	return RGB565(uint16(r>>3)<<11 | uint16(g>>2)<<5 | uint16(b>>3))
}

// Expand scales each channel back to 8 bits with c*255/max.
func (c RGB565) Expand() (r, g, b uint8) {
	r = uint8(uint32(c>>11) * 0xFF / maxRed)
	g = uint8(uint32((c>>5)&maxGreen) * 0xFF / maxGreen)
	b = uint8(uint32(c&maxBlue) * 0xFF / maxBlue)
	return
}

// RGBA implements color.Color.
func (c RGB565) RGBA() (r, g, b, a uint32) {
	r8, g8, b8 := c.Expand()
	r = uint32(r8) * 0x101
	g = uint32(g8) * 0x101
	b = uint32(b8) * 0x101
	return r, g, b, 0xFFFF
}

// RGB565Model converts any color to RGB565, ignoring alpha.
var RGB565Model = color.ModelFunc(rgb565Model)

func rgb565Model(c color.Color) color.Color {
	if p, ok := c.(RGB565); ok {
		return p
	}
	r, g, b, _ := c.RGBA()
	return Pack(uint8(r>>8), uint8(g>>8), uint8(b>>8))
}
