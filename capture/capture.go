// Package capture keeps a half-resolution RGB snapshot of the presented
// frame for screenshots and paused-menu backdrops.
package capture

import (
	"errors"
	"image"
	"image/color"

	"github.com/user-none/eblitvideo/imagecodec"
	"github.com/user-none/eblitvideo/surface"
)

// ErrNotFrozen is returned when exporting a buffer that holds no snapshot.
var ErrNotFrozen = errors.New("capture buffer is not frozen")

// Buffer is a fixed-size snapshot at half the logical frame size, 8 bits
// per channel. It does not reference the surface it was sampled from.
type Buffer struct {
	width  int
	height int
	rgb    []uint8
	frozen bool
}

// New allocates a buffer for a logical frame of the given size.
func New(frameWidth, frameHeight int) *Buffer {
	w, h := frameWidth/2, frameHeight/2
	return &Buffer{
		width:  w,
		height: h,
		rgb:    make([]uint8, w*h*3),
	}
}

// Size returns the snapshot dimensions.
func (b *Buffer) Size() (int, int) {
	return b.width, b.height
}

// Frozen reports whether the buffer holds a snapshot.
func (b *Buffer) Frozen() bool {
	return b.frozen
}

// Freeze samples every other pixel of every other row of src, starting at
// its render origin, and expands each sample to 8 bits per channel. An
// unlocked surface is locked for the duration of the copy.
func (b *Buffer) Freeze(src *surface.Surface) error {
	if !src.Locked() {
		if err := src.Lock(); err != nil {
			return err
		}
		defer src.Unlock()
	}

	fb := src.Frame()
	out := b.rgb
	for j := 0; j < b.height; j++ {
		row := j * 2 * fb.Stride
		for i := 0; i < b.width; i++ {
			var c surface.RGB565
			if k := row + i*2; k < len(fb.Pix) {
				c = surface.RGB565(fb.Pix[k])
			}
			out[0], out[1], out[2] = c.Expand()
			out = out[3:]
		}
	}
	b.frozen = true
	return nil
}

// Unfreeze clears the frozen flag. The pixel data is left as is.
func (b *Buffer) Unfreeze() {
	b.frozen = false
}

// Save writes the snapshot as a PNG.
func (b *Buffer) Save(path string) error {
	if !b.frozen {
		return ErrNotFrozen
	}
	return imagecodec.Save(path, b)
}

// Screenshot saves a snapshot of src to path. It freezes first unless a
// snapshot is already held, and only releases a freeze it made itself.
func (b *Buffer) Screenshot(src *surface.Surface, path string) error {
	if !b.frozen {
		if err := b.Freeze(src); err != nil {
			return err
		}
		defer b.Unfreeze()
	}
	return b.Save(path)
}

// ColorModel implements image.Image.
func (b *Buffer) ColorModel() color.Model { return color.RGBAModel }

// Bounds implements image.Image.
func (b *Buffer) Bounds() image.Rectangle { return image.Rect(0, 0, b.width, b.height) }

// At implements image.Image.
func (b *Buffer) At(x, y int) color.Color {
	if x < 0 || y < 0 || x >= b.width || y >= b.height {
		return color.RGBA{}
	}
	i := (y*b.width + x) * 3
	return color.RGBA{R: b.rgb[i], G: b.rgb[i+1], B: b.rgb[i+2], A: 0xFF}
}
