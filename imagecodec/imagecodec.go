// Package imagecodec converts between image files and the packed 16-bit
// pixels of a presentation surface.
package imagecodec

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"os"
	"path/filepath"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/user-none/eblitvideo/assetloader"
	"github.com/user-none/eblitvideo/surface"
)

// Image is a decoded image in packed RGB565, row-major with no padding.
// The zero Image stands for a failed load and draws nothing.
type Image struct {
	Pix []uint16
	W   int
	H   int
}

// Valid reports whether the image holds pixels.
func (img Image) Valid() bool {
	return img.Pix != nil && img.W > 0 && img.H > 0
}

// Load reads and decodes an image file, or the first image inside an
// archive. On failure it returns the zero Image along with the error.
func Load(path string) (Image, error) {
	data, name, err := assetloader.Load(path, assetloader.ImageExtensions)
	if err != nil {
		return Image{}, err
	}
	img, err := Decode(data)
	if err != nil {
		return Image{}, fmt.Errorf("failed to decode %s: %w", name, err)
	}
	return img, nil
}

// Decode decodes PNG, JPEG, GIF, BMP, TIFF or WebP data.
func Decode(data []byte) (Image, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return Image{}, err
	}
	return FromImage(src), nil
}

// FromImage quantizes every pixel of src to RGB565 by truncating each
// 8-bit channel. Alpha is discarded.
func FromImage(src image.Image) Image {
	b := src.Bounds()
	img := Image{Pix: make([]uint16, b.Dx()*b.Dy()), W: b.Dx(), H: b.Dy()}
	i := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(src.At(x, y)).(color.NRGBA)
			img.Pix[i] = uint16(surface.Pack(c.R, c.G, c.B))
			i++
		}
	}
	return img
}

// Draw copies img row by row into the locked surface with its top-left
// corner at x, y in buffer coordinates. Rows and columns outside the
// surface are clipped. Drawing the zero Image is a no-op.
func Draw(dst *surface.Surface, x, y int, img Image) {
	pix := dst.Pixels()
	if !img.Valid() || pix == nil {
		return
	}
	stride := dst.Stride()

	x0, x1 := max(x, 0), min(x+img.W, dst.Width())
	if x0 >= x1 {
		return
	}
	for row := max(y, 0); row < min(y+img.H, dst.Height()); row++ {
		src := img.Pix[(row-y)*img.W:]
		out := pix[row*stride:]
		copy(out[x0:x1], src[x0-x:x1-x])
	}
}

// Save writes src as a PNG. The file is written to a temporary name in the
// same directory and renamed, so a failed write never leaves a corrupt file
// at path.
func Save(path string, src image.Image) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tempFile := path + ".tmp"
	f, err := os.Create(tempFile)
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	if err := png.Encode(f, src); err != nil {
		f.Close()
		os.Remove(tempFile)
		return fmt.Errorf("failed to encode png: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	if err := os.Rename(tempFile, path); err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}
