// Package glyph draws status and UI text onto a presentation surface, with
// an optional scalable font chain in front of the built-in 8x8 bitmap font.
package glyph

import (
	"image/draw"
	"log"
	"strings"

	"github.com/user-none/eblitvideo/surface"
)

// DefaultSize is the pixel size of scalable faces.
const DefaultSize = 12

// Canvas is a drawable 16-bit surface. *surface.Surface implements it.
type Canvas interface {
	draw.Image
	SetPixel(x, y int, c surface.RGB565)
}

// Renderer picks the scalable chain when any face is loaded and the bitmap
// font otherwise.
type Renderer struct {
	scalable *Scalable
}

// New creates a renderer with an empty scalable chain of the given size.
func New(size float64) *Renderer {
	if size <= 0 {
		size = DefaultSize
	}
	return &Renderer{scalable: NewScalable(size)}
}

// ParseFontList splits a '|' separated list of font paths, dropping empty
// entries.
func ParseFontList(list string) []string {
	var paths []string
	for _, p := range strings.Split(list, "|") {
		if p = strings.TrimSpace(p); p != "" {
			paths = append(paths, p)
		}
	}
	return paths
}

// AddFont appends one font to the scalable chain.
func (r *Renderer) AddFont(path string) error {
	return r.scalable.Add(path)
}

// LoadFonts appends every loadable font in paths to the chain. Fonts that
// fail to load are left out. It returns the number of fonts added.
func (r *Renderer) LoadFonts(paths []string) int {
	added := 0
	for _, p := range paths {
		if err := r.scalable.Add(p); err != nil {
			log.Printf("Warning: font skipped: %v", err)
			continue
		}
		added++
	}
	return added
}

// Scalable reports whether text will be drawn with an outline font.
func (r *Renderer) Scalable() bool {
	return r.scalable.Len() > 0
}

// Fonts returns the loaded font names in fallback order.
func (r *Renderer) Fonts() []string {
	return r.scalable.Names()
}

// Draw renders text at x, y with the preferred backend.
func (r *Renderer) Draw(dst Canvas, x, y int, text string, allowWrap, shadow bool) {
	if r.scalable.Len() > 0 {
		r.scalable.draw(dst, x, y, text, allowWrap, shadow)
		return
	}
	DrawBitmap(dst, x, y, text, allowWrap, shadow)
}

// DrawPixel renders text with the bitmap font regardless of loaded fonts.
func (r *Renderer) DrawPixel(dst Canvas, x, y int, text string, allowWrap, shadow bool) {
	DrawBitmap(dst, x, y, text, allowWrap, shadow)
}

// Close releases the scalable faces. The bitmap font remains usable.
func (r *Renderer) Close() error {
	return r.scalable.Close()
}
