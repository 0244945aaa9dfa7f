package glyph

import (
	"errors"
	"fmt"
	"image"

	"github.com/user-none/eblitvideo/assetloader"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
)

// BuiltinMono names the embedded Go Mono face in a font list.
const BuiltinMono = "builtin:gomono"

// ErrNoFonts is returned by operations that need at least one loaded face.
var ErrNoFonts = errors.New("no scalable fonts loaded")

type faceEntry struct {
	name string
	font *sfnt.Font
	face font.Face
}

// Scalable draws text with a chain of outline fonts. A rune missing from
// one font falls through to the next.
type Scalable struct {
	size  float64
	faces []faceEntry
	buf   sfnt.Buffer
}

// NewScalable creates an empty chain rendering at size pixels.
func NewScalable(size float64) *Scalable {
	return &Scalable{size: size}
}

// Add loads a TrueType/OpenType file, or the embedded face for BuiltinMono,
// and appends it to the chain. The file may also be an archive holding the
// font.
func (s *Scalable) Add(path string) error {
	if path == BuiltinMono {
		return s.AddData(path, gomono.TTF)
	}
	data, _, err := assetloader.Load(path, assetloader.FontExtensions)
	if err != nil {
		return fmt.Errorf("failed to read font: %w", err)
	}
	return s.AddData(path, data)
}

// AddData parses font data and appends it to the chain.
func (s *Scalable) AddData(name string, data []byte) error {
	f, err := opentype.Parse(data)
	if err != nil {
		return fmt.Errorf("failed to parse font %s: %w", name, err)
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    s.size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return fmt.Errorf("failed to create face %s: %w", name, err)
	}
	s.faces = append(s.faces, faceEntry{name: name, font: f, face: face})
	return nil
}

// Len returns the number of loaded faces.
func (s *Scalable) Len() int {
	return len(s.faces)
}

// Names returns the loaded font names in chain order.
func (s *Scalable) Names() []string {
	names := make([]string, len(s.faces))
	for i, e := range s.faces {
		names[i] = e.name
	}
	return names
}

// faceFor returns the first face that has a glyph for r, or the first face.
func (s *Scalable) faceFor(r rune) font.Face {
	for _, e := range s.faces {
		idx, err := e.font.GlyphIndex(&s.buf, r)
		if err == nil && idx != 0 {
			return e.face
		}
	}
	return s.faces[0].face
}

// Draw renders text with its top-left corner at x, y. Wrapping follows the
// bitmap font: past width-8 the cursor returns to column 0 and moves down
// LineHeight pixels regardless of the face height.
func (s *Scalable) Draw(dst Canvas, x, y int, text string, allowWrap, shadow bool) error {
	if len(s.faces) == 0 {
		return ErrNoFonts
	}
	s.draw(dst, x, y, text, allowWrap, shadow)
	return nil
}

// draw requires a non-empty chain.
func (s *Scalable) draw(dst Canvas, x, y int, text string, allowWrap, shadow bool) {
	wrapX := dst.Bounds().Dx() - glyphWidth
	ascent := s.faces[0].face.Metrics().Ascent.Ceil()

	for _, r := range text {
		face := s.faceFor(r)
		str := string(r)
		dot := fixed.P(x, y+ascent)
		if shadow {
			(&font.Drawer{
				Dst:  dst,
				Src:  image.Black,
				Face: face,
				Dot:  dot.Add(fixed.P(1, 1)),
			}).DrawString(str)
		}
		(&font.Drawer{
			Dst:  dst,
			Src:  image.White,
			Face: face,
			Dot:  dot,
		}).DrawString(str)

		advance, ok := face.GlyphAdvance(r)
		if !ok {
			advance = fixed.I(glyphWidth)
		}
		x += advance.Ceil()
		if x > wrapX {
			if !allowWrap {
				break
			}
			x = 0
			y += LineHeight
		}
	}
}

// Close releases every face in the chain.
func (s *Scalable) Close() error {
	var errs []error
	for _, e := range s.faces {
		if err := e.face.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	s.faces = nil
	return errors.Join(errs...)
}
