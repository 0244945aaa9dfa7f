package capture

import (
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/user-none/eblitvideo/surface"
)

// newSurface returns the default 320x240 surface with a 256x224 frame.
func newSurface(t *testing.T) *surface.Surface {
	t.Helper()
	s, err := surface.New(surface.NewHeadless(), surface.DefaultConfig())
	if err != nil {
		t.Fatalf("surface.New failed: %v", err)
	}
	return s
}

func fillFrame(s *surface.Surface, c surface.RGB565) {
	fb := s.Frame()
	w, h := s.FrameSize()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			fb.Pix[y*fb.Stride+x] = uint16(c)
		}
	}
}

func TestNew_HalfResolution(t *testing.T) {
	b := New(256, 224)
	if w, h := b.Size(); w != 128 || h != 112 {
		t.Fatalf("size = %dx%d, want 128x112", w, h)
	}
	if b.Frozen() {
		t.Fatal("new buffer should not be frozen")
	}
}

func TestFreeze_ExpandsExtremes(t *testing.T) {
	tests := []struct {
		name string
		in   surface.RGB565
		want uint8
	}{
		{"max", surface.White, 0xFF},
		{"zero", surface.Black, 0x00},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := newSurface(t)
			fillFrame(s, tc.in)
			b := New(s.FrameSize())

			if err := b.Freeze(s); err != nil {
				t.Fatalf("Freeze failed: %v", err)
			}
			for i, v := range b.rgb {
				if v != tc.want {
					t.Fatalf("channel %d = %d, want %d", i, v, tc.want)
				}
			}
			if !b.Frozen() {
				t.Error("expected frozen")
			}
		})
	}
}

func TestFreeze_PointSamplesFromRenderOrigin(t *testing.T) {
	s := newSurface(t)
	fb := s.Frame()
	fb.Pix[2*fb.Stride+2] = 0xF800 // frame (2,2): sampled into (1,1)
	fb.Pix[3*fb.Stride+3] = 0x07E0 // odd row and column: skipped
	// Outside the frame, left of the render origin.
	s.SetPixel(0, 0, surface.White)

	b := New(s.FrameSize())
	if err := b.Freeze(s); err != nil {
		t.Fatalf("Freeze failed: %v", err)
	}

	if got := b.At(1, 1); got != (color.RGBA{0xFF, 0, 0, 0xFF}) {
		t.Errorf("At(1,1) = %v, want red", got)
	}
	for _, p := range [][2]int{{0, 0}, {2, 2}, {1, 2}} {
		if got := b.At(p[0], p[1]); got != (color.RGBA{0, 0, 0, 0xFF}) {
			t.Errorf("At%v = %v, want black", p, got)
		}
	}
}

func TestFreeze_UnlockedSurface(t *testing.T) {
	s := newSurface(t)
	fillFrame(s, surface.White)
	s.Unlock()

	b := New(s.FrameSize())
	if err := b.Freeze(s); err != nil {
		t.Fatalf("Freeze failed: %v", err)
	}
	if s.Locked() {
		t.Error("Freeze should restore the unlocked state")
	}
	if b.rgb[0] != 0xFF {
		t.Error("unlocked surface was not sampled")
	}
}

func TestUnfreeze(t *testing.T) {
	s := newSurface(t)
	b := New(s.FrameSize())
	b.Freeze(s)
	b.Unfreeze()
	if b.Frozen() {
		t.Fatal("expected unfrozen")
	}
	if err := b.Save(filepath.Join(t.TempDir(), "x.png")); err != ErrNotFrozen {
		t.Fatalf("Save error = %v, want ErrNotFrozen", err)
	}
}

func decodePNG(t *testing.T, path string) (w, h int, at func(x, y int) color.Color) {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("Failed to open screenshot: %v", err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("png.Decode failed: %v", err)
	}
	return img.Bounds().Dx(), img.Bounds().Dy(), img.At
}

func TestScreenshot_FreezesAndReleases(t *testing.T) {
	s := newSurface(t)
	fillFrame(s, surface.White)
	b := New(s.FrameSize())
	path := filepath.Join(t.TempDir(), "shot.png")

	if err := b.Screenshot(s, path); err != nil {
		t.Fatalf("Screenshot failed: %v", err)
	}
	if b.Frozen() {
		t.Error("Screenshot should release its own freeze")
	}

	w, h, at := decodePNG(t, path)
	if w != 128 || h != 112 {
		t.Fatalf("screenshot is %dx%d, want 128x112", w, h)
	}
	if r, g, bl, _ := at(64, 56).RGBA(); r != 0xFFFF || g != 0xFFFF || bl != 0xFFFF {
		t.Errorf("screenshot pixel not white")
	}
}

func TestScreenshot_KeepsExistingFreeze(t *testing.T) {
	s := newSurface(t)
	fillFrame(s, surface.White)
	b := New(s.FrameSize())
	if err := b.Freeze(s); err != nil {
		t.Fatal(err)
	}

	// The live frame changes after the freeze; the screenshot uses the snapshot.
	fillFrame(s, surface.Black)
	path := filepath.Join(t.TempDir(), "shot.png")
	if err := b.Screenshot(s, path); err != nil {
		t.Fatalf("Screenshot failed: %v", err)
	}
	if !b.Frozen() {
		t.Error("Screenshot released a freeze it did not make")
	}

	_, _, at := decodePNG(t, path)
	if r, _, _, _ := at(0, 0).RGBA(); r != 0xFFFF {
		t.Error("screenshot did not use the frozen snapshot")
	}
}

func TestScreenshot_WriteFailure(t *testing.T) {
	s := newSurface(t)
	b := New(s.FrameSize())
	blocker := filepath.Join(t.TempDir(), "file")
	os.WriteFile(blocker, []byte("x"), 0644)

	if err := b.Screenshot(s, filepath.Join(blocker, "shot.png")); err == nil {
		t.Fatal("expected write failure")
	}
	if b.Frozen() {
		t.Error("failed screenshot left the buffer frozen")
	}
}
