package emucore

import "github.com/user-none/eblitvideo/surface"

// Standard frame heights of the test pattern.
const (
	PatternWidth          = 256
	PatternHeight         = 224
	PatternOverscanHeight = 239
)

var patternBars = [...]surface.RGB565{
	surface.White,
	surface.Pack(0xFF, 0xFF, 0x00),
	surface.Pack(0x00, 0xFF, 0xFF),
	surface.Pack(0x00, 0xFF, 0x00),
	surface.Pack(0xFF, 0x00, 0xFF),
	surface.Pack(0xFF, 0x00, 0x00),
	surface.Pack(0x00, 0x00, 0xFF),
	surface.Black,
}

// TestPattern is a Core that draws colour bars with a sweeping marker
// column. With OverscanEvery set it alternates between 224 and 239 lines,
// the way consoles toggle overscan.
type TestPattern struct {
	Region        Region
	OverscanEvery int

	frames   int
	rendered int
	height   int
}

// NewTestPattern creates a pattern core for region.
func NewTestPattern(region Region) *TestPattern {
	return &TestPattern{Region: region, height: PatternHeight}
}

// SystemInfo describes the pattern's display.
func (p *TestPattern) SystemInfo() SystemInfo {
	return SystemInfo{
		Name:            "Test Pattern",
		ScreenWidth:     PatternWidth,
		MaxScreenHeight: PatternOverscanHeight,
		PixelAspect:     8.0 / 7.0,
	}
}

// RunFrame implements Core.
func (p *TestPattern) RunFrame(render bool, fb surface.Framebuffer) {
	p.frames++
	if p.OverscanEvery > 0 && p.frames%p.OverscanEvery == 0 {
		if p.height == PatternHeight {
			p.height = PatternOverscanHeight
		} else {
			p.height = PatternHeight
		}
	}
	if !render || fb.Pix == nil {
		return
	}
	p.rendered++

	barWidth := PatternWidth / len(patternBars)
	marker := p.frames % PatternWidth
	for y := 0; y < p.height; y++ {
		row := y * fb.Stride
		if row+PatternWidth > len(fb.Pix) {
			return
		}
		line := fb.Pix[row : row+PatternWidth]
		for x := range line {
			line[x] = uint16(patternBars[x/barWidth])
		}
		line[marker] = uint16(surface.Black)
	}
}

// FrameSize implements Core.
func (p *TestPattern) FrameSize() (int, int) {
	return PatternWidth, p.height
}

// Timing implements Core.
func (p *TestPattern) Timing() Timing {
	return TimingFor(p.Region)
}

// Frames returns how many frames were emulated and how many were drawn.
func (p *TestPattern) Frames() (emulated, rendered int) {
	return p.frames, p.rendered
}

// Close implements Core.
func (p *TestPattern) Close() {}
