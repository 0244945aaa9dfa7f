package standalone

import (
	"github.com/hajimehoshi/ebiten/v2"
)

// FramebufferRenderer owns the ebiten offscreen buffer and scales the
// published frame to the window, correcting for non-square pixels.
type FramebufferRenderer struct {
	pixelAspect float64
	offscreen   *ebiten.Image
	drawOpts    ebiten.DrawImageOptions
}

// NewFramebufferRenderer creates a renderer for the given pixel aspect
// ratio. Zero means square pixels.
func NewFramebufferRenderer(pixelAspect float64) *FramebufferRenderer {
	if pixelAspect <= 0 {
		pixelAspect = 1
	}
	return &FramebufferRenderer{
		pixelAspect: pixelAspect,
	}
}

// fitFrame computes the scale factors and offset that fit a srcW x srcH
// frame of the given pixel aspect inside a screenW x screenH target,
// centered and letterboxed.
func fitFrame(screenW, screenH, srcW, srcH int, pixelAspect float64) (scaleX, scaleY, offsetX, offsetY float64) {
	nativeW := float64(srcW) * pixelAspect
	nativeH := float64(srcH)

	scale := min(float64(screenW)/nativeW, float64(screenH)/nativeH)

	scaleX = scale * pixelAspect
	scaleY = scale
	offsetX = (float64(screenW) - nativeW*scale) / 2
	offsetY = (float64(screenH) - nativeH*scale) / 2
	return
}

// DrawFramebuffer renders RGBA pixel data to the screen with aspect-ratio
// preserving scaling.
func (r *FramebufferRenderer) DrawFramebuffer(screen *ebiten.Image, pixels []byte, stride, height int) {
	if height == 0 || stride == 0 {
		return
	}

	requiredLen := stride * height
	if len(pixels) < requiredLen {
		return
	}

	width := stride / 4
	if r.offscreen == nil || r.offscreen.Bounds().Dx() != width || r.offscreen.Bounds().Dy() != height {
		if r.offscreen != nil {
			r.offscreen.Deallocate()
		}
		r.offscreen = ebiten.NewImage(width, height)
	}

	r.offscreen.WritePixels(pixels[:requiredLen])

	screenW, screenH := screen.Bounds().Dx(), screen.Bounds().Dy()
	scaleX, scaleY, offsetX, offsetY := fitFrame(screenW, screenH, width, height, r.pixelAspect)

	r.drawOpts = ebiten.DrawImageOptions{}
	r.drawOpts.GeoM.Scale(scaleX, scaleY)
	r.drawOpts.GeoM.Translate(offsetX, offsetY)
	r.drawOpts.Filter = ebiten.FilterNearest
	screen.DrawImage(r.offscreen, &r.drawOpts)
}
