//go:build ebiten

package render

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
)

// GridPainter uploads one layer of cells to a texture and scales it onto the
// screen.
type GridPainter struct {
	img *ebiten.Image
	buf []byte
}

// NewGridPainter allocates a painter for a w×h layer.
func NewGridPainter(w, h int) *GridPainter {
	return &GridPainter{
		img: ebiten.NewImage(w, h),
		buf: make([]byte, 4*w*h),
	}
}

// Blit paints cells onto screen at the given integer scale.
func (p *GridPainter) Blit(screen *ebiten.Image, cells []uint8, palette []color.RGBA, scale int) {
	if len(cells)*4 != len(p.buf) {
		return
	}
	if scale <= 0 {
		scale = 1
	}
	FillPalette(p.buf, cells, palette)
	p.img.WritePixels(p.buf)
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(scale), float64(scale))
	screen.DrawImage(p.img, op)
}
