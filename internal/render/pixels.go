// Package render turns layers of state codes into RGBA pixels.
package render

import "image/color"

// FillPalette converts cell values into RGBA pixels using a palette. Values
// past the end of the palette use its last color. When the palette is empty
// the buffer is cleared to transparent black.
func FillPalette(buf []byte, cells []uint8, palette []color.RGBA) {
	if len(palette) == 0 {
		clear(buf[:len(cells)*4])
		return
	}

	last := len(palette) - 1
	for i, c := range cells {
		idx := min(int(c), last)
		base := i * 4
		col := palette[idx]
		buf[base+0] = col.R
		buf[base+1] = col.G
		buf[base+2] = col.B
		buf[base+3] = col.A
	}
}

// Grayscale is the fallback palette for sims without their own colors: code
// 0 is black and every other code is white.
var Grayscale = []color.RGBA{
	{A: 255},
	{R: 255, G: 255, B: 255, A: 255},
}
