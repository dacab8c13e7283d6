//go:build ebiten

package ui

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"contract-ca/internal/core"
	"contract-ca/internal/sims/validation"
)

type patternSource interface {
	AnalyzePatterns() validation.PatternReport
}

// Overlay outlines detected patterns on top of the grid. Key 1 toggles the
// outlines and key 2 toggles their labels.
type Overlay struct {
	sim        core.Sim
	scale      int
	show       bool
	showLabels bool
	highlights []Highlight
}

// NewOverlay constructs an overlay for sim.
func NewOverlay(sim core.Sim, scale int) *Overlay {
	return &Overlay{sim: sim, scale: scale, show: true}
}

// Update handles toggles and rescans patterns when visible.
func (o *Overlay) Update() {
	if inpututil.IsKeyJustPressed(ebiten.KeyDigit1) {
		o.show = !o.show
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyDigit2) {
		o.showLabels = !o.showLabels
	}
	if !o.show {
		o.highlights = nil
		return
	}
	if src, ok := o.sim.(patternSource); ok {
		o.highlights = Highlights(src.AnalyzePatterns(), o.scale)
	}
}

// Draw renders the outlines.
func (o *Overlay) Draw(screen *ebiten.Image) {
	for _, h := range o.highlights {
		r := h.Rect
		vector.StrokeRect(screen, float32(r.Min.X), float32(r.Min.Y),
			float32(r.Dx()), float32(r.Dy()), 1, h.Color, false)
		if o.showLabels {
			ebitenutil.DebugPrintAt(screen, h.Label, r.Min.X, r.Max.Y)
		}
	}
}
