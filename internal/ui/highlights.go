// Package ui draws debugging aids on top of the grid view.
package ui

import (
	"image"
	"image/color"

	"contract-ca/internal/sims/validation"
)

// Highlight is a screen-space box around one detected pattern instance.
type Highlight struct {
	Rect  image.Rectangle
	Color color.RGBA
	Label string
}

var kindColors = map[validation.PatternKind]color.RGBA{
	validation.KindStillLife:  {R: 250, G: 220, B: 90, A: 200},
	validation.KindOscillator: {R: 90, G: 200, B: 250, A: 200},
	validation.KindMover:      {R: 250, G: 90, B: 160, A: 200},
}

// Highlights converts a pattern report into boxes at the given pixel scale.
// Instances whose template is no longer registered are skipped.
func Highlights(report validation.PatternReport, scale int) []Highlight {
	if scale <= 0 {
		scale = 1
	}
	var out []Highlight
	for _, inst := range report.All() {
		t, err := validation.LookupTemplate(inst.TemplateID)
		if err != nil {
			continue
		}
		min := image.Pt(inst.X*scale, inst.Y*scale)
		out = append(out, Highlight{
			Rect:  image.Rectangle{Min: min, Max: min.Add(image.Pt(t.Width()*scale, t.Height()*scale))},
			Color: kindColors[inst.Kind],
			Label: t.Name,
		})
	}
	return out
}
