package validation

import "image/color"

var statePalette = []color.RGBA{
	StateDead:        {R: 12, G: 14, B: 20, A: 255},
	StateSpawning:    {R: 90, G: 140, B: 220, A: 255},
	StateAlive:       {R: 120, G: 200, B: 110, A: 255},
	StateValidated:   {R: 60, G: 220, B: 160, A: 255},
	StateStable:      {R: 240, G: 230, B: 120, A: 255},
	StateReproducing: {R: 250, G: 140, B: 220, A: 255},
	StateDying:       {R: 220, G: 110, B: 60, A: 255},
	StateGhost:       {R: 90, G: 80, B: 100, A: 255},
}

// Palette maps each state code to its display color.
func (e *Engine) Palette() []color.RGBA {
	return statePalette
}
