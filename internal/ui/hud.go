//go:build ebiten

package ui

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"contract-ca/internal/core"
)

type censusSource interface {
	Generation() uint64
}

// HUD renders the parameter panel to the right of the simulation view. Tab
// selects the next float parameter; minus and equals adjust it.
type HUD struct {
	sim      core.Sim
	width    int
	panel    *ebiten.Image
	snapshot core.ParameterSnapshot
	cursor   paramCursor
	setter   core.FloatParameterSetter
}

// NewHUD constructs a HUD for sim with the given panel width.
func NewHUD(sim core.Sim, width int) *HUD {
	h := &HUD{sim: sim, width: max(width, 0)}
	if setter, ok := sim.(core.FloatParameterSetter); ok {
		h.setter = setter
	}
	return h
}

// Update refreshes the parameter snapshot and applies key presses.
func (h *HUD) Update() {
	if h == nil {
		return
	}
	provider, ok := h.sim.(core.ParameterProvider)
	if !ok {
		return
	}
	h.snapshot = provider.Parameters()
	h.cursor.sync(h.snapshot)
	if inpututil.IsKeyJustPressed(ebiten.KeyTab) {
		h.cursor.next()
	}
	dir := 0
	if inpututil.IsKeyJustPressed(ebiten.KeyMinus) {
		dir = -1
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEqual) {
		dir = 1
	}
	key, ok := h.cursor.selected()
	if dir == 0 || !ok || h.setter == nil {
		return
	}
	if v, ok := nudge(h.snapshot, key, dir); ok && h.setter.SetFloatParameter(key, v) {
		h.snapshot = provider.Parameters()
	}
}

// Draw paints the panel at offsetX.
func (h *HUD) Draw(screen *ebiten.Image, offsetX, height int) {
	if h == nil || h.width <= 0 || height <= 0 {
		return
	}
	if h.panel == nil || h.panel.Bounds().Dy() != height {
		h.panel = ebiten.NewImage(h.width, height)
	}
	h.panel.Fill(color.RGBA{R: 16, G: 16, B: 20, A: 255})
	ebitenutil.DebugPrint(h.panel, h.text())
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(float64(offsetX), 0)
	screen.DrawImage(h.panel, op)
}

func (h *HUD) text() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", h.sim.Name())
	if src, ok := h.sim.(censusSource); ok {
		fmt.Fprintf(&b, "generation %d\n", src.Generation())
	}
	selected, _ := h.cursor.selected()
	for _, g := range h.snapshot.Groups {
		fmt.Fprintf(&b, "\n[%s]\n", g.Name)
		for _, p := range g.Params {
			marker := " "
			if p.Key == selected {
				marker = ">"
			}
			fmt.Fprintf(&b, "%s %s: %s\n", marker, p.Label, p.Value)
		}
	}
	return b.String()
}
