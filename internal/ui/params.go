package ui

import (
	"math"
	"strconv"

	"contract-ca/internal/core"
)

// paramStep is the increment applied by one key press.
const paramStep = 0.05

// paramCursor tracks which float parameter the HUD is editing.
type paramCursor struct {
	keys []string
	idx  int
}

// sync refreshes the editable keys from snap, keeping the selection on the
// same key when it still exists.
func (c *paramCursor) sync(snap core.ParameterSnapshot) {
	var current string
	if c.idx < len(c.keys) {
		current = c.keys[c.idx]
	}
	c.keys = c.keys[:0]
	c.idx = 0
	for _, g := range snap.Groups {
		for _, p := range g.Params {
			if p.Type != core.ParamTypeFloat {
				continue
			}
			if p.Key == current {
				c.idx = len(c.keys)
			}
			c.keys = append(c.keys, p.Key)
		}
	}
}

func (c *paramCursor) next() {
	if len(c.keys) > 0 {
		c.idx = (c.idx + 1) % len(c.keys)
	}
}

func (c *paramCursor) selected() (string, bool) {
	if c.idx >= len(c.keys) {
		return "", false
	}
	return c.keys[c.idx], true
}

// nudge parses the displayed value of key and returns it moved by dir steps,
// rounded to two decimals.
func nudge(snap core.ParameterSnapshot, key string, dir int) (float64, bool) {
	p, ok := snap.Lookup(key)
	if !ok {
		return 0, false
	}
	v, err := strconv.ParseFloat(p.Value, 64)
	if err != nil {
		return 0, false
	}
	v += float64(dir) * paramStep
	return math.Round(v*100) / 100, true
}
