package ui

import (
	"image"
	"testing"

	"contract-ca/internal/core"
	"contract-ca/internal/sims/validation"
)

func TestHighlightsScaleTemplateBounds(t *testing.T) {
	report := validation.PatternReport{
		Static: []validation.PatternInstance{{TemplateID: "block", Kind: validation.KindStillLife, X: 4, Y: 4}},
		Movers: []validation.PatternInstance{{TemplateID: "glider", Kind: validation.KindMover, Phase: 1, X: 1, Y: 2}},
	}
	got := Highlights(report, 3)
	if len(got) != 2 {
		t.Fatalf("expected 2 highlights, got %d", len(got))
	}
	if want := image.Rect(12, 12, 18, 18); got[0].Rect != want {
		t.Fatalf("block rect = %v, want %v", got[0].Rect, want)
	}
	if want := image.Rect(3, 6, 12, 15); got[1].Rect != want {
		t.Fatalf("glider rect = %v, want %v", got[1].Rect, want)
	}
	if got[0].Color == got[1].Color {
		t.Fatal("still lifes and movers should use different colors")
	}
}

func TestHighlightsSkipUnknownTemplates(t *testing.T) {
	report := validation.PatternReport{
		Static: []validation.PatternInstance{{TemplateID: "nope", Kind: validation.KindStillLife}},
	}
	if got := Highlights(report, 1); len(got) != 0 {
		t.Fatalf("expected no highlights, got %v", got)
	}
}

func TestParamCursorKeepsSelection(t *testing.T) {
	snap := core.ParameterSnapshot{Groups: []core.ParameterGroup{{
		Params: []core.Parameter{
			{Key: "a", Type: core.ParamTypeFloat, Value: "0.5"},
			{Key: "n", Type: core.ParamTypeInt, Value: "3"},
			{Key: "b", Type: core.ParamTypeFloat, Value: "0.25"},
		},
	}}}
	var c paramCursor
	c.sync(snap)
	if key, _ := c.selected(); key != "a" {
		t.Fatalf("initial selection = %q", key)
	}
	c.next()
	c.sync(snap)
	if key, _ := c.selected(); key != "b" {
		t.Fatalf("selection after resync = %q", key)
	}
	c.next()
	if key, _ := c.selected(); key != "a" {
		t.Fatalf("selection should wrap, got %q", key)
	}

	v, ok := nudge(snap, "b", -1)
	if !ok || v != 0.2 {
		t.Fatalf("nudge = %v,%v", v, ok)
	}
	if _, ok := nudge(snap, "missing", 1); ok {
		t.Fatal("nudging an unknown key should fail")
	}
}
