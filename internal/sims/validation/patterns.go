package validation

import (
	"fmt"
	"sort"
)

// Template cell codes.
const (
	CodeDead     uint8 = 0
	CodeSpawning uint8 = 1 // matches anything
	CodeAlive    uint8 = 2
)

// PatternKind classifies templates.
type PatternKind string

const (
	KindStillLife  PatternKind = "still_life"
	KindOscillator PatternKind = "oscillator"
	KindMover      PatternKind = "mover"
)

// Template is a known alive-cell configuration. Every phase of a template
// shares the same bounding box so anchors can be compared across phases.
// Rows are indexed [y][x].
type Template struct {
	ID     string      `json:"id"`
	Name   string      `json:"name"`
	Kind   PatternKind `json:"kind"`
	Phases [][][]uint8 `json:"phases"`
}

// Width returns the template width.
func (t Template) Width() int {
	if len(t.Phases) == 0 || len(t.Phases[0]) == 0 {
		return 0
	}
	return len(t.Phases[0][0])
}

// Height returns the template height.
func (t Template) Height() int {
	if len(t.Phases) == 0 {
		return 0
	}
	return len(t.Phases[0])
}

// PatternInstance is one match of a template on the comparison layer.
type PatternInstance struct {
	TemplateID string      `json:"templateId"`
	Kind       PatternKind `json:"kind"`
	Phase      int         `json:"phase"`
	X          int         `json:"x"`
	Y          int         `json:"y"`
	Z          int         `json:"z"`
}

var templates = map[string]Template{}

// RegisterTemplate adds t to the catalog, replacing any template with the
// same id. Templates without an id or phases are ignored.
func RegisterTemplate(t Template) {
	if t.ID == "" || len(t.Phases) == 0 {
		return
	}
	templates[t.ID] = t
}

// LookupTemplate returns the template registered under id.
func LookupTemplate(id string) (Template, error) {
	t, ok := templates[id]
	if !ok {
		return Template{}, fmt.Errorf("%w: %q", ErrUnknownPattern, id)
	}
	return t, nil
}

// Templates returns the catalog sorted by id.
func Templates() []Template {
	out := make([]Template, 0, len(templates))
	for _, t := range templates {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func init() {
	const o, X = CodeDead, CodeAlive
	RegisterTemplate(Template{ID: "block", Name: "Block", Kind: KindStillLife, Phases: [][][]uint8{{
		{X, X},
		{X, X},
	}}})
	RegisterTemplate(Template{ID: "beehive", Name: "Beehive", Kind: KindStillLife, Phases: [][][]uint8{{
		{o, X, X, o},
		{X, o, o, X},
		{o, X, X, o},
	}}})
	RegisterTemplate(Template{ID: "loaf", Name: "Loaf", Kind: KindStillLife, Phases: [][][]uint8{{
		{o, X, X, o},
		{X, o, o, X},
		{o, X, o, X},
		{o, o, X, o},
	}}})
	RegisterTemplate(Template{ID: "boat", Name: "Boat", Kind: KindStillLife, Phases: [][][]uint8{{
		{X, X, o},
		{X, o, X},
		{o, X, o},
	}}})
	RegisterTemplate(Template{ID: "tub", Name: "Tub", Kind: KindStillLife, Phases: [][][]uint8{{
		{o, X, o},
		{X, o, X},
		{o, X, o},
	}}})
	RegisterTemplate(Template{ID: "blinker", Name: "Blinker", Kind: KindOscillator, Phases: [][][]uint8{
		{
			{o, X, o},
			{o, X, o},
			{o, X, o},
		},
		{
			{o, o, o},
			{X, X, X},
			{o, o, o},
		},
	}})
	RegisterTemplate(Template{ID: "toad", Name: "Toad", Kind: KindOscillator, Phases: [][][]uint8{
		{
			{o, o, o, o},
			{o, X, X, X},
			{X, X, X, o},
			{o, o, o, o},
		},
		{
			{o, o, X, o},
			{X, o, o, X},
			{X, o, o, X},
			{o, X, o, o},
		},
	}})
	RegisterTemplate(Template{ID: "beacon", Name: "Beacon", Kind: KindOscillator, Phases: [][][]uint8{
		{
			{X, X, o, o},
			{X, X, o, o},
			{o, o, X, X},
			{o, o, X, X},
		},
		{
			{X, X, o, o},
			{X, o, o, o},
			{o, o, o, X},
			{o, o, X, X},
		},
	}})
	RegisterTemplate(Template{ID: "glider", Name: "Glider", Kind: KindMover, Phases: [][][]uint8{
		{
			{o, X, o},
			{o, o, X},
			{X, X, X},
		},
		{
			{X, o, X},
			{o, X, X},
			{o, X, o},
		},
		{
			{o, o, X},
			{X, o, X},
			{o, X, X},
		},
		{
			{X, o, o},
			{o, X, X},
			{X, X, o},
		},
	}})
}

// MatchesPattern reports whether cells, anchored with its top-left corner at
// (x, y) on layer z, agrees with the grid. Only dead versus alive is
// checked; CodeSpawning cells match anything. A template that does not fit
// inside the grid never matches.
func (g *Grid) MatchesPattern(x, y, z int, cells [][]uint8) bool {
	if z < 0 || z >= g.dims.D || len(cells) == 0 {
		return false
	}
	if x < 0 || y < 0 || y+len(cells) > g.dims.H {
		return false
	}
	for ty, row := range cells {
		if x+len(row) > g.dims.W {
			return false
		}
		for tx, code := range row {
			alive := g.stateAt(x+tx, y+ty, z).IsAlive()
			switch code {
			case CodeAlive:
				if !alive {
					return false
				}
			case CodeDead:
				if alive {
					return false
				}
			}
		}
	}
	return true
}

// FindPatternInstances scans the comparison layer for every phase of t.
func (g *Grid) FindPatternInstances(t Template) []PatternInstance {
	z := g.ComparisonLayer()
	var out []PatternInstance
	w, h := t.Width(), t.Height()
	for y := 0; y+h <= g.dims.H; y++ {
		for x := 0; x+w <= g.dims.W; x++ {
			for phase, cells := range t.Phases {
				if g.MatchesPattern(x, y, z, cells) {
					out = append(out, PatternInstance{TemplateID: t.ID, Kind: t.Kind, Phase: phase, X: x, Y: y, Z: z})
					break
				}
			}
		}
	}
	return out
}

// stillLifeCoverage maps each alive cell of the comparison layer that sits
// inside an isolated still-life instance to the template id. Instances
// touching other alive cells are part of a larger mass and do not count.
func (g *Grid) stillLifeCoverage() map[[2]int]string {
	cover := make(map[[2]int]string)
	for _, t := range Templates() {
		if t.Kind != KindStillLife {
			continue
		}
		for _, inst := range g.FindPatternInstances(t) {
			if !g.isolated(inst.X, inst.Y, inst.Z, t.Width(), t.Height()) {
				continue
			}
			for ty, row := range t.Phases[inst.Phase] {
				for tx, code := range row {
					if code != CodeAlive {
						continue
					}
					key := [2]int{inst.X + tx, inst.Y + ty}
					if _, taken := cover[key]; !taken {
						cover[key] = t.ID
					}
				}
			}
		}
	}
	return cover
}

// isolated reports whether the one-cell ring around the w×h box anchored at
// (x, y) holds no alive cell. Cells outside the grid count as dead.
func (g *Grid) isolated(x, y, z, w, h int) bool {
	for yy := y - 1; yy <= y+h; yy++ {
		for xx := x - 1; xx <= x+w; xx++ {
			inside := xx >= x && xx < x+w && yy >= y && yy < y+h
			if inside || !g.dims.Contains(xx, yy, z) {
				continue
			}
			if g.stateAt(xx, yy, z).IsAlive() {
				return false
			}
		}
	}
	return true
}

// PatternReport summarizes the patterns of one generation.
type PatternReport struct {
	Generation  uint64            `json:"generation"`
	Static      []PatternInstance `json:"static"`
	Oscillators []PatternInstance `json:"oscillators"`
	Movers      []PatternInstance `json:"movers"`
	// Compared is false when there was no prior grid to diff against.
	Compared bool       `json:"compared"`
	Appeared []Position `json:"appeared,omitempty"`
	Vanished []Position `json:"vanished,omitempty"`
}

// All returns every classified instance.
func (r PatternReport) All() []PatternInstance {
	out := make([]PatternInstance, 0, len(r.Static)+len(r.Oscillators)+len(r.Movers))
	out = append(out, r.Static...)
	out = append(out, r.Oscillators...)
	return append(out, r.Movers...)
}

// AnalyzePatterns scans cur for known templates. When prev is non-nil it is
// also diffed against cur to confirm oscillators and movers.
func AnalyzePatterns(cur, prev *Grid) PatternReport {
	var report PatternReport
	if prev != nil && prev.dims != cur.dims {
		prev = nil
	}
	for _, t := range Templates() {
		found := cur.FindPatternInstances(t)
		switch t.Kind {
		case KindStillLife:
			report.Static = append(report.Static, found...)
		case KindOscillator:
			if prev == nil {
				continue
			}
			before := prev.FindPatternInstances(t)
			for _, inst := range found {
				if hasPhaseChange(before, inst, 0) {
					report.Oscillators = append(report.Oscillators, inst)
				}
			}
		case KindMover:
			if prev == nil {
				continue
			}
			before := prev.FindPatternInstances(t)
			for _, inst := range found {
				if hasPhaseChange(before, inst, 1) {
					report.Movers = append(report.Movers, inst)
				}
			}
		}
	}
	if prev != nil {
		report.Compared = true
		report.Appeared, report.Vanished = layerDiff(cur, prev)
	}
	return report
}

// hasPhaseChange reports whether before holds an instance of the same
// template in a different phase whose anchor lies within reach of inst.
func hasPhaseChange(before []PatternInstance, inst PatternInstance, reach int) bool {
	for _, b := range before {
		if b.Phase == inst.Phase {
			continue
		}
		dx, dy := b.X-inst.X, b.Y-inst.Y
		if dx >= -reach && dx <= reach && dy >= -reach && dy <= reach {
			return true
		}
	}
	return false
}

func layerDiff(cur, prev *Grid) (appeared, vanished []Position) {
	z := cur.ComparisonLayer()
	for y := 0; y < cur.dims.H; y++ {
		for x := 0; x < cur.dims.W; x++ {
			now := cur.stateAt(x, y, z).IsAlive()
			was := prev.stateAt(x, y, z).IsAlive()
			switch {
			case now && !was:
				appeared = append(appeared, Position{X: x, Y: y, Z: z})
			case was && !now:
				vanished = append(vanished, Position{X: x, Y: y, Z: z})
			}
		}
	}
	return appeared, vanished
}
