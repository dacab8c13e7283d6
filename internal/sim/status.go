package sim

import (
	"time"

	"contract-ca/internal/audit"
	"contract-ca/internal/sims/validation"
)

// Status is a point-in-time summary of the simulation.
type Status struct {
	Generation     uint64                       `json:"generation"`
	Running        bool                         `json:"running"`
	Width          int                          `json:"width"`
	Height         int                          `json:"height"`
	Depth          int                          `json:"depth"`
	Alive          int                          `json:"alive"`
	Census         map[string]int               `json:"census"`
	MaxGenerations int                          `json:"maxGenerations"`
	Last           *validation.GenerationRecord `json:"last,omitempty"`
	HistoryLen     int                          `json:"historyLen"`
	Audit          audit.Stats                  `json:"audit"`
	Uptime         string                       `json:"uptime"`
}

// Status reports the current generation, census and trail sizes.
func (s *Simulation) Status() Status {
	grid := s.engine.Grid()
	cfg := s.engine.Config()
	census := make(map[string]int)
	for state, n := range grid.Census() {
		census[state.String()] = n
	}
	st := Status{
		Generation:     s.engine.Generation(),
		Running:        s.Running(),
		Width:          cfg.Width,
		Height:         cfg.Height,
		Depth:          cfg.Depth,
		Alive:          grid.CountAlive(),
		Census:         census,
		MaxGenerations: cfg.MaxGenerations,
		Audit:          s.audit.Stats(),
		Uptime:         s.opts.Clock().Sub(s.started).Truncate(time.Millisecond).String(),
	}
	s.histMu.RLock()
	st.HistoryLen = s.history.Len()
	if last, ok := s.history.Last(); ok {
		st.Last = &last
	}
	s.histMu.RUnlock()
	return st
}
