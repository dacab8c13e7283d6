package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"contract-ca/internal/sims/validation"
	"contract-ca/internal/snapshot"
)

var stateGlyphs = [...]byte{
	validation.StateDead:        '.',
	validation.StateSpawning:    's',
	validation.StateAlive:       'a',
	validation.StateValidated:   'v',
	validation.StateStable:      'S',
	validation.StateReproducing: 'R',
	validation.StateDying:       'd',
	validation.StateGhost:       'g',
}

func inspectSnapshot(cmd *cobra.Command, args []string) error {
	store, err := openStore(appConfig.Snapshot, slog.Default())
	if err != nil {
		return err
	}
	if store == nil {
		return fmt.Errorf("snapshot backend is disabled")
	}
	defer store.Close()

	var rec snapshot.Record
	if inspectGeneration == 0 {
		rec, err = store.Latest(cmd.Context())
	} else {
		rec, err = store.Load(cmd.Context(), inspectGeneration)
	}
	if err != nil {
		return err
	}
	return writeRecord(cmd.OutOrStdout(), rec, inspectGrid)
}

func writeRecord(out io.Writer, rec snapshot.Record, grid bool) error {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "generation\t%d\n", rec.Generation)
	fmt.Fprintf(tw, "timestamp\t%s\n", rec.Timestamp.Format("2006-01-02T15:04:05.000Z07:00"))
	fmt.Fprintf(tw, "alive\t%d\n", rec.Stats.TotalAlive)
	fmt.Fprintf(tw, "births\t%d\n", rec.Stats.Births)
	fmt.Fprintf(tw, "deaths\t%d\n", rec.Stats.Deaths)
	fmt.Fprintf(tw, "survivors\t%d\n", rec.Stats.Survivors)
	fmt.Fprintf(tw, "audit hash\t%s\n", rec.AuditHash)
	for _, p := range rec.Patterns {
		fmt.Fprintf(tw, "pattern\t%s (%s) phase %d at (%d,%d,%d)\n", p.TemplateID, p.Kind, p.Phase, p.X, p.Y, p.Z)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if !grid || len(rec.Grid) == 0 {
		return nil
	}
	fmt.Fprintf(out, "\nlayer z=%d\n", len(rec.Grid)/2)
	_, err := io.WriteString(out, renderLayer(rec.Grid[len(rec.Grid)/2]))
	return err
}

// renderLayer draws one [y][x] layer with a glyph per state.
func renderLayer(layer [][]int) string {
	var b strings.Builder
	for _, row := range layer {
		for _, code := range row {
			if code >= 0 && code < len(stateGlyphs) {
				b.WriteByte(stateGlyphs[code])
			} else {
				b.WriteByte('?')
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}
