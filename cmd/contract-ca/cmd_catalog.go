package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"contract-ca/internal/config"
	"contract-ca/internal/sims/validation"
)

func listPatterns(cmd *cobra.Command, args []string) error {
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tKIND\tSIZE\tPHASES")
	for _, t := range validation.Templates() {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%dx%d\t%d\n", t.ID, t.Name, t.Kind, t.Width(), t.Height(), len(t.Phases))
	}
	return tw.Flush()
}

func printParams(cmd *cobra.Command, args []string) error {
	e, err := validation.NewEngine(appConfig.Engine)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	for _, g := range e.Parameters().Groups {
		fmt.Fprintf(tw, "[%s]\n", g.Name)
		for _, p := range g.Params {
			fmt.Fprintf(tw, "  %s\t%s\t%s\n", p.Key, p.Value, p.Label)
		}
	}
	fmt.Fprintf(tw, "\noverride keys: %s\n", strings.Join(validation.OverrideKeys(), ", "))
	return tw.Flush()
}

func printConfig(cmd *cobra.Command, args []string) error {
	data, err := config.Marshal(appConfig)
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}

func writeDefaultConfig(cmd *cobra.Command, args []string) error {
	if err := config.WriteDefault(args[0]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", args[0])
	return nil
}
