package main

import (
	"github.com/spf13/cobra"

	"contract-ca/internal/config"
)

// --- Global Command Variables ---
var (
	configPath string
	overrides  []string
	logLevel   string
	logFormat  string

	// loaded in PersistentPreRunE
	appConfig config.File

	runGenerations int
	runResume      bool
	runPatterns    []string
	runSoup        bool

	serveAutorun bool

	inspectGeneration uint64
	inspectGrid       bool

	rootCmd = &cobra.Command{
		Use:           "contract-ca",
		Short:         "Run the contract validation cellular automaton",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath, overrides, logLevel, logFormat)
			if err != nil {
				return err
			}
			appConfig = cfg
			setupLogging(cmd.ErrOrStderr(), cfg.Log)
			return nil
		},
	}

	runCmd = &cobra.Command{
		Use:   "run",
		Short: "Run the simulation headless, writing snapshots to the configured store",
		RunE:  runSimulation,
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Serve the simulation over HTTP and WebSocket",
		RunE:  serveSimulation,
	}

	patternsCmd = &cobra.Command{
		Use:   "patterns",
		Short: "List the pattern template catalog",
		RunE:  listPatterns,
	}

	paramsCmd = &cobra.Command{
		Use:   "params",
		Short: "Print the effective engine parameters",
		RunE:  printParams,
	}

	inspectCmd = &cobra.Command{
		Use:   "inspect",
		Short: "Print a stored snapshot",
		RunE:  inspectSnapshot,
	}

	configCmd = &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as YAML",
		RunE:  printConfig,
	}

	configInitCmd = &cobra.Command{
		Use:   "init [path]",
		Short: "Write the default configuration to path",
		Args:  cobra.ExactArgs(1),
		RunE:  writeDefaultConfig,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().StringArrayVar(&overrides, "set", nil, "Override an engine parameter (key=value, repeatable)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn or error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "Log format: text or json")

	runCmd.Flags().IntVarP(&runGenerations, "generations", "n", 0, "Generations to run (0 runs until the generation cap or interrupt)")
	runCmd.Flags().BoolVar(&runResume, "resume", false, "Resume from the latest stored snapshot")
	runCmd.Flags().StringArrayVarP(&runPatterns, "pattern", "p", nil, "Seed a template as id@x,y[,z] (repeatable)")
	runCmd.Flags().BoolVar(&runSoup, "soup", false, "Scatter a random soup before seeding patterns (density 0.35 unless configured)")

	serveCmd.Flags().StringArrayVarP(&runPatterns, "pattern", "p", nil, "Seed a template as id@x,y[,z] (repeatable)")
	serveCmd.Flags().BoolVar(&runSoup, "soup", false, "Scatter a random soup before seeding patterns (density 0.35 unless configured)")
	serveCmd.Flags().BoolVar(&serveAutorun, "autorun", false, "Step continuously at run.tps while serving")
	serveCmd.Flags().BoolVar(&runResume, "resume", false, "Resume from the latest stored snapshot")

	inspectCmd.Flags().Uint64VarP(&inspectGeneration, "generation", "g", 0, "Generation to load (0 loads the latest)")
	inspectCmd.Flags().BoolVar(&inspectGrid, "grid", false, "Print the comparison layer")

	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(runCmd, serveCmd, patternsCmd, paramsCmd, inspectCmd, configCmd)
}
