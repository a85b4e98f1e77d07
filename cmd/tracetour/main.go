package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"tracetour/internal/app"
	"tracetour/internal/config"
	"tracetour/internal/logging"
	"tracetour/internal/tour"
)

var version = "0.1.0"

// flags holds the values of the global and playback flags.
type flags struct {
	cfgFile  string
	logLevel string
	pace     string
	dryRun   bool
	muted    bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	f := &flags{}

	rootCmd := &cobra.Command{
		Use:   "tracetour",
		Short: "Guided, narrated tours of the traceability demo",
		Long: `Tracetour plays scripted product tours of the food traceability demo.
Each tour drives the web application step by step, highlights the element
being discussed and narrates it, while you steer from the terminal.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShell(f, "")
		},
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&f.cfgFile, "config", "", "config file (default is $XDG_CONFIG_HOME/tracetour/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&f.logLevel, "log-level", "", "log level: debug, info, warn or error")
	rootCmd.PersistentFlags().StringVar(&f.pace, "pace", "", "pace preset: "+strings.Join(config.ListPresets(), ", "))
	rootCmd.PersistentFlags().BoolVar(&f.dryRun, "dry-run", false, "rehearse against an in-memory page instead of a browser")
	rootCmd.PersistentFlags().BoolVar(&f.muted, "muted", false, "start with narration muted")

	rootCmd.AddCommand(
		newPlayCmd(f),
		newListCmd(f),
		newShowCmd(f),
		newValidateCmd(f),
		newInitConfigCmd(f),
		&cobra.Command{
			Use:   "version",
			Short: "Print the version number",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "tracetour version %s\n", version)
			},
		},
	)
	return rootCmd
}

// loadConfig reads the config and applies flag overrides.
func loadConfig(f *flags) (*config.Config, error) {
	cfg, err := config.Load(f.cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	cfg.Version = version

	if f.logLevel != "" {
		cfg.Logging.Level = f.logLevel
	}
	if f.pace != "" && !cfg.Playback.ApplyPreset(f.pace) {
		return nil, fmt.Errorf("unknown pace %q (available: %s)", f.pace, strings.Join(config.ListPresets(), ", "))
	}
	if f.dryRun && cfg.Narration.Engine == config.EngineBrowser {
		// There is no page to speak through.
		cfg.Narration.Engine = config.EngineSilent
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadCatalog(cfg *config.Config) (*tour.Catalog, error) {
	return tour.LoadCatalog(tour.Options{
		IncludeBuiltin: cfg.Scenarios.IncludeBuiltin,
		Dirs:           cfg.Scenarios.Dirs,
		Pattern:        cfg.Scenarios.Pattern,
	})
}

// runShell starts the interactive shell, playing scenarioID directly when
// it is set.
func runShell(f *flags, scenarioID string) error {
	cfg, err := loadConfig(f)
	if err != nil {
		return err
	}
	defer logging.Close()

	application, err := app.New(context.Background(), cfg, app.Options{DryRun: f.dryRun, Muted: f.muted})
	if err != nil {
		return fmt.Errorf("failed to create application: %w", err)
	}

	var direct *tour.Scenario
	if scenarioID != "" {
		direct, err = application.Catalog().Get(scenarioID)
		if err != nil {
			application.Shutdown()
			return err
		}
	}
	return application.Run(direct)
}
