package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"tracetour/internal/config"
	"tracetour/internal/highlight"
	"tracetour/internal/tour"
	"tracetour/internal/ui"
)

func newPlayCmd(f *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "play <scenario-id>",
		Short: "Play one scenario straight away",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShell(f, args[0])
		},
	}
}

func newListCmd(f *flags) *cobra.Command {
	var plain bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the available scenarios",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(f)
			if err != nil {
				return err
			}
			catalog, err := loadCatalog(cfg)
			if err != nil {
				return err
			}
			md := ui.CatalogMarkdown(catalog.List())
			if plain {
				fmt.Fprint(cmd.OutOrStdout(), md)
				return nil
			}
			style := ui.GetTheme(ui.ThemeType(cfg.UI.Theme)).Markdown
			fmt.Fprintln(cmd.OutOrStdout(), ui.RenderMarkdown(md, style, 100))
			return nil
		},
	}
	cmd.Flags().BoolVar(&plain, "plain", false, "print markdown without terminal styling")
	return cmd
}

func newShowCmd(f *flags) *cobra.Command {
	var plain bool
	cmd := &cobra.Command{
		Use:   "show <scenario-id>",
		Short: "Print a scenario as highlighted YAML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(f)
			if err != nil {
				return err
			}
			catalog, err := loadCatalog(cfg)
			if err != nil {
				return err
			}
			sc, err := catalog.Get(args[0])
			if err != nil {
				return err
			}

			var buf bytes.Buffer
			if err := tour.Encode(&buf, sc); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if sc.Source != "" {
				fmt.Fprintf(out, "# %s\n", sc.Source)
			}
			if plain {
				fmt.Fprint(out, buf.String())
				return nil
			}
			h := highlight.New(highlight.StyleFor(cfg.UI.Theme))
			fmt.Fprintln(out, h.HighlightWithLineNumbers(buf.String(), highlight.DetectLanguage(sc.Source), 1))
			return nil
		},
	}
	cmd.Flags().BoolVar(&plain, "plain", false, "print YAML without highlighting")
	return cmd
}

func newValidateCmd(f *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "validate [files...]",
		Short: "Check scenario files, or the configured scenario directories",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			if len(args) == 0 {
				cfg, err := loadConfig(f)
				if err != nil {
					return err
				}
				catalog, err := loadCatalog(cfg)
				if err != nil {
					return err
				}
				for _, sc := range catalog.List() {
					printValid(out, sc)
				}
				return nil
			}

			var failed int
			for _, path := range args {
				sc, err := tour.ParseFile(path)
				if err != nil {
					failed++
					fmt.Fprintf(out, "FAIL %v\n", err)
					continue
				}
				printValid(out, sc)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d scenario files invalid", failed, len(args))
			}
			return nil
		},
	}
}

func printValid(out io.Writer, sc *tour.Scenario) {
	source := sc.Source
	if source == "" {
		source = "builtin"
	}
	fmt.Fprintf(out, "ok   %s (%s, %d steps, %d selectors, %d views)\n",
		source, sc.ID, sc.Len(), len(sc.Selectors()), len(sc.Views()))
}

func newInitConfigCmd(f *flags) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init-config",
		Short: "Write the default configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := f.cfgFile
			if path == "" {
				path = config.GetConfigPath()
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			} else if err != nil && !errors.Is(err, os.ErrNotExist) {
				return err
			}
			if err := config.DefaultConfig().Save(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	return cmd
}
