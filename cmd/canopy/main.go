// Command canopy renders, inspects and serves the demo app.
package main

import (
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/vango-dev/canopy/internal/config"
	"github.com/vango-dev/canopy/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const banner = `
  ┌─┐┌─┐┌┐┌┌─┐┌─┐┬ ┬
  │  ├─┤││││ │├─┘└┬┘
  └─┘┴ ┴┘└┘└─┘┴   ┴
`

// cli holds the flags shared by every command.
type cli struct {
	configDir string
	noColor   bool
	verbose   bool

	theme theme
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		errors.PrintError(err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	rootCmd := &cobra.Command{
		Use:   "canopy",
		Short: "Render and inspect canopy component trees",
		Long: `Canopy reconciles component trees against a DOM.

This tool drives the bundled todo app through the renderer:

  render    print the rendered HTML
  tree      print the component and element tree
  snapshot  save, list and show snapshots
  serve     run the app in a browser over WebSocket`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			c.setup(cmd)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&c.configDir, "config-dir", "C", ".", "Directory containing "+config.ConfigFileName)
	flags.BoolVar(&c.noColor, "no-color", false, "Disable colored output")
	flags.BoolVarP(&c.verbose, "verbose", "v", false, "Log renderer diagnostics to stderr")

	rootCmd.AddCommand(
		renderCmd(c),
		treeCmd(c),
		snapshotCmd(c),
		serveCmd(c),
		explainCmd(c),
		versionCmd(c),
	)
	return rootCmd
}

// setup picks colors once the flags are parsed. Error output follows stderr,
// styled output follows the command's writer.
func (c *cli) setup(cmd *cobra.Command) {
	fd := os.Stderr.Fd()
	if c.noColor || !(isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)) {
		errors.DisableColors()
	}
	c.theme = newTheme(cmd.OutOrStdout(), c.noColor)
}

// config loads and validates the configuration.
func (c *cli) config() (*config.Config, error) {
	cfg, err := config.Load(c.configDir)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *cli) logger(cmd *cobra.Command) *slog.Logger {
	level := slog.LevelWarn
	if c.verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
}
