package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vango-dev/canopy/internal/errors"
	"github.com/vango-dev/canopy/pkg/dom/memdom"
	"github.com/vango-dev/canopy/pkg/render"
)

func renderCmd(c *cli) *cobra.Command {
	var (
		mergeFile string
		annotate  bool
		sync      bool
		debug     bool
	)

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the app and print its HTML",
		Long: `Render the app into an in-memory document and print the body HTML.

With --merge the document is first filled with the markup in FILE and the
renderer adopts the nodes that match instead of creating new ones.

Examples:
  canopy render
  canopy render --merge server.html --debug -v
  canopy render --annotate`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.config()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("sync") {
				cfg.Render.Sync = sync
			}
			if cmd.Flags().Changed("debug") {
				cfg.Render.Debug = debug
			}
			doc := memdom.NewDocument()
			var extra []render.Option
			if mergeFile != "" {
				data, err := os.ReadFile(mergeFile)
				if err != nil {
					return errors.New(errors.ErrCLIUsage).Wrap(err).
						WithDetail("Cannot read the --merge markup")
				}
				doc.SetBodyHTML(string(data))
				extra = append(extra, render.WithMerge(true))
			}
			if _, err := mountDemo(doc, cfg, c.logger(cmd), extra...); err != nil {
				return err
			}

			body := doc.BodyNode()
			html := body.InnerHTML()
			if annotate {
				html = body.AnnotatedHTML()
			}
			fmt.Fprintln(cmd.OutOrStdout(), html)
			return nil
		},
	}

	cmd.Flags().StringVarP(&mergeFile, "merge", "m", "", "Adopt the existing markup in `FILE`")
	cmd.Flags().BoolVar(&sync, "sync", false, "Drain invalidations synchronously")
	cmd.Flags().BoolVar(&debug, "debug", false, "Log ambiguous siblings, unresolved labels and merge mismatches")
	cmd.Flags().BoolVarP(&annotate, "annotate", "a", false, "Add node ids as data-cid attributes")

	return cmd
}
