package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/vango-dev/canopy/internal/errors"
	"github.com/vango-dev/canopy/pkg/dom/memdom"
	"github.com/vango-dev/canopy/pkg/snapshot"
)

func treeCmd(c *cli) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Print the rendered wrapper tree",
		Long: `Render the app and print every component, element and text node the
renderer tracks.

Examples:
  canopy tree
  canopy tree --format yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.config()
			if err != nil {
				return err
			}
			r, err := mountDemo(memdom.NewDocument(), cfg, c.logger(cmd))
			if err != nil {
				return err
			}
			nodes := snapshot.Tree(r)

			w := cmd.OutOrStdout()
			switch format {
			case "text":
				c.theme.printTree(w, nodes, "")
				info(w, "%d component instances", r.Instances())
				return nil
			case "yaml":
				data, err := yaml.Marshal(nodes)
				if err != nil {
					return err
				}
				_, err = w.Write(data)
				return err
			default:
				return errors.New(errors.ErrCLIUsage).
					WithDetailf("Unknown format %q", format).
					WithSuggestion("Use --format text or --format yaml")
			}
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format: text or yaml")

	return cmd
}

func (t theme) printTree(w io.Writer, nodes []snapshot.Node, indent string) {
	for i, n := range nodes {
		branch, next := "├─ ", "│  "
		if i == len(nodes)-1 {
			branch, next = "└─ ", "   "
		}
		if indent == "" && len(nodes) == 1 {
			branch, next = "", ""
		}
		fmt.Fprintf(w, "%s%s\n", t.guide.Render(indent+branch), t.label(n))
		t.printTree(w, n.Children, indent+next)
	}
}

func (t theme) label(n snapshot.Node) string {
	var b strings.Builder
	switch n.Kind {
	case "component":
		b.WriteString(t.component.Render(n.Name))
		b.WriteString(t.guide.Render(" #" + n.ID))
		if n.Pending {
			b.WriteString(" " + t.pending.Render("(pending)"))
		}
	case "text":
		b.WriteString(t.text.Render(strconv.Quote(truncate(n.Text, 40))))
	default:
		b.WriteString(t.element.Render("<" + n.Name + ">"))
	}
	if n.Key != "" {
		b.WriteString(" " + t.key.Render("key="+n.Key))
	}
	return b.String()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
