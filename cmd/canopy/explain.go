package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vango-dev/canopy/internal/errors"
)

func explainCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "explain CODE",
		Short: "Explain an error code",
		Long: `Print the category, message and explanation registered for an error
code such as E001. Without a code every registered code is listed.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			if len(args) == 0 {
				for _, code := range errors.GetAllCodes() {
					tmpl, _ := errors.GetTemplate(code)
					fmt.Fprintf(w, "%s  %s\n", c.theme.key.Render(code), tmpl.Message)
				}
				return nil
			}

			code := strings.ToUpper(args[0])
			tmpl, ok := errors.GetTemplate(code)
			if !ok {
				err := errors.New(errors.ErrCLIUsage).WithDetailf("Unknown error code %q", args[0])
				if s := errors.Suggest(code, errors.GetAllCodes()); s != "" {
					err = err.WithSuggestion("Did you mean " + s + "?")
				}
				return err
			}
			fmt.Fprintf(w, "%s [%s] %s\n\n", c.theme.key.Render(code), tmpl.Category, tmpl.Message)
			info(w, "%s", errors.Explain(code))
			return nil
		},
	}
}
