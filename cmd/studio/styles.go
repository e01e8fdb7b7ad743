package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"studio/internal/domain"
)

func newStylesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "styles",
		Short: "List the available visual styles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
			for _, s := range domain.Styles() {
				marker := ""
				if s.Value == domain.DefaultStyle {
					marker = " (default)"
				}
				fmt.Fprintf(tw, "%s\t%s%s\t%s\n", s.Value, s.Label, marker, s.Description)
			}
			return tw.Flush()
		},
	}
}
