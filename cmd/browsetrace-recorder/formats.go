package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/vincentbai/browsetrace-recorder/internal/pipeline"
)

func newFormatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "formats",
		Short: "List the script formats",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, format := range pipeline.Formats() {
				fmt.Fprintf(w, "%s\t%s\t%s\n", format.Key, format.Label, format.FileName())
			}
			return w.Flush()
		},
	}
}
