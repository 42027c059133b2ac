package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/shopsearch/internal/version"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the shopctl version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "shopctl %s\n", version.String())
		},
	}
}
