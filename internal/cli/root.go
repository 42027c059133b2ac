// Package cli implements the shopctl operator command line.
package cli

import (
	"os"

	"github.com/spf13/cobra"

	shopsearch "github.com/kailas-cloud/shopsearch/pkg/sdk"
)

type rootOptions struct {
	server string
	apiKey string
}

// NewRootCmd builds the shopctl command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "shopctl",
		Short: "Operate the shopsearch product search service",
		Long: `shopctl talks to a running shopsearch API or, for resync, directly to
the catalog and the vector index.

Example usage:
  shopctl resync                          # Rebuild the vector index from the catalog
  shopctl search "waterproof jacket"      # Semantic search
  shopctl ask "best laptop for travel?"   # Ask the shopping assistant`,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&opts.server, "server", envOr("SHOPSEARCH_URL", "http://localhost:8000"), "shopsearch API base URL")
	root.PersistentFlags().StringVar(&opts.apiKey, "api-key", os.Getenv("ADMIN_API_KEY"), "admin API key")

	root.AddCommand(
		newResyncCmd(opts),
		newSearchCmd(opts),
		newAskCmd(opts),
		newHealthCmd(opts),
		newVersionCmd(),
	)
	return root
}

// Execute runs shopctl and exits non-zero on failure.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func (o *rootOptions) client() (*shopsearch.Client, error) {
	return shopsearch.New(o.server, shopsearch.WithAPIKey(o.apiKey))
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
