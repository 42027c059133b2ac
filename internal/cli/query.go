package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	shopsearch "github.com/kailas-cloud/shopsearch/pkg/sdk"
)

func newSearchCmd(opts *rootOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Semantic product search",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := opts.client()
			if err != nil {
				return err
			}
			hits, err := client.SemanticSearch(cmd.Context(), strings.Join(args, " "), limit)
			if err != nil {
				return fmt.Errorf("search: %w", err)
			}
			printHits(cmd.OutOrStdout(), hits)
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "k", 0, "number of results (0 = server default)")
	return cmd
}

func newAskCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask the shopping assistant",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := opts.client()
			if err != nil {
				return err
			}
			reply, err := client.Chat(cmd.Context(), strings.Join(args, " "), nil)
			if err != nil {
				return fmt.Errorf("ask: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, reply.Response)
			if len(reply.Products) > 0 {
				fmt.Fprintln(out, "\nProducts:")
				printHits(out, reply.Products)
			}
			return nil
		},
	}
}

func newHealthCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Show server health",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := opts.client()
			if err != nil {
				return err
			}
			report, err := client.Health(cmd.Context())
			if err != nil {
				return fmt.Errorf("health: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "status: %s\n", report.Status)
			for _, name := range []string{"catalog", "vector_index", "embedding"} {
				if res, ok := report.Checks[name]; ok {
					fmt.Fprintf(out, "  %-13s %s\n", name, res)
				}
			}
			return nil
		},
	}
}

func printHits(w io.Writer, hits []shopsearch.Hit) {
	if len(hits) == 0 {
		fmt.Fprintln(w, "No products found.")
		return
	}
	for i, h := range hits {
		score := "  -  "
		if h.SimilarityScore != nil {
			score = fmt.Sprintf("%.3f", *h.SimilarityScore)
		}
		fmt.Fprintf(w, "%d. [%s] %s  $%.2f  (%s)\n", i+1, score, h.Title, h.Price, h.Slug)
	}
}
