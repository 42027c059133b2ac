package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/shopsearch/internal/app"
	"github.com/kailas-cloud/shopsearch/internal/config"
	logpkg "github.com/kailas-cloud/shopsearch/internal/logger"
)

func newResyncCmd(opts *rootOptions) *cobra.Command {
	var remote bool
	var env string

	cmd := &cobra.Command{
		Use:   "resync",
		Short: "Rebuild the vector index from the catalog",
		Long: `Re-embeds every catalog product and writes it to the vector index.
By default shopctl connects to the catalog and the index itself using the
service configuration; --remote asks a running server to do it instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if remote {
				return runRemoteResync(cmd, opts)
			}
			return runLocalResync(cmd, env)
		},
	}
	cmd.Flags().BoolVar(&remote, "remote", false, "trigger the resync on the running server")
	cmd.Flags().StringVar(&env, "env", config.GetEnv(), "configuration environment (local, dev, prod)")
	return cmd
}

func runRemoteResync(cmd *cobra.Command, opts *rootOptions) error {
	client, err := opts.client()
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Resync requested, waiting for the server...")
	sum, err := client.SyncEmbeddings(cmd.Context())
	if err != nil {
		return fmt.Errorf("resync: %w", err)
	}
	printSummary(cmd, sum.SuccessCount, sum.ErrorCount, sum.Total, sum.Cancelled)
	return nil
}

func runLocalResync(cmd *cobra.Command, env string) error {
	cfg, err := config.Load(env)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger, err := logpkg.NewLogger(env, "warn")
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	comps, err := app.Build(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout())
		defer cancel()
		if err := comps.Close(closeCtx); err != nil {
			logger.Warn("close failed", zap.Error(err))
		}
	}()

	var (
		bar  *progressbar.ProgressBar
		once sync.Once
		mu   sync.Mutex
	)
	progress := func(done, total int) {
		mu.Lock()
		defer mu.Unlock()
		once.Do(func() {
			bar = progressbar.NewOptions(total,
				progressbar.OptionSetWriter(cmd.ErrOrStderr()),
				progressbar.OptionEnableColorCodes(true),
				progressbar.OptionSetWidth(40),
				progressbar.OptionShowCount(),
				progressbar.OptionSetDescription("[cyan]Embedding[reset]"),
				progressbar.OptionSetTheme(progressbar.Theme{
					Saucer:        "[green]=[reset]",
					SaucerHead:    "[green]>[reset]",
					SaucerPadding: " ",
					BarStart:      "[",
					BarEnd:        "]",
				}),
				progressbar.OptionOnCompletion(func() {
					fmt.Fprintln(cmd.ErrOrStderr())
				}),
			)
		})
		_ = bar.Set(done)
	}

	// An interrupt aborts the run; the partial summary is still printed.
	defer context.AfterFunc(ctx, comps.Sync.Abort)()
	sum, err := comps.Sync.SyncAll(cmd.Context(), progress)
	if err != nil {
		return fmt.Errorf("resync: %w", err)
	}
	printSummary(cmd, sum.Succeeded, sum.Failed, sum.Total, sum.Cancelled)
	return nil
}

func printSummary(cmd *cobra.Command, ok, failed, total int, cancelled bool) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "\nResync complete:\n")
	fmt.Fprintf(out, "  Indexed: %d\n", ok)
	fmt.Fprintf(out, "  Failed:  %d\n", failed)
	fmt.Fprintf(out, "  Total:   %d\n", total)
	if cancelled {
		fmt.Fprintln(out, "  Interrupted before all products were processed.")
	}
}
