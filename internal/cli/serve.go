package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	SkipSync bool
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Migrate, sync the catalog and serve the API",
		Long: `Bring the schema up to date, refresh the catalog replica when
catalog.sync_on_start is set, then serve the HTTP API until SIGINT or SIGTERM.

A failed sync stops the process before the listener opens.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, opts, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.SkipSync, "skip-sync", false, "serve the existing replica without syncing")

	return cmd
}

func runServe(ctx context.Context, opts *ServeOptions, cmd *cobra.Command) error {
	a, cfg, log, err := openApp(ctx, opts.RootOptions, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.Migrate(ctx); err != nil {
		return wrapExit(ExitCommandError, "migrate", err)
	}

	if cfg.Catalog.SyncOnStart && !opts.SkipSync {
		if _, err := a.Sync(ctx); err != nil {
			return wrapExit(ExitFailure, "initial sync", err)
		}
	} else {
		log.Info("startup sync skipped")
	}

	if err := a.Serve(ctx); err != nil {
		return wrapExit(ExitFailure, "serve", err)
	}
	return nil
}
