package cli

import (
	"encoding/json"

	"github.com/spf13/cobra"
)

// NewSyncCommand creates the sync command.
func NewSyncCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Refresh the catalog replica once",
		Long: `Fetch the roster, rooms, subjects and enrollments from the remote
catalog and upsert them in that order. The stage report is printed as JSON
on stdout, including the failed stage when the run stops early.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, _, _, err := openApp(ctx, rootOpts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.Migrate(ctx); err != nil {
				return wrapExit(ExitCommandError, "migrate", err)
			}

			report, syncErr := a.Sync(ctx)
			if report != nil {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				if err := enc.Encode(report); err != nil {
					return err
				}
			}
			if syncErr != nil {
				return wrapExit(ExitFailure, "sync", syncErr)
			}
			return nil
		},
	}
}
