package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// ExportOptions holds flags for the export command.
type ExportOptions struct {
	*RootOptions
	Output string
}

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the exam schedule to an XLSX workbook",
		Long: `Write every allocated session to one sheet, ordered by date, shift
and code.

Example:
  examhub export --out schedule.xlsx`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, _, _, err := openApp(ctx, opts.RootOptions, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()

			n, err := a.ExportFile(ctx, opts.Output)
			if err != nil {
				return wrapExit(ExitFailure, "export", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d sessions to %s\n", n, opts.Output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "out", "o", "exam-schedule.xlsx", "workbook path")

	return cmd
}
