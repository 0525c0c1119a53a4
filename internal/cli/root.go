// Package cli implements the examhub command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/examhub/exam-room-scheduler/config"
	"github.com/examhub/exam-room-scheduler/internal/app"
	"github.com/examhub/exam-room-scheduler/pkg/logger"
)

// Exit codes.
const (
	ExitSuccess      = 0
	ExitFailure      = 1 // an operation ran and failed (sync, serve)
	ExitCommandError = 2 // bad configuration or store unreachable
)

// ExitError carries the process exit code of a failed command.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

func wrapExit(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// ExitCode extracts the exit code from err; plain errors map to ExitFailure.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
	Verbose    bool

	// AppOptions is passed to app.New; tests use it to stub collaborators.
	AppOptions app.Options
}

// NewRootCommand creates the root command.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "examhub",
		Short: "Exam room scheduling backend",
		Long: `examhub replicates the campus catalog from its GraphQL source and
allocates exam sessions to rooms and shifts.

Configuration is read from built-in defaults, then the --config YAML file,
then environment variables.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "path to a YAML config file")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "debug logging")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewSyncCommand(opts))
	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewExportCommand(opts))

	return cmd
}

// loadConfig reads the configuration and builds the logger for it. Logs go
// to the command's error stream so stdout stays machine-readable.
func loadConfig(opts *RootOptions, stderr io.Writer) (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, nil, wrapExit(ExitCommandError, "load config", err)
	}

	log := opts.AppOptions.Logger
	if log == nil {
		log = logger.New(logger.Options{
			Level:      cfg.Observability.LogLevel,
			Format:     cfg.Observability.LogFormat,
			Production: cfg.IsProduction(),
			Debug:      opts.Verbose || cfg.App.Debug,
			Output:     stderr,
		})
	}
	return cfg, log, nil
}

// openApp loads the configuration and wires the application.
func openApp(ctx context.Context, opts *RootOptions, stderr io.Writer) (*app.App, *config.Config, *slog.Logger, error) {
	cfg, log, err := loadConfig(opts, stderr)
	if err != nil {
		return nil, nil, nil, err
	}

	appOpts := opts.AppOptions
	appOpts.Logger = log
	a, err := app.New(ctx, cfg, appOpts)
	if err != nil {
		return nil, nil, nil, wrapExit(ExitCommandError, "start", err)
	}
	return a, cfg, log, nil
}
