package app

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/agentstation/signalmap/internal/cmd/output"
	"github.com/agentstation/signalmap/internal/config"
	"github.com/agentstation/signalmap/pkg/errors"
	"github.com/agentstation/signalmap/pkg/logging"
)

// Execute runs the signalmap CLI application with the given arguments.
func (a *App) Execute(ctx context.Context, args []string) error {
	rootCmd := a.createRootCommand()
	rootCmd.SetArgs(args)
	rootCmd.SetOut(a.out)
	rootCmd.SetIn(a.in)
	return rootCmd.ExecuteContext(ctx)
}

// createRootCommand creates the root cobra command with all subcommands.
func (a *App) createRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "signalmap",
		Short:   "Resolve startup signals into scored entity profiles",
		Version: a.version,
		Long: `Signalmap groups raw items from code hosts, launch boards, news feeds,
on-chain indexers and social platforms into entities, fuses each group
into one profile, and scores its data quality and eligibility.

Batches are JSON arrays or YAML lists of items produced by an ingestion
layer. Thresholds and the eligibility policy come from .signalmap.yaml,
SIGNALMAP_* environment variables or a standalone policy file.`,
		PersistentPreRunE: a.setupCommand,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}

	rootCmd.PersistentFlags().StringVar(&a.config.ConfigFile, "config", "", "config file (default is $HOME/.signalmap.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&a.config.Verbose, "verbose", "v", false, "verbose output (shortcut for --log-level=debug)")
	rootCmd.PersistentFlags().BoolVarP(&a.config.Quiet, "quiet", "q", false, "minimal output (shortcut for --log-level=warn)")
	rootCmd.PersistentFlags().BoolVar(&a.config.NoColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().StringVarP(&a.config.Format, "format", "o", a.config.Format, "output format: table, wide, json, yaml")
	rootCmd.PersistentFlags().StringVar(&a.config.LogLevel, "log-level", "", "log level: trace, debug, info, warn, error (overrides -v/-q)")

	rootCmd.SetVersionTemplate("signalmap {{.Version}}\n")

	rootCmd.AddCommand(a.NewResolveCommand())
	rootCmd.AddCommand(a.NewPolicyCommand())
	rootCmd.AddCommand(a.NewVersionCommand())

	return rootCmd
}

// setupCommand is called before any command runs.
func (a *App) setupCommand(cmd *cobra.Command, _ []string) error {
	a.config.UpdateFromFlags(
		mustGetBool(cmd, "verbose"),
		mustGetBool(cmd, "quiet"),
		mustGetBool(cmd, "no-color"),
		mustGetString(cmd, "format"),
		mustGetString(cmd, "log-level"),
	)

	logging.SetDefault(NewLogger(a.config))
	a.logger = logging.Default()

	format, err := output.ParseFormat(a.config.Format)
	if err != nil {
		return err
	}
	a.config.Format = string(format)

	engineConfig, err := config.Load(a.config.ConfigFile)
	if err != nil {
		return err
	}
	a.config.Engine = engineConfig
	if engineConfig.File != "" {
		a.logger.Debug().Str("file", engineConfig.File).Msg("Loaded config file")
	}
	return nil
}

// ExitOnError prints an error and exits with the status ExitCode assigns.
func ExitOnError(err error) {
	if err != nil {
		_, _ = os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(ExitCode(err))
	}
}

// ExitCode maps an error to a process exit status: 2 for bad input or a
// missing file, 130 for an interrupted run, 1 otherwise.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.IsCanceled(err):
		return 130
	case errors.IsNotFound(err), errors.IsValidationError(err):
		return 2
	default:
		return 1
	}
}

// mustGetBool retrieves a boolean flag value or panics if the flag doesn't exist.
func mustGetBool(cmd *cobra.Command, name string) bool {
	val, err := cmd.Flags().GetBool(name)
	if err != nil {
		panic("programming error: failed to get flag " + name + ": " + err.Error())
	}
	return val
}

// mustGetString retrieves a string flag value or panics if the flag doesn't exist.
func mustGetString(cmd *cobra.Command, name string) string {
	val, err := cmd.Flags().GetString(name)
	if err != nil {
		panic("programming error: failed to get flag " + name + ": " + err.Error())
	}
	return val
}
