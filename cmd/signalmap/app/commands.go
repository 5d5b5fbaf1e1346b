package app

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/agentstation/signalmap"
	"github.com/agentstation/signalmap/internal/assess/gemini"
	"github.com/agentstation/signalmap/internal/cmd/output"
	"github.com/agentstation/signalmap/pkg/errors"
	"github.com/agentstation/signalmap/pkg/items"
	"github.com/agentstation/signalmap/pkg/logging"
)

// NewResolveCommand creates the resolve command.
func (a *App) NewResolveCommand() *cobra.Command {
	var assessFlag, showSkipped bool

	cmd := &cobra.Command{
		Use:   "resolve <file|->",
		Short: "Resolve a batch of raw items into scored profiles",
		Long: `Resolve reads a batch of raw items, groups the items that describe the
same entity, and prints one scored profile per entity.

The batch format is chosen by file extension: .yaml and .yml are read as
YAML, anything else as JSON. Use - to read JSON from stdin. Records that
are not objects or have no title are skipped and logged; profile item
indexes count the accepted records.

Examples:
  signalmap resolve batch.json
  signalmap resolve batch.yaml -o yaml
  cat batch.json | signalmap resolve - -o wide --skipped
  signalmap resolve batch.json --assess   # needs GEMINI_API_KEY`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runResolve(cmd.Context(), args[0], assessFlag, showSkipped)
		},
	}

	cmd.Flags().BoolVar(&assessFlag, "assess", false, "attach a secondary assessment from the Gemini API")
	cmd.Flags().BoolVar(&showSkipped, "skipped", false, "also list skipped items (table formats)")
	return cmd
}

func (a *App) runResolve(ctx context.Context, path string, assessFlag, showSkipped bool) error {
	ctx = logging.WithRunID(logging.WithLogger(ctx, a.logger), uuid.NewString())
	ctx = logging.WithFields(ctx, map[string]any{"batch": path, "assess": assessFlag})
	logger := logging.FromContext(ctx)

	batch, err := a.readBatch(path)
	if err != nil {
		return err
	}
	for _, s := range batch.Skipped {
		logger.Warn().Int("record", s.Index).Str("reason", s.Reason).Msg("Skipping record")
	}

	engine, err := a.Engine()
	if err != nil {
		return err
	}
	res, err := engine.Aggregate(ctx, batch.Items)
	if err != nil {
		return err
	}

	if assessFlag {
		g := a.config.Engine.Gemini
		assessor, err := gemini.New(ctx, g.APIKey, gemini.WithModel(g.Model), gemini.WithTimeout(g.Timeout))
		if err != nil {
			return err
		}
		if err := signalmap.Assess(ctx, res, assessor); err != nil {
			return err
		}
	}

	logger.Info().
		Int("items", res.Stats.Items).
		Int("skipped", res.Stats.Skipped+len(batch.Skipped)).
		Int("profiles", len(res.Profiles)).
		Msg("Resolved batch")

	if showSkipped {
		return a.writeResult(res, append(batch.Skipped, res.Skipped...))
	}
	return a.writeResult(res, nil)
}

// readBatch reads and decodes a batch file, or JSON from stdin for "-".
func (a *App) readBatch(path string) (items.Batch, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(a.in)
	} else {
		data, err = os.ReadFile(path)
	}
	if errors.Is(err, fs.ErrNotExist) {
		return items.Batch{}, errors.NewNotFoundError("batch file", path)
	}
	if err != nil {
		return items.Batch{}, errors.WrapIO("read", path, err)
	}

	var batch items.Batch
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		batch, err = items.DecodeYAML(data)
	default:
		batch, err = items.DecodeJSON(data)
	}
	if err != nil {
		var parseErr *errors.ParseError
		if errors.As(err, &parseErr) && path != "-" {
			parseErr.File = path
		}
		return items.Batch{}, err
	}
	return batch, nil
}

// writeResult prints the result, followed in table formats by any skipped
// records.
func (a *App) writeResult(res *signalmap.Result, skipped []items.Skipped) error {
	format := output.DetectFormat(a.config.Format)
	formatter := output.NewFormatter(format)

	switch format {
	case output.FormatJSON, output.FormatYAML:
		return formatter.Format(a.out, res)
	}

	if err := formatter.Format(a.out, output.ResultTable(res, format == output.FormatWide)); err != nil {
		return err
	}
	if len(skipped) > 0 {
		fmt.Fprintln(a.out)
		return formatter.Format(a.out, output.SkippedTable(skipped))
	}
	return nil
}

// NewPolicyCommand creates the policy command.
func (a *App) NewPolicyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "policy",
		Short: "Print the effective eligibility policy",
		Long: `Print the eligibility policy after defaults, the config file, the policy
file and environment overrides are applied. The YAML output can be saved
and passed back as policy_file.`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			policy := a.config.Engine.Eligibility
			if output.DetectFormat(a.config.Format) == output.FormatJSON {
				return output.NewFormatter(output.FormatJSON).Format(a.out, policy)
			}
			data, err := policy.Marshal()
			if err != nil {
				return err
			}
			_, err = a.out.Write(data)
			return err
		},
	}
}

// NewVersionCommand creates the version command.
func (a *App) NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Fprintf(a.out, "signalmap version %s\n", a.version)
			fmt.Fprintf(a.out, "commit: %s\n", a.commit)
			fmt.Fprintf(a.out, "built: %s\n", a.date)
			fmt.Fprintf(a.out, "built by: %s\n", a.builtBy)
			fmt.Fprintf(a.out, "go version: %s\n", runtime.Version())
			fmt.Fprintf(a.out, "platform: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	}
}
