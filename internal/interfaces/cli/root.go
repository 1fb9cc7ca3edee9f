package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/turtacn/CaseLaw-Intelligence/internal/config"
	"github.com/turtacn/CaseLaw-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/CaseLaw-Intelligence/pkg/errors"
)

// Build-time variables injected via ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// RootOptions holds the global CLI flags.
type RootOptions struct {
	ConfigPath   string
	LogLevel     string
	OutputFormat string
}

// runContext carries the initialized configuration and logger through the
// command tree.
type runContext struct {
	Config *config.Config
	Logger logging.Logger
	Output string
}

type runContextKey struct{}

// timeUnit is the rounding applied to durations in text summaries.
const timeUnit = time.Millisecond

// NewRootCommand creates the caselaw root command with global flags and every
// pipeline subcommand attached.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "caselaw",
		Short: "CaseLaw-Intelligence CLI — Indonesian court-ruling analytics pipeline",
		Long: "CaseLaw-Intelligence extracts structured metadata from Indonesian court\n" +
			"rulings, retrieves similar cases by TF-IDF, embedding and hybrid methods,\n" +
			"predicts applicable statutes by weighted vote, and scores both stages with\n" +
			"standard IR metrics.",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildDate),
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return persistentPreRun(cmd, opts)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&opts.ConfigPath, "config", "c", "", "config file path (default: ./caselaw.yaml, else environment)")
	pf.StringVar(&opts.LogLevel, "log-level", "", "log level override (debug, info, warn, error)")
	pf.StringVarP(&opts.OutputFormat, "output", "o", "text", "output format (text, json)")

	cmd.AddCommand(
		newIngestCmd(),
		newQueriesCmd(),
		newRetrieveCmd(),
		newPredictCmd(),
		newEvaluateCmd(),
		newArchiveCmd(),
	)
	return cmd
}

// persistentPreRun loads configuration and builds the CLI logger, storing
// both on the command context for subcommands.
func persistentPreRun(cmd *cobra.Command, opts *RootOptions) error {
	cfg, err := loadConfig(opts.ConfigPath)
	if err != nil {
		return err
	}

	level := cfg.Log.Level
	if opts.LogLevel != "" {
		level = opts.LogLevel
	}
	logger, err := logging.NewLogger(logging.LogConfig{
		Level:            level,
		Format:           "console",
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	})
	if err != nil {
		return err
	}

	rc := &runContext{Config: cfg, Logger: logger, Output: opts.OutputFormat}
	cmd.SetContext(context.WithValue(cmd.Context(), runContextKey{}, rc))
	return nil
}

// loadConfig resolves configuration in priority order: explicit flag, a
// ./caselaw.yaml in the working directory, then environment variables alone.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.Load(path)
	}
	if _, err := os.Stat("caselaw.yaml"); err == nil {
		return config.Load("caselaw.yaml")
	}
	return config.LoadFromEnv()
}

// getRunContext extracts the initialized run context from a command.
func getRunContext(cmd *cobra.Command) (*runContext, error) {
	rc, ok := cmd.Context().Value(runContextKey{}).(*runContext)
	if !ok || rc == nil {
		return nil, errors.New(errors.ErrCodeValidation, "command run context not initialized")
	}
	return rc, nil
}

// printResult renders a stage summary in the selected output format.
func printResult(cmd *cobra.Command, rc *runContext, data interface{}) error {
	if rc != nil && rc.Output == "json" {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(data)
	}
	switch v := data.(type) {
	case string:
		fmt.Fprintln(cmd.OutOrStdout(), v)
	case fmt.Stringer:
		fmt.Fprintln(cmd.OutOrStdout(), v.String())
	default:
		fmt.Fprintf(cmd.OutOrStdout(), "%+v\n", v)
	}
	return nil
}

// Execute runs the CLI with signal-driven cancellation.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := NewRootCommand()
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(root.ErrOrStderr(), "Error: %s\n", err.Error())
		return err
	}
	return nil
}
