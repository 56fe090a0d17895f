package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/parble/parble-go/config"
	"github.com/parble/parble-go/parble"
)

// Exit codes
const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

var (
	version   = "dev"
	buildTime = "unknown"
)

// SetVersion sets the version information reported by --version and sent as User-Agent
func SetVersion(v, bt string) {
	version = v
	buildTime = bt
	parble.Version = v
}

// app holds the state shared by the commands of one invocation
type app struct {
	stdout io.Writer
	stderr io.Writer

	// Global flags
	cfgFile string
	verbose bool
	url     string
	apiKey  string
	timeout time.Duration

	cfg    *config.Config
	logger zerolog.Logger
}

// usageError marks errors caused by invalid command line input
type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }

func (e *usageError) Unwrap() error { return e.err }

func usageErrorf(format string, args ...any) error {
	return &usageError{err: fmt.Errorf(format, args...)}
}

// usageArgs reports positional argument errors of validate as usage errors
func usageArgs(validate cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := validate(cmd, args); err != nil {
			return &usageError{err: err}
		}
		return nil
	}
}

func exactArgs(n int) cobra.PositionalArgs {
	return usageArgs(cobra.ExactArgs(n))
}

// groupCmd makes a command grouping subcommands runnable, so an unknown
// subcommand fails argument validation instead of silently printing help.
func groupCmd(cmd *cobra.Command) *cobra.Command {
	cmd.Args = usageArgs(cobra.NoArgs)
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	}
	return cmd
}

// newRootCmd builds the command tree for one invocation
func newRootCmd(a *app) *cobra.Command {
	rootCmd := groupCmd(&cobra.Command{
		Use:   "parble",
		Short: "Upload documents to Parble and retrieve their processing results",
		Long: `parble is a CLI for the Parble document processing API.

Files are uploaded, classified into documents and their header fields
extracted. Results can be printed as JSON or YAML, exported to a
spreadsheet, or downloaded as PDF.

Connection settings come from flags, a parble.yaml config file or the
PARBLE_URL, PARBLE_API_KEY and PARBLE_DEFAULT_TIMEOUT environment variables.`,
		Version:           fmt.Sprintf("%s (built %s)", version, buildTime),
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.initialize,
	})

	rootCmd.SetOut(a.stdout)
	rootCmd.SetErr(a.stderr)
	rootCmd.SetVersionTemplate("parble version {{.Version}}\n")
	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &usageError{err: err}
	})

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default is ./parble.yaml)")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")
	flags.StringVar(&a.url, "url", "", "API base URL (overrides PARBLE_URL)")
	flags.StringVar(&a.apiKey, "api-key", "", "API key (overrides PARBLE_API_KEY)")
	flags.DurationVar(&a.timeout, "timeout", 0, "default request timeout (overrides PARBLE_DEFAULT_TIMEOUT)")

	rootCmd.AddCommand(newFileCmd(a))
	rootCmd.AddCommand(newUpdateCmd(a))

	return rootCmd
}

// Execute runs the CLI and exits with its status code
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := execute(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// execute runs the CLI with args and returns the process exit code
func execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	a := &app{
		stdout: stdout,
		stderr: stderr,
		logger: setupLogger(config.LoggingConfig{Level: "info", Format: "console"}, stderr, false),
	}

	rootCmd := newRootCmd(a)
	rootCmd.SetArgs(args)

	err := rootCmd.ExecuteContext(ctx)
	if err == nil {
		return exitOK
	}

	var usageErr *usageError
	switch {
	case errors.As(err, &usageErr):
		fmt.Fprintf(stderr, "Error: %v\n", err)
		fmt.Fprintf(stderr, "Run '%s --help' for usage.\n", commandPath(rootCmd, args))
		return exitUsage
	case errors.Is(err, parble.ErrParble):
		a.logger.Error().Err(err).Msg(errorCategory(err))
		return exitError
	default:
		a.logger.Error().Err(err).Msg("command failed")
		return exitError
	}
}

// commandPath returns the path of the command args resolve to
func commandPath(root *cobra.Command, args []string) string {
	if c, _, err := root.Find(args); err == nil {
		return c.CommandPath()
	}
	return root.CommandPath()
}

// errorCategory names the kind of a parble error for the final log line
func errorCategory(err error) string {
	switch {
	case errors.Is(err, parble.ErrConfiguration):
		return "configuration error"
	case errors.Is(err, parble.ErrNotFound):
		return "file not found"
	case errors.Is(err, parble.ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, parble.ErrInvalidCall):
		return "invalid call"
	case errors.Is(err, parble.ErrCallTimeout):
		return "timed out"
	case errors.Is(err, parble.ErrInvalidPayload):
		return "invalid payload"
	default:
		return "api call failed"
	}
}

// initialize loads the configuration and sets up the logger
func (a *app) initialize(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(a.cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	a.cfg = cfg

	a.logger = setupLogger(cfg.Logging, a.stderr, a.verbose)
	a.logger.Debug().
		Str("command", cmd.CommandPath()).
		Str("version", version).
		Msg("Starting")

	return nil
}

// newSDK creates the SDK from flags, falling back to the config file and
// the environment for anything not given on the command line.
func (a *app) newSDK() (*parble.SDK, error) {
	url, apiKey, timeout := a.url, a.apiKey, a.cfg.DefaultTimeout
	if url == "" {
		url = a.cfg.URL
	}
	if apiKey == "" {
		apiKey = a.cfg.APIKey
	}
	if a.timeout != 0 {
		timeout = strconv.FormatFloat(a.timeout.Seconds(), 'f', -1, 64)
	}

	settings, err := parble.ParseSettings(url, apiKey, timeout)
	if err != nil {
		return nil, err
	}

	a.logger.Debug().
		Str("url", settings.URL).
		Stringer("api_key", settings.APIKey).
		Dur("timeout", settings.DefaultTimeout).
		Msg("Loaded settings")

	return parble.NewSDK(settings, a.logger), nil
}

// setupLogger configures the zerolog logger
func setupLogger(cfg config.LoggingConfig, out io.Writer, verbose bool) zerolog.Logger {
	// Set log level
	level := zerolog.InfoLevel
	switch strings.ToLower(cfg.Level) {
	case "trace":
		level = zerolog.TraceLevel
	case "debug":
		level = zerolog.DebugLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}
	if verbose && level > zerolog.DebugLevel {
		level = zerolog.DebugLevel
	}

	// Configure output format
	if cfg.Format == "json" {
		return zerolog.New(out).Level(level).With().Timestamp().Logger()
	}

	// Console format
	output := zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: time.RFC3339,
		NoColor:    !cfg.Color,
	}

	return zerolog.New(output).Level(level).With().Timestamp().Logger()
}
