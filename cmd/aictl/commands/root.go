// Package commands implements the CLI commands for aictl.
package commands

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	buildinfo "github.com/jdmartin/aictl/cmd"
	"github.com/jdmartin/aictl/internal/errors"
	"github.com/jdmartin/aictl/internal/logging"
	"github.com/jdmartin/aictl/internal/paths"
)

// verbosity holds the count of -v flags.
var verbosity int

// quiet holds the value of the -q/--quiet flag.
var quiet bool

// logFormat holds the value of the --log-format flag.
var logFormat string

func init() {
	cobra.OnInitialize(initSettings)

	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v",
		"increase verbosity level (e.g., -v, -vv)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false,
		"suppress non-error output")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "",
		"log format: text, json")

	rootCmd.Version = buildinfo.Version
	rootCmd.SetVersionTemplate("aictl version {{.Version}} (" +
		buildinfo.Commit + ", " + buildinfo.Date + ")\n")

	// Silence errors and usage so we can control error output
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
}

// initSettings loads aictl's own settings file, as opposed to the managed
// configuration repository. Settings tune the tool (log format, default
// client subset); the repository describes what the tool manages.
func initSettings() {
	viper.SetConfigName("settings")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(paths.SettingsDir())

	viper.SetEnvPrefix("AICTL")
	viper.AutomaticEnv()

	viper.SetDefault("log_format", string(logging.FormatText))
	viper.SetDefault("default_clients", []string{})

	// A missing settings file is the common case.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			slog.Warn("ignoring unreadable settings file", "error", err)
		}
	}
}

var rootCmd = &cobra.Command{
	Use:   "aictl",
	Short: "Manage AI coding assistant configurations from one place",
	Long: `aictl resolves a single source of truth for AI coding assistant
configurations and keeps every installed client in step with it.

Global configuration lives in ~/.aiconfig; a project can layer its own
.aiconfig.yaml on top. aictl merges the two, discovers which clients
(Claude Code, Codex CLI, Gemini CLI) are installed, diagnoses drift
between the desired and actual state, and synchronizes agent
definitions into each client's native format.`,
	Example: `  # Check configuration and client health
  aictl doctor

  # Show which clients are installed
  aictl status

  # Push agent definitions to every installed client
  aictl sync

  # Sync a single client, picking agents interactively
  aictl sync --client claude-code --pick`,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		return setupLogging(cmd)
	},
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
}

// setupLogging configures the default logger based on verbosity flags.
func setupLogging(cmd *cobra.Command) error {
	if quiet && verbosity > 0 {
		return errors.NewValidationError(
			errors.Errorf("cannot use --quiet and --verbose together"))
	}

	format := logFormat
	if format == "" {
		format = viper.GetString("log_format")
	}

	logger := logging.New(logging.Config{
		Level:  levelFromVerbosity(verbosity, quiet),
		Format: logging.ParseFormat(format),
		Output: cmd.ErrOrStderr(),
	})
	slog.SetDefault(logger)

	return nil
}

// levelFromVerbosity maps -v counts to slog levels. The AICTL_DEBUG
// environment variable forces debug logging without flags.
func levelFromVerbosity(v int, quiet bool) slog.Level {
	if quiet {
		return slog.LevelError
	}
	if os.Getenv("AICTL_DEBUG") != "" {
		return slog.LevelDebug
	}
	switch v {
	case 0:
		return slog.LevelWarn
	case 1:
		return slog.LevelInfo
	default:
		return slog.LevelDebug
	}
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
