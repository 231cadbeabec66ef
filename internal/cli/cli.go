// Package cli implements the dumap command-line interface.
//
// The CLI resolves configuration, builds the shared logger, and dispatches
// to the interactive browser or the headless exporter. It is built using
// cobra and supports verbose logging via the charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - scan: Browse a directory's disk usage as an interactive treemap
//   - export: Render a directory's disk usage to an SVG file
//   - completion: Generate shell completion scripts
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context so the pipeline stages can report their
// progress without holding a reference to the CLI.
package cli

import (
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/dumap/dumap/internal/config"
	"github.com/dumap/dumap/pkg/buildinfo"
	"github.com/dumap/dumap/pkg/errors"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "dumap"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	cfg *config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
//
// The persistent --verbose flag raises the log level to debug and --config
// points at an alternate settings file. Both are resolved in the persistent
// pre-run, so every subcommand sees a loaded config and a context logger.
func (c *CLI) RootCommand() *cobra.Command {
	var (
		verbose    bool
		configPath string
	)

	root := &cobra.Command{
		Use:          appName,
		Short:        "Dumap shows where your disk space went",
		Long:         `Dumap scans a directory tree and presents its disk usage as a squarified treemap, either interactively in the terminal or exported as an SVG image.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := LogInfo
			if verbose {
				level = LogDebug
			}
			c.SetLogLevel(level)

			cfg, err := c.loadConfig(configPath)
			if err != nil {
				return err
			}
			c.cfg = cfg

			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to the settings file (default "+config.Path()+")")

	root.AddCommand(c.scanCommand())
	root.AddCommand(c.exportCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig resolves the settings file. Without an explicit path the
// standard location is used and created on first run; an explicit path must
// already exist.
func (c *CLI) loadConfig(path string) (*config.Config, error) {
	if path == "" {
		resolved, err := config.EnsureExists()
		if err != nil {
			return nil, err
		}
		return config.Load(resolved)
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, errors.New(errors.ErrCodeNotFound, "Config file does not exist: %s", path)
	}
	return config.Load(path)
}

// activeConfig returns the loaded configuration, falling back to defaults
// when a command is exercised without the root's pre-run.
func (c *CLI) activeConfig() *config.Config {
	if c.cfg == nil {
		return config.Default()
	}
	return c.cfg
}

// rootArg resolves the optional positional directory argument to an
// absolute path, defaulting to the current directory.
func rootArg(args []string) string {
	root := "."
	if len(args) > 0 && args[0] != "" {
		root = args[0]
	}
	if abs, err := filepath.Abs(root); err == nil {
		return abs
	}
	return root
}
