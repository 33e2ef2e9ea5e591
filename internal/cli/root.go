// Package cli provides the command-line interface for canvas-agent.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/PabloGalante/canvas-agent/internal/bootstrap"
	"github.com/PabloGalante/canvas-agent/internal/config"
	"github.com/PabloGalante/canvas-agent/internal/observability"
)

var (
	// Version is set at build time.
	Version = "0.1.0"

	// Global flags
	verbose bool
	mockLLM bool

	// Global config and wired application
	cfg *config.Config
	app *bootstrap.App
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "canvas",
	Short: "Chat with Gemini, draft canvases and run grounded searches",
	Long: `canvas talks to Gemini the way the canvas web app does: prompts are
routed to a text reply, a canvas artifact (HTML visualization or Markdown
document) or a Google-grounded search summary.

Use "canvas serve" to run the HTTP and WebSocket API.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}

		if mockLLM {
			_ = os.Setenv("CANVAS_USE_MOCK_LLM", "1")
		}

		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		setupLogging(cmd)

		app, err = bootstrap.New(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if app != nil {
			if err := app.Close(); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to close app: %v\n", err)
			}
		}
	},
}

// setupLogging sends logs to stderr so command output stays clean. The
// server logs JSON to stdout like any other service.
func setupLogging(cmd *cobra.Command) {
	if cmd.Name() == serveCmd.Name() {
		observability.Setup(cfg.LogLevel, cfg.LogFile)
		return
	}

	level := slog.LevelWarn
	if verbose {
		level = cfg.LogLevel
	}
	writers := []io.Writer{os.Stderr}
	if cfg.LogFile != "" {
		if f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644); err == nil {
			writers = append(writers, f)
		}
	}
	observability.SetupWithWriters(level, writers...)
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&mockLLM, "mock", false, "use the offline mock LLM")

	// Add subcommands
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(canvasCmd)
}
