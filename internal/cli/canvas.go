package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/PabloGalante/canvas-agent/internal/app/canvas"
	"github.com/PabloGalante/canvas-agent/internal/domain"
)

var (
	canvasMode   string
	canvasOutDir string
)

var canvasCmd = &cobra.Command{
	Use:   "canvas <prompt>",
	Short: "Generate a canvas artifact and save it",
	Long: `Generate a canvas artifact without routing and save it as
canvas_export.html or canvas_export.md.

Without --mode the request is classified as a visualization or a document.

Examples:
  canvas canvas "A dashboard of global CO2 emissions" --mode visualization
  canvas canvas "Lecture notes on Maxwell's equations" -o notes`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCanvas,
}

func init() {
	canvasCmd.Flags().StringVar(&canvasMode, "mode", "", "visualization or document (default: classify)")
	canvasCmd.Flags().StringVarP(&canvasOutDir, "out", "o", ".", "output directory")
}

func runCanvas(cmd *cobra.Command, args []string) error {
	profile, err := canvas.ParseProfile(canvasMode)
	if err != nil {
		return err
	}

	var fragments int
	artifact, err := app.Canvas.Generate(cmd.Context(), strings.Join(args, " "), profile, func(domain.CanvasArtifact) {
		fragments++
		if verbose {
			fmt.Fprint(os.Stderr, ".")
		}
	})
	if verbose && fragments > 0 {
		fmt.Fprintln(os.Stderr)
	}
	if err != nil {
		return fmt.Errorf("generate canvas: %w", err)
	}

	path, err := writeArtifact(canvasOutDir, artifact)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Saved %s (%s)\n", path, artifact.Kind)
	return nil
}
