package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/PabloGalante/canvas-agent/internal/app/conversation"
	"github.com/PabloGalante/canvas-agent/internal/domain"
)

var (
	askImage  string
	askOutDir string
)

var askCmd = &cobra.Command{
	Use:   "ask <prompt>",
	Short: "Send one prompt through the router",
	Long: `Send one prompt through the router, exactly like a chat message.

The reply may be text, a grounded search summary or a canvas artifact,
which is saved to the output directory.

Examples:
  canvas ask "What is a Fourier transform?"
  canvas ask "Draw a bar chart of the planets by mass" -o out
  canvas ask "What is in this picture?" --image photo.png`,
	Args: cobra.ArbitraryArgs,
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVar(&askImage, "image", "", "attach an image file")
	askCmd.Flags().StringVarP(&askOutDir, "out", "o", ".", "directory for canvas artifacts")
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	prompt := strings.Join(args, " ")

	in := conversation.SendMessageInput{
		Text: prompt,
		OnEvent: func(e conversation.Event) {
			if e.Type == conversation.EventStateChanged && e.State != domain.StateIdle && verbose {
				fmt.Fprintf(os.Stderr, "[%s]\n", e.State)
			}
		},
	}

	if askImage != "" {
		img, err := loadImage(askImage)
		if err != nil {
			return err
		}
		in.Image = img
	}

	session, err := app.Conversation.StartSession(ctx, conversation.StartSessionInput{Title: "cli"})
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	in.SessionID = session.Session.ID

	out, err := app.Conversation.SendMessage(ctx, in)
	if err != nil {
		return err
	}
	return printMessage(cmd.OutOrStdout(), out.Reply, askOutDir)
}
