package cli

import (
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/PabloGalante/canvas-agent/internal/domain"
)

// loadImage reads an image file and sniffs its media type.
func loadImage(path string) (*domain.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	mime := http.DetectContentType(data)
	if !strings.HasPrefix(mime, "image/") {
		return nil, fmt.Errorf("%s is not an image (%s)", path, mime)
	}
	return &domain.Image{Data: data, MimeType: mime}, nil
}
