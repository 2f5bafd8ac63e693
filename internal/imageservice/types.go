package imageservice

import (
	"errors"
	"log/slog"
)

const (
	// MaxImageBytes is the upload ceiling checked before any processing.
	MaxImageBytes = 5 << 20

	// MaxDimension caps the longest side of a stored image. Smaller images
	// are never upscaled.
	MaxDimension = 1200

	JPEGQuality = 80
)

var (
	ErrNotAnImage = errors.New("only image files are allowed")
	ErrTooLarge   = errors.New("image exceeds the maximum allowed size")
)

// ImageService transcodes uploads into inline data URLs. Transcoding is
// CPU-bound, so it runs through a bounded worker gate to keep concurrent
// uploads from monopolizing the process.
type ImageService struct {
	sem    chan struct{}
	logger *slog.Logger
}

// InlineImage is a self-describing base64 payload stored directly on the
// post entity, plus the original filename for display.
type InlineImage struct {
	DataURL  string `json:"data_url"`
	Filename string `json:"filename"`
}
