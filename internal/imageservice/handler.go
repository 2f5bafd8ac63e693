package imageservice

import (
	"bytes"
	"context"
	"encoding/base64"
	"image/png"
	"log/slog"
	"strings"

	"github.com/disintegration/imaging"
)

func NewImageService(workers int, logger *slog.Logger) *ImageService {
	if workers < 1 {
		workers = 1
	}

	return &ImageService{
		sem:    make(chan struct{}, workers),
		logger: logger,
	}
}

// Ingest validates, transcodes and inline-encodes a single uploaded image.
// Validation failures reject the upload; transcode failures do not — the
// original bytes are embedded unmodified instead, so an upload that passed
// validation is never dropped.
func (s *ImageService) Ingest(ctx context.Context, data []byte, mimeType, filename string) (*InlineImage, error) {
	if !strings.HasPrefix(mimeType, "image/") {
		return nil, ErrNotAnImage
	}

	if len(data) > MaxImageBytes {
		return nil, ErrTooLarge
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	select {
	case s.sem <- struct{}{}:
		defer func() { <-s.sem }()
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	encoded, encodedMime, err := transcode(data, mimeType)
	if err != nil {
		s.logger.Warn("image transcode failed, embedding original bytes",
			slog.String("filename", filename),
			slog.String("mime_type", mimeType),
			slog.String("error", err.Error()))
		encoded, encodedMime = data, mimeType
	}

	return &InlineImage{
		DataURL:  encodeDataURL(encodedMime, encoded),
		Filename: filename,
	}, nil
}

// transcode decodes the image, scales it down to fit MaxDimension on the
// longest side and re-encodes. PNG inputs stay PNG; every other raster type
// is normalized to JPEG.
func transcode(data []byte, mimeType string) ([]byte, string, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, "", err
	}

	bounds := img.Bounds()
	if bounds.Dx() > MaxDimension || bounds.Dy() > MaxDimension {
		img = imaging.Fit(img, MaxDimension, MaxDimension, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if strings.Contains(mimeType, "png") {
		if err := imaging.Encode(&buf, img, imaging.PNG, imaging.PNGCompressionLevel(png.BestCompression)); err != nil {
			return nil, "", err
		}
		return buf.Bytes(), "image/png", nil
	}

	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(JPEGQuality)); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), "image/jpeg", nil
}

func encodeDataURL(mimeType string, data []byte) string {
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}
