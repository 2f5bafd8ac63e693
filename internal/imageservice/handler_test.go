package imageservice

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestService() *ImageService {
	return NewImageService(2, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func encodeTestJPEG(t *testing.T, width, height int) []byte {
	t.Helper()

	var buf bytes.Buffer
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatal(err)
	}

	return buf.Bytes()
}

func encodeTestPNG(t *testing.T, width, height int) []byte {
	t.Helper()

	var buf bytes.Buffer
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}

	return buf.Bytes()
}

func decodeDataURL(t *testing.T, dataURL string) (string, []byte) {
	t.Helper()

	rest, ok := strings.CutPrefix(dataURL, "data:")
	if !ok {
		t.Fatalf("data URL missing prefix: %q", dataURL)
	}

	mimeType, payload, ok := strings.Cut(rest, ";base64,")
	if !ok {
		t.Fatalf("data URL missing base64 marker: %q", dataURL)
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		t.Fatal(err)
	}

	return mimeType, data
}

func TestIngestRejectsNonImage(t *testing.T) {
	s := newTestService()

	_, err := s.Ingest(context.Background(), []byte("hello"), "text/plain", "notes.txt")
	assert.ErrorIs(t, err, ErrNotAnImage)
}

func TestIngestRejectsOversizedPayload(t *testing.T) {
	s := newTestService()

	data := make([]byte, MaxImageBytes+1)
	_, err := s.Ingest(context.Background(), data, "image/jpeg", "huge.jpg")
	assert.ErrorIs(t, err, ErrTooLarge)
}

func TestIngestResizesLargeJPEG(t *testing.T) {
	s := newTestService()

	img, err := s.Ingest(context.Background(), encodeTestJPEG(t, 2400, 1600), "image/jpeg", "photo.jpg")
	assert.NoError(t, err)
	assert.Equal(t, "photo.jpg", img.Filename)

	mimeType, data := decodeDataURL(t, img.DataURL)
	assert.Equal(t, "image/jpeg", mimeType)

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	assert.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	assert.LessOrEqual(t, cfg.Width, MaxDimension)
	assert.LessOrEqual(t, cfg.Height, MaxDimension)

	// aspect ratio survives the downscale
	assert.Equal(t, 1200, cfg.Width)
	assert.Equal(t, 800, cfg.Height)
}

func TestIngestNeverUpscales(t *testing.T) {
	s := newTestService()

	img, err := s.Ingest(context.Background(), encodeTestJPEG(t, 300, 200), "image/jpeg", "small.jpg")
	assert.NoError(t, err)

	_, data := decodeDataURL(t, img.DataURL)

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	assert.NoError(t, err)
	assert.Equal(t, 300, cfg.Width)
	assert.Equal(t, 200, cfg.Height)
}

func TestIngestPNGStaysPNG(t *testing.T) {
	s := newTestService()

	img, err := s.Ingest(context.Background(), encodeTestPNG(t, 1500, 900), "image/png", "chart.png")
	assert.NoError(t, err)

	mimeType, data := decodeDataURL(t, img.DataURL)
	assert.Equal(t, "image/png", mimeType)

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	assert.NoError(t, err)
	assert.Equal(t, "png", format)
	assert.Equal(t, 1200, cfg.Width)
	assert.Equal(t, 720, cfg.Height)
}

func TestIngestNormalizesOtherFormatsToJPEG(t *testing.T) {
	s := newTestService()

	// declared as gif, payload rendered as a decodable image
	img, err := s.Ingest(context.Background(), encodeTestPNG(t, 100, 100), "image/gif", "anim.gif")
	assert.NoError(t, err)

	mimeType, data := decodeDataURL(t, img.DataURL)
	assert.Equal(t, "image/jpeg", mimeType)

	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	assert.NoError(t, err)
	assert.Equal(t, "jpeg", format)
}

func TestIngestFallsBackOnCorruptImage(t *testing.T) {
	s := newTestService()

	original := []byte("definitely not an image payload")

	img, err := s.Ingest(context.Background(), original, "image/jpeg", "broken.jpg")
	assert.NoError(t, err)

	mimeType, data := decodeDataURL(t, img.DataURL)
	assert.Equal(t, "image/jpeg", mimeType)
	assert.Equal(t, original, data)
}

func TestIngestHonorsCancelledContext(t *testing.T) {
	s := newTestService()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Ingest(ctx, encodeTestJPEG(t, 10, 10), "image/jpeg", "late.jpg")
	assert.ErrorIs(t, err, context.Canceled)
}
