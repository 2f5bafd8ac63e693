package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfig(t *testing.T) {
	content := `PORT=4000
ENVIRONMENT=development
VERSION=1.0.0
ALLOWED_ORIGINS=http://localhost:3000, https://example.com
IMAGE_WORKERS=4
`

	path := filepath.Join(t.TempDir(), "test.env")
	err := os.WriteFile(path, []byte(content), 0o644)
	assert.NoError(t, err)

	cfg, err := loadConfig(path)
	assert.NoError(t, err)
	assert.Equal(t, "4000", cfg.Port)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "1.0.0", cfg.Version)
	assert.Equal(t, 4, cfg.ImageWorkers)
	assert.False(t, cfg.isProduction())
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := loadConfig(filepath.Join(t.TempDir(), "absent.env"))
	assert.Error(t, err)
}

func TestOrigins(t *testing.T) {
	testCases := []struct {
		name     string
		raw      string
		expected []string
	}{
		{
			name:     "single origin",
			raw:      "http://localhost:3000",
			expected: []string{"http://localhost:3000"},
		},
		{
			name:     "multiple origins with spaces",
			raw:      "http://localhost:3000, https://example.com",
			expected: []string{"http://localhost:3000", "https://example.com"},
		},
		{
			name:     "empty list",
			raw:      "",
			expected: nil,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := &Config{AllowedOrigins: tc.raw}
			assert.Equal(t, tc.expected, cfg.origins())
		})
	}
}
