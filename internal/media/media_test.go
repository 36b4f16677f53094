package media

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, data, 0o600))
	return p
}

func TestLoadImage(t *testing.T) {
	p := writeFile(t, "letter.png", pngHeader)
	f, err := Load(p, Image, 1024)
	require.NoError(t, err)
	assert.Equal(t, "image/png", f.ContentType)
	assert.Equal(t, "letter.png", f.Name)
	assert.Equal(t, pngHeader, f.Data)
}

func TestLoadRejects(t *testing.T) {
	tests := []struct {
		name string
		path func(t *testing.T) string
		kind Kind
		max  int64
	}{
		{"missing path", func(t *testing.T) string { return "" }, Image, 1024},
		{"not found", func(t *testing.T) string { return filepath.Join(t.TempDir(), "nope.png") }, Image, 1024},
		{"empty", func(t *testing.T) string { return writeFile(t, "empty.png", nil) }, Image, 1024},
		{"too large", func(t *testing.T) string { return writeFile(t, "big.png", pngHeader) }, Image, 8},
		{"wrong type", func(t *testing.T) string { return writeFile(t, "letter.png", pngHeader) }, Audio, 1024},
		{"directory", func(t *testing.T) string { return t.TempDir() }, Image, 1024},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.path(t), tt.kind, tt.max)
			require.Error(t, err)
			var verr *ValidationError
			assert.ErrorAs(t, err, &verr)
		})
	}
}

func TestLoadMissingIsErrMissing(t *testing.T) {
	_, err := Load("  ", Audio, 10)
	assert.ErrorIs(t, err, ErrMissing)
}

func TestAccepts(t *testing.T) {
	assert.True(t, Accepts(Image, "image/jpeg"))
	assert.False(t, Accepts(Image, "audio/mpeg"))
	assert.True(t, Accepts(Audio, "audio/wave"))
	assert.True(t, Accepts(Audio, "video/webm"))
	assert.True(t, Accepts(Audio, "application/ogg"))
	assert.False(t, Accepts(Audio, "image/png"))
}

func TestDetectTypeFallsBackToExtension(t *testing.T) {
	ct := DetectType("clip.mp3", []byte("no magic here at all"))
	assert.Equal(t, "audio/mpeg", ct)
}
