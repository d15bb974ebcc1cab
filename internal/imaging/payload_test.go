package imaging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestLoadPayload(t *testing.T) {
	data := []byte("\x89PNG\r\n\x1a\nfakepixels")
	path := writeTemp(t, "page.png", data)

	p, err := LoadPayload(path)
	require.NoError(t, err)
	assert.Equal(t, data, p.Data)
	assert.Equal(t, "image/png", p.MediaType)
}

func TestLoadPayloadExtensionCase(t *testing.T) {
	p, err := LoadPayload(writeTemp(t, "page.JPG", []byte("notes")))
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", p.MediaType)
}

func TestLoadPayloadEmptyFile(t *testing.T) {
	_, err := LoadPayload(writeTemp(t, "page.png", nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty")
}

func TestLoadPayloadUnsupportedExtension(t *testing.T) {
	_, err := LoadPayload(writeTemp(t, "page.gif", []byte("gif")))
	require.Error(t, err)
}

func TestLoadPayloadMissingFile(t *testing.T) {
	_, err := LoadPayload(filepath.Join(t.TempDir(), "nope.png"))
	require.Error(t, err)
}

func TestDataURL(t *testing.T) {
	p := Payload{Data: []byte{1, 2, 3}, MediaType: "image/png"}
	u := p.DataURL()
	assert.True(t, strings.HasPrefix(u, "data:image/png;base64,"))
}
