package imaging

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/kelechi-madu/ratesheet/constants"
)

// Payload is an image ready to be attached to an extraction request.
type Payload struct {
	Data      []byte
	MediaType string
}

// LoadPayload reads an image file and derives its declared media type from
// the extension, sniffing the content as a fallback. Presence is the only
// hard requirement; whether the service can read the format is its call.
func LoadPayload(path string) (Payload, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Payload{}, fmt.Errorf("read image: %w", err)
	}
	if len(b) == 0 {
		return Payload{}, fmt.Errorf("image file %s is empty", path)
	}

	ext := constants.NormalizeExt(filepath.Ext(path))
	if _, ok := constants.AllowedExtensions[ext]; !ok {
		return Payload{}, fmt.Errorf("unsupported image extension %q (want one of jpg, jpeg, png, webp, heic)", ext)
	}

	mt := constants.MediaTypes[ext]
	if mt == "" {
		mt = http.DetectContentType(b)
	}
	return Payload{Data: b, MediaType: mt}, nil
}

// DataURL renders the payload as a base64 data URL for hosts that embed
// images inline.
func (p Payload) DataURL() string {
	return "data:" + p.MediaType + ";base64," + base64.StdEncoding.EncodeToString(p.Data)
}
