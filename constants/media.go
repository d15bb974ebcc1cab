package constants

import "strings"

// AllowedExtensions holds the image extensions accepted for conversion.
// The extraction service decides what it can actually read; this list only
// gates obviously wrong uploads.
var AllowedExtensions = map[string]struct{}{
	"jpg":  {},
	"jpeg": {},
	"png":  {},
	"webp": {},
	"heic": {},
}

// MediaTypes maps a normalized extension to the MIME type declared on the
// extraction request.
var MediaTypes = map[string]string{
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"webp": "image/webp",
	"heic": "image/heic",
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}
