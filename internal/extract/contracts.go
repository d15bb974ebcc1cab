package extract

import "context"

// LineItem is one extracted item/rate pair. Rate is a plain decimal string
// without currency symbols or thousands separators.
type LineItem struct {
	Name string `json:"item"`
	Rate string `json:"rate"`
}

// NoteContent is the normalized shape we want from the extraction service.
// After normalization Items is never nil and the text fields are empty
// strings when absent.
type NoteContent struct {
	Items      []LineItem `json:"items"`
	HeaderText string     `json:"headerText"`
	FooterText string     `json:"footerText"`
}

// Request carries one page image to the extraction service.
type Request struct {
	Image      []byte
	MediaType  string // declared as-is; the service decides what it accepts
	Credential string
}

// Extractor is the interface the conversion flow depends on.
type Extractor interface {
	// Extract returns a fully-normalized NoteContent plus the cleaned raw
	// JSON, or a classified failure — never a partially-typed result.
	Extract(ctx context.Context, req Request) (NoteContent, []byte, error)
}
