package render

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kelechi-madu/ratesheet/internal/extract"
)

// FontFamily is the fixed set of typefaces the renderer offers.
type FontFamily string

const (
	FontSans  FontFamily = "sans"
	FontSerif FontFamily = "serif"
	FontMono  FontFamily = "mono"
)

// ParseFontFamily maps a config string onto the enum.
func ParseFontFamily(s string) (FontFamily, error) {
	switch FontFamily(strings.ToLower(strings.TrimSpace(s))) {
	case FontSans:
		return FontSans, nil
	case FontSerif:
		return FontSerif, nil
	case FontMono:
		return FontMono, nil
	default:
		return "", fmt.Errorf("unknown font family %q (want sans, serif or mono)", s)
	}
}

// coreName maps the enum onto the PDF core font carrying it.
func (f FontFamily) coreName() string {
	switch f {
	case FontSerif:
		return "Times"
	case FontMono:
		return "Courier"
	default:
		return "Helvetica"
	}
}

// RGB is a 0..255 text color.
type RGB struct {
	R, G, B int
}

// ParseHexColor parses "#rrggbb" into an RGB.
func ParseHexColor(s string) (RGB, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 {
		return RGB{}, fmt.Errorf("color %q: want #rrggbb", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return RGB{}, fmt.Errorf("color %q: %w", s, err)
	}
	return RGB{R: int(v >> 16 & 0xff), G: int(v >> 8 & 0xff), B: int(v & 0xff)}, nil
}

// Options are the formatting knobs for a rendered document.
type Options struct {
	Title          string
	TextColor      RGB
	Font           FontFamily
	Bold           bool
	Italic         bool
	CurrencySymbol string // prefixed to rates in the table; default "$"
}

func (o Options) style() string {
	var s string
	if o.Bold {
		s += "B"
	}
	if o.Italic {
		s += "I"
	}
	return s
}

// Document is the ordered content a conversion produces: optional header
// text, optional item table, optional footer text.
type Document struct {
	HeaderText string
	Items      []extract.LineItem
	FooterText string
}

// FromNoteContent adapts extraction output into a renderable document.
func FromNoteContent(c extract.NoteContent) Document {
	return Document{
		HeaderText: c.HeaderText,
		Items:      c.Items,
		FooterText: c.FooterText,
	}
}

// Empty reports whether there is nothing to lay out.
func (d Document) Empty() bool {
	return d.HeaderText == "" && d.FooterText == "" && len(d.Items) == 0
}
