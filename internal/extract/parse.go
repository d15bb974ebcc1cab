package extract

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
)

var reRate = regexp.MustCompile(`^\d+(\.\d{1,2})?$`)

// currency glyphs the model sometimes leaves on rates despite instructions.
var rateNoise = strings.NewReplacer(",", "", "$", "", "€", "", "£", "", "₹", "", " ", "")

// ParseNoteContent turns the service's text payload into a normalized
// NoteContent. It is lenient about the shapes models actually produce:
//   - legacy single-field variant: otherText is accepted as footerText
//   - null/missing items -> empty array; null/missing text -> empty string
//   - numeric rates -> decimal strings; currency glyphs and separators removed
//   - unknown keys dropped
//
// The cleaned document is re-validated against the response schema before
// decoding, so the result is either fully normalized or a classified failure.
func ParseNoteContent(raw []byte, logger *slog.Logger) (NoteContent, []byte, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var top any
	if err := json.Unmarshal(raw, &top); err != nil {
		return NoteContent{}, nil, fmt.Errorf("%w: payload is not valid JSON: %v", ErrMalformedResponse, err)
	}
	m, ok := top.(map[string]any)
	if !ok {
		return NoteContent{}, nil, fmt.Errorf("%w: top-level JSON is %T, expected an object", ErrMalformedResponse, top)
	}

	cleaned, dropped := normalizeDocument(m)
	if len(dropped) > 0 {
		logger.Warn("extract.normalize", "dropped", dropped)
	}

	b, err := json.Marshal(cleaned)
	if err != nil {
		return NoteContent{}, nil, fmt.Errorf("encode normalized content: %w", err)
	}
	if err := ValidateJSONAgainstSchema(BuildNoteJSONSchema(), b); err != nil {
		return NoteContent{}, b, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	var out NoteContent
	if err := json.Unmarshal(b, &out); err != nil {
		return NoteContent{}, b, fmt.Errorf("%w: decode normalized content: %v", ErrMalformedResponse, err)
	}
	if out.Items == nil {
		out.Items = []LineItem{}
	}
	return out, b, nil
}

func normalizeDocument(m map[string]any) (map[string]any, []string) {
	var dropped []string

	// Single-field variant compatibility: otherText feeds footerText.
	if v, ok := m["otherText"]; ok {
		if _, exists := m["footerText"]; !exists {
			m["footerText"] = v
		}
		delete(m, "otherText")
	}

	items := make([]map[string]any, 0)
	switch raw := m["items"].(type) {
	case nil:
		// null or missing -> empty list
	case []any:
		for i, entry := range raw {
			em, ok := entry.(map[string]any)
			if !ok {
				dropped = append(dropped, fmt.Sprintf("items[%d](shape)", i))
				continue
			}
			name, _ := em["item"].(string)
			if name == "" {
				// some responses use "name" for the item column
				name, _ = em["name"].(string)
			}
			name = strings.TrimSpace(name)
			if name == "" {
				dropped = append(dropped, fmt.Sprintf("items[%d](no item)", i))
				continue
			}
			rate, ok := normalizeRate(em["rate"])
			if !ok {
				dropped = append(dropped, fmt.Sprintf("items[%d](rate)", i))
				continue
			}
			items = append(items, map[string]any{"item": name, "rate": rate})
		}
	default:
		dropped = append(dropped, "items(type)")
	}

	out := map[string]any{
		"items":      items,
		"headerText": normalizeText(m, "headerText", &dropped),
		"footerText": normalizeText(m, "footerText", &dropped),
	}

	for k := range m {
		switch k {
		case "items", "headerText", "footerText":
		default:
			dropped = append(dropped, k+"(unknown)")
		}
	}
	return out, dropped
}

func normalizeText(m map[string]any, key string, dropped *[]string) string {
	switch v := m[key].(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	default:
		*dropped = append(*dropped, key+"(type)")
		return ""
	}
}

func normalizeRate(v any) (string, bool) {
	switch t := v.(type) {
	case float64:
		return formatRate(t), true
	case string:
		s := rateNoise.Replace(strings.TrimSpace(t))
		if s == "" || strings.EqualFold(s, "null") {
			return "", false
		}
		if reRate.MatchString(s) {
			return s, true
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil && f >= 0 {
			return formatRate(f), true
		}
		return "", false
	default:
		return "", false
	}
}

func formatRate(f float64) string {
	if f < 0 {
		f = -f
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if reRate.MatchString(s) {
		return s
	}
	return strconv.FormatFloat(f, 'f', 2, 64)
}
