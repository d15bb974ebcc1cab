package extract

import "strings"

// BuildInstruction composes the fixed instruction sent with every page image.
// It enumerates the required field names and types precisely; the declared
// response schema enforces the same shape on the service side, so the model
// does constrained decoding rather than free-form generation.
func BuildInstruction() string {
	parts := []string{
		"You are reading a single photographed or scanned page of handwritten notes.",
		"Return ONLY JSON matching the provided schema; no prose, no markdown, no code fences.",
		"Extract every item/price pair into 'items', in the order written:",
		"'item' is the item or service name as written;",
		"'rate' is its amount as a plain decimal string with no currency symbols and no thousands separators.",
		"Free text written above the item list goes into 'headerText'; free text below or beside it goes into 'footerText'.",
		"Use empty strings for text that is not present. Never output null.",
	}
	return strings.Join(parts, " ")
}
