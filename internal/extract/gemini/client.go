package gemini

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kelechi-madu/ratesheet/internal/extract"
)

var _ extract.Extractor = (*Client)(nil)

// generateResponse mirrors the minimal slice of the generateContent reply we
// consume.
type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

func (r generateResponse) text() string {
	var b strings.Builder
	for _, c := range r.Candidates {
		for _, p := range c.Content.Parts {
			b.WriteString(p.Text)
		}
	}
	return b.String()
}

// apiError mirrors the google.rpc error envelope on non-2xx replies.
type apiError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
		Details []struct {
			Reason string `json:"reason"`
		} `json:"details"`
	} `json:"error"`
}

// Extract implements extract.Extractor against the Gemini generateContent
// endpoint. One attempt per call; transient failures propagate as
// *extract.UpstreamError and are never retried here.
func (c *Client) Extract(ctx context.Context, req extract.Request) (extract.NoteContent, []byte, error) {
	rid := uuid.New().String()
	start := time.Now()

	if strings.TrimSpace(req.Credential) == "" {
		return extract.NoteContent{}, nil, extract.ErrCredentialUnavailable
	}
	if len(req.Image) == 0 {
		return extract.NoteContent{}, nil, fmt.Errorf("empty image payload")
	}

	c.logger.Info("extract.start",
		"req_id", rid,
		"model", c.cfg.Model,
		"media_type", req.MediaType,
		"image_bytes", len(req.Image),
	)

	body := map[string]any{
		"contents": []map[string]any{{
			"parts": []map[string]any{
				{"inline_data": map[string]any{
					"mime_type": req.MediaType,
					"data":      base64.StdEncoding.EncodeToString(req.Image),
				}},
				{"text": extract.BuildInstruction()},
			},
		}},
		"generationConfig": map[string]any{
			"response_mime_type": "application/json",
			"response_schema":    responseSchema(),
		},
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") +
		"/v1beta/models/" + url.PathEscape(c.cfg.Model) + ":generateContent"
	headers := map[string]string{"x-goog-api-key": req.Credential}

	raw, status, err := c.postJSON(ctx, rid, endpoint, body, headers)
	if err != nil {
		cerr := classifyCallError(status, raw, err)
		c.logger.Error("extract.call_failed",
			"req_id", rid, "status", status, "error", cerr,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return extract.NoteContent{}, nil, cerr
	}

	var gr generateResponse
	if err := json.Unmarshal(raw, &gr); err != nil {
		c.logger.Error("extract.decode_error", "req_id", rid, "error", err, "raw_bytes", len(raw))
		return extract.NoteContent{}, raw, fmt.Errorf("%w: decode service envelope: %v", extract.ErrMalformedResponse, err)
	}

	text := strings.TrimSpace(gr.text())
	if text == "" {
		c.logger.Warn("extract.empty_response", "req_id", rid, "elapsed_ms", time.Since(start).Milliseconds())
		return extract.NoteContent{}, raw, extract.ErrEmptyResponse
	}

	content, cleaned, err := extract.ParseNoteContent([]byte(text), c.logger)
	if err != nil {
		c.logger.Error("extract.parse_failed",
			"req_id", rid, "error", err, "content", text,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return extract.NoteContent{}, cleaned, err
	}

	c.logger.Info("extract.ok",
		"req_id", rid,
		"items", len(content.Items),
		"header_len", len(content.HeaderText),
		"footer_len", len(content.FooterText),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return content, cleaned, nil
}

// classifyCallError maps a failed HTTP exchange onto the typed error set.
// Structured fields (rpc status, error details) are consulted first; wording
// only as a last resort, and only through the one matcher in extract.
func classifyCallError(status int, body []byte, err error) error {
	if status == 0 {
		// transport failure, no response
		return &extract.UpstreamError{Message: err.Error()}
	}

	msg := strings.TrimSpace(string(body))
	var env apiError
	if json.Unmarshal(body, &env) == nil && env.Error.Message != "" {
		msg = env.Error.Message
		for _, d := range env.Error.Details {
			if d.Reason == "API_KEY_INVALID" {
				return fmt.Errorf("%w: %s", extract.ErrCredentialInvalid, msg)
			}
		}
		switch env.Error.Status {
		case "UNAUTHENTICATED", "PERMISSION_DENIED":
			return fmt.Errorf("%w: %s", extract.ErrCredentialInvalid, msg)
		}
	}
	if extract.MatchesCredentialMessage(msg) {
		return fmt.Errorf("%w: %s", extract.ErrCredentialInvalid, msg)
	}
	return &extract.UpstreamError{Status: status, Message: msg}
}

// responseSchema is the constrained-decoding schema declared on the request.
// Gemini takes an OpenAPI-style subset, so this is the local validation
// schema minus the keywords the API does not know.
func responseSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"items": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"item": map[string]any{"type": "string"},
						"rate": map[string]any{"type": "string"},
					},
					"required": []string{"item", "rate"},
				},
			},
			"headerText": map[string]any{"type": "string"},
			"footerText": map[string]any{"type": "string"},
		},
		"required": []string{"items", "headerText", "footerText"},
	}
}
