package extract

import (
	"errors"
	"fmt"
	"regexp"
)

// Typed failure classes for the extraction call. Callers branch on these
// with errors.Is / errors.As instead of inspecting upstream wording.
var (
	// ErrCredentialUnavailable: no credential was supplied. Raised before
	// any network interaction.
	ErrCredentialUnavailable = errors.New("no API key available; provide one before converting")
	// ErrCredentialInvalid: the service rejected the supplied credential.
	ErrCredentialInvalid = errors.New("the extraction service rejected the API key")
	// ErrEmptyResponse: the service returned no text payload.
	ErrEmptyResponse = errors.New("empty response from the extraction service; the handwriting might be illegible")
	// ErrMalformedResponse: the text payload could not be parsed into the
	// expected structured shape.
	ErrMalformedResponse = errors.New("malformed response from the extraction service")
)

// UpstreamError carries any other network/service failure verbatim, with no
// retry at this layer. Status is 0 for transport-level failures.
type UpstreamError struct {
	Status  int
	Message string
}

func (e *UpstreamError) Error() string {
	if e.Status == 0 {
		return e.Message
	}
	return fmt.Sprintf("extraction service status %d: %s", e.Status, e.Message)
}

// credentialPatterns is the last-resort text match for upstream credential
// failures. Fragile by nature, so it lives here and nowhere else.
var credentialPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)API key not valid`),
	regexp.MustCompile(`(?i)API key is not available`),
	regexp.MustCompile(`(?i)API key\b.*\bnot found`),
	regexp.MustCompile(`(?i)provide one`),
}

// MatchesCredentialMessage reports whether an upstream message reads like a
// credential failure.
func MatchesCredentialMessage(msg string) bool {
	for _, re := range credentialPatterns {
		if re.MatchString(msg) {
			return true
		}
	}
	return false
}

// IsCredentialError reports whether err should route the user to the
// re-authentication flow rather than a generic error display. Typed
// classification first, text matching as fallback.
func IsCredentialError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrCredentialUnavailable) || errors.Is(err, ErrCredentialInvalid) {
		return true
	}
	return MatchesCredentialMessage(err.Error())
}
