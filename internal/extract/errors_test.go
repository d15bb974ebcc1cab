package extract

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsCredentialError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"typed unavailable", ErrCredentialUnavailable, true},
		{"typed invalid wrapped", fmt.Errorf("call failed: %w", ErrCredentialInvalid), true},
		{"api key not valid", &UpstreamError{Message: "API key not valid. Please pass a valid API key."}, true},
		{"api key is not available", errors.New("API key is not available"), true},
		{"api key not found", errors.New("API key foobar was not found"), true},
		{"provide one", errors.New("no key set; please provide one"), true},
		{"network timeout", &UpstreamError{Message: "Network timeout"}, false},
		{"empty response", ErrEmptyResponse, false},
		{"malformed response", ErrMalformedResponse, false},
		{"server error", &UpstreamError{Status: 500, Message: "internal error"}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, IsCredentialError(tc.err))
		})
	}
}

func TestUpstreamErrorMessage(t *testing.T) {
	// transport failures carry the message verbatim for the error display
	assert.Equal(t, "Network timeout", (&UpstreamError{Message: "Network timeout"}).Error())
	assert.Equal(t, "extraction service status 503: overloaded",
		(&UpstreamError{Status: 503, Message: "overloaded"}).Error())
}
