package convert

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kelechi-madu/ratesheet/internal/credential"
	"github.com/kelechi-madu/ratesheet/internal/extract"
	"github.com/kelechi-madu/ratesheet/internal/imaging"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeExtractor struct {
	fn    func(ctx context.Context, req extract.Request) (extract.NoteContent, []byte, error)
	calls int
}

func (f *fakeExtractor) Extract(ctx context.Context, req extract.Request) (extract.NoteContent, []byte, error) {
	f.calls++
	return f.fn(ctx, req)
}

func readyResolver(t *testing.T) *credential.Resolver {
	t.Helper()
	r := credential.NewResolver("test-key", nil, nil, testLogger())
	require.Equal(t, credential.StateReady, r.Resolve(context.Background()))
	return r
}

func testPayload() imaging.Payload {
	return imaging.Payload{Data: []byte("img"), MediaType: "image/png"}
}

func sampleContent() extract.NoteContent {
	return extract.NoteContent{
		Items:      []extract.LineItem{{Name: "Screen Repair", Rate: "2500"}},
		FooterText: "call back tomorrow",
	}
}

func TestConvertWithoutImage(t *testing.T) {
	fe := &fakeExtractor{}
	o := NewOrchestrator(readyResolver(t), fe, testLogger())

	_, err := o.Convert(context.Background())
	require.ErrorIs(t, err, ErrNoImage)
	assert.Zero(t, fe.calls, "validation failures must not reach the extractor")
}

func TestConvertWithoutCredential(t *testing.T) {
	r := credential.NewResolver("", nil, nil, testLogger())
	require.Equal(t, credential.StateAwaitingInput, r.Resolve(context.Background()))

	fe := &fakeExtractor{}
	o := NewOrchestrator(r, fe, testLogger())
	o.SetImage("page.png", testPayload())

	_, err := o.Convert(context.Background())
	require.ErrorIs(t, err, ErrCredentialMissing)
	assert.Zero(t, fe.calls)
}

func TestConvertSuccess(t *testing.T) {
	want := sampleContent()
	fe := &fakeExtractor{fn: func(ctx context.Context, req extract.Request) (extract.NoteContent, []byte, error) {
		assert.Equal(t, "test-key", req.Credential)
		assert.Equal(t, "image/png", req.MediaType)
		return want, []byte(`{}`), nil
	}}
	r := readyResolver(t)
	o := NewOrchestrator(r, fe, testLogger())
	o.SetImage("page.png", testPayload())

	st, err := o.Convert(context.Background())
	require.NoError(t, err)
	require.NotNil(t, st.Result)
	assert.Equal(t, want, *st.Result)
	assert.False(t, st.Loading)
	assert.Empty(t, st.Err)
	assert.Equal(t, credential.StateReady, r.State())
	assert.Empty(t, r.Message())
}

// Credential-class failures route to the key screen: the resolver is
// invalidated and the generic error slot stays empty. Anything else lands in
// the error slot verbatim with the resolver untouched.
func TestConvertFailureRouting(t *testing.T) {
	cases := []struct {
		name         string
		err          error
		wantResolver credential.State
		wantStateErr string
	}{
		{"credential text match", &extract.UpstreamError{Message: "API key not valid"}, credential.StateAwaitingInput, ""},
		{"typed credential error", extract.ErrCredentialInvalid, credential.StateAwaitingInput, ""},
		{"generic upstream failure", &extract.UpstreamError{Message: "Network timeout"}, credential.StateReady, "Network timeout"},
		{"illegible handwriting", extract.ErrEmptyResponse, credential.StateReady, extract.ErrEmptyResponse.Error()},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fe := &fakeExtractor{fn: func(context.Context, extract.Request) (extract.NoteContent, []byte, error) {
				return extract.NoteContent{}, nil, tc.err
			}}
			r := readyResolver(t)
			o := NewOrchestrator(r, fe, testLogger())
			o.SetImage("page.png", testPayload())

			st, err := o.Convert(context.Background())
			require.Error(t, err)
			assert.Equal(t, tc.wantResolver, r.State())
			assert.Equal(t, tc.wantStateErr, st.Err)
			assert.Nil(t, st.Result)
			if tc.wantResolver == credential.StateAwaitingInput {
				assert.NotEmpty(t, r.Message(), "key screen needs a user-facing message")
			}
		})
	}
}

func TestConvertRejectsConcurrentCall(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	fe := &fakeExtractor{fn: func(context.Context, extract.Request) (extract.NoteContent, []byte, error) {
		close(started)
		<-release
		return sampleContent(), nil, nil
	}}
	o := NewOrchestrator(readyResolver(t), fe, testLogger())
	o.SetImage("page.png", testPayload())

	done := make(chan error, 1)
	go func() {
		_, err := o.Convert(context.Background())
		done <- err
	}()
	<-started

	_, err := o.Convert(context.Background())
	require.ErrorIs(t, err, ErrConversionInFlight)

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, 1, fe.calls)
}

// Selecting a new image while a conversion is outstanding must not let the
// stale result populate state for the new image.
func TestConvertStaleResultDiscarded(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	fe := &fakeExtractor{fn: func(context.Context, extract.Request) (extract.NoteContent, []byte, error) {
		close(started)
		<-release
		return sampleContent(), nil, nil
	}}
	o := NewOrchestrator(readyResolver(t), fe, testLogger())
	o.SetImage("first.png", testPayload())

	done := make(chan error, 1)
	go func() {
		_, err := o.Convert(context.Background())
		done <- err
	}()
	<-started

	o.SetImage("second.png", testPayload())
	close(release)

	select {
	case err := <-done:
		require.ErrorIs(t, err, ErrSuperseded)
	case <-time.After(5 * time.Second):
		t.Fatal("conversion did not settle")
	}

	st := o.State()
	assert.Equal(t, "second.png", st.ImageRef)
	assert.Nil(t, st.Result, "stale result must not be attributed to the new image")
	assert.Empty(t, st.Err)
	assert.False(t, st.Loading)
}

func TestSetImageResetsState(t *testing.T) {
	fe := &fakeExtractor{fn: func(context.Context, extract.Request) (extract.NoteContent, []byte, error) {
		return sampleContent(), nil, nil
	}}
	o := NewOrchestrator(readyResolver(t), fe, testLogger())
	o.SetImage("first.png", testPayload())

	_, err := o.Convert(context.Background())
	require.NoError(t, err)
	require.NotNil(t, o.State().Result)

	o.SetImage("second.png", testPayload())
	st := o.State()
	assert.Nil(t, st.Result)
	assert.Empty(t, st.Err)
	assert.Equal(t, "second.png", st.ImageRef)
}
