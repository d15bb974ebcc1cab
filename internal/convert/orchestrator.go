package convert

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kelechi-madu/ratesheet/internal/credential"
	"github.com/kelechi-madu/ratesheet/internal/extract"
	"github.com/kelechi-madu/ratesheet/internal/imaging"
)

// User-facing messages. The exact wording is part of the UI contract.
const (
	msgNoImage     = "Please upload an image first."
	msgMissingKey  = "API key is missing. Add it on the key screen and try again."
	msgKeyRejected = "The extraction service rejected the API key. Enter a valid key to continue."
)

var (
	// ErrNoImage: conversion requested before an image was selected.
	ErrNoImage = errors.New(msgNoImage)
	// ErrCredentialMissing: the resolver is not READY. Local check, never
	// reaches the network.
	ErrCredentialMissing = errors.New(msgMissingKey)
	// ErrConversionInFlight: a second Convert was fired while one call was
	// outstanding. The contract rejects rather than queues.
	ErrConversionInFlight = errors.New("a conversion is already in progress")
	// ErrSuperseded: a new image was selected while this call was in flight;
	// its result was discarded.
	ErrSuperseded = errors.New("conversion superseded by a new image")
)

// State is the session-visible conversion state. Err holds generic failure
// text only; credential failures surface through the resolver's message, not
// here.
type State struct {
	ImageRef string
	Loading  bool
	Result   *extract.NoteContent
	Err      string
}

// Orchestrator drives one user-initiated conversion at a time: validate
// preconditions, call the extractor exactly once, classify the outcome, and
// update session state. Every outcome settles back to idle; nothing is fatal.
type Orchestrator struct {
	mu       sync.Mutex
	st       State
	image    imaging.Payload
	hasImage bool
	gen      uint64 // bumped on SetImage; in-flight results for an older gen are dropped
	inFlight bool

	resolver  *credential.Resolver
	extractor extract.Extractor
	logger    *slog.Logger
}

func NewOrchestrator(resolver *credential.Resolver, extractor extract.Extractor, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		resolver:  resolver,
		extractor: extractor,
		logger:    logger,
	}
}

// SetImage selects a new source image and resets the conversion state. An
// outstanding call for the previous image keeps running but its result is
// discarded on arrival.
func (o *Orchestrator) SetImage(ref string, p imaging.Payload) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.gen++
	o.image = p
	o.hasImage = len(p.Data) > 0
	o.st = State{ImageRef: ref}
	o.logger.Info("convert.image_selected", "image", ref, "bytes", len(p.Data))
}

// State returns a snapshot of the session-visible conversion state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.st
}

// Convert runs the end-to-end conversion for the selected image.
//
// Failure routing: credential-class errors invalidate the resolver (the key
// screen is the surfaced UI) and leave State.Err empty; everything else lands
// in State.Err verbatim with the resolver untouched.
func (o *Orchestrator) Convert(ctx context.Context) (State, error) {
	o.mu.Lock()
	if o.inFlight {
		st := o.st
		o.mu.Unlock()
		return st, ErrConversionInFlight
	}
	if !o.hasImage {
		st := o.st
		o.mu.Unlock()
		return st, ErrNoImage
	}
	cred, ok := o.resolver.Credential()
	if !ok {
		st := o.st
		o.mu.Unlock()
		return st, ErrCredentialMissing
	}

	gen := o.gen
	imageRef := o.st.ImageRef
	req := extract.Request{
		Image:      o.image.Data,
		MediaType:  o.image.MediaType,
		Credential: cred,
	}
	o.inFlight = true
	o.st.Loading = true
	o.st.Err = ""
	o.mu.Unlock()

	rid := uuid.New().String()
	start := time.Now()
	o.logger.Info("convert.start", "req_id", rid, "image", imageRef, "bytes", len(req.Image))

	content, _, err := o.extractor.Extract(ctx, req)

	o.mu.Lock()
	defer o.mu.Unlock()
	o.inFlight = false
	o.st.Loading = false

	if gen != o.gen {
		o.logger.Warn("convert.stale_result_discarded", "req_id", rid, "image", imageRef)
		return o.st, ErrSuperseded
	}

	if err != nil {
		if extract.IsCredentialError(err) {
			o.resolver.Invalidate(msgKeyRejected)
			o.logger.Warn("convert.credential_rejected",
				"req_id", rid, "error", err,
				"elapsed_ms", time.Since(start).Milliseconds(),
			)
			return o.st, err
		}
		o.st.Err = err.Error()
		o.logger.Error("convert.failed",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return o.st, err
	}

	o.st.Result = &content
	o.resolver.ClearMessage()
	o.logger.Info("convert.ok",
		"req_id", rid,
		"image", imageRef,
		"items", len(content.Items),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return o.st, nil
}
