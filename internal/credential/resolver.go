package credential

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/kelechi-madu/ratesheet/internal/common"
)

// State is the resolver's position in its lifecycle.
type State int

const (
	StateUnresolved State = iota
	StateReady
	StateAwaitingInput
	StateError
)

func (s State) String() string {
	switch s {
	case StateUnresolved:
		return "UNRESOLVED"
	case StateReady:
		return "READY"
	case StateAwaitingInput:
		return "AWAITING_USER_INPUT"
	case StateError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Source labels, for logs only.
const (
	sourceEnvironment = "environment"
	sourceHost        = "host-runtime"
	sourceStored      = "stored"
	sourceManual      = "manual"
)

// HostProbe is the host-runtime credential capability. A failed probe reports
// ok=false and resolution moves on to the next source; it is never an error.
type HostProbe interface {
	ProbeCredential(ctx context.Context) (string, bool)
}

// Resolver decides which credential source is authoritative for the session.
// Priority is fixed: environment > host-runtime > stored. Once READY the
// active credential is immutable until Invalidate or SubmitManual.
type Resolver struct {
	mu     sync.Mutex
	state  State
	cred   string
	msg    string
	source string

	envValue string
	host     HostProbe
	store    *Store
	logger   *slog.Logger
}

// NewResolver builds a resolver over the three credential sources. host and
// store may be nil; a nil source is simply absent.
func NewResolver(envValue string, host HostProbe, store *Store, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		state:    StateUnresolved,
		envValue: strings.TrimSpace(envValue),
		host:     host,
		store:    store,
		logger:   logger,
	}
}

// Resolve walks the sources in priority order and settles on READY or
// AWAITING_USER_INPUT. Calling it while READY is a no-op. Re-entry from
// AWAITING_USER_INPUT behaves like initialization and clears the pending
// message on success.
func (r *Resolver) Resolve(ctx context.Context) State {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state == StateReady {
		return r.state
	}

	if r.envValue != "" {
		r.becomeReadyLocked(r.envValue, sourceEnvironment)
		return r.state
	}

	if r.host != nil {
		if cred, ok := r.host.ProbeCredential(ctx); ok && strings.TrimSpace(cred) != "" {
			r.becomeReadyLocked(strings.TrimSpace(cred), sourceHost)
			return r.state
		}
	}

	if r.store != nil {
		if cred, ok := r.store.Load(ctx); ok {
			r.becomeReadyLocked(cred, sourceStored)
			return r.state
		}
	}

	r.state = StateAwaitingInput
	r.logger.Info("credential.resolve.awaiting_input")
	return r.state
}

// SubmitManual accepts a user-entered credential, persists it, and becomes
// READY immediately.
func (r *Resolver) SubmitManual(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return common.NewAppError("CREDENTIAL_EMPTY", "credential must not be empty", common.ErrInvalidInput)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.store != nil {
		r.store.Save(ctx, token)
	}
	r.becomeReadyLocked(token, sourceManual)
	return nil
}

// Invalidate forces the resolver back to AWAITING_USER_INPUT with an attached
// message, typically after the extraction service rejected the credential.
// The stored value is retained so the user can inspect and correct it; only
// the active in-memory credential is dropped.
func (r *Resolver) Invalidate(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state = StateAwaitingInput
	r.cred = ""
	r.msg = msg
	r.logger.Warn("credential.invalidated", "message", msg, "previous_source", r.source)
	r.source = ""
}

// ClearMessage drops the pending user-facing message, e.g. after a
// successful conversion.
func (r *Resolver) ClearMessage() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msg = ""
}

// State returns the current lifecycle state.
func (r *Resolver) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Credential returns the active credential when READY.
func (r *Resolver) Credential() (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != StateReady {
		return "", false
	}
	return r.cred, true
}

// Message returns the pending user-facing message, if any.
func (r *Resolver) Message() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.msg
}

// Source reports which source produced the active credential, for logs.
func (r *Resolver) Source() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.source
}

func (r *Resolver) becomeReadyLocked(cred, source string) {
	r.state = StateReady
	r.cred = cred
	r.source = source
	r.msg = ""
	r.logger.Info("credential.resolve.ready", "source", source)
}
