package platform

import (
	"context"
	"log/slog"
	"os/exec"
	"strings"
)

// Capabilities abstracts what the hosting environment can do for us. The
// variant is selected once at startup; callers hold the interface and never
// feature-check the host again.
type Capabilities interface {
	Name() string
	// ProbeCredential asks the host runtime for a managed credential.
	// ok=false means "source absent" — probe failures are never errors.
	ProbeCredential(ctx context.Context) (string, bool)
	// CanShare reports whether the host offers a native share affordance
	// for generated documents.
	CanShare() bool
}

// Detect picks the capabilities variant for this process: Embedded when a
// credential helper command is configured, Standalone otherwise.
func Detect(helperCommand string, logger *slog.Logger) Capabilities {
	if logger == nil {
		logger = slog.Default()
	}
	helperCommand = strings.TrimSpace(helperCommand)
	if helperCommand == "" {
		logger.Info("platform.detect", "variant", "standalone")
		return Standalone{}
	}
	logger.Info("platform.detect", "variant", "embedded", "helper", helperCommand)
	return NewEmbedded(helperCommand, logger)
}

// Embedded runs inside a host that manages the credential through an
// external helper command. The probe is two steps: a capability check (is
// the helper on PATH) followed by the query itself.
type Embedded struct {
	helper   string
	runner   Runner
	lookPath func(string) (string, error)
	logger   *slog.Logger
}

func NewEmbedded(helper string, logger *slog.Logger) *Embedded {
	if logger == nil {
		logger = slog.Default()
	}
	return &Embedded{
		helper:   helper,
		runner:   execRunner{},
		lookPath: exec.LookPath,
		logger:   logger,
	}
}

func (e *Embedded) Name() string { return "embedded" }

func (e *Embedded) ProbeCredential(ctx context.Context) (string, bool) {
	if _, err := e.lookPath(e.helper); err != nil {
		e.logger.Debug("platform.helper.absent", "helper", e.helper, "error", err)
		return "", false
	}
	stdout, _, err := e.runner.Run(ctx, e.helper, "get")
	if err != nil {
		// A broken helper is treated as "source absent", not a hard error.
		e.logger.Warn("platform.helper.query_failed", "helper", e.helper, "error", err)
		return "", false
	}
	cred := strings.TrimSpace(string(stdout))
	return cred, cred != ""
}

func (e *Embedded) CanShare() bool { return true }

// Standalone has no host-managed credential and no share affordance; output
// goes to the filesystem.
type Standalone struct{}

func (Standalone) Name() string { return "standalone" }

func (Standalone) ProbeCredential(context.Context) (string, bool) { return "", false }

func (Standalone) CanShare() bool { return false }
