// Package command provides the live CommandRunner adapter.
package command

import (
	"context"
	"os/exec"
	"time"

	"github.com/nfries/dispmode/internal/application/port"
)

// defaultTimeout bounds non-interactive tool invocations. A hung helper
// counts as a deterministic failure.
const defaultTimeout = 3 * time.Second

// Runner executes external tools with a fixed per-call timeout.
type Runner struct {
	timeout time.Duration
}

var _ port.CommandRunner = (*Runner)(nil)

// New creates a runner with the default timeout, suited to tools that
// answer without user interaction.
func New() *Runner {
	return &Runner{timeout: defaultTimeout}
}

// NewWithTimeout creates a runner with a custom per-call timeout. A
// non-positive d disables the timeout entirely; the call then runs until
// its context is done. Invocations that block on the user, like an
// interactive password prompt, need a much longer bound than the default.
func NewWithTimeout(d time.Duration) *Runner {
	return &Runner{timeout: d}
}

// Run executes the tool and returns its combined output. A non-zero exit
// status surfaces as the error, with the output still returned for
// diagnostics.
func (r *Runner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}
