package privileged

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/nfries/dispmode/internal/application/port"
)

// PromptTimeout bounds one interactive authorization attempt. The prompt
// blocks on the user typing a password, so the broker's runner must allow
// far more than the short tool timeout, which would kill the prompt
// mid-entry.
const PromptTimeout = 5 * time.Minute

// OSAScriptBroker implements both privilege ports by driving the system
// script runner's "with administrator privileges" path. The security
// server caches the credential for the calling process after the first
// grant, so only the first request shows a password prompt.
type OSAScriptBroker struct {
	runner port.CommandRunner
	tool   string
}

var (
	_ port.AdminPrompter    = (*OSAScriptBroker)(nil)
	_ port.PrivilegedCopier = (*OSAScriptBroker)(nil)
)

// NewOSAScriptBroker creates a broker shelling out to the given osascript
// binary ("osascript" to use PATH).
func NewOSAScriptBroker(runner port.CommandRunner) *OSAScriptBroker {
	return &OSAScriptBroker{runner: runner, tool: "osascript"}
}

// RequestGrant runs a no-op shell command with administrator privileges,
// which raises the interactive prompt and primes the credential cache.
func (b *OSAScriptBroker) RequestGrant(ctx context.Context, reason string) error {
	script := fmt.Sprintf(
		`do shell script "/usr/bin/true" with administrator privileges with prompt %q`,
		reason,
	)
	out, err := b.runner.Run(ctx, b.tool, "-e", script)
	if err != nil {
		return classifyAuthFailure(out, err)
	}
	return nil
}

// Copy copies a single file over the protected destination with
// administrator privileges.
func (b *OSAScriptBroker) Copy(ctx context.Context, src, dst string) error {
	script := fmt.Sprintf(
		`do shell script "/bin/cp %s %s" with administrator privileges`,
		shellQuote(src), shellQuote(dst),
	)
	out, err := b.runner.Run(ctx, b.tool, "-e", script)
	if err != nil {
		if authErr := classifyAuthFailure(out, err); authErr != err {
			return authErr
		}
		return fmt.Errorf("privileged copy %s -> %s: %w", src, dst, err)
	}
	return nil
}

// classifyAuthFailure maps the script runner's diagnostics onto the
// authorization error kinds. Dismissing the prompt reports error -128
// ("User canceled"); repeated wrong passwords exhaust the retry allowance
// and report a privilege violation (-10004). The markers are exact error
// codes and phrases: the diagnostics of an ordinary failed copy echo the
// script source, which itself says "with administrator privileges", so a
// loose substring would misfile I/O failures as denials.
func classifyAuthFailure(out []byte, err error) error {
	s := string(out)
	switch {
	case strings.Contains(s, "User canceled") || strings.Contains(s, "(-128)"):
		return port.ErrAuthCancelled
	case strings.Contains(s, "not allowed"),
		strings.Contains(s, "privilege violation"),
		strings.Contains(s, "(-10004)"):
		return port.ErrAuthDenied
	}
	return err
}

// shellQuote wraps a path for the inner shell command. Single quotes in
// the path itself are closed, escaped, and reopened.
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
