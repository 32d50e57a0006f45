package linkcontrol

import (
	"context"
	"fmt"

	"github.com/nfries/dispmode/internal/application/port"
	"github.com/nfries/dispmode/internal/logging"
)

// wakeKeyScript synthesizes a harmless key press (fn, key code 63)
// through the system event service to force the display link back up.
const wakeKeyScript = `tell application "System Events" to key code 63`

// SessionPower implements port.DisplayPower with the session subsystem's
// command-line surface: pmset for the sleep side, a synthetic input event
// plus a user-activity assertion for the wake side.
type SessionPower struct {
	runner port.CommandRunner
}

var _ port.DisplayPower = (*SessionPower)(nil)

// NewSessionPower creates the live power adapter.
func NewSessionPower(runner port.CommandRunner) *SessionPower {
	return &SessionPower{runner: runner}
}

// SleepDisplays drops the display link immediately.
func (p *SessionPower) SleepDisplays(ctx context.Context) error {
	if out, err := p.runner.Run(ctx, "pmset", "displaysleepnow"); err != nil {
		return fmt.Errorf("pmset displaysleepnow: %w (%s)", err, out)
	}
	return nil
}

// WakeDisplays re-establishes the link: a synthetic user-input event
// first, then a user-activity wake assertion as backup. Only failure of
// both is an error.
func (p *SessionPower) WakeDisplays(ctx context.Context) error {
	log := logging.FromContext(ctx)

	_, keyErr := p.runner.Run(ctx, "osascript", "-e", wakeKeyScript)
	if keyErr != nil {
		log.Debug().Err(keyErr).Msg("synthetic input event failed, relying on wake assertion")
	}

	_, assertErr := p.runner.Run(ctx, "caffeinate", "-u", "-t", "2")
	if keyErr != nil && assertErr != nil {
		return fmt.Errorf("wake displays: input event (%v) and wake assertion (%v) both failed", keyErr, assertErr)
	}
	return nil
}
