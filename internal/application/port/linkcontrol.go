package port

import (
	"context"

	"github.com/nfries/dispmode/internal/domain/entity"
)

// LinkControl drives the undocumented display-server calls that change the
// live link configuration without a reconnect. Both calls report plain
// errors on non-zero status; failure here is non-fatal for the caller,
// which falls through its tier chain.
type LinkControl interface {
	// ApplyDirect issues the one-shot set call. The parameter tuple order
	// is vendor-dependent; alternate selects the second known ordering.
	ApplyDirect(ctx context.Context, displayID uint32, desc entity.LinkDescription, alternate bool) error

	// ApplyTransactional wraps the same parameters in a begin/submit/commit
	// configuration transaction with the permanent flag set.
	ApplyTransactional(ctx context.Context, displayID uint32, desc entity.LinkDescription) error
}

// DisplayPower forces the display link down and back up so the display
// server re-reads persisted configuration. Both operations are disruptive
// and visible to the user.
type DisplayPower interface {
	// SleepDisplays asks the session subsystem to put displays to sleep.
	SleepDisplays(ctx context.Context) error

	// WakeDisplays synthesizes a user-input event and posts a backup wake
	// assertion to re-establish the link.
	WakeDisplays(ctx context.Context) error
}

// CommandRunner executes an external tool and returns its combined output.
// Adapters take it instead of calling exec directly so tests can stub the
// tool surface.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}
