// Package linkcontrol drives the live display-server link through an
// external helper tool plus the session subsystem's power commands.
package linkcontrol

import (
	"context"
	"fmt"
	"strconv"

	"github.com/nfries/dispmode/internal/application/port"
	"github.com/nfries/dispmode/internal/domain/entity"
	"github.com/nfries/dispmode/internal/logging"
)

// DefaultHelperTool is the bundled helper that fronts the undocumented
// display-server set calls.
const DefaultHelperTool = "dispmode-linkhelper"

// HelperControl implements port.LinkControl by exec'ing the helper. The
// helper passes its positional arguments straight through to the
// underlying call, which is why argument order matters here: vendors
// disagree on the tuple order of the undocumented call, and the helper
// mirrors whatever order it is given.
type HelperControl struct {
	runner port.CommandRunner
	tool   string
}

var _ port.LinkControl = (*HelperControl)(nil)

// NewHelperControl creates a control adapter around the given helper
// binary ("" for the bundled default).
func NewHelperControl(runner port.CommandRunner, tool string) *HelperControl {
	if tool == "" {
		tool = DefaultHelperTool
	}
	return &HelperControl{runner: runner, tool: tool}
}

// tupleArgs renders the parameter tuple. The primary order is
// encoding/range/depth/eotf; the alternate swaps range and depth, the
// other ordering seen in the wild.
func tupleArgs(desc entity.LinkDescription, alternate bool) []string {
	enc := strconv.Itoa(desc.PixelEncoding)
	rng := strconv.Itoa(desc.Range)
	dep := strconv.Itoa(desc.BitDepth)
	eotf := strconv.Itoa(desc.EOTF)
	if alternate {
		return []string{enc, dep, rng, eotf}
	}
	return []string{enc, rng, dep, eotf}
}

// ApplyDirect issues the one-shot set call. Non-zero helper status comes
// back as the exec error and means the call reported non-success.
func (c *HelperControl) ApplyDirect(ctx context.Context, displayID uint32, desc entity.LinkDescription, alternate bool) error {
	args := append([]string{"set", strconv.FormatUint(uint64(displayID), 10)}, tupleArgs(desc, alternate)...)
	out, err := c.runner.Run(ctx, c.tool, args...)
	if err != nil {
		logging.FromContext(ctx).Debug().
			Err(err).
			Bool("alternate_order", alternate).
			Str("output", string(out)).
			Msg("direct link apply reported non-success")
		return fmt.Errorf("direct link apply: %w", err)
	}
	return nil
}

// ApplyTransactional wraps the same tuple in a begin/submit/commit
// configuration transaction committed with the permanent flag, so the
// display server persists it on its own.
func (c *HelperControl) ApplyTransactional(ctx context.Context, displayID uint32, desc entity.LinkDescription) error {
	args := append([]string{"txn", strconv.FormatUint(uint64(displayID), 10)}, tupleArgs(desc, false)...)
	args = append(args, "--permanent")
	out, err := c.runner.Run(ctx, c.tool, args...)
	if err != nil {
		logging.FromContext(ctx).Debug().
			Err(err).
			Str("output", string(out)).
			Msg("transactional link apply reported non-zero commit")
		return fmt.Errorf("transactional link apply: %w", err)
	}
	return nil
}
