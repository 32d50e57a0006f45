// Package usecase contains application use cases that orchestrate domain logic.
package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/nfries/dispmode/internal/application/port"
	"github.com/nfries/dispmode/internal/domain/entity"
	"github.com/nfries/dispmode/internal/logging"
)

// Settle periods for the forced-reconnect path. The sleep settle is how
// long the link empirically needs to actually drop before a wake attempt
// can force a renegotiation.
const (
	sleepSettle = 3 * time.Second
	wakeSettle  = 1 * time.Second
)

// SetModeInput carries the target display and the desired configuration.
type SetModeInput struct {
	Ref  entity.DisplayRef
	Mode entity.ColorMode
}

// SetModeOutput reports how the change reached the hardware. Instant is
// false when only the forced reconnect succeeded: the caller should warn
// the user that a visible flicker occurred.
type SetModeOutput struct {
	Instant bool
}

// SetModeUseCase persists a link configuration and makes the live
// hardware adopt it.
//
// Persistence strictly happens before any live-apply attempt: a failure
// in the read/build/write steps leaves both the document and the hardware
// untouched, so the worst post-failure state is "change not applied",
// never "applied but not recorded".
type SetModeUseCase struct {
	store   port.StoreAccessor
	writer  port.PrivilegedWriter
	link    port.LinkControl
	power   port.DisplayPower
	journal port.ApplyJournal // optional, nil is a no-op

	sleep func(time.Duration)
}

// NewSetModeUseCase wires the orchestrator. journal may be nil.
func NewSetModeUseCase(
	store port.StoreAccessor,
	writer port.PrivilegedWriter,
	link port.LinkControl,
	power port.DisplayPower,
	journal port.ApplyJournal,
) *SetModeUseCase {
	return &SetModeUseCase{
		store:   store,
		writer:  writer,
		link:    link,
		power:   power,
		journal: journal,
		sleep:   time.Sleep,
	}
}

// Execute runs the apply chain: persist, then direct call (both parameter
// orderings), then transactional call, then forced reconnect. It returns
// as soon as one tier succeeds. Errors from the persistence steps
// propagate unchanged; instant-apply failures never escape, they only
// push the chain onward.
func (uc *SetModeUseCase) Execute(ctx context.Context, in SetModeInput) (SetModeOutput, error) {
	ctx = logging.WithComponent(ctx, "set-mode")
	log := logging.FromContext(ctx).With().
		Uint32("display_id", in.Ref.ID).
		Stringer("mode", in.Mode).
		Logger()

	desc := entity.EncodeLinkDescription(in.Mode)

	snap, err := uc.store.Read(ctx)
	if err != nil {
		return SetModeOutput{}, err
	}

	doc, err := uc.store.BuildModified(snap, in.Ref, desc)
	if err != nil {
		return SetModeOutput{}, &port.StoreBuildError{Err: err}
	}

	if err := uc.writer.Write(ctx, doc, snap.Checksum); err != nil {
		return SetModeOutput{}, err
	}
	log.Debug().Msg("configuration persisted, attempting live apply")

	if uc.applyInstant(ctx, in.Ref.ID, desc, &log) {
		uc.record(ctx, in, true, &log)
		return SetModeOutput{Instant: true}, nil
	}

	if err := uc.forcedReconnect(ctx, &log); err != nil {
		return SetModeOutput{}, err
	}
	uc.record(ctx, in, false, &log)
	return SetModeOutput{Instant: false}, nil
}

// applyInstant runs the non-disruptive tiers: the direct call in its
// primary parameter order, the direct call in the alternate order, then
// the transactional variant.
func (uc *SetModeUseCase) applyInstant(ctx context.Context, displayID uint32, desc entity.LinkDescription, log *zerolog.Logger) bool {
	if err := uc.link.ApplyDirect(ctx, displayID, desc, false); err == nil {
		log.Info().Msg("mode applied instantly (direct call)")
		return true
	}
	if err := uc.link.ApplyDirect(ctx, displayID, desc, true); err == nil {
		log.Info().Msg("mode applied instantly (direct call, alternate order)")
		return true
	}
	if err := uc.link.ApplyTransactional(ctx, displayID, desc); err == nil {
		log.Info().Msg("mode applied instantly (transaction)")
		return true
	}
	log.Debug().Msg("instant apply exhausted, falling back to forced reconnect")
	return false
}

// forcedReconnect drops the display link and forces it back up so the
// display server re-reads the document written above. Once started it
// runs to completion; the settle waits are not cancellable.
func (uc *SetModeUseCase) forcedReconnect(ctx context.Context, log *zerolog.Logger) error {
	if err := uc.power.SleepDisplays(ctx); err != nil {
		return &port.ReconnectError{Step: "sleep", Err: err}
	}
	uc.sleep(sleepSettle)

	if err := uc.power.WakeDisplays(ctx); err != nil {
		return &port.ReconnectError{Step: "wake", Err: err}
	}
	uc.sleep(wakeSettle)

	log.Info().Msg("mode applied via forced display reconnect")
	return nil
}

// record appends to the journal; journal failures are logged, not
// surfaced, because the apply itself already succeeded.
func (uc *SetModeUseCase) record(ctx context.Context, in SetModeInput, instant bool, log *zerolog.Logger) {
	if uc.journal == nil {
		return
	}
	rec := port.ApplyRecord{
		DisplayUUID: in.Ref.UUID,
		DisplayID:   in.Ref.ID,
		Mode:        in.Mode,
		Instant:     instant,
		AppliedAt:   time.Now(),
	}
	if err := uc.journal.Record(ctx, rec); err != nil {
		log.Warn().Err(err).Msg("failed to journal applied mode")
	}
}
