package usecase

import (
	"context"

	"github.com/nfries/dispmode/internal/application/port"
	"github.com/nfries/dispmode/internal/domain/entity"
	"github.com/nfries/dispmode/internal/logging"
)

// CurrentModeUseCase reports the link configuration currently active for
// a display: the hardware registry's answer when it has one, otherwise
// the persisted record the display server last wrote. nil means neither
// source knows.
type CurrentModeUseCase struct {
	scanner port.ModeScanner
	store   port.StoreAccessor
}

// NewCurrentModeUseCase creates the use case.
func NewCurrentModeUseCase(scanner port.ModeScanner, store port.StoreAccessor) *CurrentModeUseCase {
	return &CurrentModeUseCase{scanner: scanner, store: store}
}

// Execute resolves the active mode.
func (uc *CurrentModeUseCase) Execute(ctx context.Context, ref entity.DisplayRef) (*entity.ColorMode, error) {
	mode, err := uc.scanner.CurrentMode(ctx, ref)
	if err != nil {
		return nil, err
	}
	if mode != nil {
		return mode, nil
	}

	logging.FromContext(ctx).Debug().Msg("registry has no current mode, falling back to persisted store")
	desc, err := uc.store.ReadLinkDescription(ctx, ref)
	if err != nil {
		return nil, err
	}
	if desc == nil {
		return nil, nil
	}
	m := desc.ColorMode()
	return &m, nil
}
