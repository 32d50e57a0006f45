package usecase

import (
	"context"

	"github.com/nfries/dispmode/internal/application/port"
	"github.com/nfries/dispmode/internal/domain/entity"
)

// ListModesUseCase surfaces the configurations a display supports. An
// empty result means "no information available", not "display incapable".
type ListModesUseCase struct {
	scanner port.ModeScanner
}

// NewListModesUseCase creates the use case.
func NewListModesUseCase(scanner port.ModeScanner) *ListModesUseCase {
	return &ListModesUseCase{scanner: scanner}
}

// Execute returns the deduplicated available modes for the display.
func (uc *ListModesUseCase) Execute(ctx context.Context, ref entity.DisplayRef) ([]entity.ColorMode, error) {
	return uc.scanner.AvailableModes(ctx, ref)
}
