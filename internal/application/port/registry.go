package port

import (
	"context"

	"github.com/nfries/dispmode/internal/domain/entity"
)

// RegistryNode is one service node of the live hardware-description tree.
// Properties are loosely typed: key names and value encodings differ
// between silicon generations, so consumers probe them through ordered
// candidate lists rather than fixed schemas.
type RegistryNode struct {
	Class      string
	Properties map[string]any
	Children   []*RegistryNode
}

// Prop returns the first property present under any of the given keys.
func (n *RegistryNode) Prop(keys ...string) (any, bool) {
	for _, k := range keys {
		if v, ok := n.Properties[k]; ok {
			return v, true
		}
	}
	return nil, false
}

// RegistryGateway reads service nodes of one class from the hardware
// registry. An empty slice with a nil error means the class is absent on
// this machine, which is a normal answer.
type RegistryGateway interface {
	ServiceNodes(ctx context.Context, class string) ([]*RegistryNode, error)
}

// ModeScanner discovers which link configurations a display supports.
// Missing hardware data yields an empty slice, never an error; errors are
// reserved for gateway transport failures.
type ModeScanner interface {
	AvailableModes(ctx context.Context, ref entity.DisplayRef) ([]entity.ColorMode, error)
	CurrentMode(ctx context.Context, ref entity.DisplayRef) (*entity.ColorMode, error)
}
