package registry

import (
	"context"
	"fmt"

	"howett.net/plist"

	"github.com/nfries/dispmode/internal/application/port"
)

// Keys ioreg uses in its archived output.
const (
	ioregChildrenKey = "IORegistryEntryChildren"
	ioregClassKey    = "IOObjectClass"
)

// IORegGateway reads service nodes by archiving the registry with the
// ioreg tool and decoding its property-list output. The -r/-c pair limits
// the dump to the requested class subtree; -a requests the archive format;
// -w 0 disables line wrapping.
type IORegGateway struct {
	runner port.CommandRunner
	tool   string
}

var _ port.RegistryGateway = (*IORegGateway)(nil)

// NewIORegGateway creates a gateway shelling out to the given ioreg
// binary ("ioreg" to use PATH).
func NewIORegGateway(runner port.CommandRunner, tool string) *IORegGateway {
	if tool == "" {
		tool = "ioreg"
	}
	return &IORegGateway{runner: runner, tool: tool}
}

// ServiceNodes dumps every registry entry of the given class, including
// child entries. An empty dump is a normal answer for absent classes.
func (g *IORegGateway) ServiceNodes(ctx context.Context, class string) ([]*port.RegistryNode, error) {
	out, err := g.runner.Run(ctx, g.tool, "-a", "-r", "-w", "0", "-c", class)
	if err != nil {
		return nil, fmt.Errorf("ioreg -c %s: %w", class, err)
	}
	if len(out) == 0 {
		return nil, nil
	}

	var raw any
	if _, err := plist.Unmarshal(out, &raw); err != nil {
		return nil, fmt.Errorf("decode ioreg output for %s: %w", class, err)
	}

	list, ok := raw.([]any)
	if !ok {
		return nil, nil
	}
	var nodes []*port.RegistryNode
	for _, e := range list {
		if props, ok := e.(map[string]any); ok {
			nodes = append(nodes, buildNode(props, class))
		}
	}
	return nodes, nil
}

// buildNode lifts one archived entry into a RegistryNode, recursing into
// the children array ioreg embeds in the property dict.
func buildNode(props map[string]any, fallbackClass string) *port.RegistryNode {
	n := &port.RegistryNode{
		Class:      fallbackClass,
		Properties: props,
	}
	if c, ok := props[ioregClassKey].(string); ok && c != "" {
		n.Class = c
	}
	if children, ok := props[ioregChildrenKey].([]any); ok {
		for _, ch := range children {
			if cp, ok := ch.(map[string]any); ok {
				n.Children = append(n.Children, buildNode(cp, n.Class))
			}
		}
	}
	return n
}
