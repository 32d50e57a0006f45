package registry

import (
	"context"

	"github.com/nfries/dispmode/internal/application/port"
	"github.com/nfries/dispmode/internal/domain/entity"
	"github.com/nfries/dispmode/internal/logging"
)

// Keys the node's current (as opposed to supported) link configuration
// may be published under.
var currentModeKeys = []string{"CurrentColorElement", "CurrentColorMode", "ccel"}

// Scanner implements port.ModeScanner over a hardware registry gateway.
// Results are produced fresh on every call; nothing is cached here.
type Scanner struct {
	gateway port.RegistryGateway
	classes []string
}

var _ port.ModeScanner = (*Scanner)(nil)

// NewScanner creates a scanner using the default service-class priority.
func NewScanner(gateway port.RegistryGateway) *Scanner {
	return &Scanner{gateway: gateway, classes: defaultServiceClasses}
}

// AvailableModes returns every link configuration the display advertises
// for its current timing, deduplicated in first-seen order. Absence of a
// matching node or of parseable data yields an empty slice: the caller
// must treat that as "no information", not "display incapable".
func (s *Scanner) AvailableModes(ctx context.Context, ref entity.DisplayRef) ([]entity.ColorMode, error) {
	ctx = logging.WithComponent(ctx, "registry-scanner")
	log := logging.FromContext(ctx)

	node := resolveNode(ctx, s.gateway, s.classes, ref)
	if node == nil {
		log.Debug().Uint32("display_id", ref.ID).Msg("no registry node for display")
		return nil, nil
	}

	var entries []timingEntry
	for _, props := range nodePropertyViews(node) {
		entries = timingEntries(props)
		if len(entries) > 0 {
			break
		}
	}
	if len(entries) == 0 {
		log.Debug().Str("class", node.Class).Msg("node has no parseable timing entries")
		return nil, nil
	}

	var modes []entity.ColorMode
	for _, t := range selectTimings(entries, ref) {
		for _, c := range t.colors {
			if m, ok := parseColorEntry(c); ok {
				modes = append(modes, m)
			}
		}
	}

	modes = entity.DedupColorModes(modes)
	log.Debug().Int("count", len(modes)).Msg("scanned available modes")
	return modes, nil
}

// CurrentMode reads the link configuration the node reports as active.
// Returns nil when the node is missing or publishes nothing parseable.
func (s *Scanner) CurrentMode(ctx context.Context, ref entity.DisplayRef) (*entity.ColorMode, error) {
	ctx = logging.WithComponent(ctx, "registry-scanner")

	node := resolveNode(ctx, s.gateway, s.classes, ref)
	if node == nil {
		return nil, nil
	}

	for _, props := range nodePropertyViews(node) {
		for _, k := range currentModeKeys {
			if sub, ok := props[k].(map[string]any); ok {
				if m, ok := parseColorEntry(sub); ok {
					return &m, nil
				}
			}
		}
	}

	// Some generations publish the active fields flat on the node.
	if m, ok := parseColorEntry(node.Properties); ok {
		return &m, nil
	}
	return nil, nil
}
