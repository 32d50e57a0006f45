package registry

import (
	"context"

	"github.com/nfries/dispmode/internal/application/port"
	"github.com/nfries/dispmode/internal/domain/entity"
	"github.com/nfries/dispmode/internal/logging"
)

// defaultServiceClasses is the search order for the service node backing a
// display, newest silicon first. IODisplayConnect only exists on the
// oldest supported generation.
var defaultServiceClasses = []string{
	"AppleCLCD2",
	"DCPAVServiceProxy",
	"IOMobileFramebufferShim",
	"IODisplayConnect",
}

var (
	registryIDResolvers = []resolver[int64]{
		{key: "DisplayID", parse: asInt},
		{key: "IOMFBDisplayID", parse: asInt},
	}
	vendorResolvers = []resolver[int64]{
		{key: "DisplayVendorID", parse: asInt},
		{key: "VendorID", parse: asInt},
		{key: "LegacyManufacturerID", parse: asInt},
	}
	productResolvers = []resolver[int64]{
		{key: "DisplayProductID", parse: asInt},
		{key: "ProductID", parse: asInt},
	}

	// Containers the identity pairs may be nested under instead of
	// sitting on the node itself.
	identityContainerKeys = []string{"DisplayAttributes", "ProductAttributes", "EDID Properties"}
)

// identityProps flattens the node maps the identity fields may live in:
// the node's own properties plus any known nested container (one level,
// containers can nest once more on DCP hardware).
func identityProps(n *port.RegistryNode) []map[string]any {
	out := []map[string]any{n.Properties}
	for _, k := range identityContainerKeys {
		if sub, ok := n.Properties[k].(map[string]any); ok {
			out = append(out, sub)
			for _, k2 := range identityContainerKeys {
				if sub2, ok := sub[k2].(map[string]any); ok {
					out = append(out, sub2)
				}
			}
		}
	}
	return out
}

func matchByRegistryID(n *port.RegistryNode, ref entity.DisplayRef) bool {
	if ref.ID == 0 {
		return false
	}
	// Every view is checked: the node may carry an unrelated ID key at the
	// top level while the real display ID sits in a nested container.
	for _, props := range identityProps(n) {
		if id, ok := resolveField(props, registryIDResolvers); ok && uint32(id) == ref.ID {
			return true
		}
	}
	return false
}

func matchByIdentity(n *port.RegistryNode, ref entity.DisplayRef) bool {
	if ref.VendorID == 0 && ref.ProductID == 0 {
		return false
	}
	var vendor, product int64
	var haveVendor, haveProduct bool
	for _, props := range identityProps(n) {
		if !haveVendor {
			if v, ok := resolveField(props, vendorResolvers); ok {
				vendor, haveVendor = v, true
			}
		}
		if !haveProduct {
			if p, ok := resolveField(props, productResolvers); ok {
				product, haveProduct = p, true
			}
		}
	}
	if !haveVendor || !haveProduct {
		return false
	}
	return uint32(vendor) == ref.VendorID && uint32(product) == ref.ProductID
}

// matchByResolution is the last resort: the node is accepted when its
// timing list carries an entry for the display's current pixel size.
func matchByResolution(n *port.RegistryNode, ref entity.DisplayRef) bool {
	if ref.WidthPx == 0 || ref.HeightPx == 0 {
		return false
	}
	for _, props := range nodePropertyViews(n) {
		for _, t := range timingEntries(props) {
			if t.width == ref.WidthPx && t.height == ref.HeightPx {
				return true
			}
		}
	}
	return false
}

// nodePropertyViews returns the property maps timing data may hang off:
// the node itself and its DisplayAttributes container.
func nodePropertyViews(n *port.RegistryNode) []map[string]any {
	out := []map[string]any{n.Properties}
	if sub, ok := n.Properties["DisplayAttributes"].(map[string]any); ok {
		out = append(out, sub)
	}
	return out
}

// resolveNode walks the class priority list and returns the first node
// matching the display, trying exact registry ID, then vendor/product
// identity, then resolution. A nil return is a normal "no information"
// answer, never an error.
func resolveNode(ctx context.Context, gw port.RegistryGateway, classes []string, ref entity.DisplayRef) *port.RegistryNode {
	log := logging.FromContext(ctx)

	matchers := []struct {
		name string
		fn   func(*port.RegistryNode, entity.DisplayRef) bool
	}{
		{"registry-id", matchByRegistryID},
		{"vendor-product", matchByIdentity},
		{"resolution", matchByResolution},
	}

	for _, class := range classes {
		nodes, err := gw.ServiceNodes(ctx, class)
		if err != nil {
			log.Debug().Err(err).Str("class", class).Msg("registry class unreadable, trying next")
			continue
		}
		flat := flatten(nodes)
		for _, m := range matchers {
			for _, n := range flat {
				if m.fn(n, ref) {
					log.Debug().Str("class", class).Str("matcher", m.name).Msg("resolved display service node")
					return n
				}
			}
		}
	}
	return nil
}

func flatten(nodes []*port.RegistryNode) []*port.RegistryNode {
	var out []*port.RegistryNode
	for _, n := range nodes {
		if n == nil {
			continue
		}
		out = append(out, n)
		out = append(out, flatten(n.Children)...)
	}
	return out
}
