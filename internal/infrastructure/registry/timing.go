package registry

import (
	"github.com/nfries/dispmode/internal/domain/entity"
)

// refreshToleranceHz is how far a reported refresh rate may sit from the
// display's current rate and still count as the same timing.
const refreshToleranceHz = 1.0

// Candidate key names for the per-node timing list and the per-timing
// color-mode list, newest scheme first.
var (
	timingListKeys = []string{"TimingElements", "DisplayTimingElements", "dspc"}
	colorListKeys  = []string{"ColorElements", "ColorModes", "clrm"}

	// Nested attribute containers some generations wrap the timing
	// geometry in. The flat layout is tried first.
	timingAttrKeys = []string{"TimingAttributes", "Attributes"}

	widthResolvers = []resolver[int64]{
		{key: "HorizontalPixels", parse: asInt},
		{key: "WidthInPixels", parse: asInt},
		{key: "Width", parse: asInt},
	}
	heightResolvers = []resolver[int64]{
		{key: "VerticalPixels", parse: asInt},
		{key: "HeightInPixels", parse: asInt},
		{key: "Height", parse: asInt},
	}
	refreshResolvers = []resolver[float64]{
		{key: "RefreshRate", parse: asRefreshHz},
		{key: "VerticalFrequency", parse: asRefreshHz},
		{key: "vfreq", parse: asRefreshHz},
	}
)

// asRefreshHz accepts both plain hertz and the 16.16 fixed-point encoding
// older drivers use (e.g. 3932160 for 60 Hz).
func asRefreshHz(v any) (float64, bool) {
	f, ok := asFloat(v)
	if !ok || f <= 0 {
		return 0, false
	}
	if f > 1000 {
		f = f / 65536.0
	}
	return f, true
}

// timingEntry is one supported resolution/refresh combination plus its
// color-mode options, normalized out of whatever layout the node used.
type timingEntry struct {
	width   int
	height  int
	refresh float64 // 0 when the entry did not report one
	colors  []map[string]any
}

// timingProps returns the map holding the entry's geometry: the entry
// itself for the flat layout, or its nested attribute dict.
func timingProps(raw map[string]any) map[string]any {
	if _, ok := resolveField(raw, widthResolvers); ok {
		return raw
	}
	for _, k := range timingAttrKeys {
		if sub, ok := raw[k].(map[string]any); ok {
			if _, ok := resolveField(sub, widthResolvers); ok {
				return sub
			}
		}
	}
	return raw
}

func parseTimingEntry(raw map[string]any) (timingEntry, bool) {
	props := timingProps(raw)

	var t timingEntry
	if w, ok := resolveField(props, widthResolvers); ok {
		t.width = int(w)
	}
	if h, ok := resolveField(props, heightResolvers); ok {
		t.height = int(h)
	}
	if r, ok := resolveField(props, refreshResolvers); ok {
		t.refresh = r
	}

	// Color list may sit next to the geometry or at the entry top level.
	for _, container := range []map[string]any{raw, props} {
		if t.colors != nil {
			break
		}
		for _, k := range colorListKeys {
			if list, ok := container[k].([]any); ok {
				for _, e := range list {
					if m, ok := e.(map[string]any); ok {
						t.colors = append(t.colors, m)
					}
				}
				break
			}
		}
	}

	if t.width == 0 && t.height == 0 && t.colors == nil {
		return timingEntry{}, false
	}
	return t, true
}

// timingEntries extracts every parseable timing record from a node.
func timingEntries(props map[string]any) []timingEntry {
	var list []any
	for _, k := range timingListKeys {
		if l, ok := props[k].([]any); ok {
			list = l
			break
		}
	}
	var out []timingEntry
	for _, e := range list {
		raw, ok := e.(map[string]any)
		if !ok {
			continue
		}
		if t, ok := parseTimingEntry(raw); ok {
			out = append(out, t)
		}
	}
	return out
}

// selectTimings picks the entries whose color modes describe the current
// link: exact resolution+refresh match first, then resolution only, then
// every entry as a last resort.
func selectTimings(entries []timingEntry, ref entity.DisplayRef) []timingEntry {
	var exact, byRes []timingEntry
	for _, t := range entries {
		if t.width != ref.WidthPx || t.height != ref.HeightPx {
			continue
		}
		byRes = append(byRes, t)
		if t.refresh > 0 && ref.RefreshHz > 0 {
			d := t.refresh - ref.RefreshHz
			if d < 0 {
				d = -d
			}
			if d <= refreshToleranceHz {
				exact = append(exact, t)
			}
		}
	}
	if len(exact) > 0 {
		return exact
	}
	if len(byRes) > 0 {
		return byRes
	}
	return entries
}
