// Package registry discovers supported link configurations by walking the
// live hardware-description tree. Key names and value encodings in that
// tree vary across silicon generations, so every logical field is read
// through an ordered list of resolvers instead of a fixed schema.
package registry

import (
	"strconv"
	"strings"

	"github.com/nfries/dispmode/internal/domain/entity"
)

// resolver tries one key/interpretation combination for a logical field.
// Lists of resolvers are data: a new hardware quirk is one more entry, not
// another branch.
type resolver[T any] struct {
	key   string
	parse func(any) (T, bool)
}

func resolveField[T any](props map[string]any, rs []resolver[T]) (T, bool) {
	for _, r := range rs {
		if raw, ok := props[r.key]; ok {
			if v, ok := r.parse(raw); ok {
				return v, true
			}
		}
	}
	var zero T
	return zero, false
}

// asInt coerces the numeric shapes plist decoding produces.
func asInt(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint32:
		return int64(n), true
	case uint64:
		return int64(n), true
	case float32:
		return int64(n), true
	case float64:
		return int64(n), true
	case string:
		i, err := strconv.ParseInt(strings.TrimSpace(n), 10, 64)
		return i, err == nil
	}
	return 0, false
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		i, ok := asInt(v)
		return float64(i), ok
	}
}

// parseEncodingNumber maps the sequential-ID scheme used by current
// drivers: 0=RGB, 1=YCbCr 4:4:4, 2=YCbCr 4:2:2, 3=YCbCr 4:2:0.
func parseEncodingNumber(v any) (entity.PixelEncoding, bool) {
	n, ok := asInt(v)
	if !ok {
		return "", false
	}
	switch n {
	case 0:
		return entity.EncodingRGB444, true
	case 1:
		return entity.EncodingYCbCr444, true
	case 2:
		return entity.EncodingYCbCr422, true
	case 3:
		return entity.EncodingYCbCr420, true
	}
	return "", false
}

// parseEncodingString handles the spelled-out form older drivers report.
func parseEncodingString(v any) (entity.PixelEncoding, bool) {
	s, ok := v.(string)
	if !ok {
		return "", false
	}
	s = strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), ":", ""))
	switch {
	case strings.Contains(s, "rgb"):
		return entity.EncodingRGB444, true
	case strings.Contains(s, "420"):
		return entity.EncodingYCbCr420, true
	case strings.Contains(s, "422"):
		return entity.EncodingYCbCr422, true
	case strings.Contains(s, "444"):
		return entity.EncodingYCbCr444, true
	}
	return "", false
}

var encodingResolvers = []resolver[entity.PixelEncoding]{
	{key: "PixelEncoding", parse: parseEncodingNumber},
	{key: "PixelEncoding", parse: parseEncodingString},
	{key: "Encoding", parse: parseEncodingNumber},
	{key: "Encoding", parse: parseEncodingString},
	{key: "pecn", parse: parseEncodingNumber}, // legacy four-char key
}

// parseDepth resolves the bit-depth collision between the two known
// schemes. Numeric-literal interpretation (6/8/10/12) is tried before the
// bitmask one (1/2/4/8 for 6/8/10/12-bit): the value 8 is valid in both
// and means 8-bit, not 12-bit.
func parseDepth(v any) (entity.BitDepth, bool) {
	n, ok := asInt(v)
	if !ok {
		return 0, false
	}
	if entity.ValidBitDepth(entity.BitDepth(n)) {
		return entity.BitDepth(n), true
	}
	switch n {
	case 1:
		return entity.Depth6, true
	case 2:
		return entity.Depth8, true
	case 4:
		return entity.Depth10, true
	}
	return 0, false
}

var depthResolvers = []resolver[entity.BitDepth]{
	{key: "BitsPerComponent", parse: parseDepth},
	{key: "BitDepth", parse: parseDepth},
	{key: "Depth", parse: parseDepth},
	{key: "dpth", parse: parseDepth},
}

func parseRangeNumber(v any) (entity.ColorRange, bool) {
	n, ok := asInt(v)
	if !ok {
		return "", false
	}
	switch n {
	case 0:
		return entity.RangeLimited, true
	case 1:
		return entity.RangeFull, true
	}
	return "", false
}

func parseRangeString(v any) (entity.ColorRange, bool) {
	s, ok := v.(string)
	if !ok {
		return "", false
	}
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "limited", "reduced":
		return entity.RangeLimited, true
	case "full":
		return entity.RangeFull, true
	}
	return "", false
}

var rangeResolvers = []resolver[entity.ColorRange]{
	{key: "Range", parse: parseRangeNumber},
	{key: "Range", parse: parseRangeString},
	{key: "ColorRange", parse: parseRangeNumber},
	{key: "ColorRange", parse: parseRangeString},
	{key: "rang", parse: parseRangeNumber},
}

// parseDynamicNumber follows the EOTF numbering of the persisted store:
// 0=SDR, 2=PQ. Other values are unrecognized rather than defaulted here;
// defaulting is the caller's job.
func parseDynamicNumber(v any) (entity.DynamicRange, bool) {
	n, ok := asInt(v)
	if !ok {
		return "", false
	}
	switch n {
	case entity.WireEOTFSDR:
		return entity.DynamicRangeSDR, true
	case entity.WireEOTFPQ:
		return entity.DynamicRangeHDR10, true
	}
	return "", false
}

func parseDynamicString(v any) (entity.DynamicRange, bool) {
	s, ok := v.(string)
	if !ok {
		return "", false
	}
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sdr":
		return entity.DynamicRangeSDR, true
	case "hdr", "hdr10", "pq":
		return entity.DynamicRangeHDR10, true
	}
	return "", false
}

var dynamicResolvers = []resolver[entity.DynamicRange]{
	{key: "EOTF", parse: parseDynamicNumber},
	{key: "DynamicRange", parse: parseDynamicNumber},
	{key: "DynamicRange", parse: parseDynamicString},
	{key: "eotf", parse: parseDynamicNumber},
}

// parseColorEntry turns one color-mode record into a ColorMode. Encoding
// and depth must resolve; the record is skipped otherwise. A missing color
// range is a known omission on one hardware generation and is inferred:
// RGB+SDR defaults to full range, everything else to limited.
func parseColorEntry(props map[string]any) (entity.ColorMode, bool) {
	enc, ok := resolveField(props, encodingResolvers)
	if !ok {
		return entity.ColorMode{}, false
	}
	depth, ok := resolveField(props, depthResolvers)
	if !ok {
		return entity.ColorMode{}, false
	}
	dyn, ok := resolveField(props, dynamicResolvers)
	if !ok {
		dyn = entity.DynamicRangeSDR
	}
	rng, ok := resolveField(props, rangeResolvers)
	if !ok {
		if enc.IsRGB() && dyn == entity.DynamicRangeSDR {
			rng = entity.RangeFull
		} else {
			rng = entity.RangeLimited
		}
	}
	return entity.ColorMode{Encoding: enc, Depth: depth, Range: rng, Dynamic: dyn}, true
}
