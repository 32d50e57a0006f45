// Package entity contains pure domain value types for dispmode.
package entity

import "fmt"

// PixelEncoding is how color samples are laid out on the display link.
type PixelEncoding string

const (
	// EncodingRGB444 is full-resolution RGB.
	EncodingRGB444 PixelEncoding = "rgb444"

	// EncodingYCbCr444 is component video without chroma subsampling.
	EncodingYCbCr444 PixelEncoding = "ycbcr444"

	// EncodingYCbCr422 is component video with 2:1 horizontal chroma subsampling.
	EncodingYCbCr422 PixelEncoding = "ycbcr422"

	// EncodingYCbCr420 is component video with 2:1 chroma subsampling in both axes.
	EncodingYCbCr420 PixelEncoding = "ycbcr420"
)

// IsRGB reports whether the encoding carries RGB rather than component video.
func (e PixelEncoding) IsRGB() bool {
	return e == EncodingRGB444
}

// ColorRange is the quantization range of the link signal.
type ColorRange string

const (
	// RangeLimited is the reduced broadcast-safe range (16-235 at 8 bit).
	RangeLimited ColorRange = "limited"

	// RangeFull uses every code value.
	RangeFull ColorRange = "full"
)

// DynamicRange is the transfer-function family of the link signal.
type DynamicRange string

const (
	// DynamicRangeSDR is the standard gamma transfer.
	DynamicRangeSDR DynamicRange = "sdr"

	// DynamicRangeHDR10 is the PQ transfer with static HDR metadata.
	DynamicRangeHDR10 DynamicRange = "hdr10"
)

// BitDepth is the number of bits per color component on the link.
type BitDepth int

// Link bit depths seen in the wild. There is no "unknown" member; sources
// that fail to parse never produce a ColorMode at all.
const (
	Depth6  BitDepth = 6
	Depth8  BitDepth = 8
	Depth10 BitDepth = 10
	Depth12 BitDepth = 12
)

// ValidBitDepth reports whether d is one of the four link bit depths.
func ValidBitDepth(d BitDepth) bool {
	switch d {
	case Depth6, Depth8, Depth10, Depth12:
		return true
	}
	return false
}

// ColorMode is one complete link configuration. It is a pure value:
// comparable, usable as a map key, and carrying no identity beyond its
// four fields. All four fields are always populated.
type ColorMode struct {
	Encoding PixelEncoding
	Depth    BitDepth
	Range    ColorRange
	Dynamic  DynamicRange
}

// Valid reports whether every field holds a known member.
func (m ColorMode) Valid() bool {
	switch m.Encoding {
	case EncodingRGB444, EncodingYCbCr444, EncodingYCbCr422, EncodingYCbCr420:
	default:
		return false
	}
	switch m.Range {
	case RangeLimited, RangeFull:
	default:
		return false
	}
	switch m.Dynamic {
	case DynamicRangeSDR, DynamicRangeHDR10:
	default:
		return false
	}
	return ValidBitDepth(m.Depth)
}

// String renders the mode the way it is shown to users, e.g.
// "RGB 4:4:4 10-bit full sdr".
func (m ColorMode) String() string {
	name := map[PixelEncoding]string{
		EncodingRGB444:   "RGB 4:4:4",
		EncodingYCbCr444: "YCbCr 4:4:4",
		EncodingYCbCr422: "YCbCr 4:2:2",
		EncodingYCbCr420: "YCbCr 4:2:0",
	}[m.Encoding]
	if name == "" {
		name = string(m.Encoding)
	}
	return fmt.Sprintf("%s %d-bit %s %s", name, m.Depth, m.Range, m.Dynamic)
}

// DedupColorModes removes repeated values while preserving first-seen order.
func DedupColorModes(modes []ColorMode) []ColorMode {
	if len(modes) == 0 {
		return modes
	}
	seen := make(map[ColorMode]struct{}, len(modes))
	out := make([]ColorMode, 0, len(modes))
	for _, m := range modes {
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		out = append(out, m)
	}
	return out
}
