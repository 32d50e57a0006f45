package entity

// Wire values used inside the persisted LinkDescription record. The disk
// format only distinguishes RGB from YCbCr; the specific subsampling
// variant is not representable and is lost on a round trip.
const (
	WireEncodingRGB   = 0
	WireEncodingYCbCr = 1

	WireRangeLimited = 0
	WireRangeFull    = 1

	WireEOTFSDR = 0
	WireEOTFPQ  = 2
)

// LinkDescription is the persisted shadow of a ColorMode, matching the
// on-disk record byte for byte. Field names mirror the plist keys.
type LinkDescription struct {
	PixelEncoding int `plist:"PixelEncoding"`
	Range         int `plist:"Range"`
	BitDepth      int `plist:"BitDepth"`
	EOTF          int `plist:"EOTF"`
}

// EncodeLinkDescription narrows a ColorMode to its persisted form.
func EncodeLinkDescription(m ColorMode) LinkDescription {
	d := LinkDescription{
		PixelEncoding: WireEncodingYCbCr,
		Range:         WireRangeLimited,
		BitDepth:      int(m.Depth),
		EOTF:          WireEOTFSDR,
	}
	if m.Encoding.IsRGB() {
		d.PixelEncoding = WireEncodingRGB
	}
	if m.Range == RangeFull {
		d.Range = WireRangeFull
	}
	if m.Dynamic == DynamicRangeHDR10 {
		d.EOTF = WireEOTFPQ
	}
	return d
}

// ColorMode widens a persisted record back into a ColorMode. The disk
// format cannot name a subsampling variant, so any YCbCr record decodes
// as 4:4:4. Unknown EOTF values decode as SDR, unknown bit depths as 8.
func (d LinkDescription) ColorMode() ColorMode {
	m := ColorMode{
		Encoding: EncodingRGB444,
		Depth:    BitDepth(d.BitDepth),
		Range:    RangeLimited,
		Dynamic:  DynamicRangeSDR,
	}
	if d.PixelEncoding != WireEncodingRGB {
		m.Encoding = EncodingYCbCr444
	}
	if d.Range == WireRangeFull {
		m.Range = RangeFull
	}
	if d.EOTF == WireEOTFPQ {
		m.Dynamic = DynamicRangeHDR10
	}
	if !ValidBitDepth(m.Depth) {
		m.Depth = Depth8
	}
	return m
}
