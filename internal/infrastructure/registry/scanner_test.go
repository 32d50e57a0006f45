package registry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nfries/dispmode/internal/application/port"
	"github.com/nfries/dispmode/internal/domain/entity"
)

type stubGateway struct {
	nodes map[string][]*port.RegistryNode
	err   error
}

func (s stubGateway) ServiceNodes(_ context.Context, class string) ([]*port.RegistryNode, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.nodes[class], nil
}

func colorEntry(encoding, depth int) map[string]any {
	return map[string]any{"PixelEncoding": encoding, "BitsPerComponent": depth}
}

func timingNode(uuidProps map[string]any, timings []any) *port.RegistryNode {
	props := map[string]any{"TimingElements": timings}
	for k, v := range uuidProps {
		props[k] = v
	}
	return &port.RegistryNode{Class: "AppleCLCD2", Properties: props}
}

func extRef() entity.DisplayRef {
	return entity.DisplayRef{
		ID: 2, VendorID: 0x10AC, ProductID: 0x4065,
		WidthPx: 1920, HeightPx: 1080, RefreshHz: 60,
	}
}

func TestScanner_AvailableModes_SelectsMatchingTiming(t *testing.T) {
	node := timingNode(map[string]any{"DisplayVendorID": 0x10AC, "DisplayProductID": 0x4065}, []any{
		map[string]any{
			"HorizontalPixels": 1920, "VerticalPixels": 1080, "RefreshRate": 60,
			"ColorElements": []any{colorEntry(0, 8), colorEntry(1, 8)},
		},
		map[string]any{
			"HorizontalPixels": 3840, "VerticalPixels": 2160, "RefreshRate": 30,
			"ColorElements": []any{colorEntry(3, 12)},
		},
	})
	s := NewScanner(stubGateway{nodes: map[string][]*port.RegistryNode{"AppleCLCD2": {node}}})

	modes, err := s.AvailableModes(context.Background(), extRef())
	require.NoError(t, err)
	require.Len(t, modes, 2, "only the 1080p timing's entries should be read")
	assert.Equal(t, entity.EncodingRGB444, modes[0].Encoding)
	assert.Equal(t, entity.EncodingYCbCr444, modes[1].Encoding)
}

func TestScanner_AvailableModes_RefreshToleranceOneHz(t *testing.T) {
	node := timingNode(map[string]any{"DisplayVendorID": 0x10AC, "DisplayProductID": 0x4065}, []any{
		map[string]any{
			// 59.94 Hz timing must match a display reporting 60 Hz.
			"HorizontalPixels": 1920, "VerticalPixels": 1080, "RefreshRate": 59.94,
			"ColorElements": []any{colorEntry(0, 10)},
		},
	})
	s := NewScanner(stubGateway{nodes: map[string][]*port.RegistryNode{"AppleCLCD2": {node}}})

	modes, err := s.AvailableModes(context.Background(), extRef())
	require.NoError(t, err)
	require.Len(t, modes, 1)
	assert.Equal(t, entity.Depth10, modes[0].Depth)
}

func TestScanner_AvailableModes_ResolutionOnlyFallback(t *testing.T) {
	node := timingNode(map[string]any{"DisplayVendorID": 0x10AC, "DisplayProductID": 0x4065}, []any{
		map[string]any{
			// Refresh far off: resolution-only matching has to kick in.
			"HorizontalPixels": 1920, "VerticalPixels": 1080, "RefreshRate": 144,
			"ColorElements": []any{colorEntry(0, 8)},
		},
		map[string]any{
			"HorizontalPixels": 1280, "VerticalPixels": 720, "RefreshRate": 60,
			"ColorElements": []any{colorEntry(1, 6)},
		},
	})
	s := NewScanner(stubGateway{nodes: map[string][]*port.RegistryNode{"AppleCLCD2": {node}}})

	modes, err := s.AvailableModes(context.Background(), extRef())
	require.NoError(t, err)
	require.Len(t, modes, 1)
	assert.Equal(t, entity.EncodingRGB444, modes[0].Encoding)
}

func TestScanner_AvailableModes_AggregatesWhenNothingMatches(t *testing.T) {
	node := timingNode(map[string]any{"DisplayVendorID": 0x10AC, "DisplayProductID": 0x4065}, []any{
		map[string]any{
			"HorizontalPixels": 2560, "VerticalPixels": 1440, "RefreshRate": 60,
			"ColorElements": []any{colorEntry(0, 8)},
		},
		map[string]any{
			"HorizontalPixels": 1280, "VerticalPixels": 720, "RefreshRate": 60,
			"ColorElements": []any{colorEntry(1, 10)},
		},
	})
	ref := extRef() // 1920x1080, matches neither
	s := NewScanner(stubGateway{nodes: map[string][]*port.RegistryNode{"AppleCLCD2": {node}}})

	modes, err := s.AvailableModes(context.Background(), ref)
	require.NoError(t, err)
	assert.Len(t, modes, 2, "last resort aggregates color modes across all timings")
}

func TestScanner_AvailableModes_Deduplicates(t *testing.T) {
	node := timingNode(map[string]any{"DisplayVendorID": 0x10AC, "DisplayProductID": 0x4065}, []any{
		map[string]any{
			"HorizontalPixels": 1920, "VerticalPixels": 1080, "RefreshRate": 60,
			"ColorElements": []any{
				colorEntry(1, 8),
				colorEntry(0, 8),
				// Same logical mode as the first entry, legacy depth scheme.
				map[string]any{"PixelEncoding": 1, "Depth": 2},
			},
		},
	})
	s := NewScanner(stubGateway{nodes: map[string][]*port.RegistryNode{"AppleCLCD2": {node}}})

	modes, err := s.AvailableModes(context.Background(), extRef())
	require.NoError(t, err)
	require.Len(t, modes, 2)
	assert.Equal(t, entity.EncodingYCbCr444, modes[0].Encoding, "first-seen order preserved")
	assert.Equal(t, entity.EncodingRGB444, modes[1].Encoding)
}

func TestScanner_AvailableModes_NoNodeIsEmptyNotError(t *testing.T) {
	s := NewScanner(stubGateway{})
	modes, err := s.AvailableModes(context.Background(), extRef())
	assert.NoError(t, err)
	assert.Empty(t, modes)
}

func TestScanner_AvailableModes_GatewayErrorsSkipped(t *testing.T) {
	// A class that errors is skipped, not fatal: absence of information.
	s := NewScanner(stubGateway{err: errors.New("ioreg exploded")})
	modes, err := s.AvailableModes(context.Background(), extRef())
	assert.NoError(t, err)
	assert.Empty(t, modes)
}

func TestScanner_AvailableModes_NoParseableTimings(t *testing.T) {
	node := &port.RegistryNode{Class: "AppleCLCD2", Properties: map[string]any{
		"DisplayVendorID": 0x10AC, "DisplayProductID": 0x4065,
	}}
	s := NewScanner(stubGateway{nodes: map[string][]*port.RegistryNode{"AppleCLCD2": {node}}})
	modes, err := s.AvailableModes(context.Background(), extRef())
	assert.NoError(t, err)
	assert.Empty(t, modes)
}

func TestScanner_NodeResolution_ClassPriorityAndMatchers(t *testing.T) {
	// The right node sits in a lower-priority class and only matches by
	// resolution pattern; identity properties are absent everywhere.
	wrong := timingNode(nil, []any{
		map[string]any{"HorizontalPixels": 2560, "VerticalPixels": 1440, "RefreshRate": 60,
			"ColorElements": []any{colorEntry(0, 8)}},
	})
	right := &port.RegistryNode{Class: "DCPAVServiceProxy", Properties: map[string]any{
		"TimingElements": []any{
			map[string]any{"HorizontalPixels": 1920, "VerticalPixels": 1080, "RefreshRate": 60,
				"ColorElements": []any{colorEntry(1, 10)}},
		},
	}}
	ref := entity.DisplayRef{ID: 0, WidthPx: 1920, HeightPx: 1080, RefreshHz: 60}
	s := NewScanner(stubGateway{nodes: map[string][]*port.RegistryNode{
		"AppleCLCD2":        {wrong},
		"DCPAVServiceProxy": {right},
	}})

	modes, err := s.AvailableModes(context.Background(), ref)
	require.NoError(t, err)
	require.Len(t, modes, 1)
	assert.Equal(t, entity.Depth10, modes[0].Depth)
}

func TestScanner_NodeResolution_NestedIdentityAndChildren(t *testing.T) {
	child := timingNode(nil, []any{
		map[string]any{"HorizontalPixels": 1920, "VerticalPixels": 1080, "RefreshRate": 60,
			"ColorElements": []any{colorEntry(0, 8)}},
	})
	child.Properties["DisplayAttributes"] = map[string]any{
		"ProductAttributes": map[string]any{"LegacyManufacturerID": 0x10AC, "ProductID": 0x4065},
	}
	parent := &port.RegistryNode{Class: "AppleCLCD2", Properties: map[string]any{}, Children: []*port.RegistryNode{child}}

	s := NewScanner(stubGateway{nodes: map[string][]*port.RegistryNode{"AppleCLCD2": {parent}}})
	modes, err := s.AvailableModes(context.Background(), extRef())
	require.NoError(t, err)
	assert.Len(t, modes, 1)
}

func TestScanner_NodeResolution_RegistryIDInNestedContainer(t *testing.T) {
	// The top-level properties resolve a different ID key; the display's
	// actual ID sits inside the attribute container and must still match.
	node := timingNode(map[string]any{"IOMFBDisplayID": 99}, []any{
		map[string]any{"HorizontalPixels": 1920, "VerticalPixels": 1080, "RefreshRate": 60,
			"ColorElements": []any{colorEntry(0, 10)}},
	})
	node.Properties["DisplayAttributes"] = map[string]any{"DisplayID": 2}

	ref := entity.DisplayRef{ID: 2} // no identity or resolution fallback data
	s := NewScanner(stubGateway{nodes: map[string][]*port.RegistryNode{"AppleCLCD2": {node}}})

	modes, err := s.AvailableModes(context.Background(), ref)
	require.NoError(t, err)
	require.Len(t, modes, 1)
	assert.Equal(t, entity.Depth10, modes[0].Depth)
}

func TestScanner_CurrentMode(t *testing.T) {
	node := timingNode(map[string]any{"DisplayVendorID": 0x10AC, "DisplayProductID": 0x4065}, []any{})
	node.Properties["CurrentColorElement"] = map[string]any{
		"PixelEncoding": 1, "BitsPerComponent": 10, "Range": 0, "EOTF": 2,
	}
	s := NewScanner(stubGateway{nodes: map[string][]*port.RegistryNode{"AppleCLCD2": {node}}})

	mode, err := s.CurrentMode(context.Background(), extRef())
	require.NoError(t, err)
	require.NotNil(t, mode)
	assert.Equal(t, entity.ColorMode{
		Encoding: entity.EncodingYCbCr444,
		Depth:    entity.Depth10,
		Range:    entity.RangeLimited,
		Dynamic:  entity.DynamicRangeHDR10,
	}, *mode)
}

func TestScanner_CurrentMode_FlatProperties(t *testing.T) {
	node := timingNode(map[string]any{"DisplayVendorID": 0x10AC, "DisplayProductID": 0x4065}, []any{})
	node.Properties["PixelEncoding"] = 0
	node.Properties["BitsPerComponent"] = 8
	s := NewScanner(stubGateway{nodes: map[string][]*port.RegistryNode{"AppleCLCD2": {node}}})

	mode, err := s.CurrentMode(context.Background(), extRef())
	require.NoError(t, err)
	require.NotNil(t, mode)
	assert.Equal(t, entity.EncodingRGB444, mode.Encoding)
}

func TestScanner_CurrentMode_NoData(t *testing.T) {
	node := timingNode(map[string]any{"DisplayVendorID": 0x10AC, "DisplayProductID": 0x4065}, []any{})
	s := NewScanner(stubGateway{nodes: map[string][]*port.RegistryNode{"AppleCLCD2": {node}}})

	mode, err := s.CurrentMode(context.Background(), extRef())
	assert.NoError(t, err)
	assert.Nil(t, mode)
}
