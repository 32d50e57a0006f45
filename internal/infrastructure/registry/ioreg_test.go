package registry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"howett.net/plist"
)

type fakeIOReg struct {
	out  []byte
	err  error
	name string
	args []string
}

func (f *fakeIOReg) Run(_ context.Context, name string, args ...string) ([]byte, error) {
	f.name = name
	f.args = args
	return f.out, f.err
}

func archived(t *testing.T, entries []any) []byte {
	t.Helper()
	raw, err := plist.Marshal(entries, plist.XMLFormat)
	require.NoError(t, err)
	return raw
}

func TestIORegGateway_ServiceNodes(t *testing.T) {
	out := archived(t, []any{
		map[string]any{
			"IOObjectClass":   "AppleCLCD2",
			"DisplayVendorID": 4268,
			"IORegistryEntryChildren": []any{
				map[string]any{
					"IOObjectClass": "IOMobileFramebufferShim",
					"CurrentColorElement": map[string]any{
						"PixelEncoding": 0,
					},
				},
				map[string]any{
					// No class of its own: inherits the parent's.
					"SomeProp": 1,
				},
			},
		},
	})
	r := &fakeIOReg{out: out}
	g := NewIORegGateway(r, "")

	nodes, err := g.ServiceNodes(context.Background(), "AppleCLCD2")
	require.NoError(t, err)

	assert.Equal(t, "ioreg", r.name)
	assert.Equal(t, []string{"-a", "-r", "-w", "0", "-c", "AppleCLCD2"}, r.args)

	require.Len(t, nodes, 1)
	n := nodes[0]
	assert.Equal(t, "AppleCLCD2", n.Class)
	require.Len(t, n.Children, 2)
	assert.Equal(t, "IOMobileFramebufferShim", n.Children[0].Class)
	assert.Equal(t, "AppleCLCD2", n.Children[1].Class)
	v, ok := n.Children[0].Prop("CurrentColorElement")
	assert.True(t, ok)
	assert.NotNil(t, v)
}

func TestIORegGateway_EmptyOutput(t *testing.T) {
	g := NewIORegGateway(&fakeIOReg{}, "")
	nodes, err := g.ServiceNodes(context.Background(), "AppleCLCD2")
	assert.NoError(t, err)
	assert.Nil(t, nodes)
}

func TestIORegGateway_ToolFailure(t *testing.T) {
	g := NewIORegGateway(&fakeIOReg{err: errors.New("exit status 1")}, "")
	_, err := g.ServiceNodes(context.Background(), "AppleCLCD2")
	assert.Error(t, err)
}

func TestIORegGateway_MalformedOutput(t *testing.T) {
	g := NewIORegGateway(&fakeIOReg{out: []byte("not a plist")}, "")
	_, err := g.ServiceNodes(context.Background(), "AppleCLCD2")
	assert.Error(t, err)
}
