// Package store reads and derives modified copies of the systemwide
// display-configuration property list. The accessor is read-only; commits
// go through the privileged writer.
package store

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/crypto/blake2b"
	"howett.net/plist"

	"github.com/nfries/dispmode/internal/application/port"
	"github.com/nfries/dispmode/internal/domain/entity"
	"github.com/nfries/dispmode/internal/logging"
)

// DefaultPath is where the display server keeps the systemwide document.
const DefaultPath = "/Library/Preferences/com.apple.windowserver.displays.plist"

// Document keys. The two top-level sections are checked in this order.
var sectionKeys = []string{"DisplayAnyUserSets", "DisplaySets"}

const (
	configsKey       = "Configs"
	displayConfigKey = "DisplayConfig"
	uuidKey          = "UUID"
	linkDescKey      = "LinkDescription"
)

// Accessor implements port.StoreAccessor against a plist file on disk.
type Accessor struct {
	path string
}

var _ port.StoreAccessor = (*Accessor)(nil)

// NewAccessor creates an accessor for the given store file ("" for the
// system default).
func NewAccessor(path string) *Accessor {
	if path == "" {
		path = DefaultPath
	}
	return &Accessor{path: path}
}

// Path returns the store file location.
func (a *Accessor) Path() string { return a.path }

// Read decodes the whole store file and fingerprints its raw bytes.
func (a *Accessor) Read(ctx context.Context) (*port.StoreSnapshot, error) {
	raw, err := os.ReadFile(a.path)
	if err != nil {
		return nil, &port.StoreReadError{Path: a.path, Err: err}
	}
	var doc map[string]any
	if _, err := plist.Unmarshal(raw, &doc); err != nil {
		return nil, &port.StoreReadError{Path: a.path, Err: fmt.Errorf("decode plist: %w", err)}
	}
	snap := &port.StoreSnapshot{
		Document: doc,
		Checksum: blake2b.Sum256(raw),
	}
	logging.FromContext(ctx).Debug().Str("path", a.path).Msg("read persisted store")
	return snap, nil
}

// FileChecksum fingerprints the store file as it currently sits on disk.
// The privileged writer compares it against the read-time checksum before
// replacing the file.
func FileChecksum(path string) (port.StoreChecksum, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return port.StoreChecksum{}, err
	}
	return blake2b.Sum256(raw), nil
}

// ReadLinkDescription returns the display's persisted link record, or nil
// when the display has no locatable entry.
func (a *Accessor) ReadLinkDescription(ctx context.Context, ref entity.DisplayRef) (*entity.LinkDescription, error) {
	snap, err := a.Read(ctx)
	if err != nil {
		return nil, err
	}
	loc := FindDisplayEntry(snap.Document, ref)
	if loc == nil {
		return nil, nil
	}
	rec := entryAt(snap.Document, *loc)
	if rec == nil {
		return nil, nil
	}
	link, ok := rec[linkDescKey].(map[string]any)
	if !ok {
		return nil, nil
	}
	return decodeLinkDescription(link), nil
}

// decodeLinkDescription reads the four wire fields, tolerating the
// numeric types plist decoding produces. Missing fields keep their zero
// wire value (RGB, limited, SDR).
func decodeLinkDescription(m map[string]any) *entity.LinkDescription {
	var d entity.LinkDescription
	if v, ok := asInt(m["PixelEncoding"]); ok {
		d.PixelEncoding = int(v)
	}
	if v, ok := asInt(m["Range"]); ok {
		d.Range = int(v)
	}
	if v, ok := asInt(m["BitDepth"]); ok {
		d.BitDepth = int(v)
	}
	if v, ok := asInt(m["EOTF"]); ok {
		d.EOTF = int(v)
	}
	return &d
}

func asInt(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int64:
		return n, true
	case uint64:
		return int64(n), true
	case float64:
		return int64(n), true
	}
	return 0, false
}
