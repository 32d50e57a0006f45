package port

import (
	"context"

	"github.com/nfries/dispmode/internal/domain/entity"
)

// StoreChecksum fingerprints the raw bytes of the persisted store file at
// read time. It backs the concurrent-modification precondition on writes.
type StoreChecksum [32]byte

// StoreSnapshot is one full read of the persisted configuration document.
// Document holds the decoded property list; Checksum fingerprints the raw
// bytes it was decoded from.
type StoreSnapshot struct {
	Document map[string]any
	Checksum StoreChecksum
}

// EntryLocation names where one display's record lives inside the
// document: section key, index into the Configs array, index into the
// DisplayConfig array. Never persisted; array order may change between
// reads, so it is recomputed on every access.
type EntryLocation struct {
	Section       string
	ConfigIndex   int
	DisplayIndex  int
	MatchedByUUID bool
}

// StoreAccessor reads the persisted configuration store and derives
// modified copies of it. Implementations never mutate a caller's snapshot.
type StoreAccessor interface {
	// Read decodes the whole store file.
	Read(ctx context.Context) (*StoreSnapshot, error)

	// ReadLinkDescription returns the display's persisted link record, or
	// nil when the display has no locatable entry.
	ReadLinkDescription(ctx context.Context, ref entity.DisplayRef) (*entity.LinkDescription, error)

	// BuildModified deep-copies snap and writes desc into every section
	// holding a record for ref. Returns ErrEntryNotFound (wrapped in
	// StoreBuildError by callers) when no section matches.
	BuildModified(snap *StoreSnapshot, ref entity.DisplayRef, desc entity.LinkDescription) (map[string]any, error)
}

// PrivilegedWriter commits a full replacement document to the protected
// store location. expected is the checksum captured when the document was
// read; a mismatch at write time fails with ErrConcurrentModification.
type PrivilegedWriter interface {
	Write(ctx context.Context, doc map[string]any, expected StoreChecksum) error
}
