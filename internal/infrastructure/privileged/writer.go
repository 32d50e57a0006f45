package privileged

import (
	"context"
	"errors"
	"os"

	"howett.net/plist"

	"github.com/nfries/dispmode/internal/application/port"
	"github.com/nfries/dispmode/internal/infrastructure/store"
	"github.com/nfries/dispmode/internal/logging"
)

// Writer implements port.PrivilegedWriter: serialize to a private temp
// file, acquire the session grant, verify the concurrent-modification
// precondition, then copy the temp file over the protected path. The temp
// file is removed on every exit path.
type Writer struct {
	session *AuthSession
	copier  port.PrivilegedCopier
	path    string
}

var _ port.PrivilegedWriter = (*Writer)(nil)

// NewWriter creates a writer committing to path ("" for the system
// default store location).
func NewWriter(session *AuthSession, copier port.PrivilegedCopier, path string) *Writer {
	if path == "" {
		path = store.DefaultPath
	}
	return &Writer{session: session, copier: copier, path: path}
}

// Write commits doc. expected is the checksum captured when the document
// was read; if the file on disk no longer matches, Write fails with
// ErrConcurrentModification instead of silently overwriting another
// writer's change. A zero checksum skips the precondition.
func (w *Writer) Write(ctx context.Context, doc map[string]any, expected port.StoreChecksum) error {
	ctx = logging.WithComponent(ctx, "privileged-writer")
	log := logging.FromContext(ctx)

	raw, err := plist.Marshal(doc, plist.BinaryFormat)
	if err != nil {
		return &port.WriteError{Path: w.path, Err: err}
	}

	tmp, err := os.CreateTemp("", "dispmode-displays-*.plist")
	if err != nil {
		return &port.WriteError{Path: w.path, Err: err}
	}
	tmpPath := tmp.Name()
	defer func() {
		// Cleanup is unconditional; the candidate document must not
		// linger in the temp dir after a failure.
		_ = os.Remove(tmpPath)
	}()

	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		return &port.WriteError{Path: w.path, Err: err}
	}
	if _, err := tmp.Write(raw); err != nil {
		_ = tmp.Close()
		return &port.WriteError{Path: w.path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		return &port.WriteError{Path: w.path, Err: err}
	}

	if err := w.session.Acquire(ctx); err != nil {
		return err
	}

	if expected != (port.StoreChecksum{}) {
		cur, err := store.FileChecksum(w.path)
		if err == nil && cur != expected {
			return port.ErrConcurrentModification
		}
	}

	if err := w.copier.Copy(ctx, tmpPath, w.path); err != nil {
		if errors.Is(err, port.ErrAuthCancelled) || errors.Is(err, port.ErrAuthDenied) {
			return err
		}
		return &port.WriteError{Path: w.path, Err: err}
	}

	log.Info().Str("path", w.path).Msg("persisted store written")
	return nil
}
