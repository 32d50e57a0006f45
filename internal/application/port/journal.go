package port

import (
	"context"
	"time"

	"github.com/nfries/dispmode/internal/domain/entity"
)

// ApplyRecord is one committed link-configuration change.
type ApplyRecord struct {
	ID          int64
	DisplayUUID string
	DisplayID   uint32
	Mode        entity.ColorMode
	Instant     bool // false when only the forced reconnect succeeded
	AppliedAt   time.Time
}

// ApplyJournal keeps an audit trail of applied changes. A nil journal is
// valid for library users; the orchestrator treats it as a no-op.
type ApplyJournal interface {
	Record(ctx context.Context, rec ApplyRecord) error
	Recent(ctx context.Context, limit int) ([]ApplyRecord, error)
}
