// Package journal keeps an audit trail of applied link-configuration
// changes in a local SQLite database.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/ncruces/go-sqlite3/driver" // SQLite driver (pure Go)
	_ "github.com/ncruces/go-sqlite3/embed"  // Embed SQLite WASM binary

	"github.com/nfries/dispmode/internal/application/port"
	"github.com/nfries/dispmode/internal/domain/entity"
	"github.com/nfries/dispmode/internal/logging"
)

const schema = `
CREATE TABLE IF NOT EXISTS apply_history (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	display_uuid  TEXT    NOT NULL DEFAULT '',
	display_id    INTEGER NOT NULL DEFAULT 0,
	encoding      TEXT    NOT NULL,
	bit_depth     INTEGER NOT NULL,
	color_range   TEXT    NOT NULL,
	dynamic_range TEXT    NOT NULL,
	instant       INTEGER NOT NULL,
	applied_at    INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_apply_history_applied_at ON apply_history(applied_at DESC);
`

// Journal implements port.ApplyJournal on SQLite.
type Journal struct {
	db *sql.DB
}

var _ port.ApplyJournal = (*Journal)(nil)

// Open creates or opens the journal database, applying pragmas and the
// schema. The parent directory is created if needed.
func Open(ctx context.Context, dbPath string) (*Journal, error) {
	const dbDirPerm = 0o750
	log := logging.FromContext(ctx)

	if dbPath == "" {
		return nil, fmt.Errorf("journal path cannot be empty")
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), dbDirPerm); err != nil {
		return nil, fmt.Errorf("failed to create journal directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal database: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to journal database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to apply pragma %q: %w", p, err)
		}
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create journal schema: %w", err)
	}

	log.Debug().Str("path", dbPath).Msg("apply journal opened")
	return &Journal{db: db}, nil
}

// Record appends one applied change.
func (j *Journal) Record(ctx context.Context, rec port.ApplyRecord) error {
	at := rec.AppliedAt
	if at.IsZero() {
		at = time.Now()
	}
	_, err := j.db.ExecContext(ctx,
		`INSERT INTO apply_history
			(display_uuid, display_id, encoding, bit_depth, color_range, dynamic_range, instant, applied_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.DisplayUUID, rec.DisplayID,
		string(rec.Mode.Encoding), int(rec.Mode.Depth),
		string(rec.Mode.Range), string(rec.Mode.Dynamic),
		rec.Instant, at.Unix(),
	)
	if err != nil {
		return fmt.Errorf("record apply: %w", err)
	}
	return nil
}

// Recent returns the newest entries, most recent first.
func (j *Journal) Recent(ctx context.Context, limit int) ([]port.ApplyRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := j.db.QueryContext(ctx,
		`SELECT id, display_uuid, display_id, encoding, bit_depth, color_range, dynamic_range, instant, applied_at
		 FROM apply_history ORDER BY applied_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query apply history: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []port.ApplyRecord
	for rows.Next() {
		var rec port.ApplyRecord
		var encoding, colorRange, dynamicRange string
		var depth, appliedAt int64
		if err := rows.Scan(&rec.ID, &rec.DisplayUUID, &rec.DisplayID,
			&encoding, &depth, &colorRange, &dynamicRange, &rec.Instant, &appliedAt); err != nil {
			return nil, fmt.Errorf("scan apply history row: %w", err)
		}
		rec.Mode = entity.ColorMode{
			Encoding: entity.PixelEncoding(encoding),
			Depth:    entity.BitDepth(depth),
			Range:    entity.ColorRange(colorRange),
			Dynamic:  entity.DynamicRange(dynamicRange),
		}
		rec.AppliedAt = time.Unix(appliedAt, 0)
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Close closes the underlying database.
func (j *Journal) Close() error {
	return j.db.Close()
}
