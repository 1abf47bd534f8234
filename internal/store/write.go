package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
)

// Revision is one saved rendering of a named query definition.
type Revision struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Seq         int64  `json:"seq"`
	Fingerprint string `json:"fingerprint"`
	Definition  string `json:"definition"`
	CAML        string `json:"caml"`
}

// SaveRevision appends a revision for name and makes it current.
//
// If the latest revision of name already carries fingerprint, nothing is
// written: the existing revision is returned with inserted=false. Saving an
// older fingerprint again after a change is a new revision.
//
// definition is expected to be canonical JSON; the store keeps it verbatim.
func (s *Store) SaveRevision(ctx context.Context, name, fingerprint, definition, caml string) (rev Revision, inserted bool, err error) {
	if name == "" {
		return Revision{}, false, errors.New("save revision: empty name")
	}
	if fingerprint == "" {
		return Revision{}, false, errors.New("save revision: empty fingerprint")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Revision{}, false, fmt.Errorf("save revision: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	latest, err := scanRevision(tx.QueryRowContext(ctx, `
		SELECT id, name, seq, fingerprint, definition, caml
		FROM revisions
		WHERE name = ?
		ORDER BY seq DESC, id COLLATE BINARY DESC
		LIMIT 1
	`, name))
	switch {
	case err == nil:
		if latest.Fingerprint == fingerprint {
			slog.Debug("revision unchanged, skipping",
				"name", name,
				"revision", latest.ID,
				"seq", latest.Seq,
			)
			return latest, false, nil
		}
	case errors.Is(err, sql.ErrNoRows):
	default:
		return Revision{}, false, fmt.Errorf("save revision: read latest: %w", err)
	}

	rev = Revision{
		ID:          s.ids.Generate(),
		Name:        name,
		Seq:         latest.Seq + 1,
		Fingerprint: fingerprint,
		Definition:  definition,
		CAML:        caml,
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO queries (name, current_revision)
		VALUES (?, NULL)
		ON CONFLICT(name) DO NOTHING
	`, name); err != nil {
		return Revision{}, false, fmt.Errorf("save revision: upsert query: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO revisions (id, name, seq, fingerprint, definition, caml)
		VALUES (?, ?, ?, ?, ?, ?)
	`, rev.ID, rev.Name, rev.Seq, rev.Fingerprint, rev.Definition, rev.CAML); err != nil {
		return Revision{}, false, fmt.Errorf("save revision: insert: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE queries SET current_revision = ? WHERE name = ?
	`, rev.ID, name); err != nil {
		return Revision{}, false, fmt.Errorf("save revision: set current: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return Revision{}, false, fmt.Errorf("save revision: commit: %w", err)
	}

	slog.Debug("revision saved",
		"name", name,
		"revision", rev.ID,
		"seq", rev.Seq,
		"fingerprint", fingerprint,
	)
	return rev, true, nil
}
