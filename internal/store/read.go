package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRevision(row rowScanner) (Revision, error) {
	var r Revision
	err := row.Scan(&r.ID, &r.Name, &r.Seq, &r.Fingerprint, &r.Definition, &r.CAML)
	return r, err
}

// Latest returns the current revision of name, or ErrNotFound.
func (s *Store) Latest(ctx context.Context, name string) (Revision, error) {
	rev, err := scanRevision(s.db.QueryRowContext(ctx, `
		SELECT r.id, r.name, r.seq, r.fingerprint, r.definition, r.caml
		FROM queries q
		JOIN revisions r ON r.id = q.current_revision
		WHERE q.name = ?
	`, name))
	if errors.Is(err, sql.ErrNoRows) {
		return Revision{}, fmt.Errorf("latest %q: %w", name, ErrNotFound)
	}
	if err != nil {
		return Revision{}, fmt.Errorf("latest %q: %w", name, err)
	}
	return rev, nil
}

// History returns every revision of name, oldest first.
// Returns an empty slice (not nil) if the name was never saved.
func (s *Store) History(ctx context.Context, name string) ([]Revision, error) {
	return s.queryRevisions(ctx, "history", `
		SELECT id, name, seq, fingerprint, definition, caml
		FROM revisions
		WHERE name = ?
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`, name)
}

// List returns the current revision of every query, ordered by name.
// Returns an empty slice (not nil) for an empty catalog.
func (s *Store) List(ctx context.Context) ([]Revision, error) {
	return s.queryRevisions(ctx, "list", `
		SELECT r.id, r.name, r.seq, r.fingerprint, r.definition, r.caml
		FROM queries q
		JOIN revisions r ON r.id = q.current_revision
		ORDER BY q.name COLLATE BINARY ASC, r.seq ASC, r.id COLLATE BINARY ASC
	`)
}

// ByFingerprint returns every revision, of any name, with the given
// fingerprint.
func (s *Store) ByFingerprint(ctx context.Context, fingerprint string) ([]Revision, error) {
	return s.queryRevisions(ctx, "by fingerprint", `
		SELECT id, name, seq, fingerprint, definition, caml
		FROM revisions
		WHERE fingerprint = ?
		ORDER BY name COLLATE BINARY ASC, seq ASC, id COLLATE BINARY ASC
	`, fingerprint)
}

func (s *Store) queryRevisions(ctx context.Context, op, query string, args ...any) ([]Revision, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	revisions := []Revision{}
	for rows.Next() {
		rev, err := scanRevision(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		revisions = append(revisions, rev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: iterate: %w", op, err)
	}
	return revisions, nil
}
