// Package sqlitestore implements spec.md §6's optional bitmask
// persistence: a SQLite table of per-batch starting Paramsets, hex
// encoded. Grounded on original_source/synthesis/SQLAdapter.hpp's
// open/exec/prepare/step shape, reimplemented idiomatically over
// database/sql with the pure-Go modernc.org/sqlite driver (named, not
// grounded in the pack — no example repo uses a SQL driver; chosen for
// being cgo-free, matching the teacher's statically-linkable posture).
package sqlitestore

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"parsybone/internal/errs"
	"parsybone/internal/paramset"
)

const schema = `CREATE TABLE IF NOT EXISTS batch_masks (
	batch_index INTEGER PRIMARY KEY,
	mask_hex    TEXT NOT NULL
);`

// Store is a connection to a bitmask-persistence database.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the SQLite file at path and ensures
// the batch_masks table exists.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errs.Wrap(errs.IoError, "opening sqlite database "+path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, errs.Wrap(errs.IoError, "creating batch_masks table", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying connection.
func (s *Store) Close() error { return s.db.Close() }

// LoadMasks reads every row ordered by batch_index and decodes it into
// a Paramset. It fails with BatchMismatch if the row count does not
// equal wantBatches.
func (s *Store) LoadMasks(wantBatches int) ([]paramset.Paramset, error) {
	rows, err := s.db.Query(`SELECT mask_hex FROM batch_masks ORDER BY batch_index ASC`)
	if err != nil {
		return nil, errs.Wrap(errs.IoError, "querying batch_masks", err)
	}
	defer rows.Close()

	var masks []paramset.Paramset
	for rows.Next() {
		var hex string
		if err := rows.Scan(&hex); err != nil {
			return nil, errs.Wrap(errs.IoError, "scanning mask_hex", err)
		}
		var v uint64
		if _, err := fmt.Sscanf(hex, "%x", &v); err != nil {
			return nil, errs.Wrap(errs.ParseError, "decoding hex mask "+hex, err)
		}
		masks = append(masks, paramset.Paramset(v))
	}
	if err := rows.Err(); err != nil {
		return nil, errs.Wrap(errs.IoError, "iterating batch_masks", err)
	}
	if len(masks) != wantBatches {
		return nil, errs.Newf(errs.BatchMismatch, "batch_masks has %d rows, want %d (one per batch)", len(masks), wantBatches)
	}
	return masks, nil
}

// SaveMasks replaces the table contents with one row per mask, indexed
// by its position in the slice.
func (s *Store) SaveMasks(masks []paramset.Paramset) error {
	tx, err := s.db.Begin()
	if err != nil {
		return errs.Wrap(errs.IoError, "beginning batch_masks transaction", err)
	}
	if _, err := tx.Exec(`DELETE FROM batch_masks`); err != nil {
		tx.Rollback()
		return errs.Wrap(errs.IoError, "clearing batch_masks", err)
	}
	stmt, err := tx.Prepare(`INSERT INTO batch_masks(batch_index, mask_hex) VALUES (?, ?)`)
	if err != nil {
		tx.Rollback()
		return errs.Wrap(errs.IoError, "preparing batch_masks insert", err)
	}
	defer stmt.Close()

	for i, m := range masks {
		if _, err := stmt.Exec(i, fmt.Sprintf("%x", uint64(m))); err != nil {
			tx.Rollback()
			return errs.Wrap(errs.IoError, "inserting batch mask row", err)
		}
	}
	return tx.Commit()
}
