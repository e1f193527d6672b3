package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/docsnap/internal/model"
)

// Insert records a new snapshot holding every blob of set and returns its ID.
//
// The metadata row and all blob rows are written in one transaction: on any
// error the transaction is rolled back and the store is left unchanged.
// The timestamp is the clock's time, raised if needed to stay strictly after
// the newest existing snapshot so ID order and time order agree.
func (s *Store) Insert(ctx context.Context, comment string, set model.BlobSet) (int64, error) {
	if err := s.checkWritable(); err != nil {
		return 0, err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, model.NewWriteFailure("save", fmt.Errorf("begin tx: %w", err))
	}
	defer tx.Rollback() // No-op if committed

	var last sql.NullInt64
	if err := tx.QueryRowContext(ctx, `SELECT MAX(timestamp) FROM snapshots`).Scan(&last); err != nil {
		return 0, model.NewWriteFailure("save", fmt.Errorf("read last timestamp: %w", err))
	}
	ts := s.clock.Now().UnixNano()
	if last.Valid && ts <= last.Int64 {
		ts = last.Int64 + 1
	}

	result, err := tx.ExecContext(ctx, `
		INSERT INTO snapshots (timestamp, comment) VALUES (?, ?)
	`, ts, comment)
	if err != nil {
		return 0, model.NewWriteFailure("save", fmt.Errorf("insert snapshot: %w", err))
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, model.NewWriteFailure("save", fmt.Errorf("last insert id: %w", err))
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO blobs
		(snapshot_id, ordinal, relative_identity, kind, codec, size, digest, mtime, content)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, model.NewWriteFailure("save", fmt.Errorf("prepare blob insert: %w", err))
	}
	defer stmt.Close()

	for i, b := range set {
		stored, codec := encodeBlob(s.codec, b.Content)
		var mtime sql.NullInt64
		if !b.ModTime.IsZero() {
			mtime = sql.NullInt64{Int64: b.ModTime.UnixNano(), Valid: true}
		}
		_, err := stmt.ExecContext(ctx,
			id,
			i,
			b.Identity,
			string(b.Kind),
			string(codec),
			len(b.Content),
			model.Digest(b.Content),
			mtime,
			stored,
		)
		if err != nil {
			return 0, model.NewWriteFailure("save", fmt.Errorf("insert blob %s: %w", b.Identity, err))
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, model.NewWriteFailure("save", fmt.Errorf("commit: %w", err))
	}

	return id, nil
}

// Rename replaces the comment of snapshot id. Blob rows are not touched.
func (s *Store) Rename(ctx context.Context, id int64, comment string) error {
	if err := s.checkWritable(); err != nil {
		return err
	}
	result, err := s.db.ExecContext(ctx, `
		UPDATE snapshots SET comment = ? WHERE id = ?
	`, comment, id)
	if err != nil {
		return model.NewWriteFailure("rename", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return model.NewWriteFailure("rename", fmt.Errorf("rows affected: %w", err))
	}
	if n == 0 {
		return model.NewSnapshotNotFound(id)
	}
	return nil
}

// Delete removes snapshot id and all of its blobs in one transaction.
// Other snapshots are not touched.
func (s *Store) Delete(ctx context.Context, id int64) error {
	if err := s.checkWritable(); err != nil {
		return err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.NewWriteFailure("delete", fmt.Errorf("begin tx: %w", err))
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM blobs WHERE snapshot_id = ?`, id); err != nil {
		return model.NewWriteFailure("delete", fmt.Errorf("delete blobs: %w", err))
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM snapshots WHERE id = ?`, id)
	if err != nil {
		return model.NewWriteFailure("delete", fmt.Errorf("delete snapshot: %w", err))
	}
	n, err := result.RowsAffected()
	if err != nil {
		return model.NewWriteFailure("delete", fmt.Errorf("rows affected: %w", err))
	}
	if n == 0 {
		// Nothing existed; the rollback discards the (empty) blob delete.
		return model.NewSnapshotNotFound(id)
	}

	if err := tx.Commit(); err != nil {
		return model.NewWriteFailure("delete", fmt.Errorf("commit: %w", err))
	}
	return nil
}
