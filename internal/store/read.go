package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/roach88/docsnap/internal/model"
)

// List returns every snapshot, oldest first.
// Returns an empty slice (not nil) for an empty store.
func (s *Store) List(ctx context.Context) ([]model.SnapshotInfo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, timestamp, comment
		FROM snapshots
		ORDER BY id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query snapshots: %w", err)
	}
	defer rows.Close()

	infos := []model.SnapshotInfo{}
	for rows.Next() {
		var info model.SnapshotInfo
		var ts int64
		if err := rows.Scan(&info.ID, &ts, &info.Comment); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		info.Timestamp = time.Unix(0, ts)
		infos = append(infos, info)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshots: %w", err)
	}

	return infos, nil
}

// FetchBlobs returns the content of snapshot id in capture order.
// Each blob is decoded and checked against its stored size and digest.
func (s *Store) FetchBlobs(ctx context.Context, id int64) (model.BlobSet, error) {
	if err := s.requireSnapshot(ctx, id); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT relative_identity, kind, codec, size, digest, mtime, content
		FROM blobs
		WHERE snapshot_id = ?
		ORDER BY ordinal ASC
	`, id)
	if err != nil {
		return nil, fmt.Errorf("query blobs: %w", err)
	}
	defer rows.Close()

	set := model.BlobSet{}
	for rows.Next() {
		var (
			b       model.Blob
			kind    string
			codec   string
			size    int64
			digest  string
			mtime   sql.NullInt64
			content []byte
		)
		if err := rows.Scan(&b.Identity, &kind, &codec, &size, &digest, &mtime, &content); err != nil {
			return nil, fmt.Errorf("scan blob: %w", err)
		}
		b.Kind = model.Kind(kind)
		if mtime.Valid {
			b.ModTime = time.Unix(0, mtime.Int64)
		}

		decoded, err := decodeBlob(Codec(codec), content)
		if err != nil {
			return nil, model.NewCorruptBlob(id, b.Identity, err)
		}
		if int64(len(decoded)) != size {
			return nil, model.NewCorruptBlob(id, b.Identity,
				fmt.Errorf("size %d, expected %d", len(decoded), size))
		}
		if model.Digest(decoded) != digest {
			return nil, model.NewCorruptBlob(id, b.Identity, errors.New("digest mismatch"))
		}
		b.Content = decoded
		set = append(set, b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate blobs: %w", err)
	}

	return set, nil
}

// ListBlobs describes the blobs of snapshot id without loading their content.
func (s *Store) ListBlobs(ctx context.Context, id int64) ([]model.BlobInfo, error) {
	if err := s.requireSnapshot(ctx, id); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT relative_identity, kind, codec, size, LENGTH(content), digest, mtime
		FROM blobs
		WHERE snapshot_id = ?
		ORDER BY ordinal ASC
	`, id)
	if err != nil {
		return nil, fmt.Errorf("query blobs: %w", err)
	}
	defer rows.Close()

	infos := []model.BlobInfo{}
	for rows.Next() {
		var info model.BlobInfo
		var kind string
		var mtime sql.NullInt64
		if err := rows.Scan(&info.Identity, &kind, &info.Codec, &info.Size, &info.StoredSize, &info.Digest, &mtime); err != nil {
			return nil, fmt.Errorf("scan blob: %w", err)
		}
		info.Kind = model.Kind(kind)
		if mtime.Valid {
			info.ModTime = time.Unix(0, mtime.Int64)
		}
		infos = append(infos, info)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate blobs: %w", err)
	}

	return infos, nil
}

// Stats summarizes a store.
type Stats struct {
	Path          string    `json:"path"`
	StoreID       string    `json:"store_id"`
	CreatedAt     time.Time `json:"created_at"`
	SchemaVersion int       `json:"schema_version"`
	Snapshots     int64     `json:"snapshots"`
	Blobs         int64     `json:"blobs"`
	RawBytes      int64     `json:"raw_bytes"`
	StoredBytes   int64     `json:"stored_bytes"`
}

// Stats returns counts and sizes for the whole store.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	st := Stats{Path: s.path}

	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&st.SchemaVersion); err != nil {
		return Stats{}, fmt.Errorf("get user_version: %w", err)
	}

	var createdAt string
	err := s.db.QueryRowContext(ctx, `
		SELECT
			(SELECT value FROM store_meta WHERE key = 'store_id'),
			(SELECT value FROM store_meta WHERE key = 'created_at')
	`).Scan(&st.StoreID, &createdAt)
	if err != nil {
		return Stats{}, fmt.Errorf("read store meta: %w", err)
	}
	if st.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return Stats{}, fmt.Errorf("parse created_at: %w", err)
	}

	err = s.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM snapshots),
			COUNT(*),
			COALESCE(SUM(size), 0),
			COALESCE(SUM(LENGTH(content)), 0)
		FROM blobs
	`).Scan(&st.Snapshots, &st.Blobs, &st.RawBytes, &st.StoredBytes)
	if err != nil {
		return Stats{}, fmt.Errorf("count snapshots: %w", err)
	}

	return st, nil
}

// requireSnapshot returns SNAPSHOT_NOT_FOUND unless id exists.
func (s *Store) requireSnapshot(ctx context.Context, id int64) error {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM snapshots WHERE id = ?`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return model.NewSnapshotNotFound(id)
	}
	if err != nil {
		return fmt.Errorf("query snapshot: %w", err)
	}
	return nil
}
