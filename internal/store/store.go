package store

import (
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/roach88/docsnap/internal/model"
)

//go:embed schema.sql
var schemaSQL string

// Suffix is appended to a document's path to name its store.
const Suffix = ".ver"

// Schema version tracking:
// 1 - snapshots, blobs (with codec, digest and mtime), store_meta
const currentSchemaVersion = 1

// ErrStoreNotExist is the cause when Open is asked not to create a missing store.
// An empty or uninitialized file counts as missing.
var ErrStoreNotExist = errors.New("snapshot store does not exist")

// ErrReadOnly is the cause when a write is attempted on a read-only Store.
var ErrReadOnly = errors.New("snapshot store is open read-only")

// SidecarPath returns the store path for a document.
func SidecarPath(docPath string) string {
	return docPath + Suffix
}

// Clock supplies snapshot timestamps.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Options configures Open.
type Options struct {
	// CreateIfMissing creates an empty store when none exists at the path.
	CreateIfMissing bool

	// ReadOnly takes a shared lock so several readers can hold the store at
	// once, and refuses writes. A read-only open never creates a store.
	ReadOnly bool

	// Compression selects the codec for new blobs. Existing blobs keep the
	// codec they were written with. Defaults to CodecZstd.
	Compression Codec

	// Clock stamps new snapshots. Defaults to the wall clock.
	Clock Clock
}

// Store is the sidecar file holding one document's snapshots.
// Uses SQLite with WAL mode and a single connection.
type Store struct {
	db       *sql.DB
	path     string
	lock     *fileLock
	codec    Codec
	clock    Clock
	readOnly bool
}

// Open opens the store at path, creating it when opts.CreateIfMissing is set.
// A create-mode Open that fails removes the file it created.
//
// The database is configured with:
//   - WAL mode for concurrent reads during writes
//   - NORMAL synchronous mode (balance durability/performance)
//   - 5-second busy timeout for lock contention
//   - Foreign key enforcement
//
// A store stamped with a schema version other than the current one is
// refused with STORE_SCHEMA_MISMATCH; it is never migrated.
func Open(path string, opts Options) (*Store, error) {
	create := opts.CreateIfMissing && !opts.ReadOnly
	existed := true
	if fi, err := os.Stat(path); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, model.NewStoreUnwritable(path, err)
		}
		if !create {
			return nil, model.NewStoreUnwritable(path, ErrStoreNotExist)
		}
		existed = false
	} else if !create && fi.Size() == 0 {
		// Left behind by an interrupted create; SQLite would treat it as an
		// empty database.
		return nil, model.NewStoreUnwritable(path, ErrStoreNotExist)
	}
	codec := opts.Compression
	if codec == "" {
		codec = CodecZstd
	}
	if !codec.valid() {
		return nil, model.NewStoreUnwritable(path, fmt.Errorf("unknown codec %q", codec))
	}
	clock := opts.Clock
	if clock == nil {
		clock = systemClock{}
	}

	// Held for the lifetime of the Store; one opener per store file.
	lock, err := acquireLock(path, opts.ReadOnly)
	if err != nil {
		return nil, model.NewStoreUnwritable(path, err)
	}

	discard := func() {
		if !existed {
			for _, p := range []string{path, path + "-wal", path + "-shm"} {
				_ = os.Remove(p)
			}
		}
	}

	// _txlock=immediate takes the write lock at BEGIN instead of at the
	// first write inside the transaction.
	db, err := sql.Open("sqlite3", path+"?_txlock=immediate")
	if err != nil {
		discard()
		lock.release()
		return nil, model.NewStoreUnwritable(path, fmt.Errorf("failed to open database: %w", err))
	}

	fail := func(err error) (*Store, error) {
		db.Close()
		discard()
		lock.release()
		return nil, err
	}

	if err := db.Ping(); err != nil {
		return fail(model.NewStoreUnwritable(path, fmt.Errorf("failed to connect to database: %w", err)))
	}

	// SQLite only supports one writer at a time, so limit connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		return fail(model.NewStoreUnwritable(path, fmt.Errorf("failed to apply pragmas: %w", err)))
	}

	if err := applySchema(db, path, create); err != nil {
		return fail(err)
	}

	return &Store{db: db, path: path, lock: lock, codec: codec, clock: clock, readOnly: opts.ReadOnly}, nil
}

// Close closes the database connection and releases the store lock.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	if s.lock != nil {
		s.lock.release()
		s.lock = nil
	}
	return err
}

// Path returns the store file path.
func (s *Store) Path() string {
	return s.path
}

// ReadOnly reports whether the store was opened with Options.ReadOnly.
func (s *Store) ReadOnly() bool {
	return s.readOnly
}

func (s *Store) checkWritable() error {
	if s.readOnly {
		return model.NewStoreUnwritable(s.path, ErrReadOnly)
	}
	return nil
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}

// applySchema initializes a fresh store or verifies the version stamp of an
// existing one. Without create, an uninitialized file is reported as missing.
func applySchema(db *sql.DB, path string, create bool) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return model.NewStoreUnwritable(path, fmt.Errorf("get user_version: %w", err))
	}
	if version == currentSchemaVersion {
		return nil
	}
	if version != 0 {
		return model.NewSchemaMismatch(path, version, currentSchemaVersion)
	}

	// Version 0 is either a brand-new file or a database written by
	// something else; only the former may be initialized.
	var tables int
	if err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type = 'table'").Scan(&tables); err != nil {
		return model.NewStoreUnwritable(path, fmt.Errorf("inspect schema: %w", err))
	}
	if tables > 0 {
		return model.NewSchemaMismatch(path, version, currentSchemaVersion)
	}
	if !create {
		return model.NewStoreUnwritable(path, ErrStoreNotExist)
	}

	if err := initSchema(db); err != nil {
		return model.NewStoreUnwritable(path, err)
	}
	return nil
}

func initSchema(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	if _, err := tx.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return fmt.Errorf("init schema: store id: %w", err)
	}
	_, err = tx.Exec(`
		INSERT INTO store_meta (key, value) VALUES ('store_id', ?), ('created_at', ?)
	`, id.String(), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("init schema: write meta: %w", err)
	}

	// user_version is transactional in SQLite.
	if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit: %w", err)
	}
	return nil
}

// verifyPragma checks that a pragma is set to the expected value.
// Used for testing.
func (s *Store) verifyPragma(name, expected string) error {
	var value string
	query := fmt.Sprintf("PRAGMA %s", name)
	if err := s.db.QueryRow(query).Scan(&value); err != nil {
		return fmt.Errorf("failed to query %s: %w", name, err)
	}
	if value != expected {
		return fmt.Errorf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}
