package snapshot

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"

	"github.com/spf13/afero"
	"golang.org/x/text/unicode/norm"

	"github.com/roach88/docsnap/internal/model"
	"github.com/roach88/docsnap/internal/packer"
	"github.com/roach88/docsnap/internal/store"
)

// Manager runs snapshot operations for one document.
//
// The store is opened on first use and held until Close: read-only for List,
// Load, Show, Info and Verify, so several Managers can read one store at
// once, and reopened for writing by Save, Rename and Delete. Document checks and
// restore writes go through the Manager's afero.Fs; the store itself is a
// SQLite file on the OS filesystem next to the document.
type Manager struct {
	doc       model.Document
	collector Collector
	reloader  Reloader

	fs               afero.Fs
	storeOpts        store.Options
	logger           *slog.Logger
	preserveModTimes bool

	st *store.Store
}

// Option configures a Manager.
type Option func(*Manager)

// WithFS sets the filesystem used for document checks and restore writes.
func WithFS(fs afero.Fs) Option {
	return func(m *Manager) { m.fs = fs }
}

// WithStoreOptions sets codec and clock for the store. CreateIfMissing is
// managed by the Manager and ignored.
func WithStoreOptions(opts store.Options) Option {
	return func(m *Manager) { m.storeOpts = opts }
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) { m.logger = l }
}

// WithPreserveModTimes restores each file's modification time as captured.
func WithPreserveModTimes(on bool) Option {
	return func(m *Manager) { m.preserveModTimes = on }
}

// New creates a Manager for doc. The reloader may be nil.
func New(doc model.Document, c Collector, r Reloader, opts ...Option) *Manager {
	m := &Manager{
		doc:       doc,
		collector: c,
		reloader:  r,
		fs:        afero.NewOsFs(),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = m.logger.With("document", doc.Path)
	return m
}

// Document returns the document this Manager is bound to.
func (m *Manager) Document() model.Document {
	return m.doc
}

// StorePath returns the sidecar store path, or "" for an unsaved document.
func (m *Manager) StorePath() string {
	if m.doc.Path == "" {
		return ""
	}
	return store.SidecarPath(filepath.Clean(m.doc.Path))
}

// Save captures the document and its dependencies as a new snapshot and
// returns its ID. The comment is stored in Unicode NFC, so List may return
// different bytes than were passed for the same text.
//
// An unsaved document fails with DOCUMENT_NOT_SAVED before anything else
// happens; in particular no store file is created.
func (m *Manager) Save(ctx context.Context, comment string) (int64, error) {
	docPath, err := m.savedDocumentPath()
	if err != nil {
		return 0, err
	}
	doc := model.Document{Path: docPath}

	capture, err := m.collector.Collect(ctx, doc)
	if err != nil {
		if model.CodeOf(err) == "" {
			err = model.NewUnreadableDependency(docPath, err)
		}
		return 0, err
	}

	set, err := packer.Pack(doc, capture)
	if err != nil {
		return 0, err
	}

	st, err := m.open(openCreate)
	if err != nil {
		return 0, err
	}

	id, err := st.Insert(ctx, norm.NFC.String(comment), set)
	if err != nil {
		m.logger.Error("snapshot save failed", "error", err)
		return 0, err
	}

	m.logger.Info("snapshot saved", "id", id, "files", len(set))
	return id, nil
}

// List returns every snapshot, oldest first. A document without a store has
// no snapshots; List never creates a store.
func (m *Manager) List(ctx context.Context) ([]model.SnapshotInfo, error) {
	if m.doc.Path == "" {
		return []model.SnapshotInfo{}, nil
	}
	st, err := m.open(openRead)
	if errors.Is(err, store.ErrStoreNotExist) {
		return []model.SnapshotInfo{}, nil
	}
	if err != nil {
		return nil, err
	}
	return st.List(ctx)
}

// Load restores snapshot id over the document and its dependencies, then
// asks the host to reload the document.
//
// Every file is overwritten unconditionally, creating parent directories as
// needed. Files are written independently: if some fail, the others are
// still written and PARTIAL_RESTORE lists the ones that were not. The host
// is only notified when every write succeeded.
func (m *Manager) Load(ctx context.Context, id int64) error {
	docPath, err := m.documentPath()
	if err != nil {
		return err
	}

	st, err := m.open(openRead)
	if errors.Is(err, store.ErrStoreNotExist) {
		return model.NewSnapshotNotFound(id)
	}
	if err != nil {
		return err
	}

	set, err := st.FetchBlobs(ctx, id)
	if err != nil {
		return err
	}

	writes, err := packer.Unpack(set, docPath)
	if err != nil {
		return err
	}

	if err := m.restore(ctx, id, writes); err != nil {
		return err
	}

	m.logger.Info("snapshot restored", "id", id, "files", len(writes))
	if m.reloader != nil {
		m.reloader.Reload(docPath)
	}
	return nil
}

// Rename replaces the comment of snapshot id. Like Save, it stores the
// comment in Unicode NFC.
func (m *Manager) Rename(ctx context.Context, id int64, comment string) error {
	st, err := m.openExisting(id, openWrite)
	if err != nil {
		return err
	}
	if err := st.Rename(ctx, id, norm.NFC.String(comment)); err != nil {
		return err
	}
	m.logger.Info("snapshot renamed", "id", id)
	return nil
}

// Delete removes snapshot id and its stored files.
func (m *Manager) Delete(ctx context.Context, id int64) error {
	st, err := m.openExisting(id, openWrite)
	if err != nil {
		return err
	}
	if err := st.Delete(ctx, id); err != nil {
		return err
	}
	m.logger.Info("snapshot deleted", "id", id)
	return nil
}

// Show describes the files held by snapshot id.
func (m *Manager) Show(ctx context.Context, id int64) ([]model.BlobInfo, error) {
	st, err := m.openExisting(id, openRead)
	if err != nil {
		return nil, err
	}
	return st.ListBlobs(ctx, id)
}

// Info summarizes the document's store. Fails with STORE_UNWRITABLE wrapping
// store.ErrStoreNotExist when no snapshot was ever saved.
func (m *Manager) Info(ctx context.Context) (store.Stats, error) {
	if _, err := m.documentPath(); err != nil {
		return store.Stats{}, err
	}
	st, err := m.open(openRead)
	if err != nil {
		return store.Stats{}, err
	}
	return st.Stats(ctx)
}

// VerifyReport is the outcome of Verify.
type VerifyReport struct {
	Snapshots int
	Files     int

	// Problems holds one CORRUPT_BLOB error per snapshot that failed to
	// decode or verify.
	Problems []*model.Error
}

// Verify reads back every snapshot and checks each stored file against its
// recorded size and digest. Corruption is reported in the VerifyReport; the
// error is reserved for failures to read the store at all.
func (m *Manager) Verify(ctx context.Context) (VerifyReport, error) {
	report := VerifyReport{Problems: []*model.Error{}}
	if _, err := m.documentPath(); err != nil {
		return report, err
	}
	st, err := m.open(openRead)
	if errors.Is(err, store.ErrStoreNotExist) {
		return report, nil
	}
	if err != nil {
		return report, err
	}

	infos, err := st.List(ctx)
	if err != nil {
		return report, err
	}
	for _, info := range infos {
		report.Snapshots++
		set, err := st.FetchBlobs(ctx, info.ID)
		var me *model.Error
		if errors.As(err, &me) && me.Code == model.CodeCorruptBlob {
			m.logger.Warn("snapshot is corrupt", "id", info.ID, "error", err)
			report.Problems = append(report.Problems, me)
			continue
		}
		if err != nil {
			return report, err
		}
		report.Files += len(set)
	}
	return report, nil
}

// Close releases the store, if it was opened.
func (m *Manager) Close() error {
	if m.st == nil {
		return nil
	}
	err := m.st.Close()
	m.st = nil
	return err
}

// documentPath returns the cleaned document path, requiring only that the
// document has one. Restoring a document deleted from disk is allowed.
func (m *Manager) documentPath() (string, error) {
	if m.doc.Path == "" || !filepath.IsAbs(m.doc.Path) {
		return "", model.NewDocumentNotSaved(m.doc.Path)
	}
	return filepath.Clean(m.doc.Path), nil
}

// savedDocumentPath additionally requires the document to exist as a file.
func (m *Manager) savedDocumentPath() (string, error) {
	path, err := m.documentPath()
	if err != nil {
		return "", err
	}
	fi, err := m.fs.Stat(path)
	if err != nil || fi.IsDir() {
		return "", model.NewDocumentNotSaved(path)
	}
	return path, nil
}

type openMode int

const (
	openRead openMode = iota
	openWrite
	openCreate
)

// open returns the store, opening it on first use. A store held read-only is
// reopened when a write is needed.
func (m *Manager) open(mode openMode) (*store.Store, error) {
	if m.st != nil {
		if mode == openRead || !m.st.ReadOnly() {
			return m.st, nil
		}
		if err := m.Close(); err != nil {
			return nil, err
		}
	}
	docPath, err := m.documentPath()
	if err != nil {
		return nil, err
	}
	opts := m.storeOpts
	opts.CreateIfMissing = mode == openCreate
	opts.ReadOnly = mode == openRead
	st, err := store.Open(store.SidecarPath(docPath), opts)
	if err != nil {
		return nil, err
	}
	m.st = st
	return st, nil
}

// openExisting opens the store for an operation on snapshot id; a missing
// store means the snapshot does not exist.
func (m *Manager) openExisting(id int64, mode openMode) (*store.Store, error) {
	if _, err := m.documentPath(); err != nil {
		return nil, model.NewSnapshotNotFound(id)
	}
	st, err := m.open(mode)
	if errors.Is(err, store.ErrStoreNotExist) {
		return nil, model.NewSnapshotNotFound(id)
	}
	return st, err
}
