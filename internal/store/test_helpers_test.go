package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/roach88/docsnap/internal/model"
	"github.com/roach88/docsnap/internal/testutil"
)

// createTestStore creates a new store in a temp directory for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	return createTestStoreWith(t, Options{})
}

// createTestStoreWith creates a store with the given options. CreateIfMissing
// is always set and a one-minute deterministic clock is used unless given.
func createTestStoreWith(t *testing.T, opts Options) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "drawing.doc"+Suffix)
	opts.CreateIfMissing = true
	if opts.Clock == nil {
		opts.Clock = testutil.NewDeterministicClock(testutil.Epoch, time.Minute)
	}
	s, err := Open(path, opts)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestBlobSet creates a document blob plus one image dependency.
func createTestBlobSet(doc string, tex []byte) model.BlobSet {
	return model.BlobSet{
		{Identity: "drawing.doc", Kind: model.KindDocument, Content: []byte(doc)},
		{Identity: "tex.png", Kind: model.KindImage, Content: tex},
	}
}
