package snapshot

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/roach88/docsnap/internal/model"
	"github.com/roach88/docsnap/internal/store"
	"github.com/roach88/docsnap/internal/testutil"
)

// fileCollector reads the document and the given dependency paths (relative
// to the document directory, or absolute) straight from disk.
func fileCollector(deps ...string) CollectorFunc {
	return func(ctx context.Context, doc model.Document) (model.Capture, error) {
		content, err := os.ReadFile(doc.Path)
		if err != nil {
			return model.Capture{}, err
		}
		capture := model.Capture{Document: content}
		for _, d := range deps {
			p := d
			if !filepath.IsAbs(p) {
				p = filepath.Join(filepath.Dir(doc.Path), d)
			}
			b, err := os.ReadFile(p)
			if err != nil {
				return model.Capture{}, model.NewUnreadableDependency(p, err)
			}
			fi, _ := os.Stat(p)
			capture.Dependencies = append(capture.Dependencies, model.Dependency{
				Path:         p,
				Kind:         model.KindImage,
				Content:      b,
				ExpectedSize: int64(len(b)),
				ModTime:      fi.ModTime(),
			})
		}
		return capture, nil
	}
}

// reloadRecorder records Reload calls.
type reloadRecorder struct {
	paths []string
}

func (r *reloadRecorder) Reload(docPath string) {
	r.paths = append(r.paths, docPath)
}

// failingFs fails renames onto the listed targets, which makes restore
// writes of those files fail after the temp file was written.
type failingFs struct {
	afero.Fs
	fail map[string]bool
}

func (f *failingFs) Rename(oldname, newname string) error {
	if f.fail[newname] {
		return errors.New("injected failure")
	}
	return f.Fs.Rename(oldname, newname)
}

func writeTestFile(t *testing.T, path string, content []byte) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, content, 0o644))
}

func readTestFile(t *testing.T, path string) []byte {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	return b
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestManager creates a Manager with a deterministic clock and discarded
// logs, closed at test end.
func newTestManager(t *testing.T, docPath string, c Collector, r Reloader, opts ...Option) *Manager {
	t.Helper()
	base := []Option{
		WithLogger(quietLogger()),
		WithStoreOptions(store.Options{Clock: testutil.NewDeterministicClock(testutil.Epoch, time.Minute)}),
	}
	m := New(model.Document{Path: docPath}, c, r, append(base, opts...)...)
	t.Cleanup(func() { m.Close() })
	return m
}
