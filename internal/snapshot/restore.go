package snapshot

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/roach88/docsnap/internal/model"
	"github.com/roach88/docsnap/internal/packer"
)

// restore writes every file of a snapshot. There is no rollback: files
// already replaced stay replaced, and the ones that failed are reported.
func (m *Manager) restore(ctx context.Context, id int64, writes []packer.Write) error {
	var notWritten []string
	var errs []error
	for _, w := range writes {
		if err := ctx.Err(); err != nil {
			notWritten = append(notWritten, w.Path)
			errs = append(errs, err)
			continue
		}
		if err := m.writeFile(w); err != nil {
			m.logger.Warn("restore write failed", "path", w.Path, "error", err)
			notWritten = append(notWritten, w.Path)
			errs = append(errs, err)
			continue
		}
		m.logger.Debug("restored file", "path", w.Path, "kind", w.Kind, "bytes", len(w.Content))
	}
	if len(notWritten) > 0 {
		return model.NewPartialRestore(id, notWritten, errors.Join(errs...))
	}
	return nil
}

// maxLinkHops bounds symlink resolution, matching the usual ELOOP limit.
const maxLinkHops = 40

// writeFile replaces one file. Content goes to a temporary file in the same
// directory which is then renamed over the target, so the target is either
// the old or the new version, never a torn write. A symlinked target is
// written through: the link stays and the file it points to is replaced.
func (m *Manager) writeFile(w packer.Write) error {
	target, err := resolveLinks(m.fs, w.Path)
	if err != nil {
		return err
	}

	dir := filepath.Dir(target)
	if err := m.fs.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	perm := os.FileMode(0o644)
	if fi, err := m.fs.Stat(target); err == nil {
		if fi.IsDir() {
			return fmt.Errorf("%s is a directory", w.Path)
		}
		perm = fi.Mode().Perm()
	}

	tmp, err := afero.TempFile(m.fs, dir, "."+filepath.Base(target)+".restore-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer m.fs.Remove(tmpName) // No-op once renamed

	if _, err := tmp.Write(w.Content); err != nil {
		tmp.Close()
		return fmt.Errorf("write: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close: %w", err)
	}
	if err := m.fs.Chmod(tmpName, perm); err != nil {
		return fmt.Errorf("chmod: %w", err)
	}
	if err := m.fs.Rename(tmpName, target); err != nil {
		return fmt.Errorf("replace: %w", err)
	}

	if m.preserveModTimes && !w.ModTime.IsZero() {
		if err := m.fs.Chtimes(target, w.ModTime, w.ModTime); err != nil {
			m.logger.Warn("cannot restore modification time", "path", w.Path, "error", err)
		}
	}
	return nil
}

// resolveLinks follows symlinks at path to the file they name. Filesystems
// without link support, and paths that do not exist yet, resolve to
// themselves. A dangling link resolves to its missing target, which the
// restore then creates.
func resolveLinks(fs afero.Fs, path string) (string, error) {
	lstater, ok := fs.(afero.Lstater)
	if !ok {
		return path, nil
	}
	reader, ok := fs.(afero.LinkReader)
	if !ok {
		return path, nil
	}
	for range maxLinkHops {
		fi, lstatCalled, err := lstater.LstatIfPossible(path)
		if errors.Is(err, os.ErrNotExist) {
			return path, nil
		}
		if err != nil {
			return "", fmt.Errorf("stat: %w", err)
		}
		if !lstatCalled || fi.Mode()&os.ModeSymlink == 0 {
			return path, nil
		}
		dest, err := reader.ReadlinkIfPossible(path)
		if err != nil {
			return "", fmt.Errorf("read link: %w", err)
		}
		if !filepath.IsAbs(dest) {
			dest = filepath.Join(filepath.Dir(path), dest)
		}
		path = dest
	}
	return "", fmt.Errorf("%s: too many levels of symbolic links", path)
}
