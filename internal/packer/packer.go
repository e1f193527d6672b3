// Package packer maps a captured document and its dependencies to stored
// blobs and back.
//
// Identity policy:
//   - The document blob's identity is its base name at capture time. It is
//     always restored to the document's current path.
//   - A dependency inside the document's directory subtree gets an identity
//     relative to that directory ("textures/tex.png") and is restored
//     relative to the document's directory at restore time, so a moved
//     document takes its local files along.
//   - A dependency outside that subtree keeps its absolute path, stored
//     slash-separated, and is restored to the same place.
//
// Both directions are pure: no filesystem access.
package packer

import (
	"errors"
	"path/filepath"
	"strings"
	"time"

	"github.com/roach88/docsnap/internal/model"
)

// Write is one file the restore step must overwrite.
type Write struct {
	Path    string
	Kind    model.Kind
	Content []byte
	ModTime time.Time
}

// Pack turns a capture into a BlobSet. The document blob is first, then the
// dependencies in capture order. A dependency listed twice, or pointing at the
// document itself, is kept once.
func Pack(doc model.Document, capture model.Capture) (model.BlobSet, error) {
	if doc.Path == "" || !filepath.IsAbs(doc.Path) {
		return nil, model.NewDocumentNotSaved(doc.Path)
	}
	docPath := filepath.Clean(doc.Path)
	docDir := filepath.Dir(docPath)

	if capture.Document == nil {
		return nil, model.NewUnreadableDependency(docPath, errors.New("document content missing"))
	}

	set := make(model.BlobSet, 0, len(capture.Dependencies)+1)
	set = append(set, model.Blob{
		Identity: filepath.Base(docPath),
		Kind:     model.KindDocument,
		Content:  capture.Document,
		ModTime:  capture.DocumentModTime,
	})

	seen := map[string]bool{docPath: true}
	for _, dep := range capture.Dependencies {
		path := dep.Path
		if !filepath.IsAbs(path) {
			path = filepath.Join(docDir, path)
		}
		path = filepath.Clean(path)
		if seen[path] {
			continue
		}
		seen[path] = true

		if dep.Content == nil {
			return nil, model.NewUnreadableDependency(path, errors.New("content missing"))
		}
		if dep.ExpectedSize > 0 && int64(len(dep.Content)) != dep.ExpectedSize {
			return nil, model.NewUnreadableDependency(path, errors.New("captured size does not match file size"))
		}

		set = append(set, model.Blob{
			Identity: Identity(docDir, path),
			Kind:     dependencyKind(dep.Kind),
			Content:  dep.Content,
			ModTime:  dep.ModTime,
		})
	}
	return set, nil
}

// Unpack maps a BlobSet to the writes that restore it for a document that
// now lives at docPath.
func Unpack(set model.BlobSet, docPath string) ([]Write, error) {
	if docPath == "" || !filepath.IsAbs(docPath) {
		return nil, model.NewDocumentNotSaved(docPath)
	}
	docPath = filepath.Clean(docPath)
	docDir := filepath.Dir(docPath)

	writes := make([]Write, 0, len(set))
	targets := make(map[string]string, len(set))
	docBlobs := 0
	for _, b := range set {
		var path string
		if b.Kind == model.KindDocument {
			docBlobs++
			path = docPath
		} else {
			p, err := Resolve(docDir, b.Identity)
			if err != nil {
				return nil, err
			}
			path = p
		}
		if prev, ok := targets[path]; ok {
			return nil, model.NewInvalidIdentity(b.Identity, "restores onto the same file as "+prev)
		}
		targets[path] = b.Identity
		writes = append(writes, Write{Path: path, Kind: b.Kind, Content: b.Content, ModTime: b.ModTime})
	}
	if docBlobs != 1 {
		return nil, model.NewInvalidIdentity(filepath.Base(docPath), "snapshot must hold exactly one document")
	}
	return writes, nil
}

// Identity returns the stored key for a file at the absolute path, relative
// to docDir when the file lies inside it.
func Identity(docDir, path string) string {
	rel, err := filepath.Rel(docDir, path)
	if err == nil && rel != "." && !escapes(filepath.ToSlash(rel)) {
		return filepath.ToSlash(rel)
	}
	return filepath.ToSlash(path)
}

// Resolve maps a stored identity to an absolute path for a document
// directory. Relative identities may not climb out of docDir.
func Resolve(docDir, identity string) (string, error) {
	if identity == "" {
		return "", model.NewInvalidIdentity(identity, "empty identity")
	}
	p := filepath.FromSlash(identity)
	if filepath.IsAbs(p) {
		return filepath.Clean(p), nil
	}
	if escapes(identity) {
		return "", model.NewInvalidIdentity(identity, "points outside the document directory")
	}
	return filepath.Join(docDir, p), nil
}

func escapes(slashPath string) bool {
	for _, elem := range strings.Split(slashPath, "/") {
		if elem == ".." {
			return true
		}
	}
	return false
}

// dependencyKind maps unknown or missing tags to KindOther; only the
// document blob may carry KindDocument.
func dependencyKind(k model.Kind) model.Kind {
	if k == "" || k == model.KindDocument || !k.Valid() {
		return model.KindOther
	}
	return k
}
