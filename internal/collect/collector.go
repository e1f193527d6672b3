// Package collect is a stand-alone Collector for documents whose host cannot
// report dependencies itself. The dependency list comes from a YAML manifest
// kept next to the document:
//
//	dependencies:
//	  - path: textures/wood.png
//	    kind: image
//	  - path: /usr/share/fonts/serif.ttf
//	    kind: font
//
// A document without a manifest is captured on its own.
package collect

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/afero"

	"github.com/roach88/docsnap/internal/model"
)

// ManifestCollector captures a document and the files its manifest lists.
type ManifestCollector struct {
	fs           afero.Fs
	validate     *validator.Validate
	manifestPath string
}

// Option configures a ManifestCollector.
type Option func(*ManifestCollector)

// WithFS sets the filesystem files are read from.
func WithFS(fs afero.Fs) Option {
	return func(c *ManifestCollector) { c.fs = fs }
}

// WithManifestPath reads the manifest from path instead of
// <document>.deps.yaml.
func WithManifestPath(path string) Option {
	return func(c *ManifestCollector) { c.manifestPath = path }
}

// NewManifestCollector creates a collector reading from the OS filesystem.
func NewManifestCollector(opts ...Option) *ManifestCollector {
	c := &ManifestCollector{
		fs:       afero.NewOsFs(),
		validate: validator.New(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Collect reads the document and every dependency named in its manifest.
// Any file that cannot be read fails the whole capture with
// UNREADABLE_DEPENDENCY.
func (c *ManifestCollector) Collect(ctx context.Context, doc model.Document) (model.Capture, error) {
	content, fi, err := c.readFile(doc.Path)
	if err != nil {
		return model.Capture{}, model.NewUnreadableDependency(doc.Path, err)
	}
	capture := model.Capture{
		Document:        content,
		DocumentModTime: fi.ModTime(),
		Dependencies:    []model.Dependency{},
	}

	manifestPath := c.manifestPath
	if manifestPath == "" {
		manifestPath = ManifestPath(doc.Path)
	}
	m, err := LoadManifest(c.fs, c.validate, manifestPath)
	if isNotExist(err) {
		return capture, nil
	}
	if err != nil {
		return model.Capture{}, model.NewUnreadableDependency(manifestPath, err)
	}

	docDir := filepath.Dir(doc.Path)
	for _, e := range m.Dependencies {
		if err := ctx.Err(); err != nil {
			return model.Capture{}, err
		}
		path := filepath.FromSlash(e.Path)
		if !filepath.IsAbs(path) {
			path = filepath.Join(docDir, path)
		}
		content, fi, err := c.readFile(path)
		if err != nil {
			return model.Capture{}, model.NewUnreadableDependency(path, err)
		}
		capture.Dependencies = append(capture.Dependencies, model.Dependency{
			Path:         path,
			Kind:         e.Kind,
			Content:      content,
			ExpectedSize: fi.Size(),
			ModTime:      fi.ModTime(),
		})
	}
	return capture, nil
}

// readFile stats then reads a regular file. The stat size lets the packer
// detect a file that changed while being read.
func (c *ManifestCollector) readFile(path string) ([]byte, os.FileInfo, error) {
	fi, err := c.fs.Stat(path)
	if err != nil {
		return nil, nil, err
	}
	if !fi.Mode().IsRegular() {
		return nil, nil, fmt.Errorf("%s is not a regular file", path)
	}
	content, err := afero.ReadFile(c.fs, path)
	if err != nil {
		return nil, nil, err
	}
	if content == nil {
		content = []byte{}
	}
	return content, fi, nil
}
