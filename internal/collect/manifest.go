package collect

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/roach88/docsnap/internal/model"
)

// ManifestSuffix is appended to a document's path to name its manifest.
const ManifestSuffix = ".deps.yaml"

// ManifestPath returns the default manifest path for a document.
func ManifestPath(docPath string) string {
	return docPath + ManifestSuffix
}

// Manifest lists the files a document depends on.
type Manifest struct {
	// Dependencies in the order they are captured.
	Dependencies []Entry `yaml:"dependencies" validate:"dive"`
}

// Entry is one dependency of the document.
type Entry struct {
	// Path is absolute or relative to the document's directory.
	Path string `yaml:"path" validate:"required"`

	// Kind is one of font, image, library, audio, script, other.
	Kind model.Kind `yaml:"kind" validate:"required,oneof=font image library audio script other"`
}

// LoadManifest reads and validates the manifest at path.
// Unknown fields are rejected so typos surface instead of being ignored.
// A missing file yields an error matching os.ErrNotExist.
func LoadManifest(fs afero.Fs, v *validator.Validate, path string) (*Manifest, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, err
	}

	var m Manifest
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&m); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse manifest %s: %w", path, err)
	}

	if err := v.Struct(&m); err != nil {
		return nil, fmt.Errorf("validate manifest %s: %w", path, err)
	}
	return &m, nil
}

func isNotExist(err error) bool {
	return errors.Is(err, os.ErrNotExist)
}
