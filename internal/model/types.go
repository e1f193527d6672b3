package model

import "time"

// Kind tags what a stored file is to the document.
type Kind string

const (
	KindDocument Kind = "document"
	KindFont     Kind = "font"
	KindImage    Kind = "image"
	KindLibrary  Kind = "library"
	KindAudio    Kind = "audio"
	KindScript   Kind = "script"
	KindOther    Kind = "other"
)

// DependencyKinds lists the kinds a dependency may carry.
var DependencyKinds = []Kind{KindFont, KindImage, KindLibrary, KindAudio, KindScript, KindOther}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	if k == KindDocument {
		return true
	}
	for _, d := range DependencyKinds {
		if k == d {
			return true
		}
	}
	return false
}

// Document identifies the primary file being versioned.
// Path is empty for a document that has never been saved.
type Document struct {
	Path string `json:"path"`
}

// Dependency is an external file referenced by a document, as reported by
// the host at capture time.
type Dependency struct {
	Path    string `json:"path"`
	Kind    Kind   `json:"kind"`
	Content []byte `json:"-"`

	// ExpectedSize is the size the host saw on disk; 0 means unknown.
	ExpectedSize int64 `json:"expected_size,omitempty"`

	ModTime time.Time `json:"mod_time,omitempty"`
}

// Blob is the stored form of one file inside a snapshot.
type Blob struct {
	Identity string    `json:"identity"`
	Kind     Kind      `json:"kind"`
	Content  []byte    `json:"-"`
	ModTime  time.Time `json:"mod_time,omitempty"`
}

// BlobSet is the ordered content of one snapshot. The document blob is first.
type BlobSet []Blob

// Document returns the document blob and whether one was found.
func (s BlobSet) Document() (Blob, bool) {
	for _, b := range s {
		if b.Kind == KindDocument {
			return b, true
		}
	}
	return Blob{}, false
}

// SnapshotInfo is one row of a store listing.
type SnapshotInfo struct {
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Comment   string    `json:"comment"`
}

// BlobInfo describes a stored blob without its content.
type BlobInfo struct {
	Identity   string    `json:"identity"`
	Kind       Kind      `json:"kind"`
	Size       int64     `json:"size"`
	StoredSize int64     `json:"stored_size"`
	Codec      string    `json:"codec"`
	Digest     string    `json:"digest"`
	ModTime    time.Time `json:"mod_time,omitempty"`
}

// Capture is what a host reports for a document at save time: the
// document's own bytes plus its flattened dependency list.
type Capture struct {
	Document        []byte       `json:"-"`
	DocumentModTime time.Time    `json:"document_mod_time,omitempty"`
	Dependencies    []Dependency `json:"dependencies"`
}
